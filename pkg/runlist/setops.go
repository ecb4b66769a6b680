package runlist

import (
	"github.com/google/btree"
)

// Set-level union and difference. Each operand's inversion flag
// changes the meaning of its stored runs, so the four polarity
// combinations are rewritten through complement identities into three
// storage primitives: folding AddRun, folding RemoveRun, and an
// intersection sweep over two sorted snapshots.

func (r *runList[T]) AddSet(other RunList[T]) error {
	if other == nil {
		return nil
	}
	// Snapshot first, under other's lock only, so a list can be
	// combined with itself and two lists can combine concurrently in
	// either order.
	rr, oInverted := other.snapshot()

	r.m.Lock()
	defer r.m.Unlock()

	switch {
	case !r.invert && !oInverted:
		for _, o := range rr {
			if err := r.addRun(o.b, o.e); err != nil {
				return err
			}
		}
	case !r.invert && oInverted:
		// A ∪ ¬B == ¬(B \ A)
		mine := r.runs()
		r.replace(rr)
		for _, m := range mine {
			if err := r.removeRun(m.b, m.e); err != nil {
				return err
			}
		}
		r.invert = true
	case r.invert && !oInverted:
		// ¬A ∪ B == ¬(A \ B)
		for _, o := range rr {
			if err := r.removeRun(o.b, o.e); err != nil {
				return err
			}
		}
	default:
		// ¬A ∪ ¬B == ¬(A ∩ B)
		r.replace(r.intersect(r.runs(), rr))
	}
	return nil
}

func (r *runList[T]) RemoveSet(other RunList[T]) error {
	if other == nil {
		return nil
	}
	rr, oInverted := other.snapshot()

	r.m.Lock()
	defer r.m.Unlock()

	switch {
	case !r.invert && !oInverted:
		for _, o := range rr {
			if err := r.removeRun(o.b, o.e); err != nil {
				return err
			}
		}
	case !r.invert && oInverted:
		// A \ ¬B == A ∩ B
		r.replace(r.intersect(r.runs(), rr))
	case r.invert && !oInverted:
		// ¬A \ B == ¬(A ∪ B)
		for _, o := range rr {
			if err := r.addRun(o.b, o.e); err != nil {
				return err
			}
		}
	default:
		// ¬A \ ¬B == B \ A
		mine := r.runs()
		r.replace(rr)
		for _, m := range mine {
			if err := r.removeRun(m.b, m.e); err != nil {
				return err
			}
		}
		r.invert = false
	}
	return nil
}

// intersect sweeps two sorted, normalized run slices and returns
// their overlap segments. The result is again normalized: a gap in
// either input forces a gap in the output, so no two segments touch.
func (r *runList[T]) intersect(a, b []run[T]) []run[T] {
	var out []run[T]
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		lo := a[i].b
		if r.cmp(b[j].b, lo) > 0 {
			lo = b[j].b
		}
		hi := a[i].e
		if r.cmp(b[j].e, hi) < 0 {
			hi = b[j].e
		}
		if r.cmp(lo, hi) < 0 {
			out = append(out, run[T]{b: lo, e: hi})
		}
		if r.cmp(a[i].e, b[j].e) <= 0 {
			i++
		} else {
			j++
		}
	}
	return out
}

// replace swaps the stored runs for rr, which must already be sorted
// and normalized. Callers hold the write lock.
func (r *runList[T]) replace(rr []run[T]) {
	cmp := r.d.Compare
	t := btree.NewG(btreeDegree, func(x, y run[T]) bool {
		return cmp(x.b, y.b) < 0
	})
	for _, x := range rr {
		t.ReplaceOrInsert(x)
	}
	r.tree = t
}
