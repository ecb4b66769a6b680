package runlist

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/btree"
)

// ErrInvalidRange is returned when a run is given with begin >= end.
// Zero-length runs violate the storage invariant and are rejected
// rather than silently dropped.
var ErrInvalidRange = errors.New("invalid run: begin must be before end")

const btreeDegree = 8

// RunList represents a subset of an ordered domain as a minimal set
// of disjoint half-open runs [b, e), plus an inversion flag that lets
// the same stored runs denote the complement of the set.
//
// Stored runs are kept sorted by begin, pairwise non-overlapping and
// non-adjacent: two runs that touch are merged into one, so the
// representation is always minimal.
//
// AddRun and RemoveRun mutate the stored runs regardless of the
// inversion flag; inversion is applied only when querying. This keeps
// Invert O(1), which is what makes the flag useful for callers that
// repeatedly flip between tracking used and free values. AddSet and
// RemoveSet operate on the represented sets and take both lists'
// polarity into account.
type RunList[T any] interface {
	// AddRun unions the run [b, e) into the stored set, merging it
	// with every stored run it overlaps or touches.
	AddRun(b, e T) error
	// RemoveRun removes [b, e) from the stored set, splitting a run
	// that strictly contains it and trimming partial overlaps.
	RemoveRun(b, e T) error
	// Add unions the single value key, as the run [key, Next(key)).
	Add(key T) error
	// Remove removes the single value key.
	Remove(key T) error

	// Has reports whether key belongs to the represented set,
	// respecting the inversion flag.
	Has(key T) bool
	// HasAny reports whether any value in [b, e) belongs to the
	// represented set.
	HasAny(b, e T) (bool, error)
	// HasAll reports whether every value in [b, e) belongs to the
	// represented set.
	HasAll(b, e T) (bool, error)

	// Invert flips the polarity of the list: the stored runs now
	// denote the complement of the represented set. O(1), the stored
	// runs are never touched.
	Invert()
	Inverted() bool

	// AddSet unions the set represented by other into r.
	AddSet(other RunList[T]) error
	// RemoveSet removes the set represented by other from r.
	RemoveSet(other RunList[T]) error

	Clone() RunList[T]
	// Count returns the number of stored runs.
	Count() int
	// IsEmpty reports whether the represented set is empty.
	IsEmpty() bool

	// snapshot returns a sorted copy of the stored runs and the
	// inversion flag. Unexported: run enumeration is not part of the
	// contract, set-level operations need it internally.
	snapshot() ([]run[T], bool)
}

// New returns an empty run list over the given domain. The zero state
// represents the empty set: no runs, not inverted.
func New[T any](d Domain[T]) RunList[T] {
	cmp := d.Compare
	return &runList[T]{
		m: new(sync.RWMutex),
		d: d,
		tree: btree.NewG(btreeDegree, func(x, y run[T]) bool {
			return cmp(x.b, y.b) < 0
		}),
	}
}

type runList[T any] struct {
	m *sync.RWMutex
	d Domain[T]
	// tree holds the stored runs ordered by begin. Predecessor and
	// successor lookups are logarithmic, which bounds every mutation
	// by O(log n + k) for k runs touched.
	tree   *btree.BTreeG[run[T]]
	invert bool
}

func (r *runList[T]) cmp(a, b T) int { return r.d.Compare(a, b) }

// floor returns the stored run with the greatest begin <= key.
func (r *runList[T]) floor(key T) (run[T], bool) {
	var out run[T]
	var ok bool
	r.tree.DescendLessOrEqual(run[T]{b: key}, func(item run[T]) bool {
		out, ok = item, true
		return false
	})
	return out, ok
}

func (r *runList[T]) AddRun(b, e T) error {
	r.m.Lock()
	defer r.m.Unlock()

	return r.addRun(b, e)
}

func (r *runList[T]) addRun(b, e T) error {
	if r.cmp(b, e) >= 0 {
		return fmt.Errorf("%w: [%v, %v)", ErrInvalidRange, b, e)
	}
	nr := run[T]{b: b, e: e}

	// The only run beginning before b that can overlap or touch the
	// candidate is its immediate predecessor, stored runs being
	// disjoint.
	if p, ok := r.floor(b); ok && r.cmp(p.e, b) >= 0 {
		nr.b = p.b
		if r.cmp(p.e, nr.e) > 0 {
			nr.e = p.e
		}
		r.tree.Delete(p)
	}

	// Absorb every run beginning at or before the candidate end;
	// beginning exactly on it counts, touching runs merge.
	var absorbed []run[T]
	r.tree.AscendGreaterOrEqual(run[T]{b: nr.b}, func(item run[T]) bool {
		if r.cmp(item.b, nr.e) > 0 {
			return false
		}
		absorbed = append(absorbed, item)
		return true
	})
	for _, a := range absorbed {
		if r.cmp(a.e, nr.e) > 0 {
			nr.e = a.e
		}
		r.tree.Delete(a)
	}

	r.tree.ReplaceOrInsert(nr)
	return nil
}

func (r *runList[T]) RemoveRun(b, e T) error {
	r.m.Lock()
	defer r.m.Unlock()

	return r.removeRun(b, e)
}

func (r *runList[T]) removeRun(b, e T) error {
	if r.cmp(b, e) >= 0 {
		return fmt.Errorf("%w: [%v, %v)", ErrInvalidRange, b, e)
	}

	if p, ok := r.floor(b); ok && r.cmp(p.e, b) > 0 {
		r.tree.Delete(p)
		if r.cmp(p.b, b) < 0 {
			r.tree.ReplaceOrInsert(run[T]{b: p.b, e: b})
		}
		if r.cmp(p.e, e) > 0 {
			// the removal carved a hole out of the middle of p
			r.tree.ReplaceOrInsert(run[T]{b: e, e: p.e})
			return nil
		}
	}

	// Runs beginning inside [b, e): delete the ones fully covered,
	// trim the one sticking out past e.
	var covered []run[T]
	var tail run[T]
	var hasTail bool
	r.tree.AscendGreaterOrEqual(run[T]{b: b}, func(item run[T]) bool {
		if r.cmp(item.b, e) >= 0 {
			return false
		}
		covered = append(covered, item)
		if r.cmp(item.e, e) > 0 {
			tail, hasTail = run[T]{b: e, e: item.e}, true
		}
		return true
	})
	for _, c := range covered {
		r.tree.Delete(c)
	}
	if hasTail {
		r.tree.ReplaceOrInsert(tail)
	}
	return nil
}

func (r *runList[T]) Add(key T) error {
	return r.AddRun(key, r.d.Next(key))
}

func (r *runList[T]) Remove(key T) error {
	return r.RemoveRun(key, r.d.Next(key))
}

func (r *runList[T]) Has(key T) bool {
	r.m.RLock()
	defer r.m.RUnlock()

	return r.has(key) != r.invert
}

func (r *runList[T]) has(key T) bool {
	p, ok := r.floor(key)
	return ok && r.cmp(key, p.e) < 0
}

func (r *runList[T]) HasAny(b, e T) (bool, error) {
	if r.cmp(b, e) >= 0 {
		return false, fmt.Errorf("%w: [%v, %v)", ErrInvalidRange, b, e)
	}
	r.m.RLock()
	defer r.m.RUnlock()

	if r.invert {
		return !r.coveredByOne(b, e), nil
	}
	return r.intersectsAny(b, e), nil
}

func (r *runList[T]) HasAll(b, e T) (bool, error) {
	if r.cmp(b, e) >= 0 {
		return false, fmt.Errorf("%w: [%v, %v)", ErrInvalidRange, b, e)
	}
	r.m.RLock()
	defer r.m.RUnlock()

	if r.invert {
		return !r.intersectsAny(b, e), nil
	}
	return r.coveredByOne(b, e), nil
}

// intersectsAny reports whether any stored run shares a value with
// [b, e).
func (r *runList[T]) intersectsAny(b, e T) bool {
	if p, ok := r.floor(b); ok && overlaps(r.cmp, p, run[T]{b: b, e: e}) {
		return true
	}
	any := false
	r.tree.AscendGreaterOrEqual(run[T]{b: b}, func(item run[T]) bool {
		any = r.cmp(item.b, e) < 0
		return false
	})
	return any
}

// coveredByOne reports whether a single stored run contains all of
// [b, e). Runs being merged-minimal, this is the only way the stored
// set can cover the whole range.
func (r *runList[T]) coveredByOne(b, e T) bool {
	p, ok := r.floor(b)
	return ok && r.cmp(e, p.e) <= 0
}

func (r *runList[T]) Invert() {
	r.m.Lock()
	defer r.m.Unlock()

	r.invert = !r.invert
}

func (r *runList[T]) Inverted() bool {
	r.m.RLock()
	defer r.m.RUnlock()

	return r.invert
}

func (r *runList[T]) Clone() RunList[T] {
	r.m.RLock()
	defer r.m.RUnlock()

	return &runList[T]{
		m:      new(sync.RWMutex),
		d:      r.d,
		tree:   r.tree.Clone(),
		invert: r.invert,
	}
}

func (r *runList[T]) Count() int {
	r.m.RLock()
	defer r.m.RUnlock()

	return r.tree.Len()
}

func (r *runList[T]) IsEmpty() bool {
	r.m.RLock()
	defer r.m.RUnlock()

	return r.tree.Len() == 0 && !r.invert
}

func (r *runList[T]) snapshot() ([]run[T], bool) {
	r.m.RLock()
	defer r.m.RUnlock()

	return r.runs(), r.invert
}

// runs returns a sorted copy of the stored runs. Callers hold the
// lock.
func (r *runList[T]) runs() []run[T] {
	rr := make([]run[T], 0, r.tree.Len())
	r.tree.Ascend(func(item run[T]) bool {
		rr = append(rr, item)
		return true
	})
	return rr
}
