package blocktable

import (
	"errors"
	"fmt"
	"sync"

	"github.com/henderiw/runlist/pkg/runlist"
	"k8s.io/apimachinery/pkg/labels"
)

// BlockTable tracks claims of block-address ranges on a device of a
// fixed size. A claim covers the half-open range [b, e) and carries a
// label set describing its owner. Used/free queries are answered by a
// run list of the used blocks.
type BlockTable interface {
	Get(b uint64) (labels.Set, error)
	Claim(b, e uint64, d labels.Set) error
	Release(b uint64) error
	Update(b uint64, d labels.Set) error

	Count() int
	Has(block uint64) bool
	IsFree(b, e uint64) bool

	GetAll() map[uint64]labels.Set
	GetByLabel(selector labels.Selector) map[uint64]labels.Set
}

type claim struct {
	b    uint64
	e    uint64
	data labels.Set
}

type Claims map[uint64]struct {
	End  uint64
	Data labels.Set
}

func New(size uint64, initClaims Claims) (BlockTable, error) {
	r := &blockTable{
		m:      new(sync.RWMutex),
		claims: map[uint64]claim{},
		used:   runlist.New(runlist.Numeric[uint64]()),
		size:   size,
	}

	var errm error
	for b, c := range initClaims {
		if err := r.claim(b, c.End, c.Data); err != nil {
			errm = errors.Join(errm, err)
		}
	}

	return r, errm
}

type blockTable struct {
	m      *sync.RWMutex
	claims map[uint64]claim
	used   runlist.RunList[uint64]
	size   uint64
}

func (r *blockTable) validate(b, e uint64) error {
	if b >= e {
		return fmt.Errorf("range [%d, %d) is empty or reversed", b, e)
	}
	if e > r.size {
		return fmt.Errorf("end %d is bigger then max allowed blocks: %d", e, r.size)
	}
	return nil
}

func (r *blockTable) Get(b uint64) (labels.Set, error) {
	r.m.RLock()
	defer r.m.RUnlock()

	c, ok := r.claims[b]
	if !ok {
		return nil, fmt.Errorf("no claim found starting at: %d", b)
	}
	return c.data, nil
}

func (r *blockTable) Claim(b, e uint64, d labels.Set) error {
	r.m.Lock()
	defer r.m.Unlock()

	return r.claim(b, e, d)
}

func (r *blockTable) claim(b, e uint64, d labels.Set) error {
	if err := r.validate(b, e); err != nil {
		return err
	}
	used, err := r.used.HasAny(b, e)
	if err != nil {
		return err
	}
	if used {
		return fmt.Errorf("range [%d, %d) is already claimed", b, e)
	}
	if err := r.used.AddRun(b, e); err != nil {
		return err
	}
	r.claims[b] = claim{b: b, e: e, data: d}
	return nil
}

func (r *blockTable) Release(b uint64) error {
	r.m.Lock()
	defer r.m.Unlock()

	c, ok := r.claims[b]
	if !ok {
		return fmt.Errorf("no claim found starting at: %d", b)
	}
	if err := r.used.RemoveRun(c.b, c.e); err != nil {
		return err
	}
	delete(r.claims, b)
	return nil
}

func (r *blockTable) Update(b uint64, d labels.Set) error {
	r.m.Lock()
	defer r.m.Unlock()

	c, ok := r.claims[b]
	if !ok {
		return fmt.Errorf("no claim found starting at: %d", b)
	}
	c.data = d
	r.claims[b] = c
	return nil
}

func (r *blockTable) Count() int {
	r.m.RLock()
	defer r.m.RUnlock()

	return len(r.claims)
}

func (r *blockTable) Has(block uint64) bool {
	r.m.RLock()
	defer r.m.RUnlock()

	return r.used.Has(block)
}

func (r *blockTable) IsFree(b, e uint64) bool {
	r.m.RLock()
	defer r.m.RUnlock()

	if err := r.validate(b, e); err != nil {
		return false
	}
	used, err := r.used.HasAny(b, e)
	if err != nil {
		return false
	}
	return !used
}

func (r *blockTable) GetAll() map[uint64]labels.Set {
	r.m.RLock()
	defer r.m.RUnlock()

	entries := make(map[uint64]labels.Set, len(r.claims))
	for b, c := range r.claims {
		entries[b] = c.data
	}
	return entries
}

func (r *blockTable) GetByLabel(selector labels.Selector) map[uint64]labels.Set {
	r.m.RLock()
	defer r.m.RUnlock()

	entries := map[uint64]labels.Set{}
	for b, c := range r.claims {
		if selector.Matches(c.data) {
			entries[b] = c.data
		}
	}
	return entries
}
