package cache

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// FIFOVictimFinder evicts blocks in the order they were filled, using a
// circular cursor over the ways of a set. Access recency is ignored.
//
// Each FindVictim call consumes one cursor position, so a finder must be
// owned by exactly one set.
type FIFOVictimFinder struct {
	next int
}

var _ akitacache.VictimFinder = (*FIFOVictimFinder)(nil)

// NewFIFOVictimFinder returns a finder whose first victim is way 0.
func NewFIFOVictimFinder() *FIFOVictimFinder {
	return &FIFOVictimFinder{}
}

// FindVictim returns the block under the cursor and advances the cursor.
func (f *FIFOVictimFinder) FindVictim(set *akitacache.Set) *akitacache.Block {
	block := set.Blocks[f.next]
	f.next = (f.next + 1) % len(set.Blocks)

	return block
}

// Next returns the way that the next FindVictim call will return.
func (f *FIFOVictimFinder) Next() int {
	return f.next
}
