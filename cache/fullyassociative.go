package cache

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"

	"github.com/sarchlab/cachesim/memory"
)

// FullyAssociative is a single associative set: any line can occupy any way.
// Lines are found by a linear tag scan and replaced in FIFO order.
type FullyAssociative struct {
	capacity int
	lineSize int
	numLines int

	offsetWidth uint

	// Tag and validity per way. Way data lives in dataStore, indexed by
	// Block.WayID.
	set          akitacache.Set
	victimFinder *FIFOVictimFinder
	dataStore    [][]memory.Word
}

// NewFullyAssociative creates an empty cache of capacity bytes split into
// lines of lineSize bytes.
func NewFullyAssociative(capacity, lineSize int) (*FullyAssociative, error) {
	if err := validateLine(capacity, lineSize); err != nil {
		return nil, err
	}

	numLines := capacity / lineSize
	wordsPerLine := lineSize / memory.WordSize

	blocks := make([]*akitacache.Block, numLines)
	dataStore := make([][]memory.Word, numLines)
	for i := range blocks {
		blocks[i] = &akitacache.Block{WayID: i}
		dataStore[i] = make([]memory.Word, wordsPerLine)
	}

	return &FullyAssociative{
		capacity:     capacity,
		lineSize:     lineSize,
		numLines:     numLines,
		offsetWidth:  log2(lineSize),
		set:          akitacache.Set{Blocks: blocks},
		victimFinder: NewFIFOVictimFinder(),
		dataStore:    dataStore,
	}, nil
}

// Capacity returns the capacity in bytes.
func (c *FullyAssociative) Capacity() int {
	return c.capacity
}

// LineSize returns the line size in bytes.
func (c *FullyAssociative) LineSize() int {
	return c.lineSize
}

// NumLines returns the number of ways.
func (c *FullyAssociative) NumLines() int {
	return c.numLines
}

// OffsetWidth returns the number of address bits addressing bytes in a line.
func (c *FullyAssociative) OffsetWidth() uint {
	return c.offsetWidth
}

// NextVictim returns the way that the next new line will replace.
func (c *FullyAssociative) NextVictim() int {
	return c.victimFinder.Next()
}

// TagOf returns the tag an address is stored under.
func (c *FullyAssociative) TagOf(address uint32) uint64 {
	return uint64(address >> c.offsetWidth)
}

// wordOffset returns the index of the addressed word within its line.
func (c *FullyAssociative) wordOffset(address uint32) int {
	return int(address&uint32(c.lineSize-1)) / memory.WordSize
}

// findBlock returns the block holding tag, or nil. Tags are unique within a
// set, so the first match is the only match.
func (c *FullyAssociative) findBlock(tag uint64) *akitacache.Block {
	for _, block := range c.set.Blocks {
		if block.IsValid && block.Tag == tag {
			return block
		}
	}

	return nil
}

// Contains reports whether the line holding address is resident.
func (c *FullyAssociative) Contains(address uint32) bool {
	return c.findBlock(c.TagOf(address)) != nil
}

// Lookup returns a copy of the addressed word if its line is resident.
func (c *FullyAssociative) Lookup(address uint32) (memory.Word, bool) {
	block := c.findBlock(c.TagOf(address))
	if block == nil {
		return 0, false
	}

	return c.dataStore[block.WayID][c.wordOffset(address)], true
}

// StoreWord overwrites the addressed word if its line is resident. A miss
// does not allocate a line.
func (c *FullyAssociative) StoreWord(address uint32, w memory.Word) bool {
	block := c.findBlock(c.TagOf(address))
	if block == nil {
		return false
	}

	c.dataStore[block.WayID][c.wordOffset(address)] = w

	return true
}

// InstallLine places a copy of line in the cache under the tag of address.
// A resident line is overwritten in place; otherwise the FIFO victim is
// replaced. It reports whether a valid line was evicted, and its tag.
func (c *FullyAssociative) InstallLine(
	address uint32,
	line []memory.Word,
) (evicted bool, evictedTag uint64) {
	tag := c.TagOf(address)

	block := c.findBlock(tag)
	if block == nil {
		block = c.victimFinder.FindVictim(&c.set)
		evicted, evictedTag = block.IsValid, block.Tag

		block.Tag = tag
		block.IsValid = true
	}

	data := c.dataStore[block.WayID]
	n := copy(data, line)
	clear(data[n:])

	return evicted, evictedTag
}

// Reset empties the cache and rewinds the FIFO cursor.
func (c *FullyAssociative) Reset() {
	for _, block := range c.set.Blocks {
		block.IsValid = false
		block.Tag = 0
		clear(c.dataStore[block.WayID])
	}

	c.victimFinder = NewFIFOVictimFinder()
}
