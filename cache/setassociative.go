package cache

import (
	"github.com/sarchlab/cachesim/memory"
)

// Statistics holds cache access statistics.
type Statistics struct {
	Reads     uint64
	Writes    uint64
	Hits      uint64
	Misses    uint64
	Installs  uint64
	Evictions uint64
}

// SetAssociative splits the address space into fixed-size sets, each a
// FullyAssociative cache. An address is decomposed, most significant first,
// into tag | lookup | offset, where offset addresses a byte within a line and
// lookup selects the set.
type SetAssociative struct {
	config Config

	offsetWidth uint
	lookupWidth uint

	sets  []*FullyAssociative
	stats Statistics
}

// New creates an empty set-associative cache from a configuration.
func New(config Config) (*SetAssociative, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	numSets := config.NumSets()
	sets := make([]*FullyAssociative, numSets)

	for i := range sets {
		set, err := NewFullyAssociative(config.Size/numSets, config.BlockSize)
		if err != nil {
			return nil, err
		}

		sets[i] = set
	}

	return &SetAssociative{
		config:      config,
		offsetWidth: log2(config.BlockSize),
		lookupWidth: log2(numSets),
		sets:        sets,
	}, nil
}

// NewSetAssociative creates an empty cache of capacity bytes with the given
// number of lines per set and line size in bytes.
func NewSetAssociative(capacity, associativity, lineSize int) (*SetAssociative, error) {
	return New(Config{
		Size:          capacity,
		Associativity: associativity,
		BlockSize:     lineSize,
	})
}

// Config returns the cache configuration.
func (c *SetAssociative) Config() Config {
	return c.config
}

// Capacity returns the capacity in bytes.
func (c *SetAssociative) Capacity() int {
	return c.config.Size
}

// Associativity returns the number of lines per set.
func (c *SetAssociative) Associativity() int {
	return c.config.Associativity
}

// LineSize returns the line size in bytes.
func (c *SetAssociative) LineSize() int {
	return c.config.BlockSize
}

// WordsPerLine returns the number of words in a line.
func (c *SetAssociative) WordsPerLine() int {
	return c.config.BlockSize / memory.WordSize
}

// NumSets returns the number of sets.
func (c *SetAssociative) NumSets() int {
	return len(c.sets)
}

// OffsetWidth returns the width of the offset field in bits.
func (c *SetAssociative) OffsetWidth() uint {
	return c.offsetWidth
}

// LookupWidth returns the width of the lookup field in bits.
func (c *SetAssociative) LookupWidth() uint {
	return c.lookupWidth
}

// TagWidth returns the width of the tag field in bits.
func (c *SetAssociative) TagWidth() uint {
	return memory.MaxAddressBits - c.offsetWidth - c.lookupWidth
}

// Stats returns cache statistics.
func (c *SetAssociative) Stats() Statistics {
	return c.stats
}

// ResetStats clears cache statistics.
func (c *SetAssociative) ResetStats() {
	c.stats = Statistics{}
}

// TagBits returns the tag field of an address.
func (c *SetAssociative) TagBits(address uint32) uint32 {
	return address >> (c.offsetWidth + c.lookupWidth)
}

// LookupBits returns the lookup field of an address.
func (c *SetAssociative) LookupBits(address uint32) uint32 {
	return (address >> c.offsetWidth) & uint32(len(c.sets)-1)
}

// OffsetBits returns the offset field of an address.
func (c *SetAssociative) OffsetBits(address uint32) uint32 {
	return address & uint32(c.config.BlockSize-1)
}

// SelectSet returns the index of the set address maps to.
func (c *SetAssociative) SelectSet(address uint32) int {
	return int(c.LookupBits(address))
}

// LineAddress aligns address down to the start of its line.
func (c *SetAssociative) LineAddress(address uint32) uint32 {
	return (address >> c.offsetWidth) << c.offsetWidth
}

// Set returns set i.
func (c *SetAssociative) Set(i int) *FullyAssociative {
	return c.sets[i]
}

func (c *SetAssociative) setOf(address uint32) *FullyAssociative {
	return c.sets[c.SelectSet(address)]
}

// Contains reports whether the line holding address is resident. It does not
// count as an access.
func (c *SetAssociative) Contains(address uint32) bool {
	return c.setOf(address).Contains(address)
}

// Lookup returns a copy of the addressed word if its line is resident.
func (c *SetAssociative) Lookup(address uint32) (memory.Word, bool) {
	c.stats.Reads++

	w, hit := c.setOf(address).Lookup(address)
	c.countHit(hit)

	return w, hit
}

// StoreWord overwrites the addressed word if its line is resident. A write
// miss does not allocate.
func (c *SetAssociative) StoreWord(address uint32, w memory.Word) bool {
	c.stats.Writes++

	hit := c.setOf(address).StoreWord(address, w)
	c.countHit(hit)

	return hit
}

// InstallLine places a copy of line into the set address maps to.
func (c *SetAssociative) InstallLine(address uint32, line []memory.Word) {
	c.stats.Installs++

	if evicted, _ := c.setOf(address).InstallLine(address, line); evicted {
		c.stats.Evictions++
	}
}

// Duplicate returns a new, empty cache with the same structure.
func (c *SetAssociative) Duplicate() *SetAssociative {
	dup, err := New(c.config)
	if err != nil {
		// The configuration was validated when c was built.
		panic(err)
	}

	return dup
}

// Reset empties every set and clears statistics.
func (c *SetAssociative) Reset() {
	for _, set := range c.sets {
		set.Reset()
	}

	c.stats = Statistics{}
}

func (c *SetAssociative) countHit(hit bool) {
	if hit {
		c.stats.Hits++
	} else {
		c.stats.Misses++
	}
}
