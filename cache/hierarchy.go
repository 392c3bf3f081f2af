package cache

import (
	"fmt"

	"github.com/sarchlab/cachesim/memory"
)

// Hierarchy is an inclusive three-level cache: split L1 data and instruction
// caches over a unified L2 and an L3 that may be shared with other
// hierarchies. Every line resident in an inner level is kept resident in the
// outer levels by refilling outer to inner on every miss.
//
// A Hierarchy is not safe for concurrent use, and neither is an L3 shared
// through Duplicate.
type Hierarchy struct {
	l1d *SetAssociative
	l1i *SetAssociative
	l2  *SetAssociative
	l3  *SetAssociative
}

// NewHierarchy composes four distinct caches. Line sizes must not decrease
// from L1 to L3 on either the data or the instruction path.
func NewHierarchy(l1d, l1i, l2, l3 *SetAssociative) (*Hierarchy, error) {
	levels := []struct {
		name  string
		cache *SetAssociative
	}{{"L1d", l1d}, {"L1i", l1i}, {"L2", l2}, {"L3", l3}}

	for i, a := range levels {
		if a.cache == nil {
			return nil, configErrorf("%s cache is missing", a.name)
		}

		for _, b := range levels[:i] {
			if a.cache == b.cache {
				return nil, configErrorf("%s and %s must be distinct caches", b.name, a.name)
			}
		}
	}

	if l1d.LineSize() > l2.LineSize() || l2.LineSize() > l3.LineSize() {
		return nil, configErrorf("line sizes must not decrease from L1d to L3 (%d, %d, %d)",
			l1d.LineSize(), l2.LineSize(), l3.LineSize())
	}

	if l1i.LineSize() > l2.LineSize() {
		return nil, configErrorf("line sizes must not decrease from L1i to L3 (%d, %d, %d)",
			l1i.LineSize(), l2.LineSize(), l3.LineSize())
	}

	return &Hierarchy{l1d: l1d, l1i: l1i, l2: l2, l3: l3}, nil
}

// L1D returns the L1 data cache.
func (h *Hierarchy) L1D() *SetAssociative { return h.l1d }

// L1I returns the L1 instruction cache.
func (h *Hierarchy) L1I() *SetAssociative { return h.l1i }

// L2 returns the L2 cache.
func (h *Hierarchy) L2() *SetAssociative { return h.l2 }

// L3 returns the L3 cache.
func (h *Hierarchy) L3() *SetAssociative { return h.l3 }

// NamedLevel pairs a cache with its display name.
type NamedLevel struct {
	Name  string
	Cache *SetAssociative
}

// Levels returns the four caches in display order.
func (h *Hierarchy) Levels() []NamedLevel {
	return []NamedLevel{
		{Name: "L1d", Cache: h.l1d},
		{Name: "L1i", Cache: h.l1i},
		{Name: "L2", Cache: h.l2},
		{Name: "L3", Cache: h.l3},
	}
}

// SharesL3With reports whether both hierarchies use the same L3 instance.
func (h *Hierarchy) SharesL3With(other *Hierarchy) bool {
	return other != nil && h.l3 == other.l3
}

// Duplicate returns a hierarchy with fresh, empty L1 and L2 caches of the
// same structure, over the same L3.
func (h *Hierarchy) Duplicate() *Hierarchy {
	return &Hierarchy{
		l1d: h.l1d.Duplicate(),
		l1i: h.l1i.Duplicate(),
		l2:  h.l2.Duplicate(),
		l3:  h.l3,
	}
}

// ReadData reads a data word, probing L1d, L2 and L3 before main memory. Any
// miss refills the data path for address.
func (h *Hierarchy) ReadData(
	mm *memory.MainMemory,
	address uint32,
) (memory.Word, memory.Level, error) {
	return h.read(mm, address, h.l1d)
}

// ReadInstruction is ReadData on the instruction path.
func (h *Hierarchy) ReadInstruction(
	mm *memory.MainMemory,
	address uint32,
) (memory.Word, memory.Level, error) {
	return h.read(mm, address, h.l1i)
}

func (h *Hierarchy) read(
	mm *memory.MainMemory,
	address uint32,
	l1 *SetAssociative,
) (memory.Word, memory.Level, error) {
	if w, hit := l1.Lookup(address); hit {
		return w, memory.FoundInL1, nil
	}

	if w, hit := h.l2.Lookup(address); hit {
		h.refill(mm, address, l1)
		return w, memory.FoundInL2, nil
	}

	if w, hit := h.l3.Lookup(address); hit {
		h.refill(mm, address, l1)
		return w, memory.FoundInL3, nil
	}

	w, _, err := mm.Read(uint64(address))
	if err != nil {
		return 0, memory.AddressOutOfRange, err
	}

	h.refill(mm, address, l1)

	return w, memory.FoundInMem, nil
}

// RefillDataLine installs the lines holding address into L3, L2 and L1d, in
// that order, each aligned to its own line size.
func (h *Hierarchy) RefillDataLine(mm *memory.MainMemory, address uint32) {
	h.refill(mm, address, h.l1d)
}

// RefillInstructionLine is RefillDataLine on the instruction path.
func (h *Hierarchy) RefillInstructionLine(mm *memory.MainMemory, address uint32) {
	h.refill(mm, address, h.l1i)
}

func (h *Hierarchy) refill(mm *memory.MainMemory, address uint32, l1 *SetAssociative) {
	// Outer to inner, so an inner level never holds a line its outer levels
	// lack.
	for _, level := range []*SetAssociative{h.l3, h.l2, l1} {
		base := level.LineAddress(address)
		level.InstallLine(base, mm.ReadLine(uint64(base), level.WordsPerLine()))
	}
}

// WriteData stores w into the first of L1d, L2 and L3 holding the line and
// returns that level, or FoundInMem if none does. Nothing is allocated and
// main memory is not touched.
func (h *Hierarchy) WriteData(address uint32, w memory.Word) memory.Level {
	return h.write(address, w, h.l1d)
}

// WriteInstruction is WriteData on the instruction path.
func (h *Hierarchy) WriteInstruction(address uint32, w memory.Word) memory.Level {
	return h.write(address, w, h.l1i)
}

func (h *Hierarchy) write(address uint32, w memory.Word, l1 *SetAssociative) memory.Level {
	switch {
	case l1.StoreWord(address, w):
		return memory.FoundInL1
	case h.l2.StoreWord(address, w):
		return memory.FoundInL2
	case h.l3.StoreWord(address, w):
		return memory.FoundInL3
	default:
		return memory.FoundInMem
	}
}

// Resident reports which levels of the data or instruction path hold the line
// of address.
func (h *Hierarchy) Resident(address uint32, instruction bool) (l1, l2, l3 bool) {
	first := h.l1d
	if instruction {
		first = h.l1i
	}

	return first.Contains(address), h.l2.Contains(address), h.l3.Contains(address)
}

// Inclusive reports whether the inclusion invariant holds for address: a line
// resident at some level is resident at every outer level.
func (h *Hierarchy) Inclusive(address uint32, instruction bool) bool {
	l1, l2, l3 := h.Resident(address, instruction)
	return (!l1 || l2) && (!l2 || l3)
}

func (h *Hierarchy) String() string {
	return fmt.Sprintf("L1d %s, L1i %s, L2 %s, L3 %s",
		describe(h.l1d), describe(h.l1i), describe(h.l2), describe(h.l3))
}

func describe(c *SetAssociative) string {
	return fmt.Sprintf("%dB/%d-way/%dB", c.Capacity(), c.Associativity(), c.LineSize())
}
