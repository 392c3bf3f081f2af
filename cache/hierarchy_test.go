package cache_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/memory"
)

func mustCache(capacity, assoc, lineSize int) *cache.SetAssociative {
	c, err := cache.NewSetAssociative(capacity, assoc, lineSize)
	Expect(err).NotTo(HaveOccurred())
	return c
}

var _ = Describe("Hierarchy", func() {
	var (
		h  *cache.Hierarchy
		mm *memory.MainMemory
	)

	BeforeEach(func() {
		var err error
		h, err = cache.NewHierarchy(
			mustCache(64, 2, 16),
			mustCache(64, 2, 16),
			mustCache(128, 4, 32),
			mustCache(1024, 4, 64),
		)
		Expect(err).NotTo(HaveOccurred())

		mm, err = memory.NewMainMemory(4096, 0)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Construction", func() {
		It("should reject missing levels", func() {
			_, err := cache.NewHierarchy(nil, h.L1I(), h.L2(), h.L3())
			Expect(err).To(MatchError(memory.ErrConfiguration))
		})

		It("should reject a cache used at two levels", func() {
			_, err := cache.NewHierarchy(h.L1D(), h.L1D(), h.L2(), h.L3())
			Expect(err).To(MatchError(memory.ErrConfiguration))
		})

		It("should reject decreasing line sizes on either path", func() {
			_, err := cache.NewHierarchy(
				mustCache(128, 2, 64), mustCache(64, 2, 16),
				mustCache(128, 4, 32), mustCache(1024, 4, 64))
			Expect(err).To(MatchError(memory.ErrConfiguration))

			_, err = cache.NewHierarchy(
				mustCache(64, 2, 16), mustCache(128, 2, 64),
				mustCache(128, 4, 32), mustCache(1024, 4, 64))
			Expect(err).To(MatchError(memory.ErrConfiguration))

			_, err = cache.NewHierarchy(
				mustCache(64, 2, 16), mustCache(64, 2, 16),
				mustCache(256, 2, 64), mustCache(1024, 4, 32))
			Expect(err).To(MatchError(memory.ErrConfiguration))
		})

		It("should accept equal line sizes", func() {
			_, err := cache.NewHierarchy(
				mustCache(64, 2, 32), mustCache(64, 2, 32),
				mustCache(128, 4, 32), mustCache(1024, 4, 32))
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("ReadData", func() {
		It("should fill from memory on a cold miss and hit L1 afterwards", func() {
			w, level, err := h.ReadData(mm, 64)
			Expect(err).NotTo(HaveOccurred())
			Expect(level).To(Equal(memory.FoundInMem))
			Expect(w).To(Equal(memory.Word(0)))

			w, level, err = h.ReadData(mm, 64)
			Expect(err).NotTo(HaveOccurred())
			Expect(level).To(Equal(memory.FoundInL1))
			Expect(w).To(Equal(memory.Word(0)))
		})

		It("should return memory contents", func() {
			_, err := mm.Write(40, 77)
			Expect(err).NotTo(HaveOccurred())

			w, _, _ := h.ReadData(mm, 40)
			Expect(w).To(Equal(memory.Word(77)))

			w, level, _ := h.ReadData(mm, 40)
			Expect(level).To(Equal(memory.FoundInL1))
			Expect(w).To(Equal(memory.Word(77)))
		})

		It("should find lines evicted from L1 in L2", func() {
			// L1d set 0 holds two lines; the third evicts 0x00.
			for _, a := range []uint32{0x00, 0x20, 0x40} {
				h.ReadData(mm, a)
			}
			Expect(h.L1D().Contains(0x00)).To(BeFalse())

			_, level, _ := h.ReadData(mm, 0x00)
			Expect(level).To(Equal(memory.FoundInL2))
			Expect(h.L1D().Contains(0x00)).To(BeTrue())
		})

		It("should find lines evicted from L2 in L3", func() {
			// L2 is a single 4-way set of 32B lines.
			for _, a := range []uint32{0x00, 0x20, 0x40, 0x60, 0x80} {
				h.ReadData(mm, a)
			}
			Expect(h.L2().Contains(0x00)).To(BeFalse())

			_, level, _ := h.ReadData(mm, 0x00)
			Expect(level).To(Equal(memory.FoundInL3))
		})

		It("should keep the data path inclusive after every refill", func() {
			for a := uint32(0); a < 4096; a += 52 {
				h.ReadData(mm, a)

				l1, l2, l3 := h.Resident(a, false)
				Expect(l1).To(BeTrue())
				Expect(l2).To(BeTrue())
				Expect(l3).To(BeTrue())
			}
		})

		It("should leave L1i untouched", func() {
			h.ReadData(mm, 0)
			Expect(h.L1I().Contains(0)).To(BeFalse())
		})

		It("should fail without filling for addresses beyond memory", func() {
			_, level, err := h.ReadData(mm, 8192)
			Expect(err).To(MatchError(memory.ErrAddressOutOfRange))
			Expect(level).To(Equal(memory.AddressOutOfRange))
			Expect(h.L3().Stats().Installs).To(BeZero())
		})
	})

	Describe("ReadInstruction", func() {
		It("should fill the instruction path", func() {
			_, level, err := h.ReadInstruction(mm, 0x100)
			Expect(err).NotTo(HaveOccurred())
			Expect(level).To(Equal(memory.FoundInMem))
			Expect(h.Inclusive(0x100, true)).To(BeTrue())

			l1, l2, l3 := h.Resident(0x100, true)
			Expect([]bool{l1, l2, l3}).To(Equal([]bool{true, true, true}))
			Expect(h.L1D().Contains(0x100)).To(BeFalse())

			_, level, _ = h.ReadInstruction(mm, 0x104)
			Expect(level).To(Equal(memory.FoundInL1))
		})
	})

	Describe("Refill", func() {
		It("should align each level to its own line size", func() {
			h.RefillDataLine(mm, 0x7C)

			Expect(h.L3().Contains(0x40)).To(BeTrue())
			Expect(h.L2().Contains(0x60)).To(BeTrue())
			Expect(h.L2().Contains(0x40)).To(BeFalse())
			Expect(h.L1D().Contains(0x70)).To(BeTrue())
			Expect(h.L1D().Contains(0x60)).To(BeFalse())
		})

		It("should refill the instruction path", func() {
			h.RefillInstructionLine(mm, 0x10)
			Expect(h.L1I().Contains(0x10)).To(BeTrue())
			Expect(h.L1D().Contains(0x10)).To(BeFalse())
		})
	})

	Describe("WriteData", func() {
		It("should report the memory level when nothing holds the line", func() {
			Expect(h.WriteData(0, 5)).To(Equal(memory.FoundInMem))
			Expect(h.L1D().Contains(0)).To(BeFalse())

			w, _, _ := mm.Read(0)
			Expect(w).To(Equal(memory.Word(0)))
		})

		It("should stop at the first level holding the line", func() {
			h.ReadData(mm, 0)
			Expect(h.WriteData(0, 5)).To(Equal(memory.FoundInL1))

			w, level, _ := h.ReadData(mm, 0)
			Expect(level).To(Equal(memory.FoundInL1))
			Expect(w).To(Equal(memory.Word(5)))

			// Lower levels are not updated on an L1 hit.
			w, _ = h.L2().Lookup(0)
			Expect(w).To(Equal(memory.Word(0)))
		})

		It("should write at L2 when only L2 holds the line", func() {
			for _, a := range []uint32{0x00, 0x20, 0x40} {
				h.ReadData(mm, a)
			}

			Expect(h.WriteData(0x00, 9)).To(Equal(memory.FoundInL2))
		})

		It("should use L1i for instructions", func() {
			h.ReadInstruction(mm, 0)
			Expect(h.WriteInstruction(0, 3)).To(Equal(memory.FoundInL1))
			Expect(h.WriteData(0x200, 3)).To(Equal(memory.FoundInMem))
		})
	})

	Describe("Duplicate", func() {
		It("should share only L3", func() {
			h.ReadData(mm, 0)

			dup := h.Duplicate()
			Expect(dup.SharesL3With(h)).To(BeTrue())
			Expect(dup.L3()).To(BeIdenticalTo(h.L3()))
			Expect(dup.L1D()).NotTo(BeIdenticalTo(h.L1D()))
			Expect(dup.L1I()).NotTo(BeIdenticalTo(h.L1I()))
			Expect(dup.L2()).NotTo(BeIdenticalTo(h.L2()))

			Expect(dup.L1D().Contains(0)).To(BeFalse())
			Expect(dup.L2().Contains(0)).To(BeFalse())

			_, level, _ := dup.ReadData(mm, 0)
			Expect(level).To(Equal(memory.FoundInL3))
		})

		It("should not share L3 with an independent hierarchy", func() {
			other, err := cache.NewHierarchy(
				mustCache(64, 2, 16), mustCache(64, 2, 16),
				mustCache(128, 4, 32), mustCache(1024, 4, 64))
			Expect(err).NotTo(HaveOccurred())
			Expect(other.SharesL3With(h)).To(BeFalse())
		})
	})
})

var _ = Describe("Hierarchy levels", func() {
	It("should list the caches in display order", func() {
		l1d, l1i := mustCache(64, 2, 16), mustCache(64, 2, 16)
		l2, l3 := mustCache(128, 4, 32), mustCache(1024, 4, 64)

		h, err := cache.NewHierarchy(l1d, l1i, l2, l3)
		Expect(err).NotTo(HaveOccurred())

		levels := h.Levels()
		Expect(levels).To(HaveLen(4))
		Expect(levels[0].Name).To(Equal("L1d"))
		Expect(levels[0].Cache).To(BeIdenticalTo(l1d))
		Expect(levels[3].Name).To(Equal("L3"))
		Expect(levels[3].Cache).To(BeIdenticalTo(l3))
		Expect(h.String()).To(Equal(
			"L1d 64B/2-way/16B, L1i 64B/2-way/16B, L2 128B/4-way/32B, L3 1024B/4-way/64B"))
	})
})
