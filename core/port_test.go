package core_test

import (
	"github.com/sarchlab/akita/v4/sim"
	"go.uber.org/mock/gomock"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/core"
	"github.com/sarchlab/cachesim/memory"
)

// smallBuilder is the example system: L1 64B/2-way/16B, L2 128B/4-way/32B,
// L3 1024B/4-way/64B over 4KB of RAM.
func smallBuilder() core.Builder {
	return core.MakeBuilder().
		WithL1D(cache.Config{Size: 64, Associativity: 2, BlockSize: 16}).
		WithL1I(cache.Config{Size: 64, Associativity: 2, BlockSize: 16}).
		WithL2(cache.Config{Size: 128, Associativity: 4, BlockSize: 32}).
		WithL3(cache.Config{Size: 1024, Associativity: 4, BlockSize: 64}).
		WithMainMemory(4096, 0).
		WithNumCores(1)
}

var _ = Describe("Memory", func() {
	var port *core.Memory

	BeforeEach(func() {
		proc, err := smallBuilder().Build()
		Expect(err).NotTo(HaveOccurred())

		port, err = proc.Core(0)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should reject missing parts", func() {
		_, err := core.NewMemory(nil, port.MainMemory())
		Expect(err).To(MatchError(memory.ErrConfiguration))

		_, err = core.NewMemory(port.Hierarchy(), nil)
		Expect(err).To(MatchError(memory.ErrConfiguration))
	})

	Describe("Example scenario", func() {
		It("should hit L1 after a write and fill from memory on a cold read", func() {
			level, err := port.WriteData(0, 42)
			Expect(err).NotTo(HaveOccurred())
			Expect(level).To(Equal(memory.FoundInMem))

			w, level, err := port.ReadData(0)
			Expect(err).NotTo(HaveOccurred())
			Expect(level).To(Equal(memory.FoundInL1))
			Expect(w).To(Equal(memory.Word(42)))

			w, level, err = port.ReadData(64)
			Expect(err).NotTo(HaveOccurred())
			Expect(level).To(Equal(memory.FoundInMem))
			Expect(w).To(Equal(memory.Word(0)))

			w, level, err = port.ReadData(64)
			Expect(err).NotTo(HaveOccurred())
			Expect(level).To(Equal(memory.FoundInL1))
			Expect(w).To(Equal(memory.Word(0)))
		})
	})

	Describe("Write-through", func() {
		It("should make every write visible in memory and in L1", func() {
			mm := port.MainMemory()

			for a := uint64(0); a < mm.TotalSize(); a += 4 {
				w := memory.Word(a*3 + 1)

				_, err := port.WriteData(a, w)
				Expect(err).NotTo(HaveOccurred())

				stored, _, err := mm.Read(a)
				Expect(err).NotTo(HaveOccurred())
				Expect(stored).To(Equal(w))

				read, level, err := port.ReadData(a)
				Expect(err).NotTo(HaveOccurred())
				Expect(level).To(Equal(memory.FoundInL1))
				Expect(read).To(Equal(w))
			}
		})

		It("should report the level that already held the line", func() {
			_, _, err := port.ReadData(0)
			Expect(err).NotTo(HaveOccurred())

			level, err := port.WriteData(4, 9)
			Expect(err).NotTo(HaveOccurred())
			Expect(level).To(Equal(memory.FoundInL1))
		})

		It("should refill every level with the written value", func() {
			_, _, err := port.ReadData(0)
			Expect(err).NotTo(HaveOccurred())

			_, err = port.WriteData(0, 11)
			Expect(err).NotTo(HaveOccurred())

			for _, level := range port.Hierarchy().Levels() {
				if level.Name == "L1i" {
					continue
				}

				w, hit := level.Cache.Lookup(0)
				Expect(hit).To(BeTrue(), level.Name)
				Expect(w).To(Equal(memory.Word(11)), level.Name)
			}
		})

		It("should write instructions through the instruction path", func() {
			level, err := port.WriteInstruction(0x80, 0xE3A00001)
			Expect(err).NotTo(HaveOccurred())
			Expect(level).To(Equal(memory.FoundInMem))

			w, level, err := port.ReadInstruction(0x80)
			Expect(err).NotTo(HaveOccurred())
			Expect(level).To(Equal(memory.FoundInL1))
			Expect(w).To(Equal(memory.Word(0xE3A00001)))

			Expect(port.Hierarchy().L1D().Contains(0x80)).To(BeFalse())
		})
	})

	Describe("Address errors", func() {
		It("should reject reads beyond memory", func() {
			_, level, err := port.ReadData(4096)
			Expect(err).To(MatchError(memory.ErrAddressOutOfRange))
			Expect(level).To(Equal(memory.AddressOutOfRange))

			_, level, err = port.ReadInstruction(1 << 40)
			Expect(err).To(MatchError(memory.ErrAddressOutOfRange))
			Expect(level).To(Equal(memory.AddressOutOfRange))
		})

		It("should reject writes before mutating anything", func() {
			level, err := port.WriteData(1<<32, 1)
			Expect(err).To(MatchError(memory.ErrAddressOutOfRange))
			Expect(level).To(Equal(memory.AddressOutOfRange))

			level, err = port.WriteInstruction(5000, 1)
			Expect(err).To(MatchError(memory.ErrAddressOutOfRange))
			Expect(level).To(Equal(memory.AddressOutOfRange))

			for _, l := range port.Hierarchy().Levels() {
				Expect(l.Cache.Stats()).To(Equal(cache.Statistics{}), l.Name)
			}
		})
	})

	Describe("Hooks", func() {
		var (
			mockCtrl *gomock.Controller
			hook     *MockHook
		)

		BeforeEach(func() {
			mockCtrl = gomock.NewController(GinkgoT())
			hook = NewMockHook(mockCtrl)
			port.AcceptHook(hook)
		})

		AfterEach(func() {
			mockCtrl.Finish()
		})

		It("should report every access", func() {
			var infos []core.AccessInfo
			hook.EXPECT().Func(gomock.Any()).
				Do(func(ctx sim.HookCtx) {
					Expect(ctx.Pos).To(BeIdenticalTo(core.HookPosAccess))
					Expect(ctx.Domain).To(BeIdenticalTo(port))
					infos = append(infos, ctx.Item.(core.AccessInfo))
				}).
				Times(3)

			_, _ = port.WriteData(8, 5)
			_, _, _ = port.ReadData(8)
			_, _, _ = port.ReadData(9999)

			Expect(infos).To(HaveLen(3))
			Expect(infos[0]).To(Equal(core.AccessInfo{
				Kind: core.WriteData, Address: 8, Level: memory.FoundInMem, Value: 5,
			}))
			Expect(infos[1]).To(Equal(core.AccessInfo{
				Kind: core.ReadData, Address: 8, Level: memory.FoundInL1, Value: 5,
			}))
			Expect(infos[2].Level).To(Equal(memory.AddressOutOfRange))
			Expect(infos[2].Err).To(MatchError(memory.ErrAddressOutOfRange))
		})
	})
})

var _ = Describe("AccessKind", func() {
	It("should name the trace commands", func() {
		Expect(core.ReadData.String()).To(Equal("rd"))
		Expect(core.ReadInstruction.String()).To(Equal("ri"))
		Expect(core.WriteData.String()).To(Equal("wd"))
		Expect(core.WriteInstruction.String()).To(Equal("wi"))
		Expect(core.WriteData.IsWrite()).To(BeTrue())
		Expect(core.ReadInstruction.IsWrite()).To(BeFalse())
	})
})
