package cache_test

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/cache"
)

var _ = Describe("FIFOVictimFinder", func() {
	It("should cycle through the ways regardless of validity", func() {
		set := &akitacache.Set{}
		for i := 0; i < 3; i++ {
			set.Blocks = append(set.Blocks, &akitacache.Block{WayID: i, IsValid: i == 1})
		}

		finder := cache.NewFIFOVictimFinder()

		ways := []int{}
		for i := 0; i < 7; i++ {
			ways = append(ways, finder.FindVictim(set).WayID)
		}

		Expect(ways).To(Equal([]int{0, 1, 2, 0, 1, 2, 0}))
		Expect(finder.Next()).To(Equal(1))
	})
})
