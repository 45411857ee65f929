package swap_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tracehm/memsim/addr"
	"github.com/sarchlab/tracehm/memsim/flatmem"
	"github.com/sarchlab/tracehm/memsim/swap"
)

func TestSwap(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Swap Suite")
}

func newMem() *flatmem.FlatMemory {
	return flatmem.New(flatmem.Params{
		FastCapacity:     0x12000,
		SlowCapacity:     0x16000,
		FastReadLatency:  1,
		FastWriteLatency: 1,
		SlowReadLatency:  2,
		SlowWriteLatency: 2,
		FastBlock:        2,
	})
}

var _ = Describe("Planner.GetReplUtil", func() {
	It("scores the distance between the coldest fast region and warmest slow region", func() {
		mem := newMem()
		// rank list coldest..warmest: region 0 (fast), region 5 (slow)
		rank := []uint64{0, 5}
		p := swap.NewPlanner(rank, mem, 0)

		util, slowRegion, fastRegion, ok := p.GetReplUtil()
		Expect(ok).To(BeTrue())
		Expect(slowRegion).To(Equal(uint64(5)))
		Expect(fastRegion).To(Equal(uint64(0)))
		// slowRank=1, fastRank=0: util = 3*(1-0) - 6 = -3
		Expect(util).To(BeNumerically("~", -3.0, 1e-9))
	})

	It("reports not-ok when no region currently maps into the fast tier", func() {
		mem := newMem()
		rank := []uint64{9, 10} // both slow under fastBlock=2
		p := swap.NewPlanner(rank, mem, 0)
		_, _, _, ok := p.GetReplUtil()
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("Planner.FindBestRestoreChoice", func() {
	It("returns the -1 sentinel when no fast region was ever swapped", func() {
		mem := newMem()
		rank := []uint64{0, 1}
		p := swap.NewPlanner(rank, mem, 0)
		util, _, _ := p.FindBestRestoreChoice()
		Expect(util).To(Equal(-1.0))
	})

	It("scores restoring a previously-swapped fast region", func() {
		mem := newMem()
		// A full SlowSwap 2-cycle: region 9's page now occupies fast page 0,
		// and region 0's page has been pushed out to slow page 9.
		page9 := addr.Page(addr.Make(0, 9, 0))
		page0 := addr.Page(addr.Make(0, 0, 0))
		mem.Set(page9, page0)
		mem.Set(page0, page9)

		rank := []uint64{0, 9} // region 0 coldest, region 9 warmest
		p := swap.NewPlanner(rank, mem, 0)

		util, src, dst := p.FindBestRestoreChoice()
		Expect(src).To(Equal(page9))
		Expect(dst).To(Equal(page0))
		// pageRank (region 9) = 1, prevRank (region 0) = 0
		// util = 3*(0-1) + 1 - 6 = -8
		Expect(util).To(BeNumerically("~", -8.0, 1e-9))
	})
})
