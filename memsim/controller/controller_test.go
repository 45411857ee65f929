package controller_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tracehm/memsim/addr"
	"github.com/sarchlab/tracehm/memsim/controller"
	"github.com/sarchlab/tracehm/memsim/event"
	"github.com/sarchlab/tracehm/memsim/policy"
)

func smallConfig() *controller.Config {
	return &controller.Config{
		FastCapacity:       0x20000,
		SlowCapacity:       0x100000,
		FastReadLatency:    1,
		FastWriteLatency:   1,
		SlowReadLatency:    2,
		SlowWriteLatency:   2,
		FastBlock:          2,
		SwapPolicy:         policy.FastSwap,
		BypassPolicy:       policy.Never,
		BypassProbability:  0,
		ReplPolicy:         policy.LRU,
		TransCacheCapacity: 4,
	}
}

var _ = Describe("FlatController", func() {
	Describe("scenario: a single fast-region read", func() {
		It("never triggers a migration", func() {
			cfg := smallConfig()
			ctl := controller.New(cfg, nil)

			e := event.New(addr.Make(0, 0, 0), false, 0)
			ctl.Access(e)

			snap := ctl.Snapshot()
			Expect(snap.FastSwapCount).To(Equal(uint64(0)))
			Expect(snap.FastAccessCount).To(Equal(uint64(1)))
		})
	})

	Describe("scenario: FastSwap migration effect", func() {
		It("swaps the coldest fast region with a slow-tier access", func() {
			cfg := smallConfig()
			cfg.SwapPolicy = policy.FastSwap
			ctl := controller.New(cfg, nil)

			e1 := event.New(addr.Make(0, 0, 0), false, 0) // region 0, fast
			ctl.Access(e1)

			e2 := event.New(addr.Make(0, 5, 0), false, 0) // region 5, slow
			ctl.Access(e2)

			snap := ctl.Snapshot()
			Expect(snap.FastSwapCount).To(Equal(uint64(1)))
		})
	})

	Describe("scenario: SlowSwap preserves the 2-cycle invariant", func() {
		It("completes without panicking across repeated migrations", func() {
			cfg := smallConfig()
			cfg.SwapPolicy = policy.SlowSwap
			ctl := controller.New(cfg, nil)

			Expect(func() {
				for region := uint64(0); region < 2; region++ {
					ctl.Access(event.New(addr.Make(0, region, 0), false, 0))
				}
				for region := uint64(8); region < 12; region++ {
					ctl.Access(event.New(addr.Make(0, region, 0), false, 0))
				}
			}).NotTo(Panic())

			snap := ctl.Snapshot()
			Expect(snap.SlowSwapCount).To(BeNumerically(">", 0))
		})
	})

	Describe("scenario: SmartSwap", func() {
		It("runs to completion and accounts replace/restore moves separately", func() {
			cfg := smallConfig()
			cfg.SwapPolicy = policy.SmartSwap
			ctl := controller.New(cfg, nil)

			for region := uint64(0); region < 2; region++ {
				ctl.Access(event.New(addr.Make(0, region, 0), false, 0))
			}
			for i := 0; i < 3; i++ {
				for region := uint64(8); region < 14; region++ {
					ctl.Access(event.New(addr.Make(0, region, 0), false, 0))
				}
			}

			snap := ctl.Snapshot()
			Expect(snap.SmartSwapReplCount + snap.SmartSwapRestoreCnt).To(BeNumerically(">", 0))
		})
	})

	Describe("scenario: bypass probability 0 guarantees zero migrations", func() {
		It("never migrates regardless of slow-tier traffic", func() {
			cfg := smallConfig()
			cfg.SwapPolicy = policy.FastSwap
			cfg.BypassPolicy = policy.Probability
			cfg.BypassProbability = 0.0
			ctl := controller.New(cfg, nil)

			for region := uint64(5); region < 15; region++ {
				ctl.Access(event.New(addr.Make(0, region, 0), false, 0))
			}

			snap := ctl.Snapshot()
			Expect(snap.FastSwapCount).To(Equal(uint64(0)))
		})
	})

	Describe("Snapshot", func() {
		It("renders the configuration echo and statistics report", func() {
			cfg := smallConfig()
			ctl := controller.New(cfg, nil)
			ctl.Access(event.New(addr.Make(0, 0, 0), false, 0))

			report := ctl.Snapshot().String()
			Expect(report).To(ContainSubstring("display all configs"))
			Expect(report).To(ContainSubstring("display all statistics"))
			Expect(report).To(ContainSubstring("fastswap count"))
		})
	})
})
