// Package controller implements the Flat Controller: the top-level
// orchestrator that owns a FlatMemory and a set-id -> MetaCache mapping,
// and drives hotness tracking, translation, routing, and migration for
// each incoming event.
package controller

import (
	"math/rand/v2"

	"github.com/sarchlab/tracehm/internal/xlog"
	"github.com/sarchlab/tracehm/memsim/addr"
	"github.com/sarchlab/tracehm/memsim/event"
	"github.com/sarchlab/tracehm/memsim/flatmem"
	"github.com/sarchlab/tracehm/memsim/metacache"
	"github.com/sarchlab/tracehm/memsim/policy"
	"github.com/sarchlab/tracehm/memsim/swap"
)

// maxSmartSwapIterations caps SmartSwap's iterative search (spec §4.5: a
// safety bound, not expected to be hit in well-formed runs).
const maxSmartSwapIterations = 10

// FlatController is the top-level orchestrator. It owns exactly one
// FlatMemory and lazily creates one MetaCache per set id on first access.
type FlatController struct {
	Config  *Config
	flatmem *flatmem.FlatMemory
	metaset map[uint64]*metacache.MetaCache

	accessCount uint64

	fastSwapCount       uint64
	slowSwapCount       uint64
	smartSwapReplCount  uint64
	smartSwapRestoreCnt uint64

	nextAvailable uint64

	metrics *Metrics
}

// New creates a FlatController from a Config. metrics may be nil.
func New(cfg *Config, metrics *Metrics) *FlatController {
	return &FlatController{
		Config: cfg,
		flatmem: flatmem.New(flatmem.Params{
			FastCapacity:     cfg.FastCapacity,
			SlowCapacity:     cfg.SlowCapacity,
			FastReadLatency:  cfg.FastReadLatency,
			FastWriteLatency: cfg.FastWriteLatency,
			SlowReadLatency:  cfg.SlowReadLatency,
			SlowWriteLatency: cfg.SlowWriteLatency,
			FastBlock:        cfg.FastBlock,
		}),
		metaset: make(map[uint64]*metacache.MetaCache),
		metrics: metrics,
	}
}

// metasetFor lazily creates a set's MetaCache on first access; a MetaCache
// is never destroyed during a run.
func (c *FlatController) metasetFor(setID uint64) *metacache.MetaCache {
	m, ok := c.metaset[setID]
	if !ok {
		m = metacache.New(setID, c.flatmem, c.Config.TransCacheCapacity)
		c.metaset[setID] = m
	}
	return m
}

// SyncCycle synchronizes FlatMemory's tiers and advances the controller's
// own cycle to match.
func (c *FlatController) SyncCycle() {
	c.flatmem.SyncCycle()
	c.nextAvailable = max(c.nextAvailable, c.flatmem.NextAvailable)
}

// Access is the per-event entry point: track hotness, probe the
// translation cache, route the access through FlatMemory, re-sync, then
// conditionally trigger migration.
func (c *FlatController) Access(e *event.MemEvent) {
	c.accessCount++
	setID := addr.Set(e.PAddr)
	ms := c.metasetFor(setID)
	hitsBefore, missesBefore := c.flatmem.CachedTransNum, c.flatmem.UncachedTransNum

	ms.TrackHotness(e, c.Config.ReplPolicy)
	ms.AccessTransCache(e.PAddr)

	c.flatmem.Request(e)
	c.SyncCycle()

	c.recordAccessMetrics(e)
	c.postAccess(e)

	if c.metrics != nil {
		c.metrics.TransCacheHit.Add(float64(c.flatmem.CachedTransNum - hitsBefore))
		c.metrics.TransCacheMiss.Add(float64(c.flatmem.UncachedTransNum - missesBefore))
	}
}

func (c *FlatController) recordAccessMetrics(e *event.MemEvent) {
	if c.metrics == nil || e.IsMigration {
		return
	}
	if c.flatmem.AddrInFast(e.MAddr) {
		c.metrics.FastAccess.Inc()
	} else {
		c.metrics.SlowAccess.Inc()
	}
}

// trigMonitor returns true iff the access went to the slow tier and (the
// bypass policy is Never, or a fresh uniform draw falls at or below the
// bypass probability). The bypass policy suppresses migration, never the
// original access.
func (c *FlatController) trigMonitor(e *event.MemEvent) bool {
	inFast := c.flatmem.PAddrInFast(e.PAddr)
	switch c.Config.BypassPolicy {
	case policy.Never:
		return !inFast
	case policy.Probability:
		if rand.Float64() > c.Config.BypassProbability {
			return false
		}
		return !inFast
	default:
		return false
	}
}

// postAccess checks whether this access should trigger a migration, and if
// the set has an eligible victim, starts one.
func (c *FlatController) postAccess(e *event.MemEvent) {
	setID := addr.Set(e.PAddr)
	if !c.trigMonitor(e) {
		return
	}

	ms := c.metasetFor(setID)
	victimRegion := ms.FindVictim()
	if victimRegion < 0 {
		return
	}

	victimAddr := addr.Make(setID, uint64(victimRegion), 0)
	c.startMigration(victimAddr, e.PAddr, c.Config.SwapPolicy)
}

// genSwapEvent issues the four serialized migration events that model a
// swap: read addr1, read addr2, write addr1, write addr2, syncing cycles
// between each. IsMigration excludes these from tier access counters.
func (c *FlatController) genSwapEvent(pAddr1, pAddr2 uint64) {
	c.flatmem.Request(event.NewMigration(pAddr1, false, c.nextAvailable))
	c.flatmem.SyncCycle()
	c.flatmem.Request(event.NewMigration(pAddr2, false, c.nextAvailable))
	c.flatmem.SyncCycle()
	c.flatmem.Request(event.NewMigration(pAddr1, true, c.nextAvailable))
	c.flatmem.SyncCycle()
	c.flatmem.Request(event.NewMigration(pAddr2, true, c.nextAvailable))
	c.flatmem.SyncCycle()
}

// startMigration executes the configured swap policy between a victim
// (pAddr1, currently fast) and a challenger (pAddr2, currently slow).
// Precisely one of the two must currently reside in the fast tier.
func (c *FlatController) startMigration(pAddr1, pAddr2 uint64, swapPolicy policy.Swap) {
	inFast1 := c.flatmem.PAddrInFast(pAddr1)
	inFast2 := c.flatmem.PAddrInFast(pAddr2)
	if inFast1 == inFast2 {
		panic("controller: start_migration requires exactly one side in the fast tier")
	}

	setID := addr.Set(pAddr1)

	switch swapPolicy {
	case policy.FastSwap:
		c.fastSwap(pAddr1, pAddr2, setID)
	case policy.SlowSwap:
		c.slowSwap(pAddr1, pAddr2, setID)
	case policy.SmartSwap:
		c.smartSwap(setID)
	case policy.NoSwap:
		// no-op
	}

	c.SyncCycle()
}

func (c *FlatController) fastSwap(pAddr1, pAddr2, setID uint64) {
	c.genSwapEvent(pAddr1, pAddr2)
	c.fastSwapCount++
	if c.metrics != nil {
		c.metrics.Migrations.WithLabelValues("fastswap", "swap").Inc()
	}

	ms := c.metasetFor(setID)
	mAddr1 := ms.AccessTransCache(pAddr1)
	mAddr2 := ms.AccessTransCache(pAddr2)
	mPage1 := addr.Page(mAddr1)
	mPage2 := addr.Page(mAddr2)
	pPage1 := addr.Page(pAddr1)
	pPage2 := addr.Page(pAddr2)

	c.flatmem.Set(pPage1, mPage2)
	c.flatmem.Set(pPage2, mPage1)
}

func (c *FlatController) slowSwap(pAddr1, pAddr2, setID uint64) {
	ms := c.metasetFor(setID)

	// Corner case: the challenger's machine address is already in the
	// fast tier, so redirect addr1 to the challenger's real current page.
	if c.flatmem.AddrInFast(pAddr2) {
		pAddr1 = ms.AccessTransCache(pAddr2)
	}
	pPage1 := addr.Page(pAddr1)

	mAddr1 := ms.AccessTransCache(pAddr1)
	mPage1 := addr.Page(mAddr1)

	if pAddr1 != mAddr1 {
		// The victim's fast slot was itself previously swapped; restore it
		// to identity before reusing it.
		c.slowSwapCount++
		if c.metrics != nil {
			c.metrics.Migrations.WithLabelValues("slowswap", "restore").Inc()
		}
		c.genSwapEvent(pAddr1, mAddr1)
		c.flatmem.Set(pPage1, pPage1)
		c.flatmem.Set(mPage1, mPage1)
	}

	c.slowSwapCount++
	if c.metrics != nil {
		c.metrics.Migrations.WithLabelValues("slowswap", "swap").Inc()
	}
	c.genSwapEvent(mAddr1, pAddr2)
	pPage2 := addr.Page(pAddr2)
	c.flatmem.Set(pPage2, mPage1)
	c.flatmem.Set(mPage1, pPage2)

	if c.flatmem.TableLen()%2 != 0 {
		panic("controller: slow-swap broke the 2-cycle invariant")
	}
}

func (c *FlatController) smartSwap(setID uint64) {
	ms := c.metasetFor(setID)
	type pair struct{ a, b uint64 }
	var history []pair

	for iteration := 0; iteration < maxSmartSwapIterations; iteration++ {
		rank := ms.HotnessRank()
		planner := swap.NewPlanner(rank, c.flatmem, setID)

		replUtil, replSlow, replFast, replOK := planner.GetReplUtil()
		restoreUtil, restoreSrc, restoreDst := planner.FindBestRestoreChoice()

		best := restoreUtil
		if replOK && replUtil > restoreUtil {
			best = replUtil
		}
		if best <= 0 {
			return
		}

		var region1, region2 uint64
		isRepl := replOK && replUtil > restoreUtil
		if isRepl {
			region1, region2 = replSlow, replFast
			c.smartSwapReplCount++
			if c.metrics != nil {
				c.metrics.Migrations.WithLabelValues("smartswap", "replace").Inc()
			}
		} else {
			region1 = addr.RegionOfPage(restoreSrc)
			region2 = addr.RegionOfPage(restoreDst)
			c.smartSwapRestoreCnt++
			if c.metrics != nil {
				c.metrics.Migrations.WithLabelValues("smartswap", "restore").Inc()
			}
		}

		swapAddr1 := addr.Make(setID, region1, 0)
		swapAddr2 := addr.Make(setID, region2, 0)

		seen := false
		for _, p := range history {
			if p.a == swapAddr1 && p.b == swapAddr2 {
				seen = true
				break
			}
		}
		if seen {
			return
		}
		history = append(history, pair{swapAddr1, swapAddr2})

		mAddr1 := ms.AccessTransCache(swapAddr1)
		mAddr2 := ms.AccessTransCache(swapAddr2)

		c.genSwapEvent(swapAddr1, swapAddr2)

		c.flatmem.Set(addr.Page(swapAddr1), addr.Page(mAddr2))
		c.flatmem.Set(addr.Page(swapAddr2), addr.Page(mAddr1))

		if iteration == maxSmartSwapIterations-1 {
			xlog.Warnf("smartswap: hit iteration bound for set %d", setID)
		}
	}
}

// Snapshot produces the final statistics report described in spec §6.
func (c *FlatController) Snapshot() Snapshot {
	return Snapshot{
		Config:              c.Config.AsMap(),
		FastSwapCount:       c.fastSwapCount,
		SlowSwapCount:       c.slowSwapCount,
		SmartSwapReplCount:  c.smartSwapReplCount,
		SmartSwapRestoreCnt: c.smartSwapRestoreCnt,
		BypassProbability:   c.Config.BypassProbability,
		FastBusyCycles:      c.flatmem.Fast.BusyCycles,
		SlowBusyCycles:      c.flatmem.Slow.BusyCycles,
		NextAvailable:       c.nextAvailable,
		TransCacheHits:      c.flatmem.CachedTransNum,
		TransCacheMisses:    c.flatmem.UncachedTransNum,
		FastAccessCount:     c.flatmem.Fast.AccessCount,
		SlowAccessCount:     c.flatmem.Slow.AccessCount,
	}
}
