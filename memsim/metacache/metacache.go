// Package metacache implements the per-set Meta Cache: a region-level
// hotness tracker under a pluggable replacement metric, plus a small cache
// of recently-translated pages that elides translation-table read latency.
package metacache

import (
	"math/rand/v2"
	"sort"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"

	"github.com/sarchlab/tracehm/memsim/addr"
	"github.com/sarchlab/tracehm/memsim/event"
	"github.com/sarchlab/tracehm/memsim/flatmem"
	"github.com/sarchlab/tracehm/memsim/policy"
)

// DefaultTransCacheCapacity is the per-set translation-cache size used when
// a MetaCache is not given an explicit override (REDESIGN: previously
// hard-coded at 4; exposed here as configurable).
const DefaultTransCacheCapacity = 4

// entry holds a region's hotness scalar. Its meaning is policy-dependent:
// LRU/LRULIP store a timestamp, LFU an access count, Random a fixed score
// assigned at insertion.
type entry struct {
	hotness int64
}

// MetaCache is the per-set structure: hotness entries keyed by region id,
// and a small Akita cache directory used as the bounded, LRU-evicted
// translation cache (the same directory/victim-finder machinery the
// teacher's L1 cache model uses, repurposed here as a 1-set, N-way,
// page-tag-only cache with no data storage).
type MetaCache struct {
	SetID   uint64
	flatmem *flatmem.FlatMemory

	// timestamp is the monotone local clock driving LRU/LRULIP hotness.
	timestamp int64

	entries map[uint64]*entry

	transCache         *akitacache.DirectoryImpl
	transCacheCapacity int
}

// New creates a Meta Cache for setID, borrowing mem for translation and
// cycle charges. Its lifetime is bounded by whichever FlatController owns
// both.
func New(setID uint64, mem *flatmem.FlatMemory, transCacheCapacity int) *MetaCache {
	if transCacheCapacity <= 0 {
		transCacheCapacity = DefaultTransCacheCapacity
	}
	return &MetaCache{
		SetID:              setID,
		flatmem:            mem,
		entries:            make(map[uint64]*entry),
		transCache:         akitacache.NewDirectory(1, transCacheCapacity, 1, akitacache.NewLRUVictimFinder()),
		transCacheCapacity: transCacheCapacity,
	}
}

// TrackHotness updates the region-level hotness entry for event's physical
// region under the given replacement policy.
func (m *MetaCache) TrackHotness(e *event.MemEvent, repl policy.Repl) {
	if repl == policy.LRU || repl == policy.LRULIP {
		m.timestamp++
	}

	pRegion := addr.Region(e.PAddr)

	newEntry := false
	if _, ok := m.entries[pRegion]; !ok {
		newEntry = true
		switch repl {
		case policy.LRU, policy.LRULIP, policy.LFU:
			m.entries[pRegion] = &entry{hotness: 0}
		case policy.Random:
			// Spec calls for a score in [1, (1<<addr.SetBits)^3]; that
			// exponent (96 bits for the default 48-bit address layout)
			// overflows int64, so the exponent is clamped to 62 bits.
			// Only relative ordering among ties matters, so the clamp
			// does not change behavior.
			const maxExp = 62
			exp := 3 * addr.SetBits
			if exp > maxExp {
				exp = maxExp
			}
			span := int64(1) << exp
			m.entries[pRegion] = &entry{hotness: 1 + rand.Int64N(span)}
		}
	}

	switch repl {
	case policy.LFU:
		m.entries[pRegion].hotness++
	case policy.LRU:
		m.entries[pRegion].hotness = m.timestamp
	case policy.LRULIP:
		if !newEntry {
			m.entries[pRegion].hotness = m.timestamp
		}
	case policy.Random:
		// no update on existing entries
	}
}

// AccessTransCache probes the bounded translation cache for pAddr's page.
// A miss charges one fast-tier translation-read latency and re-syncs
// cycles; a hit is free. Either way it returns FlatMemory's translation of
// the address.
func (m *MetaCache) AccessTransCache(pAddr uint64) uint64 {
	pPage := addr.Page(pAddr)

	block := m.transCache.Lookup(0, pPage)
	if block == nil || !block.IsValid {
		m.flatmem.UncachedTransNum++
		m.flatmem.AdvanceCycle(true, m.flatmem.TransTableReadLatency)
		m.flatmem.SyncCycle()

		victim := m.transCache.FindVictim(pPage)
		if victim != nil {
			victim.Tag = pPage
			victim.IsValid = true
			m.transCache.Visit(victim)
		}
	} else {
		m.flatmem.CachedTransNum++
		m.transCache.Visit(block)
	}

	return m.flatmem.Translate(pAddr)
}

// FindVictim returns the region, among those whose physical address
// currently maps into the fast tier, with minimum hotness. Returns -1 if
// no such region exists.
func (m *MetaCache) FindVictim() int64 {
	const inf = int64(1) << 62

	minHotness := inf
	minRegion := int64(-1)
	for region, item := range m.entries {
		pAddr := addr.Make(m.SetID, region, 0)
		if !m.flatmem.PAddrInFast(pAddr) {
			continue
		}
		if item.hotness < minHotness {
			minHotness = item.hotness
			minRegion = int64(region)
		}
	}
	return minRegion
}

// HotnessRank returns regions sorted ascending by hotness: coldest first,
// warmest last.
func (m *MetaCache) HotnessRank() []uint64 {
	regions := make([]uint64, 0, len(m.entries))
	for region := range m.entries {
		regions = append(regions, region)
	}
	sort.Slice(regions, func(i, j int) bool {
		return m.entries[regions[i]].hotness < m.entries[regions[j]].hotness
	})
	return regions
}
