// Package swap implements the SmartSwap planner: given a set's hotness
// ranking and the current mapping, it scores candidate replace and restore
// moves and returns the best one.
package swap

import (
	"github.com/sarchlab/tracehm/memsim/addr"
	"github.com/sarchlab/tracehm/memsim/flatmem"
)

// Scoring constants, fixed at compile time per spec §4.4.
const (
	// Alpha weights the benefit of relative rank distance.
	Alpha = 3.0
	// Beta is the fixed cost of one migration.
	Beta = 6.0
	// Gamma is the benefit of freeing an empty slot / restoring identity.
	Gamma = 1.0
)

// Planner partitions a set's regions by current tier, from a hotness rank
// list (coldest first, warmest last) and the set's FlatMemory.
type Planner struct {
	rankList []uint64 // coldest first, warmest last
	flatmem  *flatmem.FlatMemory
	setID    uint64

	// slowMRURegion is the warmest slow region seen in the rank list.
	slowMRURegion int64
	// fastRegions are all regions currently mapped into the fast tier, in
	// ascending (rank-list) order.
	fastRegions []uint64
}

// NewPlanner builds a Planner from a set's hotness rank list.
func NewPlanner(rankList []uint64, mem *flatmem.FlatMemory, setID uint64) *Planner {
	p := &Planner{
		rankList:      rankList,
		flatmem:       mem,
		setID:         setID,
		slowMRURegion: -1,
	}
	for _, region := range rankList {
		pPage := addr.Page(addr.Make(setID, region, 0))
		if mem.PPageInFast(pPage) {
			p.fastRegions = append(p.fastRegions, region)
		} else {
			p.slowMRURegion = int64(region)
		}
	}
	return p
}

// searchRank returns the index of region in the rank list, or -1.
func (p *Planner) searchRank(region uint64) int {
	for i, r := range p.rankList {
		if r == region {
			return i
		}
	}
	return -1
}

// GetReplUtil scores swapping the coldest fast region for the warmest slow
// region. ok is false only when the set has no fast-resident region at all
// (nothing to evict); a set with no slow-resident region still scores, via
// a rank lookup that simply misses (-1), exactly as the reference planner
// falls through when slowMRURegion was never assigned.
func (p *Planner) GetReplUtil() (util float64, slowRegion, fastRegion uint64, ok bool) {
	if len(p.fastRegions) == 0 {
		return 0, 0, 0, false
	}
	slowRank := p.searchRank(uint64(p.slowMRURegion))
	fastRank := p.searchRank(p.fastRegions[0])
	util = Alpha*float64(slowRank-fastRank) - Beta
	return util, uint64(p.slowMRURegion), p.fastRegions[0], true
}

// FindBestRestoreChoice scores undoing an earlier swap to reclaim a fast
// slot: for each fast region whose current page was itself swapped (its
// inverse differs from itself), compute the restore utility and keep the
// maximum. If no fast region was ever swapped, it returns the same -1
// sentinel utility the reference planner does (never chosen over a
// non-negative repl utility, but still comparable against one).
func (p *Planner) FindBestRestoreChoice() (util float64, srcPage, dstPage uint64) {
	maxUtil := -1.0
	found := false
	var bestSrc, bestDst uint64

	for _, region := range p.fastRegions {
		pPage := addr.Page(addr.Make(p.setID, region, 0))
		prevPage := p.flatmem.TranslateInverse(pPage)
		if prevPage == pPage {
			continue
		}
		prevRegion := addr.RegionOfPage(prevPage)
		pageRank := p.searchRank(region)
		prevRank := p.searchRank(prevRegion)

		candidate := Alpha*float64(prevRank-pageRank) + Gamma - Beta
		if !found || candidate > maxUtil {
			found = true
			maxUtil = candidate
			bestSrc, bestDst = pPage, prevPage
		}
	}

	return maxUtil, bestSrc, bestDst
}
