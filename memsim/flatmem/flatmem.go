// Package flatmem owns the two memory tiers, the page-translation table,
// and cycle synchronization between them.
package flatmem

import (
	"github.com/sarchlab/tracehm/memsim/addr"
	"github.com/sarchlab/tracehm/memsim/event"
	"github.com/sarchlab/tracehm/memsim/tier"
)

// Params configures a FlatMemory instance.
type Params struct {
	FastCapacity     uint64
	SlowCapacity     uint64
	FastReadLatency  uint64
	FastWriteLatency uint64
	SlowReadLatency  uint64
	SlowWriteLatency uint64
	// FastBlock is the fast/slow boundary: regions [0, FastBlock) are fast.
	FastBlock uint64
}

// FlatMemory owns exactly one fast Tier and one slow Tier, the translation
// table, and the fast-tier region threshold.
type FlatMemory struct {
	Fast *tier.Tier
	Slow *tier.Tier

	// FastBlock regions below this index live in the fast tier.
	FastBlock uint64
	// TransTableReadLatency is charged by MetaCache on a translation-cache miss.
	TransTableReadLatency uint64

	// NextAvailable is this FlatMemory's own synchronized cycle.
	NextAvailable uint64

	// CachedTransNum / UncachedTransNum count translation-cache probes.
	CachedTransNum   uint64
	UncachedTransNum uint64

	// table maps physical page -> machine page. Identity entries (key ==
	// value) are never stored; see Set.
	table map[uint64]uint64
}

// New creates a FlatMemory from the given parameters.
func New(p Params) *FlatMemory {
	return &FlatMemory{
		Fast:                  tier.New(p.FastCapacity, p.FastReadLatency, p.FastWriteLatency, "fast"),
		Slow:                  tier.New(p.SlowCapacity, p.SlowReadLatency, p.SlowWriteLatency, "slow"),
		FastBlock:             p.FastBlock,
		TransTableReadLatency: p.FastReadLatency,
		table:                 make(map[uint64]uint64),
	}
}

// TableLen returns the number of non-identity entries currently stored.
func (f *FlatMemory) TableLen() int {
	return len(f.table)
}

// TableGet returns the translation for a physical page, defaulting to
// identity when absent.
func (f *FlatMemory) TableGet(pPage uint64) uint64 {
	if mPage, ok := f.table[pPage]; ok {
		return mPage
	}
	return pPage
}

// Set installs a translation table entry. Per the identity-canonicalization
// invariant, if newPPage == newMPage any existing entry is removed instead
// of storing an identity mapping.
func (f *FlatMemory) Set(newPPage, newMPage uint64) {
	if newPPage == newMPage {
		delete(f.table, newPPage)
		return
	}
	f.table[newPPage] = newMPage
}

// Remove deletes a translation table entry if present.
func (f *FlatMemory) Remove(page uint64) {
	delete(f.table, page)
}

// Translate splits a physical address into (page, offset), looks up the
// page's machine translation, and reassembles the machine address.
func (f *FlatMemory) Translate(pAddr uint64) uint64 {
	pPage := addr.Page(pAddr)
	offset := addr.Offset(pAddr)
	mPage := f.TableGet(pPage)
	return (mPage << addr.PageLow) | offset
}

// TranslateInverse returns the physical page whose current translation
// equals pPage. If pPage itself has no outgoing translation-table entry,
// it cannot be anyone's swap target either, so the answer is identity.
// Otherwise pPage is a key in the table, and in a well-formed table
// (SlowSwap's 2-cycle invariant, or a FastSwap chain) some entry's value
// must equal pPage; if none is found the table is malformed and
// TranslateInverse panics rather than silently returning identity.
func (f *FlatMemory) TranslateInverse(pPage uint64) uint64 {
	if _, ok := f.table[pPage]; !ok {
		return pPage
	}
	for candidatePage, mPage := range f.table {
		if mPage == pPage {
			return candidatePage
		}
	}
	panic("flatmem: translation table malformed, no inverse for present key")
}

// InFastRegion reports whether a region id falls in the fast tier.
func (f *FlatMemory) InFastRegion(region uint64) bool {
	return region < f.FastBlock
}

// PageInFast reports whether a page (set<<RegionBits|region) lives in fast.
func (f *FlatMemory) PageInFast(page uint64) bool {
	return f.InFastRegion(addr.RegionOfPage(page))
}

// AddrInFast reports whether a machine/physical address's region field
// (taken directly, not translated) lives in fast.
func (f *FlatMemory) AddrInFast(address uint64) bool {
	return f.InFastRegion(addr.Region(address))
}

// PAddrInFast translates a physical address and tests the machine region.
func (f *FlatMemory) PAddrInFast(pAddr uint64) bool {
	mAddr := f.Translate(pAddr)
	return f.AddrInFast(mAddr)
}

// PPageInFast translates a physical page and tests the machine region.
func (f *FlatMemory) PPageInFast(pPage uint64) bool {
	mPage := f.TableGet(pPage)
	return f.PageInFast(mPage)
}

// SyncCycle imposes fast.NextAvailable == slow.NextAvailable == self's
// cycle, taking the max across both tiers (a serialized timing model).
func (f *FlatMemory) SyncCycle() {
	f.NextAvailable = max(f.Fast.NextAvailable, f.Slow.NextAvailable)
	f.Fast.NextAvailable = f.NextAvailable
	f.Slow.NextAvailable = f.NextAvailable
}

// AdvanceCycle raises one tier's NextAvailable by delta (relative to the
// current synchronized cycle), charges its busy counter, and refreshes
// self's cycle to the new max. It does not re-sync the other tier.
func (f *FlatMemory) AdvanceCycle(fast bool, delta uint64) {
	if fast {
		f.Fast.NextAvailable = max(f.Fast.NextAvailable, f.NextAvailable) + delta
		f.Fast.BusyCycles += delta
	} else {
		f.Slow.NextAvailable = max(f.Slow.NextAvailable, f.NextAvailable) + delta
		f.Slow.BusyCycles += delta
	}
	f.NextAvailable = max(f.Fast.NextAvailable, f.Slow.NextAvailable)
}

// Request translates the event's address, routes it to the correct tier,
// and re-synchronizes both tiers' cycles.
func (f *FlatMemory) Request(e *event.MemEvent) bool {
	e.MAddr = f.Translate(e.PAddr)
	var ok bool
	if f.AddrInFast(e.MAddr) {
		ok = f.Fast.Request(e)
	} else {
		ok = f.Slow.Request(e)
	}
	f.SyncCycle()
	return ok
}
