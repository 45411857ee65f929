// Package event defines the memory-reference event that flows through the
// flat-memory controller.
package event

// MemEvent is a single memory reference. PAddr is the software-visible
// address on input; MAddr is filled in by FlatMemory's translation.
// CurrentCycle is a running timestamp, updated in place by whichever Tier
// services the request.
type MemEvent struct {
	// PAddr is the physical (software-visible) address.
	PAddr uint64
	// MAddr is the machine (physically resident) address, set by translation.
	MAddr uint64
	// IsWrite is true for a store, false for a load.
	IsWrite bool
	// CurrentCycle is the event's running cycle timestamp.
	CurrentCycle uint64
	// IsMigration is true when the controller emitted this event as part of
	// a swap; migration events are excluded from tier access counters.
	IsMigration bool
}

// New creates a MemEvent for a regular (non-migration) access.
func New(pAddr uint64, isWrite bool, currentCycle uint64) *MemEvent {
	return &MemEvent{
		PAddr:        pAddr,
		MAddr:        pAddr,
		IsWrite:      isWrite,
		CurrentCycle: currentCycle,
	}
}

// NewMigration creates a MemEvent issued internally by a swap.
func NewMigration(pAddr uint64, isWrite bool, currentCycle uint64) *MemEvent {
	e := New(pAddr, isWrite, currentCycle)
	e.IsMigration = true
	return e
}
