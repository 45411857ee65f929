// Package tier models a single memory tier: a capacity ceiling and
// independent read/write latencies, with serialized per-tier timing.
package tier

import (
	"github.com/sarchlab/tracehm/internal/xlog"
	"github.com/sarchlab/tracehm/memsim/event"
)

// Tier is one memory pool (fast or slow). Capacity, ReadLatency,
// WriteLatency, and Name are fixed at construction; NextAvailable and
// BusyCycles accumulate across requests.
type Tier struct {
	// Capacity is the machine-address ceiling for this tier.
	Capacity uint64
	// ReadLatency is the per-access latency for loads.
	ReadLatency uint64
	// WriteLatency is the per-access latency for stores.
	WriteLatency uint64
	// Name identifies the tier in diagnostics ("fast" or "slow").
	Name string

	// NextAvailable is the next cycle at which this tier can accept a
	// request; monotonically non-decreasing across Request calls.
	NextAvailable uint64
	// BusyCycles is the accumulated latency charged to this tier.
	BusyCycles uint64
	// AccessCount counts non-migration requests serviced by this tier.
	AccessCount uint64
}

// New creates a Tier with the given capacity and latencies.
func New(capacity, readLatency, writeLatency uint64, name string) *Tier {
	return &Tier{
		Capacity:     capacity,
		ReadLatency:  readLatency,
		WriteLatency: writeLatency,
		Name:         name,
	}
}

// Request services one event against this tier. No reordering is modeled
// across requests to the same tier: NextAvailable after return is always
// >= the event's cycle on entry, plus the operation's latency.
//
// If the event's machine address exceeds capacity, the request is rejected
// (logged, no state change) and Request returns false.
func (t *Tier) Request(e *event.MemEvent) bool {
	if e.MAddr > t.Capacity {
		xlog.Errorf("out of %s: %#x > %#x", t.Name, e.MAddr, t.Capacity)
		return false
	}

	latency := t.ReadLatency
	if e.IsWrite {
		latency = t.WriteLatency
	}

	t.NextAvailable = max(t.NextAvailable, e.CurrentCycle) + latency
	t.BusyCycles += latency
	e.CurrentCycle = t.NextAvailable

	if !e.IsMigration {
		t.AccessCount++
	}
	return true
}
