package controller

import (
	"fmt"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is an optional Prometheus registry mirroring the plain Snapshot
// below. The teacher never wires metrics itself, but both aistore and
// chaos-utils in the retrieval pack depend on client_golang for exactly
// this shape of counter set; registering it is additive and is never
// consulted by the core simulation loop, only read back by an optional
// HTTP exporter (see cmd/tracehm).
type Metrics struct {
	Registry *prometheus.Registry

	FastAccess     prometheus.Counter
	SlowAccess     prometheus.Counter
	TransCacheHit  prometheus.Counter
	TransCacheMiss prometheus.Counter
	Migrations     *prometheus.CounterVec
}

// NewMetrics builds a fresh Metrics registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		FastAccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracehm_fast_tier_accesses_total",
			Help: "Accesses serviced by the fast tier.",
		}),
		SlowAccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracehm_slow_tier_accesses_total",
			Help: "Accesses serviced by the slow tier.",
		}),
		TransCacheHit: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracehm_translation_cache_hits_total",
			Help: "Per-set translation-cache hits.",
		}),
		TransCacheMiss: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracehm_translation_cache_misses_total",
			Help: "Per-set translation-cache misses.",
		}),
		Migrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracehm_migrations_total",
			Help: "Migrations performed, by policy and kind.",
		}, []string{"policy", "kind"}),
	}
	reg.MustRegister(m.FastAccess, m.SlowAccess, m.TransCacheHit, m.TransCacheMiss, m.Migrations)
	return m
}

// Snapshot is the end-of-run statistics report described in spec §6.
type Snapshot struct {
	Config map[string]string

	FastSwapCount       uint64
	SlowSwapCount       uint64
	SmartSwapReplCount  uint64
	SmartSwapRestoreCnt uint64

	BypassProbability float64

	FastBusyCycles uint64
	SlowBusyCycles uint64
	NextAvailable  uint64

	TransCacheHits   uint64
	TransCacheMisses uint64

	FastAccessCount uint64
	SlowAccessCount uint64
}

// TransCacheHitRate returns the translation-cache hit rate, 0 if no probes
// were made.
func (s Snapshot) TransCacheHitRate() float64 {
	total := s.TransCacheHits + s.TransCacheMisses
	if total == 0 {
		return 0
	}
	return float64(s.TransCacheHits) / float64(total)
}

// FastHitRate returns the fraction of accesses serviced by the fast tier.
func (s Snapshot) FastHitRate() float64 {
	total := s.FastAccessCount + s.SlowAccessCount
	if total == 0 {
		return 0
	}
	return float64(s.FastAccessCount) / float64(total)
}

// String renders the snapshot the way cmd/m2sim's runTiming renders its
// own end-of-run report: plain fmt-formatted lines, independent of
// whatever the optional Prometheus exporter is also serving.
func (s Snapshot) String() string {
	var b strings.Builder

	fmt.Fprintln(&b, "display all configs")
	keys := make([]string, 0, len(s.Config))
	for k := range s.Config {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "\t%s = %s\n", k, s.Config[k])
	}

	fmt.Fprintln(&b, "display all statistics")
	fmt.Fprintf(&b, "fastswap count %d\n", s.FastSwapCount)
	fmt.Fprintf(&b, "slowswap count %d\n", s.SlowSwapCount)
	fmt.Fprintf(&b, "smartswap count repl:%d restore:%d\n", s.SmartSwapReplCount, s.SmartSwapRestoreCnt)
	fmt.Fprintf(&b, "bypass probability: %.2f\n", s.BypassProbability)
	fmt.Fprintf(&b, "fast cycle:%d slow cycle:%d flat cycle:%d\n", s.FastBusyCycles, s.SlowBusyCycles, s.NextAvailable)
	fmt.Fprintf(&b, "cached fast trans:%d uncached fast trans:%d rate:%.2f\n",
		s.TransCacheHits, s.TransCacheMisses, s.TransCacheHitRate())
	fmt.Fprintf(&b, "fast access:%d slow access:%d hitrate:%.2f\n",
		s.FastAccessCount, s.SlowAccessCount, s.FastHitRate())

	return b.String()
}
