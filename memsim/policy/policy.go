// Package policy holds the small, closed set of enumerated policies that
// parameterize the flat-memory controller: swap, bypass, and replacement.
// Each is modeled as a tagged variant (a named int type with a fixed value
// set) rather than an interface hierarchy, since the policy space never
// grows at runtime.
package policy

import "fmt"

// Swap selects how the controller migrates a victim/challenger pair.
type Swap int

const (
	// FastSwap swaps the two physical pages' translations directly,
	// producing arbitrary-length mapping chains over time.
	FastSwap Swap = iota
	// SlowSwap restores any previously-swapped fast slot before reuse,
	// keeping the translation table a disjoint union of 2-cycles.
	SlowSwap
	// SmartSwap iteratively picks the best-scoring replace or restore move.
	SmartSwap
	// NoSwap disables migration entirely.
	NoSwap
)

var swapNames = map[Swap]string{
	FastSwap:  "FastSwap",
	SlowSwap:  "SlowSwap",
	SmartSwap: "SmartSwap",
	NoSwap:    "NoSwap",
}

func (s Swap) String() string {
	if name, ok := swapNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Swap(%d)", int(s))
}

// ParseSwap looks up a Swap by its variant name, as spelled on the CLI
// (e.g. swap_policy=SmartSwap).
func ParseSwap(name string) (Swap, error) {
	for s, n := range swapNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown swap policy %q", name)
}

// MarshalText implements encoding.TextMarshaler for JSON/YAML config files.
func (s Swap) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for JSON/YAML config files.
func (s *Swap) UnmarshalText(text []byte) error {
	parsed, err := ParseSwap(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Bypass decides whether a migration-eligible access actually triggers a
// migration attempt.
type Bypass int

const (
	// Never always triggers migration for a slow-tier access.
	Never Bypass = iota
	// Probability suppresses migration according to BypassProbability.
	Probability
)

var bypassNames = map[Bypass]string{
	Never:       "Never",
	Probability: "Probability",
}

func (b Bypass) String() string {
	if name, ok := bypassNames[b]; ok {
		return name
	}
	return fmt.Sprintf("Bypass(%d)", int(b))
}

// ParseBypass looks up a Bypass by its variant name.
func ParseBypass(name string) (Bypass, error) {
	for b, n := range bypassNames {
		if n == name {
			return b, nil
		}
	}
	return 0, fmt.Errorf("unknown bypass policy %q", name)
}

// MarshalText implements encoding.TextMarshaler for JSON/YAML config files.
func (b Bypass) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for JSON/YAML config files.
func (b *Bypass) UnmarshalText(text []byte) error {
	parsed, err := ParseBypass(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// Repl selects the per-region hotness/replacement metric.
type Repl int

const (
	// Random assigns a random score at insertion and never updates it.
	Random Repl = iota
	// LRU tracks last-access timestamp.
	LRU
	// LRULIP tracks last-access timestamp, but pins new entries at 0
	// ("LRU-Insertion-Pinned").
	LRULIP
	// LFU counts accesses.
	LFU
)

var replNames = map[Repl]string{
	Random: "Random",
	LRU:    "LRU",
	LRULIP: "LRU-LIP",
	LFU:    "LFU",
}

func (r Repl) String() string {
	if name, ok := replNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Repl(%d)", int(r))
}

// ParseRepl looks up a Repl by its variant name.
func ParseRepl(name string) (Repl, error) {
	for r, n := range replNames {
		if n == name {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown replacement policy %q", name)
}

// MarshalText implements encoding.TextMarshaler for JSON/YAML config files.
func (r Repl) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for JSON/YAML config files.
func (r *Repl) UnmarshalText(text []byte) error {
	parsed, err := ParseRepl(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
