package controller

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/tracehm/internal/xlog"
	"github.com/sarchlab/tracehm/memsim/policy"
)

// Config is the typed configuration record for a simulation run. Field
// tags carry both JSON and YAML names so the same struct serves
// -config file.json and -config file.yaml (see timing/latency/config.go
// in the teacher for the JSON half of this convention).
type Config struct {
	FastCapacity uint64 `json:"fast_cap" yaml:"fast_cap"`
	SlowCapacity uint64 `json:"slow_cap" yaml:"slow_cap"`

	FastReadLatency  uint64 `json:"fast_read_lat" yaml:"fast_read_lat"`
	FastWriteLatency uint64 `json:"fast_write_lat" yaml:"fast_write_lat"`
	SlowReadLatency  uint64 `json:"slow_read_lat" yaml:"slow_read_lat"`
	SlowWriteLatency uint64 `json:"slow_write_lat" yaml:"slow_write_lat"`

	FastBlock uint64 `json:"fast_block" yaml:"fast_block"`

	SwapPolicy        policy.Swap   `json:"swap_policy" yaml:"swap_policy"`
	BypassPolicy      policy.Bypass `json:"bypass_policy" yaml:"bypass_policy"`
	ReplPolicy        policy.Repl   `json:"repl_policy" yaml:"repl_policy"`
	BypassProbability float64       `json:"bypass_probability" yaml:"bypass_probability"`

	// TransCacheCapacity is the per-set translation-cache size (REDESIGN:
	// exposed here instead of the hard-coded constant of 4).
	TransCacheCapacity int `json:"trans_cache_capacity" yaml:"trans_cache_capacity"`
}

// DefaultConfig mirrors original_source/flatmem.py's flat_config1: the
// module's original default configuration.
func DefaultConfig() *Config {
	return &Config{
		FastCapacity:       0x1003fff,
		SlowCapacity:       0x100ffff,
		FastReadLatency:    1,
		FastWriteLatency:   1,
		SlowReadLatency:    2,
		SlowWriteLatency:   2,
		FastBlock:          4,
		SwapPolicy:         policy.SmartSwap,
		BypassPolicy:       policy.Probability,
		BypassProbability:  0.5,
		ReplPolicy:         policy.LRU,
		TransCacheCapacity: 4,
	}
}

// PresetBalanced is an alias for DefaultConfig, named for
// original_source/flatmem.py's flat_config1.
func PresetBalanced() *Config {
	return DefaultConfig()
}

// PresetDRAMNVM mirrors original_source/flatmem.py's flat_config_dram_nvm:
// a DRAM-fast-tier / NVM-slow-tier configuration with SlowSwap and a
// narrower fast block.
func PresetDRAMNVM() *Config {
	return &Config{
		FastCapacity:       0x1001fff,
		SlowCapacity:       0x100ffff,
		FastReadLatency:    1,
		FastWriteLatency:   1,
		SlowReadLatency:    5,
		SlowWriteLatency:   10,
		FastBlock:          2,
		SwapPolicy:         policy.SlowSwap,
		BypassPolicy:       policy.Probability,
		BypassProbability:  0.5,
		ReplPolicy:         policy.LRU,
		TransCacheCapacity: 4,
	}
}

// LoadConfig loads a Config from a JSON or YAML file, chosen by extension
// (.yaml/.yml vs anything else), starting from DefaultConfig and
// overlaying the file's fields.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse yaml config: %w", err)
		}
	} else {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse json config: %w", err)
		}
	}
	return cfg, nil
}

// SaveConfig writes the Config to path as JSON.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks that the configuration describes a runnable simulation.
func (c *Config) Validate() error {
	if c.FastCapacity == 0 {
		return fmt.Errorf("fast_cap must be > 0")
	}
	if c.SlowCapacity == 0 {
		return fmt.Errorf("slow_cap must be > 0")
	}
	if c.FastBlock == 0 {
		return fmt.Errorf("fast_block must be > 0")
	}
	if c.BypassProbability < 0 || c.BypassProbability > 1 {
		return fmt.Errorf("bypass_probability must be in [0,1]")
	}
	if c.TransCacheCapacity <= 0 {
		return fmt.Errorf("trans_cache_capacity must be > 0")
	}
	return nil
}

// Clone returns a deep copy (flat copy suffices; Config has no pointer/slice fields).
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// unknownKeyWarning logs and swallows an unrecognized config key.
func unknownKeyWarning(key string) error {
	xlog.Warnf("ignore unknown config key %q", key)
	return nil
}

// fieldNameByKey maps a CLI/JSON key (e.g. "fast_cap") to the struct's
// exported field name (e.g. "FastCapacity"), using the json tag.
func fieldNameByKey(t reflect.Type, key string) (string, bool) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		name := strings.Split(tag, ",")[0]
		if name == key {
			return f.Name, true
		}
	}
	return "", false
}

// ApplyArg applies a single "key=value" CLI override onto the config,
// grounded on original_source/flatmem.py's set_config: enumerated fields
// are looked up by variant name, numeric fields are parsed according to
// their declared Go kind. Unknown keys are warned and ignored, never an
// error (spec §7 taxonomy item 2); an invalid enum value fails loudly
// (spec §7 taxonomy item 3).
func (c *Config) ApplyArg(key, value string) error {
	t := reflect.TypeOf(*c)
	fieldName, ok := fieldNameByKey(t, key)
	if !ok {
		return unknownKeyWarning(key)
	}

	v := reflect.ValueOf(c).Elem().FieldByName(fieldName)

	switch fieldName {
	case "SwapPolicy":
		parsed, err := policy.ParseSwap(value)
		if err != nil {
			return err
		}
		v.SetInt(int64(parsed))
	case "BypassPolicy":
		parsed, err := policy.ParseBypass(value)
		if err != nil {
			return err
		}
		v.SetInt(int64(parsed))
	case "ReplPolicy":
		parsed, err := policy.ParseRepl(value)
		if err != nil {
			return err
		}
		v.SetInt(int64(parsed))
	default:
		switch v.Kind() {
		case reflect.Uint64, reflect.Uint, reflect.Uint32:
			n, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer for %s: %w", key, err)
			}
			v.SetUint(n)
		case reflect.Int, reflect.Int64, reflect.Int32:
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer for %s: %w", key, err)
			}
			v.SetInt(n)
		case reflect.Float64, reflect.Float32:
			n, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("invalid float for %s: %w", key, err)
			}
			v.SetFloat(n)
		default:
			return fmt.Errorf("unsupported field type for %s", key)
		}
	}
	return nil
}

// AsMap returns the configuration as a sorted-key-friendly map, for the
// "configuration echo (sorted by key)" half of the final statistics
// snapshot (spec §6).
func (c *Config) AsMap() map[string]string {
	t := reflect.TypeOf(*c)
	v := reflect.ValueOf(*c)
	out := make(map[string]string, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		key := strings.Split(f.Tag.Get("json"), ",")[0]
		out[key] = fmt.Sprintf("%v", v.Field(i).Interface())
	}
	return out
}
