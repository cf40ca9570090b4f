// Package tjitconfig loads the tracing JIT's tunable parameters from
// a YAML document, the same file-based bootstrap shape the rest of
// this corpus uses for its service configuration, rather than wiring
// flags or environment variables one by one.
package tjitconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/schemetrace/tjit/tjit"
)

// File is the on-disk shape of a tunable bootstrap file. Every field
// is a pointer so an absent key leaves the corresponding tunable at
// its built-in default instead of zeroing it.
type File struct {
	HotLoop      *int `yaml:"hot_loop"`
	HotExit      *int `yaml:"hot_exit"`
	MaxRecord    *int `yaml:"max_record"`
	MaxRetries   *int `yaml:"max_retries"`
	MaxSides     *int `yaml:"max_sides"`
	TrySides     *int `yaml:"try_sides"`
	NumUnrolls   *int `yaml:"num_unrolls"`
	SchemeEngine *int `yaml:"scheme_engine"`
}

// Load reads path and applies every key it sets onto t. It returns
// the first validation error from an out-of-range value, having
// already applied the keys that came before it in field order.
func Load(path string, t *tjit.Tunables) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("tjitconfig: reading %s: %w", path, err)
	}
	return Apply(data, t)
}

// Apply parses a YAML document and applies it onto t, for callers
// that already have the bytes (tests, embedded defaults).
func Apply(data []byte, t *tjit.Tunables) error {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("tjitconfig: parsing document: %w", err)
	}

	setters := []struct {
		name string
		v    *int
		set  func(int) error
	}{
		{"hot_loop", f.HotLoop, t.SetHotLoop},
		{"hot_exit", f.HotExit, t.SetHotExit},
		{"max_record", f.MaxRecord, t.SetMaxRecord},
		{"max_retries", f.MaxRetries, t.SetMaxRetries},
		{"max_sides", f.MaxSides, t.SetMaxSides},
		{"try_sides", f.TrySides, t.SetTrySides},
		{"num_unrolls", f.NumUnrolls, t.SetNumUnrolls},
		{"scheme_engine", f.SchemeEngine, t.SetSchemeEngine},
	}
	for _, s := range setters {
		if s.v == nil {
			continue
		}
		if err := s.set(*s.v); err != nil {
			return fmt.Errorf("tjitconfig: %s: %w", s.name, err)
		}
	}
	return nil
}
