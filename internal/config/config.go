// Package config loads a compilation's target, preferences, optimization
// level, and output paths from an optional YAML file. Preference-key
// validation happens here, once per compilation, rather than inside a
// backend.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sunholo/mgenc/internal/backend"
	"github.com/sunholo/mgenc/internal/errors"
	"github.com/sunholo/mgenc/internal/optimize"
)

// Compilation is the full set of inputs a single build derives its
// artifact and diagnostics from (spec §4.10).
type Compilation struct {
	Target       string            `yaml:"target"`
	Preferences  map[string]string `yaml:"preferences"`
	Optimization string            `yaml:"optimization"`
	Output       string            `yaml:"output"`
}

// recognizedKeys is the full preference schema (spec §6): every key any
// target's Preferences struct reads. A key a backend doesn't act on is
// still accepted here as long as some target recognizes it; a target
// that receives a key it ignores simply leaves its default in place.
var recognizedKeys = map[string]bool{
	"naming_convention":       true,
	"prefer_immutable":        true,
	"use_pattern_matching":    true,
	"hashtables":              true,
	"prefer_idiomatic_syntax": true,
}

// Load reads and validates a compilation config file. A missing Target or
// an unrecognized Preferences key fails with a structured CFG report
// rather than surfacing as a raw parse error deep inside a backend.
func Load(path string) (*Compilation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var c Compilation
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.WrapReport(&errors.Report{
			Schema: "mgenc.error/v1", Code: errors.CFG002, Phase: "config",
			Message: fmt.Sprintf("malformed config YAML: %s", err),
		})
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks that Target is non-empty and every Preferences key is
// recognized. Called by Load, and again by the CLI after merging in
// --pref flags, since those can introduce keys the file didn't have.
func (c *Compilation) Validate() error {
	if c.Target == "" {
		return errors.WrapReport(&errors.Report{
			Schema: "mgenc.error/v1", Code: errors.CFG002, Phase: "config",
			Message: "config missing required field: target",
		})
	}
	if _, ok := backend.Lookup(c.Target); !ok {
		return errors.WrapReport(&errors.Report{
			Schema: "mgenc.error/v1", Code: errors.CFG002, Phase: "config",
			Message: fmt.Sprintf("unknown target %q", c.Target),
			Data:    map[string]any{"known_targets": backend.Names()},
		})
	}
	for k := range c.Preferences {
		if !recognizedKeys[k] {
			return errors.WrapReport(&errors.Report{
				Schema: "mgenc.error/v1", Code: errors.CFG001, Phase: "config",
				Message: fmt.Sprintf("unrecognized preference key %q", k),
				Data:    map[string]any{"key": k},
			})
		}
	}
	return nil
}

// ToPreferences merges the config's preference map over the documented
// defaults, producing the backend.Preferences a compilation's Emitter
// reads.
func (c *Compilation) ToPreferences() backend.Preferences {
	p := backend.DefaultPreferences()
	for k, v := range c.Preferences {
		switch k {
		case "naming_convention":
			p.NamingConvention = v
		case "prefer_immutable":
			p.PreferImmutable = v == "true"
		case "use_pattern_matching":
			p.UsePatternMatching = v == "true"
		case "hashtables":
			p.Hashtables = v
		case "prefer_idiomatic_syntax":
			p.PreferIdiomaticSyntax = v == "true"
		}
	}
	return p
}

// OptimizationLevel parses the config's Optimization string ("O0"-"O3",
// default "O0" when unset) into an optimize.Level.
func (c *Compilation) OptimizationLevel() (optimize.Level, error) {
	switch c.Optimization {
	case "", "O0":
		return optimize.O0, nil
	case "O1":
		return optimize.O1, nil
	case "O2":
		return optimize.O2, nil
	case "O3":
		return optimize.O3, nil
	default:
		return optimize.O0, errors.WrapReport(&errors.Report{
			Schema: "mgenc.error/v1", Code: errors.OPT001, Phase: "optimize",
			Message: fmt.Sprintf("optimization level %q outside O0-O3", c.Optimization),
		})
	}
}
