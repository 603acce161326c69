// Package config holds the environment-driven tunables the armjit engine
// and its demo CLI read at startup, in the style the xyproto/env package is
// built for: small, name-per-call accessors with a hardcoded default.
package config

import "github.com/xyproto/env/v2"

// Config is the set of runtime-tunable knobs SPEC_FULL.md §9 names.
type Config struct {
	// SectionCapacity is the default MaxSections passed to armjit.New when
	// a caller doesn't specify its own.
	SectionCapacity int
	// LabelCapacity is the initial global-label table size a caller can use
	// as a SetupGlobals hint before it knows its exact label count.
	LabelCapacity int
	// Debug reports whether ARMJIT_DEBUG is set. Nothing in this module
	// reads it: the demo CLI's output is the same either way.
	Debug bool
}

const (
	envSectionCapacity = "ARMJIT_SECTION_CAPACITY"
	envLabelCapacity   = "ARMJIT_LABEL_CAPACITY"
	envDebug           = "ARMJIT_DEBUG"

	defaultSectionCapacity = 128
	defaultLabelCapacity   = 8
)

// Load reads ARMJIT_SECTION_CAPACITY, ARMJIT_LABEL_CAPACITY, and
// ARMJIT_DEBUG from the environment, falling back to the defaults
// SPEC_FULL.md §9 specifies when unset.
func Load() Config {
	return Config{
		SectionCapacity: env.Int(envSectionCapacity, defaultSectionCapacity),
		LabelCapacity:   env.Int(envLabelCapacity, defaultLabelCapacity),
		Debug:           env.Bool(envDebug),
	}
}
