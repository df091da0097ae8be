// Package fuel holds fuel definitions and the registry that validates and deduplicates them.
package fuel

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Record keys understood by Parse.
const (
	KeyName     = "resourceName"
	KeyAbbr     = "resourceAbbr"
	KeyHalflife = "halflife"
	KeyPep      = "pep"
	KeyDensity  = "density"
)

// Record is a loosely typed fuel definition as supplied by a config source.
type Record map[string]string

// Config is one physical fuel definition. Values are copied, never shared.
type Config struct {
	ResourceName  string  `yaml:"resource_name" csv:"resource_name" json:"resource_name"`
	ResourceAbbr  string  `yaml:"resource_abbr" csv:"resource_abbr" json:"resource_abbr"`
	HalflifeYears float64 `yaml:"halflife_years" csv:"halflife_years" json:"halflife_years"` // Simulated-calendar years
	Pep           float64 `yaml:"pep" csv:"pep" json:"pep"`                                  // Power per unit mass
	Density       float64 `yaml:"density" csv:"density" json:"density"`                      // Mass per unit volume
}

// IsZero reports whether c is the zero Config (no fuel).
func (c Config) IsZero() bool {
	return c == Config{}
}

// ParseError describes a record that could not be turned into a Config.
type ParseError struct {
	Index int    // Position of the record in its batch
	Field string // Offending key, empty if the record as a whole was bad
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("fuel record %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("fuel record %d: field %q: %v", e.Index, e.Field, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var (
	errMissing     = errors.New("missing required value")
	errNotPositive = errors.New("must be greater than zero")
	errNotFinite   = errors.New("must be finite")
)

// Parse converts a raw record into a Config. index is only used for error reporting.
func Parse(index int, r Record) (Config, error) {
	name := strings.TrimSpace(r[KeyName])
	if name == "" {
		return Config{}, &ParseError{Index: index, Field: KeyName, Err: errMissing}
	}

	var c Config
	c.ResourceName = name
	c.ResourceAbbr = strings.TrimSpace(r[KeyAbbr])
	if c.ResourceAbbr == "" {
		c.ResourceAbbr = name
	}

	fields := []struct {
		key string
		dst *float64
	}{
		{KeyHalflife, &c.HalflifeYears},
		{KeyPep, &c.Pep},
		{KeyDensity, &c.Density},
	}
	for _, f := range fields {
		raw, ok := r[f.key]
		if !ok || strings.TrimSpace(raw) == "" {
			return Config{}, &ParseError{Index: index, Field: f.key, Err: errMissing}
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return Config{}, &ParseError{Index: index, Field: f.key, Err: err}
		}
		// NaN fails this comparison as well.
		if !(v > 0) {
			return Config{}, &ParseError{Index: index, Field: f.key, Err: errNotPositive}
		}
		if math.IsInf(v, 0) {
			return Config{}, &ParseError{Index: index, Field: f.key, Err: errNotFinite}
		}
		*f.dst = v
	}

	return c, nil
}
