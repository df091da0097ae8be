package fuel

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	// ErrIndexOutOfRange is returned by Lookup for an index outside the catalog.
	ErrIndexOutOfRange = errors.New("fuel index out of range")

	// ErrDuplicate marks a record whose resource name was already registered.
	// It is informational: the first definition wins.
	ErrDuplicate = errors.New("duplicate fuel ignored")
)

// BuildReport summarizes a registry build.
type BuildReport struct {
	Accepted int
	Rejects  int     // Malformed records plus dropped duplicates
	Errors   []error // One entry per reject, in encounter order
}

// Registry is an ordered, deduplicated catalog of fuels.
// It is immutable after Build and safe to share between generators.
type Registry struct {
	configs []Config
	index   map[string]int
}

// Build parses raw records into a registry. Malformed records are skipped and
// duplicates by resource name are dropped; neither aborts the batch.
func Build(records []Record) (*Registry, BuildReport) {
	reg := &Registry{
		configs: make([]Config, 0, len(records)),
		index:   make(map[string]int, len(records)),
	}
	var report BuildReport

	for i, rec := range records {
		c, err := Parse(i, rec)
		if err != nil {
			slog.Warn("could not load fuel config", "record", i, "error", err)
			report.Rejects++
			report.Errors = append(report.Errors, err)
			continue
		}
		if _, seen := reg.index[c.ResourceName]; seen {
			slog.Debug("duplicate fuel config ignored", "record", i, "resource", c.ResourceName)
			report.Rejects++
			report.Errors = append(report.Errors, fmt.Errorf("fuel record %d: %q: %w", i, c.ResourceName, ErrDuplicate))
			continue
		}
		reg.index[c.ResourceName] = len(reg.configs)
		reg.configs = append(reg.configs, c)
	}

	report.Accepted = len(reg.configs)
	slog.Info("fuel catalog built", "fuels", report.Accepted, "rejects", report.Rejects)
	return reg, report
}

// Len returns the number of fuels in the catalog.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.configs)
}

// Lookup returns a copy of the fuel at index.
func (r *Registry) Lookup(index int) (Config, error) {
	if index < 0 || index >= r.Len() {
		return Config{}, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, r.Len())
	}
	return r.configs[index], nil
}

// ByName returns the fuel registered under name and its catalog index.
func (r *Registry) ByName(name string) (Config, int, bool) {
	if r == nil {
		return Config{}, -1, false
	}
	i, ok := r.index[name]
	if !ok {
		return Config{}, -1, false
	}
	return r.configs[i], i, true
}

// Abbreviations returns the display abbreviation of every fuel in catalog order,
// suitable for populating an operator's selector.
func (r *Registry) Abbreviations() []string {
	out := make([]string, r.Len())
	for i := range out {
		out[i] = r.configs[i].ResourceAbbr
	}
	return out
}

// Names returns the resource name of every fuel in catalog order.
func (r *Registry) Names() []string {
	out := make([]string, r.Len())
	for i := range out {
		out[i] = r.configs[i].ResourceName
	}
	return out
}

// Configs returns a copy of the catalog.
func (r *Registry) Configs() []Config {
	out := make([]Config, r.Len())
	if r != nil {
		copy(out, r.configs)
	}
	return out
}
