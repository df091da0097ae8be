// Package config provides configuration loading for the generator simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/rtg/fuel"
	"github.com/pthm-cable/rtg/settings"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	// Raw fuel records, validated later by fuel.Build
	Fuels   []fuel.Record `yaml:"fuels"`
	FuelCSV string        `yaml:"fuel_csv"` // Optional CSV catalog appended after Fuels

	// Raw global override records, applied in order by settings.Build
	Globals []settings.Record `yaml:"globals"`

	Clock     ClockConfig     `yaml:"clock"`
	Station   StationConfig   `yaml:"station"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Bookmarks BookmarksConfig `yaml:"bookmarks"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ClockConfig holds the fixed-rate simulation clock.
type ClockConfig struct {
	DT        float64 `yaml:"dt"`         // Simulated seconds per tick before warp
	Warp      float64 `yaml:"warp"`       // Time acceleration multiplier
	StartTime float64 `yaml:"start_time"` // Universal time of the first tick
}

// StationConfig describes the devices of the simulated station.
type StationConfig struct {
	ChargeCapacity float64           `yaml:"charge_capacity"` // Electric charge storage shared by all generators
	Generators     []GeneratorConfig `yaml:"generators"`
}

// GeneratorConfig describes one generator device.
type GeneratorConfig struct {
	Name       string  `yaml:"name"`
	Volume     float64 `yaml:"volume"`
	Efficiency float64 `yaml:"efficiency"`
	BaseMass   float64 `yaml:"base_mass"`  // Dry mass in tonnes
	FuelIndex  int     `yaml:"fuel_index"` // Catalog index, used when Fuel is empty
	Fuel       string  `yaml:"fuel"`       // Resource name, takes precedence over FuelIndex
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"` // Unwarped seconds per stats window
	BookmarkHistorySize int     `yaml:"bookmark_history_size"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// BookmarksConfig holds bookmark detection thresholds.
type BookmarksConfig struct {
	ChargeFull float64 `yaml:"charge_full"` // Charge level fraction reported as saturated
	OutputDrop float64 `yaml:"output_drop"` // Fractional drop of total output from the first window
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	TickDelta   float64 // Clock.DT scaled by Clock.Warp
	WindowTicks int     // Ticks per stats window
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}
	return LoadBytes(data)
}

// LoadBytes is Load for configuration already in memory.
func LoadBytes(data []byte) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Unmarshal into same struct - only overwrites fields present in data
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if cfg.FuelCSV != "" {
		records, err := fuel.ReadCSVFile(cfg.FuelCSV)
		if err != nil {
			return nil, err
		}
		cfg.Fuels = append(cfg.Fuels, records...)
	}

	cfg.computeDerived()
	return cfg, nil
}

// Refresh recomputes derived values after fields were changed in code.
func (c *Config) Refresh() {
	c.computeDerived()
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	if c.Clock.DT <= 0 {
		c.Clock.DT = 0.02
	}
	if c.Clock.Warp <= 0 {
		c.Clock.Warp = 1
	}
	c.Derived.TickDelta = c.Clock.DT * c.Clock.Warp

	ticks := int(math.Round(c.Telemetry.StatsWindow / c.Clock.DT))
	if ticks < 1 {
		ticks = 1
	}
	c.Derived.WindowTicks = ticks

	// Fill in per-generator defaults
	for i := range c.Station.Generators {
		gen := &c.Station.Generators[i]
		if gen.Name == "" {
			gen.Name = fmt.Sprintf("rtg-%d", i+1)
		}
		if gen.Volume == 0 {
			gen.Volume = 5
		}
		if gen.Efficiency == 0 {
			gen.Efficiency = 0.5
		}
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
