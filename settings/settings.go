// Package settings resolves the process-wide output mode and unit scaling shared by all generators.
package settings

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Override record keys.
const (
	KeyGenerateHeat        = "GenerateHeat"
	KeyGenerateElectricity = "GenerateElectricity"
	KeyPowerDensityFactor  = "PowerDensityFactor"
	KeyPowerDensityLabel   = "PowerDensityLabel"
	KeyPowerDensityUnits   = "PowerDensityUnits"
	KeyHeatUnits           = "HeatUnits"
	KeyElectricityUnits    = "ElectricityUnits"
	KeyHeatScale           = "HeatScale"
	KeyElectricityScale    = "ElectricityScale"
)

// Record is a loosely typed override record.
type Record map[string]string

// Settings holds the resolved global configuration. Build it once and share it by pointer.
type Settings struct {
	GenerateElectricity bool `yaml:"generate_electricity"`
	GenerateHeat        bool `yaml:"generate_heat"`

	// Display scaling for the pep quantity only
	PowerDensityFactor float64 `yaml:"power_density_factor"`
	PowerDensityLabel  string  `yaml:"power_density_label"`
	PowerDensityUnits  string  `yaml:"power_density_units"`

	HeatUnits        string  `yaml:"heat_units"`
	ElectricityUnits string  `yaml:"electricity_units"`
	HeatScale        float64 `yaml:"heat_scale"`        // Applied to raw output
	ElectricityScale float64 `yaml:"electricity_scale"` // Applied to displayed electric output
}

// Default returns the settings used when no override records are present.
func Default() *Settings {
	return &Settings{
		GenerateElectricity: false,
		GenerateHeat:        true,
		PowerDensityFactor:  1e-3,
		PowerDensityLabel:   "pep",
		PowerDensityUnits:   "W/kg",
		HeatUnits:           "W",
		ElectricityUnits:    "Ec",
		HeatScale:           1,
		ElectricityScale:    1,
	}
}

// FieldError reports an override value that could not be parsed.
// The field keeps its previous value.
type FieldError struct {
	Record int
	Key    string
	Value  string
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("global config record %d: %s = %q: %v", e.Record, e.Key, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Build applies override records on top of the defaults in encounter order.
// A bad field is reported and skipped without aborting the batch. When heat
// generation resolves to false, electricity generation is forced on regardless
// of any explicit value.
func Build(records []Record) (*Settings, []error) {
	s := Default()
	var errs []error
	electricitySet := false

	for i, rec := range records {
		slog.Debug("reading global config", "record", i)

		parseBool := func(key string, dst *bool) bool {
			raw, ok := rec[key]
			if !ok {
				return false
			}
			v, err := strconv.ParseBool(strings.TrimSpace(raw))
			if err != nil {
				errs = append(errs, &FieldError{Record: i, Key: key, Value: raw, Err: err})
				return false
			}
			*dst = v
			slog.Debug("global config value", "key", key, "value", v)
			return true
		}
		parseFloat := func(key string, dst *float64) {
			raw, ok := rec[key]
			if !ok {
				return
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				errs = append(errs, &FieldError{Record: i, Key: key, Value: raw, Err: err})
				return
			}
			*dst = v
			slog.Debug("global config value", "key", key, "value", v)
		}
		parseString := func(key string, dst *string) {
			if raw, ok := rec[key]; ok {
				*dst = raw
				slog.Debug("global config value", "key", key, "value", raw)
			}
		}

		parseBool(KeyGenerateHeat, &s.GenerateHeat)
		if parseBool(KeyGenerateElectricity, &s.GenerateElectricity) {
			electricitySet = true
		}
		parseFloat(KeyPowerDensityFactor, &s.PowerDensityFactor)
		parseString(KeyPowerDensityLabel, &s.PowerDensityLabel)
		parseString(KeyPowerDensityUnits, &s.PowerDensityUnits)
		parseString(KeyHeatUnits, &s.HeatUnits)
		parseString(KeyElectricityUnits, &s.ElectricityUnits)
		parseFloat(KeyHeatScale, &s.HeatScale)
		parseFloat(KeyElectricityScale, &s.ElectricityScale)
	}

	if !s.GenerateHeat {
		if electricitySet && !s.GenerateElectricity {
			slog.Warn("GenerateElectricity ignored: heat generation is disabled")
		}
		s.GenerateElectricity = true
	}

	for _, err := range errs {
		slog.Error("problem in reading global config", "error", err)
	}
	return s, errs
}

// LogValue implements slog.LogValuer for structured logging.
func (s *Settings) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("generate_electricity", s.GenerateElectricity),
		slog.Bool("generate_heat", s.GenerateHeat),
		slog.Float64("power_density_factor", s.PowerDensityFactor),
		slog.String("power_density_label", s.PowerDensityLabel),
		slog.String("power_density_units", s.PowerDensityUnits),
		slog.String("heat_units", s.HeatUnits),
		slog.String("electricity_units", s.ElectricityUnits),
		slog.Float64("heat_scale", s.HeatScale),
		slog.Float64("electricity_scale", s.ElectricityScale),
	)
}
