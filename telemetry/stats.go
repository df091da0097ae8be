package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// GeneratorSample is one device's state at the end of a window.
type GeneratorSample struct {
	Name      string
	Fuel      string  // Abbreviation, empty without fuel
	Fraction  float64 // Remaining amount over capacity
	HalfLives float64 // Half-lives elapsed since the device started
	RawOutput float64
	Mass      float64
}

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	UniversalTime   float64 `csv:"universal_time"`
	ElapsedYears    float64 `csv:"elapsed_years"` // Simulated years since the first tick

	// Devices at window end
	Generators  int     `csv:"generators"`
	Fueled      int     `csv:"fueled"`
	TotalOutput float64 `csv:"total_output"`
	TotalMass   float64 `csv:"total_mass"`

	// Most half-lives elapsed on any fueled device
	MaxHalfLives float64 `csv:"max_half_lives"`

	// Remaining fuel fraction distribution (fueled devices only)
	FuelMean float64 `csv:"fuel_mean"`
	FuelStd  float64 `csv:"fuel_std"`
	FuelP10  float64 `csv:"fuel_p10"`
	FuelP50  float64 `csv:"fuel_p50"`
	FuelP90  float64 `csv:"fuel_p90"`

	// Energy delivered during the window
	ChargeLevel    float64 `csv:"charge_level"`    // Fraction of bank capacity at window end
	ChargeProduced float64 `csv:"charge_produced"` // Charge accepted by the bank
	ChargeSpilled  float64 `csv:"charge_spilled"`  // Charge offered while the bank was full
	HeatEnergy     float64 `csv:"heat_energy"`     // Thermal flux integrated over tick time

	// Tick errors during the window
	TickErrors      int `csv:"tick_errors"`
	MissingResource int `csv:"missing_resource"`
	NoFuel          int `csv:"no_fuel"`
}

// ComputeFuelStats calculates mean, std, and percentiles of remaining fuel fractions.
// Percentiles use the empirical quantile (smallest value whose CDF reaches p).
func ComputeFuelStats(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	if n == 1 {
		mean = values[0]
	} else {
		mean, std = stat.MeanStdDev(values, nil)
	}

	// Quantile requires sorted input
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)

	return mean, std, p10, p50, p90
}

// summarizeSamples fills the device fields of stats from samples.
func summarizeSamples(stats *WindowStats, samples []GeneratorSample) {
	outputs := make([]float64, 0, len(samples))
	masses := make([]float64, 0, len(samples))
	fractions := make([]float64, 0, len(samples))
	var halfLives float64

	for _, s := range samples {
		outputs = append(outputs, s.RawOutput)
		masses = append(masses, s.Mass)
		if s.Fuel == "" {
			continue
		}
		fractions = append(fractions, s.Fraction)
		halfLives = math.Max(halfLives, s.HalfLives)
	}

	stats.Generators = len(samples)
	stats.Fueled = len(fractions)
	stats.TotalOutput = floats.Sum(outputs)
	stats.TotalMass = floats.Sum(masses)
	stats.MaxHalfLives = halfLives
	stats.FuelMean, stats.FuelStd, stats.FuelP10, stats.FuelP50, stats.FuelP90 = ComputeFuelStats(fractions)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("universal_time", s.UniversalTime),
		slog.Float64("elapsed_years", s.ElapsedYears),
		slog.Int("generators", s.Generators),
		slog.Int("fueled", s.Fueled),
		slog.Float64("total_output", s.TotalOutput),
		slog.Float64("total_mass", s.TotalMass),
		slog.Float64("max_half_lives", s.MaxHalfLives),
		slog.Float64("fuel_mean", s.FuelMean),
		slog.Float64("fuel_std", s.FuelStd),
		slog.Float64("fuel_p10", s.FuelP10),
		slog.Float64("fuel_p50", s.FuelP50),
		slog.Float64("fuel_p90", s.FuelP90),
		slog.Float64("charge_level", s.ChargeLevel),
		slog.Float64("charge_produced", s.ChargeProduced),
		slog.Float64("charge_spilled", s.ChargeSpilled),
		slog.Float64("heat_energy", s.HeatEnergy),
		slog.Int("tick_errors", s.TickErrors),
		slog.Int("missing_resource", s.MissingResource),
		slog.Int("no_fuel", s.NoFuel),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"elapsed_years", s.ElapsedYears,
		"fueled", s.Fueled,
		"total_output", s.TotalOutput,
		"fuel_p50", s.FuelP50,
		"charge_level", s.ChargeLevel,
		"charge_produced", s.ChargeProduced,
		"tick_errors", s.TickErrors,
	)
}
