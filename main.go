package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/pthm-cable/rtg/config"
	"github.com/pthm-cable/rtg/station"
	"github.com/pthm-cable/rtg/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	warp := flag.Float64("warp", 0, "Time acceleration multiplier (0 = use config)")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for bookmark snapshot files")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, config and final snapshot")
	resume := flag.String("resume", "", "Snapshot file to resume from")
	selectFuel := flag.String("select", "", "Fuel substitution as device=index or device=resourceName, applied before the first tick")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per update call")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// CLI overrides
	if *statsWindow > 0 {
		cfg.Telemetry.StatsWindow = *statsWindow
	}
	if *warp > 0 {
		cfg.Clock.Warp = *warp
	}
	cfg.Refresh()

	opts := station.Options{
		LogStats:       *logStats,
		OutputDir:      *outputDir,
		SnapshotDir:    *snapshotDir,
		StepsPerUpdate: *stepsPerUpdate,
	}

	if *resume != "" {
		snap, err := telemetry.LoadSnapshot(*resume)
		if err != nil {
			slog.Error("failed to load snapshot", "error", err)
			os.Exit(1)
		}
		opts.Resume = snap
	}

	s, err := station.New(cfg, opts)
	if err != nil {
		slog.Error("failed to create station", "error", err)
		os.Exit(1)
	}
	defer s.Unload()

	if *selectFuel != "" {
		if err := applySelection(s, *selectFuel); err != nil {
			slog.Error("fuel selection rejected", "error", err)
		}
	}

	slog.Info("starting headless simulation",
		"devices", len(cfg.Station.Generators),
		"tick_delta", cfg.Derived.TickDelta,
		"window_ticks", cfg.Derived.WindowTicks,
		"max_ticks", *maxTicks,
		"steps_per_update", *stepsPerUpdate,
	)

	for {
		s.UpdateHeadless()

		if *maxTicks > 0 && int(s.Tick()) >= *maxTicks {
			slog.Info("max ticks reached", "tick", s.Tick())
			break
		}
	}

	for _, d := range s.Devices() {
		slog.Info("device",
			"name", d.Name,
			"id", d.ID,
			"fuel", d.Fuel,
			"output", d.Output,
			"amount", d.Amount,
			"max_amount", d.MaxAmount,
			"mass", d.Mass,
			"heat_energy", d.HeatEnergy,
		)
	}
}

// applySelection parses device=index or device=resourceName and substitutes the fuel.
func applySelection(s *station.Station, arg string) error {
	device, fuelRef, ok := strings.Cut(arg, "=")
	if !ok {
		return fmt.Errorf("selection %q: want device=index or device=resourceName", arg)
	}
	if index, err := strconv.Atoi(fuelRef); err == nil {
		return s.SelectFuel(device, index)
	}
	return s.SelectFuelByName(device, fuelRef)
}
