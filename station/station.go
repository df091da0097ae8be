// Package station hosts generator devices in an ECS world and drives them
// with a fixed-rate simulated clock.
package station

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/rtg/components"
	"github.com/pthm-cable/rtg/config"
	"github.com/pthm-cable/rtg/fuel"
	"github.com/pthm-cable/rtg/generator"
	"github.com/pthm-cable/rtg/present"
	"github.com/pthm-cable/rtg/settings"
	"github.com/pthm-cable/rtg/telemetry"
)

// ErrUnknownDevice is returned when a device name is not on the station.
var ErrUnknownDevice = errors.New("unknown device")

// Options configures station initialization.
type Options struct {
	LogStats       bool                // Output window stats via slog
	OutputDir      string              // Directory for CSV logs and config snapshot (empty = disabled)
	SnapshotDir    string              // Directory for bookmark snapshots (empty = disabled)
	StepsPerUpdate int                 // Ticks per UpdateHeadless call
	Resume         *telemetry.Snapshot // Saved state to resume from
}

// Station holds the complete host state.
type Station struct {
	cfg      *config.Config
	registry *fuel.Registry
	settings *settings.Settings

	world        *ecs.World
	deviceMapper *ecs.Map3[components.Device, components.PartResources, components.Thermal]
	deviceFilter *ecs.Filter3[components.Device, components.PartResources, components.Thermal]
	thermalMap   *ecs.Map1[components.Thermal]

	// Entities in configuration order
	devices []ecs.Entity
	byName  map[string]ecs.Entity

	bank  *components.ChargeBank
	clock *Clock

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	statsCallback    func(telemetry.WindowStats)

	logStats       bool
	snapshotDir    string
	stepsPerUpdate int
}

// thermalSink routes a generator's heat to its entity's Thermal component.
// The component is looked up on every call since ECS storage may move.
type thermalSink struct {
	m *ecs.Map1[components.Thermal]
	e ecs.Entity
}

func (t thermalSink) AddFlux(amount float64) {
	t.m.Get(t.e).AddFlux(amount)
}

// New creates a station from cfg.
func New(cfg *config.Config, opts Options) (*Station, error) {
	reg, report := fuel.Build(cfg.Fuels)
	if report.Accepted == 0 {
		slog.Warn("fuel catalog is empty, devices will not generate", "rejects", report.Rejects)
	}

	globals, errs := settings.Build(cfg.Globals)
	for _, err := range errs {
		slog.Warn("invalid global setting", "error", err)
	}
	slog.Info("settings", "settings", globals)

	world := ecs.NewWorld()

	stepsPerUpdate := opts.StepsPerUpdate
	if stepsPerUpdate < 1 {
		stepsPerUpdate = 1
	}

	s := &Station{
		cfg:      cfg,
		registry: reg,
		settings: globals,
		world:    world,
		deviceMapper: ecs.NewMap3[
			components.Device,
			components.PartResources,
			components.Thermal,
		](world),
		deviceFilter: ecs.NewFilter3[
			components.Device,
			components.PartResources,
			components.Thermal,
		](world),
		thermalMap:     ecs.NewMap1[components.Thermal](world),
		byName:         make(map[string]ecs.Entity),
		bank:           components.NewChargeBank(cfg.Station.ChargeCapacity),
		clock:          NewClock(cfg.Clock.StartTime, cfg.Clock.DT, cfg.Clock.Warp),
		collector:      telemetry.NewCollector(cfg.Derived.WindowTicks),
		perfCollector:  telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		logStats:       opts.LogStats,
		snapshotDir:    opts.SnapshotDir,
		stepsPerUpdate: stepsPerUpdate,
		bookmarkDetector: telemetry.NewBookmarkDetector(cfg.Telemetry.BookmarkHistorySize, telemetry.BookmarkThresholds{
			ChargeFull: cfg.Bookmarks.ChargeFull,
			OutputDrop: cfg.Bookmarks.OutputDrop,
		}),
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	s.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	for _, gc := range cfg.Station.Generators {
		if _, dup := s.byName[gc.Name]; dup {
			om.Close()
			return nil, fmt.Errorf("duplicate device name %q", gc.Name)
		}
		s.addDevice(gc, opts.Resume)
	}

	if opts.Resume != nil {
		s.clock.Set(opts.Resume.Tick, opts.Resume.UniversalTime)
		s.bank.Amount = opts.Resume.ChargeAmount
		s.collector = telemetry.NewCollectorAt(cfg.Derived.WindowTicks, opts.Resume.Tick)
		slog.Info("resumed station", "tick", opts.Resume.Tick, "universal_time", opts.Resume.UniversalTime)
	}

	if len(cfg.Station.Generators) > 0 {
		first := cfg.Station.Generators[0]
		if err := om.WriteInfo(present.Info(reg, globals, first.Efficiency, first.Volume)); err != nil {
			slog.Error("failed to write info", "error", err)
		}
	}

	return s, nil
}

// addDevice creates the entity and generator for gc. A device that cannot
// load its fuel is kept unfueled; its ticks report ErrNoFuel.
func (s *Station) addDevice(gc config.GeneratorConfig, resume *telemetry.Snapshot) {
	pool := components.NewPartResources()
	entity := s.deviceMapper.NewEntity(&components.Device{Name: gc.Name}, &pool, &components.Thermal{})

	var saved *telemetry.DeviceState
	if resume != nil {
		if st, ok := resume.Device(gc.Name); ok {
			saved = &st
		}
	}

	opts := generator.Options{
		Volume:     gc.Volume,
		Efficiency: gc.Efficiency,
		BaseMass:   gc.BaseMass,
		FuelIndex:  gc.FuelIndex,
	}
	if saved != nil {
		opts.ID = saved.ID
	}

	gen := generator.New(s.registry, s.settings, generator.Deps{
		Pool:    pool,
		Charge:  s.bank,
		Thermal: thermalSink{m: s.thermalMap, e: entity},
		Clock:   s.clock,
	}, opts)

	dev, _, th := s.deviceMapper.Get(entity)
	dev.Gen = gen

	s.devices = append(s.devices, entity)
	s.byName[gc.Name] = entity

	if saved != nil {
		if f := saved.State.Fuel; !f.IsZero() {
			pool.Add(f.ResourceName, saved.State.Volume, saved.Amount)
		}
		th.Accumulated = saved.Thermal
		if err := gen.OnLoad(saved.State); err != nil {
			slog.Warn("device restored without fuel", "device", gc.Name, "error", err)
		}
		return
	}

	index := gc.FuelIndex
	if gc.Fuel != "" {
		if _, i, ok := s.registry.ByName(gc.Fuel); ok {
			index = i
		} else {
			slog.Warn("configured fuel not in catalog", "device", gc.Name, "fuel", gc.Fuel, "index", index)
		}
	}
	if err := gen.SelectFuel(index); err != nil {
		slog.Warn("device has no fuel", "device", gc.Name, "error", err)
		return
	}
	slog.Info("device created", "device", gc.Name, "id", gen.ID(), "fuel", gen.FuelAbbreviation())
}

// SelectFuel substitutes the fuel of the named device, as an operator pick would.
func (s *Station) SelectFuel(name string, index int) error {
	entity, ok := s.byName[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownDevice, name)
	}
	dev, _, _ := s.deviceMapper.Get(entity)
	if err := dev.Gen.OnSelectFuel(index); err != nil {
		return fmt.Errorf("device %q: %w", name, err)
	}
	slog.Info("fuel selected", "device", name, "fuel", dev.Gen.FuelAbbreviation(), "tick", s.clock.Tick())
	return nil
}

// SelectFuelByName substitutes the fuel of the named device by resource name.
func (s *Station) SelectFuelByName(name, resource string) error {
	_, index, ok := s.registry.ByName(resource)
	if !ok {
		return fmt.Errorf("device %q: %w: %q", name, generator.ErrInvalidFuelIndex, resource)
	}
	return s.SelectFuel(name, index)
}

// SetStatsCallback sets a function called with each flushed stats window.
func (s *Station) SetStatsCallback(fn func(telemetry.WindowStats)) {
	s.statsCallback = fn
}

// Registry returns the fuel catalog.
func (s *Station) Registry() *fuel.Registry { return s.registry }

// Settings returns the global settings.
func (s *Station) Settings() *settings.Settings { return s.settings }

// Bank returns the shared charge bank.
func (s *Station) Bank() *components.ChargeBank { return s.bank }

// Clock returns the simulated clock.
func (s *Station) Clock() *Clock { return s.clock }

// Tick returns the current simulation tick.
func (s *Station) Tick() int32 { return s.clock.Tick() }

// Generator returns the generator of the named device.
func (s *Station) Generator(name string) (*generator.Generator, bool) {
	entity, ok := s.byName[name]
	if !ok || !s.world.Alive(entity) {
		return nil, false
	}
	dev, _, _ := s.deviceMapper.Get(entity)
	return dev.Gen, true
}

// DeviceView is a read-only summary of one device for display.
type DeviceView struct {
	Name       string
	ID         string
	Fuel       string
	Output     string  // Formatted display value with unit
	Amount     float64 // Remaining fuel
	MaxAmount  float64
	Mass       float64 // Tonnes
	HeatEnergy float64 // Accumulated thermal energy
}

// Devices returns a summary of every device in configuration order.
func (s *Station) Devices() []DeviceView {
	views := make([]DeviceView, 0, len(s.devices))
	for _, entity := range s.devices {
		dev, _, th := s.deviceMapper.Get(entity)
		views = append(views, DeviceView{
			Name:       dev.Name,
			ID:         dev.Gen.ID(),
			Fuel:       dev.Gen.FuelAbbreviation(),
			Output:     present.Display(dev.Gen.DisplayOutputValue()) + " " + dev.Gen.DisplayOutputUnit(),
			Amount:     dev.Gen.CurrentAmount(),
			MaxAmount:  dev.Gen.MaxAmount(),
			Mass:       dev.Gen.MassTonnes(),
			HeatEnergy: th.Accumulated,
		})
	}
	return views
}

// Unload writes a final snapshot to the output directory and releases resources.
func (s *Station) Unload() {
	if s.outputManager != nil {
		if path, err := s.outputManager.WriteSnapshot(s.Snapshot(nil)); err != nil {
			slog.Error("failed to write final snapshot", "error", err)
		} else {
			slog.Info("final snapshot saved", "path", path, "tick", s.clock.Tick())
		}
		if err := s.outputManager.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
	}
}
