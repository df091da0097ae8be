// Package generator implements a single decaying-fuel generator device.
package generator

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pthm-cable/rtg/decay"
	"github.com/pthm-cable/rtg/fuel"
	"github.com/pthm-cable/rtg/present"
	"github.com/pthm-cable/rtg/settings"
)

var (
	// ErrInvalidFuelIndex rejects a substitution to an index outside the catalog.
	ErrInvalidFuelIndex = errors.New("invalid fuel index")
	// ErrEmptyCatalog rejects substitutions when no fuel is defined at all.
	ErrEmptyCatalog = errors.New("fuel catalog is empty")
	// ErrNoFuel is returned by Tick before any fuel has been selected.
	ErrNoFuel = errors.New("no fuel selected")
	// ErrMissingResource is returned by Tick when the pool holds no entry for the selected fuel.
	ErrMissingResource = errors.New("no matching resource for selected fuel")
)

// Unset marks a start time that has not been anchored yet, or a persisted
// field that was absent.
const Unset = -1.0

// Options configures a new generator.
type Options struct {
	ID         string  // Generated when empty
	Volume     float64 // Fuel capacity
	Efficiency float64 // Heat to electricity conversion, 0..1
	BaseMass   float64 // Dry mass in tonnes
	FuelIndex  int     // Initial catalog selection
}

// Generator is one device. It is not safe for concurrent use; the host calls
// Tick and SelectFuel sequentially.
type Generator struct {
	id       string
	registry *fuel.Registry
	settings *settings.Settings
	deps     Deps

	volume     float64
	efficiency float64
	baseMass   float64

	selected  int
	fuel      fuel.Config // Copied at substitution time
	startTime float64

	amount    float64
	maxAmount float64
	mass      float64
	rawOutput float64

	displayValue float64
	displayUnit  string
}

var _ Module = (*Generator)(nil)

// New creates a generator with no fuel loaded. Call SelectFuel or OnLoad
// before the first tick.
func New(reg *fuel.Registry, s *settings.Settings, deps Deps, opts Options) *Generator {
	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}
	g := &Generator{
		id:         id,
		registry:   reg,
		settings:   s,
		deps:       deps,
		volume:     opts.Volume,
		efficiency: opts.Efficiency,
		baseMass:   opts.BaseMass,
		selected:   opts.FuelIndex,
		startTime:  Unset,
		maxAmount:  opts.Volume,
		mass:       opts.BaseMass,
	}
	g.updateDisplay()
	return g
}

// SelectFuel swaps the active fuel and resets the inventory to a full load.
// Any catalog fuel held in the pool is removed first, whether or not it is the
// current one. Selecting the active fuel again still resets it. On error the
// generator is left unchanged.
func (g *Generator) SelectFuel(index int) error {
	if g.registry.Len() == 0 {
		return ErrEmptyCatalog
	}
	cfg, err := g.registry.Lookup(index)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFuelIndex, err)
	}

	for _, name := range g.registry.Names() {
		if g.deps.Pool.Has(name) {
			g.deps.Pool.Remove(name)
		}
	}

	g.selected = index
	g.fuel = cfg

	g.maxAmount = g.volume
	g.amount = g.volume
	g.deps.Pool.Add(cfg.ResourceName, g.maxAmount, g.amount)

	g.mass = g.baseMass + g.amount*cfg.Density

	// Zero elapsed time: full output of a fresh load.
	g.rawOutput = decay.Step(cfg, g.maxAmount, 0, 0, g.settings.HeatScale).Output
	g.updateDisplay()

	slog.Debug("fuel selected",
		"generator", g.id,
		"index", index,
		"fuel", cfg.ResourceName,
		"amount", g.amount,
	)
	return nil
}

// Tick advances the decay to now and delivers output for a tick of dt seconds.
// Errors are reported but leave the generator usable for the next tick.
func (g *Generator) Tick(now, dt float64) error {
	if g.fuel.IsZero() {
		slog.Error("generator has no fuel", "generator", g.id)
		return ErrNoFuel
	}

	if g.startTime < 0 {
		g.startTime = now
	}

	name := g.fuel.ResourceName
	if !g.deps.Pool.Has(name) {
		slog.Error("module resource has no matching part resource", "generator", g.id, "resource", name)
		return fmt.Errorf("%w: %q", ErrMissingResource, name)
	}

	r := decay.Step(g.fuel, g.maxAmount, g.startTime, now, g.settings.HeatScale)
	g.deps.Pool.SetAmount(name, r.Amount)
	g.amount = r.Amount
	g.rawOutput = r.Output
	g.mass = g.baseMass + g.amount*g.fuel.Density

	if g.settings.GenerateElectricity && g.deps.Charge != nil {
		g.deps.Charge.Withdraw(-g.rawOutput * g.efficiency * dt)
	}
	if g.settings.GenerateHeat && g.deps.Thermal != nil {
		g.deps.Thermal.AddFlux(g.rawOutput)
	}

	g.updateDisplay()
	return nil
}

// OnTick ticks using the injected clock.
func (g *Generator) OnTick() error {
	return g.Tick(g.deps.Clock.Now(), g.deps.Clock.TickDeltaTime())
}

// OnSelectFuel is SelectFuel for hosts driving the Module interface.
func (g *Generator) OnSelectFuel(index int) error {
	return g.SelectFuel(index)
}

func (g *Generator) updateDisplay() {
	g.displayValue, g.displayUnit = present.Format(g.rawOutput, g.efficiency, g.settings)
}

// ID returns the device identifier.
func (g *Generator) ID() string { return g.id }

// DisplayOutputValue returns the last output scaled for display.
func (g *Generator) DisplayOutputValue() float64 { return g.displayValue }

// DisplayOutputUnit returns the unit matching DisplayOutputValue.
func (g *Generator) DisplayOutputUnit() string { return g.displayUnit }

// FuelAbbreviation returns the active fuel's abbreviation, or "" with no fuel.
func (g *Generator) FuelAbbreviation() string { return g.fuel.ResourceAbbr }

// FuelName returns the active fuel's resource name, or "" with no fuel.
func (g *Generator) FuelName() string { return g.fuel.ResourceName }

// Fuel returns a copy of the active fuel and whether one is loaded.
func (g *Generator) Fuel() (fuel.Config, bool) { return g.fuel, !g.fuel.IsZero() }

// HalflifeYears returns the active fuel's half-life.
func (g *Generator) HalflifeYears() float64 { return g.fuel.HalflifeYears }

// MassTonnes returns dry mass plus fuel mass.
func (g *Generator) MassTonnes() float64 { return g.mass }

// SelectedIndex returns the catalog index of the last selection.
func (g *Generator) SelectedIndex() int { return g.selected }

// StartTime returns the universal time decay is measured from, or Unset.
func (g *Generator) StartTime() float64 { return g.startTime }

// CurrentAmount returns the fuel inventory as of the last tick.
func (g *Generator) CurrentAmount() float64 { return g.amount }

// MaxAmount returns the inventory capacity.
func (g *Generator) MaxAmount() float64 { return g.maxAmount }

// RawOutput returns the pre-efficiency output rate.
func (g *Generator) RawOutput() float64 { return g.rawOutput }

// Efficiency returns the conversion factor applied to electric output.
func (g *Generator) Efficiency() float64 { return g.efficiency }

// Volume returns the fuel volume loaded on selection.
func (g *Generator) Volume() float64 { return g.volume }
