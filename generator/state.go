package generator

import (
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/rtg/decay"
	"github.com/pthm-cable/rtg/fuel"
)

// State holds the values a host persists to resume a device.
type State struct {
	Volume      float64     `yaml:"volume" json:"volume"`
	Efficiency  float64     `yaml:"efficiency" json:"efficiency"`
	FuelIndex   int         `yaml:"fuel_selector_index" json:"fuel_selector_index"`
	Fuel        fuel.Config `yaml:"fuel" json:"fuel"`
	TimeOfStart float64     `yaml:"time_of_start" json:"time_of_start"`
}

// Snapshot captures the persistent state of g.
func (g *Generator) Snapshot() State {
	return State{
		Volume:      g.volume,
		Efficiency:  g.efficiency,
		FuelIndex:   g.selected,
		Fuel:        g.fuel,
		TimeOfStart: g.startTime,
	}
}

// OnLoad restores a persisted device. A persisted fuel is kept as saved even
// if the catalog has changed since; without one, the saved index is selected
// as a fresh load. The start time is only restored if it was anchored, and
// the efficiency only if it lies in [0, 1]. A rejected index leaves the
// device unchanged.
func (g *Generator) OnLoad(st State) error {
	if st.Fuel.IsZero() {
		if g.registry.Len() == 0 {
			return ErrEmptyCatalog
		}
		if _, err := g.registry.Lookup(st.FuelIndex); err != nil {
			slog.Warn("could not restore fuel selection", "generator", g.id, "index", st.FuelIndex, "error", err)
			return fmt.Errorf("%w: %w", ErrInvalidFuelIndex, err)
		}
	}

	if st.Volume > 0 {
		g.volume = st.Volume
	}
	if st.Efficiency >= 0 && st.Efficiency <= 1 {
		g.efficiency = st.Efficiency
	}
	if st.TimeOfStart >= 0 {
		g.startTime = st.TimeOfStart
	}

	if st.Fuel.IsZero() {
		return g.SelectFuel(st.FuelIndex)
	}

	g.selected = st.FuelIndex
	g.fuel = st.Fuel
	g.maxAmount = g.volume

	name := g.fuel.ResourceName
	if !g.deps.Pool.Has(name) {
		g.deps.Pool.Add(name, g.maxAmount, g.maxAmount)
	}
	g.amount = g.deps.Pool.Amount(name)
	g.mass = g.baseMass + g.amount*g.fuel.Density
	g.rawOutput = decay.Output(g.fuel, g.amount, g.settings.HeatScale)
	g.updateDisplay()

	slog.Debug("generator restored", "generator", g.id, "fuel", name, "amount", g.amount, "start", g.startTime)
	return nil
}

// MarshalState encodes st as YAML.
func MarshalState(st State) ([]byte, error) {
	data, err := yaml.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("marshaling generator state: %w", err)
	}
	return data, nil
}

// UnmarshalState decodes a YAML state. Missing fields keep their zero value
// except Efficiency and TimeOfStart, which default to Unset.
func UnmarshalState(data []byte) (State, error) {
	st := State{Efficiency: Unset, TimeOfStart: Unset}
	if err := yaml.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("parsing generator state: %w", err)
	}
	return st, nil
}
