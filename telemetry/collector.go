package telemetry

import (
	"errors"

	"github.com/pthm-cable/rtg/decay"
	"github.com/pthm-cable/rtg/generator"
)

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationTicks int32

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	tickErrors      int
	missingResource int
	noFuel          int

	// Energy accumulated in current window
	chargeProduced float64
	chargeSpilled  float64
	heatEnergy     float64
}

// NewCollector creates a new stats collector that flushes every windowTicks ticks.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{
		windowDurationTicks: int32(windowTicks),
	}
}

// NewCollectorAt creates a collector whose first window starts at startTick.
func NewCollectorAt(windowTicks int, startTick int32) *Collector {
	c := NewCollector(windowTicks)
	c.windowStartTick = startTick
	return c
}

// RecordTickError records a failed generator tick.
func (c *Collector) RecordTickError(err error) {
	c.tickErrors++
	switch {
	case errors.Is(err, generator.ErrMissingResource):
		c.missingResource++
	case errors.Is(err, generator.ErrNoFuel):
		c.noFuel++
	}
}

// RecordCharge records charge offered to the bank during a tick.
func (c *Collector) RecordCharge(produced, spilled float64) {
	c.chargeProduced += produced
	c.chargeSpilled += spilled
}

// RecordHeat records thermal energy delivered during a tick.
func (c *Collector) RecordHeat(energy float64) {
	c.heatEnergy += energy
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// The caller must provide:
// - currentTick: the current simulation tick
// - universalTime, elapsed: simulated time now and since the first tick
// - samples: one entry per generator device
// - chargeLevel: bank fill fraction at window end
func (c *Collector) Flush(
	currentTick int32,
	universalTime, elapsed float64,
	samples []GeneratorSample,
	chargeLevel float64,
) WindowStats {
	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		UniversalTime:   universalTime,
		ElapsedYears:    elapsed / decay.SecondsPerYear,

		ChargeLevel:    chargeLevel,
		ChargeProduced: c.chargeProduced,
		ChargeSpilled:  c.chargeSpilled,
		HeatEnergy:     c.heatEnergy,

		TickErrors:      c.tickErrors,
		MissingResource: c.missingResource,
		NoFuel:          c.noFuel,
	}
	summarizeSamples(&stats, samples)

	// Reset for next window
	c.windowStartTick = currentTick
	c.tickErrors = 0
	c.missingResource = 0
	c.noFuel = 0
	c.chargeProduced = 0
	c.chargeSpilled = 0
	c.heatEnergy = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
