// Package components defines ECS components for the generator station.
package components

import "github.com/pthm-cable/rtg/generator"

// Device identifies a generator device entity.
type Device struct {
	Name string
	Gen  *generator.Generator
}

// Thermal holds the heat a device emits.
type Thermal struct {
	Flux        float64 // Heat flux reported during the current tick
	Accumulated float64 // Flux integrated over tick time since the device was created
}

// AddFlux adds heat produced during the current tick.
func (t *Thermal) AddFlux(amount float64) {
	t.Flux += amount
}

// Integrate folds the current flux into the accumulated energy over dt
// seconds, clears the flux and returns the energy added.
func (t *Thermal) Integrate(dt float64) float64 {
	energy := t.Flux * dt
	t.Accumulated += energy
	t.Flux = 0
	return energy
}
