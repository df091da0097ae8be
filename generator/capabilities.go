package generator

// ResourcePool is the host-owned inventory of a single device.
// The generator never stores fuel itself; it only manipulates entries here.
type ResourcePool interface {
	Has(name string) bool
	Remove(name string)
	Add(name string, maxAmount, amount float64)
	Amount(name string) float64
	SetAmount(name string, amount float64)
}

// ChargeSink is the electric charge network a device is attached to.
// Withdraw follows the host request convention: a negative amount supplies
// charge. It returns the amount actually moved.
type ChargeSink interface {
	Withdraw(amount float64) float64
}

// ThermalSink receives heat produced by a device.
type ThermalSink interface {
	AddFlux(amount float64)
}

// Clock reports simulated time. TickDeltaTime is already scaled by any time
// acceleration.
type Clock interface {
	Now() float64
	TickDeltaTime() float64
}

// Module is the lifecycle surface a host drives.
type Module interface {
	OnLoad(State) error
	OnTick() error
	OnSelectFuel(index int) error
}

// Deps bundles the capabilities injected by the host.
// Charge and Thermal may be nil when the corresponding mode is never used.
type Deps struct {
	Pool    ResourcePool
	Charge  ChargeSink
	Thermal ThermalSink
	Clock   Clock
}
