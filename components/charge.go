package components

import "math"

// ChargeBank is the electric charge storage shared by every device on a station.
type ChargeBank struct {
	Capacity float64 // Zero or negative means unbounded
	Amount   float64

	// Accumulated since the last Drain
	produced float64
	spilled  float64
}

// NewChargeBank creates an empty bank.
func NewChargeBank(capacity float64) *ChargeBank {
	return &ChargeBank{Capacity: capacity}
}

// Withdraw requests amount of charge. A negative amount supplies charge to
// the bank instead. The return value is the amount actually moved, with the
// same sign as the request.
func (b *ChargeBank) Withdraw(amount float64) float64 {
	if amount >= 0 {
		taken := math.Min(amount, b.Amount)
		b.Amount -= taken
		return taken
	}

	supply := -amount
	accepted := supply
	if b.Capacity > 0 {
		accepted = math.Min(supply, math.Max(b.Capacity-b.Amount, 0))
	}
	b.Amount += accepted
	b.produced += accepted
	b.spilled += supply - accepted
	return -accepted
}

// Level returns the fill fraction, or 0 for an unbounded bank.
func (b *ChargeBank) Level() float64 {
	if b.Capacity <= 0 {
		return 0
	}
	return b.Amount / b.Capacity
}

// Drain returns the charge accepted and spilled since the previous call and
// resets both counters.
func (b *ChargeBank) Drain() (produced, spilled float64) {
	produced, spilled = b.produced, b.spilled
	b.produced, b.spilled = 0, 0
	return produced, spilled
}
