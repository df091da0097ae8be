// Package decay computes remaining fuel and output under exponential half-life decay.
// Every function here is pure: identical inputs always give identical results.
package decay

import (
	"math"

	"github.com/pthm-cable/rtg/fuel"
)

// SecondsPerYear is the length of one simulated (Kerbin) year in seconds.
// Fuel half-lives are expressed in these years, not Earth years.
const SecondsPerYear = 9203545

// Result is the outcome of one decay step.
type Result struct {
	Amount   float64 // Remaining fuel, clamped to [0, maxAmount]
	Output   float64 // Raw output before mode and efficiency scaling
	Fraction float64 // Unclamped decay fraction
}

// HalfLifeSeconds converts a half-life in simulated years to seconds.
func HalfLifeSeconds(halflifeYears float64) float64 {
	return halflifeYears * SecondsPerYear
}

// Fraction returns 2^(-elapsed/halflife). A negative elapsed time (clock
// regression) yields a fraction above 1; callers clamp the resulting amount.
func Fraction(elapsed, halflifeYears float64) float64 {
	return math.Pow(2, -elapsed/HalfLifeSeconds(halflifeYears))
}

// HalfLivesElapsed returns how many half-lives fit into elapsed seconds.
func HalfLivesElapsed(elapsed, halflifeYears float64) float64 {
	return elapsed / HalfLifeSeconds(halflifeYears)
}

// ElapsedFor returns the elapsed seconds after which the decay fraction reaches
// fraction. It is the inverse of Fraction and returns +Inf for fraction <= 0.
func ElapsedFor(fraction, halflifeYears float64) float64 {
	if fraction <= 0 {
		return math.Inf(1)
	}
	return -math.Log2(fraction) * HalfLifeSeconds(halflifeYears)
}

// Output returns the raw output of amount units of fuel.
func Output(f fuel.Config, amount, heatScale float64) float64 {
	return f.Pep * (amount * f.Density) * heatScale
}

// Step computes the remaining amount and raw output at now for a full load of
// maxAmount that started decaying at startTime. The elapsed time is used as-is.
func Step(f fuel.Config, maxAmount, startTime, now, heatScale float64) Result {
	frac := Fraction(now-startTime, f.HalflifeYears)

	amount := maxAmount * frac
	if amount > maxAmount {
		amount = maxAmount
	}
	if amount < 0 || math.IsNaN(amount) {
		amount = 0
	}

	return Result{
		Amount:   amount,
		Output:   Output(f, amount, heatScale),
		Fraction: frac,
	}
}
