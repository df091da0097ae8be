package telemetry

import (
	"log/slog"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Phase is one stage of a station step.
type Phase int

const (
	PhaseDecay Phase = iota
	PhaseThermal
	PhaseClock
	PhaseTelemetry
	numPhases
)

var phaseNames = [numPhases]string{"decay", "thermal", "clock", "telemetry"}

func (p Phase) String() string {
	if p < 0 || p >= numPhases {
		return "unknown"
	}
	return phaseNames[p]
}

// stepCost is the wall-clock cost of one step.
type stepCost struct {
	total      time.Duration
	phases     [numPhases]time.Duration
	devices    int
	simSeconds float64
}

// PerfCollector tracks what a station step costs in wall time, per step and
// per device, over a ring of recent steps.
type PerfCollector struct {
	ring  []stepCost
	next  int
	count int

	cur        stepCost
	stepStart  time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool
}

// NewPerfCollector creates a collector averaging over the last window steps.
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 60
	}
	return &PerfCollector{ring: make([]stepCost, window)}
}

// StartTick begins timing a step.
func (p *PerfCollector) StartTick() {
	p.cur = stepCost{}
	p.stepStart = time.Now()
	p.inPhase = false
}

// StartPhase closes the running phase, if any, and opens ph.
func (p *PerfCollector) StartPhase(ph Phase) {
	now := time.Now()
	p.closePhase(now)
	p.phase = ph
	p.phaseStart = now
	p.inPhase = true
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.inPhase {
		p.cur.phases[p.phase] += now.Sub(p.phaseStart)
		p.inPhase = false
	}
}

// EndTick records the step. devices is the number of generators driven and
// simSeconds the simulated time the step covered.
func (p *PerfCollector) EndTick(devices int, simSeconds float64) {
	now := time.Now()
	p.closePhase(now)
	p.cur.total = now.Sub(p.stepStart)
	p.cur.devices = devices
	p.cur.simSeconds = simSeconds

	p.ring[p.next] = p.cur
	p.next = (p.next + 1) % len(p.ring)
	if p.count < len(p.ring) {
		p.count++
	}
}

// PerfStats summarizes the recorded steps.
type PerfStats struct {
	Steps   int
	AvgStep time.Duration
	P95Step time.Duration
	MaxStep time.Duration

	// AvgPerDevice is the mean step cost divided by the devices it drove.
	AvgPerDevice time.Duration

	// SimRate is simulated seconds advanced per wall second spent stepping.
	SimRate float64

	PhaseShare [numPhases]float64 // Percent of step time
}

// Stats aggregates the ring.
func (p *PerfCollector) Stats() PerfStats {
	if p.count == 0 {
		return PerfStats{}
	}

	totals := make([]float64, p.count)
	var wall, perDevice time.Duration
	var sim float64
	var phaseSum [numPhases]time.Duration
	var maxStep time.Duration

	for i, c := range p.ring[:p.count] {
		totals[i] = float64(c.total)
		wall += c.total
		sim += c.simSeconds
		maxStep = max(maxStep, c.total)
		if c.devices > 0 {
			perDevice += c.total / time.Duration(c.devices)
		}
		for ph, d := range c.phases {
			phaseSum[ph] += d
		}
	}
	slices.Sort(totals)

	ps := PerfStats{
		Steps:        p.count,
		AvgStep:      wall / time.Duration(p.count),
		P95Step:      time.Duration(stat.Quantile(0.95, stat.Empirical, totals, nil)),
		MaxStep:      maxStep,
		AvgPerDevice: perDevice / time.Duration(p.count),
	}
	if wall > 0 {
		ps.SimRate = sim / wall.Seconds()
		for ph, d := range phaseSum {
			ps.PhaseShare[ph] = float64(d) / float64(wall) * 100
		}
	}
	return ps
}

// LogStats logs the summary, listing only phases above a tenth of a percent.
func (s PerfStats) LogStats() {
	attrs := []any{
		"steps", s.Steps,
		"avg_step_us", s.AvgStep.Microseconds(),
		"p95_step_us", s.P95Step.Microseconds(),
		"per_device_ns", s.AvgPerDevice.Nanoseconds(),
		"sim_rate", s.SimRate,
	}
	for ph := Phase(0); ph < numPhases; ph++ {
		if share := s.PhaseShare[ph]; share > 0.1 {
			attrs = append(attrs, ph.String()+"_pct", int(share*10)/10.0)
		}
	}
	slog.Info("perf", attrs...)
}

// PerfRow is one perf.csv line.
type PerfRow struct {
	WindowEnd    int32   `csv:"window_end"`
	Steps        int     `csv:"steps"`
	AvgStepUS    int64   `csv:"avg_step_us"`
	P95StepUS    int64   `csv:"p95_step_us"`
	MaxStepUS    int64   `csv:"max_step_us"`
	PerDeviceNS  int64   `csv:"per_device_ns"`
	SimRate      float64 `csv:"sim_rate"`
	DecayPct     float64 `csv:"decay_pct"`
	ThermalPct   float64 `csv:"thermal_pct"`
	ClockPct     float64 `csv:"clock_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// Row flattens the summary for the window ending at windowEnd.
func (s PerfStats) Row(windowEnd int32) PerfRow {
	return PerfRow{
		WindowEnd:    windowEnd,
		Steps:        s.Steps,
		AvgStepUS:    s.AvgStep.Microseconds(),
		P95StepUS:    s.P95Step.Microseconds(),
		MaxStepUS:    s.MaxStep.Microseconds(),
		PerDeviceNS:  s.AvgPerDevice.Nanoseconds(),
		SimRate:      s.SimRate,
		DecayPct:     s.PhaseShare[PhaseDecay],
		ThermalPct:   s.PhaseShare[PhaseThermal],
		ClockPct:     s.PhaseShare[PhaseClock],
		TelemetryPct: s.PhaseShare[PhaseTelemetry],
	}
}
