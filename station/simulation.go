package station

import (
	"github.com/pthm-cable/rtg/telemetry"
)

// UpdateHeadless runs StepsPerUpdate ticks.
func (s *Station) UpdateHeadless() {
	for i := 0; i < s.stepsPerUpdate; i++ {
		s.Step()
	}
}

// Step runs a single simulation tick: every device decays and delivers its
// output at the current time, heat is integrated, then the clock advances.
func (s *Station) Step() {
	s.perfCollector.StartTick()

	s.perfCollector.StartPhase(telemetry.PhaseDecay)
	s.tickDevices()

	s.perfCollector.StartPhase(telemetry.PhaseThermal)
	s.integrateHeat()

	s.perfCollector.StartPhase(telemetry.PhaseClock)
	s.clock.Advance()

	s.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	s.flushTelemetry()

	s.perfCollector.EndTick(len(s.devices), s.clock.TickDeltaTime())
}

// tickDevices drives every generator once. Tick errors are counted and
// never stop the loop.
func (s *Station) tickDevices() {
	query := s.deviceFilter.Query()
	for query.Next() {
		dev, _, _ := query.Get()
		if dev.Gen == nil {
			continue
		}
		if err := dev.Gen.OnTick(); err != nil {
			s.collector.RecordTickError(err)
		}
	}

	produced, spilled := s.bank.Drain()
	s.collector.RecordCharge(produced, spilled)
}

// integrateHeat folds each device's flux for this tick into its accumulated energy.
func (s *Station) integrateHeat() {
	dt := s.clock.TickDeltaTime()

	query := s.deviceFilter.Query()
	for query.Next() {
		_, _, th := query.Get()
		s.collector.RecordHeat(th.Integrate(dt))
	}
}
