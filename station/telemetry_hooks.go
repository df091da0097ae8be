package station

import (
	"log/slog"

	"github.com/pthm-cable/rtg/decay"
	"github.com/pthm-cable/rtg/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (s *Station) flushTelemetry() {
	tick := s.clock.Tick()
	if !s.collector.ShouldFlush(tick) {
		return
	}

	samples := s.sampleDevices()

	stats := s.collector.Flush(tick, s.clock.Now(), s.clock.Elapsed(), samples, s.bank.Level())
	perfStats := s.perfCollector.Stats()

	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if s.outputManager != nil {
		if err := s.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := s.outputManager.WriteDevices(stats.WindowEndTick, samples); err != nil {
			slog.Error("failed to write devices", "error", err)
		}
		if err := s.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	bookmarks := s.bookmarkDetector.Check(stats, samples)
	for _, bm := range bookmarks {
		if s.logStats {
			bm.LogBookmark()
		}

		if s.outputManager != nil {
			if err := s.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}

		if s.snapshotDir != "" {
			s.saveSnapshot(&bm)
		}
	}
}

// sampleDevices collects one sample per device in configuration order.
func (s *Station) sampleDevices() []telemetry.GeneratorSample {
	now := s.clock.Now()
	samples := make([]telemetry.GeneratorSample, 0, len(s.devices))

	for _, entity := range s.devices {
		dev, _, _ := s.deviceMapper.Get(entity)
		gen := dev.Gen

		sample := telemetry.GeneratorSample{
			Name:      dev.Name,
			RawOutput: gen.RawOutput(),
			Mass:      gen.MassTonnes(),
		}
		if f, ok := gen.Fuel(); ok {
			sample.Fuel = f.ResourceAbbr
			if gen.MaxAmount() > 0 {
				sample.Fraction = gen.CurrentAmount() / gen.MaxAmount()
			}
			if start := gen.StartTime(); start >= 0 {
				sample.HalfLives = decay.HalfLivesElapsed(now-start, f.HalflifeYears)
			}
		}
		samples = append(samples, sample)
	}
	return samples
}

// Snapshot captures the station state for resuming.
func (s *Station) Snapshot(bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	snapshot := &telemetry.Snapshot{
		Version:       telemetry.SnapshotVersion,
		Tick:          s.clock.Tick(),
		UniversalTime: s.clock.Now(),
		ChargeAmount:  s.bank.Amount,
		Bookmark:      bookmark,
	}

	for _, entity := range s.devices {
		dev, pool, th := s.deviceMapper.Get(entity)
		st := dev.Gen.Snapshot()
		snapshot.Devices = append(snapshot.Devices, telemetry.DeviceState{
			Name:    dev.Name,
			ID:      dev.Gen.ID(),
			Amount:  pool.Amount(st.Fuel.ResourceName),
			Thermal: th.Accumulated,
			State:   st,
		})
	}

	return snapshot
}

// SaveSnapshot writes the current state to dir and returns the file path.
func (s *Station) SaveSnapshot(dir string) (string, error) {
	return telemetry.SaveSnapshot(s.Snapshot(nil), dir)
}

// saveSnapshot creates and saves a bookmark snapshot to disk.
func (s *Station) saveSnapshot(bookmark *telemetry.Bookmark) {
	path, err := telemetry.SaveSnapshot(s.Snapshot(bookmark), s.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}

	slog.Info("snapshot saved", "path", path, "tick", s.clock.Tick())
}
