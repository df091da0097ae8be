package station

import (
	"errors"
	"math"
	"os"
	"strings"
	"testing"

	"github.com/pthm-cable/rtg/config"
	"github.com/pthm-cable/rtg/decay"
	"github.com/pthm-cable/rtg/generator"
	"github.com/pthm-cable/rtg/telemetry"
)

const testYAML = `
fuels:
  - resourceName: TestFuel
    resourceAbbr: TF
    halflife: 1
    pep: 100
    density: 0.01
  - resourceName: SlowFuel
    resourceAbbr: SF
    halflife: 100
    pep: 10
    density: 0.02
globals:
  - GenerateHeat: false
clock:
  dt: 1
  warp: 1
  start_time: 0
station:
  charge_capacity: 0
  generators:
    - name: rtg-1
      volume: 5
      efficiency: 0.5
      base_mass: 0.1
      fuel: TestFuel
telemetry:
  stats_window: 10
  bookmark_history_size: 10
  perf_collector_window: 10
`

func testConfig(t *testing.T, mutate func(*config.Config)) *config.Config {
	t.Helper()
	cfg, err := config.LoadBytes([]byte(testYAML))
	if err != nil {
		t.Fatalf("LoadBytes failed: %v", err)
	}
	if mutate != nil {
		mutate(cfg)
	}
	return cfg
}

func newTestStation(t *testing.T, cfg *config.Config, opts Options) *Station {
	t.Helper()
	s, err := New(cfg, opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(s.Unload)
	return s
}

func collectStats(s *Station) *[]telemetry.WindowStats {
	var windows []telemetry.WindowStats
	s.SetStatsCallback(func(ws telemetry.WindowStats) {
		windows = append(windows, ws)
	})
	return &windows
}

func TestStationElectricity(t *testing.T) {
	s := newTestStation(t, testConfig(t, nil), Options{})
	windows := collectStats(s)

	for i := 0; i < 10; i++ {
		s.Step()
	}

	// raw = pep * volume * density = 5, delivered at efficiency 0.5 for 1s per tick
	if math.Abs(s.Bank().Amount-25) > 1e-3 {
		t.Errorf("bank = %v, want ~25", s.Bank().Amount)
	}

	if len(*windows) != 1 {
		t.Fatalf("windows = %d, want 1", len(*windows))
	}
	ws := (*windows)[0]
	if ws.WindowEndTick != 10 {
		t.Errorf("WindowEndTick = %d, want 10", ws.WindowEndTick)
	}
	if ws.Fueled != 1 || ws.TickErrors != 0 {
		t.Errorf("Fueled/TickErrors = %d/%d, want 1/0", ws.Fueled, ws.TickErrors)
	}
	if math.Abs(ws.ChargeProduced-25) > 1e-3 {
		t.Errorf("ChargeProduced = %v, want ~25", ws.ChargeProduced)
	}
	if ws.HeatEnergy != 0 {
		t.Errorf("HeatEnergy = %v, want 0 in electricity mode", ws.HeatEnergy)
	}

	views := s.Devices()
	if len(views) != 1 || views[0].Fuel != "TF" {
		t.Fatalf("Devices = %+v", views)
	}
	if views[0].Output != "2.5 Ec/s" {
		t.Errorf("Output = %q, want %q", views[0].Output, "2.5 Ec/s")
	}
}

func TestStationHeat(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) {
		c.Globals = nil
	})
	s := newTestStation(t, cfg, Options{})
	windows := collectStats(s)

	for i := 0; i < 10; i++ {
		s.Step()
	}

	if s.Bank().Amount != 0 {
		t.Errorf("bank = %v, want 0 in heat mode", s.Bank().Amount)
	}
	if got := s.Devices()[0].HeatEnergy; math.Abs(got-50) > 1e-3 {
		t.Errorf("HeatEnergy = %v, want ~50", got)
	}
	if len(*windows) != 1 || math.Abs((*windows)[0].HeatEnergy-50) > 1e-3 {
		t.Errorf("window heat = %+v", *windows)
	}
}

func TestStationFuelDecaysAcrossWindows(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) {
		// Ten ticks per half-life
		c.Clock.Warp = decay.SecondsPerYear / 10
	})
	dir := t.TempDir()
	s := newTestStation(t, cfg, Options{SnapshotDir: dir})
	windows := collectStats(s)

	for i := 0; i < 30; i++ {
		s.Step()
	}

	if len(*windows) != 3 {
		t.Fatalf("windows = %d, want 3", len(*windows))
	}
	prev := 1.0
	for i, ws := range *windows {
		if ws.FuelP50 >= prev {
			t.Errorf("window %d: fuel fraction %v did not decrease from %v", i, ws.FuelP50, prev)
		}
		prev = ws.FuelP50
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	halfLives := 0
	for _, e := range entries {
		if strings.Contains(e.Name(), string(telemetry.BookmarkHalfLife)) {
			halfLives++
		}
	}
	if halfLives < 2 {
		t.Errorf("half-life snapshots = %d, want at least 2", halfLives)
	}
}

func TestStationMissingResourceIsCounted(t *testing.T) {
	s := newTestStation(t, testConfig(t, nil), Options{})
	windows := collectStats(s)

	_, pool, _ := s.deviceMapper.Get(s.byName["rtg-1"])
	pool.Remove("TestFuel")

	for i := 0; i < 10; i++ {
		s.Step()
	}

	if len(*windows) != 1 {
		t.Fatalf("windows = %d, want 1", len(*windows))
	}
	ws := (*windows)[0]
	if ws.TickErrors != 10 || ws.MissingResource != 10 {
		t.Errorf("TickErrors/MissingResource = %d/%d, want 10/10", ws.TickErrors, ws.MissingResource)
	}
	if s.Bank().Amount != 0 {
		t.Errorf("bank = %v, want 0", s.Bank().Amount)
	}
}

func TestStationEmptyCatalog(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) {
		c.Fuels = nil
	})
	s := newTestStation(t, cfg, Options{})
	windows := collectStats(s)

	for i := 0; i < 10; i++ {
		s.Step()
	}

	if len(*windows) != 1 {
		t.Fatalf("windows = %d, want 1", len(*windows))
	}
	ws := (*windows)[0]
	if ws.Fueled != 0 || ws.NoFuel != 10 {
		t.Errorf("Fueled/NoFuel = %d/%d, want 0/10", ws.Fueled, ws.NoFuel)
	}
	if err := s.SelectFuel("rtg-1", 0); !errors.Is(err, generator.ErrEmptyCatalog) {
		t.Errorf("SelectFuel = %v, want ErrEmptyCatalog", err)
	}
}

func TestStationSelectFuel(t *testing.T) {
	s := newTestStation(t, testConfig(t, nil), Options{})

	for i := 0; i < 5; i++ {
		s.Step()
	}

	if err := s.SelectFuel("rtg-9", 0); !errors.Is(err, ErrUnknownDevice) {
		t.Errorf("unknown device: got %v", err)
	}
	if err := s.SelectFuel("rtg-1", 7); !errors.Is(err, generator.ErrInvalidFuelIndex) {
		t.Errorf("invalid index: got %v", err)
	}
	if err := s.SelectFuelByName("rtg-1", "Unobtainium"); !errors.Is(err, generator.ErrInvalidFuelIndex) {
		t.Errorf("unknown resource: got %v", err)
	}

	if err := s.SelectFuelByName("rtg-1", "SlowFuel"); err != nil {
		t.Fatalf("SelectFuelByName failed: %v", err)
	}
	gen, ok := s.Generator("rtg-1")
	if !ok {
		t.Fatal("generator rtg-1 not found")
	}
	if gen.FuelAbbreviation() != "SF" || gen.SelectedIndex() != 1 {
		t.Errorf("fuel = %s (%d), want SF (1)", gen.FuelAbbreviation(), gen.SelectedIndex())
	}
	if gen.CurrentAmount() != 5 {
		t.Errorf("amount = %v, want full inventory 5", gen.CurrentAmount())
	}

	_, pool, _ := s.deviceMapper.Get(s.byName["rtg-1"])
	if pool.Has("TestFuel") || !pool.Has("SlowFuel") {
		t.Errorf("pool entries = %v, want only SlowFuel", pool.Names())
	}
}

func TestStationResume(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) {
		c.Clock.Warp = 1e5
	})
	s := newTestStation(t, cfg, Options{})
	for i := 0; i < 15; i++ {
		s.Step()
	}

	dir := t.TempDir()
	path, err := s.SaveSnapshot(dir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	snap, err := telemetry.LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	resumed := newTestStation(t, cfg, Options{Resume: snap})

	if resumed.Tick() != s.Tick() || resumed.Clock().Now() != s.Clock().Now() {
		t.Errorf("clock = %d/%v, want %d/%v", resumed.Tick(), resumed.Clock().Now(), s.Tick(), s.Clock().Now())
	}
	if resumed.Bank().Amount != s.Bank().Amount {
		t.Errorf("bank = %v, want %v", resumed.Bank().Amount, s.Bank().Amount)
	}

	orig, _ := s.Generator("rtg-1")
	gen, _ := resumed.Generator("rtg-1")
	if gen.ID() != orig.ID() {
		t.Errorf("ID = %s, want %s", gen.ID(), orig.ID())
	}
	if gen.StartTime() != orig.StartTime() {
		t.Errorf("StartTime = %v, want %v", gen.StartTime(), orig.StartTime())
	}
	if gen.CurrentAmount() != orig.CurrentAmount() {
		t.Errorf("amount = %v, want %v (inventory must not reset)", gen.CurrentAmount(), orig.CurrentAmount())
	}

	s.Step()
	resumed.Step()
	if gen.CurrentAmount() != orig.CurrentAmount() {
		t.Errorf("after step amount = %v, want %v", gen.CurrentAmount(), orig.CurrentAmount())
	}
}

func TestStationDuplicateDeviceName(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) {
		c.Station.Generators = append(c.Station.Generators, c.Station.Generators[0])
	})
	if _, err := New(cfg, Options{}); err == nil {
		t.Error("expected error for duplicate device name")
	}
}

func TestStationOutputDir(t *testing.T) {
	dir := t.TempDir()
	s, err := New(testConfig(t, nil), Options{OutputDir: dir})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	for i := 0; i < 20; i++ {
		s.Step()
	}
	s.Unload()

	for _, name := range []string{"config.yaml", "info.txt", "telemetry.csv", "devices.csv", "perf.csv", "bookmarks.csv"} {
		if _, err := os.Stat(dir + "/" + name); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
	data, err := os.ReadFile(dir + "/devices.csv")
	if err != nil {
		t.Fatal(err)
	}
	rows := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(rows) != 3 || !strings.HasPrefix(rows[2], "20,rtg-1,TF,") {
		t.Errorf("devices.csv = %q, want header + one row per window", rows)
	}

	snaps, err := os.ReadDir(dir + "/snapshots")
	if err != nil || len(snaps) != 1 {
		t.Errorf("final snapshot missing: %v %v", snaps, err)
	}
}
