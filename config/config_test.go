package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/rtg/fuel"
	"github.com/pthm-cable/rtg/settings"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	reg, report := fuel.Build(cfg.Fuels)
	if report.Rejects != 0 {
		t.Errorf("default fuels rejected: %v", report.Errors)
	}
	if reg.Len() != 5 {
		t.Errorf("default catalog has %d fuels, want 5", reg.Len())
	}

	s, errs := settings.Build(cfg.Globals)
	if len(errs) != 0 {
		t.Errorf("default globals: %v", errs)
	}
	if s.GenerateHeat || !s.GenerateElectricity {
		t.Errorf("defaults should run in electricity mode, got %+v", *s)
	}

	if len(cfg.Station.Generators) != 2 {
		t.Fatalf("got %d generators, want 2", len(cfg.Station.Generators))
	}
	if cfg.Derived.TickDelta != cfg.Clock.DT*cfg.Clock.Warp {
		t.Errorf("TickDelta = %v", cfg.Derived.TickDelta)
	}
	if cfg.Derived.WindowTicks != 500 {
		t.Errorf("WindowTicks = %d, want 500", cfg.Derived.WindowTicks)
	}
}

func TestLoadOverridesOnlyPresentFields(t *testing.T) {
	cfg, err := LoadBytes([]byte(`
clock:
  warp: 10
station:
  generators:
    - fuel_index: 2
`))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Clock.Warp != 10 || cfg.Clock.DT != 0.02 {
		t.Errorf("clock = %+v, want warp 10 with default dt", cfg.Clock)
	}
	if len(cfg.Fuels) != 5 {
		t.Errorf("fuels should keep defaults, got %d", len(cfg.Fuels))
	}
	if len(cfg.Station.Generators) != 1 {
		t.Fatalf("generators list should be replaced, got %d", len(cfg.Station.Generators))
	}
	gen := cfg.Station.Generators[0]
	if gen.Name != "rtg-1" || gen.Volume != 5 || gen.Efficiency != 0.5 || gen.FuelIndex != 2 {
		t.Errorf("generator defaults not applied: %+v", gen)
	}
}

func TestLoadFuelCSV(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "fuels.csv")
	data := "resourceName,resourceAbbr,halflife,pep,density\nThorium-228,Th228,1.9,3000,0.0117\n"
	if err := os.WriteFile(csvPath, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadBytes([]byte("fuel_csv: " + csvPath + "\n"))
	if err != nil {
		t.Fatal(err)
	}
	reg, _ := fuel.Build(cfg.Fuels)
	if reg.Len() != 6 {
		t.Fatalf("catalog len = %d, want 6", reg.Len())
	}
	if c, i, ok := reg.ByName("Thorium-228"); !ok || i != 5 || c.Pep != 3000 {
		t.Errorf("csv fuel = %+v at %d", c, i)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := LoadBytes([]byte("clock: [not, a, map]")); err == nil {
		t.Error("expected parse error")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatal(err)
	}

	again, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if again.Clock != cfg.Clock || len(again.Fuels) != len(cfg.Fuels) {
		t.Errorf("written config did not load back: %+v", again.Clock)
	}
}
