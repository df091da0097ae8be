package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil {
		t.Fatalf("NewOutputManager failed: %v", err)
	}
	if om != nil {
		t.Fatal("empty dir should disable output")
	}
	// All methods are nil-safe
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Errorf("WriteTelemetry on nil: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("Close on nil: %v", err)
	}
}

func TestOutputManagerWritesHeaderOnce(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager failed: %v", err)
	}

	for i := 1; i <= 3; i++ {
		if err := om.WriteTelemetry(WindowStats{WindowEndTick: int32(i * 100), Fueled: 2}); err != nil {
			t.Fatalf("WriteTelemetry failed: %v", err)
		}
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkHalfLife, Tick: 200, Description: "rtg-1 passed 1 half-lives"}); err != nil {
		t.Fatalf("WriteBookmark failed: %v", err)
	}
	if err := om.WriteInfo("Output decays over time.\n"); err != nil {
		t.Fatalf("WriteInfo failed: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("telemetry.csv has %d lines, want header + 3 rows", len(lines))
	}
	if !strings.HasPrefix(lines[0], "window_end,") {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if strings.Contains(lines[0], "WindowStartTick") {
		t.Error("window start should not be exported")
	}
	if !strings.HasPrefix(lines[3], "300,") {
		t.Errorf("unexpected last row: %s", lines[3])
	}

	data, err = os.ReadFile(filepath.Join(dir, "bookmarks.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "half_life,200,") {
		t.Errorf("bookmark row missing: %s", data)
	}

	if _, err := os.Stat(filepath.Join(dir, "info.txt")); err != nil {
		t.Errorf("info.txt not written: %v", err)
	}
}

func TestOutputManagerDevicesAndPerf(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager failed: %v", err)
	}

	samples := []GeneratorSample{
		{Name: "rtg-1", Fuel: "Pu", Fraction: 0.5, HalfLives: 1, RawOutput: 2.5, Mass: 0.1},
		{Name: "rtg-2"},
	}
	if err := om.WriteDevices(100, samples); err != nil {
		t.Fatalf("WriteDevices failed: %v", err)
	}
	if err := om.WriteDevices(200, samples[:1]); err != nil {
		t.Fatalf("WriteDevices failed: %v", err)
	}
	if err := om.WriteDevices(300, nil); err != nil {
		t.Fatalf("WriteDevices with no samples: %v", err)
	}
	if err := om.WritePerf(PerfStats{Steps: 10}, 100); err != nil {
		t.Fatalf("WritePerf failed: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "devices.csv"))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"window_end,device,fuel,fraction,half_lives,raw_output,mass",
		"100,rtg-1,Pu,0.5,1,2.5,0.1",
		"100,rtg-2,,0,0,0,0",
		"200,rtg-1,Pu,0.5,1,2.5,0.1",
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if strings.Join(lines, "\n") != strings.Join(want, "\n") {
		t.Errorf("devices.csv =\n%s\nwant\n%s", data, strings.Join(want, "\n"))
	}

	data, err = os.ReadFile(filepath.Join(dir, "perf.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines = strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "window_end,steps,") || !strings.HasPrefix(lines[1], "100,10,") {
		t.Errorf("perf.csv = %q", lines)
	}
}
