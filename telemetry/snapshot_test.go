package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/rtg/fuel"
	"github.com/pthm-cable/rtg/generator"
)

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version:       SnapshotVersion,
		Tick:          1000,
		UniversalTime: 2e6,
		ChargeAmount:  42.5,
		Devices: []DeviceState{
			{
				Name:    "rtg-1",
				ID:      "d2a4c1f0-0000-4000-8000-000000000001",
				Amount:  3.75,
				Thermal: 12,
				State: generator.State{
					Volume:     5,
					Efficiency: 0.5,
					FuelIndex:  0,
					Fuel: fuel.Config{
						ResourceName:  "Plutonium-238",
						ResourceAbbr:  "Pu238",
						HalflifeYears: 87.7,
						Pep:           570,
						Density:       0.0198,
					},
					TimeOfStart: 100,
				},
			},
		},
		Bookmark: &Bookmark{
			Type:        BookmarkHalfLife,
			Tick:        1000,
			Description: "Test bookmark",
		},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Snapshot file not created at %s", path)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if loaded.Tick != snapshot.Tick {
		t.Errorf("Tick mismatch: got %d, want %d", loaded.Tick, snapshot.Tick)
	}
	if loaded.ChargeAmount != snapshot.ChargeAmount {
		t.Errorf("ChargeAmount mismatch: got %v, want %v", loaded.ChargeAmount, snapshot.ChargeAmount)
	}
	dev, ok := loaded.Device("rtg-1")
	if !ok {
		t.Fatal("device rtg-1 not loaded")
	}
	if dev != snapshot.Devices[0] {
		t.Errorf("device mismatch: got %+v, want %+v", dev, snapshot.Devices[0])
	}
	if loaded.Bookmark == nil {
		t.Error("Bookmark not loaded")
	} else if loaded.Bookmark.Type != snapshot.Bookmark.Type {
		t.Errorf("Bookmark type mismatch: got %s, want %s", loaded.Bookmark.Type, snapshot.Bookmark.Type)
	}
}

func TestSnapshotFilename(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version: SnapshotVersion,
		Tick:    5000,
		Bookmark: &Bookmark{
			Type: BookmarkChargeFull,
			Tick: 5000,
		},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	expected := filepath.Join(tmpDir, "snapshot_5000_charge_full.json")
	if path != expected {
		t.Errorf("Path mismatch: got %s, want %s", path, expected)
	}

	snapshotNoBookmark := &Snapshot{
		Version: SnapshotVersion,
		Tick:    3000,
	}

	path, err = SaveSnapshot(snapshotNoBookmark, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	expected = filepath.Join(tmpDir, "snapshot_3000.json")
	if path != expected {
		t.Errorf("Path mismatch: got %s, want %s", path, expected)
	}
}

func TestLoadSnapshotRejectsVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.json")
	if err := os.WriteFile(path, []byte(`{"version": 99, "tick": 1}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(path); err == nil {
		t.Error("expected error for unknown snapshot version")
	}
}
