package telemetry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/pthm-cable/rtg/config"
)

// csvSink appends gocsv rows of one type to a file, writing the header with
// the first batch.
type csvSink[T any] struct {
	name   string
	f      *os.File
	header bool
}

func openSink[T any](dir, name string) (*csvSink[T], error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvSink[T]{name: name, f: f}, nil
}

func (s *csvSink[T]) write(rows ...T) error {
	if len(rows) == 0 {
		return nil
	}
	marshal := gocsv.MarshalWithoutHeaders
	if !s.header {
		marshal = gocsv.Marshal
	}
	if err := marshal(rows, s.f); err != nil {
		return fmt.Errorf("writing %s: %w", s.name, err)
	}
	s.header = true
	return nil
}

func (s *csvSink[T]) close() error {
	if s == nil {
		return nil
	}
	return s.f.Close()
}

// DeviceRow is one devices.csv line: a device's state at the end of a window.
type DeviceRow struct {
	WindowEnd int32   `csv:"window_end"`
	Name      string  `csv:"device"`
	Fuel      string  `csv:"fuel"`
	Fraction  float64 `csv:"fraction"`
	HalfLives float64 `csv:"half_lives"`
	RawOutput float64 `csv:"raw_output"`
	Mass      float64 `csv:"mass"`
}

// OutputManager writes a run's artifacts to a directory: window stats, per
// device rows, perf, bookmarks, the effective config, the catalog info
// text, and snapshots. A nil manager discards everything.
type OutputManager struct {
	dir       string
	telemetry *csvSink[WindowStats]
	devices   *csvSink[DeviceRow]
	perf      *csvSink[PerfRow]
	bookmarks *csvSink[Bookmark]
}

// NewOutputManager creates dir and opens its CSV files. An empty dir
// disables output and returns nil.
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	var err error
	if om.telemetry, err = openSink[WindowStats](dir, "telemetry.csv"); err != nil {
		return nil, err
	}
	if om.devices, err = openSink[DeviceRow](dir, "devices.csv"); err != nil {
		om.Close()
		return nil, err
	}
	if om.perf, err = openSink[PerfRow](dir, "perf.csv"); err != nil {
		om.Close()
		return nil, err
	}
	if om.bookmarks, err = openSink[Bookmark](dir, "bookmarks.csv"); err != nil {
		om.Close()
		return nil, err
	}
	return om, nil
}

// WriteConfig saves the effective configuration as config.yaml.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTelemetry appends a window to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}
	return om.telemetry.write(stats)
}

// WriteDevices appends one devices.csv row per sample.
func (om *OutputManager) WriteDevices(windowEnd int32, samples []GeneratorSample) error {
	if om == nil {
		return nil
	}
	rows := make([]DeviceRow, len(samples))
	for i, s := range samples {
		rows[i] = DeviceRow{
			WindowEnd: windowEnd,
			Name:      s.Name,
			Fuel:      s.Fuel,
			Fraction:  s.Fraction,
			HalfLives: s.HalfLives,
			RawOutput: s.RawOutput,
			Mass:      s.Mass,
		}
	}
	return om.devices.write(rows...)
}

// WritePerf appends the perf summary of the window ending at windowEnd.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int32) error {
	if om == nil {
		return nil
	}
	return om.perf.write(stats.Row(windowEnd))
}

// WriteBookmark appends to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	return om.bookmarks.write(b)
}

// WriteInfo saves the catalog description shown to players as info.txt.
func (om *OutputManager) WriteInfo(text string) error {
	if om == nil {
		return nil
	}
	if err := os.WriteFile(filepath.Join(om.dir, "info.txt"), []byte(text), 0644); err != nil {
		return fmt.Errorf("writing info.txt: %w", err)
	}
	return nil
}

// WriteSnapshot saves a station snapshot under the snapshots directory.
func (om *OutputManager) WriteSnapshot(snapshot *Snapshot) (string, error) {
	if om == nil {
		return "", nil
	}
	return SaveSnapshot(snapshot, filepath.Join(om.dir, "snapshots"))
}

// Dir returns the output directory, or "" when disabled.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes every open CSV file.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	return errors.Join(
		om.telemetry.close(),
		om.devices.close(),
		om.perf.close(),
		om.bookmarks.close(),
	)
}
