package telemetry

import (
	"fmt"
	"log/slog"
	"math"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkHalfLife   BookmarkType = "half_life"
	BookmarkOutputDrop BookmarkType = "output_drop"
	BookmarkChargeFull BookmarkType = "charge_full"
	BookmarkTickErrors BookmarkType = "tick_errors"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type" json:"type"`
	Tick        int32        `csv:"tick" json:"tick"`
	Description string       `csv:"description" json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkThresholds configures bookmark detection.
type BookmarkThresholds struct {
	ChargeFull float64 // Bank fill fraction counted as saturated
	OutputDrop float64 // Output fraction of the reference window that triggers a drop
}

// BookmarkDetector detects notable moments in a generator station's life.
type BookmarkDetector struct {
	thresholds BookmarkThresholds

	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	halfLives       map[string]int // whole half-lives already reported per device
	referenceOutput float64        // total output the next drop is measured against
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int, thresholds BookmarkThresholds) *BookmarkDetector {
	if historySize < 2 {
		historySize = 2
	}
	return &BookmarkDetector{
		thresholds:  thresholds,
		history:     make([]WindowStats, historySize),
		historySize: historySize,
		halfLives:   make(map[string]int),
	}
}

// Check analyzes the latest stats and device samples and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats, samples []GeneratorSample) []Bookmark {
	var bookmarks []Bookmark

	bookmarks = append(bookmarks, bd.checkHalfLives(stats, samples)...)

	if b := bd.checkOutputDrop(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	if prev, ok := bd.previous(); ok {
		if b := bd.checkChargeFull(stats, prev); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkTickErrors(stats, prev); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	} else if stats.TickErrors > 0 {
		bookmarks = append(bookmarks, tickErrorBookmark(stats))
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

// previous returns the most recently added window.
func (bd *BookmarkDetector) previous() (WindowStats, bool) {
	if len(bd.getHistory()) == 0 {
		return WindowStats{}, false
	}
	idx := (bd.historyIdx - 1 + bd.historySize) % bd.historySize
	return bd.history[idx], true
}

func (bd *BookmarkDetector) checkHalfLives(stats WindowStats, samples []GeneratorSample) []Bookmark {
	var bookmarks []Bookmark
	for _, s := range samples {
		if s.Fuel == "" {
			continue
		}
		whole := int(math.Floor(s.HalfLives))
		if whole <= bd.halfLives[s.Name] {
			continue
		}
		bd.halfLives[s.Name] = whole
		bookmarks = append(bookmarks, Bookmark{
			Type: BookmarkHalfLife,
			Tick: stats.WindowEndTick,
			Description: fmt.Sprintf("%s (%s) passed %d half-lives, %.1f%% fuel left",
				s.Name, s.Fuel, whole, s.Fraction*100),
		})
	}
	return bookmarks
}

func (bd *BookmarkDetector) checkOutputDrop(stats WindowStats) *Bookmark {
	if bd.thresholds.OutputDrop <= 0 {
		return nil
	}
	if bd.referenceOutput <= 0 {
		bd.referenceOutput = stats.TotalOutput
		return nil
	}

	if stats.TotalOutput <= bd.referenceOutput*bd.thresholds.OutputDrop {
		old := bd.referenceOutput
		bd.referenceOutput = stats.TotalOutput
		return &Bookmark{
			Type:        BookmarkOutputDrop,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Total output fell from %.3g to %.3g", old, stats.TotalOutput),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkChargeFull(stats, prev WindowStats) *Bookmark {
	if bd.thresholds.ChargeFull <= 0 {
		return nil
	}
	if stats.ChargeLevel >= bd.thresholds.ChargeFull && prev.ChargeLevel < bd.thresholds.ChargeFull {
		return &Bookmark{
			Type:        BookmarkChargeFull,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Charge bank reached %.1f%%", stats.ChargeLevel*100),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkTickErrors(stats, prev WindowStats) *Bookmark {
	if stats.TickErrors > 0 && prev.TickErrors == 0 {
		b := tickErrorBookmark(stats)
		return &b
	}
	return nil
}

func tickErrorBookmark(stats WindowStats) Bookmark {
	return Bookmark{
		Type: BookmarkTickErrors,
		Tick: stats.WindowEndTick,
		Description: fmt.Sprintf("%d failed ticks (%d missing resource, %d no fuel)",
			stats.TickErrors, stats.MissingResource, stats.NoFuel),
	}
}
