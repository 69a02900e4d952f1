package timeline

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/icco/statlines/lib/metrics"
)

// Event is a single observation of a stat tied to one game appearance.
// For counting stats Value is the per-game increment earned that day; for
// gauge stats it is the cumulative reading supplied by the source.
type Event struct {
	Date  time.Time
	Value float64
}

// Builder converts a player's sparse, game-dated events into a dense
// per-day column aligned to an axis.
type Builder struct {
	logger *slog.Logger
}

// NewBuilder creates a Builder that reports dropped events to the given
// logger.
func NewBuilder(logger *slog.Logger) *Builder {
	return &Builder{logger: logger}
}

// Fill produces a fully populated column of axis length from the player's
// events. Events must be sorted ascending by date; unsorted input is
// rejected with ErrUnsortedEvents. Duplicate dates are applied in order
// and compound, which is why de-duplication is the caller's job.
//
// Days between games inherit the last known value, so a comparison chart
// shows flat segments on off-days instead of false zeros. An event whose
// date has no match on the axis is dropped with a warning; it never aborts
// the column. After the last event the final value is carried to the end
// of the axis.
func (b *Builder) Fill(axis *Axis, kind Kind, player string, events []Event) ([]float64, error) {
	for i := 1; i < len(events); i++ {
		if events[i].Date.Before(events[i-1].Date) {
			return nil, fmt.Errorf("events for %q: %w", player, ErrUnsortedEvents)
		}
	}

	values := make([]float64, axis.Len())
	lastIdx := 0
	running := 0.0

	for _, ev := range events {
		idx, ok := axis.Lookup(ev.Date)
		if !ok {
			b.logger.Warn("Event date not on axis, dropping event",
				slog.String("player", player),
				slog.Time("date", ev.Date),
				slog.Float64("value", ev.Value))
			metrics.EventsSkipped.Inc()
			continue
		}

		// Carry the previous value across the gap up to this game.
		for i := lastIdx; i < idx; i++ {
			values[i] = running
		}

		switch kind {
		case KindGauge:
			// A zero reading after a nonzero one means the source had no
			// data for this game, not that the stat reset.
			if ev.Value != 0 || running == 0 {
				running = ev.Value
			}
		default:
			running += ev.Value
		}

		values[idx] = running
		lastIdx = idx + 1
	}

	// Post-season carry-forward.
	for i := lastIdx; i < len(values); i++ {
		values[i] = running
	}
	return values, nil
}
