package timeline

import (
	"errors"
	"fmt"
)

// ErrUnsortedEvents is returned when a player's events are not sorted
// ascending by date. Sorting is the caller's responsibility; the fill
// algorithm refuses to guess.
var ErrUnsortedEvents = errors.New("events are not sorted by date")

// ErrColumnExists is returned when a column is added for a player that
// already has one, either committed or staged.
var ErrColumnExists = errors.New("column already exists for player")

// ErrStageCommitted is returned when a stage is used after it was already
// committed or rolled back.
var ErrStageCommitted = errors.New("stage is no longer open")

// EmptyScheduleError means no schedule dates exist to build an axis from,
// so no table can be produced for the season.
type EmptyScheduleError struct {
	Season int
}

func (e *EmptyScheduleError) Error() string {
	return fmt.Sprintf("no schedule dates for season %d", e.Season)
}

// PlayerNotFoundError means a player identity lookup failed. The player is
// skipped; table construction continues for the remaining players.
type PlayerNotFoundError struct {
	Name   string
	Season int
}

func (e *PlayerNotFoundError) Error() string {
	return fmt.Sprintf("player %q not found for season %d", e.Name, e.Season)
}
