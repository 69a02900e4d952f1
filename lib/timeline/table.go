package timeline

import (
	"fmt"

	"github.com/google/uuid"
)

// Table is one axis plus an open-ended set of per-player columns, all the
// same length as the axis. Adding columns is the only mutation after
// creation; finalized values are never revised short of a full rebuild.
type Table struct {
	Stat   string
	Season int
	Kind   Kind

	axis    *Axis
	columns map[string][]float64
	order   []string
}

// NewTable creates an empty table over the given axis.
func NewTable(stat string, season int, kind Kind, axis *Axis) *Table {
	return &Table{
		Stat:    stat,
		Season:  season,
		Kind:    kind,
		axis:    axis,
		columns: make(map[string][]float64),
	}
}

// Axis returns the table's axis.
func (t *Table) Axis() *Axis {
	return t.axis
}

// Players returns the committed column names in insertion order.
func (t *Table) Players() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// HasColumn reports whether a committed column exists for the player.
func (t *Table) HasColumn(player string) bool {
	_, ok := t.columns[player]
	return ok
}

// Column returns the committed column for the player. Callers must not
// modify the returned slice.
func (t *Table) Column(player string) ([]float64, bool) {
	v, ok := t.columns[player]
	return v, ok
}

// Restore adds an already-built column, used when loading a persisted
// table. The column must match the axis length and the player must not
// already have one.
func (t *Table) Restore(player string, values []float64) error {
	return t.add(player, values)
}

func (t *Table) add(player string, values []float64) error {
	if _, ok := t.columns[player]; ok {
		return fmt.Errorf("player %q: %w", player, ErrColumnExists)
	}
	if len(values) != t.axis.Len() {
		return fmt.Errorf("column for %q has %d values, axis has %d days", player, len(values), t.axis.Len())
	}
	t.columns[player] = values
	t.order = append(t.order, player)
	return nil
}

// Stage collects provisional columns for a table. Staged columns are
// visible through ColumnsFor but do not touch the table until Commit;
// Rollback discards them and the table reverts to its pre-merge column
// set.
type Stage struct {
	ID string

	table   *Table
	columns map[string][]float64
	order   []string
	closed  bool
}

// NewStage opens a staged merge against the table.
func (t *Table) NewStage() *Stage {
	return &Stage{
		ID:      uuid.NewString(),
		table:   t,
		columns: make(map[string][]float64),
	}
}

// Add stages a column for a player not already present, committed or
// staged.
func (s *Stage) Add(player string, values []float64) error {
	if s.closed {
		return ErrStageCommitted
	}
	if s.table.HasColumn(player) {
		return fmt.Errorf("player %q: %w", player, ErrColumnExists)
	}
	if _, ok := s.columns[player]; ok {
		return fmt.Errorf("player %q: %w", player, ErrColumnExists)
	}
	if len(values) != s.table.axis.Len() {
		return fmt.Errorf("column for %q has %d values, axis has %d days", player, len(values), s.table.axis.Len())
	}
	s.columns[player] = values
	s.order = append(s.order, player)
	return nil
}

// Added returns the staged player names in insertion order.
func (s *Stage) Added() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Commit promotes the staged columns onto the table and closes the stage.
func (s *Stage) Commit() error {
	if s.closed {
		return ErrStageCommitted
	}
	for _, player := range s.order {
		if err := s.table.add(player, s.columns[player]); err != nil {
			return err
		}
	}
	s.closed = true
	return nil
}

// Rollback discards the staged columns and closes the stage.
func (s *Stage) Rollback() {
	s.closed = true
	s.columns = nil
	s.order = nil
}

// ColumnsFor returns the columns for the requested players that exist on
// the table or, when a stage is given, on the stage. Players with no
// column anywhere are omitted; the second return lists, in request order,
// the players that were found.
func (t *Table) ColumnsFor(players []string, stage *Stage) (map[string][]float64, []string) {
	cols := make(map[string][]float64)
	var found []string
	for _, p := range players {
		if v, ok := t.columns[p]; ok {
			cols[p] = v
			found = append(found, p)
			continue
		}
		if stage != nil && !stage.closed {
			if v, ok := stage.columns[p]; ok {
				cols[p] = v
				found = append(found, p)
			}
		}
	}
	return cols, found
}
