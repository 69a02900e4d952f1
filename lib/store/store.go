// Package store persists timeline tables in SQLite, keyed by
// (stat, season). The rest of the system treats it as an opaque
// load/save pair.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/icco/statlines/lib/lock"
	"github.com/icco/statlines/lib/timeline"
	"github.com/icco/statlines/models"
	"gorm.io/gorm"
)

// saveLockTimeout bounds how long a save waits for another local run to
// release the per-table lock.
const saveLockTimeout = 10 * time.Second

type Store struct {
	db            *gorm.DB
	logger        *slog.Logger
	lock          *lock.FileLock
	currentSeason int
}

// TableInfo is a summary row for listing cached tables.
type TableInfo struct {
	Stat      string
	Season    int
	Kind      string
	StartDate time.Time
	EndDate   time.Time
	Players   []string
	UpdatedAt time.Time
}

// New creates a Store. Tables for currentSeason are treated as stale on
// load so charts for a season in progress always reflect the latest
// games.
func New(db *gorm.DB, logger *slog.Logger, fl *lock.FileLock, currentSeason int) *Store {
	return &Store{
		db:            db,
		logger:        logger,
		lock:          fl,
		currentSeason: currentSeason,
	}
}

// Load returns the cached table for (stat, season), or (nil, nil) when
// there is none. A cached table for the current season is discarded and
// reported as absent, forcing a rebuild with fresh data.
func (s *Store) Load(ctx context.Context, stat string, season int) (*timeline.Table, error) {
	var rec models.StatTable
	err := s.db.WithContext(ctx).
		Preload("Columns", func(db *gorm.DB) *gorm.DB {
			return db.Order("stat_columns.id ASC")
		}).
		Where("stat = ? AND season = ?", stat, season).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load table %s/%d: %w", stat, season, err)
	}

	if season == s.currentSeason {
		s.logger.Info("Discarding cached table for current season to pick up latest games",
			slog.String("stat", stat),
			slog.Int("season", season))
		if err := s.Delete(ctx, stat, season); err != nil {
			return nil, err
		}
		return nil, nil
	}

	axis, err := timeline.NewAxis(rec.StartDate, rec.EndDate)
	if err != nil {
		return nil, fmt.Errorf("cached table %s/%d has an invalid window: %w", stat, season, err)
	}

	table := timeline.NewTable(stat, season, timeline.Kind(rec.Kind), axis)
	for _, col := range rec.Columns {
		var values []float64
		if err := json.Unmarshal([]byte(col.Values), &values); err != nil {
			return nil, fmt.Errorf("failed to decode column for %q: %w", col.Player, err)
		}
		if err := table.Restore(col.Player, values); err != nil {
			return nil, fmt.Errorf("failed to restore column for %q: %w", col.Player, err)
		}
	}

	s.logger.Debug("Loaded cached table",
		slog.String("stat", stat),
		slog.Int("season", season),
		slog.Int("players", len(rec.Columns)))
	return table, nil
}

// Save persists the table's committed columns. The table row is created
// on first save; afterwards only columns for players not yet stored are
// inserted, so existing columns are never rewritten. The save is guarded
// by a file lock per (stat, season) key.
func (s *Store) Save(ctx context.Context, table *timeline.Table) error {
	key := fmt.Sprintf("%s_%d", table.Stat, table.Season)
	ok, err := s.lock.TryLock(ctx, key, saveLockTimeout)
	if err != nil {
		return fmt.Errorf("failed to acquire table lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("table %s is locked by another run", key)
	}
	defer func() {
		if err := s.lock.Unlock(ctx, key); err != nil {
			s.logger.Error("Failed to release table lock", slog.String("key", key), slog.Any("error", err))
		}
	}()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec := models.StatTable{
			Stat:      table.Stat,
			Season:    table.Season,
			Kind:      string(table.Kind),
			StartDate: table.Axis().First(),
			EndDate:   table.Axis().Last(),
		}
		if err := tx.Where("stat = ? AND season = ?", table.Stat, table.Season).
			FirstOrCreate(&rec).Error; err != nil {
			return fmt.Errorf("failed to upsert table row: %w", err)
		}

		var stored []string
		if err := tx.Model(&models.StatColumn{}).
			Where("stat_table_id = ?", rec.ID).
			Pluck("player", &stored).Error; err != nil {
			return fmt.Errorf("failed to list stored columns: %w", err)
		}
		have := make(map[string]bool, len(stored))
		for _, p := range stored {
			have[p] = true
		}

		for _, player := range table.Players() {
			if have[player] {
				continue
			}
			values, _ := table.Column(player)
			encoded, err := json.Marshal(values)
			if err != nil {
				return fmt.Errorf("failed to encode column for %q: %w", player, err)
			}
			col := models.StatColumn{
				StatTableID: rec.ID,
				Player:      player,
				Values:      string(encoded),
			}
			if err := tx.Create(&col).Error; err != nil {
				return fmt.Errorf("failed to store column for %q: %w", player, err)
			}
			s.logger.Info("Stored new column",
				slog.String("stat", table.Stat),
				slog.Int("season", table.Season),
				slog.String("player", player))
		}
		return nil
	})
}

// Delete removes the table and its columns, forcing the next request to
// rebuild from the source. Rows are deleted for real, not soft-deleted,
// so the (stat, season) key can be reused.
func (s *Store) Delete(ctx context.Context, stat string, season int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec models.StatTable
		err := tx.Where("stat = ? AND season = ?", stat, season).First(&rec).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to find table %s/%d: %w", stat, season, err)
		}

		if err := tx.Unscoped().Where("stat_table_id = ?", rec.ID).Delete(&models.StatColumn{}).Error; err != nil {
			return fmt.Errorf("failed to delete columns: %w", err)
		}
		if err := tx.Unscoped().Delete(&rec).Error; err != nil {
			return fmt.Errorf("failed to delete table row: %w", err)
		}
		s.logger.Info("Deleted cached table", slog.String("stat", stat), slog.Int("season", season))
		return nil
	})
}

// Tables lists all cached tables, newest first.
func (s *Store) Tables(ctx context.Context) ([]TableInfo, error) {
	var recs []models.StatTable
	if err := s.db.WithContext(ctx).
		Preload("Columns", func(db *gorm.DB) *gorm.DB {
			return db.Order("stat_columns.id ASC")
		}).
		Order("updated_at DESC").
		Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	infos := make([]TableInfo, 0, len(recs))
	for _, rec := range recs {
		info := TableInfo{
			Stat:      rec.Stat,
			Season:    rec.Season,
			Kind:      rec.Kind,
			StartDate: rec.StartDate,
			EndDate:   rec.EndDate,
			UpdatedAt: rec.UpdatedAt,
		}
		for _, col := range rec.Columns {
			info.Players = append(info.Players, col.Player)
		}
		infos = append(infos, info)
	}
	return infos, nil
}
