package models

import (
	"time"

	"gorm.io/gorm"
)

// StatTable is the persisted form of one timeline table, keyed by
// (stat, season). The axis is stored as its inclusive window; it is
// reconstructed as every calendar day in [StartDate, EndDate].
type StatTable struct {
	gorm.Model
	Stat      string `gorm:"uniqueIndex:idx_stat_tables_stat_season"`
	Season    int    `gorm:"uniqueIndex:idx_stat_tables_stat_season"`
	Kind      string
	StartDate time.Time
	EndDate   time.Time
	Columns   []StatColumn
}

// StatColumn is one player's dense per-day series within a table. Values
// holds the JSON-encoded []float64, one entry per axis day.
type StatColumn struct {
	gorm.Model
	StatTableID uint   `gorm:"uniqueIndex:idx_stat_columns_table_player"`
	Player      string `gorm:"uniqueIndex:idx_stat_columns_table_player"`
	Values      string
}
