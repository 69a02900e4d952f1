package store_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/icco/statlines/lib/db"
	"github.com/icco/statlines/lib/lock"
	"github.com/icco/statlines/lib/store"
	"github.com/icco/statlines/lib/timeline"
	. "github.com/smartystreets/goconvey/convey"
)

func newStore(t *testing.T, currentSeason int) *store.Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gdb, err := db.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	if err != nil {
		t.Fatal(err)
	}
	return store.New(gdb, logger, lock.NewFileLock(t.TempDir(), logger), currentSeason)
}

func newTable(t *testing.T) *timeline.Table {
	t.Helper()
	axis, err := timeline.NewAxis(
		time.Date(2024, time.March, 28, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatal(err)
	}
	table := timeline.NewTable("homeRuns", 2024, timeline.KindCounting, axis)
	if err := table.Restore("Aaron Judge", []float64{0, 1, 1, 3, 3}); err != nil {
		t.Fatal(err)
	}
	return table
}

func TestStoreRoundTrip(t *testing.T) {
	Convey("Given a saved table", t, func() {
		s := newStore(t, 2030)
		ctx := context.Background()
		table := newTable(t)
		So(s.Save(ctx, table), ShouldBeNil)

		Convey("When it is loaded back", func() {
			loaded, err := s.Load(ctx, "homeRuns", 2024)
			So(err, ShouldBeNil)
			So(loaded, ShouldNotBeNil)

			Convey("Then the axis and columns survive unchanged", func() {
				So(loaded.Axis().Len(), ShouldEqual, 5)
				So(loaded.Axis().First().Equal(table.Axis().First()), ShouldBeTrue)
				So(loaded.Kind, ShouldEqual, timeline.KindCounting)
				values, ok := loaded.Column("Aaron Judge")
				So(ok, ShouldBeTrue)
				So(values, ShouldResemble, []float64{0, 1, 1, 3, 3})
			})
		})

		Convey("When a different key is loaded", func() {
			loaded, err := s.Load(ctx, "hits", 2024)

			Convey("Then it is reported absent without error", func() {
				So(err, ShouldBeNil)
				So(loaded, ShouldBeNil)
			})
		})

		Convey("When the table is saved again with an extra column", func() {
			So(table.Restore("Cal Raleigh", []float64{1, 1, 2, 2, 2}), ShouldBeNil)
			So(s.Save(ctx, table), ShouldBeNil)

			loaded, err := s.Load(ctx, "homeRuns", 2024)
			So(err, ShouldBeNil)

			Convey("Then only the new column was added", func() {
				So(loaded.Players(), ShouldResemble, []string{"Aaron Judge", "Cal Raleigh"})
			})
		})

		Convey("When the table is deleted", func() {
			So(s.Delete(ctx, "homeRuns", 2024), ShouldBeNil)

			Convey("Then it is gone and the key is reusable", func() {
				loaded, err := s.Load(ctx, "homeRuns", 2024)
				So(err, ShouldBeNil)
				So(loaded, ShouldBeNil)

				So(s.Save(ctx, newTable(t)), ShouldBeNil)
				loaded, err = s.Load(ctx, "homeRuns", 2024)
				So(err, ShouldBeNil)
				So(loaded, ShouldNotBeNil)
			})
		})
	})
}

func TestStoreCurrentSeason(t *testing.T) {
	Convey("Given a store whose current season is 2024", t, func() {
		s := newStore(t, 2024)
		ctx := context.Background()
		So(s.Save(ctx, newTable(t)), ShouldBeNil)

		Convey("When a current-season table is loaded", func() {
			loaded, err := s.Load(ctx, "homeRuns", 2024)

			Convey("Then it is discarded as stale and reported absent", func() {
				So(err, ShouldBeNil)
				So(loaded, ShouldBeNil)
			})
		})
	})
}
