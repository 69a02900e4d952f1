package validation_test

import (
	"strings"
	"testing"

	"github.com/icco/statlines/lib/validation"
	. "github.com/smartystreets/goconvey/convey"
)

func TestValidateStat(t *testing.T) {
	Convey("Given stat names", t, func() {
		Convey("Then boxscore keys pass", func() {
			So(validation.ValidateStat("homeRuns"), ShouldBeNil)
			So(validation.ValidateStat("era"), ShouldBeNil)
			So(validation.ValidateStat("strikeOuts"), ShouldBeNil)
		})

		Convey("Then junk is rejected", func() {
			So(validation.ValidateStat(""), ShouldNotBeNil)
			So(validation.ValidateStat("home runs"), ShouldNotBeNil)
			So(validation.ValidateStat("../etc"), ShouldNotBeNil)
			So(validation.ValidateStat(strings.Repeat("a", 50)), ShouldNotBeNil)
		})
	})
}

func TestValidateSeason(t *testing.T) {
	Convey("Given season strings", t, func() {
		Convey("Then real seasons parse", func() {
			year, err := validation.ValidateSeason("2024")
			So(err, ShouldBeNil)
			So(year, ShouldEqual, 2024)
		})

		Convey("Then non-years and out-of-range years are rejected", func() {
			_, err := validation.ValidateSeason("soon")
			So(err, ShouldNotBeNil)
			_, err = validation.ValidateSeason("1850")
			So(err, ShouldNotBeNil)
			_, err = validation.ValidateSeason("3000")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestValidatePlayers(t *testing.T) {
	Convey("Given player list strings", t, func() {
		Convey("Then a comma list is split and trimmed", func() {
			players, err := validation.ValidatePlayers("Aaron Judge, Cal Raleigh ,Shohei Ohtani")
			So(err, ShouldBeNil)
			So(players, ShouldResemble, []string{"Aaron Judge", "Cal Raleigh", "Shohei Ohtani"})
		})

		Convey("Then blanks collapse away", func() {
			players, err := validation.ValidatePlayers("Aaron Judge,,  ,")
			So(err, ShouldBeNil)
			So(players, ShouldResemble, []string{"Aaron Judge"})
		})

		Convey("Then an empty list is rejected", func() {
			_, err := validation.ValidatePlayers(" , ")
			So(err, ShouldNotBeNil)
		})

		Convey("Then an oversized list is rejected", func() {
			_, err := validation.ValidatePlayers(strings.Repeat("Player,", 11))
			So(err, ShouldNotBeNil)
		})
	})
}
