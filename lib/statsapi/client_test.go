package statsapi

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/icco/statlines/lib/rawstore"
	"github.com/icco/statlines/lib/timeline"
	. "github.com/smartystreets/goconvey/convey"
)

const testSchedule = `{
  "dates": [
    {"date": "2025-04-01", "games": [{"gamePk": 1, "gameType": "R", "officialDate": "2025-04-01"}]},
    {"date": "2025-04-02", "games": [{"gamePk": 2, "gameType": "S", "officialDate": "2025-04-02"}]},
    {"date": "2025-04-03", "games": [{"gamePk": 3, "gameType": "R", "officialDate": "2025-04-03"}]}
  ]
}`

func boxscoreJSON(name, position string, batting, pitching string) string {
	return fmt.Sprintf(`{
  "teams": {
    "away": {"players": {}},
    "home": {"players": {
      "ID660271": {
        "person": {"fullName": %q},
        "position": {"abbreviation": %q},
        "seasonStats": {"batting": %s, "pitching": %s, "fielding": {}}
      }
    }}
  }
}`, name, position, batting, pitching)
}

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(srv.URL, rawstore.New(t.TempDir()), logger)
}

func TestLookupPlayer(t *testing.T) {
	Convey("Given a search endpoint with two results", t, func() {
		c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"people": [
				{"id": 1, "fullName": "Luis Castillo", "primaryPosition": {"abbreviation": "P"}, "currentTeam": {"id": 136}},
				{"id": 2, "fullName": "José Ramírez", "primaryPosition": {"abbreviation": "3B"}, "currentTeam": {"id": 114}}
			]}`)
		}))

		Convey("When the folded name matches a later result", func() {
			p, err := c.LookupPlayer(context.Background(), "Jose Ramirez", 2025)
			So(err, ShouldBeNil)

			Convey("Then that result wins over the first one", func() {
				So(p.ID, ShouldEqual, 2)
				So(p.TeamID, ShouldEqual, 114)
				So(p.Position, ShouldEqual, "3B")
			})
		})

		Convey("When no folded name matches", func() {
			p, err := c.LookupPlayer(context.Background(), "Somebody Else", 2025)
			So(err, ShouldBeNil)

			Convey("Then the API's first result is taken", func() {
				So(p.ID, ShouldEqual, 1)
			})
		})
	})

	Convey("Given a search endpoint with no results", t, func() {
		c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"people": []}`)
		}))

		_, err := c.LookupPlayer(context.Background(), "Test Player", 2025)

		Convey("Then lookup fails with PlayerNotFoundError", func() {
			var pnf *timeline.PlayerNotFoundError
			So(err, ShouldHaveSameTypeAs, pnf)
		})
	})
}

func TestSchedule(t *testing.T) {
	Convey("Given a schedule with a non-regular-season game mixed in", t, func() {
		c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, testSchedule)
		}))

		games, err := c.Schedule(context.Background(), 2025, 136, false)
		So(err, ShouldBeNil)

		Convey("Then only regular-season games survive, in order", func() {
			So(len(games), ShouldEqual, 2)
			So(games[0].ID, ShouldEqual, 1)
			So(games[1].ID, ShouldEqual, 3)
			So(games[0].Date.Before(games[1].Date), ShouldBeTrue)
		})
	})
}

func TestEventsForPlayer(t *testing.T) {
	player := &Player{ID: 660271, FullName: "Aaron Judge", TeamID: 147, Position: "RF"}

	Convey("Given boxscores with cumulative counting totals", t, func() {
		boxes := map[string]string{
			"/game/1/boxscore": boxscoreJSON("Aaron Judge", "RF", `{"homeRuns": 1}`, `{}`),
			"/game/3/boxscore": boxscoreJSON("Aaron Judge", "RF", `{"homeRuns": 3}`, `{}`),
		}
		c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/schedule" {
				fmt.Fprint(w, testSchedule)
				return
			}
			fmt.Fprint(w, boxes[r.URL.Path])
		}))

		events, err := c.EventsForPlayer(context.Background(), player, 2025, "homeRuns", false)
		So(err, ShouldBeNil)

		Convey("Then cumulative totals become per-game increments", func() {
			So(len(events), ShouldEqual, 2)
			So(events[0].Value, ShouldEqual, 1)
			So(events[1].Value, ShouldEqual, 2)
		})
	})

	Convey("Given a boxscore where the cumulative total goes backwards", t, func() {
		boxes := map[string]string{
			"/game/1/boxscore": boxscoreJSON("Aaron Judge", "RF", `{"homeRuns": 4}`, `{}`),
			"/game/3/boxscore": boxscoreJSON("Aaron Judge", "RF", `{"homeRuns": 0}`, `{}`),
		}
		c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/schedule" {
				fmt.Fprint(w, testSchedule)
				return
			}
			fmt.Fprint(w, boxes[r.URL.Path])
		}))

		events, err := c.EventsForPlayer(context.Background(), player, 2025, "homeRuns", false)
		So(err, ShouldBeNil)

		Convey("Then the backwards reading becomes a zero increment", func() {
			So(events[0].Value, ShouldEqual, 4)
			So(events[1].Value, ShouldEqual, 0)
		})
	})

	Convey("Given a pitcher and a gauge stat", t, func() {
		pitcher := &Player{ID: 1, FullName: "Max Fried", TeamID: 147, Position: "P"}
		boxes := map[string]string{
			"/game/1/boxscore": boxscoreJSON("Max Fried", "P", `{}`, `{"era": "2.50"}`),
			"/game/3/boxscore": boxscoreJSON("Max Fried", "P", `{}`, `{"era": "-.--"}`),
		}
		c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/schedule" {
				fmt.Fprint(w, testSchedule)
				return
			}
			fmt.Fprint(w, boxes[r.URL.Path])
		}))

		events, err := c.EventsForPlayer(context.Background(), pitcher, 2025, "era", false)
		So(err, ShouldBeNil)

		Convey("Then readings pass through and a missing reading is zero", func() {
			So(events[0].Value, ShouldEqual, 2.5)
			So(events[1].Value, ShouldEqual, 0)
		})
	})

	Convey("Given a stat only present outside the primary category", t, func() {
		// A position player pitching in a blowout: strikeOuts lives under
		// pitching, but the primary category is batting.
		boxes := map[string]string{
			"/game/1/boxscore": boxscoreJSON("Aaron Judge", "RF", `{}`, `{"strikeOutsPitched": 2}`),
			"/game/3/boxscore": boxscoreJSON("Aaron Judge", "RF", `{}`, `{"strikeOutsPitched": 2}`),
		}
		c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/schedule" {
				fmt.Fprint(w, testSchedule)
				return
			}
			fmt.Fprint(w, boxes[r.URL.Path])
		}))

		events, err := c.EventsForPlayer(context.Background(), player, 2025, "strikeOutsPitched", false)
		So(err, ShouldBeNil)

		Convey("Then the cross-category fallback finds the value", func() {
			So(events[0].Value, ShouldEqual, 2)
			So(events[1].Value, ShouldEqual, 0)
		})
	})

	Convey("Given one boxscore fetch that fails", t, func() {
		c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/schedule":
				fmt.Fprint(w, testSchedule)
			case "/game/1/boxscore":
				http.Error(w, "boom", http.StatusInternalServerError)
			default:
				fmt.Fprint(w, boxscoreJSON("Aaron Judge", "RF", `{"homeRuns": 2}`, `{}`))
			}
		}))

		events, err := c.EventsForPlayer(context.Background(), player, 2025, "homeRuns", false)

		Convey("Then the game is skipped and the rest of the schedule continues", func() {
			So(err, ShouldBeNil)
			So(len(events), ShouldEqual, 1)
			So(events[0].Value, ShouldEqual, 2)
		})
	})

	Convey("Given a player missing from a boxscore", t, func() {
		boxes := map[string]string{
			"/game/1/boxscore": boxscoreJSON("Somebody Else", "C", `{"homeRuns": 9}`, `{}`),
			"/game/3/boxscore": boxscoreJSON("Aaron Judge", "RF", `{"homeRuns": 1}`, `{}`),
		}
		c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/schedule" {
				fmt.Fprint(w, testSchedule)
				return
			}
			fmt.Fprint(w, boxes[r.URL.Path])
		}))

		events, err := c.EventsForPlayer(context.Background(), player, 2025, "homeRuns", false)
		So(err, ShouldBeNil)

		Convey("Then the missed game still yields an event with no increment", func() {
			So(len(events), ShouldEqual, 2)
			So(events[0].Value, ShouldEqual, 0)
			So(events[1].Value, ShouldEqual, 1)
		})
	})
}

func TestRawCache(t *testing.T) {
	Convey("Given a client with caching enabled", t, func() {
		var hits atomic.Int64
		c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			fmt.Fprint(w, testSchedule)
		}))

		first, err := c.Schedule(context.Background(), 2024, 136, true)
		So(err, ShouldBeNil)
		after := hits.Load()

		Convey("When the same schedule is requested again", func() {
			second, err := c.Schedule(context.Background(), 2024, 136, true)
			So(err, ShouldBeNil)

			Convey("Then the response comes from disk, not the network", func() {
				So(hits.Load(), ShouldEqual, after)
				So(second, ShouldResemble, first)
			})
		})
	})
}

func TestFoldName(t *testing.T) {
	Convey("Given names with accents, case, and padding", t, func() {
		So(foldName("José Ramírez"), ShouldEqual, "jose ramirez")
		So(foldName("  Aaron Judge "), ShouldEqual, "aaron judge")
		So(foldName("SHOHEI OHTANI"), ShouldEqual, "shohei ohtani")
	})
}
