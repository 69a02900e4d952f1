// Package statsapi is a client for the MLB Stats API: player lookup,
// team schedules, and per-game boxscores. Responses for completed
// seasons are cached on disk through rawstore.
package statsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/icco/statlines/lib/metrics"
	"github.com/icco/statlines/lib/rawstore"
	"github.com/icco/statlines/lib/timeline"
)

// DefaultBaseURL is the public MLB Stats API endpoint.
const DefaultBaseURL = "https://statsapi.mlb.com/api/v1"

type Client struct {
	http   *resty.Client
	cache  *rawstore.Store
	logger *slog.Logger
}

// Player identifies a resolved player and the context needed to read
// their stats: the team whose schedule to walk and the roster position
// that picks the stat category.
type Player struct {
	ID       int
	FullName string
	TeamID   int
	Position string
}

// Game is one scheduled regular-season game.
type Game struct {
	ID   int64
	Date time.Time
}

func New(baseURL string, cache *rawstore.Store, logger *slog.Logger) *Client {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(30 * time.Second)
	client.SetHeader("Accept", "application/json")

	return &Client{
		http:   client,
		cache:  cache,
		logger: logger,
	}
}

// get fetches a path, serving from the raw cache first when a cacheKey is
// given. Cache write failures are logged, not fatal.
func (c *Client) get(ctx context.Context, path string, query map[string]string, cacheKey string) ([]byte, error) {
	if cacheKey != "" && c.cache.Exists(cacheKey) {
		metrics.CacheHits.Inc()
		return c.cache.Read(cacheKey)
	}

	resp, err := c.http.R().SetContext(ctx).SetQueryParams(query).Get(path)
	if err != nil {
		return nil, fmt.Errorf("GET %s failed: %w", path, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("GET %s failed: status %d", path, resp.StatusCode())
	}

	body := resp.Body()
	if cacheKey != "" {
		if err := c.cache.Write(cacheKey, body); err != nil {
			c.logger.Warn("Failed to write raw cache",
				slog.String("key", cacheKey),
				slog.Any("error", err))
		}
	}
	return body, nil
}

type peopleSearchResponse struct {
	People []struct {
		ID              int    `json:"id"`
		FullName        string `json:"fullName"`
		PrimaryPosition struct {
			Abbreviation string `json:"abbreviation"`
		} `json:"primaryPosition"`
		CurrentTeam struct {
			ID int `json:"id"`
		} `json:"currentTeam"`
	} `json:"people"`
}

// LookupPlayer resolves a player name for a season. Matching prefers a
// folded exact name match and otherwise takes the API's first result,
// which is how the search endpoint ranks them. Lookups are never cached;
// team assignments change.
func (c *Client) LookupPlayer(ctx context.Context, name string, season int) (*Player, error) {
	body, err := c.get(ctx, "/people/search", map[string]string{
		"names":   name,
		"seasons": strconv.Itoa(season),
		"hydrate": "currentTeam",
	}, "")
	if err != nil {
		return nil, fmt.Errorf("failed to look up player %q: %w", name, err)
	}

	var res peopleSearchResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("failed to decode player search for %q: %w", name, err)
	}
	if len(res.People) == 0 {
		return nil, &timeline.PlayerNotFoundError{Name: name, Season: season}
	}

	pick := res.People[0]
	want := foldName(name)
	for _, p := range res.People {
		if foldName(p.FullName) == want {
			pick = p
			break
		}
	}

	return &Player{
		ID:       pick.ID,
		FullName: pick.FullName,
		TeamID:   pick.CurrentTeam.ID,
		Position: pick.PrimaryPosition.Abbreviation,
	}, nil
}

type scheduleResponse struct {
	Dates []struct {
		Date  string `json:"date"`
		Games []struct {
			GamePk       int64  `json:"gamePk"`
			GameType     string `json:"gameType"`
			OfficialDate string `json:"officialDate"`
		} `json:"games"`
	} `json:"dates"`
}

// Schedule returns a team's regular-season games for a season, earliest
// to latest as the API orders them.
func (c *Client) Schedule(ctx context.Context, season, teamID int, useCache bool) ([]Game, error) {
	cacheKey := ""
	if useCache {
		cacheKey = fmt.Sprintf("schedule/%d_%d.json", season, teamID)
	}

	body, err := c.get(ctx, "/schedule", map[string]string{
		"sportId":  "1",
		"season":   strconv.Itoa(season),
		"teamId":   strconv.Itoa(teamID),
		"gameType": "R",
	}, cacheKey)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule for team %d: %w", teamID, err)
	}

	var res scheduleResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("failed to decode schedule for team %d: %w", teamID, err)
	}

	var games []Game
	for _, d := range res.Dates {
		for _, g := range d.Games {
			if g.GameType != "R" {
				continue
			}
			raw := g.OfficialDate
			if raw == "" {
				raw = d.Date
			}
			date, err := time.Parse("2006-01-02", raw)
			if err != nil {
				c.logger.Warn("Skipping game with unparseable date",
					slog.Int64("game", g.GamePk),
					slog.String("date", raw))
				continue
			}
			games = append(games, Game{ID: g.GamePk, Date: date})
		}
	}
	return games, nil
}

// EventsForPlayer walks the player's team schedule and emits one observed
// event per game from the boxscore's cumulative season stats. Counting
// stats are converted to per-game increments; gauge stats pass through as
// the reported reading. A game whose boxscore cannot be fetched is
// skipped, the rest of the schedule continues.
func (c *Client) EventsForPlayer(ctx context.Context, p *Player, season int, stat string, useCache bool) ([]timeline.Event, error) {
	games, err := c.Schedule(ctx, season, p.TeamID, useCache)
	if err != nil {
		return nil, err
	}

	kind := timeline.KindForStat(stat)
	want := foldName(p.FullName)
	prev := 0.0

	events := make([]timeline.Event, 0, len(games))
	for _, game := range games {
		cacheKey := ""
		if useCache {
			cacheKey = fmt.Sprintf("boxscore/%d/%d.json", season, game.ID)
		}
		body, err := c.get(ctx, fmt.Sprintf("/game/%d/boxscore", game.ID), nil, cacheKey)
		if err != nil {
			c.logger.Warn("Failed to fetch boxscore, skipping game",
				slog.Int64("game", game.ID),
				slog.String("player", p.FullName),
				slog.Any("error", err))
			metrics.GameFetchFailures.Inc()
			continue
		}
		metrics.GamesFetched.Inc()

		var box boxscore
		if err := json.Unmarshal(body, &box); err != nil {
			c.logger.Warn("Failed to decode boxscore, skipping game",
				slog.Int64("game", game.ID),
				slog.Any("error", err))
			metrics.GameFetchFailures.Inc()
			continue
		}

		reading, ok := c.extractSeasonStat(&box, want, stat)
		if !ok {
			// Player not in this boxscore, or no reading. The zero still
			// becomes an event so the fill can carry the prior value.
			reading = 0
		}

		value := reading
		if kind == timeline.KindCounting {
			// The boxscore reports a cumulative total; the fill wants the
			// per-game increment. A total lower than the last one means a
			// missing reading, not negative production.
			delta := reading - prev
			if delta < 0 {
				c.logger.Debug("Cumulative reading went backwards, treating as missing",
					slog.String("player", p.FullName),
					slog.Int64("game", game.ID),
					slog.Float64("previous", prev),
					slog.Float64("reading", reading))
				delta = 0
			} else {
				prev = reading
			}
			value = delta
		}

		events = append(events, timeline.Event{Date: game.Date, Value: value})
	}
	return events, nil
}
