package statsapi

import (
	"log/slog"
	"sort"
	"strconv"
)

type boxscore struct {
	Teams struct {
		Away boxTeam `json:"away"`
		Home boxTeam `json:"home"`
	} `json:"teams"`
}

type boxTeam struct {
	Players map[string]boxPlayer `json:"players"`
}

type boxPlayer struct {
	Person struct {
		FullName string `json:"fullName"`
	} `json:"person"`
	Position struct {
		Abbreviation string `json:"abbreviation"`
	} `json:"position"`
	// Category ("batting", "pitching", "fielding") to stat name to value.
	// Values are numbers for counters and strings for rate stats, with
	// "-.--" standing in for "no reading yet".
	SeasonStats map[string]map[string]any `json:"seasonStats"`
}

// noReading is the API's placeholder for a rate stat with no data yet.
const noReading = "-.--"

// extractSeasonStat finds the player in the boxscore by folded name and
// reads the cumulative season value for stat. The category is picked from
// the player's position in this boxscore: pitchers read pitching stats,
// everyone else batting. When the primary category has no usable reading
// it falls back to scanning all categories and takes the first non-zero
// value found; that scan can pick the wrong category for a two-way
// player, so it is logged.
func (c *Client) extractSeasonStat(box *boxscore, foldedName, stat string) (float64, bool) {
	var player *boxPlayer
	for _, team := range []boxTeam{box.Teams.Away, box.Teams.Home} {
		for _, p := range team.Players {
			if foldName(p.Person.FullName) == foldedName {
				player = &p
				break
			}
		}
		if player != nil {
			break
		}
	}
	if player == nil {
		return 0, false
	}

	category := "batting"
	if player.Position.Abbreviation == "P" {
		category = "pitching"
	}

	if v, ok := parseStatValue(player.SeasonStats[category][stat]); ok {
		return v, true
	}

	// Fallback scan, in stable category order.
	categories := make([]string, 0, len(player.SeasonStats))
	for name := range player.SeasonStats {
		categories = append(categories, name)
	}
	sort.Strings(categories)

	for _, name := range categories {
		if name == category {
			continue
		}
		if v, ok := parseStatValue(player.SeasonStats[name][stat]); ok && v != 0 {
			c.logger.Debug("Stat missing from primary category, using cross-category fallback",
				slog.String("player", player.Person.FullName),
				slog.String("stat", stat),
				slog.String("primary", category),
				slog.String("fallback", name),
				slog.Float64("value", v))
			return v, true
		}
	}

	return 0, false
}

// parseStatValue coerces a seasonStats value to a float. Counters arrive
// as JSON numbers, rate stats as strings.
func parseStatValue(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case string:
		if val == "" || val == noReading {
			return 0, false
		}
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
