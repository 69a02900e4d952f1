package validation

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// statRegex matches MLB stat names as they appear in boxscore season
// stats, e.g. "homeRuns", "era", "strikeOuts".
var statRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9]{0,39}$`)

// maxPlayers bounds how many lines one chart can hold before it stops
// being readable.
const maxPlayers = 10

// ValidateStat checks that a stat name is a plausible boxscore stat key.
func ValidateStat(stat string) error {
	if !statRegex.MatchString(stat) {
		return fmt.Errorf("invalid stat name: %q", stat)
	}
	return nil
}

// ValidateSeason parses and checks a season year. The modern era starts
// in 1901, and next year's season is the latest one that can exist.
func ValidateSeason(season string) (int, error) {
	year, err := strconv.Atoi(season)
	if err != nil {
		return 0, fmt.Errorf("invalid season: %q", season)
	}
	if year < 1901 || year > time.Now().Year()+1 {
		return 0, fmt.Errorf("season %d out of range", year)
	}
	return year, nil
}

// ValidatePlayers splits a comma-separated player list, trimming blanks.
// At least one player and at most maxPlayers are required.
func ValidatePlayers(raw string) ([]string, error) {
	var players []string
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		players = append(players, name)
	}
	if len(players) == 0 {
		return nil, fmt.Errorf("at least one player is required")
	}
	if len(players) > maxPlayers {
		return nil, fmt.Errorf("at most %d players per chart, got %d", maxPlayers, len(players))
	}
	return players, nil
}

// WriteError writes a validation error response to the HTTP response writer.
// It takes a response writer, error message, and HTTP status code.
func WriteError(w http.ResponseWriter, err error, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"error": err.Error(),
	}); err != nil {
		slog.Error("Failed to encode error response", slog.Any("error", err))
	}
}
