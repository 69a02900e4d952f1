// Package charts drives the whole pipeline: load or build the cached
// table for a (stat, season), merge in columns for newly requested
// players, and hand the result to a renderer. Merges are staged and only
// persisted on commit.
package charts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/icco/statlines/lib/metrics"
	"github.com/icco/statlines/lib/statsapi"
	"github.com/icco/statlines/lib/store"
	"github.com/icco/statlines/lib/timeline"
	openai "github.com/sashabaranov/go-openai"
)

// Source is the capability surface consumed from the stats API client.
type Source interface {
	LookupPlayer(ctx context.Context, name string, season int) (*statsapi.Player, error)
	Schedule(ctx context.Context, season, teamID int, useCache bool) ([]statsapi.Game, error)
	EventsForPlayer(ctx context.Context, p *statsapi.Player, season int, stat string, useCache bool) ([]timeline.Event, error)
}

type Service struct {
	store         *store.Store
	source        Source
	builder       *timeline.Builder
	logger        *slog.Logger
	openai        *openai.Client
	currentSeason int
}

// ChartData is a finished table view ready for rendering.
type ChartData struct {
	Table *timeline.Table
	// Players are the requested players that have a column, in request
	// order.
	Players []string
	Columns map[string][]float64
	// Added lists players whose columns were built on this request.
	Added []string
	// Committed reports whether added columns were persisted.
	Committed bool
}

// New creates the chart service. openaiKey is optional; without it the
// summary feature is disabled.
func New(st *store.Store, source Source, logger *slog.Logger, openaiKey string, currentSeason int) *Service {
	var oc *openai.Client
	if openaiKey != "" {
		oc = openai.NewClient(openaiKey)
	}
	return &Service{
		store:         st,
		source:        source,
		builder:       timeline.NewBuilder(logger),
		logger:        logger,
		openai:        oc,
		currentSeason: currentSeason,
	}
}

// ChartData loads the cached table for (stat, season), builds it from the
// schedule when absent, stages a column for every requested player not
// already present, and returns the columns to draw. When dryRun is set
// the staged columns are rendered but rolled back instead of persisted.
//
// Failures scoped to a single player are absorbed with a diagnostic; only
// an unusable axis aborts the whole chart.
func (s *Service) ChartData(ctx context.Context, stat string, season int, players []string, dryRun bool) (*ChartData, error) {
	useCache := season != s.currentSeason
	kind := timeline.KindForStat(stat)

	table, err := s.store.Load(ctx, stat, season)
	if err != nil {
		return nil, err
	}
	if table == nil {
		axis, err := s.buildAxis(ctx, season, players, useCache)
		if err != nil {
			return nil, err
		}
		table = timeline.NewTable(stat, season, kind, axis)
		s.logger.Info("Built new table axis",
			slog.String("stat", stat),
			slog.Int("season", season),
			slog.Int("days", axis.Len()))
	}

	stage := table.NewStage()
	for _, name := range players {
		if table.HasColumn(name) {
			continue
		}
		values, err := s.buildColumn(ctx, table, kind, name, season, stat, useCache)
		if err != nil {
			s.logger.Warn("Skipping player",
				slog.String("player", name),
				slog.String("stat", stat),
				slog.Int("season", season),
				slog.Any("error", err))
			metrics.PlayersSkipped.Inc()
			continue
		}
		if values == nil {
			continue
		}
		if err := stage.Add(name, values); err != nil {
			return nil, fmt.Errorf("failed to stage column for %q: %w", name, err)
		}
	}

	added := stage.Added()
	columns, found := table.ColumnsFor(players, stage)

	data := &ChartData{
		Table:   table,
		Players: found,
		Columns: columns,
		Added:   added,
	}

	if len(added) == 0 {
		stage.Rollback()
		return data, nil
	}

	if dryRun {
		s.logger.Info("Dry run, rolling back staged columns", slog.Any("players", added))
		stage.Rollback()
		return data, nil
	}

	if err := stage.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit staged columns: %w", err)
	}
	data.Committed = true
	if err := s.store.Save(ctx, table); err != nil {
		// The chart is still drawable; the next run just rebuilds.
		s.logger.Error("Failed to persist table",
			slog.String("stat", stat),
			slog.Int("season", season),
			slog.Any("error", err))
	}
	return data, nil
}

// buildAxis derives the axis from the first requested player whose team
// schedule resolves, the season window being shared across teams closely
// enough for a daily axis.
func (s *Service) buildAxis(ctx context.Context, season int, players []string, useCache bool) (*timeline.Axis, error) {
	for _, name := range players {
		p, err := s.source.LookupPlayer(ctx, name, season)
		if err != nil {
			var pnf *timeline.PlayerNotFoundError
			if errors.As(err, &pnf) {
				s.logger.Warn("Player not found while deriving axis", slog.String("player", name))
				continue
			}
			return nil, err
		}

		games, err := s.source.Schedule(ctx, season, p.TeamID, useCache)
		if err != nil {
			s.logger.Warn("Failed to fetch schedule while deriving axis",
				slog.String("player", name),
				slog.Any("error", err))
			continue
		}
		if len(games) == 0 {
			continue
		}

		dates := make([]time.Time, len(games))
		for i, g := range games {
			dates[i] = g.Date
		}
		return timeline.AxisFromDates(season, dates)
	}
	return nil, &timeline.EmptyScheduleError{Season: season}
}

// buildColumn fetches a player's events and fills their column. A nil
// result with nil error means the player had no events and gets no
// column, matching how an empty fetch should not pin an all-zero line to
// the chart.
func (s *Service) buildColumn(ctx context.Context, table *timeline.Table, kind timeline.Kind, name string, season int, stat string, useCache bool) ([]float64, error) {
	p, err := s.source.LookupPlayer(ctx, name, season)
	if err != nil {
		return nil, err
	}

	events, err := s.source.EventsForPlayer(ctx, p, season, stat, useCache)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		s.logger.Info("No events for player, skipping column",
			slog.String("player", name),
			slog.String("stat", stat),
			slog.Int("season", season))
		return nil, nil
	}

	return s.builder.Fill(table.Axis(), kind, name, events)
}

// Rebuild discards the cached table so the next request rebuilds it from
// the source.
func (s *Service) Rebuild(ctx context.Context, stat string, season int) error {
	return s.store.Delete(ctx, stat, season)
}

// Tables lists the cached tables for the home page.
func (s *Service) Tables(ctx context.Context) ([]store.TableInfo, error) {
	return s.store.Tables(ctx)
}

// Summary asks OpenAI for a short comparison of the players' final
// values. Returns an empty string when the feature is not configured.
func (s *Service) Summary(ctx context.Context, data *ChartData) (string, error) {
	if s.openai == nil || len(data.Players) == 0 {
		return "", nil
	}

	prompt := fmt.Sprintf("In two sentences, compare these MLB players' season-end cumulative %s totals for %d:",
		data.Table.Stat, data.Table.Season)
	for _, name := range data.Players {
		values := data.Columns[name]
		prompt += fmt.Sprintf(" %s: %.2f.", name, values[len(values)-1])
	}

	resp, err := s.openai.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT4oMini20240718,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate summary: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
