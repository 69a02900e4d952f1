package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/icco/statlines/handlers/templates"
	"github.com/icco/statlines/lib/chart"
	"github.com/icco/statlines/lib/charts"
	"github.com/icco/statlines/lib/timeline"
	"github.com/icco/statlines/lib/validation"
)

type errorData struct {
	Message string
}

func renderError(w http.ResponseWriter, message string, status int) {
	tmpl, err := templates.ParseTemplates("base.html", "error.html")
	if err != nil {
		slog.Error("Failed to parse error template", slog.Any("error", err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "base", errorData{Message: message}); err != nil {
		slog.Error("Failed to execute error template", slog.Any("error", err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// chartParams is the validated (stat, season, players) triple shared by
// the chart handlers.
type chartParams struct {
	Stat    string
	Season  int
	Players []string
	DryRun  bool
}

func parseChartParams(req *http.Request) (*chartParams, error) {
	stat := chi.URLParam(req, "stat")
	if err := validation.ValidateStat(stat); err != nil {
		return nil, err
	}

	season, err := validation.ValidateSeason(chi.URLParam(req, "season"))
	if err != nil {
		return nil, err
	}

	players, err := validation.ValidatePlayers(req.URL.Query().Get("players"))
	if err != nil {
		return nil, err
	}

	return &chartParams{
		Stat:    stat,
		Season:  season,
		Players: players,
		DryRun:  req.URL.Query().Get("dry") == "1",
	}, nil
}

func playersParam(players []string) string {
	return url.QueryEscape(strings.Join(players, ","))
}

// chartStatus maps a chart build failure to an HTTP status and a
// message suitable for showing the visitor.
func chartStatus(err error) (int, string) {
	var empty *timeline.EmptyScheduleError
	if errors.As(err, &empty) {
		return http.StatusNotFound, fmt.Sprintf("No games found for the %d season. None of the requested players may exist.", empty.Season)
	}
	return http.StatusInternalServerError, "Something went wrong while building the chart."
}

type homeTable struct {
	Stat         string
	Season       int
	Window       string
	Players      []string
	PlayersParam string
}

func HandleHome(svc *charts.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		infos, err := svc.Tables(req.Context())
		if err != nil {
			slog.Error("Failed to list tables", slog.Any("error", err))
			renderError(w, "We couldn't load the cached tables.", http.StatusInternalServerError)
			return
		}

		tables := make([]homeTable, 0, len(infos))
		for _, info := range infos {
			tables = append(tables, homeTable{
				Stat:   info.Stat,
				Season: info.Season,
				Window: fmt.Sprintf("%s – %s",
					info.StartDate.Format("Jan 2"), info.EndDate.Format("Jan 2")),
				Players:      info.Players,
				PlayersParam: playersParam(info.Players),
			})
		}

		tmpl, err := templates.ParseTemplates("base.html", "home.html")
		if err != nil {
			slog.Error("Failed to parse template", slog.Any("error", err))
			renderError(w, "Something went wrong while loading the page.", http.StatusInternalServerError)
			return
		}

		if err := tmpl.ExecuteTemplate(w, "base", struct{ Tables []homeTable }{Tables: tables}); err != nil {
			slog.Error("Failed to execute template", slog.Any("error", err))
			renderError(w, "Something went wrong while displaying the page.", http.StatusInternalServerError)
		}
	}
}

// HandleChartQuery turns the home page form submission into the
// canonical chart URL.
func HandleChartQuery() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		stat := q.Get("stat")
		if err := validation.ValidateStat(stat); err != nil {
			renderError(w, err.Error(), http.StatusBadRequest)
			return
		}
		season, err := validation.ValidateSeason(q.Get("season"))
		if err != nil {
			renderError(w, err.Error(), http.StatusBadRequest)
			return
		}
		players, err := validation.ValidatePlayers(q.Get("players"))
		if err != nil {
			renderError(w, err.Error(), http.StatusBadRequest)
			return
		}

		dest := fmt.Sprintf("/chart/%s/%d?players=%s", stat, season, playersParam(players))
		http.Redirect(w, req, dest, http.StatusSeeOther)
	}
}

type chartPageData struct {
	Title        string
	SVG          template.HTML
	Stat         string
	Season       int
	PlayersParam string
	Summary      string
}

func HandleChartPage(svc *charts.Service, style *chart.Style) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		params, err := parseChartParams(req)
		if err != nil {
			renderError(w, err.Error(), http.StatusBadRequest)
			return
		}

		data, err := svc.ChartData(req.Context(), params.Stat, params.Season, params.Players, params.DryRun)
		if err != nil {
			slog.Error("Failed to build chart", slog.Any("error", err),
				slog.String("stat", params.Stat), slog.Int("season", params.Season))
			status, msg := chartStatus(err)
			renderError(w, msg, status)
			return
		}

		title := chart.ChartTitle(params.Stat, params.Season, data.Players)

		var buf bytes.Buffer
		if err := chart.RenderSVG(&buf, data.Table.Axis(), data.Columns, data.Players, title, style); err != nil {
			slog.Error("Failed to render chart", slog.Any("error", err))
			renderError(w, "Something went wrong while drawing the chart.", http.StatusInternalServerError)
			return
		}

		summary, err := svc.Summary(req.Context(), data)
		if err != nil {
			// The page is still useful without the blurb.
			slog.Warn("Failed to summarize chart", slog.Any("error", err))
		}

		tmpl, err := templates.ParseTemplates("base.html", "chart.html")
		if err != nil {
			slog.Error("Failed to parse template", slog.Any("error", err))
			renderError(w, "Something went wrong while loading the page.", http.StatusInternalServerError)
			return
		}

		page := chartPageData{
			Title:        title,
			SVG:          template.HTML(buf.String()),
			Stat:         params.Stat,
			Season:       params.Season,
			PlayersParam: playersParam(params.Players),
			Summary:      summary,
		}
		if err := tmpl.ExecuteTemplate(w, "base", page); err != nil {
			slog.Error("Failed to execute template", slog.Any("error", err))
			renderError(w, "Something went wrong while displaying the page.", http.StatusInternalServerError)
		}
	}
}

func HandleChartSVG(svc *charts.Service, style *chart.Style) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		params, err := parseChartParams(req)
		if err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}

		data, err := svc.ChartData(req.Context(), params.Stat, params.Season, params.Players, params.DryRun)
		if err != nil {
			slog.Error("Failed to build chart", slog.Any("error", err),
				slog.String("stat", params.Stat), slog.Int("season", params.Season))
			status, _ := chartStatus(err)
			validation.WriteError(w, err, status)
			return
		}

		title := chart.ChartTitle(params.Stat, params.Season, data.Players)

		w.Header().Set("Content-Type", "image/svg+xml")
		if err := chart.RenderSVG(w, data.Table.Axis(), data.Columns, data.Players, title, style); err != nil {
			slog.Error("Failed to render chart", slog.Any("error", err))
		}
	}
}

func HandleChartXLSX(svc *charts.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		params, err := parseChartParams(req)
		if err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}

		data, err := svc.ChartData(req.Context(), params.Stat, params.Season, params.Players, params.DryRun)
		if err != nil {
			slog.Error("Failed to build chart", slog.Any("error", err),
				slog.String("stat", params.Stat), slog.Int("season", params.Season))
			status, _ := chartStatus(err)
			validation.WriteError(w, err, status)
			return
		}

		title := chart.ChartTitle(params.Stat, params.Season, data.Players)
		filename := fmt.Sprintf("%s-%d.xlsx", params.Stat, params.Season)

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		if err := chart.WriteXLSX(w, data.Table.Axis(), data.Columns, data.Players, title); err != nil {
			slog.Error("Failed to write spreadsheet", slog.Any("error", err))
		}
	}
}

func HandleRebuild(svc *charts.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		stat := chi.URLParam(req, "stat")
		if err := validation.ValidateStat(stat); err != nil {
			renderError(w, err.Error(), http.StatusBadRequest)
			return
		}
		season, err := validation.ValidateSeason(chi.URLParam(req, "season"))
		if err != nil {
			renderError(w, err.Error(), http.StatusBadRequest)
			return
		}

		if err := svc.Rebuild(req.Context(), stat, season); err != nil {
			slog.Error("Failed to rebuild table", slog.Any("error", err),
				slog.String("stat", stat), slog.Int("season", season))
			renderError(w, "Something went wrong while discarding the cached table.", http.StatusInternalServerError)
			return
		}

		http.Redirect(w, req, "/", http.StatusSeeOther)
	}
}
