package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/icco/statlines/handlers"
	"github.com/icco/statlines/lib/chart"
	"github.com/icco/statlines/lib/charts"
	"github.com/icco/statlines/lib/config"
	"github.com/icco/statlines/lib/db"
	"github.com/icco/statlines/lib/health"
	"github.com/icco/statlines/lib/lock"
	"github.com/icco/statlines/lib/rawstore"
	"github.com/icco/statlines/lib/statsapi"
	"github.com/icco/statlines/lib/store"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// A missing .env is fine; real deployments set the environment
	// directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	gdb, err := db.Open(cfg.DBPath, logger)
	if err != nil {
		logger.Error("Failed to open database", slog.Any("error", err))
		os.Exit(1)
	}

	style, err := chart.LoadStyle(cfg.ChartStyle)
	if err != nil {
		logger.Error("Failed to load chart style", slog.Any("error", err),
			slog.String("path", cfg.ChartStyle))
		os.Exit(1)
	}

	raw := rawstore.New(cfg.DataDir)
	api := statsapi.New(cfg.StatsAPIURL, raw, logger)
	fl := lock.NewFileLock(cfg.LockDir, logger)
	st := store.New(gdb, logger, fl, cfg.CurrentSeason)
	svc := charts.New(st, api, logger, cfg.OpenAIKey, cfg.CurrentSeason)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", handlers.HandleHome(svc))
	r.Get("/chart", handlers.HandleChartQuery())
	r.Get("/chart/{stat}/{season}", handlers.HandleChartPage(svc, style))
	r.Get("/chart/{stat}/{season}/svg", handlers.HandleChartSVG(svc, style))
	r.Get("/chart/{stat}/{season}/xlsx", handlers.HandleChartXLSX(svc))
	r.Post("/rebuild/{stat}/{season}", handlers.HandleRebuild(svc))
	r.Get("/health", health.Check(gdb))
	r.Handle("/metrics", promhttp.Handler())

	logger.Info("Starting server",
		slog.String("addr", cfg.Addr),
		slog.Int("current_season", cfg.CurrentSeason))
	if err := http.ListenAndServe(cfg.Addr, r); err != nil {
		logger.Error("Server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func logLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func init() {
	// chi's Logger middleware prints with the stdlib logger. Route it
	// through a recognizable prefix so the two streams are easy to tell
	// apart.
	middleware.DefaultLogger = middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  logAdapter{},
		NoColor: true,
	})
}

type logAdapter struct{}

func (logAdapter) Print(v ...interface{}) {
	slog.Info(fmt.Sprint(v...))
}
