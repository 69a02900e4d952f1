// Package metrics exposes the service's prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GamesFetched counts boxscores retrieved from the network.
	GamesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "statlines_games_fetched_total",
		Help: "Number of boxscores fetched from the stats API.",
	})

	// GameFetchFailures counts boxscores that could not be retrieved and were skipped.
	GameFetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "statlines_game_fetch_failures_total",
		Help: "Number of boxscore fetches that failed and were skipped.",
	})

	// CacheHits counts raw responses served from the on-disk cache.
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "statlines_cache_hits_total",
		Help: "Number of stats API responses served from the raw cache.",
	})

	// EventsSkipped counts observed events whose date had no match on the axis.
	EventsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "statlines_events_skipped_total",
		Help: "Number of stat events dropped because their date was not on the axis.",
	})

	// PlayersSkipped counts requested players that could not be resolved or filled.
	PlayersSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "statlines_players_skipped_total",
		Help: "Number of requested players skipped during table construction.",
	})
)
