// Package metrics exposes the pipeline's Prometheus instrumentation on a
// dedicated registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var (
	// FetchesTotal counts completed network fetches by resource kind
	// (list, acta, standings).
	FetchesTotal = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "victoria",
		Name:      "fetches_total",
		Help:      "Completed network fetches by resource kind.",
	}, []string{"kind"})

	// CacheHits counts fetches answered from the resource cache.
	CacheHits = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "victoria",
		Name:      "cache_hits_total",
		Help:      "Fetches served from the resource cache, by resource kind.",
	}, []string{"kind"})

	// FetchFailures counts recoverable fetch failures.
	FetchFailures = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "victoria",
		Name:      "fetch_failures_total",
		Help:      "Recoverable fetch failures by resource kind.",
	}, []string{"kind"})

	// DuelsParsed counts duels reconstructed from actas.
	DuelsParsed = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: "victoria",
		Name:      "duels_parsed_total",
		Help:      "Duels reconstructed from acta markup.",
	})

	// MatchesEnriched counts matches promoted to finished.
	MatchesEnriched = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: "victoria",
		Name:      "matches_enriched_total",
		Help:      "Matches with a duel list successfully attached.",
	})

	// PlayersRated gauges the size of the last leaderboard per group.
	PlayersRated = promauto.With(registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "victoria",
		Name:      "players_rated",
		Help:      "Players on the most recent leaderboard, per group.",
	}, []string{"group"})

	// LastRunTimestamp records the unix time of the last completed run.
	LastRunTimestamp = promauto.With(registry).NewGauge(prometheus.GaugeOpts{
		Namespace: "victoria",
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time of the last completed pipeline run.",
	})
)

// Handler serves the registry for the artifacts server's /metrics route.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
