// Package stats provides a unified interface for collecting metrics.
package stats

// Metric names used throughout the module.
const (
	// Scan metrics.
	MetricGamesScanned     = "sieve_games_scanned_total"
	MetricMatches          = "sieve_matches_total"
	MetricPositionsChecked = "sieve_positions_checked_total"

	// Engine metrics.
	MetricEvaluations       = "sieve_evaluations_total"
	MetricEvalSeconds       = "sieve_eval_seconds"
	MetricEngineCacheHits   = "sieve_engine_cache_hits_total"
	MetricEngineCacheMisses = "sieve_engine_cache_misses_total"
	MetricEngineCacheSize   = "sieve_engine_cache_size"

	// Archive metrics.
	MetricArchiveFetches = "sieve_archive_fetches_total"
	MetricGamesFetched   = "sieve_archive_games_fetched"
)

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}
