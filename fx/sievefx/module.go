// Package sievefx provides an fx module for a sieve pipeline.
package sievefx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/sieve"
	"github.com/discochess/sieve/internal/stats"
	"github.com/discochess/sieve/internal/stats/logger"
)

// Config holds configuration for the pipeline.
type Config struct {
	sieve.Config

	// SnapshotLocation keeps the games snapshot in a directory or bucket
	// (gs:// or s3://). Empty uses the directory of GamesPath.
	SnapshotLocation string

	// Compression is the snapshot codec used with SnapshotLocation.
	Compression string

	// CacheSize is the engine evaluation cache size shared by the pipeline.
	// Default is sieve.DefaultCacheSize.
	CacheSize int
}

// Module provides a *sieve.Pipeline.
// Requires a Config and a *zap.Logger to be provided.
var Module = fx.Module("sieve",
	fx.Provide(
		newStatsCollector,
		newPipeline,
	),
)

// StatsResult exposes the logging collector under the stats interface.
type StatsResult struct {
	fx.Out

	Logging   *logger.Collector
	Collector stats.Collector
}

func newStatsCollector(log *zap.Logger) StatsResult {
	c := logger.New(log.Named("sieve.stats"))
	return StatsResult{Logging: c, Collector: c}
}

// Params holds dependencies for creating the pipeline.
type Params struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Collector stats.Collector
	Logging   *logger.Collector
	Lifecycle fx.Lifecycle
}

// Result holds the provided pipeline.
type Result struct {
	fx.Out

	Pipeline *sieve.Pipeline
}

func newPipeline(p Params) (Result, error) {
	cacheSize := p.Config.CacheSize
	if cacheSize <= 0 {
		cacheSize = sieve.DefaultCacheSize
	}

	opts := []sieve.Option{
		sieve.WithStats(p.Collector),
		sieve.WithLogger(p.Logger.Named("sieve")),
		sieve.WithCacheSize(cacheSize),
	}
	if p.Config.SnapshotLocation != "" {
		opt, err := sieve.WithSnapshot(context.Background(), p.Config.SnapshotLocation, p.Config.Compression)
		if err != nil {
			return Result{}, err
		}
		opts = append(opts, opt)
	}

	pipeline, err := sieve.New(p.Config.Config, opts...)
	if err != nil {
		return Result{}, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			p.Logging.Flush()
			return pipeline.Close()
		},
	})

	return Result{Pipeline: pipeline}, nil
}
