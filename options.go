package sieve

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/discochess/sieve/internal/archive"
	"github.com/discochess/sieve/internal/engine"
	"github.com/discochess/sieve/internal/engine/cachedengine"
	"github.com/discochess/sieve/internal/engine/uciengine"
	"github.com/discochess/sieve/internal/fenlog"
	"github.com/discochess/sieve/internal/report"
	"github.com/discochess/sieve/internal/stats"
	"github.com/discochess/sieve/internal/store"
	"github.com/discochess/sieve/internal/store/storeurl"
)

// DefaultCacheSize is the number of engine evaluations a pipeline keeps.
const DefaultCacheSize = 4096

// Option configures a Pipeline.
type Option interface {
	apply(*options)
}

// options holds the pipeline configuration.
type options struct {
	store     store.Store
	archive   []archive.Option
	rec       fenlog.Writer
	launch    engine.Launcher
	cacheSize int
	reporter  report.Reporter
	stats     stats.Collector
	logger    *zap.Logger
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		cacheSize: DefaultCacheSize,
		reporter:  report.Discard,
		stats:     stats.NewNoop(),
		logger:    zap.NewNop(),
	}
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithStore sets the snapshot store.
// If not set, a plain disk store rooted at the games path directory is used.
func WithStore(s store.Store) Option {
	return optionFunc(func(o *options) {
		o.store = s
	})
}

// WithSnapshot keeps the games snapshot at location, which may be a local
// directory, a gs://bucket/prefix or an s3://bucket/prefix URL. compression
// names the codec ("none", "gzip" or "zstd").
func WithSnapshot(ctx context.Context, location, compression string) (Option, error) {
	st, err := storeurl.Open(ctx, location, compression)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot store: %w", err)
	}
	return WithStore(st), nil
}

// WithArchiveHost points the archive client at host instead of lichess.org.
func WithArchiveHost(host string) Option {
	return optionFunc(func(o *options) {
		o.archive = append(o.archive, archive.WithHost(host))
	})
}

// WithHTTPClient sets the HTTP client used to download games.
func WithHTTPClient(c *http.Client) Option {
	return optionFunc(func(o *options) {
		o.archive = append(o.archive, archive.WithHTTPClient(c))
	})
}

// WithArchiveTimeout bounds each archive download, including reading the
// body. It replaces any client set by WithHTTPClient.
func WithArchiveTimeout(d time.Duration) Option {
	return optionFunc(func(o *options) {
		o.archive = append(o.archive, archive.WithTimeout(d))
	})
}

// WithReporter sets the reporter that receives progress and results.
// If not set, nothing is printed.
func WithReporter(r report.Reporter) Option {
	return optionFunc(func(o *options) {
		o.reporter = r
	})
}

// WithRecorder sets the match log. It overrides Config.OutputPath and
// enables recording regardless of Config.Save.
func WithRecorder(w fenlog.Writer) Option {
	return optionFunc(func(o *options) {
		o.rec = w
	})
}

// WithEngine sets how engine processes are started.
// It overrides Config.EnginePath.
func WithEngine(l engine.Launcher) Option {
	return optionFunc(func(o *options) {
		o.launch = l
	})
}

// WithCacheSize sets the evaluation cache size. The cache is shared by every
// engine process the pipeline starts. Zero disables caching.
func WithCacheSize(n int) Option {
	return optionFunc(func(o *options) {
		o.cacheSize = n
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		o.stats = c
	})
}

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}

func (o *options) recorder(cfg Config) fenlog.Writer {
	if o.rec != nil {
		return o.rec
	}
	if !cfg.Save || cfg.OutputPath == "" {
		return nil
	}
	return newRecorder(cfg.OutputPath)
}

func (o *options) archiveClient() *archive.Client {
	opts := append([]archive.Option{
		archive.WithLogger(o.logger.Named("archive")),
		archive.WithStats(o.stats),
	}, o.archive...)
	return archive.NewClient(opts...)
}

func (o *options) launcher(cfg Config) (engine.Launcher, *cachedengine.Cache, error) {
	launch := o.launch
	if launch == nil {
		if cfg.EnginePath == "" {
			return nil, nil, nil
		}
		launch = uciengine.Launcher(cfg.EnginePath, uciengine.WithLogger(o.logger.Named("uci")))
	}
	if o.cacheSize <= 0 {
		return launch, nil, nil
	}
	cache, err := cachedengine.NewCache(o.cacheSize, o.stats)
	if err != nil {
		return nil, nil, fmt.Errorf("creating evaluation cache: %w", err)
	}
	return cache.Launcher(launch), cache, nil
}
