// Package cachedengine memoizes engine scores in an LRU cache.
//
// Games from one player repeat their openings, so the same position is often
// evaluated many times across a batch. One Cache is shared by every engine
// handle it launches, and a handle only starts its process on the first miss.
package cachedengine

import (
	"context"
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/discochess/sieve/internal/engine"
	"github.com/discochess/sieve/internal/fen"
	"github.com/discochess/sieve/internal/stats"
)

// Compile-time check that Engine implements engine.Engine.
var _ engine.Engine = (*Engine)(nil)

type key struct {
	fen   string
	limit engine.Limit
}

// Stats contains cache statistics.
type Stats struct {
	Hits   int64
	Misses int64
	Size   int
}

// HitRate returns the cache hit rate as a percentage.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Cache holds scores shared across engine handles.
// It is safe for concurrent use.
type Cache struct {
	lru       *lru.Cache[key, engine.Score]
	collector stats.Collector

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache creates a cache holding up to capacity scores.
// The collector is optional; if nil, a no-op collector is used.
func NewCache(capacity int, collector stats.Collector) (*Cache, error) {
	c, err := lru.New[key, engine.Score](capacity)
	if err != nil {
		return nil, err
	}
	if collector == nil {
		collector = stats.NewNoop()
	}
	return &Cache{lru: c, collector: collector}, nil
}

// Launcher returns a launcher whose handles consult c before searching.
// The underlying engine is started by launch on the handle's first miss.
func (c *Cache) Launcher(launch engine.Launcher) engine.Launcher {
	return func(ctx context.Context) (engine.Engine, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		return &Engine{cache: c, launch: launch}, nil
	}
}

// Stats returns current cache statistics.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Size:   c.lru.Len(),
	}
}

func (c *Cache) get(k key) (engine.Score, bool) {
	s, ok := c.lru.Get(k)
	if ok {
		c.hits.Add(1)
		c.collector.IncCounter(stats.MetricEngineCacheHits, 1)
		return s, true
	}
	c.misses.Add(1)
	c.collector.IncCounter(stats.MetricEngineCacheMisses, 1)
	return engine.Score{}, false
}

func (c *Cache) add(k key, s engine.Score) {
	c.lru.Add(k, s)
	c.collector.SetGauge(stats.MetricEngineCacheSize, int64(c.lru.Len()))
}

// Engine is a handle that answers from its Cache and searches on a miss.
type Engine struct {
	cache *Cache

	underlying engine.Engine
	launch     engine.Launcher
	threads    int
	closed     bool
}

// New wraps a running engine with a cache of the given capacity.
func New(underlying engine.Engine, capacity int, collector stats.Collector) (*Engine, error) {
	c, err := NewCache(capacity, collector)
	if err != nil {
		return nil, err
	}
	return &Engine{cache: c, underlying: underlying}, nil
}

// SetThreads configures the underlying engine, or remembers n until the
// engine is started.
func (e *Engine) SetThreads(n int) error {
	if e.closed {
		return engine.ErrClosed
	}
	if e.underlying == nil {
		e.threads = n
		return nil
	}
	return e.underlying.SetThreads(n)
}

// Analyze returns a cached score for the position, searching on a miss.
// Positions are keyed without their move counters.
func (e *Engine) Analyze(ctx context.Context, fenStr string, limit engine.Limit) (engine.Score, error) {
	if e.closed {
		return engine.Score{}, engine.ErrClosed
	}

	k := key{fen: fenStr, limit: limit}
	if norm, err := fen.Normalize(fenStr); err == nil {
		k.fen = norm
	}
	if s, ok := e.cache.get(k); ok {
		return s, nil
	}

	under, err := e.start(ctx)
	if err != nil {
		return engine.Score{}, err
	}
	s, err := under.Analyze(ctx, fenStr, limit)
	if err != nil {
		return engine.Score{}, err
	}
	e.cache.add(k, s)
	return s, nil
}

func (e *Engine) start(ctx context.Context) (engine.Engine, error) {
	if e.underlying != nil {
		return e.underlying, nil
	}
	eng, err := e.launch(ctx)
	if err != nil {
		return nil, fmt.Errorf("launching engine: %w", err)
	}
	if e.threads > 0 {
		if err := eng.SetThreads(e.threads); err != nil {
			_ = eng.Close()
			return nil, fmt.Errorf("setting threads: %w", err)
		}
	}
	e.underlying = eng
	return eng, nil
}

// Close closes the underlying engine if it was started.
// A second Close returns engine.ErrClosed.
func (e *Engine) Close() error {
	if e.closed {
		return engine.ErrClosed
	}
	e.closed = true
	if e.underlying == nil {
		return nil
	}
	return e.underlying.Close()
}

// Stats returns statistics of the cache behind e.
func (e *Engine) Stats() Stats {
	return e.cache.Stats()
}
