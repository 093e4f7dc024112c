// Package engine drives position evaluation by an external UCI engine.
//
// An Engine is a single request/response handle: one Analyze call may be in
// flight at a time. Analyzer scopes a handle to one run and always closes it.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Sentinel errors.
var (
	// ErrNoLimit indicates a Limit with neither a depth nor a time budget.
	ErrNoLimit = errors.New("engine: no search limit")

	// ErrClosed indicates the handle has been closed.
	ErrClosed = errors.New("engine: closed")

	// ErrNoScore indicates the engine finished a search without reporting a score.
	ErrNoScore = errors.New("engine: no score reported")

	// ErrNoPositionParser indicates an Analyzer without a NewPosition func.
	ErrNoPositionParser = errors.New("engine: no position parser")
)

// Limit bounds a single search. A positive Depth takes precedence over Time.
type Limit struct {
	Time  time.Duration
	Depth int
}

// DefaultLimit is one second of search per position.
var DefaultLimit = Limit{Time: time.Second}

// Validate reports ErrNoLimit when the limit would not bound the search.
func (l Limit) Validate() error {
	if l.Depth <= 0 && l.Time <= 0 {
		return ErrNoLimit
	}
	return nil
}

// ByDepth reports whether the search is bounded by depth.
func (l Limit) ByDepth() bool {
	return l.Depth > 0
}

func (l Limit) String() string {
	if l.ByDepth() {
		return fmt.Sprintf("depth %d", l.Depth)
	}
	return l.Time.String()
}

// Engine is a handle to a running evaluation engine.
type Engine interface {
	// SetThreads configures the engine's search thread count.
	SetThreads(n int) error

	// Analyze searches fen within limit and returns the score relative to
	// the side to move.
	Analyze(ctx context.Context, fen string, limit Limit) (Score, error)

	// Close terminates the engine.
	Close() error
}

// Launcher starts a new engine handle.
type Launcher func(ctx context.Context) (Engine, error)
