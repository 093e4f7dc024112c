// Package scanner replays games and stops at the first position whose
// material satisfies a matcher.
package scanner

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/discochess/sieve/internal/board"
	"github.com/discochess/sieve/internal/fenlog"
	"github.com/discochess/sieve/internal/matcher"
	"github.com/discochess/sieve/internal/stats"
)

// OriginNotFound is reported as the origin of a game without a Site tag.
const OriginNotFound = "URL not found"

// Result is the outcome of scanning one game.
type Result struct {
	// Found reports whether some position matched.
	Found bool

	// FEN is the first matching position. Empty when Found is false.
	FEN string

	// Ply is the 1-based half-move after which the match occurred.
	Ply int

	// Origin is the game's Site tag, or OriginNotFound.
	Origin string
}

// ScoreFunc scores a matched position for the match log.
type ScoreFunc func(ctx context.Context, fen string) (string, error)

// Scanner applies one matcher to whole games.
type Scanner struct {
	matcher  matcher.Matcher
	recorder fenlog.Writer
	scorer   ScoreFunc
	logger   *zap.Logger
	stats    stats.Collector
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithRecorder appends every match to w before Scan returns.
func WithRecorder(w fenlog.Writer) Option {
	return func(s *Scanner) {
		s.recorder = w
	}
}

// WithScorer attaches a score to recorded matches.
func WithScorer(f ScoreFunc) Option {
	return func(s *Scanner) {
		s.scorer = f
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scanner) {
		s.logger = l
	}
}

// WithStats sets the stats collector.
func WithStats(c stats.Collector) Option {
	return func(s *Scanner) {
		s.stats = c
	}
}

// New returns a Scanner for m.
func New(m matcher.Matcher, opts ...Option) *Scanner {
	s := &Scanner{
		matcher: m,
		logger:  zap.NewNop(),
		stats:   stats.NewNoop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan replays game move by move and returns the first matching position.
// The starting position itself is not checked.
func (s *Scanner) Scan(ctx context.Context, game board.Game) (Result, error) {
	origin, ok := game.Tag("Site")
	if !ok || origin == "" {
		origin = OriginNotFound
	}
	res := Result{Origin: origin}

	pos, err := game.Start()
	if err != nil {
		return res, fmt.Errorf("setting up game: %w", err)
	}

	s.stats.IncCounter(stats.MetricGamesScanned, 1)

	for i, mv := range game.Moves() {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		if err := pos.Apply(mv); err != nil {
			return res, fmt.Errorf("applying half-move %d: %w", i+1, err)
		}
		s.stats.IncCounter(stats.MetricPositionsChecked, 1)

		if !s.matcher.Match(pos.Material()) {
			continue
		}

		res.Found = true
		res.FEN = pos.FEN()
		res.Ply = i + 1
		s.stats.IncCounter(stats.MetricMatches, 1)
		s.logger.Debug("match",
			zap.String("matcher", s.matcher.Name()),
			zap.String("origin", origin),
			zap.Int("ply", res.Ply),
			zap.String("fen", res.FEN),
		)

		if err := s.record(ctx, res.FEN); err != nil {
			return res, err
		}
		return res, nil
	}

	s.logger.Debug("no match", zap.String("origin", origin))
	return res, nil
}

// ScanAll scans each game in order and returns one result per game.
// It stops at the first error, returning the results gathered so far.
func (s *Scanner) ScanAll(ctx context.Context, games []board.Game) ([]Result, error) {
	results := make([]Result, 0, len(games))
	for i, g := range games {
		res, err := s.Scan(ctx, g)
		if err != nil {
			return results, fmt.Errorf("scanning game %d: %w", i+1, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *Scanner) record(ctx context.Context, fenStr string) error {
	if s.recorder == nil {
		return nil
	}

	entry := fenlog.Entry{FEN: fenStr}
	if s.scorer != nil {
		score, err := s.scorer(ctx, fenStr)
		if err != nil {
			return fmt.Errorf("scoring match: %w", err)
		}
		entry.Score = score
	}

	if err := s.recorder.Append(entry); err != nil {
		return fmt.Errorf("recording match: %w", err)
	}
	return nil
}
