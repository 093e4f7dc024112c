package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/discochess/sieve/internal/board"
	"github.com/discochess/sieve/internal/material"
	"github.com/discochess/sieve/internal/stats"
)

// MoveNumber returns the full-move number of the 0-based half-move index.
func MoveNumber(halfMove int) int {
	return halfMove/2 + 1
}

// MoveEval is the evaluation of the position reached after one half-move.
type MoveEval struct {
	Ply        int // 1-based half-move count
	MoveNumber int
	Side       material.Color // side that played Move
	Move       string         // UCI notation
	FEN        string
	Score      Score // from White's point of view
}

// EvaluateRange replays game and evaluates every position whose move number
// lies in [start, end]. Moves before the window are applied without
// evaluation; iteration stops at the first move past end.
func EvaluateRange(ctx context.Context, game board.Game, eng Engine, start, end int, limit Limit) ([]MoveEval, error) {
	if err := limit.Validate(); err != nil {
		return nil, err
	}

	pos, err := game.Start()
	if err != nil {
		return nil, fmt.Errorf("setting up game: %w", err)
	}

	var evals []MoveEval
	for i, mv := range game.Moves() {
		select {
		case <-ctx.Done():
			return evals, ctx.Err()
		default:
		}

		n := MoveNumber(i)
		if n > end {
			break
		}
		if err := pos.Apply(mv); err != nil {
			return evals, fmt.Errorf("applying half-move %d: %w", i+1, err)
		}
		if n < start {
			continue
		}

		score, err := Evaluate(ctx, eng, pos, limit)
		if err != nil {
			return evals, fmt.Errorf("evaluating half-move %d: %w", i+1, err)
		}

		side := material.White
		if i%2 == 1 {
			side = material.Black
		}
		evals = append(evals, MoveEval{
			Ply:        i + 1,
			MoveNumber: n,
			Side:       side,
			Move:       mv.String(),
			FEN:        pos.FEN(),
			Score:      score,
		})
	}
	return evals, nil
}

// Evaluate scores pos from White's point of view. Checkmate and stalemate are
// scored without consulting the engine, which has no move to search there.
func Evaluate(ctx context.Context, eng Engine, pos board.Position, limit Limit) (Score, error) {
	turn := pos.SideToMove()

	var rel Score
	switch pos.Status() {
	case board.Checkmate:
		rel = Checkmated()
	case board.Stalemate:
		rel = Centipawns(0)
	default:
		s, err := eng.Analyze(ctx, pos.FEN(), limit)
		if err != nil {
			return Score{}, err
		}
		rel = s
	}
	return rel.WhitePOV(turn), nil
}

// Analyzer runs scoped analyses: each call launches its own engine handle
// and closes it before returning.
type Analyzer struct {
	Launcher Launcher
	Threads  int

	// NewPosition parses a standalone FEN for EvaluateOne.
	NewPosition func(fen string) (board.Position, error)

	Logger *zap.Logger
	Stats  stats.Collector
}

// AnalyzeRange evaluates game between the start and end move numbers.
func (a *Analyzer) AnalyzeRange(ctx context.Context, game board.Game, start, end int, limit Limit) (evals []MoveEval, err error) {
	eng, err := a.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := eng.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing engine: %w", cerr)
		}
	}()

	return EvaluateRange(ctx, game, a.instrument(eng), start, end, limit)
}

// EvaluateOne scores a single position from White's point of view.
func (a *Analyzer) EvaluateOne(ctx context.Context, fen string, limit Limit) (score Score, err error) {
	if err := limit.Validate(); err != nil {
		return Score{}, err
	}
	if a.NewPosition == nil {
		return Score{}, ErrNoPositionParser
	}
	pos, err := a.NewPosition(fen)
	if err != nil {
		return Score{}, err
	}

	eng, err := a.acquire(ctx)
	if err != nil {
		return Score{}, err
	}
	defer func() {
		if cerr := eng.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing engine: %w", cerr)
		}
	}()

	return Evaluate(ctx, a.instrument(eng), pos, limit)
}

// Session keeps one engine handle open across several evaluations.
type Session struct {
	a   *Analyzer
	eng Engine
}

// Open launches a handle for a Session. The caller must Close it.
func (a *Analyzer) Open(ctx context.Context) (*Session, error) {
	if a.NewPosition == nil {
		return nil, ErrNoPositionParser
	}
	eng, err := a.acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &Session{a: a, eng: a.instrument(eng)}, nil
}

// EvaluateOne scores a single position from White's point of view.
func (s *Session) EvaluateOne(ctx context.Context, fen string, limit Limit) (Score, error) {
	if err := limit.Validate(); err != nil {
		return Score{}, err
	}
	pos, err := s.a.NewPosition(fen)
	if err != nil {
		return Score{}, err
	}
	return Evaluate(ctx, s.eng, pos, limit)
}

// Close closes the session's engine handle.
func (s *Session) Close() error {
	return s.eng.Close()
}

func (a *Analyzer) acquire(ctx context.Context) (Engine, error) {
	eng, err := a.Launcher(ctx)
	if err != nil {
		return nil, fmt.Errorf("launching engine: %w", err)
	}
	if a.Threads > 0 {
		if err := eng.SetThreads(a.Threads); err != nil {
			_ = eng.Close()
			return nil, fmt.Errorf("setting threads: %w", err)
		}
	}
	a.logger().Debug("engine ready", zap.Int("threads", a.Threads))
	return eng, nil
}

func (a *Analyzer) instrument(eng Engine) Engine {
	return &timedEngine{Engine: eng, logger: a.logger(), stats: a.collector()}
}

func (a *Analyzer) logger() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}

func (a *Analyzer) collector() stats.Collector {
	if a.Stats == nil {
		return stats.NewNoop()
	}
	return a.Stats
}

// timedEngine records evaluation count and latency.
type timedEngine struct {
	Engine
	logger *zap.Logger
	stats  stats.Collector
}

func (t *timedEngine) Analyze(ctx context.Context, fen string, limit Limit) (Score, error) {
	start := time.Now()
	s, err := t.Engine.Analyze(ctx, fen, limit)
	elapsed := time.Since(start)
	if err != nil {
		return s, err
	}

	t.stats.IncCounter(stats.MetricEvaluations, 1)
	t.stats.ObserveHistogram(stats.MetricEvalSeconds, elapsed.Seconds())
	t.logger.Debug("evaluated",
		zap.String("fen", fen),
		zap.Stringer("limit", limit),
		zap.Stringer("score", s),
		zap.Duration("elapsed", elapsed),
	)
	return s, nil
}
