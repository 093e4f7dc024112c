// Package uciengine runs a UCI engine subprocess through
// github.com/notnil/chess/uci.
package uciengine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/notnil/chess"
	"github.com/notnil/chess/uci"
	"go.uber.org/zap"

	"github.com/discochess/sieve/internal/engine"
)

// Compile-time check that Engine implements engine.Engine.
var _ engine.Engine = (*Engine)(nil)

// Engine is a running UCI engine process.
type Engine struct {
	eng    *uci.Engine
	lines  *infoTracker
	path   string
	logger *zap.Logger
	closed atomic.Bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New starts the engine binary at path and performs the UCI handshake.
func New(path string, opts ...Option) (*Engine, error) {
	e := &Engine{
		path:   path,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	// The engine's own result keeps the last info line even when it has no
	// score, so every line is read through the debug logger instead.
	e.lines = &infoTracker{logger: e.logger}
	eng, err := uci.New(path, uci.Debug, uci.Logger(log.New(e.lines, "", 0)))
	if err != nil {
		return nil, fmt.Errorf("starting engine %s: %w", path, err)
	}
	if err := eng.Run(uci.CmdUCI, uci.CmdIsReady, uci.CmdUCINewGame); err != nil {
		_ = eng.Close()
		return nil, fmt.Errorf("initializing engine %s: %w", path, err)
	}
	e.eng = eng

	e.logger.Debug("engine started", zap.String("path", path))
	return e, nil
}

// Launcher returns an engine.Launcher that starts path on every call.
func Launcher(path string, opts ...Option) engine.Launcher {
	return func(ctx context.Context) (engine.Engine, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		return New(path, opts...)
	}
}

// SetThreads sends "setoption name Threads".
func (e *Engine) SetThreads(n int) error {
	if e.closed.Load() {
		return engine.ErrClosed
	}
	cmd := uci.CmdSetOption{Name: "Threads", Value: strconv.Itoa(n)}
	if err := e.eng.Run(cmd, uci.CmdIsReady); err != nil {
		return fmt.Errorf("setting threads: %w", err)
	}
	return nil
}

// Analyze searches fen and returns the score relative to the side to move.
// A search in progress is not interrupted by ctx; it ends at the limit.
func (e *Engine) Analyze(ctx context.Context, fen string, limit engine.Limit) (engine.Score, error) {
	if e.closed.Load() {
		return engine.Score{}, engine.ErrClosed
	}
	if err := limit.Validate(); err != nil {
		return engine.Score{}, err
	}
	select {
	case <-ctx.Done():
		return engine.Score{}, ctx.Err()
	default:
	}

	opt, err := chess.FEN(fen)
	if err != nil {
		return engine.Score{}, fmt.Errorf("parsing FEN: %w", err)
	}
	pos := chess.NewGame(opt).Position()

	e.lines.reset()
	if err := e.eng.Run(uci.CmdPosition{Position: pos}, goCmd(limit)); err != nil {
		return engine.Score{}, fmt.Errorf("searching %s: %w", fen, err)
	}

	info, ok := e.lines.scored()
	if !ok {
		return engine.Score{}, engine.ErrNoScore
	}
	if info.Score.Mate != 0 {
		return engine.MateIn(info.Score.Mate), nil
	}
	return engine.Centipawns(info.Score.CP), nil
}

// Close sends "quit" and releases the process. A second Close returns
// engine.ErrClosed.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return engine.ErrClosed
	}
	e.logger.Debug("engine stopped", zap.String("path", e.path))
	if err := e.eng.Close(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}

// infoTracker receives every line exchanged with the engine and keeps the
// last info line that carries a score.
type infoTracker struct {
	logger *zap.Logger

	mu   sync.Mutex
	info uci.Info
	ok   bool
}

func (t *infoTracker) Write(p []byte) (int, error) {
	line := strings.TrimRight(string(p), "\r\n")
	t.logger.Debug("uci", zap.String("line", line))

	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != "info" || !slices.Contains(fields, "score") {
		return len(p), nil
	}
	var info uci.Info
	if err := info.UnmarshalText([]byte(strings.Join(fields, " "))); err != nil {
		return len(p), nil
	}

	t.mu.Lock()
	t.info, t.ok = info, true
	t.mu.Unlock()
	return len(p), nil
}

func (t *infoTracker) reset() {
	t.mu.Lock()
	t.info, t.ok = uci.Info{}, false
	t.mu.Unlock()
}

func (t *infoTracker) scored() (uci.Info, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.info, t.ok
}

func goCmd(limit engine.Limit) uci.CmdGo {
	if limit.ByDepth() {
		return uci.CmdGo{Depth: limit.Depth}
	}
	return uci.CmdGo{MoveTime: limit.Time}
}
