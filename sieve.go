// Package sieve finds chess positions with a given material balance in a
// player's games and evaluates them with a UCI engine.
//
// Example usage:
//
//	white, _ := sieve.ParseSignature("KRPP")
//	black, _ := sieve.ParseSignature("krp")
//
//	p, err := sieve.New(sieve.Config{
//	    Username:  "DeadWater",
//	    MaxGames:  10,
//	    GamesPath: "games.pgn",
//	    White:     white,
//	    Black:     black,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
//	results, err := p.Run(ctx)
package sieve

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/discochess/sieve/internal/archive"
	"github.com/discochess/sieve/internal/board"
	"github.com/discochess/sieve/internal/board/notnilboard"
	"github.com/discochess/sieve/internal/codec"
	"github.com/discochess/sieve/internal/engine"
	"github.com/discochess/sieve/internal/engine/cachedengine"
	"github.com/discochess/sieve/internal/fenlog"
	"github.com/discochess/sieve/internal/matcher"
	"github.com/discochess/sieve/internal/matcher/exactmatcher"
	"github.com/discochess/sieve/internal/matcher/krpmatcher"
	"github.com/discochess/sieve/internal/material"
	"github.com/discochess/sieve/internal/report"
	"github.com/discochess/sieve/internal/scanner"
	"github.com/discochess/sieve/internal/stats"
	"github.com/discochess/sieve/internal/store"
	"github.com/discochess/sieve/internal/store/diskstore"
)

// Sentinel errors for well-defined error conditions.
var (
	// ErrClosed indicates the pipeline has been closed.
	ErrClosed = errors.New("sieve: pipeline closed")

	// ErrNoSignature indicates a scan without a material signature or the
	// kings-rooks-pawns mode.
	ErrNoSignature = errors.New("sieve: no material signature")

	// ErrNoUsername indicates a fetch without an archive username.
	ErrNoUsername = errors.New("sieve: no username")

	// ErrNoEngine indicates an engine operation without an engine configured.
	ErrNoEngine = errors.New("sieve: no engine configured")

	// ErrScoreWithoutSave indicates match scoring without a match log.
	ErrScoreWithoutSave = errors.New("sieve: scoring matches requires save mode")
)

// Result is the outcome of scanning one game.
type Result = scanner.Result

// Signature is an exact piece inventory for one side.
type Signature = material.Signature

// Limit bounds one engine search.
type Limit = engine.Limit

// CacheStats reports how often the evaluation cache answered.
type CacheStats = cachedengine.Stats

// OriginNotFound is the origin reported for games without a Site tag.
const OriginNotFound = scanner.OriginNotFound

// ParseSignature parses piece labels such as "KRPP" or "k,r,p".
// Labels are case-insensitive.
func ParseSignature(s string) (Signature, error) {
	return material.ParseSignature(s)
}

// Config is the explicit configuration of a pipeline run.
type Config struct {
	// Username is the archive account whose games are fetched.
	Username string

	// MaxGames caps the number of games fetched.
	MaxGames int

	// GamesPath names the games snapshot. Without a custom store its
	// directory must exist and the snapshot is written there.
	GamesPath string

	// OutputPath is the match log appended to in save mode. A ".jsonl"
	// extension selects the JSON-lines format.
	OutputPath string

	// White and Black are the exact material targets.
	White Signature
	Black Signature

	// KingsRooksPawns selects the fixed rook-ending criteria instead of
	// White and Black.
	KingsRooksPawns bool

	// Save appends every match to OutputPath.
	Save bool

	// ScoreMatches evaluates each recorded match with the engine. It needs
	// Save (or WithRecorder) and an engine.
	ScoreMatches bool

	// EnginePath is the UCI engine binary. Empty disables analysis unless
	// WithEngine is used.
	EnginePath string

	// Threads is the engine thread count.
	Threads int

	// Limit bounds each engine search.
	Limit Limit
}

// DefaultConfig returns the configuration used when flags are left unset.
func DefaultConfig() Config {
	return Config{
		MaxGames:   10,
		GamesPath:  "games.pgn",
		OutputPath: "positions.txt",
		Threads:    4,
		Limit:      engine.DefaultLimit,
	}
}

// Pipeline fetches, stores, scans and evaluates games.
// A Pipeline is not safe for concurrent use.
type Pipeline struct {
	cfg      Config
	snapshot string

	store    store.Store
	archive  *archive.Client
	matcher  matcher.Matcher
	scanner  *scanner.Scanner
	analyzer *engine.Analyzer
	cache    *cachedengine.Cache
	session  *engine.Session
	scoring  bool
	reporter report.Reporter
	stats    stats.Collector
	logger   *zap.Logger

	closed atomic.Bool
}

// New creates a Pipeline from cfg and opts.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt.apply(&o)
	}

	if cfg.GamesPath == "" {
		cfg.GamesPath = DefaultConfig().GamesPath
	}
	if cfg.Limit == (Limit{}) {
		cfg.Limit = engine.DefaultLimit
	}

	m := newMatcher(cfg)
	rec := o.recorder(cfg)
	launch, cache, err := o.launcher(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.ScoreMatches {
		if rec == nil {
			return nil, ErrScoreWithoutSave
		}
		if launch == nil {
			return nil, ErrNoEngine
		}
	}

	p := &Pipeline{
		cfg:      cfg,
		snapshot: filepath.Base(cfg.GamesPath),
		store:    o.store,
		archive:  o.archiveClient(),
		matcher:  m,
		cache:    cache,
		reporter: o.reporter,
		stats:    o.stats,
		logger:   o.logger,
	}

	if p.store == nil {
		st, err := diskstore.New(filepath.Dir(cfg.GamesPath), codec.None{})
		if err != nil {
			return nil, fmt.Errorf("opening games directory: %w", err)
		}
		p.store = st
	}

	if launch != nil {
		p.analyzer = &engine.Analyzer{
			Launcher: launch,
			Threads:  cfg.Threads,
			NewPosition: func(fen string) (board.Position, error) {
				return notnilboard.NewPosition(fen)
			},
			Logger: p.logger.Named("engine"),
			Stats:  p.stats,
		}
	}

	if m != nil {
		p.scanner = p.newScanner(m, rec, cfg)
	}

	p.logger.Debug("pipeline initialized",
		zap.String("criteria", p.Criteria()),
		zap.String("snapshot", p.snapshot),
		zap.Bool("engine", p.analyzer != nil),
	)
	return p, nil
}

func (p *Pipeline) newScanner(m matcher.Matcher, rec fenlog.Writer, cfg Config) *scanner.Scanner {
	scanOpts := []scanner.Option{
		scanner.WithLogger(p.logger.Named("scanner")),
		scanner.WithStats(p.stats),
	}
	if rec != nil {
		scanOpts = append(scanOpts, scanner.WithRecorder(rec))
		if cfg.ScoreMatches && p.analyzer != nil {
			p.scoring = true
			scanOpts = append(scanOpts, scanner.WithScorer(p.scoreMatch))
		}
	}
	return scanner.New(m, scanOpts...)
}

// newMatcher returns nil when no criteria are configured.
func newMatcher(cfg Config) matcher.Matcher {
	if cfg.KingsRooksPawns {
		return krpmatcher.New()
	}
	if cfg.White.IsZero() && cfg.Black.IsZero() {
		return nil
	}
	return exactmatcher.New(cfg.White, cfg.Black)
}

// Criteria describes what the pipeline matches, e.g. "KRPP vs krp".
// It is empty when no criteria are configured.
func (p *Pipeline) Criteria() string {
	if p.matcher == nil {
		return ""
	}
	return p.matcher.Name()
}

// Fetch downloads the configured user's recent games and overwrites the
// snapshot with them.
func (p *Pipeline) Fetch(ctx context.Context) ([]string, error) {
	if p.closed.Load() {
		return nil, ErrClosed
	}
	if p.cfg.Username == "" {
		return nil, ErrNoUsername
	}

	games, err := p.archive.FetchRecent(ctx, p.cfg.Username, p.cfg.MaxGames)
	if err != nil {
		return nil, err
	}
	if err := archive.Save(ctx, p.store, p.snapshot, games); err != nil {
		return nil, err
	}
	p.reporter.GamesFetched(p.snapshot, len(games))
	return games, nil
}

// EnsureGames fetches games only if the snapshot is missing. It reports
// whether a fetch happened.
func (p *Pipeline) EnsureGames(ctx context.Context) (bool, error) {
	if p.closed.Load() {
		return false, ErrClosed
	}

	exists, err := p.store.Exists(ctx, p.snapshot)
	if err != nil {
		return false, fmt.Errorf("checking snapshot: %w", err)
	}
	if exists {
		p.reporter.GamesExist(p.snapshot)
		return false, nil
	}

	if _, err := p.Fetch(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Games loads and parses every game in the snapshot.
func (p *Pipeline) Games(ctx context.Context) ([]board.Game, error) {
	if p.closed.Load() {
		return nil, ErrClosed
	}

	blocks, err := archive.Load(ctx, p.store, p.snapshot)
	if err != nil {
		return nil, err
	}
	return ParseGames(blocks)
}

// ParseGames parses raw PGN blocks. The error names the first bad block.
func ParseGames(blocks []string) ([]board.Game, error) {
	games := make([]board.Game, 0, len(blocks))
	for i, b := range blocks {
		g, err := notnilboard.ParseGame(b)
		if err != nil {
			return nil, fmt.Errorf("game %d: %w", i+1, err)
		}
		games = append(games, g)
	}
	return games, nil
}

// Scan scans every game in the snapshot and reports each result.
func (p *Pipeline) Scan(ctx context.Context) ([]Result, error) {
	if err := p.scannable(); err != nil {
		return nil, err
	}
	games, err := p.Games(ctx)
	if err != nil {
		return nil, err
	}
	return p.ScanGames(ctx, games)
}

// ScanGames scans games in order, reporting each result as it is produced.
// When matches are scored, one engine handle serves the whole pass.
func (p *Pipeline) ScanGames(ctx context.Context, games []board.Game) (results []Result, err error) {
	if err := p.scannable(); err != nil {
		return nil, err
	}

	if p.scoring {
		sess, err := p.analyzer.Open(ctx)
		if err != nil {
			return nil, err
		}
		p.session = sess
		defer func() {
			p.session = nil
			if cerr := sess.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing engine: %w", cerr)
			}
		}()
	}

	results = make([]Result, 0, len(games))
	for i, g := range games {
		res, err := p.scanner.Scan(ctx, g)
		if err != nil {
			return results, fmt.Errorf("scanning game %d: %w", i+1, err)
		}
		p.reporter.Result(res)
		results = append(results, res)
	}
	return results, nil
}

func (p *Pipeline) scannable() error {
	if p.closed.Load() {
		return ErrClosed
	}
	if p.scanner == nil {
		return ErrNoSignature
	}
	return nil
}

// Run fetches the games if the snapshot is missing, then scans them.
func (p *Pipeline) Run(ctx context.Context) ([]Result, error) {
	if err := p.scannable(); err != nil {
		return nil, err
	}
	if _, err := p.EnsureGames(ctx); err != nil {
		return nil, err
	}
	return p.Scan(ctx)
}

// Analyze evaluates game between the start and end move numbers inclusive
// and reports each evaluation.
func (p *Pipeline) Analyze(ctx context.Context, game board.Game, start, end int) ([]Evaluation, error) {
	if p.closed.Load() {
		return nil, ErrClosed
	}
	if p.analyzer == nil {
		return nil, ErrNoEngine
	}

	evals, err := p.analyzer.AnalyzeRange(ctx, game, start, end, p.cfg.Limit)
	if err != nil {
		return nil, err
	}

	for _, ev := range evals {
		p.reporter.Evaluation(ev)
	}
	return evals, nil
}

// Evaluate scores a single FEN from White's point of view.
func (p *Pipeline) Evaluate(ctx context.Context, fen string) (Score, error) {
	if p.closed.Load() {
		return Score{}, ErrClosed
	}
	if p.analyzer == nil {
		return Score{}, ErrNoEngine
	}
	return p.analyzer.EvaluateOne(ctx, fen, p.cfg.Limit)
}

func (p *Pipeline) scoreMatch(ctx context.Context, fen string) (string, error) {
	if p.session == nil {
		return "", ErrNoEngine
	}
	s, err := p.session.EvaluateOne(ctx, fen, p.cfg.Limit)
	if err != nil {
		return "", err
	}
	return s.String(), nil
}

// Close releases all resources associated with the pipeline.
func (p *Pipeline) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}

	if p.cache != nil {
		st := p.cache.Stats()
		p.logger.Info("evaluation cache",
			zap.Int64("hits", st.Hits),
			zap.Int64("misses", st.Misses),
			zap.Int("size", st.Size),
			zap.Float64("hit_rate", st.HitRate()),
		)
	}

	if err := p.store.Close(); err != nil {
		return fmt.Errorf("closing store: %w", err)
	}
	return nil
}

// Store returns the snapshot store used by this pipeline.
func (p *Pipeline) Store() store.Store {
	return p.store
}

// Snapshots lists the games snapshots in the store: PGN files and the
// configured snapshot. Other files sharing the directory are skipped.
func (p *Pipeline) Snapshots(ctx context.Context) ([]string, error) {
	if p.closed.Load() {
		return nil, ErrClosed
	}
	names, err := p.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	snapshots := names[:0]
	for _, name := range names {
		if name == p.snapshot || strings.EqualFold(filepath.Ext(name), ".pgn") {
			snapshots = append(snapshots, name)
		}
	}
	return snapshots, nil
}

// CacheStats returns evaluation cache statistics. It is zero when caching is
// disabled.
func (p *Pipeline) CacheStats() CacheStats {
	if p.cache == nil {
		return CacheStats{}
	}
	return p.cache.Stats()
}

// Snapshot returns the name of the games snapshot.
func (p *Pipeline) Snapshot() string {
	return p.snapshot
}

func isJSONL(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".jsonl")
}

func newRecorder(path string) fenlog.Writer {
	if isJSONL(path) {
		return fenlog.NewJSONL(path)
	}
	return fenlog.NewPlain(path)
}
