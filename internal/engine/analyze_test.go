package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/discochess/sieve/internal/board"
	"github.com/discochess/sieve/internal/board/notnilboard"
	"github.com/discochess/sieve/internal/material"
)

const breyerPGN = `[Event "Training"]
[Site "https://lichess.org/breyer01"]
[Result "*"]

1. e4 e5 2. Nf3 Nc6 3. Bb5 a6 4. Ba4 Nf6 5. O-O Be7 6. Re1 b5 7. Bb3 d6
8. c3 O-O 9. h3 Nb8 10. d4 Nbd7 *`

const foolsMatePGN = `[Event "Casual"]
[Result "0-1"]

1. f3 e5 2. g4 Qh4# 0-1`

// fakeEngine scores every position as +10 centipawns for the side to move.
type fakeEngine struct {
	analyzed []string
	threads  int
	closed   bool

	analyzeErr error
	threadsErr error
}

func (f *fakeEngine) SetThreads(n int) error {
	f.threads = n
	return f.threadsErr
}

func (f *fakeEngine) Analyze(_ context.Context, fen string, _ Limit) (Score, error) {
	if f.analyzeErr != nil {
		return Score{}, f.analyzeErr
	}
	f.analyzed = append(f.analyzed, fen)
	return Centipawns(10), nil
}

func (f *fakeEngine) Close() error {
	f.closed = true
	return nil
}

func mustParse(t *testing.T, pgn string) board.Game {
	t.Helper()
	g, err := notnilboard.ParseGame(pgn)
	if err != nil {
		t.Fatalf("ParseGame() error = %v", err)
	}
	return g
}

func TestEvaluateRange_Window(t *testing.T) {
	game := mustParse(t, breyerPGN)
	if n := len(game.Moves()); n != 20 {
		t.Fatalf("game has %d half-moves, want 20", n)
	}

	eng := &fakeEngine{}
	evals, err := EvaluateRange(context.Background(), game, eng, 8, 10, DefaultLimit)
	if err != nil {
		t.Fatalf("EvaluateRange() error = %v", err)
	}

	wantNumbers := []int{8, 8, 9, 9, 10, 10}
	wantMoves := []string{"c2c3", "e8g8", "h2h3", "c6b8", "d2d4", "b8d7"}
	if len(evals) != len(wantNumbers) {
		t.Fatalf("len(evals) = %d, want %d", len(evals), len(wantNumbers))
	}
	for i, ev := range evals {
		if ev.Ply != 15+i {
			t.Errorf("evals[%d].Ply = %d, want %d", i, ev.Ply, 15+i)
		}
		if ev.MoveNumber != wantNumbers[i] {
			t.Errorf("evals[%d].MoveNumber = %d, want %d", i, ev.MoveNumber, wantNumbers[i])
		}
		if ev.Move != wantMoves[i] {
			t.Errorf("evals[%d].Move = %q, want %q", i, ev.Move, wantMoves[i])
		}
		wantSide := material.White
		if i%2 == 1 {
			wantSide = material.Black
		}
		if ev.Side != wantSide {
			t.Errorf("evals[%d].Side = %v, want %v", i, ev.Side, wantSide)
		}
		// After White's move Black is to move, so +10 for the mover flips.
		wantScore := "-0.10"
		if wantSide == material.Black {
			wantScore = "0.10"
		}
		if got := ev.Score.String(); got != wantScore {
			t.Errorf("evals[%d].Score = %q, want %q", i, got, wantScore)
		}
	}

	if len(eng.analyzed) != 6 {
		t.Errorf("engine analyzed %d positions, want 6", len(eng.analyzed))
	}
}

func TestEvaluateRange_EmptyWindow(t *testing.T) {
	eng := &fakeEngine{}
	evals, err := EvaluateRange(context.Background(), mustParse(t, breyerPGN), eng, 30, 40, DefaultLimit)
	if err != nil {
		t.Fatalf("EvaluateRange() error = %v", err)
	}
	if len(evals) != 0 || len(eng.analyzed) != 0 {
		t.Errorf("got %d evals and %d engine calls, want none", len(evals), len(eng.analyzed))
	}
}

func TestEvaluateRange_NoLimit(t *testing.T) {
	_, err := EvaluateRange(context.Background(), mustParse(t, breyerPGN), &fakeEngine{}, 1, 2, Limit{})
	if !errors.Is(err, ErrNoLimit) {
		t.Errorf("EvaluateRange() error = %v, want ErrNoLimit", err)
	}
}

func TestEvaluateRange_Checkmate(t *testing.T) {
	eng := &fakeEngine{}
	evals, err := EvaluateRange(context.Background(), mustParse(t, foolsMatePGN), eng, 2, 2, DefaultLimit)
	if err != nil {
		t.Fatalf("EvaluateRange() error = %v", err)
	}
	if len(evals) != 2 {
		t.Fatalf("len(evals) = %d, want 2", len(evals))
	}
	if got := evals[1].Score.String(); got != "-M0" {
		t.Errorf("mated position score = %q, want -M0", got)
	}
	if len(eng.analyzed) != 1 {
		t.Errorf("engine analyzed %d positions, want 1", len(eng.analyzed))
	}
}

func TestEvaluateRange_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := EvaluateRange(ctx, mustParse(t, breyerPGN), &fakeEngine{}, 1, 10, DefaultLimit)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("EvaluateRange() error = %v, want context.Canceled", err)
	}
}

func newAnalyzer(eng *fakeEngine, launchErr error) *Analyzer {
	return &Analyzer{
		Launcher: func(context.Context) (Engine, error) {
			if launchErr != nil {
				return nil, launchErr
			}
			return eng, nil
		},
		Threads: 4,
		NewPosition: func(fen string) (board.Position, error) {
			return notnilboard.NewPosition(fen)
		},
	}
}

func TestAnalyzer_AnalyzeRangeClosesEngine(t *testing.T) {
	eng := &fakeEngine{}
	a := newAnalyzer(eng, nil)

	evals, err := a.AnalyzeRange(context.Background(), mustParse(t, breyerPGN), 1, 1, DefaultLimit)
	if err != nil {
		t.Fatalf("AnalyzeRange() error = %v", err)
	}
	if len(evals) != 2 {
		t.Errorf("len(evals) = %d, want 2", len(evals))
	}
	if eng.threads != 4 {
		t.Errorf("threads = %d, want 4", eng.threads)
	}
	if !eng.closed {
		t.Error("engine should be closed after AnalyzeRange")
	}
}

func TestAnalyzer_ClosesEngineOnError(t *testing.T) {
	boom := errors.New("engine crashed")
	eng := &fakeEngine{analyzeErr: boom}
	a := newAnalyzer(eng, nil)

	_, err := a.AnalyzeRange(context.Background(), mustParse(t, breyerPGN), 1, 3, DefaultLimit)
	if !errors.Is(err, boom) {
		t.Errorf("AnalyzeRange() error = %v, want %v", err, boom)
	}
	if !eng.closed {
		t.Error("engine should be closed after a failed analysis")
	}
}

func TestAnalyzer_LaunchFailure(t *testing.T) {
	boom := errors.New("no such file")
	a := newAnalyzer(nil, boom)

	if _, err := a.EvaluateOne(context.Background(), "8/8/8/8/8/8/8/K6k w - - 0 1", DefaultLimit); !errors.Is(err, boom) {
		t.Errorf("EvaluateOne() error = %v, want %v", err, boom)
	}
}

func TestAnalyzer_SetThreadsFailure(t *testing.T) {
	boom := errors.New("unknown option")
	eng := &fakeEngine{threadsErr: boom}
	a := newAnalyzer(eng, nil)

	if _, err := a.AnalyzeRange(context.Background(), mustParse(t, breyerPGN), 1, 1, DefaultLimit); !errors.Is(err, boom) {
		t.Errorf("AnalyzeRange() error = %v, want %v", err, boom)
	}
	if !eng.closed {
		t.Error("engine should be closed when configuration fails")
	}
}

func TestAnalyzer_EvaluateOne(t *testing.T) {
	eng := &fakeEngine{}
	a := newAnalyzer(eng, nil)

	score, err := a.EvaluateOne(context.Background(), "8/5k2/8/3r4/8/2R5/5PPK/8 b - - 0 40", Limit{Depth: 12})
	if err != nil {
		t.Fatalf("EvaluateOne() error = %v", err)
	}
	if got := score.String(); got != "-0.10" {
		t.Errorf("score = %q, want -0.10", got)
	}
	if !eng.closed {
		t.Error("engine should be closed after EvaluateOne")
	}

	a.NewPosition = nil
	if _, err := a.EvaluateOne(context.Background(), "8/8/8/8/8/8/8/K6k w - - 0 1", DefaultLimit); !errors.Is(err, ErrNoPositionParser) {
		t.Errorf("EvaluateOne() error = %v, want ErrNoPositionParser", err)
	}
}

func TestSession_SharesOneHandle(t *testing.T) {
	var launches int
	eng := &fakeEngine{}
	a := newAnalyzer(eng, nil)
	launch := a.Launcher
	a.Launcher = func(ctx context.Context) (Engine, error) {
		launches++
		return launch(ctx)
	}

	s, err := a.Open(context.Background())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	fens := []string{
		"8/5k2/8/3r4/8/2R5/5PPK/8 b - - 0 40",
		"8/5k2/8/3r4/8/2R5/5PPK/8 w - - 0 41",
	}
	want := []string{"-0.10", "0.10"}
	for i, fen := range fens {
		score, err := s.EvaluateOne(context.Background(), fen, DefaultLimit)
		if err != nil {
			t.Fatalf("EvaluateOne(%q) error = %v", fen, err)
		}
		if score.String() != want[i] {
			t.Errorf("EvaluateOne(%q) = %s, want %s", fen, score, want[i])
		}
	}
	if eng.closed {
		t.Error("engine closed before the session ended")
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if launches != 1 {
		t.Errorf("launches = %d, want 1", launches)
	}
	if len(eng.analyzed) != 2 || !eng.closed {
		t.Errorf("engine analyzed %d positions, closed = %v; want 2 and true", len(eng.analyzed), eng.closed)
	}
}
