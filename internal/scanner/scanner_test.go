package scanner

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/discochess/sieve/internal/board"
	"github.com/discochess/sieve/internal/board/notnilboard"
	"github.com/discochess/sieve/internal/fenlog"
	"github.com/discochess/sieve/internal/matcher/exactmatcher"
	"github.com/discochess/sieve/internal/matcher/krpmatcher"
	"github.com/discochess/sieve/internal/material"
)

// rookEndgamePGN trades down from KRPPP vs krppp. The first KRPP vs krp
// position appears after 5. Rxg7+, the 9th half-move.
const rookEndgamePGN = `[Event "Endgame drill"]
[Site "https://lichess.org/rook0001"]
[SetUp "1"]
[FEN "r5k1/5ppp/8/8/8/8/5PPP/3R2K1 w - - 0 1"]
[Result "*"]

1. h4 h5 2. g4 hxg4 3. Rd4 Ra2 4. Rxg4 Kh7 5. Rxg7+ Kh6 6. Rxf7 *`

const scandinavianPGN = `[Event "Casual"]
[Site "https://lichess.org/abcd1234"]
[Result "*"]

1. e4 d5 2. exd5 Qxd5 *`

const noSitePGN = `[Event "Casual"]
[Result "0-1"]

1. f3 e5 2. g4 Qh4# 0-1`

func krppVsKrp() *exactmatcher.Matcher {
	return exactmatcher.New(
		material.MustParseSignature("KRPP"),
		material.MustParseSignature("krp"),
	)
}

func parse(t *testing.T, pgn string) board.Game {
	t.Helper()
	g, err := notnilboard.ParseGame(pgn)
	if err != nil {
		t.Fatalf("ParseGame() error = %v", err)
	}
	return g
}

func TestScan_FirstMatchingPly(t *testing.T) {
	s := New(krppVsKrp())

	res, err := s.Scan(context.Background(), parse(t, rookEndgamePGN))
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if !res.Found {
		t.Fatal("Scan() found no match")
	}
	if res.Ply != 9 {
		t.Errorf("Ply = %d, want 9", res.Ply)
	}
	wantFEN := "8/5pRk/8/8/7P/8/r4P2/6K1 b - - 0 5"
	if res.FEN != wantFEN {
		t.Errorf("FEN = %q, want %q", res.FEN, wantFEN)
	}
	if res.Origin != "https://lichess.org/rook0001" {
		t.Errorf("Origin = %q", res.Origin)
	}
}

func TestScan_NotFound(t *testing.T) {
	tests := []struct {
		name       string
		pgn        string
		wantOrigin string
	}{
		{"site tag", scandinavianPGN, "https://lichess.org/abcd1234"},
		{"missing site tag", noSitePGN, OriginNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := New(krppVsKrp()).Scan(context.Background(), parse(t, tt.pgn))
			if err != nil {
				t.Fatalf("Scan() error = %v", err)
			}
			if res.Found || res.FEN != "" || res.Ply != 0 {
				t.Errorf("Scan() = %+v, want no match", res)
			}
			if res.Origin != tt.wantOrigin {
				t.Errorf("Origin = %q, want %q", res.Origin, tt.wantOrigin)
			}
		})
	}
}

func TestScan_KingsRooksPawns(t *testing.T) {
	res, err := New(krpmatcher.New()).Scan(context.Background(), parse(t, rookEndgamePGN))
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	// The setup already has only kings, rooks and pawns; the first move matches.
	if !res.Found || res.Ply != 1 {
		t.Errorf("Scan() = %+v, want match at ply 1", res)
	}
}

func TestScan_RecordsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fen.txt")
	s := New(krpmatcher.New(), WithRecorder(fenlog.NewPlain(path)))

	games := []board.Game{parse(t, rookEndgamePGN), parse(t, scandinavianPGN)}
	results, err := s.ScanAll(context.Background(), games)
	if err != nil {
		t.Fatalf("ScanAll() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}

	entries, err := fenlog.ReadPlain(path)
	if err != nil {
		t.Fatalf("ReadPlain() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("recorded %d entries, want 1", len(entries))
	}
	if entries[0].FEN != results[0].FEN {
		t.Errorf("recorded %q, want %q", entries[0].FEN, results[0].FEN)
	}
}

func TestScan_RecordsScore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fen.jsonl")
	scorer := func(_ context.Context, fen string) (string, error) { return "0.35", nil }
	s := New(krppVsKrp(), WithRecorder(fenlog.NewJSONL(path)), WithScorer(scorer))

	if _, err := s.Scan(context.Background(), parse(t, rookEndgamePGN)); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	entries, err := fenlog.ReadPlain(path)
	if err != nil {
		t.Fatalf("ReadPlain() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Score != "0.35" {
		t.Errorf("entries = %+v, want one scored entry", entries)
	}
}

func TestScan_ScorerError(t *testing.T) {
	boom := errors.New("engine gone")
	scorer := func(context.Context, string) (string, error) { return "", boom }
	s := New(krppVsKrp(),
		WithRecorder(fenlog.NewJSONL(filepath.Join(t.TempDir(), "fen.jsonl"))),
		WithScorer(scorer),
	)

	if _, err := s.Scan(context.Background(), parse(t, rookEndgamePGN)); !errors.Is(err, boom) {
		t.Errorf("Scan() error = %v, want %v", err, boom)
	}
}

func TestScan_RecorderError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "fen.txt")
	s := New(krppVsKrp(), WithRecorder(fenlog.NewPlain(path)))

	if _, err := s.Scan(context.Background(), parse(t, rookEndgamePGN)); err == nil {
		t.Error("Scan() should fail when the output directory does not exist")
	}
}

// fakePosition accepts moves until reject is reached.
type fakePosition struct {
	applied int
	reject  int
}

func (p *fakePosition) Apply(board.Move) error {
	if p.applied == p.reject {
		return board.ErrIllegalMove
	}
	p.applied++
	return nil
}
func (p *fakePosition) Material() material.Count   { return material.Count{} }
func (p *fakePosition) FEN() string                { return "" }
func (p *fakePosition) SideToMove() material.Color { return material.White }
func (p *fakePosition) Status() board.Status       { return board.Ongoing }

type fakeMove string

func (m fakeMove) String() string { return string(m) }

type fakeGame struct {
	moves    []board.Move
	reject   int
	startErr error
}

func (g *fakeGame) Start() (board.Position, error) {
	if g.startErr != nil {
		return nil, g.startErr
	}
	return &fakePosition{reject: g.reject}, nil
}
func (g *fakeGame) Moves() []board.Move       { return g.moves }
func (g *fakeGame) Tag(string) (string, bool) { return "", false }

func TestScan_IllegalMove(t *testing.T) {
	g := &fakeGame{moves: []board.Move{fakeMove("e2e4"), fakeMove("e7e5"), fakeMove("e1e8")}, reject: 2}

	_, err := New(krppVsKrp()).Scan(context.Background(), g)
	if !errors.Is(err, board.ErrIllegalMove) {
		t.Errorf("Scan() error = %v, want ErrIllegalMove", err)
	}
}

func TestScanAll_StopsAtError(t *testing.T) {
	boom := errors.New("bad setup")
	games := []board.Game{
		parse(t, scandinavianPGN),
		&fakeGame{startErr: boom},
		parse(t, rookEndgamePGN),
	}

	results, err := New(krppVsKrp()).ScanAll(context.Background(), games)
	if !errors.Is(err, boom) {
		t.Fatalf("ScanAll() error = %v, want %v", err, boom)
	}
	if len(results) != 1 {
		t.Errorf("len(results) = %d, want 1", len(results))
	}
}

func TestScan_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New(krppVsKrp()).Scan(ctx, parse(t, rookEndgamePGN)); !errors.Is(err, context.Canceled) {
		t.Errorf("Scan() error = %v, want context.Canceled", err)
	}
}

// BenchmarkScan measures a full replay of a game without a match.
func BenchmarkScan(b *testing.B) {
	g, err := notnilboard.ParseGame(scandinavianPGN)
	if err != nil {
		b.Fatalf("parsing game: %v", err)
	}
	s := New(krppVsKrp())
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Scan(ctx, g); err != nil {
			b.Fatalf("scan error: %v", err)
		}
	}
}
