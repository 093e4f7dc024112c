package matcher

import (
	"math/rand"
	"testing"

	"github.com/discochess/sieve/internal/board"
	"github.com/discochess/sieve/internal/material"
)

// fakePosition is a board.Position with fixed material.
type fakePosition struct {
	count material.Count
}

func (p *fakePosition) Apply(board.Move) error     { return nil }
func (p *fakePosition) Material() material.Count   { return p.count }
func (p *fakePosition) FEN() string                { return "" }
func (p *fakePosition) SideToMove() material.Color { return material.White }
func (p *fakePosition) Status() board.Status       { return board.Ongoing }

func countOf(white, black string) material.Count {
	var c material.Count
	for _, k := range material.Kinds {
		c[material.White][k] = material.MustParseSignature(white).Of(k)
		c[material.Black][k] = material.MustParseSignature(black).Of(k)
	}
	return c
}

func TestMatches(t *testing.T) {
	tests := []struct {
		name  string
		board string
		white string
		black string
		want  bool
	}{
		{"exact", "KRPP/krp", "KRPP", "krp", true},
		{"extra white pawn", "KRPPP/krp", "KRPP", "krp", false},
		{"missing black pawn", "KRPP/kr", "KRPP", "krp", false},
		{"extra black knight", "KRPP/krpn", "KRPP", "krp", false},
		{"label order irrelevant", "KRPP/krp", "PPRK", "prk", true},
		{"bare kings", "K/k", "K", "k", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w, b string
			for i, ch := range tt.board {
				if ch == '/' {
					w, b = tt.board[:i], tt.board[i+1:]
				}
			}
			pos := &fakePosition{count: countOf(w, b)}
			got := Matches(pos,
				material.MustParseSignature(tt.white),
				material.MustParseSignature(tt.black))
			if got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestExact_Property checks that Exact agrees with a per-kind comparison for
// random counts and signatures.
func TestExact_Property(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	randomSig := func() material.Signature {
		var s material.Signature
		for _, k := range material.Kinds {
			s[k] = rng.Intn(3)
		}
		return s
	}

	for i := 0; i < 5000; i++ {
		white, black := randomSig(), randomSig()

		var c material.Count
		for _, k := range material.Kinds {
			c[material.White][k] = white[k]
			c[material.Black][k] = black[k]
		}
		// Perturb half of the cases.
		if rng.Intn(2) == 0 {
			side := material.Color(rng.Intn(2))
			k := material.Kinds[rng.Intn(len(material.Kinds))]
			c[side][k] += 1 + rng.Intn(2)
		}

		want := true
		for _, k := range material.Kinds {
			if c.Of(material.White, k) != white.Of(k) || c.Of(material.Black, k) != black.Of(k) {
				want = false
			}
		}

		if got := Exact(c, white, black); got != want {
			t.Fatalf("Exact(%v, %v, %v) = %v, want %v", c, white, black, got, want)
		}
	}
}

func TestKingsRooksPawnsOnly(t *testing.T) {
	tests := []struct {
		name  string
		white string
		black string
		want  bool
	}{
		{"minimal rook ending", "KRP", "krp", true},
		{"doubled rooks and pawns", "KRRPPP", "krrpp", true},
		{"white has no pawn", "KR", "krp", false},
		{"black has no rook", "KRP", "kp", false},
		{"white queen", "KQRP", "krp", false},
		{"black bishop", "KRP", "krbp", false},
		{"white knight", "KRNP", "krp", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := &fakePosition{count: countOf(tt.white, tt.black)}
			if got := MatchesKingsRooksPawnsOnly(pos); got != tt.want {
				t.Errorf("MatchesKingsRooksPawnsOnly() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKingsRooksPawnsOnly_Property(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 5000; i++ {
		var c material.Count
		for side := range c {
			for k := range c[side] {
				c[side][k] = rng.Intn(3)
			}
		}

		want := true
		for _, side := range []material.Color{material.White, material.Black} {
			if c[side][material.Queen]+c[side][material.Bishop]+c[side][material.Knight] != 0 {
				want = false
			}
			if c[side][material.King] == 0 || c[side][material.Rook] == 0 || c[side][material.Pawn] == 0 {
				want = false
			}
		}

		if got := KingsRooksPawnsOnly(c); got != want {
			t.Fatalf("KingsRooksPawnsOnly(%v) = %v, want %v", c, got, want)
		}
	}
}
