package exactmatcher

import (
	"testing"

	"github.com/discochess/sieve/internal/fen"
	"github.com/discochess/sieve/internal/material"
)

func TestMatcher_Name(t *testing.T) {
	m := New(material.MustParseSignature("KRPP"), material.MustParseSignature("krp"))
	if got := m.Name(); got != "KRPP vs krp" {
		t.Errorf("Name() = %q, want %q", got, "KRPP vs krp")
	}
}

func TestMatcher_Match(t *testing.T) {
	m := New(material.MustParseSignature("KRPP"), material.MustParseSignature("krp"))

	tests := []struct {
		name string
		fen  string
		want bool
	}{
		{
			name: "target material",
			fen:  "8/5pRk/8/8/7P/8/r4P2/6K1 b - - 0 5",
			want: true,
		},
		{
			name: "one pawn too many for black",
			fen:  "8/5ppk/8/8/7P/8/r4P2/6K1 w - - 0 5",
			want: false,
		},
		{
			name: "black pawn already gone",
			fen:  "8/6Rk/8/8/7P/8/r4P2/6K1 b - - 0 6",
			want: false,
		},
		{
			name: "starting position",
			fen:  "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := fen.ParseMaterial(tt.fen)
			if err != nil {
				t.Fatalf("ParseMaterial() error = %v", err)
			}
			if got := m.Match(c); got != tt.want {
				t.Errorf("Match(%v) = %v, want %v", c, got, tt.want)
			}
		})
	}
}
