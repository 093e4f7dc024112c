package engine

import (
	"fmt"
	"strconv"

	"github.com/discochess/sieve/internal/material"
)

// Score is an engine evaluation: either centipawns or moves to mate.
//
// A score is always expressed for one side. Engines report it for the side
// to move; WhitePOV re-expresses it for White.
type Score struct {
	mate  bool
	value int
	// lost marks a mate against the perspective side. It is kept separately
	// so that a checkmate (mate in zero) still carries a sign.
	lost bool
}

// Centipawns returns a centipawn score.
func Centipawns(cp int) Score {
	return Score{value: cp}
}

// MateIn returns a mate score. Positive n means the perspective side mates
// in n moves; negative n means it is mated in -n moves.
func MateIn(n int) Score {
	if n < 0 {
		return Score{mate: true, value: -n, lost: true}
	}
	return Score{mate: true, value: n}
}

// Checkmated returns the score of a position whose perspective side is
// already mated.
func Checkmated() Score {
	return Score{mate: true, lost: true}
}

// IsMate reports whether s is a mate score.
func (s Score) IsMate() bool {
	return s.mate
}

// CP returns the centipawn value, or 0 for a mate score.
func (s Score) CP() int {
	if s.mate {
		return 0
	}
	return s.value
}

// Mate returns the signed number of moves to mate, or 0 for a centipawn
// score. A checkmate also returns 0; use IsMate and Lost to tell them apart.
func (s Score) Mate() int {
	if !s.mate {
		return 0
	}
	if s.lost {
		return -s.value
	}
	return s.value
}

// Lost reports whether s is a mate against the perspective side.
func (s Score) Lost() bool {
	return s.mate && s.lost
}

// Negate returns s expressed for the other side.
func (s Score) Negate() Score {
	if s.mate {
		s.lost = !s.lost
		return s
	}
	s.value = -s.value
	return s
}

// WhitePOV converts a score relative to turn into one relative to White.
func (s Score) WhitePOV(turn material.Color) Score {
	if turn == material.Black {
		return s.Negate()
	}
	return s
}

// String renders the score as "M3", "-M3", "0.35" or "-1.20".
// Positive values favor the perspective side.
func (s Score) String() string {
	if s.mate {
		if s.lost {
			return "-M" + strconv.Itoa(s.value)
		}
		return "M" + strconv.Itoa(s.value)
	}
	return fmt.Sprintf("%.2f", float64(s.value)/100)
}
