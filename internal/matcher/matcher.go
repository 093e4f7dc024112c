// Package matcher defines the material predicates a game scan stops on.
package matcher

import (
	"github.com/discochess/sieve/internal/board"
	"github.com/discochess/sieve/internal/material"
)

// Matcher decides whether a material inventory is the one being searched for.
type Matcher interface {
	// Name returns a human-readable description of the criteria.
	Name() string

	// Match reports whether c satisfies the criteria.
	// Implementations must be pure functions of c.
	Match(c material.Count) bool
}

// Matches reports whether pos holds exactly the white and black signatures.
// An extra piece of an allowed kind or a missing required piece fails the match.
func Matches(pos board.Position, white, black material.Signature) bool {
	return Exact(pos.Material(), white, black)
}

// Exact compares all twelve per-kind, per-side counts.
func Exact(c material.Count, white, black material.Signature) bool {
	return c.Side(material.White) == white && c.Side(material.Black) == black
}

// MatchesKingsRooksPawnsOnly reports whether pos has no queens, bishops or
// knights and each side keeps at least a king, a rook and a pawn.
func MatchesKingsRooksPawnsOnly(pos board.Position) bool {
	return KingsRooksPawnsOnly(pos.Material())
}

// KingsRooksPawnsOnly is the count form of MatchesKingsRooksPawnsOnly.
func KingsRooksPawnsOnly(c material.Count) bool {
	for _, side := range []material.Color{material.White, material.Black} {
		if c.Of(side, material.Queen) != 0 ||
			c.Of(side, material.Bishop) != 0 ||
			c.Of(side, material.Knight) != 0 {
			return false
		}
		if c.Of(side, material.King) < 1 ||
			c.Of(side, material.Rook) < 1 ||
			c.Of(side, material.Pawn) < 1 {
			return false
		}
	}
	return true
}
