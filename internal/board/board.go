// Package board defines the chess position and game abstractions that the
// scanner and analyzer walk. Rule legality and move generation belong to the
// implementation; callers only apply moves and inspect the result.
package board

import (
	"errors"

	"github.com/discochess/sieve/internal/material"
)

// ErrIllegalMove is returned by Position.Apply for a move that is not legal
// in the current position.
var ErrIllegalMove = errors.New("board: illegal move")

// Status describes whether play can continue from a position.
type Status int

const (
	Ongoing Status = iota
	Checkmate
	Stalemate
)

// Move is a single half-move. String returns UCI notation, e.g. "e2e4".
type Move interface {
	String() string
}

// Position is a mutable board snapshot advanced one move at a time.
// A Position is owned by a single loop and is not safe for concurrent use.
type Position interface {
	// Apply plays m on the position.
	Apply(m Move) error

	// Material tallies every piece on the board by side and kind.
	Material() material.Count

	// FEN returns the canonical board-state string.
	FEN() string

	// SideToMove returns the side to play next.
	SideToMove() material.Color

	// Status reports checkmate, stalemate or ongoing play.
	Status() Status
}

// Game is a parsed, immutable game record.
type Game interface {
	// Start returns a fresh position at the game's initial setup.
	Start() (Position, error)

	// Moves returns the mainline moves in order.
	Moves() []Move

	// Tag returns the value of a header tag such as "Site".
	Tag(key string) (string, bool)
}
