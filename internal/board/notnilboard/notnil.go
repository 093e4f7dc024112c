// Package notnilboard implements the board abstractions on top of
// github.com/notnil/chess.
package notnilboard

import (
	"fmt"
	"io"
	"strings"

	"github.com/notnil/chess"

	"github.com/discochess/sieve/internal/board"
	"github.com/discochess/sieve/internal/material"
)

// Compile-time checks.
var (
	_ board.Position = (*Position)(nil)
	_ board.Game     = (*Game)(nil)
)

// Position wraps an immutable *chess.Position; Apply swaps in the successor.
type Position struct {
	pos *chess.Position
}

// StartingPosition returns the standard initial position.
func StartingPosition() *Position {
	return &Position{pos: chess.StartingPosition()}
}

// NewPosition parses a FEN string into a position.
func NewPosition(fenStr string) (*Position, error) {
	opt, err := chess.FEN(fenStr)
	if err != nil {
		return nil, fmt.Errorf("parsing FEN: %w", err)
	}
	return &Position{pos: chess.NewGame(opt).Position()}, nil
}

// Apply plays m if it is legal in the current position. Moves that are not
// *chess.Move values are decoded from their UCI string.
func (p *Position) Apply(m board.Move) error {
	mv, ok := m.(*chess.Move)
	if !ok {
		decoded, err := chess.UCINotation{}.Decode(p.pos, m.String())
		if err != nil {
			return fmt.Errorf("%w: %s", board.ErrIllegalMove, m)
		}
		mv = decoded
	}

	// Use the generated move so its tags (castling, en passant) match this position.
	for _, legal := range p.pos.ValidMoves() {
		if legal.S1() == mv.S1() && legal.S2() == mv.S2() && legal.Promo() == mv.Promo() {
			p.pos = p.pos.Update(legal)
			return nil
		}
	}
	return fmt.Errorf("%w: %s in %s", board.ErrIllegalMove, mv, p.pos)
}

// Material tallies the pieces on the board.
func (p *Position) Material() material.Count {
	var c material.Count
	for _, pc := range p.pos.Board().SquareMap() {
		kind, ok := kindOf(pc.Type())
		if !ok {
			continue
		}
		c.Add(colorOf(pc.Color()), kind, 1)
	}
	return c
}

// FEN returns the position in Forsyth-Edwards Notation.
func (p *Position) FEN() string {
	return p.pos.String()
}

// SideToMove returns the side to play.
func (p *Position) SideToMove() material.Color {
	return colorOf(p.pos.Turn())
}

// Status reports whether the side to move is mated or stalemated.
func (p *Position) Status() board.Status {
	switch p.pos.Status() {
	case chess.Checkmate:
		return board.Checkmate
	case chess.Stalemate:
		return board.Stalemate
	}
	return board.Ongoing
}

// Game is a parsed PGN game.
type Game struct {
	game  *chess.Game
	moves []board.Move
}

// ParseGame parses a single PGN game record.
func ParseGame(pgn string) (*Game, error) {
	opt, err := chess.PGN(strings.NewReader(pgn))
	if err != nil {
		return nil, fmt.Errorf("parsing PGN: %w", err)
	}
	return newGame(chess.NewGame(opt)), nil
}

// ReadGames parses every game in a PGN stream.
func ReadGames(r io.Reader) ([]*Game, error) {
	scanner := chess.NewScanner(r)

	var games []*Game
	for scanner.Scan() {
		games = append(games, newGame(scanner.Next()))
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading PGN: %w", err)
	}
	return games, nil
}

func newGame(g *chess.Game) *Game {
	src := g.Moves()
	moves := make([]board.Move, len(src))
	for i, m := range src {
		moves[i] = m
	}
	return &Game{game: g, moves: moves}
}

// Start returns the game's initial position, honoring a SetUp/FEN header.
func (g *Game) Start() (board.Position, error) {
	positions := g.game.Positions()
	if len(positions) == 0 {
		return StartingPosition(), nil
	}
	return &Position{pos: positions[0]}, nil
}

// Moves returns the mainline moves.
func (g *Game) Moves() []board.Move {
	return g.moves
}

// Tag returns a header tag value.
func (g *Game) Tag(key string) (string, bool) {
	tp := g.game.GetTagPair(key)
	if tp == nil {
		return "", false
	}
	return tp.Value, true
}

func kindOf(t chess.PieceType) (material.Kind, bool) {
	switch t {
	case chess.King:
		return material.King, true
	case chess.Queen:
		return material.Queen, true
	case chess.Rook:
		return material.Rook, true
	case chess.Bishop:
		return material.Bishop, true
	case chess.Knight:
		return material.Knight, true
	case chess.Pawn:
		return material.Pawn, true
	}
	return 0, false
}

func colorOf(c chess.Color) material.Color {
	if c == chess.Black {
		return material.Black
	}
	return material.White
}
