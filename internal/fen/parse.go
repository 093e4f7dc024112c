// Package fen provides FEN (Forsyth-Edwards Notation) parsing utilities.
package fen

import (
	"errors"
	"strings"

	"github.com/discochess/sieve/internal/material"
)

// ErrInvalidFEN indicates the FEN string is malformed.
var ErrInvalidFEN = errors.New("invalid FEN notation")

// Normalize returns the first four FEN fields: placement, side to move,
// castling rights and en passant square. Move counters are dropped so that
// the same position reached at different points of a game normalizes equally.
func Normalize(fen string) (string, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return "", ErrInvalidFEN
	}
	if !isValidPiecePlacement(parts[0]) {
		return "", ErrInvalidFEN
	}
	if parts[1] != "w" && parts[1] != "b" {
		return "", ErrInvalidFEN
	}
	return strings.Join(parts[:4], " "), nil
}

// Validate checks the placement and side-to-move fields.
func Validate(fen string) error {
	parts := strings.Fields(fen)
	if len(parts) < 2 {
		return ErrInvalidFEN
	}
	if !isValidPiecePlacement(parts[0]) {
		return ErrInvalidFEN
	}
	if _, err := SideToMove(fen); err != nil {
		return err
	}
	return nil
}

// ParseMaterial tallies every piece in the placement field, kings included.
func ParseMaterial(fen string) (material.Count, error) {
	parts := strings.Fields(fen)
	if len(parts) == 0 {
		return material.Count{}, ErrInvalidFEN
	}

	var c material.Count
	for _, ch := range parts[0] {
		switch ch {
		case '/', '1', '2', '3', '4', '5', '6', '7', '8':
			continue
		}
		kind, ok := material.KindOf(ch)
		if !ok {
			return material.Count{}, ErrInvalidFEN
		}
		side := material.White
		if ch >= 'a' && ch <= 'z' {
			side = material.Black
		}
		c.Add(side, kind, 1)
	}

	return c, nil
}

// SideToMove returns the side to move from a FEN string.
func SideToMove(fen string) (material.Color, error) {
	parts := strings.Fields(fen)
	if len(parts) < 2 {
		return material.White, ErrInvalidFEN
	}
	switch parts[1] {
	case "w":
		return material.White, nil
	case "b":
		return material.Black, nil
	}
	return material.White, ErrInvalidFEN
}

// isValidPiecePlacement validates the piece placement part of a FEN.
func isValidPiecePlacement(placement string) bool {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return false
	}

	for _, rank := range ranks {
		squares := 0
		for _, ch := range rank {
			switch {
			case ch >= '1' && ch <= '8':
				squares += int(ch - '0')
			case strings.ContainsRune("PNBRQKpnbrqk", ch):
				squares++
			default:
				return false
			}
		}
		if squares != 8 {
			return false
		}
	}

	return true
}
