// Package krpmatcher implements the fixed "kings, rooks and pawns only" criteria.
package krpmatcher

import (
	"github.com/discochess/sieve/internal/matcher"
	"github.com/discochess/sieve/internal/material"
)

// Matcher accepts rook endings in which both sides still have pawns.
type Matcher struct{}

// Ensure Matcher implements matcher.Matcher.
var _ matcher.Matcher = (*Matcher)(nil)

// New creates a new kings-rooks-pawns matcher.
func New() *Matcher {
	return &Matcher{}
}

// Name returns the matcher name.
func (m *Matcher) Name() string {
	return "kings+rooks+pawns"
}

// Match reports whether c is a rook-and-pawn ending for both sides.
func (m *Matcher) Match(c material.Count) bool {
	return matcher.KingsRooksPawnsOnly(c)
}
