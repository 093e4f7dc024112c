// Package material models piece inventories: per-side tallies of the six
// piece kinds and the exact-count signatures they are compared against.
package material

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidLabel indicates a signature label outside {K,Q,R,B,N,P}.
var ErrInvalidLabel = errors.New("material: invalid piece label")

// Color is a side.
type Color int

const (
	White Color = iota
	Black
)

// String returns "White" or "Black".
func (c Color) String() string {
	if c == Black {
		return "Black"
	}
	return "White"
}

// Other returns the opposing side.
func (c Color) Other() Color {
	if c == White {
		return Black
	}
	return White
}

// Kind is a piece kind.
type Kind int

const (
	King Kind = iota
	Queen
	Rook
	Bishop
	Knight
	Pawn
)

// Kinds lists every piece kind in label order.
var Kinds = [...]Kind{King, Queen, Rook, Bishop, Knight, Pawn}

const labels = "KQRBNP"

// Label returns the uppercase label for k.
func (k Kind) Label() byte {
	return labels[k]
}

// String returns the uppercase label.
func (k Kind) String() string {
	return string(k.Label())
}

// KindOf maps a label to its kind. Case is ignored.
func KindOf(label rune) (Kind, bool) {
	switch label {
	case 'K', 'k':
		return King, true
	case 'Q', 'q':
		return Queen, true
	case 'R', 'r':
		return Rook, true
	case 'B', 'b':
		return Bishop, true
	case 'N', 'n':
		return Knight, true
	case 'P', 'p':
		return Pawn, true
	}
	return 0, false
}

// Count holds the number of pieces of each kind for both sides.
type Count [2][6]int

// Add records n pieces of kind k for side c.
func (c *Count) Add(side Color, k Kind, n int) {
	c[side][k] += n
}

// Of returns the number of pieces of kind k held by side.
func (c Count) Of(side Color, k Kind) int {
	return c[side][k]
}

// Side returns the per-kind counts of one side as a signature.
func (c Count) Side(side Color) Signature {
	return Signature(c[side])
}

// String renders the inventory as "KRPP vs krp".
func (c Count) String() string {
	return c.Side(White).String() + " vs " + strings.ToLower(c.Side(Black).String())
}

// Signature is an exact per-kind piece count for one side.
// It is a target, not a bound: every kind must match exactly.
type Signature [6]int

// ParseSignature builds a signature from a label string such as "KRPP".
// Separators (spaces, commas) are ignored.
func ParseSignature(s string) (Signature, error) {
	var sig Signature
	for _, r := range s {
		switch r {
		case ' ', ',', '\t':
			continue
		}
		k, ok := KindOf(r)
		if !ok {
			return Signature{}, fmt.Errorf("%w: %q", ErrInvalidLabel, r)
		}
		sig[k]++
	}
	return sig, nil
}

// SignatureOf builds a signature from a list of labels, one piece per label.
func SignatureOf(labels ...string) (Signature, error) {
	var sig Signature
	for _, l := range labels {
		if len(l) != 1 {
			return Signature{}, fmt.Errorf("%w: %q", ErrInvalidLabel, l)
		}
		k, ok := KindOf(rune(l[0]))
		if !ok {
			return Signature{}, fmt.Errorf("%w: %q", ErrInvalidLabel, l)
		}
		sig[k]++
	}
	return sig, nil
}

// MustParseSignature is like ParseSignature but panics on error.
func MustParseSignature(s string) Signature {
	sig, err := ParseSignature(s)
	if err != nil {
		panic(err)
	}
	return sig
}

// Of returns the required count for kind k.
func (s Signature) Of(k Kind) int {
	return s[k]
}

// IsZero reports whether the signature requires no pieces at all.
func (s Signature) IsZero() bool {
	return s == Signature{}
}

// String renders the signature as uppercase labels in KQRBNP order.
func (s Signature) String() string {
	var b strings.Builder
	for _, k := range Kinds {
		for i := 0; i < s[k]; i++ {
			b.WriteByte(k.Label())
		}
	}
	return b.String()
}
