// Package exactmatcher implements exact material-signature matching.
//
// A position matches only when every piece kind on each side is present in
// exactly the signature's count. Signatures are targets, not bounds.
package exactmatcher

import (
	"strings"

	"github.com/discochess/sieve/internal/matcher"
	"github.com/discochess/sieve/internal/material"
)

// Matcher matches one white and one black signature.
type Matcher struct {
	white material.Signature
	black material.Signature
}

// Ensure Matcher implements matcher.Matcher.
var _ matcher.Matcher = (*Matcher)(nil)

// New creates a matcher for the given signatures.
func New(white, black material.Signature) *Matcher {
	return &Matcher{white: white, black: black}
}

// Name returns the signatures as "KRPP vs krp".
func (m *Matcher) Name() string {
	return m.white.String() + " vs " + strings.ToLower(m.black.String())
}

// Match reports whether c holds exactly the configured material.
func (m *Matcher) Match(c material.Count) bool {
	return matcher.Exact(c, m.white, m.black)
}

// White returns the white signature.
func (m *Matcher) White() material.Signature {
	return m.white
}

// Black returns the black signature.
func (m *Matcher) Black() material.Signature {
	return m.black
}
