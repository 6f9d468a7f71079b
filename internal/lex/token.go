// Package lex implements the Token Rule Set, the lazy pull-based Token
// Source built on top of it, and the Token Post-Processor that retags
// LeftIdentifier tokens. The recognizer runs on stdlib regexp: one
// compiled alternation over every rule's pattern, not a hand-rolled
// NFA/DFA engine.
package lex

import (
	"fmt"

	"github.com/dekarrin/ebnfgen/internal/icterrors"
	"github.com/dekarrin/ebnfgen/internal/symtab"
)

// Token is a single lexical unit: a terminal kind, its source text, and the
// span of source it came from.
type Token struct {
	Kind   symtab.Terminal
	Lexeme string
	Span   icterrors.Span
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%s", t.Kind.Name(), t.Lexeme, t.Span)
}

// IsEOF reports whether this token is the reserved end-of-input marker.
func (t Token) IsEOF() bool { return t.Kind.Name() == symtab.EOFName }
