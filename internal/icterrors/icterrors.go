// Package icterrors defines the four error kinds the core distinguishes:
// LexicalError, SyntaxError, GrammarError, and ClassificationError.
// LexicalError and SyntaxError carry an optional Span so a caller can point
// a diagnostic at source text; GrammarError and ClassificationError have no
// Span.
package icterrors

import "fmt"

// Span locates a range of source text for diagnostics.
type Span struct {
	Start, End   int
	Line, Column int
}

// String renders the span as "line:column".
func (s Span) String() string {
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

type lexicalError struct {
	msg  string
	span *Span
	wrap error
}

func (e *lexicalError) Error() string {
	if e.span != nil {
		return fmt.Sprintf("lexical error at %s: %s", e.span, e.msg)
	}
	return fmt.Sprintf("lexical error: %s", e.msg)
}

func (e *lexicalError) Unwrap() error { return e.wrap }

// Lexical returns a new LexicalError for an unrecognized input byte sequence.
func Lexical(span *Span, msgFormat string, args ...interface{}) error {
	return &lexicalError{msg: fmt.Sprintf(msgFormat, args...), span: span}
}

type syntaxError struct {
	msg  string
	span *Span
	wrap error
}

func (e *syntaxError) Error() string {
	if e.span != nil {
		return fmt.Sprintf("syntax error at %s: %s", e.span, e.msg)
	}
	return fmt.Sprintf("syntax error: %s", e.msg)
}

func (e *syntaxError) Unwrap() error { return e.wrap }

// Syntax returns a new SyntaxError for a driver state with no defined action.
func Syntax(span *Span, msgFormat string, args ...interface{}) error {
	return &syntaxError{msg: fmt.Sprintf(msgFormat, args...), span: span}
}

type grammarError struct {
	msg  string
	wrap error
}

func (e *grammarError) Error() string { return fmt.Sprintf("grammar error: %s", e.msg) }
func (e *grammarError) Unwrap() error { return e.wrap }

// Grammar returns a new GrammarError for table-construction failures
// (unresolved conflict, missing symbol, ambiguous/absent start).
func Grammar(msgFormat string, args ...interface{}) error {
	return &grammarError{msg: fmt.Sprintf(msgFormat, args...)}
}

// WrapGrammar wraps an existing error as a GrammarError, preserving it via
// Unwrap for errors.As/errors.Is chains.
func WrapGrammar(wrapped error, msgFormat string, args ...interface{}) error {
	return &grammarError{msg: fmt.Sprintf(msgFormat, args...), wrap: wrapped}
}

type classificationError struct {
	lhs string
	msg string
}

func (e *classificationError) Error() string {
	return fmt.Sprintf("classification error for %q: %s", e.lhs, e.msg)
}

// Classification returns a new ClassificationError naming the offending LHS
// (mixed regex/literal alternatives, multiple regex patterns for one LHS).
func Classification(lhs, msgFormat string, args ...interface{}) error {
	return &classificationError{lhs: lhs, msg: fmt.Sprintf(msgFormat, args...)}
}
