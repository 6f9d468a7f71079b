package lex

import (
	"regexp"
	"strings"

	"github.com/dekarrin/ebnfgen/internal/icterrors"
	"github.com/dekarrin/ebnfgen/internal/symtab"
)

// Source is the lazy, pull-based Token Source spec.md §3/§5 describes:
// a sequence of Tokens, terminating in exactly one EOF, that the driver
// pulls one at a time. Source must never be read ahead of what the driver
// has actually consumed, except through Peek, which must not advance it.
type Source interface {
	// Next returns the next token and advances the source by one token. Once
	// EOF has been returned, every subsequent call returns EOF again.
	Next() (Token, error)

	// Peek returns the next token without advancing the source.
	Peek() (Token, error)

	// HasNext reports whether EOF has not yet been produced.
	HasNext() bool
}

// lazySource runs one pre-compiled super-regex against the remaining input
// on every pull: a single implicit lexer state, no separate state machine
// needed since this domain has no lexer-mode transitions.
type lazySource struct {
	text    string
	pos     int // byte offset of unconsumed input
	rules   *RuleSet
	pattern *regexp.Regexp

	line, col int

	done    bool
	peeked  *Token
	peekErr error
}

// NewSource compiles rules into a super-pattern and returns a Source over
// text.
func NewSource(text string, rules *RuleSet) (Source, error) {
	pattern, err := rules.Compiled()
	if err != nil {
		return nil, err
	}
	return &lazySource{text: text, rules: rules, pattern: pattern, line: 1, col: 1}, nil
}

func (s *lazySource) HasNext() bool {
	return !s.done
}

func (s *lazySource) Peek() (Token, error) {
	if s.peeked == nil {
		tok, err := s.pullNext()
		s.peeked = &tok
		s.peekErr = err
	}
	return *s.peeked, s.peekErr
}

func (s *lazySource) Next() (Token, error) {
	if s.peeked != nil {
		tok := *s.peeked
		s.peeked = nil
		err := s.peekErr
		s.peekErr = nil
		return tok, err
	}
	return s.pullNext()
}

// pullNext picks the rule whose capture group matched. The super-pattern is
// a Go regexp alternation, which is leftmost-first: the earliest-declared
// rule that matches at the current position is the only group reported,
// and the lexeme is that rule's own (greedy) match, not the longest match
// over all rules. Skip rules loop without returning a token.
func (s *lazySource) pullNext() (Token, error) {
	for {
		if s.done {
			return s.eofToken(), nil
		}
		if s.pos >= len(s.text) {
			s.done = true
			return s.eofToken(), nil
		}

		loc := s.pattern.FindStringSubmatchIndex(s.text[s.pos:])
		if loc == nil {
			span := s.spanAt(s.pos, s.pos+1)
			s.done = true
			return Token{Kind: symtab.Unrecognized, Span: span},
				icterrors.Lexical(&span, "no token rule matches input starting %q", preview(s.text[s.pos:]))
		}

		ruleIdx, lexeme := selectMatch(loc, s.text[s.pos:], len(s.rules.Rules))
		if lexeme == "" && loc[1] == 0 {
			// zero-width match against every alternative: avoid looping
			// forever by treating it as unrecognized input.
			span := s.spanAt(s.pos, s.pos+1)
			s.done = true
			return Token{Kind: symtab.Unrecognized, Span: span},
				icterrors.Lexical(&span, "token rule matched empty string")
		}

		rule := s.rules.Rules[ruleIdx]
		start := s.pos
		end := s.pos + len(lexeme)
		span := s.spanAt(start, end)
		s.advancePos(lexeme)

		if rule.Skip {
			continue
		}
		return Token{Kind: rule.Kind, Lexeme: lexeme, Span: span}, nil
	}
}

// selectMatch picks a winner among the capture groups that matched: the
// longest wins, ties broken by earliest declared rule (lowest index).
func selectMatch(loc []int, window string, numRules int) (int, string) {
	bestIdx := -1
	bestLen := -1
	bestText := ""
	for i := 0; i < numRules; i++ {
		g := 2 + 2*i
		if loc[g] < 0 {
			continue
		}
		text := window[loc[g]:loc[g+1]]
		if len(text) > bestLen {
			bestLen = len(text)
			bestIdx = i
			bestText = text
		}
	}
	return bestIdx, bestText
}

func (s *lazySource) eofToken() Token {
	span := s.spanAt(s.pos, s.pos)
	return Token{Kind: symtab.EOF, Span: span}
}

func (s *lazySource) spanAt(start, end int) icterrors.Span {
	return icterrors.Span{Start: start, End: end, Line: s.line, Column: s.col}
}

func (s *lazySource) advancePos(lexeme string) {
	for _, r := range lexeme {
		if r == '\n' {
			s.line++
			s.col = 1
		} else {
			s.col++
		}
	}
	s.pos += len(lexeme)
}

func preview(s string) string {
	const max = 20
	if idx := strings.IndexByte(s, '\n'); idx >= 0 && idx < max {
		s = s[:idx]
	}
	if len(s) > max {
		s = s[:max] + "..."
	}
	return s
}
