package lex

import "github.com/dekarrin/ebnfgen/internal/symtab"

// PostProcessor is the one-token-lookahead stream rewriter from spec.md
// §4.4: it retags an Identifier token to LeftIdentifier whenever the very
// next token is Equal, so the LHS of a rule/directive can be told apart
// from occurrences of the same identifier on a right-hand side without a
// non-LALR grammar.
type PostProcessor struct {
	src             Source
	identifierKind  symtab.Terminal
	leftIdentifier  symtab.Terminal
	equalKind       symtab.Terminal
	buffered        *Token
	bufferedErr     error
	haveBuffered    bool
}

// NewPostProcessor wraps src, retagging identifierKind to leftIdentifier
// whenever it is immediately followed by equalKind.
func NewPostProcessor(src Source, identifierKind, leftIdentifier, equalKind symtab.Terminal) *PostProcessor {
	return &PostProcessor{
		src:            src,
		identifierKind: identifierKind,
		leftIdentifier: leftIdentifier,
		equalKind:      equalKind,
	}
}

func (p *PostProcessor) HasNext() bool {
	if p.haveBuffered {
		return true
	}
	return p.src.HasNext()
}

func (p *PostProcessor) Next() (Token, error) {
	cur, err := p.retagged()
	if err != nil {
		return cur, err
	}
	p.haveBuffered = false
	return cur, nil
}

func (p *PostProcessor) Peek() (Token, error) {
	return p.retagged()
}

// retagged returns the buffered current token with the Identifier ->
// LeftIdentifier rewrite already applied, without consuming it.
func (p *PostProcessor) retagged() (Token, error) {
	cur, err := p.fill()
	if err != nil {
		return cur, err
	}
	if cur.Kind.Name() == p.identifierKind.Name() {
		next, nerr := p.src.Peek()
		if nerr == nil && next.Kind.Name() == p.equalKind.Name() {
			cur.Kind = p.leftIdentifier
		}
	}
	return cur, nil
}

// fill ensures the current (possibly about-to-be-retagged) token is
// buffered, pulling from the underlying source exactly once per logical
// token. It mirrors spec.md §9's "stateful pull transformer holding one
// buffered item."
func (p *PostProcessor) fill() (Token, error) {
	if p.haveBuffered {
		return *p.buffered, p.bufferedErr
	}
	tok, err := p.src.Next()
	p.buffered = &tok
	p.bufferedErr = err
	p.haveBuffered = true
	return tok, err
}
