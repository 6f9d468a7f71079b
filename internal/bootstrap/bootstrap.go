// Package bootstrap implements the two-stage pipeline spec.md §4.6
// describes: Pass 1 parses a user's EBNF grammar text against the
// hand-built meta-grammar (internal/ebnf.GetMeta) to produce a
// GeneratorResult; Pass 2 builds a fresh LALR(1) table from that result
// and drives it against target input with the caller's own semantic
// action. The same tokenize -> process -> parse sequence runs twice: once
// to build a grammar from grammar text, once to hand that grammar off to
// a freshly constructed parser.
package bootstrap

import (
	"github.com/dekarrin/ebnfgen/internal/ebnf"
	"github.com/dekarrin/ebnfgen/internal/grammar"
	"github.com/dekarrin/ebnfgen/internal/icterrors"
	"github.com/dekarrin/ebnfgen/internal/lex"
	"github.com/dekarrin/ebnfgen/internal/lr"
	"github.com/dekarrin/ebnfgen/internal/symtab"
)

// Compile runs Pass 1: it parses grammarText against the process-wide
// meta-grammar and returns the GeneratorResult describing the grammar it
// names. The LeftIdentifier rewrite below is what makes the result usable
// as the input to Parse when grammarText itself describes another
// EBNF-shaped language (the self-hosting case spec.md §8.1 calls
// "Idempotent bootstrap").
func Compile(grammarText string) (*ebnf.GeneratorResult, error) {
	meta, err := ebnf.GetMeta()
	if err != nil {
		return nil, err
	}

	src, err := lex.NewSource(grammarText, meta.TokenRules)
	if err != nil {
		return nil, err
	}

	pp := lex.NewPostProcessor(
		src,
		meta.Symbols.Terminal(ebnf.TIdentifier),
		meta.Symbols.Terminal(ebnf.TLeftIdentifier),
		meta.Symbols.Terminal(ebnf.TEqual),
	)

	driver := lr.NewDriver(meta.Table, ebnf.NewGeneratorAction())
	result, err := driver.Parse(pp)
	if err != nil {
		return nil, err
	}

	gen, ok := result.(*ebnf.GeneratorResult)
	if !ok || gen == nil {
		return nil, icterrors.Grammar("Pass 1 produced no GeneratorResult")
	}

	rewriteLeftIdentifiers(gen)
	return gen, nil
}

// Parse runs Pass 2: it builds a table from gen's grammar, wraps
// inputText's lexer with the same Identifier->LeftIdentifier retagging if
// gen's grammar actually needs it (see rewriteLeftIdentifiers), and drives
// action to completion.
func Parse(gen *ebnf.GeneratorResult, inputText string, action lr.SemanticAction) (any, error) {
	table, err := lr.Build(gen.Grammar, gen.Symbols, lr.DefaultShouldReduce, lr.DefaultPriorityOf)
	if err != nil {
		return nil, err
	}

	src, err := lex.NewSource(inputText, gen.TokenRules)
	if err != nil {
		return nil, err
	}

	source := withLeftIdentifierRetag(gen, src)

	driver := lr.NewDriver(table, action)
	return driver.Parse(source)
}

// rewriteLeftIdentifiers implements spec.md §4.6's Pass-2 post-processing
// step: any rule whose right-hand side has an Identifier-kind terminal
// immediately followed by an Equal-kind terminal has that Identifier
// position rewritten to LeftIdentifier, exactly the shape
// internal/lex.PostProcessor enforces on the token stream ("directive = @
// Identifier = value", "rule = Identifier = expression") -- so a grammar
// generated from a grammar that describes itself (the self-hosting case)
// remains LALR(1)-parseable without reintroducing the shift/reduce
// ambiguity the hand-built meta-grammar sidesteps the same way. Name
// comparison is Open-Question-(a) normalized, since a generated grammar may
// use snake_case where the meta-grammar uses CamelCase. Only terminals named
// Identifier and Equal (after normalization) are matched, in any rule; a
// grammar that writes "=" as an inline literal gets an anonymous $AnonN
// terminal for it, which is not matched, and its rules are left unchanged.
func rewriteLeftIdentifiers(gen *ebnf.GeneratorResult) {
	identTerm, hasIdent := findTerminal(gen.Grammar, ebnf.TIdentifier)
	equalTerm, hasEqual := findTerminal(gen.Grammar, ebnf.TEqual)
	if !hasIdent || !hasEqual {
		return
	}

	for ri, r := range gen.Grammar.Rules {
		for i := 0; i+1 < len(r.RHS); i++ {
			if !r.RHS[i].IsTerminal || r.RHS[i].Term.Name() != identTerm.Name() {
				continue
			}
			if !r.RHS[i+1].IsTerminal || r.RHS[i+1].Term.Name() != equalTerm.Name() {
				continue
			}
			left := gen.Symbols.Terminal(ebnf.TLeftIdentifier)
			gen.Grammar.Rules[ri].RHS[i] = grammar.T(left)
		}
	}
}

// withLeftIdentifierRetag wraps src in a PostProcessor if gen's grammar was
// actually rewritten to expect a LeftIdentifier (i.e. gen's symbol table
// now has one), so Pass 2's lexer retags the same way Pass 1's did.
func withLeftIdentifierRetag(gen *ebnf.GeneratorResult, src lex.Source) lex.Source {
	if !gen.Symbols.HasTerminal(ebnf.TLeftIdentifier) {
		return src
	}
	identTerm, hasIdent := findTerminal(gen.Grammar, ebnf.TIdentifier)
	equalTerm, hasEqual := findTerminal(gen.Grammar, ebnf.TEqual)
	if !hasIdent || !hasEqual {
		return src
	}
	return lex.NewPostProcessor(src, identTerm, gen.Symbols.Terminal(ebnf.TLeftIdentifier), equalTerm)
}

// findTerminal finds the terminal referenced anywhere in rs whose name,
// Open-Question-(a) normalized, matches wantName.
func findTerminal(rs *grammar.RuleSet, wantName string) (t symtab.Terminal, ok bool) {
	want := ebnf.Normalize(wantName)
	for _, r := range rs.Rules {
		for _, sym := range r.RHS {
			if sym.IsTerminal && ebnf.Normalize(sym.Name()) == want {
				return sym.Term, true
			}
		}
	}
	return t, false
}
