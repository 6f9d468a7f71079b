package ebnf

import (
	"github.com/dekarrin/ebnfgen/internal/grammar"
	"github.com/dekarrin/ebnfgen/internal/lex"
	"github.com/dekarrin/ebnfgen/internal/lr"
	"github.com/dekarrin/ebnfgen/internal/symtab"
)

// Directive captures one "@ name = value" declaration from a user grammar.
// The core grammar language only specifies directive syntax (spec.md §4.5);
// no directive name carries built-in meaning here, so callers that want to
// act on one (e.g. an "@start" override) read it back off GeneratorResult.
type Directive struct {
	Name        string
	Literal     *string
	Regex       *string
	Identifiers []string
}

// GeneratorResult is the Pass 1 output (spec.md §4.6): everything Pass 2
// needs to build a fresh lexer and parse table for the user's own grammar.
type GeneratorResult struct {
	Symbols    *symtab.Table
	Grammar    *grammar.RuleSet
	TokenRules *lex.RuleSet
	Tree       *lr.ParseTree
	Directives []Directive
}
