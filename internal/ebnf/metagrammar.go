// Package ebnf implements the EBNF Front-End (spec.md §4.5): the hand-built
// meta-grammar used for Pass 1 of the bootstrap, EBNF->BNF lowering,
// symbol classification, literal aggregation, start-symbol election, and
// implicit token synthesis.
package ebnf

import (
	"sync"

	"github.com/dekarrin/ebnfgen/internal/grammar"
	"github.com/dekarrin/ebnfgen/internal/lex"
	"github.com/dekarrin/ebnfgen/internal/lr"
	"github.com/dekarrin/ebnfgen/internal/symtab"
)

// Non-terminal names of the meta-grammar, exported so the default action's
// passthrough/list-flattening sets (internal/lr) and this package's tree
// walker agree on spelling.
const (
	NTGrammar             = "Grammar"
	NTGrammarRepetition   = "GrammarRepetition"
	NTDirective           = "Directive"
	NTValue               = "Value"
	NTList                = "List"
	NTListRepetition      = "ListRepetition"
	NTRule                = "Rule"
	NTExpression          = "Expression"
	NTExpressionRepetition = "ExpressionRepetition"
	NTTerm                = "Term"
	NTTermRepetition      = "TermRepetition"
	NTFactor              = "Factor"
	NTFactorRepetition    = "FactorRepetition"
	NTAtom                = "Atom"
	NTGroup               = "Group"
	NTOptional            = "Optional"
	NTRepetition          = "Repetition"
	NTLookahead           = "Lookahead"
	NTLookaheadGroup      = "LookaheadGroup"
)

// Terminal names of the meta-grammar.
const (
	TAt                 = "At"
	TEqual              = "Equal"
	TComma              = "Comma"
	TPipe               = "Pipe"
	TLeftParen          = "LeftParen"
	TRightParen         = "RightParen"
	TLeftBracket        = "LeftBracket"
	TRightBracket       = "RightBracket"
	TLeftBrace          = "LeftBrace"
	TRightBrace         = "RightBrace"
	TTilde              = "Tilde"
	TPositiveLookAhead  = "PositiveLookAhead"
	TNegativeLookAhead  = "NegativeLookAhead"
	TPositiveLookBehind = "PositiveLookBehind"
	TNegativeLookBehind = "NegativeLookBehind"
	TLiteral            = "Literal"
	TRegex              = "Regex"
	TIdentifier         = "Identifier"
	TLeftIdentifier     = "LeftIdentifier"
	TEpsilonKeyword     = "EpsilonKeyword"
	TComment            = "Comment"
	TWhitespace         = "Whitespace"
)

// Meta is the process-wide, one-shot-initialized meta-grammar bundle
// (spec.md §5/§9: "treat as a one-shot initialized process-wide value;
// never mutate after first read").
type Meta struct {
	Symbols    *symtab.Table
	Grammar    *grammar.RuleSet
	TokenRules *lex.RuleSet
	Table      *lr.Table
}

var (
	metaOnce sync.Once
	meta     *Meta
	metaErr  error
)

// GetMeta returns the process-wide meta-grammar bundle, building it (and
// its LALR(1) table) on first use.
func GetMeta() (*Meta, error) {
	metaOnce.Do(func() {
		meta, metaErr = buildMeta()
	})
	return meta, metaErr
}

func buildMeta() (*Meta, error) {
	tab := symtab.New()
	nt := func(name string) symtab.NonTerminal { return tab.NonTerminal(name) }
	t := func(name string) symtab.Terminal { return tab.Terminal(name) }

	r := func(lhs string, rhs ...grammar.Symbol) grammar.Rule {
		return grammar.Rule{LHS: nt(lhs), RHS: rhs}
	}
	N := func(name string) grammar.Symbol { return grammar.NT(nt(name)) }
	T := func(name string) grammar.Symbol { return grammar.T(t(name)) }

	rules := []grammar.Rule{
		// grammar = { directive | rule }
		r(NTGrammar, N(NTGrammar), N(NTGrammarRepetition)),
		r(NTGrammar),
		r(NTGrammarRepetition, N(NTDirective)),
		r(NTGrammarRepetition, N(NTRule)),

		// directive = "@" IDENTIFIER "=" value
		r(NTDirective, T(TAt), T(TLeftIdentifier), T(TEqual), N(NTValue)),

		// value = LITERAL | REGEX | list
		r(NTValue, T(TLiteral)),
		r(NTValue, T(TRegex)),
		r(NTValue, N(NTList)),

		// list = IDENTIFIER { "," IDENTIFIER }
		r(NTList, N(NTList), T(TComma), T(TIdentifier)),
		r(NTList, T(TIdentifier)),

		// rule = IDENTIFIER "=" expression
		r(NTRule, T(TLeftIdentifier), T(TEqual), N(NTExpression)),

		// expression = term { "|" term }
		r(NTExpression, N(NTExpression), T(TPipe), N(NTTerm)),
		r(NTExpression, N(NTTerm)),

		// term = factor { factor }
		r(NTTerm, N(NTTerm), N(NTFactor)),
		r(NTTerm, N(NTFactor)),

		// factor = { "~" } atom { "~" } [ lookahead ]
		r(NTFactor, N(NTFactorRepetition), N(NTAtom), N(NTFactorRepetition), N(NTLookahead)),
		r(NTFactor, N(NTFactorRepetition), N(NTAtom), N(NTFactorRepetition)),
		r(NTFactorRepetition, N(NTFactorRepetition), T(TTilde)),
		r(NTFactorRepetition),

		// atom = LITERAL | IDENTIFIER | REGEX | group | optional | repetition | EPSILON
		r(NTAtom, T(TLiteral)),
		r(NTAtom, T(TIdentifier)),
		r(NTAtom, T(TRegex)),
		r(NTAtom, N(NTGroup)),
		r(NTAtom, N(NTOptional)),
		r(NTAtom, N(NTRepetition)),
		r(NTAtom, T(TEpsilonKeyword)),

		// group = "(" expression ")"
		r(NTGroup, T(TLeftParen), N(NTExpression), T(TRightParen)),
		// optional = "[" expression "]"
		r(NTOptional, T(TLeftBracket), N(NTExpression), T(TRightBracket)),
		// repetition = "{" expression "}"
		r(NTRepetition, T(TLeftBrace), N(NTExpression), T(TRightBrace)),

		// lookahead = (&|!|<-&|<-!) factor
		r(NTLookahead, N(NTLookaheadGroup), N(NTFactor)),
		r(NTLookaheadGroup, T(TPositiveLookAhead)),
		r(NTLookaheadGroup, T(TNegativeLookAhead)),
		r(NTLookaheadGroup, T(TPositiveLookBehind)),
		r(NTLookaheadGroup, T(TNegativeLookBehind)),
	}

	rs := &grammar.RuleSet{Start: nt(NTGrammar), Rules: rules}

	tokenRules := &lex.RuleSet{Rules: []lex.Rule{
		{Kind: t(TComment), Pattern: `#.*`, Skip: true},
		{Kind: t(TWhitespace), Pattern: `[ \t\r\n]+`, Skip: true},
		{Kind: t(TEpsilonKeyword), Pattern: `EPSILON\b`},
		{Kind: t(TPositiveLookBehind), Pattern: `<-&`},
		{Kind: t(TNegativeLookBehind), Pattern: `<-!`},
		{Kind: t(TPositiveLookAhead), Pattern: `&`},
		{Kind: t(TNegativeLookAhead), Pattern: `!`},
		{Kind: t(TAt), Pattern: `@`},
		{Kind: t(TEqual), Pattern: `=`},
		{Kind: t(TComma), Pattern: `,`},
		{Kind: t(TPipe), Pattern: `\|`},
		{Kind: t(TLeftParen), Pattern: `\(`},
		{Kind: t(TRightParen), Pattern: `\)`},
		{Kind: t(TLeftBracket), Pattern: `\[`},
		{Kind: t(TRightBracket), Pattern: `\]`},
		{Kind: t(TLeftBrace), Pattern: `\{`},
		{Kind: t(TRightBrace), Pattern: `\}`},
		{Kind: t(TTilde), Pattern: `~`},
		{Kind: t(TLiteral), Pattern: `"(?:[^"\\]|\\.)*"`},
		{Kind: t(TRegex), Pattern: `/(?:[^/\\]|\\.)*/`},
		{Kind: t(TIdentifier), Pattern: `[A-Za-z_][A-Za-z_0-9]*`},
	}}

	table, err := lr.Build(rs, tab, ShouldReduce, lr.DefaultPriorityOf)
	if err != nil {
		return nil, err
	}

	return &Meta{Symbols: tab, Grammar: rs, TokenRules: tokenRules, Table: table}, nil
}

// ShouldReduce is the meta-grammar's single disambiguation rule (spec.md
// §4.5's greedy-whitespace policy): never reduce
// `factor -> factor_repetition atom factor_repetition` (the no-lookahead
// Factor alternative) while the lookahead is still a tilde, forcing the
// parser to keep shifting tildes into the trailing FactorRepetition instead
// of closing the Factor early.
func ShouldReduce(rule grammar.Rule, lookahead *symtab.Terminal) bool {
	if lookahead == nil || normalize(lookahead.Name()) != normalize(TTilde) {
		return true
	}
	if normalize(rule.LHS.Name()) != normalize(NTFactor) {
		return true
	}
	if len(rule.RHS) != 3 {
		return true
	}
	want := []string{NTFactorRepetition, NTAtom, NTFactorRepetition}
	for i, sym := range rule.RHS {
		if sym.IsTerminal || normalize(sym.Name()) != normalize(want[i]) {
			return true
		}
	}
	return false
}
