package lr

import (
	"testing"

	"github.com/dekarrin/ebnfgen/internal/grammar"
	"github.com/dekarrin/ebnfgen/internal/lex"
	"github.com/dekarrin/ebnfgen/internal/symtab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sumGrammar builds "expr -> expr PLUS NUMBER | NUMBER", the smallest rule
// set with a genuine left-recursive reduce to exercise the builder and
// driver against.
func sumGrammar(tab *symtab.Table) *grammar.RuleSet {
	exprNT := tab.NonTerminal("expr")
	plus := tab.Terminal("PLUS")
	number := tab.Terminal("NUMBER")

	return &grammar.RuleSet{
		Start: exprNT,
		Rules: []grammar.Rule{
			{LHS: exprNT, RHS: []grammar.Symbol{grammar.NT(exprNT), grammar.T(plus), grammar.T(number)}},
			{LHS: exprNT, RHS: []grammar.Symbol{grammar.T(number)}},
		},
	}
}

func sumTokenRules(tab *symtab.Table) *lex.RuleSet {
	return &lex.RuleSet{Rules: []lex.Rule{
		{Kind: tab.Terminal("WS"), Pattern: `\s+`, Skip: true},
		{Kind: tab.Terminal("NUMBER"), Pattern: `[0-9]+`},
		{Kind: tab.Terminal("PLUS"), Pattern: `\+`},
	}}
}

func Test_Build_ProducesWorkingTable(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	tab := symtab.New()
	rs := sumGrammar(tab)

	table, err := Build(rs, tab, DefaultShouldReduce, DefaultPriorityOf)
	require.NoError(err)
	assert.NotEmpty(table.States)
}

func Test_Build_UndefinedStartProductionsRejected(t *testing.T) {
	assert := assert.New(t)

	tab := symtab.New()
	exprNT := tab.NonTerminal("expr")
	rs := &grammar.RuleSet{Start: exprNT}

	_, err := Build(rs, tab, DefaultShouldReduce, DefaultPriorityOf)
	assert.Error(err)
}

func Test_Driver_Parse_WithDefaultAction(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	tab := symtab.New()
	rs := sumGrammar(tab)
	table, err := Build(rs, tab, DefaultShouldReduce, DefaultPriorityOf)
	require.NoError(err)

	src, err := lex.NewSource("1 + 2 + 3", sumTokenRules(tab))
	require.NoError(err)

	driver := NewDriver(table, &DefaultAction{})
	result, err := driver.Parse(src)
	require.NoError(err)

	tree, ok := result.(*ParseTree)
	require.True(ok)
	assert.Equal("expr", tree.NonTerm)
}

func Test_Driver_Parse_SyntaxError(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	tab := symtab.New()
	rs := sumGrammar(tab)
	table, err := Build(rs, tab, DefaultShouldReduce, DefaultPriorityOf)
	require.NoError(err)

	src, err := lex.NewSource("1 + + 2", sumTokenRules(tab))
	require.NoError(err)

	driver := NewDriver(table, &DefaultAction{})
	_, err = driver.Parse(src)
	assert.Error(err)
}

// countingAction is a minimal custom SemanticAction exercising the
// plug-in-any-type-with-the-four-callbacks contract spec.md §4.3 promises,
// counting how many NUMBER tokens were shifted.
type countingAction struct {
	shifts int
}

func (a *countingAction) OnShift(tok lex.Token) {
	if tok.Kind.Name() == "NUMBER" {
		a.shifts++
	}
}

func (a *countingAction) OnReduce(rule grammar.Rule, children []any) any { return nil }

func (a *countingAction) OnAccept(value any) (ParseResult, error) { return a.shifts, nil }

func (a *countingAction) OnError(tok lex.Token, expected []string) error {
	return assert.AnError
}

func Test_Driver_Parse_CustomSemanticAction(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	tab := symtab.New()
	rs := sumGrammar(tab)
	table, err := Build(rs, tab, DefaultShouldReduce, DefaultPriorityOf)
	require.NoError(err)

	src, err := lex.NewSource("1 + 2 + 3 + 4", sumTokenRules(tab))
	require.NoError(err)

	action := &countingAction{}
	driver := NewDriver(table, action)
	result, err := driver.Parse(src)
	require.NoError(err)
	assert.Equal(4, result)
}

func Test_Table_String_NotEmpty(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	tab := symtab.New()
	rs := sumGrammar(tab)
	table, err := Build(rs, tab, DefaultShouldReduce, DefaultPriorityOf)
	require.NoError(err)

	assert.NotEmpty(table.String())
}
