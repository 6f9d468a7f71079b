package lex

import (
	"testing"

	"github.com/dekarrin/ebnfgen/internal/symtab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numberRules(tab *symtab.Table) *RuleSet {
	return &RuleSet{Rules: []Rule{
		{Kind: tab.Terminal("WS"), Pattern: `\s+`, Skip: true},
		{Kind: tab.Terminal("NUMBER"), Pattern: `[0-9]+`},
		{Kind: tab.Terminal("PLUS"), Pattern: `\+`},
	}}
}

func Test_Source_Next_SkipsAndTokenizes(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	tab := symtab.New()
	rules := numberRules(tab)

	src, err := NewSource("12 + 3", rules)
	require.NoError(err)

	tok1, err := src.Next()
	require.NoError(err)
	assert.Equal("NUMBER", tok1.Kind.Name())
	assert.Equal("12", tok1.Lexeme)

	tok2, err := src.Next()
	require.NoError(err)
	assert.Equal("PLUS", tok2.Kind.Name())

	tok3, err := src.Next()
	require.NoError(err)
	assert.Equal("NUMBER", tok3.Kind.Name())
	assert.Equal("3", tok3.Lexeme)

	tok4, err := src.Next()
	require.NoError(err)
	assert.True(tok4.IsEOF())
	assert.False(src.HasNext())
}

func Test_Source_Peek_DoesNotAdvance(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	tab := symtab.New()
	src, err := NewSource("42", numberRules(tab))
	require.NoError(err)

	peeked, err := src.Peek()
	require.NoError(err)
	assert.Equal("NUMBER", peeked.Kind.Name())

	again, err := src.Peek()
	require.NoError(err)
	assert.Equal(peeked, again)

	next, err := src.Next()
	require.NoError(err)
	assert.Equal(peeked, next)
}

func Test_Source_LongestMatchWins(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	tab := symtab.New()
	rules := &RuleSet{Rules: []Rule{
		{Kind: tab.Terminal("IDENT"), Pattern: `[a-z]+`},
		{Kind: tab.Terminal("KEYWORD_IF"), Pattern: `if`},
	}}

	src, err := NewSource("ifx", rules)
	require.NoError(err)

	tok, err := src.Next()
	require.NoError(err)
	assert.Equal("IDENT", tok.Kind.Name())
	assert.Equal("ifx", tok.Lexeme)
}

func Test_Source_UnrecognizedInput(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	tab := symtab.New()
	rules := &RuleSet{Rules: []Rule{{Kind: tab.Terminal("NUMBER"), Pattern: `[0-9]+`}}}

	src, err := NewSource("@@@", rules)
	require.NoError(err)

	tok, err := src.Next()
	require.Error(err)
	assert.Equal(symtab.UnrecognizedName, tok.Kind.Name())
}

func Test_PostProcessor_RetagsLeftIdentifier(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	tab := symtab.New()
	ident := tab.Terminal("Identifier")
	left := tab.Terminal("LeftIdentifier")
	equal := tab.Terminal("Equal")

	rules := &RuleSet{Rules: []Rule{
		{Kind: tab.Terminal("WS"), Pattern: `\s+`, Skip: true},
		{Kind: equal, Pattern: `=`},
		{Kind: ident, Pattern: `[a-zA-Z]+`},
	}}

	src, err := NewSource("rule = other", rules)
	require.NoError(err)

	pp := NewPostProcessor(src, ident, left, equal)

	tok1, err := pp.Next()
	require.NoError(err)
	assert.Equal("LeftIdentifier", tok1.Kind.Name())
	assert.Equal("rule", tok1.Lexeme)

	tok2, err := pp.Next()
	require.NoError(err)
	assert.Equal("Equal", tok2.Kind.Name())

	tok3, err := pp.Next()
	require.NoError(err)
	assert.Equal("Identifier", tok3.Kind.Name())
	assert.Equal("other", tok3.Lexeme)
}

func Test_RuleSet_Compiled_PriorityOrderOnTie(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	tab := symtab.New()
	rules := &RuleSet{Rules: []Rule{
		{Kind: tab.Terminal("KEYWORD_IF"), Pattern: `if`},
		{Kind: tab.Terminal("IDENT"), Pattern: `[a-z]+`},
	}}

	pattern, err := rules.Compiled()
	require.NoError(err)
	assert.True(pattern.MatchString("if"))

	loc := pattern.FindStringSubmatchIndex("if")
	require.NotNil(loc)
	assert.Equal([]int{0, 2}, loc[2:4])
	assert.Equal([]int{-1, -1}, loc[4:6])
}
