package bootstrap

import (
	"testing"

	"github.com/dekarrin/ebnfgen/internal/lr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const arithGrammar = `
	@comment = /#.*/

	expr = term { ("+" | "-") term }
	term = factor { ("*" | "/") factor }
	factor = NUMBER | "(" expr ")"
	NUMBER = /[0-9]+/
`

func Test_Compile_Arithmetic(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	gen, err := Compile(arithGrammar)
	require.NoError(err)
	require.NotNil(gen)

	assert.True(gen.Symbols.HasNonTerminal("expr"))
	assert.True(gen.Symbols.HasNonTerminal("term"))
	assert.True(gen.Symbols.HasNonTerminal("factor"))
	assert.True(gen.Symbols.HasTerminal("NUMBER"))
	assert.Equal("expr", gen.Grammar.Start.Name())
}

func Test_Parse_Arithmetic(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	gen, err := Compile(arithGrammar)
	require.NoError(err)

	result, err := Parse(gen, "1 + 2 * (3 - 4)", &lr.DefaultAction{})
	require.NoError(err)

	tree, ok := result.(*lr.ParseTree)
	require.True(ok)
	assert.Equal("expr", tree.NonTerm)
}

func Test_Parse_Arithmetic_SyntaxError(t *testing.T) {
	require := require.New(t)

	gen, err := Compile(arithGrammar)
	require.NoError(err)

	_, err = Parse(gen, "1 + + 2", &lr.DefaultAction{})
	require.Error(err)
}

// Test_Bootstrap_SelfHosting covers spec.md §8.1's "Idempotent bootstrap":
// feeding the front-end its own meta-grammar as a "user grammar" must
// produce a GeneratorResult whose generated table still accepts that same
// meta-grammar text, which is exactly what the LeftIdentifier rewrite in
// rewriteLeftIdentifiers exists to make possible.
func Test_Bootstrap_SelfHosting(t *testing.T) {
	require := require.New(t)

	selfGrammar := `
		grammar = { directive | rule }
		directive = "@" IDENTIFIER "=" value
		value = LITERAL | REGEX | list
		list = IDENTIFIER { "," IDENTIFIER }
		rule = IDENTIFIER "=" expression
		expression = term { "|" term }
		term = factor { factor }
		factor = atom
		atom = LITERAL | IDENTIFIER | REGEX
		LITERAL = /"(?:[^"\\]|\\.)*"/
		REGEX = /\/(?:[^\/\\]|\\.)*\//
		IDENTIFIER = /[A-Za-z_][A-Za-z_0-9]*/
	`

	gen, err := Compile(selfGrammar)
	require.NoError(err)
	require.NotNil(gen)

	_, err = Parse(gen, selfGrammar, &lr.DefaultAction{})
	require.NoError(err)
}
