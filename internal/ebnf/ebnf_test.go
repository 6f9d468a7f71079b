package ebnf

import (
	"testing"

	"github.com/dekarrin/ebnfgen/internal/grammar"
	"github.com/dekarrin/ebnfgen/internal/lex"
	"github.com/dekarrin/ebnfgen/internal/lr"
	"github.com/dekarrin/ebnfgen/internal/symtab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_GetMeta_BuildsOnce(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	m1, err := GetMeta()
	require.NoError(err)
	m2, err := GetMeta()
	require.NoError(err)

	assert.Same(m1, m2)
	assert.NotEmpty(m1.Table.States)
}

func Test_Normalize_FoldsCaseAndUnderscores(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(Normalize("factor_repetition"), Normalize("FactorRepetition"))
	assert.Equal(Normalize("factor_repetition"), Normalize("FACTOR_REPETITION"))
	assert.NotEqual(Normalize("factor"), Normalize("factor_repetition"))
}

func Test_ShouldReduce_GreedyWhitespace(t *testing.T) {
	assert := assert.New(t)

	tab := symtab.New()
	rule := grammar.Rule{
		LHS: tab.NonTerminal(NTFactor),
		RHS: []grammar.Symbol{
			grammar.NT(tab.NonTerminal(NTFactorRepetition)),
			grammar.NT(tab.NonTerminal(NTAtom)),
			grammar.NT(tab.NonTerminal(NTFactorRepetition)),
		},
	}
	tilde := tab.Terminal(TTilde)
	other := tab.Terminal(TComma)

	assert.False(ShouldReduce(rule, &tilde))
	assert.True(ShouldReduce(rule, &other))
	assert.True(ShouldReduce(rule, nil))
}

func Test_EndToEnd_ParsesSimpleGrammarToGeneratorResult(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	meta, err := GetMeta()
	require.NoError(err)

	grammarText := `
list = NUMBER { "," NUMBER }
NUMBER = /[0-9]+/
`

	src, err := lex.NewSource(grammarText, meta.TokenRules)
	require.NoError(err)
	pp := lex.NewPostProcessor(src, meta.Symbols.Terminal(TIdentifier), meta.Symbols.Terminal(TLeftIdentifier), meta.Symbols.Terminal(TEqual))

	driver := lr.NewDriver(meta.Table, NewGeneratorAction())
	result, err := driver.Parse(pp)
	require.NoError(err)

	gen, ok := result.(*GeneratorResult)
	require.True(ok)
	assert.Equal("list", gen.Grammar.Start.Name())
	assert.True(gen.Symbols.HasTerminal("NUMBER"))
	assert.NotEmpty(gen.TokenRules.Rules)
}

// parseGrammarText drives grammarText through Pass 1 (meta-grammar table +
// GeneratorAction), the same sequence Test_EndToEnd_ParsesSimpleGrammarToGeneratorResult
// already exercises, so every classify()-path test below goes through the
// same front door the bootstrap harness uses.
func parseGrammarText(t *testing.T, grammarText string) (*GeneratorResult, error) {
	t.Helper()

	meta, err := GetMeta()
	require.New(t).NoError(err)

	src, err := lex.NewSource(grammarText, meta.TokenRules)
	require.New(t).NoError(err)
	pp := lex.NewPostProcessor(src, meta.Symbols.Terminal(TIdentifier), meta.Symbols.Terminal(TLeftIdentifier), meta.Symbols.Terminal(TEqual))

	driver := lr.NewDriver(meta.Table, NewGeneratorAction())
	result, err := driver.Parse(pp)
	if err != nil {
		return nil, err
	}
	gen, ok := result.(*GeneratorResult)
	require.New(t).True(ok)
	return gen, nil
}

func Test_Classify_RedeclaringReservedTerminalIsClassificationError(t *testing.T) {
	assert := assert.New(t)

	_, err := parseGrammarText(t, `
grammar = EOF
EOF = /x/
`)
	assert.Error(err)

	_, err = parseGrammarText(t, `
grammar = Unrecognized
Unrecognized = "x"
`)
	assert.Error(err)
}

func Test_AggregateLiterals_EscapesHyphen(t *testing.T) {
	assert := assert.New(t)

	gen, err := parseGrammarText(t, `
op = "+" | "-" | "*"
grammar = op
`)
	assert.NoError(err)

	var pattern string
	for _, r := range gen.TokenRules.Rules {
		if r.Kind.Name() == "op" {
			pattern = r.Pattern
		}
	}
	assert.Equal(`(\+|\-|\*)`, pattern)
}
