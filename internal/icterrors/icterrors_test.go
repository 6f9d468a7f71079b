package icterrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Lexical_FormatsSpanAndMessage(t *testing.T) {
	assert := assert.New(t)
	span := &Span{Line: 2, Column: 5}
	err := Lexical(span, "no rule matches %q", "@@@")
	assert.Equal(`lexical error at 2:5: no rule matches "@@@"`, err.Error())
}

func Test_Syntax_WithoutSpan(t *testing.T) {
	assert := assert.New(t)
	err := Syntax(nil, "unexpected end of input")
	assert.Equal("syntax error: unexpected end of input", err.Error())
}

func Test_WrapGrammar_PreservesUnwrap(t *testing.T) {
	assert := assert.New(t)
	inner := errors.New("boom")
	err := WrapGrammar(inner, "invalid rule set")
	assert.Equal("grammar error: invalid rule set", err.Error())
	assert.True(errors.Is(err, inner))
}

func Test_Classification_NamesOffendingSymbol(t *testing.T) {
	assert := assert.New(t)
	err := Classification("NUMBER", "mixes regex and literal alternatives")
	assert.Contains(err.Error(), `"NUMBER"`)
	assert.Contains(err.Error(), "mixes regex and literal alternatives")
}
