package symtab

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_New_HasReservedTerminals(t *testing.T) {
	assert := assert.New(t)

	tab := New()

	assert.True(tab.HasTerminal(EOFName))
	assert.True(tab.HasTerminal(UnrecognizedName))
	assert.Equal(EOF, tab.Terminal(EOFName))
	assert.Equal(Unrecognized, tab.Terminal(UnrecognizedName))
}

func Test_Terminal_InternsOnFirstUse(t *testing.T) {
	assert := assert.New(t)

	tab := New()

	assert.False(tab.HasTerminal("NUMBER"))
	first := tab.Terminal("NUMBER")
	assert.True(tab.HasTerminal("NUMBER"))

	second := tab.Terminal("NUMBER")
	assert.Equal(first, second)
	assert.Equal("NUMBER", first.Name())
}

func Test_NonTerminal_InternsOnFirstUse(t *testing.T) {
	assert := assert.New(t)

	tab := New()

	assert.False(tab.HasNonTerminal("expr"))
	first := tab.NonTerminal("expr")
	assert.True(tab.HasNonTerminal("expr"))

	second := tab.NonTerminal("expr")
	assert.Equal(first, second)
	assert.Equal("expr", first.Name())
}

func Test_Terminal_NonTerminal_NamesAreIndependentNamespaces(t *testing.T) {
	assert := assert.New(t)

	tab := New()

	term := tab.Terminal("list")
	nonTerm := tab.NonTerminal("list")

	assert.Equal("list", term.Name())
	assert.Equal("list", nonTerm.Name())
	assert.True(tab.HasTerminal("list"))
	assert.True(tab.HasNonTerminal("list"))
}

func Test_TerminalNames_IncludesReservedAndInterned(t *testing.T) {
	assert := assert.New(t)

	tab := New()
	tab.Terminal("PLUS")
	tab.Terminal("NUMBER")

	names := tab.TerminalNames()
	assert.Contains(names, EOFName)
	assert.Contains(names, UnrecognizedName)
	assert.Contains(names, "PLUS")
	assert.Contains(names, "NUMBER")
	assert.Len(names, 4)
}

func Test_Terminal_String(t *testing.T) {
	assert := assert.New(t)
	tab := New()
	num := tab.Terminal("NUMBER")
	assert.Equal("NUMBER", num.String())
}
