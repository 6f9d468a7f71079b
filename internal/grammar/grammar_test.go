package grammar

import (
	"testing"

	"github.com/dekarrin/ebnfgen/internal/symtab"
	"github.com/stretchr/testify/assert"
)

func Test_Symbol_Name_And_Equal(t *testing.T) {
	assert := assert.New(t)

	tab := symtab.New()
	num := T(tab.Terminal("NUMBER"))
	expr := NT(tab.NonTerminal("expr"))

	assert.Equal("NUMBER", num.Name())
	assert.Equal("expr", expr.Name())
	assert.True(num.Equal(T(tab.Terminal("NUMBER"))))
	assert.False(num.Equal(expr))
	assert.False(num.Equal(T(tab.Terminal("PLUS"))))
}

func Test_RuleSet_RulesFor_And_NonTerminals(t *testing.T) {
	assert := assert.New(t)

	tab := symtab.New()
	exprNT := tab.NonTerminal("expr")
	termNT := tab.NonTerminal("term")
	num := tab.Terminal("NUMBER")
	plus := tab.Terminal("PLUS")

	rs := &RuleSet{
		Start: exprNT,
		Rules: []Rule{
			{LHS: exprNT, RHS: []Symbol{NT(exprNT), T(plus), NT(termNT)}},
			{LHS: exprNT, RHS: []Symbol{NT(termNT)}},
			{LHS: termNT, RHS: []Symbol{T(num)}},
		},
	}

	assert.Len(rs.RulesFor(exprNT), 2)
	assert.Len(rs.RulesFor(termNT), 1)
	assert.Equal([]symtab.NonTerminal{exprNT, termNT}, rs.NonTerminals())
}

func Test_RuleSet_Validate(t *testing.T) {
	testCases := []struct {
		name      string
		build     func(tab *symtab.Table) *RuleSet
		expectErr bool
	}{
		{
			name: "valid rule set",
			build: func(tab *symtab.Table) *RuleSet {
				exprNT := tab.NonTerminal("expr")
				num := tab.Terminal("NUMBER")
				return &RuleSet{Start: exprNT, Rules: []Rule{{LHS: exprNT, RHS: []Symbol{T(num)}}}}
			},
			expectErr: false,
		},
		{
			name: "start symbol has no productions",
			build: func(tab *symtab.Table) *RuleSet {
				exprNT := tab.NonTerminal("expr")
				return &RuleSet{Start: exprNT}
			},
			expectErr: true,
		},
		{
			name: "unreachable non-terminal",
			build: func(tab *symtab.Table) *RuleSet {
				exprNT := tab.NonTerminal("expr")
				deadNT := tab.NonTerminal("dead")
				num := tab.Terminal("NUMBER")
				return &RuleSet{Start: exprNT, Rules: []Rule{
					{LHS: exprNT, RHS: []Symbol{T(num)}},
					{LHS: deadNT, RHS: []Symbol{T(num)}},
				}}
			},
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			tab := symtab.New()
			rs := tc.build(tab)
			err := rs.Validate(tab)
			if tc.expectErr {
				assert.Error(err)
			} else {
				assert.NoError(err)
			}
		})
	}
}
