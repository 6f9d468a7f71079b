package lr

import (
	"github.com/dekarrin/ebnfgen/internal/grammar"
	"github.com/dekarrin/ebnfgen/internal/icterrors"
	"github.com/dekarrin/ebnfgen/internal/lex"
)

// ParseResult is the opaque value on_accept returns (spec.md §6.3).
type ParseResult = any

// SemanticAction is the four-callback capability set spec.md §4.3/§9
// models: "any type providing them plugs into the driver... avoid a
// base-class hierarchy." Implementations are plugged in as plain
// interface values, dynamically dispatched by the driver.
type SemanticAction interface {
	// OnShift observes a consumed terminal, in source order.
	OnShift(tok lex.Token)

	// OnReduce observes a completed production. children holds whatever
	// each child production pushed via OnShift/OnReduce/passthrough, in
	// left-to-right order. Its return value becomes this production's own
	// contribution to its parent's children slice.
	OnReduce(rule grammar.Rule, children []any) any

	// OnAccept returns the final parse result, invoked exactly once, given
	// whatever the reduce that built the start symbol produced.
	OnAccept(value any) (ParseResult, error)

	// OnError builds a diagnostic for a token with no defined action.
	OnError(tok lex.Token, expected []string) error
}

// stackValue is what the driver's value stack actually holds per entry:
// either a shifted token or whatever the action's OnReduce returned for a
// completed production, discriminated the same way a tagged union would
// be in a language with sum types.
type stackValue struct {
	isToken bool
	token   lex.Token
	value   any
}

// Driver runs the LR-parsing algorithm (dragon-book Algorithm 4.44) over a
// built Table and a token Source, dispatching every shift/reduce/accept to
// an arbitrary pluggable SemanticAction per spec.md §4.3/§6.3/§9.
type Driver struct {
	table  *Table
	action SemanticAction
}

// NewDriver returns a Driver bound to table and action.
func NewDriver(table *Table, action SemanticAction) *Driver {
	return &Driver{table: table, action: action}
}

// Parse drives source to completion, returning whatever OnAccept returns,
// or the error OnError returns, unchanged, on the first undefined action.
func (d *Driver) Parse(source lex.Source) (ParseResult, error) {
	var stateStack []int
	var valueStack []stackValue
	stateStack = append(stateStack, d.table.Initial())

	tok, err := source.Next()
	if err != nil {
		return nil, err
	}
	tokensConsumed := 1

	for {
		s := stateStack[len(stateStack)-1]

		var action Action
		if tok.IsEOF() {
			action = d.table.EOFAction(s)
		} else {
			action = d.table.Action(s, tok.Kind.Name())
		}

		switch action.Type {
		case ActionShift:
			d.action.OnShift(tok)
			stateStack = append(stateStack, action.State)
			valueStack = append(valueStack, stackValue{isToken: true, token: tok})

			tok, err = source.Next()
			if err != nil {
				return nil, err
			}
			tokensConsumed++

		case ActionReduce:
			n := len(action.Rule.RHS)
			var children []any
			if n > 0 {
				popped := valueStack[len(valueStack)-n:]
				valueStack = valueStack[:len(valueStack)-n]
				stateStack = stateStack[:len(stateStack)-n]
				children = make([]any, n)
				for i, sv := range popped {
					if sv.isToken {
						children[i] = sv.token
					} else {
						children[i] = sv.value
					}
				}
			}

			produced := d.action.OnReduce(action.Rule, children)

			s2 := stateStack[len(stateStack)-1]
			next, ok := d.table.Goto(s2, action.Rule.LHS.Name())
			if !ok {
				return nil, icterrors.Grammar("no goto entry for state %d on %q", s2, action.Rule.LHS.Name())
			}
			stateStack = append(stateStack, next)
			valueStack = append(valueStack, stackValue{value: produced})

		case ActionAccept:
			var top any
			if len(valueStack) > 0 {
				top = valueStack[len(valueStack)-1].value
			}
			result, err := d.action.OnAccept(top)
			if err != nil {
				return nil, err
			}
			return result, nil

		default:
			expected := d.table.ExpectedTerminals(s)
			return nil, d.action.OnError(tok, expected)
		}
	}
}
