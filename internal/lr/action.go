package lr

import "github.com/dekarrin/ebnfgen/internal/grammar"

// ActionType discriminates the four LR actions a parse table cell can hold.
type ActionType int

const (
	// ActionError means no defined action for (state, terminal): a syntax
	// error.
	ActionError ActionType = iota
	ActionShift
	ActionReduce
	ActionAccept
)

func (t ActionType) String() string {
	switch t {
	case ActionShift:
		return "shift"
	case ActionReduce:
		return "reduce"
	case ActionAccept:
		return "accept"
	default:
		return "error"
	}
}

// Action is one parse-table cell: either Shift to State, Reduce by Rule, or
// Accept (ActionError's zero value means "undefined").
type Action struct {
	Type  ActionType
	State int
	Rule  grammar.Rule
}
