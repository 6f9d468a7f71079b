package lr

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dekarrin/rosed"
)

// State is a single row of the parse table, per spec.md §3's LR State: a
// mapping from terminal name to action, a distinguished eof-action slot,
// and a mapping from non-terminal name to next state (goto). Index is the
// state's stable position in Table.States.
type State struct {
	Index     int
	Actions   map[string]Action // terminal name -> action
	EOFAction Action
	Goto      map[string]int // non-terminal name -> state index
}

// Table is the built LALR(1) parse table. State 0 is always the initial
// state.
type Table struct {
	States []State
}

// Initial returns the starting state index.
func (t *Table) Initial() int { return 0 }

// Action returns the action for (state, terminal), or the zero-value
// ActionError action if none is defined.
func (t *Table) Action(state int, terminal string) Action {
	return t.States[state].Actions[terminal]
}

// EOFAction returns the eof-slot action for state.
func (t *Table) EOFAction(state int) Action {
	return t.States[state].EOFAction
}

// Goto returns the next state for (state, nonTerminal), and whether one is
// defined.
func (t *Table) Goto(state int, nonTerminal string) (int, bool) {
	s, ok := t.States[state].Goto[nonTerminal]
	return s, ok
}

// ExpectedTerminals returns every terminal name with a defined (non-error)
// action in state, sorted, for use in "expected X, Y, and Z" diagnostics
// (spec.md §7's SyntaxError).
func (t *Table) ExpectedTerminals(state int) []string {
	var names []string
	for name, a := range t.States[state].Actions {
		if a.Type != ActionError {
			names = append(names, name)
		}
	}
	if t.States[state].EOFAction.Type != ActionError {
		names = append(names, "EOF")
	}
	sort.Strings(names)
	return names
}

// String renders the table as an ASCII grid: build a 2D []string and hand
// it to rosed for layout.
func (t *Table) String() string {
	termSet := map[string]bool{}
	ntSet := map[string]bool{}
	for _, st := range t.States {
		for name := range st.Actions {
			termSet[name] = true
		}
		for name := range st.Goto {
			ntSet[name] = true
		}
	}
	terms := sortedKeys(termSet)
	nts := sortedKeys(ntSet)

	header := append([]string{"state"}, terms...)
	header = append(header, nts...)

	data := [][]string{header}
	for _, st := range t.States {
		row := []string{fmt.Sprintf("%d", st.Index)}
		for _, term := range terms {
			row = append(row, cellString(st.Actions[term]))
		}
		for _, nt := range nts {
			if g, ok := st.Goto[nt]; ok {
				row = append(row, fmt.Sprintf("%d", g))
			} else {
				row = append(row, "")
			}
		}
		data = append(data, row)
	}

	return rosed.Edit("").
		InsertTableOpts(0, data, 20, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}

func cellString(a Action) string {
	switch a.Type {
	case ActionShift:
		return fmt.Sprintf("s%d", a.State)
	case ActionReduce:
		return fmt.Sprintf("r(%s)", strings.TrimSpace(a.Rule.String()))
	case ActionAccept:
		return "acc"
	default:
		return ""
	}
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
