// Package grammar holds the Grammar Rule Set data model: productions over
// terminal and non-terminal symbols, plus the reachability/reducedness
// validation spec.md §3 requires of any rule set handed to the table
// builder.
package grammar

import (
	"fmt"

	"github.com/dekarrin/ebnfgen/internal/symtab"
)

// Symbol is either a Terminal or a NonTerminal appearing in a rule's
// right-hand side. Exactly one of Term/NonTerm is meaningful, selected by
// IsTerminal.
type Symbol struct {
	IsTerminal bool
	Term       symtab.Terminal
	NonTerm    symtab.NonTerminal
}

// T wraps a Terminal as a Symbol.
func T(t symtab.Terminal) Symbol { return Symbol{IsTerminal: true, Term: t} }

// NT wraps a NonTerminal as a Symbol.
func NT(nt symtab.NonTerminal) Symbol { return Symbol{IsTerminal: false, NonTerm: nt} }

// Name returns the underlying symbol's interned name, regardless of kind.
func (s Symbol) Name() string {
	if s.IsTerminal {
		return s.Term.Name()
	}
	return s.NonTerm.Name()
}

func (s Symbol) String() string { return s.Name() }

// Equal reports whether two symbols denote the same terminal or
// non-terminal.
func (s Symbol) Equal(o Symbol) bool {
	return s.IsTerminal == o.IsTerminal && s.Name() == o.Name()
}

// Rule is a single production: LHS -> RHS. An empty RHS is the
// epsilon-production.
type Rule struct {
	LHS symtab.NonTerminal
	RHS []Symbol
}

func (r Rule) String() string {
	out := r.LHS.Name() + " ->"
	if len(r.RHS) == 0 {
		out += " EPSILON"
	}
	for _, s := range r.RHS {
		out += " " + s.Name()
	}
	return out
}

// RuleSet is a start non-terminal plus an ordered list of productions.
// Rule declaration order matters: it is the tie-breaker for reduce/reduce
// conflicts with equal priority (spec.md §4.1 step 5).
type RuleSet struct {
	Start symtab.NonTerminal
	Rules []Rule
}

// RulesFor returns every rule whose LHS is nt, in declaration order.
func (rs *RuleSet) RulesFor(nt symtab.NonTerminal) []Rule {
	var out []Rule
	for _, r := range rs.Rules {
		if r.LHS.Name() == nt.Name() {
			out = append(out, r)
		}
	}
	return out
}

// NonTerminals returns the set of distinct LHS non-terminals, in first-seen
// order.
func (rs *RuleSet) NonTerminals() []symtab.NonTerminal {
	seen := map[string]bool{}
	var out []symtab.NonTerminal
	for _, r := range rs.Rules {
		if !seen[r.LHS.Name()] {
			seen[r.LHS.Name()] = true
			out = append(out, r.LHS)
		}
	}
	return out
}

// Validate checks the invariants spec.md §3 requires: the start symbol has
// at least one production, and every non-terminal reachable from it appears
// as some rule's LHS (no dangling references), and the whole rule set is
// reduced (no non-terminal is unreachable from start).
func (rs *RuleSet) Validate(tab *symtab.Table) error {
	if len(rs.RulesFor(rs.Start)) == 0 {
		return fmt.Errorf("start symbol %q has no productions", rs.Start.Name())
	}

	lhsSet := map[string]bool{}
	for _, r := range rs.Rules {
		lhsSet[r.LHS.Name()] = true
	}

	// reachability from start, BFS over RHS non-terminal references
	reachable := map[string]bool{rs.Start.Name(): true}
	queue := []string{rs.Start.Name()}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, r := range rs.Rules {
			if r.LHS.Name() != cur {
				continue
			}
			for _, sym := range r.RHS {
				if sym.IsTerminal {
					if !tab.HasTerminal(sym.Name()) {
						return fmt.Errorf("rule %s references undefined terminal %q", r, sym.Name())
					}
					continue
				}
				if !lhsSet[sym.Name()] {
					return fmt.Errorf("rule %s references undefined non-terminal %q", r, sym.Name())
				}
				if !reachable[sym.Name()] {
					reachable[sym.Name()] = true
					queue = append(queue, sym.Name())
				}
			}
		}
	}

	for nt := range lhsSet {
		if !reachable[nt] {
			return fmt.Errorf("non-terminal %q is unreachable from start %q", nt, rs.Start.Name())
		}
	}

	return nil
}
