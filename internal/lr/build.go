// Package lr implements the LALR(1) Table Builder and LR Driver: the
// "hard core" of spec.md §4.1/§4.2. The builder follows the dragon-book's
// Algorithm 4.59 ("easy, space-consuming") approach: construct the full
// canonical LR(1) collection via closure/goto, then merge states sharing
// an LR(0) core, unioning lookaheads. The more efficient kernel-only
// construction (Algorithm 4.62/4.63) is not implemented; the full
// collection is cheap enough at this grammar scale and much easier to get
// right.
package lr

import (
	"fmt"
	"sort"

	"github.com/dekarrin/ebnfgen/internal/grammar"
	"github.com/dekarrin/ebnfgen/internal/icterrors"
	"github.com/dekarrin/ebnfgen/internal/symtab"
)

// ShouldReduce is the disambiguation hook spec.md §4.1 requires: called on
// a shift/reduce conflict with the reduce candidate's RHS and the current
// lookahead (nil means "end of input was being considered" -- in practice
// this builder always supplies the terminal; EOF is never shifted, so it
// never reaches this hook). Returning
// false resolves the conflict in favor of shift; returning true does not
// silently prefer reduce, it marks the conflict as still unresolved (see
// Build's conflict collection below) unless there is no competing shift.
type ShouldReduce func(rule grammar.Rule, lookahead *symtab.Terminal) bool

// PriorityOf breaks reduce/reduce ties: the candidate with the highest
// value wins; if still tied, the rule declared earlier in the RuleSet
// wins.
type PriorityOf func(rule grammar.Rule, lookahead *symtab.Terminal) int

// DefaultShouldReduce always permits reduce, so the only way a
// shift/reduce conflict is silent is the caller naming a real
// disambiguation (see internal/ebnf's greedy-whitespace hook).
func DefaultShouldReduce(grammar.Rule, *symtab.Terminal) bool { return true }

// DefaultPriorityOf assigns every candidate the same priority, so
// reduce/reduce ties fall through to declaration order.
func DefaultPriorityOf(grammar.Rule, *symtab.Terminal) int { return 0 }

// AugmentedStartName is the synthesized non-terminal name for the S' ->
// start EOF augmenting rule (spec.md §4.1 step 1).
const AugmentedStartName = "$Start"

type lr0Item struct {
	Rule grammar.Rule
	Dot  int
}

func (it lr0Item) atEnd() bool { return it.Dot >= len(it.Rule.RHS) }

func (it lr0Item) dotSymbol() (grammar.Symbol, bool) {
	if it.atEnd() {
		return grammar.Symbol{}, false
	}
	return it.Rule.RHS[it.Dot], true
}

type lr1Item struct {
	Core lr0Item
	La   string // terminal name
}

func symKey(s grammar.Symbol) string {
	if s.IsTerminal {
		return "T:" + s.Name()
	}
	return "N:" + s.Name()
}

func ruleKey(r grammar.Rule) string {
	return r.String()
}

// Build constructs a LALR(1) Table from rs, or returns a GrammarError.
// Validation stops at the first undefined symbol, missing start, or
// unreachable non-terminal; unresolved conflicts are all collected into one
// error. Failures are total: no partial table is ever returned.
func Build(rs *grammar.RuleSet, tab *symtab.Table, shouldReduce ShouldReduce, priorityOf PriorityOf) (*Table, error) {
	if shouldReduce == nil {
		shouldReduce = DefaultShouldReduce
	}
	if priorityOf == nil {
		priorityOf = DefaultPriorityOf
	}
	if err := rs.Validate(tab); err != nil {
		return nil, icterrors.WrapGrammar(err, "invalid rule set")
	}

	first, nullable := firstSets(rs, tab)

	augStart := tab.NonTerminal(AugmentedStartName)
	augRule := grammar.Rule{LHS: augStart, RHS: []grammar.Symbol{grammar.NT(rs.Start), grammar.T(symtab.EOF)}}

	declIndex := map[string]int{}
	for i, r := range rs.Rules {
		declIndex[ruleKey(r)] = i
	}
	declIndex[ruleKey(augRule)] = -1 // sorts before everything

	closureFn := func(items []lr1Item) []lr1Item {
		return closure(items, rs, first, nullable)
	}

	startItem := lr1Item{Core: lr0Item{Rule: augRule, Dot: 0}, La: symtab.EOFName}
	start := closureFn([]lr1Item{startItem})

	type canonState struct {
		items []lr1Item
	}
	states := []canonState{{items: start}}
	stateIndex := map[string]int{fullKey(start): 0}
	transitions := []map[string]string{{}} // per state: symKey -> ... filled below
	transTarget := []map[string]int{{}}

	worklist := []int{0}
	for len(worklist) > 0 {
		i := worklist[0]
		worklist = worklist[1:]

		symbols := outgoingSymbols(states[i].items)
		for _, sym := range symbols {
			g := gotoSet(states[i].items, sym)
			if len(g) == 0 {
				continue
			}
			cg := closureFn(g)
			key := fullKey(cg)
			if idx, ok := stateIndex[key]; ok {
				transTarget[i][symKeyFromStr(sym)] = idx
				continue
			}
			idx := len(states)
			states = append(states, canonState{items: cg})
			stateIndex[key] = idx
			transitions = append(transitions, map[string]string{})
			transTarget = append(transTarget, map[string]int{})
			transTarget[i][symKeyFromStr(sym)] = idx
			worklist = append(worklist, idx)
		}
	}

	// merge by LR0 core, in first-seen order so state 0 stays state 0
	coreOrder := []string{}
	coreSeen := map[string]bool{}
	coreOf := make([]string, len(states))
	for i, st := range states {
		c := coreKey(st.items)
		coreOf[i] = c
		if !coreSeen[c] {
			coreSeen[c] = true
			coreOrder = append(coreOrder, c)
		}
	}
	mergedIndexOf := map[int]int{}
	groupIndexOf := map[string]int{}
	for gi, c := range coreOrder {
		groupIndexOf[c] = gi
	}
	for i := range states {
		mergedIndexOf[i] = groupIndexOf[coreOf[i]]
	}

	type mergedLA map[lr0Item]map[string]bool
	mergedItems := make([]mergedLA, len(coreOrder))
	for gi := range mergedItems {
		mergedItems[gi] = mergedLA{}
	}
	for i, st := range states {
		gi := mergedIndexOf[i]
		for _, it := range st.items {
			if mergedItems[gi][it.Core] == nil {
				mergedItems[gi][it.Core] = map[string]bool{}
			}
			mergedItems[gi][it.Core][it.La] = true
		}
	}

	mergedTrans := make([]map[string]int, len(coreOrder))
	for gi := range mergedTrans {
		mergedTrans[gi] = map[string]int{}
	}
	for i := range states {
		gi := mergedIndexOf[i]
		for sym, j := range transTarget[i] {
			gj := mergedIndexOf[j]
			if existing, ok := mergedTrans[gi][sym]; ok && existing != gj {
				return nil, icterrors.Grammar("grammar is not LALR(1): inconsistent state merge on %q", sym)
			}
			mergedTrans[gi][sym] = gj
		}
	}

	tableStates := make([]State, len(coreOrder))
	var conflicts []string

	for gi := range coreOrder {
		st := State{Index: gi, Actions: map[string]Action{}, Goto: map[string]int{}}

		shiftFor := map[string]int{} // terminal name -> target state
		for sym, target := range mergedTrans[gi] {
			kind, name := splitSymKey(sym)
			if kind == "N" {
				st.Goto[name] = target
				continue
			}
			shiftFor[name] = target
		}

		reduceFor := map[string][]grammar.Rule{}
		var eofReduces []grammar.Rule
		accept := false
		for it, las := range mergedItems[gi] {
			// spec.md §4.1 step 4: the item `S' -> start . EOF` (dot
			// immediately before EOF, not yet at end) is what records
			// Accept in the eof slot -- EOF is never shifted, and the
			// augmented rule is never actually reduced.
			if it.Rule.LHS.Name() == AugmentedStartName && !it.atEnd() {
				if sym, ok := it.dotSymbol(); ok && sym.IsTerminal && sym.Name() == symtab.EOFName {
					accept = true
				}
				continue
			}
			if !it.atEnd() {
				continue
			}
			for la := range las {
				if la == symtab.EOFName {
					eofReduces = append(eofReduces, it.Rule)
				} else {
					reduceFor[la] = append(reduceFor[la], it.Rule)
				}
			}
		}

		for name, reduces := range reduceFor {
			term := tab.Terminal(name)
			shiftTarget, hasShift := shiftFor[name]
			action, conflict := resolveCell(reduces, hasShift, shiftTarget, term, declIndex, shouldReduce, priorityOf)
			if conflict != "" {
				conflicts = append(conflicts, fmt.Sprintf("state %d, terminal %q: %s", gi, name, conflict))
			}
			st.Actions[name] = action
		}
		for name, target := range shiftFor {
			if _, already := st.Actions[name]; !already {
				st.Actions[name] = Action{Type: ActionShift, State: target}
			}
		}

		if accept {
			st.EOFAction = Action{Type: ActionAccept}
		} else {
			eofTerm := symtab.EOF
			action, conflict := resolveCell(eofReduces, false, 0, eofTerm, declIndex, shouldReduce, priorityOf)
			if conflict != "" {
				conflicts = append(conflicts, fmt.Sprintf("state %d, EOF: %s", gi, conflict))
			}
			st.EOFAction = action
		}

		tableStates[gi] = st
	}

	if len(conflicts) > 0 {
		sort.Strings(conflicts)
		msg := "unresolved LALR(1) conflicts:\n"
		for _, c := range conflicts {
			msg += "  - " + c + "\n"
		}
		return nil, icterrors.Grammar("%s", msg)
	}

	return &Table{States: tableStates}, nil
}

// resolveCell applies spec.md §4.1 step 5's conflict-resolution policy to
// one (state, terminal) cell. It returns the resolved action and, if the
// conflict could not be silently resolved (shouldReduce said true while a
// shift also existed), a human-readable description naming the competing
// items -- per spec.md §8.4 scenario 6, this is reported even though a
// deterministic (if arbitrary) action is still produced.
func resolveCell(reduces []grammar.Rule, hasShift bool, shiftTarget int, term symtab.Terminal, declIndex map[string]int, shouldReduce ShouldReduce, priorityOf PriorityOf) (Action, string) {
	if len(reduces) == 0 {
		if hasShift {
			return Action{Type: ActionShift, State: shiftTarget}, ""
		}
		return Action{Type: ActionError}, ""
	}

	best := pickReduce(reduces, term, declIndex, priorityOf)

	if !hasShift {
		return Action{Type: ActionReduce, Rule: best}, ""
	}

	// shift/reduce: every candidate must explicitly defer to shift for the
	// conflict to be silently resolved.
	var unresolved []grammar.Rule
	for _, r := range reduces {
		if shouldReduce(r, &term) {
			unresolved = append(unresolved, r)
		}
	}
	if len(unresolved) == 0 {
		return Action{Type: ActionShift, State: shiftTarget}, ""
	}

	sort.Slice(unresolved, func(i, j int) bool {
		return declIndex[ruleKey(unresolved[i])] < declIndex[ruleKey(unresolved[j])]
	})
	desc := fmt.Sprintf("shift to state %d vs reduce by %s", shiftTarget, unresolved[0])
	for _, r := range unresolved[1:] {
		desc += fmt.Sprintf(" (also reduce by %s)", r)
	}
	return Action{Type: ActionReduce, Rule: pickReduce(unresolved, term, declIndex, priorityOf)}, desc
}

func pickReduce(reduces []grammar.Rule, term symtab.Terminal, declIndex map[string]int, priorityOf PriorityOf) grammar.Rule {
	best := reduces[0]
	bestP := priorityOf(best, &term)
	for _, r := range reduces[1:] {
		p := priorityOf(r, &term)
		if p > bestP || (p == bestP && declIndex[ruleKey(r)] < declIndex[ruleKey(best)]) {
			best, bestP = r, p
		}
	}
	return best
}

// --- FIRST/NULLABLE, closure, goto ---

func firstSets(rs *grammar.RuleSet, tab *symtab.Table) (map[string]map[string]bool, map[string]bool) {
	first := map[string]map[string]bool{}
	for _, name := range tab.TerminalNames() {
		first[name] = map[string]bool{name: true}
	}
	nullable := map[string]bool{}
	for _, nt := range rs.NonTerminals() {
		first[nt.Name()] = map[string]bool{}
	}

	changed := true
	for changed {
		changed = false
		for _, r := range rs.Rules {
			lhs := r.LHS.Name()
			seqFirst, seqNullable := firstOfSequence(r.RHS, first, nullable)
			for t := range seqFirst {
				if !first[lhs][t] {
					first[lhs][t] = true
					changed = true
				}
			}
			if seqNullable && !nullable[lhs] {
				nullable[lhs] = true
				changed = true
			}
		}
	}
	return first, nullable
}

// firstOfSequence computes FIRST of a symbol sequence and whether the
// whole sequence is nullable.
func firstOfSequence(seq []grammar.Symbol, first map[string]map[string]bool, nullable map[string]bool) (map[string]bool, bool) {
	out := map[string]bool{}
	for _, sym := range seq {
		name := sym.Name()
		for t := range first[name] {
			out[t] = true
		}
		isNullable := sym.IsTerminal == false && nullable[name]
		if !isNullable {
			return out, false
		}
	}
	return out, true
}

// closure completes a kernel item set under epsilon-moves (dragon-book
// closure operation), propagating lookaheads through FIRST(beta a).
func closure(items []lr1Item, rs *grammar.RuleSet, first map[string]map[string]bool, nullable map[string]bool) []lr1Item {
	set := map[lr1Item]bool{}
	var queue []lr1Item
	for _, it := range items {
		if !set[it] {
			set[it] = true
			queue = append(queue, it)
		}
	}

	for i := 0; i < len(queue); i++ {
		it := queue[i]
		sym, ok := it.Core.dotSymbol()
		if !ok || sym.IsTerminal {
			continue
		}
		beta := it.Core.Rule.RHS[it.Core.Dot+1:]
		betaFirst, betaNullable := firstOfSequence(beta, first, nullable)
		las := map[string]bool{}
		for t := range betaFirst {
			las[t] = true
		}
		if betaNullable {
			las[it.La] = true
		}
		for _, r := range rs.Rules {
			if r.LHS.Name() != sym.Name() {
				continue
			}
			for la := range las {
				ni := lr1Item{Core: lr0Item{Rule: r, Dot: 0}, La: la}
				if !set[ni] {
					set[ni] = true
					queue = append(queue, ni)
				}
			}
		}
	}
	return queue
}

// gotoSet advances the dot past symKey's symbol in every item of items.
func gotoSet(items []lr1Item, symKeyStr string) []lr1Item {
	kind, name := splitSymKey(symKeyStr)
	var out []lr1Item
	for _, it := range items {
		sym, ok := it.Core.dotSymbol()
		if !ok {
			continue
		}
		if (sym.IsTerminal && kind == "T" && sym.Name() == name) ||
			(!sym.IsTerminal && kind == "N" && sym.Name() == name) {
			out = append(out, lr1Item{Core: lr0Item{Rule: it.Core.Rule, Dot: it.Core.Dot + 1}, La: it.La})
		}
	}
	return out
}

// outgoingSymbols lists the symbols a state can goto/shift on. EOF is
// excluded: per spec.md §4.1 step 4, EOF is never shifted -- the item
// `S' -> start . EOF` is resolved directly into the eof slot's Accept
// action (see Build), not into a transition to a further state.
func outgoingSymbols(items []lr1Item) []string {
	seen := map[string]bool{}
	var out []string
	for _, it := range items {
		sym, ok := it.Core.dotSymbol()
		if !ok {
			continue
		}
		if sym.IsTerminal && sym.Name() == symtab.EOFName {
			continue
		}
		k := symKey(sym)
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func symKeyFromStr(s string) string { return s }

func splitSymKey(s string) (kind, name string) {
	return s[:1], s[2:]
}

func fullKey(items []lr1Item) string {
	strs := make([]string, len(items))
	for i, it := range items {
		strs[i] = fmt.Sprintf("%s|%d|%s", ruleKey(it.Core.Rule), it.Core.Dot, it.La)
	}
	sort.Strings(strs)
	out := ""
	for _, s := range strs {
		out += s + "\n"
	}
	return out
}

func coreKey(items []lr1Item) string {
	seen := map[string]bool{}
	var strs []string
	for _, it := range items {
		k := fmt.Sprintf("%s|%d", ruleKey(it.Core.Rule), it.Core.Dot)
		if !seen[k] {
			seen[k] = true
			strs = append(strs, k)
		}
	}
	sort.Strings(strs)
	out := ""
	for _, s := range strs {
		out += s + "\n"
	}
	return out
}
