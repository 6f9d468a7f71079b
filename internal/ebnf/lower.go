package ebnf

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dekarrin/ebnfgen/internal/grammar"
	"github.com/dekarrin/ebnfgen/internal/icterrors"
	"github.com/dekarrin/ebnfgen/internal/lex"
	"github.com/dekarrin/ebnfgen/internal/lr"
	"github.com/dekarrin/ebnfgen/internal/symtab"
)

// ruleOccurrence is one "IDENTIFIER = expression" statement. A name may be
// defined by more than one occurrence; their terms are concatenated in
// declaration order, same as if they'd been written with "|" in one place.
type ruleOccurrence struct {
	expr *lr.ParseTree
}

// builder holds the state threaded through classification, lowering, and
// token-rule synthesis for a single user grammar.
type builder struct {
	tab *symtab.Table

	order    []string                     // LHS names, first-seen order
	occs     map[string][]ruleOccurrence   // LHS name -> its statements
	termRule map[string]*lex.Rule          // LHS name -> synthesized token rule, for terminal-classified names
	isTerm   map[string]bool               // LHS name -> classified terminal (vs non-terminal)

	anonTerms    map[string]symtab.Terminal // literal/regex pattern text -> interned anonymous terminal
	anonOrder    []string                   // pattern text, first-use order
	anonPatterns map[string]string          // anonymous terminal name -> regex pattern

	rules []grammar.Rule

	synthCounter int

	directives []Directive
}

// buildGeneratorResult walks the flat Grammar parse tree Pass 1 produced
// (root.Children is a sequence of Directive/Rule nodes, guaranteed flat by
// internal/lr's passthrough+flatten handling of the self-recursive Grammar
// non-terminal; a grammar with a single statement passes through as that
// Directive/Rule node itself) and lowers it into a GeneratorResult.
func buildGeneratorResult(root *lr.ParseTree) (*GeneratorResult, error) {
	b := &builder{
		tab:          symtab.New(),
		occs:         map[string][]ruleOccurrence{},
		termRule:     map[string]*lex.Rule{},
		isTerm:       map[string]bool{},
		anonTerms:    map[string]symtab.Terminal{},
		anonPatterns: map[string]string{},
	}

	if root != nil {
		stmts := root.Children
		if !root.IsTerminal && (root.NonTerm == NTDirective || root.NonTerm == NTRule) {
			stmts = []*lr.ParseTree{root}
		}
		for _, child := range stmts {
			if child.IsTerminal {
				continue
			}
			switch child.NonTerm {
			case NTDirective:
				d, err := b.readDirective(child)
				if err != nil {
					return nil, err
				}
				b.directives = append(b.directives, d)
			case NTRule:
				if err := b.recordRule(child); err != nil {
					return nil, err
				}
			}
		}
	}

	if len(b.order) == 0 {
		return nil, icterrors.Grammar("empty grammar: no rules defined")
	}

	if err := b.classify(); err != nil {
		return nil, err
	}

	if err := b.lowerAll(); err != nil {
		return nil, err
	}

	rs := &grammar.RuleSet{Rules: b.rules}
	start, err := electStart(rs)
	if err != nil {
		return nil, err
	}
	rs.Start = start

	tokenRules := b.buildTokenRules()

	return &GeneratorResult{
		Symbols:    b.tab,
		Grammar:    rs,
		TokenRules: tokenRules,
		Tree:       root,
		Directives: b.directives,
	}, nil
}

// recordRule registers one "IDENTIFIER = expression" statement, per
// spec.md §4.5's rule production: Children = [LeftIdentifier, Equal,
// Expression].
func (b *builder) recordRule(ruleNode *lr.ParseTree) error {
	if len(ruleNode.Children) < 3 {
		return icterrors.Grammar("malformed rule node")
	}
	name := ruleNode.Children[0].Lexeme
	expr := ruleNode.Children[2]

	if _, ok := b.occs[name]; !ok {
		b.order = append(b.order, name)
	}
	b.occs[name] = append(b.occs[name], ruleOccurrence{expr: expr})
	return nil
}

// readDirective parses "@" LeftIdentifier "=" value into a Directive.
func (b *builder) readDirective(node *lr.ParseTree) (Directive, error) {
	if len(node.Children) < 4 {
		return Directive{}, icterrors.Grammar("malformed directive node")
	}
	name := node.Children[1].Lexeme
	valueChild := node.Children[3]

	d := Directive{Name: name}
	switch {
	case valueChild.IsTerminal && valueChild.Terminal == TLiteral:
		s := unescapeLiteral(valueChild.Lexeme)
		d.Literal = &s
	case valueChild.IsTerminal && valueChild.Terminal == TRegex:
		s := unescapeRegexBody(valueChild.Lexeme)
		d.Regex = &s
	case !valueChild.IsTerminal && valueChild.NonTerm == NTList:
		d.Identifiers = identifierLexemes(valueChild)
	default:
		return Directive{}, icterrors.Grammar("directive %q has an unrecognized value", name)
	}
	return d, nil
}

// identifierLexemes extracts every Identifier-kind token from a List node,
// ignoring the interspersed Comma tokens List's listLike flattening leaves
// behind.
func identifierLexemes(list *lr.ParseTree) []string {
	var out []string
	for _, c := range list.Children {
		if c.IsTerminal && c.Terminal == TIdentifier {
			out = append(out, c.Lexeme)
		}
	}
	return out
}

// --- classification (spec.md §4.5 "Symbol classification") ---

// bareAtom reports whether term is a single factor whose atom is a bare
// LITERAL or REGEX token with no lookahead -- the shape that qualifies a
// defining name for terminal classification. Tildes around the atom are
// skipped by factorAtom and do not disqualify it.
func bareAtom(term *lr.ParseTree) (tok *lr.ParseTree, ok bool) {
	if len(term.Children) != 1 {
		return nil, false
	}
	factor := term.Children[0]
	if factor.IsTerminal || factor.NonTerm != NTFactor {
		return nil, false
	}
	atom, hasLookahead := factorAtom(factor)
	if hasLookahead || atom == nil || !atom.IsTerminal {
		return nil, false
	}
	if atom.Terminal != TLiteral && atom.Terminal != TRegex {
		return nil, false
	}
	return atom, true
}

// factorAtom finds the atom position within a Factor node's children,
// skipping inert tilde-repetition and lookahead children (Open Question (b):
// lookahead operators are parsed but never acted upon).
func factorAtom(factor *lr.ParseTree) (atom *lr.ParseTree, hasLookahead bool) {
	for _, c := range factor.Children {
		if !c.IsTerminal && c.NonTerm == NTFactorRepetition {
			continue
		}
		if !c.IsTerminal && c.NonTerm == NTLookahead {
			hasLookahead = true
			continue
		}
		atom = c
	}
	return atom, hasLookahead
}

func (b *builder) classify() error {
	for _, name := range b.order {
		if normalize(name) == normalize(symtab.EOFName) || normalize(name) == normalize(symtab.UnrecognizedName) {
			return icterrors.Classification(name, "%q redeclares the reserved terminal %q", name, name)
		}

		occs := b.occs[name]

		var literals []*lr.ParseTree
		var regexes []*lr.ParseTree
		allBare := true

		for _, occ := range occs {
			for _, term := range terms(occ.expr) {
				atom, ok := bareAtom(term)
				if !ok {
					allBare = false
					continue
				}
				if atom.Terminal == TLiteral {
					literals = append(literals, atom)
				} else {
					regexes = append(regexes, atom)
				}
			}
		}

		switch {
		case allBare && len(literals) > 0 && len(regexes) == 0:
			pattern := aggregateLiterals(literals)
			b.isTerm[name] = true
			b.termRule[name] = &lex.Rule{Kind: b.tab.Terminal(name), Pattern: pattern}

		case allBare && len(regexes) == 1 && len(literals) == 0:
			pattern := unescapeRegexBody(regexes[0].Lexeme)
			b.isTerm[name] = true
			b.termRule[name] = &lex.Rule{Kind: b.tab.Terminal(name), Pattern: pattern}

		case allBare && len(regexes) > 1 && len(literals) == 0:
			return icterrors.Classification(name, "terminal %q has more than one regex pattern", name)

		case allBare && len(regexes) >= 1 && len(literals) >= 1:
			return icterrors.Classification(name, "terminal %q mixes regex and literal alternatives", name)

		default:
			b.isTerm[name] = false
			b.tab.NonTerminal(name)
		}
	}
	return nil
}

// terms extracts the Term children of an Expression node, ignoring the
// interspersed Pipe tokens Expression's listLike flattening leaves behind.
func terms(expr *lr.ParseTree) []*lr.ParseTree {
	var out []*lr.ParseTree
	for _, c := range expr.Children {
		if !c.IsTerminal && c.NonTerm == NTTerm {
			out = append(out, c)
		}
	}
	// The default action wraps even a single-term expression in an
	// Expression node (Expression is list-like, not passthrough); a bare
	// Term node handed in directly is accepted as a one-term expression.
	if len(out) == 0 && !expr.IsTerminal && expr.NonTerm == NTTerm {
		out = append(out, expr)
	}
	return out
}

func aggregateLiterals(literals []*lr.ParseTree) string {
	parts := make([]string, len(literals))
	for i, l := range literals {
		parts[i] = escapeLiteralForRegex(unescapeLiteral(l.Lexeme))
	}
	return "(" + strings.Join(parts, "|") + ")"
}

// escapeLiteralForRegex is regexp.QuoteMeta plus "-": QuoteMeta leaves a
// bare hyphen unescaped since it is only special inside a character class;
// escaping it too makes `"+" | "-" | "*"` aggregate to `(\+|\-|\*)`.
// Letters, digits and other non-metacharacters are left unescaped.
func escapeLiteralForRegex(s string) string {
	return strings.ReplaceAll(regexp.QuoteMeta(s), "-", `\-`)
}

// --- lowering (EBNF -> BNF, spec.md §4.5 "Lowering") ---

func (b *builder) lowerAll() error {
	for _, name := range b.order {
		if b.isTerm[name] {
			continue
		}
		lhs := b.tab.NonTerminal(name)
		var alts [][]grammar.Symbol
		for _, occ := range b.occs[name] {
			a, err := b.lowerExpr(occ.expr)
			if err != nil {
				return err
			}
			alts = append(alts, a...)
		}
		for _, rhs := range alts {
			b.rules = append(b.rules, grammar.Rule{LHS: lhs, RHS: rhs})
		}
	}
	return nil
}

func (b *builder) lowerExpr(expr *lr.ParseTree) ([][]grammar.Symbol, error) {
	var out [][]grammar.Symbol
	for _, term := range terms(expr) {
		alts, err := b.lowerTerm(term)
		if err != nil {
			return nil, err
		}
		out = append(out, alts...)
	}
	return out, nil
}

func (b *builder) lowerTerm(term *lr.ParseTree) ([][]grammar.Symbol, error) {
	result := [][]grammar.Symbol{{}}
	for _, factor := range term.Children {
		if factor.IsTerminal || factor.NonTerm != NTFactor {
			continue
		}
		factorAlts, err := b.lowerFactor(factor)
		if err != nil {
			return nil, err
		}
		var next [][]grammar.Symbol
		for _, seq := range result {
			for _, alt := range factorAlts {
				combined := make([]grammar.Symbol, 0, len(seq)+len(alt))
				combined = append(combined, seq...)
				combined = append(combined, alt...)
				next = append(next, combined)
			}
		}
		result = next
	}
	return result, nil
}

func (b *builder) lowerFactor(factor *lr.ParseTree) ([][]grammar.Symbol, error) {
	atom, _ := factorAtom(factor)
	if atom == nil {
		return [][]grammar.Symbol{{}}, nil
	}
	return b.lowerAtomNode(atom)
}

func (b *builder) lowerAtomNode(atom *lr.ParseTree) ([][]grammar.Symbol, error) {
	if atom.IsTerminal {
		switch atom.Terminal {
		case TLiteral:
			sym := b.internAnonLiteral(atom.Lexeme)
			return [][]grammar.Symbol{{grammar.T(sym)}}, nil
		case TRegex:
			sym := b.internAnonRegex(atom.Lexeme)
			return [][]grammar.Symbol{{grammar.T(sym)}}, nil
		case TEpsilonKeyword:
			return [][]grammar.Symbol{{}}, nil
		case TIdentifier:
			sym := b.resolveIdentifier(atom.Lexeme)
			return [][]grammar.Symbol{{sym}}, nil
		default:
			return nil, icterrors.Grammar("unexpected atom token %q", atom.Terminal)
		}
	}

	switch atom.NonTerm {
	case NTGroup:
		return b.lowerExpr(groupExpr(atom))
	case NTOptional:
		nt := b.freshNonTerminal("Optional")
		alts, err := b.lowerExpr(groupExpr(atom))
		if err != nil {
			return nil, err
		}
		for _, alt := range alts {
			b.rules = append(b.rules, grammar.Rule{LHS: nt, RHS: alt})
		}
		b.rules = append(b.rules, grammar.Rule{LHS: nt, RHS: nil})
		return [][]grammar.Symbol{{grammar.NT(nt)}}, nil
	case NTRepetition:
		nt := b.freshNonTerminal("Repeat")
		alts, err := b.lowerExpr(groupExpr(atom))
		if err != nil {
			return nil, err
		}
		for _, alt := range alts {
			rhs := append([]grammar.Symbol{grammar.NT(nt)}, alt...)
			b.rules = append(b.rules, grammar.Rule{LHS: nt, RHS: rhs})
		}
		b.rules = append(b.rules, grammar.Rule{LHS: nt, RHS: nil})
		return [][]grammar.Symbol{{grammar.NT(nt)}}, nil
	default:
		return nil, icterrors.Grammar("unexpected atom node %q", atom.NonTerm)
	}
}

// groupExpr unwraps a Group/Optional/Repetition node's bracketed Expression
// child (Children = [open-bracket, Expression, close-bracket]).
func groupExpr(node *lr.ParseTree) *lr.ParseTree {
	return node.Children[1]
}

func (b *builder) freshNonTerminal(prefix string) symtab.NonTerminal {
	b.synthCounter++
	return b.tab.NonTerminal(fmt.Sprintf("$%s%d", prefix, b.synthCounter))
}

// resolveIdentifier looks up name among the grammar's own defined LHS names
// (exact match, then a name-normalized fallback per Open Question (a)). An
// identifier matching neither is assumed to reference a terminal the
// surrounding lexer already knows by that name (spec.md §4.5's meta-grammar
// itself relies on this for IDENTIFIER/LITERAL/REGEX, which it never
// defines with their own "name = ..." rule).
func (b *builder) resolveIdentifier(name string) grammar.Symbol {
	if b.isTerm[name] {
		return grammar.T(b.tab.Terminal(name))
	}
	if _, isNonTerm := b.occs[name]; isNonTerm {
		return grammar.NT(b.tab.NonTerminal(name))
	}

	target := normalize(name)
	for _, other := range b.order {
		if normalize(other) == target {
			if b.isTerm[other] {
				return grammar.T(b.tab.Terminal(other))
			}
			return grammar.NT(b.tab.NonTerminal(other))
		}
	}

	return grammar.T(b.tab.Terminal(name))
}

func (b *builder) internAnonLiteral(raw string) symtab.Terminal {
	pattern := escapeLiteralForRegex(unescapeLiteral(raw))
	return b.internAnonPattern("anon:lit:"+pattern, pattern)
}

func (b *builder) internAnonRegex(raw string) symtab.Terminal {
	pattern := unescapeRegexBody(raw)
	return b.internAnonPattern("anon:re:"+pattern, pattern)
}

func (b *builder) internAnonPattern(key, pattern string) symtab.Terminal {
	if sym, ok := b.anonTerms[key]; ok {
		return sym
	}
	name := b.uniqueTerminalName("Anon")
	sym := b.tab.Terminal(name)
	b.anonTerms[key] = sym
	b.anonOrder = append(b.anonOrder, key)
	b.anonPatterns[name] = pattern
	return sym
}

func (b *builder) uniqueTerminalName(base string) string {
	b.synthCounter++
	return fmt.Sprintf("$%s%d", base, b.synthCounter)
}

// --- start-symbol election (spec.md §4.5 "Start-symbol election") ---

func electStart(rs *grammar.RuleSet) (symtab.NonTerminal, error) {
	l := map[string]symtab.NonTerminal{}
	for _, r := range rs.Rules {
		l[r.LHS.Name()] = r.LHS
	}
	referenced := map[string]bool{}
	for _, r := range rs.Rules {
		for _, sym := range r.RHS {
			if !sym.IsTerminal {
				referenced[sym.Name()] = true
			}
		}
	}

	var candidates []symtab.NonTerminal
	names := make([]string, 0, len(l))
	for name := range l {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !referenced[name] {
			candidates = append(candidates, l[name])
		}
	}

	switch len(candidates) {
	case 0:
		return symtab.NonTerminal{}, icterrors.Grammar("no start symbol: every non-terminal appears on some right-hand side (recursive-only grammar)")
	case 1:
		return candidates[0], nil
	default:
		names := make([]string, len(candidates))
		for i, c := range candidates {
			names[i] = c.Name()
		}
		return symtab.NonTerminal{}, icterrors.Grammar("ambiguous start symbol: %s", strings.Join(names, ", "))
	}
}

// --- token-rule assembly (spec.md §4.5 "Implicit tokens") ---

func (b *builder) buildTokenRules() *lex.RuleSet {
	rules := []lex.Rule{}

	commentName := b.uniqueSkipName("Comment")
	whitespaceName := b.uniqueSkipName("Whitespace")
	rules = append(rules,
		lex.Rule{Kind: b.tab.Terminal(commentName), Pattern: `#.*`, Skip: true},
		lex.Rule{Kind: b.tab.Terminal(whitespaceName), Pattern: `\s+`, Skip: true},
	)

	for _, name := range b.order {
		if r, ok := b.termRule[name]; ok {
			rules = append(rules, *r)
		}
	}
	for _, key := range b.anonOrder {
		sym := b.anonTerms[key]
		rules = append(rules, lex.Rule{Kind: sym, Pattern: b.anonPatterns[sym.Name()]})
	}

	return &lex.RuleSet{Rules: rules}
}

// uniqueSkipName appends a numeric suffix until base doesn't collide with
// any already-interned terminal, per spec.md §4.5's implicit-token
// collision rule.
func (b *builder) uniqueSkipName(base string) string {
	name := base
	n := 2
	for b.tab.HasTerminal(name) {
		name = fmt.Sprintf("%s%d", base, n)
		n++
	}
	return name
}

// --- literal/regex text helpers ---

func unescapeLiteral(raw string) string {
	inner := strings.TrimSuffix(strings.TrimPrefix(raw, `"`), `"`)
	return unescapeBackslashes(inner, '"')
}

func unescapeRegexBody(raw string) string {
	inner := strings.TrimSuffix(strings.TrimPrefix(raw, "/"), "/")
	return unescapeBackslashes(inner, '/')
}

// unescapeBackslashes resolves only the two recognized escapes (spec.md
// §6.1: "\\", and the delimiter-specific "\<delim>"); any other backslash
// sequence (e.g. "\d") is left untouched for the downstream regex engine.
func unescapeBackslashes(s string, delim byte) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == '\\' || s[i+1] == delim) {
			sb.WriteByte(s[i+1])
			i++
			continue
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}
