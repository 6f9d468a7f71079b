package lr

import (
	"fmt"
	"strings"

	"github.com/dekarrin/ebnfgen/internal/grammar"
	"github.com/dekarrin/ebnfgen/internal/icterrors"
	"github.com/dekarrin/ebnfgen/internal/lex"
	"github.com/dekarrin/ebnfgen/internal/util"
)

// ParseTree is the default semantic action's output node, per spec.md §3:
// either a terminal leaf or a non-terminal interior node with ordered
// children.
type ParseTree struct {
	IsTerminal bool
	Terminal   string
	NonTerm    string
	Lexeme     string
	Span       icterrors.Span
	Children   []*ParseTree
}

func (n *ParseTree) String() string {
	if n.IsTerminal {
		return fmt.Sprintf("(%s %q)", n.Terminal, n.Lexeme)
	}
	parts := make([]string, len(n.Children))
	for i, c := range n.Children {
		parts[i] = c.String()
	}
	if len(parts) == 0 {
		return fmt.Sprintf("(%s)", n.NonTerm)
	}
	return fmt.Sprintf("(%s %s)", n.NonTerm, strings.Join(parts, " "))
}

// listLike non-terminals get flattened: a child of the same non-terminal
// has its children spliced in place of it, turning left-recursive chains
// into flat sequences (spec.md §4.3 item 1).
var listLike = map[string]bool{
	"Expression":       true,
	"Term":             true,
	"List":             true,
	"FactorRepetition": true,
}

// passthrough non-terminals produce no tree node on reduce; their
// children stay on the value stack as-is (spec.md §4.3's DefaultAction).
var passthrough = map[string]bool{
	"Grammar":             true,
	"GrammarRepetition":    true,
	"Atom":                 true,
	"Value":                true,
	"ListRepetition":       true,
	"ExpressionRepetition": true,
	"TermRepetition":       true,
}

// DefaultAction is the built-in SemanticAction spec.md §4.3 describes: it
// builds a ParseTree, flattening list-like non-terminals and pruning
// empty FactorRepetition children, and passing through transient
// non-terminals without creating a node for them.
type DefaultAction struct{}

var _ SemanticAction = (*DefaultAction)(nil)

// OnShift is a no-op for the tree builder: the shifted token itself is
// already what the driver hands back as this leaf's child value.
func (a *DefaultAction) OnShift(tok lex.Token) {}

// OnReduce builds (or passes through) a node for rule, given its
// already-converted children (each either a *ParseTree from a prior
// reduce, or a lex.Token from a shift).
func (a *DefaultAction) OnReduce(rule grammar.Rule, children []any) any {
	name := rule.LHS.Name()

	nodes := make([]*ParseTree, 0, len(children))
	for _, c := range children {
		switch v := c.(type) {
		case lex.Token:
			nodes = append(nodes, &ParseTree{IsTerminal: true, Terminal: v.Kind.Name(), Lexeme: v.Lexeme, Span: v.Span})
		case *ParseTree:
			if v == nil {
				continue
			}
			// epsilon pruning (spec.md §4.3 item 2): an empty
			// FactorRepetition child (no tildes shifted) carries no
			// information and is dropped wherever it appears, not only
			// within list-like/passthrough splicing.
			if !v.IsTerminal && v.NonTerm == "FactorRepetition" && len(v.Children) == 0 {
				continue
			}
			nodes = append(nodes, v)
		case nil:
			// a passthrough child that itself produced no node (e.g. an
			// epsilon GrammarRepetition alternative); nothing to splice.
		}
	}

	if passthrough[name] {
		if len(nodes) == 0 {
			return nil
		}
		if len(nodes) == 1 {
			return nodes[0]
		}
		// A passthrough rule that is also self-recursive (e.g. Grammar ->
		// Grammar GrammarRepetition) has nothing of its own to wrap
		// multiple surviving children in; since an LR reduce must still
		// produce exactly one value, splice them the same way a list-like
		// non-terminal would rather than nesting a new level every step.
		return &ParseTree{NonTerm: name, Children: flatten(name, nodes)}
	}

	if listLike[name] {
		flat := flatten(name, nodes)
		return &ParseTree{NonTerm: name, Children: flat, Span: spanOf(flat)}
	}

	return &ParseTree{NonTerm: name, Children: nodes, Span: spanOf(nodes)}
}

// flatten splices any child that is itself a same-named non-terminal node
// in place of it (spec.md §4.3 item 1), turning left-recursive chains into
// one flat sequence.
func flatten(name string, nodes []*ParseTree) []*ParseTree {
	var flat []*ParseTree
	for _, n := range nodes {
		if !n.IsTerminal && n.NonTerm == name {
			flat = append(flat, n.Children...)
		} else {
			flat = append(flat, n)
		}
	}
	return flat
}

func spanOf(nodes []*ParseTree) icterrors.Span {
	if len(nodes) == 0 {
		return icterrors.Span{}
	}
	first, last := nodes[0], nodes[len(nodes)-1]
	return icterrors.Span{Start: first.Span.Start, End: last.Span.End, Line: first.Span.Line, Column: first.Span.Column}
}

// OnAccept returns the single remaining root node: whatever the reduce
// that built the start symbol produced.
func (a *DefaultAction) OnAccept(value any) (ParseResult, error) {
	if value == nil {
		return &ParseTree{NonTerm: "", Children: nil}, nil
	}
	return value, nil
}

// OnError builds the default ParseError: a message naming the offending
// token and, per spec.md §8.4 scenario, every terminal that had a defined
// action in the failing state, human-joined via internal/util.MakeTextList.
func (a *DefaultAction) OnError(tok lex.Token, expected []string) error {
	if len(expected) == 0 {
		return icterrors.Syntax(&tok.Span, "unexpected %s %q", tok.Kind.Name(), tok.Lexeme)
	}
	return icterrors.Syntax(&tok.Span, "unexpected %s %q; expected %s", tok.Kind.Name(), tok.Lexeme, util.MakeTextList(expected))
}
