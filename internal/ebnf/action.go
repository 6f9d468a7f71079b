package ebnf

import (
	"github.com/dekarrin/ebnfgen/internal/lr"
)

// GeneratorAction is Pass 1's semantic action (spec.md §4.6): it builds the
// same default parse tree any grammar would, then lowers it into a
// GeneratorResult once the start symbol accepts. Embedding lr.DefaultAction
// gets OnShift/OnReduce/OnError for free; only OnAccept differs.
type GeneratorAction struct {
	lr.DefaultAction
}

var _ lr.SemanticAction = (*GeneratorAction)(nil)

// NewGeneratorAction returns a ready-to-use GeneratorAction.
func NewGeneratorAction() *GeneratorAction {
	return &GeneratorAction{}
}

// OnAccept runs the default action's tree assembly, then lowers the result.
func (a *GeneratorAction) OnAccept(value any) (lr.ParseResult, error) {
	treeResult, err := a.DefaultAction.OnAccept(value)
	if err != nil {
		return nil, err
	}
	root, _ := treeResult.(*lr.ParseTree)
	return buildGeneratorResult(root)
}
