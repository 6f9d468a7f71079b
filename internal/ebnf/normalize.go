package ebnf

import "golang.org/x/text/cases"

var foldCaser = cases.Fold()

// normalize implements Open Question (a)'s resolution: two symbol names are
// considered the same identifier for the ShouldReduce hook's matching, the
// reserved-name check, identifier resolution, and Pass 2's Identifier/Equal
// lookup if they agree case- and underscore-insensitively,
// so `factor_repetition`, `FactorRepetition`, and `FACTOR_REPETITION` are
// treated as the same name.
// Normalize is normalize's exported form, for use by internal/bootstrap's
// Pass 2 LeftIdentifier rewrite, which needs the identical Open-Question-(a)
// fold to find the Identifier/Equal terminal pair in a generated grammar.
func Normalize(name string) string { return normalize(name) }

func normalize(name string) string {
	folded := foldCaser.String(name)
	out := make([]byte, 0, len(folded))
	for i := 0; i < len(folded); i++ {
		if folded[i] == '_' {
			continue
		}
		out = append(out, folded[i])
	}
	return string(out)
}
