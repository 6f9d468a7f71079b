package lex

import (
	"regexp"
	"regexp/syntax"

	"github.com/dekarrin/ebnfgen/internal/symtab"
)

// Rule is a single (Terminal kind, pattern, skip) triple, per spec.md §3's
// Token Rule. Earlier rules take precedence over later ones: the first
// declared rule that matches at the current position wins, even if a later
// rule would match a longer lexeme. Skip rules are consumed but produce no
// token.
type Rule struct {
	Kind    symtab.Terminal
	Pattern string
	Skip    bool
}

// RuleSet is an ordered list of token rules. Declaration order is the
// recognizer's priority (spec.md §6.2).
type RuleSet struct {
	Rules []Rule
}

// Compiled builds one alternation-of-capture-groups regex covering every
// rule, anchored to the start of the remaining input. Group i+1 corresponds
// to Rules[i].
func (rs *RuleSet) Compiled() (*regexp.Regexp, error) {
	var pattern string
	pattern = "(?s)^(?:"
	for i, r := range rs.Rules {
		if i > 0 {
			pattern += "|"
		}
		re, err := syntax.Parse(r.Pattern, syntax.Perl|syntax.DotNL)
		if err != nil {
			return nil, err
		}
		pattern += "(" + uncapture(re).String() + ")"
	}
	pattern += ")"
	return regexp.Compile(pattern)
}

// uncapture turns every capture group in re into a plain group, so a rule
// pattern such as an aggregated literal's "(a|b)" does not shift the group
// numbering Compiled promises.
func uncapture(re *syntax.Regexp) *syntax.Regexp {
	for i, sub := range re.Sub {
		re.Sub[i] = uncapture(sub)
	}
	if re.Op == syntax.OpCapture {
		return re.Sub[0]
	}
	return re
}
