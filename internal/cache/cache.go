// Package cache persists a compiled GeneratorResult to disk, keyed by a
// content hash of the grammar text it came from, so a CLI invocation can
// skip recompiling an unchanged grammar. This is entirely outside the core
// contract (spec.md §6.4 leaves persisted state unspecified but permitted);
// the core itself stays stateless. Grounded on
// server/dao/sqlite/sqlite.go's convertToDB_GameStatePtr/
// convertFromDB_GameStatePtr pattern: rezi.EncBinary to get bytes,
// rezi.DecBinary plus a decoded-byte-count check to get them back.
package cache

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dekarrin/ebnfgen/internal/ebnf"
	"github.com/dekarrin/ebnfgen/internal/grammar"
	"github.com/dekarrin/ebnfgen/internal/lex"
	"github.com/dekarrin/ebnfgen/internal/symtab"
	"github.com/dekarrin/rezi"
	"golang.org/x/crypto/blake2b"
)

// Key returns the cache key for grammarText: a hex-encoded blake2b-256
// digest, chosen (per SPEC_FULL.md) over stdlib sha256 because the pack's
// x/crypto dependency exists and blake2b is the faster, equally-sized
// modern choice for a non-adversarial cache key.
func Key(grammarText string) string {
	sum := blake2b.Sum256([]byte(grammarText))
	return hex.EncodeToString(sum[:])
}

// entry is the rezi-serializable shape of a GeneratorResult: only
// exported, plain-data fields, since rezi's reflection-based encoding (like
// game.State's) can't walk symtab.Table's unexported interning maps or a
// compiled regexp.Regexp directly. The parse tree itself is not cached: a
// cache hit only needs to rebuild a table and a lexer, not relive the Pass
// 1 derivation.
type entry struct {
	Terminals    []string
	NonTerminals []string
	Start        string
	Rules        []entryRule
	TokenRules   []entryTokenRule
	Directives   []ebnf.Directive
}

type entryRule struct {
	LHS string
	RHS []entrySymbol
}

type entrySymbol struct {
	IsTerminal bool
	Name       string
}

type entryTokenRule struct {
	Kind    string
	Pattern string
	Skip    bool
}

// Path returns the on-disk location for grammarText's cache entry under
// dir.
func Path(dir, grammarText string) string {
	return filepath.Join(dir, Key(grammarText)+".ebnfcache")
}

// Save writes gen's cacheable portion to path.
func Save(path string, gen *ebnf.GeneratorResult) error {
	e := toEntry(gen)
	data := rezi.EncBinary(e)
	return os.WriteFile(path, data, 0644)
}

// Load reads a previously-Saved GeneratorResult from path. The returned
// result's Tree field is always nil: a cache hit skips Pass 1 entirely, so
// there never was a parse tree for this invocation.
func Load(path string) (*ebnf.GeneratorResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var e entry
	n, err := rezi.DecBinary(data, &e)
	if err != nil {
		return nil, fmt.Errorf("decode cache entry: %w", err)
	}
	if n != len(data) {
		return nil, fmt.Errorf("cache entry %s: decoded %d/%d bytes", path, n, len(data))
	}

	return fromEntry(e), nil
}

func toEntry(gen *ebnf.GeneratorResult) entry {
	e := entry{
		Start:      gen.Grammar.Start.Name(),
		Directives: gen.Directives,
	}
	for _, name := range gen.Symbols.TerminalNames() {
		e.Terminals = append(e.Terminals, name)
	}
	for _, nt := range gen.Grammar.NonTerminals() {
		e.NonTerminals = append(e.NonTerminals, nt.Name())
	}
	for _, r := range gen.Grammar.Rules {
		er := entryRule{LHS: r.LHS.Name()}
		for _, s := range r.RHS {
			er.RHS = append(er.RHS, entrySymbol{IsTerminal: s.IsTerminal, Name: s.Name()})
		}
		e.Rules = append(e.Rules, er)
	}
	for _, r := range gen.TokenRules.Rules {
		e.TokenRules = append(e.TokenRules, entryTokenRule{Kind: r.Kind.Name(), Pattern: r.Pattern, Skip: r.Skip})
	}
	return e
}

func fromEntry(e entry) *ebnf.GeneratorResult {
	tab := symtab.New()
	for _, name := range e.Terminals {
		tab.Terminal(name)
	}
	for _, name := range e.NonTerminals {
		tab.NonTerminal(name)
	}

	rules := make([]grammar.Rule, 0, len(e.Rules))
	for _, er := range e.Rules {
		rhs := make([]grammar.Symbol, 0, len(er.RHS))
		for _, es := range er.RHS {
			if es.IsTerminal {
				rhs = append(rhs, grammar.T(tab.Terminal(es.Name)))
			} else {
				rhs = append(rhs, grammar.NT(tab.NonTerminal(es.Name)))
			}
		}
		rules = append(rules, grammar.Rule{LHS: tab.NonTerminal(er.LHS), RHS: rhs})
	}

	tokenRules := make([]lex.Rule, 0, len(e.TokenRules))
	for _, et := range e.TokenRules {
		tokenRules = append(tokenRules, lex.Rule{Kind: tab.Terminal(et.Kind), Pattern: et.Pattern, Skip: et.Skip})
	}

	return &ebnf.GeneratorResult{
		Symbols:    tab,
		Grammar:    &grammar.RuleSet{Start: tab.NonTerminal(e.Start), Rules: rules},
		TokenRules: &lex.RuleSet{Rules: tokenRules},
		Directives: e.Directives,
	}
}
