// Package symtab implements the bidirectional name<->symbol interning table
// shared by every other core package. Terminal and NonTerminal values carry
// their own name and compare by it, but a Table is still needed to enforce
// that every symbol referenced anywhere is registered, and to reserve the
// two special terminals EOF and Unrecognized.
package symtab

// Terminal is an opaque, interned terminal symbol identifier.
type Terminal struct {
	name string
}

// Name returns the terminal's interned name.
func (t Terminal) Name() string { return t.name }

func (t Terminal) String() string { return t.name }

// NonTerminal is an opaque, interned non-terminal symbol identifier.
type NonTerminal struct {
	name string
}

// Name returns the non-terminal's interned name.
func (n NonTerminal) Name() string { return n.name }

func (n NonTerminal) String() string { return n.name }

// Reserved terminal names. Any grammar that tries to define a symbol with
// one of these names is a ClassificationError (see internal/ebnf).
const (
	EOFName          = "EOF"
	UnrecognizedName = "Unrecognized"
)

// EOF is the reserved terminal marking end of input.
var EOF = Terminal{name: EOFName}

// Unrecognized is the reserved terminal used to tag lexical errors.
var Unrecognized = Terminal{name: UnrecognizedName}

// Table is a monotonically growing bidirectional mapping of names to
// Terminal/NonTerminal symbols. The zero value is not ready to use; New
// returns a Table that already contains the two reserved terminals.
type Table struct {
	terminals    map[string]Terminal
	nonTerminals map[string]NonTerminal
}

// New returns a Table pre-populated with the reserved terminals.
func New() *Table {
	t := &Table{
		terminals:    map[string]Terminal{},
		nonTerminals: map[string]NonTerminal{},
	}
	t.terminals[EOFName] = EOF
	t.terminals[UnrecognizedName] = Unrecognized
	return t
}

// Terminal returns the Terminal for name, interning it if this is the first
// time it has been seen.
func (t *Table) Terminal(name string) Terminal {
	if s, ok := t.terminals[name]; ok {
		return s
	}
	s := Terminal{name: name}
	t.terminals[name] = s
	return s
}

// NonTerminal returns the NonTerminal for name, interning it if this is the
// first time it has been seen.
func (t *Table) NonTerminal(name string) NonTerminal {
	if s, ok := t.nonTerminals[name]; ok {
		return s
	}
	s := NonTerminal{name: name}
	t.nonTerminals[name] = s
	return s
}

// HasTerminal returns whether name has been interned as a terminal.
func (t *Table) HasTerminal(name string) bool {
	_, ok := t.terminals[name]
	return ok
}

// HasNonTerminal returns whether name has been interned as a non-terminal.
func (t *Table) HasNonTerminal(name string) bool {
	_, ok := t.nonTerminals[name]
	return ok
}

// TerminalNames returns every interned terminal name, in no particular
// order.
func (t *Table) TerminalNames() []string {
	names := make([]string, 0, len(t.terminals))
	for n := range t.terminals {
		names = append(names, n)
	}
	return names
}
