/*
Ebnflr builds an LALR(1) parser from an EBNF grammar file and uses it to
parse input text.

Usage:

	ebnflr compile -g grammar.ebnf [--dump-table] [--cache DIR]
	ebnflr parse   -g grammar.ebnf -i input.txt
	ebnflr repl    -g grammar.ebnf
	ebnflr serve   -g grammar.ebnf [--addr :8080]

The flags are:

	-v, --version
		Give the current version of ebnflr and then exit.

	-g, --grammar FILE
		The EBNF grammar file to compile. Defaults to "grammar.ebnf" in the
		current working directory.

	-i, --input FILE
		The input file to parse against the compiled grammar. If not given,
		"parse" reads from stdin.

	--dump-table
		Print the LALR(1) parse table after compiling. Used by "compile" only.

	--cache DIR
		Cache the compiled grammar under DIR, keyed by a content hash of the
		grammar file, and reuse it across invocations if the grammar is
		unchanged.

	--addr ADDRESS
		The address "serve" listens on. Defaults to ":8080".

An optional ebnflr.toml in the working directory supplies defaults for
grammar, cache, and addr; explicit flags always win.
*/
package main

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/chzyer/readline"
	"github.com/dekarrin/ebnfgen/internal/bootstrap"
	"github.com/dekarrin/ebnfgen/internal/cache"
	"github.com/dekarrin/ebnfgen/internal/ebnf"
	"github.com/dekarrin/ebnfgen/internal/httpapi"
	"github.com/dekarrin/ebnfgen/internal/lr"
	"github.com/spf13/pflag"
)

const Version = "0.1.0"

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitCompileError indicates the grammar failed to compile.
	ExitCompileError

	// ExitParseError indicates the input failed to parse against the
	// compiled grammar.
	ExitParseError

	// ExitUsageError indicates a bad invocation (missing subcommand,
	// unreadable input file). An unreadable grammar file exits with
	// ExitCompileError.
	ExitUsageError
)

// config is ebnflr.toml's shape: grammar/cache/addr defaults, overridden
// by whichever flags the invocation actually set.
type config struct {
	Grammar string `toml:"grammar"`
	Cache   string `toml:"cache"`
	Addr    string `toml:"addr"`
}

func loadConfig() config {
	var cfg config
	data, err := os.ReadFile("ebnflr.toml")
	if err != nil {
		return cfg
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "WARN: ebnflr.toml: %s\n", err.Error())
	}
	return cfg
}

var (
	returnCode int = ExitSuccess

	flagVersion   = pflag.BoolP("version", "v", false, "Give the current version of ebnflr and then exit")
	flagGrammar   = pflag.StringP("grammar", "g", "", "The EBNF grammar file to compile")
	flagInput     = pflag.StringP("input", "i", "", "The input file to parse; defaults to stdin")
	flagDumpTable = pflag.Bool("dump-table", false, "Print the LALR(1) parse table after compiling (compile only)")
	flagCacheDir  = pflag.String("cache", "", "Cache compiled grammars under this directory")
	flagAddr      = pflag.String("addr", "", "Address for \"serve\" to listen on")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("ebnflr %s\n", Version)
		return
	}

	cfg := loadConfig()
	grammarFile := firstNonEmpty(*flagGrammar, cfg.Grammar, "grammar.ebnf")
	cacheDir := firstNonEmpty(*flagCacheDir, cfg.Cache)
	addr := firstNonEmpty(*flagAddr, cfg.Addr, ":8080")

	args := pflag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: ebnflr {compile|parse|repl|serve} [flags]")
		returnCode = ExitUsageError
		return
	}

	switch args[0] {
	case "compile":
		runCompile(grammarFile, cacheDir)
	case "parse":
		runParse(grammarFile, cacheDir, *flagInput)
	case "repl":
		runRepl(grammarFile, cacheDir)
	case "serve":
		runServe(grammarFile, cacheDir, addr)
	default:
		fmt.Fprintf(os.Stderr, "Unknown subcommand %q\n", args[0])
		returnCode = ExitUsageError
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// compileGrammar loads grammarFile, checking cacheDir (if given) for a
// cached GeneratorResult keyed by the grammar text's content hash before
// falling back to a full Pass 1 compile.
func compileGrammar(grammarFile, cacheDir string) (*ebnf.GeneratorResult, error) {
	text, err := os.ReadFile(grammarFile)
	if err != nil {
		return nil, fmt.Errorf("read grammar file: %w", err)
	}

	var cachePath string
	if cacheDir != "" {
		cachePath = cache.Path(cacheDir, string(text))
		if gen, err := cache.Load(cachePath); err == nil {
			return gen, nil
		}
	}

	gen, err := bootstrap.Compile(string(text))
	if err != nil {
		return nil, err
	}

	if cachePath != "" {
		if err := os.MkdirAll(cacheDir, 0755); err == nil {
			if err := cache.Save(cachePath, gen); err != nil {
				fmt.Fprintf(os.Stderr, "WARN: could not write cache: %s\n", err.Error())
			}
		}
	}

	return gen, nil
}

func runCompile(grammarFile, cacheDir string) {
	gen, err := compileGrammar(grammarFile, cacheDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitCompileError
		return
	}

	if *flagDumpTable {
		table, err := lr.Build(gen.Grammar, gen.Symbols, lr.DefaultShouldReduce, lr.DefaultPriorityOf)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitCompileError
			return
		}
		fmt.Println(table.String())
	}

	fmt.Printf("compiled grammar: %d terminal(s), start = %s\n", len(gen.Symbols.TerminalNames()), gen.Grammar.Start.Name())
}

func runParse(grammarFile, cacheDir, inputFile string) {
	gen, err := compileGrammar(grammarFile, cacheDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitCompileError
		return
	}

	var input io.Reader = os.Stdin
	if inputFile != "" {
		f, err := os.Open(inputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitUsageError
			return
		}
		defer f.Close()
		input = f
	}

	data, err := io.ReadAll(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitUsageError
		return
	}

	result, err := bootstrap.Parse(gen, string(data), &lr.DefaultAction{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitParseError
		return
	}

	if tree, ok := result.(*lr.ParseTree); ok {
		fmt.Println(tree.String())
	} else {
		fmt.Printf("%v\n", result)
	}
}

// runRepl parses one line of grammar-described input at a time and prints
// the resulting tree, powered by a GNU-readline-backed line editor.
func runRepl(grammarFile, cacheDir string) {
	gen, err := compileGrammar(grammarFile, cacheDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitCompileError
		return
	}

	rl, err := readline.NewEx(&readline.Config{Prompt: "ebnflr> "})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: create readline: %s\n", err.Error())
		returnCode = ExitUsageError
		return
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF on ^D, readline.ErrInterrupt on ^C
			return
		}
		if line == "" {
			continue
		}

		result, err := bootstrap.Parse(gen, line, &lr.DefaultAction{})
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			continue
		}
		if tree, ok := result.(*lr.ParseTree); ok {
			fmt.Println(tree.String())
		} else {
			fmt.Printf("%v\n", result)
		}
	}
}

func runServe(grammarFile, cacheDir, addr string) {
	// grammarFile/cacheDir are accepted for flag-surface symmetry with the
	// other subcommands, but "serve" compiles grammars on demand from its
	// POST /v1/grammars body, it does not preload grammarFile.
	_ = grammarFile
	_ = cacheDir

	api := httpapi.New()
	log.Printf("ebnflr serve: listening on %s", addr)
	if err := http.ListenAndServe(addr, api.Router()); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitUsageError
	}
}
