// cmd/sentra/main.go
package main

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/mod/semver"

	"sentra/internal/cache"
	"sentra/internal/config"
	"sentra/internal/eval"
	"sentra/internal/replshell"
	"sentra/internal/sentralog"
	"sentra/internal/value"
)

const VERSION = "1.0.0"

// Command aliases: short "r"/"i"/... shortcuts for the full command names.
var commandAliases = map[string]string{
	"r": "run",
	"i": "repl",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		return
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}
	rest := args[1:]

	switch cmd {
	case "--help", "-h", "help", "--h", "-help":
		if len(rest) > 0 {
			showCommandHelp(rest[0])
		} else {
			showUsage()
		}
	case "--version", "-v", "version", "--v", "-version":
		showVersion()
	case "run":
		if err := runScript(rest); err != nil {
			sentralog.Fatal("%v", err)
		}
	case "repl":
		if err := startRepl(rest); err != nil {
			sentralog.Fatal("%v", err)
		}
	default:
		suggestCommand(cmd)
	}
}

// runScript extracts the known flag set out of rest, then evaluates the
// remaining positional argument as a script path (spec.md §6.1).
func runScript(rest []string) error {
	cfg, path, scriptArgs, err := splitConfigAndPath(rest)
	if err != nil {
		return err
	}
	if path == "" {
		return fmt.Errorf("run: missing script path")
	}

	host := eval.NewFileHost()
	text, err := host.ReadFile(path)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	if err := checkVersionPragma(text); err != nil {
		return err
	}

	env := eval.NewEnv()
	elems := make([]value.Value, len(scriptArgs))
	for i, a := range scriptArgs {
		elems[i] = a
	}
	env.Define("args", &value.Array{Elements: elems})
	_ = cfg // a bare run consults no flag; require() does not read cfg.SharedLibPath either

	v, err := eval.Compute(text, env, host, path)
	if err != nil {
		return err
	}
	if v != nil {
		fmt.Println(value.ToString(v))
	}
	return nil
}

// startRepl wires config -> cache -> replshell together: --inmemory, or
// neither --dbpath nor --cache, opens an in-memory cache; otherwise the
// --dbpath file, or NAME.cache for --cache NAME, on disk (spec.md §6.4).
func startRepl(rest []string) error {
	cfg, err := config.Parse(rest)
	if err != nil {
		return fmt.Errorf("repl: %w", err)
	}

	dbPath := cfg.DBPath
	if cfg.InMemory {
		dbPath = ""
	} else if dbPath == "" && cfg.DefaultCache != "" {
		dbPath = cfg.DefaultCache + ".cache"
	}

	c, err := cache.Open(dbPath)
	if err != nil {
		if cfg.NoFallback {
			return fmt.Errorf("repl: %w", err)
		}
		sentralog.Warn("falling back to an in-memory cache: %v", err)
		c, err = cache.Open("")
		if err != nil {
			return err
		}
	}
	defer c.Close()

	env := eval.NewEnv()
	host := eval.NewFileHost()
	return replshell.Run(os.Stdin, os.Stdout, c, env, host)
}

// splitConfigAndPath extracts the §6.4 flags from rest wherever they
// appear, leaving the first non-flag argument as the script path and the
// remaining non-flag arguments as the script's own argv.
func splitConfigAndPath(rest []string) (*config.Config, string, []string, error) {
	var flagArgs, positional []string
	flagNames := map[string]bool{
		"--inmemory": true, "-im": true, "--no-fallback": true, "-nofb": true,
		"--dbpath": true, "-db": true, "--historypath": true, "-hp": true,
		"--sharedlibpath": true, "-slp": true, "--cache": true, "-c": true,
	}
	valueFlags := map[string]bool{
		"--dbpath": true, "-db": true, "--historypath": true, "-hp": true,
		"--sharedlibpath": true, "-slp": true, "--cache": true, "-c": true,
	}
	for i := 0; i < len(rest); i++ {
		a := rest[i]
		if flagNames[a] {
			flagArgs = append(flagArgs, a)
			if valueFlags[a] && i+1 < len(rest) {
				i++
				flagArgs = append(flagArgs, rest[i])
			}
			continue
		}
		positional = append(positional, a)
	}
	cfg, err := config.Parse(flagArgs)
	if err != nil {
		return nil, "", nil, err
	}
	if len(positional) == 0 {
		return cfg, "", nil, nil
	}
	return cfg, positional[0], positional[1:], nil
}

// checkVersionPragma enforces an optional leading "#!sentra-version
// >=x.y.z" line against VERSION, layered on top of the lexer's own
// shebang-skip handling in lexer.Scanner.ScanTokens.
func checkVersionPragma(text string) error {
	nl := strings.IndexByte(text, '\n')
	line := text
	if nl >= 0 {
		line = text[:nl]
	}
	const prefix = "#!sentra-version "
	if !strings.HasPrefix(line, prefix) {
		return nil
	}
	constraint := strings.TrimSpace(strings.TrimPrefix(line, prefix))
	want := strings.TrimPrefix(constraint, ">=")
	if want == constraint {
		return fmt.Errorf("unsupported version pragma %q: only >=x.y.z is recognized", constraint)
	}
	want = "v" + strings.TrimSpace(want)
	have := "v" + VERSION
	if !semver.IsValid(want) {
		return fmt.Errorf("malformed version pragma %q", constraint)
	}
	if semver.Compare(have, want) < 0 {
		return fmt.Errorf("script requires sentra %s, this binary is %s", constraint, VERSION)
	}
	return nil
}

func showUsage() {
	fmt.Println("Sentra - an embeddable scripting language with a persistent command cache")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  sentra run <file.sn> [args...]   Run a Sentra script          (alias: r)")
	fmt.Println("  sentra repl [flags]              Start the interactive shell (alias: i)")
	fmt.Println("  sentra help [command]            Show this message, or help for a command")
	fmt.Println("  sentra version                   Show version information")
	fmt.Println()
	fmt.Println("REPL flags:")
	fmt.Println("  --inmemory|-im                Use an in-memory cache, discarded on exit")
	fmt.Println("  --no-fallback|-nofb           Fail instead of falling back to memory")
	fmt.Println("  --dbpath|-db PATH             Cache database file")
	fmt.Println("  --historypath|-hp PATH        Accepted; the REPL keeps no history file")
	fmt.Println("  --sharedlibpath|-slp PATH     Accepted; require() does not consult it")
	fmt.Println("  --cache|-c NAME               Named cache file (NAME.cache)")
}

func showVersion() {
	fmt.Printf("Sentra %s\n", VERSION)
}

func showCommandHelp(command string) {
	if alias, ok := commandAliases[command]; ok {
		command = alias
	}
	help := map[string]string{
		"run": `sentra run - Execute a Sentra script

USAGE:
  sentra run <file.sn> [args...]
  sentra r <file.sn>              # using the alias

DESCRIPTION:
  Parses and evaluates file.sn against a fresh environment. A leading
  "#!sentra-version >=x.y.z" line is checked against this binary's version
  before the script runs. Remaining arguments are bound to "args" inside
  the script.`,
		"repl": `sentra repl - Start the interactive shell

USAGE:
  sentra repl [flags]
  sentra i [flags]                # using the alias

DESCRIPTION:
  Opens the cache database named by --dbpath (or an in-memory one with
  --inmemory) and starts a line loop: each line is either a cache shell
  verb (put, get, use, exec, ...) or Sentra source evaluated against one
  shared environment.`,
	}
	if text, ok := help[command]; ok {
		fmt.Println(text)
		return
	}
	fmt.Fprintf(os.Stderr, "No help available for %q\n", command)
	showUsage()
}

// suggestCommand reports the typo, then offers nearby commands by
// Levenshtein distance.
func suggestCommand(cmd string) {
	all := []string{"run", "repl", "help", "version"}
	fmt.Fprintf(os.Stderr, "Error: Unknown command '%s'\n", cmd)

	var suggestions []string
	for _, c := range all {
		if levenshteinDistance(cmd, c) <= 2 {
			suggestions = append(suggestions, c)
		}
	}
	if len(suggestions) > 0 {
		fmt.Fprintln(os.Stderr, "\nDid you mean one of these?")
		for _, s := range suggestions {
			alias := ""
			for a, full := range commandAliases {
				if full == s {
					alias = fmt.Sprintf(" (alias: %s)", a)
					break
				}
			}
			fmt.Fprintf(os.Stderr, "  sentra %s%s\n", s, alias)
		}
	}
	fmt.Fprintln(os.Stderr, "\nRun 'sentra help' to see all available commands")
	os.Exit(1)
}

func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}
	matrix := make([][]int, len(s1)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(s2)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}
	for i := 1; i <= len(s1); i++ {
		for j := 1; j <= len(s2); j++ {
			cost := 0
			if s1[i-1] != s2[j-1] {
				cost = 1
			}
			matrix[i][j] = min3(matrix[i-1][j]+1, matrix[i][j-1]+1, matrix[i-1][j-1]+cost)
		}
	}
	return matrix[len(s1)][len(s2)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
