// Package cachecmd implements the outer REPL's shell verbs (spec.md §6.2):
// a thin line parser plus a dispatcher over an internal/cache.Cache,
// grounded on internal/repl/repl.go's own hand-rolled "split on whitespace,
// switch on the first word" command loop rather than a cobra/flag-style
// subcommand library.
package cachecmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"sentra/internal/cache"
	"sentra/internal/eval"
	"sentra/internal/lexer"
	"sentra/internal/value"
)

// Shell wires a Cache to an evaluation environment so `exec` can run a
// stored script against the REPL's own Env, and to a working directory so
// `cd` has somewhere to live (spec.md §6.2's commands are a boundary layer
// only — all scripting semantics stay in internal/eval).
type Shell struct {
	Cache *cache.Cache
	Env   *eval.Env
	Host  eval.Host
	Cwd   string
}

// New returns a shell rooted at the process's current directory.
func New(c *cache.Cache, env *eval.Env, host eval.Host) *Shell {
	cwd, _ := os.Getwd()
	return &Shell{Cache: c, Env: env, Host: host, Cwd: cwd}
}

// reserved reports whether name collides with a language keyword or one of
// the shell's own verbs — aliases and keys must not (spec.md §6.2).
func reserved(name string) bool {
	if _, ok := lexer.Keywords[name]; ok {
		return true
	}
	switch name {
	case "put", "get", "del", "describe", "ds", "listns", "lsns", "currns",
		"use", "delns", "merge", "exec", "cd", "dump", "backup", "bckp",
		"restore", "clear", "cls", "print_script_ctx", "script_ctx", "help":
		return true
	}
	return false
}

// Dispatch parses and runs one shell line, returning the text the REPL
// should print.
func (s *Shell) Dispatch(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	verb, rest := fields[0], fields[1:]

	switch verb {
	case "put":
		return s.put(rest)
	case "get":
		return s.get(rest)
	case "del":
		return s.del(rest)
	case "describe", "ds":
		return s.describe()
	case "listns", "lsns":
		return s.listNamespaces()
	case "currns":
		return s.Cache.CurrentNamespace(), nil
	case "use":
		return s.use(rest)
	case "delns":
		return s.delns(rest)
	case "merge":
		return s.merge(rest)
	case "exec":
		return s.exec(rest)
	case "cd":
		return s.cd(rest)
	case "dump":
		return s.dump(rest)
	case "backup", "bckp":
		return s.backup(rest)
	case "restore":
		return s.restore(rest)
	case "clear", "cls":
		if err := s.Cache.Clear(); err != nil {
			return "", err
		}
		return "namespace cleared", nil
	case "print_script_ctx", "script_ctx":
		return s.scriptCtx(), nil
	case "help":
		return help, nil
	default:
		return "", fmt.Errorf("unknown command: %s", verb)
	}
}

func (s *Shell) put(rest []string) (string, error) {
	var aliases []string
	i := 0
	for i < len(rest) && rest[i] == "-a" {
		if i+1 >= len(rest) {
			return "", fmt.Errorf("put: -a requires an alias argument")
		}
		alias := rest[i+1]
		if reserved(alias) {
			return "", fmt.Errorf("put: alias %q collides with a reserved keyword", alias)
		}
		aliases = append(aliases, alias)
		i += 2
	}
	if i >= len(rest) {
		return "", fmt.Errorf("put: missing value")
	}
	text := strings.Join(rest[i:], " ")
	id, err := s.Cache.Put(text, aliases)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Shell) get(rest []string) (string, error) {
	if len(rest) != 1 {
		return "", fmt.Errorf("get: expects exactly one key")
	}
	v, ok, err := s.Cache.Get(rest[0])
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("get: key not found: %s", rest[0])
	}
	return v, nil
}

func (s *Shell) del(rest []string) (string, error) {
	if len(rest) != 1 {
		return "", fmt.Errorf("del: expects exactly one key")
	}
	if err := s.Cache.Del(rest[0]); err != nil {
		return "", err
	}
	return "deleted", nil
}

func (s *Shell) describe() (string, error) {
	n, err := s.Cache.Count()
	if err != nil {
		return "", err
	}
	entries, err := s.Cache.List()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "namespace %q: %s entr%s\n", s.Cache.CurrentNamespace(), humanize.Comma(int64(n)), plural(n))
	for _, e := range entries {
		aliasPart := ""
		if len(e.Aliases) > 0 {
			aliasPart = " aliases=" + strings.Join(e.Aliases, ",")
		}
		fmt.Fprintf(&b, "  %s%s updated %s\n", e.ID, aliasPart, humanize.Time(e.UpdatedAt))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func plural(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

func (s *Shell) listNamespaces() (string, error) {
	ns, err := s.Cache.ListNamespaces()
	if err != nil {
		return "", err
	}
	sort.Strings(ns)
	return strings.Join(ns, "\n"), nil
}

func (s *Shell) use(rest []string) (string, error) {
	if len(rest) != 1 {
		return "", fmt.Errorf("use: expects exactly one namespace")
	}
	if err := s.Cache.Use(rest[0]); err != nil {
		return "", err
	}
	return "switched to " + rest[0], nil
}

func (s *Shell) delns(rest []string) (string, error) {
	ns := ""
	if len(rest) == 1 {
		ns = rest[0]
	} else if len(rest) > 1 {
		return "", fmt.Errorf("delns: expects at most one namespace")
	}
	if err := s.Cache.DeleteNamespace(ns); err != nil {
		return "", err
	}
	return "namespace dropped", nil
}

func (s *Shell) merge(rest []string) (string, error) {
	if len(rest) != 1 {
		return "", fmt.Errorf("merge: expects exactly one namespace")
	}
	if err := s.Cache.Merge(rest[0]); err != nil {
		return "", err
	}
	return "merged " + rest[0], nil
}

// exec loads key's stored text as a script and evaluates it against the
// shell's own environment, binding `args` to the remaining words first
// (spec.md §6.2 `exec key [args]`).
func (s *Shell) exec(rest []string) (string, error) {
	if len(rest) == 0 {
		return "", fmt.Errorf("exec: missing key")
	}
	key, scriptArgs := rest[0], rest[1:]
	text, ok, err := s.Cache.Get(key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("exec: key not found: %s", key)
	}

	elems := make([]value.Value, len(scriptArgs))
	for i, a := range scriptArgs {
		elems[i] = a
	}
	s.Env.Define("args", &value.Array{Elements: elems})

	result, err := eval.Compute(text, s.Env, s.Host, "cache:"+key)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", nil
	}
	return value.ToString(result), nil
}

func (s *Shell) cd(rest []string) (string, error) {
	if len(rest) != 1 {
		return "", fmt.Errorf("cd: expects exactly one path")
	}
	if err := os.Chdir(rest[0]); err != nil {
		return "", err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	s.Cwd = cwd
	return cwd, nil
}

func (s *Shell) dump(rest []string) (string, error) {
	ns := s.Cache.CurrentNamespace()
	if len(rest) == 1 {
		ns = rest[0]
	} else if len(rest) > 1 {
		return "", fmt.Errorf("dump: expects at most one namespace")
	}
	saved := s.Cache.CurrentNamespace()
	if err := s.Cache.Use(ns); err != nil {
		return "", err
	}
	defer s.Cache.Use(saved)

	entries, err := s.Cache.List()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s\t%s\t%s\n", e.ID, strings.Join(e.Aliases, ","), e.Value)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (s *Shell) backup(rest []string) (string, error) {
	path := "sentra-cache.bak"
	if len(rest) == 1 {
		path = rest[0]
	} else if len(rest) > 1 {
		return "", fmt.Errorf("backup: expects at most one path")
	}
	blob, err := s.Cache.Backup()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, blob, 0644); err != nil {
		return "", err
	}
	return fmt.Sprintf("wrote %s bytes to %s", humanize.Comma(int64(len(blob))), path), nil
}

func (s *Shell) restore(rest []string) (string, error) {
	if len(rest) != 1 {
		return "", fmt.Errorf("restore: expects exactly one path")
	}
	blob, err := os.ReadFile(rest[0])
	if err != nil {
		return "", err
	}
	if err := s.Cache.Restore(blob); err != nil {
		return "", err
	}
	return "restored from " + rest[0], nil
}

func (s *Shell) scriptCtx() string {
	names := s.Env.Names()
	sort.Strings(names)
	var b strings.Builder
	for _, name := range names {
		ref, _ := s.Env.Get(name)
		fmt.Fprintf(&b, "%s = %s\n", name, value.ToString(value.Deref(ref)))
	}
	return strings.TrimRight(b.String(), "\n")
}

const help = `put [-a alias]* value   store a value, optionally under one or more aliases
get key                 fetch a value by key or alias
del key                 remove a value by key or alias
describe|ds             summarize the current namespace
listns|lsns             list every namespace
currns                  print the current namespace
use ns                  switch namespaces
delns [ns]              drop a namespace (current, if omitted)
merge ns                copy ns's entries into the current namespace
exec key [args]         evaluate a stored script, binding args
cd path                 change the working directory
dump [ns]               print every entry of a namespace
backup|bckp [path]      write a signed backup file
restore path            restore from a signed backup file
clear|cls               empty the current namespace
print_script_ctx|script_ctx   print every binding in scope
help                    show this message`
