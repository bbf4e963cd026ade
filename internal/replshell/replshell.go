// Package replshell implements the outer interactive loop: a bufio scan
// loop over stdin dispatching each line either to the cache shell verbs
// (internal/cachecmd) or, failing that, straight into the scripting
// language (internal/eval), matching internal/repl/repl.go's own
// hand-rolled scanner loop rather than a readline library.
package replshell

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"sentra/internal/cache"
	"sentra/internal/cachecmd"
	"sentra/internal/eval"
	"sentra/internal/value"
)

// shellVerbs names every word cachecmd.Shell.Dispatch recognizes as its
// first token, so the loop can decide whether a line is a cache command or
// a script to hand to the evaluator.
var shellVerbs = map[string]bool{
	"put": true, "get": true, "del": true, "describe": true, "ds": true,
	"listns": true, "lsns": true, "currns": true, "use": true, "delns": true,
	"merge": true, "exec": true, "cd": true, "dump": true, "backup": true,
	"bckp": true, "restore": true, "clear": true, "cls": true,
	"print_script_ctx": true, "script_ctx": true, "help": true,
}

// Run drives the loop until stdin closes or the user types "exit"/"quit".
// out receives every printed result; in is read line by line.
func Run(in io.Reader, out io.Writer, c *cache.Cache, env *eval.Env, host eval.Host) error {
	shell := cachecmd.New(c, env, host)
	scanner := bufio.NewScanner(in)

	interactive := false
	if f, ok := in.(*os.File); ok {
		interactive = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	for {
		if interactive {
			fmt.Fprint(out, "sentra> ")
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		result, err := dispatch(line, shell, env, host)
		if err != nil {
			fmt.Fprintln(out, "error:", err)
			continue
		}
		if result != "" {
			fmt.Fprintln(out, result)
		}
	}
	return scanner.Err()
}

func dispatch(line string, shell *cachecmd.Shell, env *eval.Env, host eval.Host) (string, error) {
	verb := line
	if i := strings.IndexByte(line, ' '); i >= 0 {
		verb = line[:i]
	}
	if shellVerbs[verb] {
		return shell.Dispatch(line)
	}
	v, err := eval.Compute(line, env, host, "<repl>")
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", nil
	}
	return value.ToString(v), nil
}
