package eval

import (
	"sentra/internal/lexer"
	"sentra/internal/lowering"
	"sentra/internal/parser"
	"sentra/internal/value"
)

// Compute is spec.md's named top-level entry point: parse and evaluate
// text against env, attributing diagnostics and include-relative paths to
// sourceName. It is the one function cmd/sentra, internal/replshell,
// internal/cachecmd and cmd/sentrawasm all call through — none of them talk
// to lexer/parser/lowering/Evaluator directly.
//
// The returned error is always host-visible (a parse failure, or whatever
// *errors.SentraError Run recovers) — a script-level Error value that a
// script caught with is_error never reaches this far; it comes back as an
// ordinary value.Value result instead (spec.md §7 policy).
//
// env.Lock/Unlock bracket the whole call: evaluation itself is
// single-threaded and synchronous, but callers that hand the same Env to
// concurrent goroutines (the wasm binding, the cache REPL's exec command)
// need the handoff itself serialized (spec §5).
func Compute(text string, env *Env, host Host, sourceName string) (value.Value, error) {
	env.Lock()
	defer env.Unlock()

	tokens := lexer.NewScanner(text).ScanTokens()
	stmts, err := parser.Parse(tokens, text, sourceName)
	if err != nil {
		return nil, err
	}
	lowered, err := lowering.Lower(stmts, sourceName)
	if err != nil {
		return nil, err
	}
	return NewEvaluator(sourceName, host).Run(lowered, env)
}
