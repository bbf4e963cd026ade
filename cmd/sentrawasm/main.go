//go:build js && wasm
// +build js,wasm

// cmd/sentrawasm exposes eval.Compute to the browser as a single global
// function, using the same js.Global()/js.FuncOf wiring style as a plain
// calculator-style WASM binding rather than inventing a new JS-interop
// convention.
package main

import (
	"syscall/js"

	"sentra/internal/eval"
	"sentra/internal/value"
)

// env is shared across every sentraCompute call from the page, matching
// spec.md §6.1's "callers may inspect or pre-populate" the environment —
// a page can call sentraCompute repeatedly against one running session.
var env = eval.NewEnv()
var host = eval.NewFileHost()

func sentraCompute(this js.Value, args []js.Value) interface{} {
	if len(args) == 0 {
		return jsError("sentraCompute expects a source-text argument")
	}
	text := args[0].String()
	sourceName := "<wasm>"
	if len(args) > 1 {
		sourceName = args[1].String()
	}

	result := map[string]interface{}{}
	v, err := eval.Compute(text, env, host, sourceName)
	if err != nil {
		result["error"] = err.Error()
		return js.ValueOf(result)
	}
	if v != nil {
		result["value"] = value.ToString(v)
	}
	return js.ValueOf(result)
}

func jsError(msg string) js.Value {
	return js.ValueOf(map[string]interface{}{"error": msg})
}

func main() {
	js.Global().Set("sentraCompute", js.FuncOf(sentraCompute))
	// WASM must not exit while the page is still alive.
	select {}
}
