package value

// Param is one entry of a function's parameter pattern. Discard marks `_`
// parameters: bound positionally (so arity still matches) but never
// reachable by name inside the body (spec §3.2, §4.4).
type Param struct {
	Name    string
	Discard bool
}

// Function is a first-class user-defined function: a parameter pattern, an
// unlowered statement body, and the environment it closes over. Body and
// Env are stored as interface{} rather than concrete parser/eval types to
// keep this package free of a dependency on either — internal/eval type
// asserts them back on every call, re-lowering the body fresh each time
// (spec §4.3.4: "closures capture by reference"): the body is lowered once
// per call, not once at definition time, and runs against a copy of the
// bindings in Env, the environment captured when the function value was
// created.
type Function struct {
	Params []Param
	Body   interface{}
	Env    interface{}
}

// Callback is the re-entrant hook C6 hands to foreign code: it lets a
// native function invoke a Sentra value (almost always a Function) with
// the given arguments and get back a Value.
type Callback func(fn Value, args []Value) (Value, error)

// NativeFunction is a handle to a foreign entry point, reachable either
// through the built-in registry (spec C5) or loaded from a plugin/bundled
// library (spec C6).
type NativeFunction struct {
	Name string
	Fn   func(args []Value, cb Callback) (Value, error)
}

// NativeLibrary is a handle containing zero or more NativeFunctions,
// looked up by name (spec §3.1).
type NativeLibrary struct {
	Name   string
	Fields map[string]Value
}
