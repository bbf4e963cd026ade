package eval

import (
	"sync"

	"sentra/internal/value"
)

// Env is the flat, single-scope environment spec.md §4.4 calls for: one
// name -> *value.Ref map, no parent-chain lookup. Block/loop/if bodies get
// their lexical scoping not from a new Env but from Snapshot/Restore around
// the map itself (see SPEC_FULL.md §4): entering a block snapshots the
// current bindings, the block runs against the live map so writes to
// already-existing Refs are visible immediately (aliasing works exactly
// the way a shared *Ref is supposed to), and leaving the block restores the
// map so any *new* name the block defined is forgotten, while mutations to
// pre-existing Refs persist because those Refs were never replaced, only
// written through.
type Env struct {
	vars map[string]*value.Ref

	// mu is held by Compute for the whole of one call, so one goroutine
	// can hand this Env to another (the wasm binding and the cache REPL's
	// exec command can both do this) between evaluation calls. Nothing
	// inside an evaluation (include, require, read_lines, native calls)
	// locks it; mu only matters at that handoff boundary.
	mu sync.Mutex
}

// NewEnv returns an empty environment.
func NewEnv() *Env {
	return &Env{vars: map[string]*value.Ref{}}
}

// Get looks up name's backing Ref.
func (e *Env) Get(name string) (*value.Ref, bool) {
	r, ok := e.vars[name]
	return r, ok
}

// Define creates a fresh Ref for name (overwriting any existing binding's
// *slot*, not the Ref another closure may still be holding onto) and
// returns it.
func (e *Env) Define(name string, v value.Value) *value.Ref {
	ref := value.NewRef(v)
	e.vars[name] = ref
	return ref
}

// DefineRef binds name directly to an existing Ref, used for parameter
// binding when the caller passed a Ref (a foreign callback argument) and
// for restoring a captured closure environment.
func (e *Env) DefineRef(name string, ref *value.Ref) {
	e.vars[name] = ref
}

// Snapshot captures the current name -> Ref bindings. Cheap: it copies the
// map's entries (pointers), never the cells they point to.
func (e *Env) Snapshot() map[string]*value.Ref {
	snap := make(map[string]*value.Ref, len(e.vars))
	for k, v := range e.vars {
		snap[k] = v
	}
	return snap
}

// Restore replaces the live binding set with a previously captured
// snapshot.
func (e *Env) Restore(snap map[string]*value.Ref) {
	e.vars = snap
}

// Lock and Unlock guard a handoff of this Env between goroutines — the
// wasm binding and the cache REPL's exec command both call compute()
// against a shared Env from whatever goroutine handles the request, so the
// handoff itself (not in-progress evaluation, which is single-threaded and
// synchronous per spec §5) needs the exclusion.
func (e *Env) Lock()   { e.mu.Lock() }
func (e *Env) Unlock() { e.mu.Unlock() }

// Names returns every currently bound identifier, for callers (the cache
// REPL's script_ctx command) that need to show what a script left behind
// without reaching into the unexported map themselves.
func (e *Env) Names() []string {
	names := make([]string, 0, len(e.vars))
	for k := range e.vars {
		names = append(names, k)
	}
	return names
}

// Clone returns a new Env sharing this one's current bindings — used when a
// lambda captures its defining environment (spec §4.3.4: "closures capture
// environment by reference"). Later writes to variables that existed at
// capture time are visible inside the closure (same *Ref), but names
// defined in the outer scope afterward are not, and names the closure body
// defines itself never leak back out.
func (e *Env) Clone() *Env {
	return &Env{vars: e.Snapshot()}
}
