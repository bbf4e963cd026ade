package value

import "sync"

// Ref is the single allowed source of aliasing (spec §3.2, §9): an
// interior-mutable cell. Every environment binding holds a *Ref; multiple
// names may hold the same *Ref pointer, and writes through any of them are
// visible through all. A Ref's own payload may itself be a Ref (e.g. a
// reference stored inside an array element) but `&name` never wraps an
// existing Ref in a new one — see eval's resolveRef, which is where that
// normalization happens.
type Ref struct {
	mu      sync.Mutex
	payload Value
}

// NewRef creates a fresh cell holding v.
func NewRef(v Value) *Ref {
	return &Ref{payload: v}
}

// Read returns the cell's current payload.
func (r *Ref) Read() Value {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.payload
}

// Write replaces the cell's payload.
func (r *Ref) Write(v Value) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payload = v
}

// Deref follows through any number of Refs to the first non-Ref payload.
// Used by operators and built-ins, which transparently read through
// references on their operands (spec §4.1).
func Deref(v Value) Value {
	for {
		r, ok := v.(*Ref)
		if !ok {
			return v
		}
		v = r.Read()
	}
}
