package value

// Clone deep-clones aggregate values (Array, Struct) and returns every
// other variant unchanged, since those are already immutable once
// constructed. read(ref) uses this for every context except lvalue
// resolution (spec §4.1): a plain variable read must not let the caller
// mutate the environment's own backing array/struct through the returned
// value.
func Clone(v Value) Value {
	switch t := v.(type) {
	case *Array:
		elems := make([]Value, len(t.Elements))
		for i, e := range t.Elements {
			elems[i] = Clone(e)
		}
		return &Array{Elements: elems}
	case *Struct:
		fields := make(map[string]Value, len(t.Fields))
		for k, f := range t.Fields {
			fields[k] = Clone(f)
		}
		return &Struct{Fields: fields}
	default:
		return v
	}
}
