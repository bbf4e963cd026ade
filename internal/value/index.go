package value

// Index implements index(container, key) for Array (by integer), Struct
// (by string), String (by integer, one-character String), and Range (by
// integer, against its materialization) — spec §4.1.
func Index(container, key Value) Value {
	container = Deref(container)
	key = Deref(key)
	switch c := container.(type) {
	case *Array:
		i, ok := intKey(key)
		if !ok || i < 0 || i >= int64(len(c.Elements)) {
			return typeErr("array index out of range")
		}
		return c.Elements[i]
	case *Struct:
		k, ok := key.(string)
		if !ok {
			return typeErr("struct key must be a string")
		}
		v, exists := c.Fields[k]
		if !exists {
			return typeErr("no such field: " + k)
		}
		return v
	case string:
		i, ok := intKey(key)
		runes := []rune(c)
		if !ok || i < 0 || i >= int64(len(runes)) {
			return typeErr("string index out of range")
		}
		return string(runes[i])
	case Range:
		i, ok := intKey(key)
		n := c.Len()
		if !ok || i < 0 || i >= n {
			return typeErr("range index out of range")
		}
		return BoxInt(c.Start + i)
	default:
		return typeErr("value is not indexable")
	}
}

func intKey(v Value) (int64, bool) {
	n, ok := AsBig(Deref(v))
	if !ok {
		return 0, false
	}
	return n.Int64(), true
}

// Len implements len: Array element count, String rune count, Struct field
// count, Range materialized length.
func Len(v Value) Value {
	v = Deref(v)
	switch t := v.(type) {
	case *Array:
		return BoxInt64(int64(len(t.Elements)))
	case *Struct:
		return BoxInt64(int64(len(t.Fields)))
	case string:
		return BoxInt64(int64(len([]rune(t))))
	case Range:
		return BoxInt64(t.Len())
	default:
		return typeErr("value has no length")
	}
}

// SetIndex mutates container[key] = newVal in place for Array and Struct
// (spec §4.4 "Indexed"/"Field" assignment): an Array extends with Null up
// to i when i == len, Struct upserts unconditionally, anything else is an
// Error. String assignment is handled by the evaluator directly since Go
// strings are immutable — the Ref holding the string is rewritten wholesale
// there instead of mutated through this entry point.
func SetIndex(container, key, newVal Value) Value {
	container = Deref(container)
	switch c := container.(type) {
	case *Array:
		i, ok := intKey(key)
		if !ok || i < 0 {
			return typeErr("array index out of range")
		}
		if i == int64(len(c.Elements)) {
			c.Elements = append(c.Elements, newVal)
			return newVal
		}
		if i > int64(len(c.Elements)) {
			return typeErr("array index out of range")
		}
		c.Elements[i] = newVal
		return newVal
	case *Struct:
		k, ok := Deref(key).(string)
		if !ok {
			return typeErr("struct key must be a string")
		}
		c.Fields[k] = newVal
		return newVal
	default:
		return typeErr("value does not support indexed assignment")
	}
}

// DropIndex implements drop() on an array element, a struct field, or a
// character of a string (spec §3.2, §8). String drop returns the new
// string since Go strings can't be mutated in place; callers write it back
// through the lvalue's Ref.
func DropIndex(container, key Value) Value {
	container = Deref(container)
	switch c := container.(type) {
	case *Array:
		i, ok := intKey(key)
		if !ok || i < 0 || i >= int64(len(c.Elements)) {
			return typeErr("array index out of range")
		}
		c.Elements = append(c.Elements[:i], c.Elements[i+1:]...)
		return nil
	case *Struct:
		k, ok := Deref(key).(string)
		if !ok {
			return typeErr("struct key must be a string")
		}
		delete(c.Fields, k)
		return nil
	case string:
		i, ok := intKey(key)
		runes := []rune(c)
		if !ok || i < 0 || i >= int64(len(runes)) {
			return typeErr("string index out of range")
		}
		return string(append(runes[:i], runes[i+1:]...))
	default:
		return typeErr("value does not support drop")
	}
}
