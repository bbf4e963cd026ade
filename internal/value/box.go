package value

import "math/big"

// KindOf tags a Value for dispatch. It does not dereference: a *Ref
// reports KindRef, so callers that want the underlying value's kind deref
// first (index.go and ops.go deref on entry, and TypeOf and the is_*
// built-ins deref before calling KindOf — a Ref is never itself
// user-observable as a "type").
func KindOf(v Value) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case U8:
		return KindU8
	case I8:
		return KindI8
	case Int:
		return KindInt
	case Double:
		return KindDouble
	case string:
		return KindString
	case *Error:
		return KindError
	case *Array:
		return KindArray
	case *Struct:
		return KindStruct
	case *Function:
		return KindFunction
	case *NativeFunction:
		return KindNativeFunction
	case *NativeLibrary:
		return KindNativeLibrary
	case Range:
		return KindRange
	case *Ref:
		return KindRef
	default:
		return KindNull
	}
}

// BoxInt64 applies the literal/narrowing boxing rule (spec §6.5, §3 as
// resolved in SPEC_FULL.md): values in 0..=255 box to U8, values in
// -128..=-1 box to I8, everything else boxes to Int. This is the rule used
// by hex integer literals and by the operators that narrow their result
// (subtraction, modulo, bitwise-or, bitwise-xor — see SPEC_FULL.md §3).
func BoxInt64(n int64) Value {
	if n >= 0 && n <= 255 {
		return U8(n)
	}
	if n >= -128 && n <= -1 {
		return I8(n)
	}
	return NewInt(n)
}

// BoxBigInt is BoxInt64's counterpart for arbitrary-precision results.
func BoxBigInt(n *big.Int) Value {
	if n.IsInt64() {
		return BoxInt64(n.Int64())
	}
	return NewBigInt(n)
}

// BoxInt is always an Int: used for decimal integer literals and for range
// elements. The operators that never narrow (addition, multiplication,
// division, unary bitwise-not — SPEC_FULL.md §3) build their Int with
// NewBigInt directly.
func BoxInt(n int64) Value {
	return NewInt(n)
}

// Narrow re-boxes an already-evaluated integral Value through the U8/I8/Int
// narrowing rule; non-integral values (bool, string, Double, *Array,
// *Struct, Range, ...) pass through unchanged. Array- and struct-literal
// construction apply this to each element/field at the literal's own level
// only — it never recurses into a nested *Array or *Struct, so a range
// materialized inside an outer literal keeps its own Int elements.
func Narrow(v Value) Value {
	n, ok := AsBig(Deref(v))
	if !ok {
		return v
	}
	return BoxBigInt(n)
}

// AsBig returns the big.Int value of any integral variant (U8, I8, Int),
// and ok=false for anything else (including Double, which callers handle
// separately since it never participates in integer-only operators).
func AsBig(v Value) (*big.Int, bool) {
	switch n := v.(type) {
	case U8:
		return big.NewInt(int64(n)), true
	case I8:
		return big.NewInt(int64(n)), true
	case Int:
		return n.V, true
	default:
		return nil, false
	}
}

// IsIntegral reports whether v (after deref) is one of U8, I8, Int.
func IsIntegral(v Value) bool {
	_, ok := AsBig(Deref(v))
	return ok
}

// IsNumeric reports whether v (after deref) is any numeric variant.
func IsNumeric(v Value) bool {
	v = Deref(v)
	if IsIntegral(v) {
		return true
	}
	_, ok := v.(Double)
	return ok
}

// AsFloat returns the float64 view of any numeric variant.
func AsFloat(v Value) (float64, bool) {
	v = Deref(v)
	switch n := v.(type) {
	case U8:
		return float64(n), true
	case I8:
		return float64(n), true
	case Int:
		f := new(big.Float).SetInt(n.V)
		r, _ := f.Float64()
		return r, true
	case Double:
		return float64(n), true
	default:
		return 0, false
	}
}

// NewError builds a script-visible Error value (spec §7.1).
func NewError(code int64, message string) *Error {
	return &Error{Code: code, Message: message}
}
