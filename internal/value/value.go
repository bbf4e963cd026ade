// Package value implements the tagged primitive variants the evaluator
// operates on (spec component C1): numbers, strings, arrays, structs,
// functions, native handles, ranges and the interior-mutable Ref cell.
package value

import (
	"math/big"
)

// Value is any of the closed set of variants below: a tree-walking
// evaluator's value, a plain Go interface{} over a small set of concrete
// types, dispatched with type switches rather than a boxed register
// representation.
type Value interface{}

// Kind tags a Value for dispatch without repeating type switches everywhere.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindU8
	KindI8
	KindInt
	KindDouble
	KindString
	KindError
	KindArray
	KindStruct
	KindFunction
	KindNativeFunction
	KindNativeLibrary
	KindRange
	KindRef
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindU8:
		return "u8"
	case KindI8:
		return "i8"
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindError:
		return "error"
	case KindArray:
		return "array"
	case KindStruct:
		return "struct"
	case KindFunction:
		return "function"
	case KindNativeFunction:
		return "native_function"
	case KindNativeLibrary:
		return "native_library"
	case KindRange:
		return "range"
	case KindRef:
		return "ref"
	default:
		return "unknown"
	}
}

// U8 is an unsigned 8-bit integer variant (0..=255).
type U8 uint8

// I8 is a signed 8-bit integer variant (-128..=127).
type I8 int8

// Int is the signed wide-integer variant. 128-bit signed integers have no
// native Go representation, so this uses math/big.Int rather than a
// hand-rolled bit-packed type.
type Int struct {
	V *big.Int
}

// Double is the IEEE-754 64-bit floating point variant.
type Double float64

// NewInt builds an Int from an int64.
func NewInt(n int64) Int {
	return Int{V: big.NewInt(n)}
}

// NewBigInt builds an Int from a *big.Int, taking ownership of it.
func NewBigInt(n *big.Int) Int {
	return Int{V: n}
}

// Int64 returns the Int truncated to an int64 (used by indexing, ranges,
// loop counters, and anywhere a host-side integer is required).
func (i Int) Int64() int64 {
	return i.V.Int64()
}

// Error is the script-visible error variant (spec §7.1): carries a code
// and/or a message. Built-ins and operators return this value rather than
// aborting evaluation.
type Error struct {
	Code    int64
	Message string
}

// Array is an ordered, mutable sequence of values. It is always referred to
// through a pointer so that indexed mutation (append/drop/replace) is
// visible to every holder of the same Array after an lvalue resolves to it.
type Array struct {
	Elements []Value
}

// Struct is a string-keyed mapping; iteration order for to_string/equality
// is always sorted-by-key (spec §3.1), never insertion order.
type Struct struct {
	Fields map[string]Value
}

// NewStruct returns an empty Struct.
func NewStruct() *Struct {
	return &Struct{Fields: map[string]Value{}}
}

// SortedKeys returns the struct's field names in sorted order.
func (s *Struct) SortedKeys() []string {
	keys := make([]string, 0, len(s.Fields))
	for k := range s.Fields {
		keys = append(keys, k)
	}
	sortStrings(keys)
	return keys
}

func sortStrings(s []string) {
	// small, allocation-light insertion sort; struct field counts in
	// scripts are tiny and this avoids importing sort for one call site
	// the way the rest of this package avoids pulling in helpers it
	// doesn't need.
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// Range is a pair of integer endpoints with an exclusivity flag. It
// materializes lazily to an Array only when consumed as a value (spec
// §3.1, §8 "Range materialization").
type Range struct {
	Start     int64
	End       int64
	Inclusive bool
}

// Materialize produces the Array a Range represents.
func (r Range) Materialize() *Array {
	var n int64
	if r.Inclusive {
		n = r.End - r.Start + 1
	} else {
		n = r.End - r.Start
	}
	if n < 0 {
		n = 0
	}
	elems := make([]Value, 0, n)
	for i := int64(0); i < n; i++ {
		elems = append(elems, BoxInt(r.Start+i))
	}
	return &Array{Elements: elems}
}

// Len returns the range's materialized length without allocating.
func (r Range) Len() int64 {
	var n int64
	if r.Inclusive {
		n = r.End - r.Start + 1
	} else {
		n = r.End - r.Start
	}
	if n < 0 {
		n = 0
	}
	return n
}
