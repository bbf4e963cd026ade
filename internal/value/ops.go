package value

import (
	"math"
	"math/big"
	"reflect"
)

// typeErr builds the Error value every failing operator returns instead of
// aborting evaluation (spec §4.1, §7.1).
func typeErr(msg string) *Error {
	return NewError(1, msg)
}

func divZeroErr() *Error {
	return NewError(2, "division by zero")
}

// numericPair derefs both operands and reports whether either side is a
// Double (forcing the whole operation into floating point, spec §3.1
// widening rules) or whether both sides are integral.
func numericPair(a, b Value) (af, bf float64, isDouble bool, abig, bbig *big.Int, bothInt bool) {
	a, b = Deref(a), Deref(b)
	_, aIsDouble := a.(Double)
	_, bIsDouble := b.(Double)
	if aIsDouble || bIsDouble {
		af, _ = AsFloat(a)
		bf, _ = AsFloat(b)
		return af, bf, true, nil, nil, false
	}
	abig, aok := AsBig(a)
	bbig, bok := AsBig(b)
	if aok && bok {
		return 0, 0, false, abig, bbig, true
	}
	return 0, 0, false, nil, nil, false
}

// Add implements `+`: numeric widening, string concatenation/stringify, and
// array append/concatenate (spec §3.1). Never narrows its integer result
// (SPEC_FULL.md §3).
func Add(a, b Value) Value {
	a, b = Deref(a), Deref(b)
	if arr, ok := a.(*Array); ok {
		if other, ok := b.(*Array); ok {
			elems := append(append([]Value{}, arr.Elements...), other.Elements...)
			return &Array{Elements: elems}
		}
		elems := append(append([]Value{}, arr.Elements...), b)
		return &Array{Elements: elems}
	}
	if s, ok := a.(string); ok {
		return s + ToString(b)
	}
	if _, ok := b.(string); ok {
		return ToString(a) + b.(string)
	}
	if _, isBool := a.(bool); isBool {
		return typeErr("arithmetic on bool is forbidden")
	}
	if _, isBool := b.(bool); isBool {
		return typeErr("arithmetic on bool is forbidden")
	}
	af, bf, isDouble, abig, bbig, bothInt := numericPair(a, b)
	if isDouble {
		return Double(af + bf)
	}
	if bothInt {
		return NewBigInt(new(big.Int).Add(abig, bbig))
	}
	return typeErr("unsupported operand types for +")
}

// Sub implements `-`. Narrows its result to the smallest fitting integral
// variant (SPEC_FULL.md §3, reproduced from original_source/adana-script's
// own test suite).
func Sub(a, b Value) Value {
	a, b = Deref(a), Deref(b)
	if isBoolOperand(a, b) {
		return typeErr("arithmetic on bool is forbidden")
	}
	af, bf, isDouble, abig, bbig, bothInt := numericPair(a, b)
	if isDouble {
		return Double(af - bf)
	}
	if bothInt {
		return BoxBigInt(new(big.Int).Sub(abig, bbig))
	}
	return typeErr("unsupported operand types for -")
}

// Mul implements `*`. Never narrows (SPEC_FULL.md §3).
func Mul(a, b Value) Value {
	a, b = Deref(a), Deref(b)
	if isBoolOperand(a, b) {
		return typeErr("arithmetic on bool is forbidden")
	}
	af, bf, isDouble, abig, bbig, bothInt := numericPair(a, b)
	if isDouble {
		return Double(af * bf)
	}
	if bothInt {
		return NewBigInt(new(big.Int).Mul(abig, bbig))
	}
	return typeErr("unsupported operand types for *")
}

// Div implements `/`. Integer division truncates toward zero; division by
// zero is an Error for integers and IEEE ±Inf/NaN for doubles (spec §4.1).
// Never narrows its integer result (SPEC_FULL.md §3).
func Div(a, b Value) Value {
	a, b = Deref(a), Deref(b)
	if isBoolOperand(a, b) {
		return typeErr("arithmetic on bool is forbidden")
	}
	af, bf, isDouble, abig, bbig, bothInt := numericPair(a, b)
	if isDouble {
		return Double(af / bf)
	}
	if bothInt {
		if bbig.Sign() == 0 {
			return divZeroErr()
		}
		return NewBigInt(new(big.Int).Quo(abig, bbig))
	}
	return typeErr("unsupported operand types for /")
}

// Mod implements `%`: truncated remainder, narrowing its result
// (SPEC_FULL.md §3).
func Mod(a, b Value) Value {
	a, b = Deref(a), Deref(b)
	if isBoolOperand(a, b) {
		return typeErr("arithmetic on bool is forbidden")
	}
	af, bf, isDouble, abig, bbig, bothInt := numericPair(a, b)
	if isDouble {
		return Double(math.Mod(af, bf))
	}
	if bothInt {
		if bbig.Sign() == 0 {
			return divZeroErr()
		}
		return BoxBigInt(new(big.Int).Rem(abig, bbig))
	}
	return typeErr("unsupported operand types for %")
}

// Pow implements `**`, right-associative exponentiation. Never narrows.
func Pow(a, b Value) Value {
	a, b = Deref(a), Deref(b)
	if isBoolOperand(a, b) {
		return typeErr("arithmetic on bool is forbidden")
	}
	af, bf, isDouble, abig, bbig, bothInt := numericPair(a, b)
	if isDouble {
		return Double(math.Pow(af, bf))
	}
	if bothInt {
		if bbig.Sign() < 0 {
			r := math.Pow(mustFloat(abig), mustFloat(bbig))
			return Double(r)
		}
		return NewBigInt(new(big.Int).Exp(abig, bbig, nil))
	}
	return typeErr("unsupported operand types for **")
}

func mustFloat(n *big.Int) float64 {
	f := new(big.Float).SetInt(n)
	r, _ := f.Float64()
	return r
}

// Neg implements unary `-`. Narrows (spec §6.5's literal narrowing policy
// extended to runtime negation, since no test pins this down otherwise).
func Neg(a Value) Value {
	a = Deref(a)
	if _, ok := a.(bool); ok {
		return typeErr("arithmetic on bool is forbidden")
	}
	if d, ok := a.(Double); ok {
		return Double(-d)
	}
	if n, ok := AsBig(a); ok {
		return BoxBigInt(new(big.Int).Neg(n))
	}
	return typeErr("unsupported operand type for unary -")
}

// Not implements logical unary `!`.
func Not(a Value) Value {
	return !ToBool(a)
}

// BNot implements bitwise unary `~`. Never narrows (spec §8 `~255`==Int(-256)).
func BNot(a Value) Value {
	a = Deref(a)
	n, ok := AsBig(a)
	if !ok {
		return typeErr("bitwise not requires an integer")
	}
	return NewBigInt(new(big.Int).Not(n))
}

func isBoolOperand(a, b Value) bool {
	_, ab := a.(bool)
	_, bb := b.(bool)
	return ab || bb
}

// BAnd, BOr, BXor implement `&`, `|`, `$`. All three narrow their result
// (SPEC_FULL.md §3; `|`/`$` are ground truth from the original test suite,
// `&` is analogized from the same operator family).
func BAnd(a, b Value) Value { return bitwise(a, b, (*big.Int).And) }
func BOr(a, b Value) Value  { return bitwise(a, b, (*big.Int).Or) }
func BXor(a, b Value) Value { return bitwise(a, b, (*big.Int).Xor) }

func bitwise(a, b Value, op func(z, x, y *big.Int) *big.Int) Value {
	a, b = Deref(a), Deref(b)
	abig, aok := AsBig(a)
	bbig, bok := AsBig(b)
	if !aok || !bok {
		return typeErr("bitwise operator requires integers")
	}
	return BoxBigInt(op(new(big.Int), abig, bbig))
}

// Shl, Shr implement `<<`, `>>`. Never narrow (grouped with the add/mul/div
// family: shifting is not one of the operators the original test suite
// shows narrowing).
func Shl(a, b Value) Value {
	a, b = Deref(a), Deref(b)
	abig, aok := AsBig(a)
	bbig, bok := AsBig(b)
	if !aok || !bok {
		return typeErr("shift requires integers")
	}
	if bbig.Sign() < 0 {
		return typeErr("negative shift amount")
	}
	return NewBigInt(new(big.Int).Lsh(abig, uint(bbig.Uint64())))
}

func Shr(a, b Value) Value {
	a, b = Deref(a), Deref(b)
	abig, aok := AsBig(a)
	bbig, bok := AsBig(b)
	if !aok || !bok {
		return typeErr("shift requires integers")
	}
	if bbig.Sign() < 0 {
		return typeErr("negative shift amount")
	}
	return NewBigInt(new(big.Int).Rsh(abig, uint(bbig.Uint64())))
}

// Gcd implements `@`, resolved as integer GCD (SPEC_FULL.md §3). Never
// narrows, grouped with Add/Mul/Div/BNot rather than the narrowing family
// (SPEC_FULL.md §3 lists only subtraction, modulo, bitwise-or and
// bitwise-xor as narrowing operators). Errors on non-integral operands.
func Gcd(a, b Value) Value {
	a, b = Deref(a), Deref(b)
	abig, aok := AsBig(a)
	bbig, bok := AsBig(b)
	if !aok || !bok {
		return typeErr("'@' requires integers")
	}
	g := new(big.Int).GCD(nil, nil, new(big.Int).Abs(abig), new(big.Int).Abs(bbig))
	return NewBigInt(g)
}

// Eq implements structural equality (spec §3.1): NaN != NaN, Ref compares
// dereferenced, Function equality is syntactic (same parameters and body).
func Eq(a, b Value) bool {
	a, b = Deref(a), Deref(b)
	if IsNumeric(a) && IsNumeric(b) {
		af, _ := AsFloat(a)
		bf, _ := AsFloat(b)
		if math.IsNaN(af) || math.IsNaN(bf) {
			return false
		}
		// compare exactly when both are integral to avoid float rounding
		// collapsing distinct big integers.
		if IsIntegral(a) && IsIntegral(b) {
			ab, _ := AsBig(a)
			bb, _ := AsBig(b)
			return ab.Cmp(bb) == 0
		}
		return af == bf
	}
	switch av := a.(type) {
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case nil:
		return b == nil
	case *Array:
		bv, ok := b.(*Array)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !Eq(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	case *Struct:
		bv, ok := b.(*Struct)
		if !ok || len(av.Fields) != len(bv.Fields) {
			return false
		}
		for k, fv := range av.Fields {
			other, exists := bv.Fields[k]
			if !exists || !Eq(fv, other) {
				return false
			}
		}
		return true
	case *Error:
		bv, ok := b.(*Error)
		return ok && av.Code == bv.Code && av.Message == bv.Message
	case *Function:
		bv, ok := b.(*Function)
		return ok && reflect.DeepEqual(av.Params, bv.Params) && reflect.DeepEqual(av.Body, bv.Body)
	case Range:
		bv, ok := b.(Range)
		return ok && av == bv
	default:
		return false
	}
}

// Ord compares a and b, returning -1/0/1, or an Error when the pair isn't
// comparable (spec §3.1: only same-category numerics, strings, and
// elementwise arrays are ordered).
func Ord(a, b Value) (int, *Error) {
	a, b = Deref(a), Deref(b)
	if IsNumeric(a) && IsNumeric(b) {
		if IsIntegral(a) && IsIntegral(b) {
			ab, _ := AsBig(a)
			bb, _ := AsBig(b)
			return ab.Cmp(bb), nil
		}
		af, _ := AsFloat(a)
		bf, _ := AsFloat(b)
		switch {
		case af < bf:
			return -1, nil
		case af > bf:
			return 1, nil
		default:
			return 0, nil
		}
	}
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			switch {
			case as < bs:
				return -1, nil
			case as > bs:
				return 1, nil
			default:
				return 0, nil
			}
		}
	}
	if aa, ok := a.(*Array); ok {
		if ba, ok := b.(*Array); ok {
			for i := 0; i < len(aa.Elements) && i < len(ba.Elements); i++ {
				c, err := Ord(aa.Elements[i], ba.Elements[i])
				if err != nil {
					return 0, err
				}
				if c != 0 {
					return c, nil
				}
			}
			switch {
			case len(aa.Elements) < len(ba.Elements):
				return -1, nil
			case len(aa.Elements) > len(ba.Elements):
				return 1, nil
			default:
				return 0, nil
			}
		}
	}
	return 0, typeErr("values are not ordered")
}

// And, Or implement the short-circuit-free `&&`/`||` combinators used by
// the evaluator when the caller has already decided both sides must run
// (short-circuiting itself happens in internal/eval since it is a control
// flow concern, not a pure-value one).
func And(a, b Value) Value { return ToBool(a) && ToBool(b) }
func Or(a, b Value) Value  { return ToBool(a) || ToBool(b) }
