// Package builtins implements the fixed set of built-in functions spec.md
// §4.4 reserves from user rebinding: a name -> NativeFnObj table narrowed
// to exactly this closed list — no open-ended module system, since
// spec.md's grammar never grows past these names.
package builtins

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"sentra/internal/value"
)

// New builds the registry of built-ins that need nothing beyond their own
// arguments (no file I/O, no access to the evaluator or environment).
// internal/eval adds require to this table; eval, include and read_lines
// need engine access and are matched by name in the evaluator instead of
// living in the table.
func New() map[string]value.Value {
	reg := map[string]value.Value{}
	add := func(name string, fn func(args []value.Value) (value.Value, error)) {
		reg[name] = &value.NativeFunction{
			Name: name,
			Fn: func(args []value.Value, _ value.Callback) (value.Value, error) {
				return fn(args)
			},
		}
	}

	add("println", biPrintln)
	add("print", biPrint)
	add("length", arityErr1(biLength))
	add("sqrt", mathFn(math.Sqrt))
	add("abs", biAbs)
	add("log", mathFn(math.Log10))
	add("ln", mathFn(math.Log))
	add("sin", mathFn(math.Sin))
	add("cos", mathFn(math.Cos))
	add("tan", mathFn(math.Tan))
	add("to_int", arityErr1(biToInt))
	add("to_double", arityErr1(biToDouble))
	add("to_string", arityErr1(biToString))
	add("to_bool", arityErr1(biToBool))
	add("make_err", biMakeErr)
	add("is_error", kindCheck(value.KindError))
	add("is_u8", kindCheck(value.KindU8))
	add("is_i8", kindCheck(value.KindI8))
	add("is_int", kindCheck(value.KindInt))
	add("is_double", kindCheck(value.KindDouble))
	add("is_bool", kindCheck(value.KindBool))
	add("is_string", kindCheck(value.KindString))
	add("is_array", kindCheck(value.KindArray))
	add("is_struct", kindCheck(value.KindStruct))
	add("is_function", biIsFunction)
	add("type_of", arityErr1(func(v value.Value) (value.Value, error) { return value.TypeOf(v), nil }))

	return reg
}

func wrongArity(name string) (value.Value, error) {
	return value.NewError(3, fmt.Sprintf("wrong number of arguments to %s", name)), nil
}

func biPrintln(args []value.Value) (value.Value, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = value.ToString(a)
	}
	fmt.Println(strings.Join(parts, " "))
	return nil, nil
}

func biPrint(args []value.Value) (value.Value, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = value.ToString(a)
	}
	fmt.Print(strings.Join(parts, " "))
	return nil, nil
}

func arityErr1(fn func(value.Value) (value.Value, error)) func([]value.Value) (value.Value, error) {
	return func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return value.NewError(3, "expects exactly one argument"), nil
		}
		return fn(args[0])
	}
}

func biLength(v value.Value) (value.Value, error) { return value.Len(v), nil }

func kindCheck(k value.Kind) func([]value.Value) (value.Value, error) {
	return arityErr1(func(v value.Value) (value.Value, error) {
		return value.KindOf(value.Deref(v)) == k, nil
	})
}

func biIsFunction(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.NewError(3, "expects exactly one argument"), nil
	}
	k := value.KindOf(value.Deref(args[0]))
	return k == value.KindFunction || k == value.KindNativeFunction, nil
}

func mathFn(f func(float64) float64) func([]value.Value) (value.Value, error) {
	return arityErr1(func(v value.Value) (value.Value, error) {
		n, ok := value.AsFloat(v)
		if !ok {
			return value.NewError(1, "expects a number"), nil
		}
		return value.Double(f(n)), nil
	})
}

func biAbs(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.NewError(3, "expects exactly one argument"), nil
	}
	v := value.Deref(args[0])
	if d, ok := v.(value.Double); ok {
		return value.Double(math.Abs(float64(d))), nil
	}
	if n, ok := value.AsBig(v); ok {
		return value.BoxBigInt(new(big.Int).Abs(n)), nil
	}
	return value.NewError(1, "expects a number"), nil
}

func biToInt(v value.Value) (value.Value, error) {
	v = value.Deref(v)
	switch t := v.(type) {
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return value.NewError(4, "cannot convert to int: "+t), nil
		}
		return value.BoxInt64(n), nil
	case bool:
		if t {
			return value.BoxInt64(1), nil
		}
		return value.BoxInt64(0), nil
	case value.Double:
		return value.BoxInt64(int64(t)), nil
	default:
		if n, ok := value.AsBig(v); ok {
			return value.BoxBigInt(n), nil
		}
		return value.NewError(1, "cannot convert to int"), nil
	}
}

func biToDouble(v value.Value) (value.Value, error) {
	v = value.Deref(v)
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return value.NewError(4, "cannot convert to double: "+s), nil
		}
		return value.Double(f), nil
	}
	if f, ok := value.AsFloat(v); ok {
		return value.Double(f), nil
	}
	return value.NewError(1, "cannot convert to double"), nil
}

func biToString(v value.Value) (value.Value, error) { return value.ToString(v), nil }
func biToBool(v value.Value) (value.Value, error)   { return value.ToBool(v), nil }

func biMakeErr(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.NewError(3, "make_err expects (code, message)"), nil
	}
	code, ok := value.AsBig(value.Deref(args[0]))
	if !ok {
		return value.NewError(1, "make_err code must be an integer"), nil
	}
	msg := value.ToString(args[1])
	return value.NewError(code.Int64(), msg), nil
}
