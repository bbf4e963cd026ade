package value

import (
	"fmt"
	"strconv"
	"strings"
)

// ToBool implements to_bool (spec §4.1): numbers are truthy unless zero,
// strings/arrays/structs are truthy unless empty, Bool is itself, anything
// else (Null, Error, Function, ...) is false.
func ToBool(v Value) bool {
	v = Deref(v)
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case U8:
		return t != 0
	case I8:
		return t != 0
	case Int:
		return t.V.Sign() != 0
	case Double:
		return t != 0
	case string:
		return len(t) > 0
	case *Array:
		return len(t.Elements) > 0
	case *Struct:
		return len(t.Fields) > 0
	case Range:
		return t.Len() > 0
	default:
		return false
	}
}

// ToString implements to_string (spec §4.1): a stable, pretty form with
// struct fields rendered in sorted key order so equal structs always print
// identically.
func ToString(v Value) string {
	v = Deref(v)
	switch t := v.(type) {
	case nil:
		return "null"
	case bool:
		if t {
			return "true"
		}
		return "false"
	case U8:
		return strconv.FormatUint(uint64(t), 10)
	case I8:
		return strconv.FormatInt(int64(t), 10)
	case Int:
		return t.V.String()
	case Double:
		return strconv.FormatFloat(float64(t), 'g', -1, 64)
	case string:
		return t
	case *Error:
		if t.Message != "" {
			return fmt.Sprintf("error(%d): %s", t.Code, t.Message)
		}
		return fmt.Sprintf("error(%d)", t.Code)
	case *Array:
		parts := make([]string, len(t.Elements))
		for i, e := range t.Elements {
			parts[i] = quoteIfString(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *Struct:
		keys := t.SortedKeys()
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + quoteIfString(t.Fields[k])
		}
		return "struct { " + strings.Join(parts, ", ") + " }"
	case *Function:
		return "<function>"
	case *NativeFunction:
		return fmt.Sprintf("<native %s>", t.Name)
	case *NativeLibrary:
		return fmt.Sprintf("<library %s>", t.Name)
	case Range:
		if t.Inclusive {
			return fmt.Sprintf("%d..=%d", t.Start, t.End)
		}
		return fmt.Sprintf("%d..%d", t.Start, t.End)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func quoteIfString(v Value) string {
	v = Deref(v)
	if s, ok := v.(string); ok {
		return strconv.Quote(s)
	}
	return ToString(v)
}

// TypeOf implements type_of: the lowercase variant name.
func TypeOf(v Value) string {
	return KindOf(Deref(v)).String()
}
