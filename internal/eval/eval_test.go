package eval

import (
	"os"
	"path/filepath"
	"testing"

	sentraerrors "sentra/internal/errors"
	"sentra/internal/value"
)

func TestComputeSimpleExpression(t *testing.T) {
	env := NewEnv()
	v, err := Compute("2 + 3", env, NewFileHost(), "test")
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if value.ToString(v) != "5" {
		t.Fatalf("got %v, want 5", v)
	}
}

func TestComputePersistsBindingsAcrossCalls(t *testing.T) {
	env := NewEnv()
	host := NewFileHost()
	if _, err := Compute("x = 10", env, host, "test"); err != nil {
		t.Fatalf("Compute #1: %v", err)
	}
	v, err := Compute("x + 1", env, host, "test")
	if err != nil {
		t.Fatalf("Compute #2: %v", err)
	}
	if value.ToString(v) != "11" {
		t.Fatalf("got %v, want 11", v)
	}
}

func TestEvalBuiltinRunsAgainstCurrentEnv(t *testing.T) {
	env := NewEnv()
	host := NewFileHost()
	v, err := Compute(`x = 1; eval("x = x + 1"); x`, env, host, "test")
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if value.ToString(v) != "2" {
		t.Fatalf("got %v, want 2 (eval should mutate the caller's x)", v)
	}
}

func TestIncludeReadsFileAndRunsAgainstCurrentEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lib.sn")
	if err := os.WriteFile(path, []byte("y = 41 + 1"), 0644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	env := NewEnv()
	host := NewFileHost()
	v, err := Compute(`include("`+path+`"); y`, env, host, "test")
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if value.ToString(v) != "42" {
		t.Fatalf("got %v, want 42", v)
	}
}

func TestIncludeErrorAttachesIncludedPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.sn")
	if err := os.WriteFile(path, []byte("x = = = ="), 0644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	env := NewEnv()
	host := NewFileHost()
	_, err := Compute(`include("`+path+`")`, env, host, "test")
	if err == nil {
		t.Fatalf("expected an error from the malformed included file")
	}
	se, ok := err.(*sentraerrors.SentraError)
	if !ok {
		t.Fatalf("got %T, want *errors.SentraError", err)
	}
	if se.Location.File != path {
		t.Fatalf("got Location.File=%q, want the included path %q", se.Location.File, path)
	}
}

func TestReadLinesSplitsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lines.txt")
	if err := os.WriteFile(path, []byte("a\nb\nc\n"), 0644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	env := NewEnv()
	host := NewFileHost()
	v, err := Compute(`read_lines("`+path+`")`, env, host, "test")
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	arr, ok := value.Deref(v).(*value.Array)
	if !ok {
		t.Fatalf("got %T, want *value.Array", v)
	}
	if len(arr.Elements) != 3 {
		t.Fatalf("got %d lines, want 3", len(arr.Elements))
	}
	if arr.Elements[0] != "a" || arr.Elements[1] != "b" || arr.Elements[2] != "c" {
		t.Fatalf("got %v", arr.Elements)
	}
}

func TestRequireLoadsBundledSQLLibrary(t *testing.T) {
	env := NewEnv()
	host := NewFileHost()
	v, err := Compute(`require("sql")`, env, host, "test")
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	lib, ok := value.Deref(v).(*value.NativeLibrary)
	if !ok {
		t.Fatalf("got %T, want *value.NativeLibrary", v)
	}
	for _, fn := range []string{"connect", "query", "close"} {
		if _, ok := lib.Fields[fn]; !ok {
			t.Fatalf("sql library missing %q", fn)
		}
	}
}

// The following cases exercise spec.md §8's seven concrete scenarios
// through the full lex -> parse -> lower -> eval pipeline via Compute,
// rather than at the raw value.Value operator level.

func TestScenarioRefAliasingSeesLaterAssignment(t *testing.T) {
	env := NewEnv()
	host := NewFileHost()
	if _, err := Compute("x = 99; y = &x; x = 100;", env, host, "test"); err != nil {
		t.Fatalf("Compute: %v", err)
	}
	ref, ok := env.Get("y")
	if !ok {
		t.Fatalf("y is not bound")
	}
	got := value.Deref(ref.Read())
	i, ok := got.(value.Int)
	if !ok || i.Int64() != 100 {
		t.Fatalf("y reads as %#v, want Int(100)", got)
	}
}

func TestScenarioDropArrayElement(t *testing.T) {
	env := NewEnv()
	host := NewFileHost()
	if _, err := Compute("arr = [1,2,3,4]; drop(arr[2]);", env, host, "test"); err != nil {
		t.Fatalf("Compute: %v", err)
	}
	ref, ok := env.Get("arr")
	if !ok {
		t.Fatalf("arr is not bound")
	}
	arr, ok := value.Deref(ref.Read()).(*value.Array)
	if !ok {
		t.Fatalf("arr is %T, want *value.Array", ref.Read())
	}
	if len(arr.Elements) != 3 {
		t.Fatalf("got %d elements, want 3", len(arr.Elements))
	}
	want := []value.Value{value.U8(1), value.U8(2), value.U8(4)}
	for i, w := range want {
		if arr.Elements[i] != w {
			t.Fatalf("arr[%d] = %#v, want %#v", i, arr.Elements[i], w)
		}
	}
}

func TestScenarioClosureAndWhileLoop(t *testing.T) {
	env := NewEnv()
	host := NewFileHost()
	script := `x = 2; y = 3; c = 5
f = (a,b,c) => { d = a+b; while(c!=0){ d = d*c; c = c-1 } d }
f(x,y,c)`
	v, err := Compute(script, env, host, "test")
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	i, ok := value.Deref(v).(value.Int)
	if !ok || i.Int64() != 600 {
		t.Fatalf("got %#v, want Int(600)", v)
	}
}

func TestScenarioIfMutatesButDoesNotLeakNewName(t *testing.T) {
	env := NewEnv()
	host := NewFileHost()
	if _, err := Compute("x = 5; if (x>=5) { x = x-1; z = 8 }", env, host, "test"); err != nil {
		t.Fatalf("Compute: %v", err)
	}
	xref, ok := env.Get("x")
	if !ok {
		t.Fatalf("x is not bound")
	}
	if got, ok := value.Deref(xref.Read()).(value.U8); !ok || got != value.U8(4) {
		t.Fatalf("x = %#v, want U8(4)", xref.Read())
	}
	if _, ok := env.Get("z"); ok {
		t.Fatalf("z leaked out of the if-block, want it absent")
	}
}

func TestScenarioStructTemplateInterpolation(t *testing.T) {
	env := NewEnv()
	host := NewFileHost()
	script := `s = struct { name:"n", age:34 }; """Hi ${s.name} age ${s.age}"""`
	v, err := Compute(script, env, host, "test")
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if value.ToString(v) != "Hi n age 34" {
		t.Fatalf("got %q, want %q", value.ToString(v), "Hi n age 34")
	}
}

func TestScenarioBitwiseFamily(t *testing.T) {
	env := NewEnv()
	host := NewFileHost()
	cases := []struct {
		script string
		want   value.Value
	}{
		{"1|2", value.U8(3)},
		{"127|135", value.U8(255)},
		{"-1|1", value.I8(-1)},
		{"~255", value.Int{}},
	}
	for _, c := range cases {
		v, err := Compute(c.script, env, host, "test")
		if err != nil {
			t.Fatalf("Compute(%q): %v", c.script, err)
		}
		if c.script == "~255" {
			i, ok := value.Deref(v).(value.Int)
			if !ok || i.Int64() != -256 {
				t.Fatalf("~255 = %#v, want Int(-256)", v)
			}
			continue
		}
		if value.Deref(v) != c.want {
			t.Fatalf("%s = %#v, want %#v", c.script, v, c.want)
		}
	}
}

func TestScenarioForInRangeAccumulates(t *testing.T) {
	env := NewEnv()
	host := NewFileHost()
	if _, err := Compute("arr = []; for _, n in 1..=4 { arr = arr + n }", env, host, "test"); err != nil {
		t.Fatalf("Compute: %v", err)
	}
	ref, ok := env.Get("arr")
	if !ok {
		t.Fatalf("arr is not bound")
	}
	arr, ok := value.Deref(ref.Read()).(*value.Array)
	if !ok {
		t.Fatalf("arr is %T, want *value.Array", ref.Read())
	}
	if len(arr.Elements) != 4 {
		t.Fatalf("got %d elements, want 4", len(arr.Elements))
	}
	for idx, want := range []int64{1, 2, 3, 4} {
		i, ok := value.Deref(arr.Elements[idx]).(value.Int)
		if !ok || i.Int64() != want {
			t.Fatalf("arr[%d] = %#v, want Int(%d)", idx, arr.Elements[idx], want)
		}
	}
}

func TestShadowedEvalNameSkipsHostBuiltin(t *testing.T) {
	env := NewEnv()
	host := NewFileHost()
	env.Define("eval", &value.NativeFunction{
		Name: "eval",
		Fn: func(args []value.Value, cb value.Callback) (value.Value, error) {
			return "overridden", nil
		},
	})
	v, err := Compute(`eval("ignored")`, env, host, "test")
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if value.ToString(v) != "overridden" {
		t.Fatalf("got %v, want the shadowing function's result", v)
	}
}
