// Package eval tree-walks the evaluation tree internal/lowering produces
// (component C4): a switch over node kind with explicit environment
// handling, no bytecode machinery (spec.md's Non-goal on bytecode
// compilation).
package eval

import (
	"fmt"
	"strings"

	"sentra/internal/builtins"
	"sentra/internal/errors"
	"sentra/internal/evalnode"
	"sentra/internal/foreign"
	"sentra/internal/hosterr"
	"sentra/internal/lexer"
	"sentra/internal/lowering"
	"sentra/internal/parser"
	"sentra/internal/value"
)

// breakSignal/returnSignal implement break/return as non-local exits: a
// panic that unwinds through however many nested blocks sit between the
// statement and its target (the nearest loop for break, the nearest
// function call frame for return) without every intermediate caller having
// to thread a "did this block decide to exit early" flag back up by hand.
type breakSignal struct{ value value.Value }
type returnSignal struct{ value value.Value }

// Evaluator holds everything a running script needs beyond its own
// environment: the fixed built-in registry, the file name attached to
// structured errors, and the host hooks (include/require/read_lines) that
// need file-system access internal/builtins deliberately doesn't have.
type Evaluator struct {
	file     string
	builtins map[string]value.Value
	host     Host
}

// Host is the file-system-facing side of include/require/read_lines/eval —
// kept as an interface so internal/eval doesn't hard-code a single
// loader, and so tests can substitute an in-memory Host.
type Host interface {
	// ReadFile returns a script file's source text.
	ReadFile(path string) (string, error)
	// ResolveOnce runs fn for path at most once concurrently, the way
	// golang.org/x/sync/singleflight dedupes concurrent identical loads
	// triggered by parallel foreign callbacks (SPEC_FULL.md §5).
	ResolveOnce(path string, fn func() (value.Value, error)) (value.Value, error)
}

// NewEvaluator builds an Evaluator over the given Host, wiring the pure
// built-ins from internal/builtins together with require, the one
// host-dependent built-in that doesn't need caller-environment access (it
// loads a native library, it doesn't evaluate script text). eval/include/
// read_lines are deliberately NOT registered here: SPEC_FULL.md requires
// eval/include to run against the caller's *current* environment, which a
// plain value.NativeFunction has no way to see, so evalCall recognizes
// those two names syntactically before falling through to a normal call
// (the same trick lowering already uses for drop()). read_lines needs no
// environment, but is handled alongside them for symmetry.
func NewEvaluator(file string, host Host) *Evaluator {
	ev := &Evaluator{file: file, host: host}
	reg := builtins.New()
	reg["require"] = &value.NativeFunction{Name: "require", Fn: ev.biRequire}
	ev.builtins = reg
	return ev
}

var hostBuiltinNames = map[string]bool{"eval": true, "include": true, "read_lines": true}

func (ev *Evaluator) err(line int, format string, args ...interface{}) error {
	return errors.NewRuntimeError(fmt.Sprintf(format, args...), ev.file, line, 0)
}

// Run lowers nothing itself (callers pass an already-lowered tree); it
// executes a statement sequence against env and recovers the return/break
// signals a bare script (or function body) may raise. A `return` at the
// top level of a script is legitimate — it just ends the script early with
// that value; a stray `break` outside any loop is a host error.
func (ev *Evaluator) Run(stmts []evalnode.SNode, env *Env) (result value.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			switch sig := r.(type) {
			case returnSignal:
				result, err = sig.value, nil
			case breakSignal:
				result, err = nil, ev.err(0, "break outside of a loop")
			case *errors.SentraError:
				result, err = nil, sig
			default:
				panic(r)
			}
		}
	}()
	result, err = ev.execBlock(stmts, env)
	return
}

func (ev *Evaluator) execBlock(stmts []evalnode.SNode, env *Env) (value.Value, error) {
	var last value.Value
	for _, s := range stmts {
		v, err := ev.execStmt(s, env)
		if err != nil {
			return nil, err
		}
		last = v
	}
	return last, nil
}

func (ev *Evaluator) execStmt(s evalnode.SNode, env *Env) (value.Value, error) {
	switch t := s.(type) {
	case evalnode.SExpr:
		return ev.evalExpr(t.Expr, env)
	case evalnode.SIf:
		return ev.execIf(t, env)
	case evalnode.SWhile:
		return ev.execWhile(t, env)
	case evalnode.SForIn:
		return ev.execForIn(t, env)
	case evalnode.SReturn:
		v, err := ev.evalExpr(t.Value, env)
		if err != nil {
			return nil, err
		}
		panic(returnSignal{v})
	case evalnode.SBreak:
		v, err := ev.evalExpr(t.Value, env)
		if err != nil {
			return nil, err
		}
		panic(breakSignal{v})
	default:
		return nil, ev.err(0, "unhandled statement node %T", s)
	}
}

func (ev *Evaluator) execIf(s evalnode.SIf, env *Env) (value.Value, error) {
	cond, err := ev.evalExpr(s.Cond, env)
	if err != nil {
		return nil, err
	}
	branch := s.Else
	if value.ToBool(cond) {
		branch = s.Then
	}
	snap := env.Snapshot()
	v, err := ev.execBlock(branch, env)
	env.Restore(snap)
	return v, err
}

// runLoopBody executes one pass of a loop body, catching a break raised
// inside it so the enclosing while/for-in can stop iterating without the
// panic propagating any further up the stack.
func (ev *Evaluator) runLoopBody(body []evalnode.SNode, env *Env) (val value.Value, broke bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			if sig, ok := r.(breakSignal); ok {
				val, broke = sig.value, true
				return
			}
			panic(r)
		}
	}()
	val, err = ev.execBlock(body, env)
	return
}

func (ev *Evaluator) execWhile(s evalnode.SWhile, env *Env) (value.Value, error) {
	var last value.Value
	for {
		cond, err := ev.evalExpr(s.Cond, env)
		if err != nil {
			return nil, err
		}
		if !value.ToBool(cond) {
			return last, nil
		}
		snap := env.Snapshot()
		v, broke, err := ev.runLoopBody(s.Body, env)
		env.Restore(snap)
		if err != nil {
			return nil, err
		}
		last = v
		if broke {
			return last, nil
		}
	}
}

func (ev *Evaluator) execForIn(s evalnode.SForIn, env *Env) (value.Value, error) {
	coll, err := ev.evalExpr(s.Collection, env)
	if err != nil {
		return nil, err
	}
	pairs, err := ev.iterate(coll, s.Line)
	if err != nil {
		return nil, err
	}
	var last value.Value
	for _, p := range pairs {
		snap := env.Snapshot()
		if s.HasKey && !s.KeyDiscard {
			env.Define(s.KeyVar, p.key)
		}
		if !s.ValDiscard {
			env.Define(s.ValVar, p.val)
		}
		v, broke, err := ev.runLoopBody(s.Body, env)
		env.Restore(snap)
		if err != nil {
			return nil, err
		}
		last = v
		if broke {
			break
		}
	}
	return last, nil
}

type kv struct{ key, val value.Value }

// iterate enumerates a collection's (key, value) pairs without eagerly
// materializing a Range into an Array unless the caller already holds one
// (spec §3.1, §8 "Range materialization" — for-in is the one place we can
// avoid the allocation, since it only ever needs the pairs in order).
func (ev *Evaluator) iterate(v value.Value, line int) ([]kv, error) {
	v = value.Deref(v)
	switch t := v.(type) {
	case *value.Array:
		out := make([]kv, len(t.Elements))
		for i, el := range t.Elements {
			out[i] = kv{value.BoxInt64(int64(i)), el}
		}
		return out, nil
	case value.Range:
		n := t.Len()
		out := make([]kv, 0, n)
		for i := int64(0); i < n; i++ {
			out = append(out, kv{value.BoxInt64(i), value.BoxInt(t.Start + i)})
		}
		return out, nil
	case *value.Struct:
		keys := t.SortedKeys()
		out := make([]kv, len(keys))
		for i, k := range keys {
			out[i] = kv{k, t.Fields[k]}
		}
		return out, nil
	case string:
		runes := []rune(t)
		out := make([]kv, len(runes))
		for i, r := range runes {
			out[i] = kv{value.BoxInt64(int64(i)), string(r)}
		}
		return out, nil
	default:
		return nil, ev.err(line, "value is not iterable")
	}
}

func (ev *Evaluator) evalExpr(n evalnode.Node, env *Env) (value.Value, error) {
	switch t := n.(type) {
	case evalnode.Lit:
		return t.Value, nil
	case evalnode.Var:
		if ref, ok := env.Get(t.Name); ok {
			return value.Clone(ref.Read()), nil
		}
		if bi, ok := ev.builtins[t.Name]; ok {
			return bi, nil
		}
		return nil, ev.err(t.Line, "undefined variable: %s", t.Name)
	case evalnode.Bin:
		return ev.evalBin(t, env)
	case evalnode.Logic:
		return ev.evalLogic(t, env)
	case evalnode.Un:
		return ev.evalUnary(t, env)
	case evalnode.AddrOf:
		ref, err := ev.resolveRef(t.Target, env)
		if err != nil {
			return nil, err
		}
		return ref, nil
	case evalnode.Call:
		return ev.evalCall(t, env)
	case evalnode.Drop:
		return ev.evalDrop(t, env)
	case evalnode.Index:
		obj, err := ev.evalExpr(t.Object, env)
		if err != nil {
			return nil, err
		}
		key, err := ev.evalExpr(t.Key, env)
		if err != nil {
			return nil, err
		}
		return value.Index(obj, key), nil
	case evalnode.Property:
		obj, err := ev.evalExpr(t.Object, env)
		if err != nil {
			return nil, err
		}
		return value.Index(obj, t.Field), nil
	case evalnode.Assign:
		return ev.evalAssign(t, env)
	case evalnode.Lambda:
		params := make([]value.Param, len(t.Params))
		for i, p := range t.Params {
			params[i] = value.Param{Name: p.Name, Discard: p.Discard}
		}
		return &value.Function{Params: params, Body: t.Body, Env: env.Clone()}, nil
	case evalnode.StructLit:
		s := value.NewStruct()
		for i, k := range t.Keys {
			v, err := ev.evalExpr(t.Values[i], env)
			if err != nil {
				return nil, err
			}
			s.Fields[k] = value.Narrow(v)
		}
		return s, nil
	case evalnode.ArrayLit:
		elems := make([]value.Value, len(t.Elements))
		for i, e := range t.Elements {
			v, err := ev.evalExpr(e, env)
			if err != nil {
				return nil, err
			}
			elems[i] = value.Narrow(v)
		}
		return &value.Array{Elements: elems}, nil
	case evalnode.RangeNode:
		start, err := ev.evalExpr(t.Start, env)
		if err != nil {
			return nil, err
		}
		end, err := ev.evalExpr(t.End, env)
		if err != nil {
			return nil, err
		}
		sb, ok := value.AsBig(value.Deref(start))
		eb, ok2 := value.AsBig(value.Deref(end))
		if !ok || !ok2 {
			return nil, ev.err(t.Line, "range endpoints must be integers")
		}
		return value.Range{Start: sb.Int64(), End: eb.Int64(), Inclusive: t.Inclusive}, nil
	case evalnode.Interp:
		var sb strings.Builder
		for _, p := range t.Parts {
			v, err := ev.evalExpr(p, env)
			if err != nil {
				return nil, err
			}
			sb.WriteString(value.ToString(v))
		}
		return sb.String(), nil
	case evalnode.Block:
		snap := env.Snapshot()
		v, err := ev.execBlock(t.Stmts, env)
		env.Restore(snap)
		return v, err
	case *evalnode.Block:
		snap := env.Snapshot()
		v, err := ev.execBlock(t.Stmts, env)
		env.Restore(snap)
		return v, err
	case evalnode.If:
		return ev.evalIf(t, env)
	default:
		return nil, ev.err(0, "unhandled expression node %T", n)
	}
}

func (ev *Evaluator) evalIf(n evalnode.If, env *Env) (value.Value, error) {
	cond, err := ev.evalExpr(n.Cond, env)
	if err != nil {
		return nil, err
	}
	snap := env.Snapshot()
	defer env.Restore(snap)
	if value.ToBool(cond) {
		return ev.execBlock(n.Then.Stmts, env)
	}
	if n.Else == nil {
		return nil, nil
	}
	return ev.evalExpr(n.Else, env)
}

func (ev *Evaluator) evalBin(t evalnode.Bin, env *Env) (value.Value, error) {
	l, err := ev.evalExpr(t.Left, env)
	if err != nil {
		return nil, err
	}
	r, err := ev.evalExpr(t.Right, env)
	if err != nil {
		return nil, err
	}
	switch t.Op {
	case "+":
		return value.Add(l, r), nil
	case "-":
		return value.Sub(l, r), nil
	case "*":
		return value.Mul(l, r), nil
	case "/":
		return value.Div(l, r), nil
	case "%":
		return value.Mod(l, r), nil
	case "**":
		return value.Pow(l, r), nil
	case "&":
		return value.BAnd(l, r), nil
	case "|":
		return value.BOr(l, r), nil
	case "$":
		return value.BXor(l, r), nil
	case "@":
		return value.Gcd(l, r), nil
	case "<<":
		return value.Shl(l, r), nil
	case ">>":
		return value.Shr(l, r), nil
	case "==":
		return value.Eq(l, r), nil
	case "!=":
		return !value.Eq(l, r), nil
	case "<", "<=", ">", ">=":
		c, errv := value.Ord(l, r)
		if errv != nil {
			return errv, nil
		}
		switch t.Op {
		case "<":
			return c < 0, nil
		case "<=":
			return c <= 0, nil
		case ">":
			return c > 0, nil
		default:
			return c >= 0, nil
		}
	default:
		return nil, ev.err(t.Line, "unknown operator %q", t.Op)
	}
}

func (ev *Evaluator) evalLogic(t evalnode.Logic, env *Env) (value.Value, error) {
	l, err := ev.evalExpr(t.Left, env)
	if err != nil {
		return nil, err
	}
	if t.Op == "&&" {
		if !value.ToBool(l) {
			return false, nil
		}
		r, err := ev.evalExpr(t.Right, env)
		if err != nil {
			return nil, err
		}
		return value.ToBool(r), nil
	}
	if value.ToBool(l) {
		return true, nil
	}
	r, err := ev.evalExpr(t.Right, env)
	if err != nil {
		return nil, err
	}
	return value.ToBool(r), nil
}

func (ev *Evaluator) evalUnary(t evalnode.Un, env *Env) (value.Value, error) {
	v, err := ev.evalExpr(t.Operand, env)
	if err != nil {
		return nil, err
	}
	switch t.Op {
	case "-":
		return value.Neg(v), nil
	case "!":
		return value.Not(v), nil
	case "~":
		return value.BNot(v), nil
	default:
		return nil, ev.err(t.Line, "unknown unary operator %q", t.Op)
	}
}

func (ev *Evaluator) evalCall(t evalnode.Call, env *Env) (value.Value, error) {
	// eval/include/read_lines are matched on the callee's literal name
	// rather than its resolved value, same as lowering does for drop() —
	// a script that shadows the name with its own variable loses the
	// built-in, which is the accepted trade for not having to thread a
	// *Env through value.NativeFunction's public signature.
	if v, ok := t.Callee.(evalnode.Var); ok && hostBuiltinNames[v.Name] {
		if _, shadowed := env.Get(v.Name); !shadowed {
			return ev.callHostBuiltin(v.Name, t.Args, env, t.Line)
		}
	}
	callee, err := ev.evalExpr(t.Callee, env)
	if err != nil {
		return nil, err
	}
	args := make([]value.Value, len(t.Args))
	for i, a := range t.Args {
		v, err := ev.evalExpr(a, env)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return ev.apply(callee, args, t.Line)
}

func (ev *Evaluator) callHostBuiltin(name string, argNodes []evalnode.Node, env *Env, line int) (value.Value, error) {
	switch name {
	case "eval":
		return ev.doEval(argNodes, env, line)
	case "include":
		return ev.doInclude(argNodes, env, line)
	case "read_lines":
		return ev.doReadLines(argNodes, env, line)
	default:
		return nil, ev.err(line, "unknown host builtin %q", name)
	}
}

func (ev *Evaluator) evalArg1(argNodes []evalnode.Node, env *Env, line int, who string) (string, error) {
	if len(argNodes) != 1 {
		return "", ev.err(line, "%s expects exactly one argument", who)
	}
	v, err := ev.evalExpr(argNodes[0], env)
	if err != nil {
		return "", err
	}
	s, ok := value.Deref(v).(string)
	if !ok {
		return "", ev.err(line, "%s expects a string argument", who)
	}
	return s, nil
}

// runSource lexes, parses, lowers and runs src against env — used by both
// include (source comes from a file) and eval (source comes from a string
// value), each running against the *current* environment rather than a
// fresh child one (SPEC_FULL.md: "evaluated against the current
// environment").
func (ev *Evaluator) runSource(src, name string, env *Env) (value.Value, error) {
	tokens := lexer.NewScanner(src).ScanTokens()
	stmts, err := parser.Parse(tokens, src, name)
	if err != nil {
		return nil, err
	}
	lowered, err := lowering.Lower(stmts, name)
	if err != nil {
		return nil, err
	}
	return ev.Run(lowered, env)
}

func (ev *Evaluator) doEval(argNodes []evalnode.Node, env *Env, line int) (value.Value, error) {
	src, err := ev.evalArg1(argNodes, env, line, "eval")
	if err != nil {
		return nil, err
	}
	return ev.runSource(src, "<eval>", env)
}

func (ev *Evaluator) doInclude(argNodes []evalnode.Node, env *Env, line int) (value.Value, error) {
	path, err := ev.evalArg1(argNodes, env, line, "include")
	if err != nil {
		return nil, err
	}
	raw, err := ev.host.ResolveOnce("include:"+path, func() (value.Value, error) {
		return ev.host.ReadFile(path)
	})
	if err != nil {
		return nil, hosterr.Wrapf(err, "include %s", path)
	}
	src, _ := raw.(string)
	v, err := ev.runSource(src, path, env)
	if err != nil {
		if se, ok := err.(*errors.SentraError); ok && se.Location.File == "<eval>" {
			se.Location.File = path
		}
		return nil, err
	}
	return v, nil
}

func (ev *Evaluator) doReadLines(argNodes []evalnode.Node, env *Env, line int) (value.Value, error) {
	path, err := ev.evalArg1(argNodes, env, line, "read_lines")
	if err != nil {
		return nil, err
	}
	raw, err := ev.host.ResolveOnce("read_lines:"+path, func() (value.Value, error) {
		return ev.host.ReadFile(path)
	})
	if err != nil {
		return nil, hosterr.Wrapf(err, "read_lines %s", path)
	}
	src, _ := raw.(string)
	src = strings.TrimRight(src, "\n")
	var lines []string
	if src != "" {
		lines = strings.Split(src, "\n")
	}
	elems := make([]value.Value, len(lines))
	for i, l := range lines {
		elems[i] = l
	}
	return &value.Array{Elements: elems}, nil
}

// biRequire loads a foreign library by name or path (component C6). Unlike
// eval/include it needs no script environment, only the callback hook so
// the library can re-enter Sentra function arguments, so it stays a plain
// value.NativeFunction.
func (ev *Evaluator) biRequire(args []value.Value, _ value.Callback) (value.Value, error) {
	if len(args) != 1 {
		return value.NewError(3, "require expects exactly one argument"), nil
	}
	path, ok := value.Deref(args[0]).(string)
	if !ok {
		return value.NewError(1, "require expects a string argument"), nil
	}
	lib, err := foreign.Load(path, ev.callback)
	if err != nil {
		return nil, hosterr.Wrapf(err, "require %s", path)
	}
	return lib, nil
}

// apply invokes a callable value with already-evaluated arguments; it is
// also handed to foreign code as the value.Callback re-entrancy hook
// (component C6), so a native library can call back into a Sentra function
// argument.
func (ev *Evaluator) apply(callee value.Value, args []value.Value, line int) (value.Value, error) {
	callee = value.Deref(callee)
	switch fn := callee.(type) {
	case *value.Function:
		return ev.callFunction(fn, args)
	case *value.NativeFunction:
		return fn.Fn(args, ev.callback)
	default:
		return nil, ev.err(line, "value is not callable")
	}
}

// callback adapts apply to the value.Callback shape (fn, args) -> (Value,
// error) foreign code and native built-ins invoke to re-enter a Sentra
// function argument (component C6's re-entrancy hook).
func (ev *Evaluator) callback(fn value.Value, args []value.Value) (value.Value, error) {
	return ev.apply(fn, args, 0)
}

func (ev *Evaluator) callFunction(fn *value.Function, args []value.Value) (value.Value, error) {
	captured, _ := fn.Env.(*Env)
	child := NewEnv()
	if captured != nil {
		child.vars = captured.Snapshot()
	}
	for i, p := range fn.Params {
		var av value.Value
		if i < len(args) {
			av = args[i]
		}
		if !p.Discard {
			child.Define(p.Name, av)
		}
	}
	body, _ := fn.Body.([]parser.Stmt)
	lowered, err := lowering.Lower(body, ev.file)
	if err != nil {
		return nil, err
	}
	return ev.Run(lowered, child)
}

func (ev *Evaluator) evalAssign(t evalnode.Assign, env *Env) (value.Value, error) {
	v, err := ev.evalExpr(t.Value, env)
	if err != nil {
		return nil, err
	}
	switch target := t.Target.(type) {
	case evalnode.LVar:
		if ref, ok := env.Get(target.Name); ok {
			ref.Write(v)
		} else {
			env.Define(target.Name, v)
		}
		return v, nil
	case evalnode.LIndex:
		obj, err := ev.evalExpr(target.Object, env)
		if err != nil {
			return nil, err
		}
		key, err := ev.evalExpr(target.Key, env)
		if err != nil {
			return nil, err
		}
		objDeref := value.Deref(obj)
		if s, ok := objDeref.(string); ok {
			return ev.assignStringChar(target.Object, s, key, v, env, target.Line)
		}
		result := value.SetIndex(objDeref, key, v)
		if errVal, ok := result.(*value.Error); ok {
			return errVal, nil
		}
		return v, nil
	case evalnode.LField:
		obj, err := ev.evalExpr(target.Object, env)
		if err != nil {
			return nil, err
		}
		result := value.SetIndex(value.Deref(obj), target.Field, v)
		if errVal, ok := result.(*value.Error); ok {
			return errVal, nil
		}
		return v, nil
	default:
		return nil, ev.err(t.Line, "invalid assignment target")
	}
}

// assignStringChar rewrites one rune of a string variable in place. Go
// strings are immutable, so unlike SetIndex on an Array/Struct this can't
// mutate the value that was read — it resolves the Ref backing the
// original string expression and writes the whole rewritten string back
// through it (spec §3.2).
func (ev *Evaluator) assignStringChar(objNode evalnode.Node, s string, key, v value.Value, env *Env, line int) (value.Value, error) {
	lv, ok := nodeAsLValue(objNode)
	if !ok {
		return nil, ev.err(line, "cannot assign into a character of this expression")
	}
	ref, err := ev.resolveRef(lv, env)
	if err != nil {
		return nil, err
	}
	i, ok := value.AsBig(value.Deref(key))
	runes := []rune(s)
	idx := int64(0)
	if ok {
		idx = i.Int64()
	}
	if !ok || idx < 0 || idx >= int64(len(runes)) {
		return value.NewError(1, "string index out of range"), nil
	}
	repl, ok := value.Deref(v).(string)
	if !ok || len([]rune(repl)) != 1 {
		return value.NewError(1, "string index assignment requires a single character"), nil
	}
	runes[idx] = []rune(repl)[0]
	ref.Write(string(runes))
	return v, nil
}

func (ev *Evaluator) evalDrop(t evalnode.Drop, env *Env) (value.Value, error) {
	switch target := t.Target.(type) {
	case evalnode.LVar:
		if _, ok := env.Get(target.Name); !ok {
			return nil, ev.err(target.Line, "undefined variable: %s", target.Name)
		}
		delete(env.vars, target.Name)
		return nil, nil
	case evalnode.LIndex:
		obj, err := ev.evalExpr(target.Object, env)
		if err != nil {
			return nil, err
		}
		key, err := ev.evalExpr(target.Key, env)
		if err != nil {
			return nil, err
		}
		objDeref := value.Deref(obj)
		if s, ok := objDeref.(string); ok {
			lv, ok := nodeAsLValue(target.Object)
			if !ok {
				return nil, ev.err(target.Line, "cannot drop a character of this expression")
			}
			ref, err := ev.resolveRef(lv, env)
			if err != nil {
				return nil, err
			}
			result := value.DropIndex(s, key)
			if errVal, ok := result.(*value.Error); ok {
				return errVal, nil
			}
			ref.Write(result)
			return nil, nil
		}
		result := value.DropIndex(objDeref, key)
		if errVal, ok := result.(*value.Error); ok {
			return errVal, nil
		}
		return nil, nil
	case evalnode.LField:
		obj, err := ev.evalExpr(target.Object, env)
		if err != nil {
			return nil, err
		}
		result := value.DropIndex(value.Deref(obj), target.Field)
		if errVal, ok := result.(*value.Error); ok {
			return errVal, nil
		}
		return nil, nil
	default:
		return nil, ev.err(t.Line, "invalid drop target")
	}
}

// resolveRef returns the *value.Ref backing an lvalue, boxing the
// underlying slot into a fresh Ref the first time it's addressed (spec
// §3.2, §9): arr[i] and struct.field aren't themselves Refs until someone
// takes their address, at which point the slot is rewritten to hold the
// new Ref so every future read transparently derefs through it and every
// future write through the same Ref is visible at the original slot too.
func (ev *Evaluator) resolveRef(lv evalnode.LValue, env *Env) (*value.Ref, error) {
	switch t := lv.(type) {
	case evalnode.LVar:
		if ref, ok := env.Get(t.Name); ok {
			return ref, nil
		}
		return env.Define(t.Name, nil), nil
	case evalnode.LIndex:
		obj, err := ev.evalExpr(t.Object, env)
		if err != nil {
			return nil, err
		}
		key, err := ev.evalExpr(t.Key, env)
		if err != nil {
			return nil, err
		}
		objDeref := value.Deref(obj)
		cur := value.Index(objDeref, key)
		if ref, ok := cur.(*value.Ref); ok {
			return ref, nil
		}
		ref := value.NewRef(cur)
		value.SetIndex(objDeref, key, ref)
		return ref, nil
	case evalnode.LField:
		obj, err := ev.evalExpr(t.Object, env)
		if err != nil {
			return nil, err
		}
		objDeref := value.Deref(obj)
		cur := value.Index(objDeref, t.Field)
		if ref, ok := cur.(*value.Ref); ok {
			return ref, nil
		}
		ref := value.NewRef(cur)
		value.SetIndex(objDeref, t.Field, ref)
		return ref, nil
	default:
		return nil, ev.err(0, "invalid reference target")
	}
}

// nodeAsLValue converts a read-position Node back into the LValue shape
// resolveRef needs, for the one case (string character assignment/drop)
// where an already-evaluated Node must be re-resolved to its backing Ref.
func nodeAsLValue(n evalnode.Node) (evalnode.LValue, bool) {
	switch t := n.(type) {
	case evalnode.Var:
		return evalnode.LVar{Name: t.Name, Line: t.Line}, true
	case evalnode.Index:
		return evalnode.LIndex{Object: t.Object, Key: t.Key, Line: t.Line}, true
	case evalnode.Property:
		return evalnode.LField{Object: t.Object, Field: t.Field, Line: t.Line}, true
	default:
		return nil, false
	}
}
