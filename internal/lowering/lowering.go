// Package lowering walks the parser's AST (component C2's output) and
// produces the evaluation tree internal/eval walks (component C3): a
// single visitor pass over parser.Stmt/parser.Expr, producing
// evalnode.Node rather than a bytecode chunk (spec.md's Non-goal on
// bytecode compilation).
//
// Lowering resolves everything that can be decided once, independent of
// the environment the tree will later run against: operator fixity (the
// parser already picked & prefix vs. infix; lowering just emits the right
// node), lvalue shape for assignment and drop(), and compound-assignment
// desugaring (x OP= e becomes x = x OP e). Function and lambda bodies are
// the one thing left unlowered (spec §4.3.4): they carry their raw
// []parser.Stmt and are lowered again by internal/eval on every call,
// against whatever environment that call closes over.
package lowering

import (
	"fmt"

	"sentra/internal/errors"
	"sentra/internal/evalnode"
	"sentra/internal/parser"
	"sentra/internal/value"
)

type lowerer struct {
	file string
}

// Lower converts a parsed script into its evaluation tree.
func Lower(stmts []parser.Stmt, file string) (out []evalnode.SNode, err error) {
	l := &lowerer{file: file}
	defer func() {
		if r := recover(); r != nil {
			if se, ok := r.(*errors.SentraError); ok {
				err = se
				return
			}
			panic(r)
		}
	}()
	for _, s := range stmts {
		out = append(out, l.stmt(s))
	}
	return out, nil
}

func (l *lowerer) fail(line int, format string, args ...interface{}) {
	panic(errors.NewRuntimeError(fmt.Sprintf(format, args...), l.file, line, 0))
}

func (l *lowerer) stmts(in []parser.Stmt) []evalnode.SNode {
	out := make([]evalnode.SNode, 0, len(in))
	for _, s := range in {
		out = append(out, l.stmt(s))
	}
	return out
}

func (l *lowerer) stmt(s parser.Stmt) evalnode.SNode {
	return s.Accept(l).(evalnode.SNode)
}

func (l *lowerer) expr(e parser.Expr) evalnode.Node {
	return e.Accept(l).(evalnode.Node)
}

// --- StmtVisitor ---

func (l *lowerer) VisitExpressionStmt(s *parser.ExpressionStmt) interface{} {
	return evalnode.SExpr{Expr: l.expr(s.Expr)}
}

func (l *lowerer) VisitIfStmt(s *parser.IfStmt) interface{} {
	return evalnode.SIf{
		Cond: l.expr(s.Cond),
		Then: l.stmts(s.Then),
		Else: l.stmts(s.Else),
		Line: s.Pos(),
	}
}

func (l *lowerer) VisitWhileStmt(s *parser.WhileStmt) interface{} {
	return evalnode.SWhile{
		Cond: l.expr(s.Cond),
		Body: l.stmts(s.Body),
		Line: s.Pos(),
	}
}

func (l *lowerer) VisitForInStmt(s *parser.ForInStmt) interface{} {
	return evalnode.SForIn{
		KeyVar:     s.KeyVar,
		KeyDiscard: s.KeyDiscard,
		ValVar:     s.ValVar,
		ValDiscard: s.ValDiscard,
		HasKey:     s.HasKey,
		Collection: l.expr(s.Collection),
		Body:       l.stmts(s.Body),
		Line:       s.Pos(),
	}
}

func (l *lowerer) VisitReturnStmt(s *parser.ReturnStmt) interface{} {
	var v evalnode.Node = evalnode.Lit{Value: nil}
	if s.Value != nil {
		v = l.expr(s.Value)
	}
	return evalnode.SReturn{Value: v, Line: s.Pos()}
}

func (l *lowerer) VisitBreakStmt(s *parser.BreakStmt) interface{} {
	var v evalnode.Node = evalnode.Lit{Value: nil}
	if s.Value != nil {
		v = l.expr(s.Value)
	}
	return evalnode.SBreak{Value: v, Line: s.Pos()}
}

// --- ExprVisitor ---

func (l *lowerer) VisitLiteralExpr(e *parser.Literal) interface{} {
	if n, ok := e.Value.(int64); ok && e.IsHex {
		return evalnode.Lit{Value: value.BoxInt64(n)}
	}
	return evalnode.Lit{Value: boxLiteral(e.Value)}
}

// boxLiteral never narrows decimal integer literals on their own
// (test_reference.rs test_simple_modify: a bare `x = 100` reads back as
// Int(100), not U8(100)). Hex literals do not reach it: VisitLiteralExpr
// boxes them through value.BoxInt64 (U8 in 0..=255, else Int).
// Narrowing only happens when a literal sits inside an array or struct
// literal, applied at construction time in eval.go's ArrayLit/StructLit
// cases rather than here.
func boxLiteral(v interface{}) value.Value {
	switch t := v.(type) {
	case int64:
		return value.BoxInt(t)
	case float64:
		return value.Double(t)
	case string:
		return t
	case bool:
		return t
	case nil:
		return nil
	default:
		return nil
	}
}

func (l *lowerer) VisitVariableExpr(e *parser.Variable) interface{} {
	return evalnode.Var{Name: e.Name, Line: e.Pos()}
}

func (l *lowerer) VisitBinaryExpr(e *parser.Binary) interface{} {
	return evalnode.Bin{Op: e.Operator, Left: l.expr(e.Left), Right: l.expr(e.Right), Line: e.Pos()}
}

func (l *lowerer) VisitLogicalExpr(e *parser.Logical) interface{} {
	return evalnode.Logic{Op: e.Operator, Left: l.expr(e.Left), Right: l.expr(e.Right)}
}

func (l *lowerer) VisitUnaryExpr(e *parser.Unary) interface{} {
	if e.Operator == "&" {
		return evalnode.AddrOf{Target: l.resolveLValue(e.Operand), Line: e.Pos()}
	}
	return evalnode.Un{Op: e.Operator, Operand: l.expr(e.Operand), Line: e.Pos()}
}

func (l *lowerer) VisitCallExpr(e *parser.CallExpr) interface{} {
	if v, ok := e.Callee.(*parser.Variable); ok && v.Name == "drop" {
		if len(e.Args) != 1 {
			l.fail(e.Pos(), "drop() takes exactly one argument")
		}
		return evalnode.Drop{Target: l.resolveLValue(e.Args[0]), Line: e.Pos()}
	}
	args := make([]evalnode.Node, len(e.Args))
	for i, a := range e.Args {
		args[i] = l.expr(a)
	}
	return evalnode.Call{Callee: l.expr(e.Callee), Args: args, Line: e.Pos()}
}

func (l *lowerer) VisitIndexExpr(e *parser.IndexExpr) interface{} {
	return evalnode.Index{Object: l.expr(e.Object), Key: l.expr(e.Index), Line: e.Pos()}
}

func (l *lowerer) VisitPropertyExpr(e *parser.PropertyExpr) interface{} {
	return evalnode.Property{Object: l.expr(e.Object), Field: e.Property, Line: e.Pos()}
}

var compoundOp = map[string]string{
	"+=": "+", "-=": "-", "*=": "*", "/=": "/", "%=": "%",
}

func (l *lowerer) VisitAssignExpr(e *parser.AssignExpr) interface{} {
	lv := l.resolveLValue(e.Target)
	if e.Operator == "=" {
		return evalnode.Assign{Target: lv, Value: l.expr(e.Value), Line: e.Pos()}
	}
	op, ok := compoundOp[e.Operator]
	if !ok {
		l.fail(e.Pos(), "unknown assignment operator %q", e.Operator)
	}
	// x OP= e lowers to x = x OP e. The lvalue's Object/Key/Field nodes
	// were built once by resolveLValue and are shared between the read
	// (via lvalueToRead) and the write (via Target) below; only an lvalue
	// chain whose own subexpressions have side effects (e.g. a function
	// call producing the object to index into) would observe that chain
	// evaluated twice, once per use — not a shape scripts are expected to
	// lean on.
	read := lvalueToRead(lv)
	return evalnode.Assign{
		Target: lv,
		Value:  evalnode.Bin{Op: op, Left: read, Right: l.expr(e.Value), Line: e.Pos()},
		Line:   e.Pos(),
	}
}

func (l *lowerer) VisitLambdaExpr(e *parser.LambdaExpr) interface{} {
	params := make([]evalnode.Param, len(e.Params))
	for i, p := range e.Params {
		params[i] = evalnode.Param{Name: p.Name, Discard: p.Discard}
	}
	return evalnode.Lambda{Params: params, Body: e.Body, Line: e.Pos()}
}

func (l *lowerer) VisitStructLitExpr(e *parser.StructLit) interface{} {
	values := make([]evalnode.Node, len(e.Values))
	for i, v := range e.Values {
		values[i] = l.expr(v)
	}
	return evalnode.StructLit{Keys: e.Keys, Values: values, Line: e.Pos()}
}

func (l *lowerer) VisitArrayLitExpr(e *parser.ArrayLit) interface{} {
	elems := make([]evalnode.Node, len(e.Elements))
	for i, el := range e.Elements {
		elems[i] = l.expr(el)
	}
	return evalnode.ArrayLit{Elements: elems, Line: e.Pos()}
}

func (l *lowerer) VisitRangeExpr(e *parser.RangeExpr) interface{} {
	return evalnode.RangeNode{Start: l.expr(e.Start), End: l.expr(e.End), Inclusive: e.Inclusive, Line: e.Pos()}
}

func (l *lowerer) VisitInterpolationExpr(e *parser.InterpolationExpr) interface{} {
	parts := make([]evalnode.Node, len(e.Parts))
	for i, p := range e.Parts {
		parts[i] = l.expr(p)
	}
	return evalnode.Interp{Parts: parts, Line: e.Pos()}
}

func (l *lowerer) VisitBlockExpr(e *parser.BlockExpr) interface{} {
	return &evalnode.Block{Stmts: l.stmts(e.Stmts), Line: e.Pos()}
}

func (l *lowerer) VisitIfExpr(e *parser.IfExpr) interface{} {
	then := l.VisitBlockExpr(e.ThenBranch).(*evalnode.Block)
	var els evalnode.Node
	if e.ElseBranch != nil {
		els = l.expr(e.ElseBranch)
	}
	return evalnode.If{Cond: l.expr(e.Cond), Then: then, Else: els, Line: e.Pos()}
}

func (l *lowerer) VisitMultilineExpr(e *parser.MultilineExpr) interface{} {
	return evalnode.Block{Stmts: l.stmts(e.Stmts), Line: e.Pos()}
}

// resolveLValue resolves an expression to the lvalue shape assignment and
// drop() need: a plain name, an indexed slot, or a struct field. Anything
// else (a literal, a call result, ...) cannot be assigned to or dropped.
func (l *lowerer) resolveLValue(e parser.Expr) evalnode.LValue {
	switch t := e.(type) {
	case *parser.Variable:
		return evalnode.LVar{Name: t.Name, Line: t.Pos()}
	case *parser.IndexExpr:
		return evalnode.LIndex{Object: l.expr(t.Object), Key: l.expr(t.Index), Line: t.Pos()}
	case *parser.PropertyExpr:
		return evalnode.LField{Object: l.expr(t.Object), Field: t.Property, Line: t.Pos()}
	default:
		l.fail(e.Pos(), "invalid assignment target")
		return nil
	}
}

// lvalueToRead converts a resolved lvalue back into the Node that reads its
// current value, for compound-assignment desugaring.
func lvalueToRead(lv evalnode.LValue) evalnode.Node {
	switch t := lv.(type) {
	case evalnode.LVar:
		return evalnode.Var{Name: t.Name, Line: t.Line}
	case evalnode.LIndex:
		return evalnode.Index{Object: t.Object, Key: t.Key, Line: t.Line}
	case evalnode.LField:
		return evalnode.Property{Object: t.Object, Field: t.Field, Line: t.Line}
	default:
		return evalnode.Lit{Value: nil}
	}
}
