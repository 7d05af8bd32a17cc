// Copyright 2018 The P4c Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package typecheck

import (
	"math/big"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/sharadc/p4c/diag"
	"github.com/sharadc/p4c/format"
	"github.com/sharadc/p4c/refmap"
	"github.com/sharadc/p4c/syntax"
	"github.com/sharadc/p4c/syntax/expr"
	"github.com/sharadc/p4c/syntax/stmt"
	"github.com/sharadc/p4c/syntax/tipe"
	"github.com/sharadc/p4c/syntax/token"
)

type env struct {
	rm   *refmap.Map
	tm   *TypeMap
	sink *diag.Sink
	c    *Checker
}

func newEnv() *env {
	rm := refmap.New()
	tm := NewTypeMap()
	sink := diag.NewSink()
	return &env{rm: rm, tm: tm, sink: sink, c: New(rm, tm, sink, false)}
}

func (e *env) check(prog *stmt.Program) *stmt.Program {
	e.rm.SetRoot(prog)
	return e.c.Check(prog)
}

func (e *env) noErrors(t *testing.T) {
	t.Helper()
	if e.sink.ErrorCount != 0 {
		t.Fatalf("unexpected type errors: %v", e.sink.Msgs)
	}
}

func bits(n int) *tipe.Bits { return tipe.BitsOf(n, false) }

func num(v int64) *expr.Constant {
	return &expr.Constant{Value: big.NewInt(v), Base: 10}
}

func wnum(w int, v int64) *expr.Constant {
	return &expr.Constant{Type: bits(w), Value: big.NewInt(v), Base: 10}
}

func path(name string) *expr.PathExpression {
	return &expr.PathExpression{Name: name}
}

func member(e expr.Expr, name string) *expr.Member {
	return &expr.Member{Expr: e, Name: name}
}

func block(stmts ...stmt.Stmt) *stmt.Block {
	return &stmt.Block{Stmts: stmts}
}

func param(name string, d tipe.Direction, t tipe.Type) *tipe.Param {
	return &tipe.Param{Name: name, Direction: d, Type: t}
}

func control(name string, body *stmt.Block, locals []stmt.Stmt, params ...*tipe.Param) *stmt.Control {
	return &stmt.Control{
		Name:   name,
		Type:   &tipe.Control{Name: name, ApplyParams: params},
		Locals: locals,
		Body:   body,
	}
}

// control c(inout bit<32> r) { apply { r = 3 + r; } }
// The literal 3 must be narrowed to bit<32>.
func TestConstantNarrowedInAssignment(t *testing.T) {
	e := newEnv()
	r := param("r", tipe.DirInOut, bits(32))
	lhs, rhs := path("r"), path("r")
	asgn := &stmt.Assign{Left: lhs, Right: &expr.Binary{Op: token.Add, Left: num(3), Right: rhs}}
	ctrl := control("c", block(asgn), nil, r)
	prog := &stmt.Program{Decls: []stmt.Stmt{ctrl}}
	e.rm.SetDeclaration(lhs, r)
	e.rm.SetDeclaration(rhs, r)

	out := e.check(prog)
	e.noErrors(t)

	nasgn := out.Decls[0].(*stmt.Control).Body.Stmts[0].(*stmt.Assign)
	sum := nasgn.Right.(*expr.Binary)
	cst := sum.Left.(*expr.Constant)
	if got := e.tm.Type(cst); !tipe.Equal(got, bits(32)) {
		t.Fatalf("literal not narrowed: got %s\n%s", format.Type(got), spew.Sdump(cst))
	}
	if !e.tm.IsCompileTimeConstant(cst) {
		t.Errorf("narrowed literal lost compile-time-constantness")
	}
	if !tipe.Equal(e.tm.Type(sum), bits(32)) {
		t.Errorf("sum type = %s, want bit<32>", format.Type(e.tm.Type(sum)))
	}
	if !e.tm.IsLeftValue(nasgn.Left) {
		t.Errorf("assignment target is not a left-value")
	}
}

// Inference over an already-typed tree must be a no-op.
func TestIdempotence(t *testing.T) {
	e := newEnv()
	r := param("r", tipe.DirInOut, bits(32))
	lhs, rhs := path("r"), path("r")
	asgn := &stmt.Assign{Left: lhs, Right: &expr.Binary{Op: token.Add, Left: num(3), Right: rhs}}
	ctrl := control("c", block(asgn), nil, r)
	prog := &stmt.Program{Decls: []stmt.Stmt{ctrl}}
	e.rm.SetDeclaration(lhs, r)
	e.rm.SetDeclaration(rhs, r)

	out := e.check(prog)
	e.noErrors(t)
	out2 := e.check(out)
	e.noErrors(t)
	if out2 != out {
		t.Fatalf("second inference run rewrote the tree")
	}
}

// With readOnly set, inference over the typed output must leave the
// tree structurally identical.
func TestReadOnly(t *testing.T) {
	e := newEnv()
	r := param("r", tipe.DirInOut, bits(32))
	lhs, rhs := path("r"), path("r")
	asgn := &stmt.Assign{Left: lhs, Right: &expr.Binary{Op: token.Add, Left: num(3), Right: rhs}}
	ctrl := control("c", block(asgn), nil, r)
	prog := &stmt.Program{Decls: []stmt.Stmt{ctrl}}
	e.rm.SetDeclaration(lhs, r)
	e.rm.SetDeclaration(rhs, r)

	out := e.check(prog)
	e.noErrors(t)

	e.rm.SetRoot(out)
	ro := New(e.rm, e.tm, e.sink, true)
	out2 := ro.Check(out)
	e.noErrors(t)
	if !syntax.EqualStmt(out, out2) {
		t.Fatalf("read-only inference changed the tree")
	}
}

// extern bit<32> f(in bit<32> x);
// control c(inout bit<32> r) { apply { r = f(32w4) + f(32w5); } }
func TestExternFunctionCalls(t *testing.T) {
	e := newEnv()
	f := &stmt.Function{Name: "f", Type: &tipe.Method{
		Return: bits(32),
		Params: []*tipe.Param{param("x", tipe.DirIn, bits(32))},
	}}
	fp1, fp2 := path("f"), path("f")
	call1 := &expr.MethodCall{Method: fp1, Args: []expr.Expr{wnum(32, 4)}}
	call2 := &expr.MethodCall{Method: fp2, Args: []expr.Expr{wnum(32, 5)}}
	r := param("r", tipe.DirInOut, bits(32))
	lhs := path("r")
	asgn := &stmt.Assign{Left: lhs, Right: &expr.Binary{Op: token.Add, Left: call1, Right: call2}}
	ctrl := control("c", block(asgn), nil, r)
	prog := &stmt.Program{Decls: []stmt.Stmt{f, ctrl}}
	e.rm.SetDeclaration(fp1, f)
	e.rm.SetDeclaration(fp2, f)
	e.rm.SetDeclaration(lhs, r)

	out := e.check(prog)
	e.noErrors(t)

	nasgn := out.Decls[1].(*stmt.Control).Body.Stmts[0].(*stmt.Assign)
	sum := nasgn.Right.(*expr.Binary)
	for _, c := range []expr.Expr{sum.Left, sum.Right} {
		if got := e.tm.Type(c); !tipe.Equal(got, bits(32)) {
			t.Errorf("call type = %s, want bit<32>", format.Type(got))
		}
	}
}

// const bit<8> x = 9; const bit<8> y = x + 1;
func TestConstDecls(t *testing.T) {
	e := newEnv()
	x := &stmt.Const{Name: "x", Type: bits(8), Value: num(9)}
	xp := path("x")
	y := &stmt.Const{Name: "y", Type: bits(8), Value: &expr.Binary{Op: token.Add, Left: xp, Right: num(1)}}
	prog := &stmt.Program{Decls: []stmt.Stmt{x, y}}
	e.rm.SetDeclaration(xp, x)

	out := e.check(prog)
	e.noErrors(t)

	nx := out.Decls[0].(*stmt.Const)
	if got := e.tm.Type(nx.Value); !tipe.Equal(got, bits(8)) {
		t.Errorf("x initializer type = %s, want bit<8>", format.Type(got))
	}
	if !e.tm.IsCompileTimeConstant(nx.Value) {
		t.Errorf("x initializer is not a compile-time constant")
	}
	ny := out.Decls[1].(*stmt.Const)
	sum := ny.Value.(*expr.Binary)
	if got := e.tm.Type(sum.Right); !tipe.Equal(got, bits(8)) {
		t.Errorf("literal 1 type = %s, want bit<8>", format.Type(got))
	}
	if !e.tm.IsCompileTimeConstant(ny.Value) {
		t.Errorf("y initializer is not a compile-time constant")
	}
	// no constant of the output may retain an unknown width
	syntax.Walk(out, nil, func(n syntax.Node) bool {
		if cst, ok := n.(*expr.Constant); ok {
			if _, isVar := e.tm.Type(cst).(tipe.TVar); isVar {
				t.Errorf("constant %s kept unknown-width type", format.Expr(cst))
			}
		}
		return true
	})
}

// bit<8> a; bit<16> b; a = b; -> width mismatch
func TestAssignmentWidthMismatch(t *testing.T) {
	e := newEnv()
	a := &stmt.Var{Name: "a", Type: bits(8)}
	b := &stmt.Var{Name: "b", Type: bits(16)}
	ap, bp := path("a"), path("b")
	ctrl := control("c", block(&stmt.Assign{Left: ap, Right: bp}), []stmt.Stmt{a, b})
	prog := &stmt.Program{Decls: []stmt.Stmt{ctrl}}
	e.rm.SetDeclaration(ap, a)
	e.rm.SetDeclaration(bp, b)

	e.check(prog)
	if e.sink.ErrorCount != 1 {
		t.Fatalf("got %d errors, want 1: %v", e.sink.ErrorCount, e.sink.Msgs)
	}
}

// header H { bit<8> f; } struct S { H h; }
// control c(inout S s) { apply { s.h.setValid(); } }
func TestHeaderBuiltins(t *testing.T) {
	e := newEnv()
	hdecl := &stmt.TypeDecl{Name: "H", Type: &tipe.Header{Name: "H",
		Fields: []tipe.Field{{Name: "f", Type: bits(8)}}}}
	href := &tipe.Name{Name: "H"}
	sdecl := &stmt.TypeDecl{Name: "S", Type: &tipe.Struct{Name: "S",
		Fields: []tipe.Field{{Name: "h", Type: href}}}}
	sref := &tipe.Name{Name: "S"}
	s := param("s", tipe.DirInOut, sref)
	sp := path("s")
	recv := member(sp, "h")
	call := &expr.MethodCall{Method: member(recv, "setValid")}
	ctrl := control("c", block(&stmt.CallStmt{Call: call}), nil, s)
	prog := &stmt.Program{Decls: []stmt.Stmt{hdecl, sdecl, ctrl}}
	e.rm.SetDeclaration(href, hdecl)
	e.rm.SetDeclaration(sref, sdecl)
	e.rm.SetDeclaration(sp, s)

	e.check(prog)
	e.noErrors(t)

	if !e.tm.IsLeftValue(recv) {
		t.Errorf("s.h is not a left-value")
	}
	if got := e.tm.Type(call); got != tipe.Void {
		t.Errorf("setValid() type = %s, want void", format.Type(got))
	}
}

// switch over t.apply().hit is rejected: only action_run may be
// switched on.
func TestSwitchRequiresActionRun(t *testing.T) {
	e := newEnv()
	act := &stmt.Action{Name: "a", Body: block()}
	ap := path("a")
	tbl := &stmt.Table{Name: "t", Props: []*stmt.Property{{
		Name:  stmt.ActionsProperty,
		Value: &stmt.ActionList{Elements: []*stmt.ActionListElement{{Expr: ap}}},
	}}}
	tp := path("t")
	sw := &stmt.Switch{Expr: member(&expr.MethodCall{Method: member(tp, "apply")}, "hit")}
	ctrl := control("c", block(sw), []stmt.Stmt{act, tbl})
	prog := &stmt.Program{Decls: []stmt.Stmt{ctrl}}
	e.rm.SetDeclaration(ap, act)
	e.rm.SetDeclaration(tp, tbl)

	e.check(prog)
	if e.sink.ErrorCount != 1 {
		t.Fatalf("got %d errors, want 1: %v", e.sink.ErrorCount, e.sink.Msgs)
	}
}

// switch over t.apply().action_run with labels from the actions list.
func TestSwitchOnActionRun(t *testing.T) {
	e := newEnv()
	act := &stmt.Action{Name: "a", Body: block()}
	ap := path("a")
	tbl := &stmt.Table{Name: "t", Props: []*stmt.Property{{
		Name:  stmt.ActionsProperty,
		Value: &stmt.ActionList{Elements: []*stmt.ActionListElement{{Expr: ap}}},
	}}}
	tp := path("t")
	label := path("a")
	sw := &stmt.Switch{
		Expr: member(&expr.MethodCall{Method: member(tp, "apply")}, "action_run"),
		Cases: []*stmt.SwitchCase{
			{Label: label, Body: block()},
			{Label: &expr.Default{}, Body: block()},
		},
	}
	ctrl := control("c", block(sw), []stmt.Stmt{act, tbl})
	prog := &stmt.Program{Decls: []stmt.Stmt{ctrl}}
	e.rm.SetDeclaration(ap, act)
	e.rm.SetDeclaration(tp, tbl)
	e.rm.SetDeclaration(label, act)

	e.check(prog)
	e.noErrors(t)
}

// extern T read<T>(); bit<8> v = read();
// The fresh return variable unifies with bit<8> at the use site.
func TestGenericReturnInference(t *testing.T) {
	e := newEnv()
	tv := &tipe.Var{Name: "T"}
	read := &stmt.Function{Name: "read", Type: &tipe.Method{
		TypeParams: []*tipe.Var{tv},
		Return:     tv,
	}}
	rp := path("read")
	v := &stmt.Var{Name: "v", Type: bits(8), Init: &expr.MethodCall{Method: rp}}
	prog := &stmt.Program{Decls: []stmt.Stmt{read, v}}
	e.rm.SetDeclaration(rp, read)

	out := e.check(prog)
	e.noErrors(t)
	if got := e.tm.Type(out.Decls[1]); !tipe.Equal(got, bits(8)) {
		t.Fatalf("v type = %s, want bit<8>", format.Type(got))
	}
}

func TestExternConstructorAndAbstractMethods(t *testing.T) {
	e := newEnv()
	ext := &tipe.Extern{Name: "Register", Methods: []*tipe.ExternMethod{
		{Name: "Register", Type: &tipe.Method{
			Params: []*tipe.Param{param("size", tipe.DirNone, bits(32))}}},
		{Name: "overflow", Type: &tipe.Method{Return: tipe.Void}, Abstract: true},
	}}
	extDecl := &stmt.TypeDecl{Name: "Register", Type: ext}
	eref := &tipe.Name{Name: "Register"}
	impl := &stmt.Function{Name: "overflow", Type: &tipe.Method{Return: tipe.Void}, Body: block()}
	inst := &stmt.Instance{Name: "r", Type: eref, Args: []expr.Expr{num(128)},
		Init: []*stmt.Function{impl}}
	prog := &stmt.Program{Decls: []stmt.Stmt{extDecl, inst}}
	e.rm.SetDeclaration(eref, extDecl)

	out := e.check(prog)
	e.noErrors(t)

	ninst := out.Decls[1].(*stmt.Instance)
	arg := ninst.Args[0].(*expr.Constant)
	if got := e.tm.Type(arg); !tipe.Equal(got, bits(32)) {
		t.Errorf("constructor argument type = %s, want bit<32>", format.Type(got))
	}
	if !e.tm.IsCompileTimeConstant(arg) {
		t.Errorf("constructor argument is not a compile-time constant")
	}
}

func TestMissingAbstractMethod(t *testing.T) {
	e := newEnv()
	ext := &tipe.Extern{Name: "Register", Methods: []*tipe.ExternMethod{
		{Name: "Register", Type: &tipe.Method{}},
		{Name: "overflow", Type: &tipe.Method{Return: tipe.Void}, Abstract: true},
	}}
	extDecl := &stmt.TypeDecl{Name: "Register", Type: ext}
	eref := &tipe.Name{Name: "Register"}
	inst := &stmt.Instance{Name: "r", Type: eref}
	prog := &stmt.Program{Decls: []stmt.Stmt{extDecl, inst}}
	e.rm.SetDeclaration(eref, extDecl)

	e.check(prog)
	if e.sink.ErrorCount == 0 {
		t.Fatalf("expected an error for the missing abstract method")
	}
}

func TestContainerInstantiation(t *testing.T) {
	e := newEnv()
	inner := &stmt.Control{
		Name:       "inner",
		Type:       &tipe.Control{Name: "inner"},
		CtorParams: []*tipe.Param{param("n", tipe.DirNone, bits(8))},
		Body:       block(),
	}
	cref := &tipe.Name{Name: "inner"}
	inst := &stmt.Instance{Name: "i", Type: cref, Args: []expr.Expr{num(3)}}
	prog := &stmt.Program{Decls: []stmt.Stmt{inner, inst}}
	e.rm.SetDeclaration(cref, inner)

	out := e.check(prog)
	e.noErrors(t)

	ninst := out.Decls[1].(*stmt.Instance)
	ct, ok := e.tm.Type(ninst).(*tipe.Control)
	if !ok {
		t.Fatalf("instance type = %s, want the control", format.Type(e.tm.Type(ninst)))
	}
	if ct.Name != "inner" {
		t.Errorf("instance control name = %q", ct.Name)
	}
}

func TestContainerInitializerRejected(t *testing.T) {
	e := newEnv()
	inner := &stmt.Control{Name: "inner", Type: &tipe.Control{Name: "inner"}, Body: block()}
	cref := &tipe.Name{Name: "inner"}
	inst := &stmt.Instance{Name: "i", Type: cref,
		Init: []*stmt.Function{{Name: "f", Type: &tipe.Method{Return: tipe.Void}, Body: block()}}}
	prog := &stmt.Program{Decls: []stmt.Stmt{inner, inst}}
	e.rm.SetDeclaration(cref, inner)

	e.check(prog)
	if e.sink.ErrorCount == 0 {
		t.Fatalf("expected an error for the container initializer")
	}
}

// Partial application: in the actions list the unbound tail must be
// direction-less; the default action must bind everything and match
// the actions-list arguments.
func TestActionPartialApplication(t *testing.T) {
	e := newEnv()
	act := &stmt.Action{Name: "a", Params: []*tipe.Param{
		param("x", tipe.DirIn, bits(8)),
		param("m", tipe.DirNone, bits(8)),
	}, Body: block()}
	ap1, ap2 := path("a"), path("a")
	listCall := &expr.MethodCall{Method: ap1, Args: []expr.Expr{wnum(8, 1)}}
	defCall := &expr.MethodCall{Method: ap2, Args: []expr.Expr{wnum(8, 1), wnum(8, 2)}}
	tbl := &stmt.Table{Name: "t", Props: []*stmt.Property{
		{Name: stmt.ActionsProperty,
			Value: &stmt.ActionList{Elements: []*stmt.ActionListElement{{Expr: listCall}}}},
		{Name: stmt.DefaultActionProperty,
			Value: &stmt.ExpressionValue{Expr: defCall}},
	}}
	ctrl := control("c", block(), []stmt.Stmt{act, tbl})
	prog := &stmt.Program{Decls: []stmt.Stmt{ctrl}}
	e.rm.SetDeclaration(ap1, act)
	e.rm.SetDeclaration(ap2, act)

	e.check(prog)
	e.noErrors(t)

	at, ok := e.tm.Type(listCall).(*tipe.Action)
	if !ok {
		t.Fatalf("actions-list call type = %s, want an action", format.Type(e.tm.Type(listCall)))
	}
	if len(at.Params) != 1 || at.Params[0].Name != "m" {
		t.Errorf("unbound tail = %s", spew.Sdump(at.Params))
	}
	dt, ok := e.tm.Type(defCall).(*tipe.Action)
	if !ok || len(dt.Params) != 0 {
		t.Errorf("default action call is not fully bound: %s", format.Type(e.tm.Type(defCall)))
	}
}

func TestDefaultActionArgumentMismatch(t *testing.T) {
	e := newEnv()
	act := &stmt.Action{Name: "a", Params: []*tipe.Param{
		param("x", tipe.DirIn, bits(8)),
	}, Body: block()}
	ap1, ap2 := path("a"), path("a")
	listCall := &expr.MethodCall{Method: ap1, Args: []expr.Expr{wnum(8, 1)}}
	defCall := &expr.MethodCall{Method: ap2, Args: []expr.Expr{wnum(8, 2)}}
	tbl := &stmt.Table{Name: "t", Props: []*stmt.Property{
		{Name: stmt.ActionsProperty,
			Value: &stmt.ActionList{Elements: []*stmt.ActionListElement{{Expr: listCall}}}},
		{Name: stmt.DefaultActionProperty,
			Value: &stmt.ExpressionValue{Expr: defCall}},
	}}
	ctrl := control("c", block(), []stmt.Stmt{act, tbl})
	prog := &stmt.Program{Decls: []stmt.Stmt{ctrl}}
	e.rm.SetDeclaration(ap1, act)
	e.rm.SetDeclaration(ap2, act)

	e.check(prog)
	if e.sink.ErrorCount != 1 {
		t.Fatalf("got %d errors, want 1: %v", e.sink.ErrorCount, e.sink.Msgs)
	}
}

// A select over bit<8> narrows the range endpoints of its keysets.
func TestSelectNarrowsKeysets(t *testing.T) {
	e := newEnv()
	x := param("x", tipe.DirIn, bits(8))
	xp := path("x")
	next := &stmt.State{Name: "next"}
	np1, np2 := path("next"), path("next")
	sel := &expr.Select{
		Select: &expr.List{Elems: []expr.Expr{xp}},
		Cases: []*expr.SelectCase{
			{Keyset: &expr.Binary{Op: token.Range, Left: num(0), Right: num(5)}, State: np1},
			{Keyset: &expr.Default{}, State: np2},
		},
	}
	start := &stmt.State{Name: "start", Select: sel}
	psr := &stmt.Parser{
		Name:   "p",
		Type:   &tipe.Parser{Name: "p", ApplyParams: []*tipe.Param{x}},
		States: []*stmt.State{start, next},
	}
	prog := &stmt.Program{Decls: []stmt.Stmt{psr}}
	e.rm.SetDeclaration(xp, x)
	e.rm.SetDeclaration(np1, next)
	e.rm.SetDeclaration(np2, next)

	out := e.check(prog)
	e.noErrors(t)

	nstart := out.Decls[0].(*stmt.Parser).States[0]
	nsel := nstart.Select.(*expr.Select)
	if got := e.tm.Type(nsel); got != tipe.State {
		t.Fatalf("select type = %s, want state", format.Type(got))
	}
	rng := nsel.Cases[0].Keyset.(*expr.Binary)
	for _, side := range []expr.Expr{rng.Left, rng.Right} {
		if got := e.tm.Type(side); !tipe.Equal(got, bits(8)) {
			t.Errorf("range endpoint type = %s, want bit<8>", format.Type(got))
		}
	}
}

// Error and enum members are compile-time constants of the nominal
// type.
func TestEnumAndErrorMembers(t *testing.T) {
	e := newEnv()
	errDecl := &stmt.ErrorDecl{Members: []*stmt.DeclID{{Name: "NoMatch"}}}
	errRef := &tipe.Name{Name: "error"}
	enum := &tipe.Enum{Name: "Suits", Members: []string{"Clubs", "Spades"}}
	enumDecl := &stmt.TypeDecl{Name: "Suits", Type: enum}
	enumRef := &tipe.Name{Name: "Suits"}

	em := member(&expr.TypeName{Type: errRef}, "NoMatch")
	sm := member(&expr.TypeName{Type: enumRef}, "Spades")
	bad := member(&expr.TypeName{Type: &tipe.Name{Name: "Suits"}}, "Hearts")
	e.rm.SetDeclaration(errRef, errDecl)
	e.rm.SetDeclaration(enumRef, enumDecl)
	e.rm.SetDeclaration(bad.Expr.(*expr.TypeName).Type, enumDecl)

	v1 := &stmt.Var{Name: "e1", Type: &tipe.Name{Name: "error"}, Init: em}
	v2 := &stmt.Var{Name: "e2", Type: &tipe.Name{Name: "Suits"}, Init: sm}
	e.rm.SetDeclaration(v1.Type.(*tipe.Name), errDecl)
	e.rm.SetDeclaration(v2.Type.(*tipe.Name), enumDecl)
	prog := &stmt.Program{Decls: []stmt.Stmt{errDecl, enumDecl, v1, v2}}

	e.check(prog)
	e.noErrors(t)

	if _, ok := e.tm.Type(em).(*tipe.Error); !ok {
		t.Errorf("error member type = %s", format.Type(e.tm.Type(em)))
	}
	if !e.tm.IsCompileTimeConstant(em) {
		t.Errorf("error member is not a compile-time constant")
	}
	if got := e.tm.Type(sm); !tipe.Equal(got, enum) {
		t.Errorf("enum member type = %s", format.Type(e.tm.Type(sm)))
	}

	e2 := newEnv()
	e2.rm.SetDeclaration(bad.Expr.(*expr.TypeName).Type, enumDecl)
	vbad := &stmt.Var{Name: "e3", Type: &tipe.Name{Name: "Suits"}, Init: bad}
	e2.rm.SetDeclaration(vbad.Type.(*tipe.Name), enumDecl)
	e2.check(&stmt.Program{Decls: []stmt.Stmt{enumDecl, vbad}})
	if e2.sink.ErrorCount == 0 {
		t.Errorf("expected an invalid enum tag error")
	}
}

// Stack members: next/last in parsers, sizes, push_front rejection
// inside parsers.
func TestStackMembers(t *testing.T) {
	e := newEnv()
	hdecl := &stmt.TypeDecl{Name: "H", Type: &tipe.Header{Name: "H",
		Fields: []tipe.Field{{Name: "f", Type: bits(8)}}}}
	href := &tipe.Name{Name: "H"}
	st := param("st", tipe.DirInOut, &tipe.Stack{Elem: href, Size: 4})
	sp1, sp2 := path("st"), path("st")
	next := member(sp1, "next")
	sz := member(sp2, "size")
	hv := &stmt.Var{Name: "h", Type: &tipe.Name{Name: "H"}, Init: next}
	e.rm.SetDeclaration(hv.Type.(*tipe.Name), hdecl)
	szv := &stmt.Var{Name: "n", Type: bits(32), Init: sz}
	psr := &stmt.Parser{
		Name:   "p",
		Type:   &tipe.Parser{Name: "p", ApplyParams: []*tipe.Param{st}},
		Locals: []stmt.Stmt{hv, szv},
		States: []*stmt.State{{Name: "start"}},
	}
	prog := &stmt.Program{Decls: []stmt.Stmt{hdecl, psr}}
	e.rm.SetDeclaration(href, hdecl)
	e.rm.SetDeclaration(sp1, st)
	e.rm.SetDeclaration(sp2, st)

	e.check(prog)
	e.noErrors(t)

	if got := e.tm.Type(next); !tipe.Equal(got, e.tm.Type(hdecl).(*tipe.TypeType).Type) {
		t.Errorf("stack next type = %s", format.Type(got))
	}
	if !e.tm.IsLeftValue(next) {
		t.Errorf("next of a left-value stack is not a left-value")
	}
	if got := e.tm.Type(sz); !tipe.Equal(got, bits(32)) {
		t.Errorf("stack size type = %s", format.Type(got))
	}

	// push_front is rejected in a parser
	e2 := newEnv()
	sp3 := path("st")
	push := &expr.MethodCall{Method: member(sp3, "push_front"), Args: []expr.Expr{num(1)}}
	psr2 := &stmt.Parser{
		Name:   "p",
		Type:   &tipe.Parser{Name: "p", ApplyParams: []*tipe.Param{st}},
		Locals: []stmt.Stmt{&stmt.CallStmt{Call: push}},
		States: []*stmt.State{{Name: "start"}},
	}
	e2.rm.SetDeclaration(href, hdecl)
	e2.rm.SetDeclaration(sp3, st)
	e2.check(&stmt.Program{Decls: []stmt.Stmt{hdecl, psr2}})
	if e2.sink.ErrorCount == 0 {
		t.Errorf("expected an error for push_front in a parser")
	}
}

// Applying a table from inside an action body is rejected.
func TestTableApplyInAction(t *testing.T) {
	e := newEnv()
	tbl := &stmt.Table{Name: "t", Props: []*stmt.Property{{
		Name:  stmt.ActionsProperty,
		Value: &stmt.ActionList{Elements: nil},
	}}}
	tp := path("t")
	call := &expr.MethodCall{Method: member(tp, "apply")}
	act := &stmt.Action{Name: "a", Body: block(&stmt.CallStmt{Call: call})}
	ctrl := control("c", block(), []stmt.Stmt{tbl, act})
	prog := &stmt.Program{Decls: []stmt.Stmt{ctrl}}
	e.rm.SetDeclaration(tp, tbl)

	e.check(prog)
	if e.sink.ErrorCount != 1 {
		t.Fatalf("got %d errors, want 1: %v", e.sink.ErrorCount, e.sink.Msgs)
	}
}

// ApplyTypesToExpressions clones expressions and keeps their types.
func TestApplyTypesToExpressions(t *testing.T) {
	e := newEnv()
	x := &stmt.Const{Name: "x", Type: bits(8), Value: num(9)}
	prog := &stmt.Program{Decls: []stmt.Stmt{x}}
	out := e.check(prog)
	e.noErrors(t)

	applied := NewApplyTypesToExpressions(e.tm).Apply(out)
	nc := applied.Decls[0].(*stmt.Const)
	if nc.Value == out.Decls[0].(*stmt.Const).Value {
		t.Fatalf("expression was not cloned")
	}
	if got := e.tm.Type(nc.Value); !tipe.Equal(got, bits(8)) {
		t.Errorf("cloned initializer type = %s, want bit<8>", format.Type(got))
	}
	if !e.tm.IsCompileTimeConstant(nc.Value) {
		t.Errorf("cloned initializer lost compile-time-constantness")
	}
}

func TestReturnChecking(t *testing.T) {
	e := newEnv()
	fn := &stmt.Function{Name: "f", Type: &tipe.Method{Return: bits(8)},
		Body: block(&stmt.Return{Expr: num(3)})}
	prog := &stmt.Program{Decls: []stmt.Stmt{fn}}
	out := e.check(prog)
	e.noErrors(t)

	ret := out.Decls[0].(*stmt.Function).Body.Stmts[0].(*stmt.Return)
	if got := e.tm.Type(ret.Expr); !tipe.Equal(got, bits(8)) {
		t.Errorf("returned literal type = %s, want bit<8>", format.Type(got))
	}

	// void function returning a value
	e2 := newEnv()
	fn2 := &stmt.Function{Name: "g", Type: &tipe.Method{Return: tipe.Void},
		Body: block(&stmt.Return{Expr: num(3)})}
	e2.check(&stmt.Program{Decls: []stmt.Stmt{fn2}})
	if e2.sink.ErrorCount == 0 {
		t.Errorf("expected an error for return with value in void function")
	}
}

func TestActionDirectionlessParamsLast(t *testing.T) {
	e := newEnv()
	act := &stmt.Action{Name: "a", Params: []*tipe.Param{
		param("m", tipe.DirNone, bits(8)),
		param("x", tipe.DirIn, bits(8)),
	}, Body: block()}
	prog := &stmt.Program{Decls: []stmt.Stmt{act}}
	e.check(prog)
	if e.sink.ErrorCount != 1 {
		t.Fatalf("got %d errors, want 1: %v", e.sink.ErrorCount, e.sink.Msgs)
	}
}
