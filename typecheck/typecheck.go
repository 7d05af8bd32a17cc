// Copyright 2018 The P4c Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package typecheck is the P4 type checker.
//
// Given a program whose names have been resolved into a reference
// map, the Checker assigns a canonical type to every declaration and
// expression, verifies the semantic rules, and rewrites the tree to
// make inferred types explicit: untyped integer constants are
// narrowed to sized bit types and implicit casts are inserted.
//
// The walk is post-order and strictly sequential; nodes are never
// mutated in place, rewrites build new nodes. Re-running the checker
// over an already-typed tree is a no-op.
package typecheck

import (
	"fmt"

	"github.com/sharadc/p4c/diag"
	"github.com/sharadc/p4c/format"
	"github.com/sharadc/p4c/refmap"
	"github.com/sharadc/p4c/syntax"
	"github.com/sharadc/p4c/syntax/expr"
	"github.com/sharadc/p4c/syntax/src"
	"github.com/sharadc/p4c/syntax/stmt"
	"github.com/sharadc/p4c/syntax/tipe"
)

type Checker struct {
	refMap   *refmap.Map
	typeMap  *TypeMap
	sink     *diag.Sink
	readOnly bool

	errorType *tipe.Error
	infInts   int

	// methodArguments tracks the argument count of every open call
	// expression; member lookup on an extern uses the top to pick
	// the right overload.
	methodArguments []int

	controls  int
	parsers   int
	actions   int
	functions []*stmt.Function
	instances []*stmt.Instance
	inActions bool // within a table actions property
	tables    []*stmt.Table
}

// New returns a checker writing into typeMap. With readOnly set the
// checker verifies that inference does not change the tree.
func New(refMap *refmap.Map, typeMap *TypeMap, sink *diag.Sink, readOnly bool) *Checker {
	if refMap == nil || typeMap == nil || sink == nil {
		panic("typecheck: nil collaborator")
	}
	return &Checker{
		refMap:    refMap,
		typeMap:   typeMap,
		sink:      sink,
		readOnly:  readOnly,
		errorType: &tipe.Error{},
	}
}

// Check runs type inference over the program and returns the typed,
// possibly rewritten tree.
func (c *Checker) Check(program *stmt.Program) *stmt.Program {
	c.refMap.ValidateMap(program)
	if c.typeMap.CheckMap(program) && c.readOnly {
		return program
	}

	decls := make([]stmt.Stmt, 0, len(program.Decls))
	changed := false
	for _, d := range program.Decls {
		nd := c.statement(d)
		changed = changed || nd != d
		decls = append(decls, nd)
	}
	result := program
	if changed {
		result = &stmt.Program{Position: program.Position, Decls: decls}
	}

	if c.readOnly && !syntax.EqualStmt(program, result) {
		panic("typecheck: checker mutated the tree in read-only mode")
	}
	c.typeMap.UpdateMap(result)
	return result
}

func (c *Checker) errorf(pos src.Pos, f string, args ...interface{}) {
	c.sink.Errorf(pos, f, args...)
}

func (c *Checker) warningf(pos src.Pos, f string, args ...interface{}) {
	c.sink.Warningf(pos, f, args...)
}

func (c *Checker) done(n interface{}) bool {
	return c.typeMap.Contains(n)
}

// getType returns the recorded type of a node, reporting an error
// when there is none. A nil result propagates silently upward: the
// original failure has already been reported.
func (c *Checker) getType(n syntax.Node) tipe.Type {
	t := c.typeMap.Type(n)
	if t == nil {
		c.errorf(n.Pos(), "could not find type of %s", nodeString(n))
	}
	return t
}

func nodeString(n syntax.Node) string {
	if e, ok := n.(expr.Expr); ok {
		return format.Expr(e)
	}
	return fmt.Sprintf("%T", n)
}

func (c *Checker) setType(n interface{}, t tipe.Type) {
	c.typeMap.SetType(n, t)
}

// unify adds a single equality constraint and solves it. The solved
// substitution is merged into the registry.
func (c *Checker) unify(pos src.Pos, dest, src tipe.Type, reportErrors bool) *Substitution {
	if dest == src {
		return NewSubstitution()
	}
	cons := new(Constraints)
	cons.Add(dest, src)
	tvs := cons.Solve(pos, c.sink, reportErrors)
	c.typeMap.AddSubstitutions(tvs)
	return tvs
}

func (c *Checker) freshInfInt() *tipe.InfInt {
	c.infInts++
	return &tipe.InfInt{ID: c.infInts}
}

// canCastBetween reports whether an explicit cast from src to dest
// is legal.
func canCastBetween(dest, src tipe.Type) bool {
	if dest == src {
		return true
	}
	if f, ok := src.(*tipe.Bits); ok {
		if t, ok := dest.(*tipe.Bits); ok {
			return f.Size == t.Size || f.Signed == t.Signed
		}
		if dest == tipe.Bool {
			return f.Size == 1 && !f.Signed
		}
	} else if src == tipe.Bool {
		if t, ok := dest.(*tipe.Bits); ok {
			return t.Size == 1 && !t.Signed
		}
	}
	return false
}

// canImplicitlyCastBetween is the subset of casts the checker may
// insert on its own during assignment checking. Bit types of
// different widths are excluded: assigning across widths is a type
// error, not a silent truncation.
func canImplicitlyCastBetween(dest, src tipe.Type) bool {
	if f, ok := src.(*tipe.Bits); ok {
		if t, ok := dest.(*tipe.Bits); ok && f.Size != t.Size {
			return false
		}
	}
	return canCastBetween(dest, src)
}

// assignment checks that src can be assigned to a destination of
// type destType and returns the possibly rewritten source: an
// implicit cast may be inserted, and constants of unknown width are
// narrowed through unification.
func (c *Checker) assignment(n syntax.Node, destType tipe.Type, src expr.Expr) expr.Expr {
	initType := c.getType(src)
	if initType == nil {
		return src
	}
	if initType == destType {
		return src
	}

	if canImplicitlyCastBetween(destType, initType) {
		isConst := c.typeMap.IsCompileTimeConstant(src)
		cast := &expr.Cast{Position: src.Pos(), Type: destType, Expr: src}
		c.setType(cast, destType)
		if isConst {
			c.typeMap.SetCompileTimeConstant(cast)
		}
		return cast
	}

	tvs := c.unify(n.Pos(), destType, initType, true)
	if tvs == nil {
		// error already reported
		return src
	}
	if tvs.IsIdentity() {
		return src
	}
	cts := &constantTypeSubstitution{subst: tvs, typeMap: c.typeMap}
	return cts.convert(src)
}

func (c *Checker) statement(s stmt.Stmt) stmt.Stmt {
	if s == nil {
		return nil
	}
	switch s := s.(type) {
	case *stmt.Const:
		return c.constDecl(s)
	case *stmt.Var:
		return c.varDecl(s)
	case *stmt.Instance:
		return c.instanceDecl(s)
	case *stmt.Function:
		return c.functionDecl(s)
	case *stmt.Action:
		return c.actionDecl(s)
	case *stmt.TypeDecl:
		return c.typeDecl(s)
	case *stmt.Typedef:
		return c.typedefDecl(s)
	case *stmt.ErrorDecl:
		return c.errorDecl(s)
	case *stmt.MatchKindDecl:
		return c.matchKindDecl(s)
	case *stmt.Parser:
		return c.parserDecl(s)
	case *stmt.State:
		return c.stateDecl(s)
	case *stmt.Control:
		return c.controlDecl(s)
	case *stmt.Table:
		return c.tableDecl(s)

	case *stmt.Block:
		stmts := make([]stmt.Stmt, 0, len(s.Stmts))
		changed := false
		for _, sub := range s.Stmts {
			ns := c.statement(sub)
			changed = changed || ns != sub
			stmts = append(stmts, ns)
		}
		if !changed {
			return s
		}
		return &stmt.Block{Position: s.Position, Stmts: stmts}

	case *stmt.If:
		cond := c.expression(s.Cond)
		body := c.statement(s.Body)
		els := c.statement(s.Else)
		if t := c.getType(cond); t != nil && t != tipe.Bool {
			c.errorf(s.Pos(), "condition of if statement does not evaluate to a bool but %s",
				format.Type(t))
		}
		if cond == s.Cond && body == s.Body && els == s.Else {
			return s
		}
		ns := &stmt.If{Position: s.Position, Cond: cond, Body: body.(*stmt.Block)}
		if els != nil {
			ns.Else = els
		}
		return ns

	case *stmt.Switch:
		return c.switchStmt(s)

	case *stmt.Return:
		return c.returnStmt(s)

	case *stmt.Assign:
		left := c.expression(s.Left)
		right := c.expression(s.Right)
		ltype := c.getType(left)
		if ltype == nil {
			return s
		}
		if !c.typeMap.IsLeftValue(left) {
			c.errorf(s.Pos(), "expression %s cannot be the target of an assignment",
				format.Expr(left))
			return s
		}
		right = c.assignment(s, ltype, right)
		if left == s.Left && right == s.Right {
			return s
		}
		return &stmt.Assign{Position: s.Position, Left: left, Right: right}

	case *stmt.CallStmt:
		call := c.expression(s.Call)
		if call == s.Call {
			return s
		}
		if mc, ok := call.(*expr.MethodCall); ok {
			return &stmt.CallStmt{Position: s.Position, Call: mc}
		}
		return s

	default:
		panic(fmt.Sprintf("typecheck: unknown stmt %T", s))
	}
}

func (c *Checker) constDecl(s *stmt.Const) stmt.Stmt {
	if c.done(s) {
		return s
	}
	t := c.typeNode(s.Type)
	value := c.expression(s.Value)
	if t == nil {
		return s
	}
	if _, ok := t.(*tipe.Extern); ok {
		c.errorf(s.Pos(), "%s: cannot declare constants of extern types", s.Name)
		return s
	}
	if !c.typeMap.IsCompileTimeConstant(value) {
		c.errorf(value.Pos(), "cannot evaluate initializer of %s to a compile-time constant", s.Name)
	}
	value = c.assignment(s, t, value)
	result := s
	if value != s.Value {
		result = &stmt.Const{Position: s.Position, Name: s.Name, Type: s.Type, Value: value}
	}
	c.setType(s, t)
	c.setType(result, t)
	return result
}

func (c *Checker) varDecl(s *stmt.Var) stmt.Stmt {
	if c.done(s) {
		return s
	}
	t := c.typeNode(s.Type)
	var init expr.Expr
	if s.Init != nil {
		init = c.expression(s.Init)
	}
	if t == nil {
		return s
	}
	if gt, ok := t.(tipe.Generic); ok && len(gt.TypeParameters()) > 0 {
		c.errorf(s.Pos(), "unspecified type parameters for %s in declaration of %s",
			format.Type(t), s.Name)
		return s
	}
	result := s
	if init != nil {
		init = c.assignment(s, t, init)
		if init != s.Init {
			result = &stmt.Var{Position: s.Position, Name: s.Name, Type: s.Type, Init: init}
		}
	}
	c.setType(s, t)
	c.setType(result, t)
	return result
}

func (c *Checker) functionDecl(s *stmt.Function) stmt.Stmt {
	if c.done(s) {
		return s
	}
	t := c.typeNode(s.Type)
	if t == nil {
		return s
	}
	c.setType(s, t)
	if s.Body == nil {
		// an extern function has no body
		return s
	}
	c.functions = append(c.functions, s)
	body := c.statement(s.Body)
	c.functions = c.functions[:len(c.functions)-1]
	result := s
	if body != s.Body {
		result = &stmt.Function{Position: s.Position, Name: s.Name, Type: s.Type, Body: body.(*stmt.Block)}
		c.setType(result, t)
	}
	return result
}

func (c *Checker) actionDecl(s *stmt.Action) stmt.Stmt {
	if c.done(s) {
		return s
	}
	params := c.canonicalizeParams(s.Params)
	if params == nil {
		return s
	}
	foundDirectionless := false
	for _, p := range s.Params {
		pt := c.typeMap.Type(p)
		if _, ok := pt.(*tipe.Extern); ok {
			c.errorf(p.Pos(), "action parameters cannot have extern types")
		}
		if p.Direction == tipe.DirNone {
			foundDirectionless = true
		} else if foundDirectionless {
			c.errorf(p.Pos(), "direction-less action parameters have to be at the end")
		}
	}
	t := &tipe.Action{Params: params}
	c.setType(s, t)
	c.actions++
	body := c.statement(s.Body)
	c.actions--
	result := s
	if body != s.Body {
		result = &stmt.Action{Position: s.Position, Name: s.Name, Params: s.Params, Body: body.(*stmt.Block)}
		c.setType(result, t)
	}
	return result
}

func (c *Checker) typeDecl(s *stmt.TypeDecl) stmt.Stmt {
	if c.done(s) {
		return s
	}
	canon := c.setTypeType(s, s.Type)
	if canon == nil {
		return s
	}
	switch t := canon.(type) {
	case *tipe.Extern:
		for _, m := range t.Methods {
			if m.Name == t.Name && len(m.Type.TypeParams) > 0 {
				c.errorf(s.Pos(), "%s: constructors cannot have type parameters", t.Name)
				return s
			}
			if t.LookupMethod(m.Name, len(m.Type.Params)) == nil {
				c.errorf(s.Pos(), "%s: duplicate method %s with %d parameters",
					t.Name, m.Name, len(m.Type.Params))
				return s
			}
		}
	case *tipe.Header:
		c.validateFields(s.Pos(), t.Name, t.Fields, func(ft tipe.Type) bool {
			switch ft.(type) {
			case *tipe.Bits, *tipe.Varbits:
				return true
			}
			return false
		})
	case *tipe.Union:
		c.validateFields(s.Pos(), t.Name, t.Fields, func(ft tipe.Type) bool {
			_, ok := ft.(*tipe.Header)
			return ok
		})
	case *tipe.Struct:
		c.validateFields(s.Pos(), t.Name, t.Fields, func(ft tipe.Type) bool {
			switch ft.(type) {
			case *tipe.Struct, *tipe.Bits, *tipe.Header, *tipe.Union,
				*tipe.Enum, *tipe.Error, *tipe.Stack, *tipe.ActionEnum, *tipe.Tuple:
				return true
			}
			return ft == tipe.Bool
		})
	case *tipe.Package:
		for _, p := range t.CtorParams {
			switch pt := c.typeMap.Type(p).(type) {
			case *tipe.Parser:
				if pt.CtorParams != nil {
					c.errorf(p.Pos(), "invalid package parameter type")
				}
			case *tipe.Control:
				if pt.CtorParams != nil {
					c.errorf(p.Pos(), "invalid package parameter type")
				}
			}
		}
	}
	return s
}

func (c *Checker) typedefDecl(s *stmt.Typedef) stmt.Stmt {
	if c.done(s) {
		return s
	}
	t := c.typeNode(s.Type)
	if t == nil {
		return s
	}
	c.setType(s, &tipe.TypeType{Type: t})
	return s
}

func (c *Checker) errorDecl(s *stmt.ErrorDecl) stmt.Stmt {
	if c.done(s) {
		return s
	}
	for _, id := range s.Members {
		c.errorType.Members = append(c.errorType.Members, id.Name)
		c.setType(id, c.errorType)
	}
	c.setType(s, &tipe.TypeType{Type: c.errorType})
	return s
}

func (c *Checker) matchKindDecl(s *stmt.MatchKindDecl) stmt.Stmt {
	if c.done(s) {
		return s
	}
	for _, id := range s.Members {
		c.setType(id, tipe.MatchKind)
	}
	c.setType(s, &tipe.TypeType{Type: tipe.MatchKind})
	return s
}

func (c *Checker) parserDecl(s *stmt.Parser) stmt.Stmt {
	if c.done(s) {
		return s
	}
	itype := c.canonicalize(s.Type)
	if itype == nil {
		return s
	}
	it := itype.(*tipe.Parser)
	ctor := c.canonicalizeParams(s.CtorParams)
	if ctor == nil {
		ctor = []*tipe.Param{}
	}
	pt := &tipe.Parser{Name: s.Name, TypeParams: it.TypeParams, ApplyParams: it.ApplyParams, CtorParams: ctor}
	c.setType(s, &tipe.TypeType{Type: pt})

	c.parsers++
	locals, lchanged := c.statements(s.Locals)
	states := make([]*stmt.State, 0, len(s.States))
	schanged := false
	for _, st := range s.States {
		ns := c.statement(st).(*stmt.State)
		schanged = schanged || ns != st
		states = append(states, ns)
	}
	c.parsers--
	if !lchanged && !schanged {
		return s
	}
	result := &stmt.Parser{Position: s.Position, Name: s.Name, Type: s.Type,
		CtorParams: s.CtorParams, Locals: locals, States: states}
	c.setType(result, &tipe.TypeType{Type: pt})
	return result
}

func (c *Checker) stateDecl(s *stmt.State) stmt.Stmt {
	components, cchanged := c.statements(s.Components)
	var sel expr.Expr
	if s.Select != nil {
		sel = c.expression(s.Select)
	}
	result := s
	if cchanged || sel != s.Select {
		result = &stmt.State{Position: s.Position, Name: s.Name, Components: components, Select: sel}
	}
	c.setType(s, tipe.State)
	c.setType(result, tipe.State)
	return result
}

func (c *Checker) controlDecl(s *stmt.Control) stmt.Stmt {
	if c.done(s) {
		return s
	}
	itype := c.canonicalize(s.Type)
	if itype == nil {
		return s
	}
	it := itype.(*tipe.Control)
	ctor := c.canonicalizeParams(s.CtorParams)
	if ctor == nil {
		ctor = []*tipe.Param{}
	}
	ct := &tipe.Control{Name: s.Name, TypeParams: it.TypeParams, ApplyParams: it.ApplyParams, CtorParams: ctor}
	c.setType(s, &tipe.TypeType{Type: ct})

	c.controls++
	locals, lchanged := c.statements(s.Locals)
	body := c.statement(s.Body)
	c.controls--
	if !lchanged && body == s.Body {
		return s
	}
	result := &stmt.Control{Position: s.Position, Name: s.Name, Type: s.Type,
		CtorParams: s.CtorParams, Locals: locals, Body: body.(*stmt.Block)}
	c.setType(result, &tipe.TypeType{Type: ct})
	return result
}

func (c *Checker) statements(list []stmt.Stmt) ([]stmt.Stmt, bool) {
	out := make([]stmt.Stmt, 0, len(list))
	changed := false
	for _, s := range list {
		ns := c.statement(s)
		changed = changed || ns != s
		out = append(out, ns)
	}
	if !changed {
		return list, false
	}
	return out, true
}

func (c *Checker) switchStmt(s *stmt.Switch) stmt.Stmt {
	e := c.expression(s.Expr)
	t := c.getType(e)
	if t == nil {
		return s
	}
	ae, ok := t.(*tipe.ActionEnum)
	if !ok {
		c.errorf(s.Pos(), "switch condition can only be produced by table.apply(...).action_run")
		return s
	}
	found := make(map[string]bool)
	cases := make([]*stmt.SwitchCase, 0, len(s.Cases))
	changed := false
	for _, sc := range s.Cases {
		var label expr.Expr
		if _, isDefault := sc.Label.(*expr.Default); isDefault {
			label = sc.Label
		} else {
			label = c.expression(sc.Label)
			pe, ok := label.(*expr.PathExpression)
			if !ok {
				panic(fmt.Sprintf("typecheck: unexpected switch label %T", sc.Label))
			}
			if found[pe.Name] {
				c.errorf(sc.Pos(), "duplicate switch label %s", pe.Name)
			}
			found[pe.Name] = true
			if !ae.Contains(pe.Name) {
				c.errorf(sc.Pos(), "%s is not a legal label (action name)", pe.Name)
			}
		}
		body := c.statement(sc.Body)
		nc := sc
		if label != sc.Label || body != sc.Body {
			nc = &stmt.SwitchCase{Position: sc.Position, Label: label}
			if body != nil {
				nc.Body = body.(*stmt.Block)
			}
		}
		changed = changed || nc != sc
		cases = append(cases, nc)
	}
	if e == s.Expr && !changed {
		return s
	}
	return &stmt.Switch{Position: s.Position, Expr: e, Cases: cases}
}

func (c *Checker) returnStmt(s *stmt.Return) stmt.Stmt {
	var e expr.Expr
	if s.Expr != nil {
		e = c.expression(s.Expr)
	}
	if len(c.functions) == 0 {
		if e != nil {
			c.errorf(s.Pos(), "return with expression can only be used in a function")
		}
		return s
	}
	fn := c.functions[len(c.functions)-1]
	ftype := c.getType(fn)
	if ftype == nil {
		return s
	}
	mt, ok := ftype.(*tipe.Method)
	if !ok {
		panic(fmt.Sprintf("typecheck: expected a method type for function, got %s", format.Type(ftype)))
	}
	returnType := mt.Return
	if returnType == nil || returnType == tipe.Void {
		if e != nil {
			c.errorf(s.Pos(), "return expression in function with void return")
		}
		return s
	}
	if e == nil {
		c.errorf(s.Pos(), "return with no expression in a function returning %s",
			format.Type(returnType))
		return s
	}
	e = c.assignment(s, returnType, e)
	if e == s.Expr {
		return s
	}
	return &stmt.Return{Position: s.Position, Expr: e}
}

func (c *Checker) validateFields(pos src.Pos, name string, fields []tipe.Field, checker func(tipe.Type) bool) {
	for _, f := range fields {
		if f.Type == nil {
			return
		}
		if !checker(f.Type) {
			c.errorf(pos, "field %s of %s cannot have type %s", f.Name, name, format.Type(f.Type))
			return
		}
	}
}
