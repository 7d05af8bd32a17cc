// Copyright 2018 The P4c Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package typecheck

import (
	"fmt"

	"github.com/sharadc/p4c/syntax/expr"
	"github.com/sharadc/p4c/syntax/stmt"
	"github.com/sharadc/p4c/syntax/tipe"
)

// constantTypeSubstitution rewrites an expression after a successful
// unification: a constant whose recorded type is a variable bound to
// a concrete type is replaced by a new constant carrying that type.
// Other rewritten nodes keep their recorded types and flags.
type constantTypeSubstitution struct {
	subst   *Substitution
	typeMap *TypeMap
}

// retag carries the registry entries of the node a rewrite replaced
// over to its replacement.
func (s *constantTypeSubstitution) retag(old, new expr.Expr) expr.Expr {
	if new == old {
		return old
	}
	if t := s.typeMap.Type(old); t != nil {
		s.typeMap.SetType(new, t)
	}
	if s.typeMap.IsCompileTimeConstant(old) {
		s.typeMap.SetCompileTimeConstant(new)
	}
	if s.typeMap.IsLeftValue(old) {
		s.typeMap.SetLeftValue(new)
	}
	return new
}

func (s *constantTypeSubstitution) convert(e expr.Expr) expr.Expr {
	if e == nil {
		return nil
	}
	switch e := e.(type) {
	case *expr.Constant:
		t := s.typeMap.Type(e)
		v, ok := t.(tipe.TVar)
		if !ok {
			return e
		}
		repl := s.subst.Apply(v)
		if repl == nil {
			return e
		}
		if _, stillVar := repl.(tipe.TVar); stillVar {
			// the substitution could not infer a width
			return e
		}
		n := &expr.Constant{Position: e.Position, Type: repl, Value: e.Value, Base: e.Base}
		s.typeMap.SetType(n, repl)
		s.typeMap.SetCompileTimeConstant(n)
		return n

	case *expr.Member:
		sub := s.convert(e.Expr)
		if sub == e.Expr {
			return e
		}
		return s.retag(e, &expr.Member{Position: e.Position, Expr: sub, Name: e.Name})

	case *expr.Binary:
		left := s.convert(e.Left)
		right := s.convert(e.Right)
		if left == e.Left && right == e.Right {
			return e
		}
		return s.retag(e, &expr.Binary{Position: e.Position, Op: e.Op, Left: left, Right: right})

	case *expr.Unary:
		sub := s.convert(e.Expr)
		if sub == e.Expr {
			return e
		}
		return s.retag(e, &expr.Unary{Position: e.Position, Op: e.Op, Expr: sub})

	case *expr.Cast:
		sub := s.convert(e.Expr)
		if sub == e.Expr {
			return e
		}
		return s.retag(e, &expr.Cast{Position: e.Position, Type: e.Type, Expr: sub})

	case *expr.Slice:
		sub := s.convert(e.Expr)
		high := s.convert(e.High)
		low := s.convert(e.Low)
		if sub == e.Expr && high == e.High && low == e.Low {
			return e
		}
		return s.retag(e, &expr.Slice{Position: e.Position, Expr: sub, High: high, Low: low})

	case *expr.Index:
		left := s.convert(e.Left)
		index := s.convert(e.Index)
		if left == e.Left && index == e.Index {
			return e
		}
		return s.retag(e, &expr.Index{Position: e.Position, Left: left, Index: index})

	case *expr.Mux:
		cond := s.convert(e.Cond)
		tru := s.convert(e.True)
		fls := s.convert(e.False)
		if cond == e.Cond && tru == e.True && fls == e.False {
			return e
		}
		return s.retag(e, &expr.Mux{Position: e.Position, Cond: cond, True: tru, False: fls})

	case *expr.List:
		elems := make([]expr.Expr, 0, len(e.Elems))
		changed := false
		for _, el := range e.Elems {
			ne := s.convert(el)
			changed = changed || ne != el
			elems = append(elems, ne)
		}
		if !changed {
			return e
		}
		return s.retag(e, &expr.List{Position: e.Position, Elems: elems})

	case *expr.MethodCall:
		method := s.convert(e.Method)
		args := make([]expr.Expr, 0, len(e.Args))
		changed := method != e.Method
		for _, a := range e.Args {
			na := s.convert(a)
			changed = changed || na != a
			args = append(args, na)
		}
		if !changed {
			return e
		}
		return s.retag(e, &expr.MethodCall{Position: e.Position, Method: method,
			TypeArgs: e.TypeArgs, Args: args})

	case *expr.ConstructorCall:
		args := make([]expr.Expr, 0, len(e.Args))
		changed := false
		for _, a := range e.Args {
			na := s.convert(a)
			changed = changed || na != a
			args = append(args, na)
		}
		if !changed {
			return e
		}
		return s.retag(e, &expr.ConstructorCall{Position: e.Position, Type: e.Type, Args: args})

	default:
		return e
	}
}

// ApplyTypesToExpressions deep-clones every expression of the
// program and reattaches the recorded types to the clones. Callers
// use it when the typed tree must survive later transforms that do
// not maintain the registry.
type ApplyTypesToExpressions struct {
	typeMap *TypeMap
}

func NewApplyTypesToExpressions(typeMap *TypeMap) *ApplyTypesToExpressions {
	return &ApplyTypesToExpressions{typeMap: typeMap}
}

func (a *ApplyTypesToExpressions) Apply(program *stmt.Program) *stmt.Program {
	decls := make([]stmt.Stmt, 0, len(program.Decls))
	changed := false
	for _, d := range program.Decls {
		nd := a.stmtNode(d)
		changed = changed || nd != d
		decls = append(decls, nd)
	}
	if !changed {
		return program
	}
	np := &stmt.Program{Position: program.Position, Decls: decls}
	a.typeMap.UpdateMap(np)
	return np
}

func (a *ApplyTypesToExpressions) retagStmt(old, new stmt.Stmt) stmt.Stmt {
	if t := a.typeMap.Type(old); t != nil {
		a.typeMap.SetType(new, t)
	}
	return new
}

func (a *ApplyTypesToExpressions) retagExpr(old, new expr.Expr) expr.Expr {
	if t := a.typeMap.Type(old); t != nil {
		a.typeMap.SetType(new, t)
	}
	if a.typeMap.IsCompileTimeConstant(old) {
		a.typeMap.SetCompileTimeConstant(new)
	}
	if a.typeMap.IsLeftValue(old) {
		a.typeMap.SetLeftValue(new)
	}
	return new
}

func (a *ApplyTypesToExpressions) stmtNode(s stmt.Stmt) stmt.Stmt {
	if s == nil {
		return nil
	}
	switch s := s.(type) {
	case *stmt.Const:
		return a.retagStmt(s, &stmt.Const{Position: s.Position, Name: s.Name,
			Type: s.Type, Value: a.exprNode(s.Value)})
	case *stmt.Var:
		return a.retagStmt(s, &stmt.Var{Position: s.Position, Name: s.Name,
			Type: s.Type, Init: a.exprNode(s.Init)})
	case *stmt.Instance:
		inits := make([]*stmt.Function, 0, len(s.Init))
		for _, f := range s.Init {
			inits = append(inits, a.stmtNode(f).(*stmt.Function))
		}
		if len(s.Init) == 0 {
			inits = nil
		}
		return a.retagStmt(s, &stmt.Instance{Position: s.Position, Name: s.Name,
			Type: s.Type, Args: a.exprList(s.Args), Init: inits})
	case *stmt.Function:
		return a.retagStmt(s, &stmt.Function{Position: s.Position, Name: s.Name,
			Type: s.Type, Body: a.block(s.Body)})
	case *stmt.Action:
		return a.retagStmt(s, &stmt.Action{Position: s.Position, Name: s.Name,
			Params: s.Params, Body: a.block(s.Body)})
	case *stmt.Parser:
		locals := make([]stmt.Stmt, 0, len(s.Locals))
		for _, l := range s.Locals {
			locals = append(locals, a.stmtNode(l))
		}
		states := make([]*stmt.State, 0, len(s.States))
		for _, st := range s.States {
			states = append(states, a.stmtNode(st).(*stmt.State))
		}
		return a.retagStmt(s, &stmt.Parser{Position: s.Position, Name: s.Name, Type: s.Type,
			CtorParams: s.CtorParams, Locals: locals, States: states})
	case *stmt.State:
		components := make([]stmt.Stmt, 0, len(s.Components))
		for _, cm := range s.Components {
			components = append(components, a.stmtNode(cm))
		}
		return a.retagStmt(s, &stmt.State{Position: s.Position, Name: s.Name,
			Components: components, Select: a.exprNode(s.Select)})
	case *stmt.Control:
		locals := make([]stmt.Stmt, 0, len(s.Locals))
		for _, l := range s.Locals {
			locals = append(locals, a.stmtNode(l))
		}
		return a.retagStmt(s, &stmt.Control{Position: s.Position, Name: s.Name, Type: s.Type,
			CtorParams: s.CtorParams, Locals: locals, Body: a.block(s.Body)})
	case *stmt.Table:
		props := make([]*stmt.Property, 0, len(s.Props))
		for _, p := range s.Props {
			props = append(props, a.propertyNode(p))
		}
		return a.retagStmt(s, &stmt.Table{Position: s.Position, Name: s.Name, Props: props})
	case *stmt.Block:
		return a.block(s)
	case *stmt.If:
		ns := &stmt.If{Position: s.Position, Cond: a.exprNode(s.Cond), Body: a.block(s.Body)}
		if s.Else != nil {
			ns.Else = a.stmtNode(s.Else)
		}
		return ns
	case *stmt.Switch:
		cases := make([]*stmt.SwitchCase, 0, len(s.Cases))
		for _, sc := range s.Cases {
			nc := &stmt.SwitchCase{Position: sc.Position, Label: a.exprNode(sc.Label)}
			if sc.Body != nil {
				nc.Body = a.block(sc.Body)
			}
			cases = append(cases, nc)
		}
		return &stmt.Switch{Position: s.Position, Expr: a.exprNode(s.Expr), Cases: cases}
	case *stmt.Return:
		return &stmt.Return{Position: s.Position, Expr: a.exprNode(s.Expr)}
	case *stmt.Assign:
		return &stmt.Assign{Position: s.Position, Left: a.exprNode(s.Left), Right: a.exprNode(s.Right)}
	case *stmt.CallStmt:
		return &stmt.CallStmt{Position: s.Position, Call: a.exprNode(s.Call).(*expr.MethodCall)}
	case *stmt.TypeDecl, *stmt.Typedef, *stmt.ErrorDecl, *stmt.MatchKindDecl, *stmt.DeclID:
		return s
	default:
		panic(fmt.Sprintf("typecheck: unknown stmt %T", s))
	}
}

func (a *ApplyTypesToExpressions) block(b *stmt.Block) *stmt.Block {
	if b == nil {
		return nil
	}
	stmts := make([]stmt.Stmt, 0, len(b.Stmts))
	for _, s := range b.Stmts {
		stmts = append(stmts, a.stmtNode(s))
	}
	return &stmt.Block{Position: b.Position, Stmts: stmts}
}

func (a *ApplyTypesToExpressions) propertyNode(p *stmt.Property) *stmt.Property {
	switch v := p.Value.(type) {
	case *stmt.ExpressionValue:
		return &stmt.Property{Position: p.Position, Name: p.Name,
			Value: &stmt.ExpressionValue{Position: v.Position, Expr: a.exprNode(v.Expr)}}
	case *stmt.ActionList:
		elements := make([]*stmt.ActionListElement, 0, len(v.Elements))
		for _, el := range v.Elements {
			ne := &stmt.ActionListElement{Position: el.Position, Expr: a.exprNode(el.Expr)}
			if t := a.typeMap.Type(el); t != nil {
				a.typeMap.SetType(ne, t)
			}
			elements = append(elements, ne)
		}
		return &stmt.Property{Position: p.Position, Name: p.Name,
			Value: &stmt.ActionList{Position: v.Position, Elements: elements}}
	case *stmt.Key:
		elements := make([]*stmt.KeyElement, 0, len(v.Elements))
		for _, ke := range v.Elements {
			mt := ke.MatchType
			if mt != nil {
				mt = a.exprNode(mt).(*expr.PathExpression)
			}
			elements = append(elements, &stmt.KeyElement{Position: ke.Position,
				Expr: a.exprNode(ke.Expr), MatchType: mt})
		}
		return &stmt.Property{Position: p.Position, Name: p.Name,
			Value: &stmt.Key{Position: v.Position, Elements: elements}}
	}
	return p
}

// exprNode deep-clones an expression, reattaching the clone's type
// and expression bits from the registry.
func (a *ApplyTypesToExpressions) exprNode(e expr.Expr) expr.Expr {
	if e == nil {
		return nil
	}
	switch e := e.(type) {
	case *expr.Bad:
		return e
	case *expr.Constant:
		return a.retagExpr(e, &expr.Constant{Position: e.Position, Type: e.Type,
			Value: e.Value, Base: e.Base})
	case *expr.BoolLiteral:
		return a.retagExpr(e, &expr.BoolLiteral{Position: e.Position, Value: e.Value})
	case *expr.StringLiteral:
		return a.retagExpr(e, &expr.StringLiteral{Position: e.Position, Value: e.Value})
	case *expr.PathExpression:
		return a.retagExpr(e, &expr.PathExpression{Position: e.Position, Name: e.Name})
	case *expr.Member:
		return a.retagExpr(e, &expr.Member{Position: e.Position, Expr: a.exprNode(e.Expr), Name: e.Name})
	case *expr.Binary:
		return a.retagExpr(e, &expr.Binary{Position: e.Position, Op: e.Op,
			Left: a.exprNode(e.Left), Right: a.exprNode(e.Right)})
	case *expr.Unary:
		return a.retagExpr(e, &expr.Unary{Position: e.Position, Op: e.Op, Expr: a.exprNode(e.Expr)})
	case *expr.Cast:
		return a.retagExpr(e, &expr.Cast{Position: e.Position, Type: e.Type, Expr: a.exprNode(e.Expr)})
	case *expr.Slice:
		return a.retagExpr(e, &expr.Slice{Position: e.Position, Expr: a.exprNode(e.Expr),
			High: a.exprNode(e.High), Low: a.exprNode(e.Low)})
	case *expr.Index:
		return a.retagExpr(e, &expr.Index{Position: e.Position, Left: a.exprNode(e.Left),
			Index: a.exprNode(e.Index)})
	case *expr.Mux:
		return a.retagExpr(e, &expr.Mux{Position: e.Position, Cond: a.exprNode(e.Cond),
			True: a.exprNode(e.True), False: a.exprNode(e.False)})
	case *expr.List:
		return a.retagExpr(e, &expr.List{Position: e.Position, Elems: a.exprList(e.Elems)})
	case *expr.MethodCall:
		return a.retagExpr(e, &expr.MethodCall{Position: e.Position, Method: a.exprNode(e.Method),
			TypeArgs: e.TypeArgs, Args: a.exprList(e.Args)})
	case *expr.ConstructorCall:
		return a.retagExpr(e, &expr.ConstructorCall{Position: e.Position, Type: e.Type,
			Args: a.exprList(e.Args)})
	case *expr.Select:
		cases := make([]*expr.SelectCase, 0, len(e.Cases))
		for _, sc := range e.Cases {
			cases = append(cases, &expr.SelectCase{Position: sc.Position,
				Keyset: a.exprNode(sc.Keyset),
				State:  a.exprNode(sc.State).(*expr.PathExpression)})
		}
		return a.retagExpr(e, &expr.Select{Position: e.Position,
			Select: a.exprNode(e.Select).(*expr.List), Cases: cases})
	case *expr.TypeName:
		return a.retagExpr(e, &expr.TypeName{Position: e.Position, Type: e.Type})
	case *expr.Default:
		return a.retagExpr(e, &expr.Default{Position: e.Position})
	case *expr.This:
		return a.retagExpr(e, &expr.This{Position: e.Position})
	default:
		panic(fmt.Sprintf("typecheck: unknown expr %T", e))
	}
}

func (a *ApplyTypesToExpressions) exprList(list []expr.Expr) []expr.Expr {
	if list == nil {
		return nil
	}
	out := make([]expr.Expr, 0, len(list))
	for _, e := range list {
		out = append(out, a.exprNode(e))
	}
	return out
}
