// Copyright 2018 The P4c Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package typecheck

import (
	"fmt"

	"github.com/sharadc/p4c/format"
	"github.com/sharadc/p4c/syntax"
	"github.com/sharadc/p4c/syntax/src"
	"github.com/sharadc/p4c/syntax/tipe"
)

// typeNode resolves a type node appearing in the tree and returns
// its canonical type, registering the node in the type map. It
// returns nil after reporting an error.
func (c *Checker) typeNode(t tipe.Type) tipe.Type {
	if t == nil {
		return nil
	}
	if existing := c.typeMap.Type(t); existing != nil {
		if tt, ok := existing.(*tipe.TypeType); ok {
			return tt.Type
		}
		return existing
	}
	switch t := t.(type) {
	case *tipe.Name:
		if t.Name == "_" {
			c.setType(t, &tipe.TypeType{Type: tipe.Dontcare})
			return tipe.Dontcare
		}
		decl := c.refMap.Declaration(t, true)
		dt := c.typeMap.Type(decl)
		if dt == nil {
			c.errorf(t.Pos(), "could not find type of %s", t.Name)
			return nil
		}
		tt, ok := dt.(*tipe.TypeType)
		if !ok {
			panic(fmt.Sprintf("typecheck: %s: should denote a type, not %s", t.Name, format.Type(dt)))
		}
		c.setType(t, dt)
		return tt.Type
	default:
		canon := c.canonicalize(t)
		if canon == nil {
			return nil
		}
		c.setType(t, &tipe.TypeType{Type: canon})
		return canon
	}
}

// setTypeType canonicalizes the declared type and records
// TypeType(canon) for the declaration node and the type node.
func (c *Checker) setTypeType(decl syntax.Node, t tipe.Type) tipe.Type {
	canon := c.canonicalize(t)
	if canon == nil {
		return nil
	}
	tt := &tipe.TypeType{Type: canon}
	c.setType(decl, tt)
	if interface{}(t) != interface{}(decl) {
		c.setType(t, tt)
	}
	return canon
}

// canonicalize maps a surface type to its canonical form. It may
// return nil if a type error occurs.
func (c *Checker) canonicalize(t tipe.Type) tipe.Type {
	if t == nil {
		return nil
	}
	if exists := c.typeMap.Type(t); exists != nil {
		if tt, ok := exists.(*tipe.TypeType); ok {
			return tt.Type
		}
		return exists
	}

	switch t := t.(type) {
	case tipe.Basic:
		return t
	case *tipe.InfInt, *tipe.Var, *tipe.Varbits, *tipe.Error,
		*tipe.Enum, *tipe.ActionEnum, *tipe.SpecializedCanonical, *tipe.Table:
		return t
	case *tipe.Bits:
		return tipe.BitsOf(t.Size, t.Signed)
	case *tipe.Name:
		return c.typeNode(t)
	case *tipe.Set:
		et := c.canonicalize(t.Elem)
		if et == nil {
			return nil
		}
		if et == t.Elem {
			return t
		}
		return &tipe.Set{Elem: et}
	case *tipe.Stack:
		et := c.canonicalize(t.Elem)
		if et == nil {
			return nil
		}
		if !t.SizeKnown() {
			c.errorf(src.Pos{}, "size of header stack type should be a constant")
		}
		switch et.(type) {
		case *tipe.Header, *tipe.Union:
		default:
			c.errorf(src.Pos{}, "header stack used with non-header type %s", format.Type(et))
		}
		canon := tipe.Type(t)
		if et != t.Elem {
			canon = &tipe.Stack{Elem: et, Size: t.Size}
		}
		return c.typeMap.Canonical(canon)
	case *tipe.Tuple:
		// tuple<set<a>, b> = set<tuple<a, b>>
		// TODO: this should not be done here.
		anySet := false
		anyChange := false
		elems := make([]tipe.Type, 0, len(t.Elems))
		for _, e := range t.Elems {
			if st, ok := e.(*tipe.Set); ok {
				anySet = true
				e = st.Elem
			}
			e1 := c.canonicalize(e)
			if e1 == nil {
				return nil
			}
			anyChange = anyChange || e1 != e
			elems = append(elems, e1)
		}
		canon := tipe.Type(t)
		if anySet || anyChange {
			canon = &tipe.Tuple{Elems: elems}
		}
		canon = c.typeMap.Canonical(canon)
		if anySet {
			canon = &tipe.Set{Elem: canon}
		}
		return canon
	case *tipe.Parser:
		pl := c.canonicalizeParams(t.ApplyParams)
		if pl == nil {
			return nil
		}
		if !c.checkParameters(pl, true) {
			return nil
		}
		ctor, ok := c.canonicalizeCtorParams(t.CtorParams)
		if !ok {
			return nil
		}
		if sameParams(pl, t.ApplyParams) && sameParams(ctor, t.CtorParams) {
			return t
		}
		return &tipe.Parser{Name: t.Name, TypeParams: t.TypeParams, ApplyParams: pl, CtorParams: ctor}
	case *tipe.Control:
		pl := c.canonicalizeParams(t.ApplyParams)
		if pl == nil {
			return nil
		}
		if !c.checkParameters(pl, true) {
			return nil
		}
		ctor, ok := c.canonicalizeCtorParams(t.CtorParams)
		if !ok {
			return nil
		}
		if sameParams(pl, t.ApplyParams) && sameParams(ctor, t.CtorParams) {
			return t
		}
		return &tipe.Control{Name: t.Name, TypeParams: t.TypeParams, ApplyParams: pl, CtorParams: ctor}
	case *tipe.Package:
		pl := c.canonicalizeParams(t.CtorParams)
		if pl == nil {
			return nil
		}
		if !c.checkParameters(pl, false) {
			return nil
		}
		if sameParams(pl, t.CtorParams) {
			return t
		}
		return &tipe.Package{Name: t.Name, TypeParams: t.TypeParams, CtorParams: pl}
	case *tipe.Extern:
		changes := false
		methods := make([]*tipe.ExternMethod, 0, len(t.Methods))
		for _, m := range t.Methods {
			mt := c.canonicalize(m.Type)
			if mt == nil {
				return nil
			}
			if mt != m.Type {
				m = &tipe.ExternMethod{Name: m.Name, Type: mt.(*tipe.Method), Abstract: m.Abstract}
				changes = true
			}
			methods = append(methods, m)
		}
		if !changes {
			return t
		}
		return &tipe.Extern{Name: t.Name, TypeParams: t.TypeParams, Methods: methods}
	case *tipe.Method:
		var res tipe.Type
		if t.Return != nil {
			res = c.canonicalize(t.Return)
			if res == nil {
				return nil
			}
		}
		pl := c.canonicalizeParams(t.Params)
		if pl == nil {
			return nil
		}
		if !c.checkParameters(pl, false) {
			return nil
		}
		if res == t.Return && sameParams(pl, t.Params) {
			return t
		}
		return &tipe.Method{TypeParams: t.TypeParams, Return: res, Params: pl}
	case *tipe.Action:
		return t
	case *tipe.Header:
		fields := c.canonicalizeFields(t.Fields)
		if fields == nil {
			return nil
		}
		if sameFields(fields, t.Fields) {
			return t
		}
		return &tipe.Header{Name: t.Name, Fields: fields}
	case *tipe.Struct:
		fields := c.canonicalizeFields(t.Fields)
		if fields == nil {
			return nil
		}
		if sameFields(fields, t.Fields) {
			return t
		}
		return &tipe.Struct{Name: t.Name, Fields: fields}
	case *tipe.Union:
		fields := c.canonicalizeFields(t.Fields)
		if fields == nil {
			return nil
		}
		if sameFields(fields, t.Fields) {
			return t
		}
		return &tipe.Union{Name: t.Name, Fields: fields}
	case *tipe.Specialized:
		baseCanon := c.canonicalize(t.Base)
		if baseCanon == nil {
			return nil
		}
		if len(t.Args) == 0 {
			return baseCanon
		}
		gt, ok := baseCanon.(tipe.Generic)
		if !ok {
			c.errorf(src.Pos{}, "type %s is not generic and thus it cannot be specialized using type arguments",
				format.Type(baseCanon))
			return nil
		}
		tp := gt.TypeParameters()
		if len(tp) != len(t.Args) {
			c.errorf(src.Pos{}, "type %s has %d type parameter(s), but it is specialized with %d",
				format.Type(baseCanon), len(tp), len(t.Args))
			return nil
		}
		args := make([]tipe.Type, 0, len(t.Args))
		for _, a := range t.Args {
			canon := c.canonicalize(a)
			if canon == nil {
				return nil
			}
			args = append(args, canon)
		}
		specialized := c.specialize(gt, args)
		if specialized == nil {
			return nil
		}
		return &tipe.SpecializedCanonical{Base: baseCanon, Args: args, Substituted: specialized}
	case *tipe.MethodCall:
		panic("typecheck: method call type cannot be canonicalized")
	case *tipe.TypeType:
		panic("typecheck: TypeType should never be canonicalized")
	default:
		panic(fmt.Sprintf("typecheck: unexpected type %T", t))
	}
}

// canonicalizeParams canonicalizes parameter types and records each
// parameter's type in the registry. It returns nil on error.
func (c *Checker) canonicalizeParams(params []*tipe.Param) []*tipe.Param {
	if params == nil {
		return []*tipe.Param{}
	}
	changes := false
	vec := make([]*tipe.Param, 0, len(params))
	for _, p := range params {
		paramType := c.typeNode(p.Type)
		if paramType == nil {
			return nil
		}
		if gt, ok := paramType.(tipe.Generic); ok && len(gt.TypeParameters()) > 0 {
			c.errorf(p.Pos(), "type parameters needed for %s", p.Name)
			return nil
		}
		c.setType(p, paramType)
		if paramType != p.Type {
			np := &tipe.Param{Position: p.Position, Name: p.Name, Direction: p.Direction, Type: paramType}
			c.setType(np, paramType)
			p = np
			changes = true
		}
		vec = append(vec, p)
	}
	if !changes {
		return params
	}
	return vec
}

func (c *Checker) canonicalizeCtorParams(params []*tipe.Param) ([]*tipe.Param, bool) {
	if params == nil {
		return nil, true
	}
	pl := c.canonicalizeParams(params)
	if pl == nil {
		return nil, false
	}
	return pl, true
}

// checkParameters verifies the parameter capability rules: an
// extern-typed parameter cannot have a direction, and module types
// cannot be parameters where forbidModules is set.
func (c *Checker) checkParameters(params []*tipe.Param, forbidModules bool) bool {
	for _, p := range params {
		t := c.typeMap.Type(p)
		if t == nil {
			return false
		}
		if p.Direction != tipe.DirNone {
			if _, ok := t.(*tipe.Extern); ok {
				c.errorf(p.Pos(), "%s: a parameter with an extern type cannot have a direction", p.Name)
				return false
			}
		}
		if forbidModules {
			switch t.(type) {
			case *tipe.Parser, *tipe.Control, *tipe.Package:
				c.errorf(p.Pos(), "%s: parameter cannot have type %s", p.Name, format.Type(t))
				return false
			}
		}
	}
	return true
}

func (c *Checker) canonicalizeFields(fields []tipe.Field) []tipe.Field {
	if fields == nil {
		return []tipe.Field{}
	}
	changes := false
	out := make([]tipe.Field, 0, len(fields))
	for _, f := range fields {
		ft := c.typeNode(f.Type)
		if ft == nil {
			return nil
		}
		if ft != f.Type {
			changes = true
		}
		out = append(out, tipe.Field{Name: f.Name, Type: ft})
	}
	if !changes {
		return fields
	}
	return out
}

func sameParams(x, y []*tipe.Param) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

func sameFields(x, y []tipe.Field) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

// specialize binds the type parameters of a generic type to the
// given arguments, producing a fresh substituted body.
func (c *Checker) specialize(gt tipe.Generic, args []tipe.Type) tipe.Type {
	bindings := NewSubstitution()
	tp := gt.TypeParameters()
	if len(tp) != len(args) {
		return nil
	}
	for i, v := range tp {
		if !bindings.SetBinding(v, args[i]) {
			return nil
		}
	}
	return bindings.Apply(gt)
}

// cloneWithFreshTypeVariables rewrites a generic type so each type
// parameter is replaced by a fresh type variable. Every polymorphic
// use site gets its own clone, so unifications at different call
// sites cannot alias.
func (c *Checker) cloneWithFreshTypeVariables(gt tipe.Generic) tipe.Type {
	tvs := NewSubstitution()
	for _, v := range gt.TypeParameters() {
		fresh := &tipe.Var{Name: c.refMap.NewName(v.Name)}
		if !tvs.SetBinding(v, fresh) {
			panic(fmt.Sprintf("typecheck: failed replacing %s with %s", v.Name, fresh.Name))
		}
	}
	return tvs.Apply(gt)
}
