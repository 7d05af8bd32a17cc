// Copyright 2018 The P4c Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package typecheck

import (
	"fmt"

	"github.com/sharadc/p4c/format"
	"github.com/sharadc/p4c/syntax/tipe"
)

// Substitution maps type variables to types. It is produced by the
// unifier and applied to type trees.
type Substitution struct {
	bindings map[tipe.TVar]tipe.Type
}

func NewSubstitution() *Substitution {
	return &Substitution{bindings: make(map[tipe.TVar]tipe.Type)}
}

// IsIdentity reports whether the substitution binds nothing.
func (s *Substitution) IsIdentity() bool {
	return len(s.bindings) == 0
}

// Lookup returns the binding for v, or nil.
func (s *Substitution) Lookup(v tipe.TVar) tipe.Type {
	return s.bindings[v]
}

// SetBinding binds v to t. It fails on an occurs-check violation or
// when v is already bound to a different type.
func (s *Substitution) SetBinding(v tipe.TVar, t tipe.Type) bool {
	if v == t {
		return true
	}
	if occurs(v, t) {
		return false
	}
	if old, ok := s.bindings[v]; ok {
		return old == t || tipe.Equal(old, t)
	}
	s.bindings[v] = t
	return true
}

// Merge adds all bindings of other. Conflicting bindings are a
// checker bug: the solver never produces them.
func (s *Substitution) Merge(other *Substitution) {
	if other == nil {
		return
	}
	for v, t := range other.bindings {
		if old, ok := s.bindings[v]; ok && old != t && !tipe.Equal(old, t) {
			panic(fmt.Sprintf("typecheck: conflicting bindings %s and %s for %s",
				format.Type(old), format.Type(t), format.Type(v)))
		}
		s.bindings[v] = t
	}
}

func occurs(v tipe.TVar, t tipe.Type) bool {
	switch t := t.(type) {
	case tipe.TVar:
		return t == v
	case *tipe.Set:
		return occurs(v, t.Elem)
	case *tipe.Stack:
		return occurs(v, t.Elem)
	case *tipe.Tuple:
		for _, e := range t.Elems {
			if occurs(v, e) {
				return true
			}
		}
	case *tipe.Method:
		if t.Return != nil && occurs(v, t.Return) {
			return true
		}
		for _, p := range t.Params {
			if occurs(v, p.Type) {
				return true
			}
		}
	case *tipe.Action:
		for _, p := range t.Params {
			if occurs(v, p.Type) {
				return true
			}
		}
	case *tipe.Specialized:
		if occurs(v, t.Base) {
			return true
		}
		for _, a := range t.Args {
			if occurs(v, a) {
				return true
			}
		}
	case *tipe.SpecializedCanonical:
		for _, a := range t.Args {
			if occurs(v, a) {
				return true
			}
		}
		return occurs(v, t.Substituted)
	}
	return false
}

// resolve chases bindings until it reaches an unbound variable or a
// concrete type.
func (s *Substitution) resolve(t tipe.Type) tipe.Type {
	for {
		v, ok := t.(tipe.TVar)
		if !ok {
			return t
		}
		b := s.bindings[v]
		if b == nil {
			return t
		}
		t = b
	}
}

// Apply rewrites a type, replacing every bound variable by its
// binding. Unbound variables are left in place. Bound type
// parameters of generic types are removed from their parameter
// lists; parameters bound to fresh variables are renamed to them.
func (s *Substitution) Apply(t tipe.Type) tipe.Type {
	if t == nil {
		return nil
	}
	switch t := t.(type) {
	case tipe.TVar:
		r := s.resolve(t)
		if r == t {
			return t
		}
		return s.Apply(r)
	case *tipe.Set:
		e := s.Apply(t.Elem)
		if e == t.Elem {
			return t
		}
		return &tipe.Set{Elem: e}
	case *tipe.Stack:
		e := s.Apply(t.Elem)
		if e == t.Elem {
			return t
		}
		return &tipe.Stack{Elem: e, Size: t.Size}
	case *tipe.Tuple:
		var elems []tipe.Type
		changed := false
		for _, e := range t.Elems {
			n := s.Apply(e)
			changed = changed || n != e
			elems = append(elems, n)
		}
		if !changed {
			return t
		}
		return &tipe.Tuple{Elems: elems}
	case *tipe.Method:
		ret := s.Apply(t.Return)
		params, pchanged := s.applyParams(t.Params)
		tps, tpchanged := s.applyTypeParams(t.TypeParams)
		if ret == t.Return && !pchanged && !tpchanged {
			return t
		}
		return &tipe.Method{TypeParams: tps, Return: ret, Params: params}
	case *tipe.Action:
		params, changed := s.applyParams(t.Params)
		if !changed {
			return t
		}
		return &tipe.Action{Params: params}
	case *tipe.Extern:
		var methods []*tipe.ExternMethod
		changed := false
		for _, m := range t.Methods {
			mt := s.Apply(m.Type).(*tipe.Method)
			if mt != m.Type {
				changed = true
				m = &tipe.ExternMethod{Name: m.Name, Type: mt, Abstract: m.Abstract}
			}
			methods = append(methods, m)
		}
		tps, tpchanged := s.applyTypeParams(t.TypeParams)
		if !changed && !tpchanged {
			return t
		}
		return &tipe.Extern{Name: t.Name, TypeParams: tps, Methods: methods}
	case *tipe.Parser:
		apply, achanged := s.applyParams(t.ApplyParams)
		ctor, cchanged := s.applyParams(t.CtorParams)
		tps, tpchanged := s.applyTypeParams(t.TypeParams)
		if !achanged && !cchanged && !tpchanged {
			return t
		}
		return &tipe.Parser{Name: t.Name, TypeParams: tps, ApplyParams: apply, CtorParams: ctor}
	case *tipe.Control:
		apply, achanged := s.applyParams(t.ApplyParams)
		ctor, cchanged := s.applyParams(t.CtorParams)
		tps, tpchanged := s.applyTypeParams(t.TypeParams)
		if !achanged && !cchanged && !tpchanged {
			return t
		}
		return &tipe.Control{Name: t.Name, TypeParams: tps, ApplyParams: apply, CtorParams: ctor}
	case *tipe.Package:
		ctor, cchanged := s.applyParams(t.CtorParams)
		tps, tpchanged := s.applyTypeParams(t.TypeParams)
		if !cchanged && !tpchanged {
			return t
		}
		return &tipe.Package{Name: t.Name, TypeParams: tps, CtorParams: ctor}
	case *tipe.Specialized:
		base := s.Apply(t.Base)
		args, changed := s.applyTypes(t.Args)
		if base == t.Base && !changed {
			return t
		}
		return &tipe.Specialized{Base: base, Args: args}
	case *tipe.SpecializedCanonical:
		args, changed := s.applyTypes(t.Args)
		sub := s.Apply(t.Substituted)
		if !changed && sub == t.Substituted {
			return t
		}
		return &tipe.SpecializedCanonical{Base: t.Base, Args: args, Substituted: sub}
	default:
		// base types, nominal types and type references do not
		// contain free variables
		return t
	}
}

func (s *Substitution) applyTypes(ts []tipe.Type) ([]tipe.Type, bool) {
	var out []tipe.Type
	changed := false
	for _, t := range ts {
		n := s.Apply(t)
		changed = changed || n != t
		out = append(out, n)
	}
	if !changed {
		return ts, false
	}
	return out, true
}

func (s *Substitution) applyParams(params []*tipe.Param) ([]*tipe.Param, bool) {
	if params == nil {
		return nil, false
	}
	out := make([]*tipe.Param, 0, len(params))
	changed := false
	for _, p := range params {
		t := s.Apply(p.Type)
		if t != p.Type {
			changed = true
			p = &tipe.Param{Position: p.Position, Name: p.Name, Direction: p.Direction, Type: t}
		}
		out = append(out, p)
	}
	if !changed {
		return params, false
	}
	return out, true
}

// applyTypeParams rewrites a type-parameter list: a parameter bound
// to another variable is replaced by that variable, a parameter
// bound to a concrete type disappears.
func (s *Substitution) applyTypeParams(tps []*tipe.Var) ([]*tipe.Var, bool) {
	if len(tps) == 0 {
		return tps, false
	}
	out := make([]*tipe.Var, 0, len(tps))
	changed := false
	for _, v := range tps {
		b := s.resolve(v)
		if b == v {
			out = append(out, v)
			continue
		}
		changed = true
		if nv, ok := b.(*tipe.Var); ok {
			out = append(out, nv)
		}
	}
	if !changed {
		return tps, false
	}
	return out, true
}
