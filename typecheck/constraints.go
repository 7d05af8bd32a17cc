// Copyright 2018 The P4c Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package typecheck

import (
	"github.com/sharadc/p4c/diag"
	"github.com/sharadc/p4c/format"
	"github.com/sharadc/p4c/syntax/src"
	"github.com/sharadc/p4c/syntax/tipe"
)

// Constraints is an ordered accumulator of equality constraints
// between types, solved by unification.
type Constraints struct {
	list []constraint
}

type constraint struct {
	dst tipe.Type
	src tipe.Type
}

func (c *Constraints) Add(dst, src tipe.Type) {
	c.list = append(c.list, constraint{dst: dst, src: src})
}

// Solve unifies all accumulated constraints. It returns the solving
// substitution, or nil on contradictory constraints. When
// reportErrors is unset, failure is silent; speculative unifications
// use this.
func (c *Constraints) Solve(pos src.Pos, sink *diag.Sink, reportErrors bool) *Substitution {
	u := &unifier{
		sub:    NewSubstitution(),
		sink:   sink,
		pos:    pos,
		report: reportErrors,
	}
	for _, cn := range c.list {
		if !u.unify(cn.dst, cn.src) {
			return nil
		}
	}
	return u.sub
}

type unifier struct {
	sub    *Substitution
	sink   *diag.Sink
	pos    src.Pos
	report bool
}

func (u *unifier) errorf(f string, args ...interface{}) bool {
	if u.report {
		u.sink.Errorf(u.pos, f, args...)
	}
	return false
}

func (u *unifier) bind(v tipe.TVar, t tipe.Type) bool {
	if !u.sub.SetBinding(v, t) {
		return u.errorf("cannot unify %s with %s", format.Type(v), format.Type(t))
	}
	return true
}

func (u *unifier) unify(dst, src tipe.Type) bool {
	dst = u.sub.resolve(dst)
	src = u.sub.resolve(src)
	if dst == src {
		return true
	}
	if dst == tipe.Dontcare || src == tipe.Dontcare {
		return true
	}

	// a plain type variable unifies with anything
	if v, ok := dst.(*tipe.Var); ok {
		return u.bind(v, src)
	}
	if v, ok := src.(*tipe.Var); ok {
		return u.bind(v, dst)
	}

	// an unknown-width integer unifies with any bit type or another
	// unknown-width integer
	if v, ok := dst.(*tipe.InfInt); ok {
		switch src.(type) {
		case *tipe.Bits, *tipe.InfInt:
			return u.bind(v, src)
		}
		return u.errorf("cannot unify int with %s", format.Type(src))
	}
	if v, ok := src.(*tipe.InfInt); ok {
		if _, ok := dst.(*tipe.Bits); ok {
			return u.bind(v, dst)
		}
		return u.errorf("cannot unify %s with int", format.Type(dst))
	}

	// a method type unifies with the synthetic type of a call site
	if m, ok := dst.(*tipe.Method); ok {
		if call, ok := src.(*tipe.MethodCall); ok {
			return u.unifyCall(m, call)
		}
	}
	if m, ok := src.(*tipe.Method); ok {
		if call, ok := dst.(*tipe.MethodCall); ok {
			return u.unifyCall(m, call)
		}
	}

	// a specialization unifies through its substituted body
	if sc, ok := dst.(*tipe.SpecializedCanonical); ok {
		return u.unify(sc.Substituted, src)
	}
	if sc, ok := src.(*tipe.SpecializedCanonical); ok {
		return u.unify(dst, sc.Substituted)
	}

	switch dst := dst.(type) {
	case tipe.Basic:
		if src, ok := src.(tipe.Basic); ok && dst == src {
			return true
		}
	case *tipe.Bits:
		if src, ok := src.(*tipe.Bits); ok {
			if dst.Size == src.Size && dst.Signed == src.Signed {
				return true
			}
		}
	case *tipe.Varbits:
		if src, ok := src.(*tipe.Varbits); ok && dst.Size == src.Size {
			return true
		}
	case *tipe.Set:
		if src, ok := src.(*tipe.Set); ok {
			return u.unify(dst.Elem, src.Elem)
		}
	case *tipe.Stack:
		if src, ok := src.(*tipe.Stack); ok {
			if dst.SizeKnown() && src.SizeKnown() && dst.Size != src.Size {
				return u.errorf("cannot unify stacks of size %d and %d", dst.Size, src.Size)
			}
			return u.unify(dst.Elem, src.Elem)
		}
	case *tipe.Tuple:
		if src, ok := src.(*tipe.Tuple); ok {
			if len(dst.Elems) != len(src.Elems) {
				return u.errorf("cannot unify tuples with %d and %d components",
					len(dst.Elems), len(src.Elems))
			}
			for i := range dst.Elems {
				if !u.unify(dst.Elems[i], src.Elems[i]) {
					return false
				}
			}
			return true
		}
	case *tipe.Struct, *tipe.Header, *tipe.Union, *tipe.Enum, *tipe.Error,
		*tipe.ActionEnum, *tipe.Extern, *tipe.Parser, *tipe.Control, *tipe.Package:
		if tipe.Equal(dst, src) {
			return true
		}
	case *tipe.Method:
		if src, ok := src.(*tipe.Method); ok {
			return u.unifyMethods(dst, src)
		}
	case *tipe.Action:
		if src, ok := src.(*tipe.Action); ok && tipe.Equal(dst, src) {
			return true
		}
	}
	return u.errorf("cannot unify %s with %s", format.Type(dst), format.Type(src))
}

func (u *unifier) unifyMethods(dst, src *tipe.Method) bool {
	if len(dst.Params) != len(src.Params) {
		return u.errorf("methods have different number of parameters: %d and %d",
			len(dst.Params), len(src.Params))
	}
	dr, sr := dst.Return, src.Return
	if dr == nil {
		dr = tipe.Void
	}
	if sr == nil {
		sr = tipe.Void
	}
	if !u.unify(dr, sr) {
		return false
	}
	for i := range dst.Params {
		if dst.Params[i].Direction != src.Params[i].Direction {
			return u.errorf("parameter %s has different direction", dst.Params[i].Name)
		}
		if !u.unify(dst.Params[i].Type, src.Params[i].Type) {
			return false
		}
	}
	return true
}

func (u *unifier) unifyCall(m *tipe.Method, call *tipe.MethodCall) bool {
	if len(call.TypeArgs) > 0 {
		if len(call.TypeArgs) != len(m.TypeParams) {
			return u.errorf("%d type parameters expected, but %d type arguments supplied",
				len(m.TypeParams), len(call.TypeArgs))
		}
		for i, v := range m.TypeParams {
			if !u.bind(v, call.TypeArgs[i]) {
				return false
			}
		}
	}
	if len(m.Params) != len(call.Args) {
		return u.errorf("method expects %d arguments, but call has %d",
			len(m.Params), len(call.Args))
	}
	ret := m.Return
	if ret == nil {
		ret = tipe.Void
	}
	if !u.unify(call.Return, ret) {
		return false
	}
	for i, p := range m.Params {
		arg := call.Args[i]
		if (p.Direction == tipe.DirOut || p.Direction == tipe.DirInOut) && !arg.IsLeftValue {
			return u.errorf("read-write parameter %s must be supplied a left-value", p.Name)
		}
		if !u.unify(p.Type, arg.Type) {
			return false
		}
	}
	return true
}
