// Copyright 2018 The P4c Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package typecheck

import (
	"testing"

	"github.com/sharadc/p4c/format"
	"github.com/sharadc/p4c/syntax/tipe"
)

func TestBitsInterning(t *testing.T) {
	if tipe.BitsOf(8, false) != tipe.BitsOf(8, false) {
		t.Errorf("bit<8> not interned")
	}
	if tipe.BitsOf(8, false) == tipe.BitsOf(8, true) {
		t.Errorf("bit<8> and int<8> share an instance")
	}
}

// Structurally equal types canonicalize to the same instance, and
// canonicalization is stable.
func TestCanonicalUniqueness(t *testing.T) {
	e := newEnv()
	t1 := &tipe.Tuple{Elems: []tipe.Type{bits(8), bits(16)}}
	t2 := &tipe.Tuple{Elems: []tipe.Type{bits(8), bits(16)}}
	c1 := e.c.canonicalize(t1)
	c2 := e.c.canonicalize(t2)
	if c1 != c2 {
		t.Errorf("equal tuples canonicalize to distinct instances")
	}
	if e.c.canonicalize(c1) != c1 {
		t.Errorf("canonicalization is not stable")
	}

	s1 := &tipe.Stack{Elem: &tipe.Header{Name: "H"}, Size: 3}
	s2 := &tipe.Stack{Elem: &tipe.Header{Name: "H"}, Size: 3}
	if e.c.canonicalize(s1) != e.c.canonicalize(s2) {
		t.Errorf("equal stacks canonicalize to distinct instances")
	}
}

// tuple<set<a>, b> canonicalizes to set<tuple<a, b>>.
func TestTupleSetLifting(t *testing.T) {
	e := newEnv()
	in := &tipe.Tuple{Elems: []tipe.Type{&tipe.Set{Elem: bits(8)}, bits(16)}}
	got := e.c.canonicalize(in)
	set, ok := got.(*tipe.Set)
	if !ok {
		t.Fatalf("canonicalize = %s, want a set", format.Type(got))
	}
	tup, ok := set.Elem.(*tipe.Tuple)
	if !ok || len(tup.Elems) != 2 {
		t.Fatalf("set element = %s, want tuple<bit<8>, bit<16>>", format.Type(set.Elem))
	}
	if tup.Elems[0] != tipe.Type(bits(8)) || tup.Elems[1] != tipe.Type(bits(16)) {
		t.Errorf("lifted tuple = %s", format.Type(tup))
	}
}

// Specializing a generic extern substitutes its type parameters and
// empties the parameter list of the body.
func TestSpecialization(t *testing.T) {
	e := newEnv()
	tv := &tipe.Var{Name: "T"}
	ext := &tipe.Extern{Name: "Reg", TypeParams: []*tipe.Var{tv},
		Methods: []*tipe.ExternMethod{
			{Name: "read", Type: &tipe.Method{Return: tv}},
		}}
	sp := &tipe.Specialized{Base: ext, Args: []tipe.Type{bits(8)}}
	got := e.c.canonicalize(sp)
	e.noErrors(t)

	sc, ok := got.(*tipe.SpecializedCanonical)
	if !ok {
		t.Fatalf("canonicalize = %s, want a canonical specialization", format.Type(got))
	}
	sub, ok := sc.Substituted.(*tipe.Extern)
	if !ok {
		t.Fatalf("substituted = %s, want an extern", format.Type(sc.Substituted))
	}
	if len(sub.TypeParams) != 0 {
		t.Errorf("substituted extern still has %d type parameters", len(sub.TypeParams))
	}
	if got := sub.Methods[0].Type.Return; !tipe.Equal(got, bits(8)) {
		t.Errorf("read return type = %s, want bit<8>", format.Type(got))
	}
}

func TestSpecializationArityMismatch(t *testing.T) {
	e := newEnv()
	tv := &tipe.Var{Name: "T"}
	ext := &tipe.Extern{Name: "Reg", TypeParams: []*tipe.Var{tv}}
	sp := &tipe.Specialized{Base: ext, Args: []tipe.Type{bits(8), bits(16)}}
	if got := e.c.canonicalize(sp); got != nil {
		t.Fatalf("canonicalize = %s, want error", format.Type(got))
	}
	if e.sink.ErrorCount == 0 {
		t.Errorf("expected a type-parameter arity error")
	}
}

func TestNonGenericSpecialized(t *testing.T) {
	e := newEnv()
	sp := &tipe.Specialized{Base: &tipe.Struct{Name: "S"}, Args: []tipe.Type{bits(8)}}
	if got := e.c.canonicalize(sp); got != nil {
		t.Fatalf("canonicalize = %s, want error", format.Type(got))
	}
	if e.sink.ErrorCount == 0 {
		t.Errorf("expected a non-generic specialization error")
	}
}

// Fresh cloning renames every type parameter; two clones never share
// variables.
func TestCloneWithFreshTypeVariables(t *testing.T) {
	e := newEnv()
	tv := &tipe.Var{Name: "T"}
	mt := &tipe.Method{TypeParams: []*tipe.Var{tv}, Return: tv,
		Params: []*tipe.Param{param("x", tipe.DirIn, tv)}}
	c1 := e.c.cloneWithFreshTypeVariables(mt).(*tipe.Method)
	c2 := e.c.cloneWithFreshTypeVariables(mt).(*tipe.Method)
	if c1.TypeParams[0] == tv || c2.TypeParams[0] == tv {
		t.Errorf("clone kept the original type parameter")
	}
	if c1.TypeParams[0] == c2.TypeParams[0] {
		t.Errorf("two clones share a type variable")
	}
	if c1.Return != tipe.Type(c1.TypeParams[0]) {
		t.Errorf("clone return type is not its own parameter")
	}
	if c1.Params[0].Type != tipe.Type(c1.TypeParams[0]) {
		t.Errorf("clone parameter type is not its own parameter")
	}
}

func TestExternTypedParamDirection(t *testing.T) {
	e := newEnv()
	ext := &tipe.Extern{Name: "Counter"}
	mt := &tipe.Method{Return: tipe.Void,
		Params: []*tipe.Param{param("c", tipe.DirInOut, ext)}}
	if got := e.c.canonicalize(mt); got != nil {
		t.Fatalf("canonicalize = %s, want error", format.Type(got))
	}
	if e.sink.ErrorCount == 0 {
		t.Errorf("expected an extern-parameter direction error")
	}
}

func TestModuleTypedApplyParamRejected(t *testing.T) {
	e := newEnv()
	inner := &tipe.Control{Name: "inner"}
	ct := &tipe.Control{Name: "outer",
		ApplyParams: []*tipe.Param{param("c", tipe.DirNone, inner)}}
	if got := e.c.canonicalize(ct); got != nil {
		t.Fatalf("canonicalize = %s, want error", format.Type(got))
	}
	if e.sink.ErrorCount == 0 {
		t.Errorf("expected a module-typed parameter error")
	}
}
