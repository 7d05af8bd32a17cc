// Copyright 2018 The P4c Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package typecheck

import (
	"testing"

	"github.com/sharadc/p4c/diag"
	"github.com/sharadc/p4c/format"
	"github.com/sharadc/p4c/syntax/src"
	"github.com/sharadc/p4c/syntax/tipe"
)

func solve(t *testing.T, cons *Constraints, report bool) (*Substitution, *diag.Sink) {
	t.Helper()
	sink := diag.NewSink()
	return cons.Solve(src.Pos{}, sink, report), sink
}

func TestUnifyBits(t *testing.T) {
	cons := new(Constraints)
	cons.Add(bits(8), bits(8))
	tvs, sink := solve(t, cons, true)
	if tvs == nil || !tvs.IsIdentity() {
		t.Fatalf("equal bit types did not unify to identity")
	}
	if sink.ErrorCount != 0 {
		t.Fatalf("unexpected errors: %v", sink.Msgs)
	}

	cons = new(Constraints)
	cons.Add(bits(8), bits(16))
	tvs, sink = solve(t, cons, false)
	if tvs != nil {
		t.Fatalf("different widths unified")
	}
	if sink.ErrorCount != 0 {
		t.Fatalf("silent solve reported errors: %v", sink.Msgs)
	}
}

func TestUnifyInfInt(t *testing.T) {
	ii := &tipe.InfInt{ID: 1}
	cons := new(Constraints)
	cons.Add(bits(8), ii)
	tvs, _ := solve(t, cons, true)
	if tvs == nil {
		t.Fatalf("unknown-width integer did not unify with bit<8>")
	}
	if got := tvs.Apply(ii); !tipe.Equal(got, bits(8)) {
		t.Fatalf("binding = %s, want bit<8>", format.Type(got))
	}

	cons = new(Constraints)
	cons.Add(tipe.Bool, &tipe.InfInt{ID: 2})
	if tvs, _ := solve(t, cons, false); tvs != nil {
		t.Fatalf("unknown-width integer unified with bool")
	}
}

func TestUnifyDontcare(t *testing.T) {
	cons := new(Constraints)
	cons.Add(tipe.Dontcare, bits(8))
	cons.Add(bits(8), tipe.Dontcare)
	if tvs, _ := solve(t, cons, true); tvs == nil {
		t.Fatalf("dontcare did not unify")
	}
}

func TestUnifyTuples(t *testing.T) {
	v := &tipe.Var{Name: "T"}
	dst := &tipe.Tuple{Elems: []tipe.Type{v, bits(8)}}
	srcT := &tipe.Tuple{Elems: []tipe.Type{bits(16), bits(8)}}
	cons := new(Constraints)
	cons.Add(dst, srcT)
	tvs, _ := solve(t, cons, true)
	if tvs == nil {
		t.Fatalf("tuples did not unify")
	}
	// substitution soundness
	if !tipe.Equal(tvs.Apply(dst), tvs.Apply(srcT)) {
		t.Fatalf("substitution does not equate both sides: %s vs %s",
			format.Type(tvs.Apply(dst)), format.Type(tvs.Apply(srcT)))
	}

	cons = new(Constraints)
	cons.Add(dst, &tipe.Tuple{Elems: []tipe.Type{bits(16)}})
	if tvs, _ := solve(t, cons, false); tvs != nil {
		t.Fatalf("tuples of different arity unified")
	}
}

func TestOccursCheck(t *testing.T) {
	v := &tipe.Var{Name: "T"}
	cons := new(Constraints)
	cons.Add(v, &tipe.Tuple{Elems: []tipe.Type{v}})
	if tvs, _ := solve(t, cons, false); tvs != nil {
		t.Fatalf("occurs check did not fire")
	}
}

func TestUnifyMethodCall(t *testing.T) {
	mt := &tipe.Method{Return: bits(8), Params: []*tipe.Param{
		param("x", tipe.DirIn, bits(8)),
		param("y", tipe.DirOut, bits(16)),
	}}
	ret := &tipe.Var{Name: "R"}
	call := &tipe.MethodCall{Return: ret, Args: []*tipe.ArgInfo{
		{Type: bits(8)},
		{IsLeftValue: true, Type: bits(16)},
	}}
	cons := new(Constraints)
	cons.Add(mt, call)
	tvs, sink := solve(t, cons, true)
	if tvs == nil {
		t.Fatalf("method call did not unify: %v", sink.Msgs)
	}
	if got := tvs.Apply(ret); !tipe.Equal(got, bits(8)) {
		t.Fatalf("return binding = %s, want bit<8>", format.Type(got))
	}
}

func TestUnifyMethodCallNeedsLeftValue(t *testing.T) {
	mt := &tipe.Method{Return: tipe.Void, Params: []*tipe.Param{
		param("y", tipe.DirOut, bits(16)),
	}}
	call := &tipe.MethodCall{Return: &tipe.Var{Name: "R"},
		Args: []*tipe.ArgInfo{{Type: bits(16)}}}
	cons := new(Constraints)
	cons.Add(mt, call)
	tvs, sink := solve(t, cons, true)
	if tvs != nil {
		t.Fatalf("call with read-write parameter accepted a non-left-value")
	}
	if sink.ErrorCount == 0 {
		t.Fatalf("expected a left-value error")
	}
}

func TestUnifyMethodCallTypeArgs(t *testing.T) {
	tv := &tipe.Var{Name: "T"}
	mt := &tipe.Method{TypeParams: []*tipe.Var{tv}, Return: tv,
		Params: []*tipe.Param{param("x", tipe.DirIn, tv)}}
	ret := &tipe.Var{Name: "R"}
	call := &tipe.MethodCall{
		TypeArgs: []tipe.Type{bits(32)},
		Return:   ret,
		Args:     []*tipe.ArgInfo{{Type: bits(32)}},
	}
	cons := new(Constraints)
	cons.Add(mt, call)
	tvs, sink := solve(t, cons, true)
	if tvs == nil {
		t.Fatalf("generic call did not unify: %v", sink.Msgs)
	}
	if got := tvs.Apply(ret); !tipe.Equal(got, bits(32)) {
		t.Fatalf("return binding = %s, want bit<32>", format.Type(got))
	}

	// wrong number of type arguments
	cons = new(Constraints)
	cons.Add(mt, &tipe.MethodCall{
		TypeArgs: []tipe.Type{bits(32), bits(8)},
		Return:   &tipe.Var{Name: "R2"},
		Args:     []*tipe.ArgInfo{{Type: bits(32)}},
	})
	if tvs, _ := solve(t, cons, false); tvs != nil {
		t.Fatalf("wrong type-argument count unified")
	}
}

func TestUnifySpecializedCanonical(t *testing.T) {
	sub := &tipe.Struct{Name: "S", Fields: []tipe.Field{{Name: "f", Type: bits(8)}}}
	sc := &tipe.SpecializedCanonical{Base: &tipe.Struct{Name: "G"},
		Args: []tipe.Type{bits(8)}, Substituted: sub}
	cons := new(Constraints)
	cons.Add(sc, sub)
	if tvs, _ := solve(t, cons, true); tvs == nil {
		t.Fatalf("specialization did not unify through its body")
	}
}

func TestMergeConflictPanics(t *testing.T) {
	v := &tipe.Var{Name: "T"}
	s1, s2 := NewSubstitution(), NewSubstitution()
	s1.SetBinding(v, bits(8))
	s2.SetBinding(v, bits(16))
	defer func() {
		if recover() == nil {
			t.Fatalf("conflicting merge did not panic")
		}
	}()
	s1.Merge(s2)
}
