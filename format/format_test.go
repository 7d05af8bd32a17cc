// Copyright 2018 The P4c Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package format

import (
	"math/big"
	"testing"

	"github.com/sharadc/p4c/syntax/expr"
	"github.com/sharadc/p4c/syntax/tipe"
	"github.com/sharadc/p4c/syntax/token"
)

var typeTests = []struct {
	t    tipe.Type
	want string
}{
	{tipe.Bool, "bool"},
	{tipe.BitsOf(8, false), "bit<8>"},
	{tipe.BitsOf(32, true), "int<32>"},
	{&tipe.Varbits{Size: 120}, "varbit<120>"},
	{&tipe.InfInt{ID: 7}, "int"},
	{&tipe.Set{Elem: tipe.BitsOf(8, false)}, "set<bit<8>>"},
	{&tipe.Stack{Elem: &tipe.Name{Name: "H"}, Size: 4}, "H[4]"},
	{&tipe.Tuple{Elems: []tipe.Type{tipe.Bool, tipe.BitsOf(4, false)}}, "tuple<bool, bit<4>>"},
	{&tipe.Enum{Name: "Suits"}, "Suits"},
	{
		&tipe.Method{Return: tipe.BitsOf(8, false),
			Params: []*tipe.Param{{Name: "x", Direction: tipe.DirIn, Type: tipe.BitsOf(8, false)}}},
		"(in bit<8> x) -> bit<8>",
	},
	{&tipe.Action{}, "action()"},
	{&tipe.Extern{Name: "Counter"}, "extern Counter"},
}

func TestType(t *testing.T) {
	for i, test := range typeTests {
		if got := Type(test.t); got != test.want {
			t.Errorf("%d: Type = %q, want %q", i, got, test.want)
		}
	}
}

var exprTests = []struct {
	e    expr.Expr
	want string
}{
	{&expr.Constant{Value: big.NewInt(42)}, "42"},
	{&expr.Constant{Value: big.NewInt(255), Base: 16}, "0xff"},
	{&expr.BoolLiteral{Value: true}, "true"},
	{
		&expr.Binary{Op: token.Add,
			Left:  &expr.Constant{Value: big.NewInt(3)},
			Right: &expr.PathExpression{Name: "r"}},
		"3 + r",
	},
	{
		&expr.Member{Expr: &expr.PathExpression{Name: "s"}, Name: "h"},
		"s.h",
	},
	{
		&expr.Cast{Type: tipe.BitsOf(8, false), Expr: &expr.Constant{Value: big.NewInt(1)}},
		"(bit<8>)1",
	},
	{
		&expr.Slice{Expr: &expr.PathExpression{Name: "x"},
			High: &expr.Constant{Value: big.NewInt(7)},
			Low:  &expr.Constant{Value: big.NewInt(0)}},
		"x[7:0]",
	},
	{
		&expr.MethodCall{Method: &expr.PathExpression{Name: "f"},
			Args: []expr.Expr{&expr.Constant{Value: big.NewInt(4)}}},
		"f(4)",
	},
	{&expr.Default{}, "default"},
}

func TestExpr(t *testing.T) {
	for i, test := range exprTests {
		if got := Expr(test.e); got != test.want {
			t.Errorf("%d: Expr = %q, want %q", i, got, test.want)
		}
	}
}
