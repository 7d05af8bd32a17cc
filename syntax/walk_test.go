// Copyright 2018 The P4c Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax_test

import (
	"math/big"
	"testing"

	"github.com/sharadc/p4c/syntax"
	"github.com/sharadc/p4c/syntax/expr"
	"github.com/sharadc/p4c/syntax/stmt"
	"github.com/sharadc/p4c/syntax/tipe"
	"github.com/sharadc/p4c/syntax/token"
)

func prog() *stmt.Program {
	return &stmt.Program{Decls: []stmt.Stmt{
		&stmt.Const{Name: "x", Type: tipe.BitsOf(8, false),
			Value: &expr.Constant{Value: big.NewInt(4)}},
		&stmt.Control{
			Name: "c",
			Type: &tipe.Control{Name: "c"},
			Body: &stmt.Block{Stmts: []stmt.Stmt{
				&stmt.Assign{
					Left: &expr.PathExpression{Name: "r"},
					Right: &expr.Binary{Op: token.Add,
						Left:  &expr.Constant{Value: big.NewInt(3)},
						Right: &expr.PathExpression{Name: "r"}},
				},
			}},
		},
	}}
}

func TestWalkOrder(t *testing.T) {
	var pre, post int
	syntax.Walk(prog(),
		func(n syntax.Node) bool { pre++; return true },
		func(n syntax.Node) bool { post++; return true })
	if pre == 0 || pre != post {
		t.Fatalf("pre = %d, post = %d", pre, post)
	}
}

func TestWalkPrune(t *testing.T) {
	var all, pruned int
	syntax.Walk(prog(), func(n syntax.Node) bool { all++; return true }, nil)
	syntax.Walk(prog(), func(n syntax.Node) bool {
		pruned++
		_, isBlock := n.(*stmt.Block)
		return !isBlock
	}, nil)
	if pruned >= all {
		t.Fatalf("pruned walk visited %d nodes, full walk %d", pruned, all)
	}
}

func TestWalkNilFields(t *testing.T) {
	p := &stmt.Program{Decls: []stmt.Stmt{
		&stmt.Var{Name: "v", Type: tipe.BitsOf(8, false)}, // nil Init
		&stmt.If{Cond: &expr.BoolLiteral{Value: true},
			Body: &stmt.Block{}}, // nil Else
	}}
	syntax.Walk(p, nil, func(n syntax.Node) bool { return true })
}

func TestEqualExpr(t *testing.T) {
	a := &expr.Binary{Op: token.Add,
		Left:  &expr.Constant{Value: big.NewInt(3)},
		Right: &expr.PathExpression{Name: "r"}}
	b := &expr.Binary{Op: token.Add,
		Left:  &expr.Constant{Value: big.NewInt(3)},
		Right: &expr.PathExpression{Name: "r"}}
	if !syntax.EqualExpr(a, b) {
		t.Errorf("equal expressions compared unequal")
	}
	c := &expr.Binary{Op: token.Sub, Left: a.Left, Right: a.Right}
	if syntax.EqualExpr(a, c) {
		t.Errorf("different operators compared equal")
	}
	d := &expr.Binary{Op: token.Add,
		Left:  &expr.Constant{Type: tipe.BitsOf(8, false), Value: big.NewInt(3)},
		Right: &expr.PathExpression{Name: "r"}}
	if syntax.EqualExpr(a, d) {
		t.Errorf("constants of different types compared equal")
	}
}

func TestEqualStmt(t *testing.T) {
	if !syntax.EqualStmt(prog(), prog()) {
		t.Errorf("identical programs compared unequal")
	}
	p := prog()
	p.Decls = p.Decls[:1]
	if syntax.EqualStmt(prog(), p) {
		t.Errorf("truncated program compared equal")
	}
}
