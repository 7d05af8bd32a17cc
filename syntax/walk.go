// Copyright 2018 The P4c Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

import (
	"fmt"
	"reflect"

	"github.com/sharadc/p4c/syntax/expr"
	"github.com/sharadc/p4c/syntax/stmt"
	"github.com/sharadc/p4c/syntax/tipe"
)

// Walk traverses a syntax tree, calling preFn and postFn for each node.
//
// If a preFn is provided it is called for each node before its children
// are traversed. If preFn returns false no children are traversed.
//
// If a postFn is provided it is called for each node after its children
// are traversed.
func Walk(root Node, preFn, postFn WalkFunc) {
	w := walker{preFn: preFn, postFn: postFn}
	w.walk(root)
}

// A WalkFunc is invoked by Walk when traversing nodes in a syntax tree.
type WalkFunc func(Node) bool

type walker struct {
	preFn  WalkFunc
	postFn WalkFunc
}

func (w *walker) walk(node Node) {
	// typed nil -> untyped nil
	if v := reflect.ValueOf(node); v.Kind() == reflect.Ptr && v.IsNil() {
		node = nil
	}
	if node == nil {
		return
	}

	if w.preFn != nil && !w.preFn(node) {
		return
	}

	switch node := node.(type) {
	case *stmt.Program:
		for _, d := range node.Decls {
			w.walk(d)
		}

	case *stmt.Const:
		w.walk(node.Value)

	case *stmt.Var:
		w.walk(node.Init)

	case *stmt.Instance:
		for _, a := range node.Args {
			w.walk(a)
		}
		for _, f := range node.Init {
			w.walk(f)
		}

	case *stmt.Function:
		w.walk(node.Body)

	case *stmt.Action:
		for _, p := range node.Params {
			w.walk(p)
		}
		w.walk(node.Body)

	case *stmt.TypeDecl:

	case *stmt.Typedef:

	case *stmt.DeclID:

	case *stmt.ErrorDecl:
		for _, m := range node.Members {
			w.walk(m)
		}

	case *stmt.MatchKindDecl:
		for _, m := range node.Members {
			w.walk(m)
		}

	case *stmt.Parser:
		for _, p := range node.CtorParams {
			w.walk(p)
		}
		for _, l := range node.Locals {
			w.walk(l)
		}
		for _, s := range node.States {
			w.walk(s)
		}

	case *stmt.State:
		for _, c := range node.Components {
			w.walk(c)
		}
		w.walk(node.Select)

	case *stmt.Control:
		for _, p := range node.CtorParams {
			w.walk(p)
		}
		for _, l := range node.Locals {
			w.walk(l)
		}
		w.walk(node.Body)

	case *stmt.Table:
		for _, p := range node.Props {
			w.walk(p)
		}

	case *stmt.Property:
		w.walk(node.Value)

	case *stmt.ExpressionValue:
		w.walk(node.Expr)

	case *stmt.ActionList:
		for _, e := range node.Elements {
			w.walk(e)
		}

	case *stmt.ActionListElement:
		w.walk(node.Expr)

	case *stmt.Key:
		for _, e := range node.Elements {
			w.walk(e)
		}

	case *stmt.KeyElement:
		w.walk(node.Expr)
		w.walk(node.MatchType)

	case *stmt.Block:
		for _, s := range node.Stmts {
			w.walk(s)
		}

	case *stmt.If:
		w.walk(node.Cond)
		w.walk(node.Body)
		w.walk(node.Else)

	case *stmt.Switch:
		w.walk(node.Expr)
		for _, c := range node.Cases {
			w.walk(c)
		}

	case *stmt.SwitchCase:
		w.walk(node.Label)
		w.walk(node.Body)

	case *stmt.Return:
		w.walk(node.Expr)

	case *stmt.Assign:
		w.walk(node.Left)
		w.walk(node.Right)

	case *stmt.CallStmt:
		w.walk(node.Call)

	case *expr.Bad:

	case *expr.Constant:

	case *expr.BoolLiteral:

	case *expr.StringLiteral:

	case *expr.PathExpression:

	case *expr.Member:
		w.walk(node.Expr)

	case *expr.Binary:
		w.walk(node.Left)
		w.walk(node.Right)

	case *expr.Unary:
		w.walk(node.Expr)

	case *expr.Cast:
		w.walk(node.Expr)

	case *expr.Slice:
		w.walk(node.Expr)
		w.walk(node.High)
		w.walk(node.Low)

	case *expr.Index:
		w.walk(node.Left)
		w.walk(node.Index)

	case *expr.Mux:
		w.walk(node.Cond)
		w.walk(node.True)
		w.walk(node.False)

	case *expr.List:
		for _, e := range node.Elems {
			w.walk(e)
		}

	case *expr.MethodCall:
		w.walk(node.Method)
		for _, a := range node.Args {
			w.walk(a)
		}

	case *expr.ConstructorCall:
		for _, a := range node.Args {
			w.walk(a)
		}

	case *expr.Select:
		w.walk(node.Select)
		for _, c := range node.Cases {
			w.walk(c)
		}

	case *expr.SelectCase:
		w.walk(node.Keyset)
		w.walk(node.State)

	case *expr.TypeName:
		w.walk(node.Type)

	case *expr.Default:

	case *expr.This:

	case *tipe.Name:

	case *tipe.Param:

	default:
		panic(fmt.Sprintf("syntax.Walk: unknown node (type %T)", node))
	}

	if w.postFn != nil {
		w.postFn(node)
	}
}
