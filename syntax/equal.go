// Copyright 2018 The P4c Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

import (
	"github.com/sharadc/p4c/syntax/expr"
	"github.com/sharadc/p4c/syntax/stmt"
	"github.com/sharadc/p4c/syntax/tipe"
)

// EqualExpr reports whether two expressions are structurally equal.
func EqualExpr(x, y expr.Expr) bool {
	if x == nil && y == nil {
		return true
	}
	if x == nil || y == nil {
		return false
	}
	switch x := x.(type) {
	case *expr.Bad:
		y, ok := y.(*expr.Bad)
		if !ok {
			return false
		}
		return x.Error == y.Error
	case *expr.Constant:
		y, ok := y.(*expr.Constant)
		if !ok {
			return false
		}
		return x.Value.Cmp(y.Value) == 0 && tipe.Equal(x.Type, y.Type)
	case *expr.BoolLiteral:
		y, ok := y.(*expr.BoolLiteral)
		if !ok {
			return false
		}
		return x.Value == y.Value
	case *expr.StringLiteral:
		y, ok := y.(*expr.StringLiteral)
		if !ok {
			return false
		}
		return x.Value == y.Value
	case *expr.PathExpression:
		y, ok := y.(*expr.PathExpression)
		if !ok {
			return false
		}
		return x.Name == y.Name
	case *expr.Member:
		y, ok := y.(*expr.Member)
		if !ok {
			return false
		}
		return x.Name == y.Name && EqualExpr(x.Expr, y.Expr)
	case *expr.Binary:
		y, ok := y.(*expr.Binary)
		if !ok {
			return false
		}
		return x.Op == y.Op && EqualExpr(x.Left, y.Left) && EqualExpr(x.Right, y.Right)
	case *expr.Unary:
		y, ok := y.(*expr.Unary)
		if !ok {
			return false
		}
		return x.Op == y.Op && EqualExpr(x.Expr, y.Expr)
	case *expr.Cast:
		y, ok := y.(*expr.Cast)
		if !ok {
			return false
		}
		return tipe.Equal(x.Type, y.Type) && EqualExpr(x.Expr, y.Expr)
	case *expr.Slice:
		y, ok := y.(*expr.Slice)
		if !ok {
			return false
		}
		return EqualExpr(x.Expr, y.Expr) && EqualExpr(x.High, y.High) && EqualExpr(x.Low, y.Low)
	case *expr.Index:
		y, ok := y.(*expr.Index)
		if !ok {
			return false
		}
		return EqualExpr(x.Left, y.Left) && EqualExpr(x.Index, y.Index)
	case *expr.Mux:
		y, ok := y.(*expr.Mux)
		if !ok {
			return false
		}
		return EqualExpr(x.Cond, y.Cond) && EqualExpr(x.True, y.True) && EqualExpr(x.False, y.False)
	case *expr.List:
		y, ok := y.(*expr.List)
		if !ok {
			return false
		}
		return equalExprs(x.Elems, y.Elems)
	case *expr.MethodCall:
		y, ok := y.(*expr.MethodCall)
		if !ok {
			return false
		}
		if !EqualExpr(x.Method, y.Method) {
			return false
		}
		if len(x.TypeArgs) != len(y.TypeArgs) {
			return false
		}
		for i := range x.TypeArgs {
			if !tipe.Equal(x.TypeArgs[i], y.TypeArgs[i]) {
				return false
			}
		}
		return equalExprs(x.Args, y.Args)
	case *expr.ConstructorCall:
		y, ok := y.(*expr.ConstructorCall)
		if !ok {
			return false
		}
		return tipe.Equal(x.Type, y.Type) && equalExprs(x.Args, y.Args)
	case *expr.Select:
		y, ok := y.(*expr.Select)
		if !ok {
			return false
		}
		if !EqualExpr(x.Select, y.Select) {
			return false
		}
		if len(x.Cases) != len(y.Cases) {
			return false
		}
		for i := range x.Cases {
			if !EqualExpr(x.Cases[i].Keyset, y.Cases[i].Keyset) {
				return false
			}
			if !EqualExpr(x.Cases[i].State, y.Cases[i].State) {
				return false
			}
		}
		return true
	case *expr.TypeName:
		y, ok := y.(*expr.TypeName)
		if !ok {
			return false
		}
		return x.Type.Name == y.Type.Name
	case *expr.Default:
		_, ok := y.(*expr.Default)
		return ok
	case *expr.This:
		_, ok := y.(*expr.This)
		return ok
	}
	return false
}

func equalExprs(x, y []expr.Expr) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if !EqualExpr(x[i], y[i]) {
			return false
		}
	}
	return true
}

// EqualStmt reports whether two statements are structurally equal.
func EqualStmt(x, y stmt.Stmt) bool {
	if x == nil && y == nil {
		return true
	}
	if x == nil || y == nil {
		return false
	}
	switch x := x.(type) {
	case *stmt.Program:
		y, ok := y.(*stmt.Program)
		if !ok {
			return false
		}
		return equalStmts(x.Decls, y.Decls)
	case *stmt.Const:
		y, ok := y.(*stmt.Const)
		if !ok {
			return false
		}
		return x.Name == y.Name && tipe.Equal(x.Type, y.Type) && EqualExpr(x.Value, y.Value)
	case *stmt.Var:
		y, ok := y.(*stmt.Var)
		if !ok {
			return false
		}
		return x.Name == y.Name && tipe.Equal(x.Type, y.Type) && EqualExpr(x.Init, y.Init)
	case *stmt.Instance:
		y, ok := y.(*stmt.Instance)
		if !ok {
			return false
		}
		if x.Name != y.Name || !tipe.Equal(x.Type, y.Type) {
			return false
		}
		if !equalExprs(x.Args, y.Args) {
			return false
		}
		if len(x.Init) != len(y.Init) {
			return false
		}
		for i := range x.Init {
			if !EqualStmt(x.Init[i], y.Init[i]) {
				return false
			}
		}
		return true
	case *stmt.Function:
		y, ok := y.(*stmt.Function)
		if !ok {
			return false
		}
		return x.Name == y.Name && tipe.Equal(x.Type, y.Type) && EqualStmt(x.Body, y.Body)
	case *stmt.Action:
		y, ok := y.(*stmt.Action)
		if !ok {
			return false
		}
		if x.Name != y.Name || len(x.Params) != len(y.Params) {
			return false
		}
		for i := range x.Params {
			if x.Params[i].Name != y.Params[i].Name ||
				x.Params[i].Direction != y.Params[i].Direction ||
				!tipe.Equal(x.Params[i].Type, y.Params[i].Type) {
				return false
			}
		}
		return EqualStmt(x.Body, y.Body)
	case *stmt.TypeDecl:
		y, ok := y.(*stmt.TypeDecl)
		if !ok {
			return false
		}
		return x.Name == y.Name && tipe.Equal(x.Type, y.Type)
	case *stmt.Typedef:
		y, ok := y.(*stmt.Typedef)
		if !ok {
			return false
		}
		return x.Name == y.Name && tipe.Equal(x.Type, y.Type)
	case *stmt.DeclID:
		y, ok := y.(*stmt.DeclID)
		if !ok {
			return false
		}
		return x.Name == y.Name
	case *stmt.ErrorDecl:
		y, ok := y.(*stmt.ErrorDecl)
		if !ok {
			return false
		}
		return equalIDs(x.Members, y.Members)
	case *stmt.MatchKindDecl:
		y, ok := y.(*stmt.MatchKindDecl)
		if !ok {
			return false
		}
		return equalIDs(x.Members, y.Members)
	case *stmt.Parser:
		y, ok := y.(*stmt.Parser)
		if !ok {
			return false
		}
		if x.Name != y.Name || !tipe.Equal(x.Type, y.Type) {
			return false
		}
		if !equalParams(x.CtorParams, y.CtorParams) {
			return false
		}
		if !equalStmts(x.Locals, y.Locals) {
			return false
		}
		if len(x.States) != len(y.States) {
			return false
		}
		for i := range x.States {
			if !EqualStmt(x.States[i], y.States[i]) {
				return false
			}
		}
		return true
	case *stmt.State:
		y, ok := y.(*stmt.State)
		if !ok {
			return false
		}
		if x.Name != y.Name {
			return false
		}
		if !equalStmts(x.Components, y.Components) {
			return false
		}
		return EqualExpr(x.Select, y.Select)
	case *stmt.Control:
		y, ok := y.(*stmt.Control)
		if !ok {
			return false
		}
		if x.Name != y.Name || !tipe.Equal(x.Type, y.Type) {
			return false
		}
		if !equalParams(x.CtorParams, y.CtorParams) {
			return false
		}
		if !equalStmts(x.Locals, y.Locals) {
			return false
		}
		return EqualStmt(x.Body, y.Body)
	case *stmt.Table:
		y, ok := y.(*stmt.Table)
		if !ok {
			return false
		}
		if x.Name != y.Name || len(x.Props) != len(y.Props) {
			return false
		}
		for i := range x.Props {
			if !equalProperty(x.Props[i], y.Props[i]) {
				return false
			}
		}
		return true
	case *stmt.Block:
		y, ok := y.(*stmt.Block)
		if !ok {
			return false
		}
		return equalStmts(x.Stmts, y.Stmts)
	case *stmt.If:
		y, ok := y.(*stmt.If)
		if !ok {
			return false
		}
		return EqualExpr(x.Cond, y.Cond) && EqualStmt(x.Body, y.Body) && EqualStmt(x.Else, y.Else)
	case *stmt.Switch:
		y, ok := y.(*stmt.Switch)
		if !ok {
			return false
		}
		if !EqualExpr(x.Expr, y.Expr) {
			return false
		}
		if len(x.Cases) != len(y.Cases) {
			return false
		}
		for i := range x.Cases {
			if !EqualExpr(x.Cases[i].Label, y.Cases[i].Label) {
				return false
			}
			if !EqualStmt(x.Cases[i].Body, y.Cases[i].Body) {
				return false
			}
		}
		return true
	case *stmt.Return:
		y, ok := y.(*stmt.Return)
		if !ok {
			return false
		}
		return EqualExpr(x.Expr, y.Expr)
	case *stmt.Assign:
		y, ok := y.(*stmt.Assign)
		if !ok {
			return false
		}
		return EqualExpr(x.Left, y.Left) && EqualExpr(x.Right, y.Right)
	case *stmt.CallStmt:
		y, ok := y.(*stmt.CallStmt)
		if !ok {
			return false
		}
		return EqualExpr(x.Call, y.Call)
	}
	return false
}

func equalStmts(x, y []stmt.Stmt) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if !EqualStmt(x[i], y[i]) {
			return false
		}
	}
	return true
}

func equalParams(x, y []*tipe.Param) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i].Name != y[i].Name || x[i].Direction != y[i].Direction {
			return false
		}
		if !tipe.Equal(x[i].Type, y[i].Type) {
			return false
		}
	}
	return true
}

func equalIDs(x, y []*stmt.DeclID) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i].Name != y[i].Name {
			return false
		}
	}
	return true
}

func equalProperty(x, y *stmt.Property) bool {
	if x.Name != y.Name {
		return false
	}
	switch xv := x.Value.(type) {
	case *stmt.ExpressionValue:
		yv, ok := y.Value.(*stmt.ExpressionValue)
		if !ok {
			return false
		}
		return EqualExpr(xv.Expr, yv.Expr)
	case *stmt.ActionList:
		yv, ok := y.Value.(*stmt.ActionList)
		if !ok {
			return false
		}
		if len(xv.Elements) != len(yv.Elements) {
			return false
		}
		for i := range xv.Elements {
			if !EqualExpr(xv.Elements[i].Expr, yv.Elements[i].Expr) {
				return false
			}
		}
		return true
	case *stmt.Key:
		yv, ok := y.Value.(*stmt.Key)
		if !ok {
			return false
		}
		if len(xv.Elements) != len(yv.Elements) {
			return false
		}
		for i := range xv.Elements {
			if !EqualExpr(xv.Elements[i].Expr, yv.Elements[i].Expr) {
				return false
			}
			if !EqualExpr(xv.Elements[i].MatchType, yv.Elements[i].MatchType) {
				return false
			}
		}
		return true
	case nil:
		return y.Value == nil
	}
	return false
}
