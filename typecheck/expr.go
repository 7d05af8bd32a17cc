// Copyright 2018 The P4c Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package typecheck

import (
	"fmt"

	"github.com/sharadc/p4c/format"
	"github.com/sharadc/p4c/syntax/expr"
	"github.com/sharadc/p4c/syntax/stmt"
	"github.com/sharadc/p4c/syntax/tipe"
	"github.com/sharadc/p4c/syntax/token"
)

// expression assigns a type to e and returns the possibly rewritten
// expression. Children are processed first; an expression that is
// already typed is returned unchanged.
func (c *Checker) expression(e expr.Expr) expr.Expr {
	if e == nil {
		return nil
	}
	if c.done(e) {
		return e
	}
	switch e := e.(type) {
	case *expr.Bad:
		return e

	case *expr.Constant:
		if e.Type == nil {
			e = &expr.Constant{Position: e.Position, Type: c.freshInfInt(), Value: e.Value, Base: e.Base}
		}
		t := c.typeNode(e.Type)
		if t == nil {
			return e
		}
		c.setType(e, t)
		c.typeMap.SetCompileTimeConstant(e)
		return e

	case *expr.BoolLiteral:
		c.setType(e, tipe.Bool)
		c.typeMap.SetCompileTimeConstant(e)
		return e

	case *expr.StringLiteral:
		c.setType(e, tipe.String)
		return e

	case *expr.PathExpression:
		return c.pathExpression(e)

	case *expr.Member:
		recv := c.expression(e.Expr)
		if recv != e.Expr {
			e = &expr.Member{Position: e.Position, Expr: recv, Name: e.Name}
		}
		return c.member(e)

	case *expr.Binary:
		left := c.expression(e.Left)
		right := c.expression(e.Right)
		if left != e.Left || right != e.Right {
			e = &expr.Binary{Position: e.Position, Op: e.Op, Left: left, Right: right}
		}
		switch e.Op {
		case token.Add, token.Sub, token.Mul:
			return c.binaryArith(e)
		case token.Div, token.Rem:
			return c.unsBinaryArith(e)
		case token.BitAnd, token.BitOr, token.BitXor:
			return c.bitwise(e)
		case token.Shl, token.Shr:
			return c.shift(e)
		case token.LogicalAnd, token.LogicalOr:
			return c.binaryBool(e)
		case token.Equal, token.NotEqual, token.Less, token.LessEqual,
			token.Greater, token.GreaterEqual:
			return c.relation(e)
		case token.Concat:
			return c.concat(e)
		case token.Range, token.Mask:
			return c.typeSet(e)
		default:
			panic(fmt.Sprintf("typecheck: bad binary op: %s", e.Op))
		}

	case *expr.Unary:
		sub := c.expression(e.Expr)
		if sub != e.Expr {
			e = &expr.Unary{Position: e.Position, Op: e.Op, Expr: sub}
		}
		return c.unary(e)

	case *expr.Cast:
		sub := c.expression(e.Expr)
		if sub != e.Expr {
			e = &expr.Cast{Position: e.Position, Type: e.Type, Expr: sub}
		}
		return c.cast(e)

	case *expr.Slice:
		sub := c.expression(e.Expr)
		high := c.expression(e.High)
		low := c.expression(e.Low)
		if sub != e.Expr || high != e.High || low != e.Low {
			e = &expr.Slice{Position: e.Position, Expr: sub, High: high, Low: low}
		}
		return c.slice(e)

	case *expr.Index:
		left := c.expression(e.Left)
		index := c.expression(e.Index)
		if left != e.Left || index != e.Index {
			e = &expr.Index{Position: e.Position, Left: left, Index: index}
		}
		return c.arrayIndex(e)

	case *expr.Mux:
		cond := c.expression(e.Cond)
		tru := c.expression(e.True)
		fls := c.expression(e.False)
		if cond != e.Cond || tru != e.True || fls != e.False {
			e = &expr.Mux{Position: e.Position, Cond: cond, True: tru, False: fls}
		}
		return c.mux(e)

	case *expr.List:
		elems := make([]expr.Expr, 0, len(e.Elems))
		changed := false
		for _, el := range e.Elems {
			ne := c.expression(el)
			changed = changed || ne != el
			elems = append(elems, ne)
		}
		if changed {
			e = &expr.List{Position: e.Position, Elems: elems}
		}
		constant := true
		components := make([]tipe.Type, 0, len(e.Elems))
		for _, el := range e.Elems {
			if !c.typeMap.IsCompileTimeConstant(el) {
				constant = false
			}
			t := c.getType(el)
			if t == nil {
				return e
			}
			components = append(components, t)
		}
		t := c.canonicalize(&tipe.Tuple{Elems: components})
		if t == nil {
			return e
		}
		c.setType(e, t)
		if constant {
			c.typeMap.SetCompileTimeConstant(e)
		}
		return e

	case *expr.MethodCall:
		return c.methodCall(e)

	case *expr.ConstructorCall:
		return c.constructorCall(e)

	case *expr.Select:
		return c.selectExpression(e)

	case *expr.TypeName:
		t := c.typeNode(e.Type)
		if t == nil {
			return e
		}
		tt := c.typeMap.Type(e.Type)
		c.setType(e, tt)
		c.typeMap.SetCompileTimeConstant(e)
		return e

	case *expr.Default:
		c.setType(e, tipe.Dontcare)
		c.typeMap.SetCompileTimeConstant(e)
		return e

	case *expr.This:
		if len(c.functions) == 0 || len(c.instances) == 0 {
			c.errorf(e.Pos(), "this can only be used in the definition of an abstract method")
			return e
		}
		inst := c.instances[len(c.instances)-1]
		t := c.getType(inst)
		if t == nil {
			return e
		}
		c.setType(e, t)
		return e

	default:
		panic(fmt.Sprintf("typecheck: unknown expr %T", e))
	}
}

func (c *Checker) pathExpression(e *expr.PathExpression) expr.Expr {
	decl := c.refMap.Declaration(e, true)
	var t tipe.Type

	switch decl := decl.(type) {
	case *stmt.State:
		t = tipe.State
	case *stmt.Var:
		c.typeMap.SetLeftValue(e)
	case *tipe.Param:
		if decl.Direction == tipe.DirInOut || decl.Direction == tipe.DirOut {
			c.typeMap.SetLeftValue(e)
		} else if decl.Direction == tipe.DirNone {
			c.typeMap.SetCompileTimeConstant(e)
		}
	case *stmt.Const, *stmt.Instance:
		c.typeMap.SetCompileTimeConstant(e)
	case *stmt.Function:
		dt := c.getType(decl)
		if dt == nil {
			return e
		}
		// each invocation uses fresh type variables
		if mt, ok := dt.(*tipe.Method); ok {
			t = c.cloneWithFreshTypeVariables(mt)
		} else {
			t = dt
		}
	}

	if t == nil {
		t = c.getType(decl)
		if t == nil {
			return e
		}
	}
	c.setType(e, t)
	return e
}

func (c *Checker) member(e *expr.Member) expr.Expr {
	t := c.getType(e.Expr)
	if t == nil {
		return e
	}
	if sc, ok := t.(*tipe.SpecializedCanonical); ok {
		t = sc.Substituted
	}

	switch t := t.(type) {
	case *tipe.Extern:
		if len(c.methodArguments) == 0 {
			// not within a call expression
			c.errorf(e.Pos(), "%s: methods can only be called", format.Expr(e))
			return e
		}
		argCount := c.methodArguments[len(c.methodArguments)-1]
		method := t.LookupMethod(e.Name, argCount)
		if method == nil {
			c.errorf(e.Pos(), "%s does not have a method named %s with %d arguments",
				t.Name, e.Name, argCount)
			return e
		}
		// each invocation uses fresh type variables
		mt := c.cloneWithFreshTypeVariables(method.Type)
		c.setType(e, mt)
		c.typeMap.SetCompileTimeConstant(e)
		return e

	case *tipe.Header:
		switch e.Name {
		case "isValid":
			mt := &tipe.Method{Return: tipe.Bool}
			c.setType(e, mt)
			return e
		case "setValid", "setInvalid":
			if !c.typeMap.IsLeftValue(e.Expr) {
				c.errorf(e.Pos(), "%s: must be applied to a left-value", format.Expr(e))
			}
			mt := &tipe.Method{Return: tipe.Void}
			c.setType(e, mt)
			return e
		}
		return c.fieldMember(e, t.Name, t.Fields)

	case *tipe.Struct:
		return c.fieldMember(e, t.Name, t.Fields)

	case *tipe.Union:
		return c.fieldMember(e, t.Name, t.Fields)

	case *tipe.Stack:
		return c.stackMember(e, t)

	case *tipe.TypeType:
		base := t.Type
		switch base := base.(type) {
		case *tipe.Error:
			if c.typeMap.IsCompileTimeConstant(e.Expr) {
				c.typeMap.SetCompileTimeConstant(e)
			}
			if !base.Contains(e.Name) {
				c.errorf(e.Pos(), "%s: invalid error tag", e.Name)
				c.setType(e, t)
				return e
			}
			c.setType(e, base)
			return e
		case *tipe.Enum:
			if c.typeMap.IsCompileTimeConstant(e.Expr) {
				c.typeMap.SetCompileTimeConstant(e)
			}
			if !base.Contains(e.Name) {
				c.errorf(e.Pos(), "%s: invalid enum tag", e.Name)
				c.setType(e, t)
				return e
			}
			c.setType(e, base)
			return e
		}
	}

	if app, ok := t.(tipe.Applicable); ok && e.Name == "apply" {
		mt := app.ApplyMethod()
		c.setType(e, mt)
		return e
	}

	c.errorf(e.Pos(), "cannot extract field %s from %s which has type %s",
		e.Name, format.Expr(e.Expr), format.Type(t))
	return e
}

func (c *Checker) fieldMember(e *expr.Member, name string, fields []tipe.Field) expr.Expr {
	var field *tipe.Field
	for i := range fields {
		if fields[i].Name == e.Name {
			field = &fields[i]
			break
		}
	}
	if field == nil {
		c.errorf(e.Pos(), "structure %s does not have a field %s", name, e.Name)
		return e
	}
	ft := c.typeNode(field.Type)
	if ft == nil {
		return e
	}
	c.setType(e, ft)
	if c.typeMap.IsLeftValue(e.Expr) {
		c.typeMap.SetLeftValue(e)
	}
	if c.typeMap.IsCompileTimeConstant(e.Expr) {
		c.typeMap.SetCompileTimeConstant(e)
	}
	return e
}

func (c *Checker) stackMember(e *expr.Member, t *tipe.Stack) expr.Expr {
	switch e.Name {
	case "next", "last":
		if c.controls > 0 {
			c.errorf(e.Pos(), "last and next for stacks cannot be used in a control")
		}
		c.setType(e, t.Elem)
		if c.typeMap.IsLeftValue(e.Expr) && e.Name == "next" {
			c.typeMap.SetLeftValue(e)
		}
		return e
	case "size":
		c.setType(e, tipe.BitsOf(32, false))
		return e
	case "lastIndex":
		c.setType(e, tipe.BitsOf(32, true))
		return e
	case "push_front", "pop_front":
		if c.parsers > 0 {
			c.errorf(e.Pos(), "push_front and pop_front for stacks cannot be used in a parser")
		}
		if !c.typeMap.IsLeftValue(e.Expr) {
			c.errorf(e.Pos(), "%s: must be applied to a left-value", format.Expr(e))
		}
		count := &tipe.Param{Name: "count", Direction: tipe.DirIn, Type: c.freshInfInt()}
		c.setType(count, count.Type)
		mt := &tipe.Method{Return: tipe.Void, Params: []*tipe.Param{count}}
		c.setType(e, mt)
		return e
	}
	c.errorf(e.Pos(), "cannot extract field %s from %s which has type %s",
		e.Name, format.Expr(e.Expr), format.Type(t))
	return e
}

// narrowConstant replaces an unknown-width constant with one of a
// concrete type. The operand must be a literal; compound expressions
// of unknown width have been folded before inference.
func (c *Checker) narrowConstant(e expr.Expr, t tipe.Type) *expr.Constant {
	cst, ok := e.(*expr.Constant)
	if !ok {
		panic(fmt.Sprintf("typecheck: expected a constant, got %s", format.Expr(e)))
	}
	n := &expr.Constant{Position: cst.Position, Type: t, Value: cst.Value, Base: cst.Base}
	c.setType(n, t)
	c.typeMap.SetCompileTimeConstant(n)
	return n
}

func (c *Checker) propagateConstant(e *expr.Binary) {
	if c.typeMap.IsCompileTimeConstant(e.Left) && c.typeMap.IsCompileTimeConstant(e.Right) {
		c.typeMap.SetCompileTimeConstant(e)
	}
}

func (c *Checker) binaryArith(e *expr.Binary) expr.Expr {
	ltype := c.getType(e.Left)
	rtype := c.getType(e.Right)
	if ltype == nil || rtype == nil {
		return e
	}

	bl, lbits := ltype.(*tipe.Bits)
	br, rbits := rtype.(*tipe.Bits)
	_, linf := ltype.(*tipe.InfInt)
	_, rinf := rtype.(*tipe.InfInt)
	if !lbits && !linf {
		c.errorf(e.Pos(), "%s cannot be applied to %s of type %s",
			e.Op, format.Expr(e.Left), format.Type(ltype))
		return e
	}
	if !rbits && !rinf {
		c.errorf(e.Pos(), "%s cannot be applied to %s of type %s",
			e.Op, format.Expr(e.Right), format.Type(rtype))
		return e
	}

	resultType := ltype
	switch {
	case lbits && rbits:
		if bl.Size != br.Size {
			c.errorf(e.Pos(), "cannot operate on values with different widths %d and %d",
				bl.Size, br.Size)
			return e
		}
		if bl.Signed != br.Signed {
			c.errorf(e.Pos(), "cannot operate on values with different signs")
			return e
		}
	case !lbits && rbits:
		e = &expr.Binary{Position: e.Position, Op: e.Op,
			Left: c.narrowConstant(e.Left, rtype), Right: e.Right}
		resultType = rtype
	case lbits && !rbits:
		e = &expr.Binary{Position: e.Position, Op: e.Op,
			Left: e.Left, Right: c.narrowConstant(e.Right, ltype)}
		resultType = ltype
	}
	c.setType(e, resultType)
	c.propagateConstant(e)
	return e
}

func (c *Checker) unsBinaryArith(e *expr.Binary) expr.Expr {
	ltype := c.getType(e.Left)
	rtype := c.getType(e.Right)
	if ltype == nil || rtype == nil {
		return e
	}
	if bl, ok := ltype.(*tipe.Bits); ok && bl.Signed {
		c.errorf(e.Pos(), "%s cannot operate on signed values", e.Op)
		return e
	}
	if br, ok := rtype.(*tipe.Bits); ok && br.Signed {
		c.errorf(e.Pos(), "%s cannot operate on signed values", e.Op)
		return e
	}
	if cst, ok := e.Left.(*expr.Constant); ok && cst.Value.Sign() < 0 {
		c.errorf(e.Pos(), "%s is not defined on negative numbers", e.Op)
		return e
	}
	if cst, ok := e.Right.(*expr.Constant); ok && cst.Value.Sign() < 0 {
		c.errorf(e.Pos(), "%s is not defined on negative numbers", e.Op)
		return e
	}
	return c.binaryArith(e)
}

func (c *Checker) bitwise(e *expr.Binary) expr.Expr {
	ltype := c.getType(e.Left)
	rtype := c.getType(e.Right)
	if ltype == nil || rtype == nil {
		return e
	}

	bl, lbits := ltype.(*tipe.Bits)
	br, rbits := rtype.(*tipe.Bits)
	_, linf := ltype.(*tipe.InfInt)
	_, rinf := rtype.(*tipe.InfInt)
	if !lbits && !linf {
		c.errorf(e.Pos(), "%s cannot be applied to %s of type %s",
			e.Op, format.Expr(e.Left), format.Type(ltype))
		return e
	}
	if !rbits && !rinf {
		c.errorf(e.Pos(), "%s cannot be applied to %s of type %s",
			e.Op, format.Expr(e.Right), format.Type(rtype))
		return e
	}

	resultType := ltype
	switch {
	case lbits && rbits:
		if !Equivalent(bl, br) {
			c.errorf(e.Pos(), "cannot operate on values with different types %s and %s",
				format.Type(bl), format.Type(br))
			return e
		}
	case !lbits && rbits:
		e = &expr.Binary{Position: e.Position, Op: e.Op,
			Left: c.narrowConstant(e.Left, rtype), Right: e.Right}
		resultType = rtype
	case lbits && !rbits:
		e = &expr.Binary{Position: e.Position, Op: e.Op,
			Left: e.Left, Right: c.narrowConstant(e.Right, ltype)}
		resultType = ltype
	}
	c.setType(e, resultType)
	c.propagateConstant(e)
	return e
}

func (c *Checker) shift(e *expr.Binary) expr.Expr {
	ltype := c.getType(e.Left)
	rtype := c.getType(e.Right)
	if ltype == nil || rtype == nil {
		return e
	}

	lt, ok := ltype.(*tipe.Bits)
	if !ok {
		c.errorf(e.Pos(), "left operand of shift must be a bit type, not %s", format.Type(ltype))
		return e
	}
	if cst, ok := e.Right.(*expr.Constant); ok {
		if !cst.Value.IsInt64() {
			c.errorf(e.Pos(), "shift amount too large: %s", format.Expr(cst))
			return e
		}
		shift := cst.Value.Int64()
		if shift < 0 {
			c.errorf(e.Pos(), "negative shift amount %s", format.Expr(cst))
			return e
		}
		if shift >= int64(lt.Size) {
			c.warningf(e.Pos(), "shifting value with %d bits by %d", lt.Size, shift)
		}
	}
	if rt, ok := rtype.(*tipe.Bits); ok && rt.Signed {
		c.errorf(e.Right.Pos(), "shift amount must be an unsigned number")
		return e
	}

	c.setType(e, ltype)
	c.propagateConstant(e)
	return e
}

func (c *Checker) binaryBool(e *expr.Binary) expr.Expr {
	ltype := c.getType(e.Left)
	rtype := c.getType(e.Right)
	if ltype == nil || rtype == nil {
		return e
	}
	if ltype != tipe.Bool || rtype != tipe.Bool {
		c.errorf(e.Pos(), "%s is not defined on %s and %s",
			e.Op, format.Type(ltype), format.Type(rtype))
		return e
	}
	c.setType(e, tipe.Bool)
	c.propagateConstant(e)
	return e
}

func (c *Checker) relation(e *expr.Binary) expr.Expr {
	ltype := c.getType(e.Left)
	rtype := c.getType(e.Right)
	if ltype == nil || rtype == nil {
		return e
	}

	equTest := e.Op == token.Equal || e.Op == token.NotEqual

	if _, ok := ltype.(*tipe.InfInt); ok {
		if _, isBits := rtype.(*tipe.Bits); isBits {
			e = &expr.Binary{Position: e.Position, Op: e.Op,
				Left: c.narrowConstant(e.Left, rtype), Right: e.Right}
			ltype = rtype
		}
	} else if _, ok := rtype.(*tipe.InfInt); ok {
		if _, isBits := ltype.(*tipe.Bits); isBits {
			e = &expr.Binary{Position: e.Position, Op: e.Op,
				Left: e.Left, Right: c.narrowConstant(e.Right, ltype)}
			rtype = ltype
		}
	}

	if equTest {
		// The second branch is redundant under the first; both are
		// kept until a reference test disambiguates them.
		defined := false
		if Equivalent(ltype, rtype) && ltype != tipe.Void && !isVarbits(ltype) {
			defined = true
		} else if tipe.IsBaseType(ltype) && tipe.IsBaseType(rtype) && Equivalent(ltype, rtype) {
			defined = true
		}
		if !defined {
			c.errorf(e.Pos(), "%s is not defined on %s and %s",
				e.Op, format.Type(ltype), format.Type(rtype))
			return e
		}
	} else {
		_, lbits := ltype.(*tipe.Bits)
		_, rbits := rtype.(*tipe.Bits)
		if !lbits || !rbits || !Equivalent(ltype, rtype) {
			c.errorf(e.Pos(), "%s is not defined on %s and %s",
				e.Op, format.Type(ltype), format.Type(rtype))
			return e
		}
	}
	c.setType(e, tipe.Bool)
	c.propagateConstant(e)
	return e
}

func isVarbits(t tipe.Type) bool {
	_, ok := t.(*tipe.Varbits)
	return ok
}

func (c *Checker) concat(e *expr.Binary) expr.Expr {
	ltype := c.getType(e.Left)
	rtype := c.getType(e.Right)
	if ltype == nil || rtype == nil {
		return e
	}
	if _, ok := ltype.(*tipe.InfInt); ok {
		c.errorf(e.Left.Pos(), "please specify a width for the operand %s of a concatenation",
			format.Expr(e.Left))
		return e
	}
	if _, ok := rtype.(*tipe.InfInt); ok {
		c.errorf(e.Right.Pos(), "please specify a width for the operand %s of a concatenation",
			format.Expr(e.Right))
		return e
	}
	bl, lok := ltype.(*tipe.Bits)
	br, rok := rtype.(*tipe.Bits)
	if !lok || !rok {
		c.errorf(e.Pos(), "concatenation is not defined on %s and %s",
			format.Type(ltype), format.Type(rtype))
		return e
	}
	resultType := c.canonicalize(tipe.BitsOf(bl.Size+br.Size, bl.Signed))
	if resultType == nil {
		return e
	}
	c.setType(e, resultType)
	c.propagateConstant(e)
	return e
}

// typeSet handles the set-forming operators .. and &&&.
func (c *Checker) typeSet(e *expr.Binary) expr.Expr {
	ltype := c.getType(e.Left)
	rtype := c.getType(e.Right)
	if ltype == nil || rtype == nil {
		return e
	}

	bl, lbits := ltype.(*tipe.Bits)
	br, rbits := rtype.(*tipe.Bits)
	_, linf := ltype.(*tipe.InfInt)
	_, rinf := rtype.(*tipe.InfInt)
	if !lbits && !linf {
		c.errorf(e.Pos(), "%s cannot be applied to %s of type %s",
			e.Op, format.Expr(e.Left), format.Type(ltype))
		return e
	}
	if !rbits && !rinf {
		c.errorf(e.Pos(), "%s cannot be applied to %s of type %s",
			e.Op, format.Expr(e.Right), format.Type(rtype))
		return e
	}

	sameType := ltype
	switch {
	case lbits && rbits:
		if !Equivalent(bl, br) {
			c.errorf(e.Pos(), "cannot operate on values with different types %s and %s",
				format.Type(bl), format.Type(br))
			return e
		}
	case !lbits && rbits:
		e = &expr.Binary{Position: e.Position, Op: e.Op,
			Left: c.narrowConstant(e.Left, rtype), Right: e.Right}
		sameType = rtype
	case lbits && !rbits:
		e = &expr.Binary{Position: e.Position, Op: e.Op,
			Left: e.Left, Right: c.narrowConstant(e.Right, ltype)}
		sameType = ltype
	default:
		// both unknown width: give both sides the same exact type,
		// so it is properly set after unification
		e = &expr.Binary{Position: e.Position, Op: e.Op,
			Left: e.Left, Right: c.narrowConstant(e.Right, sameType)}
	}

	c.setType(e, &tipe.Set{Elem: sameType})
	return e
}

func (c *Checker) unary(e *expr.Unary) expr.Expr {
	t := c.getType(e.Expr)
	if t == nil {
		return e
	}
	switch e.Op {
	case token.Not:
		if t != tipe.Bool {
			c.errorf(e.Pos(), "cannot apply %s to value %s of type %s",
				e.Op, format.Expr(e.Expr), format.Type(t))
			return e
		}
		c.setType(e, tipe.Bool)
	case token.Neg:
		switch t.(type) {
		case *tipe.InfInt, *tipe.Bits:
			c.setType(e, t)
		default:
			c.errorf(e.Pos(), "cannot apply %s to value %s of type %s",
				e.Op, format.Expr(e.Expr), format.Type(t))
			return e
		}
	case token.Complement:
		switch t.(type) {
		case *tipe.InfInt:
			c.errorf(e.Pos(), "%s cannot be applied to an operand with an unknown width", e.Op)
			return e
		case *tipe.Bits:
			c.setType(e, t)
		default:
			c.errorf(e.Pos(), "cannot apply %s to value %s of type %s",
				e.Op, format.Expr(e.Expr), format.Type(t))
			return e
		}
	default:
		panic(fmt.Sprintf("typecheck: bad unary op: %s", e.Op))
	}
	if c.typeMap.IsCompileTimeConstant(e.Expr) {
		c.typeMap.SetCompileTimeConstant(e)
	}
	return e
}

func (c *Checker) cast(e *expr.Cast) expr.Expr {
	sourceType := c.getType(e.Expr)
	castType := c.typeNode(e.Type)
	if sourceType == nil || castType == nil {
		return e
	}

	if !canCastBetween(castType, sourceType) {
		// the cast is not legal as written; a substitution may
		// still make the types meet
		rhs := c.assignment(e, castType, e.Expr)
		if rhs != e.Expr {
			e = &expr.Cast{Position: e.Position, Type: e.Type, Expr: rhs}
			sourceType = castType
		}
		if !canCastBetween(castType, sourceType) {
			c.errorf(e.Pos(), "illegal cast from %s to %s",
				format.Type(sourceType), format.Type(castType))
		}
	}
	c.setType(e, castType)
	if c.typeMap.IsCompileTimeConstant(e.Expr) {
		c.typeMap.SetCompileTimeConstant(e)
	}
	return e
}

func (c *Checker) slice(e *expr.Slice) expr.Expr {
	t := c.getType(e.Expr)
	if t == nil {
		return e
	}
	bst, ok := t.(*tipe.Bits)
	if !ok {
		c.errorf(e.Pos(), "bit extraction only defined for bit types")
		return e
	}
	msb, mok := e.High.(*expr.Constant)
	lsb, lok := e.Low.(*expr.Constant)
	if !mok || !lok {
		c.errorf(e.Pos(), "bit index values must be constants")
		return e
	}
	if !msb.Value.IsInt64() || !lsb.Value.IsInt64() {
		c.errorf(e.Pos(), "bit index too large")
		return e
	}
	m, l := msb.Value.Int64(), lsb.Value.Int64()
	if m < 0 || l < 0 {
		c.errorf(e.Pos(), "negative bit index")
		return e
	}
	if m >= int64(bst.Size) || l >= int64(bst.Size) {
		c.errorf(e.Pos(), "bit index %d greater than width %d", m, bst.Size)
		return e
	}
	if l > m {
		c.errorf(e.Pos(), "LSB index %d greater than MSB index %d", l, m)
		return e
	}
	result := c.canonicalize(tipe.BitsOf(int(m-l+1), bst.Signed))
	if result == nil {
		return e
	}
	c.setType(e, result)
	if c.typeMap.IsLeftValue(e.Expr) {
		c.typeMap.SetLeftValue(e)
	}
	if c.typeMap.IsCompileTimeConstant(e.Expr) {
		c.typeMap.SetCompileTimeConstant(e)
	}
	return e
}

func (c *Checker) arrayIndex(e *expr.Index) expr.Expr {
	ltype := c.getType(e.Left)
	rtype := c.getType(e.Index)
	if ltype == nil || rtype == nil {
		return e
	}

	hst, ok := ltype.(*tipe.Stack)
	if !ok {
		c.errorf(e.Pos(), "array indexing %s applied to non-array type %s",
			format.Expr(e), format.Type(ltype))
		return e
	}
	cst, isConstant := e.Index.(*expr.Constant)
	if _, isBits := rtype.(*tipe.Bits); !isBits && !isConstant {
		c.errorf(e.Index.Pos(), "array index %s must be an integer, but it has type %s",
			format.Expr(e.Index), format.Type(rtype))
		return e
	}

	if c.typeMap.IsLeftValue(e.Left) {
		c.typeMap.SetLeftValue(e)
	}

	if isConstant {
		if !cst.Value.IsInt64() {
			c.errorf(e.Index.Pos(), "index too large: %s", format.Expr(cst))
			return e
		}
		index := cst.Value.Int64()
		if index < 0 {
			c.errorf(e.Index.Pos(), "negative array index %s", format.Expr(cst))
			return e
		}
		if hst.SizeKnown() && index >= int64(hst.Size) {
			c.errorf(e.Index.Pos(), "array index %d larger or equal to array size %d",
				index, hst.Size)
			return e
		}
	}
	c.setType(e, hst.Elem)
	return e
}

func (c *Checker) mux(e *expr.Mux) expr.Expr {
	firstType := c.getType(e.Cond)
	secondType := c.getType(e.True)
	thirdType := c.getType(e.False)
	if firstType == nil || secondType == nil || thirdType == nil {
		return e
	}

	if firstType != tipe.Bool {
		c.errorf(e.Cond.Pos(), "selector of a conditional must be bool, not %s",
			format.Type(firstType))
		return e
	}
	_, sinf := secondType.(*tipe.InfInt)
	_, tinf := thirdType.(*tipe.InfInt)
	if sinf && tinf {
		c.errorf(e.Pos(), "width must be specified for at least one of %s or %s",
			format.Expr(e.True), format.Expr(e.False))
		return e
	}
	tvs := c.unify(e.Pos(), secondType, thirdType, true)
	if tvs == nil {
		return e
	}
	if !tvs.IsIdentity() {
		cts := &constantTypeSubstitution{subst: tvs, typeMap: c.typeMap}
		tru := cts.convert(e.True)
		fls := cts.convert(e.False)
		e = &expr.Mux{Position: e.Position, Cond: e.Cond, True: tru, False: fls}
		secondType = c.typeMap.Type(tru)
	}
	c.setType(e, secondType)
	if c.typeMap.IsCompileTimeConstant(e.Cond) &&
		c.typeMap.IsCompileTimeConstant(e.True) &&
		c.typeMap.IsCompileTimeConstant(e.False) {
		c.typeMap.SetCompileTimeConstant(e)
	}
	return e
}

func (c *Checker) selectExpression(e *expr.Select) expr.Expr {
	sel := c.expression(e.Select).(*expr.List)
	if sel != e.Select {
		e = &expr.Select{Position: e.Position, Select: sel, Cases: e.Cases}
	}
	selectType := c.getType(sel)
	if selectType == nil {
		return e
	}
	tuple, ok := selectType.(*tipe.Tuple)
	if !ok {
		panic(fmt.Sprintf("typecheck: expected a tuple type for the select expression, got %s",
			format.Type(selectType)))
	}
	for _, ct := range tuple.Elems {
		if _, ok := ct.(tipe.TVar); ok {
			c.errorf(e.Pos(), "cannot infer type for %s", format.Type(ct))
			return e
		}
	}

	changes := false
	cases := make([]*expr.SelectCase, 0, len(e.Cases))
	for _, sc := range e.Cases {
		keyset := c.expression(sc.Keyset)
		state := c.expression(sc.State)
		if st := c.typeMap.Type(state); st != nil && st != tipe.State {
			c.errorf(sc.State.Pos(), "%s must be a state", sc.State.Name)
		}
		nc := sc
		if keyset != sc.Keyset {
			nc = &expr.SelectCase{Position: sc.Position, Keyset: keyset, State: sc.State}
		}
		ktype := c.typeMap.Type(nc.Keyset)
		if ktype != nil {
			nc = c.matchCase(e, tuple, nc, ktype)
			if nc == nil {
				return e
			}
		}
		changes = changes || nc != sc
		cases = append(cases, nc)
	}
	if changes {
		e = &expr.Select{Position: e.Position, Select: e.Select, Cases: cases}
	}
	c.setType(e, tipe.State)
	return e
}

// matchCase unifies one select case's keyset type with the selector
// type, unwrapping sets and flattening singleton tuples as needed.
func (c *Checker) matchCase(sel *expr.Select, selectType *tipe.Tuple, sc *expr.SelectCase, caseType tipe.Type) *expr.SelectCase {
	if st, ok := caseType.(*tipe.Set); ok {
		caseType = st.Elem
	}
	if caseType == tipe.Dontcare {
		return sc
	}
	useSelType := tipe.Type(selectType)
	if _, ok := caseType.(*tipe.Tuple); !ok {
		if len(selectType.Elems) != 1 {
			c.errorf(sc.Pos(), "type mismatch %s vs %s",
				format.Type(selectType), format.Type(caseType))
			return nil
		}
		useSelType = selectType.Elems[0]
	}
	tvs := c.unify(sel.Pos(), useSelType, caseType, true)
	if tvs == nil {
		return nil
	}
	cts := &constantTypeSubstitution{subst: tvs, typeMap: c.typeMap}
	ks := cts.convert(sc.Keyset)
	if ks != sc.Keyset {
		sc = &expr.SelectCase{Position: sc.Position, Keyset: ks, State: sc.State}
	}
	return sc
}

func (c *Checker) methodCall(e *expr.MethodCall) expr.Expr {
	c.methodArguments = append(c.methodArguments, len(e.Args))
	method := c.expression(e.Method)
	args := make([]expr.Expr, 0, len(e.Args))
	changed := method != e.Method
	for _, a := range e.Args {
		na := c.expression(a)
		changed = changed || na != a
		args = append(args, na)
	}
	c.methodArguments = c.methodArguments[:len(c.methodArguments)-1]
	if changed {
		e = &expr.MethodCall{Position: e.Position, Method: method, TypeArgs: e.TypeArgs, Args: args}
	}

	methodType := c.typeMap.Type(e.Method)
	if methodType == nil {
		return e
	}

	// action invocations return actions with different signatures
	if _, ok := methodType.(*tipe.Action); ok {
		return c.actionCall(c.inActions, e)
	}

	mt, ok := methodType.(*tipe.Method)
	if !ok {
		c.errorf(e.Pos(), "%s is not a method", format.Expr(e.Method))
		return e
	}

	rettype := &tipe.Var{Name: c.refMap.NewName("R")}
	argInfos := make([]*tipe.ArgInfo, 0, len(e.Args))
	for _, arg := range e.Args {
		argType := c.getType(arg)
		if argType == nil {
			return e
		}
		argInfos = append(argInfos, &tipe.ArgInfo{
			IsLeftValue:           c.typeMap.IsLeftValue(arg),
			IsCompileTimeConstant: c.typeMap.IsCompileTimeConstant(arg),
			Type:                  argType,
		})
	}
	typeArgs := make([]tipe.Type, 0, len(e.TypeArgs))
	for _, ta := range e.TypeArgs {
		taType := c.typeNode(ta)
		if taType == nil {
			return e
		}
		typeArgs = append(typeArgs, taType)
	}
	callType := &tipe.MethodCall{TypeArgs: typeArgs, Return: rettype, Args: argInfos}

	cons := new(Constraints)
	cons.Add(mt, callType)
	tvs := cons.Solve(e.Pos(), c.sink, true)
	c.typeMap.AddSubstitutions(tvs)
	if tvs == nil {
		return e
	}

	// the return variable may be bound to another variable that a
	// later assignment resolves; only a completely unbound result
	// is an error
	returnType := tvs.Apply(rettype)
	if returnType == tipe.Type(rettype) {
		c.errorf(e.Pos(), "cannot infer return type of %s", format.Expr(e))
		return e
	}
	c.setType(e, returnType)
	cts := &constantTypeSubstitution{subst: tvs, typeMap: c.typeMap}
	result := cts.convert(e).(*expr.MethodCall)
	c.setType(result, returnType)

	if c.actions > 0 && c.isTableApply(result) {
		c.errorf(e.Pos(), "tables cannot be invoked from actions")
	}
	return result
}

func (c *Checker) isTableApply(e *expr.MethodCall) bool {
	m, ok := e.Method.(*expr.Member)
	if !ok || m.Name != "apply" {
		return false
	}
	recv := c.typeMap.Type(m.Expr)
	_, isTable := recv.(*tipe.Table)
	return isTable
}

func (c *Checker) constructorCall(e *expr.ConstructorCall) expr.Expr {
	args := make([]expr.Expr, 0, len(e.Args))
	changed := false
	for _, a := range e.Args {
		na := c.expression(a)
		changed = changed || na != a
		args = append(args, na)
	}
	if changed {
		e = &expr.ConstructorCall{Position: e.Position, Type: e.Type, Args: args}
	}

	t := c.typeNode(e.Type)
	if t == nil {
		return e
	}
	simpleType := t
	if sc, ok := t.(*tipe.SpecializedCanonical); ok {
		simpleType = sc.Substituted
	}

	switch st := simpleType.(type) {
	case *tipe.Extern:
		nargs := c.checkExternConstructor(e, st, e.Args)
		if nargs == nil {
			return e
		}
		if !sameExprs(nargs, e.Args) {
			e = &expr.ConstructorCall{Position: e.Position, Type: e.Type, Args: nargs}
		}
		c.setType(e, t)
	case tipe.Container:
		conttype := c.containerInstantiation(e, e.Args, st)
		if conttype == nil {
			return e
		}
		if sc, ok := t.(*tipe.SpecializedCanonical); ok {
			conttype = &tipe.SpecializedCanonical{Base: sc.Base, Args: sc.Args, Substituted: conttype}
		}
		c.setType(e, conttype)
	default:
		c.errorf(e.Pos(), "cannot invoke a constructor on type %s", format.Type(t))
		return e
	}

	c.typeMap.SetCompileTimeConstant(e)
	return e
}

func sameExprs(x, y []expr.Expr) bool {
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
