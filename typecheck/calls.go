// Copyright 2018 The P4c Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package typecheck

import (
	"github.com/sharadc/p4c/format"
	"github.com/sharadc/p4c/syntax"
	"github.com/sharadc/p4c/syntax/expr"
	"github.com/sharadc/p4c/syntax/stmt"
	"github.com/sharadc/p4c/syntax/tipe"
)

func (c *Checker) instanceDecl(s *stmt.Instance) stmt.Stmt {
	if c.done(s) {
		return s
	}
	t := c.typeNode(s.Type)
	args := make([]expr.Expr, 0, len(s.Args))
	argsChanged := false
	for _, a := range s.Args {
		na := c.expression(a)
		argsChanged = argsChanged || na != a
		args = append(args, na)
	}
	if t == nil {
		return s
	}

	simpleType := t
	if sc, ok := t.(*tipe.SpecializedCanonical); ok {
		simpleType = sc.Substituted
	}

	switch st := simpleType.(type) {
	case *tipe.Extern:
		c.setType(s, t)
		// the initializer needs the declared type of the instance
		c.instances = append(c.instances, s)
		inits := make([]*stmt.Function, 0, len(s.Init))
		initsChanged := false
		for _, f := range s.Init {
			nf := c.statement(f).(*stmt.Function)
			initsChanged = initsChanged || nf != f
			inits = append(inits, nf)
		}
		c.instances = c.instances[:len(c.instances)-1]

		if !c.checkAbstractMethods(s, inits, st) {
			return s
		}
		nargs := c.checkExternConstructor(s, st, args)
		if nargs == nil {
			return s
		}
		if !sameExprs(nargs, s.Args) || initsChanged {
			ns := &stmt.Instance{Position: s.Position, Name: s.Name, Type: s.Type,
				Args: nargs, Init: inits}
			c.setType(ns, t)
			return ns
		}
		return s

	case tipe.Container:
		if len(s.Init) > 0 {
			c.errorf(s.Pos(), "initializers only allowed for extern instances")
			return s
		}
		it := c.containerInstantiation(s, args, st)
		if it == nil {
			return s
		}
		c.setType(s, it)
		if argsChanged {
			ns := &stmt.Instance{Position: s.Position, Name: s.Name, Type: s.Type, Args: args}
			c.setType(ns, it)
			return ns
		}
		return s

	default:
		c.errorf(s.Pos(), "cannot allocate objects of type %s", format.Type(t))
		return s
	}
}

// checkExternConstructor finds the extern's constructor by arity and
// checks the arguments against it. It returns new arguments, which
// may have inserted casts, or nil on error.
func (c *Checker) checkExternConstructor(n syntax.Node, ext *tipe.Extern, args []expr.Expr) []expr.Expr {
	if len(ext.TypeParams) > 0 {
		c.errorf(n.Pos(), "type parameters must be supplied for constructor of %s", ext.Name)
		return nil
	}
	constructor := ext.LookupMethod(ext.Name, len(args))
	if constructor == nil {
		c.errorf(n.Pos(), "type %s has no constructor with %d arguments", ext.Name, len(args))
		return nil
	}
	mt := c.cloneWithFreshTypeVariables(constructor.Type).(*tipe.Method)

	changes := false
	result := make([]expr.Expr, 0, len(args))
	for i, p := range mt.Params {
		arg := args[i]
		if !c.typeMap.IsCompileTimeConstant(arg) {
			c.errorf(arg.Pos(), "%s cannot evaluate to a compile-time constant", format.Expr(arg))
		}
		argType := c.getType(arg)
		if argType == nil {
			return nil
		}
		tvs := c.unify(n.Pos(), p.Type, argType, true)
		if tvs == nil {
			// error already reported
			return nil
		}
		if tvs.IsIdentity() {
			result = append(result, arg)
			continue
		}
		cts := &constantTypeSubstitution{subst: tvs, typeMap: c.typeMap}
		newArg := cts.convert(arg)
		result = append(result, newArg)
		changes = true
	}
	if changes {
		return result
	}
	return args
}

// checkAbstractMethods verifies that the instance initializer
// supplies exactly the extern's abstract methods, each with an
// identical non-generic type.
func (c *Checker) checkAbstractMethods(inst *stmt.Instance, inits []*stmt.Function, ext *tipe.Extern) bool {
	virt := make(map[string]*tipe.ExternMethod)
	for _, m := range ext.Methods {
		if m.Abstract {
			virt[m.Name] = m
		}
	}
	if len(virt) == 0 && len(inits) == 0 {
		return true
	}
	if len(virt) == 0 {
		c.errorf(inst.Pos(), "instance initializers for extern without abstract methods")
		return false
	}
	if len(inits) == 0 {
		c.errorf(inst.Pos(), "must declare abstract methods for %s", ext.Name)
		return false
	}

	for _, f := range inits {
		if len(f.Type.TypeParams) != 0 {
			c.errorf(f.Pos(), "%s: abstract method implementations cannot be generic", f.Name)
			return false
		}
		ftype := c.getType(f)
		if ftype == nil {
			return false
		}
		meth, ok := virt[f.Name]
		if !ok {
			c.errorf(f.Pos(), "%s: no matching abstract method in %s", f.Name, ext.Name)
			return false
		}
		delete(virt, f.Name)
		tvs := c.unify(inst.Pos(), meth.Type, ftype, true)
		if tvs == nil {
			return false
		}
		if !tvs.IsIdentity() {
			panic("typecheck: abstract method match expected no type variables")
		}
	}
	if len(virt) != 0 {
		for name := range virt {
			c.errorf(inst.Pos(), "%s: abstract method %s not implemented", inst.Name, name)
			return false
		}
	}
	return true
}

// containerInstantiation type checks the instantiation of a parser,
// control, or package and returns the constructed type.
func (c *Checker) containerInstantiation(n syntax.Node, args []expr.Expr, cont tipe.Container) tipe.Type {
	constructor := cont.ConstructorMethod()
	constructor = c.cloneWithFreshTypeVariables(constructor).(*tipe.Method)

	argInfos := make([]*tipe.ArgInfo, 0, len(args))
	for _, arg := range args {
		if !c.typeMap.IsCompileTimeConstant(arg) {
			c.errorf(arg.Pos(), "%s cannot evaluate to a compile-time constant", format.Expr(arg))
		}
		argType := c.getType(arg)
		if argType == nil {
			return nil
		}
		argInfos = append(argInfos, &tipe.ArgInfo{
			IsLeftValue:           true,
			IsCompileTimeConstant: true,
			Type:                  argType,
		})
	}
	rettype := &tipe.Var{Name: c.refMap.NewName("R")}
	callType := &tipe.MethodCall{TypeArgs: []tipe.Type{}, Return: rettype, Args: argInfos}

	cons := new(Constraints)
	cons.Add(constructor, callType)
	tvs := cons.Solve(n.Pos(), c.sink, true)
	c.typeMap.AddSubstitutions(tvs)
	if tvs == nil {
		return nil
	}
	returnType := tvs.Apply(rettype)
	if _, stillVar := returnType.(tipe.TVar); stillVar {
		panic("typecheck: cannot infer constructor result type")
	}
	return returnType
}

// actionCall checks an action invocation. Calling an action with
// fewer arguments than it declares produces a new action whose
// parameters are the unbound tail; inside a table's actions list the
// tail must be direction-less, elsewhere every parameter must be
// bound.
func (c *Checker) actionCall(inActionList bool, call *expr.MethodCall) expr.Expr {
	methodType := c.typeMap.Type(call.Method)
	baseType, ok := methodType.(*tipe.Action)
	if !ok {
		c.errorf(call.Pos(), "%s must be an action", format.Expr(call.Method))
		return call
	}
	if _, ok := call.Method.(*expr.PathExpression); !ok {
		panic("typecheck: unexpected action call target")
	}

	cons := new(Constraints)
	var params []*tipe.Param
	i := 0
	for _, p := range baseType.Params {
		if i >= len(call.Args) {
			params = append(params, p)
			if p.Direction != tipe.DirNone || !inActionList {
				c.errorf(call.Pos(), "parameter %s must be bound", p.Name)
			}
			continue
		}
		arg := call.Args[i]
		paramType := c.typeMap.Type(p)
		if paramType == nil {
			paramType = p.Type
		}
		argType := c.getType(arg)
		if argType == nil {
			return call
		}
		cons.Add(paramType, argType)
		switch p.Direction {
		case tipe.DirNone:
			if inActionList {
				c.errorf(arg.Pos(), "parameter %s cannot be bound: it is set by the control plane",
					p.Name)
			}
			// directionless action parameters are treated as in
			// parameters here; they need not be compile-time
			// constants
		case tipe.DirOut, tipe.DirInOut:
			if !c.typeMap.IsLeftValue(arg) {
				c.errorf(arg.Pos(), "%s must be a left-value", format.Expr(arg))
			}
		}
		i++
	}
	if i < len(call.Args) {
		c.errorf(call.Args[i].Pos(), "too many arguments for action")
	}
	resultType := &tipe.Action{Params: params}
	c.setType(call, resultType)

	tvs := cons.Solve(call.Pos(), c.sink, true)
	c.typeMap.AddSubstitutions(tvs)
	if tvs == nil {
		return call
	}
	cts := &constantTypeSubstitution{subst: tvs, typeMap: c.typeMap}
	converted := cts.convert(call).(*expr.MethodCall)
	c.setType(converted, resultType)
	return converted
}

func (c *Checker) tableDecl(s *stmt.Table) stmt.Stmt {
	if c.done(s) {
		return s
	}
	c.tables = append(c.tables, s)
	props := make([]*stmt.Property, 0, len(s.Props))
	changed := false
	for _, p := range s.Props {
		np := c.property(p)
		changed = changed || np != p
		props = append(props, np)
	}
	c.tables = c.tables[:len(c.tables)-1]

	result := s
	if changed {
		result = &stmt.Table{Position: s.Position, Name: s.Name, Props: props}
	}

	var actions []string
	if al := result.ActionList(); al != nil {
		for _, el := range al.Elements {
			if p := el.Path(); p != nil {
				actions = append(actions, p.Name)
			}
		}
	}
	applyResult := &tipe.Struct{
		Name: "apply_result",
		Fields: []tipe.Field{
			{Name: "hit", Type: tipe.Bool},
			{Name: "action_run", Type: &tipe.ActionEnum{Table: s, Actions: actions}},
		},
	}
	t := &tipe.Table{Table: s, Apply: &tipe.Method{Return: applyResult}}
	c.setType(s, t)
	c.setType(result, t)

	c.checkDefaultAction(result)
	return result
}

func (c *Checker) property(p *stmt.Property) *stmt.Property {
	switch v := p.Value.(type) {
	case *stmt.ActionList:
		wasInActions := c.inActions
		c.inActions = p.Name == stmt.ActionsProperty
		elements := make([]*stmt.ActionListElement, 0, len(v.Elements))
		changed := false
		for _, el := range v.Elements {
			ne := c.expression(el.Expr)
			nel := el
			if ne != el.Expr {
				nel = &stmt.ActionListElement{Position: el.Position, Expr: ne}
			}
			if t := c.typeMap.Type(ne); t != nil {
				c.setType(el, t)
				c.setType(nel, t)
			}
			changed = changed || nel != el
			elements = append(elements, nel)
		}
		c.inActions = wasInActions
		if !changed {
			return p
		}
		return &stmt.Property{Position: p.Position, Name: p.Name,
			Value: &stmt.ActionList{Position: v.Position, Elements: elements}}

	case *stmt.Key:
		elements := make([]*stmt.KeyElement, 0, len(v.Elements))
		changed := false
		for _, ke := range v.Elements {
			ne := c.expression(ke.Expr)
			ktype := c.typeMap.Type(ne)
			if ktype != nil {
				switch ktype.(type) {
				case *tipe.Bits, *tipe.Enum, *tipe.Error:
				default:
					if ktype != tipe.Bool {
						c.errorf(ke.Pos(), "key field type must be a scalar type; it cannot be %s",
							format.Type(ktype))
					}
				}
			}
			if ke.MatchType != nil {
				c.expression(ke.MatchType)
				if mt := c.typeMap.Type(ke.MatchType); mt != nil && mt != tipe.MatchKind {
					c.errorf(ke.MatchType.Pos(), "%s must be a match_kind value", ke.MatchType.Name)
				}
			}
			nke := ke
			if ne != ke.Expr {
				nke = &stmt.KeyElement{Position: ke.Position, Expr: ne, MatchType: ke.MatchType}
			}
			changed = changed || nke != ke
			elements = append(elements, nke)
		}
		if !changed {
			return p
		}
		return &stmt.Property{Position: p.Position, Name: p.Name,
			Value: &stmt.Key{Position: v.Position, Elements: elements}}

	case *stmt.ExpressionValue:
		ne := c.expression(v.Expr)
		if ne == v.Expr {
			return p
		}
		return &stmt.Property{Position: p.Position, Name: p.Name,
			Value: &stmt.ExpressionValue{Position: v.Position, Expr: ne}}
	}
	return p
}

// checkDefaultAction verifies that the default_action property names
// an action from the actions list, fully bound, with its data-plane
// arguments syntactically equal to the declaration in the list.
func (c *Checker) checkDefaultAction(table *stmt.Table) {
	var prop *stmt.Property
	for _, p := range table.Props {
		if p.Name == stmt.DefaultActionProperty {
			prop = p
			break
		}
	}
	if prop == nil {
		return
	}
	pv, ok := prop.Value.(*stmt.ExpressionValue)
	if !ok {
		c.errorf(prop.Pos(), "%s table property should be an action", prop.Name)
		return
	}
	t := c.typeMap.Type(pv.Expr)
	if t == nil {
		return
	}
	at, ok := t.(*tipe.Action)
	if !ok {
		c.errorf(prop.Pos(), "%s table property should be an action", prop.Name)
		return
	}
	if len(at.Params) != 0 {
		c.errorf(prop.Pos(), "action for %s has some unbound arguments", prop.Name)
	}

	al := table.ActionList()
	if al == nil {
		c.errorf(table.Pos(), "no action list, but %s property present", stmt.DefaultActionProperty)
		return
	}

	defaultCall, ok := pv.Expr.(*expr.MethodCall)
	if !ok {
		panic("typecheck: default_action is not a call")
	}
	pe, ok := defaultCall.Method.(*expr.PathExpression)
	if !ok {
		panic("typecheck: unexpected default_action target")
	}
	defdecl := c.refMap.Declaration(pe, true)
	elem := al.Element(pe.Name)
	if elem == nil {
		c.errorf(pv.Pos(), "%s not present in action list", pe.Name)
		return
	}
	entrydecl := c.refMap.Declaration(elem.Path(), true)
	if entrydecl != defdecl {
		c.errorf(pv.Pos(), "%s and the actions list entry refer to different actions", pe.Name)
		return
	}

	// the data-plane arguments must match the declaration in the
	// actions list
	var listArgs []expr.Expr
	if listCall, ok := elem.Expr.(*expr.MethodCall); ok {
		listArgs = listCall.Args
	}
	if len(listArgs) > len(defaultCall.Args) {
		c.errorf(pv.Pos(), "not enough arguments to %s", pe.Name)
		return
	}
	for i, aa := range listArgs {
		da := defaultCall.Args[i]
		if !syntax.EqualExpr(aa, da) {
			c.errorf(da.Pos(), "argument %s does not match declaration in actions list: %s",
				format.Expr(da), format.Expr(aa))
			return
		}
	}
}
