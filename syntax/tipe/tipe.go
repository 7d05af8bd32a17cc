// Copyright 2018 The P4c Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tipe defines data structures representing P4 types.
//
// Go took the usual spelling of type.
package tipe

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/sharadc/p4c/syntax/src"
)

type Type interface {
	tipe()
}

// Basic is a singleton base type.
type Basic string

const (
	Invalid   Basic = "invalid"
	Bool      Basic = "bool"
	String    Basic = "string"
	MatchKind Basic = "match_kind"
	Dontcare  Basic = "_"
	State     Basic = "state"
	Void      Basic = "void"
)

// Bits is a fixed-width bit string, signed or unsigned.
// Instances are interned; always construct them with BitsOf.
type Bits struct {
	Size   int
	Signed bool
}

var bitsCache = make(map[Bits]*Bits)

// BitsOf returns the canonical Bits type of the given width and sign.
func BitsOf(size int, signed bool) *Bits {
	key := Bits{Size: size, Signed: signed}
	if t, ok := bitsCache[key]; ok {
		return t
	}
	t := &Bits{Size: size, Signed: signed}
	bitsCache[key] = t
	return t
}

// Varbits is a variable-length bit string with a maximum width.
type Varbits struct {
	Size int
}

// InfInt is the type of an integer literal whose width is not yet
// known. Every constant gets its own instance; the unifier may bind
// it to a concrete Bits type, which is how literals are narrowed.
type InfInt struct {
	ID int
}

// Var is a type variable, substitutable by the unifier. A type
// parameter in a generic declaration is also represented by a Var;
// fresh Vars are allocated at every use site.
type Var struct {
	Name string
}

// TVar is implemented by the substitutable type variables.
type TVar interface {
	Type
	typeVar()
}

// Error is the program-wide error type, accumulating the error
// constants declared by all error declarations.
type Error struct {
	Members []string
}

func (t *Error) Contains(name string) bool {
	return slices.Contains(t.Members, name)
}

// Enum is a nominal enumeration type.
type Enum struct {
	Name    string
	Members []string
}

func (t *Enum) Contains(name string) bool {
	return slices.Contains(t.Members, name)
}

// ActionEnum enumerates the actions of one table; it is the type of
// table.apply(...).action_run and the only legal switch operand.
type ActionEnum struct {
	Table   interface{} // *stmt.Table, breaking the package import cycle
	Actions []string
}

func (t *ActionEnum) Contains(name string) bool {
	return slices.Contains(t.Actions, name)
}

// Set is the type of a pattern set, e.g. a select case keyset.
type Set struct {
	Elem Type
}

// Stack is a header array. Size is -1 when not known.
type Stack struct {
	Elem Type
	Size int
}

func (t *Stack) SizeKnown() bool { return t.Size >= 0 }

type Tuple struct {
	Elems []Type
}

// Field is a field of a Struct, Header or Union. It is not a P4 type.
type Field struct {
	Name string
	Type Type
}

type Struct struct {
	Name   string
	Fields []Field
}

type Header struct {
	Name   string
	Fields []Field
}

type Union struct {
	Name   string
	Fields []Field
}

// Direction of a parameter.
type Direction int

const (
	DirNone Direction = iota
	DirIn
	DirOut
	DirInOut
)

func (d Direction) String() string {
	switch d {
	case DirNone:
		return ""
	case DirIn:
		return "in"
	case DirOut:
		return "out"
	case DirInOut:
		return "inout"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Param is a run-time or constructor parameter. It is a declaration:
// path expressions can resolve to it through the reference map.
type Param struct {
	Position  src.Pos
	Name      string
	Direction Direction
	Type      Type
}

func (p *Param) Pos() src.Pos { return p.Position }

// Method is the type of a method or function. Return is nil for
// methods that do not return.
type Method struct {
	TypeParams []*Var
	Return     Type
	Params     []*Param
}

// Action is the type of an action: a method without a return type
// and without type parameters.
type Action struct {
	Params []*Param
}

// ExternMethod is one method of an extern object. A method whose
// name equals the extern's name is a constructor.
type ExternMethod struct {
	Name     string
	Type     *Method
	Abstract bool
}

type Extern struct {
	Name       string
	TypeParams []*Var
	Methods    []*ExternMethod
}

// LookupMethod finds the method with the given name and parameter
// count. It returns nil if there is no such method or if the
// (name, arity) pair is ambiguous.
func (t *Extern) LookupMethod(name string, arity int) *ExternMethod {
	var found *ExternMethod
	for _, m := range t.Methods {
		if m.Name == name && len(m.Type.Params) == arity {
			if found != nil {
				return nil
			}
			found = m
		}
	}
	return found
}

// Parser is a parser object type. CtorParams is nil for a parser
// interface type and non-nil for a declared parser implementation.
type Parser struct {
	Name        string
	TypeParams  []*Var
	ApplyParams []*Param
	CtorParams  []*Param
}

// Control is a control object type. CtorParams is nil for a control
// interface type and non-nil for a declared control implementation.
type Control struct {
	Name        string
	TypeParams  []*Var
	ApplyParams []*Param
	CtorParams  []*Param
}

type Package struct {
	Name       string
	TypeParams []*Var
	CtorParams []*Param
}

// Table is the anonymous type of one table declaration. Apply is the
// synthesized apply method, returning the table's apply-result
// struct.
type Table struct {
	Table interface{} // *stmt.Table, breaking the package import cycle
	Apply *Method
}

// Specialized is the surface form of a generic type applied to type
// arguments; the canonicalizer turns it into SpecializedCanonical.
type Specialized struct {
	Base Type
	Args []Type
}

// SpecializedCanonical keeps both the generic declaration and the
// fully substituted body of a specialization.
type SpecializedCanonical struct {
	Base        Type
	Args        []Type
	Substituted Type
}

// Name is a reference to a named type; it is resolved through the
// reference map, never through a direct pointer.
type Name struct {
	Position src.Pos
	Name     string
}

func (t *Name) Pos() src.Pos { return t.Position }

// TypeType is attached to nodes that denote a type rather than a
// value, e.g. a Name resolving to a struct declaration.
type TypeType struct {
	Type Type
}

var (
	_ = Type(Basic(""))
	_ = Type((*Bits)(nil))
	_ = Type((*Varbits)(nil))
	_ = Type((*InfInt)(nil))
	_ = Type((*Var)(nil))
	_ = Type((*Error)(nil))
	_ = Type((*Enum)(nil))
	_ = Type((*ActionEnum)(nil))
	_ = Type((*Set)(nil))
	_ = Type((*Stack)(nil))
	_ = Type((*Tuple)(nil))
	_ = Type((*Struct)(nil))
	_ = Type((*Header)(nil))
	_ = Type((*Union)(nil))
	_ = Type((*Method)(nil))
	_ = Type((*Action)(nil))
	_ = Type((*Extern)(nil))
	_ = Type((*Parser)(nil))
	_ = Type((*Control)(nil))
	_ = Type((*Package)(nil))
	_ = Type((*Table)(nil))
	_ = Type((*Specialized)(nil))
	_ = Type((*SpecializedCanonical)(nil))
	_ = Type((*Name)(nil))
	_ = Type((*TypeType)(nil))
	_ = Type((*MethodCall)(nil))
)

func (t Basic) tipe()                 {}
func (t *Bits) tipe()                 {}
func (t *Varbits) tipe()              {}
func (t *InfInt) tipe()               {}
func (t *Var) tipe()                  {}
func (t *Error) tipe()                {}
func (t *Enum) tipe()                 {}
func (t *ActionEnum) tipe()           {}
func (t *Set) tipe()                  {}
func (t *Stack) tipe()                {}
func (t *Tuple) tipe()                {}
func (t *Struct) tipe()               {}
func (t *Header) tipe()               {}
func (t *Union) tipe()                {}
func (t *Method) tipe()               {}
func (t *Action) tipe()               {}
func (t *Extern) tipe()               {}
func (t *Parser) tipe()               {}
func (t *Control) tipe()              {}
func (t *Package) tipe()              {}
func (t *Table) tipe()                {}
func (t *Specialized) tipe()          {}
func (t *SpecializedCanonical) tipe() {}
func (t *Name) tipe()                 {}
func (t *TypeType) tipe()             {}
func (t *MethodCall) tipe()           {}

func (t *InfInt) typeVar() {}
func (t *Var) typeVar()    {}

// ArgInfo describes one argument of a method call for unification:
// its type plus the expression properties the parameter directions
// are checked against.
type ArgInfo struct {
	IsLeftValue           bool
	IsCompileTimeConstant bool
	Type                  Type
}

// MethodCall is the synthetic type of a call site. It is unified
// against the (freshly cloned) type of the callee; Return is a fresh
// variable bound to the call's result type by the solver.
type MethodCall struct {
	TypeArgs []Type
	Return   *Var
	Args     []*ArgInfo
}

// Generic is implemented by types that may carry type parameters.
type Generic interface {
	Type
	TypeParameters() []*Var
}

func (t *Method) TypeParameters() []*Var  { return t.TypeParams }
func (t *Extern) TypeParameters() []*Var  { return t.TypeParams }
func (t *Parser) TypeParameters() []*Var  { return t.TypeParams }
func (t *Control) TypeParameters() []*Var { return t.TypeParams }
func (t *Package) TypeParameters() []*Var { return t.TypeParams }

// Container is implemented by the instantiable object types.
type Container interface {
	Type
	ConstructorMethod() *Method
}

func (t *Parser) ConstructorMethod() *Method {
	return &Method{Return: t, Params: t.CtorParams}
}

func (t *Control) ConstructorMethod() *Method {
	return &Method{Return: t, Params: t.CtorParams}
}

func (t *Package) ConstructorMethod() *Method {
	return &Method{Return: t, Params: t.CtorParams}
}

// Applicable is implemented by types whose values have an apply
// method.
type Applicable interface {
	Type
	ApplyMethod() *Method
}

func (t *Parser) ApplyMethod() *Method {
	return &Method{Return: Void, Params: t.ApplyParams}
}

func (t *Control) ApplyMethod() *Method {
	return &Method{Return: Void, Params: t.ApplyParams}
}

func (t *Table) ApplyMethod() *Method { return t.Apply }

// Equal reports whether two types are structurally equivalent.
// Nominal types compare by declared name (structs, headers and unions
// also compare their fields); type variables compare by identity, and
// any two InfInt types are equal.
func Equal(x, y Type) bool {
	eq := equaler{}
	return eq.equal(x, y)
}

type equaler struct{}

func (eq *equaler) equalParams(x, y []*Param) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i].Direction != y[i].Direction {
			return false
		}
		if !eq.equal(x[i].Type, y[i].Type) {
			return false
		}
	}
	return true
}

func (eq *equaler) equalFields(x, y []Field) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i].Name != y[i].Name {
			return false
		}
		if !eq.equal(x[i].Type, y[i].Type) {
			return false
		}
	}
	return true
}

func (eq *equaler) equal(x, y Type) bool {
	if x == y {
		return true
	}
	if x == nil || y == nil {
		return false
	}
	switch x := x.(type) {
	case Basic:
		y, ok := y.(Basic)
		if !ok {
			return false
		}
		return x == y
	case *Bits:
		y, ok := y.(*Bits)
		if !ok {
			return false
		}
		return x.Size == y.Size && x.Signed == y.Signed
	case *Varbits:
		y, ok := y.(*Varbits)
		if !ok {
			return false
		}
		return x.Size == y.Size
	case *InfInt:
		// all unknown-width integers are equivalent as types;
		// identity only matters for unifier bindings
		_, ok := y.(*InfInt)
		return ok
	case *Var:
		return false
	case *Error:
		_, ok := y.(*Error)
		// one error type per program
		return ok
	case *Enum:
		y, ok := y.(*Enum)
		if !ok {
			return false
		}
		return x.Name == y.Name
	case *ActionEnum:
		y, ok := y.(*ActionEnum)
		if !ok {
			return false
		}
		return x.Table == y.Table
	case *Set:
		y, ok := y.(*Set)
		if !ok {
			return false
		}
		return eq.equal(x.Elem, y.Elem)
	case *Stack:
		y, ok := y.(*Stack)
		if !ok {
			return false
		}
		if x.Size != y.Size {
			return false
		}
		return eq.equal(x.Elem, y.Elem)
	case *Tuple:
		y, ok := y.(*Tuple)
		if !ok {
			return false
		}
		if len(x.Elems) != len(y.Elems) {
			return false
		}
		for i := range x.Elems {
			if !eq.equal(x.Elems[i], y.Elems[i]) {
				return false
			}
		}
		return true
	case *Struct:
		y, ok := y.(*Struct)
		if !ok {
			return false
		}
		return x.Name == y.Name && eq.equalFields(x.Fields, y.Fields)
	case *Header:
		y, ok := y.(*Header)
		if !ok {
			return false
		}
		return x.Name == y.Name && eq.equalFields(x.Fields, y.Fields)
	case *Union:
		y, ok := y.(*Union)
		if !ok {
			return false
		}
		return x.Name == y.Name && eq.equalFields(x.Fields, y.Fields)
	case *Method:
		y, ok := y.(*Method)
		if !ok {
			return false
		}
		if len(x.TypeParams) != len(y.TypeParams) {
			return false
		}
		if (x.Return == nil) != (y.Return == nil) {
			return false
		}
		if x.Return != nil && !eq.equal(x.Return, y.Return) {
			return false
		}
		return eq.equalParams(x.Params, y.Params)
	case *Action:
		y, ok := y.(*Action)
		if !ok {
			return false
		}
		return eq.equalParams(x.Params, y.Params)
	case *Extern:
		y, ok := y.(*Extern)
		if !ok {
			return false
		}
		return x.Name == y.Name
	case *Parser:
		y, ok := y.(*Parser)
		if !ok {
			return false
		}
		return x.Name == y.Name && eq.equalParams(x.ApplyParams, y.ApplyParams)
	case *Control:
		y, ok := y.(*Control)
		if !ok {
			return false
		}
		return x.Name == y.Name && eq.equalParams(x.ApplyParams, y.ApplyParams)
	case *Package:
		y, ok := y.(*Package)
		if !ok {
			return false
		}
		return x.Name == y.Name && eq.equalParams(x.CtorParams, y.CtorParams)
	case *Table:
		y, ok := y.(*Table)
		if !ok {
			return false
		}
		return x.Table == y.Table
	case *Specialized:
		y, ok := y.(*Specialized)
		if !ok {
			return false
		}
		if !eq.equal(x.Base, y.Base) {
			return false
		}
		if len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if !eq.equal(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true
	case *SpecializedCanonical:
		y, ok := y.(*SpecializedCanonical)
		if !ok {
			return false
		}
		if !eq.equal(x.Base, y.Base) {
			return false
		}
		if len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if !eq.equal(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true
	case *Name:
		y, ok := y.(*Name)
		if !ok {
			return false
		}
		return x.Name == y.Name
	case *TypeType:
		y, ok := y.(*TypeType)
		if !ok {
			return false
		}
		return eq.equal(x.Type, y.Type)
	}
	panic(fmt.Sprintf("tipe.Equal TODO %T\n", x))
}

// IsBaseType reports whether t is one of the base types: a Basic
// singleton, a bit string, or an unknown-width integer.
func IsBaseType(t Type) bool {
	switch t.(type) {
	case Basic, *Bits, *Varbits, *InfInt:
		return true
	}
	return false
}
