// Copyright 2018 The P4c Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package stmt defines data structures representing P4 declarations
// and statements.
package stmt

import (
	"github.com/sharadc/p4c/syntax/expr"
	"github.com/sharadc/p4c/syntax/src"
	"github.com/sharadc/p4c/syntax/tipe"
)

type Stmt interface {
	stmt()
	Pos() src.Pos // implements syntax.Node
}

// Program is the root of a P4 program.
type Program struct {
	Position src.Pos
	Decls    []Stmt
}

// Const declares a compile-time constant.
type Const struct {
	Position src.Pos
	Name     string
	Type     tipe.Type
	Value    expr.Expr
}

// Var declares a local variable.
type Var struct {
	Position src.Pos
	Name     string
	Type     tipe.Type
	Init     expr.Expr // may be nil
}

// Instance declares an object instance: an extern or a container
// (parser, control, package). Init supplies the implementations of
// abstract methods for externs and must be nil otherwise.
type Instance struct {
	Position src.Pos
	Name     string
	Type     tipe.Type
	Args     []expr.Expr
	Init     []*Function
}

// Function declares a function; its type is a method type.
type Function struct {
	Position src.Pos
	Name     string
	Type     *tipe.Method
	Body     *Block
}

// Action declares an action.
type Action struct {
	Position src.Pos
	Name     string
	Params   []*tipe.Param
	Body     *Block
}

// TypeDecl declares a named type: struct, header, union, enum,
// extern, parser type, control type or package.
type TypeDecl struct {
	Position src.Pos
	Name     string
	Type     tipe.Type
}

// Typedef introduces an alias for another type.
type Typedef struct {
	Position src.Pos
	Name     string
	Type     tipe.Type
}

// DeclID is a simple declared identifier, e.g. an error constant or
// a match kind.
type DeclID struct {
	Position src.Pos
	Name     string
}

// ErrorDecl declares error constants; all error declarations of a
// program share one error type.
type ErrorDecl struct {
	Position src.Pos
	Members  []*DeclID
}

// MatchKindDecl declares match kinds.
type MatchKindDecl struct {
	Position src.Pos
	Members  []*DeclID
}

// Parser is a parser implementation.
type Parser struct {
	Position   src.Pos
	Name       string
	Type       *tipe.Parser
	CtorParams []*tipe.Param
	Locals     []Stmt
	States     []*State
}

// State is one parser state.
type State struct {
	Position   src.Pos
	Name       string
	Components []Stmt
	Select     expr.Expr // select expression or path to next state; may be nil
}

// Control is a control implementation.
type Control struct {
	Position   src.Pos
	Name       string
	Type       *tipe.Control
	CtorParams []*tipe.Param
	Locals     []Stmt
	Body       *Block
}

// Table declares a match-action table.
type Table struct {
	Position src.Pos
	Name     string
	Props    []*Property
}

// ActionList returns the table's actions property, or nil.
func (t *Table) ActionList() *ActionList {
	for _, p := range t.Props {
		if p.Name == ActionsProperty {
			if al, ok := p.Value.(*ActionList); ok {
				return al
			}
		}
	}
	return nil
}

// Property is one table property.
type Property struct {
	Position src.Pos
	Name     string
	Value    PropertyValue
}

// Table property names with meaning to the type checker.
const (
	ActionsProperty       = "actions"
	KeyProperty           = "key"
	DefaultActionProperty = "default_action"
)

type PropertyValue interface {
	propertyValue()
	Pos() src.Pos
}

// ExpressionValue is a property holding a single expression.
type ExpressionValue struct {
	Position src.Pos
	Expr     expr.Expr
}

// ActionList is the value of the actions property.
type ActionList struct {
	Position src.Pos
	Elements []*ActionListElement
}

// Element returns the list entry whose action path has the given
// name, or nil.
func (al *ActionList) Element(name string) *ActionListElement {
	for _, e := range al.Elements {
		if e.Path().Name == name {
			return e
		}
	}
	return nil
}

// ActionListElement is one action in the actions property; Expr is a
// path expression or a method call on one.
type ActionListElement struct {
	Position src.Pos
	Expr     expr.Expr
}

// Path returns the path expression naming the element's action.
func (e *ActionListElement) Path() *expr.PathExpression {
	switch x := e.Expr.(type) {
	case *expr.PathExpression:
		return x
	case *expr.MethodCall:
		if p, ok := x.Method.(*expr.PathExpression); ok {
			return p
		}
	}
	return nil
}

// Key is the value of the key property.
type Key struct {
	Position src.Pos
	Elements []*KeyElement
}

// KeyElement pairs a key expression with a match kind.
type KeyElement struct {
	Position  src.Pos
	Expr      expr.Expr
	MatchType *expr.PathExpression
}

type Block struct {
	Position src.Pos
	Stmts    []Stmt
}

type If struct {
	Position src.Pos
	Cond     expr.Expr
	Body     *Block
	Else     Stmt // *Block or *If; may be nil
}

type Switch struct {
	Position src.Pos
	Expr     expr.Expr
	Cases    []*SwitchCase
}

// SwitchCase is one label of a switch; Label is a path expression or
// a Default expression.
type SwitchCase struct {
	Position src.Pos
	Label    expr.Expr
	Body     *Block // may be nil for fallthrough labels
}

type Return struct {
	Position src.Pos
	Expr     expr.Expr // may be nil
}

type Assign struct {
	Position src.Pos
	Left     expr.Expr
	Right    expr.Expr
}

// CallStmt is a method call in statement position.
type CallStmt struct {
	Position src.Pos
	Call     *expr.MethodCall
}

func (s *Program) stmt()       {}
func (s *Const) stmt()         {}
func (s *Var) stmt()           {}
func (s *Instance) stmt()      {}
func (s *Function) stmt()      {}
func (s *Action) stmt()        {}
func (s *TypeDecl) stmt()      {}
func (s *Typedef) stmt()       {}
func (s *DeclID) stmt()        {}
func (s *ErrorDecl) stmt()     {}
func (s *MatchKindDecl) stmt() {}
func (s *Parser) stmt()        {}
func (s *State) stmt()         {}
func (s *Control) stmt()       {}
func (s *Table) stmt()         {}
func (s *Block) stmt()         {}
func (s *If) stmt()            {}
func (s *Switch) stmt()        {}
func (s *Return) stmt()        {}
func (s *Assign) stmt()        {}
func (s *CallStmt) stmt()      {}

func (v *ExpressionValue) propertyValue() {}
func (v *ActionList) propertyValue()      {}
func (v *Key) propertyValue()             {}

func (s *Program) Pos() src.Pos           { return s.Position }
func (s *Const) Pos() src.Pos             { return s.Position }
func (s *Var) Pos() src.Pos               { return s.Position }
func (s *Instance) Pos() src.Pos          { return s.Position }
func (s *Function) Pos() src.Pos          { return s.Position }
func (s *Action) Pos() src.Pos            { return s.Position }
func (s *TypeDecl) Pos() src.Pos          { return s.Position }
func (s *Typedef) Pos() src.Pos           { return s.Position }
func (s *DeclID) Pos() src.Pos            { return s.Position }
func (s *ErrorDecl) Pos() src.Pos         { return s.Position }
func (s *MatchKindDecl) Pos() src.Pos     { return s.Position }
func (s *Parser) Pos() src.Pos            { return s.Position }
func (s *State) Pos() src.Pos             { return s.Position }
func (s *Control) Pos() src.Pos           { return s.Position }
func (s *Table) Pos() src.Pos             { return s.Position }
func (s *Property) Pos() src.Pos          { return s.Position }
func (s *ExpressionValue) Pos() src.Pos   { return s.Position }
func (s *ActionList) Pos() src.Pos        { return s.Position }
func (s *ActionListElement) Pos() src.Pos { return s.Position }
func (s *Key) Pos() src.Pos               { return s.Position }
func (s *KeyElement) Pos() src.Pos        { return s.Position }
func (s *Block) Pos() src.Pos             { return s.Position }
func (s *If) Pos() src.Pos                { return s.Position }
func (s *Switch) Pos() src.Pos            { return s.Position }
func (s *SwitchCase) Pos() src.Pos        { return s.Position }
func (s *Return) Pos() src.Pos            { return s.Position }
func (s *Assign) Pos() src.Pos            { return s.Position }
func (s *CallStmt) Pos() src.Pos          { return s.Position }
