// Copyright 2018 The P4c Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package expr defines data structures representing P4 expressions.
package expr

import (
	"math/big"

	"github.com/sharadc/p4c/syntax/src"
	"github.com/sharadc/p4c/syntax/tipe"
	"github.com/sharadc/p4c/syntax/token"
)

type Expr interface {
	expr()
	Pos() src.Pos // implements syntax.Node
}

type Bad struct {
	Position src.Pos
	Error    error
}

// Constant is an integer literal. Type is nil when the width is
// unspecified; inference replaces the node with a copy carrying a
// fresh *tipe.InfInt, and then with one carrying a concrete Bits type
// once the width is known.
type Constant struct {
	Position src.Pos
	Type     tipe.Type
	Value    *big.Int
	Base     int // base in which the literal was written
}

type BoolLiteral struct {
	Position src.Pos
	Value    bool
}

type StringLiteral struct {
	Position src.Pos
	Value    string
}

// PathExpression is a use of a declared name. The declaration it
// refers to is found through the reference map, keyed by node
// identity.
type PathExpression struct {
	Position src.Pos
	Name     string
}

// Member is a field, method, or built-in member access e.m.
type Member struct {
	Position src.Pos
	Expr     Expr
	Name     string
}

type Binary struct {
	Position src.Pos
	Op       token.Token
	Left     Expr
	Right    Expr
}

type Unary struct {
	Position src.Pos
	Op       token.Token // Not, Neg, Complement
	Expr     Expr
}

type Cast struct {
	Position src.Pos
	Type     tipe.Type
	Expr     Expr
}

// Slice is the bit extraction e[high:low].
type Slice struct {
	Position src.Pos
	Expr     Expr
	High     Expr
	Low      Expr
}

// Index is the header stack indexing s[i].
type Index struct {
	Position src.Pos
	Left     Expr
	Index    Expr
}

// Mux is the ternary cond ? t : f.
type Mux struct {
	Position src.Pos
	Cond     Expr
	True     Expr
	False    Expr
}

// List is the tuple expression { e1, ..., en }.
type List struct {
	Position src.Pos
	Elems    []Expr
}

type MethodCall struct {
	Position src.Pos
	Method   Expr
	TypeArgs []tipe.Type
	Args     []Expr
}

type ConstructorCall struct {
	Position src.Pos
	Type     tipe.Type
	Args     []Expr
}

// Select is a parser select expression.
type Select struct {
	Position src.Pos
	Select   *List
	Cases    []*SelectCase
}

// SelectCase is one keyset -> state arm of a select expression.
// It is a node but not an expression.
type SelectCase struct {
	Position src.Pos
	Keyset   Expr
	State    *PathExpression
}

func (s *SelectCase) Pos() src.Pos { return s.Position }

// TypeName is a type used in expression position, e.g. the
// error or enum prefix of a member selection.
type TypeName struct {
	Position src.Pos
	Type     *tipe.Name
}

// Default is the don't-care expression.
type Default struct {
	Position src.Pos
}

// This refers to the enclosing instance inside an abstract method
// implementation.
type This struct {
	Position src.Pos
}

func (e *Bad) expr()             {}
func (e *Constant) expr()        {}
func (e *BoolLiteral) expr()     {}
func (e *StringLiteral) expr()   {}
func (e *PathExpression) expr()  {}
func (e *Member) expr()          {}
func (e *Binary) expr()          {}
func (e *Unary) expr()           {}
func (e *Cast) expr()            {}
func (e *Slice) expr()           {}
func (e *Index) expr()           {}
func (e *Mux) expr()             {}
func (e *List) expr()            {}
func (e *MethodCall) expr()      {}
func (e *ConstructorCall) expr() {}
func (e *Select) expr()          {}
func (e *TypeName) expr()        {}
func (e *Default) expr()         {}
func (e *This) expr()            {}

func (e *Bad) Pos() src.Pos             { return e.Position }
func (e *Constant) Pos() src.Pos        { return e.Position }
func (e *BoolLiteral) Pos() src.Pos     { return e.Position }
func (e *StringLiteral) Pos() src.Pos   { return e.Position }
func (e *PathExpression) Pos() src.Pos  { return e.Position }
func (e *Member) Pos() src.Pos          { return e.Position }
func (e *Binary) Pos() src.Pos          { return e.Position }
func (e *Unary) Pos() src.Pos           { return e.Position }
func (e *Cast) Pos() src.Pos            { return e.Position }
func (e *Slice) Pos() src.Pos           { return e.Position }
func (e *Index) Pos() src.Pos           { return e.Position }
func (e *Mux) Pos() src.Pos             { return e.Position }
func (e *List) Pos() src.Pos            { return e.Position }
func (e *MethodCall) Pos() src.Pos      { return e.Position }
func (e *ConstructorCall) Pos() src.Pos { return e.Position }
func (e *Select) Pos() src.Pos          { return e.Position }
func (e *TypeName) Pos() src.Pos        { return e.Position }
func (e *Default) Pos() src.Pos         { return e.Position }
func (e *This) Pos() src.Pos            { return e.Position }
