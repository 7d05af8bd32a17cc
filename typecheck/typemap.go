// Copyright 2018 The P4c Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package typecheck

import (
	"fmt"

	"github.com/sharadc/p4c/format"
	"github.com/sharadc/p4c/syntax"
	"github.com/sharadc/p4c/syntax/expr"
	"github.com/sharadc/p4c/syntax/tipe"
)

// TypeMap is the registry produced by type inference: it maps node
// identity to inferred type, carries the left-value and
// compile-time-constant bits per expression, interns canonical
// types, and accumulates the type-variable substitutions of a run.
//
// Keys are AST nodes or type nodes; both are compared by identity.
type TypeMap struct {
	types     map[interface{}]tipe.Type
	leftValue map[expr.Expr]bool
	constant  map[expr.Expr]bool
	canonical map[string]tipe.Type
	subst     *Substitution
	root      syntax.Node
}

func NewTypeMap() *TypeMap {
	return &TypeMap{
		types:     make(map[interface{}]tipe.Type),
		leftValue: make(map[expr.Expr]bool),
		constant:  make(map[expr.Expr]bool),
		canonical: make(map[string]tipe.Type),
		subst:     NewSubstitution(),
	}
}

// Type returns the type recorded for the node, or nil.
func (tm *TypeMap) Type(n interface{}) tipe.Type {
	return tm.types[n]
}

// Contains reports whether the node already has a recorded type.
func (tm *TypeMap) Contains(n interface{}) bool {
	_, ok := tm.types[n]
	return ok
}

// SetType records the node's type. Recording two non-equivalent
// types for one node is a checker bug.
func (tm *TypeMap) SetType(n interface{}, t tipe.Type) {
	if t == nil {
		panic(fmt.Sprintf("typecheck: nil type for %v", n))
	}
	if old, ok := tm.types[n]; ok && old != t && !tipe.Equal(old, t) {
		panic(fmt.Sprintf("typecheck: node %v retyped from %s to %s",
			n, format.Type(old), format.Type(t)))
	}
	tm.types[n] = t
}

func (tm *TypeMap) IsLeftValue(e expr.Expr) bool { return tm.leftValue[e] }
func (tm *TypeMap) SetLeftValue(e expr.Expr)     { tm.leftValue[e] = true }

func (tm *TypeMap) IsCompileTimeConstant(e expr.Expr) bool { return tm.constant[e] }
func (tm *TypeMap) SetCompileTimeConstant(e expr.Expr)     { tm.constant[e] = true }

// Equivalent reports whether two types are structurally equivalent.
func Equivalent(a, b tipe.Type) bool {
	return tipe.Equal(a, b)
}

// Canonical interns the type: it returns the previously stored
// structurally equal type, or stores and returns the argument.
// Types still containing type variables are not interned.
func (tm *TypeMap) Canonical(t tipe.Type) tipe.Type {
	if hasTypeVar(t) {
		return t
	}
	key := format.Type(t)
	if c, ok := tm.canonical[key]; ok {
		return c
	}
	tm.canonical[key] = t
	return t
}

func hasTypeVar(t tipe.Type) bool {
	switch t := t.(type) {
	case *tipe.InfInt, *tipe.Var:
		return true
	case *tipe.Set:
		return hasTypeVar(t.Elem)
	case *tipe.Stack:
		return hasTypeVar(t.Elem)
	case *tipe.Tuple:
		for _, e := range t.Elems {
			if hasTypeVar(e) {
				return true
			}
		}
	}
	return false
}

// AddSubstitutions merges a solved substitution into the registry's
// running substitution.
func (tm *TypeMap) AddSubstitutions(tvs *Substitution) {
	if tvs == nil {
		return
	}
	tm.subst.Merge(tvs)
}

// Substitutions returns the substitutions accumulated by the run.
func (tm *TypeMap) Substitutions() *Substitution {
	return tm.subst
}

// UpdateMap garbage-collects entries whose nodes no longer appear
// under root. Entries keyed by bare type nodes are kept; they back
// the canonical-type cache.
func (tm *TypeMap) UpdateMap(root syntax.Node) {
	live := make(map[interface{}]bool)
	syntax.Walk(root, nil, func(n syntax.Node) bool {
		live[n] = true
		return true
	})
	for k := range tm.types {
		switch k.(type) {
		case *tipe.Name, *tipe.Param:
			// type nodes referenced from declared types; they are
			// not walked but stay live with their declarations
			continue
		}
		if _, isNode := k.(syntax.Node); isNode && !live[k] {
			delete(tm.types, k)
		}
	}
	for k := range tm.leftValue {
		if !live[k] {
			delete(tm.leftValue, k)
		}
	}
	for k := range tm.constant {
		if !live[k] {
			delete(tm.constant, k)
		}
	}
	tm.root = root
}

// CheckMap reports whether the map was last computed for root.
func (tm *TypeMap) CheckMap(root syntax.Node) bool {
	return tm.root == root
}
