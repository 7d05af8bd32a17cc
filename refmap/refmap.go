// Copyright 2018 The P4c Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package refmap holds the reference map produced by name resolution:
// for every name-use node, the declaration node it refers to.
//
// The map is populated by a resolution pass before type inference
// runs; the type checker only consumes it.
package refmap

import (
	"fmt"

	"github.com/sharadc/p4c/syntax"
)

// Map associates name-use nodes with their declarations. Keys are
// node identities, not names: two distinct path expressions spelling
// the same name each have their own entry.
type Map struct {
	decls map[syntax.Node]syntax.Node
	used  map[string]bool
	root  syntax.Node
	names int
}

func New() *Map {
	return &Map{
		decls: make(map[syntax.Node]syntax.Node),
		used:  make(map[string]bool),
	}
}

// SetDeclaration records that the use node refers to decl.
func (m *Map) SetDeclaration(use, decl syntax.Node) {
	m.decls[use] = decl
}

// Declaration returns the declaration the use node refers to. If
// required is set a missing entry is a fatal resolution bug.
func (m *Map) Declaration(use syntax.Node, required bool) syntax.Node {
	d := m.decls[use]
	if d == nil && required {
		panic(fmt.Sprintf("refmap: no declaration for %v at %s", use, use.Pos()))
	}
	return d
}

// UsedName marks a declared name as taken, so NewName will not
// produce it.
func (m *Map) UsedName(name string) {
	m.used[name] = true
}

// NewName returns a name with the given prefix that does not collide
// with any declared or previously generated name.
func (m *Map) NewName(prefix string) string {
	for {
		name := fmt.Sprintf("%s_%d", prefix, m.names)
		m.names++
		if !m.used[name] {
			m.used[name] = true
			return name
		}
	}
}

// SetRoot records the tree the map was computed for.
func (m *Map) SetRoot(root syntax.Node) {
	m.root = root
}

// ValidateMap checks that the map was computed for root. Inference
// over a tree the resolver has not seen is a pipeline bug.
func (m *Map) ValidateMap(root syntax.Node) {
	if m.root != nil && m.root != root {
		panic("refmap: reference map is stale; resolution must run before inference")
	}
}
