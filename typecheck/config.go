// Copyright 2018 The P4c Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package typecheck

import (
	"fmt"

	"github.com/pelletier/go-toml"

	"github.com/sharadc/p4c/diag"
	"github.com/sharadc/p4c/refmap"
	"github.com/sharadc/p4c/syntax/stmt"
)

// Config governs the composition of the checking pipeline.
type Config struct {
	// ReadOnly asserts that inference does not rewrite the tree.
	ReadOnly bool `toml:"read_only"`
	// UpdateExpressions re-clones the typed expressions after
	// inference so the typed tree survives unrelated transforms.
	// The reference map must be re-resolved afterwards.
	UpdateExpressions bool `toml:"update_expressions"`
	// Quiet suppresses terminal rendering of diagnostics.
	Quiet bool `toml:"quiet"`
}

// LoadConfig reads a checker configuration from a TOML file.
func LoadConfig(path string) (Config, error) {
	tree, err := toml.LoadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("typecheck: loading config: %v", err)
	}
	var cfg Config
	if err := tree.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("typecheck: parsing config: %v", err)
	}
	return cfg, nil
}

// TypeChecking is the composed checking pass: inference over a
// resolved tree, optionally followed by the apply-types pass. The
// caller runs resolution before, and again after when
// UpdateExpressions is set.
type TypeChecking struct {
	refMap  *refmap.Map
	typeMap *TypeMap
	sink    *diag.Sink
	cfg     Config
}

func NewTypeChecking(refMap *refmap.Map, typeMap *TypeMap, sink *diag.Sink, cfg Config) *TypeChecking {
	sink.Quiet = cfg.Quiet
	return &TypeChecking{refMap: refMap, typeMap: typeMap, sink: sink, cfg: cfg}
}

// Run type checks the program. The sink's error count tells the
// caller whether to proceed with the result.
func (t *TypeChecking) Run(program *stmt.Program) *stmt.Program {
	infer := New(t.refMap, t.typeMap, t.sink, t.cfg.ReadOnly)
	out := infer.Check(program)
	if !t.sink.ShouldProceed() {
		return out
	}
	if t.cfg.UpdateExpressions {
		out = NewApplyTypesToExpressions(t.typeMap).Apply(out)
	}
	return out
}
