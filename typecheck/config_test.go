// Copyright 2018 The P4c Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package typecheck

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sharadc/p4c/diag"
	"github.com/sharadc/p4c/format"
	"github.com/sharadc/p4c/refmap"
	"github.com/sharadc/p4c/syntax/stmt"
	"github.com/sharadc/p4c/syntax/tipe"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "check.toml")
	data := "read_only = true\nupdate_expressions = true\nquiet = true\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.ReadOnly || !cfg.UpdateExpressions || !cfg.Quiet {
		t.Fatalf("cfg = %+v", cfg)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("missing config file did not error")
	}
}

func TestTypeCheckingPipeline(t *testing.T) {
	rm := refmap.New()
	tm := NewTypeMap()
	sink := diag.NewSink()
	x := &stmt.Const{Name: "x", Type: tipe.BitsOf(8, false), Value: num(9)}
	prog := &stmt.Program{Decls: []stmt.Stmt{x}}
	rm.SetRoot(prog)

	tc := NewTypeChecking(rm, tm, sink, Config{UpdateExpressions: true, Quiet: true})
	out := tc.Run(prog)
	if !sink.ShouldProceed() {
		t.Fatalf("unexpected errors: %v", sink.Msgs)
	}
	nc := out.Decls[0].(*stmt.Const)
	if got := tm.Type(nc.Value); !tipe.Equal(got, tipe.BitsOf(8, false)) {
		t.Fatalf("initializer type = %s, want bit<8>", format.Type(got))
	}
}
