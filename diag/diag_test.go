// Copyright 2018 The P4c Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package diag

import (
	"strings"
	"testing"

	"github.com/sharadc/p4c/syntax/src"
)

func TestSink(t *testing.T) {
	s := NewSink()
	s.Errorf(src.Pos{Filename: "a.p4", Line: 3}, "bad %s", "cast")
	s.Warningf(src.Pos{Filename: "a.p4", Line: 4}, "shifting by %d", 9)

	if s.ErrorCount != 1 || s.WarningCount != 1 {
		t.Fatalf("counts = %d errors, %d warnings", s.ErrorCount, s.WarningCount)
	}
	if s.ShouldProceed() {
		t.Errorf("ShouldProceed after an error")
	}
	got := s.Msgs[0].String()
	if !strings.Contains(got, "a.p4:3") || !strings.Contains(got, "error") ||
		!strings.Contains(got, "bad cast") {
		t.Errorf("message = %q", got)
	}
	if !strings.Contains(s.Msgs[1].String(), "warning") {
		t.Errorf("warning message = %q", s.Msgs[1].String())
	}
}
