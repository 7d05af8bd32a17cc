// Copyright 2018 The P4c Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package diag collects and renders compiler diagnostics.
package diag

import (
	"fmt"

	"github.com/pterm/pterm"

	"github.com/sharadc/p4c/syntax/src"
)

var (
	errorStyle = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	errorFG    = pterm.FgRed
	warnStyle  = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	warnFG     = pterm.FgYellow
)

// Message is a single diagnostic.
type Message struct {
	Pos     src.Pos
	Text    string
	IsError bool
}

func (m Message) String() string {
	tag := "warning"
	if m.IsError {
		tag = "error"
	}
	return fmt.Sprintf("%s: %s: %s", m.Pos, tag, m.Text)
}

// Sink accumulates diagnostics. The error count decides whether the
// compiler proceeds past the current pass.
type Sink struct {
	ErrorCount   int
	WarningCount int
	Msgs         []Message

	// Quiet suppresses terminal rendering; diagnostics are still
	// counted and stored.
	Quiet bool
}

func NewSink() *Sink {
	return &Sink{Quiet: true}
}

func (s *Sink) Errorf(pos src.Pos, format string, args ...interface{}) {
	m := Message{Pos: pos, Text: fmt.Sprintf(format, args...), IsError: true}
	s.ErrorCount++
	s.Msgs = append(s.Msgs, m)
	if !s.Quiet {
		errorStyle.Print("Type Error")
		errorFG.Printf(" %s: %s\n", m.Pos, m.Text)
	}
}

func (s *Sink) Warningf(pos src.Pos, format string, args ...interface{}) {
	m := Message{Pos: pos, Text: fmt.Sprintf(format, args...)}
	s.WarningCount++
	s.Msgs = append(s.Msgs, m)
	if !s.Quiet {
		warnStyle.Print("Warning")
		warnFG.Printf(" %s: %s\n", m.Pos, m.Text)
	}
}

// ShouldProceed reports whether no errors have been seen.
func (s *Sink) ShouldProceed() bool {
	return s.ErrorCount == 0
}
