// Copyright 2018 The P4c Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package format pretty-prints P4 types and expressions for
// diagnostics.
package format

import (
	"bytes"
	"fmt"

	"github.com/sharadc/p4c/syntax/expr"
	"github.com/sharadc/p4c/syntax/token"
)

type printer struct {
	buf    *bytes.Buffer
	indent int
}

func (p *printer) expr(e expr.Expr) {
	switch e := e.(type) {
	case nil:
		p.buf.WriteString("<nil>")
	case *expr.Bad:
		fmt.Fprintf(p.buf, "bad(%q)", e.Error)
	case *expr.Constant:
		if e.Base == 16 {
			fmt.Fprintf(p.buf, "0x%x", e.Value)
		} else {
			p.buf.WriteString(e.Value.String())
		}
	case *expr.BoolLiteral:
		fmt.Fprintf(p.buf, "%v", e.Value)
	case *expr.StringLiteral:
		fmt.Fprintf(p.buf, "%q", e.Value)
	case *expr.PathExpression:
		p.buf.WriteString(e.Name)
	case *expr.Member:
		p.expr(e.Expr)
		p.buf.WriteString("." + e.Name)
	case *expr.Binary:
		p.expr(e.Left)
		p.buf.WriteByte(' ')
		p.buf.WriteString(e.Op.String())
		p.buf.WriteByte(' ')
		p.expr(e.Right)
	case *expr.Unary:
		if e.Op == token.Neg {
			p.buf.WriteByte('-')
		} else {
			p.buf.WriteString(e.Op.String())
		}
		p.expr(e.Expr)
	case *expr.Cast:
		p.buf.WriteByte('(')
		p.tipe(e.Type)
		p.buf.WriteByte(')')
		p.expr(e.Expr)
	case *expr.Slice:
		p.expr(e.Expr)
		p.buf.WriteByte('[')
		p.expr(e.High)
		p.buf.WriteByte(':')
		p.expr(e.Low)
		p.buf.WriteByte(']')
	case *expr.Index:
		p.expr(e.Left)
		p.buf.WriteByte('[')
		p.expr(e.Index)
		p.buf.WriteByte(']')
	case *expr.Mux:
		p.expr(e.Cond)
		p.buf.WriteString(" ? ")
		p.expr(e.True)
		p.buf.WriteString(" : ")
		p.expr(e.False)
	case *expr.List:
		p.buf.WriteString("{ ")
		for i, el := range e.Elems {
			if i > 0 {
				p.buf.WriteString(", ")
			}
			p.expr(el)
		}
		p.buf.WriteString(" }")
	case *expr.MethodCall:
		p.expr(e.Method)
		if len(e.TypeArgs) > 0 {
			p.typeArgs(e.TypeArgs)
		}
		p.buf.WriteByte('(')
		for i, a := range e.Args {
			if i > 0 {
				p.buf.WriteString(", ")
			}
			p.expr(a)
		}
		p.buf.WriteByte(')')
	case *expr.ConstructorCall:
		p.tipe(e.Type)
		p.buf.WriteByte('(')
		for i, a := range e.Args {
			if i > 0 {
				p.buf.WriteString(", ")
			}
			p.expr(a)
		}
		p.buf.WriteByte(')')
	case *expr.Select:
		p.buf.WriteString("select(")
		for i, el := range e.Select.Elems {
			if i > 0 {
				p.buf.WriteString(", ")
			}
			p.expr(el)
		}
		p.buf.WriteString(") { ... }")
	case *expr.TypeName:
		p.buf.WriteString(e.Type.Name)
	case *expr.Default:
		p.buf.WriteString("default")
	case *expr.This:
		p.buf.WriteString("this")
	default:
		fmt.Fprintf(p.buf, "format: unknown expr: %T", e)
	}
}

func (p *printer) newline() {
	p.buf.WriteByte('\n')
	for i := 0; i < p.indent; i++ {
		p.buf.WriteByte('\t')
	}
}

func WriteExpr(buf *bytes.Buffer, e expr.Expr) {
	p := &printer{
		buf: buf,
	}
	p.expr(e)
}

func Expr(e expr.Expr) string {
	buf := new(bytes.Buffer)
	WriteExpr(buf, e)
	return buf.String()
}
