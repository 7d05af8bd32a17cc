// Copyright 2018 The P4c Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package format

import (
	"bytes"
	"fmt"

	"github.com/sharadc/p4c/syntax/tipe"
)

func (p *printer) tipe(t tipe.Type) {
	if t == nil {
		p.buf.WriteString("<nil>")
		return
	}
	switch t := t.(type) {
	case tipe.Basic:
		p.buf.WriteString(string(t))
	case *tipe.Bits:
		if t.Signed {
			fmt.Fprintf(p.buf, "int<%d>", t.Size)
		} else {
			fmt.Fprintf(p.buf, "bit<%d>", t.Size)
		}
	case *tipe.Varbits:
		fmt.Fprintf(p.buf, "varbit<%d>", t.Size)
	case *tipe.InfInt:
		p.buf.WriteString("int")
	case *tipe.Var:
		p.buf.WriteString(t.Name)
	case *tipe.Error:
		p.buf.WriteString("error")
	case *tipe.Enum:
		p.buf.WriteString(t.Name)
	case *tipe.ActionEnum:
		p.buf.WriteString("action_run")
	case *tipe.Set:
		p.buf.WriteString("set<")
		p.tipe(t.Elem)
		p.buf.WriteByte('>')
	case *tipe.Stack:
		p.tipe(t.Elem)
		if t.SizeKnown() {
			fmt.Fprintf(p.buf, "[%d]", t.Size)
		} else {
			p.buf.WriteString("[]")
		}
	case *tipe.Tuple:
		p.buf.WriteString("tuple<")
		for i, e := range t.Elems {
			if i > 0 {
				p.buf.WriteString(", ")
			}
			p.tipe(e)
		}
		p.buf.WriteByte('>')
	case *tipe.Struct:
		p.structLike("struct", t.Name, t.Fields)
	case *tipe.Header:
		p.structLike("header", t.Name, t.Fields)
	case *tipe.Union:
		p.structLike("header_union", t.Name, t.Fields)
	case *tipe.Method:
		p.typeParams(t.TypeParams)
		p.buf.WriteByte('(')
		p.params(t.Params)
		p.buf.WriteByte(')')
		if t.Return != nil {
			p.buf.WriteString(" -> ")
			p.tipe(t.Return)
		}
	case *tipe.Action:
		p.buf.WriteString("action(")
		p.params(t.Params)
		p.buf.WriteByte(')')
	case *tipe.Extern:
		p.buf.WriteString("extern ")
		p.buf.WriteString(t.Name)
	case *tipe.Parser:
		p.buf.WriteString("parser ")
		p.buf.WriteString(t.Name)
		p.typeParams(t.TypeParams)
		p.buf.WriteByte('(')
		p.params(t.ApplyParams)
		p.buf.WriteByte(')')
	case *tipe.Control:
		p.buf.WriteString("control ")
		p.buf.WriteString(t.Name)
		p.typeParams(t.TypeParams)
		p.buf.WriteByte('(')
		p.params(t.ApplyParams)
		p.buf.WriteByte(')')
	case *tipe.Package:
		p.buf.WriteString("package ")
		p.buf.WriteString(t.Name)
	case *tipe.Table:
		p.buf.WriteString("table")
	case *tipe.Specialized:
		p.tipe(t.Base)
		p.typeArgs(t.Args)
	case *tipe.SpecializedCanonical:
		p.tipe(t.Base)
		p.typeArgs(t.Args)
	case *tipe.Name:
		p.buf.WriteString(t.Name)
	case *tipe.TypeType:
		p.buf.WriteString("type ")
		p.tipe(t.Type)
	case *tipe.MethodCall:
		p.buf.WriteString("call(")
		for i, a := range t.Args {
			if i > 0 {
				p.buf.WriteString(", ")
			}
			p.tipe(a.Type)
		}
		p.buf.WriteString(") -> ")
		p.tipe(t.Return)
	default:
		p.buf.WriteString(fmt.Sprintf("format: unknown type: %T", t))
	}
}

func (p *printer) structLike(kind, name string, fields []tipe.Field) {
	p.buf.WriteString(kind)
	if name != "" {
		p.buf.WriteByte(' ')
		p.buf.WriteString(name)
	}
	p.buf.WriteString(" {")
	p.indent++
	for _, f := range fields {
		p.newline()
		p.buf.WriteString(f.Name)
		p.buf.WriteString(": ")
		p.tipe(f.Type)
	}
	p.indent--
	p.newline()
	p.buf.WriteByte('}')
}

func (p *printer) params(params []*tipe.Param) {
	for i, pr := range params {
		if i > 0 {
			p.buf.WriteString(", ")
		}
		if pr.Direction != tipe.DirNone {
			p.buf.WriteString(pr.Direction.String())
			p.buf.WriteByte(' ')
		}
		p.tipe(pr.Type)
		if pr.Name != "" {
			p.buf.WriteByte(' ')
			p.buf.WriteString(pr.Name)
		}
	}
}

func (p *printer) typeParams(tps []*tipe.Var) {
	if len(tps) == 0 {
		return
	}
	p.buf.WriteByte('<')
	for i, v := range tps {
		if i > 0 {
			p.buf.WriteString(", ")
		}
		p.buf.WriteString(v.Name)
	}
	p.buf.WriteByte('>')
}

func (p *printer) typeArgs(args []tipe.Type) {
	p.buf.WriteByte('<')
	for i, a := range args {
		if i > 0 {
			p.buf.WriteString(", ")
		}
		p.tipe(a)
	}
	p.buf.WriteByte('>')
}

func WriteType(buf *bytes.Buffer, t tipe.Type) {
	p := &printer{
		buf: buf,
	}
	p.tipe(t)
}

func Type(t tipe.Type) string {
	buf := new(bytes.Buffer)
	WriteType(buf, t)
	return buf.String()
}
