// Copyright 2018 The P4c Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tipe

import "testing"

type equalTest struct {
	x, y Type
	want bool
}

var equalTests = []equalTest{
	{Bool, Bool, true},
	{Bool, String, false},
	{BitsOf(8, false), BitsOf(8, false), true},
	{BitsOf(8, false), BitsOf(8, true), false},
	{BitsOf(8, false), BitsOf(9, false), false},
	{&InfInt{ID: 1}, &InfInt{ID: 2}, true},
	{&Var{Name: "T"}, &Var{Name: "T"}, false},
	{&Varbits{Size: 32}, &Varbits{Size: 32}, true},
	{&Set{Elem: Bool}, &Set{Elem: Bool}, true},
	{&Set{Elem: Bool}, &Set{Elem: String}, false},
	{&Stack{Elem: Bool, Size: 2}, &Stack{Elem: Bool, Size: 2}, true},
	{&Stack{Elem: Bool, Size: 2}, &Stack{Elem: Bool, Size: 3}, false},
	{
		&Tuple{Elems: []Type{Bool, BitsOf(4, false)}},
		&Tuple{Elems: []Type{Bool, BitsOf(4, false)}},
		true,
	},
	{
		&Struct{Name: "S", Fields: []Field{{Name: "f", Type: Bool}}},
		&Struct{Name: "S", Fields: []Field{{Name: "f", Type: Bool}}},
		true,
	},
	{
		&Struct{Name: "S", Fields: []Field{{Name: "f", Type: Bool}}},
		&Struct{Name: "T", Fields: []Field{{Name: "f", Type: Bool}}},
		false,
	},
	{
		&Struct{Name: "S", Fields: []Field{{Name: "f", Type: Bool}}},
		&Header{Name: "S", Fields: []Field{{Name: "f", Type: Bool}}},
		false,
	},
	{&Enum{Name: "E"}, &Enum{Name: "E"}, true},
	{&Enum{Name: "E"}, &Enum{Name: "F"}, false},
	{
		&Method{Return: Bool, Params: []*Param{{Name: "x", Direction: DirIn, Type: Bool}}},
		&Method{Return: Bool, Params: []*Param{{Name: "y", Direction: DirIn, Type: Bool}}},
		true,
	},
	{
		&Method{Return: Bool, Params: []*Param{{Direction: DirIn, Type: Bool}}},
		&Method{Return: Bool, Params: []*Param{{Direction: DirOut, Type: Bool}}},
		false,
	},
	{&Action{}, &Action{}, true},
}

func TestEqual(t *testing.T) {
	for i, test := range equalTests {
		if got := Equal(test.x, test.y); got != test.want {
			t.Errorf("%d: Equal(%#v, %#v) = %v, want %v", i, test.x, test.y, got, test.want)
		}
	}
}

func TestLookupMethod(t *testing.T) {
	ext := &Extern{Name: "E", Methods: []*ExternMethod{
		{Name: "m", Type: &Method{}},
		{Name: "m", Type: &Method{Params: []*Param{{Name: "x", Type: Bool}}}},
	}}
	if got := ext.LookupMethod("m", 0); got != ext.Methods[0] {
		t.Errorf("LookupMethod(m, 0) picked the wrong overload")
	}
	if got := ext.LookupMethod("m", 1); got != ext.Methods[1] {
		t.Errorf("LookupMethod(m, 1) picked the wrong overload")
	}
	if got := ext.LookupMethod("m", 2); got != nil {
		t.Errorf("LookupMethod(m, 2) = %v, want nil", got)
	}
	dup := &Extern{Name: "E", Methods: []*ExternMethod{
		{Name: "m", Type: &Method{}},
		{Name: "m", Type: &Method{}},
	}}
	if got := dup.LookupMethod("m", 0); got != nil {
		t.Errorf("ambiguous lookup = %v, want nil", got)
	}
}

func TestContainerConstructor(t *testing.T) {
	ct := &Control{Name: "c", CtorParams: []*Param{{Name: "n", Type: BitsOf(8, false)}}}
	m := ct.ConstructorMethod()
	if m.Return != Type(ct) || len(m.Params) != 1 {
		t.Errorf("constructor method = %#v", m)
	}
}
