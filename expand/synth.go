// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package expand

import (
	"strings"

	"github.com/T101N/opimps/ast"
)

// SynthesizedUnit is one complete trait-implementation block, produced for a
// single shape combination and consumed only by [Aggregate].
type SynthesizedUnit struct {
	// Combo is the shape combination this unit implements.
	Combo ShapeCombination

	// Trait is the operator trait path, without the rhs parameter.
	Trait string

	// SelfType is the implementing type, with this combination's reference
	// marker applied. For assignment units it is the bare type: the mutable
	// reference lives on the receiver instead.
	SelfType string

	// RhsType is the right operand's type with this combination's reference
	// marker applied, or "" for unary units.
	RhsType string

	// RhsName is the right operand's parameter name, or "" for unary units.
	RhsName string

	// Output is the declared return type, or "" for assignment units.
	Output string

	// FnName is the trait method name.
	FnName string

	// Generics and Where are carried verbatim from the source signature.
	Generics, Where string

	// Attrs are the attributes to emit: non-doc attributes always, doc
	// comments only on the first unit of an invocation.
	Attrs []ast.Attr

	// Body is the rewritten body text, braces not included.
	Body string

	// Assignment marks units that mutate self in place: the receiver is
	// &mut self and there is no output type.
	Assignment bool
}

// Synthesize builds the implementation unit for one shape combination.
//
// first marks the first unit of the invocation, which is the only one that
// carries the function's doc comments.
func Synthesize(decl *ast.FuncDecl, trait *ast.TraitTarget, mode Mode, combo ShapeCombination, body string, first bool) SynthesizedUnit {
	unit := SynthesizedUnit{
		Combo:      combo,
		Trait:      trait.Path,
		FnName:     decl.Name,
		Generics:   decl.TypeParams.Generics,
		Where:      decl.TypeParams.Where,
		Body:       body,
		Assignment: mode.IsAssignment(),
	}

	self := decl.Operands[0]
	if unit.Assignment {
		unit.SelfType = self.Type
	} else {
		unit.SelfType = self.TypeWith(combo[0])
		unit.Output = decl.Output
	}

	if mode.Arity() == 2 {
		rhs := decl.Operands[1]
		unit.RhsName = rhs.Name
		unit.RhsType = rhs.TypeWith(combo[1])
	}

	for _, attr := range decl.Attrs {
		if !attr.IsDoc || first {
			unit.Attrs = append(unit.Attrs, attr)
		}
	}

	return unit
}

// Format renders this unit as host-language source.
func (u SynthesizedUnit) Format() string {
	var out strings.Builder

	for _, attr := range u.Attrs {
		if attr.IsDoc {
			out.WriteString(attr.Text)
			out.WriteString("\n")
		}
	}

	out.WriteString("impl")
	out.WriteString(u.Generics)
	out.WriteString(" ")
	out.WriteString(u.Trait)
	if u.RhsType != "" {
		out.WriteString("<")
		out.WriteString(u.RhsType)
		out.WriteString(">")
	}
	out.WriteString(" for ")
	out.WriteString(u.SelfType)
	if u.Where != "" {
		out.WriteString(" ")
		out.WriteString(u.Where)
	}
	out.WriteString(" {\n")

	if !u.Assignment {
		out.WriteString("    type Output = ")
		out.WriteString(u.Output)
		out.WriteString(";\n")
	}

	for _, attr := range u.Attrs {
		if !attr.IsDoc {
			out.WriteString("    ")
			out.WriteString(attr.Text)
			out.WriteString("\n")
		}
	}

	out.WriteString("    fn ")
	out.WriteString(u.FnName)
	out.WriteString("(")
	if u.Assignment {
		out.WriteString("&mut self")
	} else {
		out.WriteString("self")
	}
	if u.RhsType != "" {
		out.WriteString(", ")
		out.WriteString(u.RhsName)
		out.WriteString(": ")
		out.WriteString(u.RhsType)
	}
	out.WriteString(")")
	if !u.Assignment {
		out.WriteString(" -> Self::Output")
	}
	out.WriteString(" {")
	out.WriteString(u.Body)
	out.WriteString("}\n")

	out.WriteString("}")
	return out.String()
}
