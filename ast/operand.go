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

package ast

import (
	"fmt"

	"github.com/T101N/opimps/report"
)

const (
	// Value is an operand passed by ownership.
	Value Shape = iota

	// Ref is an operand passed by shared reference.
	Ref

	// MutRef is an operand passed by mutable reference. Only the left
	// operand of the assignment forms ever takes this shape.
	MutRef
)

// Shape is how an operand is accessed: by ownership or through a reference.
type Shape byte

// Prefix returns the type prefix that declares this shape, such as "&" or
// "&mut ".
func (s Shape) Prefix() string {
	switch s {
	case Value:
		return ""
	case Ref:
		return "&"
	case MutRef:
		return "&mut "
	default:
		panic(fmt.Sprintf("opimps/ast: invalid shape: %d", int(s)))
	}
}

// String implements [fmt.Stringer].
func (s Shape) String() string {
	switch s {
	case Value:
		return "Value"
	case Ref:
		return "Ref"
	case MutRef:
		return "MutRef"
	default:
		return fmt.Sprintf("ast.Shape(%d)", int(s))
	}
}

// OperandSpec is one operand of the annotated function: the left operand
// (named self) or, for binary forms, the right operand.
type OperandSpec struct {
	// Name is the parameter's identifier.
	Name string

	// NameSpan locates the identifier.
	NameSpan report.Span

	// Shape is the shape as declared in the source signature.
	Shape Shape

	// Type is the operand's base type, verbatim, with the declared reference
	// marker (and any leading lifetime on it) stripped. Shapes are always
	// re-applied to this base form, so a dual expansion of `self: &A`
	// produces A and &A rather than &A and &&A.
	Type string

	// Primitive records whether Type is one of the host language's primitive
	// scalar types, which are cheap to copy and typically held at a fixed
	// shape in mixed expansions.
	Primitive bool
}

// TypeWith renders this operand's type with the given shape's reference
// marker applied.
func (o OperandSpec) TypeWith(shape Shape) string {
	return shape.Prefix() + o.Type
}

// primitives is the set of primitive scalar type names used for the
// Primitive hint.
var primitives = map[string]bool{
	"i8": true, "i16": true, "i32": true, "i64": true, "i128": true, "isize": true,
	"u8": true, "u16": true, "u32": true, "u64": true, "u128": true, "usize": true,
	"f32": true, "f64": true,
	"bool": true, "char": true,
}

// IsPrimitive returns whether name is a primitive scalar type name.
func IsPrimitive(name string) bool {
	return primitives[name]
}
