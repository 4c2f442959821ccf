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

// Package ast defines the signature model: the structured representation of
// an annotated operator function that the expansion engine works over.
//
// Everything here is produced once by the parser, is immutable afterwards,
// and lives only for the duration of a single expansion invocation.
package ast

import (
	"github.com/T101N/opimps/report"
	"github.com/T101N/opimps/token"
)

// FuncDecl is the parsed form of one annotated operator function.
type FuncDecl struct {
	// Name is the function's identifier, which becomes the trait method name
	// in every synthesized implementation.
	Name string

	// NameSpan locates the identifier, for diagnostics about the declaration
	// as a whole.
	NameSpan report.Span

	// Attrs are the attributes and doc comments written above the function,
	// in source order.
	Attrs []Attr

	// TypeParams carries the generic parameter list and where clause, both
	// verbatim. Identical across every synthesized variant.
	TypeParams TypeParams

	// Operands are the function's parameters: self, then rhs for binary
	// forms.
	Operands []OperandSpec

	// Output is the declared return type, verbatim, or "" if the function
	// declares none (the assignment forms).
	Output string

	// BodySpan covers the tokens between (not including) the body's braces.
	BodySpan report.Span

	// Body is the body's token sequence, in source order, without skippable
	// tokens. The text of BodySpan remains the source of truth for emission;
	// these tokens only drive operand-access rewriting.
	Body []token.Token
}

// Attr is one attribute or doc comment attached to the function.
type Attr struct {
	// Text is the attribute verbatim, including #[...] or the comment markers.
	Text string

	// IsDoc distinguishes doc comments from other attributes. Doc comments
	// attach to the first synthesized variant only; other attributes repeat
	// on every variant.
	IsDoc bool
}

// TypeParams is the generic parameter list and bound clauses of the source
// signature, carried verbatim into every synthesized implementation.
type TypeParams struct {
	// Generics is the bracketed parameter list, such as "<'a, T: Copy>", or
	// "" if the function declares none.
	Generics string

	// Where is the trailing bound clause, such as "where T: Add<Output = T>",
	// or "" if the function declares none.
	Where string
}

// TraitTarget is the operator trait being implemented: a path such as
// "std::ops::Add", treated as opaque except for the reference marker and
// right-hand-side parameter appended per combination.
type TraitTarget struct {
	// Path is the trait path, verbatim.
	Path string

	// Span locates the path within the annotation's argument list.
	Span report.Span
}
