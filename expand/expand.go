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

// Package expand implements the expansion engine: given one annotated
// operator function and a mode, it enumerates the operand-shape combinations
// the mode calls for and synthesizes one trait implementation per
// combination.
//
// Expansion is a pure function of its input text. There is no state shared
// across invocations, so separate annotated functions can be expanded in any
// order, or concurrently, without affecting results.
package expand

import (
	"github.com/T101N/opimps/ast"
	"github.com/T101N/opimps/parser"
	"github.com/T101N/opimps/report"
)

// Invocation is one expansion request: the trait argument and function
// definition attached to a single annotation site.
type Invocation struct {
	Mode Mode

	// TraitPath and TraitText identify the operator trait argument; the path
	// names the virtual file used in diagnostics.
	TraitPath, TraitText string

	// FuncPath and FuncText hold the annotated function definition.
	FuncPath, FuncText string
}

// Expand runs one expansion invocation and returns the emitted fragment.
//
// On failure the returned fragment is empty: an invocation either
// synthesizes every combination or emits nothing, so the host compilation
// fails cleanly at the annotation site.
func Expand(inv Invocation) (string, error) {
	h := report.NewHandler()

	trait, err := parser.ParseTrait(report.NewFile(inv.TraitPath, inv.TraitText), h)
	if err != nil {
		return "", err
	}

	decl, err := parser.Parse(report.NewFile(inv.FuncPath, inv.FuncText), h)
	if err != nil {
		return "", err
	}

	if inv.Mode.IsAssignment() {
		if decl.Output != "" {
			return "", h.HandleErrorf(
				report.MalformedSignature, decl.NameSpan,
				"assignment operator function `%s` must not declare a return type", decl.Name,
			)
		}
	} else if decl.Output == "" {
		return "", h.HandleErrorf(
			report.MalformedSignature, decl.NameSpan,
			"function `%s` must declare a return type", decl.Name,
		)
	}

	combos, err := Enumerate(inv.Mode, decl, h)
	if err != nil {
		return "", err
	}

	units := make([]SynthesizedUnit, 0, len(combos))
	for i, combo := range combos {
		body, err := Rewrite(decl, combo, h)
		if err != nil {
			return "", err
		}
		units = append(units, Synthesize(decl, trait, inv.Mode, combo, body, i == 0))
	}

	return Aggregate(units), nil
}

// Combinations returns the shape combinations Expand would synthesize for
// the given invocation, without synthesizing them. The signature is parsed
// the same way; this exists for hosts that want to report what an annotation
// will produce.
func Combinations(inv Invocation) ([]ShapeCombination, error) {
	h := report.NewHandler()
	decl, err := parser.Parse(report.NewFile(inv.FuncPath, inv.FuncText), h)
	if err != nil {
		return nil, err
	}
	return Enumerate(inv.Mode, decl, h)
}

// declaredCombination returns the combination matching the declared shapes,
// used by tests asserting the identity-rewrite property.
func declaredCombination(decl *ast.FuncDecl) ShapeCombination {
	combo := make(ShapeCombination, len(decl.Operands))
	for i := range decl.Operands {
		combo[i] = decl.Operands[i].Shape
	}
	return combo
}
