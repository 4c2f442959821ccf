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
	"github.com/T101N/opimps/report"
)

// ShapeCombination is one concrete assignment of shapes to operands: the
// self shape, then the rhs shape for binary modes.
type ShapeCombination []ast.Shape

// String implements [fmt.Stringer].
func (c ShapeCombination) String() string {
	parts := make([]string, len(c))
	for i, s := range c {
		parts[i] = s.String()
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// Enumerate returns the ordered list of shape combinations to synthesize for
// the given mode and signature.
//
// The order is a compatibility contract, not a cosmetic choice: downstream
// consumers diff and cache the emitted fragment, so for every mode the value
// shape sorts before the reference shape and the left operand varies slower
// than the right.
func Enumerate(mode Mode, decl *ast.FuncDecl, h *report.Handler) ([]ShapeCombination, error) {
	if len(decl.Operands) != mode.Arity() {
		return nil, h.HandleErrorf(
			report.UnsupportedMode, decl.NameSpan,
			"%s expansion requires %s, but `%s` declares %d",
			mode, arityNoun(mode.Arity()), decl.Name, len(decl.Operands),
		)
	}

	self := decl.Operands[0]
	var rhs ast.OperandSpec
	if mode.Arity() == 2 {
		rhs = decl.Operands[1]
	}

	switch mode {
	case UniSingle:
		return []ShapeCombination{{self.Shape}}, nil

	case UniDual:
		return []ShapeCombination{{ast.Value}, {ast.Ref}}, nil

	case BinSingle:
		return []ShapeCombination{{self.Shape, rhs.Shape}}, nil

	case BinDual:
		return []ShapeCombination{
			{ast.Value, ast.Value},
			{ast.Ref, ast.Value},
			{ast.Value, ast.Ref},
			{ast.Ref, ast.Ref},
		}, nil

	case BinLeftPrimitive:
		return []ShapeCombination{
			{self.Shape, ast.Value},
			{self.Shape, ast.Ref},
		}, nil

	case BinRightPrimitive:
		return []ShapeCombination{
			{ast.Value, rhs.Shape},
			{ast.Ref, rhs.Shape},
		}, nil

	case AssignSingle:
		return []ShapeCombination{{ast.MutRef, rhs.Shape}}, nil

	case AssignDual:
		// The borrowed-rhs variant only exists when the declared signature
		// supports it: a declared reference already is that variant, and a
		// primitive rhs is copied rather than borrowed.
		if rhs.Shape != ast.Value {
			return []ShapeCombination{{ast.MutRef, ast.Ref}}, nil
		}
		if rhs.Primitive {
			return []ShapeCombination{{ast.MutRef, ast.Value}}, nil
		}
		return []ShapeCombination{
			{ast.MutRef, ast.Value},
			{ast.MutRef, ast.Ref},
		}, nil

	default:
		return nil, h.HandleErrorf(report.UnsupportedMode, decl.NameSpan, "unknown expansion mode %d", int(mode))
	}
}

func arityNoun(n int) string {
	if n == 1 {
		return "one operand"
	}
	return "two operands (self: T1, rhs: T2)"
}
