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

import "fmt"

const (
	// UniSingle expands a unary operator for exactly the declared shape.
	UniSingle Mode = 1 + iota

	// UniDual expands a unary operator for both the owned and borrowed
	// operand, regardless of the declared shape.
	UniDual

	// BinSingle expands a binary operator for exactly the declared shapes.
	BinSingle

	// BinDual expands a binary operator for the full owned/borrowed
	// cross-product of both operands.
	BinDual

	// BinLeftPrimitive expands a binary operator whose left operand is a
	// primitive: the left shape stays as declared, the right varies.
	BinLeftPrimitive

	// BinRightPrimitive expands a binary operator whose right operand is a
	// primitive: the right shape stays as declared, the left varies.
	BinRightPrimitive

	// AssignSingle expands an assignment operator for the declared
	// right-hand shape only. The left operand is always a mutable reference.
	AssignSingle

	// AssignDual expands an assignment operator for both the owned and
	// borrowed right-hand side, where the declared signature supports it.
	AssignDual
)

// Mode selects which combinations of operand shapes an invocation generates.
//
// The mode is fixed per invocation; the annotation-dispatch collaborator maps
// each annotation marker to its mode via [ModeForMarker] before the engine
// runs.
type Mode int

// markers maps each annotation marker name to its expansion mode.
var markers = map[string]Mode{
	"impl_uni_op":     UniSingle,
	"impl_uni_ops":    UniDual,
	"impl_op":         BinSingle,
	"impl_ops":        BinDual,
	"impl_ops_lprim":  BinLeftPrimitive,
	"impl_ops_rprim":  BinRightPrimitive,
	"impl_op_assign":  AssignSingle,
	"impl_ops_assign": AssignDual,
}

// ModeForMarker maps an annotation marker name, such as "impl_ops", to its
// expansion mode. Returns false for names that are not expansion markers.
func ModeForMarker(name string) (Mode, bool) {
	mode, ok := markers[name]
	return mode, ok
}

// Arity returns the number of operands a signature must declare for this
// mode.
func (m Mode) Arity() int {
	switch m {
	case UniSingle, UniDual:
		return 1
	default:
		return 2
	}
}

// IsAssignment returns whether this mode generates in-place assignment
// implementations, which mutate the left operand and declare no output type.
func (m Mode) IsAssignment() bool {
	return m == AssignSingle || m == AssignDual
}

// String implements [fmt.Stringer].
func (m Mode) String() string {
	switch m {
	case UniSingle:
		return "UniSingle"
	case UniDual:
		return "UniDual"
	case BinSingle:
		return "BinSingle"
	case BinDual:
		return "BinDual"
	case BinLeftPrimitive:
		return "BinLeftPrimitive"
	case BinRightPrimitive:
		return "BinRightPrimitive"
	case AssignSingle:
		return "AssignSingle"
	case AssignDual:
		return "AssignDual"
	default:
		return fmt.Sprintf("expand.Mode(%d)", int(m))
	}
}
