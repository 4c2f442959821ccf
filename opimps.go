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

// Package opimps expands annotated operator functions into the full set of
// trait implementations covering by-value and by-reference operands.
//
// A language that distinguishes owned and borrowed operands needs up to four
// nearly identical implementations per binary operator, one per combination
// of operand shapes. This package synthesizes them from a single function
// definition:
//
//	#[opimps::impl_ops(std::ops::Add)]
//	fn add(self: Owner, rhs: Owner) -> u64 { self.n + rhs.n }
//
// expands to implementations of Add for Owner+Owner, &Owner+Owner,
// Owner+&Owner, and &Owner+&Owner, with the body's operand accesses
// corrected for each combination.
//
// Each exported entry point corresponds to one annotation marker and takes
// the marker's trait argument plus the text of exactly one function
// definition, returning the replacement source fragment. [ProcessSource]
// performs the same expansion for every annotation in a whole source text.
package opimps

import "github.com/T101N/opimps/expand"

// ImplUniOp implements a unary operator for exactly the declared operand
// shape. Marker: #[opimps::impl_uni_op(Trait)].
func ImplUniOp(trait, fn string) (string, error) {
	return expandAttr(expand.UniSingle, trait, fn)
}

// ImplUniOps implements a unary operator for both the owned and borrowed
// operand. Marker: #[opimps::impl_uni_ops(Trait)].
func ImplUniOps(trait, fn string) (string, error) {
	return expandAttr(expand.UniDual, trait, fn)
}

// ImplOp implements a binary operator for exactly the declared operand
// shapes. Marker: #[opimps::impl_op(Trait)].
func ImplOp(trait, fn string) (string, error) {
	return expandAttr(expand.BinSingle, trait, fn)
}

// ImplOps implements a binary operator for the full owned/borrowed
// cross-product of both operands. Marker: #[opimps::impl_ops(Trait)].
func ImplOps(trait, fn string) (string, error) {
	return expandAttr(expand.BinDual, trait, fn)
}

// ImplOpsLprim implements a binary operator whose left operand is a
// primitive held at its declared shape, varying only the right operand.
// Marker: #[opimps::impl_ops_lprim(Trait)].
func ImplOpsLprim(trait, fn string) (string, error) {
	return expandAttr(expand.BinLeftPrimitive, trait, fn)
}

// ImplOpsRprim implements a binary operator whose right operand is a
// primitive held at its declared shape, varying only the left operand.
// Marker: #[opimps::impl_ops_rprim(Trait)].
func ImplOpsRprim(trait, fn string) (string, error) {
	return expandAttr(expand.BinRightPrimitive, trait, fn)
}

// ImplOpAssign implements an assignment operator for the declared right-hand
// shape, mutating the left operand in place.
// Marker: #[opimps::impl_op_assign(Trait)].
func ImplOpAssign(trait, fn string) (string, error) {
	return expandAttr(expand.AssignSingle, trait, fn)
}

// ImplOpsAssign implements an assignment operator for both the owned and
// borrowed right-hand side, where the declared signature supports it.
// Marker: #[opimps::impl_ops_assign(Trait)].
func ImplOpsAssign(trait, fn string) (string, error) {
	return expandAttr(expand.AssignDual, trait, fn)
}

func expandAttr(mode expand.Mode, trait, fn string) (string, error) {
	return expand.Expand(expand.Invocation{
		Mode:      mode,
		TraitPath: attrPath,
		TraitText: trait,
		FuncPath:  "<fn>",
		FuncText:  fn,
	})
}
