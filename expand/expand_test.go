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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/T101N/opimps/ast"
	"github.com/T101N/opimps/internal/golden"
	"github.com/T101N/opimps/report"
)

func expandText(t *testing.T, mode Mode, trait, fn string) string {
	t.Helper()

	fragment, err := Expand(Invocation{
		Mode:      mode,
		TraitPath: "<attr>",
		TraitText: trait,
		FuncPath:  "<fn>",
		FuncText:  fn,
	})
	require.NoError(t, err)
	return fragment
}

func TestExpandBinDual(t *testing.T) {
	t.Parallel()

	got := expandText(t, BinDual,
		"std::ops::Add",
		"fn add(self: Owner, rhs: Owner) -> u64 { self.n + rhs.n }",
	)

	want := `impl std::ops::Add<Owner> for Owner {
    type Output = u64;
    fn add(self, rhs: Owner) -> Self::Output { self.n + rhs.n }
}

impl std::ops::Add<Owner> for &Owner {
    type Output = u64;
    fn add(self, rhs: Owner) -> Self::Output { self.n + rhs.n }
}

impl std::ops::Add<&Owner> for Owner {
    type Output = u64;
    fn add(self, rhs: &Owner) -> Self::Output { self.n + rhs.n }
}

impl std::ops::Add<&Owner> for &Owner {
    type Output = u64;
    fn add(self, rhs: &Owner) -> Self::Output { self.n + rhs.n }
}
`
	assert.Equal(t, want, got)
}

func TestExpandUniDual(t *testing.T) {
	t.Parallel()

	got := expandText(t, UniDual,
		"std::ops::Neg",
		"fn neg(self: Point) -> Point { self.flip() }",
	)

	want := `impl std::ops::Neg for Point {
    type Output = Point;
    fn neg(self) -> Self::Output { self.flip() }
}

impl std::ops::Neg for &Point {
    type Output = Point;
    fn neg(self) -> Self::Output { self.flip() }
}
`
	assert.Equal(t, want, got)
}

func TestExpandAssignDual(t *testing.T) {
	t.Parallel()

	got := expandText(t, AssignDual,
		"std::ops::AddAssign",
		"fn add_assign(self: Acc, rhs: Acc) { self.n += rhs.n }",
	)

	want := `impl std::ops::AddAssign<Acc> for Acc {
    fn add_assign(&mut self, rhs: Acc) { self.n += rhs.n }
}

impl std::ops::AddAssign<&Acc> for Acc {
    fn add_assign(&mut self, rhs: &Acc) { self.n += rhs.n }
}
`
	assert.Equal(t, want, got)
}

func TestExpandRewritesPerCombination(t *testing.T) {
	t.Parallel()

	got := expandText(t, BinDual,
		"std::ops::BitXor",
		"fn xor(self: Flags, rhs: Flags) -> Flags { merge(self, rhs) }",
	)

	want := `impl std::ops::BitXor<Flags> for Flags {
    type Output = Flags;
    fn xor(self, rhs: Flags) -> Self::Output { merge(self, rhs) }
}

impl std::ops::BitXor<Flags> for &Flags {
    type Output = Flags;
    fn xor(self, rhs: Flags) -> Self::Output { merge(*self, rhs) }
}

impl std::ops::BitXor<&Flags> for Flags {
    type Output = Flags;
    fn xor(self, rhs: &Flags) -> Self::Output { merge(self, *rhs) }
}

impl std::ops::BitXor<&Flags> for &Flags {
    type Output = Flags;
    fn xor(self, rhs: &Flags) -> Self::Output { merge(*self, *rhs) }
}
`
	assert.Equal(t, want, got)
}

func TestExpandGenerics(t *testing.T) {
	t.Parallel()

	got := expandText(t, BinDual,
		"std::ops::Add",
		"fn add<T: Add<Output = T> + Copy>(self: Dummy<T>, rhs: Dummy<T>) -> Dummy<T> { Dummy(self.0 + rhs.0) }",
	)

	want := `impl<T: Add<Output = T> + Copy> std::ops::Add<Dummy<T>> for Dummy<T> {
    type Output = Dummy<T>;
    fn add(self, rhs: Dummy<T>) -> Self::Output { Dummy(self.0 + rhs.0) }
}

impl<T: Add<Output = T> + Copy> std::ops::Add<Dummy<T>> for &Dummy<T> {
    type Output = Dummy<T>;
    fn add(self, rhs: Dummy<T>) -> Self::Output { Dummy(self.0 + rhs.0) }
}

impl<T: Add<Output = T> + Copy> std::ops::Add<&Dummy<T>> for Dummy<T> {
    type Output = Dummy<T>;
    fn add(self, rhs: &Dummy<T>) -> Self::Output { Dummy(self.0 + rhs.0) }
}

impl<T: Add<Output = T> + Copy> std::ops::Add<&Dummy<T>> for &Dummy<T> {
    type Output = Dummy<T>;
    fn add(self, rhs: &Dummy<T>) -> Self::Output { Dummy(self.0 + rhs.0) }
}
`
	assert.Equal(t, want, got)
}

func TestExpandWhereClause(t *testing.T) {
	t.Parallel()

	got := expandText(t, BinSingle,
		"std::ops::Sub",
		"fn sub<T>(self: Dummy<T>, rhs: Dummy<T>) -> Dummy<T> where T: Sub<Output = T> + Copy { Dummy(self.0 - rhs.0) }",
	)

	want := `impl<T> std::ops::Sub<Dummy<T>> for Dummy<T> where T: Sub<Output = T> + Copy {
    type Output = Dummy<T>;
    fn sub(self, rhs: Dummy<T>) -> Self::Output { Dummy(self.0 - rhs.0) }
}
`
	assert.Equal(t, want, got)
}

func TestExpandDocCommentsOnFirstUnitOnly(t *testing.T) {
	t.Parallel()

	got := expandText(t, UniDual,
		"std::ops::Not",
		"/// Inverts every flag.\n#[inline]\nfn not(self: Flags) -> Flags { self.invert() }",
	)

	want := `/// Inverts every flag.
impl std::ops::Not for Flags {
    type Output = Flags;
    #[inline]
    fn not(self) -> Self::Output { self.invert() }
}

impl std::ops::Not for &Flags {
    type Output = Flags;
    #[inline]
    fn not(self) -> Self::Output { self.invert() }
}
`
	assert.Equal(t, want, got)
}

func TestExpandErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		mode  Mode
		trait string
		fn    string
		kind  report.Kind
	}{
		{
			"unary mode on a binary signature",
			UniDual, "std::ops::Neg",
			"fn neg(self: A, rhs: A) -> A { -self }",
			report.UnsupportedMode,
		},
		{
			"binary mode on a unary signature",
			BinDual, "std::ops::Add",
			"fn neg(self: A) -> A { -self }",
			report.UnsupportedMode,
		},
		{
			"assignment must not declare a return type",
			AssignDual, "std::ops::AddAssign",
			"fn add_assign(self: A, rhs: A) -> A { self }",
			report.MalformedSignature,
		},
		{
			"non-assignment must declare a return type",
			BinDual, "std::ops::Add",
			"fn add(self: A, rhs: A) { self.n += rhs.n }",
			report.MalformedSignature,
		},
		{
			"malformed trait argument",
			BinDual, "42",
			"fn add(self: A, rhs: A) -> A { self + rhs }",
			report.UnrecognizedTraitTarget,
		},
		{
			"rebound operand",
			BinDual, "std::ops::Add",
			"fn add(self: A, rhs: A) -> A { let rhs = self.clone(); self + rhs }",
			report.AmbiguousOperandReference,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fragment, err := Expand(Invocation{
				Mode:      tt.mode,
				TraitPath: "<attr>",
				TraitText: tt.trait,
				FuncPath:  "<fn>",
				FuncText:  tt.fn,
			})
			require.Error(t, err)
			assert.Empty(t, fragment, "a failed invocation emits nothing")

			var ewp report.ErrorWithPos
			require.ErrorAs(t, err, &ewp)
			assert.Equal(t, tt.kind, ewp.Kind(), "got: %v", ewp)
		})
	}
}

func TestCombinations(t *testing.T) {
	t.Parallel()

	combos, err := Combinations(Invocation{
		Mode:     BinDual,
		FuncPath: "<fn>",
		FuncText: "fn add(self: A, rhs: A) -> A { self + rhs }",
	})
	require.NoError(t, err)
	require.Len(t, combos, 4)
	assert.Equal(t, ShapeCombination{ast.Value, ast.Value}, combos[0])
	assert.Equal(t, ShapeCombination{ast.Ref, ast.Ref}, combos[3])
}

// goldenCase is the YAML layout of one corpus case file.
type goldenCase struct {
	Marker string `yaml:"marker"`
	Trait  string `yaml:"trait"`
	Fn     string `yaml:"fn"`
}

func TestGolden(t *testing.T) {
	t.Parallel()

	corpus := golden.Corpus{
		Root:      "testdata",
		Refresh:   "OPIMPS_REFRESH",
		Extension: "yaml",
		Outputs:   []string{"expanded", "stderr"},
		Test: func(t *testing.T, path, text string, outputs []string) {
			var c goldenCase
			require.NoError(t, yaml.Unmarshal([]byte(text), &c))

			mode, ok := ModeForMarker(c.Marker)
			require.True(t, ok, "unknown marker %q", c.Marker)

			fragment, err := Expand(Invocation{
				Mode:      mode,
				TraitPath: "<attr>",
				TraitText: c.Trait,
				FuncPath:  path,
				FuncText:  c.Fn,
			})
			outputs[0] = fragment
			if err != nil {
				outputs[1] = err.Error() + "\n"
			}
		},
	}
	corpus.Run(t)
}
