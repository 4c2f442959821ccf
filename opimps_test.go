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

package opimps

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/T101N/opimps/report"
)

func TestImplOp(t *testing.T) {
	t.Parallel()

	got, err := ImplOp("std::ops::Add", "fn add(self: Owner, rhs: &Owner) -> u64 { self.n + rhs.n }")
	require.NoError(t, err)

	want := `impl std::ops::Add<&Owner> for Owner {
    type Output = u64;
    fn add(self, rhs: &Owner) -> Self::Output { self.n + rhs.n }
}
`
	assert.Equal(t, want, got)
}

func TestEntryPointUnitCounts(t *testing.T) {
	t.Parallel()

	count := func(fragment string) int {
		return strings.Count(fragment, "\nimpl") + 1
	}

	tests := []struct {
		name   string
		expand func(trait, fn string) (string, error)
		trait  string
		fn     string
		units  int
	}{
		{"ImplUniOp", ImplUniOp, "std::ops::Neg", "fn neg(self: P) -> P { self.flip() }", 1},
		{"ImplUniOps", ImplUniOps, "std::ops::Neg", "fn neg(self: P) -> P { self.flip() }", 2},
		{"ImplOp", ImplOp, "std::ops::Add", "fn add(self: P, rhs: P) -> P { self.plus(rhs) }", 1},
		{"ImplOps", ImplOps, "std::ops::Add", "fn add(self: P, rhs: P) -> P { self.plus(rhs) }", 4},
		{"ImplOpsLprim", ImplOpsLprim, "std::ops::Mul", "fn mul(self: f64, rhs: P) -> P { rhs.scale(self) }", 2},
		{"ImplOpsRprim", ImplOpsRprim, "std::ops::Mul", "fn mul(self: P, rhs: f64) -> P { self.scale(rhs) }", 2},
		{"ImplOpAssign", ImplOpAssign, "std::ops::AddAssign", "fn add_assign(self: P, rhs: P) { self.push(rhs) }", 1},
		{"ImplOpsAssign", ImplOpsAssign, "std::ops::AddAssign", "fn add_assign(self: P, rhs: P) { self.push(rhs) }", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fragment, err := tt.expand(tt.trait, tt.fn)
			require.NoError(t, err)
			assert.Equal(t, tt.units, count(fragment))
		})
	}
}

func TestProcessSourcePassthrough(t *testing.T) {
	t.Parallel()

	const text = `#[derive(Debug, Clone)]
struct Owner {
    n: u64,
}

fn main() {
    let x = 1 + 2;
}
`
	got, err := ProcessSource("test.rs", text)
	require.NoError(t, err)
	assert.Equal(t, text, got)
}

func TestProcessSourceSplice(t *testing.T) {
	t.Parallel()

	const text = `struct Owner { n: u64 }

#[opimps::impl_op(std::ops::Add)]
fn add(self: Owner, rhs: &Owner) -> u64 { self.n + rhs.n }

fn main() {}
`
	got, err := ProcessSource("test.rs", text)
	require.NoError(t, err)

	want := `struct Owner { n: u64 }

impl std::ops::Add<&Owner> for Owner {
    type Output = u64;
    fn add(self, rhs: &Owner) -> Self::Output { self.n + rhs.n }
}


fn main() {}
`
	assert.Equal(t, want, got)
}

func TestProcessSourceMultipleAnnotations(t *testing.T) {
	t.Parallel()

	const text = `#[opimps::impl_ops(std::ops::Add)]
fn add(self: Owner, rhs: Owner) -> u64 { self.n + rhs.n }

#[opimps::impl_uni_ops(std::ops::Neg)]
fn neg(self: Owner) -> i64 { self.negated() }
`
	got, err := ProcessSource("test.rs", text)
	require.NoError(t, err)

	assert.Equal(t, 6, strings.Count(got, "impl "))
	assert.NotContains(t, got, "#[opimps")
	assert.NotContains(t, got, "fn add(self:")
	assert.Contains(t, got, "impl std::ops::Neg for &Owner {")
}

func TestProcessSourceUnknownMarker(t *testing.T) {
	t.Parallel()

	_, err := ProcessSource("test.rs", "#[opimps::impl_everything(Add)]\nfn f(self: A, rhs: A) -> A { self.plus(rhs) }\n")
	require.Error(t, err)
	assert.ErrorContains(t, err, "unknown expansion marker `impl_everything`")

	var ewp report.ErrorWithPos
	require.ErrorAs(t, err, &ewp)
	assert.Equal(t, report.UnsupportedMode, ewp.Kind())
}

func TestProcessSourceMissingFunction(t *testing.T) {
	t.Parallel()

	_, err := ProcessSource("test.rs", "#[opimps::impl_ops(std::ops::Add)]\n")
	require.Error(t, err)
	assert.ErrorContains(t, err, "expected a function definition after `#[opimps::impl_ops(...)]`")
}

func TestProcessSourceAnchorsExpansionErrors(t *testing.T) {
	t.Parallel()

	// The failure is inside the annotated function, which starts on line 2 of
	// the file; the reported position must be in file coordinates, not
	// relative to the extracted function text.
	_, err := ProcessSource("test.rs", "#[opimps::impl_ops(std::ops::Add)]\nfn add() -> u64 { 0 }\n")
	require.Error(t, err)
	assert.ErrorContains(t, err, "test.rs:2:7: function definition requires a first argument of the form `self: T`")

	var ewp report.ErrorWithPos
	require.ErrorAs(t, err, &ewp)
	assert.Equal(t, report.MalformedSignature, ewp.Kind())
}

func TestProcessSourceAnchorsTraitErrors(t *testing.T) {
	t.Parallel()

	const text = `fn helper() {}

#[opimps::impl_ops(42)]
fn add(self: A, rhs: A) -> A { self.plus(rhs) }
`
	_, err := ProcessSource("test.rs", text)
	require.Error(t, err)
	assert.ErrorContains(t, err, "test.rs:3:20: expected an operator trait path, found a number")

	var ewp report.ErrorWithPos
	require.ErrorAs(t, err, &ewp)
	assert.Equal(t, report.UnrecognizedTraitTarget, ewp.Kind())
}

func TestProcessSourceAnchorsEmptyTraitErrors(t *testing.T) {
	t.Parallel()

	// No argument text to rebase onto, so the failure anchors to the whole
	// annotation.
	_, err := ProcessSource("test.rs", "#[opimps::impl_ops()]\nfn add(self: A, rhs: A) -> A { self.plus(rhs) }\n")
	require.Error(t, err)
	assert.ErrorContains(t, err, "test.rs:1:1: operator trait argument is required")
}

func TestProcessSourceKeepsAttrsBetweenAnnotationAndFunction(t *testing.T) {
	t.Parallel()

	const text = `#[opimps::impl_op(std::ops::Add)]
#[inline]
fn add(self: Owner, rhs: Owner) -> u64 { self.n + rhs.n }
`
	got, err := ProcessSource("test.rs", text)
	require.NoError(t, err)
	assert.Contains(t, got, "    #[inline]\n")
	assert.NotContains(t, got, "#[opimps")
}
