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

package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/T101N/opimps/report"
	"github.com/T101N/opimps/token"
)

// lexTexts lexes text and returns the text of every non-skippable token.
func lexTexts(t *testing.T, text string) []string {
	t.Helper()

	stream, err := Lex(report.NewFile("test.rs", text), report.NewHandler())
	require.NoError(t, err)

	var texts []string
	for _, tok := range stream.Tokens {
		if !tok.Kind.IsSkippable() {
			texts = append(texts, tok.Text())
		}
	}
	return texts
}

// lexKinds lexes text and returns every token kind, skippable included.
func lexKinds(t *testing.T, text string) []token.Kind {
	t.Helper()

	stream, err := Lex(report.NewFile("test.rs", text), report.NewHandler())
	require.NoError(t, err)

	kinds := make([]token.Kind, len(stream.Tokens))
	for i, tok := range stream.Tokens {
		kinds[i] = tok.Kind
	}
	return kinds
}

func TestLexSignature(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		[]string{"fn", "add", "(", "self", ":", "Owner", ",", "rhs", ":", "&", "Owner", ")", "->", "u64"},
		lexTexts(t, "fn add(self: Owner, rhs: &Owner) -> u64"),
	)
}

func TestLexGluedPunct(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want []string
	}{
		{"a += b", []string{"a", "+=", "b"}},
		{"a && b", []string{"a", "&&", "b"}},
		{"a..=b", []string{"a", "..=", "b"}},
		{"x -> y", []string{"x", "->", "y"}},
		{"std::ops::Add", []string{"std", "::", "ops", "::", "Add"}},
		{"a <<= 1", []string{"a", "<<=", "1"}},
		// Closing angle brackets stay single so generic depth tracking
		// works; shift expressions still read back fine from source text.
		{"a >> 2", []string{"a", ">", ">", "2"}},
		{"Vec<Vec<T>>", []string{"Vec", "<", "Vec", "<", "T", ">", ">"}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, lexTexts(t, tt.text), "lexing %q", tt.text)
	}
}

func TestLexLiterals(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want []token.Kind
	}{
		{`"hello \"there\""`, []token.Kind{token.String}},
		{`r#"raw "quotes""#`, []token.Kind{token.String}},
		{`b"bytes"`, []token.Kind{token.String}},
		{`'x'`, []token.Kind{token.String}},
		{`'\n'`, []token.Kind{token.String}},
		{`'a`, []token.Kind{token.Lifetime}},
		{`'_`, []token.Kind{token.Lifetime}},
		{"1_000", []token.Kind{token.Number}},
		{"0xFF", []token.Kind{token.Number}},
		{"1.5e-3", []token.Kind{token.Number}},
		{"42u64", []token.Kind{token.Number}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, lexKinds(t, tt.text), "lexing %q", tt.text)
	}
}

func TestLexNumberRange(t *testing.T) {
	t.Parallel()

	// The dot after 0 is a range operator, not a fraction.
	assert.Equal(t, []string{"0", "..", "10"}, lexTexts(t, "0..10"))
	assert.Equal(t, []string{"1.5", "..", "2.5"}, lexTexts(t, "1.5..2.5"))
}

func TestLexIdentsThatStartLikeStrings(t *testing.T) {
	t.Parallel()

	// r and b prefix raw and byte strings, but ordinary identifiers also
	// start with them.
	assert.Equal(t, []string{"return", "rhs", "break", "r"}, lexTexts(t, "return rhs break r"))
}

func TestLexComments(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		[]token.Kind{token.Comment, token.Space, token.Ident},
		lexKinds(t, "// a comment\nx"),
	)
	assert.Equal(t,
		[]token.Kind{token.Comment, token.Space, token.Ident},
		lexKinds(t, "/* nested /* comments */ work */ x"),
	)
}

func TestLexLifetimeInGenerics(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		[]string{"<", "'a", ",", "T", ">"},
		lexTexts(t, "<'a, T>"),
	)
}

func TestLexErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
	}{
		{"unterminated string", `"never closed`},
		{"unterminated raw string", `r#"never closed"`},
		{"unterminated block comment", "/* never closed"},
		{"unterminated char", `'+`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := report.NewHandler()
			_, err := Lex(report.NewFile("test.rs", tt.text), h)
			require.Error(t, err)

			var ewp report.ErrorWithPos
			require.ErrorAs(t, err, &ewp)
			assert.Equal(t, report.MalformedSignature, ewp.Kind())
		})
	}
}
