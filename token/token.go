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

// Package token provides the token stream consumed by the signature parser
// and the body rewriter.
//
// Tokens are flat values carrying their kind and source span; the stream is a
// plain slice over one function definition. Bodies are treated as opaque
// token sequences: nothing downstream interprets them beyond targeted
// operand-access rewriting, and output text is always reproduced from the
// original source spans rather than re-printed from tokens.
package token

import (
	"fmt"

	"github.com/T101N/opimps/report"
)

// Zero is the zero [Token], used to denote the absence of a token.
var Zero Token

// Token is a lexical element of an expansion input.
type Token struct {
	Kind Kind
	Span report.Span
}

// IsZero returns whether this is the zero token.
func (t Token) IsZero() bool {
	return t.Span.IsZero()
}

// Text returns this token's source text.
func (t Token) Text() string {
	if t.IsZero() {
		return ""
	}
	return t.Span.Text()
}

// Is returns whether this token is a non-skippable token with exactly the
// given text. This is how the parser matches keywords and punctuation, since
// both lex as their source text.
func (t Token) Is(text string) bool {
	return !t.IsZero() && !t.Kind.IsSkippable() && t.Text() == text
}

// String implements [fmt.Stringer].
func (t Token) String() string {
	if t.IsZero() {
		return "Token(<zero>)"
	}
	return fmt.Sprintf("%v(%q)", t.Kind, t.Text())
}

// Stream is the result of lexing one expansion input: every token in source
// order, including skippable ones.
type Stream struct {
	File   *report.File
	Tokens []Token
}

// Cursor returns a new cursor over this stream's tokens.
func (s *Stream) Cursor() *Cursor {
	return NewCursor(s.Tokens)
}
