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

package token

import "fmt"

const (
	Unrecognized Kind = iota // Unrecognized garbage in the input.

	Space    // Contiguous non-comment whitespace.
	Comment  // A single line or block comment, including doc comments.
	Ident    // An identifier or keyword.
	Number   // A numeric literal, including any suffix.
	String   // A string, raw string, byte string, or character literal.
	Lifetime // A lifetime such as 'a, or the placeholder '_.
	Punct    // Punctuation, possibly multi-rune (->, ::, &&, ...).
)

// Kind identifies what kind of token a particular [Token] is.
type Kind byte

// IsSkippable returns whether this is a token that should be skipped during
// syntactic analysis.
//
// Skippable tokens still matter to emission: bodies are reproduced from the
// original text, so comments and spacing inside them survive verbatim.
func (k Kind) IsSkippable() bool {
	return k == Space || k == Comment || k == Unrecognized
}

// String implements [fmt.Stringer].
func (k Kind) String() string {
	switch k {
	case Unrecognized:
		return "Unrecognized"
	case Space:
		return "Space"
	case Comment:
		return "Comment"
	case Ident:
		return "Ident"
	case Number:
		return "Number"
	case String:
		return "String"
	case Lifetime:
		return "Lifetime"
	case Punct:
		return "Punct"
	default:
		return fmt.Sprintf("token.Kind(%d)", int(k))
	}
}
