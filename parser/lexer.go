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
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/T101N/opimps/report"
	"github.com/T101N/opimps/token"
)

// Lex performs lexical analysis on file and returns the resulting token
// stream. Any failure is reported to h and returned.
func Lex(file *report.File, h *report.Handler) (*token.Stream, error) {
	l := &lexer{file: file, text: file.Text(), handler: h}
	l.lex()
	if err := h.Err(); err != nil {
		return nil, err
	}
	return &token.Stream{File: file, Tokens: l.tokens}, nil
}

// lexer scans one expansion input into tokens.
//
// The token set is the host language's: identifiers, numeric literals,
// strings (including raw and byte forms), character and lifetime quotes,
// line and nested block comments, and punctuation.
type lexer struct {
	file    *report.File
	text    string
	cursor  int
	tokens  []token.Token
	handler *report.Handler
}

// puncts are the multi-rune punctuation tokens, longest first so that
// maximal munch falls out of a linear scan. << and >> are deliberately
// absent: keeping closing angle brackets as single tokens makes generic
// argument depth tracking context-free, and shift expressions read back
// verbatim from the source text anyway.
var puncts = []string{
	"<<=", ">>=", "..=", "...",
	"->", "=>", "::", "==", "!=", "<=", ">=", "&&", "||",
	"+=", "-=", "*=", "/=", "%=", "^=", "&=", "|=", "..",
}

func (l *lexer) lex() {
	var prevCursor int
	for !l.done() {
		start := l.cursor
		r := l.peek()

		if len(l.tokens) > 0 && prevCursor == l.cursor {
			panic(fmt.Sprintf("opimps/parser: lexer failed to make progress at offset %d; this is a bug in opimps", l.cursor))
		}
		prevCursor = l.cursor

		switch {
		case unicode.In(r, unicode.Pattern_White_Space):
			l.takeWhile(func(r rune) bool {
				return unicode.In(r, unicode.Pattern_White_Space)
			})
			l.push(start, token.Space)

		case strings.HasPrefix(l.rest(), "//"):
			l.seekLineEnd()
			l.push(start, token.Comment)

		case strings.HasPrefix(l.rest(), "/*"):
			if !l.seekBlockCommentEnd() {
				l.errorf(start, "unterminated block comment")
				return
			}
			l.push(start, token.Comment)

		case r == '_' || unicode.IsLetter(r):
			if (r == 'r' || r == 'b') && l.tryString(start) {
				continue
			}
			l.takeWhile(isIdentContinue)
			l.push(start, token.Ident)

		case unicode.IsDigit(r):
			l.lexNumber()
			l.push(start, token.Number)

		case r == '"':
			if !l.lexString() {
				l.errorf(start, "unterminated string literal")
				return
			}
			l.push(start, token.String)

		case r == '\'':
			l.lexQuote(start)

		default:
			if l.lexPunct() {
				l.push(start, token.Punct)
				continue
			}
			l.pop()
			l.push(start, token.Unrecognized)
		}
	}
}

func (l *lexer) done() bool {
	return l.cursor >= len(l.text)
}

func (l *lexer) rest() string {
	return l.text[l.cursor:]
}

func (l *lexer) peek() rune {
	r, _ := utf8.DecodeRuneInString(l.rest())
	return r
}

func (l *lexer) pop() rune {
	r, sz := utf8.DecodeRuneInString(l.rest())
	l.cursor += sz
	return r
}

func (l *lexer) takeWhile(p func(rune) bool) {
	for !l.done() && p(l.peek()) {
		l.pop()
	}
}

func (l *lexer) push(start int, kind token.Kind) {
	l.tokens = append(l.tokens, token.Token{
		Kind: kind,
		Span: report.Span{File: l.file, Start: start, End: l.cursor},
	})
}

func (l *lexer) errorf(offset int, format string, args ...any) {
	span := report.Span{File: l.file, Start: offset, End: min(offset+1, len(l.text))}
	l.handler.HandleErrorf(report.MalformedSignature, span, format, args...)
}

// seekLineEnd advances to just before the next newline, or to EOF.
func (l *lexer) seekLineEnd() {
	if i := strings.IndexByte(l.rest(), '\n'); i != -1 {
		l.cursor += i
	} else {
		l.cursor = len(l.text)
	}
}

// seekBlockCommentEnd advances past a block comment, honoring nesting.
// Returns false at EOF without a close.
func (l *lexer) seekBlockCommentEnd() bool {
	depth := 0
	for !l.done() {
		switch {
		case strings.HasPrefix(l.rest(), "/*"):
			depth++
			l.cursor += 2
		case strings.HasPrefix(l.rest(), "*/"):
			depth--
			l.cursor += 2
			if depth == 0 {
				return true
			}
		default:
			l.pop()
		}
	}
	return false
}

// lexNumber scans a numeric literal: an integer in any base, a float with
// optional exponent, and any type suffix, with _ separators throughout.
// A trailing `..` is never consumed, so range expressions lex correctly.
func (l *lexer) lexNumber() {
	digits := func(r rune) bool {
		return r == '_' || unicode.IsDigit(r) || unicode.IsLetter(r)
	}

	if strings.HasPrefix(l.rest(), "0x") || strings.HasPrefix(l.rest(), "0o") || strings.HasPrefix(l.rest(), "0b") {
		l.cursor += 2
		l.takeWhile(digits)
		return
	}

	l.takeWhile(digits)

	// A fractional part only counts if the dot is not a range operator and
	// is followed by a digit, so that 0..10 and 1.max(2) stay intact.
	if rest := l.rest(); strings.HasPrefix(rest, ".") && !strings.HasPrefix(rest, "..") {
		next, _ := utf8.DecodeRuneInString(rest[1:])
		if unicode.IsDigit(next) {
			l.pop()
			l.takeWhile(digits)
		}
	}

	// An exponent sign was stopped on by the digit scan above only if the
	// previous rune was e or E; pick up the signed part.
	if rest := l.rest(); strings.HasPrefix(rest, "+") || strings.HasPrefix(rest, "-") {
		if prev, _ := utf8.DecodeLastRuneInString(l.text[:l.cursor]); prev == 'e' || prev == 'E' {
			l.pop()
			l.takeWhile(digits)
		}
	}
}

// lexString scans a quoted string starting at the cursor, honoring escapes.
// Returns false at EOF without a closing quote.
func (l *lexer) lexString() bool {
	l.pop() // The opening quote.
	for !l.done() {
		switch l.pop() {
		case '\\':
			if !l.done() {
				l.pop()
			}
		case '"':
			return true
		}
	}
	return false
}

// tryString attempts to scan a raw or byte string (r"", r#""#, b"", br#""#)
// from start. Returns false, leaving the cursor untouched, if the text at
// the cursor is an ordinary identifier that merely starts with r or b.
func (l *lexer) tryString(start int) bool {
	mark := l.cursor
	l.takeWhile(func(r rune) bool { return r == 'r' || r == 'b' })
	if l.cursor-mark > 2 {
		l.cursor = mark
		return false
	}

	hashes := 0
	for strings.HasPrefix(l.rest(), "#") {
		hashes++
		l.cursor++
	}

	if !strings.HasPrefix(l.rest(), `"`) {
		l.cursor = mark
		return false
	}

	if hashes == 0 {
		if !l.lexString() {
			l.errorf(start, "unterminated string literal")
			return true
		}
	} else {
		l.pop() // The opening quote.
		closer := `"` + strings.Repeat("#", hashes)
		if i := strings.Index(l.rest(), closer); i != -1 {
			l.cursor += i + len(closer)
		} else {
			l.cursor = len(l.text)
			l.errorf(start, "unterminated string literal")
			return true
		}
	}

	l.push(start, token.String)
	return true
}

// lexQuote scans either a lifetime or a character literal, which both start
// with a single quote.
func (l *lexer) lexQuote(start int) {
	l.pop() // The quote.

	r := l.peek()
	if r == '_' || unicode.IsLetter(r) {
		mark := l.cursor
		l.takeWhile(isIdentContinue)
		// 'a is a lifetime; 'a' is a character literal.
		if !strings.HasPrefix(l.rest(), "'") {
			l.push(start, token.Lifetime)
			return
		}
		l.cursor = mark
	}

	if l.peek() == '\\' {
		l.pop()
	}
	if !l.done() {
		l.pop()
	}
	if strings.HasPrefix(l.rest(), "'") {
		l.pop()
		l.push(start, token.String)
		return
	}
	l.errorf(start, "unterminated character literal")
}

// lexPunct scans one punctuation token, preferring the longest glued form.
// Returns false if the rune at the cursor is not punctuation we recognize.
func (l *lexer) lexPunct() bool {
	for _, p := range puncts {
		if strings.HasPrefix(l.rest(), p) {
			l.cursor += len(p)
			return true
		}
	}
	if strings.ContainsRune("+-*/%^&|!=<>.,;:#?@()[]{}$~", l.peek()) {
		l.pop()
		return true
	}
	return false
}

func isIdentContinue(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
