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

// Package parser turns the text of one annotated operator function into its
// signature model.
//
// Parsing is strictly syntactic: types, generics, and bound clauses are
// captured as verbatim source text, and the body is captured as an opaque
// token sequence. Nothing here consults the host language's type system.
package parser

import (
	"errors"
	"strings"

	"github.com/T101N/opimps/ast"
	"github.com/T101N/opimps/report"
	"github.com/T101N/opimps/token"
)

// Parse parses the text of file as one function definition and returns its
// signature model. Any failure is reported to h and returned.
func Parse(file *report.File, h *report.Handler) (*ast.FuncDecl, error) {
	stream, err := Lex(file, h)
	if err != nil {
		return nil, err
	}

	p := &funcParser{file: file, cursor: stream.Cursor(), handler: h}
	decl := p.parse()
	if err := h.Err(); err != nil {
		return nil, err
	}
	return decl, nil
}

// ParseTrait parses the annotation's argument as an operator trait path,
// such as std::ops::Add or a locally defined Trait<T>.
func ParseTrait(file *report.File, h *report.Handler) (*ast.TraitTarget, error) {
	fail := func(span report.Span, format string, args ...any) (*ast.TraitTarget, error) {
		return nil, h.HandleErrorf(report.UnrecognizedTraitTarget, span, format, args...)
	}

	stream, err := Lex(file, h)
	if err != nil {
		// Re-classify: garbage in the attribute argument is a trait target
		// problem, not a signature problem. The handler has already latched
		// the lex error, so the replacement is built directly.
		var ewp report.ErrorWithPos
		if errors.As(err, &ewp) && ewp.Kind() == report.MalformedSignature {
			return nil, report.Errorf(report.UnrecognizedTraitTarget, ewp.Span(), "malformed operator trait argument")
		}
		return nil, err
	}

	cursor := stream.Cursor()
	wholeFile := report.Span{File: file, Start: 0, End: len(file.Text())}

	first := cursor.Next()
	if first.IsZero() {
		return fail(wholeFile, "operator trait argument is required")
	}
	if first.Kind != token.Ident {
		return fail(first.Span, "expected an operator trait path, found %s", describe(first))
	}

	last := first
	for cursor.Peek().Is("::") {
		cursor.Next()
		seg := cursor.Next()
		if seg.Kind != token.Ident {
			return fail(seg.Span, "expected a path segment after `::`")
		}
		last = seg
	}

	if cursor.Peek().Is("<") {
		end, ok := matchAngles(cursor)
		if !ok {
			return fail(report.Join(first.Span, last.Span), "unclosed generic argument list in trait path")
		}
		last = end
	}

	if trailing := cursor.Next(); !trailing.IsZero() {
		return fail(trailing.Span, "unexpected %s after trait path", describe(trailing))
	}

	span := report.Join(first.Span, last.Span)
	return &ast.TraitTarget{Path: span.Text(), Span: span}, nil
}

type funcParser struct {
	file    *report.File
	cursor  *token.Cursor
	handler *report.Handler
}

func (p *funcParser) fail(span report.Span, format string, args ...any) *ast.FuncDecl {
	p.handler.HandleErrorf(report.MalformedSignature, span, format, args...)
	return nil
}

func (p *funcParser) eof() report.Span {
	n := len(p.file.Text())
	return report.Span{File: p.file, Start: n, End: n}
}

func (p *funcParser) parse() *ast.FuncDecl {
	decl := &ast.FuncDecl{}

	p.parseAttrs(decl)

	// An optional visibility marker is accepted and dropped; synthesized
	// trait implementations carry no visibility of their own.
	if p.cursor.Peek().Is("pub") {
		p.cursor.Next()
		if p.cursor.Peek().Is("(") {
			if _, ok := matchDelims(p.cursor, "(", ")"); !ok {
				return p.fail(p.eof(), "unclosed visibility argument")
			}
		}
	}

	kw := p.cursor.Next()
	if !kw.Is("fn") {
		if kw.IsZero() {
			return p.fail(p.eof(), "expected a function definition")
		}
		return p.fail(kw.Span, "expected `fn`, found %s", describe(kw))
	}

	name := p.cursor.Next()
	if name.Kind != token.Ident {
		return p.fail(orEOF(p, name), "expected a function name")
	}
	decl.Name = name.Text()
	decl.NameSpan = name.Span

	if p.cursor.Peek().Is("<") {
		start := p.cursor.Peek()
		end, ok := matchAngles(p.cursor)
		if !ok {
			return p.fail(start.Span, "unclosed generic parameter list")
		}
		decl.TypeParams.Generics = report.Join(start.Span, end.Span).Text()
	}

	if !p.parseParams(decl) {
		return nil
	}

	if p.cursor.Peek().Is("->") {
		arrow := p.cursor.Next()
		output := p.typeTextUntil(func(t token.Token) bool {
			return t.Is("where") || t.Is("{")
		})
		if output == "" {
			return p.fail(arrow.Span, "expected a return type after `->`")
		}
		decl.Output = output
	}

	if p.cursor.Peek().Is("where") {
		start := p.cursor.Peek()
		decl.TypeParams.Where = p.typeTextUntil(func(t token.Token) bool { return t.Is("{") })
		if p.cursor.Peek().IsZero() {
			return p.fail(start.Span, "expected a function body after the where clause")
		}
	}

	if !p.parseBody(decl) {
		return nil
	}

	if trailing := p.cursor.Next(); !trailing.IsZero() {
		return p.fail(trailing.Span, "unexpected %s after function body", describe(trailing))
	}

	return decl
}

// parseAttrs collects leading doc comments and #[...] attributes. Ordinary
// comments above the function are not attributes and are dropped.
func (p *funcParser) parseAttrs(decl *ast.FuncDecl) {
	for {
		raw := p.cursor.PeekRaw()
		switch {
		case raw.Kind == token.Space:
			p.cursor.NextRaw()

		case raw.Kind == token.Comment:
			p.cursor.NextRaw()
			text := raw.Text()
			if strings.HasPrefix(text, "///") || strings.HasPrefix(text, "//!") ||
				strings.HasPrefix(text, "/**") || strings.HasPrefix(text, "/*!") {
				decl.Attrs = append(decl.Attrs, ast.Attr{Text: text, IsDoc: true})
			}

		case raw.Is("#"):
			hash := p.cursor.Next()
			if !p.cursor.Peek().Is("[") {
				p.fail(hash.Span, "expected `[` after `#`")
				return
			}
			end, ok := matchDelims(p.cursor, "[", "]")
			if !ok {
				p.fail(hash.Span, "unclosed attribute")
				return
			}
			decl.Attrs = append(decl.Attrs, ast.Attr{
				Text: report.Join(hash.Span, end.Span).Text(),
			})

		default:
			return
		}
	}
}

func (p *funcParser) parseParams(decl *ast.FuncDecl) bool {
	open := p.cursor.Next()
	if !open.Is("(") {
		p.fail(orEOF(p, open), "expected a parameter list")
		return false
	}

	for !p.cursor.Peek().Is(")") {
		if p.cursor.Peek().IsZero() {
			p.fail(open.Span, "unclosed parameter list")
			return false
		}
		if len(decl.Operands) == 2 {
			p.fail(p.cursor.Peek().Span, "operator functions take at most two parameters (self: T1, rhs: T2)")
			return false
		}
		if !p.parseParam(decl) {
			return false
		}
		if p.cursor.Peek().Is(",") {
			p.cursor.Next()
		}
	}
	p.cursor.Next() // The closing paren.

	if len(decl.Operands) == 0 {
		p.fail(report.Join(open.Span, p.eof()), "function definition requires a first argument of the form `self: T`")
		return false
	}
	if decl.Operands[0].Name != "self" {
		p.fail(decl.Operands[0].NameSpan, "the first parameter must be named `self`, found %s", quote(decl.Operands[0].Name))
		return false
	}
	return true
}

func (p *funcParser) parseParam(decl *ast.FuncDecl) bool {
	name := p.cursor.Next()
	if name.Kind != token.Ident {
		p.fail(orEOF(p, name), "expected a parameter name")
		return false
	}
	if colon := p.cursor.Next(); !colon.Is(":") {
		p.fail(orEOF(p, colon), "expected `:` after parameter name")
		return false
	}

	spec := ast.OperandSpec{Name: name.Text(), NameSpan: name.Span, Shape: ast.Value}

	// The shape annotation is the leading reference marker, with an optional
	// lifetime, which is stripped off the base type. && (one token) is two
	// levels of indirection and is not a shape we generate for.
	switch peek := p.cursor.Peek(); {
	case peek.Is("&&"):
		p.fail(peek.Span, "unrecognized shape annotation %s on parameter %s", quote("&&"), quote(spec.Name))
		return false
	case peek.Is("&"):
		p.cursor.Next()
		if p.cursor.Peek().Kind == token.Lifetime {
			p.cursor.Next()
		}
		if p.cursor.Peek().Is("mut") {
			p.cursor.Next()
			spec.Shape = ast.MutRef
		} else {
			spec.Shape = ast.Ref
		}
	}

	spec.Type = p.typeTextUntil(func(t token.Token) bool {
		return t.Is(",") || t.Is(")")
	})
	if spec.Type == "" {
		p.fail(orEOF(p, p.cursor.Peek()), "expected a type for parameter %s", quote(spec.Name))
		return false
	}
	spec.Primitive = ast.IsPrimitive(spec.Type)

	decl.Operands = append(decl.Operands, spec)
	return true
}

func (p *funcParser) parseBody(decl *ast.FuncDecl) bool {
	open := p.cursor.Next()
	if !open.Is("{") {
		p.fail(orEOF(p, open), "expected a function body")
		return false
	}

	depth := 1
	var body []token.Token
	for {
		tok := p.cursor.Next()
		if tok.IsZero() {
			p.fail(open.Span, "unclosed function body")
			return false
		}
		switch {
		case tok.Is("{"):
			depth++
		case tok.Is("}"):
			depth--
			if depth == 0 {
				decl.BodySpan = report.Span{File: p.file, Start: open.Span.End, End: tok.Span.Start}
				decl.Body = body
				return true
			}
		}
		body = append(body, tok)
	}
}

// typeTextUntil captures verbatim source text token by token until stop
// matches at bracket depth zero, and returns it with surrounding space
// trimmed. Returns "" if no tokens were captured.
func (p *funcParser) typeTextUntil(stop func(token.Token) bool) string {
	var first, last token.Token
	depth := 0
	for {
		tok := p.cursor.Peek()
		if tok.IsZero() || (depth == 0 && stop(tok)) {
			break
		}
		p.cursor.Next()

		switch {
		case tok.Is("(") || tok.Is("[") || tok.Is("<"):
			depth++
		case tok.Is(")") || tok.Is("]") || tok.Is(">"):
			depth--
		}

		if first.IsZero() {
			first = tok
		}
		last = tok
	}

	if first.IsZero() {
		return ""
	}
	return report.Join(first.Span, last.Span).Text()
}

// matchAngles consumes a balanced <...> group, returning the closing token.
// The cursor must be positioned at the opening angle bracket.
func matchAngles(cursor *token.Cursor) (token.Token, bool) {
	return matchDelims(cursor, "<", ">")
}

// matchDelims consumes a balanced delimiter group, returning the closing
// token. The cursor must be positioned at the opening delimiter.
func matchDelims(cursor *token.Cursor, open, close string) (token.Token, bool) {
	depth := 0
	for {
		tok := cursor.Next()
		if tok.IsZero() {
			return token.Zero, false
		}
		switch {
		case tok.Is(open):
			depth++
		case tok.Is(close):
			depth--
			if depth == 0 {
				return tok, true
			}
		}
	}
}

// orEOF substitutes the end of input for the zero token, so failure messages
// always have a span.
func orEOF(p *funcParser, tok token.Token) report.Span {
	if tok.IsZero() {
		return p.eof()
	}
	return tok.Span
}

// describe renders a token for use in a failure message.
func describe(tok token.Token) string {
	switch tok.Kind {
	case token.Ident, token.Punct, token.Lifetime:
		return quote(tok.Text())
	case token.Number:
		return "a number"
	case token.String:
		return "a string"
	default:
		return quote(tok.Text())
	}
}

func quote(text string) string {
	return "`" + text + "`"
}
