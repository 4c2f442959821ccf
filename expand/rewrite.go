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
	"sort"
	"strings"

	"github.com/T101N/opimps/ast"
	"github.com/T101N/opimps/report"
	"github.com/T101N/opimps/token"
)

// Rewrite produces the body text for one shape combination.
//
// Rewriting is purely syntactic and token-local: every token other than a
// recognized operand access is reproduced verbatim, spacing and comments
// included, by editing the original body text in place. For an operand whose
// target shape differs from its declared shape, accesses are corrected:
//
//   - owned, accessed as borrowed: bare uses gain a dereference (`x` → `*x`),
//     and an address-of collapses (`&x` → `x`);
//   - borrowed, accessed as owned: dereferences collapse (`*x` → `x`), and
//     bare uses gain an address-of (`x` → `&x`);
//   - field, method, index, and path accesses (`x.f`, `x.m()`, `x[i]`,
//     `x::`) need no correction in either direction.
//
// A combination equal to the declared shapes yields the body unchanged.
func Rewrite(decl *ast.FuncDecl, combo ShapeCombination, h *report.Handler) (string, error) {
	r := rewriter{
		decl:     decl,
		handler:  h,
		shadowed: make(map[string]bool),
	}

	for i := range decl.Operands {
		r.targets.names = append(r.targets.names, decl.Operands[i].Name)
		r.targets.declared = append(r.targets.declared, decl.Operands[i].Shape)
		r.targets.target = append(r.targets.target, combo[i])
	}

	if err := r.scan(); err != nil {
		return "", err
	}
	return r.apply(), nil
}

type rewriter struct {
	decl    *ast.FuncDecl
	handler *report.Handler

	targets struct {
		names    []string
		declared []ast.Shape
		target   []ast.Shape
	}

	// Operand names rebound by the body. Once a name is rebound, later uses
	// cannot be classified as operand accesses by tokens alone.
	shadowed map[string]bool

	edits []edit
}

// edit replaces the byte range [start, end) of the input with text.
type edit struct {
	start, end int
	text       string
}

// needsRewrite returns whether an operand access must change between the two
// shapes. Both reference shapes read the same way, so only crossing the
// owned/borrowed boundary rewrites.
func needsRewrite(declared, target ast.Shape) bool {
	return (declared == ast.Value) != (target == ast.Value)
}

func (r *rewriter) scan() error {
	body := r.decl.Body
	var delims []string
	for i := range body {
		tok := body[i]
		if tok.Kind == token.Punct {
			switch text := tok.Text(); text {
			case "(", "[", "{":
				delims = append(delims, text)
			case ")", "]", "}":
				if len(delims) > 0 {
					delims = delims[:len(delims)-1]
				}
			}
			continue
		}
		if tok.Kind != token.Ident {
			continue
		}

		op := -1
		for j, name := range r.targets.names {
			if tok.Text() == name {
				op = j
				break
			}
		}
		if op == -1 {
			continue
		}

		prev, prev2 := neighborBefore(body, i)
		next := neighborAfter(body, i)

		// A let, for, or closure binding rebinds the name; the binding
		// occurrence itself is not an operand access. A | preceded by the
		// end of an expression is bitwise-or, not a closure opening.
		if prev.Is("let") || prev.Is("for") ||
			(prev.Is("|") && !endsExpression(prev2)) ||
			(prev.Is("mut") && (prev2.Is("let") || prev2.Is("|"))) {
			r.shadowed[tok.Text()] = true
			continue
		}

		declared, target := r.targets.declared[op], r.targets.target[op]
		if !needsRewrite(declared, target) {
			continue
		}

		if r.shadowed[tok.Text()] {
			return r.handler.HandleErrorf(
				report.AmbiguousOperandReference, tok.Span,
				"`%s` is rebound earlier in the body, so this use cannot be rewritten for the %v operand shape",
				tok.Text(), target,
			)
		}

		// Field, method, index, and path accesses are shape-independent:
		// each auto-derefs its receiver.
		if next.Is(".") || next.Is("::") || next.Is("(") || next.Is("[") {
			continue
		}

		// Inside a brace group, a bare operand bounded by { , } reads two
		// ways: struct literal shorthand or a block yielding the operand.
		// Tokens alone cannot tell them apart, so the invocation refuses to
		// guess rather than emit a wrong rewrite.
		if len(delims) > 0 && delims[len(delims)-1] == "{" &&
			(prev.Is("{") || prev.Is(",")) && (next.Is(",") || next.Is("}")) {
			return r.handler.HandleErrorf(
				report.AmbiguousOperandReference, tok.Span,
				"`%s` may be struct literal shorthand here, so this use cannot be rewritten for the %v operand shape",
				tok.Text(), target,
			)
		}

		if declared == ast.Value {
			r.toBorrowed(tok, prev, prev2, next, target)
		} else {
			r.toOwned(tok, prev, prev2, next)
		}
	}
	return nil
}

// toBorrowed corrects an access to an operand declared by value that the
// target combination passes by reference.
//
// &, &&, and * each read two ways: as a prefix operator on the operand, or
// as a binary operator whose right side happens to be the operand. The token
// before them disambiguates: a binary operator can only follow the end of an
// expression.
func (r *rewriter) toBorrowed(tok, prev, prev2, next token.Token, target ast.Shape) {
	switch {
	case prev.Is("&") && !endsExpression(prev2):
		// &x asked for a borrow; x already is one.
		r.remove(prev)

	case prev.Is("mut") && prev2.Is("&"):
		// &mut x collapses only when the operand really is a mutable
		// reference now; a shared reference cannot supply it, and the host
		// compiler is the right place for that error.
		if target == ast.MutRef {
			r.edits = append(r.edits, edit{start: r.rel(prev2.Span.Start), end: r.rel(tok.Span.Start)})
		}

	case prev.Is("&&") && !endsExpression(prev2):
		// A double borrow loses one level.
		r.edits = append(r.edits, edit{start: r.rel(prev.Span.Start), end: r.rel(prev.Span.End), text: "&"})

	case prev.Is("*") && !endsExpression(prev2):
		// An explicit dereference of the owned operand (custom Deref); out
		// of scope for token-local correction.

	default:
		r.insertBefore(tok, "*", next)
	}
}

// toOwned corrects an access to an operand declared by reference that the
// target combination passes by value.
func (r *rewriter) toOwned(tok, prev, prev2, next token.Token) {
	switch {
	case prev.Is("*") && !endsExpression(prev2):
		// *x dereferenced the borrow; x is the value itself now.
		r.remove(prev)

	case prev.Is("&") && !endsExpression(prev2):
		// &x produced a double borrow before and a single one now; both
		// auto-deref the same way at the use site.

	default:
		r.insertBefore(tok, "&", next)
	}
}

func (r *rewriter) rel(offset int) int {
	return offset - r.decl.BodySpan.Start
}

func (r *rewriter) remove(tok token.Token) {
	r.edits = append(r.edits, edit{start: r.rel(tok.Span.Start), end: r.rel(tok.Span.End)})
}

// insertBefore prefixes tok with op, parenthesizing when the neighboring
// token would otherwise bind tighter than the inserted prefix operator.
func (r *rewriter) insertBefore(tok token.Token, op string, next token.Token) {
	if next.Is("?") {
		r.edits = append(r.edits,
			edit{start: r.rel(tok.Span.Start), end: r.rel(tok.Span.Start), text: "(" + op},
			edit{start: r.rel(tok.Span.End), end: r.rel(tok.Span.End), text: ")"},
		)
		return
	}
	r.edits = append(r.edits, edit{start: r.rel(tok.Span.Start), end: r.rel(tok.Span.Start), text: op})
}

// apply replays the collected edits over the original body text.
func (r *rewriter) apply() string {
	text := r.decl.BodySpan.Text()
	if len(r.edits) == 0 {
		return text
	}

	edits := make([]edit, len(r.edits))
	copy(edits, r.edits)
	sort.Slice(edits, func(i, j int) bool { return edits[i].start < edits[j].start })

	var out strings.Builder
	prev := 0
	for _, e := range edits {
		out.WriteString(text[prev:e.start])
		out.WriteString(e.text)
		prev = e.end
	}
	out.WriteString(text[prev:])
	return out.String()
}

// neighborBefore returns the two significant tokens before index i, nearest
// first.
func neighborBefore(body []token.Token, i int) (prev, prev2 token.Token) {
	if i > 0 {
		prev = body[i-1]
	}
	if i > 1 {
		prev2 = body[i-2]
	}
	return prev, prev2
}

// neighborAfter returns the significant token after index i.
func neighborAfter(body []token.Token, i int) token.Token {
	if i+1 < len(body) {
		return body[i+1]
	}
	return token.Zero
}

// endsExpression returns whether tok can end an expression, which is how a
// following && is classified as "logical and" rather than a double borrow.
func endsExpression(tok token.Token) bool {
	switch tok.Kind {
	case token.Ident:
		// Keywords like return or if start expressions rather than end them,
		// but a conservative misread here only leaves an extra borrow for
		// the host compiler's auto-deref to absorb.
		return !strings.Contains(" return if else match while loop break continue let in ", " "+tok.Text()+" ")
	case token.Number, token.String:
		return true
	case token.Punct:
		return tok.Is(")") || tok.Is("]") || tok.Is("}")
	default:
		return false
	}
}
