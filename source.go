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
	"errors"
	"fmt"
	"strings"

	"github.com/T101N/opimps/expand"
	"github.com/T101N/opimps/parser"
	"github.com/T101N/opimps/report"
	"github.com/T101N/opimps/token"
)

// attrPath is the virtual file path used for an annotation's trait argument.
const attrPath = "<attr>"

// ProcessSource expands every #[opimps::...] annotation in text and returns
// the text with each annotated function replaced by its expansion fragment.
//
// This is the batch counterpart of the per-annotation entry points, standing
// in for a host compiler's macro-expansion pass: annotations are located,
// dispatched by marker name, and replaced independently, in source order.
// Text without annotations is returned unchanged. The first failing
// annotation aborts the whole file.
func ProcessSource(path, text string) (string, error) {
	h := report.NewHandler()
	stream, err := parser.Lex(report.NewFile(path, text), h)
	if err != nil {
		return "", err
	}

	cursor := stream.Cursor()
	var out strings.Builder
	copied := 0 // Byte offset of the first byte not yet copied to out.

	for !cursor.Done() {
		mark := cursor.Mark()
		site, ok := matchAnnotation(cursor)
		if !ok {
			cursor.Rewind(mark)
			cursor.Next()
			continue
		}

		mode, ok := expand.ModeForMarker(site.marker)
		if !ok {
			return "", report.Errorf(
				report.UnsupportedMode, site.markerSpan,
				"unknown expansion marker `%s`", site.marker,
			)
		}

		end, ok := matchFunction(cursor)
		if !ok {
			return "", report.Errorf(
				report.MalformedSignature, site.span,
				"expected a function definition after `#[opimps::%s(...)]`", site.marker,
			)
		}

		fragment, err := expand.Expand(expand.Invocation{
			Mode:      mode,
			TraitPath: attrPath,
			TraitText: site.args,
			FuncPath:  path,
			FuncText:  text[site.span.End:end],
		})
		if err != nil {
			return "", anchor(err, site, stream.File)
		}

		out.WriteString(text[copied:site.span.Start])
		out.WriteString(fragment)
		copied = end
	}

	out.WriteString(text[copied:])
	return out.String(), nil
}

// annotationSite describes one matched #[opimps::marker(args)] annotation.
type annotationSite struct {
	marker     string
	markerSpan report.Span
	args       string
	argsSpan   report.Span // The args text within the enclosing file.
	span       report.Span // The whole annotation, # through ].
}

// anchor rebases a positioned expansion error onto the enclosing file.
//
// Expansion parses the trait argument and the extracted function as virtual
// files of their own, so their spans are relative to those substrings.
// Shifted by each substring's position in the enclosing file, they point at
// the real source line.
func anchor(err error, site annotationSite, file *report.File) error {
	var ewp report.ErrorWithPos
	if !errors.As(err, &ewp) {
		return fmt.Errorf("%s: %w", site.span, err)
	}

	span := ewp.Span()
	switch {
	case !span.IsZero() && span.Path() == file.Path():
		// The function text begins just past the annotation's closing bracket.
		span = report.Span{File: file, Start: site.span.End + span.Start, End: site.span.End + span.End}
	case !span.IsZero() && span.Path() == attrPath && !site.argsSpan.IsZero():
		span = report.Span{File: file, Start: site.argsSpan.Start + span.Start, End: site.argsSpan.Start + span.End}
	default:
		span = site.span
	}
	return report.Error(ewp.Kind(), span, ewp.Unwrap())
}

// matchAnnotation matches an expansion annotation at the cursor. On a match
// the cursor is left just past the closing ]; otherwise the caller rewinds.
func matchAnnotation(cursor *token.Cursor) (annotationSite, bool) {
	var site annotationSite

	hash := cursor.Next()
	if !hash.Is("#") || !cursor.Next().Is("[") || !cursor.Next().Is("opimps") || !cursor.Next().Is("::") {
		return site, false
	}

	marker := cursor.Next()
	if marker.Kind != token.Ident || !cursor.Next().Is("(") {
		return site, false
	}

	depth := 1
	var first, last token.Token
	for depth > 0 {
		tok := cursor.Next()
		if tok.IsZero() {
			return site, false
		}
		switch {
		case tok.Is("("):
			depth++
		case tok.Is(")"):
			depth--
			if depth == 0 {
				continue
			}
		}
		if depth > 0 {
			if first.IsZero() {
				first = tok
			}
			last = tok
		}
	}

	closer := cursor.Next()
	if !closer.Is("]") {
		return site, false
	}

	site.marker = marker.Text()
	site.markerSpan = marker.Span
	if !first.IsZero() {
		site.argsSpan = report.Join(first.Span, last.Span)
		site.args = site.argsSpan.Text()
	}
	site.span = report.Join(hash.Span, closer.Span)
	return site, true
}

// matchFunction advances the cursor past the function definition that
// follows an annotation (attributes and visibility included) and returns the
// byte offset just past the body's closing brace.
func matchFunction(cursor *token.Cursor) (end int, ok bool) {
	// Everything before the body's opening brace is signature material the
	// expansion's own parser will validate; here it only needs to be
	// traversed. Balanced delimiters are skipped so that `{` inside generic
	// defaults or attribute arguments cannot be mistaken for the body.
	for {
		tok := cursor.Next()
		switch {
		case tok.IsZero():
			return 0, false
		case tok.Is("("), tok.Is("["):
			depth := 1
			for depth > 0 {
				inner := cursor.Next()
				if inner.IsZero() {
					return 0, false
				}
				switch {
				case inner.Is("("), inner.Is("["):
					depth++
				case inner.Is(")"), inner.Is("]"):
					depth--
				}
			}
		case tok.Is("{"):
			depth := 1
			for depth > 0 {
				inner := cursor.Next()
				if inner.IsZero() {
					return 0, false
				}
				switch {
				case inner.Is("{"):
					depth++
				case inner.Is("}"):
					depth--
					if depth == 0 {
						return inner.Span.End, true
					}
				}
			}
		}
	}
}
