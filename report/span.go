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

package report

import (
	"fmt"
	"slices"
	"sync"
)

// File is a source file participating in an expansion: a path for diagnostics
// plus the file's full text.
//
// The line-start index is computed lazily, on the first call to [File.Location],
// and is immutable afterwards.
type File struct {
	path, text string

	once  sync.Once
	lines []int // Byte offset of the start of each line.
}

// NewFile creates a new source file.
//
// The path is only used for diagnostics; it does not need to exist on disk.
// Expansion inputs that never came from a file (such as an attribute argument)
// use a synthetic path like "<attr>".
func NewFile(path, text string) *File {
	return &File{path: path, text: text}
}

// Path returns this file's path.
func (f *File) Path() string {
	return f.path
}

// Text returns this file's text.
func (f *File) Text() string {
	return f.text
}

// Location converts a byte offset in this file into a [Location].
//
// Panics if offset is out of bounds.
func (f *File) Location(offset int) Location {
	if offset < 0 || offset > len(f.text) {
		panic(fmt.Sprintf("opimps/report: offset out of bounds: %d not in [0, %d]", offset, len(f.text)))
	}

	f.once.Do(f.indexLines)

	// Find the index of the smallest line start greater than offset.
	line, exact := slices.BinarySearch(f.lines, offset)
	if !exact {
		line--
	}

	start := f.lines[line]
	return Location{
		Offset: offset,
		Line:   line + 1,
		Column: 1 + stringWidth(0, f.text[start:offset]),
	}
}

func (f *File) indexLines() {
	f.lines = append(f.lines, 0)
	for i, r := range f.text {
		if r == '\n' {
			f.lines = append(f.lines, i+1)
		}
	}
}

// Location is a user-visible location within a source file.
type Location struct {
	// The byte offset for this location.
	Offset int

	// The one-indexed line and column for this location. The column is
	// measured in rendered width, not bytes or runes, so that diagnostics
	// agree with what an editor displays.
	Line, Column int
}

// String implements [fmt.Stringer].
func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// Spanner is any type with a [Span].
type Spanner interface {
	// Should return the zero Span to indicate that it does not contribute
	// span information.
	Span() Span
}

// Span is a contiguous byte range within a [File].
type Span struct {
	*File

	// The start and end byte offsets for this span. Start is inclusive,
	// End is exclusive.
	Start, End int
}

// Span implements [Spanner].
func (s Span) Span() Span {
	return s
}

// IsZero returns whether this is the zero span.
func (s Span) IsZero() bool {
	return s.File == nil
}

// Len returns the length of this span, in bytes.
func (s Span) Len() int {
	return s.End - s.Start
}

// Text returns the text corresponding to this span.
func (s Span) Text() string {
	return s.File.Text()[s.Start:s.End]
}

// StartLoc returns the start location for this span.
func (s Span) StartLoc() Location {
	return s.File.Location(s.Start)
}

// EndLoc returns the end location for this span.
func (s Span) EndLoc() Location {
	return s.File.Location(s.End)
}

// String implements [fmt.Stringer].
func (s Span) String() string {
	if s.IsZero() {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%s", s.Path(), s.StartLoc())
}

// Join returns the smallest span that contains every given non-zero span.
//
// All spans must belong to the same file. Returns the zero span if every
// input is zero.
func Join(spans ...Spanner) Span {
	joined := Span{Start: -1}
	for _, sp := range spans {
		if sp == nil {
			continue
		}
		span := sp.Span()
		if span.IsZero() {
			continue
		}

		if joined.File == nil {
			joined.File = span.File
		} else if joined.File != span.File {
			panic("opimps/report: passed spans from different files to Join")
		}

		if joined.Start == -1 || span.Start < joined.Start {
			joined.Start = span.Start
		}
		joined.End = max(joined.End, span.End)
	}

	if joined.File == nil {
		return Span{}
	}
	return joined
}
