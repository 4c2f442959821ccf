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
	"errors"
	"fmt"
)

// ErrInvalidSource is a sentinel error returned when expansion fails but the
// underlying positioned error has already been surfaced elsewhere.
var ErrInvalidSource = errors.New("expansion failed: invalid operator function source")

// Kind classifies an expansion failure.
//
// Every error produced by this module carries exactly one Kind, so that
// callers (and tests) can match on the failure class without parsing the
// message.
type Kind int

const (
	// MalformedSignature indicates that the annotated function's parameter
	// list, shape annotations, or return type do not match what the requested
	// expansion requires.
	MalformedSignature Kind = 1 + iota

	// UnsupportedMode indicates an expansion mode applied to a signature of
	// the wrong arity, such as a unary mode on a two-operand function.
	UnsupportedMode

	// UnrecognizedTraitTarget indicates a missing or malformed operator trait
	// argument.
	UnrecognizedTraitTarget

	// AmbiguousOperandReference indicates that the function body rebinds an
	// operand name, so the rewriter cannot tell operand accesses apart from
	// accesses to the new binding.
	AmbiguousOperandReference
)

// String implements [fmt.Stringer].
func (k Kind) String() string {
	switch k {
	case MalformedSignature:
		return "malformed signature"
	case UnsupportedMode:
		return "unsupported mode"
	case UnrecognizedTraitTarget:
		return "unrecognized trait target"
	case AmbiguousOperandReference:
		return "ambiguous operand reference"
	default:
		return fmt.Sprintf("report.Kind(%d)", int(k))
	}
}

// ErrorWithPos is an error about an expansion input that includes the source
// location that caused it.
//
// The value of Error() contains both the location and the underlying message.
// The value of Unwrap() is only the underlying error.
type ErrorWithPos interface {
	error

	// Kind returns the failure class for this error.
	Kind() Kind

	// Span returns the source span that caused this error. May be the zero
	// span for errors with no usable location.
	Span() Span

	// Unwrap returns the underlying error, without location information.
	Unwrap() error
}

// Error creates a positioned error from an existing error.
func Error(kind Kind, span Span, err error) ErrorWithPos {
	return errorWithSpan{kind: kind, span: span, underlying: err}
}

// Errorf creates a positioned error from a format string.
func Errorf(kind Kind, span Span, format string, args ...any) ErrorWithPos {
	return Error(kind, span, fmt.Errorf(format, args...))
}

type errorWithSpan struct {
	kind       Kind
	span       Span
	underlying error
}

func (e errorWithSpan) Error() string {
	if e.span.IsZero() {
		return e.underlying.Error()
	}
	return fmt.Sprintf("%s: %v", e.span, e.underlying)
}

func (e errorWithSpan) Kind() Kind {
	return e.kind
}

func (e errorWithSpan) Span() Span {
	return e.span
}

func (e errorWithSpan) Unwrap() error {
	return e.underlying
}

// Is makes every positioned error match [ErrInvalidSource], so callers can
// test for expansion failure without naming a concrete kind.
func (e errorWithSpan) Is(target error) bool {
	return target == ErrInvalidSource
}

var _ ErrorWithPos = errorWithSpan{}
