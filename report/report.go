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

// Package report provides the source model and error reporting machinery for
// the expansion engine: files, byte-offset spans, editor-style locations, and
// positioned errors classified by failure kind.
//
// There is no partial-success mode. An expansion either synthesizes every
// combination or reports the first failure and emits nothing, so the Handler
// latches on the first error it sees.
package report

// Handler collects the outcome of a single expansion invocation.
//
// The first error reported wins; once a Handler holds an error, further
// reports are discarded and every stage is expected to bail out.
type Handler struct {
	err ErrorWithPos
}

// NewHandler creates a new Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// HandleErrorf reports a positioned error, unless an error was already
// reported. Returns the error this handler holds afterwards, which callers
// propagate upward.
func (h *Handler) HandleErrorf(kind Kind, span Span, format string, args ...any) error {
	if h.err == nil {
		h.err = Errorf(kind, span, format, args...)
	}
	return h.err
}

// Err returns the error this handler holds, if any.
func (h *Handler) Err() error {
	if h.err == nil {
		return nil
	}
	return h.err
}
