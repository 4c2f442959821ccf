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

// Cursor is an iterator-like construct for walking a token stream. Unlike a
// plain range loop, it supports peeking and rewinding.
//
// Next, Peek, and Done skip skippable tokens; the Raw variants do not.
type Cursor struct {
	tokens []Token
	idx    int
}

// CursorMark is the return value of [Cursor.Mark], which marks a position on
// a Cursor for rewinding to.
type CursorMark struct {
	owner *Cursor
	idx   int
}

// NewCursor returns a new cursor over the given tokens.
func NewCursor(tokens []Token) *Cursor {
	return &Cursor{tokens: tokens}
}

// Done returns whether there are still non-skippable tokens left to yield.
func (c *Cursor) Done() bool {
	return c.Peek().IsZero()
}

// Mark makes a mark on this cursor for rewinding to.
func (c *Cursor) Mark() CursorMark {
	return CursorMark{owner: c, idx: c.idx}
}

// Rewind moves this cursor back to the position described by mark.
//
// Panics if mark was not created with this cursor's Mark method.
func (c *Cursor) Rewind(mark CursorMark) {
	if c != mark.owner {
		panic("opimps/token: rewound cursor with the wrong mark")
	}
	c.idx = mark.idx
}

// Peek returns the next non-skippable token without advancing, or the zero
// token if there is none.
func (c *Cursor) Peek() Token {
	for i := c.idx; i < len(c.tokens); i++ {
		if !c.tokens[i].Kind.IsSkippable() {
			return c.tokens[i]
		}
	}
	return Zero
}

// Next returns the next non-skippable token and advances past it, or returns
// the zero token at the end of the stream.
func (c *Cursor) Next() Token {
	for c.idx < len(c.tokens) {
		tok := c.tokens[c.idx]
		c.idx++
		if !tok.Kind.IsSkippable() {
			return tok
		}
	}
	return Zero
}

// PeekRaw returns the next token of any kind without advancing.
func (c *Cursor) PeekRaw() Token {
	if c.idx < len(c.tokens) {
		return c.tokens[c.idx]
	}
	return Zero
}

// NextRaw returns the next token of any kind and advances past it.
func (c *Cursor) NextRaw() Token {
	tok := c.PeekRaw()
	if !tok.IsZero() {
		c.idx++
	}
	return tok
}
