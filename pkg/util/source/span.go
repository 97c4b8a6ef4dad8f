// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package source

import "fmt"

// Span identifies a contiguous range of characters within a source file by
// their physical indices, rather than as a substring.  This makes it possible
// to recover the enclosing line when reporting errors.
type Span struct {
	// Index of the first character.
	start int
	// Index one past the last character.
	end int
}

// NewSpan constructs a new span, panicking if it would be inverted.
func NewSpan(start int, end int) Span {
	if start > end {
		panic(fmt.Sprintf("invalid span [%d,%d)", start, end))
	}
	//
	return Span{start, end}
}

// Start returns the index of the first character in this span.
func (p Span) Start() int {
	return p.start
}

// End returns the index one past the last character in this span.
func (p Span) End() int {
	return p.end
}

// Length returns the number of characters covered by this span.
func (p Span) Length() int {
	return p.end - p.start
}

// Join returns the smallest span enclosing both this span and another.
func (p Span) Join(other Span) Span {
	return Span{min(p.start, other.start), max(p.end, other.end)}
}
