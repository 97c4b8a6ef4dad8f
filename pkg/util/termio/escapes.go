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
package termio

import (
	"fmt"
	"strings"
)

// TERM_BLACK represents black
const TERM_BLACK = uint(0)

// TERM_RED represents red
const TERM_RED = uint(1)

// TERM_GREEN represents green
const TERM_GREEN = uint(2)

// TERM_YELLOW represents yellow
const TERM_YELLOW = uint(3)

// TERM_BLUE represents blue
const TERM_BLUE = uint(4)

// TERM_MAGENTA represents magenta
const TERM_MAGENTA = uint(5)

// TERM_CYAN represents cyan
const TERM_CYAN = uint(6)

// TERM_WHITE represents white
const TERM_WHITE = uint(7)

// AnsiEscape is an ANSI "select graphic rendition" sequence, built up one
// parameter at a time.
type AnsiEscape struct {
	params []string
}

// NewAnsiEscape constructs an escape with no parameters.
func NewAnsiEscape() AnsiEscape {
	return AnsiEscape{nil}
}

// ResetAnsiEscape constructs an escape which clears all formatting.
func ResetAnsiEscape() AnsiEscape {
	return AnsiEscape{[]string{"0"}}
}

// Bold adds bold to this escape.
func (p AnsiEscape) Bold() AnsiEscape {
	return p.with("1")
}

// Underline adds underlining to this escape.
func (p AnsiEscape) Underline() AnsiEscape {
	return p.with("4")
}

// FgColour sets the foreground colour
func (p AnsiEscape) FgColour(col uint) AnsiEscape {
	return p.with(fmt.Sprintf("%d", 30+col))
}

// BgColour sets the background colour
func (p AnsiEscape) BgColour(col uint) AnsiEscape {
	return p.with(fmt.Sprintf("%d", 40+col))
}

// Build constructs the final escape sequence.
func (p AnsiEscape) Build() string {
	return fmt.Sprintf("\033[%sm", strings.Join(p.params, ";"))
}

// Wrap formats a given piece of text with this escape, resetting afterwards.
func (p AnsiEscape) Wrap(text string) string {
	return p.Build() + text + ResetAnsiEscape().Build()
}

func (p AnsiEscape) with(param string) AnsiEscape {
	// copy to avoid aliasing between escapes derived from the same base
	params := make([]string, len(p.params), len(p.params)+1)
	copy(params, p.params)
	//
	return AnsiEscape{append(params, param)}
}
