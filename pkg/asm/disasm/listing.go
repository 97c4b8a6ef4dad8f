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
package disasm

import (
	"fmt"
	"io"
	"strings"

	"github.com/consensys/go-cvm/pkg/util/termio"
	"github.com/consensys/go-cvm/pkg/vm/opcode"
)

// SUFFIX is the file extension given to listings.
const SUFFIX = ".dis.txt"

// Styles determines how the parts of each listing line are formatted.  The
// zero value produces plain text.
type Styles struct {
	Address  *termio.AnsiEscape
	Mnemonic *termio.AnsiEscape
	Operand  *termio.AnsiEscape
	Unknown  *termio.AnsiEscape
}

// ColourStyles returns styles suitable for an ANSI terminal.
func ColourStyles() Styles {
	var (
		addr    = termio.NewAnsiEscape().FgColour(termio.TERM_BLUE)
		mnem    = termio.NewAnsiEscape().Bold()
		operand = termio.NewAnsiEscape().FgColour(termio.TERM_YELLOW)
		unknown = termio.NewAnsiEscape().Bold().FgColour(termio.TERM_RED)
	)
	//
	return Styles{&addr, &mnem, &operand, &unknown}
}

// Write a listing of the given instructions, one per line, in the form
// "address:  MNEMONIC operand".
func Write(w io.Writer, insns []Instruction, styles Styles) error {
	for _, insn := range insns {
		if _, err := fmt.Fprintln(w, Format(insn, styles)); err != nil {
			return err
		}
	}
	//
	return nil
}

// Format a single instruction as a line of the listing.
func Format(insn Instruction, styles Styles) string {
	var builder strings.Builder
	//
	builder.WriteString(style(styles.Address, fmt.Sprintf("%4d:", insn.Address)))
	builder.WriteString("  ")
	//
	if !insn.Opcode.IsValid() {
		builder.WriteString(style(styles.Unknown, insn.Opcode.String()))
		return builder.String()
	}
	//
	builder.WriteString(style(styles.Mnemonic, insn.Opcode.String()))
	//
	if insn.Opcode.Class() != opcode.NONE {
		builder.WriteString(" ")
		builder.WriteString(style(styles.Operand, operand(insn)))
	}
	//
	return builder.String()
}

func operand(insn Instruction) string {
	switch insn.Opcode.Class() {
	case opcode.CHAR_CONST:
		return "'" + escape(uint16(insn.Operand), '\'') + "'"
	case opcode.STRING_CONST:
		var builder strings.Builder
		//
		builder.WriteByte('"')
		//
		for _, c := range insn.Text {
			builder.WriteString(escape(c, '"'))
		}
		//
		builder.WriteByte('"')
		//
		return builder.String()
	default:
		return fmt.Sprintf("%d", insn.Operand)
	}
}

// Render a character for inclusion in a quoted literal with a given
// delimiter, escaping control characters.
func escape(c uint16, delim rune) string {
	var r = rune(c)
	//
	switch {
	case r == delim || r == '\\':
		return "\\" + string(r)
	case r == '\b':
		return "\\b"
	case r == '\t':
		return "\\t"
	case r == '\n':
		return "\\n"
	case r == '\f':
		return "\\f"
	case r == '\r':
		return "\\r"
	case r < 0x20 || r == 0x7f || (r >= 0xd800 && r <= 0xdfff):
		return fmt.Sprintf("\\u%04x", c)
	default:
		return string(r)
	}
}

func style(esc *termio.AnsiEscape, text string) string {
	if esc == nil {
		return text
	}
	//
	return esc.Wrap(text)
}

// ListingFileName determines the name of the listing for a given object file,
// by replacing its suffix.
func ListingFileName(objfile string, suffix string) (string, bool) {
	base, ok := strings.CutSuffix(objfile, suffix)
	//
	if !ok {
		return "", false
	}
	//
	return base + SUFFIX, true
}
