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
package assembler

import (
	"github.com/consensys/go-cvm/pkg/util/source"
	"github.com/consensys/go-cvm/pkg/vm/codec"
	"github.com/consensys/go-cvm/pkg/vm/opcode"
)

// Instruction is a single parsed instruction, prior to encoding.
type Instruction struct {
	Opcode opcode.Opcode
	// Literal operand for BYTE, INT and CHAR_CONST instructions.
	Operand int32
	// Label targeted by a branch or call, or empty when Operand holds a
	// literal displacement.
	Target string
	// Characters of a STRING_CONST operand.
	Text []uint16
	// Span of the instruction in its source file.
	Span source.Span
}

// Width returns the number of bytes occupied by this instruction once encoded.
func (p *Instruction) Width() uint {
	switch p.Opcode.Class() {
	case opcode.BYTE:
		return 2
	case opcode.INT:
		return 1 + codec.BYTES_PER_INTEGER
	case opcode.CHAR_CONST:
		return 1 + codec.BYTES_PER_CHAR
	case opcode.STRING_CONST:
		return 1 + codec.BYTES_PER_INTEGER + uint(len(p.Text))*codec.BYTES_PER_CHAR
	default:
		return 1
	}
}

// Encode appends the encoding of this instruction to a given byte slice.  Any
// target label must already have been resolved into Operand.
func (p *Instruction) Encode(bytes []byte) []byte {
	bytes = append(bytes, byte(p.Opcode))
	//
	switch p.Opcode.Class() {
	case opcode.BYTE:
		bytes = append(bytes, byte(p.Operand))
	case opcode.INT:
		n := codec.IntToBytes(p.Operand)
		bytes = append(bytes, n[:]...)
	case opcode.CHAR_CONST:
		c := codec.CharToBytes(uint16(p.Operand))
		bytes = append(bytes, c[:]...)
	case opcode.STRING_CONST:
		n := codec.IntToBytes(int32(len(p.Text)))
		bytes = append(bytes, n[:]...)
		//
		for _, ch := range p.Text {
			c := codec.CharToBytes(ch)
			bytes = append(bytes, c[:]...)
		}
	}
	//
	return bytes
}

// IsBranch determines whether a given opcode takes a pc-relative displacement
// as its operand, and hence may target a label.
func IsBranch(op opcode.Opcode) bool {
	return (op >= opcode.BR && op <= opcode.BNZ) || op == opcode.CALL
}
