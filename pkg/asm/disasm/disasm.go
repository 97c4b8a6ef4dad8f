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
	"github.com/consensys/go-cvm/pkg/vm/codec"
	"github.com/consensys/go-cvm/pkg/vm/opcode"
)

// Instruction is a single instruction decoded from object code.
type Instruction struct {
	// Address of the opcode byte.
	Address uint
	// Decoded opcode, which may be undefined.
	Opcode opcode.Opcode
	// Operand for BYTE, INT and CHAR_CONST instructions.  Byte operands are
	// held unsigned.
	Operand int32
	// Characters of a STRING_CONST operand.
	Text []uint16
}

// Decode object code into a sequence of instructions, without executing it.
// An undefined opcode is decoded as a single byte instruction so that decoding
// can continue.  An instruction whose operands run past the end of the code
// stops decoding, and the instructions decoded so far are returned alongside
// the error.
func Decode(code []byte) ([]Instruction, error) {
	var (
		insns   []Instruction
		address uint
	)
	//
	for address < uint(len(code)) {
		var insn = Instruction{Address: address, Opcode: opcode.Opcode(code[address])}
		//
		if !insn.Opcode.IsValid() {
			insns = append(insns, insn)
			address++
			//
			continue
		}
		//
		width, err := opcode.Width(code, address)
		//
		if err != nil {
			return insns, err
		}
		//
		decodeOperands(&insn, code[address+1:address+width])
		insns = append(insns, insn)
		address += width
	}
	//
	return insns, nil
}

func decodeOperands(insn *Instruction, operands []byte) {
	switch insn.Opcode.Class() {
	case opcode.BYTE:
		insn.Operand = int32(operands[0])
	case opcode.INT:
		insn.Operand = codec.BytesToInt(operands[0], operands[1], operands[2], operands[3])
	case opcode.CHAR_CONST:
		insn.Operand = int32(codec.BytesToChar(operands[0], operands[1]))
	case opcode.STRING_CONST:
		// skip length, which is implied by the width
		chars := operands[codec.BYTES_PER_INTEGER:]
		insn.Text = make([]uint16, len(chars)/codec.BYTES_PER_CHAR)
		//
		for i := range insn.Text {
			insn.Text[i] = codec.BytesToChar(chars[2*i], chars[2*i+1])
		}
	}
}
