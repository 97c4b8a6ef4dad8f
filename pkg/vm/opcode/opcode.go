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
package opcode

import (
	"fmt"
	"slices"
)

// Opcode identifies a single machine instruction.  The numeric values are
// those of the instruction set, and must not change since they are baked into
// every compiled object file.
type Opcode byte

// halt opcode
const HALT Opcode = 0

// load opcodes (move data from memory to top of stack)
const (
	LOAD    Opcode = 10
	LOADB   Opcode = 11
	LOAD2B  Opcode = 12
	LOADW   Opcode = 13
	LDCB    Opcode = 14
	LDCCH   Opcode = 15
	LDCINT  Opcode = 16
	LDCSTR  Opcode = 17
	LDLADDR Opcode = 18
	LDGADDR Opcode = 19
)

// optimised loads for special constants
const (
	LDCB0   Opcode = 20
	LDCB1   Opcode = 21
	LDCINT0 Opcode = 22
	LDCINT1 Opcode = 23
)

// store opcodes (move data from top of stack to memory)
const (
	STORE   Opcode = 30
	STOREB  Opcode = 31
	STORE2B Opcode = 32
	STOREW  Opcode = 33
)

// compare/branch opcodes
const (
	BR  Opcode = 40
	BE  Opcode = 41
	BNE Opcode = 42
	BG  Opcode = 43
	BGE Opcode = 44
	BL  Opcode = 45
	BLE Opcode = 46
	BZ  Opcode = 47
	BNZ Opcode = 48
)

// type conversion opcodes
const (
	INT2BYTE Opcode = 50
	BYTE2INT Opcode = 51
)

// logical not opcode
const NOT Opcode = 60

// bitwise and shift opcodes
const (
	BITAND Opcode = 61
	BITOR  Opcode = 62
	BITXOR Opcode = 63
	BITNOT Opcode = 64
	SHL    Opcode = 65
	SHR    Opcode = 66
)

// arithmetic opcodes
const (
	ADD Opcode = 70
	SUB Opcode = 71
	MUL Opcode = 72
	DIV Opcode = 73
	MOD Opcode = 74
	NEG Opcode = 75
	INC Opcode = 76
	DEC Opcode = 77
)

// I/O opcodes
const (
	GETCH   Opcode = 80
	GETINT  Opcode = 81
	GETSTR  Opcode = 82
	PUTBYTE Opcode = 83
	PUTCH   Opcode = 84
	PUTINT  Opcode = 85
	PUTEOL  Opcode = 86
	PUTSTR  Opcode = 87
)

// program/procedure opcodes
const (
	PROGRAM Opcode = 90
	PROC    Opcode = 91
	CALL    Opcode = 92
	RET     Opcode = 93
	ALLOC   Opcode = 94
)

// optimised returns for special constants
const (
	RET0 Opcode = 100
	RET4 Opcode = 101
)

// OperandClass describes what follows an opcode in the instruction stream.
type OperandClass uint8

// NONE indicates an opcode with no operands.
const NONE = OperandClass(0)

// BYTE indicates an opcode with a single one byte operand.
const BYTE = OperandClass(1)

// INT indicates an opcode with a single four byte (integer) operand.
const INT = OperandClass(2)

// CHAR_CONST indicates an opcode with a single two byte (character) operand.
// Only LDCCH has this class.
const CHAR_CONST = OperandClass(3)

// STRING_CONST indicates an opcode whose operand is a four byte length n,
// followed by n two byte characters.  Only LDCSTR has this class.
const STRING_CONST = OperandClass(4)

func (p OperandClass) String() string {
	switch p {
	case NONE:
		return "none"
	case BYTE:
		return "byte"
	case INT:
		return "int"
	case CHAR_CONST:
		return "char"
	case STRING_CONST:
		return "string"
	default:
		return fmt.Sprintf("OperandClass(%d)", uint8(p))
	}
}

// Info captures the static metadata of an opcode.
type Info struct {
	// Mnemonic used in assembly listings
	Mnemonic string
	// Class of operand(s) following the opcode
	Class OperandClass
}

var table = map[Opcode]Info{
	HALT: {"HALT", NONE},
	// loads
	LOAD:    {"LOAD", INT},
	LOADB:   {"LOADB", NONE},
	LOAD2B:  {"LOAD2B", NONE},
	LOADW:   {"LOADW", NONE},
	LDCB:    {"LDCB", BYTE},
	LDCCH:   {"LDCCH", CHAR_CONST},
	LDCINT:  {"LDCINT", INT},
	LDCSTR:  {"LDCSTR", STRING_CONST},
	LDLADDR: {"LDLADDR", INT},
	LDGADDR: {"LDGADDR", INT},
	LDCB0:   {"LDCB0", NONE},
	LDCB1:   {"LDCB1", NONE},
	LDCINT0: {"LDCINT0", NONE},
	LDCINT1: {"LDCINT1", NONE},
	// stores
	STORE:   {"STORE", INT},
	STOREB:  {"STOREB", NONE},
	STORE2B: {"STORE2B", NONE},
	STOREW:  {"STOREW", NONE},
	// branches
	BR:  {"BR", INT},
	BE:  {"BE", INT},
	BNE: {"BNE", INT},
	BG:  {"BG", INT},
	BGE: {"BGE", INT},
	BL:  {"BL", INT},
	BLE: {"BLE", INT},
	BZ:  {"BZ", INT},
	BNZ: {"BNZ", INT},
	// conversions
	INT2BYTE: {"INT2BYTE", NONE},
	BYTE2INT: {"BYTE2INT", NONE},
	// logical / bitwise
	NOT:    {"NOT", NONE},
	BITAND: {"BITAND", NONE},
	BITOR:  {"BITOR", NONE},
	BITXOR: {"BITXOR", NONE},
	BITNOT: {"BITNOT", NONE},
	SHL:    {"SHL", NONE},
	SHR:    {"SHR", NONE},
	// arithmetic
	ADD: {"ADD", NONE},
	SUB: {"SUB", NONE},
	MUL: {"MUL", NONE},
	DIV: {"DIV", NONE},
	MOD: {"MOD", NONE},
	NEG: {"NEG", NONE},
	INC: {"INC", NONE},
	DEC: {"DEC", NONE},
	// I/O
	GETCH:   {"GETCH", NONE},
	GETINT:  {"GETINT", NONE},
	GETSTR:  {"GETSTR", INT},
	PUTBYTE: {"PUTBYTE", NONE},
	PUTCH:   {"PUTCH", NONE},
	PUTINT:  {"PUTINT", NONE},
	PUTEOL:  {"PUTEOL", NONE},
	PUTSTR:  {"PUTSTR", INT},
	// program / procedures
	PROGRAM: {"PROGRAM", INT},
	PROC:    {"PROC", INT},
	CALL:    {"CALL", INT},
	RET:     {"RET", INT},
	ALLOC:   {"ALLOC", INT},
	RET0:    {"RET0", NONE},
	RET4:    {"RET4", NONE},
}

// Mnemonic to opcode, built from table.
var mnemonics = func() map[string]Opcode {
	var m = make(map[string]Opcode, len(table))
	//
	for op, info := range table {
		m[info.Mnemonic] = op
	}
	//
	return m
}()

// Lookup determines whether a given byte corresponds to a defined opcode.
func Lookup(b byte) (Opcode, bool) {
	_, ok := table[Opcode(b)]
	return Opcode(b), ok
}

// Parse returns the opcode with the given mnemonic (e.g. "LDCINT").
func Parse(mnemonic string) (Opcode, bool) {
	op, ok := mnemonics[mnemonic]
	return op, ok
}

// All returns every defined opcode in ascending numeric order.
func All() []Opcode {
	var ops = make([]Opcode, 0, len(table))
	//
	for op := range table {
		ops = append(ops, op)
	}
	//
	slices.Sort(ops)
	//
	return ops
}

// IsValid determines whether this is a defined opcode.
func (p Opcode) IsValid() bool {
	_, ok := table[p]
	return ok
}

// Info returns the metadata for this opcode, and whether or not it is defined.
func (p Opcode) Info() (Info, bool) {
	info, ok := table[p]
	return info, ok
}

// Class returns the operand class of this opcode.  Undefined opcodes have no
// operands.
func (p Opcode) Class() OperandClass {
	return table[p].Class
}

func (p Opcode) String() string {
	if info, ok := table[p]; ok {
		return info.Mnemonic
	}
	//
	return fmt.Sprintf("**Unknown(%d)**", byte(p))
}
