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
package machine

import (
	"github.com/consensys/go-cvm/pkg/vm/codec"
	"github.com/consensys/go-cvm/pkg/vm/opcode"
)

// handler executes a single (already fetched) opcode.  Any operands are
// fetched by the handler itself.
type handler func(*Machine)

// Dispatch table from opcode to handler.  Undefined opcodes have no handler.
var handlers = [256]handler{
	opcode.HALT: (*Machine).halt,
	// loads
	opcode.LOAD:    (*Machine).load,
	opcode.LOADB:   (*Machine).loadByte,
	opcode.LOAD2B:  (*Machine).load2Bytes,
	opcode.LOADW:   (*Machine).loadWord,
	opcode.LDCB:    (*Machine).loadConstByte,
	opcode.LDCCH:   (*Machine).loadConstCh,
	opcode.LDCINT:  (*Machine).loadConstInt,
	opcode.LDCSTR:  (*Machine).loadConstStr,
	opcode.LDLADDR: (*Machine).loadLocalAddress,
	opcode.LDGADDR: (*Machine).loadGlobalAddress,
	opcode.LDCB0:   func(p *Machine) { p.state.PushByte(0) },
	opcode.LDCB1:   func(p *Machine) { p.state.PushByte(1) },
	opcode.LDCINT0: func(p *Machine) { p.state.PushInt(0) },
	opcode.LDCINT1: func(p *Machine) { p.state.PushInt(1) },
	// stores
	opcode.STORE:   (*Machine).store,
	opcode.STOREB:  (*Machine).storeByte,
	opcode.STORE2B: (*Machine).store2Bytes,
	opcode.STOREW:  (*Machine).storeWord,
	// branches
	opcode.BR:  (*Machine).branch,
	opcode.BE:  compareAndBranch(func(l, r int32) bool { return l == r }),
	opcode.BNE: compareAndBranch(func(l, r int32) bool { return l != r }),
	opcode.BG:  compareAndBranch(func(l, r int32) bool { return l > r }),
	opcode.BGE: compareAndBranch(func(l, r int32) bool { return l >= r }),
	opcode.BL:  compareAndBranch(func(l, r int32) bool { return l < r }),
	opcode.BLE: compareAndBranch(func(l, r int32) bool { return l <= r }),
	opcode.BZ:  testAndBranch(func(b byte) bool { return b == 0 }),
	opcode.BNZ: testAndBranch(func(b byte) bool { return b != 0 }),
	// conversions
	opcode.INT2BYTE: (*Machine).intToByte,
	opcode.BYTE2INT: (*Machine).byteToInt,
	// logical & bitwise
	opcode.NOT:    (*Machine).not,
	opcode.BITAND: binary(func(l, r int32) int32 { return l & r }),
	opcode.BITOR:  binary(func(l, r int32) int32 { return l | r }),
	opcode.BITXOR: binary(func(l, r int32) int32 { return l ^ r }),
	opcode.BITNOT: unary(func(v int32) int32 { return ^v }),
	opcode.SHL:    binary(func(l, r int32) int32 { return l << (r & 0b11111) }),
	opcode.SHR:    binary(func(l, r int32) int32 { return l >> (r & 0b11111) }),
	// arithmetic
	opcode.ADD: binary(func(l, r int32) int32 { return l + r }),
	opcode.SUB: binary(func(l, r int32) int32 { return l - r }),
	opcode.MUL: binary(func(l, r int32) int32 { return l * r }),
	opcode.DIV: (*Machine).divide,
	opcode.MOD: (*Machine).modulo,
	opcode.NEG: unary(func(v int32) int32 { return -v }),
	opcode.INC: unary(func(v int32) int32 { return v + 1 }),
	opcode.DEC: unary(func(v int32) int32 { return v - 1 }),
	// I/O
	opcode.GETCH:   (*Machine).getCh,
	opcode.GETINT:  (*Machine).getInt,
	opcode.GETSTR:  (*Machine).getString,
	opcode.PUTBYTE: (*Machine).putByte,
	opcode.PUTCH:   (*Machine).putChar,
	opcode.PUTINT:  (*Machine).putInt,
	opcode.PUTEOL:  (*Machine).putEOL,
	opcode.PUTSTR:  (*Machine).putString,
	// program / procedures
	opcode.PROGRAM: (*Machine).program,
	opcode.PROC:    (*Machine).allocate,
	opcode.CALL:    (*Machine).call,
	opcode.RET:     (*Machine).returnInst,
	opcode.ALLOC:   (*Machine).allocate,
	opcode.RET0:    func(p *Machine) { p.returnFrom(0) },
	opcode.RET4:    func(p *Machine) { p.returnFrom(codec.BYTES_PER_INTEGER) },
}

// ============================================================================
// Handler constructors
// ============================================================================

// Construct a handler which pops two integers and pushes the result of a given
// operator.  The first value popped is the right-hand operand.
func binary(op func(int32, int32) int32) handler {
	return func(p *Machine) {
		operand2 := p.state.PopInt()
		operand1 := p.state.PopInt()
		p.state.PushInt(op(operand1, operand2))
	}
}

// Construct a handler which pops one integer and pushes the result of a given
// operator.
func unary(op func(int32) int32) handler {
	return func(p *Machine) {
		operand := p.state.PopInt()
		p.state.PushInt(op(operand))
	}
}

// Construct a handler which fetches a displacement, pops two integers and
// branches when a given comparison holds.  The first value popped is the
// right-hand operand.
func compareAndBranch(cmp func(int32, int32) bool) handler {
	return func(p *Machine) {
		displacement := p.state.FetchInt()
		operand2 := p.state.PopInt()
		operand1 := p.state.PopInt()
		//
		if p.state.fault == nil && cmp(operand1, operand2) {
			p.state.PC += displacement
		}
	}
}

// Construct a handler which fetches a displacement, pops a byte and branches
// when a given test holds.
func testAndBranch(test func(byte) bool) handler {
	return func(p *Machine) {
		displacement := p.state.FetchInt()
		value := p.state.PopByte()
		//
		if p.state.fault == nil && test(value) {
			p.state.PC += displacement
		}
	}
}

// ============================================================================
// Loads
// ============================================================================

func (p *Machine) load() {
	length := p.state.FetchInt()
	address := p.state.PopInt()
	//
	for i := int32(0); i < length && p.state.fault == nil; i++ {
		p.state.PushByte(p.state.ByteAt(address + i))
	}
}

func (p *Machine) loadByte() {
	address := p.state.PopInt()
	p.state.PushByte(p.state.ByteAt(address))
}

func (p *Machine) load2Bytes() {
	address := p.state.PopInt()
	b0 := p.state.ByteAt(address)
	b1 := p.state.ByteAt(address + 1)
	p.state.PushByte(b0)
	p.state.PushByte(b1)
}

func (p *Machine) loadWord() {
	address := p.state.PopInt()
	p.state.PushInt(p.state.WordAt(address))
}

func (p *Machine) loadConstByte() {
	p.state.PushByte(p.state.FetchByte())
}

func (p *Machine) loadConstCh() {
	p.state.PushChar(p.state.FetchChar())
}

func (p *Machine) loadConstInt() {
	p.state.PushInt(p.state.FetchInt())
}

// Push the string length followed by each character, exactly as they appear
// in the instruction stream.
func (p *Machine) loadConstStr() {
	length := p.state.FetchInt()
	p.state.PushInt(length)
	//
	for i := int32(0); i < length && p.state.fault == nil; i++ {
		p.state.PushChar(p.state.FetchChar())
	}
}

func (p *Machine) loadLocalAddress() {
	displacement := p.state.FetchInt()
	p.state.PushInt(p.state.BP + displacement)
}

func (p *Machine) loadGlobalAddress() {
	displacement := p.state.FetchInt()
	p.state.PushInt(p.state.SB + displacement)
}

// ============================================================================
// Stores
// ============================================================================

// The destination address sits immediately beneath the length bytes of data
// on top of the stack.
func (p *Machine) store() {
	length := p.state.FetchInt()
	destAddr := p.state.IntAt(p.state.SP - length - 3)
	// pop bytes of data, storing in reverse order
	for i := length - 1; i >= 0 && p.state.fault == nil; i-- {
		p.state.PutByte(p.state.PopByte(), destAddr+i)
	}
	// discard destination address
	p.state.PopInt()
}

func (p *Machine) storeByte() {
	value := p.state.PopByte()
	destAddr := p.state.PopInt()
	p.state.PutByte(value, destAddr)
}

func (p *Machine) store2Bytes() {
	byte1 := p.state.PopByte()
	byte0 := p.state.PopByte()
	destAddr := p.state.PopInt()
	p.state.PutByte(byte0, destAddr)
	p.state.PutByte(byte1, destAddr+1)
}

func (p *Machine) storeWord() {
	value := p.state.PopInt()
	destAddr := p.state.PopInt()
	p.state.PutWord(value, destAddr)
}

// ============================================================================
// Branches & Conversions
// ============================================================================

func (p *Machine) branch() {
	displacement := p.state.FetchInt()
	//
	if p.state.fault == nil {
		p.state.PC += displacement
	}
}

func (p *Machine) intToByte() {
	n := p.state.PopInt()
	p.state.PushByte(byte(n))
}

func (p *Machine) byteToInt() {
	b := p.state.PopByte()
	p.state.PushInt(int32(int8(b)))
}

func (p *Machine) not() {
	if p.state.PopByte() == FALSE {
		p.state.PushByte(TRUE)
	} else {
		p.state.PushByte(FALSE)
	}
}

// ============================================================================
// Arithmetic
// ============================================================================

func (p *Machine) divide() {
	operand2 := p.state.PopInt()
	operand1 := p.state.PopInt()
	//
	if p.state.fault != nil {
		return
	} else if operand2 == 0 {
		p.state.raise(ARITHMETIC, nil, "*** FAULT: Divide by zero ***")
		return
	}
	//
	p.state.PushInt(operand1 / operand2)
}

func (p *Machine) modulo() {
	operand2 := p.state.PopInt()
	operand1 := p.state.PopInt()
	//
	if p.state.fault != nil {
		return
	} else if operand2 == 0 {
		p.state.raise(ARITHMETIC, nil, "*** FAULT: Modulo by zero ***")
		return
	}
	//
	p.state.PushInt(operand1 % operand2)
}

// ============================================================================
// Program & Procedures
// ============================================================================

func (p *Machine) program() {
	varLength := p.state.FetchInt()
	//
	if p.state.fault == nil {
		p.state.BP = p.state.SB
		p.state.SetStackPointer(int64(p.state.BP) + int64(varLength) - 1)
	}
}

func (p *Machine) allocate() {
	numBytes := p.state.FetchInt()
	//
	if p.state.fault == nil {
		p.state.SetStackPointer(int64(p.state.SP) + int64(numBytes))
	}
}

func (p *Machine) call() {
	displacement := p.state.FetchInt()
	// dynamic link & return address
	p.state.PushInt(p.state.BP)
	p.state.PushInt(p.state.PC)
	//
	if p.state.fault == nil {
		// set bp to starting address of new frame
		p.state.BP = p.state.SP - BYTES_PER_CONTEXT + 1
		// set pc to first instruction of called procedure
		p.state.PC += displacement
	}
}

func (p *Machine) returnInst() {
	paramLength := p.state.FetchInt()
	//
	if p.state.fault == nil {
		p.returnFrom(paramLength)
	}
}

// Restore the caller's context from the current frame, and then discard the
// frame along with paramLength bytes of parameters beneath it.
func (p *Machine) returnFrom(paramLength int32) {
	var (
		bp       = p.state.BP
		retAddr  = p.state.IntAt(bp + codec.BYTES_PER_INTEGER)
		dynamicL = p.state.IntAt(bp)
	)
	//
	if p.state.fault == nil {
		p.state.PC = retAddr
		p.state.SetStackPointer(int64(bp) - int64(paramLength) - 1)
		p.state.BP = dynamicL
	}
}

func (p *Machine) halt() {
	p.state.Running = false
}
