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
	"fmt"
	"math"

	"github.com/consensys/go-cvm/pkg/vm/codec"
	"github.com/consensys/go-cvm/pkg/vm/memory"
	"github.com/consensys/go-cvm/pkg/vm/opcode"
)

// BYTES_PER_CONTEXT is the size of an activation record's context, made up from
// the saved base pointer (dynamic link) followed by the saved program counter
// (return address).
const BYTES_PER_CONTEXT = 8

// FALSE is the machine representation of the boolean false.
const FALSE = byte(0)

// TRUE is the machine representation of the boolean true.
const TRUE = byte(1)

// Registers captures the register file of a machine.
type Registers struct {
	// Program Counter: address of the next instruction byte to fetch.
	PC int32
	// Base Pointer: address of the current activation record.
	BP int32
	// Stack Pointer: address of the topmost occupied byte of the stack.
	SP int32
	// Stack Base: address where global variables begin (i.e. the end of the
	// code).
	SB int32
}

func (p Registers) String() string {
	return fmt.Sprintf("PC=%d, BP=%d, SB=%d, SP=%d", p.PC, p.BP, p.SB, p.SP)
}

// State holds the memory and registers of an executing machine, and provides
// the primitive operations used to implement instructions.  Primitives never
// panic.  Instead, the first failure is recorded as a fault and all subsequent
// primitives become no-ops returning zero, until the fault is collected by the
// machine at the end of the current instruction.
type State struct {
	Registers
	// Indicates whether or not the machine is executing.
	Running bool
	// Flat memory shared between code, globals and the stack.
	mem memory.Memory
	// Address and opcode of the instruction being executed.
	ipc    int32
	opcode opcode.Opcode
	// First fault raised by the current instruction (if any).
	fault *Fault
}

// NewState constructs a (halted) state over a given memory with a given
// initial set of registers.
func NewState(mem memory.Memory, regs Registers) *State {
	return &State{Registers: regs, mem: mem}
}

// Memory returns the underlying memory of this state.
func (p *State) Memory() memory.Memory {
	return p.mem
}

// Capacity returns the capacity of the underlying memory.  Addresses are 32-bit
// signed, so a larger memory is treated as having math.MaxInt32 bytes.
func (p *State) Capacity() int32 {
	return int32(min(p.mem.Capacity(), math.MaxInt32))
}

// Fault returns the fault raised during the current instruction, or nil.
func (p *State) Fault() *Fault {
	return p.fault
}

// ============================================================================
// Faults
// ============================================================================

// Raise a fault of a given kind.  Only the first fault raised is retained.
func (p *State) raise(kind FaultKind, cause error, format string, args ...any) {
	if p.fault == nil {
		p.fault = &Fault{kind, p.ipc, p.opcode, fmt.Sprintf(format, args...), cause}
	}
}

// Check the result of a memory access, raising an access fault on failure.
func (p *State) check(err error) bool {
	if err != nil {
		p.raise(ACCESS, err, "*** FAULT: %s ***", err.Error())
		return false
	}
	//
	return true
}

// Check the stack pointer remains within the bounds of the stack, which runs
// from sb-1 (empty) to the last byte of memory.
func (p *State) checkStack() {
	p.checkStackPointer(int64(p.SP))
}

// SetStackPointer moves sp to a given address, computed without overflow.  An
// address outside the stack raises an out-of-memory fault and leaves sp
// unchanged.
func (p *State) SetStackPointer(sp int64) {
	if p.checkStackPointer(sp) {
		p.SP = int32(sp)
	}
}

func (p *State) checkStackPointer(sp int64) bool {
	if sp >= int64(p.Capacity()) {
		p.raise(OUT_OF_MEMORY, nil, "*** Out of memory ***")
		return false
	} else if sp < int64(p.SB)-1 {
		p.raise(OUT_OF_MEMORY, nil, "*** Stack underflow ***")
		return false
	}
	//
	return p.fault == nil
}

// ============================================================================
// Fetch
// ============================================================================

// FetchByte reads the byte at pc, advancing pc by one.
func (p *State) FetchByte() byte {
	b := p.ByteAt(p.PC)
	p.PC++
	//
	return b
}

// FetchChar reads the character at pc, advancing pc by two.
func (p *State) FetchChar() uint16 {
	c := p.CharAt(p.PC)
	p.PC += codec.BYTES_PER_CHAR
	//
	return c
}

// FetchInt reads the integer at pc, advancing pc by four.
func (p *State) FetchInt() int32 {
	n := p.IntAt(p.PC)
	p.PC += codec.BYTES_PER_INTEGER
	//
	return n
}

// ============================================================================
// Stack
// ============================================================================

// PushByte pushes a byte onto the stack.
func (p *State) PushByte(b byte) {
	if p.fault != nil {
		return
	} else if p.SP+1 >= p.Capacity() {
		p.raise(OUT_OF_MEMORY, nil, "*** Out of memory ***")
		return
	}
	//
	if p.check(p.mem.SetByte(p.SP+1, b)) {
		p.SP++
	}
}

// PushChar pushes a character onto the stack, most significant byte first.
func (p *State) PushChar(c uint16) {
	bytes := codec.CharToBytes(c)
	p.PushByte(bytes[0])
	p.PushByte(bytes[1])
}

// PushInt pushes an integer onto the stack, most significant byte first.
func (p *State) PushInt(n int32) {
	bytes := codec.IntToBytes(n)
	//
	for _, b := range bytes {
		p.PushByte(b)
	}
}

// PopByte pops the top byte off the stack.
func (p *State) PopByte() byte {
	if p.fault != nil {
		return 0
	}
	//
	b, err := p.mem.Byte(p.SP)
	//
	if p.check(err) {
		p.SP--
	}
	//
	return b
}

// PopChar pops the top character off the stack.  Since the least significant
// byte was pushed last, it is popped first.
func (p *State) PopChar() uint16 {
	b1 := p.PopByte()
	b0 := p.PopByte()
	//
	return codec.BytesToChar(b0, b1)
}

// PopInt pops the top integer off the stack.  Since the least significant byte
// was pushed last, it is popped first.
func (p *State) PopInt() int32 {
	b3 := p.PopByte()
	b2 := p.PopByte()
	b1 := p.PopByte()
	b0 := p.PopByte()
	//
	return codec.BytesToInt(b0, b1, b2, b3)
}

// ============================================================================
// Addressed Access
// ============================================================================

// ByteAt returns the byte at a given address.  Does not alter pc, sp or bp.
func (p *State) ByteAt(address int32) byte {
	if p.fault != nil {
		return 0
	}
	//
	b, err := p.mem.Byte(address)
	p.check(err)
	//
	return b
}

// CharAt returns the character at a given address.  Does not alter pc, sp or
// bp.
func (p *State) CharAt(address int32) uint16 {
	if p.fault != nil {
		return 0
	}
	//
	c, err := p.mem.Char(address)
	p.check(err)
	//
	return c
}

// IntAt returns the integer at a given address.  Does not alter pc, sp or bp.
func (p *State) IntAt(address int32) int32 {
	if p.fault != nil {
		return 0
	}
	//
	n, err := p.mem.Int(address)
	p.check(err)
	//
	return n
}

// WordAt returns the word at a given address.  Words and integers currently
// share the same representation.
func (p *State) WordAt(address int32) int32 {
	return p.IntAt(address)
}

// PutByte writes a byte to a given address.  Does not alter pc, sp or bp.
func (p *State) PutByte(value byte, address int32) {
	if p.fault == nil {
		p.check(p.mem.SetByte(address, value))
	}
}

// PutChar writes a character to a given address.  Does not alter pc, sp or bp.
func (p *State) PutChar(value uint16, address int32) {
	if p.fault == nil {
		p.check(p.mem.SetChar(address, value))
	}
}

// PutInt writes an integer to a given address.  Does not alter pc, sp or bp.
func (p *State) PutInt(value int32, address int32) {
	if p.fault == nil {
		p.check(p.mem.SetInt(address, value))
	}
}

// PutWord writes a word to a given address.  Does not alter pc, sp or bp.
func (p *State) PutWord(value int32, address int32) {
	p.PutInt(value, address)
}
