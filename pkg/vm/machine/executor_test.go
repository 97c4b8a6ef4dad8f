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
	"strings"
	"testing"

	"github.com/consensys/go-cvm/pkg/util/assert"
	"github.com/consensys/go-cvm/pkg/vm/opcode"
)

// ============================================================================
// Arithmetic
// ============================================================================

func Test_Arith_00(t *testing.T) {
	checkTopInt(t, apply(opcode.ADD, 3, 4), 7)
	checkTopInt(t, apply(opcode.SUB, 10, 3), 7)
	checkTopInt(t, apply(opcode.SUB, 3, 10), -7)
	checkTopInt(t, apply(opcode.MUL, -6, 7), -42)
	checkTopInt(t, apply(opcode.DIV, 7, 2), 3)
	checkTopInt(t, apply(opcode.DIV, -7, 2), -3)
	checkTopInt(t, apply(opcode.MOD, 7, 3), 1)
	checkTopInt(t, apply(opcode.MOD, -7, 3), -1)
	checkTopInt(t, apply(opcode.NEG, 5), -5)
	checkTopInt(t, apply(opcode.INC, 5), 6)
	checkTopInt(t, apply(opcode.DEC, 5), 4)
}

func Test_Arith_01(t *testing.T) {
	// Overflow wraps around
	checkTopInt(t, apply(opcode.ADD, math.MaxInt32, 1), math.MinInt32)
	checkTopInt(t, apply(opcode.INC, math.MaxInt32), math.MinInt32)
	checkTopInt(t, apply(opcode.DEC, math.MinInt32), math.MaxInt32)
	checkTopInt(t, apply(opcode.NEG, math.MinInt32), math.MinInt32)
	checkTopInt(t, apply(opcode.MUL, 65536, 65536), 0)
	checkTopInt(t, apply(opcode.DIV, math.MinInt32, -1), math.MinInt32)
	checkTopInt(t, apply(opcode.MOD, math.MinInt32, -1), 0)
}

func Test_Arith_02(t *testing.T) {
	fault := checkFault(t, apply(opcode.DIV, 7, 0), "", ARITHMETIC)
	// DIV follows two five byte instructions
	assert.Equal(t, int32(10), fault.PC)
	assert.Equal(t, opcode.DIV, fault.Opcode)
	assert.Equal(t, "*** FAULT: Divide by zero ***", fault.Message)
	//
	checkFault(t, apply(opcode.MOD, 7, 0), "", ARITHMETIC)
}

func Test_Arith_03(t *testing.T) {
	checkTopInt(t, apply(opcode.BITAND, 0b1100, 0b1010), 0b1000)
	checkTopInt(t, apply(opcode.BITOR, 0b1100, 0b1010), 0b1110)
	checkTopInt(t, apply(opcode.BITXOR, 0b1100, 0b1010), 0b0110)
	checkTopInt(t, apply(opcode.BITNOT, 0), -1)
	checkTopInt(t, apply(opcode.SHL, 1, 4), 16)
	checkTopInt(t, apply(opcode.SHR, -8, 1), -4)
	// shift amounts use their low five bits only
	checkTopInt(t, apply(opcode.SHL, 1, 33), 2)
	checkTopInt(t, apply(opcode.SHR, 64, 32), 64)
}

// ============================================================================
// Constants, conversions & logic
// ============================================================================

func Test_Const_00(t *testing.T) {
	checkTopInt(t, "LDCINT0\nHALT", 0)
	checkTopInt(t, "LDCINT1\nHALT", 1)
	checkTopInt(t, "LDCINT -99\nHALT", -99)
	checkTopInt(t, "LDCB 200\nBYTE2INT\nHALT", -56)
	checkTopInt(t, "LDCB 7\nBYTE2INT\nHALT", 7)
	checkTopInt(t, "LDCB0\nBYTE2INT\nHALT", 0)
	checkTopInt(t, "LDCB1\nBYTE2INT\nHALT", 1)
	checkTopInt(t, "LDCINT 0x1234\nINT2BYTE\nBYTE2INT\nHALT", 0x34)
	checkTopInt(t, "LDCCH 'A'\nLDCCH 'B'\nHALT", 0x00410042)
}

func Test_Const_01(t *testing.T) {
	// String constants push their length, then each character.
	m := checkOutput(t, `LDCSTR "cat"
	                     HALT`, "", "")
	state := m.State()
	//
	assert.Equal(t, state.SB-1+4+3*2, state.SP)
	assert.Equal(t, int32(3), state.IntAt(state.SB))
	assert.Equal(t, uint16('c'), state.CharAt(state.SB+4))
	assert.Equal(t, uint16('a'), state.CharAt(state.SB+6))
	assert.Equal(t, uint16('t'), state.CharAt(state.SB+8))
}

func Test_Logic_00(t *testing.T) {
	checkTopInt(t, "LDCB0\nNOT\nBYTE2INT\nHALT", 1)
	checkTopInt(t, "LDCB1\nNOT\nBYTE2INT\nHALT", 0)
	checkTopInt(t, "LDCB 5\nNOT\nBYTE2INT\nHALT", 0)
}

// ============================================================================
// Branches
// ============================================================================

func Test_Branch_00(t *testing.T) {
	// Unconditional branch skips over the following instruction
	checkOutput(t, `      BR L1
	                      LDCINT 1
	                      PUTINT
	                  L1: LDCINT 2
	                      PUTINT
	                      HALT`, "", "2")
}

func Test_Branch_01(t *testing.T) {
	// Backward branch (count down from 3)
	checkOutput(t, `      PROGRAM 4
	                      LDGADDR 0
	                      LDCINT 3
	                      STOREW
	                  L1: LDGADDR 0
	                      LOADW
	                      PUTINT
	                      LDGADDR 0
	                      LDGADDR 0
	                      LOADW
	                      DEC
	                      STOREW
	                      LDGADDR 0
	                      LOADW
	                      LDCINT0
	                      BG L1
	                      HALT`, "", "321")
}

func Test_Branch_02(t *testing.T) {
	var tests = []struct {
		op          opcode.Opcode
		left, right int32
		taken       bool
	}{
		{opcode.BE, 3, 3, true}, {opcode.BE, 3, 4, false},
		{opcode.BNE, 3, 4, true}, {opcode.BNE, 3, 3, false},
		{opcode.BG, 4, 3, true}, {opcode.BG, 3, 4, false}, {opcode.BG, 3, 3, false},
		{opcode.BGE, 4, 3, true}, {opcode.BGE, 3, 3, true}, {opcode.BGE, 3, 4, false},
		{opcode.BL, 3, 4, true}, {opcode.BL, 4, 3, false}, {opcode.BL, 3, 3, false},
		{opcode.BLE, 3, 4, true}, {opcode.BLE, 3, 3, true}, {opcode.BLE, 4, 3, false},
		{opcode.BL, -1, 0, true}, {opcode.BG, math.MinInt32, math.MaxInt32, false},
	}
	//
	for _, test := range tests {
		checkBranch(t, fmt.Sprintf("LDCINT %d\nLDCINT %d", test.left, test.right), test.op, test.taken)
	}
}

func Test_Branch_03(t *testing.T) {
	checkBranch(t, "LDCB0", opcode.BZ, true)
	checkBranch(t, "LDCB1", opcode.BZ, false)
	checkBranch(t, "LDCB 128", opcode.BZ, false)
	checkBranch(t, "LDCB0", opcode.BNZ, false)
	checkBranch(t, "LDCB1", opcode.BNZ, true)
	checkBranch(t, "LDCB 255", opcode.BNZ, true)
}

// ============================================================================
// Loads & stores
// ============================================================================

func Test_Store_00(t *testing.T) {
	checkStore(t, 0)
}

func Test_Store_01(t *testing.T) {
	checkStore(t, 1)
}

func Test_Store_02(t *testing.T) {
	checkStore(t, 4)
}

func Test_Store_03(t *testing.T) {
	checkStore(t, 17)
}

func Test_Store_04(t *testing.T) {
	// STOREB, STORE2B then read back with LOADB, LOAD2B and LOADW
	m := checkOutput(t, `PROGRAM 4
	                     LDGADDR 0
	                     LDCB 1
	                     STOREB
	                     LDGADDR 1
	                     LDCB 2
	                     STOREB
	                     LDGADDR 2
	                     LDCCH 0x0304
	                     STORE2B
	                     LDGADDR 0
	                     LOADW
	                     LDGADDR 1
	                     LOAD2B
	                     LDGADDR 3
	                     LOADB
	                     HALT`, "", "")
	state := m.State()
	top := state.SB + 4 - 1
	//
	assert.Equal(t, top+4+2+1, state.SP)
	assert.Equal(t, int32(0x01020304), state.IntAt(top+1))
	assert.Equal(t, uint16(0x0203), state.CharAt(top+5))
	assert.Equal(t, byte(4), state.ByteAt(top+7))
}

func Test_Load_00(t *testing.T) {
	// LOAD copies a block onto the stack
	m := checkOutput(t, `PROGRAM 6
	                     LDGADDR 0
	                     LDCINT 0x0a0b0c0d
	                     STOREW
	                     LDGADDR 4
	                     LDCCH 0x0e0f
	                     STORE2B
	                     LDGADDR 0
	                     LOAD 6
	                     HALT`, "", "")
	state := m.State()
	//
	assert.Equal(t, state.SB+6+6-1, state.SP)
	slice, err := state.Memory().Slice(state.SB+6, 6)
	//
	assert.Equal(t, nil, err)
	assert.Equal(t, []byte{0xa, 0xb, 0xc, 0xd, 0xe, 0xf}, slice)
}

func Test_Load_01(t *testing.T) {
	// Local addresses are relative to bp, which is sb at the top level.
	m := checkOutput(t, "PROGRAM 0\nLDLADDR -2\nLDGADDR 3\nHALT", "", "")
	state := m.State()
	//
	assert.Equal(t, state.SB-2, state.IntAt(state.SB))
	assert.Equal(t, state.SB+3, state.IntAt(state.SB+4))
}

func Test_Load_02(t *testing.T) {
	// Loading from outside of memory
	fault := checkFault(t, "LDCINT -1\nLOADB\nHALT", "", ACCESS)
	assert.Equal(t, opcode.LOADB, fault.Opcode)
	//
	checkFault(t, "LDCINT 100000\nLDCINT 1\nSTOREW\nHALT", "", ACCESS)
}

// ============================================================================
// Program & Procedures
// ============================================================================

func Test_Proc_00(t *testing.T) {
	// Call and return preserve the caller's frame
	m := checkOutput(t, `PROGRAM 0
	                     CALL P
	                     LDCINT 9
	                     PUTINT
	                     HALT
	                 P:  PROC 0
	                     RET0`, "", "9")
	state := m.State()
	//
	assert.Equal(t, state.SB, state.BP)
	assert.Equal(t, state.SB-1, state.SP)
}

func Test_Proc_01(t *testing.T) {
	// Function result slot below the arguments, arguments popped by RET
	m := checkOutput(t, `PROGRAM 0
	                     ALLOC 4
	                     LDCINT 20
	                     LDCINT 22
	                     CALL F
	                     PUTINT
	                     HALT
	                 F:  PROC 0
	                     LDLADDR -12
	                     LDLADDR -8
	                     LOADW
	                     LDLADDR -4
	                     LOADW
	                     ADD
	                     STOREW
	                     RET 8`, "", "42")
	state := m.State()
	//
	assert.Equal(t, state.SB, state.BP)
	assert.Equal(t, state.SB-1, state.SP)
}

func Test_Proc_02(t *testing.T) {
	// RET4 pops a single integer argument, and locals live above the context
	checkOutput(t, `PROGRAM 0
	                ALLOC 4
	                LDCINT 5
	                CALL SQ
	                PUTINT
	                HALT
	            SQ: PROC 4
	                LDLADDR 8
	                LDLADDR -4
	                LOADW
	                STOREW
	                LDLADDR -8
	                LDLADDR 8
	                LOADW
	                LDLADDR 8
	                LOADW
	                MUL
	                STOREW
	                RET4`, "", "25")
}

func Test_Proc_03(t *testing.T) {
	// Recursion (factorial of 5)
	checkOutput(t, `PROGRAM 0
	                ALLOC 4
	                LDCINT 5
	                CALL FACT
	                PUTINT
	                HALT
	          FACT: PROC 0
	                LDLADDR -4
	                LOADW
	                LDCINT1
	                BG REC
	                LDLADDR -8
	                LDCINT1
	                STOREW
	                RET4
	           REC: LDLADDR -8
	                ALLOC 4
	                LDLADDR -4
	                LOADW
	                DEC
	                CALL FACT
	                LDLADDR -4
	                LOADW
	                MUL
	                STOREW
	                RET4`, "", "120")
}

func Test_Proc_04(t *testing.T) {
	// Out of memory boundary: sp = capacity-1 is permitted, sp = capacity is
	// not.  PROGRAM occupies five bytes, HALT another.
	const capacity = 64
	//
	m, _ := boot(t, fmt.Sprintf("PROGRAM %d\nHALT", capacity-6), capacity, "")
	_, err := ExecuteAll(m, 10)
	assert.Equal(t, nil, err)
	assert.Equal(t, int32(capacity-1), m.State().SP)
	//
	m, _ = boot(t, fmt.Sprintf("PROGRAM %d\nHALT", capacity-5), capacity, "")
	_, err = ExecuteAll(m, 10)
	assert.Equal(t, OUT_OF_MEMORY, asFault(t, err).Kind)
	assert.Equal(t, "*** Out of memory ***", asFault(t, err).Message)
}

func Test_Proc_05(t *testing.T) {
	// Unbounded recursion exhausts memory
	fault := checkFault(t, "L: CALL L", "", OUT_OF_MEMORY)
	assert.Equal(t, opcode.CALL, fault.Opcode)
	//
	checkFault(t, "ALLOC 100000\nHALT", "", OUT_OF_MEMORY)
	// Allocations too large for 32 bits do not wrap
	checkStackFault(t, "PROGRAM 0\nALLOC 2147483647\nHALT", 64, "*** Out of memory ***")
	checkStackFault(t, "PROGRAM 2147483647\nHALT", 64, "*** Out of memory ***")
}

func Test_Proc_06(t *testing.T) {
	// The stack cannot be moved beneath its base
	checkStackFault(t, "PROGRAM 0\nALLOC -100\nHALT", 64, "*** Stack underflow ***")
	checkStackFault(t, "PROGRAM -50\nHALT", 64, "*** Stack underflow ***")
	checkStackFault(t, "PROGRAM 0\nLDCB 1\nPUTBYTE\nPUTBYTE\nHALT", 64, "*** Stack underflow ***")
	// but can be emptied
	m := checkOutput(t, "PROGRAM 4\nALLOC -4\nHALT", "", "")
	assert.Equal(t, m.State().SB-1, m.State().SP)
}

// ============================================================================
// Test Helpers
// ============================================================================

// Check whether a given branch instruction is taken after executing some
// setup code.
func checkBranch(t *testing.T, setup string, op opcode.Opcode, taken bool) {
	program := fmt.Sprintf(`%s
	                       %s T
	                       LDCINT0
	                       PUTINT
	                       HALT
	                    T: LDCINT1
	                       PUTINT
	                       HALT`, setup, op)
	//
	m, out, err := execute(t, program, "")
	//
	if err != nil {
		t.Fatalf("unexpected fault: %s", err.Error())
	}
	//
	assert.Equal(t, taken, out == "1", "%s with %s", op, strings.ReplaceAll(setup, "\n", ", "))
	// operands are consumed
	assert.Equal(t, m.State().SB-1, m.State().SP)
}

// Check a program faults when adjusting the stack, leaving the stack pointer
// within bounds.
func checkStackFault(t *testing.T, program string, capacity uint, message string) {
	m, _ := boot(t, program, capacity, "")
	n, err := ExecuteAll(m, 10)
	fault := asFault(t, err)
	state := m.State()
	//
	assert.Equal(t, OUT_OF_MEMORY, fault.Kind)
	assert.Equal(t, message, fault.Message)
	assert.Equal(t, uint64(n), m.Steps())
	assert.True(t, state.SP >= state.SB-1 && state.SP < state.Capacity(), "sp=%d", state.SP)
}

// Store a block of n bytes into the global area, which is n bytes long.
func checkStore(t *testing.T, n int) {
	var builder strings.Builder
	//
	builder.WriteString(fmt.Sprintf("PROGRAM %d\nLDGADDR 0\n", n))
	//
	for i := 1; i <= n; i++ {
		builder.WriteString(fmt.Sprintf("LDCB %d\n", i))
	}
	//
	builder.WriteString(fmt.Sprintf("STORE %d\nHALT", n))
	//
	m := checkOutput(t, builder.String(), "", "")
	state := m.State()
	// address and data have been popped
	assert.Equal(t, state.SB+int32(n)-1, state.SP)
	//
	for i := 0; i < n; i++ {
		assert.Equal(t, byte(i+1), state.ByteAt(state.SB+int32(i)), "byte %d", i)
	}
}
