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
	"errors"
	"strings"
	"testing"

	"github.com/consensys/go-cvm/pkg/util/assert"
)

func Test_Opcode_Count(t *testing.T) {
	assert.Equal(t, 60, len(All()))
}

func Test_Opcode_Codes(t *testing.T) {
	// Binary compatibility with existing object files
	checkCode(t, HALT, 0)
	checkCode(t, LOAD, 10)
	checkCode(t, LDGADDR, 19)
	checkCode(t, LDCINT1, 23)
	checkCode(t, STOREW, 33)
	checkCode(t, BNZ, 48)
	checkCode(t, BYTE2INT, 51)
	checkCode(t, NOT, 60)
	checkCode(t, SHR, 66)
	checkCode(t, DEC, 77)
	checkCode(t, PUTSTR, 87)
	checkCode(t, ALLOC, 94)
	checkCode(t, RET0, 100)
	checkCode(t, RET4, 101)
}

func Test_Opcode_Mnemonics(t *testing.T) {
	for _, op := range All() {
		info, ok := op.Info()
		assert.True(t, ok)
		assert.Equal(t, info.Mnemonic, op.String())
		// Mnemonics parse back
		p, ok := Parse(op.String())
		assert.True(t, ok)
		assert.Equal(t, op, p)
	}
}

func Test_Opcode_Unknown(t *testing.T) {
	for i := 0; i < 256; i++ {
		op, ok := Lookup(byte(i))
		//
		if ok != op.IsValid() {
			t.Errorf("inconsistent lookup for %d", i)
		} else if !ok && !strings.HasPrefix(op.String(), "**Unknown") {
			t.Errorf("unexpected mnemonic %s for %d", op.String(), i)
		}
	}
	//
	_, ok := Parse("NOP")
	assert.False(t, ok)
}

func Test_Opcode_Classes(t *testing.T) {
	var counts = make(map[OperandClass]int)
	//
	for _, op := range All() {
		counts[op.Class()]++
	}
	//
	assert.Equal(t, 36, counts[NONE])
	assert.Equal(t, 1, counts[BYTE])
	assert.Equal(t, 21, counts[INT])
	assert.Equal(t, 1, counts[CHAR_CONST])
	assert.Equal(t, 1, counts[STRING_CONST])
	assert.Equal(t, CHAR_CONST, LDCCH.Class())
	assert.Equal(t, STRING_CONST, LDCSTR.Class())
	assert.Equal(t, BYTE, LDCB.Class())
}

func Test_Opcode_Width_01(t *testing.T) {
	checkWidth(t, []byte{byte(ADD)}, 0, 1)
	checkWidth(t, []byte{byte(LDCB), 7}, 0, 2)
	checkWidth(t, []byte{byte(LDCINT), 0, 0, 0, 5}, 0, 5)
	checkWidth(t, []byte{byte(LDCCH), 0, 'a'}, 0, 3)
	checkWidth(t, []byte{byte(LDCSTR), 0, 0, 0, 3, 0, 'c', 0, 'a', 0, 't'}, 0, 11)
	checkWidth(t, []byte{byte(LDCSTR), 0, 0, 0, 0}, 0, 5)
	checkWidth(t, []byte{byte(HALT), byte(BR), 0xff, 0xff, 0xff, 0xfb}, 1, 5)
}

func Test_Opcode_Width_02(t *testing.T) {
	var derr *DecodeError
	// unknown opcode
	_, err := Width([]byte{1}, 0)
	assert.True(t, errors.As(err, &derr))
	// truncated operands
	_, err = Width([]byte{byte(LDCINT), 0, 0}, 0)
	assert.True(t, errors.As(err, &derr))
	_, err = Width([]byte{byte(LDCSTR), 0, 0, 0, 2, 0, 'a'}, 0)
	assert.True(t, errors.As(err, &derr))
	_, err = Width([]byte{byte(LDCSTR), 0, 0}, 0)
	assert.True(t, errors.As(err, &derr))
	// past end
	_, err = Width([]byte{byte(HALT)}, 1)
	assert.True(t, errors.As(err, &derr))
}

// ===================================================================
// Test Helpers
// ===================================================================

func checkCode(t *testing.T, op Opcode, code byte) {
	if byte(op) != code {
		t.Errorf("opcode %s has code %d, expected %d", op, byte(op), code)
	}
}

func checkWidth(t *testing.T, code []byte, address uint, expected uint) {
	width, err := Width(code, address)
	//
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	} else if width != expected {
		t.Errorf("instruction %s has width %d, expected %d", Opcode(code[address]), width, expected)
	}
}
