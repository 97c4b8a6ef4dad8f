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
package codec

import (
	"math"
	"math/rand"
	"testing"

	"github.com/consensys/go-cvm/pkg/util/assert"
)

func Test_Codec_Int_00(t *testing.T) {
	assert.Equal(t, [4]byte{0, 0, 0, 0}, IntToBytes(0))
	assert.Equal(t, [4]byte{0, 0, 0, 7}, IntToBytes(7))
	assert.Equal(t, [4]byte{0xff, 0xff, 0xff, 0xff}, IntToBytes(-1))
	assert.Equal(t, [4]byte{0x12, 0x34, 0x56, 0x78}, IntToBytes(0x12345678))
	assert.Equal(t, [4]byte{0x80, 0, 0, 0}, IntToBytes(math.MinInt32))
}

func Test_Codec_Int_01(t *testing.T) {
	for _, n := range []int32{0, 1, -1, 255, 256, -256, math.MaxInt32, math.MinInt32} {
		checkIntRoundTrip(t, n)
	}
}

func Test_Codec_Int_02(t *testing.T) {
	for i := 0; i < 100000; i++ {
		checkIntRoundTrip(t, int32(rand.Uint32()))
	}
}

func Test_Codec_Int_03(t *testing.T) {
	// Sign bit in the high order byte
	assert.Equal(t, int32(-2), BytesToInt(0xff, 0xff, 0xff, 0xfe))
	assert.Equal(t, int32(128), BytesToInt(0, 0, 0, 0x80))
}

func Test_Codec_Char_00(t *testing.T) {
	assert.Equal(t, [2]byte{0, 'c'}, CharToBytes('c'))
	assert.Equal(t, [2]byte{0x03, 0xbb}, CharToBytes('λ'))
	assert.Equal(t, uint16('λ'), BytesToChar(0x03, 0xbb))
}

func Test_Codec_Char_01(t *testing.T) {
	// Exhaustive
	for c := 0; c <= math.MaxUint16; c++ {
		bytes := CharToBytes(uint16(c))
		//
		if v := BytesToChar(bytes[0], bytes[1]); v != uint16(c) {
			t.Errorf("char round trip failed (%d vs %d)", c, v)
		}
	}
}

// ===================================================================
// Test Helpers
// ===================================================================

func checkIntRoundTrip(t *testing.T, n int32) {
	bytes := IntToBytes(n)
	//
	if v := BytesToInt(bytes[0], bytes[1], bytes[2], bytes[3]); v != n {
		t.Errorf("int round trip failed (%d vs %d)", n, v)
	}
}
