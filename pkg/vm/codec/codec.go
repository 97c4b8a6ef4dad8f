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

// BYTES_PER_CHAR is the number of bytes used to represent a character value.
const BYTES_PER_CHAR = 2

// BYTES_PER_INTEGER is the number of bytes used to represent an integer value.
const BYTES_PER_INTEGER = 4

// BytesToChar converts two bytes into a character.  The bytes are ordered with
// b0 as the most significant (high-order) byte, and b1 as the least
// significant.
func BytesToChar(b0, b1 byte) uint16 {
	return uint16(b0)<<8 | uint16(b1)
}

// BytesToInt converts four bytes into a signed 32bit integer.  The bytes are
// ordered with b0 as the most significant byte, and b3 as the least
// significant.
func BytesToInt(b0, b1, b2, b3 byte) int32 {
	return int32(uint32(b0)<<24 | uint32(b1)<<16 | uint32(b2)<<8 | uint32(b3))
}

// CharToBytes converts a character into two bytes, where the byte at index 0
// is the most significant.
func CharToBytes(c uint16) [BYTES_PER_CHAR]byte {
	return [BYTES_PER_CHAR]byte{byte(c >> 8), byte(c)}
}

// IntToBytes converts a signed 32bit integer into four bytes, where the byte at
// index 0 is the most significant.
func IntToBytes(n int32) [BYTES_PER_INTEGER]byte {
	var v = uint32(n)
	//
	return [BYTES_PER_INTEGER]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}
