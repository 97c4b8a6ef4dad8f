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
package memory

import "fmt"

// ReadOnlyMemory represents a form of memory which can be read, but not
// written.  This is the view of memory required by tools which inspect a loaded
// program without executing it (e.g. a disassembler).
type ReadOnlyMemory interface {
	// Capacity returns the number of addressable bytes in this memory.  Valid
	// addresses are 0..Capacity()-1.
	Capacity() uint
	// Byte reads the byte at a given address.
	Byte(address int32) (byte, error)
	// Char reads the (big endian) two byte character starting at a given
	// address.
	Char(address int32) (uint16, error)
	// Int reads the (big endian) four byte integer starting at a given
	// address.
	Int(address int32) (int32, error)
	// Slice returns a copy of the n bytes starting at a given address.
	Slice(address int32, n uint) ([]byte, error)
}

// Memory represents the single flat region of bytes shared by the code, the
// global variables and the stack of an executing machine.  Initially, all
// locations hold zero.  Reading a location which has not been written returns
// zero; otherwise, it returns the last value written.  Every access is checked
// against the capacity of the memory, and an out-of-bounds access produces an
// AccessError.
type Memory interface {
	ReadOnlyMemory
	// SetByte writes a byte at a given address.
	SetByte(address int32, value byte) error
	// SetChar writes a (big endian) two byte character starting at a given
	// address.
	SetChar(address int32, value uint16) error
	// SetInt writes a (big endian) four byte integer starting at a given
	// address.
	SetInt(address int32, value int32) error
	// SetSlice writes a sequence of bytes starting at a given address.
	SetSlice(address int32, bytes []byte) error
}

// AccessError is returned for any attempt to read or write a memory location
// outside of the memory's capacity.
type AccessError struct {
	// Address of the first byte accessed
	Address int32
	// Number of bytes accessed
	Width uint
	// Capacity of memory being accessed
	Capacity uint
}

func (p *AccessError) Error() string {
	if p.Width == 1 {
		return fmt.Sprintf("memory access at address %d is out of bounds (capacity %d)", p.Address, p.Capacity)
	}
	//
	return fmt.Sprintf("memory access at addresses %d..%d is out of bounds (capacity %d)", p.Address,
		int64(p.Address)+int64(p.Width)-1, p.Capacity)
}
