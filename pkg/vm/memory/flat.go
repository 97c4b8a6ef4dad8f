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

import (
	"github.com/consensys/go-cvm/pkg/vm/codec"
)

// DEFAULT_CAPACITY is the default number of bytes of memory given to a machine.
const DEFAULT_CAPACITY = 8192

// Flat is a fixed-capacity implementation of Memory backed by a []byte.  All
// reads and writes pass through a single bounds check.
type Flat struct {
	data []byte
}

var _ Memory = &Flat{}

// NewFlat constructs a zero-filled flat memory of the given capacity.
func NewFlat(capacity uint) *Flat {
	return &Flat{make([]byte, capacity)}
}

// Capacity implementation for ReadOnlyMemory interface.
func (p *Flat) Capacity() uint {
	return uint(len(p.data))
}

// Byte implementation for ReadOnlyMemory interface.
func (p *Flat) Byte(address int32) (byte, error) {
	if err := p.check(address, 1); err != nil {
		return 0, err
	}
	//
	return p.data[address], nil
}

// Char implementation for ReadOnlyMemory interface.
func (p *Flat) Char(address int32) (uint16, error) {
	if err := p.check(address, codec.BYTES_PER_CHAR); err != nil {
		return 0, err
	}
	//
	return codec.BytesToChar(p.data[address], p.data[address+1]), nil
}

// Int implementation for ReadOnlyMemory interface.
func (p *Flat) Int(address int32) (int32, error) {
	if err := p.check(address, codec.BYTES_PER_INTEGER); err != nil {
		return 0, err
	}
	//
	bytes := p.data[address : address+codec.BYTES_PER_INTEGER]
	//
	return codec.BytesToInt(bytes[0], bytes[1], bytes[2], bytes[3]), nil
}

// Slice implementation for ReadOnlyMemory interface.
func (p *Flat) Slice(address int32, n uint) ([]byte, error) {
	if err := p.check(address, n); err != nil {
		return nil, err
	}
	//
	bytes := make([]byte, n)
	copy(bytes, p.data[address:])
	//
	return bytes, nil
}

// SetByte implementation for Memory interface.
func (p *Flat) SetByte(address int32, value byte) error {
	if err := p.check(address, 1); err != nil {
		return err
	}
	//
	p.data[address] = value
	//
	return nil
}

// SetChar implementation for Memory interface.
func (p *Flat) SetChar(address int32, value uint16) error {
	bytes := codec.CharToBytes(value)
	return p.SetSlice(address, bytes[:])
}

// SetInt implementation for Memory interface.
func (p *Flat) SetInt(address int32, value int32) error {
	bytes := codec.IntToBytes(value)
	return p.SetSlice(address, bytes[:])
}

// SetSlice implementation for Memory interface.
func (p *Flat) SetSlice(address int32, bytes []byte) error {
	if err := p.check(address, uint(len(bytes))); err != nil {
		return err
	}
	//
	copy(p.data[address:], bytes)
	//
	return nil
}

// Check whether the n bytes starting at a given address all lie within this
// memory.
func (p *Flat) check(address int32, n uint) error {
	if address < 0 || uint64(address)+uint64(n) > uint64(len(p.data)) {
		return &AccessError{address, n, p.Capacity()}
	}
	//
	return nil
}
