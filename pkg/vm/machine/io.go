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
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/consensys/go-cvm/pkg/vm/codec"
)

// ============================================================================
// Input
// ============================================================================

func (p *Machine) getCh() {
	destAddr := p.state.PopInt()
	//
	if p.state.fault != nil || !p.prepareInput() {
		return
	}
	//
	ch, _, err := p.input.ReadRune()
	//
	if err != nil {
		p.inputFault(err)
		return
	}
	// Characters are 16bit, hence anything outside the basic multilingual
	// plane is truncated.
	p.state.PutChar(uint16(ch), destAddr)
}

func (p *Machine) getInt() {
	var n int32
	//
	destAddr := p.state.PopInt()
	//
	if p.state.fault != nil || !p.prepareInput() {
		return
	}
	//
	if _, err := fmt.Fscan(p.input, &n); err != nil {
		p.inputFault(err)
		return
	}
	//
	p.state.PutInt(n, destAddr)
}

// Read a line of input (excluding the line terminator) and write its length
// followed by its characters to the popped address.  At most capacity
// characters are kept, and the remainder of the line is discarded.
func (p *Machine) getString() {
	destAddr := p.state.PopInt()
	capacity := p.state.FetchInt()
	//
	if p.state.fault != nil || !p.prepareInput() {
		return
	}
	//
	data, err := p.readLine(int(max(capacity, 0)))
	//
	if err != nil {
		p.inputFault(err)
		return
	}
	//
	p.state.PutInt(int32(len(data)), destAddr)
	destAddr += codec.BYTES_PER_INTEGER
	//
	for _, c := range data {
		p.state.PutChar(c, destAddr)
		destAddr += codec.BYTES_PER_CHAR
	}
}

// Read characters upto the end of the current line, keeping at most limit of
// them.  Carriage returns are ignored.  Reaching the end of input simply ends
// the line.
func (p *Machine) readLine(limit int) ([]uint16, error) {
	var data []uint16
	//
	for {
		ch, _, err := p.input.ReadRune()
		//
		if errors.Is(err, io.EOF) || (err == nil && ch == '\n') {
			return data, nil
		} else if err != nil {
			return nil, err
		} else if ch != '\r' && len(data) < limit {
			data = append(data, uint16(ch))
		}
	}
}

// Flush any pending output before blocking on input, so that prompts are
// visible.
func (p *Machine) prepareInput() bool {
	if err := p.output.Flush(); err != nil {
		p.state.raise(OUTPUT, err, "error writing output")
		return false
	}
	//
	return true
}

func (p *Machine) inputFault(err error) {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		p.state.raise(INPUT, err, "Invalid input: EOF")
	} else {
		p.state.raise(INPUT, err, "Invalid input")
	}
}

// ============================================================================
// Output
// ============================================================================

func (p *Machine) putByte() {
	b := p.state.PopByte()
	p.write(strconv.Itoa(int(int8(b))))
}

func (p *Machine) putChar() {
	c := p.state.PopChar()
	//
	if p.state.fault == nil {
		p.writeRune(rune(c))
	}
}

func (p *Machine) putInt() {
	n := p.state.PopInt()
	p.write(strconv.FormatInt(int64(n), 10))
}

func (p *Machine) putEOL() {
	p.writeRune('\n')
}

// Write a string held on top of the stack, and then pop it.  The string
// occupies a four byte length followed by capacity characters, of which only
// the first length are written.
func (p *Machine) putString() {
	capacity := p.state.FetchInt()
	// number of bytes in the string
	numBytes := codec.BYTES_PER_INTEGER + capacity*codec.BYTES_PER_CHAR
	addr := p.state.SP - numBytes + 1
	strLength := p.state.IntAt(addr)
	addr += codec.BYTES_PER_INTEGER
	//
	for i := int32(0); i < strLength && p.state.fault == nil; i++ {
		c := p.state.CharAt(addr)
		//
		if p.state.fault == nil {
			p.writeRune(rune(c))
		}
		//
		addr += codec.BYTES_PER_CHAR
	}
	// remove (pop) the string off the stack
	if p.state.fault == nil {
		p.state.SP -= numBytes
	}
}

func (p *Machine) write(s string) {
	if p.state.fault != nil {
		return
	} else if _, err := p.output.WriteString(s); err != nil {
		p.state.raise(OUTPUT, err, "error writing output")
	}
}

func (p *Machine) writeRune(r rune) {
	if p.state.fault != nil {
		return
	} else if _, err := p.output.WriteRune(r); err != nil {
		p.state.raise(OUTPUT, err, "error writing output")
	}
}
