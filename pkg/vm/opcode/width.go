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

	"github.com/consensys/go-cvm/pkg/vm/codec"
)

// DecodeError reports an instruction which could not be decoded at a given
// address of some code, either because the opcode is undefined or because its
// operands run past the end of the code.
type DecodeError struct {
	Address uint
	Message string
}

func (p *DecodeError) Error() string {
	return fmt.Sprintf("%s (address %d)", p.Message, p.Address)
}

// Width determines the number of bytes occupied by the instruction starting at
// a given address in some code, including the opcode itself.  This allows a
// tool to step over instructions without executing them.  For LDCSTR, the width
// depends upon the string length embedded in the instruction stream.
func Width(code []byte, address uint) (uint, error) {
	if address >= uint(len(code)) {
		return 0, &DecodeError{address, "address past end of code"}
	}
	//
	var (
		op    = Opcode(code[address])
		width uint
	)
	//
	if !op.IsValid() {
		return 0, &DecodeError{address, fmt.Sprintf("unknown opcode %d", code[address])}
	}
	//
	switch op.Class() {
	case NONE:
		width = 1
	case BYTE:
		width = 2
	case INT:
		width = 1 + codec.BYTES_PER_INTEGER
	case CHAR_CONST:
		width = 1 + codec.BYTES_PER_CHAR
	case STRING_CONST:
		var start = address + 1
		//
		if start+codec.BYTES_PER_INTEGER > uint(len(code)) {
			return 0, &DecodeError{address, "truncated string length"}
		}
		//
		n := codec.BytesToInt(code[start], code[start+1], code[start+2], code[start+3])
		//
		if n < 0 {
			return 0, &DecodeError{address, fmt.Sprintf("negative string length %d", n)}
		}
		//
		width = 1 + codec.BYTES_PER_INTEGER + uint(n)*codec.BYTES_PER_CHAR
	}
	// Sanity check operands
	if address+width > uint(len(code)) {
		return 0, &DecodeError{address, fmt.Sprintf("truncated %s instruction", op)}
	}
	//
	return width, nil
}
