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

	"github.com/consensys/go-cvm/pkg/vm/opcode"
)

// FaultKind classifies the unrecoverable conditions which can terminate an
// executing machine.
type FaultKind uint8

// OUT_OF_MEMORY indicates the stack or global region would exceed the
// capacity of memory.
const OUT_OF_MEMORY = FaultKind(0)

// ARITHMETIC indicates a division or remainder by zero.
const ARITHMETIC = FaultKind(1)

// INPUT indicates end-of-stream or malformed input was encountered whilst
// reading from the input stream.
const INPUT = FaultKind(2)

// DECODE indicates an opcode fetched from memory is not a defined instruction.
const DECODE = FaultKind(3)

// ACCESS indicates an instruction attempted to read or write outside of
// memory, e.g. via a corrupt address or by popping from an empty stack.
const ACCESS = FaultKind(4)

// OUTPUT indicates the output stream could not be written.
const OUTPUT = FaultKind(5)

func (p FaultKind) String() string {
	switch p {
	case OUT_OF_MEMORY:
		return "out of memory"
	case ARITHMETIC:
		return "arithmetic"
	case INPUT:
		return "input"
	case DECODE:
		return "decode"
	case ACCESS:
		return "memory access"
	case OUTPUT:
		return "output"
	default:
		return fmt.Sprintf("FaultKind(%d)", uint8(p))
	}
}

// Fault is the error produced when a machine halts abnormally.  A fault always
// terminates execution; it is up to the caller to decide how to report it.
type Fault struct {
	// Kind of fault
	Kind FaultKind
	// Address of the instruction which faulted
	PC int32
	// Instruction which faulted
	Opcode opcode.Opcode
	// Diagnostic message
	Message string
	// Underlying cause (if any)
	Cause error
}

func (p *Fault) Error() string {
	return fmt.Sprintf("%s (pc=%d, %s)", p.Message, p.PC, p.Opcode)
}

// Unwrap returns the underlying cause of this fault (if any).
func (p *Fault) Unwrap() error {
	return p.Cause
}
