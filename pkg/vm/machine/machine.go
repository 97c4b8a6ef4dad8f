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
	"bufio"
	"io"

	"github.com/consensys/go-cvm/pkg/vm/memory"
	"github.com/consensys/go-cvm/pkg/vm/opcode"
)

// ExecuteAll executes a given machine to completion in chunks of n steps,
// returning the number of steps executed and/or any error arising.
func ExecuteAll[M Core](machine M, n uint) (uint, error) {
	var nsteps uint
	//
	for {
		// Execute upto n steps
		m, err := machine.Execute(n)
		// update the tally
		nsteps += m
		// check for termination
		if err != nil || m < n {
			return nsteps, err
		}
	}
}

// Core represents an executing machine which can be advanced a given number of
// steps at a time.  A machine may be executing or terminated.
type Core interface {
	// Execute the machine for (at most) the given number of steps, returning
	// the actual number of steps executed and an error (if execution failed).
	// Fewer steps than requested are executed only when the machine halts or
	// faults.
	Execute(steps uint) (uint, error)
	// State returns the current state of this machine.
	State() *State
}

// Machine executes object code held in a flat memory, reading from a given
// input stream and writing to a given output stream.
type Machine struct {
	state  *State
	input  *bufio.Reader
	output *bufio.Writer
	// Total number of instructions executed
	steps uint64
}

var _ Core = &Machine{}

// New constructs a machine over a given memory and initial registers.  The
// machine is not running until it is booted.
func New(mem memory.Memory, regs Registers, input io.Reader, output io.Writer) *Machine {
	return &Machine{
		state:  NewState(mem, regs),
		input:  bufio.NewReader(input),
		output: bufio.NewWriter(output),
	}
}

// Boot this machine so that execution begins from the first instruction at
// address 0.
func (p *Machine) Boot() *Machine {
	p.state.PC = 0
	p.state.Running = true
	p.state.fault = nil
	//
	return p
}

// Resume execution of this machine from its current registers, clearing any
// previous fault.  This is used to continue a machine restored from a snapshot.
func (p *Machine) Resume() *Machine {
	p.state.Running = true
	p.state.fault = nil
	//
	return p
}

// State implementation for the Core interface.
func (p *Machine) State() *State {
	return p.state
}

// Steps returns the total number of instructions executed by this machine.
func (p *Machine) Steps() uint64 {
	return p.steps
}

// Execute implementation for the Core interface.  Output is flushed whenever
// the machine stops running.  An instruction which faults is counted as
// executed, matching Steps().
func (p *Machine) Execute(steps uint) (uint, error) {
	var nsteps uint
	//
	for nsteps < steps && p.state.Running {
		if err := p.Step(); err != nil {
			return nsteps + 1, err
		}
		//
		nsteps++
	}
	//
	if !p.state.Running {
		if err := p.flush(); err != nil {
			return nsteps, err
		}
	}
	//
	return nsteps, nil
}

// Step fetches, decodes and executes exactly one instruction.  If the
// instruction faults, the machine stops running and the fault is returned.
func (p *Machine) Step() error {
	var state = p.state
	//
	if !state.Running {
		return nil
	}
	//
	state.ipc = state.PC
	state.opcode = opcode.HALT
	state.fault = nil
	// Fetch & decode
	b := state.FetchByte()
	//
	if state.fault == nil {
		state.opcode = opcode.Opcode(b)
		//
		if handler := handlers[b]; handler != nil {
			handler(p)
		} else {
			state.raise(DECODE, nil, "invalid machine instruction")
		}
	}
	// Check register invariants at the instruction boundary
	state.checkStack()
	//
	p.steps++
	//
	if state.fault != nil {
		state.Running = false
		// Attempt to flush whatever output was produced before the fault.
		_ = p.output.Flush()
		//
		return state.fault
	}
	//
	return nil
}

// Flush any buffered output.
func (p *Machine) flush() error {
	if err := p.output.Flush(); err != nil {
		p.state.Running = false
		return &Fault{OUTPUT, p.state.ipc, p.state.opcode, "error writing output", err}
	}
	//
	return nil
}
