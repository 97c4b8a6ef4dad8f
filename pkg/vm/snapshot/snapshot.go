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
package snapshot

import (
	"encoding"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/consensys/go-cvm/pkg/vm/machine"
	"github.com/consensys/go-cvm/pkg/vm/memory"
	"github.com/fxamacker/cbor/v2"
)

// SUFFIX is the file extension used for snapshot files.
const SUFFIX = ".core"

// Deterministic encoding, so identical machines give identical snapshots.
var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("snapshot: failed to create CBOR enc mode: %v", err))
	}
	//
	encMode = em
}

// Snapshot records the complete state of a machine at some point during its
// execution.  This is typically taken when a machine faults, so that the fault
// can be inspected later.
type Snapshot struct {
	Registers machine.Registers `cbor:"registers"`
	Running   bool              `cbor:"running"`
	// Number of instructions executed before the snapshot was taken.
	Steps uint64 `cbor:"steps"`
	// Fault which stopped the machine (if any).
	Fault *Fault `cbor:"fault,omitempty"`
	// Entire contents of memory.
	Memory []byte `cbor:"memory"`
}

var _ encoding.BinaryMarshaler = &Snapshot{}
var _ encoding.BinaryUnmarshaler = &Snapshot{}

// Fault records the details of a machine fault.
type Fault struct {
	Kind    machine.FaultKind `cbor:"kind"`
	PC      int32             `cbor:"pc"`
	Opcode  byte              `cbor:"opcode"`
	Message string            `cbor:"message"`
}

// Capture a snapshot of a given machine.  If the given error is a machine
// fault, then it is recorded as well.
func Capture(m *machine.Machine, err error) (*Snapshot, error) {
	var (
		state = m.State()
		mem   = state.Memory()
		fault *machine.Fault
	)
	//
	contents, merr := mem.Slice(0, mem.Capacity())
	if merr != nil {
		return nil, merr
	}
	//
	snapshot := &Snapshot{
		Registers: state.Registers,
		Running:   state.Running,
		Steps:     m.Steps(),
		Memory:    contents,
	}
	//
	if errors.As(err, &fault) {
		snapshot.Fault = &Fault{fault.Kind, fault.PC, byte(fault.Opcode), fault.Message}
	}
	//
	return snapshot, nil
}

// Restore constructs a machine from this snapshot, using the given input and
// output streams.  If the snapshot was taken whilst running, the restored
// machine continues from where it left off.
func (p *Snapshot) Restore(input io.Reader, output io.Writer) (*machine.Machine, error) {
	mem := memory.NewFlat(uint(len(p.Memory)))
	//
	if err := mem.SetSlice(0, p.Memory); err != nil {
		return nil, err
	}
	//
	m := machine.New(mem, p.Registers, input, output)
	//
	if p.Running {
		m.Resume()
	}
	//
	return m, nil
}

// MarshalBinary implementation for the encoding.BinaryMarshaler interface.
func (p *Snapshot) MarshalBinary() ([]byte, error) {
	return Marshal(p)
}

// UnmarshalBinary implementation for the encoding.BinaryUnmarshaler interface.
func (p *Snapshot) UnmarshalBinary(data []byte) error {
	s, err := Unmarshal(data)
	//
	if err == nil {
		*p = *s
	}
	//
	return err
}

// Encoded form of a snapshot.  This has none of the methods of Snapshot, since
// the CBOR encoder would otherwise defer to MarshalBinary.
type encoded Snapshot

// Marshal serializes a snapshot to CBOR bytes.
func Marshal(s *Snapshot) ([]byte, error) {
	return encMode.Marshal((*encoded)(s))
}

// Unmarshal deserializes a snapshot from CBOR bytes.
func Unmarshal(data []byte) (*Snapshot, error) {
	var s encoded
	//
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("snapshot: unmarshal: %w", err)
	}
	//
	return (*Snapshot)(&s), nil
}

// WriteFile writes a snapshot to a given file.
func WriteFile(filename string, s *Snapshot) error {
	data, err := Marshal(s)
	//
	if err != nil {
		return err
	}
	//
	return os.WriteFile(filename, data, 0o644)
}

// ReadFile reads a snapshot from a given file.
func ReadFile(filename string) (*Snapshot, error) {
	data, err := os.ReadFile(filename)
	//
	if err != nil {
		return nil, fmt.Errorf("error opening file %s: %w", filename, err)
	}
	//
	return Unmarshal(data)
}
