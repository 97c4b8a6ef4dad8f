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
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/consensys/go-cvm/pkg/util/assert"
	"github.com/consensys/go-cvm/pkg/vm/loader"
	"github.com/consensys/go-cvm/pkg/vm/machine"
)

// PROGRAM 0, LDCINT 5, LDCINT 7, ADD, PUTINT, PUTEOL, HALT
var sumProgram = []byte{90, 0, 0, 0, 0, 16, 0, 0, 0, 5, 16, 0, 0, 0, 7, 70, 85, 86, 0}

// LDCINT1, LDCINT0, DIV, HALT
var divProgram = []byte{23, 22, 73, 0}

func Test_Snapshot_00(t *testing.T) {
	var out bytes.Buffer
	// Stop part way through
	m := boot(t, sumProgram, &out)
	_, err := m.Execute(3)
	assert.Equal(t, nil, err)
	//
	snap := checkCapture(t, m, nil)
	assert.True(t, snap.Running)
	assert.Equal(t, uint64(3), snap.Steps)
	assert.True(t, snap.Fault == nil)
	// Continue from the restored machine
	restored, err := snap.Restore(strings.NewReader(""), &out)
	assert.Equal(t, nil, err)
	assert.Equal(t, m.State().Registers, restored.State().Registers)
	//
	n, err := machine.ExecuteAll(restored, 16)
	assert.Equal(t, nil, err)
	assert.Equal(t, uint(4), n)
	assert.Equal(t, "12\n", out.String())
}

func Test_Snapshot_01(t *testing.T) {
	var out bytes.Buffer
	//
	m := boot(t, divProgram, &out)
	_, err := machine.ExecuteAll(m, 16)
	//
	snap := checkCapture(t, m, err)
	assert.False(t, snap.Running)
	assert.True(t, snap.Fault != nil)
	assert.Equal(t, machine.ARITHMETIC, snap.Fault.Kind)
	assert.Equal(t, int32(2), snap.Fault.PC)
	assert.Equal(t, byte(73), snap.Fault.Opcode)
	// A faulted machine is not resumed
	restored, err := snap.Restore(strings.NewReader(""), &out)
	assert.Equal(t, nil, err)
	assert.False(t, restored.State().Running)
}

func Test_Snapshot_02(t *testing.T) {
	var (
		out      bytes.Buffer
		filename = filepath.Join(t.TempDir(), "div"+SUFFIX)
	)
	//
	m := boot(t, divProgram, &out)
	_, err := machine.ExecuteAll(m, 16)
	snap, _ := Capture(m, err)
	//
	assert.Equal(t, nil, WriteFile(filename, snap))
	//
	read, err := ReadFile(filename)
	assert.Equal(t, nil, err)
	assert.Equal(t, snap, read)
	//
	_, err = ReadFile(filepath.Join(t.TempDir(), "missing"+SUFFIX))
	assert.True(t, err != nil)
}

func Test_Snapshot_03(t *testing.T) {
	var snap Snapshot
	//
	_, err := Unmarshal([]byte("not cbor"))
	assert.True(t, err != nil)
	assert.True(t, snap.UnmarshalBinary([]byte("not cbor")) != nil)
}

func Test_Snapshot_04(t *testing.T) {
	// Encoding is deterministic
	var out bytes.Buffer
	//
	m := boot(t, sumProgram, &out)
	s1, _ := Capture(m, nil)
	s2, _ := Capture(m, nil)
	b1, _ := Marshal(s1)
	b2, _ := s2.MarshalBinary()
	//
	assert.Equal(t, b1, b2)
	//
	var s3 Snapshot
	//
	assert.Equal(t, nil, s3.UnmarshalBinary(b2))
	assert.Equal(t, *s1, s3)
}

// ============================================================================
// Test Helpers
// ============================================================================

func boot(t *testing.T, image []byte, out *bytes.Buffer) *machine.Machine {
	m, err := loader.Boot(loader.Config{Capacity: 64, Input: strings.NewReader(""), Output: out}, image)
	//
	if err != nil {
		t.Fatalf("unexpected error: %s", err.Error())
	}
	//
	return m
}

// Capture a snapshot of a machine, and check it survives encoding.
func checkCapture(t *testing.T, m *machine.Machine, err error) *Snapshot {
	snap, cerr := Capture(m, err)
	assert.Equal(t, nil, cerr)
	assert.Equal(t, 64, len(snap.Memory))
	assert.Equal(t, m.State().Registers, snap.Registers)
	//
	data, cerr := Marshal(snap)
	assert.Equal(t, nil, cerr)
	//
	decoded, cerr := Unmarshal(data)
	assert.Equal(t, nil, cerr)
	assert.Equal(t, snap, decoded)
	//
	return decoded
}
