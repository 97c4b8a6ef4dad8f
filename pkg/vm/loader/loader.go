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
package loader

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/consensys/go-cvm/pkg/vm/machine"
	"github.com/consensys/go-cvm/pkg/vm/memory"
)

// SUFFIX is the file extension expected for object code files.
const SUFFIX = ".obj"

// MAX_CAPACITY is the largest memory addressable by a machine, since registers
// hold 32-bit signed addresses.
const MAX_CAPACITY = math.MaxInt32

// Config determines how an object image is loaded into a machine.
type Config struct {
	// Capacity (in bytes) of the machine's memory.
	Capacity uint
	// Input stream of the machine.
	Input io.Reader
	// Output stream of the machine.
	Output io.Writer
}

// DefaultConfig returns a configuration using the default memory capacity and
// the process's standard streams.
func DefaultConfig() Config {
	return Config{memory.DEFAULT_CAPACITY, os.Stdin, os.Stdout}
}

// ObjectFileName determines the name of the object file for a given name, by
// appending SUFFIX if it is not already present.  This additionally returns
// whether or not the name was changed.
func ObjectFileName(filename string) (string, bool) {
	if filepath.Ext(filename) == SUFFIX {
		return filename, false
	}
	//
	return filename + SUFFIX, true
}

// ReadObjectFile reads the contents of an object file.
func ReadObjectFile(filename string) ([]byte, error) {
	bytes, err := os.ReadFile(filename)
	//
	if err != nil {
		return nil, fmt.Errorf("error opening file %s: %w", filename, err)
	}
	//
	return bytes, nil
}

// Load places a given object image at address 0 of a given memory, and returns
// the initial registers for executing it.  The stack base immediately follows
// the image, and the stack is initially empty.
func Load(mem memory.Memory, image []byte) (machine.Registers, error) {
	if uint64(len(image)) > uint64(mem.Capacity()) {
		return machine.Registers{}, fmt.Errorf("object image (%d bytes) exceeds memory capacity (%d bytes)",
			len(image), mem.Capacity())
	}
	//
	if err := mem.SetSlice(0, image); err != nil {
		return machine.Registers{}, err
	}
	//
	var sb = int32(len(image))
	//
	return machine.Registers{PC: 0, BP: sb, SP: sb - 1, SB: sb}, nil
}

// Boot constructs a machine with a fresh memory holding a given object image,
// ready to execute from address 0.
func Boot(config Config, image []byte) (*machine.Machine, error) {
	if config.Capacity > MAX_CAPACITY {
		return nil, fmt.Errorf("memory capacity (%d bytes) exceeds maximum (%d bytes)", config.Capacity, MAX_CAPACITY)
	}
	//
	var mem = memory.NewFlat(config.Capacity)
	//
	regs, err := Load(mem, image)
	//
	if err != nil {
		return nil, err
	}
	//
	return machine.New(mem, regs, config.Input, config.Output).Boot(), nil
}
