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
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/consensys/go-cvm/pkg/vm/memory"
)

// FILENAME is the name of the configuration file searched for by FindAndLoad.
const FILENAME = "cvm.toml"

// DEFAULT_CHUNK is the default number of instructions executed between checks
// on the machine.
const DEFAULT_CHUNK = 1024

// Config represents a cvm.toml configuration file.  Every setting has a
// default, and can be overridden on the command line.
type Config struct {
	Machine Machine `toml:"machine"`
	Disasm  Disasm  `toml:"disasm"`
	// File from which this configuration was loaded (empty for defaults).
	Path string `toml:"-"`
}

// Machine configures the machine used to execute object files.
type Machine struct {
	// Memory capacity (in bytes).
	Memory uint `toml:"memory"`
	// Number of instructions executed in each chunk.
	Chunk uint `toml:"chunk"`
	// Whether to write a snapshot of the machine when it faults.
	CoreDump bool `toml:"core-dump"`
}

// Disasm configures the disassembler.
type Disasm struct {
	// Whether listings written to a terminal are coloured.
	Colour bool `toml:"color"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Machine: Machine{Memory: memory.DEFAULT_CAPACITY, Chunk: DEFAULT_CHUNK},
		Disasm:  Disasm{Colour: true},
	}
}

// Load parses a given configuration file.  Settings missing from the file take
// their default values.
func Load(path string) (Config, error) {
	var config = Default()
	//
	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("cannot read %s: %w", path, err)
	}
	//
	if err := toml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("parse error in %s: %w", path, err)
	}
	//
	config.Path = path
	//
	return config, config.Validate()
}

// FindAndLoad walks up from a given directory looking for a cvm.toml file, and
// loads the first found.  If none is found, the default configuration is
// returned.
func FindAndLoad(startDir string) (Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return Default(), err
	}
	//
	for {
		path := filepath.Join(dir, FILENAME)
		//
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
		//
		parent := filepath.Dir(dir)
		// Reached root
		if parent == dir {
			return Default(), nil
		}
		//
		dir = parent
	}
}

// Validate checks the settings of this configuration are usable.
func (p Config) Validate() error {
	if p.Machine.Memory == 0 {
		return fmt.Errorf("%s: machine memory must be positive", p.source())
	} else if p.Machine.Memory > math.MaxInt32 {
		return fmt.Errorf("%s: machine memory exceeds %d bytes", p.source(), math.MaxInt32)
	} else if p.Machine.Chunk == 0 {
		return fmt.Errorf("%s: chunk size must be positive", p.source())
	}
	//
	return nil
}

func (p Config) source() string {
	if p.Path == "" {
		return "configuration"
	}
	//
	return p.Path
}
