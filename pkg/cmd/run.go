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
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/consensys/go-cvm/pkg/util"
	"github.com/consensys/go-cvm/pkg/vm/loader"
	"github.com/consensys/go-cvm/pkg/vm/machine"
	"github.com/consensys/go-cvm/pkg/vm/snapshot"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Exit status when an object file cannot be loaded.
const EXIT_LOAD_FAILURE = 3

// Exit status when the machine faults.
const EXIT_FAULT = 4

var runCmd = &cobra.Command{
	Use:   "run [flags] file[.obj]",
	Short: "Execute an object file.",
	Long: `Load an object file into a fresh machine and execute it until it halts
	or faults.  If the file name does not end in ".obj", then this is appended.`,
	Aliases: []string{"exec"},
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		// Configure log level
		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
		//
		os.Exit(runObjectFile(args[0], runConfig(cmd)))
	},
}

// RunConfig determines how an object file is loaded and executed.
type RunConfig struct {
	// Machine configuration used by the loader.
	Machine loader.Config
	// Number of instructions executed in each chunk.
	Chunk uint
	// Whether to write a snapshot when the machine faults.
	CoreDump bool
}

// Construct a run configuration from the configuration of a given command.
func runConfig(cmd *cobra.Command) RunConfig {
	var (
		cfg    = getConfig(cmd)
		config = RunConfig{loader.DefaultConfig(), cfg.Machine.Chunk, cfg.Machine.CoreDump}
	)
	//
	config.Machine.Capacity = cfg.Machine.Memory
	//
	return config
}

// Load and execute a given object file, returning the exit status for the
// process.
func runObjectFile(filename string, config RunConfig) int {
	objfile, changed := loader.ObjectFileName(filename)
	//
	if changed {
		fmt.Printf("... appending \"%s\" to %s\n", loader.SUFFIX, filename)
		fmt.Printf("... filename changed to %s\n", objfile)
	}
	//
	image, err := loader.ReadObjectFile(objfile)
	if err != nil {
		log.Error(err)
		return EXIT_LOAD_FAILURE
	}
	//
	log.Debugf("loaded %s (%d bytes)", objfile, len(image))
	//
	vm, err := loader.Boot(config.Machine, image)
	if err != nil {
		log.Error(err)
		return EXIT_LOAD_FAILURE
	}
	//
	log.Debugf("booted machine (%s)", vm.State().Registers)
	//
	stats := util.NewPerfStats()
	_, err = machine.ExecuteAll(vm, config.Chunk)
	//
	stats.Log(fmt.Sprintf("Executing %s", objfile))
	log.Debugf("executed %d instructions (%s)", vm.Steps(), vm.State().Registers)
	//
	if err != nil {
		reportFault(err)
		//
		if config.CoreDump {
			writeCoreDump(objfile, vm, err)
		}
		//
		return EXIT_FAULT
	}
	//
	return 0
}

// Report a failure arising during execution.  The underlying cause of a machine
// fault is only reported in verbose mode.
func reportFault(err error) {
	var fault *machine.Fault
	//
	log.Error(err)
	//
	if errors.As(err, &fault) && fault.Cause != nil {
		log.Debugf("caused by: %s", fault.Cause)
	}
}

// Write a snapshot of a faulted machine alongside its object file.
func writeCoreDump(objfile string, vm *machine.Machine, fault error) {
	var corefile = strings.TrimSuffix(objfile, loader.SUFFIX) + snapshot.SUFFIX
	//
	snap, err := snapshot.Capture(vm, fault)
	//
	if err == nil {
		err = snapshot.WriteFile(corefile, snap)
	}
	//
	if err != nil {
		log.Errorf("unable to write core dump: %s", err)
	} else {
		log.Infof("core dumped to %s", corefile)
	}
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(runCmd)
}
