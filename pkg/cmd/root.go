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
	"fmt"
	"os"
	"runtime/debug"

	"github.com/consensys/go-cvm/pkg/config"
	"github.com/consensys/go-cvm/pkg/vm/memory"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is filled when building with make, but *not* when installing via "go
// install".
var Version string

// rootCmd represents the base command when called without any subcommands.
// Given a single object file, it behaves as the run command.
var rootCmd = &cobra.Command{
	Use:   "cvm [flags] file[.obj]",
	Short: "A virtual machine for CPRL object code.",
	Long: `A virtual machine (and general toolbox) for CPRL object code.  Given a
	single object file, the file is loaded and executed until it halts.`,
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "version") {
			fmt.Print("cvm ")
			if Version != "" {
				// Built via "make"
				fmt.Printf("%s", Version)
			} else if info, ok := debug.ReadBuildInfo(); ok {
				// Built via "go install"
				fmt.Printf("%s", info.Main.Version)
			} else {
				// Unknown, perhaps "go run"
				fmt.Printf("(unknown version)")
			}
			fmt.Println()
			//
			return
		} else if len(args) != 1 {
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

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "Report version of this executable")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	rootCmd.PersistentFlags().Uint("memory", memory.DEFAULT_CAPACITY, "memory capacity of the machine (in bytes)")
	rootCmd.PersistentFlags().Uint("chunk", config.DEFAULT_CHUNK, "number of instructions executed between checks")
	rootCmd.PersistentFlags().Bool("core-dump", false, "write a snapshot of the machine when it faults")
	rootCmd.PersistentFlags().String("config", "", "configuration file (default: nearest cvm.toml)")
}
