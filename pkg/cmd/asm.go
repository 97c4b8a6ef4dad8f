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
	"path/filepath"
	"strings"

	"github.com/consensys/go-cvm/pkg/asm/assembler"
	"github.com/consensys/go-cvm/pkg/util/source"
	"github.com/consensys/go-cvm/pkg/vm/loader"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var asmCmd = &cobra.Command{
	Use:   "asm [flags] file.asm",
	Short: "Assemble a source file into an object file.",
	Long: `Assemble a textual listing of machine instructions into an object file.
	By default, the object file for "file.asm" is "file.obj".`,
	Aliases: []string{"assemble"},
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
		output := GetString(cmd, "output")
		//
		if output == "" {
			output = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + loader.SUFFIX
		}
		//
		os.Exit(assembleFile(args[0], output))
	},
}

// Assemble a given source file into a given object file, returning the exit
// status for the process.
func assembleFile(filename string, objfile string) int {
	log.Debugf("assembling source file %s", filename)
	//
	srcfile, err := source.ReadFile(filename)
	if err != nil {
		log.Error(err)
		return EXIT_LOAD_FAILURE
	}
	//
	code, errors := assembler.Assemble(srcfile)
	//
	if len(errors) != 0 {
		// Report errors
		for _, err := range errors {
			printSyntaxError(&err)
		}
		//
		return EXIT_FAULT
	}
	//
	if err = os.WriteFile(objfile, code, 0o644); err != nil {
		log.Error(err)
		return EXIT_LOAD_FAILURE
	}
	//
	log.Debugf("wrote %d bytes to %s", len(code), objfile)
	//
	return 0
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(asmCmd)
	asmCmd.Flags().StringP("output", "o", "", "object file to write")
}
