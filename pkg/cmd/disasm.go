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
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/consensys/go-cvm/pkg/asm/disasm"
	"github.com/consensys/go-cvm/pkg/vm/loader"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var disasmCmd = &cobra.Command{
	Use:   "disasm [flags] file1.obj file2.obj ...",
	Short: "Disassemble one or more object files.",
	Long: `Translate each object file into an assembly listing.  The listing for
	"file.obj" is written to "file.dis.txt", unless --stdout is given.`,
	Aliases: []string{"disassemble"},
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		// Configure log level
		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
		//
		var (
			stdout = GetFlag(cmd, "stdout")
			cfg    = getConfig(cmd)
			styles disasm.Styles
		)
		// Colour is only used when writing to a terminal
		if stdout && cfg.Disasm.Colour && term.IsTerminal(int(os.Stdout.Fd())) {
			styles = disasm.ColourStyles()
		}
		//
		for _, objfile := range args {
			var err error
			//
			if stdout {
				err = disassemble(objfile, os.Stdout, styles)
			} else {
				err = disassembleToFile(objfile)
			}
			//
			if err != nil {
				log.Error(err)
				os.Exit(EXIT_LOAD_FAILURE)
			}
		}
	},
}

// Disassemble an object file into its listing file.
func disassembleToFile(objfile string) error {
	listing, ok := disasm.ListingFileName(objfile, loader.SUFFIX)
	//
	if !ok {
		return fmt.Errorf("invalid file name suffix: %s", objfile)
	}
	//
	fmt.Printf("Disassembling %s to %s\n", objfile, listing)
	//
	file, err := os.Create(listing)
	if err != nil {
		return err
	}
	//
	writer := bufio.NewWriter(file)
	//
	if err = disassemble(objfile, writer, disasm.Styles{}); err == nil {
		err = writer.Flush()
	}
	//
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	//
	return err
}

// Disassemble an object file, writing its listing to a given writer.  A
// truncated final instruction is reported, but does not prevent the rest of the
// listing being written.
func disassemble(objfile string, w io.Writer, styles disasm.Styles) error {
	code, err := loader.ReadObjectFile(objfile)
	if err != nil {
		return err
	}
	//
	insns, derr := disasm.Decode(code)
	//
	if derr != nil {
		log.Warnf("%s: %s", objfile, derr)
	}
	//
	for _, insn := range insns {
		if !insn.Opcode.IsValid() {
			log.Warnf("unknown opcode %d in file %s", byte(insn.Opcode), objfile)
		}
	}
	//
	log.Debugf("disassembled %d instructions from %s", len(insns), objfile)
	//
	return disasm.Write(w, insns, styles)
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(disasmCmd)
	disasmCmd.Flags().Bool("stdout", false, "write listings to stdout")
	disasmCmd.Flags().Bool("no-color", false, "disable coloured output")
}
