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
	"io"
	"os"
	"strings"

	"github.com/consensys/go-cvm/pkg/asm/disasm"
	"github.com/consensys/go-cvm/pkg/vm/opcode"
	"github.com/consensys/go-cvm/pkg/vm/snapshot"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var coreCmd = &cobra.Command{
	Use:   "core [flags] file.core",
	Short: "Inspect a snapshot written when a machine faulted.",
	Long: `Print the registers and fault recorded in a snapshot, along with the
	instructions surrounding the point of failure.`,
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
		snap, err := snapshot.ReadFile(args[0])
		//
		if err != nil {
			log.Error(err)
			os.Exit(EXIT_LOAD_FAILURE)
		}
		//
		printSnapshot(os.Stdout, snap, GetUint(cmd, "context"))
	},
}

// Print a summary of a given snapshot, including a given number of
// instructions either side of the fault.
func printSnapshot(w io.Writer, snap *snapshot.Snapshot, context uint) {
	var pc = snap.Registers.PC
	//
	fmt.Fprintf(w, "registers: %s\n", snap.Registers)
	fmt.Fprintf(w, "steps: %d\n", snap.Steps)
	//
	if snap.Fault != nil {
		pc = snap.Fault.PC
		fmt.Fprintf(w, "fault: %s, %s (pc=%d, %s)\n", snap.Fault.Kind, snap.Fault.Message, snap.Fault.PC,
			opcode.Opcode(snap.Fault.Opcode))
	} else if snap.Running {
		fmt.Fprintln(w, "status: running")
	} else {
		fmt.Fprintln(w, "status: halted")
	}
	// Disassemble the code region
	sb := max(0, min(int(snap.Registers.SB), len(snap.Memory)))
	insns, _ := disasm.Decode(snap.Memory[:sb])
	//
	fmt.Fprintln(w)
	//
	if i := enclosingInstruction(insns, pc); i >= 0 {
		start := max(0, i-int(context))
		end := min(len(insns), i+int(context)+1)
		//
		for j := start; j < end; j++ {
			marker := "  "
			if j == i {
				marker = "=>"
			}
			//
			fmt.Fprintf(w, "%s%s\n", marker, disasm.Format(insns[j], disasm.Styles{}))
		}
	}
	// Print the top of the stack
	fmt.Fprintln(w)
	fmt.Fprintf(w, "stack: %s\n", stackString(snap, 16))
}

// Determine the index of the last instruction starting at or before a given
// address, or -1 if there is none.  A halted machine's pc is just beyond the
// HALT which stopped it.
func enclosingInstruction(insns []disasm.Instruction, pc int32) int {
	var index = -1
	//
	for i, insn := range insns {
		if int64(insn.Address) > int64(pc) {
			break
		}
		//
		index = i
	}
	//
	return index
}

// Render (at most) the topmost n bytes of the stack in a snapshot.
func stackString(snap *snapshot.Snapshot, n int) string {
	var (
		sb      = int(snap.Registers.SB)
		sp      = int(snap.Registers.SP)
		builder strings.Builder
	)
	//
	if sp < sb || sp >= len(snap.Memory) || sb < 0 {
		return "(empty)"
	}
	//
	start := max(sb, sp-n+1)
	//
	if start > sb {
		builder.WriteString("... ")
	}
	//
	for i := start; i <= sp; i++ {
		if i != start {
			builder.WriteString(" ")
		}
		//
		builder.WriteString(fmt.Sprintf("%02x", snap.Memory[i]))
	}
	//
	return builder.String()
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(coreCmd)
	coreCmd.Flags().Uint("context", 3, "number of instructions shown either side of the fault")
}
