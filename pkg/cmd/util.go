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
	"strings"

	"github.com/consensys/go-cvm/pkg/util/source"
	"github.com/spf13/cobra"
)

// GetFlag gets an expected flag, or exits if an error arises.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetUint gets an expected unsigned integer, or exits if an error arises.
func GetUint(cmd *cobra.Command, flag string) uint {
	r, err := cmd.Flags().GetUint(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetString gets an expected string, or exits if an error arises.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// Print a syntax error with appropriate highlighting.
func printSyntaxError(err *source.SyntaxError) {
	fmt.Print(formatSyntaxError(err))
}

func formatSyntaxError(err *source.SyntaxError) string {
	var (
		builder    strings.Builder
		span       = err.Span()
		line       = err.FirstEnclosingLine()
		lineOffset = span.Start() - line.Start()
		// Calculate length (ensures don't overflow line)
		length = max(1, min(line.Length()-lineOffset, span.Length()))
	)
	// Print error + line number
	builder.WriteString(fmt.Sprintf("%s:%d:%d-%d %s\n", err.SourceFile().Filename(),
		line.Number(), 1+lineOffset, 1+lineOffset+length, err.Message()))
	// Print separator line
	builder.WriteString("\n")
	// Print line
	builder.WriteString(line.String())
	builder.WriteString("\n")
	// Print indent (todo: account for tabs)
	builder.WriteString(strings.Repeat(" ", lineOffset))
	// Print highlight
	builder.WriteString(strings.Repeat("^", length))
	builder.WriteString("\n")
	//
	return builder.String()
}
