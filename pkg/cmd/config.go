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

	"github.com/consensys/go-cvm/pkg/config"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Load the configuration for a given command, either from the file named by
// --config or from the nearest cvm.toml.  Flags given explicitly on the command
// line override the configuration file.
func getConfig(cmd *cobra.Command) config.Config {
	var (
		filename = GetString(cmd, "config")
		cfg      config.Config
		err      error
	)
	//
	if filename != "" {
		cfg, err = config.Load(filename)
	} else {
		cfg, err = config.FindAndLoad(".")
	}
	//
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	} else if cfg.Path != "" {
		log.Debugf("using configuration %s", cfg.Path)
	}
	//
	if cmd.Flags().Changed("memory") {
		cfg.Machine.Memory = GetUint(cmd, "memory")
	}
	//
	if cmd.Flags().Changed("chunk") {
		cfg.Machine.Chunk = GetUint(cmd, "chunk")
	}
	//
	if cmd.Flags().Changed("core-dump") {
		cfg.Machine.CoreDump = GetFlag(cmd, "core-dump")
	}
	//
	if cmd.Flags().Lookup("no-color") != nil && GetFlag(cmd, "no-color") {
		cfg.Disasm.Colour = false
	}
	// Flags may have broken the configuration
	if err = cfg.Validate(); err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return cfg
}
