// Copyright 2026 ETH Zurich
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package command contains the cobra subcommands shared by the IPTV
// applications.
package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scionproto/mcastlab/private/config"
	"github.com/scionproto/mcastlab/private/env"
)

// Pather returns the path to a command.
type Pather interface {
	CommandPath() string
}

// SampleCommand creates a subcommand of the sample command.
type SampleCommand func(pather Pather) *cobra.Command

// NewSample creates the sample command with the given subcommands.
func NewSample(pather Pather, cmds ...SampleCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Display sample files",
		Args:  cobra.NoArgs,
	}
	for _, f := range cmds {
		cmd.AddCommand(f(cmd))
	}
	return cmd
}

// NewSampleConfig creates the "sample config" subcommand that prints the
// commented TOML sample of sampler.
func NewSampleConfig(sampler config.Sampler) SampleCommand {
	return func(pather Pather) *cobra.Command {
		return &cobra.Command{
			Use:   "config",
			Short: "Display sample configuration file",
			Example: fmt.Sprintf("  %[1]s config > app.toml\n"+
				"  %[2]s --config app.toml", pather.CommandPath(), rootPath(pather)),
			Args: cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				config.WriteSample(cmd.OutOrStdout(), nil, nil, sampler)
				return nil
			},
		}
	}
}

// NewVersion creates the version command.
func NewVersion(pather Pather) *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   "Show the version information",
		Example: fmt.Sprintf("  %s version", rootPath(pather)),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), env.VersionInfo())
			return err
		},
	}
}

func rootPath(pather Pather) string {
	if c, ok := pather.(*cobra.Command); ok {
		return c.Root().CommandPath()
	}
	return pather.CommandPath()
}
