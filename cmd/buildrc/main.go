// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/walteh/buildrc/cmd/buildrc/commands"
	"github.com/walteh/buildrc/cmd/buildrc/opts"
	"github.com/walteh/buildrc/pkg/log"
)

func main() {
	ctx := context.Background()
	o := &opts.RootOpts{}

	rootCmd := &cobra.Command{
		Use:   "buildrc",
		Short: "A pluggable static build tool",
		Long: `buildrc reads a source directory into memory, runs it through a chain of
steps and writes the result to a destination directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger := setupLogging(o.Debug)
			ctx := logger.WithContext(cmd.Context())
			o.UserLogger = log.NewUserLogger(ctx)
			cmd.SetContext(ctx)
		},
	}

	addRootFlags(rootCmd, o)

	rootCmd.AddCommand(
		commands.NewBuildCmd(o),
		commands.NewCleanCmd(o),
		commands.NewVersionCmd(),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if o.UserLogger == nil {
			o.UserLogger = log.NewUserLogger(setupLogging(o.Debug).WithContext(ctx))
		}
		o.UserLogger.LogValidation(false, "Command failed", err)
		os.Exit(1)
	}
}
