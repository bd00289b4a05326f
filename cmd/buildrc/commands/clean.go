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

package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/buildrc/cmd/buildrc/opts"
	"github.com/walteh/buildrc/pkg/log"
	"gitlab.com/tozd/go/errors"
)

func NewCleanCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the destination directory",
		Long: `Clean removes the destination directory and everything in it.
It refuses to run when the destination is the working directory or holds
the source directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			b, err := opts.NewBuilder(ctx, cmd.Flags().Changed("config"))
			if err != nil {
				return err
			}

			ctx = log.NewContext(ctx, log.New(cmd.OutOrStdout(), *zerolog.Ctx(ctx)))

			if err := b.Clean(ctx); err != nil {
				return errors.Errorf("cleaning: %w", err)
			}

			opts.UserLogger.LogValidation(true, "Removed "+b.Path(b.Destination()), nil)
			return nil
		},
	}

	return cmd
}
