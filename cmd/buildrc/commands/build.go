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
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/buildrc/cmd/buildrc/opts"
	"github.com/walteh/buildrc/pkg/batch"
	"github.com/walteh/buildrc/pkg/builder"
	"github.com/walteh/buildrc/pkg/log"
	"github.com/walteh/buildrc/pkg/watch"
	"gitlab.com/tozd/go/errors"
)

type buildFlags struct {
	source      string
	destination string
	concurrency int
	clean       bool
	watch       bool
}

func NewBuildCmd(opts *opts.RootOpts) *cobra.Command {
	var flags buildFlags

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the destination tree from the source tree",
		Long: `Build reads every file under the source directory, runs the configured
steps over them and writes the result to the destination directory.
It will:
1. Remove the destination directory (unless clean is disabled)
2. Read the source tree, splitting off frontmatter
3. Run the steps
4. Write the resulting tree`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "build").Logger().WithContext(cmd.Context())

			b, err := opts.NewBuilder(ctx, cmd.Flags().Changed("config"))
			if err != nil {
				return err
			}
			if err := flags.apply(cmd, b); err != nil {
				return err
			}

			ctx = log.NewContext(ctx, log.New(cmd.OutOrStdout(), *zerolog.Ctx(ctx)))

			// every build starts from the configured metadata, not from what
			// steps of the previous build left behind
			seed := map[string]any(b.Metadata())
			build := func(ctx context.Context) error {
				if err := b.SetMetadata(seed); err != nil {
					return err
				}
				tree, err := b.Build(ctx)
				if err != nil {
					if flags.watch {
						opts.UserLogger.LogValidation(false, "Build failed", err)
					}
					return err
				}
				opts.UserLogger.LogBuild(len(tree), b.Path(b.Destination()))
				return nil
			}

			if err := build(ctx); err != nil && !flags.watch {
				return errors.Errorf("building: %w", err)
			}

			if !flags.watch {
				return nil
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			src := b.Path(b.Source())
			opts.UserLogger.LogStateChange("Watching " + src + " for changes")
			return watch.New(src, build, b.Path(b.Destination())).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&flags.source, "source", "", "source directory, relative to the config file")
	cmd.Flags().StringVar(&flags.destination, "destination", "", "destination directory, relative to the config file")
	cmd.Flags().IntVar(&flags.concurrency, "concurrency", batch.Unbounded, "maximum files read or written at once (-1 for unbounded)")
	cmd.Flags().BoolVar(&flags.clean, "clean", true, "remove the destination before writing")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "rebuild when the source directory changes")

	return cmd
}

// apply overrides config values with the flags the user set explicitly.
func (f *buildFlags) apply(cmd *cobra.Command, b *builder.Builder) error {
	if cmd.Flags().Changed("source") {
		if err := b.SetSource(f.source); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("destination") {
		if err := b.SetDestination(f.destination); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("concurrency") {
		if err := b.SetConcurrency(f.concurrency); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("clean") {
		b.SetClean(f.clean)
	}
	return nil
}
