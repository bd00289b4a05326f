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

package opts

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/walteh/buildrc/pkg/builder"
	"github.com/walteh/buildrc/pkg/config"
	"github.com/walteh/buildrc/pkg/log"
	"gitlab.com/tozd/go/errors"
)

// RootOpts is shared by every subcommand; flags are bound before any command runs.
type RootOpts struct {
	ConfigFile string
	Debug      bool
	UserLogger *log.UserLogger
}

// 🏗️ NewBuilder creates a builder from the config file. The default config file
// is optional; an explicitly named one must exist.
func (o *RootOpts) NewBuilder(ctx context.Context, explicit bool) (*builder.Builder, error) {
	cfg := &config.Config{}

	if _, err := os.Stat(o.ConfigFile); err == nil || explicit {
		loaded, err := config.Load(ctx, o.ConfigFile)
		if err != nil {
			return nil, errors.Errorf("loading config: %w", err)
		}
		cfg = loaded
	} else {
		zerolog.Ctx(ctx).Debug().Str("path", o.ConfigFile).Msg("no config file, using defaults")
	}

	dir, err := cfg.Dir()
	if err != nil {
		return nil, err
	}

	b, err := builder.New(dir)
	if err != nil {
		return nil, errors.Errorf("creating builder: %w", err)
	}

	if err := cfg.Apply(b); err != nil {
		return nil, errors.Errorf("applying config: %w", err)
	}

	return b, nil
}
