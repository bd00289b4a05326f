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

package files

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/walteh/buildrc/pkg/builderr"
	"github.com/walteh/buildrc/pkg/ignore"
	"github.com/walteh/buildrc/pkg/paths"
	"gitlab.com/tozd/go/errors"
)

// 🚶 Walk lists every file below dir as slash separated relative paths, in
// lexical order, skipping whatever rule ignores. A nil rule keeps everything.
func Walk(ctx context.Context, dir string, rule ignore.Rule) ([]string, error) {
	logger := zerolog.Ctx(ctx)

	var out []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return &builderr.FailedReadError{Path: p, Err: errors.WithStack(err)}
		}
		if p == dir {
			return nil
		}

		rel, err := paths.Rel(dir, p)
		if err != nil {
			return err
		}

		if rule != nil && rule.Ignored(rel, d) {
			logger.Debug().Str("path", rel).Msg("ignored")
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		// symlinked directories are not followed
		if d.Type()&fs.ModeSymlink != 0 {
			target, err := os.Stat(p)
			if err == nil && target.IsDir() {
				logger.Debug().Str("path", rel).Msg("skipping symlinked directory")
				return nil
			}
		}

		out = append(out, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
