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
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/walteh/buildrc/pkg/builderr"
	"github.com/walteh/buildrc/pkg/paths"
	"gitlab.com/tozd/go/errors"
)

const (
	dirMode  = 0o755
	fileMode = 0o644
)

// 💾 Writer persists records relative to a destination directory
type Writer struct {
	dir string
}

// 🏭 NewWriter creates a writer for dir
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// 📝 Write stores rec at path, creating parent directories, and reapplies the
// record's mode when it has one. Nothing already written is rolled back.
func (w *Writer) Write(ctx context.Context, path string, rec *Record) error {
	if rec == nil {
		return &builderr.FailedWriteError{Path: path, Err: errors.New("nil record")}
	}

	abs := paths.Within(w.dir, path)
	if err := w.write(abs, rec); err != nil {
		return &builderr.FailedWriteError{Path: path, Err: err}
	}

	zerolog.Ctx(ctx).Debug().
		Str("path", path).
		Int("size", len(rec.Contents)).
		Stringer("mode", rec.Mode).
		Msg("wrote file")

	return nil
}

func (w *Writer) write(abs string, rec *Record) error {
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return errors.Errorf("creating parent directories: %w", err)
	}

	// write to a sibling temp file and rename it into place
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(abs)+".*.tmp")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(rec.Contents); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, fileMode); err != nil {
		os.Remove(tmpPath)
		return errors.Errorf("setting default mode: %w", err)
	}
	if err := os.Rename(tmpPath, abs); err != nil {
		os.Remove(tmpPath)
		return errors.Errorf("renaming temp file: %w", err)
	}

	if rec.Mode != 0 {
		if err := os.Chmod(abs, rec.Mode&PermBits); err != nil {
			return errors.Errorf("applying mode %s: %w", rec.Mode, err)
		}
	}

	return nil
}
