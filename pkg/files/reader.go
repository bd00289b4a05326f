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
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/walteh/buildrc/pkg/builderr"
	"github.com/walteh/buildrc/pkg/frontmatter"
	"github.com/walteh/buildrc/pkg/paths"
	"gitlab.com/tozd/go/errors"
)

// 📖 Reader loads files relative to a source directory
type Reader struct {
	dir   string
	codec frontmatter.Codec
}

// 🏭 NewReader creates a reader for dir. A nil codec disables header parsing.
func NewReader(dir string, codec frontmatter.Codec) *Reader {
	return &Reader{dir: dir, codec: codec}
}

// 📄 Read loads one file. Relative paths resolve against the reader's directory.
func (r *Reader) Read(ctx context.Context, path string) (*Record, error) {
	abs := paths.Within(r.dir, path)

	info, err := os.Stat(abs)
	if err != nil {
		return nil, &builderr.FailedReadError{Path: path, Err: errors.WithStack(err)}
	}
	if info.IsDir() {
		return nil, &builderr.FailedReadError{Path: path, Err: errors.New("is a directory")}
	}

	buf, err := os.ReadFile(abs)
	if err != nil {
		return nil, &builderr.FailedReadError{Path: path, Err: errors.WithStack(err)}
	}

	rec := &Record{
		Contents: buf,
		Mode:     info.Mode() & PermBits,
		Stats:    info,
	}

	// binary content passes through untouched
	if r.codec != nil && utf8.Valid(buf) {
		fields, body, err := r.codec.Decode(buf)
		if err != nil {
			return nil, &builderr.InvalidFrontmatterError{Path: path, Err: err}
		}
		if fields != nil {
			rec.Fields = fields
			rec.Contents = body
		}
	}

	zerolog.Ctx(ctx).Debug().
		Str("path", path).
		Int("size", len(rec.Contents)).
		Int("fields", len(rec.Fields)).
		Msg("read file")

	return rec, nil
}
