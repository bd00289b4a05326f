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

// Package paths resolves build paths against a working directory.
package paths

import (
	"path/filepath"
	"strings"

	"github.com/walteh/buildrc/pkg/builderr"
	"gitlab.com/tozd/go/errors"
)

const (
	DefaultSource      = "src"
	DefaultDestination = "build"
)

// 📁 Resolver resolves relative paths against a root directory and its
// configured source and destination subpaths
type Resolver struct {
	root        string
	source      string
	destination string
}

// 🏭 New creates a resolver rooted at dir, which is made absolute
func New(dir string) (*Resolver, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, builderr.Invalid("directory", dir, "must be a non-empty path")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Errorf("resolving root %q: %w", dir, err)
	}
	return &Resolver{
		root:        abs,
		source:      DefaultSource,
		destination: DefaultDestination,
	}, nil
}

// Root returns the absolute working directory.
func (r *Resolver) Root() string {
	return r.root
}

// SetRoot moves the working directory. Source and destination stay relative to it.
func (r *Resolver) SetRoot(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return builderr.Invalid("directory", dir, "must be a non-empty path")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return errors.Errorf("resolving root %q: %w", dir, err)
	}
	r.root = abs
	return nil
}

// Resolve joins segments onto the root. An absolute first segment replaces the root.
func (r *Resolver) Resolve(segments ...string) string {
	if len(segments) > 0 && filepath.IsAbs(segments[0]) {
		return filepath.Clean(filepath.Join(segments...))
	}
	return filepath.Join(append([]string{r.root}, segments...)...)
}

func (r *Resolver) Source() string {
	return r.source
}

func (r *Resolver) SetSource(p string) error {
	if strings.TrimSpace(p) == "" {
		return builderr.Invalid("source", p, "must be a non-empty path")
	}
	r.source = p
	return nil
}

func (r *Resolver) Destination() string {
	return r.destination
}

func (r *Resolver) SetDestination(p string) error {
	if strings.TrimSpace(p) == "" {
		return builderr.Invalid("destination", p, "must be a non-empty path")
	}
	r.destination = p
	return nil
}

// SourceDir returns the absolute source directory.
func (r *Resolver) SourceDir() string {
	return r.Resolve(r.source)
}

// DestinationDir returns the absolute destination directory.
func (r *Resolver) DestinationDir() string {
	return r.Resolve(r.destination)
}

// 🔍 Rel returns target relative to base as a slash separated path
func Rel(base, target string) (string, error) {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return "", errors.Errorf("relativizing %s against %s: %w", target, base, err)
	}
	return filepath.ToSlash(rel), nil
}

// Within resolves a slash separated logical path against dir. Absolute paths are kept.
func Within(dir, p string) string {
	native := filepath.FromSlash(p)
	if filepath.IsAbs(native) {
		return filepath.Clean(native)
	}
	return filepath.Join(dir, native)
}
