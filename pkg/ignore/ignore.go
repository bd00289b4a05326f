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

// Package ignore decides which source paths the read phase skips.
//
// Paths handed to a Rule are slash separated and relative to the source
// directory. A rule that matches a directory prunes everything below it.
package ignore

import (
	"io/fs"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/sabhiram/go-gitignore"
	"gitlab.com/tozd/go/errors"
)

// 🚦 Rule reports whether a source path should be skipped
type Rule interface {
	Ignored(rel string, d fs.DirEntry) bool
}

// Func adapts a predicate to a Rule.
type Func func(rel string, d fs.DirEntry) bool

func (f Func) Ignored(rel string, d fs.DirEntry) bool {
	return f(rel, d)
}

// 🌟 Pattern is a doublestar glob matched against the relative path
type Pattern string

// NewPattern validates glob before turning it into a Pattern.
func NewPattern(glob string) (Pattern, error) {
	if glob == "" || !doublestar.ValidatePattern(glob) {
		return "", errors.Errorf("invalid ignore pattern %q", glob)
	}
	return Pattern(glob), nil
}

func (p Pattern) Ignored(rel string, _ fs.DirEntry) bool {
	matched, err := doublestar.Match(string(p), rel)
	return err == nil && matched
}

// 📄 File applies gitignore style rules
type File struct {
	gi *gitignore.GitIgnore
}

// LoadFile compiles the gitignore style file at path.
func LoadFile(path string) (*File, error) {
	gi, err := gitignore.CompileIgnoreFile(path)
	if err != nil {
		return nil, errors.Errorf("compiling ignore file %s: %w", path, err)
	}
	return &File{gi: gi}, nil
}

// Lines compiles gitignore style rules given inline.
func Lines(lines ...string) *File {
	return &File{gi: gitignore.CompileIgnoreLines(lines...)}
}

func (f *File) Ignored(rel string, d fs.DirEntry) bool {
	if d != nil && d.IsDir() {
		return f.gi.MatchesPath(rel + "/")
	}
	return f.gi.MatchesPath(rel)
}

// 🧺 Matcher combines rules; a path is skipped when any rule matches
type Matcher []Rule

func (m Matcher) Ignored(rel string, d fs.DirEntry) bool {
	for _, r := range m {
		if r.Ignored(rel, d) {
			return true
		}
	}
	return false
}
