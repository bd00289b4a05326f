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

// Package builder reads a source tree, passes it through a pipeline of steps
// and writes the result to a destination directory.
//
//	b, err := builder.New(".")
//	if err != nil {
//		return err
//	}
//	b.Use(pipeline.StepFunc(func(ctx context.Context, tree files.Tree, metadata pipeline.Metadata) error {
//		delete(tree, "draft.md")
//		return nil
//	}))
//	tree, err := b.Build(ctx)
//
// The four phases (clean, read, run, write) run strictly one after another.
// Read and write issue file operations in slices bounded by the concurrency
// ceiling; steps run one at a time on the calling goroutine.
package builder

import (
	"io/fs"
	"slices"

	"github.com/walteh/buildrc/pkg/batch"
	"github.com/walteh/buildrc/pkg/builderr"
	"github.com/walteh/buildrc/pkg/frontmatter"
	"github.com/walteh/buildrc/pkg/ignore"
	"github.com/walteh/buildrc/pkg/paths"
	"github.com/walteh/buildrc/pkg/pipeline"
)

// 🏗️ Builder holds the configuration of a build and runs it
type Builder struct {
	resolver    *paths.Resolver
	metadata    pipeline.Metadata
	concurrency int
	clean       bool
	frontmatter bool
	codec       frontmatter.Codec
	ignores     ignore.Matcher
	steps       []pipeline.Step
}

// 🏭 New creates a builder working in dir with default settings: source "src",
// destination "build", unbounded concurrency, clean and frontmatter enabled.
func New(dir string) (*Builder, error) {
	resolver, err := paths.New(dir)
	if err != nil {
		return nil, err
	}
	return &Builder{
		resolver:    resolver,
		metadata:    pipeline.Metadata{},
		concurrency: batch.Unbounded,
		clean:       true,
		frontmatter: true,
		codec:       frontmatter.YAML{},
	}, nil
}

// Directory returns the absolute working directory.
func (b *Builder) Directory() string {
	return b.resolver.Root()
}

func (b *Builder) SetDirectory(dir string) error {
	return b.resolver.SetRoot(dir)
}

// Path resolves segments against the working directory.
func (b *Builder) Path(segments ...string) string {
	return b.resolver.Resolve(segments...)
}

func (b *Builder) Source() string {
	return b.resolver.Source()
}

func (b *Builder) SetSource(p string) error {
	return b.resolver.SetSource(p)
}

func (b *Builder) Destination() string {
	return b.resolver.Destination()
}

func (b *Builder) SetDestination(p string) error {
	return b.resolver.SetDestination(p)
}

// Metadata returns the live build metadata shared with every step.
func (b *Builder) Metadata() pipeline.Metadata {
	return b.metadata
}

// 📋 SetMetadata replaces the metadata with a deep copy of m, so later changes
// by the caller do not leak into the build.
func (b *Builder) SetMetadata(m map[string]any) error {
	if m == nil {
		return builderr.Invalid("metadata", m, "must be a non-nil map")
	}
	copied, err := copyMap(m)
	if err != nil {
		return builderr.Invalid("metadata", m, err.Error())
	}
	b.metadata = pipeline.Metadata(copied)
	return nil
}

func (b *Builder) Concurrency() int {
	return b.concurrency
}

// SetConcurrency sets the ceiling on simultaneous file operations, either a
// positive number or batch.Unbounded.
func (b *Builder) SetConcurrency(n int) error {
	if !batch.Valid(n) {
		return builderr.Invalid("concurrency", n, "must be a positive integer or unbounded")
	}
	b.concurrency = n
	return nil
}

// CleanEnabled reports whether Build removes the destination first.
func (b *Builder) CleanEnabled() bool {
	return b.clean
}

func (b *Builder) SetClean(clean bool) *Builder {
	b.clean = clean
	return b
}

func (b *Builder) Frontmatter() bool {
	return b.frontmatter
}

func (b *Builder) SetFrontmatter(enabled bool) *Builder {
	b.frontmatter = enabled
	return b
}

// SetCodec swaps the header block codec used while frontmatter is enabled.
func (b *Builder) SetCodec(codec frontmatter.Codec) error {
	if codec == nil {
		return builderr.Invalid("codec", codec, "must not be nil")
	}
	b.codec = codec
	return nil
}

// 🙈 Ignore adds glob patterns matched against source relative paths. All
// patterns are validated before any is added.
func (b *Builder) Ignore(patterns ...string) error {
	rules := make([]ignore.Rule, 0, len(patterns))
	for _, p := range patterns {
		pattern, err := ignore.NewPattern(p)
		if err != nil {
			return builderr.Invalid("ignore", p, "must be a valid glob pattern")
		}
		rules = append(rules, pattern)
	}
	b.ignores = append(b.ignores, rules...)
	return nil
}

// IgnoreFunc adds a predicate rule.
func (b *Builder) IgnoreFunc(fn func(rel string, d fs.DirEntry) bool) *Builder {
	b.ignores = append(b.ignores, ignore.Func(fn))
	return b
}

// IgnoreRule adds an arbitrary rule.
func (b *Builder) IgnoreRule(rule ignore.Rule) *Builder {
	b.ignores = append(b.ignores, rule)
	return b
}

// IgnoreFile adds the gitignore style rules of the file at path, relative to
// the working directory.
func (b *Builder) IgnoreFile(path string) error {
	f, err := ignore.LoadFile(b.resolver.Resolve(path))
	if err != nil {
		return builderr.Invalid("ignore_file", path, err.Error())
	}
	b.ignores = append(b.ignores, f)
	return nil
}

// Ignores returns a copy of the registered rules.
func (b *Builder) Ignores() []ignore.Rule {
	return slices.Clone([]ignore.Rule(b.ignores))
}

// 🧩 Use appends steps to the pipeline
func (b *Builder) Use(steps ...pipeline.Step) *Builder {
	b.steps = append(b.steps, steps...)
	return b
}

// Steps returns a copy of the registered steps.
func (b *Builder) Steps() []pipeline.Step {
	return slices.Clone(b.steps)
}
