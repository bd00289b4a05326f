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

package builder

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/walteh/buildrc/pkg/batch"
	"github.com/walteh/buildrc/pkg/builderr"
	"github.com/walteh/buildrc/pkg/files"
	"github.com/walteh/buildrc/pkg/frontmatter"
	"github.com/walteh/buildrc/pkg/log"
	"github.com/walteh/buildrc/pkg/paths"
	"github.com/walteh/buildrc/pkg/pipeline"
	"gitlab.com/tozd/go/errors"
)

// 🚀 Build runs clean (when enabled), read, run and write, and returns the
// tree that was written.
func (b *Builder) Build(ctx context.Context) (files.Tree, error) {
	ctx = withBuildID(ctx)
	logger := zerolog.Ctx(ctx)
	start := time.Now()

	if b.clean {
		if err := b.Clean(ctx); err != nil {
			return nil, err
		}
	}

	tree, err := b.Process(ctx)
	if err != nil {
		return nil, err
	}

	if err := b.Write(ctx, tree, ""); err != nil {
		return nil, err
	}

	logger.Info().
		Int("files", len(tree)).
		Dur("elapsed", time.Since(start)).
		Msg("build complete")

	return tree, nil
}

// 🧪 Process reads the source tree and runs the pipeline without touching the
// destination.
func (b *Builder) Process(ctx context.Context) (files.Tree, error) {
	if !hasBuildID(ctx) {
		ctx = withBuildID(ctx)
	}

	tree, err := b.Read(ctx, "")
	if err != nil {
		return nil, err
	}
	if err := b.Run(ctx, tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// 🧹 Clean removes the destination directory. A missing directory is not an error.
func (b *Builder) Clean(ctx context.Context) error {
	dest := b.resolver.DestinationDir()
	if err := b.checkCleanTarget(dest); err != nil {
		return err
	}

	console := log.FromContext(ctx)
	console.StartPhase(ctx, log.PhaseOperation{Phase: log.PhaseClean, Dir: dest})
	defer console.EndPhase(ctx)

	zerolog.Ctx(ctx).Info().Str("dir", dest).Msg("cleaning destination")

	if err := os.RemoveAll(dest); err != nil {
		return &builderr.FailedWriteError{Path: dest, Err: errors.WithStack(err)}
	}
	return nil
}

// checkCleanTarget refuses to remove the working directory, the sources, or
// any directory holding either of them.
func (b *Builder) checkCleanTarget(dest string) error {
	refuse := builderr.Invalid("destination", b.resolver.Destination(), "cleaning it would remove the source directory")
	for _, protected := range []string{b.resolver.Root(), b.resolver.SourceDir()} {
		rel, err := paths.Rel(dest, protected)
		if err != nil {
			return refuse
		}
		// anything not reached by climbing out of dest lives inside it
		if rel != ".." && !strings.HasPrefix(rel, "../") {
			return refuse
		}
	}
	return nil
}

// 📖 Read loads every file below dir, relative to the working directory, or
// the configured source when dir is empty. Keys are relative to that directory.
func (b *Builder) Read(ctx context.Context, dir string) (files.Tree, error) {
	root := b.resolver.SourceDir()
	if dir != "" {
		root = b.resolver.Resolve(dir)
	}

	list, err := files.Walk(ctx, root, b.ignores)
	if err != nil {
		return nil, errors.Errorf("listing %s: %w", root, err)
	}

	console := log.FromContext(ctx)
	console.StartPhase(ctx, log.PhaseOperation{Phase: log.PhaseRead, Dir: root, Total: len(list)})
	zerolog.Ctx(ctx).Info().Str("dir", root).Int("files", len(list)).Int("concurrency", b.concurrency).Msg("reading")

	reader := files.NewReader(root, b.activeCodec())
	records, err := batch.Run(ctx, list, b.concurrency, func(ctx context.Context, rel string) (*files.Record, error) {
		rec, err := reader.Read(ctx, rel)
		if err != nil {
			return nil, err
		}
		console.LogFileOperation(ctx, log.FileOperation{
			Path:   rel,
			Phase:  log.PhaseRead,
			Size:   len(rec.Contents),
			Fields: len(rec.Fields),
		})
		return rec, nil
	})
	if err != nil {
		return nil, err
	}
	console.EndPhase(ctx)

	tree := make(files.Tree, len(list))
	for i, rel := range list {
		tree[rel] = records[i]
	}
	return tree, nil
}

// ReadFile loads a single file, resolving relative paths against the source directory.
func (b *Builder) ReadFile(ctx context.Context, path string) (*files.Record, error) {
	return files.NewReader(b.resolver.SourceDir(), b.activeCodec()).Read(ctx, path)
}

// 🔄 Run passes tree through the registered steps.
func (b *Builder) Run(ctx context.Context, tree files.Tree) error {
	return b.RunWith(ctx, tree, b.steps)
}

// RunWith passes tree through steps instead of the registered ones.
func (b *Builder) RunWith(ctx context.Context, tree files.Tree, steps []pipeline.Step) error {
	console := log.FromContext(ctx)
	console.StartPhase(ctx, log.PhaseOperation{Phase: log.PhaseRun, Dir: b.resolver.SourceDir(), Total: len(steps)})
	zerolog.Ctx(ctx).Info().Int("steps", len(steps)).Int("files", len(tree)).Msg("running pipeline")

	before := tree.Paths()
	if err := pipeline.Run(ctx, tree, b.metadata, steps); err != nil {
		return err
	}

	for _, rel := range before {
		if _, ok := tree[rel]; !ok {
			console.LogFileOperation(ctx, log.FileOperation{Path: rel, Phase: log.PhaseRun, Removed: true})
		}
	}
	console.EndPhase(ctx)
	return nil
}

// 💾 Write persists tree below dir, relative to the working directory, or the
// configured destination when dir is empty.
func (b *Builder) Write(ctx context.Context, tree files.Tree, dir string) error {
	root := b.resolver.DestinationDir()
	if dir != "" {
		root = b.resolver.Resolve(dir)
	}

	list := tree.Paths()

	console := log.FromContext(ctx)
	console.StartPhase(ctx, log.PhaseOperation{Phase: log.PhaseWrite, Dir: root, Total: len(list)})
	zerolog.Ctx(ctx).Info().Str("dir", root).Int("files", len(list)).Int("concurrency", b.concurrency).Msg("writing")

	writer := files.NewWriter(root)
	err := batch.Each(ctx, list, b.concurrency, func(ctx context.Context, rel string) error {
		rec := tree[rel]
		if err := writer.Write(ctx, rel, rec); err != nil {
			return err
		}
		console.LogFileOperation(ctx, log.FileOperation{Path: rel, Phase: log.PhaseWrite, Size: len(rec.Contents)})
		return nil
	})
	if err != nil {
		return err
	}
	console.EndPhase(ctx)
	return nil
}

// WriteFile writes a single record, resolving relative paths against the destination directory.
func (b *Builder) WriteFile(ctx context.Context, path string, rec *files.Record) error {
	return files.NewWriter(b.resolver.DestinationDir()).Write(ctx, filepath.ToSlash(path), rec)
}

func (b *Builder) activeCodec() frontmatter.Codec {
	if !b.frontmatter {
		return nil
	}
	return b.codec
}

type buildIDKey struct{}

func withBuildID(ctx context.Context) context.Context {
	id := uuid.NewString()
	ctx = context.WithValue(ctx, buildIDKey{}, id)
	return zerolog.Ctx(ctx).With().Str("build_id", id).Logger().WithContext(ctx)
}

func hasBuildID(ctx context.Context) bool {
	_, ok := ctx.Value(buildIDKey{}).(string)
	return ok
}

// BuildID returns the id attached to ctx by Build or Process.
func BuildID(ctx context.Context) string {
	id, _ := ctx.Value(buildIDKey{}).(string)
	return id
}
