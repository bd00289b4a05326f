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

// Package pipeline runs transform steps, one at a time, over a shared file tree.
package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/walteh/buildrc/pkg/builderr"
	"github.com/walteh/buildrc/pkg/files"
	"gitlab.com/tozd/go/errors"
)

// Metadata is build-wide data shared by reference with every step of a build.
type Metadata map[string]any

// 🧩 Step transforms the tree and metadata. Returning nil advances the
// pipeline; an error aborts it.
type Step interface {
	Apply(ctx context.Context, tree files.Tree, metadata Metadata) error
}

// StepFunc adapts a function to a Step.
type StepFunc func(ctx context.Context, tree files.Tree, metadata Metadata) error

func (f StepFunc) Apply(ctx context.Context, tree files.Tree, metadata Metadata) error {
	return f(ctx, tree, metadata)
}

// Done is the completion signal handed to asynchronous steps.
type Done func(err error)

// ⏳ AsyncStep adapts a callback style step. The step may hand its work to
// other goroutines; the pipeline blocks until done is invoked. Calls after the
// first are logged and dropped.
func AsyncStep(fn func(ctx context.Context, tree files.Tree, metadata Metadata, done Done)) Step {
	return StepFunc(func(ctx context.Context, tree files.Tree, metadata Metadata) error {
		result := make(chan error, 1)
		var once sync.Once
		done := func(err error) {
			signaled := false
			once.Do(func() {
				signaled = true
				result <- err
			})
			if !signaled {
				zerolog.Ctx(ctx).Warn().Err(builderr.ErrStepCompletedTwice).Msg("ignoring extra completion signal")
			}
		}
		fn(ctx, tree, metadata, done)
		return <-result
	})
}

// 🏷️ Named attaches a name used in logs and errors
func Named(name string, step Step) Step {
	return &named{name: name, Step: step}
}

type named struct {
	Step
	name string
}

func (n *named) String() string { return n.name }

func nameOf(i int, step Step) string {
	if s, ok := step.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("step %d (%T)", i, step)
}

// 🏃 Run applies steps in order on the calling goroutine. The first failing
// step stops the run; changes made by earlier steps are kept.
func Run(ctx context.Context, tree files.Tree, metadata Metadata, steps []Step) error {
	logger := zerolog.Ctx(ctx)

	for i, step := range steps {
		name := nameOf(i, step)
		logger.Debug().Int("index", i).Str("step", name).Int("files", len(tree)).Msg("running step")

		if err := step.Apply(ctx, tree, metadata); err != nil {
			return errors.Errorf("running %s: %w", name, err)
		}
	}
	return nil
}
