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

package builder_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/walteh/buildrc/pkg/builder"
	"github.com/walteh/buildrc/pkg/files"
	"github.com/walteh/buildrc/pkg/pipeline"
)

func Example() {
	dir, _ := os.MkdirTemp("", "buildrc-example")
	defer os.RemoveAll(dir)

	_ = os.MkdirAll(filepath.Join(dir, "src"), 0o755)
	_ = os.WriteFile(filepath.Join(dir, "src", "index.md"), []byte("---\ntitle: Home\n---\nwelcome\n"), 0o644)

	b, _ := builder.New(dir)
	b.Use(pipeline.StepFunc(func(ctx context.Context, tree files.Tree, metadata pipeline.Metadata) error {
		for _, rec := range tree {
			title, _ := rec.Get("title")
			rec.Contents = []byte(fmt.Sprintf("# %v\n%s", title, strings.ToUpper(string(rec.Contents))))
		}
		return nil
	}))

	if _, err := b.Build(context.Background()); err != nil {
		fmt.Println(err)
		return
	}

	out, _ := os.ReadFile(filepath.Join(dir, "build", "index.md"))
	fmt.Print(string(out))
	// Output:
	// # Home
	// WELCOME
}
