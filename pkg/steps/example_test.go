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

package steps_test

import (
	"context"
	"fmt"

	"github.com/walteh/buildrc/pkg/files"
	"github.com/walteh/buildrc/pkg/pipeline"
	"github.com/walteh/buildrc/pkg/steps"
)

func ExampleReplace() {
	replace, err := steps.Replace(
		steps.Rule{From: "{{year}}", To: "2025"},
		steps.Rule{From: "draft", To: "final", Files: "posts/**"},
	)
	if err != nil {
		fmt.Println(err)
		return
	}

	tree := files.Tree{
		"posts/a.md": {Contents: []byte("draft from {{year}}")},
		"about.md":   {Contents: []byte("draft from {{year}}")},
	}
	_ = pipeline.Run(context.Background(), tree, pipeline.Metadata{}, []pipeline.Step{replace})

	fmt.Println(string(tree["posts/a.md"].Contents))
	fmt.Println(string(tree["about.md"].Contents))
	// Output:
	// final from 2025
	// draft from 2025
}
