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

package steps

import (
	"bytes"
	"context"
	"path"
	"strings"

	"github.com/walteh/buildrc/pkg/files"
	"github.com/walteh/buildrc/pkg/pipeline"
)

type commentStyle struct {
	open, line, close string
}

var commentStyles = map[string]commentStyle{
	".go":   {line: "// "},
	".js":   {line: "// "},
	".ts":   {line: "// "},
	".jsx":  {line: "// "},
	".tsx":  {line: "// "},
	".css":  {open: "/*\n", line: " * ", close: " */\n"},
	".py":   {line: "# "},
	".rb":   {line: "# "},
	".sh":   {line: "# "},
	".yaml": {line: "# "},
	".yml":  {line: "# "},
	".md":   {open: "<!--\n", close: "-->\n"},
	".html": {open: "<!--\n", close: "-->\n"},
	".xml":  {open: "<!--\n", close: "-->\n"},
}

// 📝 Banner returns a step that prepends text as a comment to every file whose
// extension has a known comment syntax. Other files are left alone. A leading
// #! line stays in place and the banner follows it.
func Banner(text string) pipeline.Step {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	return pipeline.Named("banner", pipeline.StepFunc(func(ctx context.Context, tree files.Tree, _ pipeline.Metadata) error {
		for p, rec := range tree {
			if rec == nil {
				continue
			}
			style, ok := commentStyles[strings.ToLower(path.Ext(p))]
			if !ok {
				continue
			}

			var buf bytes.Buffer
			body := rec.Contents
			// the interpreter line has to stay first
			if bytes.HasPrefix(body, []byte("#!")) {
				end := bytes.IndexByte(body, '\n')
				if end < 0 {
					buf.Write(body)
					buf.WriteString("\n")
					body = nil
				} else {
					buf.Write(body[:end+1])
					body = body[end+1:]
				}
			}
			buf.WriteString(style.open)
			for _, l := range lines {
				buf.WriteString(style.line + l + "\n")
			}
			buf.WriteString(style.close)
			buf.WriteString("\n")
			buf.Write(body)
			rec.Contents = buf.Bytes()
		}
		return nil
	}))
}
