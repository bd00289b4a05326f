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

// Package steps provides ready made pipeline steps.
//
// They are ordinary pipeline.Step values and follow the same contract as any
// step supplied by a caller.
package steps

import (
	"bytes"
	"context"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/buildrc/pkg/files"
	"github.com/walteh/buildrc/pkg/pipeline"
	"gitlab.com/tozd/go/errors"
)

// 🔄 Rule is a literal text replacement
type Rule struct {
	From  string `json:"from" yaml:"from"`
	To    string `json:"to" yaml:"to"`
	Files string `json:"files,omitempty" yaml:"files,omitempty"` // Optional doublestar filter on the relative path
}

// ✅ ValidateRules checks that every rule can be applied
func ValidateRules(rules []Rule) error {
	for i, r := range rules {
		if r.From == "" {
			return errors.Errorf("rule %d: from is required", i)
		}
		if r.Files != "" && !doublestar.ValidatePattern(r.Files) {
			return errors.Errorf("rule %d: invalid files pattern %q", i, r.Files)
		}
	}
	return nil
}

// 🔄 Replace returns a step applying rules, in order, to every matching file
func Replace(rules ...Rule) (pipeline.Step, error) {
	if err := ValidateRules(rules); err != nil {
		return nil, err
	}
	return pipeline.Named("replace", pipeline.StepFunc(func(ctx context.Context, tree files.Tree, _ pipeline.Metadata) error {
		logger := zerolog.Ctx(ctx)
		for _, path := range tree.Paths() {
			rec := tree[path]
			if rec == nil {
				continue
			}
			count := 0
			for _, r := range rules {
				if r.Files != "" {
					if ok, _ := doublestar.Match(r.Files, path); !ok {
						continue
					}
				}
				n := bytes.Count(rec.Contents, []byte(r.From))
				if n == 0 {
					continue
				}
				rec.Contents = bytes.ReplaceAll(rec.Contents, []byte(r.From), []byte(r.To))
				count += n
			}
			if count > 0 {
				logger.Debug().Str("path", path).Int("replacements", count).Msg("replaced text")
			}
		}
		return nil
	})), nil
}
