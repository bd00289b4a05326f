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

package config

import (
	"context"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/walteh/buildrc/pkg/steps"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// 📝 Parse parses the config from HCL.
// Expressions can read the process environment through env.NAME.
func (p *HCLParser) Parse(ctx context.Context, filename string, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": environment(),
		},
	}

	type hclReplacement struct {
		From  string `hcl:"from"`
		To    string `hcl:"to"`
		Files string `hcl:"files,optional"`
	}

	type hclConfig struct {
		Source       string            `hcl:"source,optional"`
		Destination  string            `hcl:"destination,optional"`
		Concurrency  *int              `hcl:"concurrency,optional"`
		Clean        *bool             `hcl:"clean,optional"`
		Frontmatter  *bool             `hcl:"frontmatter,optional"`
		Ignore       []string          `hcl:"ignore,optional"`
		IgnoreFile   string            `hcl:"ignore_file,optional"`
		Metadata     map[string]string `hcl:"metadata,optional"`
		Replacements []hclReplacement  `hcl:"replacement,block"`
		Banner       string            `hcl:"banner,optional"`
	}

	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	cfg := &Config{
		Source:      hclCfg.Source,
		Destination: hclCfg.Destination,
		Concurrency: hclCfg.Concurrency,
		Clean:       hclCfg.Clean,
		Frontmatter: hclCfg.Frontmatter,
		Ignore:      hclCfg.Ignore,
		IgnoreFile:  hclCfg.IgnoreFile,
		Banner:      hclCfg.Banner,
	}

	if hclCfg.Metadata != nil {
		cfg.Metadata = make(map[string]any, len(hclCfg.Metadata))
		for k, v := range hclCfg.Metadata {
			cfg.Metadata[k] = v
		}
	}

	for _, r := range hclCfg.Replacements {
		cfg.Replacements = append(cfg.Replacements, steps.Rule{From: r.From, To: r.To, Files: r.Files})
	}

	return cfg, nil
}

func environment() cty.Value {
	vars := map[string]cty.Value{}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		vars[k] = cty.StringVal(v)
	}
	return cty.ObjectVal(vars)
}
