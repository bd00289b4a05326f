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

// Package config loads build settings from a file and applies them to a builder.
package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/buildrc/pkg/batch"
	"github.com/walteh/buildrc/pkg/builder"
	"github.com/walteh/buildrc/pkg/pipeline"
	"github.com/walteh/buildrc/pkg/steps"
	"gitlab.com/tozd/go/errors"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "buildrc.yaml"

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, filename string, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	name := strings.ToLower(filepath.Base(filename))
	for _, p := range parsers {
		if p.CanParse(name) {
			return p
		}
	}
	return nil
}

// 📚 Config represents the complete configuration.
// Nil pointers and empty strings mean "keep the builder default".
type Config struct {
	Source       string         `json:"source,omitempty" yaml:"source,omitempty"`
	Destination  string         `json:"destination,omitempty" yaml:"destination,omitempty"`
	Concurrency  *int           `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`
	Clean        *bool          `json:"clean,omitempty" yaml:"clean,omitempty"`
	Frontmatter  *bool          `json:"frontmatter,omitempty" yaml:"frontmatter,omitempty"`
	Ignore       []string       `json:"ignore,omitempty" yaml:"ignore,omitempty"`
	IgnoreFile   string         `json:"ignore_file,omitempty" yaml:"ignore_file,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Replacements []steps.Rule   `json:"replacements,omitempty" yaml:"replacements,omitempty"`
	Banner       string         `json:"banner,omitempty" yaml:"banner,omitempty"`

	location string
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, path, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Errorf("resolving config path: %w", err)
	}
	cfg.location = abs

	return cfg, nil
}

// Location is the absolute path the config was loaded from, empty when built in code.
func (cfg *Config) Location() string {
	return cfg.location
}

// 📁 Dir is the directory relative paths in the config resolve against.
// Falls back to the working directory for configs built in code.
func (cfg *Config) Dir() (string, error) {
	if cfg.location != "" {
		return filepath.Dir(cfg.location), nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", errors.Errorf("getting working directory: %w", err)
	}
	return wd, nil
}

// 🔍 Validate checks the shape of the configuration.
// Value checks that the builder owns (paths, glob syntax) happen in Apply.
func (cfg *Config) Validate() error {
	if cfg.Concurrency != nil && !batch.Valid(*cfg.Concurrency) {
		return errors.Errorf("concurrency must be a positive integer or %d, got %d", batch.Unbounded, *cfg.Concurrency)
	}
	if err := steps.ValidateRules(cfg.Replacements); err != nil {
		return errors.Errorf("replacements: %w", err)
	}
	return nil
}

// ⚡ Apply pushes every configured value through the builder's setters and
// registers the built-in steps. Values are first tried on a scratch builder
// rooted at the same directory, so a rejected value leaves b untouched.
func (cfg *Config) Apply(b *builder.Builder) error {
	scratch, err := builder.New(b.Directory())
	if err != nil {
		return err
	}
	if err := cfg.apply(scratch); err != nil {
		return err
	}
	return cfg.apply(b)
}

func (cfg *Config) apply(b *builder.Builder) error {
	if cfg.Source != "" {
		if err := b.SetSource(cfg.Source); err != nil {
			return err
		}
	}
	if cfg.Destination != "" {
		if err := b.SetDestination(cfg.Destination); err != nil {
			return err
		}
	}
	if cfg.Concurrency != nil {
		if err := b.SetConcurrency(*cfg.Concurrency); err != nil {
			return err
		}
	}
	if cfg.Clean != nil {
		b.SetClean(*cfg.Clean)
	}
	if cfg.Frontmatter != nil {
		b.SetFrontmatter(*cfg.Frontmatter)
	}
	if len(cfg.Ignore) > 0 {
		if err := b.Ignore(cfg.Ignore...); err != nil {
			return err
		}
	}
	if cfg.IgnoreFile != "" {
		if err := b.IgnoreFile(cfg.IgnoreFile); err != nil {
			return err
		}
	}
	if cfg.Metadata != nil {
		if err := b.SetMetadata(cfg.Metadata); err != nil {
			return err
		}
	}

	s, err := cfg.Steps()
	if err != nil {
		return err
	}
	b.Use(s...)

	return nil
}

// 🔄 Steps builds the built-in steps the config asks for, replacements first.
func (cfg *Config) Steps() ([]pipeline.Step, error) {
	var out []pipeline.Step
	if len(cfg.Replacements) > 0 {
		s, err := steps.Replace(cfg.Replacements...)
		if err != nil {
			return nil, errors.Errorf("replacements: %w", err)
		}
		out = append(out, s)
	}
	if cfg.Banner != "" {
		out = append(out, steps.Banner(cfg.Banner))
	}
	return out, nil
}
