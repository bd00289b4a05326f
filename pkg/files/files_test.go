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

package files

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/buildrc/pkg/builderr"
	"github.com/walteh/buildrc/pkg/frontmatter"
	"github.com/walteh/buildrc/pkg/ignore"
	"gitlab.com/tozd/go/errors"
)

func testContext(t *testing.T) context.Context {
	return zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
}

func writeFixture(t *testing.T, dir, rel string, content []byte, mode os.FileMode) {
	t.Helper()
	abs := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, content, mode))
	require.NoError(t, os.Chmod(abs, mode))
}

func TestReader_Read(t *testing.T) {
	tests := []struct {
		name         string
		content      []byte
		codec        frontmatter.Codec
		wantContents string
		wantFields   map[string]any
	}{
		{
			name:         "frontmatter_enabled",
			content:      []byte("---\ntitle: Hi\n---\nHello"),
			codec:        frontmatter.YAML{},
			wantContents: "Hello",
			wantFields:   map[string]any{"title": "Hi"},
		},
		{
			name:         "frontmatter_disabled",
			content:      []byte("---\ntitle: Hi\n---\nHello"),
			wantContents: "---\ntitle: Hi\n---\nHello",
		},
		{
			name:         "no_header_block",
			content:      []byte("just a body"),
			codec:        frontmatter.YAML{},
			wantContents: "just a body",
		},
		{
			name:         "binary_passes_through",
			content:      []byte("---\n\xff\xfe\x00bin\n"),
			codec:        frontmatter.YAML{},
			wantContents: "---\n\xff\xfe\x00bin\n",
		},
		{
			name:         "reserved_names_stay_in_fields",
			content:      []byte("---\ncontents: override\nmode: \"0777\"\n---\nbody"),
			codec:        frontmatter.YAML{},
			wantContents: "body",
			wantFields:   map[string]any{"contents": "override", "mode": "0777"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFixture(t, dir, "a.md", tt.content, 0o640)

			rec, err := NewReader(dir, tt.codec).Read(testContext(t), "a.md")
			require.NoError(t, err)

			assert.Equal(t, tt.wantContents, string(rec.Contents))
			assert.Equal(t, tt.wantFields, rec.Fields)
			require.NotNil(t, rec.Stats)
			assert.EqualValues(t, len(tt.content), rec.Stats.Size())
			if runtime.GOOS != "windows" {
				assert.Equal(t, os.FileMode(0o640), rec.Mode)
			}
		})
	}
}

func TestReader_AbsolutePath(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "x.txt", []byte("x"), 0o644)

	rec, err := NewReader(t.TempDir(), nil).Read(testContext(t), filepath.Join(dir, "x.txt"))
	require.NoError(t, err)
	assert.Equal(t, "x", string(rec.Contents))
}

func TestReader_Errors(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "bad.md", []byte("---\ntitle: [nope\n---\nbody"), 0o644)

	r := NewReader(dir, frontmatter.YAML{})

	_, err := r.Read(testContext(t), "missing.md")
	require.Error(t, err)
	var rerr *builderr.FailedReadError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, "missing.md", rerr.Path)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	_, err = r.Read(testContext(t), "bad.md")
	require.Error(t, err)
	var ferr *builderr.InvalidFrontmatterError
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, "bad.md", ferr.Path)
	assert.False(t, errors.As(err, &rerr))
	assert.True(t, errors.Is(err, frontmatter.ErrMalformed))
}

func TestWriter_Write(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	require.NoError(t, w.Write(testContext(t), "nested/deep/a.md", &Record{Contents: []byte("Hello"), Mode: 0o600}))
	require.NoError(t, w.Write(testContext(t), "plain.txt", &Record{Contents: []byte{}}))

	got, err := os.ReadFile(filepath.Join(dir, "nested", "deep", "a.md"))
	require.NoError(t, err)
	assert.Equal(t, "Hello", string(got))

	info, err := os.Stat(filepath.Join(dir, "plain.txt"))
	require.NoError(t, err)
	assert.EqualValues(t, 0, info.Size())

	if runtime.GOOS != "windows" {
		info, err := os.Stat(filepath.Join(dir, "nested", "deep", "a.md"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}

	entries, err := os.ReadDir(filepath.Join(dir, "nested", "deep"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files are left behind")
}

func TestWriter_Errors(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "blocker", []byte("file in the way"), 0o644)

	w := NewWriter(dir)

	err := w.Write(testContext(t), "blocker/a.md", &Record{Contents: []byte("x")})
	require.Error(t, err)
	var werr *builderr.FailedWriteError
	require.True(t, errors.As(err, &werr))
	assert.Equal(t, "blocker/a.md", werr.Path)

	err = w.Write(testContext(t), "nil.md", nil)
	require.True(t, errors.As(err, &werr))
}

func TestWalk(t *testing.T) {
	dir := t.TempDir()
	for _, rel := range []string{"index.md", "posts/a.md", "posts/b.tmp", "drafts/c.md", "assets/img/logo.png"} {
		writeFixture(t, dir, rel, []byte(rel), 0o644)
	}

	got, err := Walk(testContext(t), dir, ignore.Matcher{ignore.Pattern("**/*.tmp"), ignore.Pattern("drafts")})
	require.NoError(t, err)
	assert.Equal(t, []string{"assets/img/logo.png", "index.md", "posts/a.md"}, got)

	got, err = Walk(testContext(t), dir, nil)
	require.NoError(t, err)
	assert.Len(t, got, 5)

	_, err = Walk(testContext(t), filepath.Join(dir, "missing"), nil)
	require.Error(t, err)
	var rerr *builderr.FailedReadError
	assert.True(t, errors.As(err, &rerr))
}

func TestTree_Paths(t *testing.T) {
	tree := Tree{"b.md": {}, "a.md": {}, "c/d.md": {}}
	assert.Equal(t, []string{"a.md", "b.md", "c/d.md"}, tree.Paths())

	rec := &Record{}
	rec.Set("title", "Hi")
	v, ok := rec.Get("title")
	assert.True(t, ok)
	assert.Equal(t, "Hi", v)
}

func TestModeRoundTrip_SpecialBits(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no setgid or sticky bits on windows")
	}

	src := t.TempDir()
	dst := t.TempDir()
	writeFixture(t, src, "run.sh", []byte("#!/bin/sh\n"), 0o755)
	require.NoError(t, os.Chmod(filepath.Join(src, "run.sh"), 0o755|os.ModeSetgid|os.ModeSticky))

	srcInfo, err := os.Stat(filepath.Join(src, "run.sh"))
	require.NoError(t, err)
	want := srcInfo.Mode() & PermBits
	if want&(os.ModeSetgid|os.ModeSticky) == 0 {
		t.Skip("filesystem dropped the special bits on the fixture")
	}

	ctx := testContext(t)
	rec, err := NewReader(src, nil).Read(ctx, "run.sh")
	require.NoError(t, err)
	assert.Equal(t, want, rec.Mode)

	require.NoError(t, NewWriter(dst).Write(ctx, "run.sh", rec))

	dstInfo, err := os.Stat(filepath.Join(dst, "run.sh"))
	require.NoError(t, err)
	assert.Equal(t, want, dstInfo.Mode()&PermBits)
}
