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

// Package files holds the in-memory file tree and the reader and writer that
// move it between disk and memory.
package files

import (
	"io/fs"
	"maps"
	"slices"
)

// PermBits are the mode bits a record carries from read to write: the
// permissions plus setuid, setgid and sticky.
const PermBits = fs.ModePerm | fs.ModeSetuid | fs.ModeSetgid | fs.ModeSticky

// 📄 Record is one file of the tree
type Record struct {
	// Contents is the body of the file, without any header block.
	Contents []byte

	// Mode holds the PermBits captured on read. Zero means unset and
	// leaves the written file with default permissions.
	Mode fs.FileMode

	// Stats is the read-time file info, nil for records built in memory.
	Stats fs.FileInfo

	// Fields holds header block values. Keys named contents, mode or stats
	// live here too and never shadow the typed fields above.
	Fields map[string]any
}

// 🔑 Get returns a header field
func (r *Record) Get(key string) (any, bool) {
	v, ok := r.Fields[key]
	return v, ok
}

// Set stores a header field.
func (r *Record) Set(key string, value any) {
	if r.Fields == nil {
		r.Fields = map[string]any{}
	}
	r.Fields[key] = value
}

// 🌳 Tree maps slash separated relative paths to records
type Tree map[string]*Record

// Paths returns the keys in lexical order.
func (t Tree) Paths() []string {
	return slices.Sorted(maps.Keys(t))
}
