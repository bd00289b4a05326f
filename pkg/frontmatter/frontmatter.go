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

// Package frontmatter splits a leading `---` delimited YAML block from a document body.
package frontmatter

import (
	"bytes"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// Delimiter opens and closes a header block. It must sit alone on the first
// line of the file.
const Delimiter = "---"

var (
	// ErrMalformed marks a header block that was opened but could not be parsed.
	ErrMalformed = errors.Base("malformed frontmatter")

	// ErrMissingClosingDelimiter indicates the document started with a
	// frontmatter delimiter but did not contain a closing delimiter.
	ErrMissingClosingDelimiter = errors.BaseWrap(ErrMalformed, "closing delimiter is missing")
)

// 🔌 Codec parses and serializes header blocks
type Codec interface {
	// 📝 Decode returns the header fields and the body. A buffer without a
	// header block yields nil fields and the buffer itself.
	Decode(buf []byte) (map[string]any, []byte, error)

	// 🖨️ Encode renders fields as a header block followed by body
	Encode(fields map[string]any, body []byte) ([]byte, error)
}

// 🔧 YAML is the default Codec
type YAML struct{}

var _ Codec = YAML{}

func (YAML) Decode(buf []byte) (map[string]any, []byte, error) {
	raw, body, had, err := Split(buf)
	if err != nil {
		return nil, nil, err
	}
	if !had {
		return nil, buf, nil
	}

	fields := map[string]any{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return fields, body, nil
	}
	if err := yaml.Unmarshal(raw, &fields); err != nil {
		return nil, nil, errors.Errorf("%w: %s", ErrMalformed, err.Error())
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, body, nil
}

func (YAML) Encode(fields map[string]any, body []byte) ([]byte, error) {
	if len(fields) == 0 {
		return body, nil
	}
	raw, err := yaml.Marshal(fields)
	if err != nil {
		return nil, errors.Errorf("encoding frontmatter: %w", err)
	}
	return Join(raw, body, "\n"), nil
}

// ✂️ Split separates the raw header block from the body.
//
// If the document does not start with a delimiter line, had is false and body
// is the full input.
func Split(content []byte) (raw []byte, body []byte, had bool, err error) {
	nl := detectNewline(content)
	open := []byte(Delimiter + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	rest := content[len(open):]

	// empty block
	if bytes.HasPrefix(rest, open) {
		return []byte{}, rest[len(open):], true, nil
	}
	if bytes.Equal(rest, []byte(Delimiter)) {
		return []byte{}, []byte{}, true, nil
	}

	closing := []byte(nl + Delimiter + nl)
	if idx := bytes.Index(rest, closing); idx >= 0 {
		return rest[:idx+len(nl)], rest[idx+len(closing):], true, nil
	}

	// closing delimiter on the last line without a trailing newline
	eof := []byte(nl + Delimiter)
	if bytes.HasSuffix(rest, eof) {
		return rest[:len(rest)-len(Delimiter)], []byte{}, true, nil
	}

	return nil, nil, false, errors.WithStack(ErrMissingClosingDelimiter)
}

// 🔗 Join reassembles a document from a raw header block and body
func Join(raw []byte, body []byte, nl string) []byte {
	if nl == "" {
		nl = "\n"
	}
	out := make([]byte, 0, len(raw)+len(body)+2*(len(Delimiter)+len(nl))+len(nl))
	out = append(out, Delimiter+nl...)
	out = append(out, raw...)
	if len(raw) > 0 && !bytes.HasSuffix(raw, []byte(nl)) {
		out = append(out, nl...)
	}
	out = append(out, Delimiter+nl...)
	out = append(out, body...)
	return out
}

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
