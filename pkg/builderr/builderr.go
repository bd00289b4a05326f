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

// Package builderr defines the errors a build can fail with.
//
// Every build phase aborts on the first error it sees. The concrete types below
// let callers tell the failure kinds apart with errors.As:
//
//	var rerr *builderr.FailedReadError
//	if errors.As(err, &rerr) {
//		fmt.Println("could not read", rerr.Path)
//	}
package builderr

import (
	"fmt"

	"gitlab.com/tozd/go/errors"
)

// ErrStepCompletedTwice is reported when an asynchronous step signals completion more than once.
var ErrStepCompletedTwice = errors.Base("step signaled completion more than once")

// 📖 FailedReadError wraps an I/O failure while reading a source file
type FailedReadError struct {
	Path string
	Err  error
}

func (e *FailedReadError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Path, e.Err)
}

func (e *FailedReadError) Unwrap() error { return e.Err }

// 🧾 InvalidFrontmatterError reports a header block that starts but does not parse
type InvalidFrontmatterError struct {
	Path string
	Err  error
}

func (e *InvalidFrontmatterError) Error() string {
	return fmt.Sprintf("invalid frontmatter in %s: %v", e.Path, e.Err)
}

func (e *InvalidFrontmatterError) Unwrap() error { return e.Err }

// 💾 FailedWriteError wraps an I/O failure while writing or chmodding a destination file
type FailedWriteError struct {
	Path string
	Err  error
}

func (e *FailedWriteError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

func (e *FailedWriteError) Unwrap() error { return e.Err }

// 🚫 ValidationError reports a configuration value with the wrong shape
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %#v: %s", e.Field, e.Value, e.Reason)
}

// Invalid builds a ValidationError.
func Invalid(field string, value any, reason string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}
