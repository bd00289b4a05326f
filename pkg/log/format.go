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

package log

import (
	"fmt"

	"github.com/walteh/buildrc/pkg/builderr"
	"gitlab.com/tozd/go/errors"
)

// FileFormatter renders phase summaries and failures
type FileFormatter interface {
	// FormatSummary renders the line printed when a phase ends
	FormatSummary(op PhaseOperation, done int) string

	// FormatError renders a build failure
	FormatError(err error) string
}

// DefaultFileFormatter is the formatter used by New.
type DefaultFileFormatter struct{}

func NewDefaultFileFormatter() *DefaultFileFormatter {
	return &DefaultFileFormatter{}
}

// FormatSummary reports files done out of total with a percentage; the run
// phase reports its step count instead.
func (f *DefaultFileFormatter) FormatSummary(op PhaseOperation, done int) string {
	if op.Phase == PhaseRun {
		return fmt.Sprintf("✅ %d steps", op.Total)
	}
	if op.Phase == PhaseClean {
		return "✅ removed"
	}

	percentage := 100.0
	if op.Total > 0 {
		percentage = float64(done) / float64(op.Total) * 100
	}

	if done >= op.Total {
		return fmt.Sprintf("✅ Progress: %d/%d (%.0f%%)", done, op.Total, percentage)
	}
	return fmt.Sprintf("⏳ Progress: %d/%d (%.0f%%)", done, op.Total, percentage)
}

// FormatError names the failing file when the error carries one.
func (f *DefaultFileFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}

	var (
		rerr *builderr.FailedReadError
		ferr *builderr.InvalidFrontmatterError
		werr *builderr.FailedWriteError
		verr *builderr.ValidationError
	)
	switch {
	case errors.As(err, &ferr):
		return fmt.Sprintf("❌ Invalid frontmatter in %s: %v", ferr.Path, ferr.Err)
	case errors.As(err, &rerr):
		return fmt.Sprintf("❌ Read failed for %s: %v", rerr.Path, rerr.Err)
	case errors.As(err, &werr):
		return fmt.Sprintf("❌ Write failed for %s: %v", werr.Path, werr.Err)
	case errors.As(err, &verr):
		return fmt.Sprintf("❌ Invalid %s: %s", verr.Field, verr.Reason)
	default:
		return fmt.Sprintf("❌ Error: %v", err)
	}
}
