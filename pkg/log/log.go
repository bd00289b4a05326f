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

// Package log renders build progress for humans and mirrors it to zerolog.
//
// All methods are safe on a nil *Logger, so library code can report
// unconditionally and only the CLI decides whether anything is printed.
package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	nameWidth   = 35 // Base width for filename
	phaseWidth  = 8  // Width for phase name
	statusWidth = 12 // Width for size/mode text
)

// Phase names one stage of a build.
type Phase string

const (
	PhaseClean Phase = "clean"
	PhaseRead  Phase = "read"
	PhaseRun   Phase = "run"
	PhaseWrite Phase = "write"
)

// 🎯 FileOperation is one file handled by a phase
type FileOperation struct {
	Path    string // Relative path
	Phase   Phase  // Phase that touched the file
	Size    int    // Bytes read or written
	Fields  int    // Header fields found on read
	Removed bool   // Whether the file was dropped by the run phase
}

// 📦 PhaseOperation describes a phase as it starts
type PhaseOperation struct {
	Phase Phase
	Dir   string // Directory the phase works against
	Total int    // Number of files, or steps for the run phase
}

// 🎯 Logger handles console output for a build
type Logger struct {
	zlog      zerolog.Logger
	console   io.Writer
	formatter FileFormatter
	mu        sync.Mutex
	current   *PhaseOperation
	done      int
}

// 🏭 New creates a new logger
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:      zlog,
		console:   console,
		formatter: NewDefaultFileFormatter(),
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context, nil when none was attached
func FromContext(ctx context.Context) *Logger {
	logger, _ := ctx.Value(contextKey{}).(*Logger)
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 formatFileOperation formats a file operation for display
func (l *Logger) formatFileOperation(op FileOperation) string {
	var symbol rune
	var symbolColor color.Attribute
	switch {
	case op.Removed:
		symbol = '✗'
		symbolColor = color.FgRed
	case op.Phase == PhaseWrite:
		symbol = '✓'
		symbolColor = color.FgGreen
	default:
		symbol = '•'
		symbolColor = color.FgCyan
	}

	detail := fmt.Sprintf("%dB", op.Size)
	if op.Fields > 0 {
		detail = fmt.Sprintf("%s +%d", detail, op.Fields)
	}

	return fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, op.Path),
		color.New(color.FgBlue).Sprint(fmt.Sprintf("%-*s", phaseWidth, op.Phase)),
		fmt.Sprintf("%-*s", statusWidth, detail))
}

// 📝 LogFileOperation logs a file handled by the current phase
func (l *Logger) LogFileOperation(ctx context.Context, op FileOperation) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	l.done++
	fmt.Fprintln(l.console, l.formatFileOperation(op))

	l.zlog.Debug().
		Str("file", op.Path).
		Str("phase", string(op.Phase)).
		Int("size", op.Size).
		Int("fields", op.Fields).
		Bool("removed", op.Removed).
		Msg("file operation")
}

// 📝 StartPhase prints a phase header
func (l *Logger) StartPhase(ctx context.Context, op PhaseOperation) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	l.current = &op
	l.done = 0

	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(op.Phase),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprint(op.Dir))

	l.zlog.Info().
		Str("phase", string(op.Phase)).
		Str("dir", op.Dir).
		Int("total", op.Total).
		Msg("starting phase")
}

// 📝 EndPhase prints the progress summary of the current phase
func (l *Logger) EndPhase(ctx context.Context) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current == nil {
		return
	}

	total := l.current.Total
	summary := l.formatter.FormatSummary(*l.current, l.done)
	fmt.Fprintf(l.console, "%*s%s\n", fileIndent, "", summary)

	l.zlog.Info().
		Str("phase", string(l.current.Phase)).
		Int("files", l.done).
		Int("total", total).
		Msg("phase complete")

	l.current = nil
	l.done = 0
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("buildrc")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error
func (l *Logger) Error(err error) {
	if l == nil || err == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console, color.New(color.FgRed).Sprint(l.formatter.FormatError(err)))
	l.zlog.Error().Err(err).Msg("build failed")
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...any) {
	l.Success(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...any) {
	l.Warning(fmt.Sprintf(format, args...))
}
