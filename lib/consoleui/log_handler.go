// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package consoleui

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// logRecordMsg delivers one log record to the help line.
type logRecordMsg struct {
	Summary string
	Level   slog.Level
}

// logRecordFadeMsg clears the notice posted with the same sequence.
type logRecordFadeMsg struct {
	sequence int
}

// logRecordFadeDelay is how long a notice replaces the help line.
const logRecordFadeDelay = 5 * time.Second

// Sender is the part of *tea.Program the handler needs.
type Sender interface {
	Send(message tea.Msg)
}

// LogHandler is a slog.Handler that shows records on the dashboard's
// help line. Records arriving before SetProgram are dropped, and
// handlers derived with WithAttrs or WithGroup share the program.
type LogHandler struct {
	level   slog.Leveler
	program *atomic.Pointer[senderBox]
	attrs   []slog.Attr
	prefix  string
}

// senderBox lets an interface value live in an atomic.Pointer.
type senderBox struct{ sender Sender }

// NewLogHandler returns a handler for records at or above level.
func NewLogHandler(level slog.Leveler) *LogHandler {
	return &LogHandler{level: level, program: &atomic.Pointer[senderBox]{}}
}

// SetProgram starts delivery to program. Safe from any goroutine.
func (handler *LogHandler) SetProgram(program Sender) {
	handler.program.Store(&senderBox{sender: program})
}

// Enabled implements slog.Handler.
func (handler *LogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= handler.level.Level()
}

// Handle formats record as "message (key=value, ...)" and sends it.
func (handler *LogHandler) Handle(_ context.Context, record slog.Record) error {
	box := handler.program.Load()
	if box == nil {
		return nil
	}

	var parts []string
	for _, attr := range handler.attrs {
		parts = append(parts, attr.Key+"="+attr.Value.String())
	}
	record.Attrs(func(attr slog.Attr) bool {
		parts = append(parts, handler.prefix+attr.Key+"="+attr.Value.String())
		return true
	})

	summary := record.Message
	if len(parts) > 0 {
		summary += " (" + strings.Join(parts, ", ") + ")"
	}
	box.sender.Send(logRecordMsg{Summary: summary, Level: record.Level})
	return nil
}

// WithAttrs implements slog.Handler.
func (handler *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := *handler
	derived.attrs = slices.Clone(handler.attrs)
	for _, attr := range attrs {
		attr.Key = handler.prefix + attr.Key
		derived.attrs = append(derived.attrs, attr)
	}
	return &derived
}

// WithGroup implements slog.Handler. Grouped keys are shown dotted.
func (handler *LogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return handler
	}
	derived := *handler
	derived.attrs = slices.Clone(handler.attrs)
	derived.prefix = handler.prefix + name + "."
	return &derived
}
