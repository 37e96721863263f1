// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package consoleui

import (
	"log/slog"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

type recordingSender struct {
	mutex    sync.Mutex
	messages []tea.Msg
}

func (s *recordingSender) Send(message tea.Msg) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.messages = append(s.messages, message)
}

func (s *recordingSender) summaries() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	var out []string
	for _, message := range s.messages {
		out = append(out, message.(logRecordMsg).Summary)
	}
	return out
}

func TestLogHandlerDropsBeforeProgram(t *testing.T) {
	handler := NewLogHandler(slog.LevelInfo)
	slog.New(handler).Info("early")

	sender := &recordingSender{}
	handler.SetProgram(sender)
	slog.New(handler).Info("late")
	if got := sender.summaries(); len(got) != 1 || got[0] != "late" {
		t.Fatalf("summaries = %q", got)
	}
}

func TestLogHandlerLevelAndAttrs(t *testing.T) {
	handler := NewLogHandler(slog.LevelInfo)
	sender := &recordingSender{}
	handler.SetProgram(sender)

	logger := slog.New(handler).With("component", "feed").WithGroup("conn").With("attempt", 2)
	logger.Debug("hidden")
	logger.Warn("dial failed", "error", "refused")

	got := sender.summaries()
	want := "dial failed (component=feed, conn.attempt=2, conn.error=refused)"
	if len(got) != 1 || got[0] != want {
		t.Fatalf("summaries = %q, want [%q]", got, want)
	}
	if level := sender.messages[0].(logRecordMsg).Level; level != slog.LevelWarn {
		t.Fatalf("level = %v", level)
	}
}

func TestLogHandlerDerivedSharesProgram(t *testing.T) {
	handler := NewLogHandler(slog.LevelInfo)
	derived := slog.New(handler).With("k", "v")

	sender := &recordingSender{}
	handler.SetProgram(sender)
	derived.Info("after")
	if got := sender.summaries(); len(got) != 1 || got[0] != "after (k=v)" {
		t.Fatalf("summaries = %q", got)
	}
}
