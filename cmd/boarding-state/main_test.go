// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/boarding/lib/entity"
	"github.com/bureau-foundation/boarding/lib/entitystore"
	"github.com/bureau-foundation/boarding/lib/statesock"
	"github.com/bureau-foundation/boarding/lib/testutil"
)

type fixedConnection string

func (c fixedConnection) ConnectionState() string { return string(c) }

func startStateServer(t *testing.T) string {
	t.Helper()
	stores := entitystore.NewSet(entitystore.Options{})
	members, _ := stores.Store(entity.Member)
	members.BeginLoad()
	members.ReplaceAll([]entity.Record{{"id": int64(1), "name": "Ada"}})
	repairs, _ := stores.Store(entity.Repair)
	repairs.BeginLoad()
	repairs.FailLoad("Failed to fetch repairs")

	socketPath := filepath.Join(testutil.SocketDir(t), "state.sock")
	server := statesock.NewServer(socketPath, nil)
	statesock.Register(server, stores, fixedConnection("reconnecting"))

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		testutil.RequireReceive(t, done, 5*time.Second, "state server exit")
	})
	testutil.RequireClosed(t, server.Ready(), 5*time.Second, "state server ready")
	return socketPath
}

func TestStatusJSON(t *testing.T) {
	socketPath := startStateServer(t)
	var stdout bytes.Buffer
	if err := run([]string{"--socket", socketPath, "status"}, &stdout); err != nil {
		t.Fatalf("run: %v", err)
	}

	var status statesock.StatusResult
	if err := json.Unmarshal(stdout.Bytes(), &status); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout.String())
	}
	if status.Connection != "reconnecting" || len(status.Stores) != len(entity.Kinds()) {
		t.Fatalf("status = %+v", status)
	}
}

func TestStatusText(t *testing.T) {
	socketPath := startStateServer(t)
	var stdout bytes.Buffer
	if err := run([]string{"--socket", socketPath, "--format", "text", "status"}, &stdout); err != nil {
		t.Fatalf("run: %v", err)
	}
	output := stdout.String()
	for _, want := range []string{"connection: reconnecting", "member", "ready", "Failed to fetch repairs"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestList(t *testing.T) {
	socketPath := startStateServer(t)
	var stdout bytes.Buffer
	if err := run([]string{"--socket", socketPath, "list", "member"}, &stdout); err != nil {
		t.Fatalf("run: %v", err)
	}
	if output := stdout.String(); !strings.Contains(output, `"name": "Ada"`) || !strings.Contains(output, `"load_status": "ready"`) {
		t.Fatalf("list output:\n%s", output)
	}
}

func TestUsageErrors(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "unused.sock")
	for _, args := range [][]string{
		{"--socket", socketPath},
		{"--socket", socketPath, "list"},
		{"--socket", socketPath, "list", "tenant"},
		{"--socket", socketPath, "status", "extra"},
		{"--socket", socketPath, "tidy"},
		{"--socket", socketPath, "--format", "yaml", "status"},
		{"--bogus"},
	} {
		var usage usageError
		if err := run(args, new(bytes.Buffer)); !errors.As(err, &usage) {
			t.Errorf("run(%q) = %v, want a usage error", args, err)
		}
	}
}

func TestUnreachableSocket(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "missing.sock")
	err := run([]string{"--socket", socketPath, "status"}, new(bytes.Buffer))
	var usage usageError
	if err == nil || errors.As(err, &usage) {
		t.Fatalf("run = %v, want a query failure", err)
	}
}
