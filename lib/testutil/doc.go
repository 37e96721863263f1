// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for boarding packages.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-timeout
// pattern so tests wait on channels without calling time.After
// themselves. They are the only wall-clock waits in the suite; timing
// under test goes through lib/clock's fake clock.
//
// [SocketDir] returns a short-lived directory for Unix socket files.
//
// Helpers call t.Fatalf on failure rather than returning errors.
package testutil
