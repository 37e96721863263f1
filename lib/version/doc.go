// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build information for the boarding
// binaries. Values are injected with -ldflags, for example:
//
//	go build -ldflags "-X github.com/bureau-foundation/boarding/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// Without injection, [Info] falls back to the VCS revision recorded by
// the Go toolchain, and then to "unknown".
package version
