// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package consoleui is the terminal dashboard for the boarding house
// console. It shows one tab per entity kind, each rendered as a table
// of the store's current records, plus a status line with the
// change-feed connection state and each store's load status.
//
// The dashboard is a passive reader. It subscribes to the stores and
// the feed client, and re-renders on every change notice; it never
// mutates store contents. Log records can be routed into the status
// line with [LogHandler].
package consoleui
