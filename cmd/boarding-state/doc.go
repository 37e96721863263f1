// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// boarding-state queries a running boarding-console over its state
// socket.
//
//	boarding-state status              connection state and per-store summary
//	boarding-state list <kind>         every record of one kind
//
// Output is JSON by default; --format text prints a summary table for
// status. Exit status is 0 on success, 1 when the query fails, and 2
// for usage errors.
package main
