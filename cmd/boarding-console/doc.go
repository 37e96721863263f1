// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// boarding-console keeps the front-desk console's local copy of
// members, schedules, payments, bills and repairs in sync with the
// boarding house server.
//
// While a session token is present it bulk-loads every collection over
// REST and follows the server's change feed, reconnecting after drops.
// The synchronized state is shown in a terminal dashboard, or, in
// headless mode, served only over the state socket for boarding-state
// and other local readers.
//
// Usage:
//
//	boarding-console [--config boarding.yaml] [--ui auto|tui|headless] [--log-output file]
//
// Without --config the file named by BOARDING_CONFIG is used, and
// without either the built-in defaults apply.
package main
