// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil holds small I/O helpers shared by the console's
// network clients and servers.
//
// [ReadResponse] bounds HTTP body reads so a misbehaving server cannot
// exhaust memory. [IsExpectedCloseError] separates ordinary peer
// disconnects from failures worth logging.
package netutil
