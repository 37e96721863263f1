// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package console assembles the synchronization layer from
// configuration and runs it.
//
// [New] builds the five entity stores, the REST loader, the change-feed
// client, and the optional state socket and metrics endpoint. [Console.Run]
// ties their lifetimes to the session: on login (a token file appears)
// every store is bulk-loaded and the feed is started; on logout the
// feed is stopped and its retry timer cancelled. Stores keep their last
// contents across logout so views can show stale data.
package console
