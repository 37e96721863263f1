// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package changefeed keeps the entity stores current from the server's
// notification WebSocket.
//
// Each inbound message is a JSON object
//
//	{"model": "member", "action": "updated", "data": {"id": 1, ...}}
//
// that [Decode] turns into an [Event] and [Apply] folds into the
// matching [entitystore.Store]. The two steps are separate so the
// transport never touches store state directly and the reducer can be
// tested without a connection.
//
// [Client] owns the connection. Its run loop moves through
// Disconnected, Connecting, Connected and Reconnecting; a dropped or
// refused connection is retried after the delay chosen by a [Backoff]
// (three seconds by default) for as long as a session token is present
// and the context is live. Transport and decode failures are logged and
// never returned to the caller.
package changefeed
