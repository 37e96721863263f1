// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package statesock serves the console's entity store state on a Unix
// socket so out-of-process views (status bars, scripts, the
// boarding-state CLI) can read it without their own API session.
//
// The protocol is one CBOR request and one CBOR response per
// connection. A request is a map with an "action" field; the response
// is {ok, error, data}. The socket is read-only: no action mutates a
// store.
//
//	{action: "list", kind: "member"}  -> ListResult
//	{action: "status"}                -> StatusResult
package statesock
