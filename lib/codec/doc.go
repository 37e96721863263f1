// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec is the console's CBOR configuration.
//
// JSON is the format of everything that crosses to the boarding house
// server (REST bodies, change-feed messages). CBOR is the format of the
// local state socket that out-of-process viewers query. Every package
// that touches the socket encodes through this package so both ends
// agree on options.
//
// Encoding is Core Deterministic (RFC 8949 §4.2): identical values
// produce identical bytes. Decoding into an untyped target yields
// map[string]any rather than CBOR's map[any]any, so entity records
// that went through the socket look like records decoded from JSON.
// Integers decode as uint64 or int64, which entity.Record.ID accepts.
//
// Socket protocol types carry matching `cbor` and `json` tags, since
// cmd/boarding-state reprints what it decodes as JSON.
package codec
