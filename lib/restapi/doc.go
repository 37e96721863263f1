// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package restapi bulk-loads entity collections from the boarding
// house REST API into entity stores.
//
// [Client] issues authenticated GETs against the collection endpoints
// (/members/, /schedules/, ...) and decodes the JSON array each returns.
// Non-2xx responses become [*APIError], carrying the server's "detail"
// message when the body has one.
//
// [Loader] drives a store through its load lifecycle: BeginLoad, the
// fetch, then ReplaceAll on success or FailLoad with a display reason
// from [Reason] on failure. LoadAll runs every kind concurrently.
package restapi
