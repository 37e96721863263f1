// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package entity names the five boarding house collections and the
// record shape the sync layer carries for them.
//
// A [Record] is opaque: the server decides its fields, and the console
// only ever reads "id". Every other field passes through untouched to
// the presentation layer. Records decoded from JSON have integral
// numbers converted to int64 and the rest to float64, so equal
// records compare equal regardless of which path they arrived on.
package entity
