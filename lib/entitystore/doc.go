// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package entitystore holds the console's local copy of each entity
// collection.
//
// A [Store] mirrors one collection. Two pathways write to it: the bulk
// loader (BeginLoad, then ReplaceAll or FailLoad) and the change feed
// (Insert, ApplyUpdate, Remove). Readers call Snapshot and Subscribe;
// they never write. Every operation is total: an unknown id is a no-op,
// never an error or a panic.
//
// Writes are serialized by the store's mutex and committed before the
// method returns, so a reader on another goroutine sees each change as
// soon as the writer is done. Subscribers get a [Change] notice after
// each commit on a buffered channel. A subscriber that falls behind
// loses notices, not data: it re-reads Snapshot.
//
// Two behaviors are policy rather than fixed:
//
//   - [InsertPolicy]: InsertAppend appends every created record, keeping
//     duplicates if the server sends a create twice. InsertUpsert
//     replaces an existing record with the same id instead.
//   - [LoadRacePolicy]: a bulk load and live changes are independent, so
//     a change can land while a fetch is in flight and be overwritten by
//     the older snapshot. RaceReplay journals changes between BeginLoad
//     and ReplaceAll and re-applies them on top of the snapshot, replaying
//     creates as upserts so a record already in the snapshot is not
//     doubled. RaceSnapshot lets the snapshot win.
//
// [Set] builds the five stores with one set of options.
package entitystore
