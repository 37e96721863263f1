// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package entitystore

import "fmt"

// LoadStatus is the bulk-load lifecycle of a store.
type LoadStatus int

const (
	NotStarted LoadStatus = iota
	Loading
	Ready
	Failed
)

func (s LoadStatus) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("LoadStatus(%d)", int(s))
}

// MarshalText encodes the status by name for the state socket and
// JSON output.
func (s LoadStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (s *LoadStatus) UnmarshalText(text []byte) error {
	for _, candidate := range []LoadStatus{NotStarted, Loading, Ready, Failed} {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("entitystore: unknown load status %q", text)
}

// InsertPolicy decides what Insert does with an id already present.
type InsertPolicy int

const (
	// InsertAppend appends unconditionally.
	InsertAppend InsertPolicy = iota
	// InsertUpsert replaces the existing record in place.
	InsertUpsert
)

// ParseInsertPolicy accepts "append" or "upsert". Empty means append.
func ParseInsertPolicy(s string) (InsertPolicy, error) {
	switch s {
	case "", "append":
		return InsertAppend, nil
	case "upsert":
		return InsertUpsert, nil
	}
	return 0, fmt.Errorf("entitystore: unknown insert policy %q (want append or upsert)", s)
}

func (p InsertPolicy) String() string {
	if p == InsertUpsert {
		return "upsert"
	}
	return "append"
}

// LoadRacePolicy decides how changes that arrive during a bulk load
// interact with the loaded snapshot.
type LoadRacePolicy int

const (
	// RaceReplay re-applies in-flight changes on top of the snapshot.
	RaceReplay LoadRacePolicy = iota
	// RaceSnapshot discards them in favor of the snapshot.
	RaceSnapshot
)

// ParseLoadRacePolicy accepts "replay" or "snapshot". Empty means replay.
func ParseLoadRacePolicy(s string) (LoadRacePolicy, error) {
	switch s {
	case "", "replay":
		return RaceReplay, nil
	case "snapshot":
		return RaceSnapshot, nil
	}
	return 0, fmt.Errorf("entitystore: unknown load race policy %q (want replay or snapshot)", s)
}

func (p LoadRacePolicy) String() string {
	if p == RaceSnapshot {
		return "snapshot"
	}
	return "replay"
}
