// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package entitystore

import (
	"slices"
	"sync"

	"github.com/bureau-foundation/boarding/lib/entity"
)

// Options configures a Store.
type Options struct {
	Insert   InsertPolicy
	LoadRace LoadRacePolicy

	// SubscriberBuffer is the capacity of each Subscribe channel.
	// Zero means 64.
	SubscriberBuffer int
}

// Op names the operation that produced a Change.
type Op string

const (
	OpBeginLoad Op = "begin_load"
	OpReplace   Op = "replace"
	OpFailLoad  Op = "fail_load"
	OpAbandon   Op = "abandon_load"
	OpInsert    Op = "insert"
	OpUpdate    Op = "update"
	OpRemove    Op = "remove"
)

// Change is the notice delivered to subscribers after a mutation. ID
// is set for record-level operations.
type Change struct {
	Kind     entity.Kind
	Op       Op
	ID       int64
	Revision uint64
}

// State is a point-in-time copy of a store. Items is a fresh slice;
// the records in it are shared with the store and must not be
// modified.
type State struct {
	Kind       entity.Kind
	Items      []entity.Record
	LoadStatus LoadStatus
	LastError  string
	Revision   uint64
}

// Store is the local cache for one entity kind. Safe for concurrent
// use.
type Store struct {
	kind    entity.Kind
	options Options

	mutex     sync.RWMutex
	items     []entity.Record
	status    LoadStatus
	lastError string
	revision  uint64

	// pending counts loads begun and not yet settled. settled is the
	// status and error from before the first of them, restored when the
	// last one is abandoned.
	pending      int
	settled      LoadStatus
	settledError string

	// journal collects record-level changes while a load is in flight
	// under RaceReplay. Nil otherwise.
	journal []journalEntry

	subscribers []chan Change
}

type journalEntry struct {
	op     Op
	record entity.Record
	id     int64
}

// New returns an empty store in NotStarted.
func New(kind entity.Kind, options Options) *Store {
	if options.SubscriberBuffer <= 0 {
		options.SubscriberBuffer = 64
	}
	return &Store{kind: kind, options: options}
}

// Kind returns the entity kind this store holds.
func (s *Store) Kind() entity.Kind { return s.kind }

// BeginLoad marks a bulk load as started: status Loading, error
// cleared. Under RaceReplay, changes from here until ReplaceAll are
// journaled.
func (s *Store) BeginLoad() {
	s.mutex.Lock()
	if s.pending == 0 {
		s.settled, s.settledError = s.status, s.lastError
	}
	s.pending++
	s.status = Loading
	s.lastError = ""
	if s.options.LoadRace == RaceReplay {
		s.journal = []journalEntry{}
	}
	s.commitLocked(OpBeginLoad, 0)
	s.mutex.Unlock()
}

// ReplaceAll sets the items to exactly records and marks the store
// Ready. Under RaceReplay, changes journaled since BeginLoad are then
// re-applied in arrival order.
func (s *Store) ReplaceAll(records []entity.Record) {
	items := make([]entity.Record, len(records))
	for i, record := range records {
		items[i] = record.Clone()
	}

	s.mutex.Lock()
	s.items = items
	for _, entry := range s.journal {
		switch entry.op {
		case OpInsert:
			s.upsertLocked(entry.record)
		case OpUpdate:
			s.updateLocked(entry.record)
		case OpRemove:
			s.removeLocked(entry.id)
		}
	}
	s.journal = nil
	s.pending = 0
	s.status = Ready
	s.lastError = ""
	s.commitLocked(OpReplace, 0)
	s.mutex.Unlock()
}

// FailLoad marks the load Failed with reason. Items are left as they
// were so stale data stays on screen.
func (s *Store) FailLoad(reason string) {
	s.mutex.Lock()
	s.status = Failed
	s.lastError = reason
	s.journal = nil
	s.pending = 0
	s.commitLocked(OpFailLoad, 0)
	s.mutex.Unlock()
}

// AbandonLoad ends an in-flight load that was cancelled rather than
// failed. Items are untouched. While another load is still in flight
// the store stays Loading and keeps journaling; otherwise the status
// and error from before BeginLoad come back. A store with no load in
// flight is left alone.
func (s *Store) AbandonLoad() {
	s.mutex.Lock()
	if s.pending > 0 {
		s.pending--
		if s.pending == 0 {
			s.status, s.lastError = s.settled, s.settledError
			s.journal = nil
			s.commitLocked(OpAbandon, 0)
		}
	}
	s.mutex.Unlock()
}

// Insert adds record according to the insert policy. A record without
// a usable id is still appended under InsertAppend; it can never be
// updated or removed afterwards.
func (s *Store) Insert(record entity.Record) {
	record = record.Clone()
	id, _ := record.ID()

	s.mutex.Lock()
	if s.options.Insert == InsertUpsert {
		s.upsertLocked(record)
	} else {
		s.items = append(s.items, record)
	}
	s.journalLocked(journalEntry{op: OpInsert, record: record, id: id})
	s.commitLocked(OpInsert, id)
	s.mutex.Unlock()
}

// ApplyUpdate replaces the record with the same id, keeping its
// position. Reports false, changing nothing, when no record matches.
func (s *Store) ApplyUpdate(record entity.Record) bool {
	id, ok := record.ID()
	if !ok {
		return false
	}
	record = record.Clone()

	s.mutex.Lock()
	found := s.updateLocked(record)
	// Journal misses too: the record may be in the snapshot being
	// fetched.
	s.journalLocked(journalEntry{op: OpUpdate, record: record, id: id})
	if !found {
		s.mutex.Unlock()
		return false
	}
	s.commitLocked(OpUpdate, id)
	s.mutex.Unlock()
	return true
}

// Remove deletes every record with id. Reports false, changing
// nothing, when none matches.
func (s *Store) Remove(id int64) bool {
	s.mutex.Lock()
	found := s.removeLocked(id)
	s.journalLocked(journalEntry{op: OpRemove, id: id})
	if !found {
		s.mutex.Unlock()
		return false
	}
	s.commitLocked(OpRemove, id)
	s.mutex.Unlock()
	return true
}

// Get returns the first record with id.
func (s *Store) Get(id int64) (entity.Record, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if index := s.indexLocked(id); index >= 0 {
		return s.items[index], true
	}
	return nil, false
}

// Len returns the number of items.
func (s *Store) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.items)
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return State{
		Kind:       s.kind,
		Items:      slices.Clone(s.items),
		LoadStatus: s.status,
		LastError:  s.lastError,
		Revision:   s.revision,
	}
}

// Subscribe returns a channel receiving a Change after every mutation.
// Sends never block the writer: a full channel drops the notice.
func (s *Store) Subscribe() <-chan Change {
	channel := make(chan Change, s.options.SubscriberBuffer)
	s.mutex.Lock()
	s.subscribers = append(s.subscribers, channel)
	s.mutex.Unlock()
	return channel
}

// Unsubscribe stops deliveries to channel and closes it.
func (s *Store) Unsubscribe(channel <-chan Change) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for i, subscriber := range s.subscribers {
		if subscriber == channel {
			s.subscribers = slices.Delete(s.subscribers, i, i+1)
			close(subscriber)
			return
		}
	}
}

func (s *Store) indexLocked(id int64) int {
	return slices.IndexFunc(s.items, func(record entity.Record) bool {
		recordID, ok := record.ID()
		return ok && recordID == id
	})
}

func (s *Store) upsertLocked(record entity.Record) {
	id, ok := record.ID()
	if ok {
		if index := s.indexLocked(id); index >= 0 {
			s.items[index] = record
			return
		}
	}
	s.items = append(s.items, record)
}

func (s *Store) updateLocked(record entity.Record) bool {
	id, _ := record.ID()
	index := s.indexLocked(id)
	if index < 0 {
		return false
	}
	s.items[index] = record
	return true
}

func (s *Store) removeLocked(id int64) bool {
	before := len(s.items)
	s.items = slices.DeleteFunc(s.items, func(record entity.Record) bool {
		recordID, ok := record.ID()
		return ok && recordID == id
	})
	return len(s.items) != before
}

func (s *Store) journalLocked(entry journalEntry) {
	if s.journal != nil {
		s.journal = append(s.journal, entry)
	}
}

// commitLocked bumps the revision and notifies subscribers. Sends are
// non-blocking, so delivering under the lock cannot stall, and
// Unsubscribe cannot close a channel mid-send.
func (s *Store) commitLocked(op Op, id int64) {
	s.revision++
	change := Change{Kind: s.kind, Op: op, ID: id, Revision: s.revision}
	for _, subscriber := range s.subscribers {
		select {
		case subscriber <- change:
		default:
		}
	}
}
