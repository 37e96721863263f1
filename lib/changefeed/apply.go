// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package changefeed

import (
	"github.com/bureau-foundation/boarding/lib/entity"
	"github.com/bureau-foundation/boarding/lib/entitystore"
)

// Stores looks up the store for a kind. *entitystore.Set implements it.
type Stores interface {
	Store(kind entity.Kind) (*entitystore.Store, bool)
}

// Outcome reports what Apply did with an event.
type Outcome int

const (
	// Applied means the store changed.
	Applied Outcome = iota
	// Missed means an update or delete named an id the store does not
	// hold. Nothing changed.
	Missed
	// Ignored means no store is registered for the event's kind.
	Ignored
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Missed:
		return "missed"
	case Ignored:
		return "ignored"
	}
	return "unknown"
}

// Apply folds event into the store for its kind. It mutates at most one
// store.
func Apply(stores Stores, event Event) Outcome {
	store, ok := stores.Store(event.Kind)
	if !ok {
		return Ignored
	}
	switch event.Action {
	case ActionCreated:
		store.Insert(event.Data)
		return Applied
	case ActionUpdated:
		if store.ApplyUpdate(event.Data) {
			return Applied
		}
	case ActionDeleted:
		if store.Remove(event.ID) {
			return Applied
		}
	default:
		return Ignored
	}
	return Missed
}
