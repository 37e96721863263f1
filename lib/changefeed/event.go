// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package changefeed

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bureau-foundation/boarding/lib/entity"
)

// Action is the kind of change a notification reports.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

func (a Action) valid() bool {
	switch a {
	case ActionCreated, ActionUpdated, ActionDeleted:
		return true
	}
	return false
}

var (
	// ErrMalformed marks a message that is not a well-formed change
	// event: invalid JSON, a missing field, or data without an integer
	// id.
	ErrMalformed = errors.New("changefeed: malformed message")

	// ErrUnknownKind marks a well-formed event for a model this console
	// does not track. Callers ignore it.
	ErrUnknownKind = errors.New("changefeed: unknown model")

	// ErrUnknownAction marks an event for a tracked model whose action
	// is not one of created, updated or deleted. Callers ignore it.
	ErrUnknownAction = errors.New("changefeed: unknown action")
)

// Event is one decoded change notification. Data always carries an id;
// for ActionDeleted nothing else is guaranteed.
type Event struct {
	Kind   entity.Kind
	Action Action
	Data   entity.Record
	ID     int64
}

type wireEvent struct {
	Model  string          `json:"model"`
	Action Action          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// Decode parses one feed message. Errors wrap ErrMalformed,
// ErrUnknownKind or ErrUnknownAction. The model is checked before the
// action, so an untracked model is ErrUnknownKind whatever its action.
// With ErrUnknownAction the returned Event carries Kind and Action.
func Decode(payload []byte) (Event, error) {
	var wire wireEvent
	if err := json.Unmarshal(payload, &wire); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if wire.Model == "" {
		return Event{}, fmt.Errorf("%w: missing model", ErrMalformed)
	}
	kind := entity.Kind(wire.Model)
	if !kind.Valid() {
		return Event{}, fmt.Errorf("%w %q", ErrUnknownKind, wire.Model)
	}
	if wire.Action == "" {
		return Event{}, fmt.Errorf("%w: %s event without action", ErrMalformed, kind)
	}
	if !wire.Action.valid() {
		return Event{Kind: kind, Action: wire.Action}, fmt.Errorf("%w %q for %s", ErrUnknownAction, wire.Action, kind)
	}

	if len(wire.Data) == 0 {
		return Event{}, fmt.Errorf("%w: %s %s without data", ErrMalformed, kind, wire.Action)
	}
	var data entity.Record
	if err := json.Unmarshal(wire.Data, &data); err != nil {
		return Event{}, fmt.Errorf("%w: %s %s data: %v", ErrMalformed, kind, wire.Action, err)
	}
	id, ok := data.ID()
	if !ok {
		return Event{}, fmt.Errorf("%w: %s %s data has no integer id", ErrMalformed, kind, wire.Action)
	}

	return Event{Kind: kind, Action: wire.Action, Data: data, ID: id}, nil
}
