// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package statesock

import (
	"context"
	"fmt"

	"github.com/bureau-foundation/boarding/lib/codec"
	"github.com/bureau-foundation/boarding/lib/entity"
	"github.com/bureau-foundation/boarding/lib/entitystore"
)

// Stores is the read side of the entity stores. *entitystore.Set
// implements it.
type Stores interface {
	Store(kind entity.Kind) (*entitystore.Store, bool)
	All() []*entitystore.Store
}

// ConnectionStatus reports the change-feed state by name
// ("connected", "reconnecting", ...).
type ConnectionStatus interface {
	ConnectionState() string
}

// ListResult is the "list" reply: the state of one store.
type ListResult struct {
	Kind       string          `cbor:"kind" json:"kind"`
	Items      []entity.Record `cbor:"items" json:"items"`
	LoadStatus string          `cbor:"load_status" json:"load_status"`
	LastError  string          `cbor:"last_error,omitempty" json:"last_error,omitempty"`
	Revision   uint64          `cbor:"revision" json:"revision"`
}

// StoreStatus summarizes one store in a StatusResult.
type StoreStatus struct {
	Kind       string `cbor:"kind" json:"kind"`
	LoadStatus string `cbor:"load_status" json:"load_status"`
	Count      int    `cbor:"count" json:"count"`
	LastError  string `cbor:"last_error,omitempty" json:"last_error,omitempty"`
	Revision   uint64 `cbor:"revision" json:"revision"`
}

// StatusResult is the "status" reply.
type StatusResult struct {
	Connection string        `cbor:"connection" json:"connection"`
	Stores     []StoreStatus `cbor:"stores" json:"stores"`
}

type listRequest struct {
	Kind string `cbor:"kind"`
}

// Register installs the "list" and "status" actions on server.
func Register(server *Server, stores Stores, connection ConnectionStatus) {
	server.Handle("list", func(_ context.Context, raw []byte) (any, error) {
		var request listRequest
		if err := codec.Unmarshal(raw, &request); err != nil {
			return nil, fmt.Errorf("decoding list request: %w", err)
		}
		kind, err := entity.ParseKind(request.Kind)
		if err != nil {
			return nil, err
		}
		store, ok := stores.Store(kind)
		if !ok {
			return nil, fmt.Errorf("no store for kind %q", kind)
		}
		state := store.Snapshot()
		items := state.Items
		if items == nil {
			items = []entity.Record{}
		}
		return ListResult{
			Kind:       state.Kind.String(),
			Items:      items,
			LoadStatus: state.LoadStatus.String(),
			LastError:  state.LastError,
			Revision:   state.Revision,
		}, nil
	})

	server.Handle("status", func(context.Context, []byte) (any, error) {
		result := StatusResult{Connection: "disconnected"}
		if connection != nil {
			result.Connection = connection.ConnectionState()
		}
		for _, store := range stores.All() {
			state := store.Snapshot()
			result.Stores = append(result.Stores, StoreStatus{
				Kind:       state.Kind.String(),
				LoadStatus: state.LoadStatus.String(),
				Count:      len(state.Items),
				LastError:  state.LastError,
				Revision:   state.Revision,
			})
		}
		return result, nil
	})
}
