// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package entitystore

import "github.com/bureau-foundation/boarding/lib/entity"

// Set is one Store per entity kind, owned by the composition root.
type Set struct {
	stores map[entity.Kind]*Store
	order  []*Store
}

// NewSet builds a store for every kind in entity.Kinds.
func NewSet(options Options) *Set {
	set := &Set{stores: make(map[entity.Kind]*Store)}
	for _, kind := range entity.Kinds() {
		store := New(kind, options)
		set.stores[kind] = store
		set.order = append(set.order, store)
	}
	return set
}

// Store returns the store for kind, or false for an unknown kind.
func (s *Set) Store(kind entity.Kind) (*Store, bool) {
	store, ok := s.stores[kind]
	return store, ok
}

// All returns the stores in entity.Kinds order.
func (s *Set) All() []*Store {
	return append([]*Store(nil), s.order...)
}
