// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package restapi

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/boarding/lib/entity"
	"github.com/bureau-foundation/boarding/lib/entitystore"
	"github.com/bureau-foundation/boarding/lib/testutil"
)

const testTimeout = 5 * time.Second

type fakeFetcher struct {
	mutex   sync.Mutex
	results map[entity.Kind][]entity.Record
	errs    map[entity.Kind]error
	calls   []entity.Kind
}

func (f *fakeFetcher) FetchCollection(_ context.Context, kind entity.Kind) ([]entity.Record, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.calls = append(f.calls, kind)
	if err := f.errs[kind]; err != nil {
		return nil, err
	}
	return f.results[kind], nil
}

func TestLoaderLoadSuccess(t *testing.T) {
	stores := entitystore.NewSet(entitystore.Options{})
	fetcher := &fakeFetcher{results: map[entity.Kind][]entity.Record{
		entity.Member: {{"id": 1, "name": "A"}},
	}}
	loader := NewLoader(fetcher, stores, nil)

	if err := loader.Load(t.Context(), entity.Member); err != nil {
		t.Fatalf("Load: %v", err)
	}
	members, _ := stores.Store(entity.Member)
	state := members.Snapshot()
	if state.LoadStatus != entitystore.Ready || len(state.Items) != 1 {
		t.Fatalf("member state = %+v", state)
	}
}

func TestLoaderLoadFailureKeepsItems(t *testing.T) {
	stores := entitystore.NewSet(entitystore.Options{})
	schedules, _ := stores.Store(entity.Schedule)
	schedules.ReplaceAll([]entity.Record{{"id": 4}})

	fetcher := &fakeFetcher{errs: map[entity.Kind]error{
		entity.Schedule: &APIError{StatusCode: 401, Detail: "Invalid token."},
	}}
	err := NewLoader(fetcher, stores, nil).Load(t.Context(), entity.Schedule)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Load error = %v, want an *APIError", err)
	}

	state := schedules.Snapshot()
	if state.LoadStatus != entitystore.Failed || state.LastError != "Invalid token." {
		t.Fatalf("schedule state = %v %q", state.LoadStatus, state.LastError)
	}
	if len(state.Items) != 1 {
		t.Fatalf("failed load dropped stale items: %v", state.Items)
	}
}

func TestLoaderLoadAll(t *testing.T) {
	stores := entitystore.NewSet(entitystore.Options{})
	fetcher := &fakeFetcher{
		results: map[entity.Kind][]entity.Record{
			entity.Member:   {{"id": 1}},
			entity.Schedule: {{"id": 1}, {"id": 2}},
			entity.Payment:  {},
			entity.Repair:   {{"id": 8}},
		},
		errs: map[entity.Kind]error{entity.Bill: errors.New("connection refused")},
	}

	err := NewLoader(fetcher, stores, nil).LoadAll(t.Context())
	if err == nil {
		t.Fatal("LoadAll should report the bill failure")
	}
	if len(fetcher.calls) != len(entity.Kinds()) {
		t.Fatalf("fetched %v, want every kind", fetcher.calls)
	}

	want := map[entity.Kind]int{entity.Member: 1, entity.Schedule: 2, entity.Payment: 0, entity.Repair: 1}
	for _, store := range stores.All() {
		state := store.Snapshot()
		if store.Kind() == entity.Bill {
			if state.LoadStatus != entitystore.Failed || state.LastError != "Failed to fetch bills" {
				t.Errorf("bill state = %v %q", state.LoadStatus, state.LastError)
			}
			continue
		}
		if state.LoadStatus != entitystore.Ready || len(state.Items) != want[store.Kind()] {
			t.Errorf("%s state = %v with %d items", store.Kind(), state.LoadStatus, len(state.Items))
		}
	}
}

func TestLoaderUnknownKind(t *testing.T) {
	loader := NewLoader(&fakeFetcher{}, entitystore.NewSet(entitystore.Options{}), nil)
	if err := loader.Load(t.Context(), entity.Kind("tenant")); err == nil {
		t.Fatal("Load(tenant) should fail")
	}
}

// gatedFetcher blocks every fetch until a result is sent on release or
// the caller's context ends.
type gatedFetcher struct {
	started chan entity.Kind
	release chan []entity.Record
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{started: make(chan entity.Kind, 8), release: make(chan []entity.Record)}
}

func (f *gatedFetcher) FetchCollection(ctx context.Context, kind entity.Kind) ([]entity.Record, error) {
	f.started <- kind
	select {
	case records := <-f.release:
		return records, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestLoaderCancelledLoadIsNotAFailure(t *testing.T) {
	stores := entitystore.NewSet(entitystore.Options{})
	fetcher := newGatedFetcher()
	loader := NewLoader(fetcher, stores, nil)

	ctx, cancel := context.WithCancel(t.Context())
	result := make(chan error, 1)
	go func() { result <- loader.Load(ctx, entity.Member) }()
	testutil.RequireReceive(t, fetcher.started, testTimeout, "fetch start")
	cancel()

	err := testutil.RequireReceive(t, result, testTimeout, "cancelled load")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Load error = %v, want context.Canceled", err)
	}
	members, _ := stores.Store(entity.Member)
	if state := members.Snapshot(); state.LoadStatus != entitystore.NotStarted || state.LastError != "" {
		t.Fatalf("member state after cancel = %v %q, want not_started", state.LoadStatus, state.LastError)
	}
}

func TestLoaderCancelledLoadLeavesNewerLoadIntact(t *testing.T) {
	stores := entitystore.NewSet(entitystore.Options{LoadRace: entitystore.RaceReplay})
	members, _ := stores.Store(entity.Member)
	fetcher := newGatedFetcher()
	loader := NewLoader(fetcher, stores, nil)

	oldCtx, cancelOld := context.WithCancel(t.Context())
	oldResult := make(chan error, 1)
	go func() { oldResult <- loader.Load(oldCtx, entity.Member) }()
	testutil.RequireReceive(t, fetcher.started, testTimeout, "first fetch start")

	newResult := make(chan error, 1)
	go func() { newResult <- loader.Load(t.Context(), entity.Member) }()
	testutil.RequireReceive(t, fetcher.started, testTimeout, "second fetch start")

	members.Insert(entity.Record{"id": 7})
	cancelOld()
	testutil.RequireReceive(t, oldResult, testTimeout, "cancelled load")

	if state := members.Snapshot(); state.LoadStatus != entitystore.Loading {
		t.Fatalf("status while the second load runs = %v %q, want loading", state.LoadStatus, state.LastError)
	}

	fetcher.release <- []entity.Record{{"id": 1}}
	if err := testutil.RequireReceive(t, newResult, testTimeout, "second load"); err != nil {
		t.Fatalf("second Load: %v", err)
	}
	state := members.Snapshot()
	if state.LoadStatus != entitystore.Ready || len(state.Items) != 2 {
		t.Fatalf("member state = %v %v, want the load plus the replayed insert", state.LoadStatus, state.Items)
	}
}
