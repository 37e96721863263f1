// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package changefeed

import (
	"testing"

	"github.com/bureau-foundation/boarding/lib/entity"
	"github.com/bureau-foundation/boarding/lib/entitystore"
)

func mustDecode(t *testing.T, payload string) Event {
	t.Helper()
	event, err := Decode([]byte(payload))
	if err != nil {
		t.Fatalf("Decode(%s): %v", payload, err)
	}
	return event
}

func TestApplyMemberLifecycle(t *testing.T) {
	stores := entitystore.NewSet(entitystore.Options{})
	members, _ := stores.Store(entity.Member)
	members.BeginLoad()
	members.ReplaceAll([]entity.Record{{"id": 1, "name": "A"}})

	if got := Apply(stores, mustDecode(t, `{"model":"member","action":"updated","data":{"id":1,"name":"A2"}}`)); got != Applied {
		t.Fatalf("update outcome = %v", got)
	}
	state := members.Snapshot()
	if len(state.Items) != 1 || state.Items[0]["name"] != "A2" {
		t.Fatalf("after update: %v", state.Items)
	}

	if got := Apply(stores, mustDecode(t, `{"model":"member","action":"deleted","data":{"id":1}}`)); got != Applied {
		t.Fatalf("delete outcome = %v", got)
	}
	state = members.Snapshot()
	if len(state.Items) != 0 {
		t.Fatalf("after delete: %v", state.Items)
	}
	if state.LoadStatus != entitystore.Ready {
		t.Fatalf("LoadStatus = %v, want ready", state.LoadStatus)
	}
}

func TestApplyTouchesOnlyItsKind(t *testing.T) {
	stores := entitystore.NewSet(entitystore.Options{})
	Apply(stores, mustDecode(t, `{"model":"bill","action":"created","data":{"id":3,"amount":120}}`))

	for _, store := range stores.All() {
		want := 0
		if store.Kind() == entity.Bill {
			want = 1
		}
		if store.Len() != want {
			t.Errorf("%s store has %d items, want %d", store.Kind(), store.Len(), want)
		}
	}
}

func TestApplyMisses(t *testing.T) {
	stores := entitystore.NewSet(entitystore.Options{})
	schedules, _ := stores.Store(entity.Schedule)
	schedules.ReplaceAll([]entity.Record{{"id": 1}})
	before := schedules.Snapshot()

	if got := Apply(stores, mustDecode(t, `{"model":"schedule","action":"updated","data":{"id":2,"room":"B"}}`)); got != Missed {
		t.Fatalf("update miss outcome = %v", got)
	}
	if got := Apply(stores, mustDecode(t, `{"model":"schedule","action":"deleted","data":{"id":2}}`)); got != Missed {
		t.Fatalf("delete miss outcome = %v", got)
	}
	if after := schedules.Snapshot(); after.Revision != before.Revision || len(after.Items) != 1 {
		t.Fatalf("misses changed the store: %+v", after)
	}
}

type emptyStores struct{}

func (emptyStores) Store(entity.Kind) (*entitystore.Store, bool) { return nil, false }

func TestApplyWithoutStoreIsIgnored(t *testing.T) {
	if got := Apply(emptyStores{}, mustDecode(t, `{"model":"payment","action":"created","data":{"id":1}}`)); got != Ignored {
		t.Fatalf("outcome = %v, want ignored", got)
	}
}
