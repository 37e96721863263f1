// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package changefeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/coder/websocket"

	"github.com/bureau-foundation/boarding/lib/entity"
	"github.com/bureau-foundation/boarding/lib/entitystore"
	"github.com/bureau-foundation/boarding/lib/testutil"
)

// notificationServer accepts one WebSocket session on the
// notifications path, writes each message received from outgoing, and
// holds the connection open until the test ends.
func notificationServer(t *testing.T, token string, outgoing <-chan string) *httptest.Server {
	t.Helper()
	release := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != DefaultPath {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+token {
			http.Error(w, `{"detail":"Invalid token."}`, http.StatusUnauthorized)
			return
		}
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			t.Errorf("Accept: %v", err)
			return
		}
		defer conn.CloseNow()

		for {
			select {
			case message := <-outgoing:
				if err := conn.Write(context.Background(), websocket.MessageText, []byte(message)); err != nil {
					t.Errorf("Write: %v", err)
					return
				}
			case <-release:
				conn.Close(websocket.StatusGoingAway, "server shutting down")
				return
			}
		}
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })
	return server
}

func TestWebSocketEndToEnd(t *testing.T) {
	outgoing := make(chan string, 1)
	server := notificationServer(t, "secret", outgoing)
	url, err := FeedURL(server.URL+"/api", "")
	if err != nil {
		t.Fatalf("FeedURL: %v", err)
	}

	stores := entitystore.NewSet(entitystore.Options{})
	members, _ := stores.Store(entity.Member)
	members.BeginLoad()
	members.ReplaceAll([]entity.Record{{"id": 1, "name": "A"}})
	if state := members.Snapshot(); state.LoadStatus != entitystore.Ready || len(state.Items) != 1 {
		t.Fatalf("after bulk load: %+v", state)
	}
	changes := members.Subscribe()

	client, err := NewClient(Config{
		URL:    url,
		Dialer: &WebSocketDialer{Token: func() (string, error) { return "secret", nil }},
		Stores: stores,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan struct{})
	go func() {
		defer close(done)
		client.Run(ctx)
	}()

	outgoing <- `{"model":"member","action":"updated","data":{"id":1,"name":"A2"}}`
	update := testutil.RequireReceive(t, changes, testTimeout, "update over websocket")
	if update.Op != entitystore.OpUpdate {
		t.Fatalf("first change = %+v", update)
	}
	record, _ := members.Get(1)
	if record["name"] != "A2" {
		t.Fatalf("after update: %v", record)
	}

	// The delete is only sent once the update has been checked.
	outgoing <- `{"model":"member","action":"deleted","data":{"id":1}}`
	remove := testutil.RequireReceive(t, changes, testTimeout, "delete over websocket")
	if remove.Op != entitystore.OpRemove {
		t.Fatalf("second change = %+v", remove)
	}
	state := members.Snapshot()
	if len(state.Items) != 0 || state.LoadStatus != entitystore.Ready {
		t.Fatalf("after delete: %+v", state)
	}
	if got := client.State(); got != Connected {
		t.Fatalf("state = %v, want connected", got)
	}

	cancel()
	testutil.RequireClosed(t, done, testTimeout, "run loop exit")
	if got := client.State(); got != Disconnected {
		t.Fatalf("state after cancel = %v", got)
	}
}

func TestWebSocketDialerReportsRejectedHandshake(t *testing.T) {
	server := notificationServer(t, "secret", nil)
	url, err := FeedURL(server.URL, "")
	if err != nil {
		t.Fatalf("FeedURL: %v", err)
	}

	dialer := &WebSocketDialer{Token: func() (string, error) { return "expired", nil }}
	conn, err := dialer.Dial(t.Context(), url)
	if err == nil {
		conn.Close()
		t.Fatal("Dial with a bad token should fail")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Fatalf("error %q does not mention the 401 status", err)
	}
}
