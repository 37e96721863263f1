// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package restapi

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bureau-foundation/boarding/lib/entity"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient(ClientConfig{
		BaseURL: server.URL + "/api/",
		Token:   func() (string, error) { return "session-token", nil },
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestFetchCollection(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/members/" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer session-token" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":1,"name":"A"},{"id":2,"name":"B","balance":12.5}]`))
	})

	records, err := client.FetchCollection(t.Context(), entity.Member)
	if err != nil {
		t.Fatalf("FetchCollection: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if id, _ := records[0].ID(); id != 1 || records[0]["name"] != "A" {
		t.Fatalf("records[0] = %v", records[0])
	}
	if records[1]["balance"] != 12.5 {
		t.Fatalf("records[1] balance = %#v", records[1]["balance"])
	}
}

func TestFetchCollectionErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantDetail string
	}{
		{"detail", http.StatusUnauthorized, `{"detail":"Authentication credentials were not provided."}`, 401, "Authentication credentials were not provided."},
		{"non-string detail", http.StatusBadRequest, `{"detail":{"field":"bad"}}`, 400, ""},
		{"html", http.StatusBadGateway, `<html>bad gateway</html>`, 502, ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(test.status)
				w.Write([]byte(test.body))
			})
			_, err := client.FetchCollection(t.Context(), entity.Payment)
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error %v is not an *APIError", err)
			}
			if apiErr.StatusCode != test.wantStatus || apiErr.Detail != test.wantDetail {
				t.Fatalf("APIError = %+v", apiErr)
			}
			if apiErr.Body != test.body {
				t.Fatalf("Body = %q", apiErr.Body)
			}
		})
	}
}

func TestFetchCollectionRejectsNonList(t *testing.T) {
	for _, body := range []string{`{"results":[]}`, `null`, `[1,2]`} {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		})
		if _, err := client.FetchCollection(t.Context(), entity.Bill); err == nil {
			t.Errorf("body %s should fail", body)
		}
	}
}

func TestReason(t *testing.T) {
	if got := Reason(entity.Member, &APIError{StatusCode: 403, Detail: "You do not have permission."}); got != "You do not have permission." {
		t.Fatalf("Reason with detail = %q", got)
	}
	if got := Reason(entity.Member, &APIError{StatusCode: 500, Body: "oops"}); got != "Failed to fetch members" {
		t.Fatalf("Reason without detail = %q", got)
	}
	if got := Reason(entity.Repair, errors.New("dial tcp: connection refused")); got != "Failed to fetch repairs" {
		t.Fatalf("Reason for transport error = %q", got)
	}
}

func TestNewClientValidates(t *testing.T) {
	for _, base := range []string{"", "ftp://host/api", "host/api"} {
		if _, err := NewClient(ClientConfig{BaseURL: base}); err == nil {
			t.Errorf("NewClient(%q) should fail", base)
		}
	}
}
