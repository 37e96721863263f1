// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package changefeed

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultPath is the notifications endpoint on the API host.
const DefaultPath = "/ws/notifications/"

// FeedURL derives the WebSocket URL from the REST API base: http
// becomes ws, https becomes wss, a trailing "/api" path segment is
// dropped, and path (DefaultPath when empty) is appended.
//
//	FeedURL("https://example.com/api", "") == "wss://example.com/ws/notifications/"
func FeedURL(apiBase, path string) (string, error) {
	if path == "" {
		path = DefaultPath
	}
	base, err := url.Parse(apiBase)
	if err != nil {
		return "", fmt.Errorf("changefeed: parsing API base %q: %w", apiBase, err)
	}
	switch base.Scheme {
	case "http":
		base.Scheme = "ws"
	case "https":
		base.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("changefeed: API base %q must be an http or https URL", apiBase)
	}
	if base.Host == "" {
		return "", fmt.Errorf("changefeed: API base %q has no host", apiBase)
	}

	prefix := strings.TrimSuffix(base.Path, "/")
	prefix = strings.TrimSuffix(prefix, "/api")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	base.Path = prefix + path
	base.RawPath = ""
	base.RawQuery = ""
	base.Fragment = ""
	return base.String(), nil
}
