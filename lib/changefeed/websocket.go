// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package changefeed

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/coder/websocket"
)

// DefaultMaxMessageSize bounds a single notification.
const DefaultMaxMessageSize int64 = 1 << 20

// Dialer opens a change-feed connection.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// Conn is an open change-feed connection. Read blocks until the next
// message arrives, the peer closes, or ctx is done.
type Conn interface {
	Read(ctx context.Context) ([]byte, error)
	Close() error
}

// WebSocketDialer dials the feed over WebSocket.
type WebSocketDialer struct {
	// HTTPClient performs the upgrade request. Nil uses
	// http.DefaultClient.
	HTTPClient *http.Client

	// Token, when set, supplies the session token sent as a bearer
	// Authorization header on the handshake.
	Token func() (string, error)

	// MaxMessageSize caps one message. Zero means
	// DefaultMaxMessageSize.
	MaxMessageSize int64
}

// Dial implements Dialer.
func (d *WebSocketDialer) Dial(ctx context.Context, url string) (Conn, error) {
	options := &websocket.DialOptions{HTTPClient: d.HTTPClient}
	if d.Token != nil {
		token, err := d.Token()
		if err != nil {
			return nil, fmt.Errorf("reading session token: %w", err)
		}
		options.HTTPHeader = http.Header{"Authorization": []string{"Bearer " + token}}
	}

	conn, response, err := websocket.Dial(ctx, url, options)
	if err != nil {
		if response != nil {
			return nil, fmt.Errorf("dialing %s: %s: %w", url, response.Status, err)
		}
		return nil, fmt.Errorf("dialing %s: %w", url, err)
	}

	limit := d.MaxMessageSize
	if limit <= 0 {
		limit = DefaultMaxMessageSize
	}
	conn.SetReadLimit(limit)
	return &webSocketConn{conn: conn}, nil
}

type webSocketConn struct {
	conn *websocket.Conn
}

func (c *webSocketConn) Read(ctx context.Context) ([]byte, error) {
	_, data, err := c.conn.Read(ctx)
	return data, err
}

func (c *webSocketConn) Close() error {
	err := c.conn.Close(websocket.StatusNormalClosure, "")
	if err != nil && !IsNormalClose(err) {
		return err
	}
	return nil
}

// IsNormalClose reports whether err is the orderly end of a WebSocket
// session rather than a transport failure.
func IsNormalClose(err error) bool {
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	}
	return errors.Is(err, context.Canceled)
}
