// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package statesock

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/bureau-foundation/boarding/lib/codec"
	"github.com/bureau-foundation/boarding/lib/entity"
)

const (
	dialTimeout     = 5 * time.Second
	responseTimeout = 20 * time.Second
	maxResponseSize = 64 << 20
)

// RemoteError is a reply with ok=false.
type RemoteError struct {
	Action  string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("statesock: %s: %s", e.Action, e.Message)
}

// Client queries a state socket.
type Client struct {
	socketPath string
}

// NewClient returns a client for the socket at socketPath.
func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath}
}

// Call sends action with fields and decodes the reply's data into
// result, which may be nil.
func (c *Client) Call(ctx context.Context, action string, fields map[string]any, result any) error {
	request := map[string]any{"action": action}
	for key, value := range fields {
		request[key] = value
	}

	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("statesock: connecting to %s: %w", c.socketPath, err)
	}
	defer conn.Close()

	if err := codec.NewEncoder(conn).Encode(request); err != nil {
		return fmt.Errorf("statesock: writing request: %w", err)
	}
	if unixConn, ok := conn.(*net.UnixConn); ok {
		unixConn.CloseWrite()
	}

	deadline := time.Now().Add(responseTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	conn.SetReadDeadline(deadline)

	var response Response
	if err := codec.NewDecoder(io.LimitReader(conn, maxResponseSize)).Decode(&response); err != nil {
		return fmt.Errorf("statesock: reading response: %w", err)
	}
	if !response.OK {
		return &RemoteError{Action: action, Message: response.Error}
	}
	if result != nil && len(response.Data) > 0 {
		if err := codec.Unmarshal(response.Data, result); err != nil {
			return fmt.Errorf("statesock: decoding %s data: %w", action, err)
		}
	}
	return nil
}

// List returns the state of the store for kind.
func (c *Client) List(ctx context.Context, kind entity.Kind) (*ListResult, error) {
	var result ListResult
	if err := c.Call(ctx, "list", map[string]any{"kind": kind.String()}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Status returns the connection state and a per-store summary.
func (c *Client) Status(ctx context.Context) (*StatusResult, error) {
	var result StatusResult
	if err := c.Call(ctx, "status", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
