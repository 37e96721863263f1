// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package session reads the console's session token and reports when
// it appears or disappears.
//
// Token acquisition happens elsewhere (a login command writes the
// file); this package only consumes it. The sync layer treats "a
// non-empty token file exists" as the session validity signal.
package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/bureau-foundation/boarding/lib/clock"
)

// ErrNoSession means no token is available.
var ErrNoSession = errors.New("session: no session token")

// FileSource reads the token from a file on every call, so a login or
// logout by another process is picked up without restarting.
type FileSource struct {
	path string
}

// NewFileSource returns a source reading path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Path returns the token file path.
func (s *FileSource) Path() string { return s.path }

// Token returns the trimmed file contents. A missing or blank file
// yields ErrNoSession.
func (s *FileSource) Token() (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("session: reading %s: %w", s.path, err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNoSession
	}
	return token, nil
}

// Present reports whether Token would succeed.
func (s *FileSource) Present() bool {
	_, err := s.Token()
	return err == nil
}

// Presence is anything that can report session validity.
type Presence interface {
	Present() bool
}

// Watch polls presence every interval and sends the current value
// first and then every change. The channel is closed when ctx is done.
func Watch(ctx context.Context, presence Presence, clk clock.Clock, interval time.Duration) <-chan bool {
	changes := make(chan bool, 1)
	go func() {
		defer close(changes)
		ticker := clk.NewTicker(interval)
		defer ticker.Stop()

		last := presence.Present()
		select {
		case changes <- last:
		case <-ctx.Done():
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			current := presence.Present()
			if current == last {
				continue
			}
			last = current
			select {
			case changes <- current:
			case <-ctx.Done():
				return
			}
		}
	}()
	return changes
}
