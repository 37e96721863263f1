// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package changefeed

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bureau-foundation/boarding/lib/clock"
)

// Session reports whether a session token is currently available.
type Session interface {
	Present() bool
}

// Config holds a Client's collaborators. URL, Dialer and Stores are
// required.
type Config struct {
	URL    string
	Dialer Dialer
	Stores Stores

	// Session gates every connection attempt. Nil means always
	// present.
	Session Session

	// Backoff chooses the reconnect delay. Nil means Fixed{} (three
	// seconds).
	Backoff Backoff

	Clock   clock.Clock
	Logger  *slog.Logger
	Metrics *Metrics
}

// Client maintains the change-feed connection and applies every event
// it delivers. Build with NewClient; Run drives it.
type Client struct {
	url     string
	dialer  Dialer
	stores  Stores
	session Session
	backoff Backoff
	clock   clock.Clock
	logger  *slog.Logger
	metrics *Metrics

	mutex       sync.Mutex
	state       State
	running     bool
	subscribers []chan State
}

// NewClient validates config and returns a Disconnected client.
func NewClient(config Config) (*Client, error) {
	if config.URL == "" {
		return nil, errors.New("changefeed: URL is required")
	}
	if config.Dialer == nil {
		return nil, errors.New("changefeed: Dialer is required")
	}
	if config.Stores == nil {
		return nil, errors.New("changefeed: Stores is required")
	}
	if config.Backoff == nil {
		config.Backoff = Fixed{}
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		url:     config.URL,
		dialer:  config.Dialer,
		stores:  config.Stores,
		session: config.Session,
		backoff: config.Backoff,
		clock:   config.Clock,
		logger:  config.Logger.With("component", "changefeed"),
		metrics: config.Metrics,
	}, nil
}

// State returns the current connection state.
func (c *Client) State() State {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.state
}

// Subscribe returns a channel receiving every state transition. A full
// channel drops transitions; read State for the latest.
func (c *Client) Subscribe() <-chan State {
	channel := make(chan State, 16)
	c.mutex.Lock()
	c.subscribers = append(c.subscribers, channel)
	c.mutex.Unlock()
	return channel
}

// Unsubscribe stops deliveries to channel and closes it.
func (c *Client) Unsubscribe(channel <-chan State) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for i, subscriber := range c.subscribers {
		if subscriber == channel {
			c.subscribers = slices.Delete(c.subscribers, i, i+1)
			close(subscriber)
			return
		}
	}
}

func (c *Client) setState(state State) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.state == state {
		return
	}
	c.state = state
	c.metrics.stateChanged(state)
	for _, subscriber := range c.subscribers {
		select {
		case subscriber <- state:
		default:
		}
	}
}

// Run connects, applies events, and reconnects after every failure
// until ctx is done or the session token disappears. It returns with
// the client Disconnected, any open connection closed and the pending
// retry timer stopped. Running the same client twice concurrently is
// an error.
func (c *Client) Run(ctx context.Context) error {
	c.mutex.Lock()
	if c.running {
		c.mutex.Unlock()
		return errors.New("changefeed: client is already running")
	}
	c.running = true
	c.mutex.Unlock()

	defer func() {
		c.setState(Disconnected)
		c.mutex.Lock()
		c.running = false
		c.mutex.Unlock()
	}()

	failures := 0
	for attempt := 1; ; attempt++ {
		if ctx.Err() != nil {
			return nil
		}
		if c.session != nil && !c.session.Present() {
			c.logger.Info("session token absent, change feed stopped")
			return nil
		}

		logger := c.logger.With("connection_id", uuid.NewString(), "attempt", attempt)
		c.setState(Connecting)
		conn, err := c.dialer.Dial(ctx, c.url)
		c.metrics.connectAttempted(err)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			failures++
			logger.Warn("change feed connection failed", "url", c.url, "error", err)
		} else {
			failures = 1
			c.setState(Connected)
			logger.Info("change feed connected", "url", c.url)

			err = c.consume(ctx, conn, logger)
			if closeErr := conn.Close(); closeErr != nil {
				logger.Debug("closing change feed connection", "error", closeErr)
			}
			if ctx.Err() != nil {
				return nil
			}
			logger.Warn("change feed connection lost", "error", err)
		}

		delay := c.backoff.Delay(failures)
		c.setState(Reconnecting)
		logger.Info("change feed reconnecting", "delay", delay)
		if !c.wait(ctx, delay) {
			return nil
		}
	}
}

// wait blocks for d on the client's clock. Reports false if ctx ended
// first, in which case the timer has been stopped.
func (c *Client) wait(ctx context.Context, d time.Duration) bool {
	fired := make(chan struct{})
	timer := c.clock.AfterFunc(d, func() { close(fired) })
	select {
	case <-fired:
		return true
	case <-ctx.Done():
		timer.Stop()
		return false
	}
}

// consume reads and applies messages until the connection fails. Bad
// messages are dropped without ending the connection.
func (c *Client) consume(ctx context.Context, conn Conn, logger *slog.Logger) error {
	for {
		payload, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		c.metrics.messageReceived()
		c.handle(payload, logger)
	}
}

func (c *Client) handle(payload []byte, logger *slog.Logger) {
	event, err := Decode(payload)
	switch {
	case errors.Is(err, ErrUnknownKind):
		logger.Debug("ignoring change event for untracked model", "error", err)
		c.metrics.eventHandled("unknown", "", Ignored)
		return
	case errors.Is(err, ErrUnknownAction):
		logger.Debug("ignoring change event with unknown action", "kind", event.Kind, "error", err)
		c.metrics.eventHandled(event.Kind.String(), "unknown", Ignored)
		return
	case err != nil:
		logger.Warn("dropping malformed change event", "error", err, "size", len(payload))
		c.metrics.decodeFailed()
		return
	}

	outcome := Apply(c.stores, event)
	c.metrics.eventHandled(event.Kind.String(), string(event.Action), outcome)
	if outcome != Applied {
		logger.Debug("change event did not match local state",
			"kind", event.Kind,
			"action", event.Action,
			"id", event.ID,
			"outcome", outcome,
		)
	}
}
