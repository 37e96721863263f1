// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/bureau-foundation/boarding/lib/changefeed"
	"github.com/bureau-foundation/boarding/lib/clock"
	"github.com/bureau-foundation/boarding/lib/config"
	"github.com/bureau-foundation/boarding/lib/entitystore"
	"github.com/bureau-foundation/boarding/lib/restapi"
	"github.com/bureau-foundation/boarding/lib/session"
	"github.com/bureau-foundation/boarding/lib/statesock"
)

// Options holds what New needs besides the configuration.
type Options struct {
	Config *config.Config
	Logger *slog.Logger

	// Clock drives reconnect delays and session polling. Nil means the
	// wall clock.
	Clock clock.Clock

	// Registry receives the change-feed metrics and backs the /metrics
	// endpoint. Nil disables both.
	Registry *prometheus.Registry

	// HTTPClient is used for REST fetches and the WebSocket handshake.
	// Nil builds one from api.timeout.
	HTTPClient *http.Client

	// Dialer replaces the WebSocket dialer, for tests.
	Dialer changefeed.Dialer
}

// Console is the running synchronization layer.
type Console struct {
	config   *config.Config
	logger   *slog.Logger
	clock    clock.Clock
	registry *prometheus.Registry

	stores  *entitystore.Set
	session *session.FileSource
	loader  *restapi.Loader
	feed    *changefeed.Client

	stateServer *statesock.Server
}

// New builds every component from options.Config, which must be valid.
func New(options Options) (*Console, error) {
	cfg := options.Config
	if cfg == nil {
		return nil, errors.New("console: Config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("console: invalid config: %w", err)
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	clk := options.Clock
	if clk == nil {
		clk = clock.Real()
	}

	insertPolicy, err := entitystore.ParseInsertPolicy(cfg.Store.InsertPolicy)
	if err != nil {
		return nil, err
	}
	loadRace, err := entitystore.ParseLoadRacePolicy(cfg.Store.LoadRace)
	if err != nil {
		return nil, err
	}
	stores := entitystore.NewSet(entitystore.Options{Insert: insertPolicy, LoadRace: loadRace})

	source := session.NewFileSource(cfg.Session.TokenFile)

	restClient, err := restapi.NewClient(restapi.ClientConfig{
		BaseURL:    cfg.API.BaseURL,
		HTTPClient: options.HTTPClient,
		Timeout:    cfg.API.Timeout,
		Token:      source.Token,
	})
	if err != nil {
		return nil, err
	}

	feedURL, err := changefeed.FeedURL(cfg.API.BaseURL, cfg.Feed.Path)
	if err != nil {
		return nil, err
	}
	backoff, err := changefeed.ParseBackoff(cfg.Feed.Backoff, cfg.Feed.RetryDelay, cfg.Feed.MaxDelay)
	if err != nil {
		return nil, err
	}
	dialer := options.Dialer
	if dialer == nil {
		dialer = &changefeed.WebSocketDialer{HTTPClient: options.HTTPClient, Token: source.Token}
	}
	var metrics *changefeed.Metrics
	if options.Registry != nil {
		if metrics, err = changefeed.NewMetrics(options.Registry); err != nil {
			return nil, fmt.Errorf("console: registering metrics: %w", err)
		}
	}
	feed, err := changefeed.NewClient(changefeed.Config{
		URL:     feedURL,
		Dialer:  dialer,
		Stores:  stores,
		Session: source,
		Backoff: backoff,
		Clock:   clk,
		Logger:  logger,
		Metrics: metrics,
	})
	if err != nil {
		return nil, err
	}

	c := &Console{
		config:   cfg,
		logger:   logger,
		clock:    clk,
		registry: options.Registry,
		stores:   stores,
		session:  source,
		loader:   restapi.NewLoader(restClient, stores, logger),
		feed:     feed,
	}
	if cfg.State.SocketPath != "" {
		c.stateServer = statesock.NewServer(cfg.State.SocketPath, logger)
		statesock.Register(c.stateServer, stores, c)
	}
	return c, nil
}

// Stores returns the entity stores. Readers must not mutate them.
func (c *Console) Stores() *entitystore.Set { return c.stores }

// Feed returns the change-feed client, for state subscriptions.
func (c *Console) Feed() *changefeed.Client { return c.feed }

// StateServer returns the state socket server, or nil when disabled.
func (c *Console) StateServer() *statesock.Server { return c.stateServer }

// ConnectionState implements statesock.ConnectionStatus.
func (c *Console) ConnectionState() string { return c.feed.State().String() }

// Run serves until ctx is cancelled. It returns an error only when a
// listener (state socket or metrics) fails.
func (c *Console) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)

	if c.stateServer != nil {
		group.Go(func() error { return c.stateServer.Serve(ctx) })
	}
	if c.registry != nil && c.config.Metrics.Listen != "" {
		server := NewMetricsServer(c.config.Metrics.Listen, c.registry, c.logger)
		group.Go(func() error { return server.Serve(ctx) })
	}
	group.Go(func() error {
		c.supervise(ctx)
		return nil
	})
	return group.Wait()
}

// supervise starts a session on login and ends it on logout. A session
// is one bulk load plus one feed run, both bound to the session's
// context.
func (c *Console) supervise(ctx context.Context) {
	presence := session.Watch(ctx, c.session, c.clock, c.config.Session.PollInterval)

	var (
		cancelSession context.CancelFunc
		sessionDone   chan struct{}
		loading       sync.WaitGroup
	)
	// end cancels the session and waits for its bulk load, so a late
	// result from a cancelled load never lands on the next session's.
	end := func() {
		cancelSession()
		loading.Wait()
		cancelSession, sessionDone = nil, nil
	}
	stop := func() {
		if cancelSession == nil {
			return
		}
		done := sessionDone
		end()
		<-done
	}
	start := func() {
		sessionCtx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		cancelSession, sessionDone = cancel, done

		loading.Add(1)
		go func() {
			defer loading.Done()
			if err := c.loader.LoadAll(sessionCtx); err != nil && sessionCtx.Err() == nil {
				c.logger.Warn("initial load incomplete", "error", err)
			}
		}()
		go func() {
			defer close(done)
			if err := c.feed.Run(sessionCtx); err != nil {
				c.logger.Error("change feed did not start", "error", err)
			}
		}()
	}
	defer stop()

	for {
		select {
		case present, open := <-presence:
			if !open {
				return
			}
			if present && cancelSession == nil {
				c.logger.Info("session started", "token_file", c.session.Path())
				start()
			} else if !present && cancelSession != nil {
				c.logger.Info("session ended")
				stop()
			}
		case <-sessionDone:
			// The feed saw the token vanish before the watcher did. If
			// it is already back, the watcher will not report a change.
			end()
			if ctx.Err() == nil && c.session.Present() {
				c.logger.Info("session restarted", "token_file", c.session.Path())
				start()
			}
		}
	}
}
