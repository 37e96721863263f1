// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsServer serves /metrics for a Prometheus gatherer over TCP.
type MetricsServer struct {
	address  string
	gatherer prometheus.Gatherer
	logger   *slog.Logger

	ready chan struct{}
	addr  net.Addr
}

// NewMetricsServer returns a server for address ("127.0.0.1:9464",
// ":0" for tests).
func NewMetricsServer(address string, gatherer prometheus.Gatherer, logger *slog.Logger) *MetricsServer {
	return &MetricsServer{
		address:  address,
		gatherer: gatherer,
		logger:   logger,
		ready:    make(chan struct{}),
	}
}

// Ready is closed once the listener is bound.
func (s *MetricsServer) Ready() <-chan struct{} { return s.ready }

// Addr is the bound address. Valid after Ready is closed.
func (s *MetricsServer) Addr() net.Addr { return s.addr }

// Serve blocks until ctx is cancelled, then shuts down gracefully.
func (s *MetricsServer) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.address, err)
	}
	s.addr = listener.Addr()
	close(s.ready)

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	s.logger.Info("metrics server listening", "address", s.addr.String())
	serveDone := make(chan error, 1)
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveDone <- err
		}
		close(serveDone)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveDone:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("metrics server shutdown: %w", err)
	}
	return nil
}
