// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package restapi

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/bureau-foundation/boarding/lib/entity"
	"github.com/bureau-foundation/boarding/lib/entitystore"
)

// Fetcher returns the full collection for a kind. *Client implements
// it.
type Fetcher interface {
	FetchCollection(ctx context.Context, kind entity.Kind) ([]entity.Record, error)
}

// StoreSet looks up stores by kind and lists them. *entitystore.Set
// implements it.
type StoreSet interface {
	Store(kind entity.Kind) (*entitystore.Store, bool)
	All() []*entitystore.Store
}

// Loader populates stores from a Fetcher.
type Loader struct {
	fetcher Fetcher
	stores  StoreSet
	logger  *slog.Logger
}

// NewLoader returns a Loader. A nil logger discards.
func NewLoader(fetcher Fetcher, stores StoreSet, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{fetcher: fetcher, stores: stores, logger: logger}
}

// Load refreshes one store. The store ends Ready or Failed; the fetch
// error, if any, is also returned. When ctx ends first the load is
// abandoned instead: the store keeps its items and its previous
// status, and ctx's error is returned.
func (l *Loader) Load(ctx context.Context, kind entity.Kind) error {
	store, ok := l.stores.Store(kind)
	if !ok {
		return fmt.Errorf("restapi: no store for kind %q", kind)
	}

	store.BeginLoad()
	records, err := l.fetcher.FetchCollection(ctx, kind)
	if ctx.Err() != nil {
		store.AbandonLoad()
		l.logger.Debug("bulk load abandoned", "kind", kind)
		return fmt.Errorf("loading %s: %w", kind.Plural(), context.Cause(ctx))
	}
	if err != nil {
		reason := Reason(kind, err)
		store.FailLoad(reason)
		l.logger.Warn("bulk load failed", "kind", kind, "reason", reason, "error", err)
		return fmt.Errorf("loading %s: %w", kind.Plural(), err)
	}
	store.ReplaceAll(records)
	l.logger.Info("bulk load complete", "kind", kind, "count", len(records))
	return nil
}

// LoadAll refreshes every store concurrently. One kind failing does
// not stop the others; the first failure is returned after all
// finish.
func (l *Loader) LoadAll(ctx context.Context) error {
	var group errgroup.Group
	for _, store := range l.stores.All() {
		kind := store.Kind()
		group.Go(func() error { return l.Load(ctx, kind) })
	}
	return group.Wait()
}
