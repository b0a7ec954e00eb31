package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-pagebuilder/internal/config"
	"github.com/goliatone/go-pagebuilder/pkg/document"
	"github.com/goliatone/go-pagebuilder/pkg/persist"
	"github.com/goliatone/go-pagebuilder/pkg/persist/mongostore"
	"github.com/goliatone/go-pagebuilder/pkg/persist/sqlstore"
)

// openStore builds the configured page store. The returned func releases
// its connections.
func openStore(ctx context.Context, cfg config.StoreConfig, logger zerolog.Logger) (persist.Store, func() error, error) {
	noop := func() error { return nil }
	switch driver := strings.ToLower(cfg.Driver); driver {
	case "", "memory":
		return persist.NewMemoryStore(), noop, nil
	case "mongo", "mongodb":
		store, err := mongostore.Connect(ctx, cfg.DSN, cfg.Database, cfg.Collection, mongostore.WithLogger(logger))
		if err != nil {
			return nil, noop, err
		}
		return store, func() error { return store.Close(context.Background()) }, nil
	default:
		store, err := sqlstore.Open(driver, cfg.DSN, sqlstore.WithLogger(logger))
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	}
}

func newService(store persist.Store, cfg config.StoreConfig, logger zerolog.Logger) *persist.Service {
	return persist.NewService(store,
		persist.WithTimeout(cfg.Timeout),
		persist.WithRetries(cfg.Retries),
		persist.WithLogger(logger),
	)
}

// readDraft reads a draft file. A missing file is an error.
func readDraft(path string) (document.Draft, error) {
	d, ok, err := persist.NewFileMirror(path).Read()
	if err != nil {
		return document.Draft{}, err
	}
	if !ok {
		return document.Draft{}, fmt.Errorf("pagebuilder: %s does not exist", path)
	}
	return d, nil
}
