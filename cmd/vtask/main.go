// Package main is the entry point for the vtask CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"vtask/internal/backend/firestore"
	"vtask/internal/backend/sqlitedoc"
	"vtask/internal/cache"
	"vtask/internal/cli"
	"vtask/internal/commands"
	"vtask/internal/config"
	"vtask/internal/docstore"
	"vtask/internal/logging"
	"vtask/internal/service"
	"vtask/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, newService)
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// newService opens the configured document backend and layers the task
// store over it with an on-disk cache.
func newService(ctx context.Context, cfg *config.Config) (service.Service, func() error, error) {
	log := logging.New(os.Stderr, cfg.Debug)

	var docs docstore.Store
	var closeFn func() error
	switch cfg.Backend {
	case config.BackendFirestore:
		client, err := firestore.New(ctx, cfg, log)
		if err != nil {
			return nil, nil, err
		}
		docs = client
	case config.BackendSQLite:
		db, err := sqlitedoc.Open(ctx, cfg.SQLitePath, log)
		if err != nil {
			return nil, nil, err
		}
		docs, closeFn = db, db.Close
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	c := cache.NewFileStore(cfg.Fs, cfg.CacheDir)
	svc := store.New(docs, c, store.WithOwner(cfg.Owner), store.WithLogger(log))
	log.Debug("task store ready", "backend", cfg.Backend, "owner", cfg.Owner)
	return svc, closeFn, nil
}
