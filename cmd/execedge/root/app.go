package root

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"execedge/internal/auth"
	"execedge/internal/catalog"
	"execedge/internal/config"
	"execedge/internal/engine"
	"execedge/internal/logger"
	"execedge/internal/storage"
)

type app struct {
	cfg    *config.Config
	log    *zap.Logger
	svc    *engine.Service
	auth   *auth.Provider
	userID string
}

type store interface {
	storage.Repository
	storage.UserStore
}

func openStore(ctx context.Context, cfg *config.Config) (store, func(), error) {
	if cfg.Backend == "memory" {
		return storage.NewMemoryStore(), func() {}, nil
	}
	dialect, dsn := cfg.DSN()
	db, err := storage.Open(ctx, dialect, dsn)
	if err != nil {
		return nil, nil, err
	}
	return storage.NewSQLStore(db, dialect), func() { _ = db.Close() }, nil
}

// openApp wires config, logging, storage and the service for one command.
// The acting user is created on first use.
func openApp(ctx context.Context, quietLog bool) (*app, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(logger.Options{
		Level:       cfg.LogLevel,
		Development: !cfg.IsProduction(),
		File:        cfg.LogFile,
		Quiet:       quietLog,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}

	cat := catalog.Default()
	if cfg.CatalogFile != "" {
		if cat, err = catalog.Load(cfg.CatalogFile); err != nil {
			return nil, nil, err
		}
	}

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = log.Sync()
		closeStore()
	}

	svc := engine.NewService(st, cat,
		engine.WithLogger(log),
		engine.WithLocation(cfg.Location()))
	if _, err := svc.SyncCatalog(ctx); err != nil {
		cleanup()
		return nil, nil, err
	}

	a := &app{
		cfg:    cfg,
		log:    log,
		svc:    svc,
		auth:   auth.NewProvider(st, log),
		userID: cfg.UserID,
	}
	if userFlag != "" {
		a.userID = userFlag
	}
	if _, err := a.auth.EnsureUser(ctx, a.userID, a.userID); err != nil {
		cleanup()
		return nil, nil, err
	}
	return a, cleanup, nil
}
