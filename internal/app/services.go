package app

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/five82/catch/internal/config"
	"github.com/five82/catch/internal/kv"
	"github.com/five82/catch/internal/remote"
	"github.com/five82/catch/internal/remote/firebase"
	"github.com/five82/catch/internal/remote/memory"
	"github.com/five82/catch/internal/remote/sqlite"
	"github.com/five82/catch/internal/storefront"
)

// Services bundles the backends shared by the TUI and the admin CLI.
type Services struct {
	Config config.Config
	Logger *slog.Logger
	Remote remote.Store
	Orders kv.Store
}

// OpenRemote opens the remote store selected by db.Backend.
func OpenRemote(db config.Database, logger *slog.Logger) (remote.Store, error) {
	switch db.Backend {
	case config.BackendFirebase:
		client, err := firebase.NewClient(db.URL, firebase.Options{Auth: db.Auth, Logger: logger})
		if err != nil {
			return nil, fmt.Errorf("init firebase client: %w", err)
		}
		return client, nil
	case config.BackendSQLite:
		store, err := sqlite.Open(db.Path, sqlite.Options{PollInterval: db.PollInterval, Logger: logger})
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	case config.BackendMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", db.Backend)
	}
}

// Open connects the remote store and the saved-order directory.
func Open(cfg config.Config, logger *slog.Logger) (*Services, error) {
	if logger == nil {
		logger = slog.Default()
	}
	rs, err := OpenRemote(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	orders, err := kv.NewFileStore(cfg.Orders.Dir)
	if err != nil {
		_ = rs.Close()
		return nil, fmt.Errorf("open order store: %w", err)
	}
	logger.Info("services ready",
		"component", "app",
		"backend", cfg.Database.Backend,
		"orders", orders.Dir(),
	)
	return &Services{Config: cfg, Logger: logger, Remote: rs, Orders: orders}, nil
}

// NewStorefront builds an inactive controller for id on these services.
func (s *Services) NewStorefront(id string) (*storefront.Controller, error) {
	return storefront.New(storefront.Options{
		StoreID:     id,
		Remote:      s.Remote,
		Persistence: s.Orders,
		Logger:      s.Logger,
	})
}

// Close releases the remote store.
func (s *Services) Close() error {
	if s == nil || s.Remote == nil {
		return nil
	}
	if err := s.Remote.Close(); err != nil && !errors.Is(err, remote.ErrClosed) {
		return fmt.Errorf("close remote store: %w", err)
	}
	return nil
}
