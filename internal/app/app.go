package app

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/five82/catch/internal/config"
	"github.com/five82/catch/internal/prefs"
	"github.com/five82/catch/internal/storeid"
	"github.com/five82/catch/internal/ui"
)

// Options configure the catch application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/catch/prefs.toml
	StoreID    string // empty reopens the last store or asks for one
	Backend    string // overrides database.backend
}

// Run boots the catch TUI until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if backend := strings.TrimSpace(opts.Backend); backend != "" {
		cfg.Database.Backend = strings.ToLower(backend)
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("backend override: %w", err)
		}
	}

	logger, logFile, err := OpenLogFile(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logFile.Close() }()

	userPrefs := prefs.Load(opts.PrefsPath)

	id, pick, err := resolveStoreID(opts.StoreID, userPrefs.LastStore)
	if err != nil {
		return err
	}

	services, err := Open(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := services.Close(); err != nil {
			logger.Warn("close services", "component", "app", "error", err)
		}
	}()

	controller, err := services.NewStorefront(id)
	if err != nil {
		return fmt.Errorf("init storefront: %w", err)
	}
	if err := controller.Activate(ctx); err != nil {
		// The header shows the failure; the user can retry by switching stores.
		logger.Error("activate store", "component", "app", "store", id, "error", err)
	}
	defer func() {
		if err := controller.Deactivate(); err != nil {
			logger.Warn("deactivate store", "component", "app", "error", err)
		}
	}()
	if !pick {
		if err := prefs.Update(opts.PrefsPath, func(p *prefs.Prefs) { p.LastStore = id }); err != nil {
			logger.Warn("save last store", "component", "app", "error", err)
		}
	}

	return ui.Run(ui.Options{
		Context:    ctx,
		Storefront: controller,
		ThemeName:  userPrefs.Theme,
		PrefsPath:  opts.PrefsPath,
		LogPath:    cfg.Log.Path,
		Backend:    cfg.Database.Backend,
		PickStore:  pick,
		Logger:     logger,
	})
}

// resolveStoreID picks the flag value, then the last store, and otherwise a
// generated name with the store picker open.
func resolveStoreID(flagValue, last string) (id string, pick bool, err error) {
	if strings.TrimSpace(flagValue) != "" {
		id, err := storeid.Validate(flagValue)
		if err != nil {
			return "", false, fmt.Errorf("store id: %w", err)
		}
		return id, false, nil
	}
	if id, err := storeid.Validate(last); err == nil {
		return id, false, nil
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return storeid.Generate(rng), true, nil
}
