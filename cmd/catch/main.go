package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/catch/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "config file path (optional, defaults to ~/.config/catch/config.toml)")
	prefsPath := flag.String("prefs", "", "preferences file path (optional)")
	store := flag.String("store", "", "store to open (optional, defaults to the last store)")
	backend := flag.String("backend", "", "override database backend: firebase, sqlite or memory")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		PrefsPath:  *prefsPath,
		StoreID:    *store,
		Backend:    *backend,
	}
	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "catch: %v\n", err)
		return 1
	}
	return 0
}
