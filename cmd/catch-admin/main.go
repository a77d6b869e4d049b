// Command catch-admin manages storefront inventories from the shell.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/five82/catch/internal/app"
	"github.com/five82/catch/internal/config"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("catch-admin", flag.ContinueOnError)
	configPath := fs.String("config", "", "config file path (optional)")
	backend := fs.String("backend", "", "override database backend: firebase, sqlite or memory")
	verbose := fs.Bool("v", false, "log at the configured level instead of warnings only")
	fs.Usage = func() { printUsage(os.Stderr) }
	if err := fs.Parse(args); err != nil {
		return 2
	}

	rest := fs.Args()
	if len(rest) == 0 {
		printUsage(os.Stderr)
		return 1
	}
	cmd, cmdArgs := rest[0], rest[1:]

	switch cmd {
	case "help", "-h", "--help":
		printUsage(os.Stdout)
		return 0
	case "name":
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		return exit(cmdName(os.Stdout, rng, cmdArgs))
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return exit(fmt.Errorf("load config: %w", err))
	}
	if b := strings.TrimSpace(*backend); b != "" {
		cfg.Database.Backend = strings.ToLower(b)
		if err := cfg.Validate(); err != nil {
			return exit(err)
		}
	}

	if cmd == "logs" {
		return exit(cmdLogs(os.Stdout, cfg.Log.Path, cmdArgs))
	}

	logCfg := cfg.Log
	if !*verbose {
		logCfg.Level = "warn"
	}
	logger := app.NewLogger(os.Stderr, logCfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc, err := app.Open(cfg, logger)
	if err != nil {
		return exit(err)
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Warn("close services", "error", err)
		}
	}()

	a := &admin{svc: svc, out: os.Stdout, timeout: 15 * time.Second}
	return exit(a.dispatch(ctx, cmd, cmdArgs))
}

func exit(err error) int {
	if err == nil {
		return 0
	}
	color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
	return 1
}

func printUsage(w io.Writer) {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	cyan.Fprintln(w, "catch-admin · Catch of the Day inventory tool")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: catch-admin [-config path] [-backend name] [-v] <command> [args]")
	fmt.Fprintln(w)
	yellow.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  seed <store>                 Load the sample catalog into a store")
	fmt.Fprintln(w, "  list <store>                 Show a store's inventory")
	fmt.Fprintln(w, "  import <store> <file.yaml>   Merge fish records from YAML")
	fmt.Fprintln(w, "  export <store>               Print the inventory as YAML")
	fmt.Fprintln(w, "  rm <store> <key>             Delete one fish")
	fmt.Fprintln(w, "  name                         Print a generated store name")
	fmt.Fprintln(w, "  logs [-n lines] [-level l]   Show the end of the catch log")
	fmt.Fprintln(w)
	yellow.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  CATCH_DATABASE_URL           Firebase database URL")
	fmt.Fprintln(w, "  CATCH_DATABASE_AUTH          Firebase auth token")
	fmt.Fprintln(w)
}
