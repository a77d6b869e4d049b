package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"math/rand"
	"os"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/five82/catch/internal/app"
	"github.com/five82/catch/internal/fish"
	"github.com/five82/catch/internal/logtail"
	"github.com/five82/catch/internal/remote"
	"github.com/five82/catch/internal/storefront"
	"github.com/five82/catch/internal/storeid"
)

// admin runs inventory commands against opened services.
type admin struct {
	svc     *app.Services
	out     io.Writer
	timeout time.Duration
}

func (a *admin) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "seed":
		return a.cmdSeed(ctx, args)
	case "list", "ls":
		return a.cmdList(ctx, args)
	case "import":
		return a.cmdImport(ctx, args)
	case "export":
		return a.cmdExport(ctx, args)
	case "rm", "delete":
		return a.cmdRemove(ctx, args)
	default:
		return fmt.Errorf("unknown command %q (see catch-admin help)", cmd)
	}
}

func storeArg(args []string, n int, usage string) (string, error) {
	if len(args) != n {
		return "", fmt.Errorf("usage: catch-admin %s", usage)
	}
	id, err := storeid.Validate(args[0])
	if err != nil {
		return "", fmt.Errorf("store id: %w", err)
	}
	return id, nil
}

// withStorefront activates a controller for id, waits for the first sync,
// runs fn and flushes the resulting push.
func (a *admin) withStorefront(ctx context.Context, id string, fn func(c *storefront.Controller)) error {
	c, err := a.svc.NewStorefront(id)
	if err != nil {
		return err
	}
	if err := c.Activate(ctx); err != nil {
		return err
	}

	waitCtx, cancel := context.WithTimeout(ctx, a.timeout)
	err = c.WaitForSync(waitCtx)
	cancel()
	if err != nil {
		_ = c.Deactivate()
		return fmt.Errorf("wait for %s: %w", id, err)
	}

	fn(c)

	if err := c.Deactivate(); err != nil {
		return err
	}
	if err := c.Snapshot().LastError; err != nil {
		return fmt.Errorf("sync %s: %w", id, err)
	}
	return nil
}

func (a *admin) fetchInventory(ctx context.Context, id string) (fish.Inventory, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	raw, err := a.svc.Remote.Fetch(ctx, remote.JoinPath(id, "fishes"))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", id, err)
	}
	return fish.DecodeInventory(raw)
}

func (a *admin) cmdSeed(ctx context.Context, args []string) error {
	id, err := storeArg(args, 1, "seed <store>")
	if err != nil {
		return err
	}
	if err := a.withStorefront(ctx, id, func(c *storefront.Controller) {
		c.LoadSampleFishes()
	}); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(a.out, "Seeded %d sample fishes into %s\n", len(fish.SampleFishes()), id)
	return nil
}

func (a *admin) cmdList(ctx context.Context, args []string) error {
	id, err := storeArg(args, 1, "list <store>")
	if err != nil {
		return err
	}
	inv, err := a.fetchInventory(ctx, id)
	if err != nil {
		return err
	}

	keys := inv.Live()
	if len(keys) == 0 {
		fmt.Fprintf(a.out, "Store %s has no fish.\n", id)
		return nil
	}

	red := color.New(color.FgRed)
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tNAME\tPRICE\tSTATUS\tDESCRIPTION")
	available := 0
	for _, k := range keys {
		f := inv[k]
		status := string(f.Status)
		if f.Available() {
			available++
		} else {
			status = red.Sprint(status)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", k, f.Name, fish.FormatPrice(f.Price), status, clip(f.Desc, 48))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "\n%d fishes, %d available\n", len(keys), available)
	return nil
}

// catalog is the YAML exchange format: fish records keyed by inventory key.
type catalog map[string]fish.Fish

func (a *admin) cmdImport(ctx context.Context, args []string) error {
	id, err := storeArg(args, 2, "import <store> <file.yaml>")
	if err != nil {
		return err
	}
	data, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("read catalog: %w", err)
	}
	cat, err := parseCatalog(data)
	if err != nil {
		return err
	}

	if err := a.withStorefront(ctx, id, func(c *storefront.Controller) {
		for _, k := range slices.Sorted(maps.Keys(cat)) {
			c.UpdateFish(k, cat[k])
		}
	}); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(a.out, "Imported %d fishes into %s\n", len(cat), id)
	return nil
}

// parseCatalog decodes and validates a YAML catalog.
func parseCatalog(data []byte) (catalog, error) {
	var cat catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(cat) == 0 {
		return nil, errors.New("catalog is empty")
	}
	for k, f := range cat {
		if _, err := storeid.Validate(k); err != nil {
			return nil, fmt.Errorf("fish key %q: %w", k, err)
		}
		if strings.TrimSpace(f.Name) == "" {
			return nil, fmt.Errorf("fish %s: name is required", k)
		}
		if f.Price < 0 {
			return nil, fmt.Errorf("fish %s: price is negative", k)
		}
		status, err := fish.ParseStatus(string(f.Status))
		if err != nil {
			return nil, fmt.Errorf("fish %s: %w", k, err)
		}
		f.Status = status
		cat[k] = f
	}
	return cat, nil
}

func (a *admin) cmdExport(ctx context.Context, args []string) error {
	id, err := storeArg(args, 1, "export <store>")
	if err != nil {
		return err
	}
	inv, err := a.fetchInventory(ctx, id)
	if err != nil {
		return err
	}
	cat := make(catalog, len(inv))
	for _, k := range inv.Live() {
		cat[k] = *inv[k]
	}

	enc := yaml.NewEncoder(a.out)
	enc.SetIndent(2)
	if err := enc.Encode(cat); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return enc.Close()
}

func (a *admin) cmdRemove(ctx context.Context, args []string) error {
	id, err := storeArg(args, 2, "rm <store> <key>")
	if err != nil {
		return err
	}
	key := strings.TrimSpace(args[1])

	var removed *fish.Fish
	if err := a.withStorefront(ctx, id, func(c *storefront.Controller) {
		if removed = c.Snapshot().Fishes[key]; removed != nil {
			c.DeleteFish(key)
		}
	}); err != nil {
		return err
	}
	if removed == nil {
		return fmt.Errorf("store %s has no fish %q", id, key)
	}
	color.New(color.FgGreen).Fprintf(a.out, "Removed %s (%s) from %s\n", key, removed.Name, id)
	return nil
}

func cmdName(out io.Writer, rng *rand.Rand, args []string) error {
	if len(args) != 0 {
		return errors.New("usage: catch-admin name")
	}
	fmt.Fprintln(out, storeid.Generate(rng))
	return nil
}

func cmdLogs(out io.Writer, path string, args []string) error {
	fs := flag.NewFlagSet("logs", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	lines := fs.Int("n", 50, "number of lines")
	level := fs.String("level", "debug", "minimum level")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("usage: catch-admin logs [-n lines] [-level level]: %w", err)
	}
	entries, err := logtail.Tail(path, *lines, app.ParseLevel(*level))
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintf(out, "No log entries in %s\n", path)
		return nil
	}
	for _, e := range entries {
		writeEntry(out, e)
	}
	return nil
}

// writeEntry prints one log entry as "15:04:05 INF component message k=v".
func writeEntry(out io.Writer, e logtail.Entry) {
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(color.HiBlackString(e.Time.Format("15:04:05") + " "))
	}
	switch {
	case e.Level >= slog.LevelError:
		b.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	case e.Level >= slog.LevelWarn:
		b.WriteString(color.YellowString("WRN "))
	case e.Level >= slog.LevelInfo:
		b.WriteString(color.CyanString("INF "))
	default:
		b.WriteString(color.MagentaString("DBG "))
	}
	if e.Component != "" {
		b.WriteString(color.BlueString(e.Component) + " ")
	}
	msg := e.Message
	if msg == "" {
		msg = e.Raw
	}
	b.WriteString(msg)
	for _, k := range slices.Sorted(maps.Keys(e.Attrs)) {
		b.WriteString(color.HiBlackString(" " + k + "="))
		b.WriteString(e.Attrs[k])
	}
	fmt.Fprintln(out, b.String())
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
