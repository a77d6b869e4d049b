// Package sqlite implements remote.Store on a single SQLite file so a
// storefront can run without a hosted database. Every store id is one row
// holding that store's JSON tree; several processes may share the file and
// see each other's writes through polling.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/five82/catch/internal/remote"
)

const defaultPollInterval = time.Second

// Options configure the store.
type Options struct {
	PollInterval time.Duration
	Logger       *slog.Logger
}

// Store is a remote.Store backed by SQLite.
type Store struct {
	db       *sql.DB
	logger   *slog.Logger
	interval time.Duration

	// notifyMu orders deliveries; see memory.Store for the callback contract.
	notifyMu sync.Mutex

	mu     sync.Mutex
	subs   map[string]*subscriber
	closed bool

	stop chan struct{}
	done chan struct{}
}

type subscriber struct {
	sub  remote.Subscription
	fn   remote.ChangeFunc
	last string
}

var _ remote.Store = (*Store)(nil)

// Open creates or opens the database at path and starts the change poller.
func Open(path string, opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "remote.sqlite")

	interval := opts.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
			root       TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			version    INTEGER NOT NULL DEFAULT 0,
			updated_at TEXT NOT NULL
		)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	s := &Store{
		db:       db,
		logger:   logger,
		interval: interval,
		subs:     make(map[string]*subscriber),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go s.poll()

	logger.Info("sqlite store opened", "path", path, "poll_interval", interval)
	return s, nil
}

func splitRoot(path string) (root, rest string, err error) {
	segs := remote.SplitPath(path)
	if len(segs) == 0 {
		return "", "", fmt.Errorf("sqlite store: path is required")
	}
	return segs[0], strings.Join(segs[1:], "/"), nil
}

// load returns the tree stored for root, empty when the row is missing.
func load(ctx context.Context, q interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}, root string) (*remote.Tree, int64, error) {
	var value string
	var version int64
	err := q.QueryRowContext(ctx, `SELECT value, version FROM documents WHERE root = ?`, root).Scan(&value, &version)
	if errors.Is(err, sql.ErrNoRows) {
		tree, _ := remote.NewTree(nil)
		return tree, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("loading %s: %w", root, err)
	}
	tree, err := remote.NewTree(json.RawMessage(value))
	if err != nil {
		return nil, 0, fmt.Errorf("decoding %s: %w", root, err)
	}
	return tree, version, nil
}

// Subscribe registers onChange and delivers the current value before returning.
func (s *Store) Subscribe(path string, onChange remote.ChangeFunc) (remote.Subscription, error) {
	if onChange == nil {
		return remote.Subscription{}, fmt.Errorf("sqlite store: onChange is required")
	}
	root, rest, err := splitRoot(path)
	if err != nil {
		return remote.Subscription{}, err
	}

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	tree, _, err := load(context.Background(), s.db, root)
	if err != nil {
		return remote.Subscription{}, err
	}
	data := tree.GetJSON(rest)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return remote.Subscription{}, remote.ErrClosed
	}
	sub := remote.NewSubscription(path)
	s.subs[sub.ID()] = &subscriber{sub: sub, fn: onChange, last: string(data)}
	s.mu.Unlock()

	onChange(remote.Event{Path: sub.Path(), Data: data})
	return sub, nil
}

// Unsubscribe removes the listener. Unknown handles are ignored.
func (s *Store) Unsubscribe(sub remote.Subscription) error {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, sub.ID())
	return nil
}

// Push replaces the subtree at path inside one transaction.
func (s *Store) Push(ctx context.Context, path string, value any) error {
	root, rest, err := splitRoot(path)
	if err != nil {
		return err
	}
	node, err := remote.Normalize(value)
	if err != nil {
		return fmt.Errorf("sqlite store: %w", err)
	}
	if s.isClosed() {
		return remote.ErrClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin push: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	tree, version, err := load(ctx, tx, root)
	if err != nil {
		return err
	}
	tree.Set(rest, node)
	data, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", root, err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (root, value, version, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(root) DO UPDATE SET
			value = excluded.value,
			version = excluded.version,
			updated_at = excluded.updated_at`,
		root, string(data), version+1, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("writing %s: %w", root, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit push: %w", err)
	}

	s.logger.Debug("pushed", "path", remote.CleanPath(path), "version", version+1)
	s.refresh(ctx)
	return nil
}

// Fetch returns the current value at path.
func (s *Store) Fetch(ctx context.Context, path string) (json.RawMessage, error) {
	root, rest, err := splitRoot(path)
	if err != nil {
		return nil, err
	}
	if s.isClosed() {
		return nil, remote.ErrClosed
	}
	tree, _, err := load(ctx, s.db, root)
	if err != nil {
		return nil, err
	}
	return tree.GetJSON(rest), nil
}

// Roots lists every store id with data.
func (s *Store) Roots(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT root FROM documents WHERE value != 'null' ORDER BY root`)
	if err != nil {
		return nil, fmt.Errorf("listing roots: %w", err)
	}
	defer rows.Close()

	var roots []string
	for rows.Next() {
		var root string
		if err := rows.Scan(&root); err != nil {
			return nil, fmt.Errorf("scanning root: %w", err)
		}
		roots = append(roots, root)
	}
	return roots, rows.Err()
}

// Close stops the poller and closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.subs = make(map[string]*subscriber)
	s.mu.Unlock()

	close(s.stop)
	<-s.done
	return s.db.Close()
}

func (s *Store) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Store) poll() {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.refresh(context.Background())
		}
	}
}

// refresh reloads every watched root and delivers changed subtrees.
func (s *Store) refresh(ctx context.Context) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	entries := make([]*subscriber, 0, len(s.subs))
	for _, entry := range s.subs {
		entries = append(entries, entry)
	}
	s.mu.Unlock()
	if len(entries) == 0 {
		return
	}

	trees := make(map[string]*remote.Tree)
	failed := make(map[string]error)
	for _, entry := range entries {
		root, rest, _ := splitRoot(entry.sub.Path())
		if err, ok := failed[root]; ok {
			entry.last = ""
			entry.fn(remote.Event{Path: entry.sub.Path(), Err: err})
			continue
		}
		tree, ok := trees[root]
		if !ok {
			var err error
			tree, _, err = load(ctx, s.db, root)
			if err != nil {
				s.logger.Warn("poll failed", "root", root, "error", err)
				failed[root] = err
				entry.last = ""
				entry.fn(remote.Event{Path: entry.sub.Path(), Err: err})
				continue
			}
			trees[root] = tree
		}
		data := tree.GetJSON(rest)
		if string(data) == entry.last {
			continue
		}
		entry.last = string(data)
		entry.fn(remote.Event{Path: entry.sub.Path(), Data: data})
	}
}
