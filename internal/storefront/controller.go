package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/five82/catch/internal/fish"
	"github.com/five82/catch/internal/kv"
	"github.com/five82/catch/internal/remote"
	"github.com/five82/catch/internal/state"
	"github.com/five82/catch/internal/storeid"
)

const defaultPushTimeout = 10 * time.Second

// ErrInactive is returned when an operation needs an active subscription.
var ErrInactive = errors.New("storefront not active")

// Options configure a Controller.
type Options struct {
	StoreID     string
	Remote      remote.Store
	Persistence kv.Store
	// Clock generates fish keys; defaults to time.Now.
	Clock  func() time.Time
	Logger *slog.Logger
	// Notify is called after every state change. It must not block.
	Notify func()
	// PushTimeout bounds each remote write.
	PushTimeout time.Duration
}

// Controller owns the fishes and order state of one store.
type Controller struct {
	remote      remote.Store
	persist     kv.Store
	clock       func() time.Time
	logger      *slog.Logger
	pushTimeout time.Duration

	state  state.Store
	notify atomic.Pointer[func()]

	// mu serializes Activate, Deactivate and SwitchStore.
	mu      sync.Mutex
	session atomic.Pointer[session]
}

// session is one activation: a subscription plus its push worker.
type session struct {
	storeID string
	path    string
	sub     remote.Subscription
	live    atomic.Bool

	synced   chan struct{}
	syncOnce sync.Once

	pushCh chan struct{}
	stop   chan struct{}
	done   chan struct{}

	// mu orders local inventory mutations against remote values. localSeq
	// counts mutations made after the first sync and ackedSeq the last one
	// covered by a finished push. While they differ, remote values are held in
	// deferred so an echo of an older push cannot undo newer edits.
	mu       sync.Mutex
	localSeq uint64
	ackedSeq uint64
	deferred fish.Inventory
}

// New builds a controller for opts.StoreID. It does not touch the backends.
func New(opts Options) (*Controller, error) {
	id, err := storeid.Validate(opts.StoreID)
	if err != nil {
		return nil, err
	}
	if opts.Remote == nil {
		return nil, fmt.Errorf("remote store is required")
	}
	if opts.Persistence == nil {
		return nil, fmt.Errorf("persistence store is required")
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pushTimeout := opts.PushTimeout
	if pushTimeout <= 0 {
		pushTimeout = defaultPushTimeout
	}

	c := &Controller{
		remote:      opts.Remote,
		persist:     opts.Persistence,
		clock:       clock,
		logger:      logger.With("component", "storefront"),
		pushTimeout: pushTimeout,
	}
	c.state.Reset(id, nil)
	c.SetNotify(opts.Notify)
	return c, nil
}

// SetNotify replaces the change hook. nil disables notifications.
func (c *Controller) SetNotify(fn func()) {
	if fn == nil {
		c.notify.Store(nil)
		return
	}
	c.notify.Store(&fn)
}

func (c *Controller) changed() {
	if fn := c.notify.Load(); fn != nil {
		(*fn)()
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() state.Snapshot {
	return c.state.Snapshot()
}

// StoreID returns the current store identity.
func (c *Controller) StoreID() string {
	return c.state.Snapshot().StoreID
}

// Active reports whether a subscription is open.
func (c *Controller) Active() bool {
	return c.session.Load() != nil
}

// Activate hydrates the order and subscribes to the store's inventory.
// Calling it on an active controller is a no-op.
func (c *Controller) Activate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activateLocked(ctx, c.StoreID())
}

func (c *Controller) activateLocked(ctx context.Context, id string) error {
	if c.session.Load() != nil {
		return nil
	}

	c.state.Reset(id, c.hydrateOrder(id))

	s := &session{
		storeID: id,
		path:    remote.JoinPath(id, "fishes"),
		synced:  make(chan struct{}),
		pushCh:  make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	s.live.Store(true)
	// Backends may deliver the first value from inside Subscribe, so the
	// session must be installed before subscribing.
	c.session.Store(s)

	sub, err := c.remote.Subscribe(s.path, func(e remote.Event) { c.onRemote(s, e) })
	if err != nil {
		s.live.Store(false)
		c.session.Store(nil)
		c.state.RecordError(err)
		c.changed()
		return fmt.Errorf("subscribe %s: %w", s.path, err)
	}
	s.sub = sub

	go c.pushLoop(context.WithoutCancel(ctx), s)

	c.logger.Info("store activated", "store", id, "path", s.path)
	c.changed()
	return nil
}

// Deactivate flushes any pending push and releases the subscription.
func (c *Controller) Deactivate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deactivateLocked()
}

func (c *Controller) deactivateLocked() error {
	s := c.session.Load()
	if s == nil {
		return nil
	}
	close(s.stop)
	<-s.done

	s.live.Store(false)
	c.session.Store(nil)
	if err := c.remote.Unsubscribe(s.sub); err != nil {
		return fmt.Errorf("unsubscribe %s: %w", s.path, err)
	}
	c.logger.Info("store deactivated", "store", s.storeID)
	return nil
}

// SwitchStore releases the current store and activates id.
func (c *Controller) SwitchStore(ctx context.Context, id string) error {
	id, err := storeid.Validate(id)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if s := c.session.Load(); s != nil && s.storeID == id {
		return nil
	}
	if err := c.deactivateLocked(); err != nil {
		c.logger.Warn("deactivate before switch failed", "error", err)
	}
	return c.activateLocked(ctx, id)
}

// WaitForSync blocks until the first remote value arrives.
func (c *Controller) WaitForSync(ctx context.Context) error {
	s := c.session.Load()
	if s == nil {
		return ErrInactive
	}
	select {
	case <-s.synced:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) onRemote(s *session, e remote.Event) {
	if !s.live.Load() {
		return
	}
	if e.Err != nil {
		c.logger.Warn("remote sync error", "store", s.storeID, "error", e.Err)
		c.state.RecordError(e.Err)
		c.changed()
		return
	}
	inv, err := fish.DecodeInventory(e.Data)
	if err != nil {
		c.logger.Warn("ignoring malformed inventory", "store", s.storeID, "error", err)
		c.state.RecordError(err)
		c.changed()
		return
	}

	s.mu.Lock()
	if c.state.Synced() && s.localSeq != s.ackedSeq {
		s.deferred = inv
		s.mu.Unlock()
		c.logger.Debug("remote value deferred behind local edits", "store", s.storeID)
		return
	}
	c.state.ReplaceFishes(inv)
	s.deferred = nil
	s.mu.Unlock()

	s.syncOnce.Do(func() { close(s.synced) })
	c.logger.Debug("inventory synced", "store", s.storeID, "fishes", len(inv))
	c.changed()
}

// mutateFishes applies fn to the inventory and, once synced, queues a push.
// Requests made while a push is already queued coalesce.
func (c *Controller) mutateFishes(fn func(inv fish.Inventory)) {
	s := c.session.Load()
	if s == nil {
		c.state.MutateFishes(fn)
		c.changed()
		return
	}

	s.mu.Lock()
	c.state.MutateFishes(fn)
	synced := c.state.Synced()
	if synced {
		s.localSeq++
	}
	s.mu.Unlock()

	if synced {
		select {
		case s.pushCh <- struct{}{}:
		default:
		}
	} else {
		c.logger.Debug("push held until first sync", "store", s.storeID)
	}
	c.changed()
}

func (c *Controller) pushLoop(ctx context.Context, s *session) {
	defer close(s.done)
	for {
		select {
		case <-s.pushCh:
			c.push(ctx, s)
		case <-s.stop:
			select {
			case <-s.pushCh:
				c.push(ctx, s)
			default:
			}
			return
		}
	}
}

func (c *Controller) push(ctx context.Context, s *session) {
	ctx, cancel := context.WithTimeout(ctx, c.pushTimeout)
	defer cancel()

	s.mu.Lock()
	seq := s.localSeq
	inv := c.state.Snapshot().Fishes
	s.mu.Unlock()

	err := c.remote.Push(ctx, s.path, inv)

	s.mu.Lock()
	if seq > s.ackedSeq {
		s.ackedSeq = seq
	}
	applied := false
	if s.localSeq == s.ackedSeq && s.deferred != nil {
		c.state.ReplaceFishes(s.deferred)
		s.deferred = nil
		applied = true
	}
	s.mu.Unlock()

	if err != nil {
		c.logger.Warn("push inventory failed", "store", s.storeID, "error", err)
		c.state.RecordError(err)
		c.changed()
		return
	}
	c.logger.Debug("inventory pushed", "store", s.storeID, "fishes", len(inv))
	if applied {
		c.changed()
	}
}

func (c *Controller) hydrateOrder(id string) fish.Order {
	order := fish.Order{}
	text, ok, err := c.persist.Get(id)
	if err != nil {
		c.logger.Warn("read saved order failed", "store", id, "error", err)
		return order
	}
	if !ok {
		return order
	}
	var saved map[string]int
	if err := json.Unmarshal([]byte(text), &saved); err != nil {
		c.logger.Warn("discarding unreadable saved order", "store", id, "error", err)
		return order
	}
	for key, qty := range saved {
		if qty > 0 {
			order[key] = qty
		}
	}
	return order
}

func (c *Controller) saveOrder(id string, order fish.Order) {
	data, err := json.Marshal(order)
	if err != nil {
		c.logger.Warn("encode order failed", "store", id, "error", err)
		return
	}
	if err := c.persist.Set(id, string(data)); err != nil {
		c.logger.Warn("save order failed", "store", id, "error", err)
	}
}
