package firebase

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/five82/catch/internal/remote"
)

var (
	errCancelled   = errors.New("stream cancelled by server")
	errAuthRevoked = errors.New("stream auth revoked")
)

// Subscribe opens a streaming GET on path. The first event carries the current
// value once the server sends it; later events follow every change. Dropped
// connections reconnect with backoff. Unsubscribe must not be called from
// inside onChange.
func (c *Client) Subscribe(path string, onChange remote.ChangeFunc) (remote.Subscription, error) {
	if c == nil {
		return remote.Subscription{}, fmt.Errorf("client is nil")
	}
	if onChange == nil {
		return remote.Subscription{}, fmt.Errorf("onChange is nil")
	}
	sub := remote.NewSubscription(path)
	ctx, cancel := context.WithCancel(context.Background())
	s := &stream{
		client:   c,
		sub:      sub,
		onChange: onChange,
		cancel:   cancel,
		done:     make(chan struct{}),
		logger:   c.logger.With("path", sub.Path(), "subscription", sub.ID()),
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		cancel()
		return remote.Subscription{}, remote.ErrClosed
	}
	c.streams[sub.ID()] = s
	c.mu.Unlock()

	go s.run(ctx)
	return sub, nil
}

// Unsubscribe stops the stream and waits for its goroutine to exit.
func (c *Client) Unsubscribe(sub remote.Subscription) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	s, ok := c.streams[sub.ID()]
	delete(c.streams, sub.ID())
	c.mu.Unlock()
	if ok {
		s.stop()
	}
	return nil
}

type stream struct {
	client   *Client
	sub      remote.Subscription
	onChange remote.ChangeFunc
	cancel   context.CancelFunc
	done     chan struct{}
	logger   *slog.Logger

	stopOnce sync.Once
	last     string
}

func (s *stream) stop() {
	s.stopOnce.Do(s.cancel)
	<-s.done
}

func (s *stream) run(ctx context.Context) {
	defer close(s.done)

	failures := 0
	for {
		received, err := s.consume(ctx)
		if ctx.Err() != nil {
			return
		}
		if received {
			failures = 0
		}
		switch {
		case errors.Is(err, errCancelled), errors.Is(err, remote.ErrPermission):
			s.logger.Warn("stream closed by server", "error", err)
			s.deliver(remote.Event{Path: s.sub.Path(), Err: fmt.Errorf("%w: %v", remote.ErrPermission, err)})
			return
		case errors.Is(err, errAuthRevoked):
			s.logger.Info("stream auth revoked, reconnecting")
		case err != nil:
			failures++
			s.logger.Warn("stream dropped", "error", err, "failures", failures)
			s.deliver(remote.Event{Path: s.sub.Path(), Err: err})
		}

		delay := remote.Backoff(failures, s.client.retryBase)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// consume reads one connection until it ends. received reports whether the
// connection carried at least one event.
func (s *stream) consume(ctx context.Context) (received bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.client.endpoint(s.sub.Path()).String(), nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("User-Agent", s.client.userAgent)

	resp, err := s.client.stream.Do(req)
	if err != nil {
		return false, fmt.Errorf("open stream: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := statusError(http.MethodGet, s.sub.Path(), resp); err != nil {
		return false, err
	}

	tree := &remote.Tree{}
	err = readEvents(resp.Body, func(name string, data []byte) error {
		received = true
		return s.handle(tree, name, data)
	})
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	return received, err
}

func (s *stream) handle(tree *remote.Tree, name string, data []byte) error {
	switch name {
	case "put", "patch":
		var payload struct {
			Path string          `json:"path"`
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("decode %s event: %w", name, err)
		}
		node, err := remote.Decode(payload.Data)
		if err != nil {
			return fmt.Errorf("decode %s data: %w", name, err)
		}
		if name == "put" {
			tree.Set(payload.Path, node)
		} else {
			children, _ := node.(map[string]any)
			tree.Update(payload.Path, children)
		}
		s.deliver(remote.Event{Path: s.sub.Path(), Data: tree.GetJSON("")})
		return nil
	case "keep-alive":
		return nil
	case "cancel":
		return fmt.Errorf("%w: %s", errCancelled, strings.TrimSpace(string(data)))
	case "auth_revoked":
		return errAuthRevoked
	default:
		s.logger.Debug("ignoring stream event", "event", name)
		return nil
	}
}

// deliver forwards data events only when the subtree changed. Reconnects
// replay the full value, which would otherwise duplicate the last event. An
// error forgets the last value so the first good one after it always passes.
func (s *stream) deliver(e remote.Event) {
	if e.Err != nil {
		s.last = ""
	} else {
		text := string(e.Data)
		if text == s.last {
			return
		}
		s.last = text
	}
	s.onChange(e)
}

// readEvents parses a text/event-stream body, calling fn once per dispatched
// event. A non-nil error from fn stops reading.
func readEvents(r io.Reader, fn func(name string, data []byte) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var (
		name string
		data bytes.Buffer
	)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			if name != "" || data.Len() > 0 {
				if name == "" {
					name = "message"
				}
				if err := fn(name, data.Bytes()); err != nil {
					return err
				}
			}
			name = ""
			data.Reset()
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			name = value
		case "data":
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(value)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stream: %w", err)
	}
	return nil
}
