package memory

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/catch/internal/remote"
)

type recorder struct {
	mu     sync.Mutex
	events []remote.Event
}

func (r *recorder) record(e remote.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) all() []remote.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]remote.Event(nil), r.events...)
}

func TestSubscribe_DeliversCurrentValue(t *testing.T) {
	s, err := NewWithData(json.RawMessage(`{"shop":{"fishes":{"fish1":{"name":"Lobster"}}}}`))
	require.NoError(t, err)

	var rec recorder
	sub, err := s.Subscribe("shop/fishes", rec.record)
	require.NoError(t, err)
	assert.True(t, sub.Valid())

	events := rec.all()
	require.Len(t, events, 1)
	assert.JSONEq(t, `{"fish1":{"name":"Lobster"}}`, string(events[0].Data))
}

func TestSubscribe_EmptyPathIsNull(t *testing.T) {
	s := New()
	var rec recorder
	_, err := s.Subscribe("nobody/fishes", rec.record)
	require.NoError(t, err)
	require.Len(t, rec.all(), 1)
	assert.Equal(t, "null", string(rec.all()[0].Data))
}

func TestPush_NullDeletesAndNotifies(t *testing.T) {
	ctx := context.Background()
	s := New()
	var rec recorder
	_, err := s.Subscribe("shop/fishes", rec.record)
	require.NoError(t, err)

	require.NoError(t, s.Push(ctx, "shop/fishes", map[string]any{
		"a": map[string]any{"name": "Oysters"},
		"b": map[string]any{"name": "Mussels"},
	}))
	require.NoError(t, s.Push(ctx, "shop/fishes", map[string]any{
		"a": map[string]any{"name": "Oysters"},
		"b": nil,
	}))

	events := rec.all()
	require.Len(t, events, 3)
	assert.JSONEq(t, `{"a":{"name":"Oysters"}}`, string(events[2].Data))

	raw, err := s.Fetch(ctx, "shop/fishes/b")
	require.NoError(t, err)
	assert.Equal(t, "null", string(raw))
	assert.Equal(t, 2, s.Pushes())
}

func TestPush_OtherPathsDoNotNotify(t *testing.T) {
	ctx := context.Background()
	s := New()
	var rec recorder
	_, err := s.Subscribe("a/fishes", rec.record)
	require.NoError(t, err)

	require.NoError(t, s.Push(ctx, "b/fishes", map[string]any{"x": 1}))
	assert.Len(t, rec.all(), 1)
}

func TestUnsubscribe_StopsDelivery(t *testing.T) {
	ctx := context.Background()
	s := New()
	var rec recorder
	sub, err := s.Subscribe("shop/fishes", rec.record)
	require.NoError(t, err)
	require.Equal(t, 1, s.Subscribers())

	require.NoError(t, s.Unsubscribe(sub))
	require.NoError(t, s.Unsubscribe(sub))
	require.NoError(t, s.Unsubscribe(remote.Subscription{}))
	assert.Equal(t, 0, s.Subscribers())

	require.NoError(t, s.Push(ctx, "shop/fishes", map[string]any{"x": 1}))
	assert.Len(t, rec.all(), 1)
}

func TestPushError_AndFail(t *testing.T) {
	ctx := context.Background()
	s := New()
	boom := errors.New("boom")
	s.SetPushError(boom)
	assert.ErrorIs(t, s.Push(ctx, "a", 1), boom)
	s.SetPushError(nil)
	require.NoError(t, s.Push(ctx, "a", 1))

	var rec recorder
	_, err := s.Subscribe("a", rec.record)
	require.NoError(t, err)
	s.Fail(boom)
	events := rec.all()
	require.Len(t, events, 2)
	assert.ErrorIs(t, events[1].Err, boom)

	// An unchanged value after a failure is delivered again.
	require.NoError(t, s.Push(ctx, "a", 1))
	events = rec.all()
	require.Len(t, events, 3)
	assert.NoError(t, events[2].Err)
	assert.Equal(t, "1", string(events[2].Data))
}

func TestClose(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Close())

	_, err := s.Subscribe("a", func(remote.Event) {})
	assert.ErrorIs(t, err, remote.ErrClosed)
	assert.ErrorIs(t, s.Push(ctx, "a", 1), remote.ErrClosed)
	_, err = s.Fetch(ctx, "a")
	assert.ErrorIs(t, err, remote.ErrClosed)
}
