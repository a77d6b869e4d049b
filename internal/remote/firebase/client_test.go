package firebase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

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

func (r *recorder) data() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		if e.Err == nil {
			out = append(out, string(e.Data))
		}
	}
	return out
}

func (r *recorder) errs() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []error
	for _, e := range r.events {
		if e.Err != nil {
			out = append(out, e.Err)
		}
	}
	return out
}

// newServer starts a test server and a client pointed at it. Streaming handlers
// should block on hold(r) so the server can shut down cleanly.
func newServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request, hold func(*http.Request))) *Client {
	t.Helper()
	quit := make(chan struct{})
	hold := func(r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-quit:
		}
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler(w, r, hold)
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(quit) })

	client, err := NewClient(srv.URL, Options{RetryBase: 10 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func writeEvent(w http.ResponseWriter, name, data string) {
	_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{name: "scheme added", url: "catch.firebaseio.com", want: "https://catch.firebaseio.com"},
		{name: "trailing slash", url: "https://catch.firebaseio.com/", want: "https://catch.firebaseio.com"},
		{name: "empty", url: "  ", wantErr: true},
		{name: "no host", url: "https://", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(tt.url, Options{})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.baseURL.String())
		})
	}
}

func TestEndpoint_EscapesAndAddsAuth(t *testing.T) {
	c, err := NewClient("https://catch.firebaseio.com", Options{Auth: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "https://catch.firebaseio.com/shop%20one/fishes.json?auth=secret", c.endpoint("/shop one/fishes/").String())
	assert.Equal(t, "https://catch.firebaseio.com/.json?auth=secret", c.endpoint("").String())
}

func TestPushAndFetch(t *testing.T) {
	var (
		mu     sync.Mutex
		stored = map[string]string{}
	)
	client := newServer(t, func(w http.ResponseWriter, r *http.Request, _ func(*http.Request)) {
		mu.Lock()
		defer mu.Unlock()
		switch r.Method {
		case http.MethodPut:
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			body, _ := io.ReadAll(r.Body)
			stored[r.URL.Path] = string(body)
			_, _ = w.Write(body)
		case http.MethodGet:
			value, ok := stored[r.URL.Path]
			if !ok {
				value = "null"
			}
			_, _ = io.WriteString(w, value)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	ctx := context.Background()

	require.NoError(t, client.Push(ctx, "shop/fishes", map[string]any{
		"fish1": map[string]any{"name": "Lobster", "price": 3200},
		"fish2": nil,
	}))
	raw, err := client.Fetch(ctx, "shop/fishes")
	require.NoError(t, err)
	assert.JSONEq(t, `{"fish1":{"name":"Lobster","price":3200}}`, string(raw))

	require.NoError(t, client.Push(ctx, "shop/fishes", nil))
	raw, err = client.Fetch(ctx, "shop/fishes")
	require.NoError(t, err)
	assert.Equal(t, "null", string(raw))

	raw, err = client.Fetch(ctx, "elsewhere")
	require.NoError(t, err)
	assert.Equal(t, "null", string(raw))
}

func TestPush_PermissionDenied(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request, _ func(*http.Request)) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":"Permission denied"}`)
	})
	err := client.Push(context.Background(), "shop/fishes", map[string]any{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, remote.ErrPermission))
	assert.Contains(t, err.Error(), "Permission denied")
}

func TestFetch_ServerError(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request, _ func(*http.Request)) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err := client.Fetch(context.Background(), "shop")
	require.Error(t, err)
	assert.False(t, errors.Is(err, remote.ErrPermission))
	assert.Contains(t, err.Error(), "status 500")
}

func TestSubscribe_AppliesPutAndPatch(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request, hold func(*http.Request)) {
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		assert.Equal(t, "/shop/fishes.json", r.URL.Path)
		w.Header().Set("Content-Type", "text/event-stream")
		writeEvent(w, "put", `{"path":"/","data":{"fish1":{"name":"Lobster","price":3200}}}`)
		writeEvent(w, "patch", `{"path":"/fish1","data":{"price":3300}}`)
		writeEvent(w, "keep-alive", "null")
		writeEvent(w, "put", `{"path":"/fish2","data":{"name":"Oysters"}}`)
		writeEvent(w, "put", `{"path":"/fish1","data":null}`)
		hold(r)
	})

	rec := &recorder{}
	_, err := client.Subscribe("shop/fishes", rec.record)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(rec.data()) == 4 }, 2*time.Second, 10*time.Millisecond)
	got := rec.data()
	assert.JSONEq(t, `{"fish1":{"name":"Lobster","price":3200}}`, got[0])
	assert.JSONEq(t, `{"fish1":{"name":"Lobster","price":3300}}`, got[1])
	assert.JSONEq(t, `{"fish1":{"name":"Lobster","price":3300},"fish2":{"name":"Oysters"}}`, got[2])
	assert.JSONEq(t, `{"fish2":{"name":"Oysters"}}`, got[3])
	assert.Empty(t, rec.errs())
}

func TestSubscribe_CancelReportsPermission(t *testing.T) {
	var connects atomic.Int32
	client := newServer(t, func(w http.ResponseWriter, r *http.Request, hold func(*http.Request)) {
		connects.Add(1)
		writeEvent(w, "cancel", "null")
		hold(r)
	})

	rec := &recorder{}
	_, err := client.Subscribe("shop/fishes", rec.record)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(rec.errs()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.True(t, errors.Is(rec.errs()[0], remote.ErrPermission))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), connects.Load())
}

func TestSubscribe_ReconnectsAfterDrop(t *testing.T) {
	var connects atomic.Int32
	client := newServer(t, func(w http.ResponseWriter, r *http.Request, hold func(*http.Request)) {
		switch connects.Add(1) {
		case 1:
			writeEvent(w, "put", `{"path":"/","data":{"fish1":{"name":"Lobster"}}}`)
		default:
			writeEvent(w, "put", `{"path":"/","data":{"fish1":{"name":"Lobster"}}}`)
			writeEvent(w, "put", `{"path":"/fish2","data":{"name":"Oysters"}}`)
			hold(r)
		}
	})

	rec := &recorder{}
	_, err := client.Subscribe("shop/fishes", rec.record)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(rec.data()) == 3 }, 2*time.Second, 10*time.Millisecond)
	got := rec.data()
	assert.JSONEq(t, `{"fish1":{"name":"Lobster"}}`, got[0])
	// The replayed value follows the drop error even though it did not change.
	assert.JSONEq(t, `{"fish1":{"name":"Lobster"}}`, got[1])
	assert.JSONEq(t, `{"fish1":{"name":"Lobster"},"fish2":{"name":"Oysters"}}`, got[2])
	assert.Len(t, rec.errs(), 1)
	assert.Equal(t, int32(2), connects.Load())
}

func TestSubscribe_SuppressesDuplicateWithoutDrop(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request, hold func(*http.Request)) {
		writeEvent(w, "put", `{"path":"/","data":{"fish1":{"name":"Lobster"}}}`)
		writeEvent(w, "put", `{"path":"/","data":{"fish1":{"name":"Lobster"}}}`)
		writeEvent(w, "put", `{"path":"/fish2","data":{"name":"Oysters"}}`)
		hold(r)
	})

	rec := &recorder{}
	_, err := client.Subscribe("shop/fishes", rec.record)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(rec.data()) == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.JSONEq(t, `{"fish1":{"name":"Lobster"}}`, rec.data()[0])
	assert.Empty(t, rec.errs())
}

func TestSubscribe_EmptyConnectionsBackOff(t *testing.T) {
	var connects atomic.Int32
	client := newServer(t, func(w http.ResponseWriter, r *http.Request, hold func(*http.Request)) {
		connects.Add(1)
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
	})

	rec := &recorder{}
	_, err := client.Subscribe("shop/fishes", rec.record)
	require.NoError(t, err)

	// With a 10ms base the delays grow 20, 40, 80, 160 and 320ms, so only a
	// handful of connects fit in 400ms.
	time.Sleep(400 * time.Millisecond)
	assert.GreaterOrEqual(t, connects.Load(), int32(3))
	assert.LessOrEqual(t, connects.Load(), int32(8))
	assert.Empty(t, rec.data())
}

func TestUnsubscribe_ClosesStream(t *testing.T) {
	closed := make(chan struct{})
	client := newServer(t, func(w http.ResponseWriter, r *http.Request, hold func(*http.Request)) {
		writeEvent(w, "put", `{"path":"/","data":1}`)
		<-r.Context().Done()
		close(closed)
	})

	rec := &recorder{}
	sub, err := client.Subscribe("counter", rec.record)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return len(rec.data()) == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, client.Unsubscribe(sub))
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("server stream still open after Unsubscribe")
	}
	require.NoError(t, client.Unsubscribe(sub))
}

func TestClose_RejectsCalls(t *testing.T) {
	client, err := NewClient("https://catch.firebaseio.com", Options{})
	require.NoError(t, err)
	require.NoError(t, client.Close())
	require.NoError(t, client.Close())

	assert.ErrorIs(t, client.Push(context.Background(), "a", 1), remote.ErrClosed)
	_, err = client.Fetch(context.Background(), "a")
	assert.ErrorIs(t, err, remote.ErrClosed)
	_, err = client.Subscribe("a", func(remote.Event) {})
	assert.ErrorIs(t, err, remote.ErrClosed)
}

func TestReadEvents(t *testing.T) {
	body := ": comment\n" +
		"event: put\ndata: {\"a\":\ndata: 1}\n\n" +
		"data: bare\n\n" +
		"\n"
	var names, payloads []string
	err := readEvents(strings.NewReader(body), func(name string, data []byte) error {
		names = append(names, name)
		payloads = append(payloads, string(data))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"put", "message"}, names)
	assert.Equal(t, []string{"{\"a\":\n1}", "bare"}, payloads)
}
