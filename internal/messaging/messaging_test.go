package messaging

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
		return ""
	}
}

func TestMemoryBroker(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	b := NewMemoryBroker()

	a, err := b.Subscribe(ctx)
	require.NoError(t, err)
	c, err := b.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, b.Publish(context.Background(), "hello"))
	assert.Equal(t, "hello", receive(t, a))
	assert.Equal(t, "hello", receive(t, c))

	cancel()
	select {
	case _, open := <-a:
		assert.False(t, open)
	case <-time.After(2 * time.Second):
		t.Fatal("subscription not closed")
	}
}

func TestHubBroadcastsBrokerMessages(t *testing.T) {
	hub := NewHub()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(hub.Register(r.URL.Query().Get("login"), conn))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	broker := NewMemoryBroker()
	go hub.Run(ctx, broker)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?login=alice"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		return hub.Count("alice") == 1 && broker.Subscribers() == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, broker.Publish(ctx, "weigh-in reminder"))
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "weigh-in reminder", string(data))

	assert.Equal(t, 1, hub.UnregisterLogin("alice"))
	assert.Equal(t, 0, hub.Count("alice"))
}

func TestRedisBroker(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb, err := NewRedisClient(ctx, addr, os.Getenv("REDIS_PASSWORD"))
	require.NoError(t, err)
	defer rdb.Close()

	b := NewRedisBroker(rdb, "test-"+t.Name())
	ch, err := b.Subscribe(ctx)
	require.NoError(t, err)
	require.NoError(t, b.Publish(ctx, "ping"))
	assert.Equal(t, "ping", receive(t, ch))
}
