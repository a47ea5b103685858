package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/nerdle/internal/game"
)

type recorder struct {
	mu  sync.Mutex
	got []string
}

func (r *recorder) input(gameID, token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, gameID+":"+token)
}

func (r *recorder) tokens() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.got...)
}

func startHub(t *testing.T, onInput InputFunc) (*Hub, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub(onInput, nil)
	go h.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeWS(w, r, r.URL.Query().Get("game"))
	}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return h, srv
}

func dial(t *testing.T, srv *httptest.Server, gameID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?game=" + gameID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestBroadcastReachesOnlyThatGame(t *testing.T) {
	h, srv := startHub(t, nil)
	a := dial(t, srv, "g1")
	b := dial(t, srv, "g2")

	require.Eventually(t, func() bool { return h.Clients("g1") == 1 && h.Clients("g2") == 1 },
		2*time.Second, 10*time.Millisecond)

	ev := game.Event{Token: "1", Accepted: true, Cursor: game.Cursor{Row: 0, Col: 1}, Status: game.StatusInProgress}
	h.Broadcast(&Message{GameID: "g1", Event: &ev})

	a.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := a.ReadMessage()
	require.NoError(t, err)

	var m Message
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "g1", m.GameID)
	require.NotNil(t, m.Event)
	assert.Equal(t, "1", m.Event.Token)
	assert.Equal(t, 1, m.Event.Cursor.Col)

	b.SetReadDeadline(time.Now().Add(150 * time.Millisecond))
	_, _, err = b.ReadMessage()
	assert.Error(t, err, "g2 client must not receive g1 messages")
}

func TestInboundTokensAreForwarded(t *testing.T) {
	rec := &recorder{}
	h, srv := startHub(t, rec.input)
	c := dial(t, srv, "g1")
	require.Eventually(t, func() bool { return h.Clients("g1") == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, c.WriteJSON(Inbound{Token: "7"}))
	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, c.WriteJSON(Inbound{Token: game.TokenEnter}))

	require.Eventually(t, func() bool { return len(rec.tokens()) == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"g1:7", "g1:Enter"}, rec.tokens())
}

func TestClientUnregistersOnClose(t *testing.T) {
	h, srv := startHub(t, nil)
	c := dial(t, srv, "g1")
	require.Eventually(t, func() bool { return h.Clients("g1") == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, c.Close())
	require.Eventually(t, func() bool { return h.Clients("g1") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestBroadcastWithoutClientsIsDropped(t *testing.T) {
	h, _ := startHub(t, nil)
	h.Broadcast(&Message{GameID: "nobody"})
	assert.Equal(t, 0, h.Clients("nobody"))
}

func TestStoppedHubDoesNotBlock(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub(nil, nil)
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped
	assert.Equal(t, 0, h.Clients("g1"))
}
