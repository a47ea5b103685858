// Package ws streams engine events to websocket clients grouped by game ID,
// and forwards key tokens sent by those clients back to the game.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/nerdle/internal/game"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	sendBuffer = 256
)

// Message is sent to every client watching a game.
type Message struct {
	GameID string      `json:"gameId"`
	Event  *game.Event `json:"event,omitempty"`
	Board  *game.Board `json:"board,omitempty"`
}

// Inbound is what clients may send: one key token per message.
type Inbound struct {
	Token string `json:"token"`
}

// InputFunc receives tokens sent by clients of gameID.
type InputFunc func(gameID, token string)

type client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	gameID string
}

type countReq struct {
	gameID string
	reply  chan int
}

// Hub maintains the set of active clients and broadcasts messages.
type Hub struct {
	upgrader websocket.Upgrader
	onInput  InputFunc

	games      map[string]map[*client]bool
	broadcast  chan *Message
	register   chan *client
	unregister chan *client
	count      chan countReq
	done       chan struct{} // closed when Run returns
}

// NewHub creates a hub. checkOrigin may be nil to allow every origin.
func NewHub(onInput InputFunc, checkOrigin func(r *http.Request) bool) *Hub {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		onInput:    onInput,
		games:      make(map[string]map[*client]bool),
		broadcast:  make(chan *Message, sendBuffer),
		register:   make(chan *client),
		unregister: make(chan *client),
		count:      make(chan countReq),
		done:       make(chan struct{}),
	}
}

// Run owns the client registry until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, clients := range h.games {
				for c := range clients {
					close(c.send)
				}
			}
			h.games = map[string]map[*client]bool{}
			return

		case c := <-h.register:
			if h.games[c.gameID] == nil {
				h.games[c.gameID] = make(map[*client]bool)
			}
			h.games[c.gameID][c] = true
			log.Debug().Str("gameId", c.gameID).Int("clients", len(h.games[c.gameID])).Msg("ws client registered")

		case c := <-h.unregister:
			h.remove(c)

		case m := <-h.broadcast:
			h.deliver(m)

		case q := <-h.count:
			q.reply <- len(h.games[q.gameID])
		}
	}
}

// Broadcast queues m for every client of m.GameID.
func (h *Hub) Broadcast(m *Message) {
	select {
	case h.broadcast <- m:
	default:
		log.Warn().Str("gameId", m.GameID).Msg("ws broadcast queue full, dropping message")
	}
}

// Clients reports how many clients watch gameID. It is 0 once Run has stopped.
func (h *Hub) Clients(gameID string) int {
	q := countReq{gameID: gameID, reply: make(chan int, 1)}
	select {
	case h.count <- q:
		return <-q.reply
	case <-h.done:
		return 0
	}
}

// ServeWS upgrades the request and attaches the connection to gameID.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, gameID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("gameId", gameID).Msg("websocket upgrade failed")
		return
	}
	c := &client{hub: h, conn: conn, send: make(chan []byte, sendBuffer), gameID: gameID}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

func (h *Hub) remove(c *client) {
	clients, ok := h.games[c.gameID]
	if !ok {
		return
	}
	if _, ok := clients[c]; !ok {
		return
	}
	delete(clients, c)
	close(c.send)
	if len(clients) == 0 {
		delete(h.games, c.gameID)
	}
	log.Debug().Str("gameId", c.gameID).Int("clients", len(clients)).Msg("ws client unregistered")
}

func (h *Hub) deliver(m *Message) {
	clients, ok := h.games[m.GameID]
	if !ok {
		return
	}
	data, err := json.Marshal(m)
	if err != nil {
		log.Error().Err(err).Msg("marshal ws message")
		return
	}
	for c := range clients {
		select {
		case c.send <- data:
		default:
			// slow consumer
			h.remove(c)
		}
	}
}

// readPump forwards client tokens until the connection fails.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("gameId", c.gameID).Msg("websocket read")
			}
			return
		}
		var in Inbound
		if err := json.Unmarshal(data, &in); err != nil || in.Token == "" {
			continue
		}
		if c.hub.onInput != nil {
			c.hub.onInput(c.gameID, in.Token)
		}
	}
}

// writePump pumps messages from the hub to the connection.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
