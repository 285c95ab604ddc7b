package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pitwall/pitwall/internal/alerts"
	"github.com/pitwall/pitwall/internal/store"
)

const (
	writeTimeout = 10 * time.Second

	// pongWait is how long a silent client lives before the read side gives
	// up on it. Pings go out at a fraction of that.
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	sendBufSize = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Origin policy is left to the reverse proxy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message is the JSON envelope sent to clients.
type Message struct {
	Event string      `json:"event"` // "status" | "alert"
	Data  interface{} `json:"data"`
}

// sessionStatus mirrors the REST session entry without importing the api
// package, keeping ws dependent on the store only.
type sessionStatus struct {
	SessionID string      `json:"session_id"`
	Status    interface{} `json:"status"`
	LastSeen  string      `json:"last_seen"`
}

// alertEvent is the payload of an "alert" frame.
type alertEvent struct {
	SessionID string `json:"session_id"`
	alerts.Transition
}

// client is one connection's outbound queue. The hub goroutine owns the
// client set; each client owns its socket.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans session statuses out to WebSocket clients on a fixed interval and
// pushes alert transitions the moment they commit. All client bookkeeping
// happens on the Run goroutine; the public methods communicate with it over
// channels, so they are safe from any goroutine.
type Hub struct {
	store    *store.Store
	interval time.Duration

	register   chan *client
	unregister chan *client
	outbound   chan []byte

	connected atomic.Int64
}

// New creates a Hub reading from st, broadcasting every interval. Run must
// be started for clients to receive anything.
func New(st *store.Store, interval time.Duration) *Hub {
	return &Hub{
		store:      st,
		interval:   interval,
		register:   make(chan *client),
		unregister: make(chan *client, sendBufSize),
		outbound:   make(chan []byte, sendBufSize),
	}
}

// Run owns the client set: it admits and drops clients, relays pushed
// frames and broadcasts the status snapshot on every tick. Blocks until ctx
// is cancelled, then closes every connection.
func (h *Hub) Run(ctx context.Context) {
	clients := make(map[*client]struct{})
	t := time.NewTicker(h.interval)
	defer t.Stop()

	drop := func(c *client) {
		if _, ok := clients[c]; ok {
			delete(clients, c)
			close(c.send)
			h.connected.Add(-1)
		}
	}
	fanout := func(data []byte) {
		for c := range clients {
			select {
			case c.send <- data:
			default:
				// Slow consumer: drop it rather than stall the hub.
				drop(c)
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			for c := range clients {
				drop(c)
			}
			return

		case c := <-h.register:
			clients[c] = struct{}{}
			h.connected.Add(1)
			// Seed the new client so it does not wait a full tick.
			if data, err := h.statusFrame(); err == nil {
				select {
				case c.send <- data:
				default:
				}
			}

		case c := <-h.unregister:
			drop(c)

		case data := <-h.outbound:
			fanout(data)

		case <-t.C:
			if data, err := h.statusFrame(); err == nil {
				fanout(data)
			}
		}
	}
}

// PublishTransitions pushes committed alert transitions to all clients
// immediately, outside the broadcast cadence.
func (h *Hub) PublishTransitions(sessionID string, trs []alerts.Transition) {
	for _, tr := range trs {
		data, err := json.Marshal(Message{
			Event: "alert",
			Data:  alertEvent{SessionID: sessionID, Transition: tr},
		})
		if err != nil {
			continue
		}
		select {
		case h.outbound <- data:
		default:
			// Hub not running or saturated; alerts also reach clients via
			// the status frames, so dropping here loses nothing durable.
		}
	}
}

// ServeHTTP upgrades the request and serves the connection until it closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBufSize)}
	h.register <- c

	go c.writeLoop()
	c.readLoop() // blocks until the peer disconnects

	select {
	case h.unregister <- c:
	default:
	}
}

// Count returns the number of currently connected clients.
func (h *Hub) Count() int { return int(h.connected.Load()) }

func (h *Hub) statusFrame() ([]byte, error) {
	entries := h.store.List()
	sessions := make([]sessionStatus, 0, len(entries))
	for _, e := range entries {
		sessions = append(sessions, sessionStatus{
			SessionID: e.SessionID,
			Status:    e.Status,
			LastSeen:  e.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	return json.Marshal(Message{Event: "status", Data: sessions})
}

// writeLoop forwards queued frames to the socket and keeps the connection
// alive with pings. Exits when the send channel closes or a write fails.
func (c *client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop consumes inbound frames for control handling (pong, close) only;
// clients have nothing to say to the hub.
func (c *client) readLoop() {
	defer c.conn.Close()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
