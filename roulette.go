// Partybox Button Roulette, web frontend
//
// Serves the single game of this process over one websocket per browser tab.
// The game rules live in games/roulette; this file only moves messages
// between connections and the session.
//
// Features:
// - One game per process: / for the page, /ws for the websocket
// - Each websocket gets a random connection handle (uuid)
// - Rejected usernames are reported only to the offending client
// - Slow clients are dropped instead of stalling the game
// - In-browser QR button to share the game, backed by go-qrcode

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/Seednode/roulette/games/roulette"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 16
)

// Messages coming from clients
type ClientMessage struct {
	Type     string `json:"type"`               // "join", "take_turn"
	Username string `json:"username,omitempty"` // join / take_turn
	Points   *int   `json:"points,omitempty"`   // take_turn
}

// SimpleMessage is for generic notifications ("error", "not_your_turn")
type SimpleMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type Client struct {
	conn   *websocket.Conn
	send   chan any
	handle roulette.Handle
}

// Hub maps connection handles to live websockets. It is the session's
// Notifier.
type Hub struct {
	mu      sync.Mutex
	clients map[roulette.Handle]*Client
}

func newHub() *Hub {
	return &Hub{
		clients: make(map[roulette.Handle]*Client),
	}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c.handle] = c
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c.handle]; ok {
		delete(h.clients, c.handle)
		close(c.send)
	}
}

// Send queues msg for the connection behind handle. A client whose buffer
// is full is dropped.
func (h *Hub) Send(handle roulette.Handle, msg any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[handle]
	if !ok {
		return
	}

	select {
	case c.send <- msg:
	default:
		delete(h.clients, handle)
		close(c.send)
	}
}

// closeAll disconnects every client (used on shutdown).
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for handle, c := range h.clients {
		close(c.send)
		_ = c.conn.Close()
		delete(h.clients, handle)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func serveWS(cfg *Config, game *roulette.Session, hub *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "ERROR: Websocket upgrade from %s failed: %v", realIP(r), err)
			return
		}

		client := &Client{
			conn:   conn,
			send:   make(chan any, sendBuffer),
			handle: roulette.Handle(uuid.NewString()),
		}

		hub.add(client)

		logf(cfg, "SERVE: Connection %s opened from %s", client.handle, realIP(r))

		go client.writePump()
		client.readPump(cfg, game, hub)
	}
}

func (c *Client) readPump(cfg *Config, game *roulette.Session, hub *Hub) {
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := game.Disconnect(ctx, c.handle); err != nil {
			logf(cfg, "ERROR: Disconnect of %s: %v", c.handle, err)
		}
		hub.remove(c)
		_ = c.conn.Close()

		logf(cfg, "SERVE: Connection %s closed", c.handle)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logf(cfg, "ERROR: Read from %s: %v", c.handle, err)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			hub.Send(c.handle, SimpleMessage{Type: "error", Message: "Invalid message format."})
			continue
		}

		switch msg.Type {
		case "join":
			c.handleJoin(cfg, game, hub, msg)
		case "take_turn":
			c.handleTakeTurn(cfg, game, hub, msg)
		default:
			// ignore unknown types
		}
	}
}

func (c *Client) handleJoin(cfg *Config, game *roulette.Session, hub *Hub, msg ClientMessage) {
	name := strings.TrimSpace(msg.Username)
	if name == "" || utf8.RuneCountInString(name) > cfg.maxName {
		hub.Send(c.handle, roulette.JoinRejected{
			Type:    "join_rejected",
			Field:   "username",
			Message: fmt.Sprintf("Username must be between 1 and %d characters.", cfg.maxName),
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Rejections are reported to the client by the session itself.
	if _, err := game.Join(ctx, name, c.handle); err != nil {
		logf(cfg, "GAMES: Join of %q on %s refused: %v", name, c.handle, err)
	}
}

func (c *Client) handleTakeTurn(cfg *Config, game *roulette.Session, hub *Hub, msg ClientMessage) {
	if msg.Points == nil {
		hub.Send(c.handle, SimpleMessage{Type: "error", Message: "Missing number of points."})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	_, err := game.TakeTurn(ctx, c.handle, *msg.Points)
	switch {
	case err == nil:
	case errors.Is(err, roulette.ErrActionByInactivePlayer):
		hub.Send(c.handle, SimpleMessage{Type: "not_your_turn", Message: "It is not your turn."})
	case errors.Is(err, roulette.ErrUnknownIdentity):
		hub.Send(c.handle, SimpleMessage{Type: "error", Message: "Join the game before taking a turn."})
	default:
		logf(cfg, "ERROR: Turn from %s (%q): %v", c.handle, msg.Username, err)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// QR handler: generates a PNG QR code for the game URL using go-qrcode.
func qrHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	// We are at /.../qr; strip the trailing "qr" to get the game URL.
	path := strings.TrimSuffix(r.URL.Path, "qr")

	url := scheme + "://" + r.Host + path

	const qrSize = 320 // mobile-friendly size
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

// registerRouletteGame sets up routes so that:
//   - $prefix/                        → HTML client
//   - $prefix/assets/roulette/*       → css and js
//   - $prefix/ws                      → WebSocket for the game
//   - $prefix/qr                      → PNG QR code for the game URL
func registerRouletteGame(cfg *Config, game *roulette.Session, hub *Hub, errs chan<- error, mux *httprouter.Router) {
	mux.GET(cfg.prefix+"/", serveHomePage(cfg, errs))

	mux.GET(cfg.prefix+"/assets/*asset", serveAssets(cfg, errs))

	mux.GET(cfg.prefix+"/ws", serveWS(cfg, game, hub))

	mux.GET(cfg.prefix+"/qr", qrHandler)
}
