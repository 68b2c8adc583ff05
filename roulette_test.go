/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Seednode/roulette/games/roulette"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		bind:    "127.0.0.1",
		port:    8080,
		maxName: 24,
		seed:    11,
		game:    roulette.DefaultConfig(),
	}
}

func startServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := testConfig()
	hub := newHub()
	game := newGame(cfg, hub)

	ctx, cancel := context.WithCancel(context.Background())
	go game.Run(ctx)

	errs := make(chan error, 64)
	srv := httptest.NewServer(newRouter(cfg, game, hub, errs))

	t.Cleanup(func() {
		hub.closeAll()
		srv.Close()
		cancel()
	})

	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func readMsg(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var msg map[string]any
	require.NoError(t, conn.ReadJSON(&msg))

	return msg
}

func requireTurn(t *testing.T, conn *websocket.Conn, text string, enabled bool) {
	t.Helper()

	msg := readMsg(t, conn)
	require.Equal(t, "turn_update", msg["type"])
	assert.Equal(t, text, msg["message"])
	assert.Equal(t, enabled, msg["enabled"])
}

func requireScore(t *testing.T, conn *websocket.Conn, score int) {
	t.Helper()

	msg := readMsg(t, conn)
	require.Equal(t, "score_update", msg["type"])
	assert.InDelta(t, float64(score), msg["score"], 0)
}

func TestSoloPlayerOverWebsocket(t *testing.T) {
	srv := startServer(t)
	alice := dial(t, srv)

	require.NoError(t, alice.WriteJSON(ClientMessage{Type: "join", Username: "alice"}))
	requireTurn(t, alice, "YOUR TURN!", true)
	requireScore(t, alice, 0)

	zero := 0
	require.NoError(t, alice.WriteJSON(ClientMessage{Type: "take_turn", Username: "alice", Points: &zero}))
	requireTurn(t, alice, "YOU'RE SAFE", false)
	requireScore(t, alice, 0)
	requireTurn(t, alice, "YOUR TURN!", true)
}

func TestDuplicateUsernameIsRejected(t *testing.T) {
	srv := startServer(t)
	alice := dial(t, srv)
	impostor := dial(t, srv)

	require.NoError(t, alice.WriteJSON(ClientMessage{Type: "join", Username: "alice"}))
	requireTurn(t, alice, "YOUR TURN!", true)
	requireScore(t, alice, 0)

	require.NoError(t, impostor.WriteJSON(ClientMessage{Type: "join", Username: "alice"}))
	msg := readMsg(t, impostor)
	assert.Equal(t, "join_rejected", msg["type"])
	assert.Equal(t, "username", msg["field"])

	// The rejected connection can try again with another name.
	require.NoError(t, impostor.WriteJSON(ClientMessage{Type: "join", Username: "bob"}))
	requireScore(t, impostor, 0)
}

func TestInvalidUsernameIsRejected(t *testing.T) {
	srv := startServer(t)
	conn := dial(t, srv)

	for _, name := range []string{"   ", strings.Repeat("x", 25)} {
		require.NoError(t, conn.WriteJSON(ClientMessage{Type: "join", Username: name}))
		msg := readMsg(t, conn)
		assert.Equal(t, "join_rejected", msg["type"])
		assert.Equal(t, "Username must be between 1 and 24 characters.", msg["message"])
	}
}

func TestTurnOutOfOrder(t *testing.T) {
	srv := startServer(t)
	alice := dial(t, srv)
	bob := dial(t, srv)

	require.NoError(t, alice.WriteJSON(ClientMessage{Type: "join", Username: "alice"}))
	requireTurn(t, alice, "YOUR TURN!", true)
	requireScore(t, alice, 0)

	require.NoError(t, bob.WriteJSON(ClientMessage{Type: "join", Username: "bob"}))
	requireScore(t, bob, 0)

	two := 2
	require.NoError(t, bob.WriteJSON(ClientMessage{Type: "take_turn", Username: "bob", Points: &two}))
	msg := readMsg(t, bob)
	assert.Equal(t, "not_your_turn", msg["type"])

	// With two players the turn always moves to the other one.
	zero := 0
	require.NoError(t, alice.WriteJSON(ClientMessage{Type: "take_turn", Username: "alice", Points: &zero}))
	requireTurn(t, alice, "YOU'RE SAFE", false)
	requireScore(t, alice, 0)
	requireTurn(t, bob, "YOUR TURN!", true)
}

func TestActiveDisconnectPassesTurn(t *testing.T) {
	srv := startServer(t)
	alice := dial(t, srv)
	bob := dial(t, srv)

	require.NoError(t, alice.WriteJSON(ClientMessage{Type: "join", Username: "alice"}))
	requireTurn(t, alice, "YOUR TURN!", true)
	requireScore(t, alice, 0)

	require.NoError(t, bob.WriteJSON(ClientMessage{Type: "join", Username: "bob"}))
	requireScore(t, bob, 0)

	require.NoError(t, alice.Close())
	requireTurn(t, bob, "YOUR TURN!", true)
}

func TestMalformedMessages(t *testing.T) {
	srv := startServer(t)
	conn := dial(t, srv)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	msg := readMsg(t, conn)
	assert.Equal(t, "error", msg["type"])
	assert.Equal(t, "Invalid message format.", msg["message"])

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: "take_turn"}))
	msg = readMsg(t, conn)
	assert.Equal(t, "Missing number of points.", msg["message"])

	one := 1
	require.NoError(t, conn.WriteJSON(ClientMessage{Type: "take_turn", Points: &one}))
	msg = readMsg(t, conn)
	assert.Equal(t, "Join the game before taking a turn.", msg["message"])
}

func TestHTTPRoutes(t *testing.T) {
	srv := startServer(t)

	tests := []struct {
		path        string
		status      int
		contentType string
		body        string
	}{
		{"/", http.StatusOK, "text/html; charset=utf-8", "Button Roulette"},
		{"/assets/roulette/app.css", http.StatusOK, "text/css; charset=utf-8", "#controls"},
		{"/assets/roulette/app.js", http.StatusOK, "text/javascript; charset=utf-8", "take_turn"},
		{"/assets/roulette/missing.js", http.StatusNotFound, "", ""},
		{"/healthz", http.StatusOK, "text/plain; charset=utf-8", "Ok\n"},
		{"/version", http.StatusOK, "text/plain; charset=utf-8", "roulette v" + releaseVersion},
		{"/robots.txt", http.StatusOK, "text/plain; charset=utf-8", "Disallow: /ws"},
		{"/favicon.svg", http.StatusOK, "image/svg+xml", "<svg"},
		{"/qr", http.StatusOK, "image/png", "\x89PNG"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.contentType != "" {
				assert.Equal(t, tt.contentType, resp.Header.Get("Content-Type"))
			}
			assert.Contains(t, string(body), tt.body)
		})
	}
}
