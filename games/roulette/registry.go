/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package roulette

import (
	"fmt"
	"slices"
)

// Handle is the transport's address for one live connection.
type Handle string

// Client is a player known to the session. Clients are never removed, so
// scores survive a disconnect and a later rejoin under the same name.
type Client struct {
	Identity string
	Handle   Handle // empty while disconnected
	Score    int
}

func (c *Client) connected() bool {
	return c.Handle != ""
}

// JoinOutcome describes an accepted join.
type JoinOutcome struct {
	New bool // false when a disconnected player reclaimed their name
}

// ClientRegistry tracks every player that has joined and which of them
// currently hold a live connection. It is not safe for concurrent use; the
// owning Session serializes access.
type ClientRegistry struct {
	clients map[string]*Client
	handles map[Handle]string
}

func NewClientRegistry() *ClientRegistry {
	return &ClientRegistry{
		clients: make(map[string]*Client),
		handles: make(map[Handle]string),
	}
}

func (r *ClientRegistry) Join(identity string, handle Handle) (JoinOutcome, error) {
	if identity == "" {
		return JoinOutcome{}, ErrEmptyIdentity
	}
	if handle == "" {
		return JoinOutcome{}, ErrNoHandle
	}

	if owner, ok := r.handles[handle]; ok {
		return JoinOutcome{}, fmt.Errorf("%w as %q", ErrHandleInUse, owner)
	}

	c, ok := r.clients[identity]
	switch {
	case !ok:
		r.clients[identity] = &Client{Identity: identity, Handle: handle}
		r.handles[handle] = identity

		return JoinOutcome{New: true}, nil
	case !c.connected():
		c.Handle = handle
		r.handles[handle] = identity

		return JoinOutcome{New: false}, nil
	default:
		return JoinOutcome{}, fmt.Errorf("%w: %q", ErrDuplicateIdentity, identity)
	}
}

// Disconnect marks the client owning handle as disconnected and reports
// which identity that was.
func (r *ClientRegistry) Disconnect(handle Handle) (string, bool) {
	identity, ok := r.handles[handle]
	if !ok {
		return "", false
	}

	delete(r.handles, handle)
	r.clients[identity].Handle = ""

	return identity, true
}

func (r *ClientRegistry) IsOnlyConnectedClient(identity string) bool {
	if len(r.handles) != 1 {
		return false
	}

	c, ok := r.clients[identity]

	return ok && c.connected()
}

// ConnectedIdentitiesExcluding returns every connected identity except the
// given one, sorted so that a seeded RandomSource elects deterministically.
func (r *ClientRegistry) ConnectedIdentitiesExcluding(identity string) []string {
	out := make([]string, 0, len(r.handles))
	for _, id := range r.handles {
		if id == identity {
			continue
		}
		out = append(out, id)
	}
	slices.Sort(out)

	return out
}

func (r *ClientRegistry) ConnectedCount() int {
	return len(r.handles)
}

func (r *ClientRegistry) IdentityOf(handle Handle) (string, bool) {
	identity, ok := r.handles[handle]

	return identity, ok
}

func (r *ClientRegistry) HandleOf(identity string) (Handle, bool) {
	c, ok := r.clients[identity]
	if !ok || !c.connected() {
		return "", false
	}

	return c.Handle, true
}

func (r *ClientRegistry) ScoreOf(identity string) (int, error) {
	c, ok := r.clients[identity]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownIdentity, identity)
	}

	return c.Score, nil
}

func (r *ClientRegistry) adjustScore(identity string, delta int) error {
	c, ok := r.clients[identity]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownIdentity, identity)
	}
	c.Score += delta

	return nil
}

func (r *ClientRegistry) scores() map[string]int {
	out := make(map[string]int, len(r.clients))
	for id, c := range r.clients {
		out[id] = c.Score
	}

	return out
}
