/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package roulette

import "errors"

var (
	ErrDuplicateIdentity      = errors.New("username is already in use by a connected player")
	ErrUnknownIdentity        = errors.New("unknown player")
	ErrActionByInactivePlayer = errors.New("it is not this player's turn")
	ErrEmptyIdentity          = errors.New("username must not be empty")
	ErrHandleInUse            = errors.New("connection has already joined")
	ErrNoHandle               = errors.New("missing connection handle")
	ErrSessionClosed          = errors.New("game session is closed")
)
