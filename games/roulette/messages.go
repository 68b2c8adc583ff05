/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package roulette

const yourTurnText = "YOUR TURN!"

// TurnUpdate enables or disables a client's controls.
type TurnUpdate struct {
	Type    string `json:"type"` // "turn_update"
	Message string `json:"message"`
	Enabled bool   `json:"enabled"`
}

// ScoreUpdate carries a client's current score.
type ScoreUpdate struct {
	Type  string `json:"type"` // "score_update"
	Score int    `json:"score"`
}

// JoinRejected is sent only to a connection whose join was refused.
type JoinRejected struct {
	Type    string `json:"type"`  // "join_rejected"
	Field   string `json:"field"` // "username"
	Message string `json:"message"`
}

// Notifier delivers outbound messages to a connection. Send must not
// block; a message that cannot be delivered immediately is dropped.
type Notifier interface {
	Send(handle Handle, msg any)
}

type outbound struct {
	handle Handle
	msg    any
}

func yourTurn(h Handle) outbound {
	return outbound{h, TurnUpdate{Type: "turn_update", Message: yourTurnText, Enabled: true}}
}

func turnEnded(h Handle, o Outcome) outbound {
	return outbound{h, TurnUpdate{Type: "turn_update", Message: o.Message(), Enabled: false}}
}

func scoreUpdate(h Handle, score int) outbound {
	return outbound{h, ScoreUpdate{Type: "score_update", Score: score}}
}

func joinRejected(h Handle, text string) outbound {
	return outbound{h, JoinRejected{Type: "join_rejected", Field: "username", Message: text}}
}

type discardNotifier struct{}

func (discardNotifier) Send(Handle, any) {}
