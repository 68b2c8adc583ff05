/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package roulette

// ScoreBoard applies score changes to the registry's client records.
type ScoreBoard struct {
	registry *ClientRegistry
}

func NewScoreBoard(registry *ClientRegistry) *ScoreBoard {
	return &ScoreBoard{registry: registry}
}

func (b *ScoreBoard) Credit(identity string, amount int) error {
	return b.registry.adjustScore(identity, amount)
}

// Debit subtracts amount with no floor; scores may go negative.
func (b *ScoreBoard) Debit(identity string, amount int) error {
	return b.registry.adjustScore(identity, -amount)
}

func (b *ScoreBoard) ScoreOf(identity string) (int, error) {
	return b.registry.ScoreOf(identity)
}
