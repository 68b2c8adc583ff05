/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package roulette

// TurnCoordinator tracks whose turn it is.
type TurnCoordinator struct {
	active string
	rng    RandomSource
}

func NewTurnCoordinator(rng RandomSource) *TurnCoordinator {
	return &TurnCoordinator{rng: rng}
}

func (t *TurnCoordinator) Active() string {
	return t.active
}

// Assign hands the turn to identity without consuming randomness, used
// when a player is the only one connected.
func (t *TurnCoordinator) Assign(identity string) {
	t.active = identity
}

// ElectNextActive picks uniformly among candidates. With no candidates the
// current player keeps the turn.
func (t *TurnCoordinator) ElectNextActive(current string, candidates []string) string {
	if len(candidates) == 0 {
		t.active = current
		return t.active
	}

	t.active = t.rng.ChooseOne(candidates)

	return t.active
}
