/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package roulette

import (
	"errors"
	"fmt"
)

// Config holds the tuning of the stock economy.
type Config struct {
	StockMin  int // initial stock is drawn from [StockMin, StockMax]
	StockMax  int
	JoinBonus int // added to the stock whenever a new name joins
	Penalty   int // deducted from whoever empties the stock
	ResetMin  int // an emptied stock becomes (connected+1) * [ResetMin, ResetMax]
	ResetMax  int

	// StrictTurns rejects withdrawals from anyone but the active player.
	// When false, any connected player can advance the shared turn, and the
	// withdrawal is booked against the active player.
	StrictTurns bool
}

func DefaultConfig() Config {
	return Config{
		StockMin:    6,
		StockMax:    9,
		JoinBonus:   4,
		Penalty:     10,
		ResetMin:    2,
		ResetMax:    6,
		StrictTurns: true,
	}
}

func (c Config) Validate() error {
	if c.StockMin < 1 || c.StockMax < c.StockMin {
		return fmt.Errorf("invalid stock range (must satisfy 1 <= min <= max): %d-%d", c.StockMin, c.StockMax)
	}
	if c.ResetMin < 1 || c.ResetMax < c.ResetMin {
		return fmt.Errorf("invalid reset range (must satisfy 1 <= min <= max): %d-%d", c.ResetMin, c.ResetMax)
	}
	if c.JoinBonus < 0 {
		return errors.New("join bonus must not be negative")
	}
	if c.Penalty < 0 {
		return errors.New("penalty must not be negative")
	}
	return nil
}
