/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package roulette

// Outcome is the result of a withdrawal from the stock.
type Outcome int

const (
	Safe Outcome = iota
	Greedy
)

func (o Outcome) String() string {
	switch o {
	case Safe:
		return "safe"
	case Greedy:
		return "greedy"
	default:
		return "unknown"
	}
}

// Message is the text shown to the player who made the withdrawal.
func (o Outcome) Message() string {
	if o == Greedy {
		return "YOU GOT GREEDY"
	}

	return "YOU'RE SAFE"
}

// StockLedger owns the shared pool of points and the penalty for emptying
// it. The stock is positive whenever Withdraw returns.
type StockLedger struct {
	stock    int
	penalty  int
	resetMin int
	resetMax int

	board    *ScoreBoard
	registry *ClientRegistry
	rng      RandomSource
}

func NewStockLedger(cfg Config, registry *ClientRegistry, board *ScoreBoard, rng RandomSource) *StockLedger {
	return &StockLedger{
		stock:    rng.IntRange(cfg.StockMin, cfg.StockMax),
		penalty:  cfg.Penalty,
		resetMin: cfg.ResetMin,
		resetMax: cfg.ResetMax,
		board:    board,
		registry: registry,
		rng:      rng,
	}
}

func (l *StockLedger) Stock() int {
	return l.stock
}

// AddBonus grows the stock when a new player arrives.
func (l *StockLedger) AddBonus(n int) {
	l.stock += n
}

// Withdraw takes amount from the stock on behalf of actor. A withdrawal
// that leaves the stock positive is credited to actor; one that empties it
// costs actor the penalty and reseeds the stock.
func (l *StockLedger) Withdraw(actor string, amount int) (Outcome, error) {
	l.stock -= amount
	if l.stock > 0 {
		return Safe, l.board.Credit(actor, amount)
	}

	l.reset()

	return Greedy, l.board.Debit(actor, l.penalty)
}

func (l *StockLedger) reset() {
	l.stock = (l.registry.ConnectedCount() + 1) * l.rng.IntRange(l.resetMin, l.resetMax)
}
