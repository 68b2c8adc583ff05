// Partybox Button Roulette
//
// Players share a stock of points. On their turn the active player takes
// any number of points from it. Taking points is safe as long as some are
// left over; the player who empties the stock "got greedy", loses a fixed
// penalty and the stock is refilled. Either way the turn then passes to a
// random other connected player.
//
// Features:
// - Players are identified by the name they pick; one live connection per name
// - Disconnected players keep their score and may reclaim their name
// - Every new name adds a bonus to the stock
// - The refilled stock scales with the number of connected players
// - A lone player keeps taking consecutive turns
// - Turns never time out

package roulette

import (
	"context"
	"errors"
	"fmt"
)

// JoinResult reports an accepted join.
type JoinResult struct {
	New    bool
	Active bool
	Score  int
}

// TurnResult reports a completed turn.
type TurnResult struct {
	Outcome Outcome
	Score   int    // the requesting player's score after the turn
	Stock   int    // stock entering the next turn
	Active  string // player whose turn it now is
}

// Snapshot is a consistent copy of the session state.
type Snapshot struct {
	Active    string
	Stock     int
	Scores    map[string]int
	Connected []string
}

type joinReply struct {
	res JoinResult
	err error
}

type joinRequest struct {
	identity string
	handle   Handle
	reply    chan joinReply
}

type leaveRequest struct {
	handle Handle
	reply  chan struct{}
}

type turnReply struct {
	res TurnResult
	err error
}

type turnRequest struct {
	handle Handle
	points int
	reply  chan turnReply
}

type queryRequest struct {
	fn    func()
	reply chan struct{}
}

// Session is the single game of a process. All state changes are applied
// by the goroutine running Run, in the order requests arrive.
type Session struct {
	cfg Config

	registry *ClientRegistry
	board    *ScoreBoard
	ledger   *StockLedger
	turns    *TurnCoordinator

	rng      RandomSource
	notifier Notifier
	logf     func(format string, args ...any)

	joins   chan joinRequest
	leaves  chan leaveRequest
	taken   chan turnRequest
	queries chan queryRequest
	done    chan struct{}
}

type Option func(*Session)

func WithRandomSource(rng RandomSource) Option {
	return func(s *Session) {
		s.rng = rng
	}
}

func WithNotifier(n Notifier) Option {
	return func(s *Session) {
		s.notifier = n
	}
}

// WithLogf routes the session's log lines through fn.
func WithLogf(fn func(format string, args ...any)) Option {
	return func(s *Session) {
		s.logf = fn
	}
}

func New(cfg Config, opts ...Option) *Session {
	s := &Session{
		cfg:      cfg,
		notifier: discardNotifier{},
		logf:     func(string, ...any) {},
		joins:    make(chan joinRequest),
		leaves:   make(chan leaveRequest),
		taken:    make(chan turnRequest),
		queries:  make(chan queryRequest),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.rng == nil {
		s.rng = NewRandomSource(0)
	}

	s.registry = NewClientRegistry()
	s.board = NewScoreBoard(s.registry)
	s.ledger = NewStockLedger(cfg, s.registry, s.board, s.rng)
	s.turns = NewTurnCoordinator(s.rng)

	return s
}

// Run processes requests until ctx is cancelled. Requests made after Run
// returns fail with ErrSessionClosed.
func (s *Session) Run(ctx context.Context) {
	defer close(s.done)

	s.logf("GAMES: Session started with stock %d", s.ledger.Stock())

	for {
		select {
		case <-ctx.Done():
			s.logf("GAMES: Session stopped")
			return

		case req := <-s.joins:
			res, out, err := s.handleJoin(req.identity, req.handle)
			s.dispatch(out)
			req.reply <- joinReply{res: res, err: err}

		case req := <-s.leaves:
			s.dispatch(s.handleDisconnect(req.handle))
			close(req.reply)

		case req := <-s.taken:
			res, out, err := s.handleTurn(req.handle, req.points)
			s.dispatch(out)
			req.reply <- turnReply{res: res, err: err}

		case req := <-s.queries:
			req.fn()
			close(req.reply)
		}
	}
}

// Join admits a connection under the given name.
func (s *Session) Join(ctx context.Context, identity string, handle Handle) (JoinResult, error) {
	reply := make(chan joinReply, 1)

	rep, err := call(ctx, s, s.joins, joinRequest{identity: identity, handle: handle, reply: reply}, reply)
	if err != nil {
		return JoinResult{}, err
	}

	return rep.res, rep.err
}

// Disconnect records that handle is gone. Unknown handles are ignored.
func (s *Session) Disconnect(ctx context.Context, handle Handle) error {
	reply := make(chan struct{})

	_, err := call(ctx, s, s.leaves, leaveRequest{handle: handle, reply: reply}, reply)

	return err
}

// TakeTurn withdraws points on behalf of the player connected through
// handle.
func (s *Session) TakeTurn(ctx context.Context, handle Handle, points int) (TurnResult, error) {
	reply := make(chan turnReply, 1)

	rep, err := call(ctx, s, s.taken, turnRequest{handle: handle, points: points, reply: reply}, reply)
	if err != nil {
		return TurnResult{}, err
	}

	return rep.res, rep.err
}

func (s *Session) Score(ctx context.Context, identity string) (int, error) {
	var (
		score  int
		lookup error
	)

	err := s.query(ctx, func() {
		score, lookup = s.board.ScoreOf(identity)
	})
	if err != nil {
		return 0, err
	}

	return score, lookup
}

func (s *Session) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot

	err := s.query(ctx, func() {
		snap = Snapshot{
			Active:    s.turns.Active(),
			Stock:     s.ledger.Stock(),
			Scores:    s.registry.scores(),
			Connected: s.registry.ConnectedIdentitiesExcluding(""),
		}
	})

	return snap, err
}

func (s *Session) query(ctx context.Context, fn func()) error {
	reply := make(chan struct{})

	_, err := call(ctx, s, s.queries, queryRequest{fn: fn, reply: reply}, reply)

	return err
}

func call[Req, Rep any](ctx context.Context, s *Session, ch chan Req, req Req, reply chan Rep) (Rep, error) {
	var zero Rep

	select {
	case ch <- req:
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-s.done:
		return zero, ErrSessionClosed
	}

	select {
	case rep := <-reply:
		return rep, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-s.done:
		select {
		case rep := <-reply:
			return rep, nil
		default:
			return zero, ErrSessionClosed
		}
	}
}

func (s *Session) dispatch(out []outbound) {
	for _, o := range out {
		s.notifier.Send(o.handle, o.msg)
	}
}

func (s *Session) handleJoin(identity string, handle Handle) (JoinResult, []outbound, error) {
	outcome, err := s.registry.Join(identity, handle)
	if err != nil {
		s.logf("GAMES: Rejected join of %q from %s: %v", identity, handle, err)

		text := "Unable to join the game."
		if errors.Is(err, ErrDuplicateIdentity) {
			text = "That username is already taken. Please choose a different username."
		}

		return JoinResult{}, []outbound{joinRejected(handle, text)}, err
	}

	if outcome.New {
		s.ledger.AddBonus(s.cfg.JoinBonus)
		s.logf("GAMES: Player %q joined from %s (stock %d)", identity, handle, s.ledger.Stock())
	} else {
		s.logf("GAMES: Player %q returned from %s", identity, handle)
	}

	var out []outbound

	if s.registry.IsOnlyConnectedClient(identity) {
		s.turns.Assign(identity)
		out = append(out, yourTurn(handle))
	}

	score, err := s.board.ScoreOf(identity)
	if err != nil {
		return JoinResult{}, out, err
	}
	out = append(out, scoreUpdate(handle, score))

	return JoinResult{
		New:    outcome.New,
		Active: s.turns.Active() == identity,
		Score:  score,
	}, out, nil
}

func (s *Session) handleDisconnect(handle Handle) []outbound {
	identity, ok := s.registry.IdentityOf(handle)
	if !ok {
		s.logf("GAMES: Ignoring disconnect of unregistered connection %s", handle)
		return nil
	}

	var out []outbound

	if identity == s.turns.Active() {
		if _, err := s.ledger.Withdraw(identity, 0); err != nil {
			s.logf("GAMES: Passing turn of %q: %v", identity, err)
		}

		next := s.turns.ElectNextActive(identity, s.registry.ConnectedIdentitiesExcluding(identity))
		if next != identity {
			if h, ok := s.registry.HandleOf(next); ok {
				out = append(out, yourTurn(h))
			}
			s.logf("GAMES: Turn passed from departing %q to %q", identity, next)
		}
	}

	s.registry.Disconnect(handle)
	s.logf("GAMES: Player %q disconnected", identity)

	return out
}

func (s *Session) handleTurn(handle Handle, points int) (TurnResult, []outbound, error) {
	identity, ok := s.registry.IdentityOf(handle)
	if !ok {
		return TurnResult{}, nil, fmt.Errorf("%w: connection %s has not joined", ErrUnknownIdentity, handle)
	}

	actor := s.turns.Active()
	if actor != identity {
		if s.cfg.StrictTurns {
			return TurnResult{}, nil, fmt.Errorf("%w: %q tried to play during %q's turn", ErrActionByInactivePlayer, identity, actor)
		}
		s.logf("GAMES: %q advanced the turn of %q", identity, actor)
	}

	outcome, err := s.ledger.Withdraw(actor, points)
	if err != nil {
		return TurnResult{}, nil, err
	}

	next := s.turns.ElectNextActive(actor, s.registry.ConnectedIdentitiesExcluding(actor))

	score, err := s.board.ScoreOf(identity)
	if err != nil {
		return TurnResult{}, nil, err
	}

	s.logf("GAMES: %q took %d (%s), stock left %d, next turn %q", actor, points, outcome, s.ledger.Stock(), next)

	out := []outbound{
		turnEnded(handle, outcome),
		scoreUpdate(handle, score),
	}
	if h, ok := s.registry.HandleOf(next); ok {
		out = append(out, yourTurn(h))
	}

	return TurnResult{
		Outcome: outcome,
		Score:   score,
		Stock:   s.ledger.Stock(),
		Active:  next,
	}, out, nil
}
