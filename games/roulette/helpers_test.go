/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package roulette

import (
	"context"
	"sync"
	"testing"
)

// scriptedRandom replays fixed values. picks are indexes into the
// candidate slice handed to ChooseOne. It runs on the session goroutine,
// so it reports with Errorf rather than Fatalf.
type scriptedRandom struct {
	t     *testing.T
	ints  []int
	picks []int

	intCalls  int
	pickCalls int
}

func (s *scriptedRandom) IntRange(min, max int) int {
	s.t.Helper()

	if s.intCalls >= len(s.ints) {
		s.t.Errorf("unexpected IntRange(%d, %d) call #%d", min, max, s.intCalls+1)
		return min
	}
	v := s.ints[s.intCalls]
	s.intCalls++

	if v < min || v > max {
		s.t.Errorf("scripted value %d outside [%d, %d]", v, min, max)
	}

	return v
}

func (s *scriptedRandom) ChooseOne(candidates []string) string {
	s.t.Helper()

	if s.pickCalls >= len(s.picks) {
		s.t.Errorf("unexpected ChooseOne(%v) call #%d", candidates, s.pickCalls+1)
		return candidates[0]
	}
	idx := s.picks[s.pickCalls]
	s.pickCalls++

	return candidates[idx]
}

type sent struct {
	handle Handle
	msg    any
}

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []sent
}

func (r *recordingNotifier) Send(handle Handle, msg any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.msgs = append(r.msgs, sent{handle: handle, msg: msg})
}

// take returns and clears everything sent so far.
func (r *recordingNotifier) take() []sent {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.msgs
	r.msgs = nil

	return out
}

func startSession(t *testing.T, cfg Config, rng RandomSource) (*Session, *recordingNotifier) {
	t.Helper()

	n := &recordingNotifier{}
	s := New(cfg, WithRandomSource(rng), WithNotifier(n), WithLogf(t.Logf))

	ctx, cancel := context.WithCancel(context.Background())
	go s.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-s.done
	})

	return s, n
}

func yourTurnMsg(h Handle) sent {
	return sent{handle: h, msg: TurnUpdate{Type: "turn_update", Message: "YOUR TURN!", Enabled: true}}
}

func scoreMsg(h Handle, score int) sent {
	return sent{handle: h, msg: ScoreUpdate{Type: "score_update", Score: score}}
}

func endedMsg(h Handle, text string) sent {
	return sent{handle: h, msg: TurnUpdate{Type: "turn_update", Message: text, Enabled: false}}
}
