package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/holdemtrainer/internal/game"
)

// Session is one training game: a single human seat against computer
// opponents. Mutating calls are serialised; reads never wait for a computer
// opponent that is thinking.
type Session struct {
	ID        string
	HumanSeat int

	actMu sync.Mutex   // held for the whole of a mutating call
	mu    sync.RWMutex // guards game
	game  *game.Game
	bots  []game.Strategy

	clock         quartz.Clock
	thinkTime     time.Duration
	actionTimeout time.Duration
	logger        *log.Logger
	onHandDone    func(*Session, game.Snapshot)

	timerMu   sync.Mutex
	timer     *quartz.Timer
	turn      uint64
	savedHand int

	subMu sync.Mutex
	subs  map[chan struct{}]struct{}
}

// errBotFailed reports a computer seat that could not be played. It never
// wraps the game's illegal action error, so a request is not blamed for it.
var errBotFailed = errors.New("computer player failed")

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithClock sets the clock used for think time and action timeouts.
func WithClock(clock quartz.Clock) SessionOption {
	return func(s *Session) { s.clock = clock }
}

// WithThinkTime pauses before every computer decision.
func WithThinkTime(d time.Duration) SessionOption {
	return func(s *Session) { s.thinkTime = d }
}

// WithActionTimeout folds the human if they take longer than d to act.
func WithActionTimeout(d time.Duration) SessionOption {
	return func(s *Session) { s.actionTimeout = d }
}

// WithSessionLogger sets the session logger.
func WithSessionLogger(logger *log.Logger) SessionOption {
	return func(s *Session) { s.logger = logger }
}

// WithHandDone registers a callback invoked with a snapshot after every
// completed hand.
func WithHandDone(fn func(*Session, game.Snapshot)) SessionOption {
	return func(s *Session) { s.onHandDone = fn }
}

// NewSession wraps g. bots is indexed by seat; the entry for humanSeat is
// ignored and every other seat needs a strategy.
func NewSession(id string, g *game.Game, humanSeat int, bots []game.Strategy, opts ...SessionOption) *Session {
	if len(bots) != len(g.Players) {
		panic("bots must match number of players")
	}
	s := &Session{
		ID:        id,
		HumanSeat: humanSeat,
		game:      g,
		bots:      bots,
		savedHand: g.HandNumber,
		subs:      make(map[chan struct{}]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = quartz.NewReal()
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	s.logger = s.logger.With("game", id)
	return s
}

// SessionState is what the human is shown.
type SessionState struct {
	ID         string            `json:"id"`
	HandNumber int               `json:"hand_number"`
	HumanSeat  int               `json:"human_seat"`
	GameOver   bool              `json:"game_over"`
	Halted     string            `json:"halted,omitempty"`
	Hand       *game.PublicState `json:"hand,omitempty"`
}

// State returns the game as the human sees it.
func (s *Session) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := SessionState{
		ID:         s.ID,
		HandNumber: s.game.HandNumber,
		HumanSeat:  s.HumanSeat,
		GameOver:   s.gameOver(),
	}
	if err := s.game.Err(); err != nil {
		st.Halted = err.Error()
	}
	if ps, ok := s.game.State(s.HumanSeat); ok {
		st.Hand = &ps
	}
	return st
}

func (s *Session) gameOver() bool {
	if s.game.IsOver() {
		return true
	}
	h := s.game.Hand()
	return s.game.Players[s.HumanSeat].Eliminated && (h == nil || h.IsComplete())
}

// Snapshot captures the underlying game.
func (s *Session) Snapshot() game.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.game.Snapshot()
}

// HumanAct applies the human's action, then lets the computer opponents act
// until the human is to act again or the hand is over. A rejected action
// leaves the pending timeout running.
func (s *Session) HumanAct(ctx context.Context, a game.Action) error {
	s.actMu.Lock()
	defer s.actMu.Unlock()

	s.mu.Lock()
	err := s.game.Act(s.HumanSeat, a)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.stopTimeout()
	s.logger.Debug("human acted", "seat", s.HumanSeat, "action", a)
	s.notify()
	return s.runBots(ctx)
}

// NextHand deals the next hand and plays computer seats up to the human's
// first decision. If the current hand stalled on a computer seat, for
// example because an earlier request was cancelled, it is resumed instead.
func (s *Session) NextHand(ctx context.Context) error {
	s.actMu.Lock()
	defer s.actMu.Unlock()

	s.mu.RLock()
	h := s.game.Hand()
	stalled := h != nil && !h.IsComplete() && h.ActivePlayer != s.HumanSeat
	s.mu.RUnlock()
	if stalled {
		return s.runBots(ctx)
	}

	s.stopTimeout()
	s.mu.Lock()
	_, err := s.game.StartHand()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.logger.Debug("hand dealt", "hand", s.game.HandNumber)
	s.notify()
	return s.runBots(ctx)
}

// runBots must be called with actMu held.
func (s *Session) runBots(ctx context.Context) error {
	for {
		s.mu.RLock()
		h := s.game.Hand()
		done := h == nil || h.IsComplete() || s.game.Err() != nil
		seat := -1
		var view game.View
		if !done {
			seat = h.ActivePlayer
			view = h.View(seat)
		}
		s.mu.RUnlock()

		switch {
		case done:
			s.handDone()
			return nil
		case seat == s.HumanSeat:
			s.armTimeout()
			return nil
		}

		if err := s.think(ctx); err != nil {
			return err
		}
		a := s.bots[seat].Decide(view)

		s.mu.Lock()
		err := s.game.Act(seat, a)
		if errors.Is(err, game.ErrIllegalAction) {
			s.logger.Warn("computer action rejected, folding", "seat", seat, "action", a, "error", err)
			err = s.game.ForceFold(seat)
		}
		s.mu.Unlock()
		if err != nil {
			return fmt.Errorf("%w: seat %d: %v", errBotFailed, seat, err)
		}
		s.notify()
	}
}

func (s *Session) think(ctx context.Context) error {
	if s.thinkTime <= 0 {
		return ctx.Err()
	}
	t := s.clock.NewTimer(s.thinkTime, "session", "think")
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *Session) handDone() {
	s.mu.RLock()
	hand := s.game.HandNumber
	h := s.game.Hand()
	if h == nil || !h.IsComplete() || hand == s.savedHand {
		s.mu.RUnlock()
		return
	}
	snap := s.game.Snapshot()
	s.mu.RUnlock()

	s.savedHand = hand
	s.logger.Info("hand complete", "hand", hand, "payouts", h.Outcome.Payouts)
	if s.onHandDone != nil {
		s.onHandDone(s, snap)
	}
}

func (s *Session) armTimeout() {
	if s.actionTimeout <= 0 {
		return
	}
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.turn++
	turn := s.turn
	s.timer = s.clock.AfterFunc(s.actionTimeout, func() { s.expire(turn) }, "session", "timeout")
}

func (s *Session) stopTimeout() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.turn++
}

// expire folds the human when the decision armed as turn is still pending.
func (s *Session) expire(turn uint64) {
	s.actMu.Lock()
	defer s.actMu.Unlock()

	s.timerMu.Lock()
	current := s.turn == turn
	s.timerMu.Unlock()
	if !current {
		return
	}

	s.mu.Lock()
	err := s.game.ForceFold(s.HumanSeat)
	s.mu.Unlock()
	if err != nil {
		s.logger.Error("timeout fold failed", "error", err)
		return
	}
	s.logger.Info("human timed out", "seat", s.HumanSeat, "timeout", s.actionTimeout)
	s.notify()
	if err := s.runBots(context.Background()); err != nil {
		s.logger.Error("computer seats failed after timeout", "error", err)
	}
}

// Subscribe returns a channel that receives a signal after every change.
// Signals coalesce; receivers should read State when woken.
func (s *Session) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	s.subMu.Lock()
	s.subs[ch] = struct{}{}
	s.subMu.Unlock()
	return ch, func() {
		s.subMu.Lock()
		delete(s.subs, ch)
		s.subMu.Unlock()
	}
}

func (s *Session) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Close stops any pending action timeout.
func (s *Session) Close() {
	s.stopTimeout()
}
