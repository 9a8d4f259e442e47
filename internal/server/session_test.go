package server

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdemtrainer/internal/game"
	"github.com/lox/holdemtrainer/internal/randutil"
)

func newTestSession(t *testing.T, opts ...SessionOption) *Session {
	t.Helper()
	g := game.NewGame(randutil.New(42), []string{"hero", "alice", "bob"}, 5, 10)
	return NewSession("test", g, 0, []game.Strategy{nil, game.CallAny, game.CallAny}, opts...)
}

// newStalledSession puts the button on seat 1, so both computer seats act
// preflop before the human in the big blind.
func newStalledSession(t *testing.T, opts ...SessionOption) *Session {
	t.Helper()
	g := game.NewGame(randutil.New(42), []string{"hero", "alice", "bob"}, 5, 10, game.WithButton(1))
	return NewSession("test", g, 0, []game.Strategy{nil, game.CallAny, game.CallAny}, opts...)
}

// playHumanCalls calls for the human until the hand is over.
func playHumanCalls(t *testing.T, s *Session) SessionState {
	t.Helper()
	ctx := context.Background()
	for range 50 {
		st := s.State()
		require.NotNil(t, st.Hand)
		if st.Hand.Outcome != nil {
			return st
		}
		require.Equal(t, 0, st.Hand.ActivePlayer)
		require.NoError(t, s.HumanAct(ctx, game.Call()))
	}
	t.Fatal("hand did not finish")
	return SessionState{}
}

func TestSessionPlaysBotsUntilHumanTurn(t *testing.T) {
	t.Parallel()
	var snaps []game.Snapshot
	s := newTestSession(t, WithHandDone(func(_ *Session, snap game.Snapshot) {
		snaps = append(snaps, snap)
	}))

	st := s.State()
	assert.Nil(t, st.Hand)
	assert.Equal(t, 0, st.HandNumber)

	require.NoError(t, s.NextHand(context.Background()))
	st = s.State()
	require.NotNil(t, st.Hand)
	assert.Equal(t, 1, st.HandNumber)
	assert.Equal(t, 0, st.Hand.ActivePlayer)
	assert.NotEmpty(t, st.Hand.Legal)
	assert.Len(t, st.Hand.Players[0].HoleCards, 2)
	assert.Empty(t, st.Hand.Players[1].HoleCards)

	st = playHumanCalls(t, s)
	assert.True(t, st.Hand.Outcome.Showdown)
	assert.Equal(t, -1, st.Hand.ActivePlayer)
	require.Len(t, snaps, 1)
	assert.Equal(t, 1, snaps[0].HandNumber)

	total := 0
	for _, p := range st.Hand.Players {
		total += p.Stack
		assert.Len(t, p.HoleCards, 2, "seat %d shown down", p.Seat)
	}
	assert.Equal(t, 3000, total)
}

func TestSessionRejectsActionsOutOfTurn(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestSession(t)

	err := s.HumanAct(ctx, game.Call())
	require.ErrorIs(t, err, game.ErrIllegalAction)

	require.NoError(t, s.NextHand(ctx))
	before := s.Snapshot()
	err = s.HumanAct(ctx, game.RaiseTo(1))
	require.ErrorIs(t, err, game.ErrIllegalAction)
	assert.Equal(t, before, s.Snapshot())

	err = s.NextHand(ctx)
	require.ErrorIs(t, err, game.ErrHandInProgress)
}

func TestSessionThinkTimeUsesClock(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mockClock := quartz.NewMock(t)
	s := newStalledSession(t, WithClock(mockClock), WithThinkTime(time.Second))
	start := mockClock.Now()

	done := make(chan error, 1)
	go func() { done <- s.NextHand(ctx) }()

	for {
		select {
		case err := <-done:
			require.NoError(t, err)
			st := s.State()
			require.NotNil(t, st.Hand)
			assert.Equal(t, 0, st.Hand.ActivePlayer)
			assert.GreaterOrEqual(t, mockClock.Since(start), 2*time.Second)
			return
		default:
		}
		time.Sleep(time.Millisecond)
		mockClock.Advance(time.Second).MustWait(ctx)
	}
}

func TestSessionThinkTimeHonoursCancellation(t *testing.T) {
	t.Parallel()
	s := newStalledSession(t, WithClock(quartz.NewMock(t)), WithThinkTime(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, s.NextHand(ctx), context.Canceled)
	st := s.State()
	require.NotNil(t, st.Hand)
	assert.Equal(t, 1, st.Hand.ActivePlayer)

	// The stalled hand resumes on the next request.
	s.thinkTime = 0
	require.NoError(t, s.NextHand(context.Background()))
	st = s.State()
	assert.Equal(t, 1, st.HandNumber)
	assert.Equal(t, 0, st.Hand.ActivePlayer)
	assert.Equal(t, 10, st.Hand.CurrentBet)
}

func TestSessionActionTimeoutFoldsHuman(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mockClock := quartz.NewMock(t)
	s := newTestSession(t, WithClock(mockClock), WithActionTimeout(30*time.Second))

	updates, unsubscribe := s.Subscribe()
	defer unsubscribe()

	require.NoError(t, s.NextHand(ctx))
	require.Equal(t, 0, s.State().Hand.ActivePlayer)
	<-updates

	mockClock.Advance(30 * time.Second).MustWait(ctx)

	require.Eventually(t, func() bool {
		st := s.State()
		return st.Hand.Outcome != nil
	}, 5*time.Second, 5*time.Millisecond)
	st := s.State()
	assert.True(t, st.Hand.Players[0].Folded)
}

func TestSessionActionTimeoutCancelledByAction(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mockClock := quartz.NewMock(t)
	s := newTestSession(t, WithClock(mockClock), WithActionTimeout(30*time.Second))
	require.NoError(t, s.NextHand(ctx))

	mockClock.Advance(20 * time.Second).MustWait(ctx)
	require.NoError(t, s.HumanAct(ctx, game.Call()))

	st := s.State()
	if st.Hand.Outcome != nil {
		return
	}
	// A fresh timeout was armed for the new decision; the old one is gone.
	mockClock.Advance(20 * time.Second).MustWait(ctx)
	st = s.State()
	assert.False(t, st.Hand.Players[0].Folded)
	assert.Nil(t, st.Hand.Outcome)
}

func TestSessionGameOver(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	g := game.NewGame(randutil.New(3), []string{"hero", "bot"}, 5, 10, game.WithStacks([]int{0, 100}))
	s := NewSession("over", g, 0, []game.Strategy{nil, game.CallAny})

	assert.True(t, s.State().GameOver)
	require.ErrorIs(t, s.NextHand(ctx), game.ErrNotEnoughPlayers)
}

func TestSessionActionTimeoutKeepsDeadlineAfterRejectedAction(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mockClock := quartz.NewMock(t)
	s := newTestSession(t, WithClock(mockClock), WithActionTimeout(30*time.Second))
	require.NoError(t, s.NextHand(ctx))

	mockClock.Advance(20 * time.Second).MustWait(ctx)
	require.ErrorIs(t, s.HumanAct(ctx, game.RaiseTo(1)), game.ErrIllegalAction)

	// The original deadline stands.
	mockClock.Advance(10 * time.Second).MustWait(ctx)
	require.Eventually(t, func() bool {
		st := s.State()
		return st.Hand.Players[0].Folded
	}, 5*time.Second, 5*time.Millisecond)
}

func TestSessionFoldsComputerSeatOnIllegalAction(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	broken := game.StrategyFunc(func(game.View) game.Action { return game.RaiseTo(1) })
	g := game.NewGame(randutil.New(42), []string{"hero", "alice", "bob"}, 5, 10)
	s := NewSession("test", g, 0, []game.Strategy{nil, broken, game.CallAny})

	require.NoError(t, s.NextHand(ctx))
	require.NoError(t, s.HumanAct(ctx, game.Call()))

	st := s.State()
	require.NotNil(t, st.Hand)
	assert.Empty(t, st.Halted)
	assert.True(t, st.Hand.Players[1].Folded)
	assert.False(t, st.Hand.Players[0].Folded)
	assert.Equal(t, 990, st.Hand.Players[0].Stack)
	assert.Nil(t, st.Hand.Outcome)
	assert.Equal(t, 0, st.Hand.ActivePlayer)
}

func TestBotFailureIsNotIllegalAction(t *testing.T) {
	t.Parallel()
	err := fmt.Errorf("%w: seat 1: %v", errBotFailed, game.ErrGameHalted)
	assert.NotErrorIs(t, err, game.ErrIllegalAction)
	status, code := errorStatus(err)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "bot_failed", code)
}
