package game

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/lox/holdemtrainer/poker"
)

// Game runs a sequence of hands over a fixed set of seats. It rotates the
// button, starts hands, applies actions and checks chip conservation after
// every mutation. After a fatal error every mutating call fails with
// ErrGameHalted.
type Game struct {
	Players    []*Player
	Button     int
	HandNumber int
	SmallBlind int
	BigBlind   int
	TotalChips int

	hand   *Hand
	deck   *poker.Deck
	halted error
	logger *log.Logger
}

// NewGame creates a game with the required RNG and optional configuration.
// The RNG is required to make randomness explicit and testing deterministic.
func NewGame(rng *rand.Rand, names []string, smallBlind, bigBlind int, opts ...GameOption) *Game {
	if rng == nil {
		panic("rng is required for game creation")
	}
	if len(names) < 2 {
		panic("at least 2 players required")
	}
	if smallBlind < 0 || bigBlind <= 0 || smallBlind > bigBlind {
		panic("invalid blinds")
	}

	cfg := &gameConfig{startStack: 1000}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.stacks != nil && len(cfg.stacks) != len(names) {
		panic("stacks must match number of players")
	}
	if cfg.button < 0 || cfg.button >= len(names) {
		panic("button position out of range")
	}

	g := &Game{
		Button:     cfg.button,
		SmallBlind: smallBlind,
		BigBlind:   bigBlind,
		deck:       cfg.deck,
		logger:     cfg.logger,
	}
	if g.deck == nil {
		g.deck = poker.NewDeck(rng)
	}
	if g.logger == nil {
		g.logger = log.New(io.Discard)
	}

	for i, name := range names {
		stack := cfg.startStack
		if cfg.stacks != nil {
			stack = cfg.stacks[i]
		}
		if stack < 0 {
			panic("negative stack")
		}
		g.Players = append(g.Players, &Player{Seat: i, Name: name, Stack: stack, Eliminated: stack == 0})
		g.TotalChips += stack
	}
	return g
}

// Hand returns the current or most recent hand, or nil before the first.
func (g *Game) Hand() *Hand { return g.hand }

// Err returns the fatal error that halted the game, if any.
func (g *Game) Err() error { return g.halted }

// LivePlayers counts seats that still have chips.
func (g *Game) LivePlayers() int {
	n := 0
	for _, p := range g.Players {
		if p.Stack > 0 {
			n++
		}
	}
	return n
}

// IsOver reports whether fewer than two seats have chips.
func (g *Game) IsOver() bool { return g.LivePlayers() < 2 }

// nextButton finds the seat for the next button: the next seat clockwise
// that has chips. The first hand may start on the configured seat itself.
func (g *Game) nextButton() int {
	n := len(g.Players)
	start := g.Button + 1
	if g.HandNumber == 0 {
		start = g.Button
	}
	for i := range n {
		seat := (start + i) % n
		if g.Players[seat].Stack > 0 {
			return seat
		}
	}
	return -1
}

func (g *Game) halt(err error) error {
	if g.halted == nil {
		g.halted = err
		g.logger.Error("game halted", "hand", g.HandNumber, "error", err)
	}
	return fmt.Errorf("%w: %w", ErrGameHalted, g.halted)
}

func (g *Game) checkHalted() error {
	if g.halted != nil {
		return fmt.Errorf("%w: %w", ErrGameHalted, g.halted)
	}
	return nil
}

// CheckConservation verifies that stacks plus the pot equal the chips the
// game started with.
func (g *Game) CheckConservation() error {
	total := 0
	for _, p := range g.Players {
		if p.Stack < 0 {
			return fmt.Errorf("%w: seat %d has negative stack %d", ErrChipConservation, p.Seat, p.Stack)
		}
		total += p.Stack
	}
	if g.hand != nil {
		total += g.hand.Pot()
	}
	if total != g.TotalChips {
		return fmt.Errorf("%w: table holds %d chips, want %d", ErrChipConservation, total, g.TotalChips)
	}
	return nil
}

// StartHand moves the button to the next seat with chips, deals and posts
// blinds. Seats without chips are marked eliminated and skipped.
func (g *Game) StartHand() (*Hand, error) {
	if err := g.checkHalted(); err != nil {
		return nil, err
	}
	if g.hand != nil && !g.hand.IsComplete() {
		return nil, fmt.Errorf("start hand %d: %w", g.HandNumber+1, ErrHandInProgress)
	}
	if g.IsOver() {
		return nil, ErrNotEnoughPlayers
	}

	button := g.nextButton()
	h, err := NewHand(g.deck, g.Players, button, g.SmallBlind, g.BigBlind)
	if err != nil {
		return nil, g.halt(err)
	}
	g.Button = button
	g.HandNumber++
	g.hand = h

	if err := g.CheckConservation(); err != nil {
		return nil, g.halt(err)
	}
	g.logger.Debug("hand started", "hand", g.HandNumber, "button", button,
		"sb", h.SmallBlindSeat, "bb", h.BigBlindSeat)
	if h.IsComplete() {
		g.logHandComplete()
	}
	return h, nil
}

// Act applies an action for seat in the current hand. Illegal actions are
// rejected without changing anything; any other error halts the game.
func (g *Game) Act(seat int, a Action) error {
	if err := g.checkHalted(); err != nil {
		return err
	}
	if g.hand == nil || g.hand.IsComplete() {
		return illegal(seat, a, "no hand in progress")
	}
	if err := g.hand.ProcessAction(seat, a); err != nil {
		if errors.Is(err, ErrIllegalAction) {
			return err
		}
		return g.halt(err)
	}
	return g.afterMutation()
}

// ForceFold folds seat out of turn in the current hand.
func (g *Game) ForceFold(seat int) error {
	if err := g.checkHalted(); err != nil {
		return err
	}
	if g.hand == nil || g.hand.IsComplete() {
		return nil
	}
	if err := g.hand.ForceFold(seat); err != nil {
		return g.halt(err)
	}
	return g.afterMutation()
}

func (g *Game) afterMutation() error {
	if err := g.CheckConservation(); err != nil {
		return g.halt(err)
	}
	if g.hand.IsComplete() {
		g.logHandComplete()
	}
	return nil
}

func (g *Game) logHandComplete() {
	out := g.hand.Outcome
	g.logger.Debug("hand complete", "hand", g.HandNumber, "showdown", out.Showdown,
		"pots", len(out.Pots), "payouts", out.Payouts)
	for _, p := range g.Players {
		if p.Eliminated && p.TotalBet > 0 {
			g.logger.Info("player eliminated", "hand", g.HandNumber, "seat", p.Seat, "name", p.Name)
		}
	}
}

// PlayHand starts a hand and drives it to completion with strategies
// indexed by seat. An illegal decision aborts the hand with the error; the
// hand is left waiting on that seat.
func (g *Game) PlayHand(strategies []Strategy) (*Outcome, error) {
	if len(strategies) != len(g.Players) {
		return nil, fmt.Errorf("need %d strategies, got %d", len(g.Players), len(strategies))
	}
	h, err := g.StartHand()
	if err != nil {
		return nil, err
	}
	for !h.IsComplete() {
		seat := h.ActivePlayer
		if strategies[seat] == nil {
			return nil, fmt.Errorf("no strategy for seat %d", seat)
		}
		if err := g.Act(seat, strategies[seat].Decide(h.View(seat))); err != nil {
			return nil, err
		}
	}
	return h.Outcome, nil
}

// State returns the public view of the current hand for viewer.
func (g *Game) State(viewer int) (PublicState, bool) {
	if g.hand == nil {
		return PublicState{}, false
	}
	return g.hand.PublicState(viewer), true
}
