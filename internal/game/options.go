package game

import (
	"github.com/charmbracelet/log"

	"github.com/lox/holdemtrainer/poker"
)

// GameOption configures a Game during creation.
type GameOption func(*gameConfig)

type gameConfig struct {
	stacks     []int // if nil, every seat starts with startStack
	startStack int
	button     int
	deck       *poker.Deck
	logger     *log.Logger
}

// WithUniformStacks sets the same starting stack for every seat.
// Default is 1000 if not specified.
func WithUniformStacks(chips int) GameOption {
	return func(c *gameConfig) {
		c.startStack = chips
		c.stacks = nil
	}
}

// WithStacks sets individual starting stacks. The length must match the
// number of seats. Zero stacks start eliminated.
func WithStacks(stacks []int) GameOption {
	return func(c *gameConfig) {
		c.stacks = stacks
	}
}

// WithButton sets the seat preferred for the first button. If it has no
// chips the button goes to the next seat that does.
func WithButton(seat int) GameOption {
	return func(c *gameConfig) {
		c.button = seat
	}
}

// WithDeck sets a specific deck, e.g. a stacked one for tests.
func WithDeck(deck *poker.Deck) GameOption {
	return func(c *gameConfig) {
		c.deck = deck
	}
}

// WithLogger sets the logger for hand lifecycle messages.
func WithLogger(logger *log.Logger) GameOption {
	return func(c *gameConfig) {
		c.logger = logger
	}
}
