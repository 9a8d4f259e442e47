package game

import (
	"errors"
	"fmt"
)

var (
	// ErrIllegalAction is returned when an action is rejected. The hand is
	// left exactly as it was before the call.
	ErrIllegalAction = errors.New("illegal action")

	// ErrChipConservation signals that chips were created or destroyed.
	// It is fatal: the game refuses further mutation once it is observed.
	ErrChipConservation = errors.New("chip conservation violated")

	// ErrGameHalted is returned by every mutating call after a fatal error.
	ErrGameHalted = errors.New("game halted")

	// ErrNotEnoughPlayers is returned when fewer than two seats have chips.
	ErrNotEnoughPlayers = errors.New("not enough players with chips")

	// ErrHandInProgress is returned by StartHand before the current hand
	// has finished.
	ErrHandInProgress = errors.New("hand in progress")
)

// IllegalActionError describes a rejected action.
type IllegalActionError struct {
	Seat   int
	Action Action
	Reason string
}

func (e *IllegalActionError) Error() string {
	return fmt.Sprintf("illegal action %s by seat %d: %s", e.Action, e.Seat, e.Reason)
}

func (e *IllegalActionError) Unwrap() error { return ErrIllegalAction }

func illegal(seat int, a Action, format string, args ...any) error {
	return &IllegalActionError{Seat: seat, Action: a, Reason: fmt.Sprintf(format, args...)}
}

// IsFatal reports whether err leaves a game unusable.
func IsFatal(err error) bool {
	switch {
	case err == nil,
		errors.Is(err, ErrIllegalAction),
		errors.Is(err, ErrNotEnoughPlayers),
		errors.Is(err, ErrHandInProgress):
		return false
	}
	return true
}
