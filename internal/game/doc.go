// Package game implements the Texas Hold'em hand engine.
//
// The main types are Game, which sequences hands over a fixed set of seats,
// and Hand, which manages a single hand including blinds, betting rounds,
// side pots and showdown.
//
// # Basic Usage
//
//	rng := randutil.New(42)
//	g := game.NewGame(rng, []string{"Alice", "Bob", "Charlie"}, 5, 10,
//	    game.WithUniformStacks(1000))
//	h, err := g.StartHand()
//	// Apply actions for h.ActivePlayer until h.IsComplete()
//	err = g.Act(h.ActivePlayer, game.Call())
//
// Or let strategies drive the hand:
//
//	outcome, err := g.PlayHand([]game.Strategy{game.CallAny, game.CheckFold, game.CallAny})
//
// # Rules
//
//   - The button moves to the next seat with chips each hand (dead button).
//     Heads-up, the button posts the small blind and acts first preflop.
//   - The big blind always gets an option preflop, even if everyone limps.
//   - An all-in raise smaller than the minimum raise does not reopen betting
//     for players who already acted.
//   - Pots are split by distinct all-in totals. Leftover chips in a split pot
//     go to the tied winners nearest clockwise from the button.
//
// # Errors
//
// Rejected actions return errors wrapping ErrIllegalAction and leave state
// untouched. Dealing and evaluation errors and ErrChipConservation are fatal:
// the Game halts and returns ErrGameHalted from every later mutation.
//
// Neither Game nor Hand is safe for concurrent use; callers serialise access.
package game
