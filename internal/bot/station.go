package bot

import (
	"github.com/lox/holdemtrainer/internal/game"
	"github.com/lox/holdemtrainer/poker"
)

// stationBot calls almost anything and never raises.
type stationBot struct{ base }

func (s *stationBot) Decide(v game.View) game.Action {
	if v.ToCall*3 <= v.Stack {
		return s.decide(v, game.Call(), "calls everything")
	}

	// Facing a bet of more than a third of the stack.
	if v.Street == game.Preflop {
		switch s.category(v) {
		case poker.CategoryPremium, poker.CategoryStrong:
			return s.decide(v, game.Call(), "big hand, big call")
		}
		return s.decide(v, game.Fold(), "too expensive")
	}
	if s.equity(v) >= 0.5 {
		return s.decide(v, game.Call(), "likes the hand")
	}
	return s.decide(v, game.Fold(), "too expensive")
}
