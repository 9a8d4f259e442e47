package bot

import (
	"github.com/lox/holdemtrainer/internal/game"
	"github.com/lox/holdemtrainer/poker"
)

// rockBot waits for big hands and rarely puts in a raise.
type rockBot struct{ base }

func (r *rockBot) Decide(v game.View) game.Action {
	if v.Street == game.Preflop {
		switch r.category(v) {
		case poker.CategoryPremium:
			if poker.ChenScore(v.HoleCards[0], v.HoleCards[1]) >= 16 && v.CurrentBet <= v.BigBlind {
				return r.decide(v, game.RaiseTo(v.CurrentBet+v.MinRaise), "min raise monsters")
			}
			return r.decide(v, game.Call(), "premium")
		case poker.CategoryStrong:
			if v.ToCall <= 2*v.BigBlind {
				return r.decide(v, game.Call(), "strong, cheap")
			}
		}
		return r.decide(v, game.Fold(), "wait for a hand")
	}

	eq := r.equity(v)
	facingAggression := v.ToCall*2 > v.Pot
	switch {
	case eq > 0.85:
		return r.decide(v, game.RaiseTo(v.CurrentBet+v.MinRaise), "near nuts")
	case facingAggression && eq < 0.75:
		return r.decide(v, game.Fold(), "respect the bet")
	case eq > 0.55:
		return r.decide(v, game.Call(), "good enough to call")
	}
	return r.decide(v, game.Fold(), "check/fold")
}
