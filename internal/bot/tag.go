package bot

import (
	"github.com/lox/holdemtrainer/internal/game"
	"github.com/lox/holdemtrainer/poker"
)

// tagBot plays a narrow range and bets it hard.
type tagBot struct{ base }

func (t *tagBot) Decide(v game.View) game.Action {
	if v.Street == game.Preflop {
		return t.preflop(v)
	}

	eq := t.equity(v)
	switch {
	case eq > 0.75:
		return t.decide(v, potRaise(v, 0.75), "value bet")
	case eq > 0.55 && v.ToCall == 0:
		return t.decide(v, potRaise(v, 0.5), "thin value")
	case eq > potOdds(v):
		return t.decide(v, game.Call(), "priced in")
	}
	return t.decide(v, game.Fold(), "no equity")
}

func (t *tagBot) preflop(v game.View) game.Action {
	open := max(3*v.BigBlind, 3*v.CurrentBet)
	switch t.category(v) {
	case poker.CategoryPremium:
		return t.decide(v, game.RaiseTo(open), "premium")
	case poker.CategoryStrong:
		if v.CurrentBet <= v.BigBlind {
			return t.decide(v, game.RaiseTo(open), "open strong")
		}
		if v.ToCall <= 4*v.BigBlind {
			return t.decide(v, game.Call(), "strong vs raise")
		}
	case poker.CategoryPlayable:
		if v.ToCall <= v.BigBlind {
			return t.decide(v, game.Call(), "cheap look")
		}
	}
	return t.decide(v, game.Fold(), "outside range")
}
