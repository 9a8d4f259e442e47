package bot

import (
	"github.com/lox/holdemtrainer/internal/game"
	"github.com/lox/holdemtrainer/poker"
)

// lagBot plays most hands and raises whenever it can.
type lagBot struct{ base }

func (l *lagBot) Decide(v game.View) game.Action {
	short := v.Stack+v.Bet <= 15*v.BigBlind

	if v.Street == game.Preflop {
		cat := l.category(v)
		switch {
		case short && cat != poker.CategoryTrash:
			return l.decide(v, game.RaiseTo(v.Stack+v.Bet), "short stack shove")
		case cat == poker.CategoryTrash && l.rng.Float64() > 0.4:
			return l.decide(v, game.Fold(), "even maniacs fold trash sometimes")
		case l.rng.Float64() < 0.7:
			return l.decide(v, game.RaiseTo(max(4*v.BigBlind, 3*v.CurrentBet)), "raise")
		}
		return l.decide(v, game.Call(), "flat")
	}

	eq := l.equity(v)
	switch {
	case eq > 0.6 && short:
		return l.decide(v, game.RaiseTo(v.Stack+v.Bet), "shove")
	case eq > 0.35:
		return l.decide(v, potRaise(v, 1), "pot")
	case v.ToCall == 0 && l.rng.Float64() < 0.35:
		return l.decide(v, potRaise(v, 0.6), "bluff")
	case eq > potOdds(v)*0.8:
		return l.decide(v, game.Call(), "float")
	}
	return l.decide(v, game.Fold(), "give up")
}
