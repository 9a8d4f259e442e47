// Package bot provides the computer opponents. Each personality is a
// game.Strategy; New selects one by name.
package bot

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/lox/holdemtrainer/internal/game"
	"github.com/lox/holdemtrainer/internal/randutil"
	"github.com/lox/holdemtrainer/poker"
)

// Personality names accepted by New.
const (
	TightAggressive = "tight-aggressive"
	LooseAggressive = "loose-aggressive"
	TightPassive    = "tight-passive"
	CallingStation  = "calling-station"
)

var aliases = map[string]string{
	"tag":     TightAggressive,
	"lag":     LooseAggressive,
	"maniac":  LooseAggressive,
	"rock":    TightPassive,
	"station": CallingStation,
}

// Personalities lists the canonical personality names.
func Personalities() []string {
	return []string{TightAggressive, LooseAggressive, TightPassive, CallingStation}
}

// Canonical resolves aliases such as "tag" to the full personality name.
func Canonical(name string) (string, error) {
	if full, ok := aliases[name]; ok {
		return full, nil
	}
	if slices.Contains(Personalities(), name) {
		return name, nil
	}
	return "", fmt.Errorf("unknown personality %q", name)
}

// New returns the strategy for a personality. rng drives every random
// choice the bot makes, so a seeded rng replays the same decisions.
func New(name string, rng *rand.Rand, logger *log.Logger) (game.Strategy, error) {
	if rng == nil {
		panic("rng is required for bot creation")
	}
	full, err := Canonical(name)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	b := base{name: full, rng: rng, logger: logger.WithPrefix(full), samples: 300}
	switch full {
	case TightAggressive:
		return &tagBot{b}, nil
	case LooseAggressive:
		return &lagBot{b}, nil
	case TightPassive:
		return &rockBot{b}, nil
	default:
		return &stationBot{b}, nil
	}
}

type base struct {
	name    string
	rng     *rand.Rand
	logger  *log.Logger
	samples int
}

// equity estimates the bot's share of the pot against the players still in.
func (b *base) equity(v game.View) float64 {
	if len(v.HoleCards) != 2 {
		return 0
	}
	eq, err := poker.Equity(context.Background(), poker.EquityRequest{
		Hole:      [2]poker.Card{v.HoleCards[0], v.HoleCards[1]},
		Board:     v.Board,
		Opponents: max(v.Opponents, 1),
		Samples:   b.samples,
	}, randutil.Child(b.rng))
	if err != nil {
		b.logger.Warn("equity failed", "error", err)
		return 0
	}
	return eq
}

func (b *base) category(v game.View) poker.HoleCardCategory {
	if len(v.HoleCards) != 2 {
		return poker.CategoryUnknown
	}
	return poker.CategorizeHoleCards(v.HoleCards[0], v.HoleCards[1])
}

// decide clamps a to the legal actions and logs the reasoning.
func (b *base) decide(v game.View, a game.Action, reason string) game.Action {
	a = clamp(v, a)
	b.logger.Debug("decision", "seat", v.Seat, "street", v.Street, "action", a, "reason", reason)
	return a
}

// clamp turns a into the nearest legal action: raise amounts are clamped to
// the legal range and an impossible raise becomes a call.
func clamp(v game.View, a game.Action) game.Action {
	switch a.Kind {
	case game.ActionRaise:
		va, ok := game.Find(v.Legal, game.ActionRaise)
		if !ok {
			return game.Call()
		}
		return game.RaiseTo(min(max(a.Amount, va.MinAmount), va.MaxAmount))
	case game.ActionFold:
		if v.ToCall == 0 {
			return game.Call()
		}
		return game.Fold()
	default:
		return game.Call()
	}
}

// potRaise is a raise to the current bet plus frac of the pot after calling.
func potRaise(v game.View, frac float64) game.Action {
	return game.RaiseTo(v.CurrentBet + int(frac*float64(v.Pot+v.ToCall)))
}

// potOdds is the share of the final pot a call would represent.
func potOdds(v game.View) float64 {
	if v.ToCall == 0 {
		return 0
	}
	return float64(v.ToCall) / float64(v.Pot+v.ToCall)
}
