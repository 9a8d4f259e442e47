package bot

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdemtrainer/internal/game"
	"github.com/lox/holdemtrainer/internal/randutil"
	"github.com/lox/holdemtrainer/poker"
)

func newBot(t *testing.T, name string, seed int64) game.Strategy {
	t.Helper()
	s, err := New(name, randutil.New(seed), log.New(io.Discard))
	require.NoError(t, err)
	return s
}

func preflopView(hole string, toCall int) game.View {
	cards := poker.MustParseCards(hole)
	return game.View{
		Street:     game.Preflop,
		HoleCards:  cards,
		Pot:        15,
		CurrentBet: 10,
		ToCall:     toCall,
		Stack:      1000,
		BigBlind:   10,
		MinRaise:   10,
		Opponents:  2,
		Legal: []game.ValidAction{
			{Kind: game.ActionFold},
			{Kind: game.ActionCall, MinAmount: toCall, MaxAmount: toCall},
			{Kind: game.ActionRaise, MinAmount: 20, MaxAmount: 1000},
		},
	}
}

func TestNewResolvesAliases(t *testing.T) {
	t.Parallel()
	for alias, want := range map[string]string{
		"tag": TightAggressive, "maniac": LooseAggressive, "rock": TightPassive,
		"station": CallingStation, CallingStation: CallingStation,
	} {
		got, err := Canonical(alias)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := New("shark", randutil.New(1), nil)
	require.Error(t, err)
}

func TestPreflopPersonalities(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		bot  string
		hole string
		want game.ActionKind
	}{
		{"tag raises aces", TightAggressive, "AsAh", game.ActionRaise},
		{"tag folds trash", TightAggressive, "7s2h", game.ActionFold},
		{"rock min raises aces", TightPassive, "AsAh", game.ActionRaise},
		{"rock calls jacks", TightPassive, "JsJh", game.ActionCall},
		{"rock folds suited connectors", TightPassive, "9h8h", game.ActionFold},
		{"station calls trash", CallingStation, "7s2h", game.ActionCall},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := newBot(t, tt.bot, 1).Decide(preflopView(tt.hole, 10))
			assert.Equal(t, tt.want, a.Kind, "got %s", a)
		})
	}
}

func TestRaisesAreClampedToLegalRange(t *testing.T) {
	t.Parallel()
	v := preflopView("AsAh", 10)
	v.Legal[2] = game.ValidAction{Kind: game.ActionRaise, MinAmount: 20, MaxAmount: 25}
	a := newBot(t, TightAggressive, 1).Decide(v)
	assert.Equal(t, game.RaiseTo(25), a)

	v.Legal = v.Legal[:2]
	a = newBot(t, TightAggressive, 1).Decide(v)
	assert.Equal(t, game.Call(), a, "raise becomes a call when raising is closed")
}

func TestStationFoldsToHugeBet(t *testing.T) {
	t.Parallel()
	v := preflopView("7s2h", 600)
	v.Stack = 900
	assert.Equal(t, game.Fold(), newBot(t, CallingStation, 1).Decide(v))
}

func TestNeverFoldsWhenChecking(t *testing.T) {
	t.Parallel()
	for _, name := range Personalities() {
		v := preflopView("7s2h", 0)
		a := newBot(t, name, 3).Decide(v)
		assert.NotEqual(t, game.ActionFold, a.Kind, name)
	}
}

// Full games between all four personalities only ever produce legal actions.
func TestPersonalitiesPlayLegalGames(t *testing.T) {
	t.Parallel()
	for seed := range int64(3) {
		rng := randutil.New(seed)
		names := Personalities()
		strategies := make([]game.Strategy, len(names))
		for i, name := range names {
			strategies[i] = newBot(t, name, seed*10+int64(i))
		}
		g := game.NewGame(rng, names, 5, 10, game.WithUniformStacks(500))

		for hand := 0; hand < 60 && !g.IsOver(); hand++ {
			_, err := g.PlayHand(strategies)
			require.NoError(t, err, "seed %d hand %d", seed, hand)
			require.NoError(t, g.CheckConservation())
		}
	}
}
