package game

import (
	"io"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdemtrainer/internal/randutil"
	"github.com/lox/holdemtrainer/poker"
)

// stackedDeck returns a deck that deals holes[seat] to each seat with a
// non-empty entry and then the given board. Cards go out clockwise from the
// seat left of the button, as NewHand deals them.
func stackedDeck(t *testing.T, button int, holes []string, board string) *poker.Deck {
	t.Helper()
	var order []poker.Card
	for i := range holes {
		seat := (button + 1 + i) % len(holes)
		if holes[seat] == "" {
			continue
		}
		order = append(order, poker.MustParseCards(holes[seat])...)
	}

	boardCards := poker.MustParseCards(strings.ReplaceAll(board, " ", ""))
	used := poker.NewHand(order...) | poker.NewHand(boardCards...)
	var burns []poker.Card
	for i := 0; len(burns) < 3; i++ {
		c := poker.Card(1) << i
		if !used.Contains(c) {
			burns = append(burns, c)
		}
	}

	// A burn precedes the flop, the turn and the river.
	burnBefore := map[int]int{0: 0, 3: 1, 4: 2}
	for i, c := range boardCards {
		if b, ok := burnBefore[i]; ok {
			order = append(order, burns[b])
		}
		order = append(order, c)
	}
	deck, err := poker.NewStackedDeck(order)
	require.NoError(t, err)
	return deck
}

func newTestGame(t *testing.T, stacks []int, opts ...GameOption) *Game {
	t.Helper()
	names := make([]string, len(stacks))
	for i := range names {
		names[i] = string(rune('A' + i))
	}
	opts = append([]GameOption{WithStacks(stacks), WithLogger(log.New(io.Discard))}, opts...)
	return NewGame(randutil.New(42), names, 5, 10, opts...)
}

func act(t *testing.T, g *Game, seat int, a Action) {
	t.Helper()
	require.Equal(t, seat, g.Hand().ActivePlayer, "expected seat %d to act", seat)
	require.NoError(t, g.Act(seat, a))
}

// randomStrategy picks uniformly among legal actions, raising to a random
// legal size.
type randomStrategy struct{ rng *rand.Rand }

func (r randomStrategy) Decide(v View) Action {
	va := v.Legal[r.rng.IntN(len(v.Legal))]
	switch va.Kind {
	case ActionRaise:
		return RaiseTo(va.MinAmount + r.rng.IntN(va.MaxAmount-va.MinAmount+1))
	case ActionFold:
		if v.ToCall == 0 && r.rng.IntN(2) == 0 {
			return Call()
		}
		return Fold()
	}
	return Call()
}
