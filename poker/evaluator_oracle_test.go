package poker

import (
	"testing"

	chehsunliu "github.com/chehsunliu/poker"
	paulhankin "github.com/paulhankin/poker"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdemtrainer/internal/randutil"
)

func toChehsunliu(cards []Card) []chehsunliu.Card {
	out := make([]chehsunliu.Card, len(cards))
	for i, c := range cards {
		out[i] = chehsunliu.NewCard(c.String())
	}
	return out
}

func toPaulhankin(t *testing.T, cards []Card) *[7]paulhankin.Card {
	t.Helper()
	suits := [4]paulhankin.Suit{paulhankin.Club, paulhankin.Diamond, paulhankin.Heart, paulhankin.Spade}
	var out [7]paulhankin.Card
	for i, c := range cards {
		// Library ranks run 1..13 with the ace as 1.
		r := paulhankin.Rank(c.Rank() + 2)
		if c.Rank() == Ace {
			r = 1
		}
		pc, err := paulhankin.MakeCard(suits[c.Suit()], r)
		require.NoError(t, err)
		out[i] = pc
	}
	return &out
}

func sign(x int) int {
	switch {
	case x < 0:
		return -1
	case x > 0:
		return 1
	}
	return 0
}

// Random pairs of seven-card hands must order the same way under our
// evaluator and two independent implementations.
func TestEvaluatorMatchesOracles(t *testing.T) {
	t.Parallel()
	rng := randutil.New(20240601)
	d := NewDeck(rng)

	for i := range 20000 {
		d.Reset()
		hole, err := d.DealHoleCards(2)
		require.NoError(t, err)
		flop, err := d.DealFlop()
		require.NoError(t, err)
		turn, err := d.DealTurn()
		require.NoError(t, err)
		river, err := d.DealRiver()
		require.NoError(t, err)
		board := []Card{flop[0], flop[1], flop[2], turn, river}

		a := append([]Card{hole[0][0], hole[0][1]}, board...)
		b := append([]Card{hole[1][0], hole[1][1]}, board...)

		ra, err := Evaluate(a[:2], board)
		require.NoError(t, err)
		rb, err := Evaluate(b[:2], board)
		require.NoError(t, err)
		ours := CompareHands(ra, rb)

		// chehsunliu: lower is stronger.
		ca, cb := chehsunliu.Evaluate(toChehsunliu(a)), chehsunliu.Evaluate(toChehsunliu(b))
		require.Equal(t, ours, sign(int(cb)-int(ca)), "hand %d: %v vs %v (chehsunliu)", i, a, b)

		// paulhankin: higher is stronger.
		pa, pb := paulhankin.Eval7(toPaulhankin(t, a)), paulhankin.Eval7(toPaulhankin(t, b))
		require.Equal(t, ours, sign(int(pa)-int(pb)), "hand %d: %v vs %v (paulhankin)", i, a, b)
	}
}

func TestCategoryMatchesChehsunliu(t *testing.T) {
	t.Parallel()
	// chehsunliu rank classes run 1 (straight flush) to 9 (high card).
	classes := map[int32]HandType{
		1: StraightFlush, 2: FourOfAKind, 3: FullHouse, 4: Flush, 5: Straight,
		6: ThreeOfAKind, 7: TwoPair, 8: Pair, 9: HighCard,
	}
	rng := randutil.New(5)
	d := NewDeck(rng)
	for range 5000 {
		d.Reset()
		hole, err := d.DealHoleCards(1)
		require.NoError(t, err)
		flop, _ := d.DealFlop()
		turn, _ := d.DealTurn()
		river, _ := d.DealRiver()
		cards := []Card{hole[0][0], hole[0][1], flop[0], flop[1], flop[2], turn, river}

		rank, err := Evaluate(cards[:2], cards[2:])
		require.NoError(t, err)
		want := classes[int32(chehsunliu.RankClass(chehsunliu.Evaluate(toChehsunliu(cards))))]
		require.Equal(t, want, rank.Type(), "%v", cards)
	}
}
