package poker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdemtrainer/internal/randutil"
)

func TestEquityAcesPreflop(t *testing.T) {
	t.Parallel()
	aces := MustParseCards("AsAh")
	eq, err := Equity(context.Background(), EquityRequest{
		Hole:      [2]Card{aces[0], aces[1]},
		Opponents: 1,
		Samples:   4000,
	}, randutil.New(1))
	require.NoError(t, err)
	assert.InDelta(t, 0.85, eq, 0.04)
}

func TestEquityMadeNuts(t *testing.T) {
	t.Parallel()
	hole := MustParseCards("AsKs")
	eq, err := Equity(context.Background(), EquityRequest{
		Hole:      [2]Card{hole[0], hole[1]},
		Board:     MustParseCards("QsJsTs2c3d"),
		Opponents: 3,
		Samples:   500,
	}, randutil.New(2))
	require.NoError(t, err)
	assert.Equal(t, 1.0, eq)
}

func TestEquityDeterministic(t *testing.T) {
	t.Parallel()
	hole := MustParseCards("7c8c")
	req := EquityRequest{Hole: [2]Card{hole[0], hole[1]}, Board: MustParseCards("9cTd2h"), Opponents: 2, Samples: 1000}
	a, err := Equity(context.Background(), req, randutil.New(11))
	require.NoError(t, err)
	b, err := Equity(context.Background(), req, randutil.New(11))
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Greater(t, a, 0.0)
	assert.Less(t, a, 1.0)
}

func TestEquityRejectsBadInput(t *testing.T) {
	t.Parallel()
	hole := MustParseCards("AsKs")
	_, err := Equity(context.Background(), EquityRequest{Hole: [2]Card{hole[0], hole[1]}}, randutil.New(1))
	require.Error(t, err)

	_, err = Equity(context.Background(), EquityRequest{
		Hole:      [2]Card{hole[0], hole[1]},
		Board:     MustParseCards("As2c3d"),
		Opponents: 1,
	}, randutil.New(1))
	require.ErrorIs(t, err, ErrInvalidHand)

	_, err = Equity(context.Background(), EquityRequest{Hole: [2]Card{hole[0], hole[1]}, Opponents: 30}, randutil.New(1))
	require.ErrorIs(t, err, ErrInsufficientCards)
}

func TestEquityCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	hole := MustParseCards("AsKs")
	_, err := Equity(ctx, EquityRequest{Hole: [2]Card{hole[0], hole[1]}, Opponents: 1, Samples: 100}, randutil.New(1))
	require.ErrorIs(t, err, context.Canceled)
}
