package poker

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// EquityRequest describes a Monte Carlo equity estimate for one hand against
// a number of opponents holding random cards.
type EquityRequest struct {
	Hole      [2]Card
	Board     []Card
	Opponents int
	Samples   int
}

type equityResult struct {
	share   float64
	samples int
}

// Equity estimates the expected share of the pot hole wins at showdown. Ties
// credit an equal fraction of the pot. Work is split across workers, each
// with an independent generator seeded from rng, so results are reproducible
// for a given rng state.
func Equity(ctx context.Context, req EquityRequest, rng *rand.Rand) (float64, error) {
	if rng == nil {
		panic("rng is required for equity estimation")
	}
	if req.Opponents < 1 {
		return 0, fmt.Errorf("equity: need at least one opponent, got %d", req.Opponents)
	}
	if len(req.Board) > 5 {
		return 0, fmt.Errorf("%w: board has %d cards", ErrInvalidHand, len(req.Board))
	}

	used := NewHand(req.Hole[0], req.Hole[1])
	for _, c := range req.Board {
		if !c.Valid() || used.Contains(c) {
			return 0, fmt.Errorf("%w: bad or duplicate card %s", ErrInvalidHand, c)
		}
		used = used.Add(c)
	}
	if !req.Hole[0].Valid() || !req.Hole[1].Valid() || used.CountCards() != 2+len(req.Board) {
		return 0, fmt.Errorf("%w: bad hole cards", ErrInvalidHand)
	}

	available := make([]Card, 0, 52)
	for i := range 52 {
		c := Card(1) << i
		if !used.Contains(c) {
			available = append(available, c)
		}
	}
	if need := 5 - len(req.Board) + 2*req.Opponents; need > len(available) {
		return 0, fmt.Errorf("equity: %d opponents: %w", req.Opponents, ErrInsufficientCards)
	}

	samples := req.Samples
	if samples <= 0 {
		samples = 1000
	}
	workers := min(runtime.NumCPU(), 8, samples)

	results := make([]equityResult, workers)
	g, ctx := errgroup.WithContext(ctx)
	for w := range workers {
		n := samples / workers
		if w < samples%workers {
			n++
		}
		seed1, seed2 := rng.Uint64(), rng.Uint64()
		g.Go(func() error {
			r, err := runEquityWorker(ctx, req, available, n, rand.New(rand.NewPCG(seed1, seed2)))
			results[w] = r
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	var share float64
	var total int
	for _, r := range results {
		share += r.share
		total += r.samples
	}
	if total == 0 {
		return 0, nil
	}
	return share / float64(total), nil
}

func runEquityWorker(ctx context.Context, req EquityRequest, available []Card, n int, rng *rand.Rand) (equityResult, error) {
	deck := append([]Card(nil), available...)
	need := 5 - len(req.Board) + 2*req.Opponents
	var res equityResult

	for i := range n {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}
		// Partial Fisher-Yates: only the first need cards are drawn.
		for j := range need {
			k := j + rng.IntN(len(deck)-j)
			deck[j], deck[k] = deck[k], deck[j]
		}

		board := NewHand(req.Board...) | NewHand(deck[:5-len(req.Board)]...)
		hero, _ := EvaluateHand(board | NewHand(req.Hole[0], req.Hole[1]))

		best, ties := true, 0
		drawn := deck[5-len(req.Board) : need]
		for o := range req.Opponents {
			opp, _ := EvaluateHand(board | NewHand(drawn[2*o], drawn[2*o+1]))
			if opp < hero {
				best = false
				break
			}
			if opp == hero {
				ties++
			}
		}
		if best {
			res.share += 1 / float64(ties+1)
		}
		res.samples++
	}
	return res, nil
}
