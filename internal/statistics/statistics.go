// Package statistics accumulates per-seat results over simulated hands.
package statistics

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// MaxSeats bounds the positions tracked; it matches the largest table.
const MaxSeats = 10

// HandResult is one seat's outcome for a single hand.
type HandResult struct {
	NetBB    float64 // big blinds won or lost this hand
	Position int     // live seats clockwise from the button, 0 is the button
	Showdown bool    // the hand reached showdown
}

// PositionStats tracks results for one table position.
type PositionStats struct {
	Hands int
	SumBB float64
}

// Statistics tracks a seat's results in big blinds.
type Statistics struct {
	Hands  int
	SumBB  float64
	values []float64

	ShowdownBB    float64 // net from showdown hands, wins and losses
	NonShowdownBB float64

	Positions [MaxSeats]PositionStats
}

// Add incorporates a hand result.
func (s *Statistics) Add(r HandResult) {
	s.Hands++
	s.SumBB += r.NetBB
	s.values = append(s.values, r.NetBB)

	if r.Showdown {
		s.ShowdownBB += r.NetBB
	} else {
		s.NonShowdownBB += r.NetBB
	}

	if r.Position >= 0 && r.Position < MaxSeats {
		s.Positions[r.Position].Hands++
		s.Positions[r.Position].SumBB += r.NetBB
	}
}

// Mean returns the average result in big blinds per hand.
func (s *Statistics) Mean() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.SumBB / float64(s.Hands)
}

// BBPer100 returns the win rate in big blinds per hundred hands.
func (s *Statistics) BBPer100() float64 {
	return s.Mean() * 100
}

// ShowdownPer100 returns what showdown hands contributed to BBPer100.
func (s *Statistics) ShowdownPer100() float64 {
	return per100(s.ShowdownBB, s.Hands)
}

// NonShowdownPer100 returns what hands won or lost without a showdown
// contributed to BBPer100.
func (s *Statistics) NonShowdownPer100() float64 {
	return per100(s.NonShowdownBB, s.Hands)
}

func per100(sum float64, hands int) float64 {
	if hands == 0 {
		return 0
	}
	return sum / float64(hands) * 100
}

// Variance returns the unbiased sample variance.
func (s *Statistics) Variance() float64 {
	if len(s.values) < 2 {
		return 0
	}
	return stat.Variance(s.values, nil)
}

func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean.
func (s *Statistics) StdError() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Hands))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
// from the t-distribution. With fewer than two hands it collapses to the mean.
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	if s.Hands < 2 {
		return mean, mean
	}
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(s.Hands - 1)}
	margin := t.Quantile(0.975) * s.StdError()
	return mean - margin, mean + margin
}

func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the smallest recorded result with at least a p share
// of hands at or below it. p is clamped to [0, 1].
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.values) == 0 {
		return 0
	}
	sorted := slices.Clone(s.values)
	slices.Sort(sorted)
	return stat.Quantile(min(max(p, 0), 1), stat.Empirical, sorted, nil)
}

// PositionMean returns the average result from one position.
func (s *Statistics) PositionMean(position int) float64 {
	if position < 0 || position >= MaxSeats {
		return 0
	}
	ps := s.Positions[position]
	if ps.Hands == 0 {
		return 0
	}
	return ps.SumBB / float64(ps.Hands)
}

// PositionBBPer100 returns the win rate from one position.
func (s *Statistics) PositionBBPer100(position int) float64 {
	return s.PositionMean(position) * 100
}

// IsLedgerBalanced reports whether the showdown split adds up to the total.
func (s *Statistics) IsLedgerBalanced() bool {
	return math.Abs(s.SumBB-s.ShowdownBB-s.NonShowdownBB) <= 1e-6
}

// Validate checks that the counters are mutually consistent.
func (s *Statistics) Validate() error {
	if !s.IsLedgerBalanced() {
		return fmt.Errorf("ledger mismatch: total %.6f, showdown %.6f, non-showdown %.6f",
			s.SumBB, s.ShowdownBB, s.NonShowdownBB)
	}
	if len(s.values) != s.Hands {
		return fmt.Errorf("recorded %d values for %d hands", len(s.values), s.Hands)
	}
	positioned := 0
	for _, ps := range s.Positions {
		positioned += ps.Hands
	}
	if positioned != s.Hands {
		return fmt.Errorf("position hands (%d) do not match hands (%d)", positioned, s.Hands)
	}
	return nil
}
