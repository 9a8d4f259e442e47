package game

import (
	"fmt"
	"slices"

	"github.com/lox/holdemtrainer/poker"
)

// HandResult is a player's best hand at showdown.
type HandResult struct {
	Rank  poker.HandRank `json:"rank"`
	Label string         `json:"label"`
}

// EvaluateHands evaluates every player still contesting the pot. Folded and
// eliminated players are never evaluated.
func EvaluateHands(players []*Player, board []poker.Card) (map[int]HandResult, error) {
	results := make(map[int]HandResult)
	for _, p := range players {
		if !p.InHand() {
			continue
		}
		rank, err := poker.Evaluate(p.HoleCards, board)
		if err != nil {
			return nil, fmt.Errorf("evaluate seat %d: %w", p.Seat, err)
		}
		results[p.Seat] = HandResult{Rank: rank, Label: rank.String()}
	}
	return results, nil
}

// Outcome records how a hand was settled.
type Outcome struct {
	Pots     []Pot              `json:"pots"`
	Payouts  map[int]int        `json:"payouts"`
	Hands    map[int]HandResult `json:"hands,omitempty"`
	Showdown bool               `json:"showdown"`
}

// Distribute awards every pot to the best eligible hands and credits the
// winners' stacks. Split pots are divided evenly; leftover chips go one at a
// time to the tied winners nearest clockwise from the button.
//
// Stacks are only credited once every chip has been assigned. If the awards
// do not add up to the chips wagered the error wraps ErrChipConservation.
func Distribute(players []*Player, board []poker.Card, button int) (*Outcome, error) {
	total := TotalPot(players)
	out := &Outcome{Payouts: make(map[int]int)}

	var contenders []*Player
	for _, p := range players {
		if p.InHand() {
			contenders = append(contenders, p)
		}
	}

	switch len(contenders) {
	case 0:
		return nil, fmt.Errorf("%w: no player left to award %d chips", ErrChipConservation, total)
	case 1:
		seat := contenders[0].Seat
		out.Pots = []Pot{{Amount: total, Eligible: []int{seat}, Winners: []int{seat}}}
		out.Payouts[seat] = total
	default:
		hands, err := EvaluateHands(players, board)
		if err != nil {
			return nil, err
		}
		out.Hands = hands
		out.Showdown = true
		out.Pots = ComputePots(players)
		for i, pot := range out.Pots {
			out.Pots[i].Winners = awardPot(out.Payouts, pot, hands, len(players), button)
		}
	}

	awarded := 0
	for _, chips := range out.Payouts {
		awarded += chips
	}
	if awarded != total {
		return nil, fmt.Errorf("%w: awarded %d of %d chips", ErrChipConservation, awarded, total)
	}

	for _, p := range players {
		p.Stack += out.Payouts[p.Seat]
	}
	return out, nil
}

// awardPot credits pot to its best eligible hands and returns the winning
// seats in odd chip order.
func awardPot(payouts map[int]int, pot Pot, hands map[int]HandResult, seats, button int) []int {
	if len(pot.Eligible) == 1 {
		payouts[pot.Eligible[0]] += pot.Amount
		return []int{pot.Eligible[0]}
	}

	var winners []int
	var best poker.HandRank
	for _, seat := range pot.Eligible {
		hr, ok := hands[seat]
		if !ok {
			continue
		}
		switch {
		case len(winners) == 0 || hr.Rank < best:
			best = hr.Rank
			winners = []int{seat}
		case hr.Rank == best:
			winners = append(winners, seat)
		}
	}
	if len(winners) == 0 {
		return nil
	}

	// Order by distance clockwise from the button for the odd chips.
	slices.SortFunc(winners, func(a, b int) int {
		return clockwise(a, button, seats) - clockwise(b, button, seats)
	})
	share, odd := pot.Amount/len(winners), pot.Amount%len(winners)
	for i, seat := range winners {
		payouts[seat] += share
		if i < odd {
			payouts[seat]++
		}
	}
	return winners
}

// clockwise returns how many seats after the button seat is, with the seat
// immediately left of the button at 0 and the button itself last.
func clockwise(seat, button, seats int) int {
	return (seat - button - 1 + seats) % seats
}
