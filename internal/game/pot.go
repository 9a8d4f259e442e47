package game

import "slices"

// Pot is one layer of the chips wagered in a hand. Eligible holds the seats
// that can win it.
type Pot struct {
	Amount   int   `json:"amount"`
	Eligible []int `json:"eligible"`
	Winners  []int `json:"winners,omitempty"` // set once the pot is awarded
}

// ComputePots partitions every chip wagered this hand into a main pot and
// side pots. Layers are cut at each distinct all-in total; whatever lies
// above the highest all-in forms the top pot. Folded players' chips stay in
// the layers they reached but never make them eligible.
//
// Chips above everything any other player put in (an uncalled bet) form a
// pot with a single eligible seat. A top layer contributed only by folded
// players is merged into the pot below it.
func ComputePots(players []*Player) []Pot {
	var tiers []int
	for _, p := range players {
		if p.InHand() && p.AllIn && p.TotalBet > 0 {
			tiers = append(tiers, p.TotalBet)
		}
	}
	slices.Sort(tiers)
	tiers = slices.Compact(tiers)

	var pots []Pot
	prev := 0
	for _, tier := range tiers {
		pot := layer(players, prev, tier)
		prev = tier
		if pot.Amount > 0 {
			pots = append(pots, pot)
		}
	}

	top := layer(players, prev, -1)
	switch {
	case top.Amount == 0:
	case len(top.Eligible) > 0 || len(pots) == 0:
		pots = append(pots, top)
	default:
		pots[len(pots)-1].Amount += top.Amount
	}
	return pots
}

// layer collects the chips each player put in between floor and ceiling.
// A negative ceiling means unbounded.
func layer(players []*Player, floor, ceiling int) Pot {
	var pot Pot
	for _, p := range players {
		chips := p.TotalBet
		if ceiling >= 0 {
			chips = min(chips, ceiling)
		}
		if chips <= floor {
			continue
		}
		pot.Amount += chips - floor
		if p.InHand() && (ceiling < 0 || p.TotalBet >= ceiling) {
			pot.Eligible = append(pot.Eligible, p.Seat)
		}
	}
	return pot
}

// TotalPot sums every chip committed this hand.
func TotalPot(players []*Player) int {
	total := 0
	for _, p := range players {
		total += p.TotalBet
	}
	return total
}
