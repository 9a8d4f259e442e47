package game

import "github.com/lox/holdemtrainer/poker"

// Player is a seat at the table. Seat, Name and Stack persist across hands;
// the remaining fields are reset when a hand starts.
type Player struct {
	Seat  int    `json:"seat"`
	Name  string `json:"name"`
	Stack int    `json:"stack"`

	Bet       int          `json:"bet"`       // contribution this street
	TotalBet  int          `json:"total_bet"` // contribution this hand
	Folded    bool         `json:"folded"`
	AllIn     bool         `json:"all_in"`
	HoleCards []poker.Card `json:"hole_cards,omitempty"`

	// Eliminated seats keep their place but are no longer dealt in.
	Eliminated bool `json:"eliminated"`
}

// InHand reports whether the player is still contesting the pot.
func (p *Player) InHand() bool {
	return !p.Eliminated && !p.Folded
}

// CanAct reports whether the player may still make decisions this hand.
func (p *Player) CanAct() bool {
	return p.InHand() && !p.AllIn
}

func (p *Player) resetForHand() {
	p.Bet = 0
	p.TotalBet = 0
	p.Folded = false
	p.AllIn = false
	p.HoleCards = nil
	if p.Stack == 0 {
		p.Eliminated = true
	}
}

// commit moves chips from the stack into the current street bet.
func (p *Player) commit(chips int) {
	p.Stack -= chips
	p.Bet += chips
	p.TotalBet += chips
	if p.Stack == 0 {
		p.AllIn = true
	}
}
