package game

import (
	"slices"

	"github.com/lox/holdemtrainer/poker"
)

// View is what a strategy sees when it is asked to act.
type View struct {
	Seat       int           `json:"seat"`
	Street     Street        `json:"street"`
	HoleCards  []poker.Card  `json:"hole_cards"`
	Board      []poker.Card  `json:"board"`
	Pot        int           `json:"pot"`
	CurrentBet int           `json:"current_bet"`
	ToCall     int           `json:"to_call"`
	Stack      int           `json:"stack"`
	Bet        int           `json:"bet"`
	MinRaise   int           `json:"min_raise"`
	BigBlind   int           `json:"big_blind"`
	Button     int           `json:"button"`
	Opponents  int           `json:"opponents"` // others still contesting the pot
	SPR        float64       `json:"spr"`
	Legal      []ValidAction `json:"legal"`
}

// View builds the decision snapshot for seat.
func (h *Hand) View(seat int) View {
	p := h.Players[seat]
	pot := h.Pot()
	v := View{
		Seat:       seat,
		Street:     h.Street,
		HoleCards:  slices.Clone(p.HoleCards),
		Board:      slices.Clone(h.Board),
		Pot:        pot,
		CurrentBet: h.Betting.CurrentBet,
		ToCall:     min(max(h.Betting.CurrentBet-p.Bet, 0), p.Stack),
		Stack:      p.Stack,
		Bet:        p.Bet,
		MinRaise:   h.Betting.MinRaise,
		BigBlind:   h.BigBlind,
		Button:     h.Button,
		Opponents:  h.contesting(),
	}
	if p.InHand() {
		v.Opponents--
	}
	if pot > 0 {
		v.SPR = float64(p.Stack) / float64(pot)
	}
	if seat == h.ActivePlayer {
		v.Legal = h.LegalActions()
	}
	return v
}

// PublicPlayer is a player as shown to a particular viewer.
type PublicPlayer struct {
	Seat       int          `json:"seat"`
	Name       string       `json:"name"`
	Stack      int          `json:"stack"`
	Bet        int          `json:"bet"`
	TotalBet   int          `json:"total_bet"`
	Folded     bool         `json:"folded"`
	AllIn      bool         `json:"all_in"`
	Eliminated bool         `json:"eliminated"`
	HoleCards  []poker.Card `json:"hole_cards,omitempty"`
}

// PublicState is the hand as a given seat may see it.
type PublicState struct {
	Street         Street         `json:"street"`
	Board          []poker.Card   `json:"board"`
	Pot            int            `json:"pot"`
	CurrentBet     int            `json:"current_bet"`
	Button         int            `json:"button"`
	SmallBlindSeat int            `json:"small_blind_seat"`
	BigBlindSeat   int            `json:"big_blind_seat"`
	ActivePlayer   int            `json:"active_player"`
	Players        []PublicPlayer `json:"players"`
	Legal          []ValidAction  `json:"legal,omitempty"`
	Outcome        *Outcome       `json:"outcome,omitempty"`
}

// PublicState renders the hand for viewer. Other players' hole cards are
// only included once they are shown down; folded hands are never shown.
// A negative viewer sees no private cards.
func (h *Hand) PublicState(viewer int) PublicState {
	ps := PublicState{
		Street:         h.Street,
		Board:          slices.Clone(h.Board),
		Pot:            h.Pot(),
		CurrentBet:     h.Betting.CurrentBet,
		Button:         h.Button,
		SmallBlindSeat: h.SmallBlindSeat,
		BigBlindSeat:   h.BigBlindSeat,
		ActivePlayer:   h.ActivePlayer,
		Outcome:        h.Outcome,
	}
	for _, p := range h.Players {
		pp := PublicPlayer{
			Seat:       p.Seat,
			Name:       p.Name,
			Stack:      p.Stack,
			Bet:        p.Bet,
			TotalBet:   p.TotalBet,
			Folded:     p.Folded,
			AllIn:      p.AllIn,
			Eliminated: p.Eliminated,
		}
		if p.Seat == viewer || h.shownDown(p.Seat) {
			pp.HoleCards = slices.Clone(p.HoleCards)
		}
		ps.Players = append(ps.Players, pp)
	}
	if viewer >= 0 && viewer == h.ActivePlayer {
		ps.Legal = h.LegalActions()
	}
	return ps
}

func (h *Hand) shownDown(seat int) bool {
	if h.Outcome == nil || !h.Outcome.Showdown {
		return false
	}
	_, ok := h.Outcome.Hands[seat]
	return ok
}
