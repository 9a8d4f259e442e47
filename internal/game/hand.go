package game

import (
	"fmt"

	"github.com/lox/holdemtrainer/poker"
)

// Hand is the state of a single hand of poker. Players is the full seat
// list; eliminated seats are carried along but never dealt in. Hand has no
// internal locking and expects one caller at a time.
type Hand struct {
	Players        []*Player
	Button         int
	SmallBlindSeat int
	BigBlindSeat   int
	SmallBlind     int
	BigBlind       int
	Street         Street
	Board          []poker.Card
	ActivePlayer   int // -1 once nobody is due to act
	Betting        *BettingRound
	Outcome        *Outcome // set once the hand is settled

	deck *poker.Deck
}

// NewHand resets the deck and players, deals hole cards clockwise from the
// seat left of the button and posts the blinds. Heads-up the button posts
// the small blind.
func NewHand(deck *poker.Deck, players []*Player, button, smallBlind, bigBlind int) (*Hand, error) {
	if deck == nil {
		panic("deck is required for hand creation")
	}
	if smallBlind < 0 || bigBlind <= 0 || smallBlind > bigBlind {
		return nil, fmt.Errorf("invalid blinds %d/%d", smallBlind, bigBlind)
	}
	if button < 0 || button >= len(players) {
		return nil, fmt.Errorf("button %d out of range", button)
	}

	for _, p := range players {
		p.resetForHand()
	}
	if players[button].Eliminated {
		return nil, fmt.Errorf("button on eliminated seat %d", button)
	}

	h := &Hand{
		Players:      players,
		Button:       button,
		SmallBlind:   smallBlind,
		BigBlind:     bigBlind,
		Street:       Preflop,
		ActivePlayer: -1,
		Betting:      NewBettingRound(len(players), bigBlind),
		deck:         deck,
	}

	live := h.liveSeatsFrom(button + 1)
	if len(live) < 2 {
		return nil, ErrNotEnoughPlayers
	}
	if len(live) == 2 {
		h.SmallBlindSeat, h.BigBlindSeat = button, live[0]
	} else {
		h.SmallBlindSeat, h.BigBlindSeat = live[0], live[1]
	}

	deck.Reset()
	hole, err := deck.DealHoleCards(len(live))
	if err != nil {
		return nil, err
	}
	for i, seat := range live {
		players[seat].HoleCards = []poker.Card{hole[i][0], hole[i][1]}
	}

	sb, bb := players[h.SmallBlindSeat], players[h.BigBlindSeat]
	sb.commit(min(smallBlind, sb.Stack))
	bb.commit(min(bigBlind, bb.Stack))
	h.Betting.CurrentBet = bigBlind

	first := h.BigBlindSeat + 1
	if len(live) == 2 {
		first = button
	}
	if next := h.nextToAct(first); next >= 0 {
		h.ActivePlayer = next
		return h, nil
	}
	// Blinds put everyone all-in.
	if err := h.endStreet(); err != nil {
		return nil, err
	}
	return h, nil
}

// liveSeatsFrom lists seats that are dealt in, clockwise starting at from.
func (h *Hand) liveSeatsFrom(from int) []int {
	n := len(h.Players)
	var seats []int
	for i := range n {
		seat := (from + i) % n
		if !h.Players[seat].Eliminated {
			seats = append(seats, seat)
		}
	}
	return seats
}

// nextToAct returns the first seat clockwise from from (inclusive) that
// still has a decision to make, or -1.
func (h *Hand) nextToAct(from int) int {
	n := len(h.Players)
	for i := range n {
		seat := ((from+i)%n + n) % n
		if h.Betting.NeedsAction(h.Players, seat) {
			return seat
		}
	}
	return -1
}

func (h *Hand) contesting() int {
	count := 0
	for _, p := range h.Players {
		if p.InHand() {
			count++
		}
	}
	return count
}

// IsComplete reports whether the hand has been settled.
func (h *Hand) IsComplete() bool {
	return h.Outcome != nil
}

// Pot returns the chips wagered this hand that have not yet been awarded.
func (h *Hand) Pot() int {
	if h.IsComplete() {
		return 0
	}
	return TotalPot(h.Players)
}

// LegalActions returns the legal decisions for the player due to act.
func (h *Hand) LegalActions() []ValidAction {
	if h.IsComplete() || h.ActivePlayer < 0 {
		return nil
	}
	return h.Betting.ValidActions(h.Players, h.ActivePlayer)
}

// ProcessAction applies an action for seat. Every check happens before any
// state changes, so a rejected action leaves the hand untouched. When the
// action closes the street the next street is dealt, running the board out
// when no further betting is possible and settling the hand at the end.
func (h *Hand) ProcessAction(seat int, a Action) error {
	if h.IsComplete() {
		return illegal(seat, a, "hand is complete")
	}
	if seat != h.ActivePlayer {
		return illegal(seat, a, "not your turn, seat %d to act", h.ActivePlayer)
	}

	p := h.Players[seat]
	switch a.Kind {
	case ActionFold:
		if a.Amount != 0 {
			return illegal(seat, a, "fold takes no amount")
		}
		p.Folded = true
		h.Betting.markActed(seat)

	case ActionCall:
		if a.Amount != 0 {
			return illegal(seat, a, "call takes no amount")
		}
		p.commit(min(h.Betting.CurrentBet-p.Bet, p.Stack))
		h.Betting.markActed(seat)

	case ActionRaise:
		va, ok := Find(h.Betting.ValidActions(h.Players, seat), ActionRaise)
		if !ok {
			return illegal(seat, a, "raising is not allowed")
		}
		if a.Amount < va.MinAmount || a.Amount > va.MaxAmount {
			return illegal(seat, a, "raise must be to between %d and %d", va.MinAmount, va.MaxAmount)
		}
		p.commit(a.Amount - p.Bet)
		h.Betting.raise(seat, a.Amount)

	default:
		return illegal(seat, a, "unknown action")
	}

	return h.advance(seat + 1)
}

// ForceFold folds seat out of turn, e.g. after a disconnect.
func (h *Hand) ForceFold(seat int) error {
	if seat < 0 || seat >= len(h.Players) {
		return fmt.Errorf("seat %d out of range", seat)
	}
	p := h.Players[seat]
	if h.IsComplete() || !p.InHand() {
		return nil
	}
	p.Folded = true
	h.Betting.markActed(seat)

	if h.ActivePlayer != seat && h.ActivePlayer >= 0 && h.Betting.NeedsAction(h.Players, h.ActivePlayer) {
		if h.contesting() == 1 {
			return h.settle()
		}
		return nil
	}
	return h.advance(h.ActivePlayer + 1)
}

func (h *Hand) advance(from int) error {
	if h.contesting() == 1 {
		return h.settle()
	}
	if next := h.nextToAct(from); next >= 0 {
		h.ActivePlayer = next
		return nil
	}
	return h.endStreet()
}

// endStreet closes the current street and deals the next one, repeating
// while nobody can bet.
func (h *Hand) endStreet() error {
	h.ActivePlayer = -1
	for {
		for _, p := range h.Players {
			p.Bet = 0
		}
		h.Betting.ResetForNewRound()

		if h.Street == River {
			h.Street = Showdown
			return h.settle()
		}
		if err := h.dealNextStreet(); err != nil {
			return err
		}
		if next := h.nextToAct(h.Button + 1); next >= 0 {
			h.ActivePlayer = next
			return nil
		}
	}
}

func (h *Hand) dealNextStreet() error {
	switch h.Street {
	case Preflop:
		flop, err := h.deck.DealFlop()
		if err != nil {
			return err
		}
		h.Board = append(h.Board, flop[:]...)
	case Flop, Turn:
		deal := h.deck.DealTurn
		if h.Street == Turn {
			deal = h.deck.DealRiver
		}
		c, err := deal()
		if err != nil {
			return err
		}
		h.Board = append(h.Board, c)
	}
	h.Street++
	return nil
}

func (h *Hand) settle() error {
	out, err := Distribute(h.Players, h.Board, h.Button)
	if err != nil {
		return err
	}
	h.Outcome = out
	h.ActivePlayer = -1
	for _, p := range h.Players {
		p.Bet = 0
		if p.Stack == 0 {
			p.Eliminated = true
		}
	}
	return nil
}

// RunStreet asks strategies (indexed by seat) for decisions until the
// current street closes. It returns the chips wagered so far and the
// number of players still contesting the pot.
func (h *Hand) RunStreet(strategies []Strategy) (pot, active int, err error) {
	street := h.Street
	for !h.IsComplete() && h.Street == street {
		seat := h.ActivePlayer
		if seat >= len(strategies) || strategies[seat] == nil {
			return 0, 0, fmt.Errorf("no strategy for seat %d", seat)
		}
		if err := h.ProcessAction(seat, strategies[seat].Decide(h.View(seat))); err != nil {
			return 0, 0, err
		}
	}
	return TotalPot(h.Players), h.contesting(), nil
}
