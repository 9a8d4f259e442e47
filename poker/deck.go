package poker

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// ErrInsufficientCards is returned when a deal needs more cards than remain.
// Under correct sequencing it cannot happen.
var ErrInsufficientCards = errors.New("insufficient cards in deck")

// Deck is a 52-card deck that tracks where every card went during a hand.
// At any moment the remaining, burnt, hole and community sets are disjoint
// and together hold all 52 cards.
type Deck struct {
	cards [52]Card
	next  int
	rng   *rand.Rand

	stacked   []Card // fixed dealing order used by Reset when rng is nil
	burnt     Hand
	hole      Hand
	community Hand
}

// NewDeck creates a shuffled deck using rng.
func NewDeck(rng *rand.Rand) *Deck {
	if rng == nil {
		panic("rng is required for deck creation")
	}
	d := &Deck{rng: rng}
	d.Reset()
	return d
}

// NewStackedDeck creates a deck that deals the given cards first, in order,
// followed by every other card in canonical order. Reset restores the same
// order, which keeps tests deterministic across hands.
func NewStackedDeck(order []Card) (*Deck, error) {
	seen := Hand(0)
	for _, c := range order {
		if !c.Valid() {
			return nil, fmt.Errorf("stacked deck: invalid card %#x", uint64(c))
		}
		if seen.Contains(c) {
			return nil, fmt.Errorf("stacked deck: duplicate card %s", c)
		}
		seen = seen.Add(c)
	}
	d := &Deck{stacked: append([]Card(nil), order...)}
	d.Reset()
	return d, nil
}

// Reset rebuilds the full deck, reshuffles it and clears all dealt and burnt
// tracking. It must be called once per hand.
func (d *Deck) Reset() {
	d.next = 0
	d.burnt, d.hole, d.community = 0, 0, 0

	if d.rng == nil {
		d.fillStacked()
		return
	}

	i := 0
	for suit := range uint8(4) {
		for rank := range uint8(13) {
			d.cards[i] = NewCard(rank, suit)
			i++
		}
	}
	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

func (d *Deck) fillStacked() {
	used := NewHand(d.stacked...)
	i := copy(d.cards[:], d.stacked)
	for suit := range uint8(4) {
		for rank := range uint8(13) {
			c := NewCard(rank, suit)
			if !used.Contains(c) {
				d.cards[i] = c
				i++
			}
		}
	}
}

// Remaining returns the number of undealt cards.
func (d *Deck) Remaining() int {
	return len(d.cards) - d.next
}

// Burnt returns the burnt cards.
func (d *Deck) Burnt() []Card { return d.burnt.Cards() }

// Community returns the community cards dealt so far as a set.
func (d *Deck) Community() Hand { return d.community }

func (d *Deck) take(n int) []Card {
	out := make([]Card, n)
	copy(out, d.cards[d.next:d.next+n])
	d.next += n
	return out
}

// DealHoleCards deals two cards to each of n players. Player i receives the
// i-th pair from the top of the deck.
func (d *Deck) DealHoleCards(n int) ([][2]Card, error) {
	if n < 0 || 2*n > d.Remaining() {
		return nil, fmt.Errorf("deal %d hole cards with %d remaining: %w", 2*n, d.Remaining(), ErrInsufficientCards)
	}
	out := make([][2]Card, n)
	for i := range out {
		pair := d.take(2)
		out[i] = [2]Card{pair[0], pair[1]}
		d.hole |= NewHand(pair...)
	}
	return out, nil
}

// DealFlop burns one card and deals three community cards.
func (d *Deck) DealFlop() ([3]Card, error) {
	if d.Remaining() < 4 {
		return [3]Card{}, fmt.Errorf("deal flop with %d remaining: %w", d.Remaining(), ErrInsufficientCards)
	}
	d.burn()
	cards := d.take(3)
	d.community |= NewHand(cards...)
	return [3]Card{cards[0], cards[1], cards[2]}, nil
}

// DealTurn burns one card and deals the fourth community card.
func (d *Deck) DealTurn() (Card, error) {
	return d.dealStreetCard("turn")
}

// DealRiver burns one card and deals the fifth community card.
func (d *Deck) DealRiver() (Card, error) {
	return d.dealStreetCard("river")
}

func (d *Deck) dealStreetCard(street string) (Card, error) {
	if d.Remaining() < 2 {
		return 0, fmt.Errorf("deal %s with %d remaining: %w", street, d.Remaining(), ErrInsufficientCards)
	}
	d.burn()
	c := d.take(1)[0]
	d.community |= Hand(c)
	return c, nil
}

func (d *Deck) burn() {
	d.burnt |= Hand(d.take(1)[0])
}

// CheckConservation verifies that the remaining, burnt, hole and community
// sets are pairwise disjoint and cover the whole deck.
func (d *Deck) CheckConservation() error {
	var remaining Hand
	for _, c := range d.cards[d.next:] {
		if remaining.Contains(c) {
			return fmt.Errorf("card %s appears twice in the remaining pile", c)
		}
		remaining = remaining.Add(c)
	}
	sets := []Hand{remaining, d.burnt, d.hole, d.community}
	var union Hand
	total := 0
	for _, s := range sets {
		if union&s != 0 {
			return fmt.Errorf("card sets overlap: %s", (union & s).String())
		}
		union |= s
		total += s.CountCards()
	}
	if total != 52 || union.CountCards() != 52 {
		return fmt.Errorf("deck accounts for %d cards, want 52", total)
	}
	return nil
}

// DeckState is the serialisable form of a deck mid-hand.
type DeckState struct {
	Remaining []Card `json:"remaining"`
	Burnt     []Card `json:"burnt"`
	Hole      []Card `json:"hole"`
	Community []Card `json:"community"`
}

// State captures the deck so that it can be restored exactly.
func (d *Deck) State() DeckState {
	return DeckState{
		Remaining: append([]Card(nil), d.cards[d.next:]...),
		Burnt:     d.burnt.Cards(),
		Hole:      d.hole.Cards(),
		Community: d.community.Cards(),
	}
}

// RestoreDeck rebuilds a deck from a captured state. rng is used by later
// Resets; a nil rng restores the deck as stacked on the captured order.
func RestoreDeck(state DeckState, rng *rand.Rand) (*Deck, error) {
	d := &Deck{rng: rng}
	d.burnt = NewHand(state.Burnt...)
	d.hole = NewHand(state.Hole...)
	d.community = NewHand(state.Community...)

	dealt := len(state.Burnt) + len(state.Hole) + len(state.Community)
	if dealt+len(state.Remaining) != 52 {
		return nil, fmt.Errorf("restore deck: %d cards recorded, want 52", dealt+len(state.Remaining))
	}
	// Dealt cards occupy the front of the array; their order no longer matters.
	i := 0
	for _, set := range []Hand{d.burnt, d.hole, d.community} {
		for _, c := range set.Cards() {
			d.cards[i] = c
			i++
		}
	}
	d.next = i
	copy(d.cards[i:], state.Remaining)
	if rng == nil {
		d.stacked = append([]Card(nil), state.Remaining...)
	}
	if err := d.CheckConservation(); err != nil {
		return nil, fmt.Errorf("restore deck: %w", err)
	}
	return d, nil
}
