package poker

import (
	"errors"
	"fmt"
	"math/bits"
)

// ErrInvalidHand is returned when a hand cannot be evaluated, e.g. fewer than
// five cards or a duplicated card.
var ErrInvalidHand = errors.New("invalid hand")

// HandRank represents the strength of a poker hand. Lower values are stronger
// and equal values tie.
type HandRank uint32

// HandType enumerates the categories of poker hands ordered from weakest to strongest.
type HandType uint8

const (
	HighCard HandType = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

func (t HandType) String() string {
	return [...]string{
		"High Card", "Pair", "Two Pair", "Three of a Kind", "Straight",
		"Flush", "Full House", "Four of a Kind", "Straight Flush",
	}[t]
}

// A strength packs the category above five 4-bit rank slots, most
// significant first. HandRank inverts it so that smaller is better.
const (
	categoryShift = 20
	maxStrength   = uint32(StraightFlush+1) << categoryShift
)

func makeRank(t HandType, ranks ...uint8) HandRank {
	s := uint32(t) << categoryShift
	for i, r := range ranks {
		s |= uint32(r) << (16 - 4*uint(i))
	}
	return HandRank(maxStrength - s)
}

func (hr HandRank) strength() uint32 { return maxStrength - uint32(hr) }

// Type returns the category of the hand.
func (hr HandRank) Type() HandType {
	return HandType(hr.strength() >> categoryShift)
}

// HighRank returns the primary rank of the hand: the top card of a straight,
// the quads/trips/pair rank, or the highest card.
func (hr HandRank) HighRank() uint8 {
	return uint8(hr.strength()>>16) & 0xF
}

// String returns the display label for the hand category.
func (hr HandRank) String() string {
	if hr.Type() == StraightFlush && hr.HighRank() == Ace {
		return "Royal Flush"
	}
	return hr.Type().String()
}

// Evaluate returns the rank of the best five-card hand that can be made from
// the union of hole and community cards. Between five and seven distinct
// cards are required.
func Evaluate(hole, board []Card) (HandRank, error) {
	var h Hand
	for _, set := range [][]Card{hole, board} {
		for _, c := range set {
			if !c.Valid() {
				return 0, fmt.Errorf("%w: invalid card %#x", ErrInvalidHand, uint64(c))
			}
			if h.Contains(c) {
				return 0, fmt.Errorf("%w: duplicate card %s", ErrInvalidHand, c)
			}
			h = h.Add(c)
		}
	}
	return EvaluateHand(h)
}

// EvaluateHand evaluates a set of five to seven cards.
func EvaluateHand(h Hand) (HandRank, error) {
	if n := h.CountCards(); n < 5 || n > 7 {
		return 0, fmt.Errorf("%w: need 5-7 cards, have %d", ErrInvalidHand, n)
	}
	if uint64(h)>>52 != 0 {
		return 0, fmt.Errorf("%w: card bits out of range", ErrInvalidHand)
	}
	return evaluateMasks(h), nil
}

// CompareHands returns 1 if a is stronger, -1 if b is stronger and 0 for a tie.
func CompareHands(a, b HandRank) int {
	switch {
	case a < b:
		return 1
	case a > b:
		return -1
	}
	return 0
}

func evaluateMasks(h Hand) HandRank {
	var suitMasks [4]uint16
	var rankMask uint16
	for suit := range uint8(4) {
		suitMasks[suit] = h.GetSuitMask(suit)
		rankMask |= suitMasks[suit]
	}

	// With at most seven cards a flush excludes quads and full houses, so
	// only a straight flush can beat it.
	for _, mask := range suitMasks {
		if bits.OnesCount16(mask) < 5 {
			continue
		}
		if high, ok := straightHigh(mask); ok {
			return makeRank(StraightFlush, high)
		}
		return makeRank(Flush, topRanks(mask, 5)...)
	}

	s0, s1, s2, s3 := suitMasks[0], suitMasks[1], suitMasks[2], suitMasks[3]
	quads := s0 & s1 & s2 & s3
	tripsOrBetter := (s0 & s1 & s2) | (s0 & s1 & s3) | (s0 & s2 & s3) | (s1 & s2 & s3)
	trips := tripsOrBetter &^ quads
	pairs := ((s0 & s1) | (s0 & s2) | (s0 & s3) | (s1 & s2) | (s1 & s3) | (s2 & s3)) &^ tripsOrBetter

	if quads != 0 {
		q := highest(quads)
		return makeRank(FourOfAKind, q, highest(rankMask&^bit(q)))
	}

	if trips != 0 {
		t := highest(trips)
		// A second set of trips plays as the pair of a full house.
		if rest := (trips &^ bit(t)) | pairs; rest != 0 {
			return makeRank(FullHouse, t, highest(rest))
		}
	}

	if high, ok := straightHigh(rankMask); ok {
		return makeRank(Straight, high)
	}

	if trips != 0 {
		t := highest(trips)
		return makeRank(ThreeOfAKind, append([]uint8{t}, topRanks(rankMask&^bit(t), 2)...)...)
	}

	if pairs != 0 {
		p1 := highest(pairs)
		if rest := pairs &^ bit(p1); rest != 0 {
			p2 := highest(rest)
			kicker := highest(rankMask &^ bit(p1) &^ bit(p2))
			return makeRank(TwoPair, p1, p2, kicker)
		}
		return makeRank(Pair, append([]uint8{p1}, topRanks(rankMask&^bit(p1), 3)...)...)
	}

	return makeRank(HighCard, topRanks(rankMask, 5)...)
}

func bit(rank uint8) uint16 { return 1 << rank }

// highest returns the highest rank set in mask. mask must be non-zero.
func highest(mask uint16) uint8 {
	return uint8(bits.Len16(mask) - 1)
}

// topRanks returns the n highest ranks in mask, descending.
func topRanks(mask uint16, n int) []uint8 {
	out := make([]uint8, 0, n)
	for len(out) < n && mask != 0 {
		r := highest(mask)
		out = append(out, r)
		mask &^= bit(r)
	}
	return out
}

// straightHigh returns the top rank of the best straight in mask. The wheel
// (A-2-3-4-5) reports Five; ranks never wrap past the ace (K-A-2-3-4 is not
// a straight).
func straightHigh(mask uint16) (uint8, bool) {
	mask &= 0x1FFF
	if seq := mask & (mask >> 1) & (mask >> 2) & (mask >> 3) & (mask >> 4); seq != 0 {
		return highest(seq) + 4, true
	}
	const wheel = 0x100F // A + 2-3-4-5
	if mask&wheel == wheel {
		return Five, true
	}
	return 0, false
}
