package poker

import "math"

// HoleCardCategory is a coarse preflop strength bucket.
type HoleCardCategory string

const (
	CategoryPremium  HoleCardCategory = "Premium"
	CategoryStrong   HoleCardCategory = "Strong"
	CategoryPlayable HoleCardCategory = "Playable"
	CategoryMarginal HoleCardCategory = "Marginal"
	CategoryTrash    HoleCardCategory = "Trash"
	CategoryUnknown  HoleCardCategory = "Unknown"
)

// ChenScore scores two hole cards with the Chen formula. Scores range from
// -1 (72o) to 20 (AA).
func ChenScore(a, b Card) int {
	hi, lo := a.Rank(), b.Rank()
	if lo > hi {
		hi, lo = lo, hi
	}

	score := chenValue(hi)
	if hi == lo {
		score = math.Max(score*2, 5)
		return int(math.Ceil(score))
	}
	if a.Suit() == b.Suit() {
		score += 2
	}

	gap := int(hi) - int(lo) - 1
	switch {
	case gap == 1:
		score--
	case gap == 2:
		score -= 2
	case gap == 3:
		score -= 4
	case gap >= 4:
		score -= 5
	}
	if gap <= 1 && hi < Queen {
		score++
	}
	return int(math.Ceil(score))
}

func chenValue(rank uint8) float64 {
	switch rank {
	case Ace:
		return 10
	case King:
		return 8
	case Queen:
		return 7
	case Jack:
		return 6
	}
	return float64(rank+2) / 2
}

// CategorizeHoleCards buckets hole cards by Chen score.
// Premium is JJ+ and AK suited; Strong covers TT-99, AK/AQ and suited broadway.
func CategorizeHoleCards(a, b Card) HoleCardCategory {
	if !a.Valid() || !b.Valid() || a == b {
		return CategoryUnknown
	}
	switch score := ChenScore(a, b); {
	case score >= 12:
		return CategoryPremium
	case score >= 9:
		return CategoryStrong
	case score >= 7:
		return CategoryPlayable
	case score >= 5:
		return CategoryMarginal
	default:
		return CategoryTrash
	}
}
