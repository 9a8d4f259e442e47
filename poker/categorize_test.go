package poker

import "testing"

func TestChenScore(t *testing.T) {
	t.Parallel()
	tests := []struct {
		hand string
		want int
	}{
		{"AsAh", 20},
		{"KsKh", 16},
		{"2s2h", 5},
		{"AsKs", 12},
		{"AsKh", 10},
		{"Th9h", 8}, // 5 + 2 suited + 1 connector bonus
		{"7s2h", -1},
		{"JsTs", 9},
		{"5s3s", 5}, // 2.5 + 2 - 1 gap + 1 bonus, rounded up
	}
	for _, tt := range tests {
		cards := MustParseCards(tt.hand)
		if got := ChenScore(cards[0], cards[1]); got != tt.want {
			t.Errorf("ChenScore(%s) = %d, want %d", tt.hand, got, tt.want)
		}
		if got := ChenScore(cards[1], cards[0]); got != tt.want {
			t.Errorf("ChenScore(%s) reversed = %d, want %d", tt.hand, got, tt.want)
		}
	}
}

func TestCategorizeHoleCards(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		hand     string
		expected HoleCardCategory
	}{
		{"Pocket Aces", "AsAh", CategoryPremium},
		{"Pocket Jacks", "JhJd", CategoryPremium},
		{"Ace King suited", "AsKs", CategoryPremium},
		{"Ace King offsuit", "AcKh", CategoryStrong},
		{"Pocket Tens", "TcTh", CategoryStrong},
		{"King Queen suited", "KsQs", CategoryStrong},
		{"Pocket Eights", "8d8s", CategoryPlayable},
		{"Ten Nine suited", "Th9h", CategoryPlayable},
		{"Pocket Deuces", "2c2d", CategoryMarginal},
		{"Seven Deuce", "7s2h", CategoryTrash},
		{"Duplicate card", "AsAs", CategoryUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cards := MustParseCards(tt.hand)
			if got := CategorizeHoleCards(cards[0], cards[1]); got != tt.expected {
				t.Errorf("CategorizeHoleCards(%s) = %s, want %s", tt.hand, got, tt.expected)
			}
		})
	}
}
