package main

import (
	"bytes"
	"context"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/lox/holdemtrainer/internal/bot"
	"github.com/lox/holdemtrainer/internal/game"
	"github.com/lox/holdemtrainer/internal/statistics"
	"github.com/lox/holdemtrainer/poker"
)

func TestOddsCompute(t *testing.T) {
	tests := []struct {
		name     string
		cmd      OddsCmd
		category poker.HoleCardCategory
		made     string
		minEq    float64
		maxEq    float64
		hasError bool
	}{
		{
			name:     "Pocket aces preflop",
			cmd:      OddsCmd{Hand: "AsAh", Opponents: 1, Samples: 5000},
			category: poker.CategoryPremium,
			minEq:    0.8,
			maxEq:    0.9,
		},
		{
			name:     "Set on the flop",
			cmd:      OddsCmd{Hand: "7c7d", Board: "7h Kc 2s", Opponents: 1, Samples: 5000},
			made:     "Three of a Kind",
			minEq:    0.85,
			maxEq:    1,
		},
		{
			name:  "Nut flush on the river",
			cmd:   OddsCmd{Hand: "AhKh", Board: "2h5h9hTcJd", Opponents: 2, Samples: 2000},
			made:  "Flush",
			minEq: 0.95,
			maxEq: 1,
		},
		{
			name:     "Three hole cards",
			cmd:      OddsCmd{Hand: "AsKsQs", Opponents: 1},
			hasError: true,
		},
		{
			name:     "Board of two",
			cmd:      OddsCmd{Hand: "AsKs", Board: "2c3c", Opponents: 1},
			hasError: true,
		},
		{
			name:     "Duplicate card",
			cmd:      OddsCmd{Hand: "AsKs", Board: "As2c3c", Opponents: 1},
			hasError: true,
		},
		{
			name:     "Invalid card",
			cmd:      OddsCmd{Hand: "AsXx", Opponents: 1},
			hasError: true,
		},
		{
			name:     "No opponents",
			cmd:      OddsCmd{Hand: "AsKs", Opponents: 0},
			hasError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res, err := tt.cmd.compute(context.Background(), 42)
			if tt.hasError {
				if err == nil {
					t.Fatalf("expected error, got %+v", res)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.category != "" && res.Category != tt.category {
				t.Errorf("category = %s, want %s", res.Category, tt.category)
			}
			if res.Made != tt.made {
				t.Errorf("made = %q, want %q", res.Made, tt.made)
			}
			if res.Equity < tt.minEq || res.Equity > tt.maxEq {
				t.Errorf("equity = %.3f, want between %.2f and %.2f", res.Equity, tt.minEq, tt.maxEq)
			}
		})
	}
}

func TestOddsComputeReproducible(t *testing.T) {
	cmd := OddsCmd{Hand: "QsJs", Board: "Ts9d2c", Opponents: 3, Samples: 3000}
	a, err := cmd.compute(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	b, err := cmd.compute(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if a.Equity != b.Equity {
		t.Errorf("same seed gave %.4f and %.4f", a.Equity, b.Equity)
	}
}

func TestFill(t *testing.T) {
	got := fill([]string{"a", "b"}, 5)
	want := []string{"a", "b", "a", "b", "a"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("fill = %v, want %v", got, want)
	}
}

func testSpec(seed int64, hands int) tableSpec {
	return tableSpec{
		table:         1,
		seed:          seed,
		hands:         hands,
		personalities: fill(bot.Personalities(), 4),
		stack:         200,
		smallBlind:    5,
		bigBlind:      10,
	}
}

func TestSimulateTable(t *testing.T) {
	logger := log.New(io.Discard)
	res, err := simulateTable(context.Background(), testSpec(3, 40), logger)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if res.Hands < 1 || res.Hands > 40 {
		t.Fatalf("played %d hands", res.Hands)
	}
	if len(res.Seats) != 4 {
		t.Fatalf("got %d seats", len(res.Seats))
	}

	total, net := 0, 0
	for _, s := range res.Seats {
		total += s.Stack
		net += s.Net
		if s.EliminatedAt > 0 && s.Stack != 0 {
			t.Errorf("seat %d eliminated with %d chips", s.Seat, s.Stack)
		}
		if s.Net != s.Stack-200 {
			t.Errorf("seat %d net %d for stack %d", s.Seat, s.Net, s.Stack)
		}
		if got := s.Stats.SumBB * 10; math.Abs(got-float64(s.Net)) > 1e-6 {
			t.Errorf("seat %d tracked %.1f chips, net %d", s.Seat, got, s.Net)
		}
		if s.Stats.Hands > res.Hands {
			t.Errorf("seat %d tracked %d of %d hands", s.Seat, s.Stats.Hands, res.Hands)
		}
		if s.Stats.Hands > 0 && s.Stats.Positions[0].Hands == 0 && res.Hands >= 8 && s.EliminatedAt == 0 {
			t.Errorf("seat %d never recorded a hand on the button", s.Seat)
		}
	}
	if total != 800 {
		t.Errorf("chips not conserved: %d", total)
	}
	if net != 0 {
		t.Errorf("net results sum to %d", net)
	}
}

func TestSimulateTableDeterministic(t *testing.T) {
	logger := log.New(io.Discard)
	a, err := simulateTable(context.Background(), testSpec(11, 15), logger)
	if err != nil {
		t.Fatal(err)
	}
	b, err := simulateTable(context.Background(), testSpec(11, 15), logger)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a.Seats {
		x, y := a.Seats[i], b.Seats[i]
		if x.Stack != y.Stack || x.PotsWon != y.PotsWon || x.EliminatedAt != y.EliminatedAt || x.Stats.SumBB != y.Stats.SumBB {
			t.Errorf("seat %d differs: %+v vs %+v", i, x, y)
		}
	}
}

func TestSimulateTableCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := simulateTable(ctx, testSpec(1, 10), log.New(io.Discard))
	if err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestLivePosition(t *testing.T) {
	tests := []struct {
		name   string
		before []int
		button int
		seat   int
		want   int
	}{
		{name: "button", before: []int{100, 100, 100}, button: 1, seat: 1, want: 0},
		{name: "next seat", before: []int{100, 100, 100}, button: 1, seat: 2, want: 1},
		{name: "wraps", before: []int{100, 100, 100}, button: 1, seat: 0, want: 2},
		{name: "skips eliminated", before: []int{100, 0, 100, 100}, button: 0, seat: 2, want: 1},
		{name: "skips eliminated across wrap", before: []int{100, 0, 0, 100, 100}, button: 3, seat: 0, want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := livePosition(tt.before, tt.button, tt.seat); got != tt.want {
				t.Errorf("livePosition = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPotsWon(t *testing.T) {
	// Seat 1 lost the called pot and got its uncalled excess back.
	showdown := &game.Outcome{
		Showdown: true,
		Pots: []game.Pot{
			{Amount: 200, Eligible: []int{0, 1}, Winners: []int{0}},
			{Amount: 200, Eligible: []int{1}, Winners: []int{1}},
		},
	}
	if got := potsWon(showdown); len(got) != 1 || got[0] != 1 {
		t.Errorf("showdown pots won = %v, want only seat 0", got)
	}

	uncontested := &game.Outcome{
		Pots: []game.Pot{{Amount: 30, Eligible: []int{2}, Winners: []int{2}}},
	}
	if got := potsWon(uncontested); got[2] != 1 {
		t.Errorf("uncontested pots won = %v, want seat 2", got)
	}

	split := &game.Outcome{
		Showdown: true,
		Pots: []game.Pot{
			{Amount: 300, Eligible: []int{0, 1, 2}, Winners: []int{1, 2}},
			{Amount: 100, Eligible: []int{1, 2}, Winners: []int{2}},
		},
	}
	if got := potsWon(split); got[1] != 1 || got[2] != 2 || got[0] != 0 {
		t.Errorf("split pots won = %v", got)
	}
}

func TestRenderSummary(t *testing.T) {
	var stats statistics.Statistics
	stats.Add(statistics.HandResult{NetBB: 4, Position: 0, Showdown: true})
	stats.Add(statistics.HandResult{NetBB: -1, Position: 1})

	var buf bytes.Buffer
	renderSummary(&buf, []tableResult{{
		Table: 1,
		Seed:  99,
		Hands: 12,
		Seats: []seatResult{
			{Seat: 0, Name: "tight-aggressive-0", Stack: 250, Net: 50, PotsWon: 4, Stats: stats},
			{Seat: 1, Name: "calling-station-1", Stack: 0, Net: -200, EliminatedAt: 9},
		},
	}})
	out := buf.String()
	for _, want := range []string{
		"table 1: 12 hands (seed 99)", "tight-aggressive-0", "+50", "-200", "hand 9",
		"bb/100 by position", "btn", "+1", "150.0", "400.0", "-100.0", "200.0", "-50.0", "-1.0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
