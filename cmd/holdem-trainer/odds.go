package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/holdemtrainer/internal/randutil"
	"github.com/lox/holdemtrainer/poker"
)

type OddsCmd struct {
	Hand      string `arg:"" help:"Hole cards, e.g. 'AsKd'"`
	Board     string `short:"b" help:"Community cards, e.g. 'Td7s8h'"`
	Opponents int    `short:"o" default:"1" help:"Opponents holding random cards"`
	Samples   int    `short:"i" default:"100000" help:"Monte Carlo samples"`
	Seed      *int64 `help:"Random seed for reproducible results"`
}

var (
	handStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	categoryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12"))
)

type oddsResult struct {
	Hole     [2]poker.Card
	Board    []poker.Card
	Category poker.HoleCardCategory
	Made     string // best made hand with the current board, if any
	Equity   float64
}

func (c *OddsCmd) Run(*Globals) error {
	seed := time.Now().UnixNano()
	if c.Seed != nil {
		seed = *c.Seed
	}
	start := time.Now()
	res, err := c.compute(context.Background(), seed)
	if err != nil {
		return err
	}

	if len(res.Board) > 0 {
		fmt.Printf("%s  %s\n", headerStyle.Render("board"), formatCards(res.Board))
	}
	fmt.Printf("%s  %s  %s\n", headerStyle.Render("hand"),
		handStyle.Render(formatCards(res.Hole[:])), categoryStyle.Render(string(res.Category)))
	if res.Made != "" {
		fmt.Printf("%s  %s\n", headerStyle.Render("made"), res.Made)
	}
	fmt.Printf("%s  %s vs %d opponent(s)\n\n", headerStyle.Render("equity"),
		winStyle.Render(fmt.Sprintf("%.1f%%", res.Equity*100)), c.Opponents)
	fmt.Fprintf(os.Stdout, "%d samples in %v\n", c.Samples, time.Since(start).Truncate(time.Millisecond))
	return nil
}

func (c *OddsCmd) compute(ctx context.Context, seed int64) (oddsResult, error) {
	hole, err := poker.ParseCards(c.Hand)
	if err != nil {
		return oddsResult{}, fmt.Errorf("hand: %w", err)
	}
	if len(hole) != 2 {
		return oddsResult{}, fmt.Errorf("hand must contain exactly 2 cards, got %d", len(hole))
	}
	var board []poker.Card
	if c.Board != "" {
		if board, err = poker.ParseCards(c.Board); err != nil {
			return oddsResult{}, fmt.Errorf("board: %w", err)
		}
	}
	if n := len(board); n != 0 && (n < 3 || n > 5) {
		return oddsResult{}, fmt.Errorf("board must have 3 to 5 cards, got %d", n)
	}

	res := oddsResult{
		Hole:     [2]poker.Card{hole[0], hole[1]},
		Board:    board,
		Category: poker.CategorizeHoleCards(hole[0], hole[1]),
	}
	res.Equity, err = poker.Equity(ctx, poker.EquityRequest{
		Hole:      res.Hole,
		Board:     board,
		Opponents: c.Opponents,
		Samples:   c.Samples,
	}, randutil.New(seed))
	if err != nil {
		return oddsResult{}, err
	}
	if len(board) >= 3 {
		rank, err := poker.Evaluate(hole, board)
		if err != nil {
			return oddsResult{}, err
		}
		res.Made = rank.String()
	}
	return res, nil
}

func formatCards(cards []poker.Card) string {
	parts := make([]string, 0, len(cards))
	for _, card := range cards {
		parts = append(parts, card.String())
	}
	return strings.Join(parts, " ")
}
