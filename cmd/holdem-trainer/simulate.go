package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/holdemtrainer/internal/bot"
	"github.com/lox/holdemtrainer/internal/game"
	"github.com/lox/holdemtrainer/internal/randutil"
	"github.com/lox/holdemtrainer/internal/statistics"
)

type SimulateCmd struct {
	Hands         int      `default:"1000" help:"Maximum hands per table"`
	Tables        int      `default:"1" help:"Independent tables to run in parallel"`
	Seats         int      `default:"6" help:"Seats per table"`
	Personalities []string `short:"P" help:"Personalities by seat, repeated to fill the table (default: all)"`
	Stack         int      `default:"1000" help:"Starting stack"`
	SmallBlind    int      `default:"5" help:"Small blind"`
	BigBlind      int      `default:"10" help:"Big blind"`
	Seed          *int64   `help:"Random seed for reproducible results"`
}

type tableSpec struct {
	table         int
	seed          int64
	hands         int
	personalities []string
	stack         int
	smallBlind    int
	bigBlind      int
}

type seatResult struct {
	Seat         int
	Name         string
	Personality  string
	Stack        int
	Net          int
	PotsWon      int
	EliminatedAt int // hand number, 0 if still seated
	Stats        statistics.Statistics
}

type tableResult struct {
	Table int
	Seed  int64
	Hands int
	Seats []seatResult
}

func (c *SimulateCmd) Run(g *Globals) error {
	if c.Seats < 2 || c.Seats > 10 {
		return fmt.Errorf("seats must be between 2 and 10, got %d", c.Seats)
	}
	if c.Tables < 1 || c.Hands < 1 {
		return fmt.Errorf("need at least one table and one hand")
	}
	if c.SmallBlind < 0 || c.BigBlind <= 0 || c.SmallBlind > c.BigBlind || c.Stack <= 0 {
		return fmt.Errorf("invalid stakes %d/%d with stack %d", c.SmallBlind, c.BigBlind, c.Stack)
	}
	personalities := c.Personalities
	if len(personalities) == 0 {
		personalities = bot.Personalities()
	}
	for _, p := range personalities {
		if _, err := bot.Canonical(p); err != nil {
			return err
		}
	}

	level := g.LogLevel
	if level == "" {
		level = "warn"
	}
	logger := newLogger(os.Stderr, level)

	seed := time.Now().UnixNano()
	if c.Seed != nil {
		seed = *c.Seed
	}
	seeds := randutil.New(seed)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	results := make([]tableResult, c.Tables)
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.NumCPU())
	for i := range c.Tables {
		spec := tableSpec{
			table:         i + 1,
			seed:          seeds.Int64(),
			hands:         c.Hands,
			personalities: fill(personalities, c.Seats),
			stack:         c.Stack,
			smallBlind:    c.SmallBlind,
			bigBlind:      c.BigBlind,
		}
		eg.Go(func() error {
			res, err := simulateTable(ctx, spec, logger.WithPrefix(fmt.Sprintf("table%d", spec.table)))
			results[i] = res
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	renderSummary(os.Stdout, results)
	fmt.Printf("\nseed %d, %d table(s) in %v\n", seed, c.Tables, time.Since(start).Truncate(time.Millisecond))
	return nil
}

// fill repeats personalities until there is one per seat.
func fill(personalities []string, seats int) []string {
	out := make([]string, seats)
	for i := range out {
		out[i] = personalities[i%len(personalities)]
	}
	return out
}

// simulateTable plays one table until the hand limit or until one player
// holds every chip. Chip conservation is checked after every hand.
func simulateTable(ctx context.Context, spec tableSpec, logger *log.Logger) (tableResult, error) {
	rng := randutil.New(spec.seed)
	res := tableResult{Table: spec.table, Seed: spec.seed}

	names := make([]string, len(spec.personalities))
	strategies := make([]game.Strategy, len(spec.personalities))
	for i, p := range spec.personalities {
		full, err := bot.Canonical(p)
		if err != nil {
			return res, err
		}
		strat, err := bot.New(full, randutil.Child(rng), logger)
		if err != nil {
			return res, err
		}
		names[i] = fmt.Sprintf("%s-%d", full, i)
		strategies[i] = strat
		res.Seats = append(res.Seats, seatResult{Seat: i, Name: names[i], Personality: full})
	}

	g := game.NewGame(rng, names, spec.smallBlind, spec.bigBlind,
		game.WithUniformStacks(spec.stack),
		game.WithLogger(logger),
	)
	bb := float64(spec.bigBlind)
	before := make([]int, len(g.Players))
	for res.Hands < spec.hands && !g.IsOver() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		for i, p := range g.Players {
			before[i] = p.Stack
		}
		out, err := g.PlayHand(strategies)
		if err != nil {
			return res, fmt.Errorf("table %d hand %d: %w", spec.table, g.HandNumber, err)
		}
		if err := g.CheckConservation(); err != nil {
			return res, fmt.Errorf("table %d hand %d: %w", spec.table, g.HandNumber, err)
		}
		res.Hands++

		for i, p := range g.Players {
			if before[i] == 0 {
				continue
			}
			res.Seats[i].Stats.Add(statistics.HandResult{
				NetBB:    float64(p.Stack-before[i]) / bb,
				Position: livePosition(before, g.Button, i),
				Showdown: out.Showdown,
			})
		}
		for seat, n := range potsWon(out) {
			res.Seats[seat].PotsWon += n
		}
		for i, p := range g.Players {
			if p.Eliminated && res.Seats[i].EliminatedAt == 0 {
				res.Seats[i].EliminatedAt = g.HandNumber
				logger.Info("player eliminated", "seat", i, "name", p.Name, "hand", g.HandNumber)
			}
		}
	}

	for i, p := range g.Players {
		res.Seats[i].Stack = p.Stack
		res.Seats[i].Net = p.Stack - spec.stack
		if err := res.Seats[i].Stats.Validate(); res.Seats[i].Stats.Hands > 0 && err != nil {
			return res, fmt.Errorf("table %d seat %d: %w", spec.table, i, err)
		}
	}
	return res, nil
}

// livePosition counts the seats that started the hand with chips from the
// button clockwise to seat. The button is position 0.
func livePosition(before []int, button, seat int) int {
	pos := 0
	for i := button; i != seat; i = (i + 1) % len(before) {
		if before[i] > 0 {
			pos++
		}
	}
	return pos
}

// potsWon counts the contested pots each seat won in out. Uncalled chips
// returned to the only eligible seat after a showdown do not count.
func potsWon(out *game.Outcome) map[int]int {
	won := make(map[int]int)
	for _, pot := range out.Pots {
		if out.Showdown && len(pot.Eligible) < 2 {
			continue
		}
		for _, seat := range pot.Winners {
			won[seat]++
		}
	}
	return won
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("14"))

	winStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	lossStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	bustStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))
)

var columnWidths = []int{6, 24, 9, 9, 6, 10, 16, 9, 9, 8}

func row(widths []int, cells ...string) string {
	var b strings.Builder
	for i, cell := range cells {
		b.WriteString(lipgloss.NewStyle().Width(widths[i]).Render(cell))
	}
	return b.String()
}

func renderSummary(w io.Writer, results []tableResult) {
	for i, res := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("table %d: %d hands (seed %d)", res.Table, res.Hands, res.Seed)))
		fmt.Fprintln(w, row(columnWidths,
			headerStyle.Render("seat"),
			headerStyle.Render("player"),
			headerStyle.Render("stack"),
			headerStyle.Render("net"),
			headerStyle.Render("pots"),
			headerStyle.Render("busted"),
			headerStyle.Render("bb/100 (±95%)"),
			headerStyle.Render("sd"),
			headerStyle.Render("non-sd"),
			headerStyle.Render("median"),
		))
		for _, s := range res.Seats {
			net := strconv.Itoa(s.Net)
			switch {
			case s.Net > 0:
				net = winStyle.Render("+" + net)
			case s.Net < 0:
				net = lossStyle.Render(net)
			}
			busted := "-"
			if s.EliminatedAt > 0 {
				busted = bustStyle.Render(fmt.Sprintf("hand %d", s.EliminatedAt))
			}
			sd, nonSD, median := "-", "-", "-"
			if s.Stats.Hands > 0 {
				sd = fmt.Sprintf("%.1f", s.Stats.ShowdownPer100())
				nonSD = fmt.Sprintf("%.1f", s.Stats.NonShowdownPer100())
				median = fmt.Sprintf("%.1f", s.Stats.Median())
			}
			fmt.Fprintln(w, row(columnWidths,
				strconv.Itoa(s.Seat),
				nameStyle.Render(s.Name),
				strconv.Itoa(s.Stack),
				net,
				strconv.Itoa(s.PotsWon),
				busted,
				winRate(&s.Stats),
				sd,
				nonSD,
				median,
			))
		}
		renderPositions(w, res)
	}
}

// renderPositions prints each seat's bb/100 by position, button first.
func renderPositions(w io.Writer, res tableResult) {
	widths := []int{30}
	header := []string{headerStyle.Render("bb/100 by position")}
	for pos := range len(res.Seats) {
		widths = append(widths, 9)
		label := "btn"
		if pos > 0 {
			label = fmt.Sprintf("+%d", pos)
		}
		header = append(header, headerStyle.Render(label))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, row(widths, header...))
	for _, s := range res.Seats {
		cells := []string{nameStyle.Render(s.Name)}
		for pos := range len(res.Seats) {
			cell := "-"
			if pos < statistics.MaxSeats && s.Stats.Positions[pos].Hands > 0 {
				cell = fmt.Sprintf("%.1f", s.Stats.PositionBBPer100(pos))
			}
			cells = append(cells, cell)
		}
		fmt.Fprintln(w, row(widths, cells...))
	}
}

func winRate(s *statistics.Statistics) string {
	if s.Hands == 0 {
		return "-"
	}
	low, high := s.ConfidenceInterval95()
	return fmt.Sprintf("%.1f ±%.1f", s.BBPer100(), (high-low)/2*100)
}
