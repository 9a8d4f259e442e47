package game

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/lox/holdemtrainer/poker"
)

const snapshotVersion = 1

// Snapshot is everything needed to resume a game exactly where it stopped,
// including a hand in progress.
type Snapshot struct {
	Version    int           `json:"version"`
	HandNumber int           `json:"hand_number"`
	Button     int           `json:"button"`
	SmallBlind int           `json:"small_blind"`
	BigBlind   int           `json:"big_blind"`
	TotalChips int           `json:"total_chips"`
	Players    []Player      `json:"players"`
	Halted     string        `json:"halted,omitempty"`
	Hand       *HandSnapshot `json:"hand,omitempty"`
}

// HandSnapshot is the serialisable state of a Hand.
type HandSnapshot struct {
	Button         int             `json:"button"`
	SmallBlindSeat int             `json:"small_blind_seat"`
	BigBlindSeat   int             `json:"big_blind_seat"`
	SmallBlind     int             `json:"small_blind"`
	BigBlind       int             `json:"big_blind"`
	Street         Street          `json:"street"`
	Board          []poker.Card    `json:"board"`
	ActivePlayer   int             `json:"active_player"`
	Betting        BettingRound    `json:"betting"`
	Outcome        *Outcome        `json:"outcome,omitempty"`
	Deck           poker.DeckState `json:"deck"`
}

// Snapshot captures the game.
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		Version:    snapshotVersion,
		HandNumber: g.HandNumber,
		Button:     g.Button,
		SmallBlind: g.SmallBlind,
		BigBlind:   g.BigBlind,
		TotalChips: g.TotalChips,
	}
	for _, p := range g.Players {
		cp := *p
		cp.HoleCards = append([]poker.Card(nil), p.HoleCards...)
		s.Players = append(s.Players, cp)
	}
	if g.halted != nil {
		s.Halted = g.halted.Error()
	}
	if h := g.hand; h != nil {
		betting := *h.Betting
		betting.Acted = append([]bool(nil), h.Betting.Acted...)
		betting.Faced = append([]int(nil), h.Betting.Faced...)
		s.Hand = &HandSnapshot{
			Button:         h.Button,
			SmallBlindSeat: h.SmallBlindSeat,
			BigBlindSeat:   h.BigBlindSeat,
			SmallBlind:     h.SmallBlind,
			BigBlind:       h.BigBlind,
			Street:         h.Street,
			Board:          append([]poker.Card(nil), h.Board...),
			ActivePlayer:   h.ActivePlayer,
			Betting:        betting,
			Outcome:        h.Outcome,
			Deck:           h.deck.State(),
		}
	}
	return s
}

// RestoreGame rebuilds a game from a snapshot. rng shuffles the decks of
// later hands. Only WithLogger is honoured among opts.
func RestoreGame(s Snapshot, rng *rand.Rand, opts ...GameOption) (*Game, error) {
	if rng == nil {
		panic("rng is required for game creation")
	}
	if s.Version != snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", s.Version)
	}
	if len(s.Players) < 2 {
		return nil, fmt.Errorf("snapshot has %d players", len(s.Players))
	}
	n := len(s.Players)
	if s.Button < 0 || s.Button >= n {
		return nil, fmt.Errorf("snapshot button %d out of range", s.Button)
	}

	cfg := &gameConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	g := &Game{
		Button:     s.Button,
		HandNumber: s.HandNumber,
		SmallBlind: s.SmallBlind,
		BigBlind:   s.BigBlind,
		TotalChips: s.TotalChips,
		logger:     cfg.logger,
	}
	if g.logger == nil {
		g.logger = log.New(io.Discard)
	}
	for i := range s.Players {
		p := s.Players[i]
		if p.Seat != i {
			return nil, fmt.Errorf("snapshot player %d has seat %d", i, p.Seat)
		}
		g.Players = append(g.Players, &p)
	}

	if s.Hand == nil {
		g.deck = poker.NewDeck(rng)
	} else {
		hs := s.Hand
		if len(hs.Betting.Acted) != len(g.Players) || len(hs.Betting.Faced) != len(g.Players) {
			return nil, errors.New("snapshot betting state does not match seats")
		}
		for name, seat := range map[string]int{"button": hs.Button, "small blind": hs.SmallBlindSeat, "big blind": hs.BigBlindSeat} {
			if seat < 0 || seat >= n {
				return nil, fmt.Errorf("snapshot %s seat %d out of range", name, seat)
			}
		}
		if hs.ActivePlayer < -1 || hs.ActivePlayer >= n {
			return nil, fmt.Errorf("snapshot active player %d out of range", hs.ActivePlayer)
		}
		if len(hs.Board) != hs.Street.BoardSize() && hs.Outcome == nil {
			return nil, fmt.Errorf("snapshot board has %d cards on the %s", len(hs.Board), hs.Street)
		}
		deck, err := poker.RestoreDeck(hs.Deck, rng)
		if err != nil {
			return nil, err
		}
		betting := hs.Betting
		g.deck = deck
		g.hand = &Hand{
			Players:        g.Players,
			Button:         hs.Button,
			SmallBlindSeat: hs.SmallBlindSeat,
			BigBlindSeat:   hs.BigBlindSeat,
			SmallBlind:     hs.SmallBlind,
			BigBlind:       hs.BigBlind,
			Street:         hs.Street,
			Board:          hs.Board,
			ActivePlayer:   hs.ActivePlayer,
			Betting:        &betting,
			Outcome:        hs.Outcome,
			deck:           deck,
		}
	}

	if s.Halted != "" {
		g.halted = errors.New(s.Halted)
	}
	if err := g.CheckConservation(); err != nil {
		return nil, err
	}
	return g, nil
}
