package game

// BettingRound holds the state of a single street of betting.
type BettingRound struct {
	CurrentBet int `json:"current_bet"`
	// MinRaise is the size of the last full raise. Short all-in raises do
	// not change it.
	MinRaise   int `json:"min_raise"`
	LastRaiser int `json:"last_raiser"`
	BigBlind   int `json:"big_blind"`

	// Acted marks players who have made a voluntary decision since the last
	// full raise. Posting a blind is not acting.
	Acted []bool `json:"acted"`
	// Faced is the CurrentBet each player faced when they last acted.
	Faced []int `json:"faced"`
}

// NewBettingRound creates a new betting round
func NewBettingRound(numPlayers int, bigBlind int) *BettingRound {
	return &BettingRound{
		MinRaise:   bigBlind,
		LastRaiser: -1,
		BigBlind:   bigBlind,
		Acted:      make([]bool, numPlayers),
		Faced:      make([]int, numPlayers),
	}
}

// ResetForNewRound resets the betting round for a new street
func (br *BettingRound) ResetForNewRound() {
	br.CurrentBet = 0
	br.MinRaise = br.BigBlind
	br.LastRaiser = -1
	clear(br.Acted)
	clear(br.Faced)
}

// canReopen reports whether seat may raise. A player who already acted may
// only raise again once the bet has grown by a full raise since they acted.
func (br *BettingRound) canReopen(seat int) bool {
	return !br.Acted[seat] || br.CurrentBet-br.Faced[seat] >= br.MinRaise
}

func (br *BettingRound) markActed(seat int) {
	br.Acted[seat] = true
	br.Faced[seat] = br.CurrentBet
}

// raise records a new bet level. A full raise reopens action for everyone else.
func (br *BettingRound) raise(seat, total int) {
	if increase := total - br.CurrentBet; increase >= br.MinRaise {
		br.MinRaise = increase
		clear(br.Acted)
	}
	br.CurrentBet = total
	br.LastRaiser = seat
	br.markActed(seat)
}

// NeedsAction reports whether players[seat] still has a decision to make on
// this street.
func (br *BettingRound) NeedsAction(players []*Player, seat int) bool {
	p := players[seat]
	if !p.CanAct() {
		return false
	}
	if p.Bet < br.CurrentBet {
		return true
	}
	if br.Acted[seat] {
		return false
	}
	// With nobody left to bet against there is nothing to decide.
	for i, o := range players {
		if i != seat && o.CanAct() {
			return true
		}
	}
	return false
}

// IsBettingComplete checks if betting is complete for this round
func (br *BettingRound) IsBettingComplete(players []*Player) bool {
	for seat := range players {
		if br.NeedsAction(players, seat) {
			return false
		}
	}
	return true
}

// ValidActions lists the legal decisions for players[seat].
func (br *BettingRound) ValidActions(players []*Player, seat int) []ValidAction {
	p := players[seat]
	if !br.NeedsAction(players, seat) {
		return nil
	}

	toCall := min(br.CurrentBet-p.Bet, p.Stack)
	actions := []ValidAction{
		{Kind: ActionFold},
		{Kind: ActionCall, MinAmount: toCall, MaxAmount: toCall},
	}

	maxTotal := p.Bet + p.Stack
	if maxTotal <= br.CurrentBet || !br.canReopen(seat) {
		return actions
	}
	opponentCanAct := false
	for i, o := range players {
		if i != seat && o.CanAct() {
			opponentCanAct = true
			break
		}
	}
	if !opponentCanAct {
		return actions
	}

	minTotal := min(br.CurrentBet+br.MinRaise, maxTotal)
	return append(actions, ValidAction{Kind: ActionRaise, MinAmount: minTotal, MaxAmount: maxTotal})
}
