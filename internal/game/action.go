package game

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Street represents the betting round
type Street int

const (
	Preflop Street = iota
	Flop
	Turn
	River
	Showdown
)

var streetNames = [...]string{"preflop", "flop", "turn", "river", "showdown"}

func (s Street) String() string {
	if s < Preflop || s > Showdown {
		return fmt.Sprintf("street(%d)", int(s))
	}
	return streetNames[s]
}

// BoardSize is the number of community cards visible on the street.
func (s Street) BoardSize() int {
	return [...]int{0, 3, 4, 5, 5}[s]
}

func (s Street) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Street) UnmarshalText(b []byte) error {
	for i, name := range streetNames {
		if name == string(b) {
			*s = Street(i)
			return nil
		}
	}
	return fmt.Errorf("unknown street %q", b)
}

// ActionKind is the closed set of decisions a player can make.
type ActionKind uint8

const (
	ActionFold ActionKind = iota
	// ActionCall matches the current bet. With nothing to call it is a check.
	ActionCall
	// ActionRaise raises the street bet to Action.Amount.
	ActionRaise
)

var actionNames = [...]string{"fold", "call", "raise"}

func (k ActionKind) String() string {
	if int(k) >= len(actionNames) {
		return fmt.Sprintf("action(%d)", k)
	}
	return actionNames[k]
}

func (k ActionKind) MarshalText() ([]byte, error) {
	if int(k) >= len(actionNames) {
		return nil, fmt.Errorf("unknown action kind %d", k)
	}
	return []byte(k.String()), nil
}

func (k *ActionKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "fold":
		*k = ActionFold
	case "call", "check":
		*k = ActionCall
	case "raise", "bet":
		*k = ActionRaise
	default:
		return fmt.Errorf("unknown action %q", b)
	}
	return nil
}

// Action is a player decision. Amount is only meaningful for raises and is
// the total the player's street bet is raised to, not the increment.
type Action struct {
	Kind   ActionKind `json:"kind"`
	Amount int        `json:"amount,omitempty"`
}

func Fold() Action { return Action{Kind: ActionFold} }
func Call() Action { return Action{Kind: ActionCall} }
func RaiseTo(total int) Action { return Action{Kind: ActionRaise, Amount: total} }

func (a Action) String() string {
	if a.Kind == ActionRaise {
		return fmt.Sprintf("raise to %d", a.Amount)
	}
	return a.Kind.String()
}

// UnmarshalJSON requires a kind and rejects amounts on folds and calls so
// that a malformed client message is not silently reinterpreted.
func (a *Action) UnmarshalJSON(b []byte) error {
	var r struct {
		Kind   *ActionKind `json:"kind"`
		Amount int         `json:"amount"`
	}
	if err := json.Unmarshal(b, &r); err != nil {
		return err
	}
	if r.Kind == nil {
		return errors.New("action kind is required")
	}
	if *r.Kind != ActionRaise && r.Amount != 0 {
		return fmt.Errorf("%s takes no amount", *r.Kind)
	}
	*a = Action{Kind: *r.Kind, Amount: r.Amount}
	return nil
}

// ValidAction is one legal decision with numeric bounds. For calls the bounds
// are the chips that will be added; for raises they are raise-to totals.
type ValidAction struct {
	Kind      ActionKind `json:"kind"`
	MinAmount int        `json:"min_amount"`
	MaxAmount int        `json:"max_amount"`
}

// Find returns the entry for kind, if legal.
func Find(actions []ValidAction, kind ActionKind) (ValidAction, bool) {
	for _, va := range actions {
		if va.Kind == kind {
			return va, true
		}
	}
	return ValidAction{}, false
}
