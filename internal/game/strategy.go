package game

// Strategy decides what a seat does at each decision point. Implementations
// receive a read-only View and must not retain it. The returned action is
// validated by the engine like any other.
type Strategy interface {
	Decide(v View) Action
}

// StrategyFunc adapts a function to the Strategy interface.
type StrategyFunc func(v View) Action

func (f StrategyFunc) Decide(v View) Action { return f(v) }

// CheckFold checks when free and folds otherwise.
var CheckFold Strategy = StrategyFunc(func(v View) Action {
	if v.ToCall == 0 {
		return Call()
	}
	return Fold()
})

// CallAny calls every bet.
var CallAny Strategy = StrategyFunc(func(View) Action { return Call() })
