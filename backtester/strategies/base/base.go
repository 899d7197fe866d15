package base

import (
	"fmt"
	"math"
	"strings"

	"github.com/thrasher-corp/strategyfit/backtester/ledger"
	"github.com/thrasher-corp/strategyfit/prices"
)

// String implements the stringer interface
func (a Action) String() string {
	switch a {
	case Hold:
		return "HOLD"
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(a))
	}
}

// ParseAction converts BUY, SELL or HOLD in any case to an Action
func ParseAction(s string) (Action, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HOLD":
		return Hold, nil
	case "BUY":
		return Buy, nil
	case "SELL":
		return Sell, nil
	default:
		return Hold, fmt.Errorf("%w %q", ErrUnknownAction, s)
	}
}

// Walk replays series from the oldest bar to the newest, calling step on every
// bar that has lookback bars of history behind it, inclusive. Bars without
// enough history are skipped. Once the newest bar has been evaluated any open
// position is liquidated at its close and the final balance is returned.
func Walk(series *prices.Series, lookback int, step StepFunc) (float64, error) {
	if err := series.Validate(); err != nil {
		return 0, err
	}
	l, err := ledger.New(StartingBalance)
	if err != nil {
		return 0, err
	}
	if lookback < 1 {
		lookback = 1
	}
	n := series.Len()
	for t := lookback - 1; t < n; t++ {
		if err = step(series, series.Chronological(t), l); err != nil {
			return 0, err
		}
	}
	if err = l.Liquidate(series.Symbol, series.Latest().Close); err != nil {
		return 0, err
	}
	return l.Balance(), nil
}

// CheckFitness gates live signals on the best backtest balance. An unknown
// balance is an error, a balance that never beat StartingBalance is not
// trusted and reports false.
func CheckFitness(bestBalance float64) (bool, error) {
	if bestBalance == 0 || math.IsNaN(bestBalance) {
		return false, ErrStrategyNotValidated
	}
	return bestBalance > StartingBalance, nil
}

// Legalise turns a wanted action into HOLD when the live position state does
// not allow it
func Legalise(want Action, held bool) Action {
	switch {
	case want == Buy && !held:
		return Buy
	case want == Sell && held:
		return Sell
	default:
		return Hold
	}
}

// Length converts a continuous search parameter into a window length that is
// at least minimum and at most MaxLength
func Length(param float64, minimum int) int {
	if param >= MaxLength {
		return MaxLength
	}
	l := int(param)
	if l < minimum {
		return minimum
	}
	return l
}

// CheckParams validates a parameter count
func CheckParams(kind Kind, params []float64, want int) error {
	if len(params) != want {
		return fmt.Errorf("%w: %s expects %d params, received %d", ErrInvalidParams, kind, want, len(params))
	}
	for i := range params {
		if math.IsNaN(params[i]) || math.IsInf(params[i], 0) {
			return fmt.Errorf("%w: %s param %d is %v", ErrInvalidParams, kind, i, params[i])
		}
	}
	return nil
}

// Gate runs the checks shared by every live signal. It validates the series,
// checks fitness and looks up whether the symbol is held under kind. When
// trusted is false the caller must HOLD.
func Gate(series *prices.Series, bestBalance float64, positions PositionChecker, kind Kind) (trusted, held bool, err error) {
	if err = series.Validate(); err != nil {
		return false, false, err
	}
	if positions == nil {
		return false, false, ErrNilPositions
	}
	trusted, err = CheckFitness(bestBalance)
	if err != nil {
		return false, false, fmt.Errorf("%s %s: %w", series.Symbol, kind, err)
	}
	if !trusted {
		return false, false, nil
	}
	held, err = positions.Holds(series.Symbol, kind)
	if err != nil {
		return false, false, err
	}
	return true, held, nil
}
