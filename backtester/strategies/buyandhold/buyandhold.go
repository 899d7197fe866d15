package buyandhold

import (
	"github.com/thrasher-corp/strategyfit/backtester/ledger"
	"github.com/thrasher-corp/strategyfit/backtester/strategies/base"
	"github.com/thrasher-corp/strategyfit/prices"
)

const (
	// Name is the strategy name
	Name = "buy-and-hold"
	// ParamCount buy and hold has nothing to tune
	ParamCount  = 0
	description = `Buy and hold invests everything at the open of the oldest bar and sells at the close of the newest. It is the baseline every other strategy has to beat`
)

// Strategy is the buy and hold baseline
type Strategy struct{}

// New returns the buy and hold strategy. params must be empty.
func New(params []float64) (*Strategy, error) {
	if err := base.CheckParams(base.BuyAndHold, params, ParamCount); err != nil {
		return nil, err
	}
	return &Strategy{}, nil
}

// Kind returns the registry kind
func (s *Strategy) Kind() base.Kind {
	return base.BuyAndHold
}

// Name returns the name of the strategy
func (s *Strategy) Name() string {
	return Name
}

// Description provides a nice overview of the strategy
func (s *Strategy) Description() string {
	return description
}

// Params always returns an empty slice
func (s *Strategy) Params() []float64 {
	return []float64{}
}

// Simulate buys the oldest bar and lets the walk liquidate at the newest
func (s *Strategy) Simulate(series *prices.Series) (float64, error) {
	return base.Walk(series, 1, func(series *prices.Series, offset int, l *ledger.Ledger) error {
		if offset != series.Len()-1 {
			return nil
		}
		return l.Buy(series.Symbol, series.Bars[offset].Open, 1)
	})
}

// Signal recommends buying whenever the symbol is not already held
func (s *Strategy) Signal(series *prices.Series, bestBalance float64, positions base.PositionChecker) (base.Action, error) {
	trusted, held, err := base.Gate(series, bestBalance, positions, s.Kind())
	if err != nil || !trusted {
		return base.Hold, err
	}
	return base.Legalise(base.Buy, held), nil
}
