package rsi

import (
	"errors"

	"github.com/thrasher-corp/strategyfit/backtester/ledger"
	"github.com/thrasher-corp/strategyfit/backtester/strategies/base"
	"github.com/thrasher-corp/strategyfit/indicators"
	"github.com/thrasher-corp/strategyfit/log"
	"github.com/thrasher-corp/strategyfit/prices"
)

const (
	// Name is the strategy name
	Name = "threshold-reversion"
	// ParamCount is the number of tunable parameters: window, buy threshold
	// and sell threshold
	ParamCount    = 3
	minimumWindow = 2
	description   = `Threshold reversion buys when the relative strength index over the trailing window drops below the buy threshold and sells once it climbs above the sell threshold`
)

// Strategy is the RSI threshold reversion strategy
type Strategy struct {
	params        []float64
	window        int
	buyThreshold  float64
	sellThreshold float64
}

// New returns a strategy for params window, buy threshold, sell threshold
func New(params []float64) (*Strategy, error) {
	if err := base.CheckParams(base.ThresholdReversion, params, ParamCount); err != nil {
		return nil, err
	}
	cpy := make([]float64, len(params))
	copy(cpy, params)
	return &Strategy{
		params:        cpy,
		window:        base.Length(params[0], minimumWindow),
		buyThreshold:  params[1],
		sellThreshold: params[2],
	}, nil
}

// Kind returns the registry kind
func (s *Strategy) Kind() base.Kind {
	return base.ThresholdReversion
}

// Name returns the name of the strategy
func (s *Strategy) Name() string {
	return Name
}

// Description provides a nice overview of the strategy
func (s *Strategy) Description() string {
	return description
}

// Params returns the parameters the strategy was built with
func (s *Strategy) Params() []float64 {
	cpy := make([]float64, len(s.params))
	copy(cpy, s.params)
	return cpy
}

// Simulate backtests the strategy over the whole series and returns the
// ending balance
func (s *Strategy) Simulate(series *prices.Series) (float64, error) {
	return base.Walk(series, s.window+1, s.step)
}

func (s *Strategy) step(series *prices.Series, offset int, l *ledger.Ledger) error {
	rsi, err := s.rsiAt(series, offset)
	if err != nil {
		return err
	}
	bar := series.Bars[offset]
	if !l.Holds(series.Symbol) {
		if rsi < s.buyThreshold {
			return l.Buy(series.Symbol, bar.Open, 1)
		}
		return nil
	}
	if rsi > s.sellThreshold {
		return l.Sell(series.Symbol, bar.Close)
	}
	return nil
}

// Signal evaluates the most recent window only. For rsi, this means returning
// a buy signal when rsi is below the buy threshold and nothing is held, and a
// sell signal when it is above the sell threshold and a position is open.
func (s *Strategy) Signal(series *prices.Series, bestBalance float64, positions base.PositionChecker) (base.Action, error) {
	trusted, held, err := base.Gate(series, bestBalance, positions, s.Kind())
	if err != nil || !trusted {
		return base.Hold, err
	}
	rsi, err := s.rsiAt(series, 0)
	if errors.Is(err, prices.ErrInsufficientData) {
		log.Debugf(log.Strategy, "%s %s not enough data for signal generation", series.Symbol, Name)
		return base.Hold, nil
	}
	if err != nil {
		return base.Hold, err
	}
	log.Debugf(log.Strategy, "%s %s RSI at %.4f", series.Symbol, Name, rsi)

	want := base.Hold
	switch {
	case !held && rsi < s.buyThreshold:
		want = base.Buy
	case held && rsi > s.sellThreshold:
		want = base.Sell
	}
	return base.Legalise(want, held), nil
}

func (s *Strategy) rsiAt(series *prices.Series, offset int) (float64, error) {
	avgs, err := series.Averages(offset, s.window+1)
	if err != nil {
		return 0, err
	}
	return indicators.RelativeStrength(avgs, s.window)
}
