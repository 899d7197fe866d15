// Package crossover implements the moving average crossover strategy. A
// position is opened when the short average crosses above the long average
// and closed when it crosses back below.
package crossover

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
	Name = "crossover"
	// ParamCount is the number of tunable parameters: short and long length
	ParamCount = 2

	minimumShort = 1
	minimumLong  = 2
	description  = `Crossover buys when the short moving average crosses above the long moving average and sells when it crosses back below`
)

// Strategy is the moving average crossover strategy
type Strategy struct {
	params []float64
	short  int
	long   int
}

type run struct {
	*Strategy
	seeded bool
	above  bool
}

// New returns a strategy for params short length, long length
func New(params []float64) (*Strategy, error) {
	if err := base.CheckParams(base.Crossover, params, ParamCount); err != nil {
		return nil, err
	}
	cpy := make([]float64, len(params))
	copy(cpy, params)
	return &Strategy{
		params: cpy,
		short:  base.Length(params[0], minimumShort),
		long:   base.Length(params[1], minimumLong),
	}, nil
}

// Kind returns the registry kind
func (s *Strategy) Kind() base.Kind {
	return base.Crossover
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

func (s *Strategy) window() int {
	if s.short > s.long {
		return s.short
	}
	return s.long
}

// Simulate backtests the strategy over the whole series and returns the
// ending balance. The first evaluated bar only records which average is on
// top.
func (s *Strategy) Simulate(series *prices.Series) (float64, error) {
	r := &run{Strategy: s}
	return base.Walk(series, s.window()+1, r.step)
}

func (r *run) step(series *prices.Series, offset int, l *ledger.Ledger) error {
	above, err := r.orientation(series, offset)
	if err != nil {
		return err
	}
	wasAbove := r.above
	r.above = above
	if !r.seeded {
		r.seeded = true
		return nil
	}
	bar := series.Bars[offset]
	switch {
	case !l.Holds(series.Symbol) && !wasAbove && above:
		return l.Buy(series.Symbol, bar.Open, 1)
	case l.Holds(series.Symbol) && wasAbove && !above:
		return l.Sell(series.Symbol, bar.Close)
	}
	return nil
}

// Signal compares the orientation of the newest bar with the bar before it
func (s *Strategy) Signal(series *prices.Series, bestBalance float64, positions base.PositionChecker) (base.Action, error) {
	trusted, held, err := base.Gate(series, bestBalance, positions, s.Kind())
	if err != nil || !trusted {
		return base.Hold, err
	}
	now, err := s.orientation(series, 0)
	if err == nil {
		var before bool
		before, err = s.orientation(series, 1)
		if err == nil {
			want := base.Hold
			switch {
			case !before && now:
				want = base.Buy
			case before && !now:
				want = base.Sell
			}
			return base.Legalise(want, held), nil
		}
	}
	if errors.Is(err, prices.ErrInsufficientData) {
		log.Debugf(log.Strategy, "%s %s not enough data for signal generation", series.Symbol, Name)
		return base.Hold, nil
	}
	return base.Hold, err
}

// orientation reports whether the short average is at or above the long
// average at offset
func (s *Strategy) orientation(series *prices.Series, offset int) (bool, error) {
	avgs, err := series.Averages(offset, s.window())
	if err != nil {
		return false, err
	}
	short, err := indicators.MovingAverage(avgs, s.short)
	if err != nil {
		return false, err
	}
	long, err := indicators.MovingAverage(avgs, s.long)
	if err != nil {
		return false, err
	}
	return short >= long, nil
}
