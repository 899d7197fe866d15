package bollinger

import (
	"errors"

	"github.com/thrasher-corp/strategyfit/backtester/ledger"
	"github.com/thrasher-corp/strategyfit/backtester/strategies/base"
	"github.com/thrasher-corp/strategyfit/indicators"
	"github.com/thrasher-corp/strategyfit/log"
	"github.com/thrasher-corp/strategyfit/prices"
)

// New returns a strategy for params band length, stop loss fraction and
// confirmation length
func New(params []float64) (*Strategy, error) {
	if err := base.CheckParams(base.BandBreakout, params, ParamCount); err != nil {
		return nil, err
	}
	cpy := make([]float64, len(params))
	copy(cpy, params)
	return &Strategy{
		params:        cpy,
		bandLength:    base.Length(params[0], minimumBandLength),
		stopLoss:      params[1],
		confirmations: base.Length(params[2], minimumConfirmations),
	}, nil
}

// Kind returns the registry kind
func (s *Strategy) Kind() base.Kind {
	return base.BandBreakout
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
	r := &run{Strategy: s}
	return base.Walk(series, s.bandLength+1, r.step)
}

func (r *run) step(series *prices.Series, offset int, l *ledger.Ledger) error {
	bar := series.Bars[offset]
	price := bar.Average()
	lower, upper, err := r.previousBand(series, offset)
	if err != nil {
		return err
	}

	holding, held := l.Holding(series.Symbol)
	if !held {
		if !inside(price, lower, upper) {
			r.streak = 0
			return nil
		}
		r.streak++
		if r.streak < r.confirmations {
			return nil
		}
		r.streak = 0
		return l.Buy(series.Symbol, bar.Open, 1)
	}

	if price >= upper {
		return l.Sell(series.Symbol, bar.Close)
	}
	if holding.EntryPrice.InexactFloat64() >= price*(1+r.stopLoss) {
		return l.Sell(series.Symbol, bar.Close)
	}
	below, err := belowExitAverage(series, offset, price)
	if err != nil {
		return err
	}
	if below {
		return l.Sell(series.Symbol, bar.Close)
	}
	return nil
}

// Signal evaluates the most recent bars only. A buy needs the newest
// confirmation length bars to each trade inside the band of the bar before
// them. Live positions carry no entry price so the stop loss is not applied.
func (s *Strategy) Signal(series *prices.Series, bestBalance float64, positions base.PositionChecker) (base.Action, error) {
	trusted, held, err := base.Gate(series, bestBalance, positions, s.Kind())
	if err != nil || !trusted {
		return base.Hold, err
	}

	want, err := s.liveAction(series, held)
	if errors.Is(err, prices.ErrInsufficientData) {
		log.Debugf(log.Strategy, "%s %s not enough data for signal generation", series.Symbol, Name)
		return base.Hold, nil
	}
	if err != nil {
		return base.Hold, err
	}
	return base.Legalise(want, held), nil
}

func (s *Strategy) liveAction(series *prices.Series, held bool) (base.Action, error) {
	price := series.Latest().Average()
	if held {
		_, upper, err := s.previousBand(series, 0)
		if err != nil {
			return base.Hold, err
		}
		if price >= upper {
			return base.Sell, nil
		}
		below, err := belowExitAverage(series, 0, price)
		if err != nil {
			return base.Hold, err
		}
		if below {
			return base.Sell, nil
		}
		return base.Hold, nil
	}

	for offset := 0; offset < s.confirmations; offset++ {
		lower, upper, err := s.previousBand(series, offset)
		if err != nil {
			return base.Hold, err
		}
		if !inside(series.Bars[offset].Average(), lower, upper) {
			return base.Hold, nil
		}
	}
	return base.Buy, nil
}

// previousBand returns the band computed at the bar before offset
func (s *Strategy) previousBand(series *prices.Series, offset int) (lower, upper float64, err error) {
	avgs, err := series.Averages(offset+1, s.bandLength)
	if err != nil {
		return 0, 0, err
	}
	lower, err = indicators.Band(avgs, s.bandLength, indicators.Lower, indicators.DefaultDeviations)
	if err != nil {
		return 0, 0, err
	}
	upper, err = indicators.Band(avgs, s.bandLength, indicators.Upper, indicators.DefaultDeviations)
	if err != nil {
		return 0, 0, err
	}
	return lower, upper, nil
}

// belowExitAverage reports whether price is at or below the trailing exit
// average. It is false while the series is too short to compute it.
func belowExitAverage(series *prices.Series, offset int, price float64) (bool, error) {
	avgs, err := series.Averages(offset, ExitAverageLength)
	if errors.Is(err, prices.ErrInsufficientData) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	ma, err := indicators.MovingAverage(avgs, ExitAverageLength)
	if err != nil {
		return false, err
	}
	return price <= ma, nil
}

func inside(price, lower, upper float64) bool {
	return price > lower && price < upper
}
