package prices

import (
	"fmt"
	"math"
	"strings"

	"github.com/thrasher-corp/strategyfit/common"
)

// Average returns the mid point between a bar's open and close, the value all
// indicators are computed on
func (b Bar) Average() float64 {
	return (b.Open + b.Close) / 2
}

// Validate checks the bar's open and close are finite positive prices
func (b Bar) Validate() error {
	if !validPrice(b.Open) {
		return fmt.Errorf("open %v %w", b.Open, ErrInvalidPrice)
	}
	if !validPrice(b.Close) {
		return fmt.Errorf("close %v %w", b.Close, ErrInvalidPrice)
	}
	return nil
}

func validPrice(p float64) bool {
	return p > 0 && !math.IsInf(p, 0)
}

// NewSeries validates and returns a series for symbol. Bars must already be
// ordered most-recent-first.
func NewSeries(symbol string, bars []Bar) (*Series, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, common.ErrEmptySymbol
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%s %w", symbol, ErrNoBars)
	}
	for i := range bars {
		if err := bars[i].Validate(); err != nil {
			return nil, fmt.Errorf("%s bar %d %w", symbol, i, err)
		}
	}
	cpy := make([]Bar, len(bars))
	copy(cpy, bars)
	return &Series{Symbol: symbol, Bars: cpy}, nil
}

// Validate checks the series invariants
func (s *Series) Validate() error {
	if s == nil {
		return fmt.Errorf("series %w", common.ErrNilPointer)
	}
	if s.Symbol == "" {
		return common.ErrEmptySymbol
	}
	if len(s.Bars) == 0 {
		return fmt.Errorf("%s %w", s.Symbol, ErrNoBars)
	}
	for i := range s.Bars {
		if err := s.Bars[i].Validate(); err != nil {
			return fmt.Errorf("%s bar %d %w", s.Symbol, i, err)
		}
	}
	return nil
}

// Len returns the number of bars in the series
func (s *Series) Len() int {
	return len(s.Bars)
}

// Latest returns the most recent bar
func (s *Series) Latest() Bar {
	return s.Bars[0]
}

// Chronological converts an oldest-first step index into the storage offset
// of the same bar
func (s *Series) Chronological(step int) int {
	return len(s.Bars) - 1 - step
}

// Averages returns length averaged values starting at storage offset and
// moving back in time, so the result is ordered most-recent-first
func (s *Series) Averages(offset, length int) ([]float64, error) {
	if offset < 0 || length < 1 || offset > len(s.Bars) || length > len(s.Bars)-offset {
		return nil, fmt.Errorf("%s offset %d length %d with %d bars %w",
			s.Symbol, offset, length, len(s.Bars), ErrInsufficientData)
	}
	resp := make([]float64, length)
	for i := range resp {
		resp[i] = s.Bars[offset+i].Average()
	}
	return resp, nil
}

// Truncate returns a copy holding at most the n most recent bars
func (s *Series) Truncate(n int) *Series {
	if n <= 0 || n >= len(s.Bars) {
		n = len(s.Bars)
	}
	cpy := make([]Bar, n)
	copy(cpy, s.Bars[:n])
	return &Series{Symbol: s.Symbol, Bars: cpy}
}

// WithQuote returns a copy of the series whose newest bar closes at the live
// quote estimate
func (s *Series) WithQuote(price float64) (*Series, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if !validPrice(price) {
		return nil, fmt.Errorf("%s %w %v", s.Symbol, ErrInvalidQuote, price)
	}
	cpy := make([]Bar, len(s.Bars))
	copy(cpy, s.Bars)
	cpy[0].Close = price
	return &Series{Symbol: s.Symbol, Bars: cpy}, nil
}
