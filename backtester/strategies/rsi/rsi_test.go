package rsi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thrasher-corp/strategyfit/backtester/strategies/base"
	"github.com/thrasher-corp/strategyfit/prices"
)

type positions map[string]bool

func (p positions) Holds(symbol string, _ base.Kind) (bool, error) {
	return p[symbol], nil
}

// flat builds a series from oldest-first prices where every bar opens and
// closes at the same price
func flat(t *testing.T, chronological ...float64) *prices.Series {
	t.Helper()
	bars := make([]prices.Bar, len(chronological))
	for i := range chronological {
		bars[len(bars)-1-i] = prices.Bar{Open: chronological[i], Close: chronological[i]}
	}
	s, err := prices.NewSeries("AAPL", bars)
	require.NoError(t, err)
	return s
}

func TestName(t *testing.T) {
	t.Parallel()
	s, err := New([]float64{14, 30, 70})
	require.NoError(t, err)
	assert.Equal(t, Name, s.Name())
	assert.NotEmpty(t, s.Description())
	assert.Equal(t, base.ThresholdReversion, s.Kind())
}

func TestNew(t *testing.T) {
	t.Parallel()
	_, err := New([]float64{14, 30})
	assert.ErrorIs(t, err, base.ErrInvalidParams)

	params := []float64{0.5, 30, 70}
	s, err := New(params)
	require.NoError(t, err)
	assert.Equal(t, minimumWindow, s.window)
	params[0] = 99
	assert.Equal(t, []float64{0.5, 30, 70}, s.Params(), "params must be copied")
}

func TestSimulate(t *testing.T) {
	t.Parallel()
	s, err := New([]float64{2, 30, 70})
	require.NoError(t, err)

	balance, err := s.Simulate(flat(t, 10, 9, 8, 9, 10, 11))
	require.NoError(t, err)
	assert.InDelta(t, 12500, balance, 1e-9)

	again, err := s.Simulate(flat(t, 10, 9, 8, 9, 10, 11))
	require.NoError(t, err)
	assert.Equal(t, balance, again, "simulations must not share state")

	balance, err = s.Simulate(flat(t, 10, 11))
	require.NoError(t, err)
	assert.Equal(t, base.StartingBalance, balance, "too short to trade")

	_, err = s.Simulate(nil)
	assert.Error(t, err)
}

func TestSimulateLiquidatesOpenPosition(t *testing.T) {
	t.Parallel()
	s, err := New([]float64{2, 30, 70})
	require.NoError(t, err)
	balance, err := s.Simulate(flat(t, 10, 9, 8, 6))
	require.NoError(t, err)
	// bought at 8 and never sold, closed out at 6
	assert.InDelta(t, 7500, balance, 1e-9)
}

func TestSignal(t *testing.T) {
	t.Parallel()
	s, err := New([]float64{2, 30, 70})
	require.NoError(t, err)
	rising := flat(t, 9, 10, 11)
	falling := flat(t, 11, 10, 9)

	_, err = s.Signal(rising, 0, positions{})
	assert.ErrorIs(t, err, base.ErrStrategyNotValidated)

	_, err = s.Signal(rising, 20000, nil)
	assert.ErrorIs(t, err, base.ErrNilPositions)

	a, err := s.Signal(falling, 9000, positions{})
	require.NoError(t, err)
	assert.Equal(t, base.Hold, a, "an unprofitable strategy must not trade")

	a, err = s.Signal(falling, 20000, positions{})
	require.NoError(t, err)
	assert.Equal(t, base.Buy, a)

	a, err = s.Signal(falling, 20000, positions{"AAPL": true})
	require.NoError(t, err)
	assert.Equal(t, base.Hold, a, "cannot buy twice")

	a, err = s.Signal(rising, 20000, positions{"AAPL": true})
	require.NoError(t, err)
	assert.Equal(t, base.Sell, a)

	a, err = s.Signal(rising, 20000, positions{})
	require.NoError(t, err)
	assert.Equal(t, base.Hold, a, "cannot sell what is not held")

	a, err = s.Signal(flat(t, 9, 10), 20000, positions{})
	require.NoError(t, err)
	assert.Equal(t, base.Hold, a)
}
