package bollinger

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

func flat(t *testing.T, chronological ...float64) *prices.Series {
	t.Helper()
	bars := make([]prices.Bar, len(chronological))
	for i := range chronological {
		bars[len(bars)-1-i] = prices.Bar{Open: chronological[i], Close: chronological[i]}
	}
	s, err := prices.NewSeries("MSFT", bars)
	require.NoError(t, err)
	return s
}

func TestName(t *testing.T) {
	t.Parallel()
	s, err := New([]float64{11.5, 0.125, 5.5})
	require.NoError(t, err)
	assert.Equal(t, Name, s.Name())
	assert.NotEmpty(t, s.Description())
	assert.Equal(t, base.BandBreakout, s.Kind())
	assert.Equal(t, 11, s.bandLength)
	assert.Equal(t, 5, s.confirmations)
	assert.Equal(t, []float64{11.5, 0.125, 5.5}, s.Params())
}

func TestNew(t *testing.T) {
	t.Parallel()
	_, err := New(nil)
	assert.ErrorIs(t, err, base.ErrInvalidParams)

	s, err := New([]float64{0, 0.1, 0})
	require.NoError(t, err)
	assert.Equal(t, minimumBandLength, s.bandLength)
	assert.Equal(t, minimumConfirmations, s.confirmations)
}

func TestSimulateBreakout(t *testing.T) {
	t.Parallel()
	s, err := New([]float64{2, 0.1, 2})
	require.NoError(t, err)
	// two confirming bars, buy at 11.5, sell on the break above 12.5
	balance, err := s.Simulate(flat(t, 10, 12, 11, 11.5, 20))
	require.NoError(t, err)
	assert.InDelta(t, 10000.0/11.5*20, balance, 1e-6)
}

func TestSimulateStopLoss(t *testing.T) {
	t.Parallel()
	tight, err := New([]float64{2, 0.05, 2})
	require.NoError(t, err)
	balance, err := tight.Simulate(flat(t, 10, 12, 11, 11.5, 10.8, 30))
	require.NoError(t, err)
	assert.InDelta(t, 10000.0/11.5*10.8, balance, 1e-6)

	loose, err := New([]float64{2, 0.1, 2})
	require.NoError(t, err)
	balance, err = loose.Simulate(flat(t, 10, 12, 11, 11.5, 10.8, 30))
	require.NoError(t, err)
	assert.InDelta(t, 10000.0/11.5*30, balance, 1e-6)
}

func TestSimulateExitAverage(t *testing.T) {
	t.Parallel()
	s, err := New([]float64{2, 0.5, 1})
	require.NoError(t, err)
	balance, err := s.Simulate(flat(t, 20, 20, 20, 20, 20, 20, 20, 10, 11, 10.5, 100))
	require.NoError(t, err)
	assert.InDelta(t, 10000.0/11*10.5, balance, 1e-6)
}

func TestSimulateShortSeries(t *testing.T) {
	t.Parallel()
	s, err := New([]float64{5, 0.1, 1})
	require.NoError(t, err)
	balance, err := s.Simulate(flat(t, 1, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, base.StartingBalance, balance)
}

func TestSignal(t *testing.T) {
	t.Parallel()
	s, err := New([]float64{2, 0.1, 2})
	require.NoError(t, err)
	confirmed := flat(t, 10, 12, 11, 11.5)

	_, err = s.Signal(confirmed, 0, positions{})
	assert.ErrorIs(t, err, base.ErrStrategyNotValidated)

	a, err := s.Signal(confirmed, 9000, positions{})
	require.NoError(t, err)
	assert.Equal(t, base.Hold, a)

	a, err = s.Signal(confirmed, 15000, positions{})
	require.NoError(t, err)
	assert.Equal(t, base.Buy, a)

	a, err = s.Signal(confirmed, 15000, positions{"MSFT": true})
	require.NoError(t, err)
	assert.Equal(t, base.Hold, a)

	a, err = s.Signal(flat(t, 10, 12, 11, 11.5, 20), 15000, positions{"MSFT": true})
	require.NoError(t, err)
	assert.Equal(t, base.Sell, a)

	a, err = s.Signal(flat(t, 10, 12, 11, 11.5, 20), 15000, positions{})
	require.NoError(t, err)
	assert.Equal(t, base.Hold, a)

	a, err = s.Signal(flat(t, 10, 12), 15000, positions{})
	require.NoError(t, err)
	assert.Equal(t, base.Hold, a, "insufficient data holds")
}
