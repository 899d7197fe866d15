package prices

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thrasher-corp/strategyfit/common"
)

func testSeries(t *testing.T) *Series {
	t.Helper()
	s, err := NewSeries("TSLA", []Bar{
		{Open: 10, Close: 12},
		{Open: 8, Close: 10},
		{Open: 6, Close: 8},
	})
	require.NoError(t, err)
	return s
}

func TestNewSeries(t *testing.T) {
	t.Parallel()
	_, err := NewSeries(" ", []Bar{{Open: 1, Close: 1}})
	assert.ErrorIs(t, err, common.ErrEmptySymbol)

	_, err = NewSeries("TSLA", nil)
	assert.ErrorIs(t, err, ErrNoBars)

	for _, b := range []Bar{
		{Open: 0, Close: 1},
		{Open: 1, Close: -2},
		{Open: math.NaN(), Close: 1},
		{Open: 1, Close: math.Inf(1)},
	} {
		_, err = NewSeries("TSLA", []Bar{{Open: 1, Close: 1}, b})
		assert.ErrorIs(t, err, ErrInvalidPrice, b)
	}

	bars := []Bar{{Open: 1, Close: 2}}
	s, err := NewSeries("TSLA", bars)
	require.NoError(t, err)
	bars[0].Open = 1337
	assert.Equal(t, 1.0, s.Bars[0].Open, "series must not alias caller bars")
}

func TestValidate(t *testing.T) {
	t.Parallel()
	var s *Series
	assert.ErrorIs(t, s.Validate(), common.ErrNilPointer)
	assert.ErrorIs(t, (&Series{}).Validate(), common.ErrEmptySymbol)
	assert.ErrorIs(t, (&Series{Symbol: "TSLA"}).Validate(), ErrNoBars)
	assert.ErrorIs(t, (&Series{Symbol: "TSLA", Bars: []Bar{{Open: math.NaN(), Close: 1}}}).Validate(), ErrInvalidPrice)
	assert.ErrorIs(t, (&Series{Symbol: "TSLA", Bars: []Bar{{Open: 1, Close: 0}}}).Validate(), ErrInvalidPrice)
	assert.NoError(t, testSeries(t).Validate())
}

func TestAverages(t *testing.T) {
	t.Parallel()
	s := testSeries(t)
	assert.Equal(t, 11.0, s.Latest().Average())

	avgs, err := s.Averages(0, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{11, 9, 7}, avgs)

	avgs, err = s.Averages(1, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{9, 7}, avgs)

	_, err = s.Averages(1, 3)
	assert.ErrorIs(t, err, ErrInsufficientData)
	_, err = s.Averages(0, 0)
	assert.ErrorIs(t, err, ErrInsufficientData)
	_, err = s.Averages(-1, 1)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestChronological(t *testing.T) {
	t.Parallel()
	s := testSeries(t)
	assert.Equal(t, 2, s.Chronological(0), "oldest bar is stored last")
	assert.Equal(t, 0, s.Chronological(2))
}

func TestTruncate(t *testing.T) {
	t.Parallel()
	s := testSeries(t)
	assert.Equal(t, 2, s.Truncate(2).Len())
	assert.Equal(t, 12.0, s.Truncate(2).Latest().Close)
	assert.Equal(t, 3, s.Truncate(0).Len())
	assert.Equal(t, 3, s.Truncate(50).Len())
}

func TestWithQuote(t *testing.T) {
	t.Parallel()
	s := testSeries(t)
	_, err := s.WithQuote(0)
	assert.ErrorIs(t, err, ErrInvalidQuote)
	_, err = s.WithQuote(math.NaN())
	assert.ErrorIs(t, err, ErrInvalidQuote)
	_, err = s.WithQuote(math.Inf(1))
	assert.ErrorIs(t, err, ErrInvalidQuote)

	q, err := s.WithQuote(13)
	require.NoError(t, err)
	assert.Equal(t, 13.0, q.Latest().Close)
	assert.Equal(t, 12.0, s.Latest().Close, "original series must be untouched")
}
