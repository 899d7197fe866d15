// Package indicators holds the stateless technical analysis functions used by
// the strategy runtime. Every input is ordered most-recent-first and already
// sliced to the window the caller is interested in.
package indicators

import (
	"errors"
	"fmt"
	"math"

	gctindicators "github.com/thrasher-corp/gct-ta/indicators"
)

const (
	// DefaultDeviations is the standard deviation multiplier for Bollinger
	// bands
	DefaultDeviations = 2.0
	// DefaultRSILength is the classic RSI look back
	DefaultRSILength = 14

	rsiSaturated = 100.0
	rsiNeutral   = 50.0
)

// Side selects which Bollinger band to derive
type Side uint8

// Band sides
const (
	Lower Side = iota
	Upper
)

// ErrInsufficientData is returned when a window is larger than the supplied
// series
var ErrInsufficientData = errors.New("insufficient data")

// MovingAverage returns the simple mean of the first length values
func MovingAverage(series []float64, length int) (float64, error) {
	if length < 1 || length > len(series) {
		return 0, fmt.Errorf("moving average length %d with %d values %w", length, len(series), ErrInsufficientData)
	}
	sma := gctindicators.SMA(series[:length], length)
	return sma[length-1], nil
}

// Band returns the upper or lower Bollinger band over the first length values
// using the population standard deviation
func Band(series []float64, length int, side Side, deviations float64) (float64, error) {
	ma, err := MovingAverage(series, length)
	if err != nil {
		return 0, err
	}
	var sum float64
	for i := 0; i < length; i++ {
		d := series[i] - ma
		sum += d * d
	}
	total := deviations * math.Sqrt(sum/float64(length))
	if side == Lower {
		return ma - total, nil
	}
	return ma + total, nil
}

// RelativeStrength returns the RSI over length first differences, so length+1
// values are consumed. Gains and losses are simple averages. A window without
// losses saturates at 100, a perfectly flat window reads 50.
func RelativeStrength(series []float64, length int) (float64, error) {
	if length < 1 || length+1 > len(series) {
		return 0, fmt.Errorf("relative strength length %d with %d values %w", length, len(series), ErrInsufficientData)
	}
	var gains, losses float64
	for i := 0; i < length; i++ {
		diff := series[i] - series[i+1]
		if diff > 0 {
			gains += diff
		} else {
			losses -= diff
		}
	}
	avgGain := gains / float64(length)
	avgLoss := losses / float64(length)
	if avgLoss == 0 {
		if avgGain == 0 {
			return rsiNeutral, nil
		}
		return rsiSaturated, nil
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), nil
}
