package ledger

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSymbol = "TSLA"

func TestNew(t *testing.T) {
	t.Parallel()
	_, err := New(0)
	assert.ErrorIs(t, err, ErrInitialFundsZero)
	_, err = New(-1)
	assert.ErrorIs(t, err, ErrInitialFundsZero)
	_, err = New(math.NaN())
	assert.ErrorIs(t, err, ErrInitialFundsZero)
	_, err = New(math.Inf(1))
	assert.ErrorIs(t, err, ErrInitialFundsZero)

	l, err := New(10000)
	require.NoError(t, err)
	assert.Equal(t, 10000.0, l.Balance())
	assert.Equal(t, 10000.0, l.InitialFunds())
}

func TestBuy(t *testing.T) {
	t.Parallel()
	l, err := New(10000)
	require.NoError(t, err)

	assert.ErrorIs(t, l.Buy(testSymbol, 0, 1), ErrInvalidPrice)
	assert.ErrorIs(t, l.Buy(testSymbol, math.NaN(), 1), ErrInvalidPrice)
	assert.ErrorIs(t, l.Buy(testSymbol, math.Inf(1), 1), ErrInvalidPrice)
	assert.ErrorIs(t, l.Buy(testSymbol, 10, math.NaN()), ErrInvalidFraction)
	assert.False(t, l.Holds(testSymbol))
	assert.ErrorIs(t, l.Buy(testSymbol, 10, 0), ErrInvalidFraction)
	assert.ErrorIs(t, l.Buy(testSymbol, 10, 1.5), ErrInvalidFraction)

	require.NoError(t, l.Buy(testSymbol, 20, 0.5))
	assert.Equal(t, 5000.0, l.Balance())
	h, ok := l.Holding(testSymbol)
	require.True(t, ok)
	assert.True(t, h.Amount.Equal(decimal.NewFromInt(250)), h.Amount.String())
	assert.True(t, h.EntryPrice.Equal(decimal.NewFromInt(20)))

	assert.ErrorIs(t, l.Buy(testSymbol, 20, 0.5), ErrAlreadyHeld)
	assert.Equal(t, 1, l.TradeCount())
}

func TestSell(t *testing.T) {
	t.Parallel()
	l, err := New(10000)
	require.NoError(t, err)
	assert.ErrorIs(t, l.Sell(testSymbol, 10), ErrNotHeld)

	require.NoError(t, l.Buy(testSymbol, 10, 1))
	assert.Equal(t, 0.0, l.Balance())
	assert.ErrorIs(t, l.Sell(testSymbol, -1), ErrInvalidPrice)
	assert.ErrorIs(t, l.Sell(testSymbol, math.NaN()), ErrInvalidPrice)
	assert.ErrorIs(t, l.Sell(testSymbol, math.Inf(-1)), ErrInvalidPrice)
	assert.True(t, l.Holds(testSymbol))

	require.NoError(t, l.Sell(testSymbol, 12))
	assert.Equal(t, 12000.0, l.Balance())
	assert.False(t, l.Holds(testSymbol))
	_, ok := l.Holding(testSymbol)
	assert.False(t, ok)
	assert.Equal(t, 2, l.TradeCount())
}

func TestLiquidate(t *testing.T) {
	t.Parallel()
	l, err := New(10000)
	require.NoError(t, err)
	require.NoError(t, l.Liquidate(testSymbol, 10), "liquidating nothing is a no-op")
	assert.Equal(t, 10000.0, l.Balance())

	require.NoError(t, l.Buy(testSymbol, 8, 1))
	require.NoError(t, l.Liquidate(testSymbol, 6))
	assert.Equal(t, 7500.0, l.Balance())
	assert.Equal(t, 2, l.TradeCount())
}
