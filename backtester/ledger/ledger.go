package ledger

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// New returns a ledger funded with initialFunds
func New(initialFunds float64) (*Ledger, error) {
	if !finitePositive(initialFunds) {
		return nil, ErrInitialFundsZero
	}
	funds := decimal.NewFromFloat(initialFunds)
	if !funds.IsPositive() {
		return nil, ErrInitialFundsZero
	}
	return &Ledger{
		initialFunds: funds,
		balance:      funds,
		holdings:     make(map[string]*Holding),
	}, nil
}

// finitePositive reports whether v is safe to convert to a decimal amount
func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// Buy allocates fraction of the current balance into symbol at price
func (l *Ledger) Buy(symbol string, price, fraction float64) error {
	if _, ok := l.holdings[symbol]; ok {
		return fmt.Errorf("%s %w", symbol, ErrAlreadyHeld)
	}
	if !finitePositive(price) {
		return fmt.Errorf("%s buy at %v %w", symbol, price, ErrInvalidPrice)
	}
	if !finitePositive(fraction) || fraction > 1 {
		return fmt.Errorf("%s buy fraction %v %w", symbol, fraction, ErrInvalidFraction)
	}
	p := decimal.NewFromFloat(price)
	committed := l.balance.Mul(decimal.NewFromFloat(fraction))
	l.holdings[symbol] = &Holding{
		Symbol:     symbol,
		Amount:     committed.Div(p),
		EntryPrice: p,
	}
	l.balance = l.balance.Sub(committed)
	l.trades++
	return nil
}

// Sell closes the whole holding of symbol at price
func (l *Ledger) Sell(symbol string, price float64) error {
	h, ok := l.holdings[symbol]
	if !ok {
		return fmt.Errorf("%s %w", symbol, ErrNotHeld)
	}
	if !finitePositive(price) {
		return fmt.Errorf("%s sell at %v %w", symbol, price, ErrInvalidPrice)
	}
	l.balance = l.balance.Add(h.Amount.Mul(decimal.NewFromFloat(price)))
	delete(l.holdings, symbol)
	l.trades++
	return nil
}

// Liquidate sells symbol at price when it is held and does nothing otherwise
func (l *Ledger) Liquidate(symbol string, price float64) error {
	if !l.Holds(symbol) {
		return nil
	}
	return l.Sell(symbol, price)
}

// Holds returns whether the ledger has an open position in symbol
func (l *Ledger) Holds(symbol string) bool {
	_, ok := l.holdings[symbol]
	return ok
}

// Holding returns a copy of the open position in symbol
func (l *Ledger) Holding(symbol string) (Holding, bool) {
	h, ok := l.holdings[symbol]
	if !ok {
		return Holding{}, false
	}
	return *h, true
}

// Balance returns the uncommitted funds
func (l *Ledger) Balance() float64 {
	return l.balance.InexactFloat64()
}

// InitialFunds returns the funds the ledger started with
func (l *Ledger) InitialFunds() float64 {
	return l.initialFunds.InexactFloat64()
}

// TradeCount returns the number of buys and sells executed
func (l *Ledger) TradeCount() int {
	return l.trades
}
