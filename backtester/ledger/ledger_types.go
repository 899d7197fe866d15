package ledger

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrAlreadyHeld is returned when buying a symbol that is already held
	ErrAlreadyHeld = errors.New("symbol already held")
	// ErrNotHeld is returned when selling a symbol that is not held
	ErrNotHeld = errors.New("symbol not held")
	// ErrInvalidPrice is returned for non-positive or non-finite prices
	ErrInvalidPrice = errors.New("price must be finite and greater than zero")
	// ErrInvalidFraction is returned when the allocation fraction is outside (0, 1]
	ErrInvalidFraction = errors.New("fraction must be within (0, 1]")
	// ErrInitialFundsZero is returned when a ledger is created without funds
	ErrInitialFundsZero = errors.New("initial funds must be greater than zero")
)

// Ledger is a single run, all-in/all-out portfolio used while simulating a
// strategy. It carries no fees, margin or partial fills.
type Ledger struct {
	initialFunds decimal.Decimal
	balance      decimal.Decimal
	holdings     map[string]*Holding
	trades       int
}

// Holding is an open position in a symbol
type Holding struct {
	Symbol     string
	Amount     decimal.Decimal
	EntryPrice decimal.Decimal
}
