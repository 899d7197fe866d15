package base

import (
	"errors"
	"math"

	"github.com/thrasher-corp/strategyfit/backtester/ledger"
	"github.com/thrasher-corp/strategyfit/prices"
)

// StartingBalance is the funds every simulation starts with and the balance a
// strategy must beat before it is trusted live
const StartingBalance = 10000.0

// MaxLength caps window lengths derived from search parameters
const MaxLength = math.MaxInt32

// Kind identifies one of the closed set of strategy variants
type Kind string

// Strategy kinds. The values are persisted in the registry.
const (
	ThresholdReversion Kind = "rsi"
	BandBreakout       Kind = "bb"
	Crossover          Kind = "ma"
	BuyAndHold         Kind = "hdl"
)

// Action is a live trading recommendation
type Action uint8

// Actions
const (
	Hold Action = iota
	Buy
	Sell
)

var (
	// ErrUnknownStrategyKind is returned when constructing an unrecognised kind
	ErrUnknownStrategyKind = errors.New("unknown strategy kind")
	// ErrStrategyNotValidated is returned when a live signal is requested
	// before any backtest balance has been recorded
	ErrStrategyNotValidated = errors.New("strategy has not been validated by a backtest")
	// ErrInvalidParams is returned when a strategy receives the wrong number of
	// parameters
	ErrInvalidParams = errors.New("invalid strategy parameters")
	// ErrNilPositions is returned when a live signal has no position source
	ErrNilPositions = errors.New("nil position checker")
	// ErrUnknownAction is returned when text does not name an action
	ErrUnknownAction = errors.New("unknown action")
)

// PositionChecker reports whether a symbol is currently held live under a
// strategy kind
type PositionChecker interface {
	Holds(symbol string, kind Kind) (bool, error)
}

// StepFunc evaluates one bar of a simulation. offset is the storage offset of
// the bar being evaluated, most recent is zero.
type StepFunc func(series *prices.Series, offset int, l *ledger.Ledger) error
