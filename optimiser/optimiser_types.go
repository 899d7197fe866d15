package optimiser

import (
	"errors"
	"sync"
	"time"

	"github.com/thrasher-corp/strategyfit/backtester/strategies/base"
	"github.com/thrasher-corp/strategyfit/prices"
	"github.com/thrasher-corp/strategyfit/registry"
)

// DefaultMaxSearchCalls caps how often Optimise calls Search for one symbol
const DefaultMaxSearchCalls = 50

var (
	errNilStore       = errors.New("nil registry store")
	errInvalidBalance = errors.New("simulation returned an invalid balance")
	errDuplicateKind  = errors.New("duplicate kind in priority")
	errBadPriority    = errors.New("priority must list every strategy kind")
)

// SimulateFunc runs one backtest of kind with params over series
type SimulateFunc func(kind base.Kind, params []float64, series *prices.Series) (float64, error)

// Picker returns a uniformly random index in [0, n)
type Picker func(n int) int

// Config controls strategy selection and the caller loop
type Config struct {
	// Priority is the order untested kinds are picked in
	Priority []base.Kind
	// Fallback is searched once every kind has been tested
	Fallback base.Kind
	// MaxSearchCalls bounds Optimise
	MaxSearchCalls int
	// Seed seeds the random pick for a fresh symbol, zero uses the clock
	Seed int64
}

// Engine is the parameter search engine. All search state is persisted in
// the registry so calls for different symbols may run concurrently; calls for
// the same symbol are serialised.
type Engine struct {
	store     registry.Store
	positions base.PositionChecker
	priority  []base.Kind
	fallback  base.Kind
	maxCalls  int
	pick      Picker
	simulate  SimulateFunc
	now       func() time.Time

	m     sync.Mutex
	locks map[string]*symbolLock
}

// symbolLock serialises calls for one symbol, waiters counts holders and
// callers queued on mu
type symbolLock struct {
	mu      sync.Mutex
	waiters int
}

// Outcome describes a single search call
type Outcome struct {
	Symbol    string
	Kind      base.Kind
	Params    []float64
	Balance   float64
	Best      float64
	Reverted  bool
	Converged bool
}
