package registry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/thrasher-corp/strategyfit/backtester/strategies/base"
)

var (
	// ErrSelectorNotFound is returned when a symbol has never been searched
	ErrSelectorNotFound = errors.New("selector not found")
	// ErrCorruptRegistryState is returned when persisted search state breaks
	// one of the registry invariants. It is not recoverable.
	ErrCorruptRegistryState = errors.New("corrupt registry state")

	errUnknownBoundChange = errors.New("unknown bound change")
)

// BoundChange records which side of a bound the last search step moved
type BoundChange uint8

// Bound changes
const (
	Unchanged BoundChange = iota
	BumpedLowerUp
	BumpedUpperDown
)

// Bound is the inclusive search range of one strategy parameter
type Bound struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// BoundEntry is a bound and the change last applied to it
type BoundEntry struct {
	Bound
	Change BoundChange `json:"change"`
}

// BoundState holds one entry per strategy parameter. At most one entry is
// changed at any time.
type BoundState []BoundEntry

// TestedStrategy is the search record of one strategy kind for one symbol
type TestedStrategy struct {
	Kind             base.Kind  `json:"kind"`
	Params           []float64  `json:"params"`
	Bounds           BoundState `json:"bounds"`
	BestBalance      float64    `json:"best-balance"`
	NarrowFromBelow  bool       `json:"narrow-from-below"`
	StabilityCounter int        `json:"stability-counter"`
	Iterations       int        `json:"iterations"`
	UpdatedAt        time.Time  `json:"updated-at"`
}

// Selector is every tested strategy of a symbol and the best of them
type Selector struct {
	Symbol  string                        `json:"symbol"`
	Tested  map[base.Kind]*TestedStrategy `json:"tested"`
	Optimal base.Kind                     `json:"optimal,omitempty"`
}

// Store persists selectors between search calls
type Store interface {
	Load(ctx context.Context, symbol string) (*Selector, error)
	Save(ctx context.Context, s *Selector) error
	List(ctx context.Context) ([]*Selector, error)
}

// MemoryStore is a Store that lives for the lifetime of the process
type MemoryStore struct {
	m         sync.RWMutex
	selectors map[string]*Selector
}
