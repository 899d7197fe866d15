package live

import (
	"errors"
	"sync"
	"time"

	"github.com/thrasher-corp/strategyfit/backtester/strategies/base"
)

var (
	// ErrAlreadyHeld is returned when recording a buy for an open position
	ErrAlreadyHeld = errors.New("position already held")
	// ErrNotHeld is returned when recording a sell without an open position
	ErrNotHeld = errors.New("position not held")
	// ErrPortfolioFull is returned when a buy would exceed the position cap
	ErrPortfolioFull = errors.New("portfolio is at capacity")

	errUnknownAction = errors.New("unknown action")
)

// Position is a live holding opened by a strategy kind
type Position struct {
	Symbol   string    `json:"symbol"`
	Kind     base.Kind `json:"kind"`
	OpenedAt time.Time `json:"opened-at"`
}

// Store tracks live positions. When a path is set every change is written
// through to a JSON file.
type Store struct {
	m            sync.RWMutex
	path         string
	maxPositions int
	positions    []Position
	now          func() time.Time
}
