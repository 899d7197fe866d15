// Package live tracks which symbols are currently held and by which strategy
// kind. The store is updated by the caller after an action has actually been
// executed and is read by signal evaluation to decide whether a buy or sell is
// allowed.
package live

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/thrasher-corp/strategyfit/backtester/strategies/base"
	"github.com/thrasher-corp/strategyfit/common"
	"github.com/thrasher-corp/strategyfit/common/file"
	"github.com/thrasher-corp/strategyfit/log"
)

// New returns a store persisted at path, loading any existing positions. An
// empty path keeps positions in memory only. maxPositions of zero or less
// disables the cap.
func New(path string, maxPositions int) (*Store, error) {
	s := &Store{
		path:         path,
		maxPositions: maxPositions,
		now:          func() time.Time { return time.Now().UTC() },
	}
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return s, nil
	}
	if err = json.Unmarshal(data, &s.positions); err != nil {
		return nil, fmt.Errorf("loading positions from %s: %w", path, err)
	}
	seen := make(map[Position]bool, len(s.positions))
	for i := range s.positions {
		key := Position{Symbol: s.positions[i].Symbol, Kind: s.positions[i].Kind}
		if key.Symbol == "" {
			return nil, fmt.Errorf("%s position %d %w", path, i, common.ErrEmptySymbol)
		}
		if seen[key] {
			return nil, fmt.Errorf("%s %s %s %w", path, key.Symbol, key.Kind, ErrAlreadyHeld)
		}
		seen[key] = true
	}
	return s, nil
}

// Holds reports whether symbol is held under kind
func (s *Store) Holds(symbol string, kind base.Kind) (bool, error) {
	if symbol == "" {
		return false, common.ErrEmptySymbol
	}
	s.m.RLock()
	defer s.m.RUnlock()
	return s.index(symbol, kind) >= 0, nil
}

// Record applies an executed action. BUY opens a position, SELL closes it and
// HOLD changes nothing.
func (s *Store) Record(symbol string, kind base.Kind, action base.Action) error {
	if symbol == "" {
		return common.ErrEmptySymbol
	}
	s.m.Lock()
	defer s.m.Unlock()
	idx := s.index(symbol, kind)
	switch action {
	case base.Hold:
		return nil
	case base.Buy:
		if idx >= 0 {
			return fmt.Errorf("%s %s %w", symbol, kind, ErrAlreadyHeld)
		}
		if s.maxPositions > 0 && len(s.positions) >= s.maxPositions {
			return fmt.Errorf("%s %s %w of %d", symbol, kind, ErrPortfolioFull, s.maxPositions)
		}
		s.positions = append(s.positions, Position{Symbol: symbol, Kind: kind, OpenedAt: s.now()})
		if err := s.persist(); err != nil {
			s.positions = s.positions[:len(s.positions)-1]
			return err
		}
	case base.Sell:
		if idx < 0 {
			return fmt.Errorf("%s %s %w", symbol, kind, ErrNotHeld)
		}
		removed := s.positions[idx]
		s.positions = append(s.positions[:idx], s.positions[idx+1:]...)
		if err := s.persist(); err != nil {
			s.positions = append(s.positions[:idx], append([]Position{removed}, s.positions[idx:]...)...)
			return err
		}
	default:
		return fmt.Errorf("%w %v", errUnknownAction, action)
	}
	log.Infof(log.PortfolioMgr, "%s %s recorded %s, %d open positions", symbol, kind, action, len(s.positions))
	return nil
}

// List returns a copy of every open position
func (s *Store) List() []Position {
	s.m.RLock()
	defer s.m.RUnlock()
	resp := make([]Position, len(s.positions))
	copy(resp, s.positions)
	return resp
}

// Len returns the number of open positions
func (s *Store) Len() int {
	s.m.RLock()
	defer s.m.RUnlock()
	return len(s.positions)
}

func (s *Store) index(symbol string, kind base.Kind) int {
	for i := range s.positions {
		if s.positions[i].Symbol == symbol && s.positions[i].Kind == kind {
			return i
		}
	}
	return -1
}

func (s *Store) persist() error {
	if s.path == "" {
		return nil
	}
	positions := s.positions
	if positions == nil {
		positions = []Position{}
	}
	data, err := json.MarshalIndent(positions, "", " ")
	if err != nil {
		return err
	}
	return file.Write(s.path, data)
}
