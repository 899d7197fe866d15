package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/thrasher-corp/strategyfit/backtester/strategies"
	"github.com/thrasher-corp/strategyfit/backtester/strategies/base"
	"github.com/thrasher-corp/strategyfit/common"
)

var boundChangeNames = [...]string{
	Unchanged:       "unchanged",
	BumpedLowerUp:   "bumped-lower-up",
	BumpedUpperDown: "bumped-upper-down",
}

// String implements the stringer interface
func (c BoundChange) String() string {
	if int(c) < len(boundChangeNames) {
		return boundChangeNames[c]
	}
	return fmt.Sprintf("BoundChange(%d)", uint8(c))
}

// MarshalText implements encoding.TextMarshaler
func (c BoundChange) MarshalText() ([]byte, error) {
	if int(c) >= len(boundChangeNames) {
		return nil, fmt.Errorf("%w %d", errUnknownBoundChange, uint8(c))
	}
	return []byte(boundChangeNames[c]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *BoundChange) UnmarshalText(text []byte) error {
	for i := range boundChangeNames {
		if boundChangeNames[i] == string(text) {
			*c = BoundChange(i)
			return nil
		}
	}
	return fmt.Errorf("%w %q", errUnknownBoundChange, text)
}

// Validate checks the bound is ordered
func (b Bound) Validate() error {
	if !(b.Lower <= b.Upper) {
		return fmt.Errorf("%w: lower %v above upper %v", ErrCorruptRegistryState, b.Lower, b.Upper)
	}
	return nil
}

// Midpoint returns the value the search tests for this bound
func (b Bound) Midpoint() float64 {
	return (b.Lower + b.Upper) / 2
}

// DefaultBounds returns the initial search ranges of kind with every entry
// unchanged
func DefaultBounds(kind base.Kind) (BoundState, error) {
	var bounds []Bound
	switch kind {
	case base.ThresholdReversion:
		bounds = []Bound{{5, 30}, {0, 65}, {40, 100}}
	case base.BandBreakout:
		bounds = []Bound{{3, 20}, {0.05, 0.2}, {1, 10}}
	case base.Crossover:
		bounds = []Bound{{3, 16}, {20, 49}}
	case base.BuyAndHold:
	default:
		return nil, fmt.Errorf("%w %q", base.ErrUnknownStrategyKind, kind)
	}
	resp := make(BoundState, len(bounds))
	for i := range bounds {
		resp[i] = BoundEntry{Bound: bounds[i]}
	}
	return resp, nil
}

// Validate checks the bound state against kind's parameter count, bound
// ordering and that no more than one entry is changed
func (s BoundState) Validate(kind base.Kind) error {
	want, err := strategies.ParamCount(kind)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptRegistryState, err)
	}
	if len(s) != want {
		return fmt.Errorf("%w: %s has %d bounds, expected %d", ErrCorruptRegistryState, kind, len(s), want)
	}
	var changed int
	for i := range s {
		if err := s[i].Validate(); err != nil {
			return fmt.Errorf("%s bound %d %w", kind, i, err)
		}
		switch s[i].Change {
		case Unchanged:
		case BumpedLowerUp, BumpedUpperDown:
			changed++
		default:
			return fmt.Errorf("%w: %s bound %d %w %d", ErrCorruptRegistryState, kind, i, errUnknownBoundChange, uint8(s[i].Change))
		}
	}
	if changed > 1 {
		return fmt.Errorf("%w: %s has %d changed bounds", ErrCorruptRegistryState, kind, changed)
	}
	return nil
}

// ChangedIndex returns the index of the changed entry or -1 when every entry
// is unchanged
func (s BoundState) ChangedIndex() int {
	for i := range s {
		if s[i].Change != Unchanged {
			return i
		}
	}
	return -1
}

// Midpoints resolves the state into concrete strategy parameters
func (s BoundState) Midpoints() []float64 {
	resp := make([]float64, len(s))
	for i := range s {
		resp[i] = s[i].Midpoint()
	}
	return resp
}

// Clone returns a copy of the state
func (s BoundState) Clone() BoundState {
	if s == nil {
		return nil
	}
	resp := make(BoundState, len(s))
	copy(resp, s)
	return resp
}

// Validate checks the record is internally consistent
func (t *TestedStrategy) Validate() error {
	if t == nil {
		return fmt.Errorf("tested strategy %w", common.ErrNilPointer)
	}
	if err := t.Bounds.Validate(t.Kind); err != nil {
		return err
	}
	if len(t.Params) != len(t.Bounds) {
		return fmt.Errorf("%w: %s has %d params for %d bounds", ErrCorruptRegistryState, t.Kind, len(t.Params), len(t.Bounds))
	}
	if t.StabilityCounter < 0 || t.Iterations < 0 {
		return fmt.Errorf("%w: %s negative counters", ErrCorruptRegistryState, t.Kind)
	}
	return nil
}

// Clone returns a deep copy of the record
func (t *TestedStrategy) Clone() *TestedStrategy {
	if t == nil {
		return nil
	}
	cpy := *t
	if t.Params != nil {
		cpy.Params = make([]float64, len(t.Params))
		copy(cpy.Params, t.Params)
	}
	cpy.Bounds = t.Bounds.Clone()
	return &cpy
}

// NewSelector returns an empty selector for symbol
func NewSelector(symbol string) (*Selector, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, common.ErrEmptySymbol
	}
	return &Selector{Symbol: symbol, Tested: make(map[base.Kind]*TestedStrategy)}, nil
}

// Validate checks every record of the selector
func (s *Selector) Validate() error {
	if s == nil {
		return fmt.Errorf("selector %w", common.ErrNilPointer)
	}
	if s.Symbol == "" {
		return common.ErrEmptySymbol
	}
	var errs error
	for k, t := range s.Tested {
		if t == nil {
			errs = common.AppendError(errs, fmt.Errorf("%s %s %w", s.Symbol, k, common.ErrNilPointer))
			continue
		}
		if t.Kind != k {
			errs = common.AppendError(errs, fmt.Errorf("%w: %s record %s filed under %s", ErrCorruptRegistryState, s.Symbol, t.Kind, k))
			continue
		}
		if err := t.Validate(); err != nil {
			errs = common.AppendError(errs, fmt.Errorf("%s %w", s.Symbol, err))
		}
	}
	if s.Optimal != "" && s.Tested[s.Optimal] == nil {
		errs = common.AppendError(errs, fmt.Errorf("%w: %s optimal kind %s was never tested", ErrCorruptRegistryState, s.Symbol, s.Optimal))
	}
	return errs
}

// Clone returns a deep copy of the selector
func (s *Selector) Clone() *Selector {
	if s == nil {
		return nil
	}
	cpy := &Selector{
		Symbol:  s.Symbol,
		Optimal: s.Optimal,
		Tested:  make(map[base.Kind]*TestedStrategy, len(s.Tested)),
	}
	for k, t := range s.Tested {
		cpy.Tested[k] = t.Clone()
	}
	return cpy
}

// Record returns the tested record of kind, nil when it was never tested
func (s *Selector) Record(kind base.Kind) *TestedStrategy {
	if s == nil {
		return nil
	}
	return s.Tested[kind]
}

// UpdateOptimal marks kind optimal when its best balance is at least as good
// as every other tested kind. It reports whether the optimal kind was set.
func (s *Selector) UpdateOptimal(kind base.Kind) bool {
	t := s.Tested[kind]
	if t == nil {
		return false
	}
	for k, other := range s.Tested {
		if k != kind && other.BestBalance > t.BestBalance {
			return false
		}
	}
	s.Optimal = kind
	return true
}

// Kinds returns the tested kinds sorted by name
func (s *Selector) Kinds() []base.Kind {
	resp := make([]base.Kind, 0, len(s.Tested))
	for k := range s.Tested {
		resp = append(resp, k)
	}
	sort.Slice(resp, func(i, j int) bool { return resp[i] < resp[j] })
	return resp
}

// NewMemoryStore returns an empty in-process store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{selectors: make(map[string]*Selector)}
}

// Load returns a copy of the stored selector for symbol
func (m *MemoryStore) Load(_ context.Context, symbol string) (*Selector, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	s, ok := m.selectors[symbol]
	if !ok {
		return nil, fmt.Errorf("%s %w", symbol, ErrSelectorNotFound)
	}
	return s.Clone(), nil
}

// Save validates and stores a copy of s
func (m *MemoryStore) Save(_ context.Context, s *Selector) error {
	if err := s.Validate(); err != nil {
		return err
	}
	m.m.Lock()
	defer m.m.Unlock()
	m.selectors[s.Symbol] = s.Clone()
	return nil
}

// List returns a copy of every stored selector sorted by symbol
func (m *MemoryStore) List(_ context.Context) ([]*Selector, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	resp := make([]*Selector, 0, len(m.selectors))
	for _, s := range m.selectors {
		resp = append(resp, s.Clone())
	}
	SortSelectors(resp)
	return resp, nil
}

// SortSelectors orders selectors by symbol
func SortSelectors(s []*Selector) {
	sort.Slice(s, func(i, j int) bool { return s[i].Symbol < s[j].Symbol })
}
