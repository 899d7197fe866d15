// Package optimiser tunes strategy parameters one coordinate at a time. Each
// search call narrows the range of a single parameter towards the value last
// tested, keeps the narrower range only if it did not perform worse and
// reports convergence after two full cycles without an improvement.
package optimiser

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/thrasher-corp/strategyfit/backtester/strategies"
	"github.com/thrasher-corp/strategyfit/backtester/strategies/base"
	"github.com/thrasher-corp/strategyfit/common"
	"github.com/thrasher-corp/strategyfit/log"
	"github.com/thrasher-corp/strategyfit/prices"
	"github.com/thrasher-corp/strategyfit/registry"
)

// DefaultConfig returns the default selection policy
func DefaultConfig() Config {
	return Config{
		Priority:       strategies.Kinds(),
		Fallback:       base.ThresholdReversion,
		MaxSearchCalls: DefaultMaxSearchCalls,
	}
}

// Validate checks the selection policy
func (c *Config) Validate() error {
	var errs error
	if len(c.Priority) != len(strategies.Kinds()) {
		errs = fmt.Errorf("%w: received %v", errBadPriority, c.Priority)
	}
	seen := make(map[base.Kind]bool, len(c.Priority))
	for _, k := range c.Priority {
		if _, err := strategies.ParamCount(k); err != nil {
			errs = common.AppendError(errs, err)
			continue
		}
		if seen[k] {
			errs = common.AppendError(errs, fmt.Errorf("%w %s", errDuplicateKind, k))
		}
		seen[k] = true
	}
	if _, err := strategies.ParamCount(c.Fallback); err != nil {
		errs = common.AppendError(errs, fmt.Errorf("fallback %w", err))
	}
	if c.MaxSearchCalls <= 0 {
		c.MaxSearchCalls = DefaultMaxSearchCalls
	}
	return errs
}

// Setup returns an engine persisting to store. positions may be nil when
// only searching.
func Setup(store registry.Store, positions base.PositionChecker, cfg *Config) (*Engine, error) {
	if store == nil {
		return nil, errNilStore
	}
	if cfg == nil {
		def := DefaultConfig()
		cfg = &def
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // strategy selection is not security sensitive
	var rngMu sync.Mutex
	priority := make([]base.Kind, len(cfg.Priority))
	copy(priority, cfg.Priority)
	return &Engine{
		store:     store,
		positions: positions,
		priority:  priority,
		fallback:  cfg.Fallback,
		maxCalls:  cfg.MaxSearchCalls,
		pick: func(n int) int {
			rngMu.Lock()
			defer rngMu.Unlock()
			return rng.Intn(n)
		},
		simulate: simulate,
		now:      func() time.Time { return time.Now().UTC() },
		locks:    make(map[string]*symbolLock),
	}, nil
}

func simulate(kind base.Kind, params []float64, series *prices.Series) (float64, error) {
	h, err := strategies.New(kind, params)
	if err != nil {
		return 0, err
	}
	return h.Simulate(series)
}

// lock serialises calls for symbol. The entry is removed once the last
// waiter releases it so the map only holds symbols in use.
func (e *Engine) lock(symbol string) func() {
	e.m.Lock()
	l, ok := e.locks[symbol]
	if !ok {
		l = new(symbolLock)
		e.locks[symbol] = l
	}
	l.waiters++
	e.m.Unlock()
	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		e.m.Lock()
		l.waiters--
		if l.waiters == 0 {
			delete(e.locks, symbol)
		}
		e.m.Unlock()
	}
}

// Search runs one step of the parameter search for the series' symbol and
// reports whether the searched kind converged
func (e *Engine) Search(ctx context.Context, series *prices.Series) (bool, error) {
	o, err := e.SearchOutcome(ctx, series)
	if err != nil {
		return false, err
	}
	return o.Converged, nil
}

// SearchOutcome is Search with the details of the step
func (e *Engine) SearchOutcome(ctx context.Context, series *prices.Series) (*Outcome, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer e.lock(series.Symbol)()

	sel, err := e.store.Load(ctx, series.Symbol)
	switch {
	case errors.Is(err, registry.ErrSelectorNotFound):
		sel, err = registry.NewSelector(series.Symbol)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	}

	kind := e.selectKind(sel)
	prior := sel.Record(kind)
	bounds, narrowFromBelow, err := NextBounds(kind, prior)
	if err != nil {
		return nil, fmt.Errorf("%s %w", series.Symbol, err)
	}
	params := bounds.Midpoints()
	balance, err := e.simulate(kind, params, series)
	if err != nil {
		return nil, fmt.Errorf("%s %s simulation: %w", series.Symbol, kind, err)
	}
	if balance <= 0 || math.IsNaN(balance) || math.IsInf(balance, 0) {
		return nil, fmt.Errorf("%s %s %w: %v", series.Symbol, kind, errInvalidBalance, balance)
	}

	rec := &registry.TestedStrategy{
		Kind:            kind,
		Params:          params,
		Bounds:          bounds,
		BestBalance:     balance,
		NarrowFromBelow: narrowFromBelow,
		Iterations:      1,
		UpdatedAt:       e.now(),
	}
	o := &Outcome{Symbol: series.Symbol, Kind: kind, Params: params, Balance: balance}
	if prior != nil {
		rec.Iterations = prior.Iterations + 1
		if prior.BestBalance > balance {
			// keep the wider range but advance the cycle
			for i := range rec.Bounds {
				rec.Bounds[i].Bound = prior.Bounds[i].Bound
			}
			rec.BestBalance = prior.BestBalance
			o.Reverted = true
		}
		if balance > prior.BestBalance {
			rec.StabilityCounter = 0
		} else {
			rec.StabilityCounter = prior.StabilityCounter + 1
		}
		if rec.StabilityCounter >= 2*len(prior.Params) {
			rec.StabilityCounter = 0
			o.Converged = true
		}
	}
	o.Best = rec.BestBalance

	sel.Tested[kind] = rec
	if sel.UpdateOptimal(kind) {
		log.Debugf(log.Optimiser, "%s optimal strategy is %s with %.2f", sel.Symbol, kind, rec.BestBalance)
	}
	if err = e.store.Save(ctx, sel); err != nil {
		return nil, err
	}
	log.Infof(log.Optimiser, "%s %s params %v balance %.2f best %.2f reverted %v converged %v",
		o.Symbol, o.Kind, o.Params, o.Balance, o.Best, o.Reverted, o.Converged)
	return o, nil
}

// selectKind picks the kind to search next
func (e *Engine) selectKind(sel *registry.Selector) base.Kind {
	if len(sel.Tested) == 0 {
		kinds := strategies.Kinds()
		return kinds[e.pick(len(kinds))]
	}
	for _, k := range e.priority {
		if sel.Tested[k] == nil {
			return k
		}
	}
	return e.fallback
}

// NextBounds derives the bound state to test for kind from the prior record.
// It also returns the narrowing direction to persist.
func NextBounds(kind base.Kind, prior *registry.TestedStrategy) (registry.BoundState, bool, error) {
	if prior == nil {
		bounds, err := registry.DefaultBounds(kind)
		return bounds, false, err
	}
	if prior.Kind != kind {
		return nil, false, fmt.Errorf("%w: %s record used for %s", registry.ErrCorruptRegistryState, prior.Kind, kind)
	}
	if err := prior.Validate(); err != nil {
		return nil, false, err
	}
	n := len(prior.Bounds)
	if n == 0 {
		return registry.BoundState{}, prior.NarrowFromBelow, nil
	}

	changed := prior.Bounds.ChangedIndex()
	next := (changed + 1) % n
	narrowFromBelow := prior.NarrowFromBelow
	if changed == n-1 && len(prior.Params) > 0 {
		narrowFromBelow = !narrowFromBelow
	}

	bounds := prior.Bounds.Clone()
	for i := range bounds {
		bounds[i].Change = registry.Unchanged
	}
	pivot := prior.Params[next]
	if narrowFromBelow {
		bounds[next].Lower = (bounds[next].Lower + pivot) / 2
		bounds[next].Change = registry.BumpedLowerUp
	} else {
		bounds[next].Upper = (bounds[next].Upper + pivot) / 2
		bounds[next].Change = registry.BumpedUpperDown
	}
	if err := bounds[next].Validate(); err != nil {
		return nil, false, fmt.Errorf("%s param %d pivot %v outside bound: %w", kind, next, pivot, err)
	}
	return bounds, narrowFromBelow, nil
}

// Optimise repeats Search until the searched kind converges or the call cap
// is reached. It returns the number of calls made.
func (e *Engine) Optimise(ctx context.Context, series *prices.Series) (calls int, converged bool, err error) {
	for calls < e.maxCalls {
		if err = ctx.Err(); err != nil {
			return calls, false, err
		}
		converged, err = e.Search(ctx, series)
		if err != nil {
			return calls, false, err
		}
		calls++
		if converged {
			return calls, true, nil
		}
	}
	log.Warnf(log.Optimiser, "%s did not converge within %d search calls", series.Symbol, e.maxCalls)
	return calls, false, nil
}
