package optimiser

import (
	"context"
	"errors"
	"fmt"

	"github.com/thrasher-corp/strategyfit/backtester/strategies"
	"github.com/thrasher-corp/strategyfit/backtester/strategies/base"
	"github.com/thrasher-corp/strategyfit/log"
	"github.com/thrasher-corp/strategyfit/prices"
	"github.com/thrasher-corp/strategyfit/registry"
)

// Signal evaluates the symbol's optimal strategy on the newest bars. The
// strategy is rebuilt from the midpoints of its stored bounds.
func (e *Engine) Signal(ctx context.Context, series *prices.Series) (base.Kind, base.Action, error) {
	if err := series.Validate(); err != nil {
		return "", base.Hold, err
	}
	sel, err := e.load(ctx, series.Symbol)
	if err != nil {
		return "", base.Hold, err
	}
	if sel.Optimal == "" {
		return "", base.Hold, fmt.Errorf("%s optimal strategy not established: %w", series.Symbol, base.ErrStrategyNotValidated)
	}
	a, err := e.signal(series, sel, sel.Optimal)
	return sel.Optimal, a, err
}

// SignalFor evaluates kind for the series' symbol regardless of which kind
// is optimal
func (e *Engine) SignalFor(ctx context.Context, series *prices.Series, kind base.Kind) (base.Action, error) {
	if err := series.Validate(); err != nil {
		return base.Hold, err
	}
	if _, err := strategies.ParamCount(kind); err != nil {
		return base.Hold, err
	}
	sel, err := e.load(ctx, series.Symbol)
	if err != nil {
		return base.Hold, err
	}
	return e.signal(series, sel, kind)
}

func (e *Engine) load(ctx context.Context, symbol string) (*registry.Selector, error) {
	defer e.lock(symbol)()
	sel, err := e.store.Load(ctx, symbol)
	if errors.Is(err, registry.ErrSelectorNotFound) {
		return nil, fmt.Errorf("%w: %w", base.ErrStrategyNotValidated, err)
	}
	return sel, err
}

func (e *Engine) signal(series *prices.Series, sel *registry.Selector, kind base.Kind) (base.Action, error) {
	rec := sel.Record(kind)
	if rec == nil {
		return base.Hold, fmt.Errorf("%s %s has not been searched: %w", sel.Symbol, kind, base.ErrStrategyNotValidated)
	}
	if err := rec.Bounds.Validate(kind); err != nil {
		return base.Hold, err
	}
	h, err := strategies.New(kind, rec.Bounds.Midpoints())
	if err != nil {
		return base.Hold, err
	}
	a, err := h.Signal(series, rec.BestBalance, e.positions)
	if err != nil {
		return base.Hold, err
	}
	log.Infof(log.Strategy, "%s %s signal %s, best balance %.2f", sel.Symbol, h.Name(), a, rec.BestBalance)
	return a, nil
}
