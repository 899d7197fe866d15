package strategies

import (
	"github.com/thrasher-corp/strategyfit/backtester/strategies/base"
	"github.com/thrasher-corp/strategyfit/prices"
)

// Handler is the behaviour every strategy variant shares. Simulate must be
// pure in the series and the parameters the handler was built with.
type Handler interface {
	Kind() base.Kind
	Name() string
	Description() string
	Params() []float64
	Simulate(*prices.Series) (float64, error)
	Signal(series *prices.Series, bestBalance float64, positions base.PositionChecker) (base.Action, error)
}
