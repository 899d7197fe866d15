package strategies

import (
	"fmt"
	"strings"

	"github.com/thrasher-corp/strategyfit/backtester/strategies/base"
	"github.com/thrasher-corp/strategyfit/backtester/strategies/bollinger"
	"github.com/thrasher-corp/strategyfit/backtester/strategies/buyandhold"
	"github.com/thrasher-corp/strategyfit/backtester/strategies/crossover"
	"github.com/thrasher-corp/strategyfit/backtester/strategies/rsi"
)

// New builds the variant for kind with params
func New(kind base.Kind, params []float64) (Handler, error) {
	switch kind {
	case base.ThresholdReversion:
		return rsi.New(params)
	case base.BandBreakout:
		return bollinger.New(params)
	case base.Crossover:
		return crossover.New(params)
	case base.BuyAndHold:
		return buyandhold.New(params)
	default:
		return nil, fmt.Errorf("%w %q", base.ErrUnknownStrategyKind, kind)
	}
}

// Kinds returns every supported kind in selection order
func Kinds() []base.Kind {
	return []base.Kind{
		base.BandBreakout,
		base.Crossover,
		base.ThresholdReversion,
		base.BuyAndHold,
	}
}

// ParamCount returns the number of parameters kind expects
func ParamCount(kind base.Kind) (int, error) {
	switch kind {
	case base.ThresholdReversion:
		return rsi.ParamCount, nil
	case base.BandBreakout:
		return bollinger.ParamCount, nil
	case base.Crossover:
		return crossover.ParamCount, nil
	case base.BuyAndHold:
		return buyandhold.ParamCount, nil
	default:
		return 0, fmt.Errorf("%w %q", base.ErrUnknownStrategyKind, kind)
	}
}

// ParseKind accepts a registry kind or a strategy name, case insensitively
func ParseKind(s string) (base.Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case string(base.ThresholdReversion), rsi.Name:
		return base.ThresholdReversion, nil
	case string(base.BandBreakout), bollinger.Name:
		return base.BandBreakout, nil
	case string(base.Crossover), crossover.Name:
		return base.Crossover, nil
	case string(base.BuyAndHold), buyandhold.Name:
		return base.BuyAndHold, nil
	default:
		return "", fmt.Errorf("%w %q", base.ErrUnknownStrategyKind, s)
	}
}
