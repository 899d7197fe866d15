package registry

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thrasher-corp/strategyfit/backtester/strategies/base"
	"github.com/thrasher-corp/strategyfit/common"
)

func testSelector(t *testing.T) *Selector {
	t.Helper()
	s, err := NewSelector("ORCL")
	require.NoError(t, err)
	bounds, err := DefaultBounds(base.ThresholdReversion)
	require.NoError(t, err)
	bounds[1].Lower = 16.25
	bounds[1].Change = BumpedLowerUp
	s.Tested[base.ThresholdReversion] = &TestedStrategy{
		Kind:             base.ThresholdReversion,
		Params:           []float64{17.5, 32.5, 70},
		Bounds:           bounds,
		BestBalance:      12345.67,
		NarrowFromBelow:  true,
		StabilityCounter: 2,
		Iterations:       4,
		UpdatedAt:        time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	s.Tested[base.BuyAndHold] = &TestedStrategy{
		Kind:        base.BuyAndHold,
		Params:      []float64{},
		Bounds:      BoundState{},
		BestBalance: 11000,
	}
	s.Optimal = base.ThresholdReversion
	return s
}

func TestBoundChangeText(t *testing.T) {
	t.Parallel()
	for _, c := range []BoundChange{Unchanged, BumpedLowerUp, BumpedUpperDown} {
		text, err := c.MarshalText()
		require.NoError(t, err)
		assert.Equal(t, c.String(), string(text))
		var back BoundChange
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, c, back)
	}
	_, err := BoundChange(7).MarshalText()
	assert.ErrorIs(t, err, errUnknownBoundChange)
	var c BoundChange
	assert.ErrorIs(t, c.UnmarshalText([]byte("sideways")), errUnknownBoundChange)
	assert.Equal(t, "BoundChange(7)", BoundChange(7).String())
}

func TestBoundChangeJSON(t *testing.T) {
	t.Parallel()
	b, err := json.Marshal(BoundEntry{Bound: Bound{Lower: 1, Upper: 2}, Change: BumpedUpperDown})
	require.NoError(t, err)
	assert.JSONEq(t, `{"lower":1,"upper":2,"change":"bumped-upper-down"}`, string(b))
}

func TestBound(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Bound{Lower: 1, Upper: 1}.Validate())
	assert.ErrorIs(t, Bound{Lower: 2, Upper: 1}.Validate(), ErrCorruptRegistryState)
	assert.Equal(t, 17.5, Bound{Lower: 5, Upper: 30}.Midpoint())
}

func TestDefaultBounds(t *testing.T) {
	t.Parallel()
	rsi, err := DefaultBounds(base.ThresholdReversion)
	require.NoError(t, err)
	assert.Equal(t, []float64{17.5, 32.5, 70}, rsi.Midpoints())
	assert.Equal(t, -1, rsi.ChangedIndex())

	bb, err := DefaultBounds(base.BandBreakout)
	require.NoError(t, err)
	assert.Equal(t, []float64{11.5, 0.125, 5.5}, bb.Midpoints())

	ma, err := DefaultBounds(base.Crossover)
	require.NoError(t, err)
	assert.Equal(t, []float64{9.5, 34.5}, ma.Midpoints())

	hdl, err := DefaultBounds(base.BuyAndHold)
	require.NoError(t, err)
	assert.Empty(t, hdl)
	assert.NoError(t, hdl.Validate(base.BuyAndHold))

	_, err = DefaultBounds("dca")
	assert.ErrorIs(t, err, base.ErrUnknownStrategyKind)
}

func TestBoundStateValidate(t *testing.T) {
	t.Parallel()
	s, err := DefaultBounds(base.Crossover)
	require.NoError(t, err)
	assert.NoError(t, s.Validate(base.Crossover))
	assert.ErrorIs(t, s.Validate(base.ThresholdReversion), ErrCorruptRegistryState)
	assert.ErrorIs(t, s.Validate("dca"), ErrCorruptRegistryState)

	s[0].Change = BumpedLowerUp
	assert.NoError(t, s.Validate(base.Crossover))
	assert.Equal(t, 0, s.ChangedIndex())

	s[1].Change = BumpedUpperDown
	assert.ErrorIs(t, s.Validate(base.Crossover), ErrCorruptRegistryState)

	s[1].Change = BoundChange(9)
	assert.ErrorIs(t, s.Validate(base.Crossover), ErrCorruptRegistryState)

	s[1] = BoundEntry{Bound: Bound{Lower: 50, Upper: 20}}
	assert.ErrorIs(t, s.Validate(base.Crossover), ErrCorruptRegistryState)
}

func TestSelectorValidate(t *testing.T) {
	t.Parallel()
	var nilSelector *Selector
	assert.ErrorIs(t, nilSelector.Validate(), common.ErrNilPointer)

	s := testSelector(t)
	require.NoError(t, s.Validate())

	s.Tested[base.ThresholdReversion].Params = []float64{1}
	assert.ErrorIs(t, s.Validate(), ErrCorruptRegistryState)

	s = testSelector(t)
	s.Tested[base.Crossover] = s.Tested[base.BuyAndHold]
	assert.ErrorIs(t, s.Validate(), ErrCorruptRegistryState)

	s = testSelector(t)
	s.Optimal = base.BandBreakout
	assert.ErrorIs(t, s.Validate(), ErrCorruptRegistryState)

	_, err := NewSelector(" ")
	assert.ErrorIs(t, err, common.ErrEmptySymbol)
}

func TestSelectorClone(t *testing.T) {
	t.Parallel()
	s := testSelector(t)
	cpy := s.Clone()
	assert.Equal(t, s, cpy)
	cpy.Tested[base.ThresholdReversion].Params[0] = 99
	cpy.Tested[base.ThresholdReversion].Bounds[0].Lower = 99
	assert.Equal(t, 17.5, s.Tested[base.ThresholdReversion].Params[0])
	assert.Equal(t, 5.0, s.Tested[base.ThresholdReversion].Bounds[0].Lower)
}

func TestUpdateOptimal(t *testing.T) {
	t.Parallel()
	s := testSelector(t)
	assert.False(t, s.UpdateOptimal(base.BuyAndHold))
	assert.Equal(t, base.ThresholdReversion, s.Optimal)

	s.Tested[base.BuyAndHold].BestBalance = s.Tested[base.ThresholdReversion].BestBalance
	assert.True(t, s.UpdateOptimal(base.BuyAndHold), "ties go to the latest search")
	assert.Equal(t, base.BuyAndHold, s.Optimal)

	assert.False(t, s.UpdateOptimal(base.Crossover))
	assert.Equal(t, []base.Kind{base.BuyAndHold, base.ThresholdReversion}, s.Kinds())
	assert.Nil(t, s.Record(base.Crossover))
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMemoryStore()
	_, err := m.Load(ctx, "ORCL")
	assert.ErrorIs(t, err, ErrSelectorNotFound)

	s := testSelector(t)
	require.NoError(t, m.Save(ctx, s))
	s.Tested[base.ThresholdReversion].BestBalance = 1

	loaded, err := m.Load(ctx, "ORCL")
	require.NoError(t, err)
	assert.Equal(t, 12345.67, loaded.Tested[base.ThresholdReversion].BestBalance)

	other, err := NewSelector("AAPL")
	require.NoError(t, err)
	require.NoError(t, m.Save(ctx, other))
	list, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "AAPL", list[0].Symbol)

	bad := testSelector(t)
	bad.Tested[base.ThresholdReversion].Bounds[0].Upper = -1
	assert.ErrorIs(t, m.Save(ctx, bad), ErrCorruptRegistryState)
}
