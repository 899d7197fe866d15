package jsonstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thrasher-corp/strategyfit/backtester/strategies/base"
	"github.com/thrasher-corp/strategyfit/registry"
)

func testSelector(t *testing.T, symbol string) *registry.Selector {
	t.Helper()
	s, err := registry.NewSelector(symbol)
	require.NoError(t, err)
	bounds, err := registry.DefaultBounds(base.Crossover)
	require.NoError(t, err)
	bounds[1].Upper = 42.25
	bounds[1].Change = registry.BumpedUpperDown
	s.Tested[base.Crossover] = &registry.TestedStrategy{
		Kind:             base.Crossover,
		Params:           []float64{9.5, 34.5},
		Bounds:           bounds,
		BestBalance:      10432.1,
		StabilityCounter: 1,
		Iterations:       2,
		UpdatedAt:        time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	s.Optimal = base.Crossover
	return s
}

func TestNew(t *testing.T) {
	t.Parallel()
	_, err := New("")
	assert.ErrorIs(t, err, errEmptyPath)

	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, DefaultFileName), s.Path())
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "registry.json")
	s, err := New(path)
	require.NoError(t, err)

	_, err = s.Load(ctx, "AAPL")
	assert.ErrorIs(t, err, registry.ErrSelectorNotFound)
	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	want := testSelector(t, "AAPL")
	require.NoError(t, s.Save(ctx, want))
	require.NoError(t, s.Save(ctx, testSelector(t, "AMZN")))

	// a fresh store over the same file sees identical state
	reopened, err := New(path)
	require.NoError(t, err)
	got, err := reopened.Load(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	want.Tested[base.Crossover].BestBalance = 20000
	require.NoError(t, reopened.Save(ctx, want))
	list, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "AAPL", list[0].Symbol)
	assert.Equal(t, 20000.0, list[0].Tested[base.Crossover].BestBalance)
}

func TestSaveRejectsInvalid(t *testing.T) {
	t.Parallel()
	s, err := New(filepath.Join(t.TempDir(), "registry.json"))
	require.NoError(t, err)
	bad := testSelector(t, "AAPL")
	bad.Tested[base.Crossover].Bounds[0].Change = registry.BumpedLowerUp
	assert.ErrorIs(t, s.Save(context.Background(), bad), registry.ErrCorruptRegistryState)
	assert.NoFileExists(t, s.Path())
}

func TestCorruptDocument(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "registry.json")
	s, err := New(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{"not":"a list"}`), 0o600))
	_, err = s.Load(ctx, "AAPL")
	assert.ErrorIs(t, err, registry.ErrCorruptRegistryState)

	require.NoError(t, os.WriteFile(path, []byte(`[{"symbol":"AAPL","tested":{"ma":{"kind":"ma","params":[1,2],"bounds":[{"lower":5,"upper":1,"change":"unchanged"},{"lower":1,"upper":2,"change":"unchanged"}]}}}]`), 0o600))
	_, err = s.List(ctx)
	assert.ErrorIs(t, err, registry.ErrCorruptRegistryState)

	require.NoError(t, os.WriteFile(path, []byte(`[null]`), 0o600))
	_, err = s.List(ctx)
	assert.ErrorIs(t, err, registry.ErrCorruptRegistryState)
}

func TestCancelledContext(t *testing.T) {
	t.Parallel()
	s, err := New(filepath.Join(t.TempDir(), "registry.json"))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Load(ctx, "AAPL")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Save(ctx, testSelector(t, "AAPL")), context.Canceled)
	_, err = s.List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
