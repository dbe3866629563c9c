package mlmodel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricecast/pricecast/features"
)

func rowOf(t *testing.T, pairs ...any) *features.Row {
	t.Helper()
	require.Zero(t, len(pairs)%2, "pairs must come in name/value couples")
	row := features.NewRow()
	for i := 0; i < len(pairs); i += 2 {
		row.Set(pairs[i].(string), pairs[i+1])
	}
	return row
}

func TestLinearModelPredict(t *testing.T) {
	t.Run("InterceptOnly", func(t *testing.T) {
		m := NewLinearModel([]string{"year", "month"}, 42.5, nil)
		got, err := m.Predict(rowOf(t, "year", 2025, "month", 5))
		require.NoError(t, err)
		assert.Equal(t, 42.5, got)
	})

	t.Run("WeightedSum", func(t *testing.T) {
		m := NewLinearModel([]string{"a", "b"}, 1, map[string]float64{"a": 2, "b": 0.5})
		got, err := m.Predict(rowOf(t, "a", 3, "b", 4.0))
		require.NoError(t, err)
		assert.Equal(t, 1+2*3+0.5*4, got)
	})

	t.Run("NaNInputPropagates", func(t *testing.T) {
		m := NewLinearModel([]string{"a", "b"}, 1, map[string]float64{"a": 2, "b": 3})
		got, err := m.Predict(rowOf(t, "a", math.NaN(), "b", 4.0))
		require.NoError(t, err)
		assert.True(t, math.IsNaN(got))
	})

	t.Run("Features", func(t *testing.T) {
		m := NewLinearModel([]string{"a", "b"}, 0, nil)
		fs := m.Features()
		assert.Equal(t, []string{"a", "b"}, fs)
		fs[0] = "mutated"
		assert.Equal(t, []string{"a", "b"}, m.Features())
	})
}

func TestModelSchemaMismatch(t *testing.T) {
	m := NewLinearModel([]string{"a", "b"}, 0, nil)

	t.Run("MissingColumn", func(t *testing.T) {
		_, err := m.Predict(rowOf(t, "a", 1))
		assert.ErrorIs(t, err, ErrSchemaMismatch)
	})

	t.Run("ExtraColumn", func(t *testing.T) {
		_, err := m.Predict(rowOf(t, "a", 1, "b", 2, "c", 3))
		assert.ErrorIs(t, err, ErrSchemaMismatch)
	})

	t.Run("WrongOrder", func(t *testing.T) {
		_, err := m.Predict(rowOf(t, "b", 2, "a", 1))
		require.ErrorIs(t, err, ErrSchemaMismatch)
		assert.Contains(t, err.Error(), `"b"`)
	})

	t.Run("NonNumericValue", func(t *testing.T) {
		_, err := m.Predict(rowOf(t, "a", "code", "b", 2))
		require.ErrorIs(t, err, ErrSchemaMismatch)
		assert.Contains(t, err.Error(), "not numeric")
	})
}

func leaf(v float64) *treeNode {
	return &treeNode{Leaf: &v}
}

func TestTreeEnsemblePredict(t *testing.T) {
	// One split on "price": left leaf 10, right leaf 20, NaN defaults right.
	split := &treeNode{
		Feature:   "price",
		Threshold: 5,
		Default:   "right",
		Left:      leaf(10),
		Right:     leaf(20),
	}
	m := newTreeEnsemble([]string{"price"}, 100, []*treeNode{split, leaf(1)})

	t.Run("RoutesLeftBelowThreshold", func(t *testing.T) {
		got, err := m.Predict(rowOf(t, "price", 4.0))
		require.NoError(t, err)
		assert.Equal(t, 100+10+1.0, got)
	})

	t.Run("RoutesRightAtThreshold", func(t *testing.T) {
		got, err := m.Predict(rowOf(t, "price", 5.0))
		require.NoError(t, err)
		assert.Equal(t, 100+20+1.0, got)
	})

	t.Run("NaNFollowsDefaultBranch", func(t *testing.T) {
		got, err := m.Predict(rowOf(t, "price", math.NaN()))
		require.NoError(t, err)
		assert.Equal(t, 100+20+1.0, got)
	})

	t.Run("NaNDefaultsLeftWhenUnset", func(t *testing.T) {
		noDefault := &treeNode{Feature: "price", Threshold: 5, Left: leaf(10), Right: leaf(20)}
		m := newTreeEnsemble([]string{"price"}, 0, []*treeNode{noDefault})
		got, err := m.Predict(rowOf(t, "price", math.NaN()))
		require.NoError(t, err)
		assert.Equal(t, 10.0, got)
	})
}
