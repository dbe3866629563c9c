package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowSetPreservesInsertionOrder(t *testing.T) {
	row := NewRow()
	row.Set("b", 2)
	row.Set("a", 1)
	row.Set("c", "code")

	assert.Equal(t, []string{"b", "a", "c"}, row.Names())
	assert.Equal(t, []any{2, 1, "code"}, row.Values())
	assert.Equal(t, 3, row.Len())
}

func TestRowSetOverwritesInPlace(t *testing.T) {
	row := NewRow()
	row.Set("a", 1)
	row.Set("b", 2)
	row.Set("a", 9)

	assert.Equal(t, []string{"a", "b"}, row.Names())
	v, ok := row.Value("a")
	require.True(t, ok)
	assert.Equal(t, 9, v)
}

func TestRowNumeric(t *testing.T) {
	row := NewRow()
	row.Set("int", 7)
	row.Set("float", 2.5)
	row.Set("code", "A")

	v, ok := row.Numeric("int")
	assert.True(t, ok)
	assert.Equal(t, 7.0, v)

	v, ok = row.Numeric("float")
	assert.True(t, ok)
	assert.Equal(t, 2.5, v)

	_, ok = row.Numeric("code")
	assert.False(t, ok)

	_, ok = row.Numeric("missing")
	assert.False(t, ok)
}

func TestRowAlign(t *testing.T) {
	row := NewRow()
	row.Set("year", 2025)
	row.Set("extra", 42)

	t.Run("ReordersAndDropsExtras", func(t *testing.T) {
		aligned := row.Align([]string{"month", "year"})
		assert.Equal(t, []string{"month", "year"}, aligned.Names())
		assert.False(t, aligned.Has("extra"))
	})

	t.Run("FillsDefaults", func(t *testing.T) {
		aligned := row.Align([]string{"campaign_x", "leaflet_none", "leaflet_paper", "other"})
		assert.Equal(t, []any{0, 1, 0, 0}, aligned.Values())
	})

	t.Run("DoesNotMutateTheSource", func(t *testing.T) {
		_ = row.Align([]string{"month"})
		assert.Equal(t, []string{"year", "extra"}, row.Names())
	})
}
