package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	want := time.Date(2025, time.May, 20, 0, 0, 0, 0, time.UTC)

	t.Run("ISO", func(t *testing.T) {
		got, err := ParseDate("2025-05-20")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("Compact", func(t *testing.T) {
		got, err := ParseDate("20250520")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("RFC3339NormalizesToMidnight", func(t *testing.T) {
		got, err := ParseDate("2025-05-20T15:04:05Z")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("Unparsable", func(t *testing.T) {
		for _, s := range []string{"", "today", "2025/05/20", "2025-13-01"} {
			_, err := ParseDate(s)
			require.Error(t, err, s)
			assert.ErrorIs(t, err, ErrUnparsableDate)
			assert.Contains(t, err.Error(), s)
		}
	})
}

func TestTimeKeyDate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		got, err := TimeKeyDate(20250520)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, time.May, 20, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("Invalid", func(t *testing.T) {
		for _, tk := range []int{0, 123, 20251301, 20250532, -20250520} {
			_, err := TimeKeyDate(tk)
			require.Error(t, err, tk)
			assert.ErrorIs(t, err, ErrUnparsableDate)
		}
	})
}

func TestDateTimeKey(t *testing.T) {
	assert.Equal(t, 20250520, DateTimeKey(time.Date(2025, time.May, 20, 9, 30, 0, 0, time.UTC)))

	t.Run("RoundTrip", func(t *testing.T) {
		d, err := TimeKeyDate(19991231)
		require.NoError(t, err)
		assert.Equal(t, 19991231, DateTimeKey(d))
	})
}
