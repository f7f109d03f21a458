package valueobject

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPeriod(t *testing.T) {
	t.Run("creates a normalized period", func(t *testing.T) {
		p, err := NewPeriod(
			time.Date(2025, 1, 1, 15, 4, 5, 0, time.UTC),
			time.Date(2025, 1, 31, 9, 0, 0, 0, time.UTC),
		)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), p.Start())
		assert.Equal(t, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), p.End())
	})

	t.Run("normalizes zoned times to UTC days", func(t *testing.T) {
		loc := time.FixedZone("UTC+10", 10*3600)
		p, err := NewPeriod(
			time.Date(2025, 1, 1, 5, 0, 0, 0, loc), // still Dec 31 in UTC
			time.Date(2025, 1, 31, 23, 0, 0, 0, loc),
		)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), p.Start())
	})

	t.Run("single day period is valid", func(t *testing.T) {
		day := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
		p, err := NewPeriod(day, day)
		require.NoError(t, err)
		assert.True(t, p.Start().Equal(p.End()))
	})

	t.Run("fails when end precedes start", func(t *testing.T) {
		_, err := NewPeriod(
			time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		)
		require.Error(t, err)
	})

	t.Run("fails on zero times", func(t *testing.T) {
		_, err := NewPeriod(time.Time{}, time.Now())
		require.Error(t, err)
	})
}

func TestPeriodContains(t *testing.T) {
	p, err := NewPeriod(
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	assert.True(t, p.Contains(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, p.Contains(time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC)))
	assert.False(t, p.Contains(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, p.Contains(time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC)))
}

func TestPeriodEndExclusive(t *testing.T) {
	p, err := NewPeriod(
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), p.EndExclusive())
}

func TestPeriodEqualsAndString(t *testing.T) {
	a, _ := NewPeriod(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC))
	b, _ := NewPeriod(time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC), time.Date(2025, 1, 31, 20, 0, 0, 0, time.UTC))
	c, _ := NewPeriod(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC))

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
	assert.Equal(t, "2025-01-01..2025-01-31", a.String())
}
