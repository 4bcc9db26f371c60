package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidYM(t *testing.T) {
	valid := []string{"2025-01", "2025-12", "1999-06"}
	for _, ym := range valid {
		assert.True(t, ValidYM(ym), ym)
	}
	invalid := []string{"", "2025-13", "2025-00", "2025-1", "202501", "2025/01", "2025-01-01"}
	for _, ym := range invalid {
		assert.False(t, ValidYM(ym), ym)
	}
}

func TestMonthBounds(t *testing.T) {
	start, next, err := MonthBounds("2025-06")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), next)

	// Year rollover.
	start, next, err = MonthBounds("2025-12")
	require.NoError(t, err)
	assert.Equal(t, time.December, start.Month())
	assert.Equal(t, 2026, next.Year())

	_, _, err = MonthBounds("bogus")
	assert.Error(t, err)
}

func TestAddMonths(t *testing.T) {
	got, err := AddMonths("2025-11", 2)
	require.NoError(t, err)
	assert.Equal(t, "2026-01", got)

	got, err = AddMonths("2025-01", -1)
	require.NoError(t, err)
	assert.Equal(t, "2024-12", got)
}

func TestMonthsBetween(t *testing.T) {
	got, err := MonthsBetween("2024-11", "2025-02")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-11", "2024-12", "2025-01", "2025-02"}, got)

	got, err = MonthsBetween("2025-02", "2024-11")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = MonthsBetween("2024-13", "2025-01")
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestRecentPeriods(t *testing.T) {
	now := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	got := RecentPeriods(now, 4)
	assert.Equal(t, []string{"2024-12", "2025-01", "2025-02", "2025-03"}, got)

	assert.Nil(t, RecentPeriods(now, 0))
}

func TestRecentPeriodsMonthEnd(t *testing.T) {
	// May 31 minus one month must land in April, not normalize back to May.
	now := time.Date(2025, 5, 31, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, []string{"2025-03", "2025-04", "2025-05"}, RecentPeriods(now, 3))

	// Crossing February from the 30th.
	now = time.Date(2025, 3, 30, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, []string{"2025-01", "2025-02", "2025-03"}, RecentPeriods(now, 3))
}

func TestImportLockKey(t *testing.T) {
	assert.Equal(t, "import:sales:2025-06:3:lock", ImportLockKey("2025-06", 3))
}
