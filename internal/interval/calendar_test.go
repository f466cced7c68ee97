package interval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsLeapYear(t *testing.T) {
	assert.True(t, IsLeapYear(2024))
	assert.True(t, IsLeapYear(2000))
	assert.False(t, IsLeapYear(1900))
	assert.False(t, IsLeapYear(2025))
	assert.True(t, IsLeapYear(1600))
	assert.False(t, IsLeapYear(2100))
}

func TestDaysInMonth(t *testing.T) {
	d, err := DaysInMonth(2024, 2)
	require.NoError(t, err)
	assert.Equal(t, 29, d)

	d, err = DaysInMonth(2025, 2)
	require.NoError(t, err)
	assert.Equal(t, 28, d)

	d, err = DaysInMonth(2025, 12)
	require.NoError(t, err)
	assert.Equal(t, 31, d)

	d, err = DaysInMonth(2025, 4)
	require.NoError(t, err)
	assert.Equal(t, 30, d)

	_, err = DaysInMonth(2025, 0)
	require.Error(t, err)
	_, err = DaysInMonth(2025, 13)
	require.Error(t, err)
	var merr *InvalidMonthError
	assert.ErrorAs(t, err, &merr)
}

func TestWeekdayOf(t *testing.T) {
	// Known anchors: 1970-01-01 Thursday, 2000-01-01 Saturday,
	// 2024-02-29 Thursday, 2026-08-01 Saturday.
	assert.Equal(t, 4, WeekdayOf(1970, 1, 1))
	assert.Equal(t, 6, WeekdayOf(2000, 1, 1))
	assert.Equal(t, 4, WeekdayOf(2024, 2, 29))
	assert.Equal(t, 6, WeekdayOf(2026, 8, 1))
	assert.Equal(t, 1, WeekdayOf(2024, 1, 1)) // Monday
	assert.Equal(t, 7, WeekdayOf(2024, 1, 7)) // Sunday
}

func TestCivilDayRoundTrip(t *testing.T) {
	assert.Equal(t, int64(0), daysFromCivil(1970, 1, 1))
	assert.Equal(t, int64(-1), daysFromCivil(1969, 12, 31))

	for day := int64(-150_000); day <= 150_000; day += 37 {
		y, m, d := civilFromDays(day)
		assert.Equal(t, day, daysFromCivil(y, m, d), "round trip for day %d (%04d-%02d-%02d)", day, y, m, d)
	}
}

func TestNthWeekdayOfMonth(t *testing.T) {
	// January 2024: the 1st is a Monday.
	d, ok, err := NthWeekdayOfMonth(2024, 1, 1, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, d)

	// Fifth Monday of January 2024 exists (the 29th).
	d, ok, err = NthWeekdayOfMonth(2024, 1, 1, 5)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 29, d)

	// Fifth Monday of February 2024 does not (only four: 5, 12, 19, 26).
	_, ok, err = NthWeekdayOfMonth(2024, 2, 1, 5)
	require.NoError(t, err)
	assert.False(t, ok)

	// Last Friday of December 2024 is the 27th.
	d, ok, err = NthWeekdayOfMonth(2024, 12, 5, -1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 27, d)

	_, _, err = NthWeekdayOfMonth(2024, 1, 0, 1)
	require.Error(t, err)
	_, _, err = NthWeekdayOfMonth(2024, 1, 1, 0)
	require.Error(t, err)
	_, _, err = NthWeekdayOfMonth(2024, 1, 1, 6)
	require.Error(t, err)
	_, _, err = NthWeekdayOfMonth(2024, 13, 1, 1)
	require.Error(t, err)
}

func TestLocalPartsInstantRoundTrip(t *testing.T) {
	// 2024-06-15 00:00 UTC as a base midnight, plus 9h30m.
	base := int64(1718409600000)
	parts, err := LocalMinutesToParts(base, 570, "UTC")
	require.NoError(t, err)
	assert.Equal(t, LocalParts{Year: 2024, Month: 6, Day: 15, Minutes: 570}, parts)

	instant, ok, err := PartsToInstantUTC(parts, "UTC")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, base+570*millisPerMinute, instant)

	_, err = LocalMinutesToParts(base, 0, "Not/AZone")
	require.Error(t, err)
	var tzErr *InvalidTimezoneError
	assert.ErrorAs(t, err, &tzErr)
}
