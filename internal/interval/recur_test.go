package interval

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func utcMillis(y int, m time.Month, d, h, min int) int64 {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC).UnixMilli()
}

func TestExpandDailyUTC(t *testing.T) {
	w := Window{
		StartMS: utcMillis(2024, time.June, 1, 0, 0),
		EndMS:   utcMillis(2024, time.June, 4, 0, 0),
	}
	got, err := ExpandDaily(w, 540, 1020, "UTC") // 09:00-17:00
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, utcMillis(2024, time.June, 1, 9, 0), got[0].Start)
	assert.Equal(t, utcMillis(2024, time.June, 1, 17, 0), got[0].End)
	assert.Equal(t, utcMillis(2024, time.June, 3, 9, 0), got[2].Start)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i].Start, got[i-1].Start, "output must be in nondecreasing start order")
	}
}

func TestExpandDailyOvernight(t *testing.T) {
	w := Window{
		StartMS: utcMillis(2024, time.June, 1, 0, 0),
		EndMS:   utcMillis(2024, time.June, 2, 0, 0),
	}
	// 22:00 to next local midnight.
	got, err := ExpandDaily(w, 1320, 1440, "UTC")
	require.NoError(t, err)
	require.NotEmpty(t, got)
	last := got[len(got)-1]
	assert.Equal(t, utcMillis(2024, time.June, 1, 22, 0), last.Start)
	assert.Equal(t, utcMillis(2024, time.June, 2, 0, 0), last.End)
}

// TestExpandDailySpringForwardGap: America/New_York 2024-03-10, the local
// hour 02:00-03:00 does not exist. An instance starting at 02:30 resolves
// to the earliest instant after the gap rather than being dropped.
func TestExpandDailySpringForwardGap(t *testing.T) {
	w := Window{
		StartMS: utcMillis(2024, time.March, 10, 0, 0),
		EndMS:   utcMillis(2024, time.March, 11, 0, 0),
	}
	got, err := ExpandDaily(w, 150, 240, "America/New_York") // 02:30-04:00 local
	require.NoError(t, err)
	require.NotEmpty(t, got)

	// 03:30 EDT == 07:30 UTC is the earliest resolvable instant for the
	// non-existent 02:30 EST wall time.
	assert.Equal(t, utcMillis(2024, time.March, 10, 7, 30), got[0].Start)
	assert.Equal(t, utcMillis(2024, time.March, 10, 8, 0), got[0].End)
}

// TestExpandDailyFallBackFold: America/New_York 2024-11-03, the local hour
// 01:00-02:00 repeats. The chronologically first resolution wins, so 01:30
// local maps to 05:30 UTC (EDT), not 06:30 UTC (EST).
func TestExpandDailyFallBackFold(t *testing.T) {
	w := Window{
		StartMS: utcMillis(2024, time.November, 3, 0, 0),
		EndMS:   utcMillis(2024, time.November, 4, 0, 0),
	}
	got, err := ExpandDaily(w, 90, 120, "America/New_York") // 01:30-02:00 local
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, utcMillis(2024, time.November, 3, 5, 30), got[0].Start)
}

func TestExpandWeeklyFiltersWeekdays(t *testing.T) {
	// 2024-06-03 is a Monday; scan two weeks, keep Mon and Fri.
	w := Window{
		StartMS: utcMillis(2024, time.June, 3, 0, 0),
		EndMS:   utcMillis(2024, time.June, 17, 0, 0),
	}
	got, err := ExpandWeekly(w, 540, 600, "UTC", []int{1, 5})
	require.NoError(t, err)
	require.Len(t, got, 4) // Mon 3rd, Fri 7th, Mon 10th, Fri 14th
	assert.Equal(t, utcMillis(2024, time.June, 3, 9, 0), got[0].Start)
	assert.Equal(t, utcMillis(2024, time.June, 7, 9, 0), got[1].Start)
	assert.Equal(t, utcMillis(2024, time.June, 10, 9, 0), got[2].Start)
	assert.Equal(t, utcMillis(2024, time.June, 14, 9, 0), got[3].Start)

	_, err = ExpandWeekly(w, 540, 600, "UTC", []int{0})
	require.Error(t, err)
	_, err = ExpandWeekly(w, 540, 600, "UTC", []int{8})
	require.Error(t, err)
}

func TestExpandMonthlyByDayClampsToMonthEnd(t *testing.T) {
	w := Window{
		StartMS: utcMillis(2024, time.January, 1, 0, 0),
		EndMS:   utcMillis(2024, time.May, 1, 0, 0),
	}
	got, err := ExpandMonthlyByDay(w, 31, 540, 600, "UTC")
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, utcMillis(2024, time.January, 31, 9, 0), got[0].Start)
	assert.Equal(t, utcMillis(2024, time.February, 29, 9, 0), got[1].Start) // clamped, leap year
	assert.Equal(t, utcMillis(2024, time.March, 31, 9, 0), got[2].Start)
	assert.Equal(t, utcMillis(2024, time.April, 30, 9, 0), got[3].Start) // clamped

	_, err = ExpandMonthlyByDay(w, 0, 540, 600, "UTC")
	require.Error(t, err)
	_, err = ExpandMonthlyByDay(w, 32, 540, 600, "UTC")
	require.Error(t, err)
}

func TestExpandMonthlyBySetPos(t *testing.T) {
	w := Window{
		StartMS: utcMillis(2024, time.January, 1, 0, 0),
		EndMS:   utcMillis(2024, time.April, 1, 0, 0),
	}
	// Last Friday of each month: Jan 26, Feb 23, Mar 29.
	got, err := ExpandMonthlyBySetPos(w, 5, -1, 540, 600, "UTC")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, utcMillis(2024, time.January, 26, 9, 0), got[0].Start)
	assert.Equal(t, utcMillis(2024, time.February, 23, 9, 0), got[1].Start)
	assert.Equal(t, utcMillis(2024, time.March, 29, 9, 0), got[2].Start)

	// Fifth Monday exists in January (29th) but not February or March 2024
	// (March's Mondays: 4, 11, 18, 25).
	got, err = ExpandMonthlyBySetPos(w, 1, 5, 540, 600, "UTC")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, utcMillis(2024, time.January, 29, 9, 0), got[0].Start)

	_, err = ExpandMonthlyBySetPos(w, 5, 0, 540, 600, "UTC")
	require.Error(t, err)
	_, err = ExpandMonthlyBySetPos(w, 5, 6, 540, 600, "UTC")
	require.Error(t, err)
}

// TestExpandYearlySkipsFeb29: a Feb-29 rule fires only in leap years.
func TestExpandYearlySkipsFeb29(t *testing.T) {
	w := Window{
		StartMS: utcMillis(2024, time.January, 1, 0, 0),
		EndMS:   utcMillis(2028, time.January, 1, 0, 0),
	}
	got, err := ExpandYearly(w, 2, 29, 540, 1020, "UTC")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, utcMillis(2024, time.February, 29, 9, 0), got[0].Start)
	assert.Equal(t, utcMillis(2024, time.February, 29, 17, 0), got[0].End)

	got, err = ExpandYearly(w, 12, 25, 540, 1020, "UTC")
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestExpandYearlyValidation(t *testing.T) {
	w := Window{StartMS: 0, EndMS: 1}
	_, err := ExpandYearly(w, 0, 1, 540, 600, "UTC")
	require.Error(t, err)
	_, err = ExpandYearly(w, 13, 1, 540, 600, "UTC")
	require.Error(t, err)
	_, err = ExpandYearly(w, 2, 30, 540, 600, "UTC")
	require.Error(t, err)
	_, err = ExpandYearly(w, 4, 31, 540, 600, "UTC")
	require.Error(t, err)
	_, err = ExpandYearly(w, 2, 29, 540, 600, "UTC")
	require.NoError(t, err, "Feb 29 is a valid rule even though it skips non-leap years")
	_, err = ExpandYearly(w, 12, 25, 540, 600, "No/Such/Zone")
	require.Error(t, err)
}

// TestExpandMonotoneInWindow: enlarging the window never removes an
// interval, only adds.
func TestExpandMonotoneInWindow(t *testing.T) {
	small := Window{
		StartMS: utcMillis(2024, time.June, 5, 0, 0),
		EndMS:   utcMillis(2024, time.June, 10, 0, 0),
	}
	big := Window{
		StartMS: utcMillis(2024, time.June, 1, 0, 0),
		EndMS:   utcMillis(2024, time.June, 20, 0, 0),
	}
	smallOut, err := ExpandDaily(small, 540, 1020, "America/New_York")
	require.NoError(t, err)
	bigOut, err := ExpandDaily(big, 540, 1020, "America/New_York")
	require.NoError(t, err)

	for _, iv := range smallOut {
		assert.Contains(t, bigOut, iv)
	}
	assert.Greater(t, len(bigOut), len(smallOut))
}

func TestExpandRejectsBadWindowAndBounds(t *testing.T) {
	good := Window{StartMS: 0, EndMS: millisPerDay}
	_, err := ExpandDaily(Window{StartMS: 10, EndMS: 10}, 540, 600, "UTC")
	require.Error(t, err)
	_, err = ExpandDaily(good, -1, 600, "UTC")
	require.Error(t, err)
	_, err = ExpandDaily(good, 600, 600, "UTC")
	require.Error(t, err)
	_, err = ExpandDaily(good, 600, 1441, "UTC")
	require.Error(t, err)
	_, err = ExpandDaily(good, 540, 600, "Invalid/Zone")
	require.Error(t, err)
}
