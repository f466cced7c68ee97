package interval

import (
	"fmt"
	"time"
)

// Errors for the calendar and recurrence domain.

// InvalidMonthError reports a month outside 1..12.
type InvalidMonthError struct {
	Got int
}

func (e *InvalidMonthError) Error() string {
	return fmt.Sprintf("invalid month %d: must be in 1..12", e.Got)
}

// InvalidDayError reports a day-of-month that no month can hold, or that
// the named month can never hold.
type InvalidDayError struct {
	Month int
	Got   int
}

func (e *InvalidDayError) Error() string {
	if e.Month == 0 {
		return fmt.Sprintf("invalid day %d: must be in 1..31", e.Got)
	}
	return fmt.Sprintf("invalid day %d for month %d", e.Got, e.Month)
}

// InvalidTimezoneError reports a timezone name the zone database rejected.
type InvalidTimezoneError struct {
	Name  string
	Cause error
}

func (e *InvalidTimezoneError) Error() string {
	return fmt.Sprintf("invalid timezone %q: %v", e.Name, e.Cause)
}

func (e *InvalidTimezoneError) Unwrap() error { return e.Cause }

// IsLeapYear reports whether y is a leap year in the proleptic Gregorian
// calendar.
func IsLeapYear(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

var daysPerMonth = [13]int{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// DaysInMonth returns the number of days in (y, m).
func DaysInMonth(y, m int) (int, error) {
	if m < 1 || m > 12 {
		return 0, &InvalidMonthError{Got: m}
	}
	if m == 2 && IsLeapYear(y) {
		return 29, nil
	}
	return daysPerMonth[m], nil
}

// daysFromCivil converts a civil date to days since 1970-01-01, valid over
// the whole proleptic Gregorian range an int can address.
func daysFromCivil(y, m, d int) int64 {
	if m <= 2 {
		y--
	}
	era := y
	if y < 0 {
		era -= 399
	}
	era /= 400
	yoe := int64(y - era*400)
	var mp int64
	if m > 2 {
		mp = int64(m - 3)
	} else {
		mp = int64(m + 9)
	}
	doy := (153*mp+2)/5 + int64(d) - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return int64(era)*146097 + doe - 719468
}

// civilFromDays is the inverse of daysFromCivil.
func civilFromDays(z int64) (y, m, d int) {
	z += 719468
	era := z
	if z < 0 {
		era -= 146096
	}
	era /= 146097
	doe := z - era*146097
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	yr := yoe + era*400
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	mp := (5*doy + 2) / 153
	d = int(doy - (153*mp+2)/5 + 1)
	if mp < 10 {
		m = int(mp + 3)
	} else {
		m = int(mp - 9)
	}
	if m <= 2 {
		yr++
	}
	return int(yr), m, d
}

// WeekdayOf returns the ISO weekday of (y, m, d): 1=Monday .. 7=Sunday.
func WeekdayOf(y, m, d int) int {
	days := daysFromCivil(y, m, d)
	// 1970-01-01 was a Thursday (ISO 4).
	wd := (days + 3) % 7
	if wd < 0 {
		wd += 7
	}
	return int(wd) + 1
}

// NthWeekdayOfMonth returns the day-of-month of the n-th occurrence of
// weekday (1=Mon..7=Sun) in (y, m). n may be 1..5 counting from the start
// or -1..-5 counting from the end. It returns ok=false when the requested
// occurrence does not exist (e.g. a fifth Monday in a four-Monday month) —
// absence, not an error. Out-of-domain weekday or n is an error.
func NthWeekdayOfMonth(y, m, weekday, n int) (int, bool, error) {
	if weekday < 1 || weekday > 7 {
		return 0, false, fmt.Errorf("invalid weekday %d: must be in 1..7", weekday)
	}
	if n == 0 || n < -5 || n > 5 {
		return 0, false, fmt.Errorf("invalid occurrence %d: must be in ±1..±5", n)
	}
	dim, err := DaysInMonth(y, m)
	if err != nil {
		return 0, false, err
	}

	var matches []int
	for d := 1; d <= dim; d++ {
		if WeekdayOf(y, m, d) == weekday {
			matches = append(matches, d)
		}
	}
	var idx int
	if n > 0 {
		idx = n - 1
	} else {
		idx = len(matches) + n
	}
	if idx < 0 || idx >= len(matches) {
		return 0, false, nil
	}
	return matches[idx], true, nil
}

// LocalParts is a civil wall-clock position: a date plus minutes past
// local midnight.
type LocalParts struct {
	Year    int
	Month   int
	Day     int
	Minutes int
}

const millisPerMinute = 60_000

func loadLocation(tz string) (*time.Location, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, &InvalidTimezoneError{Name: tz, Cause: err}
	}
	return loc, nil
}

// LocalMinutesToParts interprets baseMidnightUTC + minutes (both in UTC
// epoch milliseconds / minutes) as an instant and reads off its wall-clock
// parts in tz. It is the inverse of PartsToInstantUTC modulo DST ambiguity.
func LocalMinutesToParts(baseMidnightUTC int64, minutes int64, tz string) (LocalParts, error) {
	loc, err := loadLocation(tz)
	if err != nil {
		return LocalParts{}, err
	}
	t := time.UnixMilli(baseMidnightUTC + minutes*millisPerMinute).In(loc)
	return LocalParts{
		Year:    t.Year(),
		Month:   int(t.Month()),
		Day:     t.Day(),
		Minutes: t.Hour()*60 + t.Minute(),
	}, nil
}

// PartsToInstantUTC resolves a wall-clock position in tz to a UTC instant
// in epoch milliseconds. In a DST gap (spring-forward) the earliest
// resolvable instant at or after the requested wall time is chosen; in a
// fold (fall-back) the chronologically first of the two candidates wins.
// ok=false means the position could not be resolved at all, which callers
// treat as "drop this instance".
func PartsToInstantUTC(parts LocalParts, tz string) (int64, bool, error) {
	loc, err := loadLocation(tz)
	if err != nil {
		return 0, false, err
	}
	t, ok := resolveWallClock(parts, loc)
	if !ok {
		return 0, false, nil
	}
	return t.UnixMilli(), true, nil
}

// resolveWallClock maps a wall-clock position onto an instant in loc with
// the gap/fold policy above. Minutes of 1440 denote the next local
// midnight, allowing overnight recurrence bounds.
func resolveWallClock(parts LocalParts, loc *time.Location) (time.Time, bool) {
	y, m, d := parts.Year, parts.Month, parts.Day
	minutes := parts.Minutes
	if minutes == 1440 {
		y, m, d = civilFromDays(daysFromCivil(y, m, d) + 1)
		minutes = 0
	}

	t := time.Date(y, time.Month(m), d, minutes/60, minutes%60, 0, 0, loc)

	// A fold replays the same wall time at two instants, usually an hour
	// apart (some zones use 30 minutes). If an earlier instant shows the
	// same wall clock, prefer it.
	for _, back := range []time.Duration{time.Hour, 30 * time.Minute} {
		earlier := t.Add(-back)
		if sameWallClock(earlier, y, m, d, minutes) {
			t = earlier
			break
		}
	}

	if sameWallClock(t, y, m, d, minutes) {
		return t, true
	}
	// The wall time fell in a spring-forward gap. Depending on the zone,
	// time.Date lands either past the gap or the gap's length before the
	// requested wall time; in the latter case shift forward by the
	// shortfall, so the result is the requested wall time read in the
	// offset in force before the transition.
	want := time.Date(y, time.Month(m), d, minutes/60, minutes%60, 0, 0, time.UTC)
	got := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	if got.Before(want) {
		t = t.Add(want.Sub(got))
	}
	return t, true
}

func sameWallClock(t time.Time, y, m, d, minutes int) bool {
	return t.Year() == y && int(t.Month()) == m && t.Day() == d &&
		t.Hour()*60+t.Minute() == minutes
}
