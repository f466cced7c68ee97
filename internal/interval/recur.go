package interval

import (
	"fmt"
	"time"
)

// Recurrence expansion: every operator takes a half-open query window
// [startMS, endMS) in UTC epoch milliseconds and returns the UTC intervals
// whose local wall times in tz satisfy the rule. An emitted interval is
// included iff it overlaps the window (strict half-open overlap); intervals
// come back in nondecreasing start order. An instance whose boundary cannot
// be resolved in the zone is dropped, never an error.

const millisPerDay = 24 * 60 * millisPerMinute

// Window is the half-open UTC query window.
type Window struct {
	StartMS int64
	EndMS   int64
}

func (w Window) wellFormed() bool { return w.StartMS < w.EndMS }

func checkBounds(h0, h1 int) error {
	if h0 < 0 || h0 >= 1440 {
		return fmt.Errorf("start minute %d out of range 0..1439", h0)
	}
	if h1 <= h0 || h1 > 1440 {
		return fmt.Errorf("end minute %d must be in (%d, 1440]", h1, h0)
	}
	return nil
}

// dateRange yields the civil-day numbers (days since 1970-01-01, local)
// whose instances could overlap the window, padded by a day on each side
// so zone offsets never push a hit outside the scan.
func dateRange(w Window, loc *time.Location) (first, last int64) {
	s := time.UnixMilli(w.StartMS).In(loc)
	e := time.UnixMilli(w.EndMS - 1).In(loc)
	first = daysFromCivil(s.Year(), int(s.Month()), s.Day()) - 1
	last = daysFromCivil(e.Year(), int(e.Month()), e.Day()) + 1
	return first, last
}

// emit resolves one instance's boundaries on (y, m, d) and appends the
// interval if both boundaries resolved and it overlaps the window.
func emit(out []Interval, w Window, loc *time.Location, y, m, d, h0, h1 int) []Interval {
	start, ok := resolveWallClock(LocalParts{Year: y, Month: m, Day: d, Minutes: h0}, loc)
	if !ok {
		return out
	}
	end, ok := resolveWallClock(LocalParts{Year: y, Month: m, Day: d, Minutes: h1}, loc)
	if !ok {
		return out
	}
	iv := Interval{Start: start.UnixMilli(), End: end.UnixMilli()}
	if !iv.WellFormed() {
		// A DST transition can collapse an instance to nothing (e.g. an
		// event wholly inside the spring-forward gap); drop it.
		return out
	}
	if iv.Start < w.EndMS && w.StartMS < iv.End {
		out = append(out, iv)
	}
	return out
}

// ExpandDaily emits one [h0, h1) instance per local date. h1 of 1440 means
// the next local midnight, so overnight instances work.
func ExpandDaily(w Window, h0, h1 int, tz string) ([]Interval, error) {
	return ExpandWeekly(w, h0, h1, tz, nil)
}

// ExpandWeekly is ExpandDaily intersected with a weekday set (1=Mon..7=Sun).
// A nil or empty set means every day.
func ExpandWeekly(w Window, h0, h1 int, tz string, byWeekday []int) ([]Interval, error) {
	if !w.wellFormed() {
		return nil, &InvalidIntervalError{Got: Interval{Start: w.StartMS, End: w.EndMS}}
	}
	if err := checkBounds(h0, h1); err != nil {
		return nil, err
	}
	loc, err := loadLocation(tz)
	if err != nil {
		return nil, err
	}
	wanted := make(map[int]bool, len(byWeekday))
	for _, wd := range byWeekday {
		if wd < 1 || wd > 7 {
			return nil, fmt.Errorf("invalid weekday %d: must be in 1..7", wd)
		}
		wanted[wd] = true
	}

	var out []Interval
	first, last := dateRange(w, loc)
	for day := first; day <= last; day++ {
		y, m, d := civilFromDays(day)
		if len(wanted) > 0 && !wanted[WeekdayOf(y, m, d)] {
			continue
		}
		out = emit(out, w, loc, y, m, d, h0, h1)
	}
	return out, nil
}

// ExpandMonthlyByDay emits one instance per month on the target
// day-of-month; a target past the month's length clamps to its last day.
func ExpandMonthlyByDay(w Window, day, h0, h1 int, tz string) ([]Interval, error) {
	if day < 1 || day > 31 {
		return nil, &InvalidDayError{Got: day}
	}
	return expandMonthly(w, h0, h1, tz, func(y, m int) (int, bool) {
		dim, _ := DaysInMonth(y, m)
		if day > dim {
			return dim, true
		}
		return day, true
	})
}

// ExpandMonthlyBySetPos emits one instance per month on the n-th occurrence
// of weekday (1 = first, -1 = last, |n| <= 5); months without that
// occurrence contribute nothing.
func ExpandMonthlyBySetPos(w Window, weekday, setpos, h0, h1 int, tz string) ([]Interval, error) {
	if weekday < 1 || weekday > 7 {
		return nil, fmt.Errorf("invalid weekday %d: must be in 1..7", weekday)
	}
	if setpos == 0 || setpos < -5 || setpos > 5 {
		return nil, fmt.Errorf("invalid occurrence %d: must be in ±1..±5", setpos)
	}
	return expandMonthly(w, h0, h1, tz, func(y, m int) (int, bool) {
		d, ok, err := NthWeekdayOfMonth(y, m, weekday, setpos)
		if err != nil || !ok {
			return 0, false
		}
		return d, true
	})
}

func expandMonthly(w Window, h0, h1 int, tz string, pick func(y, m int) (int, bool)) ([]Interval, error) {
	if !w.wellFormed() {
		return nil, &InvalidIntervalError{Got: Interval{Start: w.StartMS, End: w.EndMS}}
	}
	if err := checkBounds(h0, h1); err != nil {
		return nil, err
	}
	loc, err := loadLocation(tz)
	if err != nil {
		return nil, err
	}

	firstDay, lastDay := dateRange(w, loc)
	y0, m0, _ := civilFromDays(firstDay)
	y1, m1, _ := civilFromDays(lastDay)

	var out []Interval
	for y, m := y0, m0; y < y1 || (y == y1 && m <= m1); y, m = nextMonth(y, m) {
		d, ok := pick(y, m)
		if !ok {
			continue
		}
		out = emit(out, w, loc, y, m, d, h0, h1)
	}
	return out, nil
}

func nextMonth(y, m int) (int, int) {
	if m == 12 {
		return y + 1, 1
	}
	return y, m + 1
}

// ExpandYearly emits one instance per year on (month, day). February 29 is
// skipped outright in non-leap years, never clamped to the 28th.
func ExpandYearly(w Window, month, day, h0, h1 int, tz string) ([]Interval, error) {
	if month < 1 || month > 12 {
		return nil, &InvalidMonthError{Got: month}
	}
	// Validate against the most permissive year, so Feb 29 is accepted
	// (it skips non-leap years at expansion time) but Feb 30 never is.
	maxDay := daysPerMonth[month]
	if month == 2 {
		maxDay = 29
	}
	if day < 1 || day > maxDay {
		return nil, &InvalidDayError{Month: month, Got: day}
	}
	if !w.wellFormed() {
		return nil, &InvalidIntervalError{Got: Interval{Start: w.StartMS, End: w.EndMS}}
	}
	if err := checkBounds(h0, h1); err != nil {
		return nil, err
	}
	loc, err := loadLocation(tz)
	if err != nil {
		return nil, err
	}

	firstDay, lastDay := dateRange(w, loc)
	y0, _, _ := civilFromDays(firstDay)
	y1, _, _ := civilFromDays(lastDay)

	var out []Interval
	for y := y0; y <= y1; y++ {
		if month == 2 && day == 29 && !IsLeapYear(y) {
			continue
		}
		out = emit(out, w, loc, y, month, day, h0, h1)
	}
	return out, nil
}
