package calendar

import "time"

// EndOfDay returns t's calendar day in loc, pinned to 23:59:59.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, loc)
}

// AddMonths advances t by n calendar months in loc, clamping the day of
// month when the target month is shorter (Jan 31 + 1 month = Feb 28/29).
func AddMonths(t time.Time, n int, loc *time.Location) time.Time {
	t = t.In(loc)

	year := t.Year()
	month := int(t.Month()) - 1 + n
	year += month / 12
	month = month % 12
	if month < 0 {
		month += 12
		year--
	}

	day := t.Day()
	if last := daysIn(year, time.Month(month+1), loc); day > last {
		day = last
	}

	return time.Date(year, time.Month(month+1), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

// AddMonthsEndOfDay combines AddMonths and EndOfDay. Payment and expiry
// dates are always stored this way.
func AddMonthsEndOfDay(t time.Time, n int, loc *time.Location) time.Time {
	return EndOfDay(AddMonths(t, n, loc), loc)
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	a, b = a.In(loc), b.In(loc)
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func daysIn(year int, m time.Month, loc *time.Location) int {
	// Day 0 of the next month is the last day of m.
	return time.Date(year, m+1, 0, 0, 0, 0, 0, loc).Day()
}
