package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Display layouts of the fixed locale (day first, 24-hour clock).
const (
	DateLayout = "02/01/2006"
	TimeLayout = "15:04"
)

// ParseError reports date or time text that is not a valid DD/MM/YYYY HH:MM instant.
type ParseError struct {
	Date   string
	Time   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q %q: %s", e.Date, e.Time, e.Reason)
}

// ParseDateTime combines DD/MM/YYYY and HH:MM text into one instant. Both texts
// must match exactly; surrounding whitespace is rejected. The result carries no
// zone information beyond UTC wall clock.
func ParseDateTime(dateText, timeText string) (time.Time, error) {
	fail := func(reason string) (time.Time, error) {
		return time.Time{}, &ParseError{Date: dateText, Time: timeText, Reason: reason}
	}

	dateParts := strings.Split(dateText, "/")
	if len(dateParts) != 3 {
		return fail("date must be DD/MM/YYYY")
	}
	timeParts := strings.Split(timeText, ":")
	if len(timeParts) != 2 {
		return fail("time must be HH:MM")
	}

	day, ok1 := digits(dateParts[0], 2)
	month, ok2 := digits(dateParts[1], 2)
	year, ok3 := digits(dateParts[2], 4)
	if !ok1 || !ok2 || !ok3 {
		return fail("date must be DD/MM/YYYY")
	}
	hour, ok4 := digits(timeParts[0], 2)
	minute, ok5 := digits(timeParts[1], 2)
	if !ok4 || !ok5 {
		return fail("time must be HH:MM")
	}

	if hour > 23 || minute > 59 {
		return fail("time out of range")
	}
	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC)
	// time.Date normalises overflow (32/01 -> 01/02); reject anything that moved.
	if t.Day() != day || int(t.Month()) != month || t.Year() != year {
		return fail("no such calendar date")
	}
	return t, nil
}

// digits parses s as exactly n decimal digits.
func digits(s string, n int) (int, bool) {
	if len(s) != n {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	v, err := strconv.Atoi(s)
	return v, err == nil
}

// FormatDate renders t as DD/MM/YYYY.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatTime renders t as HH:MM.
func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}
