// Package recurrence maps a task's due date and frequency label to its next
// occurrence. The computation is pure: no clock, no storage, no side effects.
package recurrence

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrInvalidDate reports a due date string that could not be parsed.
var ErrInvalidDate = errors.New("invalid due date")

// step is the interval one completion advances a due date by. Day-based
// labels count whole days; calendar labels count months or years so the
// result follows the calendar instead of a fixed hour count.
type step struct {
	days, months, years int
}

// intervals maps frequency labels (case-sensitive, as stored) to their step.
// "Weekly Twice" advances by 3 whole days, not 3.5: due dates are announced
// at day granularity and half-day drift would walk the trigger across
// midnight. Calendar labels use AddDate normalization, so Jan 31 plus one
// month lands on Mar 2 or Mar 3 rather than clamping to Feb 28.
var intervals = map[string]step{
	"Daily":         {days: 1},
	"Every 2 Days":  {days: 2},
	"Weekly Once":   {days: 7},
	"Weekly Twice":  {days: 3},
	"Monthly Once":  {months: 1},
	"Monthly Twice": {days: 15},
	"2 Months Once": {months: 2},
	"3 Months Once": {months: 3},
	"Yearly":        {years: 1},
	"Every 2 Years": {years: 2},
}

// Recurring reports whether the label is a recognized frequency.
func Recurring(frequency string) bool {
	_, ok := intervals[frequency]
	return ok
}

// Labels returns the recognized frequency labels in sorted order.
func Labels() []string {
	labels := make([]string, 0, len(intervals))
	for label := range intervals {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Next returns the occurrence following due for the given frequency.
// Unrecognized or empty labels mean no recurrence: the input is returned
// unchanged, which callers use as the "not recurring" signal.
func Next(due time.Time, frequency string) time.Time {
	s, ok := intervals[frequency]
	if !ok {
		return due
	}
	return due.AddDate(s.years, s.months, s.days)
}

// dueDateLayouts are the timezone-naive ISO-8601 shapes accepted at the API
// boundary, most specific first.
var dueDateLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDueDate parses a timezone-naive ISO-8601 timestamp in local time.
// RFC 3339 input with an explicit offset is also accepted. Failures wrap
// ErrInvalidDate.
func ParseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Local(), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// FormatDueDate renders a timestamp in the naive layout ParseDueDate accepts.
func FormatDueDate(t time.Time) string {
	return t.Format("2006-01-02T15:04:05")
}
