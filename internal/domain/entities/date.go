package entities

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the on-disk layout of calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar date without time of day, stored as YYYY-MM-DD.
// The zero value means "no date".
type Date string

// DateOf truncates t to its calendar date in t's location.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// ParseDate accepts YYYY-MM-DD or a full RFC 3339 timestamp, of which only the
// date part is kept. Empty input yields the zero Date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if len(s) > len(DateLayout) && s[len(DateLayout)] == 'T' {
		s = s[:len(DateLayout)]
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return "", fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidInput, s)
	}
	return Date(s), nil
}

func (d Date) IsZero() bool { return d == "" }

func (d Date) String() string { return string(d) }

// Time returns midnight UTC of d.
func (d Date) Time() (time.Time, error) {
	return time.Parse(DateLayout, string(d.Day()))
}

// Before compares two dates; ISO dates order lexicographically.
func (d Date) Before(o Date) bool {
	return d.Day() < o.Day()
}

func (d Date) After(o Date) bool {
	return o.Before(d)
}

// Day strips a time part that legacy records may carry.
func (d Date) Day() Date {
	if len(d) > len(DateLayout) {
		return d[:len(DateLayout)]
	}
	return d
}

// AddDays shifts d by n days. The zero Date stays zero.
func (d Date) AddDays(n int) Date {
	t, err := d.Time()
	if err != nil {
		return d
	}
	return DateOf(t.AddDate(0, 0, n))
}

// Ptr returns a pointer to a copy of d.
func (d Date) Ptr() *Date {
	return &d
}
