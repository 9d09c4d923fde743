package domain

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Period is a closed window of calendar dates
type Period struct {
	Start time.Time
	End   time.Time
}

// NewPeriod truncates start and end to calendar dates. It does not validate ordering.
func NewPeriod(start, end time.Time) Period {
	return Period{Start: CalendarDate(start), End: CalendarDate(end)}
}

// ParsePeriod builds a Period from two YYYY-MM-DD strings
func ParsePeriod(start, end string) (Period, error) {
	s, err := time.Parse(dateLayout, start)
	if err != nil {
		return Period{}, &DataQualityError{Field: "period_start", Value: start, Err: fmt.Errorf("%w: %w", ErrInvalidDate, err)}
	}
	e, err := time.Parse(dateLayout, end)
	if err != nil {
		return Period{}, &DataQualityError{Field: "period_end", Value: end, Err: fmt.Errorf("%w: %w", ErrInvalidDate, err)}
	}
	return NewPeriod(s, e), nil
}

// Validate fails when the period starts after it ends
func (p Period) Validate() error {
	if p.Start.After(p.End) {
		return &DataQualityError{
			Field: "period",
			Value: p.String(),
			Err:   ErrInvalidPeriod,
		}
	}
	return nil
}

// Contains reports whether the calendar date of t lies inside the period, bounds included.
func (p Period) Contains(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	d := CalendarDate(t)
	return !d.Before(p.Start) && !d.After(p.End)
}

// Days returns the number of calendar days covered by the period
func (p Period) Days() int {
	return int(p.End.Sub(p.Start).Hours()/24) + 1
}

func (p Period) String() string {
	return p.Start.Format(dateLayout) + ".." + p.End.Format(dateLayout)
}

// CalendarDate drops the time of day, keeping the date as observed in t's location.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a calendar date as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}
