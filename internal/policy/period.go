package policy

import (
	"strings"
	"time"
)

type Period string

const (
	PeriodDaily   Period = "DAILY"
	PeriodMonthly Period = "MONTHLY"
)

func (p Period) Valid() bool {
	return p == PeriodDaily || p == PeriodMonthly
}

// Label is the lower-case form used in rejection reasons.
func (p Period) Label() string {
	return strings.ToLower(string(p))
}

// Window is a half-open interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// WindowFor returns the calendar day or month containing date, measured in
// loc. A nil loc means UTC.
func (p Period) WindowFor(date time.Time, loc *time.Location) Window {
	if loc == nil {
		loc = time.UTC
	}
	d := date.In(loc)

	switch p {
	case PeriodMonthly:
		start := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, loc)
		return Window{Start: start, End: start.AddDate(0, 1, 0)}
	default:
		start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
		return Window{Start: start, End: start.AddDate(0, 0, 1)}
	}
}
