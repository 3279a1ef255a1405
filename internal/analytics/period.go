package analytics

import (
	"time"

	"github.com/workshop-hub/backend/pkg/apperror"
)

// Period names a reporting window.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodAnnual  Period = "annual"
	PeriodCustom  Period = "custom"
)

// Window is an inclusive time range. End is the last instant inside the window.
type Window struct {
	Start time.Time
	End   time.Time
}

// FirstDay and LastDay are the calendar dates the window covers.
func (w Window) FirstDay() time.Time { return startOfDay(w.Start) }
func (w Window) LastDay() time.Time  { return startOfDay(w.End) }

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// ParsePeriod accepts the known period names; empty means custom.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case "":
		return PeriodCustom, nil
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodAnnual, PeriodCustom:
		return p, nil
	default:
		return "", apperror.Validationf("invalid period %q: expected daily, weekly, monthly, annual or custom", s)
	}
}

// ResolveWindow computes the window for period in now's location.
// For custom, from and to are calendar days; a missing from falls back to earliest
// (the first session date on record) or now, and a missing to falls back to now.
func ResolveWindow(period Period, now time.Time, from, to, earliest *time.Time) (Window, error) {
	switch period {
	case PeriodDaily:
		return Window{Start: startOfDay(now), End: endOfDay(now)}, nil
	case PeriodWeekly:
		offset := (int(now.Weekday()) + 6) % 7
		start := startOfDay(now).AddDate(0, 0, -offset)
		return Window{Start: start, End: endOfDay(start.AddDate(0, 0, 6))}, nil
	case PeriodMonthly:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return Window{Start: start, End: start.AddDate(0, 1, 0).Add(-time.Nanosecond)}, nil
	case PeriodAnnual:
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		return Window{Start: start, End: start.AddDate(1, 0, 0).Add(-time.Nanosecond)}, nil
	case PeriodCustom, "":
		w := Window{Start: now, End: now}
		switch {
		case from != nil:
			w.Start = startOfDay(inLocation(*from, now.Location()))
		case earliest != nil:
			w.Start = startOfDay(inLocation(*earliest, now.Location()))
		}
		if to != nil {
			w.End = endOfDay(inLocation(*to, now.Location()))
		}
		if from != nil && to != nil && w.End.Before(w.Start) {
			return Window{}, apperror.Validation("date_from must not be after date_to")
		}
		return w, nil
	default:
		return Window{}, apperror.Validationf("invalid period %q", period)
	}
}

// inLocation reinterprets the calendar day of t in loc.
func inLocation(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}
