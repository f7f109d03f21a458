package valueobject

import (
	"fmt"
	"time"
)

// Period is an inclusive date range, normalized to UTC midnight on both
// ends. All period comparisons in the engine go through this type so that
// two triggers for the same calendar range always resolve to the same key.
type Period struct {
	start time.Time
	end   time.Time
}

// NewPeriod creates a period from inclusive start and end dates
func NewPeriod(start, end time.Time) (Period, error) {
	if start.IsZero() || end.IsZero() {
		return Period{}, fmt.Errorf("period start and end are required")
	}
	s := truncateToDay(start)
	e := truncateToDay(end)
	if e.Before(s) {
		return Period{}, fmt.Errorf("period end %s is before start %s", e.Format("2006-01-02"), s.Format("2006-01-02"))
	}
	return Period{start: s, end: e}, nil
}

// Start returns the first day of the period
func (p Period) Start() time.Time {
	return p.start
}

// End returns the last day of the period
func (p Period) End() time.Time {
	return p.end
}

// EndExclusive returns the instant just past the period, for use in
// half-open range queries (ts >= Start AND ts < EndExclusive).
func (p Period) EndExclusive() time.Time {
	return p.end.AddDate(0, 0, 1)
}

// Contains reports whether ts falls within the inclusive range
func (p Period) Contains(ts time.Time) bool {
	return !ts.Before(p.start) && ts.Before(p.EndExclusive())
}

// Equals reports whether both periods cover the same range
func (p Period) Equals(other Period) bool {
	return p.start.Equal(other.start) && p.end.Equal(other.end)
}

// String returns the range in ISO date form
func (p Period) String() string {
	return p.start.Format("2006-01-02") + ".." + p.end.Format("2006-01-02")
}

func truncateToDay(ts time.Time) time.Time {
	y, m, d := ts.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
