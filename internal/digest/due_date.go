package digest

import (
	"time"

	"github.com/aleister1102/grcdigest/internal/models"
)

// Risk ratings that carry a remediation deadline.
const (
	RiskLow      = "Low"
	RiskModerate = "Moderate"
	RiskHigh     = "High"
	RiskCritical = "Critical"
)

// DueDate returns the remediation deadline for f. Ratings without a deadline are due at now.
func DueDate(f models.Finding, now time.Time) time.Time {
	switch f.RiskLevel {
	case RiskLow:
		return AddMonths(f.DateFound, 2)
	case RiskModerate:
		return AddMonths(f.DateFound, 1)
	case RiskHigh, RiskCritical:
		if f.InternetFacing == models.InternetFacingYes {
			return f.DateFound.AddDate(0, 0, 2)
		}
		return AddMonths(f.DateFound, 1)
	default:
		return now
	}
}

// AddMonths adds n calendar months, clamping to the last day of the target month
// (31 January + 1 month is 28 or 29 February).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(first.Year(), first.Month(), t.Location()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// startOfDay is midnight UTC of t's calendar day. Deadlines are whole days, so an item
// due today is not overdue until tomorrow.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
