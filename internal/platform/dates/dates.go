// Package dates holds the calendar-day arithmetic shared by the catalog,
// the ledger and the reports. All values are UTC midnights.
package dates

import (
	"fmt"
	"strings"
	"time"
)

const Layout = "2006-01-02"

// Parse reads a YYYY-MM-DD date.
func Parse(s string) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want %s)", s, Layout)
	}
	return t, nil
}

func Format(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(Layout)
}

// Day drops the clock part of t, keeping the calendar date it shows in its own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func AddDays(t time.Time, n int) time.Time {
	return Day(t).AddDate(0, 0, n)
}

// DaysBetween returns to - from in whole calendar days.
func DaysBetween(from, to time.Time) int {
	return int(Day(to).Sub(Day(from)).Hours() / 24)
}

type Clock interface {
	Today() time.Time
}

type SystemClock struct{}

func (SystemClock) Today() time.Time { return Day(time.Now()) }

// Fixed is a Clock pinned to one date.
type Fixed time.Time

func (f Fixed) Today() time.Time { return Day(time.Time(f)) }
