package model

import (
	"math"
	"time"
)

const dateLayout = "20060102"

// DaysBetween returns the absolute calendar-day distance between two 8-digit
// dates, rounded up. Malformed inputs yield 999 so callers fall back to a
// full fetch rather than a bogus incremental window.
func DaysBetween(a, b string) int {
	if len(a) != 8 || len(b) != 8 {
		return 999
	}
	da, err := time.Parse(dateLayout, a)
	if err != nil {
		return 999
	}
	db, err := time.Parse(dateLayout, b)
	if err != nil {
		return 999
	}
	diff := db.Sub(da)
	if diff < 0 {
		diff = -diff
	}
	return int(math.Ceil(diff.Hours() / 24))
}

// Today returns the current date as an 8-digit key.
func Today() string {
	return time.Now().Format(dateLayout)
}
