package domain

import "time"

// TrailingDays returns the half-open UTC range covering the last days
// calendar dates up to and including the date of now.
func TrailingDays(now time.Time, days int) (from, to time.Time) {
	if days < 1 {
		days = 1
	}
	y, m, d := now.UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return today.AddDate(0, 0, -(days - 1)), today.AddDate(0, 0, 1)
}
