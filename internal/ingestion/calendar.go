package ingestion

import "time"

// MonthsSince returns the number of calendar months from start to now, counted by
// year and month only (days are ignored). It is the default number of bulletin
// links a run collects. Negative spans yield 0.
func MonthsSince(start, now time.Time) int {
	n := (now.Year()-start.Year())*12 + int(now.Month()) - int(start.Month())
	if n < 0 {
		return 0
	}
	return n
}
