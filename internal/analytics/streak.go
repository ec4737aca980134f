package analytics

import (
	"sort"
	"time"
)

// Streaks returns the current and longest runs of consecutive calendar
// days in dates (DateLayout strings, any order, duplicates allowed). The
// current streak is 0 unless the most recent date is today. Dates after
// today and unparseable dates are ignored.
func Streaks(dates []string, today string) (current, longest int) {
	end, err := time.Parse(DateLayout, today)
	if err != nil {
		return 0, 0
	}

	set := make(map[time.Time]bool, len(dates))
	for _, d := range dates {
		t, err := time.Parse(DateLayout, d)
		if err != nil || t.After(end) {
			continue
		}
		set[t] = true
	}
	if len(set) == 0 {
		return 0, 0
	}

	days := make([]time.Time, 0, len(set))
	for t := range set {
		days = append(days, t)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	run := 1
	longest = 1
	for i := 1; i < len(days); i++ {
		if isPrevDay(days[i], days[i-1]) {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}

	if !days[0].Equal(end) {
		return 0, longest
	}
	current = 1
	for i := 1; i < len(days) && isPrevDay(days[i], days[i-1]); i++ {
		current++
	}
	return current, longest
}

// isPrevDay reports whether a is the calendar day before b. Dates parsed
// from DateLayout are UTC midnights, so a day is always 24 hours.
func isPrevDay(a, b time.Time) bool {
	return b.Sub(a) == 24*time.Hour
}
