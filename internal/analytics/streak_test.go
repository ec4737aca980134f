package analytics

import (
	"math"
	"testing"
	"time"
)

func TestStreaks(t *testing.T) {
	today := time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)
	d := func(offset int) string {
		return today.AddDate(0, 0, offset).Format(DateLayout)
	}

	tests := []struct {
		name        string
		dates       []string
		wantCurrent int
		wantLongest int
	}{
		{"empty", nil, 0, 0},
		{"today only", []string{d(0)}, 1, 1},
		{"run ending today with older gap", []string{d(0), d(-1), d(-2), d(-5)}, 3, 3},
		{"no activity today", []string{d(-3), d(-4), d(-5)}, 0, 3},
		{"yesterday does not count as current", []string{d(-1), d(-2)}, 0, 2},
		{"longest in the past", []string{d(0), d(-10), d(-11), d(-12), d(-13)}, 1, 4},
		{"duplicates and any order", []string{d(-1), d(0), d(-1), d(0)}, 2, 2},
		{"future dates ignored", []string{d(1), d(0)}, 1, 1},
		{"garbage ignored", []string{"not-a-date", d(0)}, 1, 1},
		{"month boundary", []string{"2026-05-01", "2026-04-30", "2026-04-29"}, 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cur, long := Streaks(tt.dates, d(0))
			if cur != tt.wantCurrent || long != tt.wantLongest {
				t.Errorf("Streaks(%v) = (%d, %d), want (%d, %d)",
					tt.dates, cur, long, tt.wantCurrent, tt.wantLongest)
			}
		})
	}
}

func TestStreaksAcrossDST(t *testing.T) {
	// Calendar dates are parsed as UTC midnights, so a DST change in the
	// user's zone never produces a 23 or 25 hour gap.
	dates := []string{"2026-03-07", "2026-03-08", "2026-03-09"}
	cur, long := Streaks(dates, "2026-03-09")
	if cur != 3 || long != 3 {
		t.Errorf("Streaks across DST = (%d, %d), want (3, 3)", cur, long)
	}
}

func TestAccuracyRate(t *testing.T) {
	tests := []struct {
		correct, incorrect int
		want               float64
	}{
		{0, 0, 0},
		{1, 0, 100},
		{0, 3, 0},
		{2, 1, 200.0 / 3},
		{3, 1, 75},
	}
	for _, tt := range tests {
		if got := AccuracyRate(tt.correct, tt.incorrect); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("AccuracyRate(%d, %d) = %v, want %v", tt.correct, tt.incorrect, got, tt.want)
		}
	}
}

func TestTestSessionMinWords(t *testing.T) {
	if TestSessionMinWords != 5 {
		t.Errorf("TestSessionMinWords = %d, want 5", TestSessionMinWords)
	}
}
