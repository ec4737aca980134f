package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/kalima/internal/vocab"
)

var base = time.Date(2026, 5, 20, 10, 0, 0, 0, time.UTC)

func row(user string, word int64, correct, incorrect int, at time.Time) vocab.UserProgress {
	return vocab.UserProgress{
		UserID:         user,
		WordID:         word,
		Seen:           true,
		CorrectCount:   correct,
		IncorrectCount: incorrect,
		LastReviewedAt: at,
	}
}

// wordsOn returns n rows for user on day, word ids starting at first.
func wordsOn(user string, first int64, n int, day time.Time) []vocab.UserProgress {
	var rows []vocab.UserProgress
	for i := 0; i < n; i++ {
		rows = append(rows, row(user, first+int64(i), 1, 0, day.Add(time.Duration(i)*time.Minute)))
	}
	return rows
}

func TestDailyActivity(t *testing.T) {
	day1 := base
	day2 := base.AddDate(0, 0, 1)

	var rows []vocab.UserProgress
	rows = append(rows, wordsOn("u1", 1, 5, day1)...)
	rows = append(rows, wordsOn("u2", 1, 4, day1)...)
	rows = append(rows, wordsOn("u1", 10, 1, day2)...)

	got := DailyActivity(rows, time.UTC)
	require.Len(t, got, 2)

	assert.Equal(t, DailyActivityData{
		Date:             "2026-05-20",
		WordsReviewed:    5,
		PracticeSessions: 2,
		TestSessions:     1,
		ActiveUsers:      2,
	}, got[0])
	assert.Equal(t, DailyActivityData{
		Date:             "2026-05-21",
		WordsReviewed:    1,
		PracticeSessions: 1,
		TestSessions:     0,
		ActiveUsers:      1,
	}, got[1])
}

func TestTestSessionThreshold(t *testing.T) {
	tests := []struct {
		words int
		want  int
	}{
		{4, 0},
		{5, 1},
		{6, 1},
	}
	for _, tt := range tests {
		rows := wordsOn("u1", 1, tt.words, base)

		daily := DailyActivity(rows, time.UTC)
		require.Len(t, daily, 1)
		assert.Equal(t, tt.want, daily[0].TestSessions, "%d words", tt.words)
		assert.Equal(t, 1, daily[0].PracticeSessions)

		sum := Summarize("u1", rows, time.UTC, base)
		assert.Equal(t, tt.want, sum.TestSessions, "%d words", tt.words)
	}
}

func TestDailyActivityUsesLocation(t *testing.T) {
	late := time.Date(2026, 5, 20, 23, 30, 0, 0, time.UTC)
	rows := []vocab.UserProgress{row("u1", 1, 1, 0, late)}

	assert.Equal(t, "2026-05-20", DailyActivity(rows, time.UTC)[0].Date)

	plus3 := time.FixedZone("UTC+3", 3*60*60)
	assert.Equal(t, "2026-05-21", DailyActivity(rows, plus3)[0].Date)
}

func TestPracticeMetrics(t *testing.T) {
	greetings := vocab.Lesson{ID: 1, Title: "Greetings", Order: 2}
	family := vocab.Lesson{ID: 2, Title: "Family", Order: 1}
	lessons := map[int64]vocab.Lesson{
		10: greetings,
		11: greetings,
		20: family,
	}
	rows := []vocab.UserProgress{
		row("u1", 10, 3, 1, base),
		row("u1", 11, 0, 2, base),
		row("u1", 20, 1, 0, base),
		row("u1", 99, 1, 1, base), // no lesson
		{UserID: "u1", WordID: 12, Seen: true, LastReviewedAt: base},
	}

	m := ComputePracticeMetrics(rows, lessons)
	assert.Equal(t, 5, m.TotalCorrect)
	assert.Equal(t, 4, m.TotalIncorrect)
	assert.Equal(t, 9, m.TotalAttempts)
	assert.Equal(t, 4, m.WordsPracticed)
	assert.InDelta(t, 55.56, m.AccuracyRate, 0.01)

	require.Len(t, m.ByLesson, 3)

	require.NotNil(t, m.ByLesson[0].LessonTitle)
	assert.Equal(t, "Family", *m.ByLesson[0].LessonTitle)
	assert.InDelta(t, 100.0, m.ByLesson[0].AccuracyRate, 0.001)

	require.NotNil(t, m.ByLesson[1].LessonID)
	assert.Equal(t, int64(1), *m.ByLesson[1].LessonID)
	assert.Equal(t, 2, m.ByLesson[1].WordsPracticed)
	assert.InDelta(t, 50.0, m.ByLesson[1].AccuracyRate, 0.001)

	assert.Nil(t, m.ByLesson[2].LessonID)
	assert.Nil(t, m.ByLesson[2].LessonTitle)
}

func TestPracticeMetricsZeroGuard(t *testing.T) {
	m := ComputePracticeMetrics([]vocab.UserProgress{
		{UserID: "u1", WordID: 1, Seen: true, LastReviewedAt: base},
	}, nil)

	assert.Equal(t, 0.0, m.AccuracyRate)
	assert.Equal(t, 0, m.TotalAttempts)
	assert.Empty(t, m.ByLesson)
	assert.NotNil(t, m.ByLesson)
}

func TestTestResults(t *testing.T) {
	lesson := vocab.Lesson{ID: 7, Title: "Colors"}
	lessons := make(map[int64]vocab.Lesson)
	for id := int64(1); id <= 20; id++ {
		lessons[id] = lesson
	}

	day1 := base
	day2 := base.AddDate(0, 0, 1)

	var rows []vocab.UserProgress
	// Day 1: five words, one of them mostly wrong.
	rows = append(rows, wordsOn("u1", 1, 4, day1)...)
	rows = append(rows, row("u1", 5, 0, 2, day1))
	// Day 2: five words for u1, four for u2.
	rows = append(rows, wordsOn("u1", 6, 5, day2)...)
	rows = append(rows, wordsOn("u2", 11, 4, day2)...)
	// A five word burst with no lesson association.
	rows = append(rows, wordsOn("u3", 100, 5, day1)...)

	got := TestResults(rows, lessons, time.UTC)
	require.Len(t, got, 3)

	assert.Equal(t, "2026-05-21", got[0].Date, "newest first")
	assert.Equal(t, "u1", got[0].UserID)
	assert.Equal(t, 5, got[0].TotalWords)
	assert.Equal(t, 5, got[0].CorrectWords)
	assert.InDelta(t, 100.0, got[0].Score, 0.001)

	assert.Equal(t, "2026-05-20", got[1].Date)
	assert.Equal(t, "u1", got[1].UserID)
	assert.Equal(t, 4, got[1].CorrectWords)
	assert.InDelta(t, 4.0/6*100, got[1].Score, 0.001)
	require.NotNil(t, got[1].LessonTitle)
	assert.Equal(t, "Colors", *got[1].LessonTitle)

	assert.Equal(t, "u3", got[2].UserID)
	assert.Nil(t, got[2].LessonID)
	assert.Nil(t, got[2].LessonTitle)
}

func TestSummarize(t *testing.T) {
	today := base
	var rows []vocab.UserProgress
	rows = append(rows, wordsOn("u1", 1, 5, today)...)
	rows = append(rows, row("u1", 6, 0, 1, today.AddDate(0, 0, -1)))
	rows = append(rows, row("u1", 7, 2, 2, today.AddDate(0, 0, -2)))
	rows = append(rows, vocab.UserProgress{UserID: "u1", WordID: 8, Seen: true, LastReviewedAt: today.AddDate(0, 0, -5)})

	s := Summarize("u1", rows, time.UTC, today.Add(3*time.Hour))
	assert.Equal(t, "u1", s.UserID)
	assert.Equal(t, 8, s.TotalWordsSeen)
	assert.Equal(t, 7, s.TotalWordsPracticed)
	assert.Equal(t, 7, s.TotalCorrect)
	assert.Equal(t, 3, s.TotalIncorrect)
	assert.InDelta(t, 70.0, s.AccuracyRate, 0.001)
	assert.Equal(t, 4, s.PracticeSessions)
	assert.Equal(t, 1, s.TestSessions)
	assert.Equal(t, 3, s.CurrentStreak)
	assert.Equal(t, 3, s.LongestStreak)
	require.NotNil(t, s.LastActive)
	assert.True(t, s.LastActive.Equal(today.Add(4*time.Minute)))
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize("nobody", nil, time.UTC, base)
	assert.Equal(t, UserActivitySummary{UserID: "nobody"}, s)
}
