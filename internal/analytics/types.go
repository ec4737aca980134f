// Package analytics turns UserProgress rows into dashboard figures.
//
// Every function here is a pure read-side computation. Sessions are not
// recorded anywhere, so session counts are inferred from same-day activity:
// any activity by a user on a day is one practice session, and a day on
// which the user reviewed at least TestSessionMinWords distinct words is
// also counted as a test session. This is an approximation.
package analytics

import "time"

// TestSessionMinWords is the number of distinct words a user must review
// in one day for that day to count as a test session.
const TestSessionMinWords = 5

// DateLayout formats calendar dates in results.
const DateLayout = "2006-01-02"

// DailyActivityData summarises one calendar day.
type DailyActivityData struct {
	Date             string `json:"date"`
	WordsReviewed    int    `json:"wordsReviewed"`
	PracticeSessions int    `json:"practiceSessions"`
	TestSessions     int    `json:"testSessions"`
	ActiveUsers      int    `json:"activeUsers"`
}

// LessonMetrics is the per-lesson part of PracticeMetrics. LessonID and
// LessonTitle are nil for words without a lesson.
type LessonMetrics struct {
	LessonID       *int64  `json:"lessonId"`
	LessonTitle    *string `json:"lessonTitle"`
	CorrectCount   int     `json:"correctCount"`
	IncorrectCount int     `json:"incorrectCount"`
	WordsPracticed int     `json:"wordsPracticed"`
	AccuracyRate   float64 `json:"accuracyRate"`
}

// PracticeMetrics totals answer counters overall and per lesson.
type PracticeMetrics struct {
	TotalCorrect   int             `json:"totalCorrect"`
	TotalIncorrect int             `json:"totalIncorrect"`
	TotalAttempts  int             `json:"totalAttempts"`
	WordsPracticed int             `json:"wordsPracticed"`
	AccuracyRate   float64         `json:"accuracyRate"`
	ByLesson       []LessonMetrics `json:"byLesson"`
}

// TestResult is a test session reconstructed from one (user, date, lesson)
// group of at least TestSessionMinWords words.
type TestResult struct {
	UserID       string  `json:"userId"`
	Date         string  `json:"date"`
	Score        float64 `json:"score"`
	TotalWords   int     `json:"totalWords"`
	CorrectWords int     `json:"correctWords"`
	LessonID     *int64  `json:"lessonId"`
	LessonTitle  *string `json:"lessonTitle"`
}

// UserActivitySummary is the headline block of the dashboard.
type UserActivitySummary struct {
	UserID              string     `json:"userId"`
	TotalWordsSeen      int        `json:"totalWordsSeen"`
	TotalWordsPracticed int        `json:"totalWordsPracticed"`
	TotalCorrect        int        `json:"totalCorrect"`
	TotalIncorrect      int        `json:"totalIncorrect"`
	AccuracyRate        float64    `json:"accuracyRate"`
	PracticeSessions    int        `json:"practiceSessions"`
	TestSessions        int        `json:"testSessions"`
	CurrentStreak       int        `json:"currentStreak"`
	LongestStreak       int        `json:"longestStreak"`
	LastActive          *time.Time `json:"lastActive"`
}

// AccuracyRate returns correct/(correct+incorrect)*100, or 0 when there
// are no answers.
func AccuracyRate(correct, incorrect int) float64 {
	total := correct + incorrect
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

// Day returns t's calendar date in loc.
func Day(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}
