package analytics

import (
	"sort"
	"time"

	"github.com/abhisek/kalima/internal/vocab"
)

type userDay struct {
	userID string
	date   string
}

// dayWords maps each (user, date) pair to the distinct words reviewed.
func dayWords(rows []vocab.UserProgress, loc *time.Location) map[userDay]map[int64]bool {
	out := make(map[userDay]map[int64]bool)
	for _, r := range rows {
		k := userDay{userID: r.UserID, date: Day(r.LastReviewedAt, loc)}
		if out[k] == nil {
			out[k] = make(map[int64]bool)
		}
		out[k][r.WordID] = true
	}
	return out
}

// DailyActivity groups rows by the calendar date of LastReviewedAt and
// returns one record per date, oldest first.
func DailyActivity(rows []vocab.UserProgress, loc *time.Location) []DailyActivityData {
	type acc struct {
		words    map[int64]bool
		users    map[string]bool
		sessions int
		tests    int
	}
	byDate := make(map[string]*acc)

	for k, words := range dayWords(rows, loc) {
		a := byDate[k.date]
		if a == nil {
			a = &acc{words: make(map[int64]bool), users: make(map[string]bool)}
			byDate[k.date] = a
		}
		for id := range words {
			a.words[id] = true
		}
		a.users[k.userID] = true
		a.sessions++
		if len(words) >= TestSessionMinWords {
			a.tests++
		}
	}

	out := make([]DailyActivityData, 0, len(byDate))
	for date, a := range byDate {
		out = append(out, DailyActivityData{
			Date:             date,
			WordsReviewed:    len(a.words),
			PracticeSessions: a.sessions,
			TestSessions:     a.tests,
			ActiveUsers:      len(a.users),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// ComputePracticeMetrics totals the answer counters and breaks them down by
// lesson, ordered by lesson order. Words with no lesson are grouped last.
func ComputePracticeMetrics(rows []vocab.UserProgress, lessons map[int64]vocab.Lesson) PracticeMetrics {
	type acc struct {
		lesson    *vocab.Lesson
		correct   int
		incorrect int
		words     map[int64]bool
	}
	byLesson := make(map[int64]*acc)
	const noLesson = -1

	var m PracticeMetrics
	for _, r := range rows {
		m.TotalCorrect += r.CorrectCount
		m.TotalIncorrect += r.IncorrectCount
		if !r.Practiced() {
			continue
		}
		m.WordsPracticed++

		key := int64(noLesson)
		var lp *vocab.Lesson
		if l, ok := lessons[r.WordID]; ok {
			key = l.ID
			lp = &l
		}
		a := byLesson[key]
		if a == nil {
			a = &acc{lesson: lp, words: make(map[int64]bool)}
			byLesson[key] = a
		}
		a.correct += r.CorrectCount
		a.incorrect += r.IncorrectCount
		a.words[r.WordID] = true
	}
	m.TotalAttempts = m.TotalCorrect + m.TotalIncorrect
	m.AccuracyRate = AccuracyRate(m.TotalCorrect, m.TotalIncorrect)

	accs := make([]*acc, 0, len(byLesson))
	for _, a := range byLesson {
		accs = append(accs, a)
	}
	sort.Slice(accs, func(i, j int) bool {
		li, lj := accs[i].lesson, accs[j].lesson
		switch {
		case li == nil:
			return false
		case lj == nil:
			return true
		case li.Order != lj.Order:
			return li.Order < lj.Order
		default:
			return li.ID < lj.ID
		}
	})

	m.ByLesson = make([]LessonMetrics, 0, len(accs))
	for _, a := range accs {
		lm := LessonMetrics{
			CorrectCount:   a.correct,
			IncorrectCount: a.incorrect,
			WordsPracticed: len(a.words),
			AccuracyRate:   AccuracyRate(a.correct, a.incorrect),
		}
		if a.lesson != nil {
			id, title := a.lesson.ID, a.lesson.Title
			lm.LessonID = &id
			lm.LessonTitle = &title
		}
		m.ByLesson = append(m.ByLesson, lm)
	}
	return m
}

// TestResults reconstructs test sessions by grouping rows by (user, date,
// lesson) and keeping groups with at least TestSessionMinWords distinct
// words. Results are ordered newest first.
func TestResults(rows []vocab.UserProgress, lessons map[int64]vocab.Lesson, loc *time.Location) []TestResult {
	type key struct {
		userID   string
		date     string
		lessonID int64
	}
	type acc struct {
		lesson    *vocab.Lesson
		correct   int
		incorrect int
		words     map[int64]bool
		right     int
	}
	groups := make(map[key]*acc)

	for _, r := range rows {
		k := key{userID: r.UserID, date: Day(r.LastReviewedAt, loc), lessonID: -1}
		var lp *vocab.Lesson
		if l, ok := lessons[r.WordID]; ok {
			k.lessonID = l.ID
			lp = &l
		}
		a := groups[k]
		if a == nil {
			a = &acc{lesson: lp, words: make(map[int64]bool)}
			groups[k] = a
		}
		if a.words[r.WordID] {
			continue
		}
		a.words[r.WordID] = true
		a.correct += r.CorrectCount
		a.incorrect += r.IncorrectCount
		if r.Practiced() && r.MostlyCorrect() {
			a.right++
		}
	}

	out := make([]TestResult, 0)
	for k, a := range groups {
		if len(a.words) < TestSessionMinWords {
			continue
		}
		tr := TestResult{
			UserID:       k.userID,
			Date:         k.date,
			Score:        AccuracyRate(a.correct, a.incorrect),
			TotalWords:   len(a.words),
			CorrectWords: a.right,
		}
		if a.lesson != nil {
			id, title := a.lesson.ID, a.lesson.Title
			tr.LessonID = &id
			tr.LessonTitle = &title
		}
		out = append(out, tr)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return lessonKey(out[i].LessonID) < lessonKey(out[j].LessonID)
	})
	return out
}

func lessonKey(id *int64) int64 {
	if id == nil {
		return -1
	}
	return *id
}

// Summarize builds the activity summary for userID from that user's rows.
// An empty userID summarises every row passed in.
func Summarize(userID string, rows []vocab.UserProgress, loc *time.Location, today time.Time) UserActivitySummary {
	s := UserActivitySummary{UserID: userID}

	var last time.Time
	for _, r := range rows {
		if r.Seen {
			s.TotalWordsSeen++
		}
		if r.Practiced() {
			s.TotalWordsPracticed++
		}
		s.TotalCorrect += r.CorrectCount
		s.TotalIncorrect += r.IncorrectCount
		if r.LastReviewedAt.After(last) {
			last = r.LastReviewedAt
		}
	}
	s.AccuracyRate = AccuracyRate(s.TotalCorrect, s.TotalIncorrect)

	dates := make([]string, 0)
	for k, words := range dayWords(rows, loc) {
		s.PracticeSessions++
		if len(words) >= TestSessionMinWords {
			s.TestSessions++
		}
		dates = append(dates, k.date)
	}
	s.CurrentStreak, s.LongestStreak = Streaks(dates, Day(today, loc))

	if !last.IsZero() {
		s.LastActive = &last
	}
	return s
}
