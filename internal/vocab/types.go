// Package vocab holds the domain types shared by the study engine and
// the analytics aggregator.
package vocab

import "time"

// Lesson groups an ordered set of vocabulary words.
type Lesson struct {
	ID    int64  `db:"id" json:"id"`
	Title string `db:"title" json:"title"`
	Order int    `db:"sort_order" json:"order"`
}

// VocabularyWord is a single Arabic word with its English translation.
// Words are immutable for the lifetime of a study session.
type VocabularyWord struct {
	ID       int64  `db:"id" json:"id"`
	LessonID int64  `db:"lesson_id" json:"lessonId"`
	Arabic   string `db:"arabic" json:"arabic"`
	English  string `db:"english" json:"english"`
	Order    int    `db:"sort_order" json:"order"`
}

// UserProgress is the durable per-(user, word) review record.
//
// Seen never reverts to false once set, and CorrectCount+IncorrectCount
// never decreases.
type UserProgress struct {
	ID             int64     `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"userId"`
	WordID         int64     `db:"word_id" json:"wordId"`
	Seen           bool      `db:"seen" json:"seen"`
	CorrectCount   int       `db:"correct_count" json:"correctCount"`
	IncorrectCount int       `db:"incorrect_count" json:"incorrectCount"`
	LastReviewedAt time.Time `db:"last_reviewed_at" json:"lastReviewedAt"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// Attempts returns the total number of scored answers for the word.
func (p UserProgress) Attempts() int {
	return p.CorrectCount + p.IncorrectCount
}

// Practiced reports whether the word has any scored history.
func (p UserProgress) Practiced() bool {
	return p.Attempts() > 0
}

// MostlyCorrect classifies the word by majority vote. Ties count as correct.
func (p UserProgress) MostlyCorrect() bool {
	return p.CorrectCount >= p.IncorrectCount
}

// ProgressUpdate is the payload of an upsert. Seen is idempotent and the
// deltas are added to the stored counters.
type ProgressUpdate struct {
	Seen           bool
	CorrectDelta   int
	IncorrectDelta int
}

// Scored reports whether the update carries an answer.
func (u ProgressUpdate) Scored() bool {
	return u.CorrectDelta > 0 || u.IncorrectDelta > 0
}

// Apply returns p with the update applied at now. It is the reference
// semantics that every ProgressStore implementation must match:
// LastReviewedAt moves only for scored updates or brand new rows, so
// plain exposures of an existing word do not count as review activity.
func (u ProgressUpdate) Apply(p UserProgress, now time.Time) UserProgress {
	if u.Seen {
		p.Seen = true
	}
	p.CorrectCount += u.CorrectDelta
	p.IncorrectCount += u.IncorrectDelta
	if u.Scored() || p.LastReviewedAt.IsZero() {
		p.LastReviewedAt = now
	}
	p.UpdatedAt = now
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	return p
}

// Valid reports whether the update keeps the counters monotonic.
func (u ProgressUpdate) Valid() bool {
	return u.CorrectDelta >= 0 && u.IncorrectDelta >= 0
}

// Mark returns the update recorded for a single scored answer.
func Mark(correct bool) ProgressUpdate {
	if correct {
		return ProgressUpdate{Seen: true, CorrectDelta: 1}
	}
	return ProgressUpdate{Seen: true, IncorrectDelta: 1}
}

// Exposure returns the update recorded when a word is first shown.
func Exposure() ProgressUpdate {
	return ProgressUpdate{Seen: true}
}
