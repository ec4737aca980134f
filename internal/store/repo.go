package store

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/kalima/internal/vocab"
)

var (
	// ErrNotFound is returned when a lesson or word does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidDelta is returned when an upsert would decrease a counter.
	ErrInvalidDelta = errors.New("progress deltas must not be negative")
)

// ProgressStore owns the durable UserProgress records.
type ProgressStore interface {
	// GetProgress returns the user's progress keyed by word id.
	GetProgress(ctx context.Context, userID string) (map[int64]vocab.UserProgress, error)

	// UpsertProgress creates or updates the (user, word) row. Seen is set
	// when requested and never cleared; deltas are added to the counters.
	UpsertProgress(ctx context.Context, userID string, wordID int64, upd vocab.ProgressUpdate) (vocab.UserProgress, error)
}

// ProgressFilter narrows ListProgress. Zero values disable a filter.
type ProgressFilter struct {
	UserID string
	From   time.Time // last_reviewed_at >= From
	To     time.Time // last_reviewed_at < To
}

// ProgressQuerier is the read side used by analytics.
type ProgressQuerier interface {
	// ListProgress returns matching rows ordered by last_reviewed_at.
	ListProgress(ctx context.Context, f ProgressFilter) ([]vocab.UserProgress, error)
}

// LessonContent provides read-only access to lessons and their words.
type LessonContent interface {
	// GetWordsByLesson returns the lesson's words ordered by Order.
	GetWordsByLesson(ctx context.Context, lessonID int64) ([]vocab.VocabularyWord, error)

	// ListLessons returns all lessons ordered by Order.
	ListLessons(ctx context.Context) ([]vocab.Lesson, error)

	// WordLessons maps every word id to its lesson.
	WordLessons(ctx context.Context) (map[int64]vocab.Lesson, error)
}

// ContentWriter is used by the importer to create or update content.
type ContentWriter interface {
	// UpsertLesson creates the lesson or updates the order of an existing
	// lesson with the same title.
	UpsertLesson(ctx context.Context, title string, order int) (vocab.Lesson, error)

	// UpsertWord creates the word or updates the translation and order of
	// the word with the same (LessonID, Arabic). The bool reports creation.
	UpsertWord(ctx context.Context, w vocab.VocabularyWord) (vocab.VocabularyWord, bool, error)
}

// Compile-time interface checks.
var (
	_ ProgressStore   = (*Store)(nil)
	_ ProgressQuerier = (*Store)(nil)
	_ LessonContent   = (*Store)(nil)
	_ ContentWriter   = (*Store)(nil)

	_ ProgressStore   = (*Memory)(nil)
	_ ProgressQuerier = (*Memory)(nil)
	_ LessonContent   = (*Memory)(nil)
	_ ContentWriter   = (*Memory)(nil)
)
