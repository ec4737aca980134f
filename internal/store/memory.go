package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/abhisek/kalima/internal/vocab"
)

type progressKey struct {
	userID string
	wordID int64
}

// Memory is an in-process store. It backs tests and --memory runs.
type Memory struct {
	mu       sync.RWMutex
	lessons  map[int64]vocab.Lesson
	words    map[int64]vocab.VocabularyWord
	progress map[progressKey]vocab.UserProgress
	nextID   int64
	now      func() time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		lessons:  make(map[int64]vocab.Lesson),
		words:    make(map[int64]vocab.VocabularyWord),
		progress: make(map[progressKey]vocab.UserProgress),
		now:      time.Now,
	}
}

// SetClock overrides the time source used to stamp progress rows.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *Memory) id() int64 {
	m.nextID++
	return m.nextID
}

// GetProgress returns the user's progress rows keyed by word id.
func (m *Memory) GetProgress(_ context.Context, userID string) (map[int64]vocab.UserProgress, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[int64]vocab.UserProgress)
	for k, p := range m.progress {
		if k.userID == userID {
			out[k.wordID] = p
		}
	}
	return out, nil
}

// UpsertProgress applies upd to the (user, word) row.
func (m *Memory) UpsertProgress(_ context.Context, userID string, wordID int64, upd vocab.ProgressUpdate) (vocab.UserProgress, error) {
	if !upd.Valid() {
		return vocab.UserProgress{}, ErrInvalidDelta
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	k := progressKey{userID: userID, wordID: wordID}
	p, ok := m.progress[k]
	if !ok {
		p = vocab.UserProgress{ID: m.id(), UserID: userID, WordID: wordID}
	}
	p = upd.Apply(p, m.now().UTC())
	m.progress[k] = p
	return p, nil
}

// ListProgress returns rows matching f ordered by last_reviewed_at.
func (m *Memory) ListProgress(_ context.Context, f ProgressFilter) ([]vocab.UserProgress, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []vocab.UserProgress
	for _, p := range m.progress {
		if f.UserID != "" && p.UserID != f.UserID {
			continue
		}
		if !f.From.IsZero() && p.LastReviewedAt.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && !p.LastReviewedAt.Before(f.To) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastReviewedAt.Equal(out[j].LastReviewedAt) {
			return out[i].LastReviewedAt.Before(out[j].LastReviewedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// GetWordsByLesson returns the lesson's words ordered by sort order.
func (m *Memory) GetWordsByLesson(_ context.Context, lessonID int64) ([]vocab.VocabularyWord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []vocab.VocabularyWord
	for _, w := range m.words {
		if w.LessonID == lessonID {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ListLessons returns all lessons ordered by sort order.
func (m *Memory) ListLessons(_ context.Context) ([]vocab.Lesson, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]vocab.Lesson, 0, len(m.lessons))
	for _, l := range m.lessons {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// GetLesson returns a lesson by id.
func (m *Memory) GetLesson(_ context.Context, id int64) (vocab.Lesson, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	l, ok := m.lessons[id]
	if !ok {
		return vocab.Lesson{}, ErrNotFound
	}
	return l, nil
}

// WordLessons maps every word id to its lesson.
func (m *Memory) WordLessons(_ context.Context) (map[int64]vocab.Lesson, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[int64]vocab.Lesson, len(m.words))
	for id, w := range m.words {
		if l, ok := m.lessons[w.LessonID]; ok {
			out[id] = l
		}
	}
	return out, nil
}

// UpsertLesson creates the lesson or updates the order of the lesson with
// the same title.
func (m *Memory) UpsertLesson(_ context.Context, title string, order int) (vocab.Lesson, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, l := range m.lessons {
		if l.Title == title {
			l.Order = order
			m.lessons[id] = l
			return l, nil
		}
	}
	l := vocab.Lesson{ID: m.id(), Title: title, Order: order}
	m.lessons[l.ID] = l
	return l, nil
}

// UpsertWord creates the word or updates the word with the same
// (LessonID, Arabic).
func (m *Memory) UpsertWord(_ context.Context, w vocab.VocabularyWord) (vocab.VocabularyWord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.lessons[w.LessonID]; !ok {
		return vocab.VocabularyWord{}, false, ErrNotFound
	}
	for id, existing := range m.words {
		if existing.LessonID == w.LessonID && existing.Arabic == w.Arabic {
			existing.English = w.English
			existing.Order = w.Order
			m.words[id] = existing
			return existing, false, nil
		}
	}
	w.ID = m.id()
	m.words[w.ID] = w
	return w, true, nil
}
