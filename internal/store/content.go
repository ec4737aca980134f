package store

import (
	"context"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/kalima/internal/vocab"
)

// GetWordsByLesson returns the lesson's words ordered by sort order.
// An unknown lesson yields an empty list.
func (s *Store) GetWordsByLesson(ctx context.Context, lessonID int64) ([]vocab.VocabularyWord, error) {
	query, args := s.builder().
		Select(wordColumns...).
		From(s.builder().Table(wordsTable)).
		Where(entsql.EQ("lesson_id", lessonID)).
		OrderBy("sort_order", "id").
		Query()

	var words []vocab.VocabularyWord
	if err := s.db.SelectContext(ctx, &words, query, args...); err != nil {
		return nil, fmt.Errorf("query words: %w", err)
	}
	return words, nil
}

// ListLessons returns all lessons ordered by sort order.
func (s *Store) ListLessons(ctx context.Context) ([]vocab.Lesson, error) {
	query, args := s.builder().
		Select(lessonColumns...).
		From(s.builder().Table(lessonsTable)).
		OrderBy("sort_order", "id").
		Query()

	var lessons []vocab.Lesson
	if err := s.db.SelectContext(ctx, &lessons, query, args...); err != nil {
		return nil, fmt.Errorf("query lessons: %w", err)
	}
	return lessons, nil
}

// GetLesson returns a lesson by id.
func (s *Store) GetLesson(ctx context.Context, id int64) (vocab.Lesson, error) {
	return s.lessonWhere(ctx, entsql.EQ("id", id))
}

// WordLessons maps every word id to its lesson.
func (s *Store) WordLessons(ctx context.Context) (map[int64]vocab.Lesson, error) {
	lessons, err := s.ListLessons(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]vocab.Lesson, len(lessons))
	for _, l := range lessons {
		byID[l.ID] = l
	}

	query, args := s.builder().
		Select("id", "lesson_id").
		From(s.builder().Table(wordsTable)).
		Query()

	var refs []struct {
		ID       int64 `db:"id"`
		LessonID int64 `db:"lesson_id"`
	}
	if err := s.db.SelectContext(ctx, &refs, query, args...); err != nil {
		return nil, fmt.Errorf("query word lessons: %w", err)
	}

	out := make(map[int64]vocab.Lesson, len(refs))
	for _, r := range refs {
		if l, ok := byID[r.LessonID]; ok {
			out[r.ID] = l
		}
	}
	return out, nil
}

// UpsertLesson creates the lesson or updates the order of the lesson with
// the same title.
func (s *Store) UpsertLesson(ctx context.Context, title string, order int) (vocab.Lesson, error) {
	query, args := s.builder().
		Insert(lessonsTable).
		Columns("title", "sort_order").
		Values(title, order).
		OnConflict(
			entsql.ConflictColumns("title"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.Set("sort_order", order)
			}),
		).
		Query()

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return vocab.Lesson{}, fmt.Errorf("upsert lesson: %w", err)
	}
	return s.lessonWhere(ctx, entsql.EQ("title", title))
}

// UpsertWord creates the word or updates the word with the same
// (LessonID, Arabic). The bool reports whether a row was created.
func (s *Store) UpsertWord(ctx context.Context, w vocab.VocabularyWord) (vocab.VocabularyWord, bool, error) {
	existing, err := s.wordWhere(ctx, entsql.And(
		entsql.EQ("lesson_id", w.LessonID),
		entsql.EQ("arabic", w.Arabic),
	))
	switch {
	case err == nil:
		query, args := s.builder().
			Update(wordsTable).
			Set("english", w.English).
			Set("sort_order", w.Order).
			Where(entsql.EQ("id", existing.ID)).
			Query()
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return vocab.VocabularyWord{}, false, fmt.Errorf("update word: %w", err)
		}
		existing.English = w.English
		existing.Order = w.Order
		return existing, false, nil
	case !errors.Is(err, ErrNotFound):
		return vocab.VocabularyWord{}, false, err
	}

	query, args := s.builder().
		Insert(wordsTable).
		Columns("lesson_id", "arabic", "english", "sort_order").
		Values(w.LessonID, w.Arabic, w.English, w.Order).
		Query()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return vocab.VocabularyWord{}, false, fmt.Errorf("insert word: %w", err)
	}

	created, err := s.wordWhere(ctx, entsql.And(
		entsql.EQ("lesson_id", w.LessonID),
		entsql.EQ("arabic", w.Arabic),
	))
	if err != nil {
		return vocab.VocabularyWord{}, false, err
	}
	return created, true, nil
}

func (s *Store) lessonWhere(ctx context.Context, p *entsql.Predicate) (vocab.Lesson, error) {
	query, args := s.builder().
		Select(lessonColumns...).
		From(s.builder().Table(lessonsTable)).
		Where(p).
		Limit(1).
		Query()

	var lessons []vocab.Lesson
	if err := s.db.SelectContext(ctx, &lessons, query, args...); err != nil {
		return vocab.Lesson{}, fmt.Errorf("query lesson: %w", err)
	}
	if len(lessons) == 0 {
		return vocab.Lesson{}, ErrNotFound
	}
	return lessons[0], nil
}

func (s *Store) wordWhere(ctx context.Context, p *entsql.Predicate) (vocab.VocabularyWord, error) {
	query, args := s.builder().
		Select(wordColumns...).
		From(s.builder().Table(wordsTable)).
		Where(p).
		Limit(1).
		Query()

	var words []vocab.VocabularyWord
	if err := s.db.SelectContext(ctx, &words, query, args...); err != nil {
		return vocab.VocabularyWord{}, fmt.Errorf("query word: %w", err)
	}
	if len(words) == 0 {
		return vocab.VocabularyWord{}, ErrNotFound
	}
	return words[0], nil
}
