package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/kalima/internal/vocab"
)

// GetProgress returns the user's progress rows keyed by word id.
func (s *Store) GetProgress(ctx context.Context, userID string) (map[int64]vocab.UserProgress, error) {
	query, args := s.builder().
		Select(progressColumns...).
		From(s.builder().Table(progressTable)).
		Where(entsql.EQ("user_id", userID)).
		Query()

	var rows []vocab.UserProgress
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query progress: %w", err)
	}

	out := make(map[int64]vocab.UserProgress, len(rows))
	for _, r := range rows {
		out[r.WordID] = r
	}
	return out, nil
}

// UpsertProgress applies upd to the (user, word) row in a single statement.
// Concurrent writers to the same row are last-writer-wins on timestamps
// while the counters stay additive.
func (s *Store) UpsertProgress(ctx context.Context, userID string, wordID int64, upd vocab.ProgressUpdate) (vocab.UserProgress, error) {
	if !upd.Valid() {
		return vocab.UserProgress{}, ErrInvalidDelta
	}
	now := s.now().UTC()

	query, args := s.builder().
		Insert(progressTable).
		Columns("user_id", "word_id", "seen", "correct_count", "incorrect_count",
			"last_reviewed_at", "created_at", "updated_at").
		Values(userID, wordID, upd.Seen, upd.CorrectDelta, upd.IncorrectDelta, now, now, now).
		OnConflict(
			entsql.ConflictColumns("user_id", "word_id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				if upd.Seen {
					u.Set("seen", true)
				}
				if upd.CorrectDelta > 0 {
					u.Add("correct_count", upd.CorrectDelta)
				}
				if upd.IncorrectDelta > 0 {
					u.Add("incorrect_count", upd.IncorrectDelta)
				}
				if upd.Scored() {
					u.Set("last_reviewed_at", now)
				}
				u.Set("updated_at", now)
			}),
		).
		Query()

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return vocab.UserProgress{}, fmt.Errorf("upsert progress: %w", err)
	}

	return s.getProgressRow(ctx, userID, wordID)
}

func (s *Store) getProgressRow(ctx context.Context, userID string, wordID int64) (vocab.UserProgress, error) {
	query, args := s.builder().
		Select(progressColumns...).
		From(s.builder().Table(progressTable)).
		Where(entsql.And(
			entsql.EQ("user_id", userID),
			entsql.EQ("word_id", wordID),
		)).
		Query()

	var rows []vocab.UserProgress
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return vocab.UserProgress{}, fmt.Errorf("query progress row: %w", err)
	}
	if len(rows) == 0 {
		return vocab.UserProgress{}, ErrNotFound
	}
	return rows[0], nil
}

// ListProgress returns rows matching f ordered by last_reviewed_at.
func (s *Store) ListProgress(ctx context.Context, f ProgressFilter) ([]vocab.UserProgress, error) {
	sel := s.builder().
		Select(progressColumns...).
		From(s.builder().Table(progressTable))

	if f.UserID != "" {
		sel.Where(entsql.EQ("user_id", f.UserID))
	}
	if !f.From.IsZero() {
		sel.Where(entsql.GTE("last_reviewed_at", f.From.UTC()))
	}
	if !f.To.IsZero() {
		sel.Where(entsql.LT("last_reviewed_at", f.To.UTC()))
	}
	query, args := sel.OrderBy("last_reviewed_at", "id").Query()

	var rows []vocab.UserProgress
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	return rows, nil
}
