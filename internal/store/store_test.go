package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/kalima/internal/vocab"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// backend is the union of the interfaces both stores implement.
type backend interface {
	ProgressStore
	ProgressQuerier
	LessonContent
	ContentWriter
}

type clockSetter func(func() time.Time)

func backends(t *testing.T) map[string]struct {
	b        backend
	setClock clockSetter
} {
	t.Helper()
	db := openTestStore(t)
	mem := NewMemory()
	return map[string]struct {
		b        backend
		setClock clockSetter
	}{
		"sqlite": {db, func(f func() time.Time) { db.now = f }},
		"memory": {mem, mem.SetClock},
	}
}

func seedLesson(t *testing.T, ctx context.Context, b ContentWriter, title string, order int, pairs ...string) (vocab.Lesson, []vocab.VocabularyWord) {
	t.Helper()
	l, err := b.UpsertLesson(ctx, title, order)
	require.NoError(t, err)

	var words []vocab.VocabularyWord
	for i := 0; i+1 < len(pairs); i += 2 {
		w, created, err := b.UpsertWord(ctx, vocab.VocabularyWord{
			LessonID: l.ID,
			Arabic:   pairs[i],
			English:  pairs[i+1],
			Order:    i / 2,
		})
		require.NoError(t, err)
		require.True(t, created)
		words = append(words, w)
	}
	return l, words
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil database handle")
	}
	if s.Dialect() != "sqlite3" {
		t.Errorf("Dialect() = %q, want sqlite3", s.Dialect())
	}
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle", DSN: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so we skip journal_mode here. It is tested with file-based DBs.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestFileDatabaseUsesWAL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kalima.db")
	s, err := OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	var mode string
	require.NoError(t, s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestWithParam(t *testing.T) {
	tests := []struct {
		dsn  string
		want string
	}{
		{"db?tls=true", "db?tls=true&parseTime=true"},
		{"db", "db?parseTime=true"},
		{"db?parseTime=false", "db?parseTime=false"},
	}
	for _, tt := range tests {
		if got := withParam(tt.dsn, "parseTime", "true"); got != tt.want {
			t.Errorf("withParam(%q) = %q, want %q", tt.dsn, got, tt.want)
		}
	}
}

func TestSQLiteDSN(t *testing.T) {
	got := sqliteDSN("kalima.db")
	assert.Equal(t, "kalima.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite", got)

	// Already present parameters are not duplicated.
	assert.Equal(t, got, sqliteDSN(got))
	assert.True(t, strings.HasPrefix(sqliteDSN("file:x?mode=memory"), "file:x?mode=memory&"))
}

func TestDefaultDBPathFromEnv(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "kalima.db")
	t.Setenv("KALIMA_DB", p)

	got, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, p, got)

	info, err := os.Stat(filepath.Dir(p))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestDefaultDBPathXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("KALIMA_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)

	got, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "kalima", "kalima.db"), got)
}

func TestLessonsAndWords(t *testing.T) {
	for name, be := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			b := be.b

			second, _ := seedLesson(t, ctx, b, "Family", 2, "أب", "father", "أم", "mother")
			first, words := seedLesson(t, ctx, b, "Greetings", 1, "مرحبا", "hello", "شكرا", "thank you", "نعم", "yes")

			lessons, err := b.ListLessons(ctx)
			require.NoError(t, err)
			require.Len(t, lessons, 2)
			assert.Equal(t, "Greetings", lessons[0].Title)
			assert.Equal(t, "Family", lessons[1].Title)

			got, err := b.GetWordsByLesson(ctx, first.ID)
			require.NoError(t, err)
			require.Len(t, got, 3)
			for i, w := range got {
				assert.Equal(t, i, w.Order)
				assert.Equal(t, words[i].ID, w.ID)
			}

			// Re-upserting by (lesson, arabic) updates in place.
			updated, created, err := b.UpsertWord(ctx, vocab.VocabularyWord{
				LessonID: first.ID, Arabic: "نعم", English: "yes indeed", Order: -1,
			})
			require.NoError(t, err)
			assert.False(t, created)
			assert.Equal(t, words[2].ID, updated.ID)

			got, err = b.GetWordsByLesson(ctx, first.ID)
			require.NoError(t, err)
			assert.Equal(t, "yes indeed", got[0].English)

			// Re-upserting a lesson keeps its id.
			again, err := b.UpsertLesson(ctx, "Family", 0)
			require.NoError(t, err)
			assert.Equal(t, second.ID, again.ID)
			assert.Equal(t, 0, again.Order)

			wl, err := b.WordLessons(ctx)
			require.NoError(t, err)
			assert.Len(t, wl, 5)
			assert.Equal(t, "Greetings", wl[words[0].ID].Title)

			empty, err := b.GetWordsByLesson(ctx, 9999)
			require.NoError(t, err)
			assert.Empty(t, empty)
		})
	}
}

func TestUpsertProgressSemantics(t *testing.T) {
	for name, be := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			b := be.b
			_, words := seedLesson(t, ctx, b, "Colors", 1, "أحمر", "red", "أزرق", "blue")

			t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
			clock := t0
			be.setClock(func() time.Time { return clock })

			p, err := b.UpsertProgress(ctx, "u1", words[0].ID, vocab.Exposure())
			require.NoError(t, err)
			assert.True(t, p.Seen)
			assert.Equal(t, 0, p.Attempts())
			assert.True(t, p.LastReviewedAt.Equal(t0))

			// A later exposure leaves the review time alone.
			clock = t0.Add(time.Hour)
			p, err = b.UpsertProgress(ctx, "u1", words[0].ID, vocab.Exposure())
			require.NoError(t, err)
			assert.True(t, p.LastReviewedAt.Equal(t0))

			clock = t0.Add(2 * time.Hour)
			p, err = b.UpsertProgress(ctx, "u1", words[0].ID, vocab.Mark(true))
			require.NoError(t, err)
			assert.Equal(t, 1, p.CorrectCount)
			assert.True(t, p.LastReviewedAt.Equal(clock))

			// An update without Seen never clears it.
			p, err = b.UpsertProgress(ctx, "u1", words[0].ID, vocab.ProgressUpdate{IncorrectDelta: 1})
			require.NoError(t, err)
			assert.True(t, p.Seen)
			assert.Equal(t, 1, p.IncorrectCount)

			_, err = b.UpsertProgress(ctx, "u1", words[0].ID, vocab.ProgressUpdate{CorrectDelta: -1})
			assert.ErrorIs(t, err, ErrInvalidDelta)

			all, err := b.GetProgress(ctx, "u1")
			require.NoError(t, err)
			require.Len(t, all, 1)
			assert.Equal(t, 2, all[words[0].ID].Attempts())

			other, err := b.GetProgress(ctx, "u2")
			require.NoError(t, err)
			assert.Empty(t, other)
		})
	}
}

func TestAnswerCountsAddUp(t *testing.T) {
	for name, be := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			b := be.b
			_, words := seedLesson(t, ctx, b, "Numbers", 1, "واحد", "one")

			const n = 7
			for i := 0; i < n; i++ {
				_, err := b.UpsertProgress(ctx, "u1", words[0].ID, vocab.Mark(i%3 == 0))
				require.NoError(t, err)
			}

			all, err := b.GetProgress(ctx, "u1")
			require.NoError(t, err)
			p := all[words[0].ID]
			assert.Equal(t, n, p.CorrectCount+p.IncorrectCount)
			assert.Equal(t, 3, p.CorrectCount)
			assert.True(t, p.Seen)
		})
	}
}

func TestListProgressFilters(t *testing.T) {
	for name, be := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			b := be.b
			_, words := seedLesson(t, ctx, b, "Days", 1, "سبت", "saturday", "أحد", "sunday", "اثنين", "monday")

			day := func(d int) time.Time { return time.Date(2026, 3, d, 12, 0, 0, 0, time.UTC) }
			writes := []struct {
				user string
				word int
				at   time.Time
			}{
				{"u1", 0, day(1)},
				{"u1", 1, day(2)},
				{"u2", 2, day(3)},
			}
			for _, w := range writes {
				at := w.at
				be.setClock(func() time.Time { return at })
				_, err := b.UpsertProgress(ctx, w.user, words[w.word].ID, vocab.Mark(true))
				require.NoError(t, err)
			}

			all, err := b.ListProgress(ctx, ProgressFilter{})
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, words[0].ID, all[0].WordID)
			assert.Equal(t, words[2].ID, all[2].WordID)

			u1, err := b.ListProgress(ctx, ProgressFilter{UserID: "u1"})
			require.NoError(t, err)
			assert.Len(t, u1, 2)

			ranged, err := b.ListProgress(ctx, ProgressFilter{From: day(2), To: day(3)})
			require.NoError(t, err)
			require.Len(t, ranged, 1)
			assert.Equal(t, words[1].ID, ranged[0].WordID)
		})
	}
}
