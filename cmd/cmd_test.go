package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/kalima/internal/analytics"
	"github.com/abhisek/kalima/internal/store"
)

func testCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	for _, k := range []string{"KALIMA_DB", "KALIMA_DB_DRIVER", "KALIMA_DB_DSN", "KALIMA_USER", "KALIMA_LOG_FILE", "KALIMA_TZ"} {
		t.Setenv(k, "")
	}
	c := &cobra.Command{Use: "test"}
	c.Flags().String("db", "", "")
	c.Flags().String("driver", "", "")
	c.Flags().String("user", "", "")
	c.Flags().Bool("memory", false, "")
	require.NoError(t, c.Flags().Parse(args))
	c.SetContext(context.Background())
	return c
}

func TestResolveConfigFlagsOverrideEnv(t *testing.T) {
	c := testCommand(t, "--user", "amira", "--db", "/tmp/k.db")
	t.Setenv("KALIMA_USER", "from-env")

	cfg, err := resolveConfig(c)
	require.NoError(t, err)
	assert.Equal(t, "amira", cfg.UserID)
	assert.Equal(t, "/tmp/k.db", cfg.DB.Path)
}

func TestResolveConfigRejectsBadDriver(t *testing.T) {
	c := testCommand(t, "--driver", "oracle")

	_, err := resolveConfig(c)
	assert.ErrorContains(t, err, "unknown database driver")
}

func TestOpenEnvMemorySeedsSample(t *testing.T) {
	c := testCommand(t, "--memory")

	e, err := openEnv(c)
	require.NoError(t, err)
	defer e.Close()

	lessons, err := e.store.ListLessons(context.Background())
	require.NoError(t, err)
	assert.Len(t, lessons, 2)
}

func TestOpenEnvSQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kalima.db")
	c := testCommand(t, "--db", path)

	e, err := openEnv(c)
	require.NoError(t, err)
	_, ok := e.store.(*store.Store)
	assert.True(t, ok)
	require.NoError(t, seedSample(context.Background(), e.store))
	e.Close()

	assert.FileExists(t, filepath.Join(filepath.Dir(path), "kalima.log"))
}

func TestParseRange(t *testing.T) {
	loc := time.UTC

	q, err := parseRange("2024-03-01", "2024-03-03", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, loc), q.From)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, loc), q.To)

	q, err = parseRange("", "", loc)
	require.NoError(t, err)
	assert.True(t, q.From.IsZero() && q.To.IsZero())

	_, err = parseRange("03/01/2024", "", loc)
	assert.ErrorContains(t, err, "invalid --from")

	_, err = parseRange("2024-03-05", "2024-03-01", loc)
	assert.ErrorContains(t, err, "after --to")
}

func TestWriteStats(t *testing.T) {
	title := "Greetings"
	lessonID := int64(1)
	d := analytics.Dashboard{
		Summary: analytics.UserActivitySummary{UserID: "amira", TotalCorrect: 4, TotalIncorrect: 1, AccuracyRate: 80, CurrentStreak: 2, LongestStreak: 3},
		Practice: analytics.PracticeMetrics{ByLesson: []analytics.LessonMetrics{
			{LessonID: &lessonID, LessonTitle: &title, WordsPracticed: 5, CorrectCount: 4, IncorrectCount: 1, AccuracyRate: 80},
			{WordsPracticed: 1},
		}},
		Tests: []analytics.TestResult{{Date: "2024-03-04", Score: 80, TotalWords: 5, CorrectWords: 4, LessonTitle: &title}},
	}

	var buf bytes.Buffer
	writeStats(&buf, d)
	out := buf.String()

	for _, want := range []string{"amira", "80.0%", "2 days (best 3)", "Greetings", "(no lesson)", "2024-03-04"} {
		assert.Contains(t, out, want)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, analytics.Dashboard{Summary: analytics.UserActivitySummary{UserID: "amira"}}))
	assert.Contains(t, buf.String(), `"userId": "amira"`)
}
