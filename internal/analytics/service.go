package analytics

import (
	"context"
	"log/slog"
	"time"

	"github.com/abhisek/kalima/internal/store"
	"github.com/abhisek/kalima/internal/vocab"
)

// Query selects the rows a dashboard is computed from. Zero values mean
// no filter.
type Query struct {
	UserID string
	From   time.Time
	To     time.Time
}

// Dashboard bundles the four result shapes.
type Dashboard struct {
	Daily       []DailyActivityData `json:"daily"`
	Practice    PracticeMetrics     `json:"practice"`
	Tests       []TestResult        `json:"tests"`
	Summary     UserActivitySummary `json:"summary"`
	GeneratedAt time.Time           `json:"generatedAt"`
}

// Aggregator computes dashboards from the store. Query failures are logged
// and produce zero-valued results, never errors.
type Aggregator struct {
	progress store.ProgressQuerier
	content  store.LessonContent
	loc      *time.Location
	logger   *slog.Logger
	now      func() time.Time
}

// NewAggregator returns an aggregator computing calendar dates in loc.
func NewAggregator(progress store.ProgressQuerier, content store.LessonContent, loc *time.Location, logger *slog.Logger) *Aggregator {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		progress: progress,
		content:  content,
		loc:      loc,
		logger:   logger,
		now:      time.Now,
	}
}

// Location returns the time zone used for calendar dates.
func (a *Aggregator) Location() *time.Location {
	return a.loc
}

// Dashboard computes every result shape from a single read.
func (a *Aggregator) Dashboard(ctx context.Context, q Query) Dashboard {
	now := a.now()
	rows, lessons, ok := a.load(ctx, q)
	if !ok {
		return emptyDashboard(q.UserID, now)
	}
	return Dashboard{
		Daily:       DailyActivity(rows, a.loc),
		Practice:    ComputePracticeMetrics(rows, lessons),
		Tests:       TestResults(rows, lessons, a.loc),
		Summary:     Summarize(q.UserID, rows, a.loc, now),
		GeneratedAt: now,
	}
}

// DailyActivity returns per-day activity for q.
func (a *Aggregator) DailyActivity(ctx context.Context, q Query) []DailyActivityData {
	return a.Dashboard(ctx, q).Daily
}

// PracticeMetrics returns answer totals for q.
func (a *Aggregator) PracticeMetrics(ctx context.Context, q Query) PracticeMetrics {
	return a.Dashboard(ctx, q).Practice
}

// TestResults returns reconstructed test sessions for q.
func (a *Aggregator) TestResults(ctx context.Context, q Query) []TestResult {
	return a.Dashboard(ctx, q).Tests
}

// UserSummary returns the activity summary over all of the user's history.
func (a *Aggregator) UserSummary(ctx context.Context, userID string) UserActivitySummary {
	return a.Dashboard(ctx, Query{UserID: userID}).Summary
}

func (a *Aggregator) load(ctx context.Context, q Query) ([]vocab.UserProgress, map[int64]vocab.Lesson, bool) {
	rows, err := a.progress.ListProgress(ctx, store.ProgressFilter{
		UserID: q.UserID,
		From:   q.From,
		To:     q.To,
	})
	if err != nil {
		a.logger.Error("list progress", "user_id", q.UserID, "error", err)
		return nil, nil, false
	}
	lessons, err := a.content.WordLessons(ctx)
	if err != nil {
		a.logger.Error("load word lessons", "error", err)
		return nil, nil, false
	}
	return rows, lessons, true
}

func emptyDashboard(userID string, now time.Time) Dashboard {
	return Dashboard{
		Daily:       []DailyActivityData{},
		Practice:    PracticeMetrics{ByLesson: []LessonMetrics{}},
		Tests:       []TestResult{},
		Summary:     UserActivitySummary{UserID: userID},
		GeneratedAt: now,
	}
}
