// Package dashboard renders the learner's analytics.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/kalima/internal/analytics"
	"github.com/abhisek/kalima/internal/screen"
	"github.com/abhisek/kalima/internal/ui/components"
	"github.com/abhisek/kalima/internal/ui/layout"
	"github.com/abhisek/kalima/internal/ui/theme"
)

// recentDays is how many days of activity are listed.
const recentDays = 7

// Source produces dashboards. *analytics.Aggregator satisfies it.
type Source interface {
	Dashboard(ctx context.Context, q analytics.Query) analytics.Dashboard
}

type loadedMsg struct {
	Dashboard analytics.Dashboard
}

// DashboardScreen shows progress, accuracy, streaks and test history.
type DashboardScreen struct {
	source Source
	userID string
	data   *analytics.Dashboard
}

var _ screen.Screen = (*DashboardScreen)(nil)
var _ screen.KeyHintProvider = (*DashboardScreen)(nil)

// New creates a DashboardScreen for userID.
func New(source Source, userID string) *DashboardScreen {
	return &DashboardScreen{source: source, userID: userID}
}

func (d *DashboardScreen) Init() tea.Cmd {
	return d.load()
}

func (d *DashboardScreen) load() tea.Cmd {
	src, userID := d.source, d.userID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return loadedMsg{Dashboard: src.Dashboard(ctx, analytics.Query{UserID: userID})}
	}
}

func (d *DashboardScreen) Title() string {
	return "Progress"
}

func (d *DashboardScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "R", Description: "Refresh"},
		{Key: "Esc", Description: "Back"},
	}
}

func (d *DashboardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		d.data = &msg.Dashboard
	case tea.KeyMsg:
		if msg.String() == "r" {
			return d, d.load()
		}
	}
	return d, nil
}

func (d *DashboardScreen) View(width, height int) string {
	if d.data == nil {
		return components.Center(theme.Muted.Render("Crunching numbers..."), width, height)
	}
	cw := components.ContentWidth(width)
	data := d.data
	sum := data.Summary

	var b strings.Builder
	b.WriteString(theme.Title.Render(fmt.Sprintf("★ %d day streak", sum.CurrentStreak)))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("best %d days · %d words seen · %d practiced",
		sum.LongestStreak, sum.TotalWordsSeen, sum.TotalWordsPracticed)))
	b.WriteString("\n\n")
	b.WriteString(components.NewProgressBar("Accuracy", sum.AccuracyRate/100, true, cw).View())
	b.WriteString("\n")
	b.WriteString(theme.Muted.Render(fmt.Sprintf("%d correct · %d incorrect · %d practice days · %d test sessions",
		sum.TotalCorrect, sum.TotalIncorrect, sum.PracticeSessions, sum.TestSessions)))
	b.WriteString("\n\n")

	if len(data.Practice.ByLesson) > 0 {
		b.WriteString(theme.Selected.Render("By lesson"))
		b.WriteString("\n")
		for _, lm := range data.Practice.ByLesson {
			title := "Unassigned"
			if lm.LessonTitle != nil {
				title = *lm.LessonTitle
			}
			b.WriteString(components.NewProgressBar(truncate(title, 18), lm.AccuracyRate/100, true, cw).View())
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if daily := lastN(data.Daily, recentDays); len(daily) > 0 {
		b.WriteString(theme.Selected.Render("Recent days"))
		b.WriteString("\n")
		for _, day := range daily {
			b.WriteString(theme.Body.Render(fmt.Sprintf("%s  %3d words", day.Date, day.WordsReviewed)))
			if day.TestSessions > 0 {
				b.WriteString(theme.Muted.Render("  test"))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(data.Tests) > 0 {
		b.WriteString(theme.Selected.Render("Tests"))
		b.WriteString("\n")
		for i, tr := range data.Tests {
			if i == recentDays {
				break
			}
			title := "Unassigned"
			if tr.LessonTitle != nil {
				title = *tr.LessonTitle
			}
			b.WriteString(theme.Body.Render(fmt.Sprintf("%s  %-18s %5.1f%%  %d/%d",
				tr.Date, truncate(title, 18), tr.Score, tr.CorrectWords, tr.TotalWords)))
			b.WriteString("\n")
		}
	}

	if sum.TotalWordsSeen == 0 {
		b.WriteString(theme.Hint.Render("No activity yet. Open a lesson to get started."))
	}

	return components.Center(b.String(), width, height)
}

func lastN(days []analytics.DailyActivityData, n int) []analytics.DailyActivityData {
	if len(days) > n {
		days = days[len(days)-n:]
	}
	return days
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
