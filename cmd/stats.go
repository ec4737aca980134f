package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/kalima/internal/analytics"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")
		asJSON, _ := cmd.Flags().GetBool("json")
		allUsers, _ := cmd.Flags().GetBool("all-users")
		watch, _ := cmd.Flags().GetBool("watch")
		every, _ := cmd.Flags().GetDuration("every")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		q, err := parseRange(from, to, e.analytics.Location())
		if err != nil {
			return err
		}
		if !allUsers {
			q.UserID = e.cfg.UserID
		}

		render := func(w io.Writer, d analytics.Dashboard) error {
			if asJSON {
				return writeJSON(w, d)
			}
			writeStats(w, d)
			return nil
		}

		if !watch {
			return render(os.Stdout, e.analytics.Dashboard(cmd.Context(), q))
		}
		return watchStats(cmd.Context(), e, q, every, render)
	},
}

func init() {
	f := statsCmd.Flags()
	f.String("from", "", "First day to include (YYYY-MM-DD)")
	f.String("to", "", "Last day to include (YYYY-MM-DD)")
	f.Bool("json", false, "Print the dashboard as JSON")
	f.Bool("all-users", false, "Aggregate every learner instead of --user")
	f.Bool("watch", false, "Keep running and reprint on an interval")
	f.Duration("every", time.Minute, "Refresh interval for --watch")
}

// parseRange turns inclusive calendar dates into a half-open query range.
func parseRange(from, to string, loc *time.Location) (analytics.Query, error) {
	var q analytics.Query
	if from != "" {
		t, err := time.ParseInLocation(analytics.DateLayout, from, loc)
		if err != nil {
			return q, fmt.Errorf("invalid --from date %q: %w", from, err)
		}
		q.From = t
	}
	if to != "" {
		t, err := time.ParseInLocation(analytics.DateLayout, to, loc)
		if err != nil {
			return q, fmt.Errorf("invalid --to date %q: %w", to, err)
		}
		q.To = t.AddDate(0, 0, 1)
	}
	if !q.From.IsZero() && !q.To.IsZero() && !q.From.Before(q.To) {
		return q, fmt.Errorf("--from %s is after --to %s", from, to)
	}
	return q, nil
}

func watchStats(ctx context.Context, e *env, q analytics.Query, every time.Duration, render func(io.Writer, analytics.Dashboard) error) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := analytics.NewRefresher(e.analytics, q, every, func(d analytics.Dashboard) {
		fmt.Printf("\n── %s ──\n", d.GeneratedAt.In(e.analytics.Location()).Format("2006-01-02 15:04:05"))
		if err := render(os.Stdout, d); err != nil {
			fmt.Fprintf(os.Stderr, "warning: render stats: %v\n", err)
		}
	})
	if err := r.Start(); err != nil {
		return err
	}
	defer r.Stop()

	<-ctx.Done()
	_, runs := r.Latest()
	e.logger.Info("stats watch stopped", "refreshes", runs)
	return nil
}

func writeJSON(w io.Writer, d analytics.Dashboard) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

func writeStats(w io.Writer, d analytics.Dashboard) {
	s := d.Summary
	who := s.UserID
	if who == "" {
		who = "all learners"
	}

	fmt.Fprintf(w, "Learner:        %s\n", who)
	fmt.Fprintf(w, "Words seen:     %d\n", s.TotalWordsSeen)
	fmt.Fprintf(w, "Practiced:      %d\n", s.TotalWordsPracticed)
	fmt.Fprintf(w, "Answers:        %d correct / %d incorrect\n", s.TotalCorrect, s.TotalIncorrect)
	fmt.Fprintf(w, "Accuracy:       %.1f%%\n", s.AccuracyRate)
	fmt.Fprintf(w, "Sessions:       %d practice, %d test\n", s.PracticeSessions, s.TestSessions)
	fmt.Fprintf(w, "Streak:         %d days (best %d)\n", s.CurrentStreak, s.LongestStreak)
	if s.LastActive != nil {
		fmt.Fprintf(w, "Last active:    %s\n", s.LastActive.Format("2006-01-02 15:04"))
	}

	if len(d.Practice.ByLesson) > 0 {
		fmt.Fprintf(w, "\n%-28s  %7s  %9s  %8s\n", "Lesson", "Words", "Attempts", "Accuracy")
		fmt.Fprintln(w, strings.Repeat("─", 58))
		for _, lm := range d.Practice.ByLesson {
			fmt.Fprintf(w, "%-28s  %7d  %9d  %7.1f%%\n",
				lessonTitle(lm.LessonTitle), lm.WordsPracticed, lm.CorrectCount+lm.IncorrectCount, lm.AccuracyRate)
		}
	}

	if len(d.Daily) > 0 {
		fmt.Fprintf(w, "\n%-10s  %5s  %8s  %4s  %5s\n", "Date", "Words", "Practice", "Test", "Users")
		fmt.Fprintln(w, strings.Repeat("─", 40))
		for _, day := range d.Daily {
			fmt.Fprintf(w, "%-10s  %5d  %8d  %4d  %5d\n",
				day.Date, day.WordsReviewed, day.PracticeSessions, day.TestSessions, day.ActiveUsers)
		}
	}

	if len(d.Tests) > 0 {
		fmt.Fprintf(w, "\n%-10s  %-28s  %6s  %7s\n", "Date", "Lesson", "Score", "Correct")
		fmt.Fprintln(w, strings.Repeat("─", 58))
		for _, t := range d.Tests {
			fmt.Fprintf(w, "%-10s  %-28s  %5.1f%%  %3d/%-3d\n",
				t.Date, lessonTitle(t.LessonTitle), t.Score, t.CorrectWords, t.TotalWords)
		}
	}
}

func lessonTitle(t *string) string {
	if t == nil {
		return "(no lesson)"
	}
	if r := []rune(*t); len(r) > 28 {
		return string(r[:25]) + "..."
	}
	return *t
}
