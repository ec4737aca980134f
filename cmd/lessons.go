package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var lessonsCmd = &cobra.Command{
	Use:   "lessons",
	Short: "List lessons with word counts and your progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		lessons, err := e.store.ListLessons(ctx)
		if err != nil {
			return fmt.Errorf("list lessons: %w", err)
		}
		if len(lessons) == 0 {
			return errNoLessons
		}
		progress, err := e.store.GetProgress(ctx, e.cfg.UserID)
		if err != nil {
			return fmt.Errorf("load progress: %w", err)
		}

		fmt.Printf("%-5s  %-32s  %5s  %5s  %9s\n", "ID", "Title", "Words", "Seen", "Practiced")
		fmt.Println(strings.Repeat("─", 64))

		for _, l := range lessons {
			words, err := e.store.GetWordsByLesson(ctx, l.ID)
			if err != nil {
				return fmt.Errorf("load words for lesson %d: %w", l.ID, err)
			}
			var seen, practiced int
			for _, w := range words {
				p, ok := progress[w.ID]
				if !ok {
					continue
				}
				if p.Seen {
					seen++
				}
				if p.Practiced() {
					practiced++
				}
			}
			title := l.Title
			if r := []rune(title); len(r) > 32 {
				title = string(r[:29]) + "..."
			}
			fmt.Printf("%-5d  %-32s  %5d  %5d  %9d\n", l.ID, title, len(words), seen, practiced)
		}

		fmt.Printf("\n%d lessons\n", len(lessons))
		return nil
	},
}
