package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/kalima/internal/app"
	"github.com/abhisek/kalima/internal/store"
	"github.com/abhisek/kalima/internal/study"
	"github.com/abhisek/kalima/internal/vocab"
)

var studyCmd = &cobra.Command{
	Use:   "study",
	Short: "Open a lesson directly",
	RunE: func(cmd *cobra.Command, args []string) error {
		lessonID, _ := cmd.Flags().GetInt64("lesson")
		modeName, _ := cmd.Flags().GetString("mode")

		mode, ok := study.ParseMode(modeName)
		if !ok {
			return fmt.Errorf("unknown mode %q (want learn, practice or test)", modeName)
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		lesson, err := findLesson(cmd, e, lessonID)
		if err != nil {
			return err
		}

		opts := e.appOptions()
		opts.StartLesson = &lesson
		opts.StartMode = mode
		return app.Run(opts)
	},
}

func init() {
	studyCmd.Flags().Int64("lesson", 0, "Lesson id (see `kalima lessons`)")
	studyCmd.Flags().String("mode", "learn", "Starting mode: learn, practice or test")
	_ = studyCmd.MarkFlagRequired("lesson")
}

func findLesson(cmd *cobra.Command, e *env, id int64) (vocab.Lesson, error) {
	lessons, err := e.store.ListLessons(cmd.Context())
	if err != nil {
		return vocab.Lesson{}, fmt.Errorf("list lessons: %w", err)
	}
	for _, l := range lessons {
		if l.ID == id {
			return l, nil
		}
	}
	return vocab.Lesson{}, fmt.Errorf("lesson %d: %w", id, store.ErrNotFound)
}

// errNoLessons is returned by commands that need content when none exists.
var errNoLessons = errors.New("no lessons found; add some with `kalima import FILE`")
