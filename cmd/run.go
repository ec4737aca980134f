package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/kalima/internal/app"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	return app.Run(e.appOptions())
}

func (e *env) appOptions() app.Options {
	return app.Options{
		UserID:    e.cfg.UserID,
		Content:   e.store,
		Progress:  e.store,
		Analytics: e.analytics,
		Logger:    e.logger,
	}
}
