package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "kalima",
	Short: "Arabic vocabulary trainer",
	Long:  "Kalima is a terminal app for learning Arabic vocabulary through learn, practice and test modes.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides KALIMA_DB env var)")
	pf.String("driver", "", "Database driver: sqlite, postgres or mysql (overrides KALIMA_DB_DRIVER)")
	pf.String("user", "", "Learner id (overrides KALIMA_USER)")
	pf.Bool("memory", false, "Use an in-memory store seeded with the sample lessons")

	rootCmd.AddCommand(studyCmd)
	rootCmd.AddCommand(lessonsCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
}
