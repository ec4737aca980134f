package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/kalima/internal/content"
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import lessons from a JSON content pack, XLSX or CSV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := content.DefaultSheetConfig()
		cfg.SheetName, _ = cmd.Flags().GetString("sheet")
		cfg.DefaultLesson, _ = cmd.Flags().GetString("default-lesson")
		if v, _ := cmd.Flags().GetString("lesson-col"); v != "" {
			cfg.LessonColumn = v
		}
		if v, _ := cmd.Flags().GetString("arabic-col"); v != "" {
			cfg.ArabicColumn = v
		}
		if v, _ := cmd.Flags().GetString("english-col"); v != "" {
			cfg.EnglishColumn = v
		}
		if v, _ := cmd.Flags().GetString("order-col"); v != "" {
			cfg.OrderColumn = v
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		res, err := content.NewImporter(e.store, cfg).ImportFile(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("import %s: %w", args[0], err)
		}

		for _, msg := range res.Errors {
			fmt.Fprintf(os.Stderr, "warning: %s\n", msg)
		}
		fmt.Printf("Imported %d lessons: %d words added, %d updated", res.Lessons, res.Created, res.Updated)
		if n := len(res.Errors); n > 0 {
			fmt.Printf(", %d skipped", n)
		}
		fmt.Println()
		e.logger.Info("import finished", "file", args[0], "lessons", res.Lessons, "created", res.Created, "updated", res.Updated, "errors", len(res.Errors))
		return nil
	},
}

func init() {
	def := content.DefaultSheetConfig()
	f := importCmd.Flags()
	f.String("sheet", "", "Worksheet name for XLSX files (default: first sheet)")
	f.String("default-lesson", def.DefaultLesson, "Lesson title for rows without a lesson column value")
	f.String("lesson-col", def.LessonColumn, "Column holding the lesson title")
	f.String("arabic-col", def.ArabicColumn, "Column holding the Arabic word")
	f.String("english-col", def.EnglishColumn, "Column holding the English translation")
	f.String("order-col", def.OrderColumn, "Column holding the word order")
}
