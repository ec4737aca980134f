package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table names.
const (
	lessonsTable  = "lessons"
	wordsTable    = "vocabulary_words"
	progressTable = "user_progress"
)

var (
	// LessonsColumns holds the columns for the "lessons" table.
	LessonsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "title", Type: field.TypeString, Size: 255, Unique: true},
		{Name: "sort_order", Type: field.TypeInt, Default: 0},
	}
	// LessonsTable holds the schema information for the "lessons" table.
	LessonsTable = &schema.Table{
		Name:       lessonsTable,
		Columns:    LessonsColumns,
		PrimaryKey: []*schema.Column{LessonsColumns[0]},
	}

	// WordsColumns holds the columns for the "vocabulary_words" table.
	WordsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "lesson_id", Type: field.TypeInt64},
		{Name: "arabic", Type: field.TypeString, Size: 255},
		{Name: "english", Type: field.TypeString, Size: 255},
		{Name: "sort_order", Type: field.TypeInt, Default: 0},
	}
	// WordsTable holds the schema information for the "vocabulary_words" table.
	WordsTable = &schema.Table{
		Name:       wordsTable,
		Columns:    WordsColumns,
		PrimaryKey: []*schema.Column{WordsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "vocabulary_words_lessons_words",
				Columns:    []*schema.Column{WordsColumns[1]},
				RefColumns: []*schema.Column{LessonsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "vocabularyword_lesson_id_arabic",
				Unique:  true,
				Columns: []*schema.Column{WordsColumns[1], WordsColumns[2]},
			},
			{
				Name:    "vocabularyword_lesson_id_sort_order",
				Unique:  false,
				Columns: []*schema.Column{WordsColumns[1], WordsColumns[4]},
			},
		},
	}

	// ProgressColumns holds the columns for the "user_progress" table.
	ProgressColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "user_id", Type: field.TypeString, Size: 255},
		{Name: "word_id", Type: field.TypeInt64},
		{Name: "seen", Type: field.TypeBool, Default: false},
		{Name: "correct_count", Type: field.TypeInt, Default: 0},
		{Name: "incorrect_count", Type: field.TypeInt, Default: 0},
		{Name: "last_reviewed_at", Type: field.TypeTime},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// ProgressTable holds the schema information for the "user_progress" table.
	ProgressTable = &schema.Table{
		Name:       progressTable,
		Columns:    ProgressColumns,
		PrimaryKey: []*schema.Column{ProgressColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "user_progress_vocabulary_words_progress",
				Columns:    []*schema.Column{ProgressColumns[2]},
				RefColumns: []*schema.Column{WordsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "userprogress_user_id_word_id",
				Unique:  true,
				Columns: []*schema.Column{ProgressColumns[1], ProgressColumns[2]},
			},
			{
				Name:    "userprogress_last_reviewed_at",
				Unique:  false,
				Columns: []*schema.Column{ProgressColumns[6]},
			},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		LessonsTable,
		WordsTable,
		ProgressTable,
	}
)

func init() {
	WordsTable.ForeignKeys[0].RefTable = LessonsTable
	ProgressTable.ForeignKeys[0].RefTable = WordsTable
}

// Column lists used by the select builders, in struct tag order.
var (
	lessonColumns   = []string{"id", "title", "sort_order"}
	wordColumns     = []string{"id", "lesson_id", "arabic", "english", "sort_order"}
	progressColumns = []string{
		"id", "user_id", "word_id", "seen", "correct_count", "incorrect_count",
		"last_reviewed_at", "created_at", "updated_at",
	}
)

// migrate creates or updates the tables on drv.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}
