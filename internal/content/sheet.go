package content

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// SheetConfig maps spreadsheet columns to word fields.
type SheetConfig struct {
	LessonColumn  string // Column with the lesson title
	ArabicColumn  string // Column with the Arabic word
	EnglishColumn string // Column with the English translation
	OrderColumn   string // Optional column with the word order
	SheetName     string // XLSX sheet; empty means the first sheet
	StartRow      int    // First data row (1-based)
	DefaultLesson string // Lesson for rows with an empty lesson cell
}

// DefaultSheetConfig returns the layout lesson, arabic, english, order
// with a header row.
func DefaultSheetConfig() SheetConfig {
	return SheetConfig{
		LessonColumn:  "A",
		ArabicColumn:  "B",
		EnglishColumn: "C",
		OrderColumn:   "D",
		StartRow:      2,
		DefaultLesson: "Imported",
	}
}

// readXLSX returns the configured sheet's rows.
func readXLSX(r io.Reader, cfg SheetConfig) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := cfg.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// readCSV returns every record of r.
func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV: %w", err)
	}
	return rows, nil
}

// rowsToPack converts sheet rows into a pack. Lessons are ordered by first
// appearance; words without an order cell are numbered by position. Bad
// rows are reported in errs and skipped.
func rowsToPack(rows [][]string, cfg SheetConfig) (*Pack, []string, error) {
	cols := make(map[string]int)
	for name, letter := range map[string]string{
		"lesson":  cfg.LessonColumn,
		"arabic":  cfg.ArabicColumn,
		"english": cfg.EnglishColumn,
		"order":   cfg.OrderColumn,
	} {
		if letter == "" {
			cols[name] = -1
			continue
		}
		n, err := excelize.ColumnNameToNumber(letter)
		if err != nil {
			return nil, nil, fmt.Errorf("%s column: %w", name, err)
		}
		cols[name] = n - 1
	}

	cell := func(row []string, name string) string {
		i := cols[name]
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	p := &Pack{Format: SupportedMajor + ".0.0"}
	index := make(map[string]int)
	var errs []string

	for i, row := range rows {
		rowNum := i + 1
		if rowNum < cfg.StartRow || blank(row) {
			continue
		}

		arabic, english := cell(row, "arabic"), cell(row, "english")
		if arabic == "" || english == "" {
			errs = append(errs, fmt.Sprintf("row %d: arabic and english are required", rowNum))
			continue
		}

		title := cell(row, "lesson")
		if title == "" {
			title = cfg.DefaultLesson
		}
		li, ok := index[title]
		if !ok {
			li = len(p.Lessons)
			index[title] = li
			p.Lessons = append(p.Lessons, PackLesson{Title: title, Order: li + 1})
		}
		lesson := &p.Lessons[li]

		order := len(lesson.Words) + 1
		if raw := cell(row, "order"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				errs = append(errs, fmt.Sprintf("row %d: invalid order %q", rowNum, raw))
				continue
			}
			order = n
		}
		lesson.Words = append(lesson.Words, PackWord{Arabic: arabic, English: english, Order: order})
	}
	return p, errs, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
