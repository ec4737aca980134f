package content

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/abhisek/kalima/internal/store"
	"github.com/abhisek/kalima/internal/vocab"
)

// ImportResult holds the result of an import operation.
type ImportResult struct {
	Lessons int
	Created int
	Updated int
	Errors  []string
}

// Importer writes packs and spreadsheets through a ContentWriter.
type Importer struct {
	w   store.ContentWriter
	cfg SheetConfig
}

// NewImporter returns an importer using cfg for spreadsheet layouts.
func NewImporter(w store.ContentWriter, cfg SheetConfig) *Importer {
	return &Importer{w: w, cfg: cfg}
}

// ImportFile imports path, choosing the format by extension: .json packs,
// .xlsx workbooks or .csv sheets.
func (im *Importer) ImportFile(ctx context.Context, path string) (*ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return im.ImportJSON(ctx, f)
	case ".xlsx":
		return im.ImportXLSX(ctx, f)
	case ".csv":
		return im.ImportCSV(ctx, f)
	default:
		return nil, fmt.Errorf("unsupported file type %q", ext)
	}
}

// ImportJSON imports a content pack.
func (im *Importer) ImportJSON(ctx context.Context, r io.Reader) (*ImportResult, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pack: %w", err)
	}
	p, err := ParsePack(raw)
	if err != nil {
		return nil, err
	}
	return im.Apply(ctx, p)
}

// ImportXLSX imports a workbook laid out as described by the SheetConfig.
func (im *Importer) ImportXLSX(ctx context.Context, r io.Reader) (*ImportResult, error) {
	rows, err := readXLSX(r, im.cfg)
	if err != nil {
		return nil, err
	}
	return im.importRows(ctx, rows)
}

// ImportCSV imports a CSV sheet laid out as described by the SheetConfig.
func (im *Importer) ImportCSV(ctx context.Context, r io.Reader) (*ImportResult, error) {
	rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	return im.importRows(ctx, rows)
}

func (im *Importer) importRows(ctx context.Context, rows [][]string) (*ImportResult, error) {
	p, rowErrs, err := rowsToPack(rows, im.cfg)
	if err != nil {
		return nil, err
	}
	res, err := im.Apply(ctx, p)
	if err != nil {
		return nil, err
	}
	res.Errors = append(rowErrs, res.Errors...)
	return res, nil
}

// Apply upserts every lesson and word of p. A failing lesson aborts the
// import; a failing word is recorded and skipped.
func (im *Importer) Apply(ctx context.Context, p *Pack) (*ImportResult, error) {
	res := &ImportResult{Errors: make([]string, 0)}

	for _, pl := range p.Lessons {
		lesson, err := im.w.UpsertLesson(ctx, pl.Title, pl.Order)
		if err != nil {
			return res, fmt.Errorf("import lesson %q: %w", pl.Title, err)
		}
		res.Lessons++

		for _, pw := range pl.Words {
			_, created, err := im.w.UpsertWord(ctx, vocab.VocabularyWord{
				LessonID: lesson.ID,
				Arabic:   pw.Arabic,
				English:  pw.English,
				Order:    pw.Order,
			})
			if err != nil {
				res.Errors = append(res.Errors, fmt.Sprintf("%s / %s: %v", pl.Title, pw.Arabic, err))
				continue
			}
			if created {
				res.Created++
			} else {
				res.Updated++
			}
		}
	}
	return res, nil
}
