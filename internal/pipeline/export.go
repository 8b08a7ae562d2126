package pipeline

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "shelfsort/internal/errors"
)

const (
	booksSheet     = "Books"
	locationsSheet = "Locations"
)

// ExportReportToXLSX writes one row per book, location first, plus a
// per-location count sheet.
func ExportReportToXLSX(report Report, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), booksSheet); err != nil {
		return apperrors.Internal("prepare workbook", err)
	}
	if _, err := f.NewSheet(locationsSheet); err != nil {
		return apperrors.Internal("prepare workbook", err)
	}

	headers := []string{"location", "bookId", "title", "authors", "department", "status", "rack", "shelf"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(booksSheet, cell, h)
	}

	r := 2
	for _, g := range report {
		for _, b := range g.Books {
			set := func(col int, value any) {
				cell, _ := excelize.CoordinatesToCellName(col, r)
				_ = f.SetCellValue(booksSheet, cell, value)
			}
			set(1, g.Key)
			set(2, b.BookID)
			set(3, b.Title)
			set(4, strings.Join(b.Authors, ", "))
			set(5, string(b.Department))
			set(6, string(b.Status))
			set(7, derefInt(b.Rack))
			set(8, derefInt(b.Shelf))
			r++
		}
	}

	_ = f.SetCellValue(locationsSheet, "A1", "location")
	_ = f.SetCellValue(locationsSheet, "B1", "books")
	for i, g := range report {
		row := i + 2
		a, _ := excelize.CoordinatesToCellName(1, row)
		b, _ := excelize.CoordinatesToCellName(2, row)
		_ = f.SetCellValue(locationsSheet, a, g.Key)
		_ = f.SetCellValue(locationsSheet, b, len(g.Books))
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return apperrors.Internal("create output dir", err)
	}
	if err := f.SaveAs(outputPath); err != nil {
		return apperrors.Internal("save workbook", err)
	}
	return nil
}

func derefInt(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}
