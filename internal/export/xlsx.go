package export

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/faculty-tracker/internal/entity"
)

// SheetName is the worksheet the faculty table is written to.
const SheetName = "Faculty"

var columnWidths = map[string]float64{
	"A": 32, // name
	"B": 24, // category
	"C": 36, // department
	"D": 32, // email
	"E": 18, // phone
	"F": 22, // researcher id
	"G": 28, // sources
	"H": 80, // locators
}

// WriteXLSX writes the entities as a single-sheet workbook.
func WriteXLSX(w io.Writer, entities []entity.CanonicalEntity, withProvenance bool, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn("export.xlsx.close_failed", "error", err)
		}
	}()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	write := func(col, row int, v any) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(SheetName, cell, v)
	}

	headers := entity.Headers(withProvenance)
	for i, h := range headers {
		if err := write(i+1, 1, h); err != nil {
			return fmt.Errorf("xlsx header: %w", err)
		}
	}
	rows := entity.Rows(entities, withProvenance)
	for r, row := range rows {
		for c, v := range row.Values(withProvenance) {
			if err := write(c+1, r+2, v); err != nil {
				return fmt.Errorf("xlsx row %d: %w", r+2, err)
			}
		}
	}

	for i := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(SheetName, col, col, columnWidths[col])
	}
	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("xlsx panes: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	logger.Info("export.xlsx.ok", "rows", len(rows), "elapsed_ms", time.Since(start).Milliseconds())
	return nil
}
