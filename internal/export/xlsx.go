package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"salesdash/internal/models"
)

// fixedTimestamp pins the workbook properties so equal input gives equal output.
const fixedTimestamp = "2000-01-01T00:00:00Z"

// WriteXLSX writes a single-sheet workbook with a bold header row.
func WriteXLSX(w io.Writer, cols []models.Column, view []models.SalesRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetDocProps(&excelize.DocProperties{
		Creator:        "salesdash",
		LastModifiedBy: "salesdash",
		Created:        fixedTimestamp,
		Modified:       fixedTimestamp,
	}); err != nil {
		return fmt.Errorf("set doc props: %w", err)
	}

	// 1. Header
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c.Name
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := f.SetRowStyle(SheetName, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}

	// 2. Rows
	row := make([]any, len(cols))
	for i := range view {
		for j, c := range cols {
			row[j] = c.Value(&view[i])
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	// 3. Date columns
	if len(view) > 0 {
		dateFmt := "yyyy-mm-dd"
		dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
		if err != nil {
			return fmt.Errorf("date style: %w", err)
		}
		for j, c := range cols {
			if c.Field != models.FieldSaleDate {
				continue
			}
			top, _ := excelize.CoordinatesToCellName(j+1, 2)
			bottom, _ := excelize.CoordinatesToCellName(j+1, len(view)+1)
			if err := f.SetCellStyle(SheetName, top, bottom, dateStyle); err != nil {
				return fmt.Errorf("apply date style: %w", err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
