// Package testutil holds fixtures shared by the package tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"salesdash/internal/models"
)

// Date parses a YYYY-MM-DD literal in UTC.
func Date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

// CanonicalColumns returns the nine sales columns under their source headers.
func CanonicalColumns() []models.Column {
	cols := make([]models.Column, len(models.RequiredFields))
	for i, f := range models.RequiredFields {
		cols[i] = models.Column{Name: f.CanonicalHeader(), Field: f}
	}
	return cols
}

// SampleRecords are four sales across three continents and two categories.
// Revenue totals 120; March has no sales.
func SampleRecords() []models.SalesRecord {
	return []models.SalesRecord{
		{SaleDate: Date("2024-01-05"), Continent: "Asia", Category: "A", Product: "P1", Brand: "B1", Quantity: 10, UnitPrice: 2, UnitCost: 1, Revenue: 20},
		{SaleDate: Date("2024-02-10"), Continent: "Europe", Category: "A", Product: "P2", Brand: "B2", Quantity: 5, UnitPrice: 4, UnitCost: 2, Revenue: 20},
		{SaleDate: Date("2024-02-12"), Continent: "Europe", Category: "B", Product: "P3", Brand: "B1", Quantity: 3, UnitPrice: 10, UnitCost: 6, Revenue: 30},
		{SaleDate: Date("2024-04-01"), Continent: "America", Category: "B", Product: "P4", Brand: "B3", Quantity: 1, UnitPrice: 50, UnitCost: 20, Revenue: 50},
	}
}

func SampleDataset() *models.Dataset {
	return &models.Dataset{Columns: CanonicalColumns(), Records: SampleRecords()}
}

// Header returns the canonical header row.
func Header() []string {
	h := make([]string, len(models.RequiredFields))
	for i, f := range models.RequiredFields {
		h[i] = f.CanonicalHeader()
	}
	return h
}

// RecordRow returns the canonical cells of r, dates as time.Time.
func RecordRow(r models.SalesRecord) []any {
	return []any{r.SaleDate, r.Continent, r.Category, r.Product, r.Brand, r.Quantity, r.UnitPrice, r.UnitCost, r.Revenue}
}

// WriteWorkbook writes header and rows to sheet in a new workbook at dir/name.
func WriteWorkbook(t *testing.T, dir, name, sheet string, header []string, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", sheet))

	head := make([]any, len(header))
	for i, h := range header {
		head[i] = h
	}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &head))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}

	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}

// WriteSampleWorkbook writes SampleRecords to a "Vendas" sheet.
func WriteSampleWorkbook(t *testing.T, dir string) string {
	t.Helper()
	rows := make([][]any, 0, 4)
	for _, r := range SampleRecords() {
		rows = append(rows, RecordRow(r))
	}
	return WriteWorkbook(t, dir, "vendas.xlsx", "Vendas", Header(), rows)
}

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// Rows renders records as text cells so datasets from different sources compare by value.
func Rows(cols []models.Column, recs []models.SalesRecord) [][]string {
	out := make([][]string, len(recs))
	for i := range recs {
		row := make([]string, len(cols))
		for j, c := range cols {
			row[j] = models.FormatValue(c.Value(&recs[i]))
		}
		out[i] = row
	}
	return out
}
