// Package export serializes a filtered view for download.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"salesdash/internal/models"
)

// Format is a download format.
type Format string

const (
	CSV   Format = "csv"
	XLSX  Format = "xlsx"
	Arrow Format = "arrow"
)

// SheetName is the sheet written into workbook exports.
const SheetName = "Vendas"

const baseFilename = "vendas_filtradas"

var (
	ErrUnknownFormat = errors.New("unknown export format")
	ErrUnknownColumn = errors.New("unknown column")
)

// ParseFormat accepts the format names and the Excel alias.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return CSV, nil
	case "xlsx", "excel":
		return XLSX, nil
	case "arrow", "ipc":
		return Arrow, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Filename is the fixed download name for the format.
func (f Format) Filename() string {
	return baseFilename + "." + string(f)
}

func (f Format) ContentType() string {
	switch f {
	case CSV:
		return "text/csv; charset=utf-8"
	case XLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case Arrow:
		return "application/vnd.apache.arrow.stream"
	}
	return "application/octet-stream"
}

// SelectColumns resolves names against the dataset. No names selects every
// column in dataset order; otherwise the columns come back in the order they
// were picked, repeats dropped.
func SelectColumns(ds *models.Dataset, names []string) ([]models.Column, error) {
	if len(names) == 0 {
		return ds.Columns, nil
	}
	seen := make(map[string]bool, len(names))
	cols := make([]models.Column, 0, len(names))
	for _, n := range names {
		c, ok := ds.Column(n)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, n)
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		cols = append(cols, c)
	}
	return cols, nil
}

// Encode writes view restricted to cols in the given format.
func Encode(w io.Writer, cols []models.Column, view []models.SalesRecord, format Format) error {
	switch format {
	case CSV:
		return WriteCSV(w, cols, view)
	case XLSX:
		return WriteXLSX(w, cols, view)
	case Arrow:
		return WriteArrow(w, cols, view)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// Bytes is Encode into memory.
func Bytes(cols []models.Column, view []models.SalesRecord, format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, cols, view, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
