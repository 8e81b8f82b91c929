package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"salesdash/internal/models"
)

// WriteCSV writes a header line followed by one line per record.
func WriteCSV(w io.Writer, cols []models.Column, view []models.SalesRecord) error {
	cw := csv.NewWriter(w)

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Name
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	line := make([]string, len(cols))
	for i := range view {
		for j, c := range cols {
			line[j] = models.FormatValue(c.Value(&view[i]))
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
