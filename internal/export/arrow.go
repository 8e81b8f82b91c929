package export

import (
	"fmt"
	"io"
	"time"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/ipc"
	"github.com/apache/arrow/go/v18/arrow/memory"

	"salesdash/internal/models"
)

// ArrowSchema maps columns to Arrow fields: sale date as Date32, numeric
// fields as Float64 and everything else as Utf8.
func ArrowSchema(cols []models.Column) *arrow.Schema {
	fields := make([]arrow.Field, len(cols))
	for i, c := range cols {
		var dt arrow.DataType
		switch {
		case c.Field == models.FieldSaleDate:
			dt = arrow.FixedWidthTypes.Date32
		case c.Field.IsNumeric():
			dt = arrow.PrimitiveTypes.Float64
		default:
			dt = arrow.BinaryTypes.String
		}
		fields[i] = arrow.Field{Name: c.Name, Type: dt}
	}
	return arrow.NewSchema(fields, nil)
}

// WriteArrow writes view as a single record batch in the Arrow IPC stream format.
func WriteArrow(w io.Writer, cols []models.Column, view []models.SalesRecord) error {
	mem := memory.NewGoAllocator()
	schema := ArrowSchema(cols)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	for j, c := range cols {
		switch fb := b.Field(j).(type) {
		case *array.Date32Builder:
			for i := range view {
				fb.Append(arrow.Date32FromTime(c.Value(&view[i]).(time.Time)))
			}
		case *array.Float64Builder:
			for i := range view {
				fb.Append(c.Value(&view[i]).(float64))
			}
		case *array.StringBuilder:
			for i := range view {
				fb.Append(models.FormatValue(c.Value(&view[i])))
			}
		default:
			return fmt.Errorf("column %q: unsupported builder %T", c.Name, fb)
		}
	}

	rec := b.NewRecord()
	defer rec.Release()

	iw := ipc.NewWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	if err := iw.Write(rec); err != nil {
		return fmt.Errorf("write arrow record: %w", err)
	}
	if err := iw.Close(); err != nil {
		return fmt.Errorf("close arrow stream: %w", err)
	}
	return nil
}
