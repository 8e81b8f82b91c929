package models

import (
	"strconv"
	"time"
)

// Field identifies one canonical column of the sales sheet.
type Field int

const (
	FieldExtra Field = iota
	FieldSaleDate
	FieldContinent
	FieldCategory
	FieldProduct
	FieldBrand
	FieldQuantity
	FieldUnitPrice
	FieldUnitCost
	FieldRevenue
)

// RequiredFields lists every column a source sheet must carry, in canonical order.
var RequiredFields = []Field{
	FieldSaleDate, FieldContinent, FieldCategory, FieldProduct, FieldBrand,
	FieldQuantity, FieldUnitPrice, FieldUnitCost, FieldRevenue,
}

// CanonicalHeader is the header written for a field when no source header is known.
func (f Field) CanonicalHeader() string {
	switch f {
	case FieldSaleDate:
		return "Data da Venda"
	case FieldContinent:
		return "Continente"
	case FieldCategory:
		return "Categoria"
	case FieldProduct:
		return "Produto"
	case FieldBrand:
		return "Marca"
	case FieldQuantity:
		return "Qtd. Vendida"
	case FieldUnitPrice:
		return "PrecoUnitario"
	case FieldUnitCost:
		return "Custo Unitário"
	case FieldRevenue:
		return "Faturamento"
	}
	return ""
}

// IsNumeric reports whether values of f are float64.
func (f Field) IsNumeric() bool {
	return f >= FieldQuantity
}

// SalesRecord is one row of the sales sheet. Records are never mutated after load.
type SalesRecord struct {
	SaleDate  time.Time
	Continent string
	Category  string
	Product   string
	Brand     string
	Quantity  float64
	UnitPrice float64
	UnitCost  float64
	// Revenue is taken from the source as-is, not recomputed from Quantity*UnitPrice.
	Revenue float64

	// Extra holds source columns outside the canonical set, aligned with the
	// FieldExtra columns of the owning Dataset.
	Extra []string
}

// Text returns the string value of a categorical field.
func (r *SalesRecord) Text(f Field) string {
	switch f {
	case FieldContinent:
		return r.Continent
	case FieldCategory:
		return r.Category
	case FieldProduct:
		return r.Product
	case FieldBrand:
		return r.Brand
	}
	return ""
}

// Number returns the value of a numeric field.
func (r *SalesRecord) Number(f Field) float64 {
	switch f {
	case FieldQuantity:
		return r.Quantity
	case FieldUnitPrice:
		return r.UnitPrice
	case FieldUnitCost:
		return r.UnitCost
	case FieldRevenue:
		return r.Revenue
	}
	return 0
}

// Column is one source column: the header as it appeared and the field it maps to.
type Column struct {
	Name  string
	Field Field
	// ExtraIndex indexes SalesRecord.Extra when Field is FieldExtra.
	ExtraIndex int
}

// Value returns the typed cell of rec for this column: time.Time, float64 or string.
func (c Column) Value(rec *SalesRecord) any {
	switch {
	case c.Field == FieldSaleDate:
		return rec.SaleDate
	case c.Field.IsNumeric():
		return rec.Number(c.Field)
	case c.Field == FieldExtra:
		if c.ExtraIndex < len(rec.Extra) {
			return rec.Extra[c.ExtraIndex]
		}
		return ""
	}
	return rec.Text(c.Field)
}

// FormatValue renders a cell the way text exports write it.
func FormatValue(v any) string {
	switch x := v.(type) {
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(time.DateOnly)
		}
		return x.Format(time.DateTime)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return x
	}
	return ""
}

// Dataset is the loaded sheet.
type Dataset struct {
	Source   string
	LoadedAt time.Time
	Columns  []Column
	Records  []SalesRecord
}

// Column looks a column up by its source header name.
func (d *Dataset) Column(name string) (Column, bool) {
	for _, c := range d.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnNames returns the source headers in order.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// FilterCriteria holds the active constraints. Zero times and empty strings mean "no constraint".
type FilterCriteria struct {
	Start     time.Time
	End       time.Time
	Continent string
	Category  string
	Product   string
	Brand     string
}

// Summary holds the metric-card values for one filtered view.
type Summary struct {
	Rows     int     `json:"rows"`
	Quantity float64 `json:"quantity"`
	Revenue  float64 `json:"revenue"`
	Cost     float64 `json:"cost"`
	Profit   float64 `json:"profit"`
	Margin   float64 `json:"margin"`
}
