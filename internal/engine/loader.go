package engine

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"salesdash/internal/models"
)

// DefaultSheet is the sheet the sales workbook keeps its rows in.
const DefaultSheet = "Vendas"

var errMissingColumn = errors.New("required column missing")

// headerAliases maps folded header names to canonical fields.
var headerAliases = map[string]models.Field{
	"datadavenda":   models.FieldSaleDate,
	"datavenda":     models.FieldSaleDate,
	"saledate":      models.FieldSaleDate,
	"date":          models.FieldSaleDate,
	"continente":    models.FieldContinent,
	"continent":     models.FieldContinent,
	"region":        models.FieldContinent,
	"categoria":     models.FieldCategory,
	"category":      models.FieldCategory,
	"produto":       models.FieldProduct,
	"product":       models.FieldProduct,
	"marca":         models.FieldBrand,
	"brand":         models.FieldBrand,
	"qtdvendida":    models.FieldQuantity,
	"quantidade":    models.FieldQuantity,
	"quantity":      models.FieldQuantity,
	"quantitysold":  models.FieldQuantity,
	"qty":           models.FieldQuantity,
	"precounitario": models.FieldUnitPrice,
	"unitprice":     models.FieldUnitPrice,
	"price":         models.FieldUnitPrice,
	"custounitario": models.FieldUnitCost,
	"unitcost":      models.FieldUnitCost,
	"cost":          models.FieldUnitCost,
	"faturamento":   models.FieldRevenue,
	"revenue":       models.FieldRevenue,
}

var dateLayouts = []string{
	time.DateOnly,
	time.DateTime,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02/01/2006",
	"02/01/2006 15:04:05",
}

// Loader reads sales sheets from .xlsx or .csv files.
type Loader struct {
	Sheet  string
	logger *slog.Logger
}

func NewLoader(sheet string, logger *slog.Logger) *Loader {
	if sheet == "" {
		sheet = DefaultSheet
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{Sheet: sheet, logger: logger}
}

// Load reads path into a Dataset. A missing file wraps ErrSourceNotFound;
// structural or value problems come back as *ParseError.
func (l *Loader) Load(ctx context.Context, path string) (*models.Dataset, error) {
	start := time.Now()

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("stat source: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		ds  *models.Dataset
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		ds, err = l.loadCSV(path)
	default:
		ds, err = l.loadWorkbook(path)
	}
	if err != nil {
		return nil, err
	}

	ds.Source = path
	ds.LoadedAt = time.Now()
	l.logger.InfoContext(ctx, "dataset loaded",
		slog.String("source", path),
		slog.Int("rows", len(ds.Records)),
		slog.Int("columns", len(ds.Columns)),
		slog.Duration("elapsed", time.Since(start)))
	return ds, nil
}

func (l *Loader) loadCSV(path string) (*models.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses comma-separated text with a header line into a Dataset.
func ReadCSV(r io.Reader) (*models.Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return buildDataset(rows, "", false, false)
}

func (l *Loader) loadWorkbook(path string) (*models.Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &ParseError{Err: fmt.Errorf("open workbook: %w", err)}
	}
	defer f.Close()

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	// 1. Configured sheet
	sheet := l.Sheet
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err == nil {
		return buildDataset(rows, sheet, true, date1904)
	}

	// 2. Any sheet whose header carries the required columns
	for _, name := range f.GetSheetList() {
		candidate, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			continue
		}
		if header, _ := headerRow(candidate); header >= 0 {
			if _, err := mapColumns(candidate[header]); err == nil {
				l.logger.Warn("configured sheet missing, using detected sheet",
					slog.String("configured", sheet),
					slog.String("sheet", name))
				return buildDataset(candidate, name, true, date1904)
			}
		}
	}
	return nil, &ParseError{Sheet: sheet, Err: fmt.Errorf("no sheet with the sales columns found")}
}

func buildDataset(rows [][]string, sheet string, serialDates, date1904 bool) (*models.Dataset, error) {
	header, ok := headerRow(rows)
	if !ok {
		return nil, &ParseError{Sheet: sheet, Err: errors.New("sheet is empty")}
	}
	cols, err := mapColumns(rows[header])
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Sheet = sheet
			pe.Row = header + 1
		}
		return nil, err
	}

	extras := 0
	for _, c := range cols {
		if c.Field == models.FieldExtra {
			extras++
		}
	}

	ds := &models.Dataset{Columns: cols, Records: make([]models.SalesRecord, 0, len(rows)-header-1)}
	for i := header + 1; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}
		rec := models.SalesRecord{}
		if extras > 0 {
			rec.Extra = make([]string, extras)
		}
		for j, col := range cols {
			cell := ""
			if j < len(row) {
				cell = strings.TrimSpace(row[j])
			}
			if err := setField(&rec, col, cell, serialDates, date1904); err != nil {
				return nil, &ParseError{Sheet: sheet, Row: i + 1, Column: col.Name, Err: err}
			}
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds, nil
}

func setField(rec *models.SalesRecord, col models.Column, cell string, serialDates, date1904 bool) error {
	switch col.Field {
	case models.FieldSaleDate:
		t, err := parseDate(cell, serialDates, date1904)
		if err != nil {
			return err
		}
		rec.SaleDate = t
	case models.FieldContinent:
		rec.Continent = cell
	case models.FieldCategory:
		rec.Category = cell
	case models.FieldProduct:
		rec.Product = cell
	case models.FieldBrand:
		rec.Brand = cell
	case models.FieldQuantity, models.FieldUnitPrice, models.FieldUnitCost, models.FieldRevenue:
		v, err := parseNumber(cell)
		if err != nil {
			return err
		}
		switch col.Field {
		case models.FieldQuantity:
			rec.Quantity = v
		case models.FieldUnitPrice:
			rec.UnitPrice = v
		case models.FieldUnitCost:
			rec.UnitCost = v
		default:
			rec.Revenue = v
		}
	case models.FieldExtra:
		rec.Extra[col.ExtraIndex] = cell
	}
	return nil
}

// headerRow returns the index of the first non-blank row.
func headerRow(rows [][]string) (int, bool) {
	for i, row := range rows {
		if !isBlank(row) {
			return i, true
		}
	}
	return -1, false
}

// mapColumns resolves every header cell to a column. Cells that match no
// canonical field, or repeat one already seen, become extra columns.
func mapColumns(header []string) ([]models.Column, error) {
	cols := make([]models.Column, len(header))
	seen := make(map[models.Field]bool, len(models.RequiredFields))
	extra := 0
	for i, raw := range header {
		name := strings.TrimSpace(raw)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		field, ok := headerAliases[foldHeader(name)]
		if !ok || seen[field] {
			cols[i] = models.Column{Name: name, Field: models.FieldExtra, ExtraIndex: extra}
			extra++
			continue
		}
		seen[field] = true
		cols[i] = models.Column{Name: name, Field: field}
	}
	for _, f := range models.RequiredFields {
		if !seen[f] {
			return nil, &ParseError{Column: f.CanonicalHeader(), Err: errMissingColumn}
		}
	}
	return cols, nil
}

// foldHeader lowercases, strips accents and drops everything but letters and digits.
func foldHeader(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseDate coerces a sale date cell. Workbooks store dates as serial numbers.
func parseDate(s string, serial, date1904 bool) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	if serial {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			t, err := excelize.ExcelDateToTime(f, date1904)
			if err != nil {
				return time.Time{}, fmt.Errorf("date serial %q: %w", s, err)
			}
			return t.Round(time.Second), nil
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// parseNumber reads a numeric cell; blanks read as zero. NaN and the
// infinities are rejected even though strconv accepts them.
func parseNumber(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number: %q", s)
	}
	return v, nil
}
