package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"salesdash/internal/export"
	"salesdash/internal/models"
)

// EmptyMessage is shown instead of charts when the filters leave no rows.
const EmptyMessage = "no sales match the selected filters; adjust them to see metrics and charts"

// DefaultTableColumns is how many leading columns the table shows when none are chosen.
const DefaultTableColumns = 6

var ErrUnknownChart = errors.New("unknown chart kind")

// Recorder receives outcome events of service runs.
type Recorder interface {
	Exported(format string)
	EmptyResult()
	TrendFailed()
}

type nopRecorder struct{}

func (nopRecorder) Exported(string) {}
func (nopRecorder) EmptyResult() {}
func (nopRecorder) TrendFailed() {}

// Query is everything one interaction asks for.
type Query struct {
	Criteria models.FilterCriteria
	Period   string
	Mode     string
	Columns  []string
	Limit    int
	Offset   int
}

// Service runs the whole chain, load → filter → aggregate/export, once per call.
type Service struct {
	store    *Store
	source   string
	pipeline *Pipeline
	rec      Recorder
	logger   *slog.Logger
}

func NewService(store *Store, source string, logger *slog.Logger, rec Recorder) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Service{store: store, source: source, pipeline: NewPipeline(), rec: rec, logger: logger}
}

// Source is the path the service reads.
func (s *Service) Source() string { return s.source }

// Reload drops the cached dataset; the next call reads the source again.
func (s *Service) Reload() { s.store.Invalidate(s.source) }

func (s *Service) run(ctx context.Context, c models.FilterCriteria) (*models.Dataset, FilterResult, error) {
	ds, err := s.store.Get(ctx, s.source)
	if err != nil {
		return nil, FilterResult{}, err
	}
	return ds, s.pipeline.Run(ds, c), nil
}

// Dashboard assembles the full page payload. Load failures abort it; a
// failing trend only fills TrendError.
func (s *Service) Dashboard(ctx context.Context, q Query) (*models.DashboardData, error) {
	layout, err := ResolveLayout(q.Mode)
	if err != nil {
		return nil, err
	}
	ds, res, err := s.run(ctx, q.Criteria)
	if err != nil {
		return nil, err
	}

	summary := Summarize(res.View)
	data := &models.DashboardData{
		Criteria: CriteriaView(q.Criteria),
		Options:  res.Options,
		Summary:  summary,
		Metrics:  FormatMetrics(summary),
		Layout:   layout,
		Columns:  ds.ColumnNames(),
	}
	if len(res.View) == 0 {
		s.rec.EmptyResult()
		data.Empty = true
		data.Message = EmptyMessage
		return data, nil
	}

	data.Categories = RevenueByCategory(res.View)
	data.Continents = RevenueByContinent(res.View)
	data.Scatter = ScatterPoints(res.View)

	trend, err := Trend(res.View, q.Period)
	if err != nil {
		s.rec.TrendFailed()
		s.logger.WarnContext(ctx, "trend computation failed", slog.String("period", q.Period), slog.Any("error", err))
		data.TrendError = err.Error()
	} else {
		data.Trend = &trend
	}
	return data, nil
}

func (s *Service) Summary(ctx context.Context, q Query) (models.Summary, models.MetricCards, error) {
	_, res, err := s.run(ctx, q.Criteria)
	if err != nil {
		return models.Summary{}, models.MetricCards{}, err
	}
	sum := Summarize(res.View)
	return sum, FormatMetrics(sum), nil
}

func (s *Service) Options(ctx context.Context, q Query) (models.FilterOptions, error) {
	_, res, err := s.run(ctx, q.Criteria)
	if err != nil {
		return models.FilterOptions{}, err
	}
	return res.Options, nil
}

// Chart returns the series for one chart kind: bar, pie or scatter.
func (s *Service) Chart(ctx context.Context, q Query, kind string) (any, error) {
	build, ok := chartBuilders[foldHeader(kind)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChart, kind)
	}
	_, res, err := s.run(ctx, q.Criteria)
	if err != nil {
		return nil, err
	}
	return build(res.View), nil
}

var chartBuilders = map[string]func([]models.SalesRecord) any{
	"bar":       func(v []models.SalesRecord) any { return RevenueByCategory(v) },
	"barras":    func(v []models.SalesRecord) any { return RevenueByCategory(v) },
	"pie":       func(v []models.SalesRecord) any { return RevenueByContinent(v) },
	"pizza":     func(v []models.SalesRecord) any { return RevenueByContinent(v) },
	"scatter":   func(v []models.SalesRecord) any { return ScatterPoints(v) },
	"dispersao": func(v []models.SalesRecord) any { return ScatterPoints(v) },
}

// Trend returns the temporal view; errors from bucketing are *TrendError.
func (s *Service) Trend(ctx context.Context, q Query) (models.TrendResult, error) {
	_, res, err := s.run(ctx, q.Criteria)
	if err != nil {
		return models.TrendResult{}, err
	}
	trend, err := Trend(res.View, q.Period)
	if err != nil {
		s.rec.TrendFailed()
		return models.TrendResult{}, err
	}
	return trend, nil
}

// Table returns one page of the filtered rows. Without a column choice the
// first DefaultTableColumns columns are shown; a zero Limit means all rows.
func (s *Service) Table(ctx context.Context, q Query) (models.TablePage, error) {
	ds, res, err := s.run(ctx, q.Criteria)
	if err != nil {
		return models.TablePage{}, err
	}

	cols := ds.Columns
	if len(q.Columns) > 0 {
		if cols, err = export.SelectColumns(ds, q.Columns); err != nil {
			return models.TablePage{}, err
		}
	} else if len(cols) > DefaultTableColumns {
		cols = cols[:DefaultTableColumns]
	}

	total := len(res.View)
	limit, offset := q.Limit, q.Offset
	if limit <= 0 {
		limit = total
	}
	if offset < 0 {
		offset = 0
	}
	page := models.TablePage{Total: total, Limit: limit, Offset: offset, Rows: [][]any{}}
	for _, c := range cols {
		page.Columns = append(page.Columns, c.Name)
	}
	if offset >= total {
		return page, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	for i := offset; i < end; i++ {
		row := make([]any, len(cols))
		for j, c := range cols {
			v := c.Value(&res.View[i])
			if t, ok := v.(time.Time); ok {
				v = models.FormatValue(t)
			}
			row[j] = v
		}
		page.Rows = append(page.Rows, row)
	}
	return page, nil
}

// Export serializes the filtered rows. No column choice exports every column.
func (s *Service) Export(ctx context.Context, q Query, format export.Format) ([]byte, error) {
	ds, res, err := s.run(ctx, q.Criteria)
	if err != nil {
		return nil, err
	}
	cols, err := export.SelectColumns(ds, q.Columns)
	if err != nil {
		return nil, err
	}
	b, err := export.Bytes(cols, res.View, format)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", format, err)
	}
	s.rec.Exported(string(format))
	return b, nil
}

// CriteriaView renders criteria for echoing back to the client.
func CriteriaView(c models.FilterCriteria) models.CriteriaView {
	v := models.CriteriaView{
		Continent: c.Continent,
		Category:  c.Category,
		Product:   c.Product,
		Brand:     c.Brand,
	}
	if !c.Start.IsZero() {
		v.Start = c.Start.Format(time.DateOnly)
	}
	if !c.End.IsZero() {
		v.End = c.End.Format(time.DateOnly)
	}
	return v
}
