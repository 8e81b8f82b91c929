package engine

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdash/internal/export"
	"salesdash/internal/models"
	"salesdash/internal/testutil"
)

type countingRecorder struct {
	exports      map[string]int
	empty, trend int
}

func (r *countingRecorder) Exported(format string) {
	if r.exports == nil {
		r.exports = make(map[string]int)
	}
	r.exports[format]++
}
func (r *countingRecorder) EmptyResult() { r.empty++ }
func (r *countingRecorder) TrendFailed() { r.trend++ }

func newTestService(t *testing.T) (*Service, *countingSource, *countingRecorder) {
	t.Helper()
	src := &countingSource{}
	rec := &countingRecorder{}
	return NewService(NewStore(src), "vendas.xlsx", nil, rec), src, rec
}

func TestServiceDashboard(t *testing.T) {
	svc, _, _ := newTestService(t)

	data, err := svc.Dashboard(context.Background(), Query{Criteria: models.FilterCriteria{Continent: "Asia"}})
	require.NoError(t, err)

	assert.False(t, data.Empty)
	assert.Equal(t, 20.0, data.Summary.Revenue)
	assert.Equal(t, 50.0, data.Summary.Margin)
	assert.Equal(t, "R$ 20.00", data.Metrics.Revenue)
	assert.Equal(t, "Asia", data.Criteria.Continent)
	assert.Equal(t, LayoutFull, data.Layout.Mode)
	assert.Equal(t, []string{"America", "Asia", "Europe"}, data.Options.Continents)
	require.Len(t, data.Categories, 1)
	require.Len(t, data.Continents, 1)
	require.NotNil(t, data.Trend)
	assert.Equal(t, "monthly", data.Trend.Granularity)
	assert.Len(t, data.Columns, 9)
}

func TestServiceDashboardEmpty(t *testing.T) {
	svc, _, rec := newTestService(t)

	data, err := svc.Dashboard(context.Background(), Query{Criteria: models.FilterCriteria{Start: testutil.Date("2030-01-01")}})
	require.NoError(t, err)

	assert.True(t, data.Empty)
	assert.Equal(t, EmptyMessage, data.Message)
	assert.Equal(t, models.Summary{}, data.Summary)
	assert.Nil(t, data.Categories)
	assert.Nil(t, data.Trend)
	assert.Equal(t, 1, rec.empty)
}

func TestServiceDashboardTrendFailureIsLocal(t *testing.T) {
	svc, _, rec := newTestService(t)

	data, err := svc.Dashboard(context.Background(), Query{Period: "hourly"})
	require.NoError(t, err)
	assert.Nil(t, data.Trend)
	assert.Contains(t, data.TrendError, "unknown period")
	assert.Equal(t, 120.0, data.Summary.Revenue)
	assert.NotEmpty(t, data.Categories)
	assert.Equal(t, 1, rec.trend)
}

func TestServiceDashboardInvalidMode(t *testing.T) {
	svc, src, _ := newTestService(t)

	_, err := svc.Dashboard(context.Background(), Query{Mode: "tiny"})
	assert.ErrorIs(t, err, ErrInvalidMode)
	assert.Zero(t, src.loads.Load())
}

func TestServiceMissingSource(t *testing.T) {
	loader := NewLoader("", nil)
	svc := NewService(NewStore(loader), filepath.Join(t.TempDir(), "missing.xlsx"), nil, nil)

	_, err := svc.Dashboard(context.Background(), Query{})
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

func TestServiceChart(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	bar, err := svc.Chart(ctx, Query{}, "barras")
	require.NoError(t, err)
	assert.IsType(t, []models.CategoryRevenue{}, bar)

	pie, err := svc.Chart(ctx, Query{}, "pie")
	require.NoError(t, err)
	assert.Len(t, pie, 3)

	scatter, err := svc.Chart(ctx, Query{}, "Dispersão")
	require.NoError(t, err)
	assert.Len(t, scatter, 4)

	_, err = svc.Chart(ctx, Query{}, "radar")
	assert.ErrorIs(t, err, ErrUnknownChart)
}

func TestServiceTable(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	page, err := svc.Table(ctx, Query{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, testutil.Header()[:DefaultTableColumns], page.Columns)
	assert.Equal(t, 4, page.Total)
	require.Len(t, page.Rows, 2)
	assert.Equal(t, "2024-02-10", page.Rows[0][0])
	assert.Equal(t, "P2", page.Rows[0][3])

	page, err = svc.Table(ctx, Query{Columns: []string{"Faturamento", "Produto"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Faturamento", "Produto"}, page.Columns)
	assert.Len(t, page.Rows, 4)
	assert.Equal(t, []any{20.0, "P1"}, page.Rows[0])

	page, err = svc.Table(ctx, Query{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Rows)

	_, err = svc.Table(ctx, Query{Columns: []string{"Lucro"}})
	assert.ErrorIs(t, err, export.ErrUnknownColumn)
}

func TestServiceExport(t *testing.T) {
	svc, _, rec := newTestService(t)
	ctx := context.Background()
	q := Query{Criteria: models.FilterCriteria{Continent: "Europe"}}

	b, err := svc.Export(ctx, q, export.CSV)
	require.NoError(t, err)
	again, err := svc.Export(ctx, q, export.CSV)
	require.NoError(t, err)
	assert.Equal(t, b, again)

	ds, err := ReadCSV(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Len(t, ds.Records, 2)
	for _, r := range ds.Records {
		assert.Equal(t, "Europe", r.Continent)
	}
	assert.Equal(t, 2, rec.exports["csv"])
}

func TestServiceReload(t *testing.T) {
	svc, src, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Summary(ctx, Query{})
	require.NoError(t, err)
	_, err = svc.Options(ctx, Query{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, src.loads.Load())

	svc.Reload()
	_, err = svc.Trend(ctx, Query{Period: "yearly"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, src.loads.Load())
}
