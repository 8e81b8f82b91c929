package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdash/internal/models"
)

func TestFormatMetrics(t *testing.T) {
	cards := FormatMetrics(models.Summary{Quantity: 1500, Revenue: 120.5, Cost: 40, Profit: 80.5, Margin: 66.804})
	assert.Equal(t, "1,500", cards.TotalSales)
	assert.Equal(t, "R$ 120.50", cards.Revenue)
	assert.Equal(t, "R$ 40.00", cards.Cost)
	assert.Equal(t, "R$ 80.50", cards.Profit)
	assert.Equal(t, "Margin: 66.8%", cards.Margin)

	zero := FormatMetrics(models.Summary{})
	assert.Equal(t, "0", zero.TotalSales)
	assert.Equal(t, "R$ 0.00", zero.Revenue)
	assert.Equal(t, "Margin: 0.0%", zero.Margin)
}

func TestResolveLayout(t *testing.T) {
	full, err := ResolveLayout("")
	require.NoError(t, err)
	assert.Equal(t, models.Layout{Mode: LayoutFull, Columns: 4, ChartHeight: 500}, full)

	compact, err := ResolveLayout("Compacto")
	require.NoError(t, err)
	assert.Equal(t, LayoutCompact, compact.Mode)
	assert.Equal(t, 2, compact.Columns)
	assert.Less(t, compact.ChartHeight, full.ChartHeight)

	_, err = ResolveLayout("tiny")
	assert.ErrorIs(t, err, ErrInvalidMode)
}
