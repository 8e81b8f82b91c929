package engine

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"salesdash/internal/models"
)

const currencyPrefix = "R$ "

// FormatMetrics renders the metric cards with thousands grouping.
func FormatMetrics(s models.Summary) models.MetricCards {
	p := message.NewPrinter(language.English)
	return models.MetricCards{
		TotalSales: p.Sprintf("%d", int64(math.Round(s.Quantity))),
		Revenue:    currencyPrefix + p.Sprintf("%.2f", s.Revenue),
		Cost:       currencyPrefix + p.Sprintf("%.2f", s.Cost),
		Profit:     currencyPrefix + p.Sprintf("%.2f", s.Profit),
		Margin:     fmt.Sprintf("Margin: %.1f%%", s.Margin),
	}
}

var ErrInvalidMode = errors.New("unknown display mode")

const (
	LayoutFull    = "full"
	LayoutCompact = "compact"
)

// ResolveLayout maps a display mode to the grid width and chart height the page uses.
func ResolveLayout(mode string) (models.Layout, error) {
	switch foldHeader(mode) {
	case "", "full", "completo":
		return models.Layout{Mode: LayoutFull, Columns: 4, ChartHeight: 500}, nil
	case "compact", "compacto":
		return models.Layout{Mode: LayoutCompact, Columns: 2, ChartHeight: 300}, nil
	}
	return models.Layout{}, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
}
