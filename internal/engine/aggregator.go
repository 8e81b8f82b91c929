package engine

import (
	"sort"

	"salesdash/internal/models"
)

// Summarize computes the metric-card values for view. An empty view yields all zeros.
func Summarize(view []models.SalesRecord) models.Summary {
	var s models.Summary
	s.Rows = len(view)
	for i := range view {
		r := &view[i]
		s.Quantity += r.Quantity
		s.Revenue += r.Revenue
		s.Cost += r.UnitCost * r.Quantity
	}
	s.Profit = s.Revenue - s.Cost
	if s.Revenue != 0 {
		s.Margin = s.Profit / s.Revenue * 100
	}
	return s
}

// RevenueByCategory feeds the bar chart: highest revenue first, ties by name.
func RevenueByCategory(view []models.SalesRecord) []models.CategoryRevenue {
	sums := sumBy(view, models.FieldCategory)
	out := make([]models.CategoryRevenue, 0, len(sums))
	for name, rev := range sums {
		out = append(out, models.CategoryRevenue{Category: name, Revenue: rev})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// RevenueByContinent feeds the pie chart, ordered by continent name.
func RevenueByContinent(view []models.SalesRecord) []models.ContinentRevenue {
	sums := sumBy(view, models.FieldContinent)
	out := make([]models.ContinentRevenue, 0, len(sums))
	for name, rev := range sums {
		out = append(out, models.ContinentRevenue{Continent: name, Revenue: rev})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Continent < out[j].Continent })
	return out
}

// ScatterPoints feeds the price/quantity/revenue scatter chart, one point per row.
func ScatterPoints(view []models.SalesRecord) []models.ScatterPoint {
	out := make([]models.ScatterPoint, len(view))
	for i := range view {
		r := &view[i]
		out[i] = models.ScatterPoint{
			UnitPrice: r.UnitPrice,
			Quantity:  r.Quantity,
			Revenue:   r.Revenue,
			Category:  r.Category,
			Product:   r.Product,
		}
	}
	return out
}

func sumBy(view []models.SalesRecord, f models.Field) map[string]float64 {
	sums := make(map[string]float64)
	for i := range view {
		sums[view[i].Text(f)] += view[i].Revenue
	}
	return sums
}
