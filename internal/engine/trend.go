package engine

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"salesdash/internal/models"
)

// Granularity is the calendar width of one trend bucket.
type Granularity string

const (
	Daily     Granularity = "daily"
	Weekly    Granularity = "weekly"
	Monthly   Granularity = "monthly"
	Quarterly Granularity = "quarterly"
	Yearly    Granularity = "yearly"
)

// ErrUnknownPeriod is wrapped by ParseGranularity for unrecognised periods.
var ErrUnknownPeriod = errors.New("unknown period")

// DefaultGranularity is used when no period is requested.
const DefaultGranularity = Monthly

var granularityAliases = map[string]Granularity{
	"daily": Daily, "day": Daily, "d": Daily, "diario": Daily,
	"weekly": Weekly, "week": Weekly, "w": Weekly, "semanal": Weekly,
	"monthly": Monthly, "month": Monthly, "m": Monthly, "mensal": Monthly,
	"quarterly": Quarterly, "quarter": Quarterly, "q": Quarterly, "trimestral": Quarterly,
	"yearly": Yearly, "year": Yearly, "y": Yearly, "anual": Yearly,
}

// ParseGranularity accepts English names, the Portuguese labels of the
// period slider and single-letter frequency codes. Empty means monthly.
func ParseGranularity(s string) (Granularity, error) {
	if s == "" {
		return DefaultGranularity, nil
	}
	if g, ok := granularityAliases[foldHeader(s)]; ok {
		return g, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, s)
}

// BucketStart returns the first instant of the bucket containing t.
// Weeks start on Monday.
func (g Granularity) BucketStart(t time.Time) time.Time {
	y, m, d := t.Date()
	loc := t.Location()
	switch g {
	case Weekly:
		day := time.Date(y, m, d, 0, 0, 0, 0, loc)
		return day.AddDate(0, 0, -((int(day.Weekday()) + 6) % 7))
	case Monthly:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	case Quarterly:
		return time.Date(y, ((m-1)/3)*3+1, 1, 0, 0, 0, 0, loc)
	case Yearly:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	}
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// Trend sums revenue per calendar bucket. Buckets without rows are left out.
// When nothing is left to plot the result is flagged Insufficient rather than
// returned as an error; a bad period or a non-finite total is a *TrendError.
func Trend(view []models.SalesRecord, period string) (models.TrendResult, error) {
	g, err := ParseGranularity(period)
	if err != nil {
		return models.TrendResult{}, &TrendError{Granularity: period, Err: err}
	}

	sums := make(map[time.Time]float64)
	for i := range view {
		sums[g.BucketStart(view[i].SaleDate)] += view[i].Revenue
	}

	res := models.TrendResult{Granularity: string(g), Points: make([]models.TrendPoint, 0, len(sums))}
	for start, rev := range sums {
		res.Points = append(res.Points, models.TrendPoint{Start: start, Revenue: rev})
	}
	sort.Slice(res.Points, func(i, j int) bool { return res.Points[i].Start.Before(res.Points[j].Start) })
	for _, p := range res.Points {
		res.Total += p.Revenue
	}

	if math.IsNaN(res.Total) || math.IsInf(res.Total, 0) {
		return models.TrendResult{}, &TrendError{Granularity: string(g), Err: errors.New("revenue total is not finite")}
	}
	if len(res.Points) == 0 || res.Total == 0 {
		res.Insufficient = true
		res.Message = fmt.Sprintf("not enough data to show the %s trend; adjust the filters or pick another period", g)
	}
	return res, nil
}
