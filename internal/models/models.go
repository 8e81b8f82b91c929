package models

import "time"

type DashboardData struct {
	Criteria   CriteriaView       `json:"criteria"`
	Options    FilterOptions      `json:"options"`
	Summary    Summary            `json:"summary"`
	Metrics    MetricCards        `json:"metrics"`
	Empty      bool               `json:"empty"`
	Message    string             `json:"message,omitempty"`
	Layout     Layout             `json:"layout"`
	Categories []CategoryRevenue  `json:"revenue_by_category,omitempty"`
	Continents []ContinentRevenue `json:"revenue_by_continent,omitempty"`
	Scatter    []ScatterPoint     `json:"scatter,omitempty"`
	Trend      *TrendResult       `json:"trend,omitempty"`
	TrendError string             `json:"trend_error,omitempty"`
	Columns    []string           `json:"columns"`
}

type CriteriaView struct {
	Start     string `json:"start,omitempty"`
	End       string `json:"end,omitempty"`
	Continent string `json:"continent,omitempty"`
	Category  string `json:"category,omitempty"`
	Product   string `json:"product,omitempty"`
	Brand     string `json:"brand,omitempty"`
}

type FilterOptions struct {
	MinDate    string   `json:"min_date,omitempty"`
	MaxDate    string   `json:"max_date,omitempty"`
	Continents []string `json:"continents"`
	Categories []string `json:"categories"`
	Products   []string `json:"products"`
	Brands     []string `json:"brands"`
}

// MetricCards are the pre-formatted strings shown on the four metric cards.
type MetricCards struct {
	TotalSales string `json:"total_sales"`
	Revenue    string `json:"revenue"`
	Cost       string `json:"cost"`
	Profit     string `json:"profit"`
	Margin     string `json:"margin"`
}

type Layout struct {
	Mode        string `json:"mode"`
	Columns     int    `json:"columns"`
	ChartHeight int    `json:"chart_height"`
}

type CategoryRevenue struct {
	Category string  `json:"category"`
	Revenue  float64 `json:"revenue"`
}

type ContinentRevenue struct {
	Continent string  `json:"continent"`
	Revenue   float64 `json:"revenue"`
}

type ScatterPoint struct {
	UnitPrice float64 `json:"unit_price"`
	Quantity  float64 `json:"quantity"`
	Revenue   float64 `json:"revenue"`
	Category  string  `json:"category"`
	Product   string  `json:"product"`
}

type TrendPoint struct {
	Start   time.Time `json:"start"`
	Revenue float64   `json:"revenue"`
}

type TrendResult struct {
	Granularity  string       `json:"granularity"`
	Points       []TrendPoint `json:"points"`
	Total        float64      `json:"total"`
	Insufficient bool         `json:"insufficient"`
	Message      string       `json:"message,omitempty"`
}

type TablePage struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
	Total   int      `json:"total"`
	Limit   int      `json:"limit"`
	Offset  int      `json:"offset"`
}
