package engine

import (
	"sort"
	"strings"
	"time"

	"salesdash/internal/models"
)

// allSentinels are selector values that mean "no constraint".
var allSentinels = []string{"all", "todos", "todas"}

// IsAll reports whether a selector value means "no constraint".
func IsAll(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return true
	}
	for _, s := range allSentinels {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// Stage is one step of the filter pipeline. It reports the values it offers
// for selection, computed from its input, then narrows the input.
type Stage interface {
	Name() string
	Apply(view []models.SalesRecord, c models.FilterCriteria) (out []models.SalesRecord, options []string)
}

// dateStage keeps rows whose sale day lies in [Start, End]; zero bounds are open.
type dateStage struct{}

func (dateStage) Name() string { return "date" }

func (dateStage) Apply(view []models.SalesRecord, c models.FilterCriteria) ([]models.SalesRecord, []string) {
	if c.Start.IsZero() && c.End.IsZero() {
		return view, nil
	}
	start, end := dayOf(c.Start), dayOf(c.End)
	out := make([]models.SalesRecord, 0, len(view))
	for _, r := range view {
		d := dayOf(r.SaleDate)
		if !c.Start.IsZero() && d.Before(start) {
			continue
		}
		if !c.End.IsZero() && d.After(end) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// equalStage keeps rows whose field equals the selected value exactly.
type equalStage struct {
	field    models.Field
	name     string
	selected func(models.FilterCriteria) string
}

func (s equalStage) Name() string { return s.name }

func (s equalStage) Apply(view []models.SalesRecord, c models.FilterCriteria) ([]models.SalesRecord, []string) {
	options := distinct(view, s.field)
	want := s.selected(c)
	if IsAll(want) {
		return view, options
	}
	out := make([]models.SalesRecord, 0, len(view))
	for i := range view {
		if view[i].Text(s.field) == want {
			out = append(out, view[i])
		}
	}
	return out, options
}

// Pipeline runs the stages in order, each consuming the previous stage's output.
type Pipeline struct {
	stages []Stage
}

// NewPipeline returns the standard date → continent → category → product → brand chain.
func NewPipeline() *Pipeline {
	return &Pipeline{stages: []Stage{
		dateStage{},
		equalStage{field: models.FieldContinent, name: "continent", selected: func(c models.FilterCriteria) string { return c.Continent }},
		equalStage{field: models.FieldCategory, name: "category", selected: func(c models.FilterCriteria) string { return c.Category }},
		equalStage{field: models.FieldProduct, name: "product", selected: func(c models.FilterCriteria) string { return c.Product }},
		equalStage{field: models.FieldBrand, name: "brand", selected: func(c models.FilterCriteria) string { return c.Brand }},
	}}
}

// FilterResult is the filtered view plus the options each stage offered.
type FilterResult struct {
	View    []models.SalesRecord
	Options models.FilterOptions
}

// Run applies every stage to ds. The date bounds come from the full dataset;
// each categorical option list comes from the rows left by the stages before it.
func (p *Pipeline) Run(ds *models.Dataset, c models.FilterCriteria) FilterResult {
	res := FilterResult{View: ds.Records}
	if lo, hi, ok := DateBounds(ds.Records); ok {
		res.Options.MinDate = lo.Format(time.DateOnly)
		res.Options.MaxDate = hi.Format(time.DateOnly)
	}
	for _, st := range p.stages {
		var opts []string
		res.View, opts = st.Apply(res.View, c)
		switch st.Name() {
		case "continent":
			res.Options.Continents = opts
		case "category":
			res.Options.Categories = opts
		case "product":
			res.Options.Products = opts
		case "brand":
			res.Options.Brands = opts
		}
	}
	return res
}

// Filter returns only the filtered view of ds under c.
func Filter(ds *models.Dataset, c models.FilterCriteria) []models.SalesRecord {
	return NewPipeline().Run(ds, c).View
}

// DateBounds returns the earliest and latest sale date in view.
func DateBounds(view []models.SalesRecord) (lo, hi time.Time, ok bool) {
	for i, r := range view {
		if i == 0 || r.SaleDate.Before(lo) {
			lo = r.SaleDate
		}
		if i == 0 || r.SaleDate.After(hi) {
			hi = r.SaleDate
		}
	}
	return lo, hi, len(view) > 0
}

func distinct(view []models.SalesRecord, f models.Field) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for i := range view {
		v := view[i].Text(f)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
