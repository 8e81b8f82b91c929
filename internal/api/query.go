package api

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"salesdash/internal/engine"
	"salesdash/internal/models"
)

// FilterQuery is the query string every read endpoint accepts.
type FilterQuery struct {
	Start     string `query:"start" validate:"omitempty,datetime=2006-01-02"`
	End       string `query:"end" validate:"omitempty,datetime=2006-01-02"`
	Continent string `query:"continent" validate:"max=200"`
	Category  string `query:"category" validate:"max=200"`
	Product   string `query:"product" validate:"max=200"`
	Brand     string `query:"brand" validate:"max=200"`
	Period    string `query:"period" validate:"max=32"`
	Mode      string `query:"mode" validate:"max=32"`
	Limit     int    `query:"limit" validate:"gte=0"`
	Offset    int    `query:"offset" validate:"gte=0"`
}

// bindQuery binds and validates the request into an engine.Query.
func bindQuery(c echo.Context) (engine.Query, error) {
	var fq FilterQuery
	if err := c.Bind(&fq); err != nil {
		return engine.Query{}, err
	}
	if err := c.Validate(&fq); err != nil {
		return engine.Query{}, err
	}

	q := engine.Query{
		Criteria: models.FilterCriteria{
			Continent: selector(fq.Continent),
			Category:  selector(fq.Category),
			Product:   selector(fq.Product),
			Brand:     selector(fq.Brand),
		},
		Period:  fq.Period,
		Mode:    fq.Mode,
		Columns: columnsParam(c),
		Limit:   fq.Limit,
		Offset:  fq.Offset,
	}
	// already validated as dates
	if fq.Start != "" {
		q.Criteria.Start, _ = time.Parse(time.DateOnly, fq.Start)
	}
	if fq.End != "" {
		q.Criteria.End, _ = time.Parse(time.DateOnly, fq.End)
	}
	return q, nil
}

// selector turns the "all" sentinels into an empty, inactive constraint.
func selector(v string) string {
	if engine.IsAll(v) {
		return ""
	}
	return strings.TrimSpace(v)
}

// columnsParam accepts ?columns=a,b as well as repeated ?columns=a&columns=b.
func columnsParam(c echo.Context) []string {
	var cols []string
	for _, v := range c.QueryParams()["columns"] {
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				cols = append(cols, name)
			}
		}
	}
	return cols
}
