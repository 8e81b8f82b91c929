package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/bytes"
	"github.com/zeebo/xxh3"

	"salesdash/internal/engine"
	"salesdash/internal/export"
)

type Handler struct {
	svc    *engine.Service
	logger *slog.Logger
}

func NewHandler(svc *engine.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	api := e.Group("/api")
	api.GET("/dashboard", h.GetDashboard)
	api.GET("/summary", h.GetSummary)
	api.GET("/options", h.GetOptions)
	api.GET("/charts/:kind", h.GetChart)
	api.GET("/trend", h.GetTrend)
	api.GET("/records", h.GetRecords)
	api.GET("/export/:format", h.GetExport)
	api.POST("/reload", h.Reload)
}

// --- HANDLERS ---

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// full page: metrics, charts, trend, options
func (h *Handler) GetDashboard(c echo.Context) error {
	q, err := bindQuery(c)
	if err != nil {
		return err
	}
	data, err := h.svc.Dashboard(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, data)
}

func (h *Handler) GetSummary(c echo.Context) error {
	q, err := bindQuery(c)
	if err != nil {
		return err
	}
	summary, cards, err := h.svc.Summary(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"summary": summary,
		"metrics": cards,
	})
}

func (h *Handler) GetOptions(c echo.Context) error {
	q, err := bindQuery(c)
	if err != nil {
		return err
	}
	opts, err := h.svc.Options(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, opts)
}

func (h *Handler) GetChart(c echo.Context) error {
	q, err := bindQuery(c)
	if err != nil {
		return err
	}
	series, err := h.svc.Chart(c.Request().Context(), q, c.Param("kind"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"kind": c.Param("kind"),
		"data": series,
	})
}

// trend; the insufficient-data state is a normal 200
func (h *Handler) GetTrend(c echo.Context) error {
	q, err := bindQuery(c)
	if err != nil {
		return err
	}
	trend, err := h.svc.Trend(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, trend)
}

// paged table of the filtered rows
func (h *Handler) GetRecords(c echo.Context) error {
	q, err := bindQuery(c)
	if err != nil {
		return err
	}
	page, err := h.svc.Table(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// download of the filtered rows; identical filters give identical bytes, hence the ETag
func (h *Handler) GetExport(c echo.Context) error {
	format, err := export.ParseFormat(c.Param("format"))
	if err != nil {
		return err
	}
	q, err := bindQuery(c)
	if err != nil {
		return err
	}
	b, err := h.svc.Export(c.Request().Context(), q, format)
	if err != nil {
		return err
	}

	etag := fmt.Sprintf(`"%016x"`, xxh3.Hash(b))
	c.Response().Header().Set("ETag", etag)
	if c.Request().Header.Get("If-None-Match") == etag {
		return c.NoContent(http.StatusNotModified)
	}

	h.logger.InfoContext(c.Request().Context(), "export served",
		slog.String("format", string(format)),
		slog.String("size", bytes.Format(int64(len(b)))))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", format.Filename()))
	return c.Blob(http.StatusOK, format.ContentType(), b)
}

func (h *Handler) Reload(c echo.Context) error {
	h.svc.Reload()
	h.logger.InfoContext(c.Request().Context(), "dataset cache invalidated", slog.String("source", h.svc.Source()))
	return c.NoContent(http.StatusNoContent)
}
