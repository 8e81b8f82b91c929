package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"salesdash/internal/engine"
	"salesdash/internal/export"
)

// APIError represents a structured API error response
type APIError struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// ValidationError describes one rejected query parameter.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func NewAPIError(statusCode int, errorCode, message string) *APIError {
	return &APIError{StatusCode: statusCode, ErrorCode: errorCode, Message: message}
}

func NewAPIErrorWithDetails(statusCode int, errorCode, message string, details any) *APIError {
	return &APIError{StatusCode: statusCode, ErrorCode: errorCode, Message: message, Details: details}
}

// toAPIError maps engine, export and framework errors onto API errors.
func toAPIError(err error) *APIError {
	var (
		apiErr   *APIError
		httpErr  *echo.HTTPError
		parseErr *engine.ParseError
		trendErr *engine.TrendError
		valErrs  validator.ValidationErrors
	)
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.As(err, &valErrs):
		details := make([]ValidationError, 0, len(valErrs))
		for _, fe := range valErrs {
			details = append(details, ValidationError{
				Field:   fe.Field(),
				Message: fmt.Sprintf("failed %q validation", fe.Tag()),
			})
		}
		return NewAPIErrorWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", details)
	case errors.Is(err, engine.ErrSourceNotFound):
		return NewAPIErrorWithDetails(http.StatusServiceUnavailable, "SOURCE_NOT_FOUND", "Sales data file not found", err.Error())
	case errors.As(err, &parseErr):
		return NewAPIErrorWithDetails(http.StatusInternalServerError, "PARSE_ERROR", "Sales data file could not be read", map[string]any{
			"sheet":  parseErr.Sheet,
			"row":    parseErr.Row,
			"column": parseErr.Column,
			"cause":  parseErr.Err.Error(),
		})
	case errors.Is(err, engine.ErrUnknownPeriod):
		return NewAPIErrorWithDetails(http.StatusBadRequest, "INVALID_PERIOD", "Unknown trend period", err.Error())
	case errors.As(err, &trendErr):
		return NewAPIErrorWithDetails(http.StatusUnprocessableEntity, "TREND_FAILED", "Trend could not be computed", err.Error())
	case errors.Is(err, engine.ErrInvalidMode):
		return NewAPIErrorWithDetails(http.StatusBadRequest, "INVALID_MODE", "Unknown display mode", err.Error())
	case errors.Is(err, engine.ErrUnknownChart):
		return NewAPIErrorWithDetails(http.StatusBadRequest, "UNKNOWN_CHART", "Unknown chart kind", err.Error())
	case errors.Is(err, export.ErrUnknownFormat):
		return NewAPIErrorWithDetails(http.StatusBadRequest, "UNKNOWN_FORMAT", "Unknown export format", err.Error())
	case errors.Is(err, export.ErrUnknownColumn):
		return NewAPIErrorWithDetails(http.StatusBadRequest, "UNKNOWN_COLUMN", "Unknown column", err.Error())
	case errors.As(err, &httpErr):
		return NewAPIError(httpErr.Code, http.StatusText(httpErr.Code), fmt.Sprint(httpErr.Message))
	}
	return NewAPIError(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
}

// newErrorHandler renders every handler error as an APIError.
func newErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		apiErr := toAPIError(err)
		if apiErr.StatusCode >= http.StatusInternalServerError {
			logger.ErrorContext(c.Request().Context(), "request failed",
				slog.String("error", err.Error()),
				slog.String("error_code", apiErr.ErrorCode),
				slog.String("path", c.Path()))
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(apiErr.StatusCode)
		} else {
			werr = c.JSON(apiErr.StatusCode, apiErr)
		}
		if werr != nil {
			logger.Error("failed to write error response", slog.Any("error", werr))
		}
	}
}
