package engine

import (
	"errors"
	"fmt"
)

// ErrSourceNotFound is returned when the source spreadsheet does not exist.
var ErrSourceNotFound = errors.New("source file not found")

// ParseError reports a source whose structure or values could not be read.
type ParseError struct {
	Sheet  string
	Row    int // 1-based, 0 when the error is not tied to a row
	Column string
	Err    error
}

func (e *ParseError) Error() string {
	msg := "parse"
	if e.Sheet != "" {
		msg += " sheet " + e.Sheet
	}
	if e.Row > 0 {
		msg += fmt.Sprintf(" row %d", e.Row)
	}
	if e.Column != "" {
		msg += fmt.Sprintf(" column %q", e.Column)
	}
	return msg + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

// TrendError reports a failure while bucketing the temporal view. Callers
// show it next to the trend chart and keep rendering everything else.
type TrendError struct {
	Granularity string
	Err         error
}

func (e *TrendError) Error() string {
	return fmt.Sprintf("trend %q: %v", e.Granularity, e.Err)
}

func (e *TrendError) Unwrap() error { return e.Err }
