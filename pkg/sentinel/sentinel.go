// Package sentinel holds the error values returned across benchstats.
//
// Failures are wrapped at the site where they happen with ewrap so the
// message carries context, while callers keep matching on the sentinel
// with errors.Is.
package sentinel

import (
	"github.com/hyp3rd/ewrap"
)

var (
	// ErrInvalidInput is returned when the samples, divisor or rendering options cannot produce a report:
	// an empty or single-element sample sequence, non-finite values, a non-positive divisor or DPI.
	ErrInvalidInput = ewrap.New("invalid input")

	// ErrIO is returned when an artifact (figure, JSON export, report stream) cannot be written.
	ErrIO = ewrap.New("io error")

	// ErrComputation is returned when a statistic is undefined or degenerates to NaN or Inf.
	ErrComputation = ewrap.New("computation error")

	// ErrFigureClosed is returned when a figure is drawn into or saved after it was already saved.
	ErrFigureClosed = ewrap.New("figure already saved")
)
