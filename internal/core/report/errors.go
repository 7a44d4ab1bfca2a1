package report

import "errors"

var (
	ErrInvalidID        = errors.New("report: invalid id")
	ErrInvalidDateRange = errors.New("report: start date must not be after end date")
	ErrInvalidYear      = errors.New("report: invalid year")
)
