package timesheet

import "errors"

var (
	ErrInvalidDateRange = errors.New("timesheet: end date precedes start date")
	ErrInvalidDays      = errors.New("timesheet: days must not be negative")
)
