package deadline

import "errors"

var (
	ErrMissingDayCount    = errors.New("deadline type code or explicit base days required")
	ErrInvalidDayCount    = errors.New("base days must be zero or positive")
	ErrInvalidReadingDate = errors.New("reading date before expedition date")
	ErrTypeNotFound       = errors.New("deadline type not found")
	ErrHolidayNotFound    = errors.New("holiday entry not found")
	ErrRecordNotFound     = errors.New("calculation record not found")
	ErrDuplicateCode      = errors.New("deadline type code already exists in this scope")
	ErrIterationLimit     = errors.New("deadline stepping exceeded the iteration cap")
)
