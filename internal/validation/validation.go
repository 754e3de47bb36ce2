package validation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrInvalidUUID      = fmt.Errorf("invalid UUID format")
	ErrInvalidDateRange = fmt.Errorf("invalid date range")
	ErrInvalidMonth     = fmt.Errorf("invalid month format")
	ErrEmptySlice       = fmt.Errorf("slice cannot be empty")
)

// ValidateUUID checks if a string is a valid UUID
func ValidateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidUUID, id)
	}
	return nil
}

// ValidateUUIDs validates a slice of UUIDs
func ValidateUUIDs(ids []string) error {
	if len(ids) == 0 {
		return ErrEmptySlice
	}
	for _, id := range ids {
		if err := ValidateUUID(id); err != nil {
			return err
		}
	}
	return nil
}

// ValidateMonth checks that a string is a "YYYY-MM" month.
func ValidateMonth(month string) error {
	if _, err := time.Parse("2006-01", month); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidMonth, month)
	}
	return nil
}

// ValidateYear checks that a string is a four-digit calendar year.
func ValidateYear(year string) error {
	if _, err := time.Parse("2006", year); err != nil {
		return fmt.Errorf("%w: year %s", ErrInvalidMonth, year)
	}
	return nil
}

// ValidateDateRange parses start and end as "YYYY-MM-DD" dates and checks
// that start does not come after end.
func ValidateDateRange(start, end string) (time.Time, time.Time, error) {
	startDate, err := time.Parse("2006-01-02", start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start date %q", ErrInvalidDateRange, start)
	}
	endDate, err := time.Parse("2006-01-02", end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end date %q", ErrInvalidDateRange, end)
	}
	if startDate.After(endDate) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start %s is after end %s", ErrInvalidDateRange, start, end)
	}
	return startDate, endDate, nil
}
