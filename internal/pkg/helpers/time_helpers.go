package helpers

import (
	"fmt"
	"strings"
	"time"

	"github.com/users333/faculty-registry/internal/pkg/apperrors"
)

// ISODateLayout is the calendar date layout used by every storage backend.
const ISODateLayout = "2006-01-02"

// TimestampLayout is the local date-time layout written to the operation log.
const TimestampLayout = "2006-01-02T15:04:05.999999999"

// ParseISODate parses a YYYY-MM-DD string into a UTC midnight time.
func ParseISODate(value string) (time.Time, error) {
	parsed, err := time.Parse(ISODateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidDate, value)
	}
	return parsed, nil
}

// FormatTimestamp renders t in local time without zone, trailing zero fractions dropped.
func FormatTimestamp(t time.Time) string {
	return t.Local().Format(TimestampLayout)
}
