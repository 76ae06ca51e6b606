package models

import (
	"time"

	"github.com/users333/faculty-registry/internal/pkg/helpers"
)

// Date is a calendar date without a time component.
type Date struct {
	t time.Time
}

// NewDate builds a Date from its parts. Out-of-range parts are normalized the way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO YYYY-MM-DD date.
func ParseDate(value string) (Date, error) {
	t, err := helpers.ParseISODate(value)
	if err != nil {
		return Date{}, err
	}
	return Date{t: t}, nil
}

// String returns the ISO form, e.g. 2000-01-01.
func (d Date) String() string {
	return d.t.Format(helpers.ISODateLayout)
}
