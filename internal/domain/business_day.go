package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// BusinessDayLayout is the wire format of a business day.
const BusinessDayLayout = "2006-01-02"

// BusinessDay is a calendar date in the tenant's local timezone.
type BusinessDay struct {
	Year  int
	Month time.Month
	Day   int
}

// NewBusinessDay builds a business day, normalising out-of-range values the way time.Date does.
func NewBusinessDay(year int, month time.Month, day int) BusinessDay {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return BusinessDay{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// BusinessDayOf returns the calendar date of t in loc.
func BusinessDayOf(t time.Time, loc *time.Location) BusinessDay {
	local := t.In(loc)
	return BusinessDay{Year: local.Year(), Month: local.Month(), Day: local.Day()}
}

// ParseBusinessDay parses a YYYY-MM-DD date.
func ParseBusinessDay(s string) (BusinessDay, error) {
	t, err := time.Parse(BusinessDayLayout, s)
	if err != nil {
		return BusinessDay{}, fmt.Errorf("%w: invalid business day %q", ErrValidation, s)
	}
	return BusinessDay{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// IsZero reports whether d is the zero value.
func (d BusinessDay) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// String formats d as YYYY-MM-DD.
func (d BusinessDay) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Time returns midnight UTC of d, the representation used for DATE columns.
func (d BusinessDay) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Before reports whether d is earlier than other.
func (d BusinessDay) Before(other BusinessDay) bool {
	return d.Time().Before(other.Time())
}

// Bounds returns the half-open interval [start, end) covering d in loc.
// Days affected by a DST transition are 23 or 25 hours long.
func (d BusinessDay) Bounds(loc *time.Location) (time.Time, time.Time) {
	start := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
	end := time.Date(d.Year, d.Month, d.Day+1, 0, 0, 0, 0, loc)
	return start.UTC(), end.UTC()
}

// MarshalJSON encodes d as "YYYY-MM-DD".
func (d BusinessDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes "YYYY-MM-DD".
func (d *BusinessDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: business day must be a string", ErrValidation)
	}

	parsed, err := ParseBusinessDay(s)
	if err != nil {
		return err
	}

	*d = parsed
	return nil
}
