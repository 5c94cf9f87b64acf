package models

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the calendar date format accepted for search windows.
const DateLayout = "2006-01-02"

// ErrMissingShortName is returned when a search has no product identifier.
var ErrMissingShortName = errors.New("short name is required")

// SearchQuery selects granules of one product.
// BBox and NamePattern are optional; their zero values mean "no filter".
type SearchQuery struct {
	ShortName   string
	Start       time.Time // calendar day, inclusive
	End         time.Time // calendar day, inclusive
	BBox        *BBox
	NamePattern string
}

// NewSearchQuery parses start and end as YYYY-MM-DD dates.
func NewSearchQuery(shortName, start, end string) (SearchQuery, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return SearchQuery{}, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return SearchQuery{}, fmt.Errorf("invalid end date %q: %w", end, err)
	}
	return SearchQuery{ShortName: shortName, Start: s, End: e}, nil
}

// Validate checks the mandatory fields.
func (q SearchQuery) Validate() error {
	if q.ShortName == "" {
		return ErrMissingShortName
	}
	if q.End.Before(q.Start) {
		return fmt.Errorf("end date %s is before start date %s", q.End.Format(DateLayout), q.Start.Format(DateLayout))
	}
	return nil
}

// Window expands the calendar range to start 00:00:00 .. end 23:59:59 UTC.
func (q SearchQuery) Window() (time.Time, time.Time) {
	from := time.Date(q.Start.Year(), q.Start.Month(), q.Start.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(q.End.Year(), q.End.Month(), q.End.Day(), 23, 59, 59, 0, time.UTC)
	return from, to
}
