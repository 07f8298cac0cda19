package domain

import (
	"fmt"
	"time"
)

const monthLayout = "2006-01"

// Month is a calendar month in UTC. The zero value is not valid; construct
// through ParseMonth or MonthOf.
type Month struct {
	start time.Time
}

// ParseMonth parses a YYYY-MM string into a Month.
func ParseMonth(raw string) (Month, error) {
	t, err := time.Parse(monthLayout, raw)
	if err != nil {
		return Month{}, fmt.Errorf("parse month %q: expected YYYY-MM", raw)
	}
	return Month{start: time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)}, nil
}

// MonthOf returns the Month containing t.
func MonthOf(t time.Time) Month {
	t = t.UTC()
	return Month{start: time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)}
}

// Start returns the first instant of the month.
func (m Month) Start() time.Time { return m.start }

// End returns the first instant of the following month.
func (m Month) End() time.Time { return m.start.AddDate(0, 1, 0) }

// Contains reports whether t falls inside the month. The interval covers the
// whole month: the first and last days are in, adjacent months are out.
func (m Month) Contains(t time.Time) bool {
	return !t.Before(m.start) && t.Before(m.End())
}

// String renders the month as YYYY-MM.
func (m Month) String() string { return m.start.Format(monthLayout) }

// PathTokens returns the URL path fragments that identify pages published in
// this month when the sitemap carries no lastmod, e.g. "/2026/01", "/2026-01"
// and "/2026/1".
func (m Month) PathTokens() []string {
	year := m.start.Year()
	mon := int(m.start.Month())

	tokens := []string{
		fmt.Sprintf("/%d/%02d", year, mon),
		fmt.Sprintf("/%d-%02d", year, mon),
	}
	if short := fmt.Sprintf("/%d/%d", year, mon); short != tokens[0] {
		tokens = append(tokens, short)
	}
	return tokens
}
