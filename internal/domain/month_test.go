package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonth_Valid(t *testing.T) {
	m, err := ParseMonth("2026-01")
	require.NoError(t, err)

	assert.Equal(t, "2026-01", m.String())
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), m.Start())
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), m.End())
}

func TestParseMonth_Invalid(t *testing.T) {
	for _, raw := range []string{"", "2026", "2026-13", "01-2026", "2026/01", "январь"} {
		_, err := ParseMonth(raw)
		assert.Error(t, err, "input %q should not parse", raw)
	}
}

// TestMonth_ContainsBoundaries verifies the closed-interval property: the
// first and last day of the month are in, adjacent months are out.
func TestMonth_ContainsBoundaries(t *testing.T) {
	m, err := ParseMonth("2026-01")
	require.NoError(t, err)

	assert.True(t, m.Contains(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)), "first instant of the month")
	assert.True(t, m.Contains(time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC)), "last day of the month")
	assert.False(t, m.Contains(time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)), "previous month")
	assert.False(t, m.Contains(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)), "next month start")
}

func TestMonth_ContainsDecemberRollover(t *testing.T) {
	m, err := ParseMonth("2025-12")
	require.NoError(t, err)

	assert.True(t, m.Contains(time.Date(2025, 12, 31, 12, 0, 0, 0, time.UTC)))
	assert.False(t, m.Contains(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestMonth_PathTokens(t *testing.T) {
	jan, err := ParseMonth("2026-01")
	require.NoError(t, err)
	assert.Equal(t, []string{"/2026/01", "/2026-01", "/2026/1"}, jan.PathTokens())

	oct, err := ParseMonth("2026-10")
	require.NoError(t, err)
	assert.Equal(t, []string{"/2026/10", "/2026-10"}, oct.PathTokens(), "two-digit months have no short variant")
}

func TestMonthOf(t *testing.T) {
	m := MonthOf(time.Date(2026, 3, 17, 8, 30, 0, 0, time.FixedZone("MSK", 3*3600)))
	assert.Equal(t, "2026-03", m.String())
}

func TestNormalizeDomain(t *testing.T) {
	assert.Equal(t, "vwo.com", NormalizeDomain("https://vwo.com/blog/"))
	assert.Equal(t, "crazyegg.com", NormalizeDomain("https://www.crazyegg.com/blog/"))
	assert.Equal(t, "thisisdata.ru", NormalizeDomain("http://thisisdata.ru/"))
}
