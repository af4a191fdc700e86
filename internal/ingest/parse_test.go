package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sp(s string) *string { return &s }

func TestClean(t *testing.T) {
	assert.Nil(t, clean(""))
	assert.Nil(t, clean("   "))
	assert.Equal(t, "12", *clean(" 12.00 "))
	assert.Equal(t, "12.50", *clean("12.50"))
	assert.Equal(t, "Acme", *clean("Acme"))
}

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "year_filing_for", normalizeHeader("Year Filing For"))
	assert.Equal(t, "year_filing_for", normalizeHeader(" YEAR_FILING_FOR "))
	assert.Equal(t, "2022_naics_us_code", normalizeHeader("2022 NAICS US Code"))
}

func TestColumns_FirstNameWins(t *testing.T) {
	cols := newColumns([]string{"ID", "Zip", "zip_code"})
	i, ok := cols.index("zip_code", "zip")
	require.True(t, ok)
	assert.Equal(t, 2, i)
	_, ok = cols.index("missing")
	assert.False(t, ok)
}

func TestParseNumbers(t *testing.T) {
	assert.Equal(t, 1200, *parseInt(sp("1,200")))
	assert.Equal(t, 7, *parseInt(sp("7.5")))
	assert.Nil(t, parseInt(sp("n/a")))
	assert.Nil(t, parseInt(nil))
	assert.Equal(t, int64(4000000), *parseInt64(sp("4000000")))
	assert.Nil(t, parseInt64(sp("x")))
}

func TestParseTimestamp(t *testing.T) {
	got := parseTimestamp(sp("05JAN24:13:45:12"))
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, time.January, 5, 13, 45, 12, 0, time.UTC), *got)

	got = parseTimestamp(sp("2024-03-01 08:00:00"))
	require.NotNil(t, got)
	assert.Equal(t, 2024, got.Year())

	assert.Nil(t, parseTimestamp(sp("yesterday")))
	assert.Nil(t, parseTimestamp(nil))
}
