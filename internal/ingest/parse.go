package ingest

import (
	"strconv"
	"strings"
	"time"
)

// columns maps normalized header names to row positions.
type columns map[string]int

func newColumns(header []string) columns {
	c := make(columns, len(header))
	for i, h := range header {
		k := normalizeHeader(h)
		if _, dup := c[k]; !dup {
			c[k] = i
		}
	}
	return c
}

// normalizeHeader lower-cases and joins words with underscores, so
// "Year Filing For" and "year_filing_for" match.
func normalizeHeader(h string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.ReplaceAll(h, "_", " "))), "_")
}

// index returns the position of the first present name.
func (c columns) index(names ...string) (int, bool) {
	for _, n := range names {
		if i, ok := c[normalizeHeader(n)]; ok {
			return i, true
		}
	}
	return 0, false
}

// cell returns the cleaned value at i, or nil when blank or out of range.
func cell(row []string, i int, ok bool) *string {
	if !ok || i >= len(row) {
		return nil
	}
	return clean(row[i])
}

// clean trims v and strips a trailing ".00" left by spreadsheet exports.
// Blank values become nil.
func clean(v string) *string {
	v = strings.TrimSuffix(strings.TrimSpace(v), ".00")
	if v == "" {
		return nil
	}
	return &v
}

func parseInt(v *string) *int {
	if v == nil {
		return nil
	}
	s := strings.ReplaceAll(*v, ",", "")
	if n, err := strconv.Atoi(s); err == nil {
		return &n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		n := int(f)
		return &n
	}
	return nil
}

func parseInt64(v *string) *int64 {
	if v == nil {
		return nil
	}
	s := strings.ReplaceAll(*v, ",", "")
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		n := int64(f)
		return &n
	}
	return nil
}

// timestampLayouts are tried in order. The first is the SAS datetime form
// used by ITA exports, e.g. 05JAN24:13:45:12.
var timestampLayouts = []string{
	"02Jan06:15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"1/2/2006 15:04",
	"2006-01-02",
}

// parseTimestamp returns nil for blank or unrecognized values.
func parseTimestamp(v *string) *time.Time {
	if v == nil {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, *v); err == nil {
			return &t
		}
	}
	return nil
}
