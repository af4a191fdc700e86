package query

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/safety-index/internal/filter"
)

func fixedBuilder() Builder {
	return Builder{Now: func() time.Time {
		return time.Date(2025, time.March, 4, 12, 0, 0, 0, time.UTC)
	}}
}

func TestCompanies_EndToEnd(t *testing.T) {
	s := filter.Default()
	s.Term = "acme"
	s.StateCode = "CA"
	s.PageSize = 20

	spec := fixedBuilder().Companies(s)

	assert.Equal(t, SourceCompanies, spec.Source)
	assert.Equal(t, 0, spec.Offset)
	assert.Equal(t, 20, spec.Limit)
	assert.True(t, spec.CountTotal)

	lo, ok := spec.Find(OpGTE, "year_filing_for")
	require.True(t, ok)
	assert.Equal(t, 2023, lo.Value)
	hi, ok := spec.Find(OpLTE, "year_filing_for")
	require.True(t, ok)
	assert.Equal(t, 2025, hi.Value)

	st, ok := spec.Find(OpEqual, "state")
	require.True(t, ok)
	assert.Equal(t, "CA", st.Value)

	contains := spec.FindAll(OpContains)
	require.Len(t, contains, 1)
	assert.Equal(t, "company_name", contains[0].Column)
	assert.Equal(t, "acme", contains[0].Value)
}

func TestCompanies_AlwaysLatest(t *testing.T) {
	spec := fixedBuilder().Companies(filter.State{})
	p, ok := spec.Find(OpEqual, "is_latest")
	require.True(t, ok)
	assert.Equal(t, true, p.Value)
	assert.Len(t, spec.Where, 1, "no recency window when flag is off")
}

func TestCompanies_TermTokensAreANDed(t *testing.T) {
	a := fixedBuilder().Companies(filter.State{Term: "acme steel works"})
	b := fixedBuilder().Companies(filter.State{Term: "works  acme steel"})

	assert.Len(t, a.FindAll(OpContains), 3)
	assert.ElementsMatch(t, a.Where, b.Where)

	stA := Render(a, Postgres)
	stB := Render(b, Postgres)
	assert.ElementsMatch(t, stA.Args, stB.Args)
}

func TestCompanies_IndustryPrefixesORed(t *testing.T) {
	spec := fixedBuilder().Companies(filter.State{IndustryCodes: []string{"44", "3"}})
	p, ok := spec.Find(OpAnyPrefix, "naics_code")
	require.True(t, ok)
	assert.Equal(t, []string{"44", "3"}, p.Values)

	st := Render(spec, Postgres)
	assert.Contains(t, st.SQL, `("naics_code" LIKE $2 ESCAPE '\' OR "naics_code" LIKE $3 ESCAPE '\')`)
	assert.Equal(t, []any{true, "44%", "3%", 1, 0}, st.Args)
}

func TestCompanies_Ranges(t *testing.T) {
	lo, hi := 10, 500
	smin, smax := 60.0, 90.5
	spec := fixedBuilder().Companies(filter.State{
		EmployeesMin: &lo, EmployeesMax: &hi,
		SafetyMin: &smin, SafetyMax: &smax,
		Zip: " 94107 ", StateCode: "ca",
	})

	p, _ := spec.Find(OpGTE, "total_employees")
	assert.Equal(t, 10, p.Value)
	p, _ = spec.Find(OpLTE, "total_employees")
	assert.Equal(t, 500, p.Value)
	p, _ = spec.Find(OpGTE, "safety_score")
	assert.Equal(t, 60.0, p.Value)
	p, _ = spec.Find(OpLTE, "safety_score")
	assert.Equal(t, 90.5, p.Value)
	p, _ = spec.Find(OpEqual, "zip_code")
	assert.Equal(t, "94107", p.Value)
	p, _ = spec.Find(OpEqual, "state")
	assert.Equal(t, "CA", p.Value)
}

func TestCompanies_RelevanceSort(t *testing.T) {
	spec := fixedBuilder().Companies(filter.State{SortBy: filter.SortRelevance})
	assert.Equal(t, []OrderKey{
		{Column: "total_employees", Desc: true, NullsLast: true},
		{Column: "year_filing_for", Desc: true, NullsLast: true},
	}, spec.Order)

	// Empty sort normalizes to relevance.
	assert.Equal(t, spec.Order, fixedBuilder().Companies(filter.State{}).Order)
}

func TestCompanies_SortFallback(t *testing.T) {
	fallback := []OrderKey{
		{Column: "safety_score", Desc: true, NullsLast: true},
		{Column: "ein"},
	}
	for _, sortBy := range []string{
		"bogus", "trir", "trir.sideways", "password.asc", ".asc", "trir.", "a.b.asc", "; drop table x",
	} {
		t.Run(sortBy, func(t *testing.T) {
			spec := fixedBuilder().Companies(filter.State{SortBy: sortBy})
			assert.Equal(t, fallback, spec.Order)
		})
	}
}

func TestCompanies_AllowedSorts(t *testing.T) {
	tests := []struct {
		sortBy string
		want   OrderKey
	}{
		{"trir.asc", OrderKey{Column: "trir", NullsLast: true}},
		{"TRIR.DESC", OrderKey{Column: "trir", Desc: true, NullsLast: true}},
		{"name.asc", OrderKey{Column: "company_name", NullsLast: true}},
		{"employees.desc", OrderKey{Column: "total_employees", Desc: true, NullsLast: true}},
		{"safety_score.asc", OrderKey{Column: "safety_score", NullsLast: true}},
	}
	for _, tt := range tests {
		t.Run(tt.sortBy, func(t *testing.T) {
			spec := fixedBuilder().Companies(filter.State{SortBy: tt.sortBy})
			require.NotEmpty(t, spec.Order)
			assert.Equal(t, tt.want, spec.Order[0])
			assert.Equal(t, "ein", spec.Order[len(spec.Order)-1].Column)
		})
	}
}

func TestCompanies_PaginationClamped(t *testing.T) {
	tests := []struct {
		page, size    int
		offset, limit int
	}{
		{0, 0, 0, 1},
		{2, -5, 2, 1},
		{3, 500, 300, 100},
		{-1, 20, 0, 20},
		{4, 25, 100, 25},
	}
	for _, tt := range tests {
		spec := fixedBuilder().Companies(filter.State{Page: tt.page, PageSize: tt.size})
		assert.Equal(t, tt.offset, spec.Offset, "page=%d size=%d", tt.page, tt.size)
		assert.Equal(t, tt.limit, spec.Limit, "page=%d size=%d", tt.page, tt.size)
	}
}

func TestCompanies_HugePageOffsetStaysNonNegative(t *testing.T) {
	st := filter.FromValues(url.Values{"term": {"acme"}, "page": {"922337203685477580"}, "limit": {"100"}})
	spec := fixedBuilder().Companies(st)
	assert.GreaterOrEqual(t, spec.Offset, 0)
	assert.Equal(t, 100, spec.Limit)
}

func TestCompanies_RecentYearsOverride(t *testing.T) {
	b := fixedBuilder()
	b.RecentYears = 5
	spec := b.Companies(filter.State{MostRecentYear: true})
	p, _ := spec.Find(OpGTE, "year_filing_for")
	assert.Equal(t, 2020, p.Value)
}

func TestLocations(t *testing.T) {
	year := 2023
	spec := fixedBuilder().Locations(LocationParams{
		EIN: " 12-345 ", Year: &year, LatestOnly: true, Term: "oak", Limit: 0, Offset: -4,
	})
	assert.Equal(t, SourceLocations, spec.Source)
	assert.Equal(t, 1, spec.Limit)
	assert.Equal(t, 0, spec.Offset)
	assert.False(t, spec.CountTotal)

	p, _ := spec.Find(OpEqual, "ein")
	assert.Equal(t, "12-345", p.Value)
	p, _ = spec.Find(OpEqual, "year_filing_for")
	assert.Equal(t, 2023, p.Value)
	_, ok := spec.Find(OpEqual, "is_latest_ein_year")
	assert.True(t, ok)

	matches := spec.FindAll(OpAnyContains)
	require.Len(t, matches, 1)
	assert.Equal(t, []string{"establishment_name", "city", "state"}, matches[0].Columns)

	assert.Equal(t, OrderKey{Column: "establishment_name", NullsLast: true}, spec.Order[0])
}

func TestLocations_ShortTermIgnored(t *testing.T) {
	spec := fixedBuilder().Locations(LocationParams{EIN: "1", Term: "o", Limit: 10})
	assert.Empty(t, spec.FindAll(OpAnyContains))
}

func TestLocations_SortFallback(t *testing.T) {
	spec := fixedBuilder().Locations(LocationParams{EIN: "1", SortBy: "relevance"})
	assert.Equal(t, OrderKey{Column: "safety_score", Desc: true, NullsLast: true}, spec.Order[0])

	spec = fixedBuilder().Locations(LocationParams{EIN: "1", SortBy: "employees.desc"})
	assert.Equal(t, "annual_average_employees", spec.Order[0].Column)
}

func TestTokens(t *testing.T) {
	assert.Nil(t, Tokens("   "))
	assert.Equal(t, []string{"Acme", "steel"}, Tokens(" Acme  steel acme "))
}
