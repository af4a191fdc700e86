// Package query turns filter state into declarative, bounded query specs and
// renders them as parameterized SQL.
package query

import (
	"strings"
	"time"

	"github.com/sells-group/safety-index/internal/filter"
)

// DefaultRecentYears is the width of the mostRecentYear window below the
// current year.
const DefaultRecentYears = 2

// CompanyColumns are the columns selected for a company search row.
var CompanyColumns = []string{
	"ein", "year_filing_for", "company_name", "naics_code",
	"industry_description", "num_establishments", "total_employees",
	"dart_rate", "trir", "severity_rate", "safety_score",
	"state", "city", "zip_code",
}

// LocationColumns are the columns selected for a location list row.
var LocationColumns = []string{
	"establishment_id", "establishment_name", "annual_average_employees",
	"city", "state", "trir", "dart_rate", "safety_score",
}

// companySorts maps public sort names to search_mat columns.
var companySorts = map[string]string{
	"name":               "company_name",
	"company_name":       "company_name",
	"city":               "city",
	"state":              "state",
	"trir":               "trir",
	"dart_rate":          "dart_rate",
	"severity_rate":      "severity_rate",
	"safety_score":       "safety_score",
	"employees":          "total_employees",
	"total_employees":    "total_employees",
	"year_filing_for":    "year_filing_for",
	"num_establishments": "num_establishments",
}

// locationSorts maps public sort names to locations_mat columns.
var locationSorts = map[string]string{
	"name":                     "establishment_name",
	"establishment_name":       "establishment_name",
	"city":                     "city",
	"state":                    "state",
	"trir":                     "trir",
	"dart_rate":                "dart_rate",
	"safety_score":             "safety_score",
	"employees":                "annual_average_employees",
	"annual_average_employees": "annual_average_employees",
}

// DefaultLocationSort is the location list order when none is requested.
const DefaultLocationSort = "establishment_name.asc"

// MinLocationTerm is the shortest location term that filters.
const MinLocationTerm = 2

// Builder composes query specs. The zero value uses the wall clock and the
// default recency window.
type Builder struct {
	Now         func() time.Time
	RecentYears int
}

func (b Builder) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

func (b Builder) recentYears() int {
	if b.RecentYears > 0 {
		return b.RecentYears
	}
	return DefaultRecentYears
}

// Companies builds the company search spec for s. It never fails: invalid
// sort keys and pagination fall back to defaults.
func (b Builder) Companies(s filter.State) Spec {
	s = s.Normalize()
	spec := Spec{
		Source:     SourceCompanies,
		Columns:    CompanyColumns,
		Where:      []Predicate{Eq("is_latest", true)},
		Offset:     s.Offset(),
		Limit:      s.PageSize,
		CountTotal: true,
	}

	for _, tok := range Tokens(s.Term) {
		spec.Where = append(spec.Where, Contains("company_name", tok))
	}
	if len(s.IndustryCodes) > 0 {
		spec.Where = append(spec.Where, AnyPrefix("naics_code", s.IndustryCodes))
	}
	if s.EmployeesMin != nil {
		spec.Where = append(spec.Where, GTE("total_employees", *s.EmployeesMin))
	}
	if s.EmployeesMax != nil {
		spec.Where = append(spec.Where, LTE("total_employees", *s.EmployeesMax))
	}
	if st := strings.ToUpper(strings.TrimSpace(s.StateCode)); st != "" {
		spec.Where = append(spec.Where, Eq("state", st))
	}
	if zip := strings.TrimSpace(s.Zip); zip != "" {
		spec.Where = append(spec.Where, Eq("zip_code", zip))
	}
	if s.SafetyMin != nil {
		spec.Where = append(spec.Where, GTE("safety_score", *s.SafetyMin))
	}
	if s.SafetyMax != nil {
		spec.Where = append(spec.Where, LTE("safety_score", *s.SafetyMax))
	}
	if s.MostRecentYear {
		year := b.now().Year()
		spec.Where = append(spec.Where,
			GTE("year_filing_for", year-b.recentYears()),
			LTE("year_filing_for", year),
		)
	}

	if s.SortBy == filter.SortRelevance {
		spec.Order = []OrderKey{
			{Column: "total_employees", Desc: true, NullsLast: true},
			{Column: "year_filing_for", Desc: true, NullsLast: true},
		}
	} else {
		spec.Order = ResolveSort(s.SortBy, companySorts, "ein")
	}
	return spec
}

// LocationParams are the inputs of a location list for one company.
type LocationParams struct {
	EIN          string
	Year         *int
	LatestOnly   bool
	Term         string
	SortBy       string
	Limit        int
	Offset       int
	IncludeCount bool
}

// Locations builds the location list spec for p.
func (b Builder) Locations(p LocationParams) Spec {
	spec := Spec{
		Source:     SourceLocations,
		Columns:    LocationColumns,
		Where:      []Predicate{Eq("ein", strings.TrimSpace(p.EIN))},
		Offset:     max(p.Offset, 0),
		Limit:      filter.ClampPageSize(p.Limit),
		CountTotal: p.IncludeCount,
	}
	if p.Year != nil {
		spec.Where = append(spec.Where, Eq("year_filing_for", *p.Year))
	}
	if p.LatestOnly {
		spec.Where = append(spec.Where, Eq("is_latest_ein_year", true))
	}
	if term := strings.TrimSpace(p.Term); len([]rune(term)) >= MinLocationTerm {
		spec.Where = append(spec.Where,
			AnyContains([]string{"establishment_name", "city", "state"}, term))
	}

	sortBy := strings.TrimSpace(p.SortBy)
	if sortBy == "" {
		sortBy = DefaultLocationSort
	}
	spec.Order = ResolveSort(sortBy, locationSorts, "establishment_id")
	return spec
}

// ResolveSort parses "<column>.<asc|desc>" against allowed. Anything
// unparseable or not allowed yields safety_score descending. A tie-break on
// key keeps paging stable.
func ResolveSort(sortBy string, allowed map[string]string, key string) []OrderKey {
	primary := OrderKey{Column: "safety_score", Desc: true, NullsLast: true}

	name, dir, ok := strings.Cut(strings.ToLower(strings.TrimSpace(sortBy)), ".")
	if col, known := allowed[name]; ok && known && (dir == "asc" || dir == "desc") {
		primary = OrderKey{Column: col, Desc: dir == "desc", NullsLast: true}
	}

	keys := []OrderKey{primary}
	if key != "" && key != primary.Column {
		keys = append(keys, OrderKey{Column: key})
	}
	return keys
}

// Tokens splits a search term on whitespace, dropping case-insensitive
// duplicates.
func Tokens(term string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, f := range strings.Fields(term) {
		k := strings.ToLower(f)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, f)
	}
	return out
}
