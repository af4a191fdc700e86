package store

import (
	"context"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/safety-index/internal/model"
	"github.com/sells-group/safety-index/internal/query"
)

// rowIter is satisfied by both pgx.Rows and *sql.Rows.
type rowIter interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// queryFunc runs a statement and returns rows plus their release func.
type queryFunc func(ctx context.Context, sql string, args ...any) (rowIter, func(), error)

// reader implements Reader over any SQL backend.
type reader struct {
	dialect query.Dialect
	query   queryFunc
}

var companyRowExtra = []string{"total_deaths", "total_dafw_cases", "total_djtr_cases", "total_other_cases"}

var locationYearColumns = append(append([]string{}, query.LocationColumns...),
	"ein", "street_address", "zip_code", "year_filing_for",
	"total_deaths", "total_dafw_cases", "total_djtr_cases", "total_other_cases",
	"severity_rate", "is_latest_ein_year",
)

// companyFields returns scan targets in query.CompanyColumns order.
func companyFields(r *model.CompanyRecord) []any {
	return []any{
		&r.EIN, &r.YearFilingFor, &r.CompanyName, &r.NAICSCode,
		&r.IndustryDescription, &r.NumEstablishments, &r.TotalEmployees,
		&r.DARTRate, &r.TRIR, &r.SeverityRate, &r.SafetyScore,
		&r.State, &r.City, &r.ZipCode,
	}
}

// locationFields returns scan targets in query.LocationColumns order.
func locationFields(r *model.LocationRecord) []any {
	return []any{
		&r.EstablishmentID, &r.EstablishmentName, &r.AnnualAverageEmployees,
		&r.City, &r.State, &r.TRIR, &r.DARTRate, &r.SafetyScore,
	}
}

func (r *reader) SearchCompanies(ctx context.Context, spec query.Spec) ([]model.CompanyRecord, int, error) {
	spec.Source = query.SourceCompanies
	spec.Columns = query.CompanyColumns
	return page(ctx, r, spec, companyFields)
}

func (r *reader) ListLocations(ctx context.Context, spec query.Spec) ([]model.LocationRecord, int, error) {
	spec.Source = query.SourceLocations
	spec.Columns = query.LocationColumns
	return page(ctx, r, spec, locationFields)
}

// page runs a paged spec. When the requested range is past the end there is
// no row to read total_count from, so the total falls back to a count query.
func page[T any](ctx context.Context, r *reader, spec query.Spec, fields func(*T) []any) ([]T, int, error) {
	st := query.Render(spec, r.dialect)
	rows, done, err := r.query(ctx, st.SQL, st.Args...)
	if err != nil {
		return nil, 0, eris.Wrapf(err, "store: query %s", spec.Source)
	}
	defer done()

	out := make([]T, 0, spec.Limit)
	total := 0
	for rows.Next() {
		var v T
		dest := fields(&v)
		if spec.CountTotal {
			dest = append(dest, &total)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, 0, eris.Wrapf(err, "store: scan %s", spec.Source)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, eris.Wrapf(err, "store: iterate %s", spec.Source)
	}

	done()

	if spec.CountTotal && len(out) == 0 && spec.Offset > 0 {
		total, err = r.count(ctx, spec)
		if err != nil {
			return nil, 0, err
		}
	}
	return out, total, nil
}

func (r *reader) count(ctx context.Context, spec query.Spec) (int, error) {
	st := query.RenderCount(spec, r.dialect)
	rows, done, err := r.query(ctx, st.SQL, st.Args...)
	if err != nil {
		return 0, eris.Wrapf(err, "store: count %s", spec.Source)
	}
	defer done()
	n := 0
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, eris.Wrapf(err, "store: scan count %s", spec.Source)
		}
	}
	return n, rows.Err()
}

func (r *reader) CompanyRows(ctx context.Context, ein string) ([]model.CompanyRow, error) {
	cols := append(append([]string{}, query.CompanyColumns...), companyRowExtra...)
	sql := "SELECT " + strings.Join(cols, ", ") +
		" FROM search_mat WHERE ein = ? ORDER BY year_filing_for DESC"
	return collect(ctx, r, "company rows", sql, []any{ein}, func(v *model.CompanyRow) []any {
		return append(companyFields(&v.CompanyRecord),
			&v.TotalDeaths, &v.TotalDAFWCases, &v.TotalDJTRCases, &v.TotalOtherCases)
	})
}

func (r *reader) LocationYears(ctx context.Context, establishmentID string) ([]model.LocationYear, error) {
	sql := "SELECT " + strings.Join(locationYearColumns, ", ") +
		" FROM locations_mat WHERE establishment_id = ? ORDER BY year_filing_for DESC"
	return collect(ctx, r, "location years", sql, []any{establishmentID}, func(v *model.LocationYear) []any {
		return append(locationFields(&v.LocationRecord),
			&v.EIN, &v.StreetAddress, &v.ZipCode, &v.YearFilingFor,
			&v.TotalDeaths, &v.TotalDAFWCases, &v.TotalDJTRCases, &v.TotalOtherCases,
			&v.SeverityRate, &v.IsLatestEINYear)
	})
}

func (r *reader) NAICSByPattern(ctx context.Context, pattern string) ([]model.NaicsNode, error) {
	sql := "SELECT code, description FROM naics WHERE code LIKE ? ORDER BY code"
	return collect(ctx, r, "naics by pattern", sql, []any{pattern}, naicsFields)
}

func (r *reader) NAICSMatching(ctx context.Context, term string, limit int) ([]model.NaicsNode, error) {
	spec := query.Spec{
		Source:  query.SourceNAICS,
		Columns: []string{"code", "description"},
		Where:   []query.Predicate{query.AnyContains([]string{"code", "description"}, term)},
		Order:   []query.OrderKey{{Column: "code"}},
		Limit:   limit,
	}
	st := query.Render(spec, r.dialect)
	return collect(ctx, r, "naics matching", st.SQL, st.Args, naicsFields)
}

func (r *reader) States(ctx context.Context) ([]string, error) {
	sql := "SELECT DISTINCT state FROM search_mat WHERE is_latest = ? AND state IS NOT NULL AND state <> '' ORDER BY state"
	return collect(ctx, r, "states", sql, []any{true}, func(v *string) []any { return []any{v} })
}

func naicsFields(n *model.NaicsNode) []any { return []any{&n.Code, &n.Description} }

// collect runs a raw statement written with ? placeholders.
func collect[T any](ctx context.Context, r *reader, what, sql string, args []any, fields func(*T) []any) ([]T, error) {
	rows, done, err := r.query(ctx, rebind(r.dialect, sql), args...)
	if err != nil {
		return nil, eris.Wrapf(err, "store: query %s", what)
	}
	defer done()

	var out []T
	for rows.Next() {
		var v T
		if err := rows.Scan(fields(&v)...); err != nil {
			return nil, eris.Wrapf(err, "store: scan %s", what)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrapf(err, "store: iterate %s", what)
	}
	return out, nil
}

// rebind rewrites ? placeholders as $n for Postgres. Statements passed here
// never contain a literal question mark.
func rebind(d query.Dialect, sql string) string {
	if d != query.Postgres || !strings.Contains(sql, "?") {
		return sql
	}
	var sb strings.Builder
	n := 0
	for _, c := range sql {
		if c == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(c)
	}
	return sb.String()
}
