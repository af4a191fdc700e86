package query

import (
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Dialect selects placeholder and case-insensitive match syntax.
type Dialect int

const (
	// Postgres uses $n placeholders and ILIKE.
	Postgres Dialect = iota
	// SQLite uses ? placeholders; its LIKE is already case-insensitive for ASCII.
	SQLite
)

// TotalCountColumn is appended to rendered selects when Spec.CountTotal is set.
const TotalCountColumn = "total_count"

// Statement is rendered SQL text plus its bind arguments.
type Statement struct {
	SQL  string
	Args []any
}

type renderer struct {
	d    Dialect
	sb   strings.Builder
	args []any
}

func (r *renderer) bind(v any) string {
	r.args = append(r.args, v)
	if r.d == SQLite {
		return "?"
	}
	return "$" + strconv.Itoa(len(r.args))
}

func (r *renderer) ilike() string {
	if r.d == SQLite {
		return "LIKE"
	}
	return "ILIKE"
}

// Render produces the paged select for s. When s.CountTotal is set every row
// carries the unpaged match count in total_count.
func Render(s Spec, d Dialect) Statement {
	r := &renderer{d: d}
	r.sb.WriteString("SELECT ")
	if len(s.Columns) == 0 {
		r.sb.WriteString("*")
	} else {
		for i, c := range s.Columns {
			if i > 0 {
				r.sb.WriteString(", ")
			}
			r.sb.WriteString(ident(c))
		}
	}
	if s.CountTotal {
		r.sb.WriteString(", count(*) OVER() AS " + TotalCountColumn)
	}
	r.sb.WriteString(" FROM " + ident(string(s.Source)))
	r.where(s.Where)
	r.order(s.Order)
	r.sb.WriteString(" LIMIT " + r.bind(s.Limit))
	r.sb.WriteString(" OFFSET " + r.bind(s.Offset))
	return Statement{SQL: r.sb.String(), Args: r.args}
}

// RenderCount produces a count of every row matching s, ignoring range and
// order. Used when a page past the end returns no rows to read a total from.
func RenderCount(s Spec, d Dialect) Statement {
	r := &renderer{d: d}
	r.sb.WriteString("SELECT count(*) FROM " + ident(string(s.Source)))
	r.where(s.Where)
	return Statement{SQL: r.sb.String(), Args: r.args}
}

func (r *renderer) where(preds []Predicate) {
	first := true
	for _, p := range preds {
		clause := r.predicate(p)
		if clause == "" {
			continue
		}
		if first {
			r.sb.WriteString(" WHERE ")
			first = false
		} else {
			r.sb.WriteString(" AND ")
		}
		r.sb.WriteString(clause)
	}
}

func (r *renderer) predicate(p Predicate) string {
	switch p.Op {
	case OpContains:
		return r.contains(p.Column, p.Value)
	case OpAnyContains:
		if len(p.Columns) == 0 {
			return ""
		}
		parts := make([]string, 0, len(p.Columns))
		for _, c := range p.Columns {
			parts = append(parts, r.contains(c, p.Value))
		}
		return "(" + strings.Join(parts, " OR ") + ")"
	case OpAnyPrefix:
		if len(p.Values) == 0 {
			return ""
		}
		parts := make([]string, 0, len(p.Values))
		for _, v := range p.Values {
			parts = append(parts, ident(p.Column)+" LIKE "+r.bind(EscapeLike(v)+"%")+` ESCAPE '\'`)
		}
		return "(" + strings.Join(parts, " OR ") + ")"
	case OpGTE:
		return ident(p.Column) + " >= " + r.bind(p.Value)
	case OpLTE:
		return ident(p.Column) + " <= " + r.bind(p.Value)
	case OpEqual:
		return ident(p.Column) + " = " + r.bind(p.Value)
	default:
		return ""
	}
}

func (r *renderer) contains(column string, v any) string {
	s, _ := v.(string)
	return ident(column) + " " + r.ilike() + " " + r.bind("%"+EscapeLike(s)+"%") + ` ESCAPE '\'`
}

func (r *renderer) order(keys []OrderKey) {
	for i, k := range keys {
		if i == 0 {
			r.sb.WriteString(" ORDER BY ")
		} else {
			r.sb.WriteString(", ")
		}
		r.sb.WriteString(ident(k.Column))
		if k.Desc {
			r.sb.WriteString(" DESC")
		} else {
			r.sb.WriteString(" ASC")
		}
		if k.NullsLast {
			r.sb.WriteString(" NULLS LAST")
		}
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes LIKE metacharacters so v matches literally.
func EscapeLike(v string) string {
	return likeEscaper.Replace(v)
}

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}
