package query

// Source is a queryable relation.
type Source string

const (
	// SourceCompanies is one row per company filing year, flagged is_latest.
	SourceCompanies Source = "search_mat"
	// SourceLocations is one row per establishment filing year.
	SourceLocations Source = "locations_mat"
	// SourceNAICS is the industry taxonomy table.
	SourceNAICS Source = "naics"
)

// OrderKey is one ORDER BY term.
type OrderKey struct {
	Column    string
	Desc      bool
	NullsLast bool
}

// Spec is a declarative, bounded query. It carries no SQL text.
type Spec struct {
	Source     Source
	Columns    []string
	Where      []Predicate
	Order      []OrderKey
	Offset     int
	Limit      int
	CountTotal bool
}

// Find returns the first predicate on column with the given op.
func (s Spec) Find(op Op, column string) (Predicate, bool) {
	for _, p := range s.Where {
		if p.Op == op && p.Column == column {
			return p, true
		}
	}
	return Predicate{}, false
}

// FindAll returns every predicate with the given op.
func (s Spec) FindAll(op Op) []Predicate {
	var out []Predicate
	for _, p := range s.Where {
		if p.Op == op {
			out = append(out, p)
		}
	}
	return out
}
