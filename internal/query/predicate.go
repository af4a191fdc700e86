package query

// Op identifies the comparison a Predicate applies.
type Op int

const (
	// OpContains is a case-insensitive substring match on Column.
	OpContains Op = iota
	// OpAnyContains is a case-insensitive substring match on any of Columns.
	OpAnyContains
	// OpAnyPrefix matches Column against any of Values as a prefix.
	OpAnyPrefix
	// OpGTE is an inclusive lower bound.
	OpGTE
	// OpLTE is an inclusive upper bound.
	OpLTE
	// OpEqual is an exact match.
	OpEqual
)

func (o Op) String() string {
	switch o {
	case OpContains:
		return "contains"
	case OpAnyContains:
		return "any_contains"
	case OpAnyPrefix:
		return "any_prefix"
	case OpGTE:
		return "gte"
	case OpLTE:
		return "lte"
	case OpEqual:
		return "eq"
	default:
		return "unknown"
	}
}

// Predicate is one structured condition. Values are never spliced into SQL
// text; the renderer binds them as arguments.
type Predicate struct {
	Op      Op
	Column  string
	Columns []string
	Value   any
	Values  []string
}

// Contains matches rows whose column contains v, ignoring case.
func Contains(column, v string) Predicate {
	return Predicate{Op: OpContains, Column: column, Value: v}
}

// AnyContains matches rows where at least one of columns contains v.
func AnyContains(columns []string, v string) Predicate {
	return Predicate{Op: OpAnyContains, Columns: columns, Value: v}
}

// AnyPrefix matches rows whose column starts with any of prefixes.
func AnyPrefix(column string, prefixes []string) Predicate {
	return Predicate{Op: OpAnyPrefix, Column: column, Values: prefixes}
}

// GTE matches rows with column >= v.
func GTE(column string, v any) Predicate {
	return Predicate{Op: OpGTE, Column: column, Value: v}
}

// LTE matches rows with column <= v.
func LTE(column string, v any) Predicate {
	return Predicate{Op: OpLTE, Column: column, Value: v}
}

// Eq matches rows with column = v.
func Eq(column string, v any) Predicate {
	return Predicate{Op: OpEqual, Column: column, Value: v}
}
