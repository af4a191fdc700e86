// Package filter holds the search filter state of a browsing session.
//
// State is an immutable value used to build queries; Live is the single
// mutable instance owned by a session controller. Every Live setter except
// SetPage resets the page to 0.
package filter

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

const (
	// SortRelevance selects the fixed employees/year fallback ordering.
	SortRelevance = "relevance"
	// DefaultPageSize is the page size of a fresh session.
	DefaultPageSize = 10
	// MinPageSize and MaxPageSize bound any requested page size.
	MinPageSize = 1
	MaxPageSize = 100
)

// State is a snapshot of every search filter. The zero value has no
// criteria and no recency window; Normalize fills sort and paging defaults.
type State struct {
	Term           string   `json:"term,omitempty"`
	IndustryCodes  []string `json:"industry,omitempty"`
	EmployeesMin   *int     `json:"employees_min,omitempty"`
	EmployeesMax   *int     `json:"employees_max,omitempty"`
	StateCode      string   `json:"state,omitempty"`
	Zip            string   `json:"zip,omitempty"`
	SafetyMin      *float64 `json:"safety_min,omitempty"`
	SafetyMax      *float64 `json:"safety_max,omitempty"`
	MostRecentYear bool     `json:"most_recent_year"`
	SortBy         string   `json:"sort_by"`
	Page           int      `json:"page"`
	PageSize       int      `json:"page_size"`
}

// Default returns the state of a fresh session.
func Default() State {
	return State{
		MostRecentYear: true,
		SortBy:         SortRelevance,
		PageSize:       DefaultPageSize,
	}
}

// Normalize fills sort and pagination defaults and clamps them into range.
func (s State) Normalize() State {
	if strings.TrimSpace(s.SortBy) == "" {
		s.SortBy = SortRelevance
	}
	s.PageSize = ClampPageSize(s.PageSize)
	if s.Page < 0 {
		s.Page = 0
	}
	// Page*PageSize must not overflow into a negative offset.
	if maxPage := math.MaxInt / s.PageSize; s.Page > maxPage {
		s.Page = maxPage
	}
	return s
}

// ClampPageSize bounds n into [MinPageSize, MaxPageSize]. Zero and negative
// values clamp up to MinPageSize.
func ClampPageSize(n int) int {
	if n < MinPageSize {
		return MinPageSize
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

// Offset returns the row offset of the current page.
func (s State) Offset() int {
	n := s.Normalize()
	return n.Page * n.PageSize
}

// HasActiveCriteria reports whether any filter would constrain a search.
// A cleared recency flag counts because it widens the default scope.
func (s State) HasActiveCriteria() bool {
	if strings.TrimSpace(s.Term) != "" {
		return true
	}
	if len(s.IndustryCodes) > 0 {
		return true
	}
	if s.EmployeesMin != nil || s.EmployeesMax != nil ||
		s.SafetyMin != nil || s.SafetyMax != nil ||
		s.StateCode != "" || s.Zip != "" {
		return true
	}
	return !s.MostRecentYear
}

// ActiveCount is the number shown on the "Clear (n)" control: one per set
// field, one per industry chip, and one when the recency flag is cleared.
func (s State) ActiveCount() int {
	n := 0
	if strings.TrimSpace(s.Term) != "" {
		n++
	}
	for _, set := range []bool{
		s.EmployeesMin != nil, s.EmployeesMax != nil,
		s.StateCode != "", s.Zip != "",
		s.SafetyMin != nil, s.SafetyMax != nil,
	} {
		if set {
			n++
		}
	}
	n += len(s.IndustryCodes)
	if !s.MostRecentYear {
		n++
	}
	return n
}

// Clone returns a deep copy that shares no memory with s.
func (s State) Clone() State {
	c := s
	if s.IndustryCodes != nil {
		c.IndustryCodes = slices.Clone(s.IndustryCodes)
	}
	c.EmployeesMin = clonePtr(s.EmployeesMin)
	c.EmployeesMax = clonePtr(s.EmployeesMax)
	c.SafetyMin = clonePtr(s.SafetyMin)
	c.SafetyMax = clonePtr(s.SafetyMax)
	return c
}

// Equal reports whether two snapshots describe the same request. Industry
// codes compare in order since order is preserved for display.
func (s State) Equal(o State) bool {
	return s.Term == o.Term &&
		slices.Equal(s.IndustryCodes, o.IndustryCodes) &&
		ptrEqual(s.EmployeesMin, o.EmployeesMin) &&
		ptrEqual(s.EmployeesMax, o.EmployeesMax) &&
		s.StateCode == o.StateCode &&
		s.Zip == o.Zip &&
		ptrEqual(s.SafetyMin, o.SafetyMin) &&
		ptrEqual(s.SafetyMax, o.SafetyMax) &&
		s.MostRecentYear == o.MostRecentYear &&
		s.SortBy == o.SortBy &&
		s.Page == o.Page &&
		s.PageSize == o.PageSize
}

// ParseCount parses a non-negative integer bound. Blank, malformed and
// negative input yield nil, meaning unconstrained.
func ParseCount(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}

// ParseScore parses a float bound. Blank, malformed and non-finite input
// yield nil.
func ParseScore(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func ptrEqual[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
