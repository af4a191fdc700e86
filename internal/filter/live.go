package filter

import (
	"slices"
	"strings"
)

// Live is the mutable filter state of one session. It is not safe for
// concurrent use; the owning controller serializes access.
type Live struct {
	s State
}

// NewLive returns a Live initialized to Default.
func NewLive() *Live {
	return &Live{s: Default()}
}

// Snapshot returns a deep copy of the current state.
func (l *Live) Snapshot() State {
	return l.s.Clone()
}

// SetTerm sets the company-name fragment.
func (l *Live) SetTerm(term string) {
	l.s.Term = strings.TrimSpace(term)
	l.s.Page = 0
}

// AddIndustry appends a NAICS code chip. Returns false when already present.
func (l *Live) AddIndustry(code string) bool {
	code = strings.TrimSpace(code)
	if code == "" || slices.Contains(l.s.IndustryCodes, code) {
		return false
	}
	l.s.IndustryCodes = append(l.s.IndustryCodes, code)
	l.s.Page = 0
	return true
}

// RemoveIndustry removes a NAICS code chip. Returns false when absent.
func (l *Live) RemoveIndustry(code string) bool {
	i := slices.Index(l.s.IndustryCodes, code)
	if i < 0 {
		return false
	}
	l.s.IndustryCodes = slices.Delete(l.s.IndustryCodes, i, i+1)
	l.s.Page = 0
	return true
}

// SetEmployeesMin sets the lower employee bound from raw input.
func (l *Live) SetEmployeesMin(raw string) {
	l.s.EmployeesMin = ParseCount(raw)
	l.s.Page = 0
}

// SetEmployeesMax sets the upper employee bound from raw input.
func (l *Live) SetEmployeesMax(raw string) {
	l.s.EmployeesMax = ParseCount(raw)
	l.s.Page = 0
}

// SetSafetyMin sets the lower safety score bound from raw input.
func (l *Live) SetSafetyMin(raw string) {
	l.s.SafetyMin = ParseScore(raw)
	l.s.Page = 0
}

// SetSafetyMax sets the upper safety score bound from raw input.
func (l *Live) SetSafetyMax(raw string) {
	l.s.SafetyMax = ParseScore(raw)
	l.s.Page = 0
}

// SetStateCode sets the two-letter state filter.
func (l *Live) SetStateCode(code string) {
	l.s.StateCode = strings.ToUpper(strings.TrimSpace(code))
	l.s.Page = 0
}

// SetZip sets the zip code filter.
func (l *Live) SetZip(zip string) {
	l.s.Zip = strings.TrimSpace(zip)
	l.s.Page = 0
}

// SetMostRecentYear toggles the trailing filing-year window.
func (l *Live) SetMostRecentYear(on bool) {
	l.s.MostRecentYear = on
	l.s.Page = 0
}

// SetSortBy stores the sort key verbatim; resolution happens at query time.
func (l *Live) SetSortBy(sortBy string) {
	l.s.SortBy = strings.TrimSpace(sortBy)
	l.s.Page = 0
}

// SetPageSize clamps and stores the page size.
func (l *Live) SetPageSize(n int) {
	l.s.PageSize = ClampPageSize(n)
	l.s.Page = 0
}

// SetPage moves to page p; negative pages clamp to 0.
func (l *Live) SetPage(p int) {
	if p < 0 {
		p = 0
	}
	l.s.Page = p
}

// Clear drops every filter and returns to page 0. Sort order and page size
// are kept; the recency flag returns to its default.
func (l *Live) Clear() {
	sortBy, size := l.s.SortBy, l.s.PageSize
	l.s = Default()
	l.s.SortBy = sortBy
	l.s.PageSize = size
}
