package filter

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// APIDefaultLimit is the page size used by the search endpoint when the
// request names none.
const APIDefaultLimit = 20

// FromValues decodes search endpoint query parameters. Malformed numbers are
// treated as absent and pagination is clamped, never rejected. The page is
// taken from "page" when present, otherwise derived from offset/limit.
func FromValues(v url.Values) State {
	s := State{
		Term:           strings.TrimSpace(strings.ReplaceAll(v.Get("term"), "+", " ")),
		EmployeesMin:   ParseCount(v.Get("employeesMin")),
		EmployeesMax:   ParseCount(v.Get("employeesMax")),
		StateCode:      strings.ToUpper(strings.TrimSpace(v.Get("state"))),
		Zip:            strings.TrimSpace(v.Get("zip")),
		SafetyMin:      ParseScore(v.Get("safetyMin")),
		SafetyMax:      ParseScore(v.Get("safetyMax")),
		MostRecentYear: v.Get("mostRecentYear") == "true",
		SortBy:         strings.TrimSpace(v.Get("sortBy")),
	}

	for _, code := range v["industry"] {
		code = strings.TrimSpace(code)
		if code != "" && !slices.Contains(s.IndustryCodes, code) {
			s.IndustryCodes = append(s.IndustryCodes, code)
		}
	}

	s.PageSize = APIDefaultLimit
	if n, err := strconv.Atoi(v.Get("limit")); err == nil {
		s.PageSize = ClampPageSize(n)
	}

	if p, err := strconv.Atoi(v.Get("page")); err == nil {
		s.Page = max(p, 0)
	} else if off, err := strconv.Atoi(v.Get("offset")); err == nil && off > 0 {
		s.Page = off / s.PageSize
	}

	return s.Normalize()
}

// Values encodes s as search endpoint query parameters. Unset fields are
// omitted; the recency flag is sent only when on.
func (s State) Values() url.Values {
	s = s.Normalize()
	v := url.Values{}
	if s.Term != "" {
		v.Set("term", s.Term)
	}
	for _, code := range s.IndustryCodes {
		v.Add("industry", code)
	}
	if s.EmployeesMin != nil {
		v.Set("employeesMin", strconv.Itoa(*s.EmployeesMin))
	}
	if s.EmployeesMax != nil {
		v.Set("employeesMax", strconv.Itoa(*s.EmployeesMax))
	}
	if s.StateCode != "" {
		v.Set("state", s.StateCode)
	}
	if s.Zip != "" {
		v.Set("zip", s.Zip)
	}
	if s.SafetyMin != nil {
		v.Set("safetyMin", strconv.FormatFloat(*s.SafetyMin, 'f', -1, 64))
	}
	if s.SafetyMax != nil {
		v.Set("safetyMax", strconv.FormatFloat(*s.SafetyMax, 'f', -1, 64))
	}
	if s.MostRecentYear {
		v.Set("mostRecentYear", "true")
	}
	v.Set("sortBy", s.SortBy)
	v.Set("limit", strconv.Itoa(s.PageSize))
	v.Set("offset", strconv.Itoa(s.Page*s.PageSize))
	return v
}
