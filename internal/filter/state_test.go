package filter

import (
	"math"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_HasNoActiveCriteria(t *testing.T) {
	s := Default()
	assert.False(t, s.HasActiveCriteria())
	assert.Equal(t, 0, s.ActiveCount())
	assert.True(t, s.MostRecentYear)
	assert.Equal(t, SortRelevance, s.SortBy)
	assert.Equal(t, DefaultPageSize, s.PageSize)
}

func TestHasActiveCriteria(t *testing.T) {
	five := 5
	score := 70.0
	tests := []struct {
		name string
		mod  func(*State)
		want bool
	}{
		{"blank term", func(s *State) { s.Term = "   " }, false},
		{"term", func(s *State) { s.Term = "acme" }, true},
		{"industry", func(s *State) { s.IndustryCodes = []string{"44"} }, true},
		{"employees min", func(s *State) { s.EmployeesMin = &five }, true},
		{"employees max", func(s *State) { s.EmployeesMax = &five }, true},
		{"state", func(s *State) { s.StateCode = "CA" }, true},
		{"zip", func(s *State) { s.Zip = "94107" }, true},
		{"safety min", func(s *State) { s.SafetyMin = &score }, true},
		{"safety max", func(s *State) { s.SafetyMax = &score }, true},
		{"recency cleared", func(s *State) { s.MostRecentYear = false }, true},
		{"sort only", func(s *State) { s.SortBy = "trir.asc" }, false},
		{"page only", func(s *State) { s.Page = 3 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mod(&s)
			assert.Equal(t, tt.want, s.HasActiveCriteria())
		})
	}
}

func TestActiveCount(t *testing.T) {
	l := NewLive()
	l.SetTerm("acme")
	l.AddIndustry("44")
	l.AddIndustry("3")
	l.SetStateCode("ca")
	l.SetMostRecentYear(false)
	assert.Equal(t, 5, l.Snapshot().ActiveCount())
}

func TestLive_SettersResetPage(t *testing.T) {
	setters := map[string]func(*Live){
		"term":      func(l *Live) { l.SetTerm("x") },
		"add":       func(l *Live) { l.AddIndustry("11") },
		"empMin":    func(l *Live) { l.SetEmployeesMin("1") },
		"empMax":    func(l *Live) { l.SetEmployeesMax("1") },
		"safetyMin": func(l *Live) { l.SetSafetyMin("1") },
		"safetyMax": func(l *Live) { l.SetSafetyMax("1") },
		"state":     func(l *Live) { l.SetStateCode("NY") },
		"zip":       func(l *Live) { l.SetZip("10001") },
		"recent":    func(l *Live) { l.SetMostRecentYear(false) },
		"sort":      func(l *Live) { l.SetSortBy("trir.asc") },
		"size":      func(l *Live) { l.SetPageSize(25) },
	}
	for name, set := range setters {
		t.Run(name, func(t *testing.T) {
			l := NewLive()
			l.SetPage(4)
			require.Equal(t, 4, l.Snapshot().Page)
			set(l)
			assert.Equal(t, 0, l.Snapshot().Page)
		})
	}
}

func TestLive_IndustryChipsIdempotent(t *testing.T) {
	l := NewLive()
	assert.True(t, l.AddIndustry("44"))
	assert.False(t, l.AddIndustry("44"))
	assert.True(t, l.AddIndustry("3"))
	assert.Equal(t, []string{"44", "3"}, l.Snapshot().IndustryCodes)

	assert.False(t, l.RemoveIndustry("99"))
	assert.True(t, l.RemoveIndustry("44"))
	assert.Equal(t, []string{"3"}, l.Snapshot().IndustryCodes)
}

func TestLive_InvalidNumbersAreUnconstrained(t *testing.T) {
	l := NewLive()
	l.SetEmployeesMin("abc")
	l.SetEmployeesMax("-4")
	l.SetSafetyMin("NaN")
	l.SetSafetyMax("")
	s := l.Snapshot()
	assert.Nil(t, s.EmployeesMin)
	assert.Nil(t, s.EmployeesMax)
	assert.Nil(t, s.SafetyMin)
	assert.Nil(t, s.SafetyMax)
	assert.False(t, s.HasActiveCriteria())
}

func TestLive_Clear(t *testing.T) {
	l := NewLive()
	l.SetSortBy("trir.desc")
	l.SetPageSize(25)
	l.SetTerm("acme")
	l.AddIndustry("44")
	l.SetMostRecentYear(false)
	l.SetPage(2)

	l.Clear()
	s := l.Snapshot()
	assert.False(t, s.HasActiveCriteria())
	assert.Equal(t, "trir.desc", s.SortBy)
	assert.Equal(t, 25, s.PageSize)
	assert.Equal(t, 0, s.Page)
	assert.True(t, s.MostRecentYear)
}

func TestSnapshot_IsIsolated(t *testing.T) {
	l := NewLive()
	l.AddIndustry("44")
	l.SetEmployeesMin("10")
	snap := l.Snapshot()

	l.AddIndustry("45")
	l.SetEmployeesMin("99")

	assert.Equal(t, []string{"44"}, snap.IndustryCodes)
	assert.Equal(t, 10, *snap.EmployeesMin)
	assert.False(t, snap.Equal(l.Snapshot()))
}

func TestEqual(t *testing.T) {
	a := Default()
	b := Default()
	assert.True(t, a.Equal(b))

	one, other := 1, 1
	a.EmployeesMin, b.EmployeesMin = &one, &other
	assert.True(t, a.Equal(b))

	b.Page = 1
	assert.False(t, a.Equal(b))
}

func TestOffsetAndClamp(t *testing.T) {
	assert.Equal(t, 1, ClampPageSize(0))
	assert.Equal(t, 1, ClampPageSize(-5))
	assert.Equal(t, 100, ClampPageSize(500))
	assert.Equal(t, 40, ClampPageSize(40))

	s := State{Page: 3, PageSize: 20}
	assert.Equal(t, 60, s.Offset())

	s = State{Page: -2, PageSize: 1000}
	assert.Equal(t, 0, s.Offset())
}

func TestOffset_HugePageDoesNotOverflow(t *testing.T) {
	s := FromValues(url.Values{"term": {"acme"}, "page": {"922337203685477580"}, "limit": {"100"}})
	assert.GreaterOrEqual(t, s.Offset(), 0)
	assert.Equal(t, 100, s.PageSize)

	for _, size := range []int{1, 7, 100} {
		s := State{Page: math.MaxInt, PageSize: size}
		assert.GreaterOrEqual(t, s.Offset(), 0, "size=%d", size)
		assert.Equal(t, s.Normalize().Page*size, s.Offset(), "size=%d", size)
	}
}

func TestFromValues(t *testing.T) {
	v := url.Values{}
	v.Set("term", "acme+tools")
	v.Add("industry", "44")
	v.Add("industry", "44")
	v.Add("industry", "3")
	v.Set("employeesMin", "10")
	v.Set("employeesMax", "oops")
	v.Set("state", " ca ")
	v.Set("zip", " 94107 ")
	v.Set("safetyMin", "60.5")
	v.Set("mostRecentYear", "true")
	v.Set("sortBy", "trir.asc")
	v.Set("limit", "25")
	v.Set("offset", "50")

	s := FromValues(v)
	assert.Equal(t, "acme tools", s.Term)
	assert.Equal(t, []string{"44", "3"}, s.IndustryCodes)
	require.NotNil(t, s.EmployeesMin)
	assert.Equal(t, 10, *s.EmployeesMin)
	assert.Nil(t, s.EmployeesMax)
	assert.Equal(t, "CA", s.StateCode)
	assert.Equal(t, "94107", s.Zip)
	assert.InDelta(t, 60.5, *s.SafetyMin, 0.0001)
	assert.True(t, s.MostRecentYear)
	assert.Equal(t, "trir.asc", s.SortBy)
	assert.Equal(t, 25, s.PageSize)
	assert.Equal(t, 2, s.Page)
}

func TestFromValues_Defaults(t *testing.T) {
	s := FromValues(url.Values{})
	assert.Equal(t, SortRelevance, s.SortBy)
	assert.Equal(t, APIDefaultLimit, s.PageSize)
	assert.Equal(t, 0, s.Page)
	assert.False(t, s.MostRecentYear)

	s = FromValues(url.Values{"limit": {"0"}, "page": {"-3"}})
	assert.Equal(t, 1, s.PageSize)
	assert.Equal(t, 0, s.Page)

	s = FromValues(url.Values{"limit": {"1000"}})
	assert.Equal(t, 100, s.PageSize)
}

func TestValues_RoundTrip(t *testing.T) {
	l := NewLive()
	l.SetTerm("acme")
	l.AddIndustry("44")
	l.AddIndustry("3")
	l.SetSafetyMax("85")
	l.SetPageSize(20)
	l.SetPage(2)

	got := FromValues(l.Snapshot().Values())
	assert.True(t, l.Snapshot().Equal(got), "got %+v", got)
}
