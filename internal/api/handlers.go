package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sells-group/safety-index/internal/apperr"
	"github.com/sells-group/safety-index/internal/filter"
	"github.com/sells-group/safety-index/internal/model"
	"github.com/sells-group/safety-index/internal/naics"
	"github.com/sells-group/safety-index/internal/query"
	"github.com/sells-group/safety-index/internal/search"
)

// defaultLocationLimit is the location list page size when none is given.
const defaultLocationLimit = 10

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSearch serves GET /api/search. The body is the page items; the total
// and latency travel in headers.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	st := filter.FromValues(r.URL.Query())

	start := time.Now()
	page, err := s.svc.Search(r.Context(), st)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set(HeaderTotalCount, strconv.Itoa(page.TotalCount))
	setQueryTime(w, start)
	writeJSON(w, http.StatusOK, page.Items)
}

// handleNaics serves GET /api/naics. A q of at least two characters searches
// the whole taxonomy; otherwise the children of parent are listed.
func (s *Server) handleNaics(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	term := strings.TrimSpace(v.Get("q"))

	var (
		nodes []model.NaicsNode
		err   error
	)
	if len([]rune(term)) >= naics.MinSearchTerm {
		nodes, err = s.lookup.Search(r.Context(), term)
	} else {
		nodes, err = s.lookup.Children(r.Context(), v.Get("parent"))
	}
	if err != nil {
		writeError(w, r, apperr.Upstream(err, "api: naics lookup"))
		return
	}
	writeJSON(w, http.StatusOK, nodes)
}

func (s *Server) handleCompany(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Company(r.Context(), r.URL.Query().Get("ein"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleLocation serves GET /api/location: a single establishment by id, or
// the establishment list of a company by ein.
func (s *Server) handleLocation(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()

	if id := strings.TrimSpace(v.Get("id")); id != "" {
		p, err := s.svc.Location(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
		return
	}

	ein := strings.TrimSpace(v.Get("ein"))
	if ein == "" {
		writeError(w, r, apperr.Validation(search.MsgLocationRequired))
		return
	}

	params := query.LocationParams{
		EIN:          ein,
		Year:         filter.ParseCount(v.Get("year")),
		LatestOnly:   v.Get("latest") == "1",
		Term:         v.Get("term"),
		SortBy:       v.Get("sortBy"),
		Limit:        defaultLocationLimit,
		IncludeCount: v.Get("includeCount") == "1",
	}
	if n, err := strconv.Atoi(v.Get("limit")); err == nil {
		params.Limit = n
	}
	if n, err := strconv.Atoi(v.Get("offset")); err == nil {
		params.Offset = max(n, 0)
	}

	start := time.Now()
	rows, total, err := s.svc.Locations(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if params.IncludeCount {
		w.Header().Set(HeaderTotalCount, strconv.Itoa(total))
	}
	setQueryTime(w, start)
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleStates(w http.ResponseWriter, r *http.Request) {
	states, err := s.svc.States(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, states)
}

func setQueryTime(w http.ResponseWriter, start time.Time) {
	w.Header().Set(HeaderQueryTime, strconv.FormatInt(time.Since(start).Milliseconds(), 10))
}
