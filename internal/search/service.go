// Package search serves company searches, taxonomy lookups and detail
// profiles from a store.
package search

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/safety-index/internal/apperr"
	"github.com/sells-group/safety-index/internal/filter"
	"github.com/sells-group/safety-index/internal/model"
	"github.com/sells-group/safety-index/internal/naics"
	"github.com/sells-group/safety-index/internal/query"
	"github.com/sells-group/safety-index/internal/store"
)

// User-facing messages for identifier lookups.
const (
	MsgEINRequired      = "Missing required EIN parameter."
	MsgLocationRequired = "An `id` or `ein` parameter is required."
	MsgCompanyNotFound  = "Company not found."
	MsgLocationNotFound = "Location not found"
	msgUpstream         = "search: query failed"
)

// Service implements the company search and detail lookups over a store
// reader. It satisfies session.Searcher.
type Service struct {
	reader   store.Reader
	builder  query.Builder
	taxonomy *naics.Taxonomy
}

// New creates a Service reading from r.
func New(r store.Reader, b query.Builder) *Service {
	return &Service{
		reader:   r,
		builder:  b,
		taxonomy: naics.NewTaxonomy(r),
	}
}

// Taxonomy returns the industry lookup backed by the same store.
func (s *Service) Taxonomy() naics.Lookup {
	return s.taxonomy
}

// Search runs one company search for st. Upstream failures are logged and
// returned classified.
func (s *Service) Search(ctx context.Context, st filter.State) (*model.SearchResultPage, error) {
	st = st.Normalize()
	spec := s.builder.Companies(st)

	start := time.Now()
	items, total, err := s.reader.SearchCompanies(ctx, spec)
	if err != nil {
		zap.L().Error("search: company search failed",
			zap.String("term", st.Term),
			zap.Int("page", st.Page),
			zap.Error(err),
		)
		return nil, apperr.Upstream(err, msgUpstream)
	}
	zap.L().Debug("search: company search",
		zap.Int("rows", len(items)),
		zap.Int("total", total),
		zap.Duration("elapsed", time.Since(start)),
	)

	if items == nil {
		items = []model.CompanyRecord{}
	}
	return &model.SearchResultPage{
		Items:      items,
		TotalCount: total,
		Page:       st.Page,
		PageSize:   st.PageSize,
	}, nil
}

// Company assembles the profile of the company filing under ein.
func (s *Service) Company(ctx context.Context, ein string) (*model.CompanyProfile, error) {
	ein = strings.TrimSpace(ein)
	if ein == "" {
		return nil, apperr.Validation(MsgEINRequired)
	}
	rows, err := s.reader.CompanyRows(ctx, ein)
	if err != nil {
		zap.L().Error("search: company lookup failed", zap.String("ein", ein), zap.Error(err))
		return nil, apperr.Upstream(err, msgUpstream)
	}
	p := model.NewCompanyProfile(rows)
	if p == nil {
		return nil, apperr.NotFound(MsgCompanyNotFound)
	}
	return p, nil
}

// Location assembles the profile of one establishment.
func (s *Service) Location(ctx context.Context, id string) (*model.LocationProfile, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperr.Validation(MsgLocationRequired)
	}
	rows, err := s.reader.LocationYears(ctx, id)
	if err != nil {
		zap.L().Error("search: location lookup failed", zap.String("establishment_id", id), zap.Error(err))
		return nil, apperr.Upstream(err, msgUpstream)
	}
	p := model.NewLocationProfile(rows)
	if p == nil {
		return nil, apperr.NotFound(MsgLocationNotFound)
	}
	return p, nil
}

// Locations lists the establishments of one company. The total is zero
// unless p.IncludeCount is set.
func (s *Service) Locations(ctx context.Context, p query.LocationParams) ([]model.LocationRecord, int, error) {
	if strings.TrimSpace(p.EIN) == "" {
		return nil, 0, apperr.Validation(MsgLocationRequired)
	}
	rows, total, err := s.reader.ListLocations(ctx, s.builder.Locations(p))
	if err != nil {
		zap.L().Error("search: location list failed", zap.String("ein", p.EIN), zap.Error(err))
		return nil, 0, apperr.Upstream(err, msgUpstream)
	}
	if rows == nil {
		rows = []model.LocationRecord{}
	}
	return rows, total, nil
}

// States lists the states present in the latest filings.
func (s *Service) States(ctx context.Context) ([]string, error) {
	states, err := s.reader.States(ctx)
	if err != nil {
		zap.L().Error("search: states failed", zap.Error(err))
		return nil, apperr.Upstream(err, msgUpstream)
	}
	if states == nil {
		states = []string{}
	}
	return states, nil
}
