package client

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sells-group/safety-index/internal/api"
	"github.com/sells-group/safety-index/internal/filter"
	"github.com/sells-group/safety-index/internal/model"
	"github.com/sells-group/safety-index/internal/naics"
	"github.com/sells-group/safety-index/internal/query"
	"github.com/sells-group/safety-index/internal/session"
)

var (
	_ session.Searcher = (*Client)(nil)
	_ api.Service      = (*Client)(nil)
	_ naics.Lookup     = taxonomy{}
)

// Search runs a company search for s.
func (c *Client) Search(ctx context.Context, s filter.State) (*model.SearchResultPage, error) {
	s = s.Normalize()
	var items []model.CompanyRecord
	hdr, err := c.get(ctx, "/api/search", s.Values(), &items)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.CompanyRecord{}
	}
	return &model.SearchResultPage{
		Items:      items,
		TotalCount: headerInt(hdr, api.HeaderTotalCount),
		Page:       s.Page,
		PageSize:   s.PageSize,
	}, nil
}

// Company fetches the profile of the company filing under ein.
func (c *Client) Company(ctx context.Context, ein string) (*model.CompanyProfile, error) {
	var p model.CompanyProfile
	if _, err := c.get(ctx, "/api/company", url.Values{"ein": {ein}}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Location fetches the profile of one establishment.
func (c *Client) Location(ctx context.Context, id string) (*model.LocationProfile, error) {
	var p model.LocationProfile
	if _, err := c.get(ctx, "/api/location", url.Values{"id": {id}}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Locations lists the establishments of one company.
func (c *Client) Locations(ctx context.Context, p query.LocationParams) ([]model.LocationRecord, int, error) {
	q := url.Values{"ein": {p.EIN}}
	if p.Year != nil {
		q.Set("year", strconv.Itoa(*p.Year))
	}
	if p.LatestOnly {
		q.Set("latest", "1")
	}
	if term := strings.TrimSpace(p.Term); term != "" {
		q.Set("term", term)
	}
	if p.SortBy != "" {
		q.Set("sortBy", p.SortBy)
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Offset > 0 {
		q.Set("offset", strconv.Itoa(p.Offset))
	}
	if p.IncludeCount {
		q.Set("includeCount", "1")
	}

	var rows []model.LocationRecord
	hdr, err := c.get(ctx, "/api/location", q, &rows)
	if err != nil {
		return nil, 0, err
	}
	return rows, headerInt(hdr, api.HeaderTotalCount), nil
}

// States lists the states present in the latest filings.
func (c *Client) States(ctx context.Context) ([]string, error) {
	var states []string
	if _, err := c.get(ctx, "/api/states", nil, &states); err != nil {
		return nil, err
	}
	return states, nil
}

// CompanyView is a company profile with one page of its establishments.
type CompanyView struct {
	Profile        *model.CompanyProfile
	Locations      []model.LocationRecord
	LocationsTotal int
}

// CompanyWithLocations fetches a company profile and its location list
// concurrently. p.EIN is set to ein.
func (c *Client) CompanyWithLocations(ctx context.Context, ein string, p query.LocationParams) (*CompanyView, error) {
	p.EIN = ein
	p.IncludeCount = true

	var view CompanyView
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		profile, err := c.Company(gctx, ein)
		view.Profile = profile
		return err
	})
	g.Go(func() error {
		rows, total, err := c.Locations(gctx, p)
		view.Locations, view.LocationsTotal = rows, total
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &view, nil
}

// Taxonomy returns the industry lookup served by the API.
func (c *Client) Taxonomy() naics.Lookup {
	return taxonomy{c: c}
}

type taxonomy struct {
	c *Client
}

func (t taxonomy) Children(ctx context.Context, parent string) ([]model.NaicsNode, error) {
	q := url.Values{}
	if parent != "" {
		q.Set("parent", parent)
	}
	var nodes []model.NaicsNode
	if _, err := t.c.get(ctx, "/api/naics", q, &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

func (t taxonomy) Search(ctx context.Context, term string) ([]model.NaicsNode, error) {
	var nodes []model.NaicsNode
	if _, err := t.c.get(ctx, "/api/naics", url.Values{"q": {term}}, &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}
