// Package store persists OSHA ITA filings and the industry taxonomy and
// serves the read queries behind search, detail, and taxonomy lookups.
package store

import (
	"context"

	"github.com/sells-group/safety-index/internal/model"
	"github.com/sells-group/safety-index/internal/query"
)

// Reader is the read side used by the search service.
type Reader interface {
	// SearchCompanies runs a company spec. total is the unpaged match count
	// when spec.CountTotal is set, otherwise zero.
	SearchCompanies(ctx context.Context, spec query.Spec) (rows []model.CompanyRecord, total int, err error)
	// ListLocations runs a location spec with the same total semantics.
	ListLocations(ctx context.Context, spec query.Spec) (rows []model.LocationRecord, total int, err error)
	// CompanyRows returns every filing year of an EIN, newest first.
	CompanyRows(ctx context.Context, ein string) ([]model.CompanyRow, error)
	// LocationYears returns every filing year of an establishment, newest first.
	LocationYears(ctx context.Context, establishmentID string) ([]model.LocationYear, error)
	// NAICSByPattern returns taxonomy entries whose code matches a LIKE
	// pattern, ordered by code.
	NAICSByPattern(ctx context.Context, pattern string) ([]model.NaicsNode, error)
	// NAICSMatching returns up to limit entries whose code or description
	// contains term, ordered by code.
	NAICSMatching(ctx context.Context, term string, limit int) ([]model.NaicsNode, error)
	// States returns the distinct non-empty states of latest filings.
	States(ctx context.Context) ([]string, error)
}

// Writer is the ingest sink.
type Writer interface {
	UpsertFilings(ctx context.Context, filings []model.Filing) (int64, error)
	UpsertNAICS(ctx context.Context, nodes []model.NaicsNode) (int64, error)
	// Refresh rebuilds the derived company and location views.
	Refresh(ctx context.Context) error
}

// Store is the full persistence contract.
type Store interface {
	Reader
	Writer
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
