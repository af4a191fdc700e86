package store

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sells-group/safety-index/internal/model"
	"github.com/sells-group/safety-index/internal/query"
	"github.com/sells-group/safety-index/internal/resilience"
)

var queryDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "safety",
		Name:      "store_query_duration_seconds",
		Help:      "Data store call duration in seconds, retries included",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	},
	[]string{"operation", "outcome"},
)

func init() {
	prometheus.MustRegister(queryDuration)
}

// observe records one guarded call.
func observe(op string, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	queryDuration.WithLabelValues(op, outcome).Observe(d.Seconds())
}

// Guarded decorates a Store with retries, a circuit breaker and latency
// metrics on every data call.
type Guarded struct {
	Store
	guard *resilience.Guard
}

// NewGuarded wraps s. A guard without an Observe hook reports to the store
// latency histogram.
func NewGuarded(s Store, g *resilience.Guard) *Guarded {
	if g != nil && g.Observe == nil {
		g.Observe = observe
	}
	return &Guarded{Store: s, guard: g}
}

type pageOf[T any] struct {
	rows  []T
	total int
}

func (g *Guarded) SearchCompanies(ctx context.Context, spec query.Spec) ([]model.CompanyRecord, int, error) {
	p, err := resilience.Do(ctx, g.guard, "search_companies", func(ctx context.Context) (pageOf[model.CompanyRecord], error) {
		rows, total, err := g.Store.SearchCompanies(ctx, spec)
		return pageOf[model.CompanyRecord]{rows, total}, err
	})
	return p.rows, p.total, err
}

func (g *Guarded) ListLocations(ctx context.Context, spec query.Spec) ([]model.LocationRecord, int, error) {
	p, err := resilience.Do(ctx, g.guard, "list_locations", func(ctx context.Context) (pageOf[model.LocationRecord], error) {
		rows, total, err := g.Store.ListLocations(ctx, spec)
		return pageOf[model.LocationRecord]{rows, total}, err
	})
	return p.rows, p.total, err
}

func (g *Guarded) CompanyRows(ctx context.Context, ein string) ([]model.CompanyRow, error) {
	return resilience.Do(ctx, g.guard, "company_rows", func(ctx context.Context) ([]model.CompanyRow, error) {
		return g.Store.CompanyRows(ctx, ein)
	})
}

func (g *Guarded) LocationYears(ctx context.Context, establishmentID string) ([]model.LocationYear, error) {
	return resilience.Do(ctx, g.guard, "location_years", func(ctx context.Context) ([]model.LocationYear, error) {
		return g.Store.LocationYears(ctx, establishmentID)
	})
}

func (g *Guarded) NAICSByPattern(ctx context.Context, pattern string) ([]model.NaicsNode, error) {
	return resilience.Do(ctx, g.guard, "naics_by_pattern", func(ctx context.Context) ([]model.NaicsNode, error) {
		return g.Store.NAICSByPattern(ctx, pattern)
	})
}

func (g *Guarded) NAICSMatching(ctx context.Context, term string, limit int) ([]model.NaicsNode, error) {
	return resilience.Do(ctx, g.guard, "naics_matching", func(ctx context.Context) ([]model.NaicsNode, error) {
		return g.Store.NAICSMatching(ctx, term, limit)
	})
}

func (g *Guarded) States(ctx context.Context) ([]string, error) {
	return resilience.Do(ctx, g.guard, "states", g.Store.States)
}

// UpsertFilings is retried as a whole; the merge is keyed, so a replay is
// harmless.
func (g *Guarded) UpsertFilings(ctx context.Context, filings []model.Filing) (int64, error) {
	return resilience.Do(ctx, g.guard, "upsert_filings", func(ctx context.Context) (int64, error) {
		return g.Store.UpsertFilings(ctx, filings)
	})
}

func (g *Guarded) UpsertNAICS(ctx context.Context, nodes []model.NaicsNode) (int64, error) {
	return resilience.Do(ctx, g.guard, "upsert_naics", func(ctx context.Context) (int64, error) {
		return g.Store.UpsertNAICS(ctx, nodes)
	})
}

func (g *Guarded) Refresh(ctx context.Context) error {
	return resilience.Exec(ctx, g.guard, "refresh", g.Store.Refresh)
}

func (g *Guarded) Ping(ctx context.Context) error {
	return resilience.Exec(ctx, g.guard, "ping", g.Store.Ping)
}
