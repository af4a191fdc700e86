// Package api exposes search, taxonomy and detail lookups as a JSON HTTP API
// for the browser UI.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sells-group/safety-index/internal/model"
	"github.com/sells-group/safety-index/internal/naics"
	"github.com/sells-group/safety-index/internal/query"
	"github.com/sells-group/safety-index/internal/session"
)

// Response headers carrying out-of-band result metadata.
const (
	HeaderTotalCount = "X-Total-Count"
	HeaderQueryTime  = "X-Query-Time-ms"
)

// Service is the query surface the API serves.
type Service interface {
	session.Searcher
	Company(ctx context.Context, ein string) (*model.CompanyProfile, error)
	Location(ctx context.Context, id string) (*model.LocationProfile, error)
	Locations(ctx context.Context, p query.LocationParams) ([]model.LocationRecord, int, error)
	States(ctx context.Context) ([]string, error)
}

// Options configure the router.
type Options struct {
	// AllowedOrigins for CORS. Empty allows any origin.
	AllowedOrigins []string
	// Health reports backing store reachability. Nil always reports ok.
	Health func(ctx context.Context) error
}

// Server holds the handlers' dependencies.
type Server struct {
	svc    Service
	lookup naics.Lookup
	health func(ctx context.Context) error
}

// NewRouter builds the HTTP handler for svc and lookup.
func NewRouter(svc Service, lookup naics.Lookup, opts Options) http.Handler {
	s := &Server{svc: svc, lookup: lookup, health: opts.Health}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{HeaderTotalCount, HeaderQueryTime},
		MaxAge:         300,
	}))
	r.Use(Metrics())

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/search", s.handleSearch)
		r.Get("/naics", s.handleNaics)
		r.Get("/company", s.handleCompany)
		r.Get("/location", s.handleLocation)
		r.Get("/states", s.handleStates)
	})
	return r
}
