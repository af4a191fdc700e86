package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/safety-index/internal/config"
	"github.com/sells-group/safety-index/internal/query"
	"github.com/sells-group/safety-index/internal/resilience"
	"github.com/sells-group/safety-index/internal/search"
	"github.com/sells-group/safety-index/internal/store"
)

// openStore opens the configured store without the resilience guard.
func openStore(ctx context.Context) (store.Store, error) {
	if err := cfg.Validate("store"); err != nil {
		return nil, err
	}
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		return store.NewSQLite(cfg.Store.SQLitePath)
	case config.DriverPostgres:
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, cfg.Store.Pool())
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// guard wraps s with retries and a circuit breaker from config.
func guard(s store.Store) store.Store {
	g := resilience.NewGuard("store", cfg.Resilience.Policy(), cfg.Resilience.Breaker())
	return store.NewGuarded(s, g)
}

// newService builds the in-process search service over s.
func newService(s store.Reader) *search.Service {
	return search.New(s, query.Builder{RecentYears: cfg.Search.RecentYears})
}
