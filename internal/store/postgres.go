package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/safety-index/internal/db"
	"github.com/sells-group/safety-index/internal/model"
	"github.com/sells-group/safety-index/internal/query"
)

// PostgresStore implements Store on a pgx pool. Derived views are
// materialized and rebuilt by Refresh.
type PostgresStore struct {
	reader
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return newPostgresStore(pool), nil
}

func newPostgresStore(pool db.Pool) *PostgresStore {
	s := &PostgresStore{pool: pool}
	s.reader = reader{
		dialect: query.Postgres,
		query: func(ctx context.Context, sql string, args ...any) (rowIter, func(), error) {
			rows, err := pool.Query(ctx, sql, args...)
			if err != nil {
				return nil, nil, err
			}
			return rows, rows.Close, nil
		},
	}
	return s
}

var filingUpsert = db.Upsert{
	Table:   "ita_filings",
	Columns: model.FilingColumns,
	Keys:    []string{"id"},
}

var naicsUpsert = db.Upsert{
	Table:   "naics",
	Columns: []string{"code", "description"},
	Keys:    []string{"code"},
}

// UpsertFilings bulk-loads filings keyed by filing id.
func (s *PostgresStore) UpsertFilings(ctx context.Context, filings []model.Filing) (int64, error) {
	rows := make([][]any, len(filings))
	for i, f := range filings {
		rows[i] = f.Values()
	}
	n, err := db.BulkUpsert(ctx, s.pool, filingUpsert, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: upsert filings")
	}
	return n, nil
}

// UpsertNAICS bulk-loads taxonomy entries keyed by code.
func (s *PostgresStore) UpsertNAICS(ctx context.Context, nodes []model.NaicsNode) (int64, error) {
	rows := make([][]any, len(nodes))
	for i, n := range nodes {
		rows[i] = []any{n.Code, n.Description}
	}
	n, err := db.BulkUpsert(ctx, s.pool, naicsUpsert, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: upsert naics")
	}
	return n, nil
}

// Refresh rebuilds both materialized views without blocking readers.
func (s *PostgresStore) Refresh(ctx context.Context) error {
	for _, view := range []string{"locations_mat", "search_mat"} {
		if _, err := s.pool.Exec(ctx, "REFRESH MATERIALIZED VIEW CONCURRENTLY "+view); err != nil {
			return eris.Wrapf(err, "postgres: refresh %s", view)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
