package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/safety-index/internal/model"
	"github.com/sells-group/safety-index/internal/query"
)

// SQLiteStore implements Store using modernc.org/sqlite. Derived views are
// plain views, so Refresh has nothing to rebuild.
type SQLiteStore struct {
	reader
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		// Each pooled connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}

	s := &SQLiteStore{db: db}
	s.reader = reader{
		dialect: query.SQLite,
		query: func(ctx context.Context, q string, args ...any) (rowIter, func(), error) {
			rows, err := db.QueryContext(ctx, q, args...)
			if err != nil {
				return nil, nil, err
			}
			return rows, func() { rows.Close() }, nil //nolint:errcheck
		},
	}
	return s, nil
}

// Migrate applies pending migrations.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	m := migrator{
		backend: "sqlite",
		dialect: query.SQLite,
		exec: func(ctx context.Context, q string, args ...any) error {
			_, err := s.db.ExecContext(ctx, q, args...)
			return err
		},
		applied: func(ctx context.Context) (map[string]bool, error) {
			return appliedSet(s.reader.query(ctx, "SELECT filename FROM schema_migrations"))
		},
	}
	return m.run(ctx)
}

// UpsertFilings writes filings in one transaction keyed by filing id.
func (s *SQLiteStore) UpsertFilings(ctx context.Context, filings []model.Filing) (int64, error) {
	rows := make([][]any, len(filings))
	for i, f := range filings {
		rows[i] = f.Values()
	}
	return s.upsert(ctx, "ita_filings", model.FilingColumns, "id", rows)
}

// UpsertNAICS writes taxonomy entries keyed by code.
func (s *SQLiteStore) UpsertNAICS(ctx context.Context, nodes []model.NaicsNode) (int64, error) {
	rows := make([][]any, len(nodes))
	for i, n := range nodes {
		rows[i] = []any{n.Code, n.Description}
	}
	return s.upsert(ctx, "naics", []string{"code", "description"}, "code", rows)
}

func (s *SQLiteStore) upsert(ctx context.Context, table string, cols []string, key string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	sets := make([]string, 0, len(cols))
	for _, c := range cols {
		if c != key {
			sets = append(sets, c+" = excluded."+c)
		}
	}
	stmt := "INSERT INTO " + table + " (" + strings.Join(cols, ", ") + ") VALUES (" +
		strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ") + ") ON CONFLICT (" + key + ") DO UPDATE SET " +
		strings.Join(sets, ", ")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: upsert: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	prep, err := tx.PrepareContext(ctx, stmt)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: upsert: prepare %s", table)
	}
	defer prep.Close() //nolint:errcheck

	var n int64
	for _, row := range rows {
		res, err := prep.ExecContext(ctx, row...)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert: exec %s", table)
		}
		affected, _ := res.RowsAffected()
		n += affected
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: upsert: commit")
	}
	return n, nil
}

// Refresh is a no-op: SQLite views are computed on read.
func (s *SQLiteStore) Refresh(context.Context) error { return nil }

// Ping checks database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
