package store

import (
	"context"
	"embed"
	"io/fs"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/safety-index/internal/query"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationFS embed.FS

// migrationLockID serializes concurrent Postgres migration runs.
const migrationLockID = 8675309

const migrationTableSQL = `CREATE TABLE IF NOT EXISTS schema_migrations (
	filename   TEXT PRIMARY KEY,
	applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

type migration struct {
	name string
	sql  string
}

// loadMigrations reads the embedded scripts for one backend in filename order.
func loadMigrations(backend string) ([]migration, error) {
	dir := "migrations/" + backend
	entries, err := fs.ReadDir(migrationFS, dir)
	if err != nil {
		return nil, eris.Wrapf(err, "store: read %s migrations", backend)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	out := make([]migration, 0, len(entries))
	for _, e := range entries {
		data, err := migrationFS.ReadFile(dir + "/" + e.Name())
		if err != nil {
			return nil, eris.Wrapf(err, "store: read migration %s", e.Name())
		}
		out = append(out, migration{name: e.Name(), sql: string(data)})
	}
	return out, nil
}

// migrator abstracts the two statements a migration run needs.
type migrator struct {
	backend string
	dialect query.Dialect
	exec    func(ctx context.Context, sql string, args ...any) error
	applied func(ctx context.Context) (map[string]bool, error)
}

func (m migrator) run(ctx context.Context) error {
	log := zap.L().With(zap.String("component", "store.migrate"), zap.String("backend", m.backend))

	if err := m.exec(ctx, migrationTableSQL); err != nil {
		return eris.Wrap(err, "store: ensure migration table")
	}
	migrations, err := loadMigrations(m.backend)
	if err != nil {
		return err
	}
	applied, err := m.applied(ctx)
	if err != nil {
		return eris.Wrap(err, "store: query applied migrations")
	}

	for _, mg := range migrations {
		if applied[mg.name] {
			continue
		}
		log.Info("store: applying migration", zap.String("file", mg.name))
		if err := m.exec(ctx, mg.sql); err != nil {
			return eris.Wrapf(err, "store: apply migration %s", mg.name)
		}
		if err := m.exec(ctx, rebind(m.dialect, "INSERT INTO schema_migrations (filename) VALUES (?)"), mg.name); err != nil {
			return eris.Wrapf(err, "store: record migration %s", mg.name)
		}
	}
	return nil
}

// Migrate applies pending migrations under a session advisory lock.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "SELECT pg_advisory_lock($1)", migrationLockID); err != nil {
		return eris.Wrap(err, "postgres: acquire migration lock")
	}
	defer func() {
		if _, err := s.pool.Exec(ctx, "SELECT pg_advisory_unlock($1)", migrationLockID); err != nil {
			zap.L().Warn("postgres: release migration lock", zap.Error(err))
		}
	}()

	m := migrator{
		backend: "postgres",
		dialect: query.Postgres,
		exec: func(ctx context.Context, sql string, args ...any) error {
			_, err := s.pool.Exec(ctx, sql, args...)
			return err
		},
		applied: func(ctx context.Context) (map[string]bool, error) {
			return appliedSet(s.reader.query(ctx, "SELECT filename FROM schema_migrations"))
		},
	}
	return m.run(ctx)
}

func appliedSet(rows rowIter, done func(), err error) (map[string]bool, error) {
	if err != nil {
		return nil, err
	}
	defer done()
	out := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out[name] = true
	}
	return out, rows.Err()
}
