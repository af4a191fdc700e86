package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// Upsert describes a keyed bulk write into one table.
type Upsert struct {
	Table   string   // target table, optionally schema-qualified
	Columns []string // columns present in every row
	Keys    []string // unique constraint columns
	Update  []string // columns overwritten on conflict; nil means every non-key column
}

func (u Upsert) validate() error {
	if len(u.Columns) == 0 {
		return eris.New("db: upsert: no columns")
	}
	if len(u.Keys) == 0 {
		return eris.New("db: upsert: no conflict keys")
	}
	return nil
}

func (u Upsert) updateColumns() []string {
	if u.Update != nil {
		return u.Update
	}
	keys := make(map[string]bool, len(u.Keys))
	for _, k := range u.Keys {
		keys[k] = true
	}
	var out []string
	for _, c := range u.Columns {
		if !keys[c] {
			out = append(out, c)
		}
	}
	return out
}

func (u Upsert) stageTable() string {
	return "_stage_" + strings.ReplaceAll(u.Table, ".", "_")
}

// mergeSQL moves staged rows into the target table.
func (u Upsert) mergeSQL() string {
	cols := identList(u.Columns)
	var sb strings.Builder
	sb.WriteString("INSERT INTO " + tableIdent(u.Table) + " (" + cols + ") SELECT " + cols)
	sb.WriteString(" FROM " + pgx.Identifier{u.stageTable()}.Sanitize())
	sb.WriteString(" ON CONFLICT (" + identList(u.Keys) + ")")

	update := u.updateColumns()
	if len(update) == 0 {
		sb.WriteString(" DO NOTHING")
		return sb.String()
	}
	sb.WriteString(" DO UPDATE SET ")
	for i, c := range update {
		if i > 0 {
			sb.WriteString(", ")
		}
		id := pgx.Identifier{c}.Sanitize()
		sb.WriteString(id + " = EXCLUDED." + id)
	}
	return sb.String()
}

// BulkUpsert writes rows in one transaction: they are copied into a
// transaction-scoped staging table, then merged with INSERT ... ON CONFLICT.
func BulkUpsert(ctx context.Context, pool Pool, u Upsert, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := u.validate(); err != nil {
		return 0, err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "db: upsert: begin")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	stage := pgx.Identifier{u.stageTable()}
	create := "CREATE TEMP TABLE " + stage.Sanitize() + " (LIKE " + tableIdent(u.Table) + " INCLUDING DEFAULTS) ON COMMIT DROP"
	if _, err := tx.Exec(ctx, create); err != nil {
		return 0, eris.Wrapf(err, "db: upsert: stage %s", u.Table)
	}
	if _, err := tx.CopyFrom(ctx, stage, u.Columns, pgx.CopyFromRows(rows)); err != nil {
		return 0, eris.Wrapf(err, "db: upsert: copy into stage for %s", u.Table)
	}
	tag, err := tx.Exec(ctx, u.mergeSQL())
	if err != nil {
		return 0, eris.Wrapf(err, "db: upsert: merge into %s", u.Table)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "db: upsert: commit")
	}
	return tag.RowsAffected(), nil
}

func tableIdent(table string) string {
	if schema, name, ok := strings.Cut(table, "."); ok {
		return pgx.Identifier{schema, name}.Sanitize()
	}
	return pgx.Identifier{table}.Sanitize()
}

func identList(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}
