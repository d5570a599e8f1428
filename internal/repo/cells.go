package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cun0/sensor-ingest/internal/domain"
)

// CellRepo keeps wide-column rows in Postgres as one tuple per cell.
// It stands in for Bigtable where no instance or emulator is available.
type CellRepo struct {
	pool  *pgxpool.Pool
	table string
}

func NewCellRepo(pool *pgxpool.Pool, table string) *CellRepo {
	return &CellRepo{pool: pool, table: pgx.Identifier{table}.Sanitize()}
}

func (r *CellRepo) EnsureSchema(ctx context.Context) error {
	q := `
	CREATE TABLE IF NOT EXISTS ` + r.table + ` (
		row_key    text        NOT NULL,
		family     text        NOT NULL,
		qualifier  text        NOT NULL,
		value      text        NOT NULL,
		written_at timestamptz NOT NULL DEFAULT now(),
		PRIMARY KEY (row_key, family, qualifier)
	);
`
	if _, err := r.pool.Exec(ctx, q); err != nil {
		return fmt.Errorf("ensure table %s: %w", r.table, err)
	}
	return nil
}

// InsertRow upserts all cells of row in one statement; a later write to the
// same cell replaces its value, as a newer Bigtable cell version would.
func (r *CellRepo) InsertRow(ctx context.Context, row domain.Row) error {
	if len(row.Columns) == 0 {
		return nil
	}

	sql, args := buildUpsertCellsSQL(r.table, row)
	if _, err := r.pool.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("postgres insert into %s: %w", r.table, err)
	}
	return nil
}

func buildUpsertCellsSQL(table string, row domain.Row) (string, []any) {
	var b strings.Builder
	// 4 params per cell.
	args := make([]any, 0, len(row.Columns)*4)

	b.WriteString(`
	INSERT INTO `)
	b.WriteString(table)
	b.WriteString(` (row_key, family, qualifier, value)
	VALUES
`)

	argPos := 1
	for i, c := range row.Columns {
		if i > 0 {
			b.WriteString(",\n")
		}

		b.WriteString(fmt.Sprintf("($%d,$%d,$%d,$%d)", argPos, argPos+1, argPos+2, argPos+3))
		args = append(args, row.Key, row.Family, c.Qualifier, c.Value)

		argPos += 4
	}

	b.WriteString(`
	ON CONFLICT (row_key, family, qualifier)
	DO UPDATE SET value = EXCLUDED.value, written_at = now();
`)

	return b.String(), args
}
