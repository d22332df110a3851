package predictor

import (
	"context"
	"fmt"
	"strings"

	"placementpulse/internal/errors"
	"placementpulse/internal/types"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultTable is the table PostgresLoader reads when none is configured.
const DefaultTable = "placement_records"

// Querier is the subset of pgxpool.Pool the loader needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresLoader reads placement records from a PostgreSQL table using the
// dataset's long column names. NULLs read as 0.
type PostgresLoader struct {
	db    Querier
	pool  *pgxpool.Pool
	table string
}

// NewPostgresLoader wraps an existing connection.
func NewPostgresLoader(db Querier, table string) *PostgresLoader {
	if table == "" {
		table = DefaultTable
	}
	return &PostgresLoader{db: db, table: table}
}

// OpenPostgres connects to databaseURL and returns a loader owning the pool.
func OpenPostgres(ctx context.Context, databaseURL, table string) (*PostgresLoader, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, errors.NewNetworkError(errors.ErrCodeDatasetLoadFailed, "Failed to connect to database", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.NewNetworkError(errors.ErrCodeDatasetLoadFailed, "Failed to ping database", err)
	}
	l := NewPostgresLoader(pool, table)
	l.pool = pool
	return l, nil
}

// Close releases the pool when the loader opened it.
func (l *PostgresLoader) Close() {
	if l.pool != nil {
		l.pool.Close()
	}
}

func (l *PostgresLoader) query() string {
	cols := make([]string, columnCount)
	for i, name := range longColumnNames {
		cols[i] = fmt.Sprintf("COALESCE(%s::float8, 0)", pgx.Identifier{name}.Sanitize())
	}
	return fmt.Sprintf("SELECT %s FROM %s",
		strings.Join(cols, ", "),
		pgx.Identifier(strings.Split(l.table, ".")).Sanitize())
}

func (l *PostgresLoader) Load(ctx context.Context) (Dataset, error) {
	rows, err := l.db.Query(ctx, l.query())
	if err != nil {
		return Dataset{}, fmt.Errorf("failed to query placement records: %w", err)
	}
	records, err := pgx.CollectRows(rows, scanRecord)
	if err != nil {
		return Dataset{}, fmt.Errorf("failed to read placement records: %w", err)
	}
	return Dataset{Source: SourcePostgres, Records: records}, nil
}

func scanRecord(row pgx.CollectableRow) (types.PlacementRecord, error) {
	var values [columnCount]float64
	dest := make([]any, columnCount)
	for i := range values {
		dest[i] = &values[i]
	}
	if err := row.Scan(dest...); err != nil {
		return types.PlacementRecord{}, err
	}
	var rec types.PlacementRecord
	for i, v := range values {
		column(i).set(&rec, v)
	}
	return rec, nil
}
