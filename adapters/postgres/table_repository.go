// Package postgres loads the population table from a PostgreSQL table.
package postgres

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"socialgap/adapters/coercer"
	"socialgap/domain/population"
	apperrors "socialgap/internal/errors"
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// TableRepository reads every row of one table into a population table
type TableRepository struct {
	db      *sqlx.DB
	table   string
	coercer *coercer.TypeCoercer
	logger  *zap.Logger
}

// Connect opens a postgres connection and verifies it
func Connect(ctx context.Context, url string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to connect to postgres", err)
	}
	return db, nil
}

// NewTableRepository creates a repository over table, optionally schema
// qualified ("public.poblacion")
func NewTableRepository(db *sqlx.DB, table string, config coercer.CoercionConfig, logger *zap.Logger) (*TableRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := QuoteTable(table); err != nil {
		return nil, err
	}
	return &TableRepository{
		db:      db,
		table:   table,
		coercer: coercer.NewTypeCoercer(config, logger),
		logger:  logger.Named("postgres"),
	}, nil
}

// Describe names the source for logs
func (r *TableRepository) Describe() string {
	return "postgres:" + r.table
}

// Load selects the whole table and coerces it
func (r *TableRepository) Load(ctx context.Context) (*population.Table, error) {
	quoted, err := QuoteTable(r.table)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryxContext(ctx, "SELECT * FROM "+quoted)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to query "+r.table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, apperrors.DatabaseError("failed to read columns of "+r.table, err)
	}

	var records []map[string]any
	for rows.Next() {
		record := make(map[string]any, len(columns))
		if err := rows.MapScan(record); err != nil {
			return nil, apperrors.DatabaseError("failed to scan row of "+r.table, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.DatabaseError("failed to iterate "+r.table, err)
	}

	table, stats, err := r.coercer.CoerceMaps(columns, records)
	if err != nil {
		return nil, apperrors.IngestionError("coerce "+r.table, err)
	}
	r.logger.Info("population loaded",
		zap.String("source", r.Describe()),
		zap.Int("rows", stats.RowsKept),
		zap.Int("dropped", stats.RowsRead-stats.RowsKept))
	return table, nil
}

// QuoteTable validates and quotes a table name with an optional schema
func QuoteTable(table string) (string, error) {
	parts := strings.Split(table, ".")
	if len(parts) > 2 {
		return "", apperrors.ConfigInvalid(fmt.Sprintf("invalid table name %q", table))
	}
	quoted := make([]string, len(parts))
	for i, part := range parts {
		if !identifier.MatchString(part) {
			return "", apperrors.ConfigInvalid(fmt.Sprintf("invalid table name %q", table))
		}
		quoted[i] = pq.QuoteIdentifier(part)
	}
	return strings.Join(quoted, "."), nil
}
