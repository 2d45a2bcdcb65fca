package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"socialdash/internal/models"
)

// ReadOnlyExecutor runs model-generated SQL. The pool must be built from the
// read-only credential with PoolConfig.ReadOnly set; each call additionally
// runs inside a read-only transaction on its own acquired connection.
type ReadOnlyExecutor struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewReadOnlyExecutor wraps a read-only pool.
func NewReadOnlyExecutor(pool *pgxpool.Pool, logger *zap.Logger) *ReadOnlyExecutor {
	return &ReadOnlyExecutor{pool: pool, logger: logger.Named("readonly")}
}

// Execute runs sql and returns every row with columns in select order.
// The connection is released on every path.
func (e *ReadOnlyExecutor) Execute(ctx context.Context, sql string) ([]models.Row, error) {
	conn, err := e.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire read-only connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("failed to begin read-only transaction: %w", err)
	}
	defer func() {
		// Nothing is ever committed.
		_ = tx.Rollback(context.Background())
	}()

	start := time.Now()
	// Exec mode sends one unnamed statement: no statement cache churn for
	// one-off queries, and multi-statement strings are rejected by the server.
	rows, err := tx.Query(ctx, sql, pgx.QueryExecModeExec)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	var result []models.Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		for i, v := range values {
			values[i] = NormalizeValue(v)
		}
		result = append(result, models.NewRow(columns, values))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	e.logger.Debug("Read-only query executed",
		zap.Int("rows", len(result)),
		zap.Duration("elapsed", time.Since(start)))

	if result == nil {
		result = []models.Row{}
	}
	return result, nil
}
