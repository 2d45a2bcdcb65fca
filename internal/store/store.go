// Package store is the PostgreSQL persistence layer for posts and topics.
//
// Two pools are used: the primary pool backs the dashboard and writes, while a
// separate read-only pool (see ReadOnlyExecutor) backs model-generated queries.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Page defaults shared by the list endpoints.
const (
	DefaultPageSize = 20
	MaxPageSize     = 500

	SortAsc  = "ASC"
	SortDesc = "DESC"
)

// Store reads and writes dashboard data through the primary pool.
type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// New creates a Store.
func New(pool *pgxpool.Pool, logger *zap.Logger) *Store {
	return &Store{pool: pool, logger: logger.Named("store")}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("primary database: %w", err)
	}
	return nil
}

func normalizeOrder(order string) string {
	if strings.EqualFold(strings.TrimSpace(order), SortAsc) {
		return SortAsc
	}
	return SortDesc
}
