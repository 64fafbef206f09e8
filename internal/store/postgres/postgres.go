// Package postgres implements store.Store on a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/alecgard/taskboard/internal/store"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres SQLSTATE codes mapped to store.ConstraintError.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// Store provides transactional access to the relational schema.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// WithTx runs fn inside a single database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(t pgx.Tx) error {
		return fn(&tx{q: t})
	})
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// PoolStats returns connection pool statistics for the metrics collector.
func (s *Store) PoolStats() (total, idle, acquired, maxConns int32) {
	st := s.pool.Stat()
	return st.TotalConns(), st.IdleConns(), st.AcquiredConns(), st.MaxConns()
}

// tx implements store.Tx on an open pgx transaction.
type tx struct {
	q pgx.Tx
}

// mapErr translates driver errors into store errors, keeping the original
// error wrapped for logging.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return &store.ConstraintError{Kind: store.ConstraintUnique, Constraint: pgErr.ConstraintName, Err: err}
		case codeForeignKeyViolation:
			return &store.ConstraintError{Kind: store.ConstraintForeignKey, Constraint: pgErr.ConstraintName, Err: err}
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// execOne runs a statement that must affect exactly one row.
func (x *tx) execOne(ctx context.Context, op, query string, args ...any) error {
	tag, err := x.q.Exec(ctx, query, args...)
	if err != nil {
		return mapErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
