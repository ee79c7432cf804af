package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	dbgen "github.com/noah-isme/backend-komisi/internal/db/gen"
)

// Beginner starts transactions. *pgxpool.Pool satisfies it.
type Beginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// Store pairs the generated queries with the pool they run on.
type Store struct {
	*dbgen.Queries
	Pool Beginner
}

// New builds a Store over pool.
func New(pool interface {
	Beginner
	dbgen.DBTX
}) *Store {
	return &Store{Queries: dbgen.New(pool), Pool: pool}
}

// InTx runs fn with queries bound to a new transaction. fn's error rolls back; nil commits.
func (s *Store) InTx(ctx context.Context, fn func(*dbgen.Queries) error) error {
	if s == nil || s.Pool == nil || s.Queries == nil {
		return errors.New("repo: store not configured")
	}
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("repo: begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(s.Queries.WithTx(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo: commit: %w", err)
	}
	return nil
}
