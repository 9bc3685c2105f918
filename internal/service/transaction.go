package service

import (
	"context"
	"errors"

	"pazuzu-registry/internal/pkg/logger"
	"pazuzu-registry/internal/repository/unitofwork"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error codes that a fresh attempt can resolve. Unique and foreign
// key violations show up when a concurrent transaction won the race; the
// retry then fails the regular checks with a proper domain error.
var retryableCodes = map[string]struct{}{
	"40001": {}, // serialization_failure
	"40P01": {}, // deadlock_detected
	"23505": {}, // unique_violation
	"23503": {}, // foreign_key_violation
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		_, ok := retryableCodes[pgErr.Code]
		return ok
	}
	return false
}

type transactor struct {
	uowFactory unitofwork.RepositoryFactory
	maxRetries int
	logger     logger.ILogger
}

// write runs fn in a transaction and commits it, retrying conflicts.
func (t *transactor) write(ctx context.Context, fn func(uow unitofwork.UnitOfWork) error) error {
	return t.retry(ctx, fn, true)
}

// read runs fn in a transaction that is always rolled back, so every query
// in fn sees the same snapshot.
func (t *transactor) read(ctx context.Context, fn func(uow unitofwork.UnitOfWork) error) error {
	return t.retry(ctx, fn, false)
}

func (t *transactor) retry(ctx context.Context, fn func(uow unitofwork.UnitOfWork) error, commit bool) error {
	for attempt := 0; ; attempt++ {
		err := t.run(ctx, fn, commit)
		if err == nil || attempt >= t.maxRetries || !isRetryable(err) {
			return err
		}
		t.logger.Warn("TRANSACTION", "Retrying after conflicting concurrent transaction", map[string]interface{}{
			"attempt": attempt + 1,
			"error":   err.Error(),
		})
	}
}

func (t *transactor) run(ctx context.Context, fn func(uow unitofwork.UnitOfWork) error, commit bool) error {
	uow := t.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = uow.Rollback()
			panic(p)
		}
	}()

	if err := fn(uow); err != nil {
		_ = uow.Rollback()
		return err
	}
	if !commit {
		return uow.Rollback()
	}
	return uow.Commit()
}
