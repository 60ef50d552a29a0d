package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/medcourse-service/internal/persistence"
)

const (
	sqlstateSerializationFailure = "40001"
	sqlstateDeadlockDetected     = "40P01"

	defaultTxAttempts = 3
	txRetryBaseDelay  = 25 * time.Millisecond
)

// Transaction wraps Transactional commands in a pgx transaction carried via
// context. Serialization failures and deadlocks are retried with a doubling
// backoff up to maxAttempts.
func Transaction(pool *pgxpool.Pool, maxAttempts int, logger *zap.Logger) Behavior {
	if maxAttempts <= 0 {
		maxAttempts = defaultTxAttempts
	}
	return func(name string, next Handler) Handler {
		return func(ctx context.Context, req any) (any, error) {
			transactional, ok := req.(Transactional)
			if !ok || !transactional.RequiresTransaction() || pool == nil {
				return next(ctx, req)
			}

			var lastErr error
			delay := txRetryBaseDelay
			for attempt := 1; attempt <= maxAttempts; attempt++ {
				result, err := runInTx(ctx, pool, req, next)
				if err == nil {
					return result, nil
				}
				lastErr = err
				if !retryableTxError(err) || attempt == maxAttempts {
					return nil, err
				}
				if logger != nil {
					logger.Warn("retrying transaction",
						zap.String("command", name),
						zap.Int("attempt", attempt),
						zap.Error(err),
					)
				}
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(delay):
				}
				delay *= 2
			}
			return nil, lastErr
		}
	}
}

func runInTx(ctx context.Context, pool *pgxpool.Pool, req any, next Handler) (any, error) {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}

	result, err := next(persistence.WithTx(ctx, tx), req)
	if err != nil {
		_ = tx.Rollback(ctx)
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

func retryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == sqlstateSerializationFailure || pgErr.Code == sqlstateDeadlockDetected
}
