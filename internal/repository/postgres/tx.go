package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"cfpboard/internal/domain"
)

// Postgres error codes this package reacts to.
const (
	pqUniqueViolation    = "23505"
	pqExclusionViolation = "23P01"
	pqSerializationFail  = "40001"
	pqDeadlockDetected   = "40P01"
)

// txRetries is how many times a transaction is re-executed from scratch after
// a serialization failure or deadlock before the error is surfaced.
const txRetries = 3

// isConflictErr reports whether err is a uniqueness or exclusion violation.
func isConflictErr(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation || pqErr.Code == pqExclusionViolation
	}
	return false
}

// isRetryableErr reports whether err is a serialization failure the whole
// transaction may be retried on.
func isRetryableErr(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqSerializationFail || pqErr.Code == pqDeadlockDetected
	}
	return false
}

// withTx runs fn inside a transaction, committing on nil error and rolling
// back otherwise. On a serialization failure or deadlock the whole fn is
// re-executed from scratch, never partially replayed. Domain sentinel errors
// pass through unwrapped so callers can errors.Is on them.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	var err error
	for attempt := 0; attempt <= txRetries; attempt++ {
		err = runTx(ctx, db, fn)
		if err == nil || !isRetryableErr(err) {
			return err
		}
	}
	return fmt.Errorf("transaction retries exhausted: %w", err)
}

func runTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// mapConflict converts uniqueness/exclusion violations to ErrConflict and
// leaves everything else untouched.
func mapConflict(err error) error {
	if isConflictErr(err) {
		return domain.ErrConflict
	}
	return err
}
