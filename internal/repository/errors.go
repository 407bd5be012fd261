package repository

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	"gatekeeper/internal/domain/tickets"
)

const (
	pgSerializationFailure = pq.ErrorCode("40001")
	pgDeadlockDetected     = pq.ErrorCode("40P01")
	pgLockNotAvailable     = pq.ErrorCode("55P03")
	pgCheckViolation       = pq.ErrorCode("23514")
)

// translateError maps postgres failures the domain cares about onto domain errors.
func translateError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
		return fmt.Errorf("%w: %w", tickets.ErrConflict, err)
	case pgCheckViolation:
		return fmt.Errorf("%w: constraint %s: %w", tickets.ErrMalformedRow, pqErr.Constraint, err)
	}

	return err
}
