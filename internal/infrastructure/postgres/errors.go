package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/emed-onboarding/internal/domain"
)

// Restricciones con significado de dominio (nombres definidos en las migraciones).
const (
	constraintAdminEmail = "portal_admins_email_key"
)

// mapPostgresError traduce errores de PostgreSQL a errores de dominio. op describe la operación.
func mapPostgresError(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		if pgErr.ConstraintName == constraintAdminEmail {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("%s: %s: %w", op, pgErr.ConstraintName, domain.ErrConflict)
	case pgerrcode.ForeignKeyViolation:
		return fmt.Errorf("%s: %s: %w", op, pgErr.ConstraintName, domain.ErrNotFound)
	case pgerrcode.CheckViolation, pgerrcode.InvalidTextRepresentation:
		return fmt.Errorf("%s: %s: %w", op, pgErr.ConstraintName, domain.ErrInvalidInput)
	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected, pgerrcode.LockNotAvailable:
		return fmt.Errorf("%s: transaction conflict: %w", op, err)
	case pgerrcode.QueryCanceled:
		return fmt.Errorf("%s: query canceled: %w", op, err)
	default:
		return fmt.Errorf("%s: postgres error [%s]: %w", op, pgErr.Code, err)
	}
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
