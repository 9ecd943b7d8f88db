package glucose

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	pkgerrors "github.com/yungbote/glucobridge-backend/internal/pkg/errors"
)

// MapError classifies storage failures onto the shared sentinels so callers can branch with
// errors.Is without knowing the driver.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w: %w", op, pkgerrors.ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w: %w", op, pkgerrors.ErrConflict, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w: %w", op, pkgerrors.ErrRetryable, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return fmt.Errorf("%s: %w: %w", op, pkgerrors.ErrConflict, err) // unique_violation
		case "40001", "40P01", "55P03":
			return fmt.Errorf("%s: %w: %w", op, pkgerrors.ErrRetryable, err) // serialization/deadlock/lock_not_available
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "duplicate key"), strings.Contains(msg, "unique constraint failed"):
		return fmt.Errorf("%s: %w: %w", op, pkgerrors.ErrConflict, err)
	case strings.Contains(msg, "deadlock"), strings.Contains(msg, "database is locked"):
		return fmt.Errorf("%s: %w: %w", op, pkgerrors.ErrRetryable, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
