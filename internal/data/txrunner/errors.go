package txrunner

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yungbote/sessioncache/internal/data/store"
	"github.com/yungbote/sessioncache/internal/data/uow"
	"github.com/yungbote/sessioncache/internal/domain/errs"
)

// MapError maps store, scope and driver failures onto error codes. Errors
// that already carry a code pass through untouched.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var coded *errs.Error
	if errors.As(err, &coded) {
		return err
	}
	switch {
	case errors.Is(err, uow.ErrScopeClosed):
		return errs.Wrap(errs.CodeScopeClosed, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return errs.Wrap(errs.CodeRetryable, op, err)
	case errors.Is(err, store.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return errs.Wrap(errs.CodeNotFound, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return errs.Wrap(errs.CodeConflict, op, err) // unique_violation
		case "40001", "40P01", "55P03":
			return errs.Wrap(errs.CodeRetryable, op, err) // serialization/deadlock/lock_not_available
		}
	}

	if errors.Is(err, store.ErrStoreFailure) {
		return errs.Wrap(errs.CodeStoreFailure, op, err)
	}
	if errors.Is(err, uow.ErrRollbackOnly) {
		return errs.Wrap(errs.CodeInternal, op, err)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "duplicate key"), strings.Contains(msg, "unique constraint"):
		return errs.Wrap(errs.CodeConflict, op, err)
	case strings.Contains(msg, "deadlock"), strings.Contains(msg, "serialization"):
		return errs.Wrap(errs.CodeRetryable, op, err)
	default:
		return errs.Wrap(errs.CodeInternal, op, err)
	}
}
