package txrunner

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yungbote/sessioncache/internal/data/store"
	"github.com/yungbote/sessioncache/internal/data/uow"
	"github.com/yungbote/sessioncache/internal/domain"
	"github.com/yungbote/sessioncache/internal/domain/errs"
)

func TestMapErrorCodes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want errs.Code
	}{
		{"not found", store.NotFound(domain.ProductKey(1)), errs.CodeNotFound},
		{"gorm not found", fmt.Errorf("load: %w", gorm.ErrRecordNotFound), errs.CodeNotFound},
		{"store failure", store.Failure("apply", errors.New("disk")), errs.CodeStoreFailure},
		{"scope closed", errors.Join(uow.ErrScopeClosed, errors.New("commit")), errs.CodeScopeClosed},
		{"cancelled commit", errors.Join(store.ErrStoreFailure, context.Canceled), errs.CodeRetryable},
		{"unique violation", store.Failure("apply", &pgconn.PgError{Code: "23505"}), errs.CodeConflict},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, errs.CodeRetryable},
		{"rollback only", errors.Join(uow.ErrRollbackOnly, errors.New("x")), errs.CodeInternal},
		{"unknown", errors.New("boom"), errs.CodeInternal},
	}
	for _, tc := range cases {
		got := errs.CodeOf(MapError("op", tc.err))
		if got != tc.want {
			t.Fatalf("%s: want=%s got=%s", tc.name, tc.want, got)
		}
	}
}

func TestMapErrorPassesCodedErrorsThrough(t *testing.T) {
	in := errs.NewError(errs.CodeValidation, "repo.insert", "bad", nil)
	if out := MapError("outer", in); out != in {
		t.Fatalf("coded error must pass through unchanged")
	}
	if MapError("op", nil) != nil {
		t.Fatalf("nil must map to nil")
	}
}

func TestMapErrorKeepsSentinelsReachable(t *testing.T) {
	err := MapError("op", store.NotFound(domain.ProductKey(9)))
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("mapped error must still match store.ErrNotFound")
	}
}
