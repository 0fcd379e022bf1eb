package apierr

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/yungbote/sessioncache/internal/domain/errs"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// FromError maps a coded error to its HTTP status.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	code := errs.CodeOf(err)
	switch code {
	case errs.CodeValidation:
		return New(http.StatusBadRequest, string(code), err)
	case errs.CodeNotFound:
		return New(http.StatusNotFound, string(code), err)
	case errs.CodeConflict:
		return New(http.StatusConflict, string(code), err)
	case errs.CodeRetryable, errs.CodeStoreFailure:
		return New(http.StatusServiceUnavailable, string(code), err)
	case errs.CodeScopeClosed:
		return New(http.StatusInternalServerError, string(code), err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return New(http.StatusGatewayTimeout, string(errs.CodeRetryable), err)
	}
	return New(http.StatusInternalServerError, string(errs.CodeInternal), err)
}
