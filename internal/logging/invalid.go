package logging

import (
	"context"
	"io"
	"log/slog"

	"github.com/dmitrijs2005/trustkeeper/internal/common"
)

// Invalid logs err as a warning together with its status code and returns
// it wrapped in a common.StatusError, so call sites can write
//
//	return logging.Invalid(ctx, s.logger, http.StatusForbidden, common.ErrTokenMismatch)
func Invalid(ctx context.Context, l Logger, code int, err error) error {
	l.Warn(ctx, err.Error(), "status", code)
	return common.NewStatusError(code, err)
}

// Failure is Invalid for internal faults: it logs at error level.
func Failure(ctx context.Context, l Logger, code int, err error) error {
	l.Error(ctx, err.Error(), "status", code)
	return common.NewStatusError(code, err)
}

// NewDiscard returns a logger that drops everything. Useful as a default
// when a component is constructed without one.
func NewDiscard() Logger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
