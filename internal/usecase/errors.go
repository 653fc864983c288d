package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorCode string

const (
	ErrorInvalidInput ErrorCode = "INVALID_INPUT"
	ErrorBusy         ErrorCode = "BUSY"
	ErrorRateLimited  ErrorCode = "RATE_LIMITED"
	ErrorUpstream     ErrorCode = "UPSTREAM_ERROR"
	ErrorCanceled     ErrorCode = "CANCELED"
)

// Error is returned by Submit when a submission is rejected. Remote failures
// are absorbed by the engine and only ever reach the transcript.
type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}

// IsRejected reports whether err is a Submit rejection with the given code.
func IsRejected(err error, code ErrorCode) bool {
	var uerr *Error
	return errors.As(err, &uerr) && uerr.Code == code
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}

// classify maps a generation failure to the code that drives the retry loop.
// Generators that do not expose a status code are rate limited when their
// error text mentions 429.
func classify(ctx context.Context, err error) ErrorCode {
	if ctx.Err() != nil {
		return ErrorCanceled
	}
	if status, ok := upstreamStatusCode(err); ok {
		if status == http.StatusTooManyRequests {
			return ErrorRateLimited
		}
		return ErrorUpstream
	}
	if strings.Contains(err.Error(), "429") {
		return ErrorRateLimited
	}
	return ErrorUpstream
}
