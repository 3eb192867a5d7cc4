package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/sethvargo/go-retry"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// backoff returns the schedule of one refresh: exponential from retryBase,
// capped at retryMax, with retryAttempts-1 waits and full jitter applied to
// every bound.
func (m *TokenManager) backoff() retry.Backoff {
	b := retry.NewExponential(m.retryBase)
	b = retry.WithCappedDuration(m.retryMax, b)
	b = retry.WithMaxRetries(uint64(m.retryAttempts-1), b)
	return m.withFullJitter(b)
}

// withFullJitter draws every delay uniformly from [0, bound].
func (m *TokenManager) withFullJitter(next retry.Backoff) retry.Backoff {
	return retry.BackoffFunc(func() (time.Duration, bool) {
		bound, stop := next.Next()
		if stop {
			return 0, true
		}
		return time.Duration(m.random(int64(bound) + 1)), false
	})
}

// isFatal reports credential failures that no retry can fix.
func isFatal(err error) bool {
	if common.IsFatalCredential(err) {
		return true
	}
	var typed *common.Error
	if errors.As(err, &typed) {
		// classified already and not fatal
		return false
	}

	switch status.Code(err) {
	case codes.Unauthenticated, codes.PermissionDenied, codes.NotFound, codes.InvalidArgument:
		return true
	}
	return false
}
