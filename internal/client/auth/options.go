package auth

import (
	"math/rand/v2"
	"time"

	"github.com/dmitrijs2005/gophstore/internal/logging"
)

const (
	DefaultRetryBase     = 100 * time.Millisecond
	DefaultRetryMax      = 5 * time.Second
	DefaultRetryAttempts = 5
)

type Option func(*TokenManager)

func WithLogger(l logging.Logger) Option {
	return func(m *TokenManager) {
		m.logger = l
	}
}

// WithClock replaces time.Now for expiry bookkeeping.
func WithClock(now func() time.Time) Option {
	return func(m *TokenManager) {
		m.now = now
	}
}

// WithRandom replaces the source of jitter. random(n) must return a value in
// [0, n).
func WithRandom(random func(n int64) int64) Option {
	return func(m *TokenManager) {
		m.random = random
	}
}

// WithRetry sets the backoff of transient exchange failures: the bound starts
// at base, doubles per attempt up to max, and at most attempts calls are made
// in total. Non-positive values keep the defaults.
func WithRetry(base, max time.Duration, attempts int) Option {
	return func(m *TokenManager) {
		if base > 0 {
			m.retryBase = base
		}
		if max > 0 {
			m.retryMax = max
		}
		if attempts > 0 {
			m.retryAttempts = attempts
		}
	}
}

func defaultRandom(n int64) int64 {
	return rand.Int64N(n)
}
