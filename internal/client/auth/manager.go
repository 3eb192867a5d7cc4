package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/dmitrijs2005/gophstore/internal/logging"
	"github.com/dmitrijs2005/gophstore/internal/wire"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/singleflight"
)

const refreshKey = "token"

// The background refresh fires at a fraction of the token lifetime drawn
// from [refreshFrom, refreshFrom+refreshSpread).
const (
	refreshFrom   = 0.90
	refreshSpread = 0.05
	fractionSteps = 1 << 16
)

// Exchanger performs the unary secret-for-token call.
type Exchanger interface {
	ExchangeToken(ctx context.Context, secret string) (*wire.TokenResponse, error)
}

type ExchangerFunc func(ctx context.Context, secret string) (*wire.TokenResponse, error)

func (f ExchangerFunc) ExchangeToken(ctx context.Context, secret string) (*wire.TokenResponse, error) {
	return f(ctx, secret)
}

type cachedToken struct {
	value     string
	expiresAt time.Time
}

type TokenManager struct {
	exchanger Exchanger
	secret    string
	logger    logging.Logger

	now           func() time.Time
	random        func(n int64) int64
	afterFunc     func(d time.Duration, f func()) *time.Timer
	retryBase     time.Duration
	retryMax      time.Duration
	retryAttempts int

	// refreshCtx outlives the callers of a refresh so that one caller giving
	// up does not fail the exchange for everybody else.
	refreshCtx context.Context
	group      singleflight.Group

	mu         sync.Mutex
	token      cachedToken
	timer      *time.Timer
	closed     bool
	stopParent func() bool
}

// NewTokenManager returns a manager for secret. Cancelling ctx closes it.
// No exchange happens until the first Token call.
func NewTokenManager(ctx context.Context, exchanger Exchanger, secret string, opts ...Option) *TokenManager {
	m := &TokenManager{
		exchanger:     exchanger,
		secret:        secret,
		logger:        logging.Nop(),
		now:           time.Now,
		random:        defaultRandom,
		afterFunc:     time.AfterFunc,
		retryBase:     DefaultRetryBase,
		retryMax:      DefaultRetryMax,
		retryAttempts: DefaultRetryAttempts,
		refreshCtx:    context.WithoutCancel(ctx),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("module", "auth")

	stop := context.AfterFunc(ctx, m.Close)
	m.mu.Lock()
	m.stopParent = stop
	m.mu.Unlock()
	return m
}

// Token returns the cached token while it is valid and otherwise waits for
// a refresh, joining one that is already running.
func (m *TokenManager) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return "", common.NewError(common.CodeClosed, "token manager closed")
	}
	if m.now().Before(m.token.expiresAt) {
		v := m.token.value
		m.mu.Unlock()
		return v, nil
	}
	m.mu.Unlock()

	return m.await(ctx, m.group.DoChan(refreshKey, m.refresh))
}

// Refresh exchanges the secret again even if a refresh is already running,
// for instance after the server rejected the cached token. The result is the
// freshest token installed, which is not necessarily the one this call got.
func (m *TokenManager) Refresh(ctx context.Context) (string, error) {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return "", common.NewError(common.CodeClosed, "token manager closed")
	}

	m.group.Forget(refreshKey)
	return m.await(ctx, m.group.DoChan(refreshKey, m.refresh))
}

// Close stops background refreshes. A refresh already running completes but
// schedules nothing. Close is idempotent.
func (m *TokenManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.closed = true
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	if m.stopParent != nil {
		m.stopParent()
	}
	m.logger.Debug(context.Background(), "token manager closed")
}

func (m *TokenManager) await(ctx context.Context, ch <-chan singleflight.Result) (string, error) {
	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// refresh runs as the single flight of refreshKey.
func (m *TokenManager) refresh() (any, error) {
	ctx := m.refreshCtx

	var resp *wire.TokenResponse
	attempt := 0
	err := retry.Do(ctx, m.backoff(), func(ctx context.Context) error {
		attempt++
		r, err := m.exchanger.ExchangeToken(ctx, m.secret)
		if err == nil {
			resp = r
			return nil
		}
		if isFatal(err) {
			m.logger.Warn(ctx, "token exchange rejected", "error", err)
			return err
		}
		m.logger.Warn(ctx, "token exchange failed", "attempt", attempt, "error", err)
		return retry.RetryableError(err)
	})
	if err != nil {
		return "", err
	}

	issuedAt := m.now()
	lifetime, err := tokenLifetime(resp, issuedAt)
	if err != nil {
		return "", err
	}
	return m.install(resp.Token, issuedAt.Add(lifetime)), nil
}

// install caches value unless the cached token expires later, and returns
// whichever token ends up cached.
func (m *TokenManager) install(value string, expiresAt time.Time) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ctx := context.Background()
	if !expiresAt.After(m.token.expiresAt) {
		m.logger.Debug(ctx, "discarding stale token", "expiresAt", expiresAt, "cachedExpiresAt", m.token.expiresAt)
		return m.token.value
	}

	m.token = cachedToken{value: value, expiresAt: expiresAt}
	m.logger.Debug(ctx, "token refreshed", "expiresAt", expiresAt)

	if !m.closed {
		m.scheduleLocked(expiresAt.Sub(m.now()))
	}
	return value
}

func (m *TokenManager) scheduleLocked(remaining time.Duration) {
	if m.timer != nil {
		m.timer.Stop()
	}
	fraction := refreshFrom + refreshSpread*float64(m.random(fractionSteps))/fractionSteps
	delay := time.Duration(float64(remaining) * fraction)
	m.timer = m.afterFunc(delay, m.background)
}

func (m *TokenManager) background() {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return
	}

	res := <-m.group.DoChan(refreshKey, m.refresh)
	if res.Err != nil {
		m.logger.Error(m.refreshCtx, "background token refresh failed", "error", res.Err)
	}
}

// tokenLifetime prefers the declared TTL and falls back to the exp claim of
// a JWT token.
func tokenLifetime(resp *wire.TokenResponse, now time.Time) (time.Duration, error) {
	if resp.TTLSeconds > 0 {
		return resp.TTL(), nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(resp.Token, claims); err != nil {
		return 0, common.WrapError(common.CodeInvalidArgument, err, "token has no lifetime")
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		if err == nil {
			err = errors.New("missing exp claim")
		}
		return 0, common.WrapError(common.CodeInvalidArgument, err, "token has no lifetime")
	}

	lifetime := exp.Sub(now)
	if lifetime <= 0 {
		return 0, common.NewError(common.CodeInvalidArgument, "token expired at %s", exp.Time)
	}
	return lifetime, nil
}
