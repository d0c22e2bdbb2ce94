package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/justestif/go-spotify-insights/internal/logging"
	"github.com/justestif/go-spotify-insights/internal/metrics"
)

// Gate hands out valid bearer tokens for sessions, refreshing expired ones.
// At most one refresh per session is in flight; concurrent callers wait for its result.
type Gate struct {
	store     *TokenStore
	refresher TokenRefresher
	group     singleflight.Group
	now       func() time.Time
	logger    *log.Logger
	metrics   *metrics.Metrics
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithClock sets the time source used for expiry checks.
func WithClock(now func() time.Time) GateOption {
	return func(g *Gate) {
		if now != nil {
			g.now = now
		}
	}
}

// WithLogger sets the gate's logger.
func WithLogger(l *log.Logger) GateOption {
	return func(g *Gate) {
		g.logger = logging.Component(l, "gate")
	}
}

// WithMetrics records refresh outcomes on m.
func WithMetrics(m *metrics.Metrics) GateOption {
	return func(g *Gate) {
		g.metrics = m
	}
}

// NewGate creates a Gate over store using refresher for expired tokens.
func NewGate(store *TokenStore, refresher TokenRefresher, opts ...GateOption) *Gate {
	g := &Gate{
		store:     store,
		refresher: refresher,
		now:       time.Now,
		logger:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Store returns the gate's token store.
func (g *Gate) Store() *TokenStore {
	return g.store
}

// Bearer returns a usable access token for the session.
//
// A token that has not expired is returned as is without any network call.
// An expired token is refreshed once; on failure the record is marked and
// every later call returns ErrAuthRequired until the user signs in again.
func (g *Gate) Bearer(ctx context.Context, sessionID string) (string, error) {
	record, err := g.usable(sessionID)
	if err != nil {
		return "", err
	}
	if record.Valid(g.now()) {
		return record.AccessToken, nil
	}

	// The refresh outlives a cancelled first caller so that waiters still get a result.
	v, err, _ := g.group.Do(sessionID, func() (any, error) {
		return g.refresh(context.WithoutCancel(ctx), sessionID)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Forget drops the session's token record.
func (g *Gate) Forget(sessionID string) {
	g.store.Delete(sessionID)
}

// usable loads the session's record, rejecting missing and failed ones.
func (g *Gate) usable(sessionID string) (TokenRecord, error) {
	record, ok := g.store.Get(sessionID)
	if !ok {
		return TokenRecord{}, ErrAuthRequired
	}
	if record.Error != "" {
		return TokenRecord{}, fmt.Errorf("%w: %s", ErrAuthRequired, record.Error)
	}
	return record, nil
}

func (g *Gate) refresh(ctx context.Context, sessionID string) (string, error) {
	// Re-check: a refresh that finished just before we joined the group already replaced the record.
	record, err := g.usable(sessionID)
	if err != nil {
		return "", err
	}
	if record.Valid(g.now()) {
		return record.AccessToken, nil
	}

	g.logger.Info("access token expired, refreshing")

	next, err := g.refresher.Refresh(ctx, record.RefreshToken)
	if err != nil {
		g.store.MarkFailed(sessionID, TokenErrorRefreshFailed)
		g.observe("failure")
		g.logger.Error("refreshing access token", "err", err)
		return "", fmt.Errorf("%w: %w", ErrAuthRequired, err)
	}

	if !g.store.Replace(sessionID, next) {
		// Signed out while the refresh was in flight.
		return "", ErrAuthRequired
	}

	g.observe("success")
	g.logger.Info("access token refreshed", "expires_at", next.ExpiresAt.Format(time.RFC3339))
	return next.AccessToken, nil
}

func (g *Gate) observe(result string) {
	if g.metrics != nil {
		g.metrics.TokenRefreshes.WithLabelValues(result).Inc()
	}
}
