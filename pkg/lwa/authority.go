package lwa

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// assumedLifetime is used when the server reports no usable expiry at all.
const assumedLifetime = time.Hour

// Authority keeps a usable access token available by exchanging a refresh
// token against the authorization server ahead of each token's expiration.
//
// A dedicated goroutine, started by New, owns the whole token lifecycle:
// exchange, retry with backoff on transient failures, silent re-refresh
// before expiry, and classification of server rejections. Everything the
// rest of the application sees goes through snapshot accessors or observer
// notifications.
type Authority struct {
	cfg           Config
	poster        Poster
	logger        *slog.Logger
	onTokenUpdate func(refreshToken string)

	ctx      context.Context
	cancel   context.CancelFunc
	doneCh   chan struct{}
	stopOnce sync.Once

	// mu guards the token state and the observer set. Observer callbacks
	// are invoked while mu is held so a notification always reports a
	// consistent snapshot; see Observer for the re-entrancy rules.
	mu           sync.Mutex
	state        State
	accessToken  string
	refreshToken string
	expiresAt    time.Time
	refreshAt    time.Time
	observers    []Observer

	// retry is only touched by the refresh goroutine.
	retry *backoff
}

// Option customizes an Authority at construction.
type Option func(*Authority)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Authority) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithTokenUpdateFunc registers fn to be called from the refresh goroutine
// whenever the server rotates the refresh token, with the new value. Use it
// to persist rotations so a restart does not resume from a stale token.
func WithTokenUpdateFunc(fn func(refreshToken string)) Option {
	return func(a *Authority) {
		a.onTokenUpdate = fn
	}
}

// New validates cfg, creates the Authority in StateUninitialized and starts
// its refresh goroutine. On any validation failure no Authority is created
// and no background activity is started.
func New(cfg Config, poster Poster, opts ...Option) (*Authority, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if poster == nil {
		return nil, ErrNilPoster
	}
	cfg.applyDefaults()

	ctx, cancel := context.WithCancel(context.Background())
	a := &Authority{
		cfg:          cfg,
		poster:       poster,
		logger:       slog.Default(),
		ctx:          ctx,
		cancel:       cancel,
		doneCh:       make(chan struct{}),
		state:        StateUninitialized,
		refreshToken: cfg.RefreshToken,
		retry:        newBackoff(cfg.BackoffFloor, cfg.BackoffCap, cfg.BackoffFactor),
	}
	for _, opt := range opts {
		opt(a)
	}

	go a.refreshLoop()
	return a, nil
}

// Shutdown stops the refresh goroutine and waits for it to exit. Any
// in-flight exchange is cancelled through its context. After Shutdown
// returns no further notifications are delivered. Safe to call more than
// once; subsequent calls are no-ops.
func (a *Authority) Shutdown() {
	a.stopOnce.Do(func() {
		a.cancel()
		<-a.doneCh
	})
}

// State returns the current phase.
func (a *Authority) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// AccessToken returns the current access token and whether it is valid.
// The token is only valid while the Authority is in StateRefreshed.
func (a *Authority) AccessToken() (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.accessToken, a.state == StateRefreshed
}

// RefreshToken returns the most recent refresh token, reflecting any
// rotation performed by the server.
func (a *Authority) RefreshToken() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.refreshToken
}

// refreshLoop is the refresh goroutine: attempt an exchange, evaluate the
// outcome, sleep until the next retry or refresh deadline, repeat. It is
// the only mutator of the token state.
func (a *Authority) refreshLoop() {
	defer close(a.doneCh)

	for {
		tr, err := a.exchange()
		switch {
		case err == nil:
			a.applyToken(tr)
			a.retry.Reset()
			if !a.sleepUntilRefresh() {
				return
			}

		case isFatal(err):
			a.logger.Error("authorization server permanently rejected credentials", "error", err)
			a.setState(StateUnrecoverableError)
			return

		default:
			if a.ctx.Err() != nil {
				return
			}
			a.logger.Warn("token exchange failed, will retry", "error", err)
			if !a.sleepRetry(a.retry.Next()) {
				return
			}
		}
	}
}

// exchange performs one refresh-token grant against the token endpoint.
func (a *Authority) exchange() (*TokenResponse, error) {
	a.mu.Lock()
	refreshToken := a.refreshToken
	a.mu.Unlock()

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
		"client_id":     {a.cfg.ClientID},
		"client_secret": {a.cfg.ClientSecret},
	}

	// Attempt IDs correlate our logs with the server-side request_id.
	attemptID := ulid.Make().String()

	status, body, err := a.poster.Post(a.ctx, a.cfg.TokenEndpoint, form)
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}

	if status != http.StatusOK {
		err := decodeErrorResponse(status, body)
		a.logger.Debug("token exchange rejected",
			"attempt_id", attemptID, "status", status, "error", err)
		return nil, err
	}

	tr, err := decodeTokenResponse(body)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("token exchange succeeded",
		"attempt_id", attemptID, "expires_in", tr.ExpiresIn)
	return tr, nil
}

// applyToken stores a successful exchange result, computes the expiry and
// refresh deadlines and transitions to StateRefreshed. When the state was
// already StateRefreshed the tokens update without a notification.
func (a *Authority) applyToken(tr *TokenResponse) {
	now := time.Now()
	expiresAt := tr.expiry(now)
	if expiresAt.IsZero() {
		a.logger.Warn("server reported no token expiry, assuming default lifetime",
			"lifetime", assumedLifetime)
		expiresAt = now.Add(assumedLifetime)
	}

	var rotated string
	margin := time.Duration(a.cfg.RefreshMargin * float64(expiresAt.Sub(now)))

	a.mu.Lock()
	a.accessToken = tr.AccessToken
	if tr.RefreshToken != "" && tr.RefreshToken != a.refreshToken {
		a.refreshToken = tr.RefreshToken
		rotated = tr.RefreshToken
	}
	a.expiresAt = expiresAt
	a.refreshAt = expiresAt.Add(-margin)
	a.transitionLocked(StateRefreshed)
	a.mu.Unlock()

	if rotated != "" && a.onTokenUpdate != nil {
		a.onTokenUpdate(rotated)
	}
}

// setState transitions to s and notifies observers if the state changed.
func (a *Authority) setState(s State) {
	a.mu.Lock()
	a.transitionLocked(s)
	a.mu.Unlock()
}

// transitionLocked performs the state change and fan-out. Caller holds mu.
func (a *Authority) transitionLocked(s State) {
	if a.state == s {
		return
	}
	a.state = s
	a.logger.Info("auth state changed", "state", s.String())
	for _, o := range a.observers {
		o.OnAuthStateChange(s)
	}
}

// expireIfDue flips StateRefreshed to StateExpired once the absolute expiry
// instant has passed without a successful exchange.
func (a *Authority) expireIfDue() {
	a.mu.Lock()
	if a.state == StateRefreshed && !time.Now().Before(a.expiresAt) {
		a.transitionLocked(StateExpired)
	}
	a.mu.Unlock()
}

// sleepUntilRefresh waits for the pre-expiry refresh deadline. Returns
// false when shutdown interrupted the wait.
func (a *Authority) sleepUntilRefresh() bool {
	a.mu.Lock()
	refreshAt := a.refreshAt
	a.mu.Unlock()

	return a.sleep(time.Until(refreshAt))
}

// sleepRetry waits for the backoff delay d, waking early at the token's
// expiry instant so the StateExpired transition is not delayed by a long
// backoff. Returns false when shutdown interrupted the wait.
func (a *Authority) sleepRetry(d time.Duration) bool {
	a.mu.Lock()
	state := a.state
	expiresAt := a.expiresAt
	a.mu.Unlock()

	if state == StateRefreshed {
		if untilExpiry := time.Until(expiresAt); untilExpiry < d {
			d = untilExpiry
		}
	}

	if !a.sleep(d) {
		return false
	}
	a.expireIfDue()
	return true
}

// sleep waits for d, interruptible by shutdown. Returns false if shutdown
// was signalled.
func (a *Authority) sleep(d time.Duration) bool {
	if d <= 0 {
		return a.ctx.Err() == nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return true
	case <-a.ctx.Done():
		return false
	}
}
