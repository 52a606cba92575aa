package lwa

import (
	"errors"
	"time"
)

// Tunable defaults. These are safety parameters, not protocol contracts: the
// backoff must grow and reset, and the refresh deadline must land strictly
// before expiry, but the exact values can be adjusted per deployment.
const (
	// DefaultRefreshMargin is the fraction of an access token's lifetime
	// reserved as headroom: the refresh attempt starts this far before expiry.
	DefaultRefreshMargin = 0.2

	// DefaultBackoffFloor is the initial delay between retryable failures.
	DefaultBackoffFloor = 500 * time.Millisecond

	// DefaultBackoffCap bounds the retry delay growth.
	DefaultBackoffCap = 60 * time.Second

	// DefaultBackoffFactor is the multiplicative growth applied per
	// consecutive retryable failure.
	DefaultBackoffFactor = 2.0
)

// Config carries the credentials and endpoint for the refresh-token grant,
// plus optional scheduling tunables. The four credential fields are required.
type Config struct {
	// ClientID identifies the client application to the authorization server.
	ClientID string

	// ClientSecret authenticates the client application.
	ClientSecret string

	// RefreshToken is the long-lived credential exchanged for access tokens.
	// The server may rotate it; the Authority always uses the newest value.
	RefreshToken string

	// TokenEndpoint is the authorization server's token URL,
	// e.g. https://api.amazon.com/auth/o2/token for LWA.
	TokenEndpoint string

	// RefreshMargin is the fraction of the token lifetime reserved as
	// pre-expiry headroom, in (0, 1). Zero selects DefaultRefreshMargin.
	RefreshMargin float64

	// BackoffFloor, BackoffCap and BackoffFactor tune the retry delay.
	// Zero values select the defaults.
	BackoffFloor  time.Duration
	BackoffCap    time.Duration
	BackoffFactor float64
}

var (
	ErrMissingClientID      = errors.New("lwa: config missing client id")
	ErrMissingClientSecret  = errors.New("lwa: config missing client secret")
	ErrMissingRefreshToken  = errors.New("lwa: config missing refresh token")
	ErrMissingTokenEndpoint = errors.New("lwa: config missing token endpoint")
	ErrNilPoster            = errors.New("lwa: poster must not be nil")
)

// validate checks the required credential fields.
func (c *Config) validate() error {
	switch {
	case c.ClientID == "":
		return ErrMissingClientID
	case c.ClientSecret == "":
		return ErrMissingClientSecret
	case c.RefreshToken == "":
		return ErrMissingRefreshToken
	case c.TokenEndpoint == "":
		return ErrMissingTokenEndpoint
	}
	return nil
}

// applyDefaults fills unset tunables in place.
func (c *Config) applyDefaults() {
	if c.RefreshMargin <= 0 || c.RefreshMargin >= 1 {
		c.RefreshMargin = DefaultRefreshMargin
	}
	if c.BackoffFloor <= 0 {
		c.BackoffFloor = DefaultBackoffFloor
	}
	if c.BackoffCap <= 0 {
		c.BackoffCap = DefaultBackoffCap
	}
	if c.BackoffFactor <= 1 {
		c.BackoffFactor = DefaultBackoffFactor
	}
}
