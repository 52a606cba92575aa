package lwa

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenResponse represents a successful OAuth2 token endpoint response per
// RFC 6749.
type TokenResponse struct {
	// AccessToken is the short-lived bearer token.
	AccessToken string `json:"access_token"`

	// RefreshToken is the replacement refresh token. Servers may rotate it
	// on every exchange; empty means the current one remains valid.
	RefreshToken string `json:"refresh_token,omitempty"`

	// TokenType is "bearer" for LWA.
	TokenType string `json:"token_type"`

	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int `json:"expires_in"`
}

// ErrorResponse represents the OAuth2 error body returned by the token
// endpoint on a failed exchange.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	RequestID        string `json:"request_id"`
}

// decodeTokenResponse parses a successful exchange body. A body without an
// access token is malformed and treated as a decode failure.
func decodeTokenResponse(body []byte) (*TokenResponse, error) {
	var tr TokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("decoding token response: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("token response missing access_token")
	}
	return &tr, nil
}

// decodeErrorResponse turns a non-200 exchange response into an error. A
// decodable OAuth2 error body yields a typed *OAuth2Error so the caller can
// classify it; anything else yields a generic (retryable) error.
func decodeErrorResponse(status int, body []byte) error {
	var er ErrorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error != "" {
		return &OAuth2Error{
			StatusCode:  status,
			Code:        er.Error,
			Description: er.ErrorDescription,
			RequestID:   er.RequestID,
		}
	}

	return fmt.Errorf("token request failed with status %d: %s", status, http.StatusText(status))
}

// expiry computes the absolute expiration instant of the access token.
//
// LWA always supplies expires_in, but some OAuth2 servers omit it and issue
// JWT access tokens instead; in that case fall back to the token's exp claim.
// The claim is read without signature verification since the token is never
// trusted locally, only forwarded. Returns the zero time when no expiry can
// be determined.
func (tr *TokenResponse) expiry(now time.Time) time.Time {
	if tr.ExpiresIn > 0 {
		return now.Add(time.Duration(tr.ExpiresIn) * time.Second)
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tr.AccessToken, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
