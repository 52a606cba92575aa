package lwa

import (
	"errors"
	"fmt"
)

// OAuth2 error codes per RFC 6749. LWA reports these in the "error" field of
// a failed token exchange response.
const (
	ErrorCodeInvalidRequest         = "invalid_request"
	ErrorCodeInvalidClient          = "invalid_client"
	ErrorCodeInvalidGrant           = "invalid_grant"
	ErrorCodeUnauthorizedClient     = "unauthorized_client"
	ErrorCodeUnsupportedGrantType   = "unsupported_grant_type"
	ErrorCodeInvalidScope           = "invalid_scope"
	ErrorCodeServerError            = "server_error"
	ErrorCodeTemporarilyUnavailable = "temporarily_unavailable"
)

// fatalCodes is the fixed set of server error codes that mean the request can
// never succeed as given: the refresh token or client credentials themselves
// are rejected, not a transient server condition. Any code outside this set
// is treated as retryable, since misclassifying a transient error as fatal
// would strand the caller with no access token.
var fatalCodes = map[string]struct{}{
	ErrorCodeInvalidRequest:       {},
	ErrorCodeInvalidClient:        {},
	ErrorCodeInvalidGrant:         {},
	ErrorCodeUnauthorizedClient:   {},
	ErrorCodeUnsupportedGrantType: {},
}

// OAuth2Error represents an OAuth2 error response from the token endpoint
// per RFC 6749, extended with LWA's request identifier.
type OAuth2Error struct {
	// StatusCode is the HTTP status code the error arrived with.
	StatusCode int

	// Code is the OAuth2 error code (e.g. "invalid_grant").
	Code string

	// Description is the human-readable description from the server.
	Description string

	// RequestID is the server-assigned identifier for the failed request,
	// useful when raising issues against the authorization server.
	RequestID string
}

// Error implements the error interface.
func (e *OAuth2Error) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("%s: %s (request_id=%s)", e.Code, e.Description, e.RequestID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Fatal reports whether this error code identifies a permanently invalid
// request. Fatal errors drive the Authority into StateUnrecoverableError.
func (e *OAuth2Error) Fatal() bool {
	_, ok := fatalCodes[e.Code]
	return ok
}

// isFatal reports whether err carries a fatal OAuth2 error code. Transport
// errors, undecodable bodies and unrecognized codes are all non-fatal.
func isFatal(err error) bool {
	var oe *OAuth2Error
	return errors.As(err, &oe) && oe.Fatal()
}
