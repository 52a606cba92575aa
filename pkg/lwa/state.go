package lwa

// State is the externally observable phase of an Authority.
//
// The zero value is StateUninitialized, the phase every Authority starts in
// before the first successful token exchange.
type State int

const (
	// StateUninitialized means no access token has been obtained yet.
	StateUninitialized State = iota

	// StateRefreshed means a valid access token is available.
	StateRefreshed

	// StateExpired means the last access token's lifetime ran out before a
	// replacement could be obtained. The Authority keeps retrying.
	StateExpired

	// StateUnrecoverableError means the authorization server permanently
	// rejected the credentials. Terminal; no further exchanges are attempted.
	StateUnrecoverableError
)

// String returns the lowercase snake_case name of the state.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRefreshed:
		return "refreshed"
	case StateExpired:
		return "expired"
	case StateUnrecoverableError:
		return "unrecoverable_error"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further state transitions can occur.
func (s State) Terminal() bool {
	return s == StateUnrecoverableError
}
