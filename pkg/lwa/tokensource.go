package lwa

import (
	"fmt"

	"golang.org/x/oauth2"
)

// TokenSource returns an oauth2.TokenSource view of the Authority so it can
// back an oauth2.Transport or any other consumer of the standard token
// source interface. Token never triggers an exchange itself; it only reports
// what the refresh goroutine has already obtained.
func (a *Authority) TokenSource() oauth2.TokenSource {
	return tokenSource{a}
}

type tokenSource struct {
	a *Authority
}

func (ts tokenSource) Token() (*oauth2.Token, error) {
	ts.a.mu.Lock()
	defer ts.a.mu.Unlock()

	if ts.a.state != StateRefreshed {
		return nil, fmt.Errorf("lwa: no valid access token (state %s)", ts.a.state)
	}

	return &oauth2.Token{
		AccessToken:  ts.a.accessToken,
		RefreshToken: ts.a.refreshToken,
		TokenType:    "Bearer",
		Expiry:       ts.a.expiresAt,
	}, nil
}
