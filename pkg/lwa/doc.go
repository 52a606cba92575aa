/*
Package lwa keeps a usable OAuth2 access token available by autonomously
exchanging a long-lived refresh token against an authorization server such
as Login with Amazon.

# Overview

An Authority owns a background refresh goroutine for its entire lifetime.
The goroutine exchanges the refresh token for an access token, schedules the
next exchange ahead of the token's expiration, retries transient failures
with capped multiplicative backoff, and gives up permanently only when the
server reports that the credentials themselves are invalid.

	authority, err := lwa.New(lwa.Config{
		ClientID:      clientID,
		ClientSecret:  clientSecret,
		RefreshToken:  refreshToken,
		TokenEndpoint: "https://api.amazon.com/auth/o2/token",
	}, lwa.NewHTTPPoster())
	if err != nil {
		return err
	}
	defer authority.Shutdown()

# States

The Authority moves through four observable states:

  - StateUninitialized: no token obtained yet, exchanges in progress
  - StateRefreshed: a valid access token is available
  - StateExpired: the token lapsed before a replacement arrived; still retrying
  - StateUnrecoverableError: credentials permanently rejected; terminal

While StateRefreshed, replacement exchanges run silently before expiry:
observers see no transition when a refresh succeeds in time, only when the
absolute expiry instant passes without one.

# Observers

Register an Observer to follow transitions. Registration synchronously
delivers the state current at that moment, so an observer can never miss
the state it subscribed under:

	authority.AddObserver(myObserver)

All operational failures surface exclusively through these transitions;
no Authority method returns errors for transient exchange failures.

# oauth2 interop

Authority.TokenSource adapts the Authority to golang.org/x/oauth2:

	client := oauth2.NewClient(ctx, authority.TokenSource())
*/
package lwa
