package lwa

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestDecodeTokenResponse(t *testing.T) {
	t.Parallel()

	t.Run("valid body", func(t *testing.T) {
		tr, err := decodeTokenResponse([]byte(validTokenBody(3600)))
		require.NoError(t, err)
		require.Equal(t, "Atza|IQEBLjAsAhQ3yD47Jkj09BfU_qgNk4", tr.AccessToken)
		require.Equal(t, "Atzr|IQEBLzAtAhUAibmh-1N0EVztZJofMx", tr.RefreshToken)
		require.Equal(t, "bearer", tr.TokenType)
		require.Equal(t, 3600, tr.ExpiresIn)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := decodeTokenResponse([]byte("not json"))
		require.Error(t, err)
	})

	t.Run("missing access token", func(t *testing.T) {
		_, err := decodeTokenResponse([]byte(`{"expires_in": 60}`))
		require.Error(t, err)
		require.Contains(t, err.Error(), "access_token")
	})
}

func TestDecodeErrorResponse(t *testing.T) {
	t.Parallel()

	t.Run("oauth2 error body", func(t *testing.T) {
		err := decodeErrorResponse(http.StatusBadRequest, []byte(errorBody("invalid_grant")))

		var oe *OAuth2Error
		require.ErrorAs(t, err, &oe)
		require.Equal(t, http.StatusBadRequest, oe.StatusCode)
		require.Equal(t, "invalid_grant", oe.Code)
		require.Equal(t, "invalid request", oe.Description)
		require.Equal(t, "test-request-id", oe.RequestID)
	})

	t.Run("undecodable body is retryable", func(t *testing.T) {
		err := decodeErrorResponse(http.StatusBadGateway, []byte("<html>bad gateway</html>"))
		require.Error(t, err)
		require.False(t, isFatal(err))
	})

	t.Run("empty error code is retryable", func(t *testing.T) {
		err := decodeErrorResponse(http.StatusInternalServerError, []byte(`{}`))
		require.Error(t, err)
		require.False(t, isFatal(err))
	})
}

func TestTokenResponseExpiry(t *testing.T) {
	t.Parallel()

	now := time.Now()

	t.Run("from expires_in", func(t *testing.T) {
		tr := &TokenResponse{AccessToken: "tok", ExpiresIn: 3600}
		require.Equal(t, now.Add(time.Hour), tr.expiry(now))
	})

	t.Run("falls back to jwt exp claim", func(t *testing.T) {
		exp := now.Add(30 * time.Minute).Truncate(time.Second)
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"exp": exp.Unix(),
		}).SignedString([]byte("test-key"))
		require.NoError(t, err)

		tr := &TokenResponse{AccessToken: signed}
		require.True(t, tr.expiry(now).Equal(exp))
	})

	t.Run("opaque token without expires_in", func(t *testing.T) {
		tr := &TokenResponse{AccessToken: "Atza|opaque"}
		require.True(t, tr.expiry(now).IsZero())
	})
}
