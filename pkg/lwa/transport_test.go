package lwa

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPPosterPost(t *testing.T) {
	t.Parallel()

	var gotContentType string
	var gotForm url.Values

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(validTokenBody(60)))
	}))
	defer srv.Close()

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {"rt"},
		"client_id":     {"cid"},
		"client_secret": {"secret"},
	}

	poster := NewHTTPPoster()
	status, body, err := poster.Post(context.Background(), srv.URL, form)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, validTokenBody(60), string(body))

	require.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	require.Equal(t, form, gotForm)
}

func TestHTTPPosterReturnsErrorBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(errorBody("invalid_client")))
	}))
	defer srv.Close()

	poster := NewHTTPPoster()
	status, body, err := poster.Post(context.Background(), srv.URL, url.Values{})
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, status)
	require.JSONEq(t, errorBody("invalid_client"), string(body))
}

func TestHTTPPosterHonoursContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	poster := NewHTTPPoster()
	_, _, err := poster.Post(ctx, "http://127.0.0.1:0", url.Values{})
	require.Error(t, err)
}
