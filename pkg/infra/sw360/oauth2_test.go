package sw360_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/sw360ctl/pkg/infra/sw360"
)

func newAuthServer(t *testing.T, clients string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/authorization/client-management", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "admin@sw360.org" || pass != "12345" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(clients))
	})
	mux.HandleFunc("/authorization/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		id, secret, ok := r.BasicAuth()
		if !ok || id != "trusted-sw360-client" || secret != "sw360-secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "password" || r.PostForm.Get("username") != "admin@sw360.org" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_request"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"ACCESS","token_type":"bearer","refresh_token":"REFRESH","expires_in":3599}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestFetchToken(t *testing.T) {
	server := newAuthServer(t, `[{"client_id":"trusted-sw360-client","client_secret":"sw360-secret"}]`)

	token, err := sw360.FetchToken(context.Background(), server.URL, "admin@sw360.org", "12345", server.Client())
	gt.NoError(t, err)
	gt.Value(t, token.AccessToken).Equal("ACCESS")
	gt.Value(t, token.RefreshToken).Equal("REFRESH")
}

func TestFetchToken_Errors(t *testing.T) {
	t.Run("wrong password", func(t *testing.T) {
		server := newAuthServer(t, `[]`)

		_, err := sw360.FetchToken(context.Background(), server.URL, "admin@sw360.org", "wrong", server.Client())
		gt.Error(t, err)
		gt.True(t, errors.Is(err, sw360.ErrUnauthorized))
	})

	t.Run("no registered client", func(t *testing.T) {
		server := newAuthServer(t, `[]`)

		_, err := sw360.FetchToken(context.Background(), server.URL, "admin@sw360.org", "12345", server.Client())
		gt.Error(t, err)
		gt.String(t, err.Error()).Contains("no oauth2 client registered")
	})

	t.Run("unknown client", func(t *testing.T) {
		server := newAuthServer(t, `[{"client_id":"other","client_secret":"x"}]`)

		_, err := sw360.FetchToken(context.Background(), server.URL, "admin@sw360.org", "12345", server.Client())
		gt.Error(t, err)

		var sw360Err *sw360.Error
		gt.True(t, errors.As(err, &sw360Err))
		gt.Value(t, sw360Err.Message).Equal("unable to get oauth2 token")
	})
}
