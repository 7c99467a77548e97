package config_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/sw360ctl/pkg/cli/config"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sw360ctl.toml")
	gt.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestSW360_LoadFile(t *testing.T) {
	path := writeConfigFile(t, `
url = "https://file.example.com/"
token = "file-token"
oauth2 = true
user = "admin@sw360.org"
password = "12345"
`)

	t.Run("empty settings are filled", func(t *testing.T) {
		var cfg config.SW360
		gt.NoError(t, cfg.LoadFile(path))
		gt.Value(t, cfg.URL).Equal("https://file.example.com/")
		gt.Value(t, cfg.Token).Equal("file-token")
		gt.True(t, cfg.OAuth2)
		gt.Value(t, cfg.User).Equal("admin@sw360.org")
		gt.Value(t, cfg.Password).Equal("12345")
	})

	t.Run("flags take precedence", func(t *testing.T) {
		cfg := config.SW360{URL: "https://flag.example.com/", Token: "flag-token"}
		gt.NoError(t, cfg.LoadFile(path))
		gt.Value(t, cfg.URL).Equal("https://flag.example.com/")
		gt.Value(t, cfg.Token).Equal("flag-token")
	})

	t.Run("missing file", func(t *testing.T) {
		var cfg config.SW360
		gt.Error(t, cfg.LoadFile(filepath.Join(t.TempDir(), "none.toml")))
	})

	t.Run("broken file", func(t *testing.T) {
		var cfg config.SW360
		gt.Error(t, cfg.LoadFile(writeConfigFile(t, "url = ")))
	})
}

func TestSW360_NewClient(t *testing.T) {
	ctx := context.Background()

	t.Run("token", func(t *testing.T) {
		cfg := config.SW360{URL: "https://sw360.example.com", Token: "tok"}
		client, err := cfg.NewClient(ctx)
		gt.NoError(t, err)
		gt.Value(t, client.URL()).Equal("https://sw360.example.com/")
		gt.Value(t, client.Headers().Get("Authorization")).Equal("Token tok")
	})

	t.Run("bearer token from file", func(t *testing.T) {
		cfg := config.SW360{ConfigFile: writeConfigFile(t, "url = \"https://sw360.example.com/\"\ntoken = \"tok\"\noauth2 = true\n")}
		client, err := cfg.NewClient(ctx)
		gt.NoError(t, err)
		gt.Value(t, client.Headers().Get("Authorization")).Equal("Bearer tok")
	})

	t.Run("missing url", func(t *testing.T) {
		cfg := config.SW360{Token: "tok"}
		_, err := cfg.NewClient(ctx)
		gt.Error(t, err)
	})

	t.Run("missing credentials", func(t *testing.T) {
		cfg := config.SW360{URL: "https://sw360.example.com/", User: "admin@sw360.org"}
		_, err := cfg.NewClient(ctx)
		gt.Error(t, err)
	})
}

func TestSW360_NewClient_OAuth2(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/authorization/client-management", func(w http.ResponseWriter, r *http.Request) {
		if user, pass, ok := r.BasicAuth(); !ok || user != "admin@sw360.org" || pass != "12345" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"client_id":"trusted-sw360-client","client_secret":"sw360-secret"}]`))
	})
	mux.HandleFunc("/authorization/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"ACCESS","token_type":"bearer","expires_in":3599}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	cfg := config.SW360{URL: server.URL, User: "admin@sw360.org", Password: "12345"}
	client, err := cfg.NewClient(context.Background())
	gt.NoError(t, err)
	gt.Value(t, client.Headers().Get("Authorization")).Equal("Bearer ACCESS")

	t.Run("rejected user", func(t *testing.T) {
		cfg := config.SW360{URL: server.URL, User: "admin@sw360.org", Password: "wrong"}
		_, err := cfg.NewClient(context.Background())
		gt.Error(t, err)
	})
}
