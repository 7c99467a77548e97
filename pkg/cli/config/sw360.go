package config

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/sw360ctl/pkg/infra/sw360"
	"github.com/m-mizutani/sw360ctl/pkg/utils/logging"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// SW360 holds connection settings of the SW360 server. Values not given by
// flag or environment variable are taken from the TOML file in ConfigFile.
type SW360 struct {
	ConfigFile string        `toml:"-"`
	URL        string        `toml:"url"`
	Token      string        `toml:"token" masq:"secret"`
	OAuth2     bool          `toml:"oauth2"`
	User       string        `toml:"user"`
	Password   string        `toml:"password" masq:"secret"`
	Timeout    time.Duration `toml:"-"`
}

// Flags returns CLI flags for SW360 configuration
func (c *SW360) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "TOML file with SW360 connection settings",
			Destination: &c.ConfigFile,
			Sources:     cli.EnvVars("SW360CTL_CONFIG"),
		},
		&cli.StringFlag{
			Name:        "url",
			Usage:       "SW360 server URL, e.g. https://sw360.example.com/",
			Destination: &c.URL,
			Sources:     cli.EnvVars("SW360_URL"),
		},
		&cli.StringFlag{
			Name:        "token",
			Usage:       "SW360 REST token, or OAuth2 access token with --oauth2",
			Destination: &c.Token,
			Sources:     cli.EnvVars("SW360_TOKEN"),
		},
		&cli.BoolFlag{
			Name:        "oauth2",
			Usage:       "Send the token as OAuth2 bearer token",
			Destination: &c.OAuth2,
			Sources:     cli.EnvVars("SW360_OAUTH2"),
		},
		&cli.StringFlag{
			Name:        "user",
			Usage:       "SW360 user for fetching an OAuth2 token when no token is given",
			Destination: &c.User,
			Sources:     cli.EnvVars("SW360_USER"),
		},
		&cli.StringFlag{
			Name:        "password",
			Usage:       "SW360 password for fetching an OAuth2 token",
			Destination: &c.Password,
			Sources:     cli.EnvVars("SW360_PASSWORD"),
		},
		&cli.DurationFlag{
			Name:        "timeout",
			Usage:       "HTTP request timeout",
			Value:       60 * time.Second,
			Destination: &c.Timeout,
			Sources:     cli.EnvVars("SW360_TIMEOUT"),
		},
	}
}

// LoadFile fills empty settings from the TOML file at path
func (c *SW360) LoadFile(path string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
	}

	var file SW360
	if err := toml.Unmarshal(data, &file); err != nil {
		return goerr.Wrap(err, "failed to parse config file", goerr.V("path", path))
	}

	if c.URL == "" {
		c.URL = file.URL
	}
	if c.Token == "" {
		c.Token = file.Token
	}
	if !c.OAuth2 {
		c.OAuth2 = file.OAuth2
	}
	if c.User == "" {
		c.User = file.User
	}
	if c.Password == "" {
		c.Password = file.Password
	}

	return nil
}

// NewClient builds a SW360 client from the configuration. Without a token but
// with user and password, an OAuth2 token is fetched first.
func (c *SW360) NewClient(ctx context.Context) (*sw360.Client, error) {
	if c.ConfigFile != "" {
		if err := c.LoadFile(c.ConfigFile); err != nil {
			return nil, err
		}
	}

	logger := logging.From(ctx)
	logger.Debug("SW360 configuration", "config", c)

	if c.URL == "" {
		return nil, goerr.New("SW360 URL is required (--url or SW360_URL)")
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}

	token, oauth2 := c.Token, c.OAuth2
	if token == "" {
		if c.User == "" || c.Password == "" {
			return nil, goerr.New("SW360 token or user and password are required")
		}

		t, err := sw360.FetchToken(ctx, c.URL, c.User, c.Password, httpClient)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to fetch OAuth2 token", goerr.V("user", c.User))
		}
		logger.Debug("OAuth2 token fetched", "user", c.User, "expiry", t.Expiry)
		token, oauth2 = t.AccessToken, true
	}

	client, err := sw360.New(c.URL, token,
		sw360.WithHTTPClient(httpClient),
		sw360.WithOAuth2(oauth2),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create SW360 client", goerr.V("url", c.URL))
	}

	return client, nil
}
