package sw360

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

type oauth2ClientCredential struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// FetchToken obtains an OAuth2 access token for user from the SW360
// authorization server at baseURL. The client id and secret are read from the
// client management endpoint (first registered client), then a password grant
// is run. httpClient may be nil.
func FetchToken(ctx context.Context, baseURL, user, password string, httpClient *http.Client) (*oauth2.Token, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	base := strings.TrimRight(baseURL, "/") + "/"

	cred, err := fetchClientCredential(ctx, base+"authorization/client-management", user, password, httpClient)
	if err != nil {
		return nil, err
	}

	tokenURL := base + "authorization/oauth/token"
	cfg := &oauth2.Config{
		ClientID:     cred.ClientID,
		ClientSecret: cred.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	token, err := cfg.PasswordCredentialsToken(ctx, user, password)
	if err != nil {
		e := wrapError(err, tokenURL, "unable to get oauth2 token")
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			e.Response = retrieveErr.Response
			e.setBody(retrieveErr.Body)
		}
		return nil, e
	}

	return token, nil
}

func fetchClientCredential(ctx context.Context, endpoint, user, password string, httpClient *http.Client) (*oauth2ClientCredential, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, wrapError(err, endpoint, "failed to create request")
	}
	req.SetBasicAuth(user, password)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, wrapError(err, endpoint, "unable to connect to oauth2 service")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, NewError(resp, endpoint, "unable to read oauth2 client credentials")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapError(err, endpoint, "failed to read response body")
	}

	var creds []oauth2ClientCredential
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, wrapError(err, endpoint, "failed to decode oauth2 client credentials")
	}
	if len(creds) == 0 {
		return nil, &Error{Message: "no oauth2 client registered", URL: endpoint}
	}

	return &creds[0], nil
}
