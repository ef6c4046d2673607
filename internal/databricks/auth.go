package databricks

// auth.go implements the two supported credential modes: a static personal
// access token, and OAuth machine-to-machine client credentials. The OAuth
// token is fetched lazily on first use and cached until shortly before
// expiry, mirroring the workspace SDK's lazy authentication.

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// tokenSource yields a bearer token for workspace requests.
type tokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// staticToken is a personal access token.
type staticToken string

func (t staticToken) AccessToken(context.Context) (string, error) {
	return string(t), nil
}

// oauthTokenSource exchanges client credentials for a workspace token at the
// /oidc/v1/token endpoint.
type oauthTokenSource struct {
	tokenURL     string
	clientID     string
	clientSecret string
	httpClient   *http.Client

	mu      sync.Mutex
	token   string
	expires time.Time
}

// expirySlack is subtracted from the reported lifetime so a token is never
// used in its final seconds.
const expirySlack = 30 * time.Second

func newOAuthTokenSource(host, clientID, clientSecret string, httpClient *http.Client) *oauthTokenSource {
	return &oauthTokenSource{
		tokenURL:     host + "/oidc/v1/token",
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   httpClient,
	}
}

func (o *oauthTokenSource) AccessToken(ctx context.Context) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.token != "" && time.Now().Before(o.expires) {
		return o.token, nil
	}

	form := url.Values{
		"grant_type": {"client_credentials"},
		"scope":      {"all-apis"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(o.clientID, o.clientSecret)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		// Body intentionally omitted: token endpoint errors can echo
		// request parameters.
		return "", fmt.Errorf("token endpoint returned HTTP %d", resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned an empty token")
	}

	o.token = payload.AccessToken
	o.expires = time.Now().Add(time.Duration(payload.ExpiresIn)*time.Second - expirySlack)
	return o.token, nil
}
