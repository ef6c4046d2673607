// Package databricks is the remote adapter for the workspace: it uploads CSV
// bytes to a Unity Catalog volume via the Files API and runs statements
// against a SQL warehouse via the Statement Execution API.
//
// The adapter is constructed from an explicit Config; it never reads the
// environment. Failures are classified into core.AdapterError kinds so the
// caller can tell an auth problem from a transient network fault from a bad
// statement. Nothing is retried automatically, and credentials never appear
// in errors or logs.
package databricks

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bkuan/databrick-apps-csv-uploader-app/internal/core"
	"golang.org/x/sync/semaphore"
)

// DefaultTimeout bounds a single HTTP round trip to the workspace.
const DefaultTimeout = 60 * time.Second

// DefaultMaxConcurrent caps in-flight remote calls per client.
const DefaultMaxConcurrent = 5

// Config carries resolved workspace settings. Exactly one of Token or the
// ClientID/ClientSecret pair must be set.
type Config struct {
	// Host is the workspace URL, e.g. https://adb-123.4.azuredatabricks.net.
	Host string
	// Token is a personal access token.
	Token string
	// ClientID and ClientSecret select OAuth machine-to-machine auth.
	ClientID     string
	ClientSecret string
	// WarehouseHTTPPath is the SQL warehouse HTTP path, e.g.
	// /sql/1.0/warehouses/abc123. The trailing segment is the warehouse ID.
	WarehouseHTTPPath string
	// Timeout bounds each HTTP round trip. Zero means DefaultTimeout.
	Timeout time.Duration
	// MaxConcurrent caps in-flight remote calls. Zero means DefaultMaxConcurrent.
	MaxConcurrent int
}

// Validate checks that the config can produce a usable client.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return fmt.Errorf("databricks host is required")
	}
	if c.Token == "" && (c.ClientID == "" || c.ClientSecret == "") {
		return fmt.Errorf("either a personal access token or an OAuth client ID/secret pair is required")
	}
	return nil
}

// Client talks to one Databricks workspace.
type Client struct {
	host        string
	warehouseID string
	httpClient  *http.Client
	auth        tokenSource
	// sem caps concurrent remote calls so a burst of uploads cannot
	// exhaust sockets; in-memory editing is never blocked by it.
	sem *semaphore.Weighted
}

// NewClient builds a client from resolved configuration.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}

	host := strings.TrimRight(cfg.Host, "/")
	httpClient := &http.Client{Timeout: timeout}

	var auth tokenSource
	if cfg.Token != "" {
		auth = staticToken(cfg.Token)
	} else {
		auth = newOAuthTokenSource(host, cfg.ClientID, cfg.ClientSecret, httpClient)
	}

	return &Client{
		host:        host,
		warehouseID: warehouseIDFromPath(cfg.WarehouseHTTPPath),
		httpClient:  httpClient,
		auth:        auth,
		sem:         semaphore.NewWeighted(int64(maxConcurrent)),
	}, nil
}

// warehouseIDFromPath extracts the warehouse ID from an HTTP path like
// /sql/1.0/warehouses/abc123.
func warehouseIDFromPath(httpPath string) string {
	httpPath = strings.TrimRight(strings.TrimSpace(httpPath), "/")
	if httpPath == "" {
		return ""
	}
	parts := strings.Split(httpPath, "/")
	return parts[len(parts)-1]
}

// do sends one authenticated request and returns the response body for
// 2xx statuses. Other statuses are classified into a core.AdapterError.
func (c *Client) do(ctx context.Context, op, method, url string, contentType string, body []byte) ([]byte, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, &core.AdapterError{Kind: core.AdapterNetwork, Op: op, Detail: "cancelled waiting for a request slot", Err: err}
	}
	defer c.sem.Release(1)

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, &core.AdapterError{Kind: core.AdapterNetwork, Op: op, Detail: "build request", Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	token, err := c.auth.AccessToken(ctx)
	if err != nil {
		return nil, &core.AdapterError{Kind: core.AdapterAuth, Op: op, Detail: "acquire access token", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &core.AdapterError{Kind: core.AdapterNetwork, Op: op, Detail: "request failed", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &core.AdapterError{Kind: core.AdapterNetwork, Op: op, Detail: "read response", Err: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return respBody, nil
	}
	return nil, classifyStatus(op, resp.StatusCode, respBody)
}

// classifyStatus maps an HTTP error status to an AdapterError kind.
func classifyStatus(op string, status int, body []byte) *core.AdapterError {
	detail := fmt.Sprintf("HTTP %d", status)
	if msg := extractErrorMessage(body); msg != "" {
		detail = fmt.Sprintf("HTTP %d: %s", status, msg)
	}

	switch status {
	case http.StatusUnauthorized:
		return &core.AdapterError{Kind: core.AdapterAuth, Op: op, Detail: detail}
	case http.StatusForbidden:
		return &core.AdapterError{Kind: core.AdapterPermission, Op: op, Detail: detail}
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return &core.AdapterError{Kind: core.AdapterNetwork, Op: op, Detail: detail}
	}
	return &core.AdapterError{Kind: core.AdapterRemote, Op: op, Detail: detail}
}
