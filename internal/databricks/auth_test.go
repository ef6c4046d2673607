package databricks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOAuthTokenSourceFetchAndCache(t *testing.T) {
	fetches := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oidc/v1/token" {
			t.Errorf("path = %s, want /oidc/v1/token", r.URL.Path)
		}
		id, secret, ok := r.BasicAuth()
		if !ok || id != "client-id" || secret != "client-secret" {
			t.Errorf("basic auth = %q/%q", id, secret)
		}
		r.ParseForm()
		if r.PostForm.Get("grant_type") != "client_credentials" {
			t.Errorf("grant_type = %q", r.PostForm.Get("grant_type"))
		}
		fetches++
		json.NewEncoder(w).Encode(map[string]any{"access_token": "oauth-token", "expires_in": 3600})
	}))
	defer srv.Close()

	src := newOAuthTokenSource(srv.URL, "client-id", "client-secret", srv.Client())

	for i := 0; i < 3; i++ {
		token, err := src.AccessToken(context.Background())
		if err != nil {
			t.Fatalf("access token: %v", err)
		}
		if token != "oauth-token" {
			t.Errorf("token = %q", token)
		}
	}
	if fetches != 1 {
		t.Errorf("token fetched %d times, want 1 (cached)", fetches)
	}
}

func TestOAuthTokenSourceRefetchesExpired(t *testing.T) {
	fetches := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		// expires_in below the slack, so the token is already stale.
		json.NewEncoder(w).Encode(map[string]any{"access_token": "short-lived", "expires_in": 1})
	}))
	defer srv.Close()

	src := newOAuthTokenSource(srv.URL, "id", "secret", srv.Client())
	src.AccessToken(context.Background())
	src.AccessToken(context.Background())

	if fetches != 2 {
		t.Errorf("token fetched %d times, want 2", fetches)
	}
}

func TestOAuthTokenSourceErrorOmitsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_client","client_secret":"leaked-secret"}`))
	}))
	defer srv.Close()

	src := newOAuthTokenSource(srv.URL, "id", "leaked-secret", srv.Client())
	_, err := src.AccessToken(context.Background())
	if err == nil {
		t.Fatal("expected error from 400 response")
	}
	if strings.Contains(err.Error(), "leaked-secret") {
		t.Errorf("error echoes the response body: %v", err)
	}
}

func TestStaticToken(t *testing.T) {
	token, err := staticToken("pat").AccessToken(context.Background())
	if err != nil || token != "pat" {
		t.Errorf("AccessToken() = %q, %v", token, err)
	}
}
