package databricks

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bkuan/databrick-apps-csv-uploader-app/internal/core"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{
		Host:              srv.URL,
		Token:             "test-token",
		WarehouseHTTPPath: "/sql/1.0/warehouses/wh123",
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, srv
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"pat", Config{Host: "https://dbc.example.com", Token: "t"}, true},
		{"oauth", Config{Host: "https://dbc.example.com", ClientID: "id", ClientSecret: "s"}, true},
		{"no host", Config{Token: "t"}, false},
		{"no credentials", Config{Host: "https://dbc.example.com"}, false},
		{"partial oauth", Config{Host: "https://dbc.example.com", ClientID: "id"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.ok && err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestWarehouseIDFromPath(t *testing.T) {
	tests := []struct {
		path, want string
	}{
		{"/sql/1.0/warehouses/abc123", "abc123"},
		{"/sql/1.0/warehouses/abc123/", "abc123"},
		{"", ""},
		{"  ", ""},
	}
	for _, tt := range tests {
		if got := warehouseIDFromPath(tt.path); got != tt.want {
			t.Errorf("warehouseIDFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestUploadFile(t *testing.T) {
	var gotMethod, gotPath, gotQuery, gotAuth string
	var gotBody []byte
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))

	err := client.UploadFile(context.Background(), "/Volumes/main/default/uploads/data.csv", []byte("a,b\n1,2\n"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if gotMethod != http.MethodPut {
		t.Errorf("method = %s, want PUT", gotMethod)
	}
	if gotPath != "/api/2.0/fs/files/Volumes/main/default/uploads/data.csv" {
		t.Errorf("path = %s", gotPath)
	}
	if gotQuery != "overwrite=true" {
		t.Errorf("query = %s, want overwrite=true", gotQuery)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if string(gotBody) != "a,b\n1,2\n" {
		t.Errorf("body = %q", gotBody)
	}
}

func TestUploadFileRejectsRelativePath(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for a relative path")
	}))

	err := client.UploadFile(context.Background(), "relative/path.csv", nil)
	var adapterErr *core.AdapterError
	if !errors.As(err, &adapterErr) {
		t.Fatalf("expected *core.AdapterError, got %v", err)
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   core.AdapterErrorKind
	}{
		{"unauthorized", http.StatusUnauthorized, core.AdapterAuth},
		{"forbidden", http.StatusForbidden, core.AdapterPermission},
		{"bad gateway", http.StatusBadGateway, core.AdapterNetwork},
		{"service unavailable", http.StatusServiceUnavailable, core.AdapterNetwork},
		{"server error", http.StatusInternalServerError, core.AdapterRemote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]string{"message": "workspace says no"})
			}))

			err := client.UploadFile(context.Background(), "/Volumes/main/default/uploads/x.csv", nil)
			var adapterErr *core.AdapterError
			if !errors.As(err, &adapterErr) {
				t.Fatalf("expected *core.AdapterError, got %v", err)
			}
			if adapterErr.Kind != tt.kind {
				t.Errorf("kind = %s, want %s", adapterErr.Kind, tt.kind)
			}
			if !strings.Contains(adapterErr.Detail, "workspace says no") {
				t.Errorf("detail does not surface the workspace message: %q", adapterErr.Detail)
			}
		})
	}
}

func TestExecuteStatementSucceeded(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/2.0/sql/statements" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if req["warehouse_id"] != "wh123" {
			t.Errorf("warehouse_id = %q, want wh123", req["warehouse_id"])
		}
		if req["statement"] == "" {
			t.Error("statement missing from request")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"statement_id": "stmt-1",
			"status":       map[string]any{"state": "SUCCEEDED"},
			"manifest":     map[string]any{"total_row_count": 42},
		})
	}))

	result, err := client.ExecuteStatement(context.Background(), "SELECT 1")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result.StatementID != "stmt-1" || result.State != "SUCCEEDED" || result.RowCount != 42 {
		t.Errorf("result = %+v", result)
	}
}

func TestExecuteStatementPollsUntilTerminal(t *testing.T) {
	polls := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost:
			json.NewEncoder(w).Encode(map[string]any{
				"statement_id": "stmt-2",
				"status":       map[string]any{"state": "PENDING"},
			})
		case r.Method == http.MethodGet && r.URL.Path == "/api/2.0/sql/statements/stmt-2":
			polls++
			state := "RUNNING"
			if polls >= 2 {
				state = "SUCCEEDED"
			}
			json.NewEncoder(w).Encode(map[string]any{
				"statement_id": "stmt-2",
				"status":       map[string]any{"state": state},
			})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))

	result, err := client.ExecuteStatement(context.Background(), "SELECT 1")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if polls < 2 {
		t.Errorf("polled %d times, want at least 2", polls)
	}
	if result.State != "SUCCEEDED" {
		t.Errorf("state = %s, want SUCCEEDED", result.State)
	}
}

func TestExecuteStatementFailed(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"statement_id": "stmt-3",
			"status": map[string]any{
				"state": "FAILED",
				"error": map[string]any{"error_code": "SYNTAX_ERROR", "message": "mismatched input"},
			},
		})
	}))

	_, err := client.ExecuteStatement(context.Background(), "SELEC 1")
	var adapterErr *core.AdapterError
	if !errors.As(err, &adapterErr) {
		t.Fatalf("expected *core.AdapterError, got %v", err)
	}
	if adapterErr.Kind != core.AdapterSQL {
		t.Errorf("kind = %s, want %s", adapterErr.Kind, core.AdapterSQL)
	}
	if !strings.Contains(adapterErr.Detail, "mismatched input") {
		t.Errorf("detail = %q, want warehouse message", adapterErr.Detail)
	}
}

func TestExecuteStatementWithoutWarehouse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected without a warehouse")
	}))
	defer srv.Close()

	client, err := NewClient(Config{Host: srv.URL, Token: "t"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.ExecuteStatement(context.Background(), "SELECT 1")
	var adapterErr *core.AdapterError
	if !errors.As(err, &adapterErr) {
		t.Fatalf("expected *core.AdapterError, got %v", err)
	}
	if adapterErr.Kind != core.AdapterRemote {
		t.Errorf("kind = %s, want %s", adapterErr.Kind, core.AdapterRemote)
	}
}
