package databricks

// statements.go runs SQL through the Statement Execution API. A statement is
// submitted with a short server-side wait; if it is still running after that
// window the client polls until a terminal state or the context expires.

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/bkuan/databrick-apps-csv-uploader-app/internal/core"
)

// pollInterval is the delay between status checks for a running statement.
const pollInterval = 2 * time.Second

// StatementResult is the terminal outcome of a successfully executed statement.
type StatementResult struct {
	StatementID string `json:"statementId"`
	State       string `json:"state"`
	RowCount    int64  `json:"rowCount"`
}

// statementResponse is the wire shape shared by submit and poll responses.
type statementResponse struct {
	StatementID string `json:"statement_id"`
	Status      struct {
		State string `json:"state"`
		Error struct {
			ErrorCode string `json:"error_code"`
			Message   string `json:"message"`
		} `json:"error"`
	} `json:"status"`
	Manifest struct {
		TotalRowCount int64 `json:"total_row_count"`
	} `json:"manifest"`
}

// ExecuteStatement submits a statement to the configured warehouse and waits
// for a terminal state. Warehouse-side failures come back as AdapterError
// with kind sql; everything the warehouse reports is surfaced verbatim.
func (c *Client) ExecuteStatement(ctx context.Context, statement string) (StatementResult, error) {
	if c.warehouseID == "" {
		return StatementResult{}, &core.AdapterError{
			Kind:   core.AdapterRemote,
			Op:     "execute",
			Detail: "no SQL warehouse configured; set the warehouse HTTP path",
		}
	}

	payload, err := json.Marshal(map[string]string{
		"statement":       statement,
		"warehouse_id":    c.warehouseID,
		"wait_timeout":    "30s",
		"on_wait_timeout": "CONTINUE",
	})
	if err != nil {
		return StatementResult{}, &core.AdapterError{Kind: core.AdapterRemote, Op: "execute", Detail: "encode request", Err: err}
	}

	body, err := c.do(ctx, "execute", http.MethodPost, c.host+"/api/2.0/sql/statements", "application/json", payload)
	if err != nil {
		return StatementResult{}, err
	}

	var resp statementResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return StatementResult{}, &core.AdapterError{Kind: core.AdapterRemote, Op: "execute", Detail: "decode response", Err: err}
	}

	for !isTerminal(resp.Status.State) {
		select {
		case <-ctx.Done():
			return StatementResult{}, &core.AdapterError{Kind: core.AdapterNetwork, Op: "execute", Detail: "cancelled while waiting for statement", Err: ctx.Err()}
		case <-time.After(pollInterval):
		}

		body, err = c.do(ctx, "execute", http.MethodGet, c.host+"/api/2.0/sql/statements/"+resp.StatementID, "", nil)
		if err != nil {
			return StatementResult{}, err
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return StatementResult{}, &core.AdapterError{Kind: core.AdapterRemote, Op: "execute", Detail: "decode poll response", Err: err}
		}
	}

	if resp.Status.State != "SUCCEEDED" {
		detail := resp.Status.Error.Message
		if detail == "" {
			detail = "statement " + strings.ToLower(resp.Status.State)
		}
		kind := core.AdapterSQL
		if resp.Status.State == "CANCELED" {
			kind = core.AdapterRemote
		}
		return StatementResult{}, &core.AdapterError{Kind: kind, Op: "execute", Detail: detail}
	}

	return StatementResult{
		StatementID: resp.StatementID,
		State:       resp.Status.State,
		RowCount:    resp.Manifest.TotalRowCount,
	}, nil
}

// isTerminal reports whether a statement state will no longer change.
func isTerminal(state string) bool {
	switch state {
	case "SUCCEEDED", "FAILED", "CANCELED", "CLOSED":
		return true
	}
	return false
}

// extractErrorMessage pulls a human-readable message out of a workspace
// error body, which is either {"message": ...} or {"error_code", "message"}.
func extractErrorMessage(body []byte) string {
	var payload struct {
		Message   string `json:"message"`
		ErrorCode string `json:"error_code"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.ErrorCode != "" && payload.Message != "" {
		return payload.ErrorCode + ": " + payload.Message
	}
	return payload.Message
}
