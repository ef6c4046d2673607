package web

// handlers_sql.go covers the back half of the pipeline: schema inference,
// SQL generation, volume upload, and warehouse execution. The remote
// operations snapshot the current table up front, so edits racing an
// in-flight call cannot corrupt the bytes being sent.

import (
	"net/http"

	"github.com/bkuan/databrick-apps-csv-uploader-app/internal/core"
	"github.com/bkuan/databrick-apps-csv-uploader-app/internal/logging"
	"github.com/go-chi/chi/v5"
)

// sqlTargetRequest names the destination for generated SQL. Empty fields
// fall back to the configured defaults; the table name falls back to one
// derived from the upload filename.
type sqlTargetRequest struct {
	Catalog  string `json:"catalog"`
	Schema   string `json:"schema"`
	Table    string `json:"table"`
	Volume   string `json:"volume"`
	FileName string `json:"fileName"`
}

// resolve fills empty fields from config and the session.
func (req *sqlTargetRequest) resolve(s *Server, sess *core.Session) {
	if req.Catalog == "" {
		req.Catalog = s.cfg.Databricks.Catalog
	}
	if req.Schema == "" {
		req.Schema = s.cfg.Databricks.Schema
	}
	if req.Volume == "" {
		req.Volume = s.cfg.Databricks.Volume
	}
	if req.FileName == "" {
		req.FileName = sess.FileName
	}
	if req.Table == "" {
		req.Table = core.DefaultTableName(req.FileName)
	}
}

// handleInferSchema returns the inferred SQL type per column, in column
// order, over the current table.
func (s *Server) handleInferSchema(w http.ResponseWriter, r *http.Request) {
	schema, err := s.service.InferSchema(chi.URLParam(r, "sessionID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]interface{}{"columns": schema})
}

// handleGenerateSQL renders the CTAS statement without executing anything.
func (s *Server) handleGenerateSQL(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req sqlTargetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	req.resolve(s, sess)

	view := sess.View()
	schema := core.InferSchema(view.Table, s.cfg.Upload.SampleRows)

	statement, err := core.GenerateCreateTable(core.SQLTarget{
		Catalog:    req.Catalog,
		Schema:     req.Schema,
		Table:      req.Table,
		SourcePath: core.VolumeFilePath(req.Catalog, req.Schema, req.Volume, req.FileName),
	}, schema, view.Delimiter, view.UseHeader)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, map[string]interface{}{
		"statement": statement,
		"schema":    schema,
	})
}

// handleUploadVolume serializes the current table back to CSV with the
// session's parse-time settings and writes it to the target volume.
func (s *Server) handleUploadVolume(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if s.remote == nil {
		respondError(w, r, &core.AdapterError{Kind: core.AdapterAuth, Op: "upload", Detail: "no Databricks workspace configured"})
		return
	}

	var req sqlTargetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	req.resolve(s, sess)

	data, err := sess.ExportCSV()
	if err != nil {
		respondError(w, r, err)
		return
	}

	path := core.VolumeFilePath(req.Catalog, req.Schema, req.Volume, req.FileName)
	if err := s.remote.UploadFile(r.Context(), path, data); err != nil {
		respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("volume upload complete",
		"session_id", sess.ID,
		"path", path,
		"bytes", len(data),
	)

	writeJSON(w, map[string]interface{}{
		"status": "uploaded",
		"path":   path,
		"bytes":  len(data),
	})
}

// handleExecuteSQL runs a statement on the configured warehouse. The
// statement comes from the request so the user can review and edit the
// generated SQL before running it.
func (s *Server) handleExecuteSQL(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if s.remote == nil {
		respondError(w, r, &core.AdapterError{Kind: core.AdapterAuth, Op: "execute", Detail: "no Databricks workspace configured"})
		return
	}

	var req struct {
		Statement string `json:"statement"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.Statement == "" {
		writeBadRequest(w, "statement is required")
		return
	}

	result, err := s.remote.ExecuteStatement(r.Context(), req.Statement)
	if err != nil {
		respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("statement executed",
		"session_id", sess.ID,
		"statement_id", result.StatementID,
		"state", result.State,
	)

	writeJSON(w, result)
}
