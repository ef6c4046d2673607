package web

// handlers_sessions.go covers the session lifecycle: multipart upload that
// parses into a fresh session, snapshot retrieval, re-parse with different
// delimiter/header settings, and deletion.

import (
	"io"
	"net/http"
	"strconv"

	"github.com/bkuan/databrick-apps-csv-uploader-app/internal/core"
	"github.com/bkuan/databrick-apps-csv-uploader-app/internal/logging"
	"github.com/go-chi/chi/v5"
)

// handleCreateSession accepts a multipart upload with form fields:
//
//	file      - the CSV content (required)
//	delimiter - comma|semicolon|tab|pipe or the literal character (default comma)
//	header    - "true" when the first row contains column names (default true)
//
// On success the new session snapshot is returned; existing sessions are
// never touched by a failed parse.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.cfg.Upload.MaxFileSize + 1); err != nil {
		writeBadRequest(w, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "no file provided")
		return
	}
	defer file.Close()

	// One extra byte so an at-limit file is distinguishable from an
	// over-limit one; Parse enforces the real cap.
	data, err := io.ReadAll(io.LimitReader(file, s.cfg.Upload.MaxFileSize+1))
	if err != nil {
		writeBadRequest(w, "failed to read uploaded file")
		return
	}

	delimiter, err := core.ParseDelimiter(r.FormValue("delimiter"))
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	useHeader := parseBoolDefault(r.FormValue("header"), true)

	sess, err := s.service.CreateSession(header.Filename, data, delimiter, useHeader)
	if err != nil {
		respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("session created",
		"session_id", sess.ID,
		"file", sess.FileName,
		"bytes", len(data),
	)

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, sess.View())
}

// handleGetSession returns the current snapshot for display.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.service.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, sess.View())
}

// handleDeleteSession discards a session and its edit history.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	s.service.Delete(chi.URLParam(r, "sessionID"))
	w.WriteHeader(http.StatusNoContent)
}

// handleReparse re-runs the parser over the stored upload bytes with new
// delimiter or header settings, discarding all edits.
func (s *Server) handleReparse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Delimiter string `json:"delimiter"`
		Header    *bool  `json:"header"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	delimiter, err := core.ParseDelimiter(req.Delimiter)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	useHeader := true
	if req.Header != nil {
		useHeader = *req.Header
	}

	sess, err := s.service.Reparse(chi.URLParam(r, "sessionID"), delimiter, useHeader)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, sess.View())
}

// parseBoolDefault parses a form bool, returning def for empty or invalid
// input.
func parseBoolDefault(v string, def bool) bool {
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
