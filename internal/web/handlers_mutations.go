package web

// handlers_mutations.go maps one endpoint to each edit-engine operation.
// Every handler resolves the session, applies exactly one mutation, and
// returns the fresh snapshot so the UI can re-render.

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/bkuan/databrick-apps-csv-uploader-app/internal/core"
	"github.com/go-chi/chi/v5"
)

// decodeJSON decodes a request body, rejecting unknown fields.
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// session resolves the session from the URL, writing the error response
// itself when the ID is unknown.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*core.Session, bool) {
	sess, err := s.service.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		respondError(w, r, err)
		return nil, false
	}
	return sess, true
}

// respondSnapshot writes the post-edit session view.
func respondSnapshot(w http.ResponseWriter, sess *core.Session) {
	writeJSON(w, sess.View())
}

// handleSetCell replaces a single cell value.
func (s *Server) handleSetCell(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req struct {
		Row    int    `json:"row"`
		Column string `json:"column"`
		Value  string `json:"value"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	if err := sess.SetCell(req.Row, req.Column, req.Value); err != nil {
		respondError(w, r, err)
		return
	}
	respondSnapshot(w, sess)
}

// handleAddRow inserts an empty row. Position defaults to append.
func (s *Server) handleAddRow(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req struct {
		Position *int `json:"position"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	position := -1
	if req.Position != nil {
		position = *req.Position
	}
	if err := sess.AddRow(position); err != nil {
		respondError(w, r, err)
		return
	}
	respondSnapshot(w, sess)
}

// handleDeleteRow removes the row at the index in the URL.
func (s *Server) handleDeleteRow(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	rowIndex, err := strconv.Atoi(chi.URLParam(r, "rowIndex"))
	if err != nil {
		writeBadRequest(w, "row index must be an integer")
		return
	}

	if err := sess.DeleteRow(rowIndex); err != nil {
		respondError(w, r, err)
		return
	}
	respondSnapshot(w, sess)
}

// handleAddColumn appends a column, optionally with a default value.
func (s *Server) handleAddColumn(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req struct {
		Name         string `json:"name"`
		DefaultValue string `json:"defaultValue"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	if err := sess.AddColumn(req.Name, req.DefaultValue); err != nil {
		respondError(w, r, err)
		return
	}
	respondSnapshot(w, sess)
}

// handleDeleteColumn removes the column named in the URL.
func (s *Server) handleDeleteColumn(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	if err := sess.DeleteColumn(chi.URLParam(r, "column")); err != nil {
		respondError(w, r, err)
		return
	}
	respondSnapshot(w, sess)
}

// handleRenameColumn renames the column named in the URL.
func (s *Server) handleRenameColumn(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	if err := sess.RenameColumn(chi.URLParam(r, "column"), req.Name); err != nil {
		respondError(w, r, err)
		return
	}
	respondSnapshot(w, sess)
}

// handleToggleHeader reclassifies the header/first-data-row boundary.
func (s *Server) handleToggleHeader(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req struct {
		UseHeader bool `json:"useHeader"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	if err := sess.ToggleHeader(req.UseHeader); err != nil {
		respondError(w, r, err)
		return
	}
	respondSnapshot(w, sess)
}

// handleUndo pops the most recent snapshot. An empty history is a 409 with
// code EDIT005, not a server error.
func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	if err := sess.Undo(); err != nil {
		respondError(w, r, err)
		return
	}
	respondSnapshot(w, sess)
}

// handleRevert restores the table captured at parse time.
func (s *Server) handleRevert(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	sess.Revert()
	respondSnapshot(w, sess)
}
