package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/yourusername/gomoku3d/pkg/engine"
	"github.com/yourusername/gomoku3d/pkg/record"
)

// sgfContentType is served for game records.
const sgfContentType = "application/x-go-sgf"

// maxRecordBytes bounds an uploaded SGF record.
const maxRecordBytes = 1 << 20

// Handlers holds the HTTP handlers and the session store.
type Handlers struct {
	store   *SessionStore
	version string
	pool    *WorkerPool
}

// NewHandlers creates a new Handlers instance without a worker pool.
func NewHandlers(store *SessionStore, version string) *Handlers {
	return &Handlers{
		store:   store,
		version: version,
		pool:    nil,
	}
}

// NewHandlersWithPool creates a new Handlers instance with a worker pool.
func NewHandlersWithPool(store *SessionStore, version string, pool *WorkerPool) *Handlers {
	return &Handlers{
		store:   store,
		version: version,
		pool:    pool,
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, msg string, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: msg,
		Code:  code,
	})
}

// acquireFast takes a fast worker slot if a pool is configured. On failure
// it writes a 503 and returns false. Callers must call the returned release
// function when done.
func (h *Handlers) acquireFast(w http.ResponseWriter, r *http.Request) (release func(), ok bool) {
	if h.pool == nil {
		return func() {}, true
	}
	if err := h.pool.AcquireFast(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "server busy", "SERVER_BUSY")
		return nil, false
	}
	return h.pool.ReleaseFast, true
}

// session looks up the session named by the {id} path segment and writes a
// 404 if it does not exist.
func (h *Handlers) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id := r.PathValue("id")
	sess, ok := h.store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "game not found", "NOT_FOUND")
		return nil, false
	}
	return sess, true
}

// Health handles GET /api/health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Version: h.version,
		Ready:   h.store != nil,
	}
	if h.store != nil {
		resp.Sessions = h.store.Len()
	}

	// Include pool stats if available
	if h.pool != nil {
		stats := h.pool.Stats()
		resp.Pool = &stats
	}

	writeJSON(w, http.StatusOK, resp)
}

// CreateGame handles POST /api/games
func (h *Handlers) CreateGame(w http.ResponseWriter, r *http.Request) {
	release, ok := h.acquireFast(w, r)
	if !ok {
		return
	}
	defer release()

	var req CreateGameRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
			return
		}
	}

	sess, err := h.store.Create(req)
	switch {
	case errors.Is(err, ErrTooManySessions):
		writeError(w, http.StatusServiceUnavailable, err.Error(), "TOO_MANY_SESSIONS")
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_OPTIONS")
		return
	}

	writeJSON(w, http.StatusCreated, gameResponse(sess.ID, sess.Engine.Snapshot()))
}

// GetGame handles GET /api/games/{id}
func (h *Handlers) GetGame(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, gameResponse(sess.ID, sess.Engine.Snapshot()))
}

// DeleteGame handles DELETE /api/games/{id}
func (h *Handlers) DeleteGame(w http.ResponseWriter, r *http.Request) {
	if !h.store.Delete(r.PathValue("id")) {
		writeError(w, http.StatusNotFound, "game not found", "NOT_FOUND")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Move handles POST /api/games/{id}/move
func (h *Handlers) Move(w http.ResponseWriter, r *http.Request) {
	release, ok := h.acquireFast(w, r)
	if !ok {
		return
	}
	defer release()

	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}
	if req.Col == nil || req.Row == nil {
		writeError(w, http.StatusBadRequest, "col and row are required", "MISSING_FIELD")
		return
	}

	resp := moveResponse(sess.Engine.AttemptMove(*req.Col, *req.Row))
	resp.Game = gameResponse(sess.ID, sess.Engine.Snapshot())
	writeJSON(w, http.StatusOK, resp)
}

// Click handles POST /api/games/{id}/click
func (h *Handlers) Click(w http.ResponseWriter, r *http.Request) {
	release, ok := h.acquireFast(w, r)
	if !ok {
		return
	}
	defer release()

	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req ClickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}

	resp, err := click(sess, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_CAMERA")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// click resolves a pointer gesture and plays the resulting move, if any.
func click(sess *Session, req ClickRequest) (*ClickResponse, error) {
	cam, err := req.Camera.Camera(sess.Engine.BoardSize())
	if err != nil {
		return nil, err
	}

	cell, hit, isClick := sess.Resolver.ResolveClick(req.Down, req.Up, req.Viewport, cam)
	resp := &ClickResponse{IsClick: isClick, Resolved: hit}
	if !isClick || !hit {
		return resp, nil
	}

	resp.Cell = &cell
	resp.Move = moveResponse(sess.Engine.AttemptMove(cell.Col, cell.Row))
	resp.Move.Game = gameResponse(sess.ID, sess.Engine.Snapshot())
	return resp, nil
}

// Undo handles POST /api/games/{id}/undo
func (h *Handlers) Undo(w http.ResponseWriter, r *http.Request) {
	release, ok := h.acquireFast(w, r)
	if !ok {
		return
	}
	defer release()

	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	resp := undoResponse(sess.Engine.Undo())
	resp.Game = gameResponse(sess.ID, sess.Engine.Snapshot())
	writeJSON(w, http.StatusOK, resp)
}

// Reset handles POST /api/games/{id}/reset
func (h *Handlers) Reset(w http.ResponseWriter, r *http.Request) {
	release, ok := h.acquireFast(w, r)
	if !ok {
		return
	}
	defer release()

	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	sess.Engine.Reset()
	writeJSON(w, http.StatusOK, gameResponse(sess.ID, sess.Engine.Snapshot()))
}

// ClearScores handles POST /api/games/{id}/scores/clear
func (h *Handlers) ClearScores(w http.ResponseWriter, r *http.Request) {
	release, ok := h.acquireFast(w, r)
	if !ok {
		return
	}
	defer release()

	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	sess.Engine.ClearScores()
	writeJSON(w, http.StatusOK, gameResponse(sess.ID, sess.Engine.Snapshot()))
}

// CancelReplay handles POST /api/games/{id}/replay/cancel
func (h *Handlers) CancelReplay(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ReplayCancelResponse{Cancelled: sess.Engine.CancelReplay()})
}

// GetRecord handles GET /api/games/{id}/record
func (h *Handlers) GetRecord(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	rec := record.FromSnapshot(sess.Engine.Snapshot())
	w.Header().Set("Content-Type", sgfContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+sess.ID+`.sgf"`)
	w.WriteHeader(http.StatusOK)
	record.Write(w, rec)
}

// PutRecord handles PUT /api/games/{id}/record. The record replaces the
// session's round in one step; a rejected upload leaves it untouched and
// scores are kept.
func (h *Handlers) PutRecord(w http.ResponseWriter, r *http.Request) {
	release, ok := h.acquireFast(w, r)
	if !ok {
		return
	}
	defer release()

	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	rec, err := record.Parse(http.MaxBytesReader(w, r.Body, maxRecordBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_SGF")
		return
	}

	if err := rec.Apply(sess.Engine); err != nil {
		switch {
		case errors.Is(err, record.ErrSizeMismatch):
			writeError(w, http.StatusBadRequest, err.Error(), "SIZE_MISMATCH")
		case errors.Is(err, engine.ErrBusy):
			writeError(w, http.StatusConflict, err.Error(), strings.ToUpper(engine.ReasonCode(err)))
		default:
			writeError(w, http.StatusBadRequest, err.Error(), "INVALID_RECORD")
		}
		return
	}
	writeJSON(w, http.StatusOK, gameResponse(sess.ID, sess.Engine.Snapshot()))
}
