package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/lumina/internal/ai"
	"github.com/starford/lumina/internal/apperr"
	"github.com/starford/lumina/internal/notes"
)

// Handler holds API route handlers.
type Handler struct {
	store       *notes.Store
	transformer ai.Transformer
	now         func() time.Time
	logger      *slog.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithClock replaces time.Now for server-stamped updates.
func WithClock(now func() time.Time) HandlerOption {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
	}
}

// WithLogger sets the handler logger.
func WithLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHandler creates a new Handler.
func NewHandler(store *notes.Store, transformer ai.Transformer, opts ...HandlerOption) *Handler {
	h := &Handler{
		store:       store,
		transformer: transformer,
		now:         time.Now,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// fail maps a store error to a response.
func (h *Handler) fail(w http.ResponseWriter, op, id string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrInvalid):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	default:
		h.logger.Error(op+" failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// ListNotes handles GET /api/notes?q=.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, NoteListResponse{
		Notes:    h.store.Filter(r.URL.Query().Get("q")),
		ActiveID: h.store.ActiveID(),
	})
}

// CreateNote handles POST /api/notes. The new note becomes active.
// An optional body seeds title, content and tags.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req UpdateNoteRequest
	if err := readJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	note := h.store.Create()
	if p := req.patch(); !p.Empty() {
		if err := h.store.Update(note.ID, p); err != nil {
			h.fail(w, "create note", note.ID, err)
			return
		}
		var err error
		if note, err = h.store.Get(note.ID); err != nil {
			h.fail(w, "create note", note.ID, err)
			return
		}
	}
	writeJSON(w, http.StatusCreated, note)
}

// GetNote handles GET /api/notes/{id}.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	note, err := h.store.Get(id)
	if err != nil {
		h.fail(w, "get note", id, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// UpdateNote handles PATCH /api/notes/{id}.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdateNoteRequest
	if err := readJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	p := req.patch()
	if p.Empty() {
		writeJSON(w, http.StatusBadRequest, errorBody("no fields to update"))
		return
	}
	if p.UpdatedAt == nil {
		ts := h.now().UnixMilli()
		p.UpdatedAt = &ts
	}
	if err := h.store.Update(id, p); err != nil {
		h.fail(w, "update note", id, err)
		return
	}
	note, err := h.store.Get(id)
	if err != nil {
		h.fail(w, "update note", id, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /api/notes/{id}?confirm=true. Without
// confirmation the note is kept and 428 is returned.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	deleted, err := h.store.Delete(id, notes.ConfirmFunc(func(string) bool { return confirmed }))
	if err != nil {
		h.fail(w, "delete note", id, err)
		return
	}
	if !deleted {
		writeJSON(w, http.StatusPreconditionRequired, errorBody(notes.DeletePrompt+" Repeat with ?confirm=true."))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetActive handles GET /api/active.
func (h *Handler) GetActive(w http.ResponseWriter, _ *http.Request) {
	resp := ActiveResponse{}
	if note, ok := h.store.Active(); ok {
		resp.ID = note.ID
		resp.Note = &note
	}
	writeJSON(w, http.StatusOK, resp)
}

// SetActive handles PUT /api/active. An empty id clears the selection.
func (h *Handler) SetActive(w http.ResponseWriter, r *http.Request) {
	var req ActiveRequest
	if err := readJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.ID != "" {
		if _, err := h.store.Get(req.ID); err != nil {
			h.fail(w, "set active", req.ID, err)
			return
		}
	}
	h.store.Select(req.ID)
	h.GetActive(w, r)
}

// Transform handles POST /api/notes/{id}/transform. The result is returned
// for review and not written to the note.
func (h *Handler) Transform(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req TransformRequest
	if err := readJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	action, err := ai.ParseAction(req.Action)
	if err != nil {
		h.fail(w, "transform", id, err)
		return
	}
	note, err := h.store.Get(id)
	if err != nil {
		h.fail(w, "transform", id, err)
		return
	}
	writeJSON(w, http.StatusOK, TransformResponse{
		NoteID: id,
		Action: string(action),
		Result: h.transformer.Transform(r.Context(), note.Content, action),
	})
}

// Apply handles POST /api/notes/{id}/apply, appending an accepted result.
// Fallback messages from a failed transform are refused.
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req ApplyRequest
	if err := readJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Result == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("result is required"))
		return
	}
	if ai.IsFallback(req.Result) {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody("fallback messages cannot be applied"))
		return
	}
	if err := h.store.ApplyResult(id, req.Result); err != nil {
		h.fail(w, "apply result", id, err)
		return
	}
	note, err := h.store.Get(id)
	if err != nil {
		h.fail(w, "apply result", id, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}
