package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/lumina/internal/ai"
	"github.com/starford/lumina/internal/notes"
)

// NewRouter builds the /api routes. events, if non-nil, is mounted at
// GET /events behind the same auth check.
func NewRouter(store *notes.Store, transformer ai.Transformer, authEnabled bool, token string, events http.Handler, opts ...HandlerOption) chi.Router {
	h := NewHandler(store, transformer, opts...)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Route("/notes/{id}", func(r chi.Router) {
		r.Get("/", h.GetNote)
		r.Patch("/", h.UpdateNote)
		r.Delete("/", h.DeleteNote)
		r.Post("/transform", h.Transform)
		r.Post("/apply", h.Apply)
	})

	r.Get("/active", h.GetActive)
	r.Put("/active", h.SetActive)

	if events != nil {
		r.Get("/events", events.ServeHTTP)
	}
	return r
}

// Health answers liveness and readiness probes.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
