// Package notes owns the in-memory note collection and the active selection.
package notes

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/starford/lumina/internal/apperr"
	"github.com/starford/lumina/internal/models"
	"github.com/starford/lumina/internal/storage"
)

// DeletePrompt is the question put to the Confirmer before a delete.
const DeletePrompt = "Are you sure you want to delete this note?"

// ResultSeparator is placed between a note's content and an accepted AI result.
const ResultSeparator = "\n\n---\n"

// Confirmer is the synchronous yes/no gate in front of destructive operations.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

// Confirm calls f.
func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Always is a Confirmer that answers yes, for callers that already asked.
var Always Confirmer = ConfirmFunc(func(string) bool { return true })

// Store is the authoritative note collection. Every mutation is serialized
// by mu and written through to the provider before the call returns.
type Store struct {
	mu       sync.Mutex
	provider storage.Provider
	notes    []models.Note
	activeID string

	logger *slog.Logger
	now    func() time.Time
	newID  func() string
	hooks  []ChangeHook
}

// New creates an empty store. Call Initialize to load the saved collection.
func New(provider storage.Provider, opts ...Option) *Store {
	s := &Store{
		provider: provider,
		logger:   slog.Default(),
		now:      time.Now,
		newID:    newUUID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize loads the collection. With nothing saved it seeds the welcome
// note; with unreadable data it logs and starts empty. Only backend I/O
// failures are returned.
func (s *Store) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	loaded, err := s.provider.Load()
	switch {
	case errors.Is(err, storage.ErrAbsent):
		s.notes = []models.Note{{
			ID:        WelcomeID,
			Title:     WelcomeTitle,
			Content:   WelcomeBody,
			UpdatedAt: s.stamp(),
			Tags:      []string{WelcomeTag},
		}}
		s.activeID = WelcomeID
		s.saveLocked()
		s.logger.Info("notes: seeded welcome note")
		return nil

	case errors.Is(err, apperr.ErrCorrupt):
		s.logger.Error("notes: failed to parse saved notes", slog.String("error", err.Error()))
		s.notes = nil
		s.activeID = ""
		return nil

	case err != nil:
		return fmt.Errorf("notes: initialize: %w", err)
	}

	s.notes = dedupe(loaded)
	s.activeID = ""
	if len(s.notes) > 0 {
		s.activeID = s.notes[0].ID
	}
	s.logger.Debug("notes: loaded", slog.Int("count", len(s.notes)))
	return nil
}

// Create inserts an empty note at the front and makes it active.
func (s *Store) Create() models.Note {
	s.mu.Lock()
	id := s.newID()
	for s.indexLocked(id) >= 0 {
		id = s.newID()
	}
	n := models.Note{
		ID:        id,
		UpdatedAt: s.stamp(),
		Tags:      []string{},
	}
	s.notes = slices.Insert(s.notes, 0, n)
	s.activeID = id
	s.saveLocked()
	s.mu.Unlock()

	s.notify(ChangeCreated, id)
	return n.Clone()
}

// Update merges p into the note with id. UpdatedAt is only changed when p
// carries it.
func (s *Store) Update(id string, p models.Patch) error {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("notes: update %s: %w", id, apperr.ErrNotFound)
	}
	s.notes[i] = p.Apply(s.notes[i])
	s.saveLocked()
	s.mu.Unlock()

	s.notify(ChangeUpdated, id)
	return nil
}

// ApplyResult appends an accepted AI result to the note's current content
// and stamps UpdatedAt.
func (s *Store) ApplyResult(id, result string) error {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("notes: apply result %s: %w", id, apperr.ErrNotFound)
	}
	s.notes[i].Content = s.notes[i].Content + ResultSeparator + result
	s.notes[i].UpdatedAt = s.stamp()
	s.saveLocked()
	s.mu.Unlock()

	s.notify(ChangeUpdated, id)
	return nil
}

// Delete removes the note with id once c confirms. It reports whether the
// note was removed; declining is not an error.
func (s *Store) Delete(id string, c Confirmer) (bool, error) {
	s.mu.Lock()
	exists := s.indexLocked(id) >= 0
	s.mu.Unlock()
	if !exists {
		return false, fmt.Errorf("notes: delete %s: %w", id, apperr.ErrNotFound)
	}

	// Confirm runs without the lock held.
	if c == nil || !c.Confirm(DeletePrompt) {
		return false, nil
	}

	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false, fmt.Errorf("notes: delete %s: %w", id, apperr.ErrNotFound)
	}
	s.notes = slices.Delete(s.notes, i, i+1)
	if s.activeID == id {
		s.activeID = ""
		if sorted := sortByRecency(s.notes); len(sorted) > 0 {
			s.activeID = sorted[0].ID
		}
	}
	s.saveLocked()
	s.mu.Unlock()

	s.notify(ChangeDeleted, id)
	return true, nil
}

// Select makes id the active note. Unknown ids resolve to no active note.
func (s *Store) Select(id string) {
	s.mu.Lock()
	s.activeID = id
	s.mu.Unlock()
}

// ActiveID returns the selected id, which may not name an existing note.
func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Active resolves the selection to a note.
func (s *Store) Active() (models.Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(s.activeID)
	if i < 0 {
		return models.Note{}, false
	}
	return s.notes[i].Clone(), true
}

// Get returns the note with id.
func (s *Store) Get(id string) (models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return models.Note{}, fmt.Errorf("notes: get %s: %w", id, apperr.ErrNotFound)
	}
	return s.notes[i].Clone(), nil
}

// All returns a copy of the collection in stored order.
func (s *Store) All() []models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Note, len(s.notes))
	for i, n := range s.notes {
		out[i] = n.Clone()
	}
	return out
}

// Len returns the number of notes.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.notes)
}

// Filter returns the notes whose title or content contains query, ignoring
// case, most recently updated first. The stored order is left untouched.
func (s *Store) Filter(query string) []models.Note {
	s.mu.Lock()
	sorted := sortByRecency(s.notes)
	s.mu.Unlock()

	q := strings.ToLower(query)
	out := make([]models.Note, 0, len(sorted))
	for _, n := range sorted {
		if q == "" ||
			strings.Contains(strings.ToLower(n.Title), q) ||
			strings.Contains(strings.ToLower(n.Content), q) {
			out = append(out, n.Clone())
		}
	}
	return out
}

func (s *Store) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.notes, func(n models.Note) bool { return n.ID == id })
}

// saveLocked writes the whole collection. Failures are logged only.
func (s *Store) saveLocked() {
	if err := s.provider.Save(s.notes); err != nil {
		s.logger.Error("notes: save failed",
			slog.Int("count", len(s.notes)),
			slog.String("error", err.Error()))
	}
}

func (s *Store) notify(kind, id string) {
	for _, h := range s.hooks {
		h(kind, id)
	}
}

func (s *Store) stamp() int64 { return s.now().UnixMilli() }

// sortByRecency returns a copy of notes ordered by UpdatedAt descending.
// Ties keep their stored order.
func sortByRecency(notes []models.Note) []models.Note {
	out := slices.Clone(notes)
	slices.SortStableFunc(out, func(a, b models.Note) int {
		return cmp.Compare(b.UpdatedAt, a.UpdatedAt)
	})
	return out
}

// dedupe drops later notes whose id was already seen.
func dedupe(notes []models.Note) []models.Note {
	seen := make(map[string]struct{}, len(notes))
	out := make([]models.Note, 0, len(notes))
	for _, n := range notes {
		if _, ok := seen[n.ID]; ok {
			continue
		}
		seen[n.ID] = struct{}{}
		out = append(out, n)
	}
	return out
}
