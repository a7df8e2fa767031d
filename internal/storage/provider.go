// Package storage mirrors the note collection into a key-value store.
package storage

import (
	"errors"

	"github.com/starford/lumina/internal/models"
)

// NotesKey is the single key the collection is stored under.
const NotesKey = "lumina_notes"

// ErrAbsent is returned by Load when nothing has been saved yet.
var ErrAbsent = errors.New("storage: no saved notes")

// Provider is the persistence boundary of the note store.
type Provider interface {
	// Load returns the saved collection, ErrAbsent if none exists, or an
	// error wrapping apperr.ErrCorrupt if the stored value cannot be parsed.
	Load() ([]models.Note, error)
	// Save replaces the stored collection in full.
	Save(notes []models.Note) error
}
