package storage

import (
	"encoding/json"
	"fmt"

	"github.com/starford/lumina/internal/apperr"
	"github.com/starford/lumina/internal/kv"
	"github.com/starford/lumina/internal/models"
)

// KV implements Provider as a JSON array under NotesKey.
type KV struct {
	store kv.Store
	key   string
}

var _ Provider = (*KV)(nil)

// NewKV creates a provider over store.
func NewKV(store kv.Store) *KV {
	return &KV{store: store, key: NotesKey}
}

// Load reads and decodes the collection.
func (p *KV) Load() ([]models.Note, error) {
	raw, ok, err := p.store.Get(p.key)
	if err != nil {
		return nil, fmt.Errorf("storage: load: %w", err)
	}
	if !ok {
		return nil, ErrAbsent
	}
	var notes []models.Note
	if err := json.Unmarshal([]byte(raw), &notes); err != nil {
		return nil, fmt.Errorf("storage: decode %s: %w: %v", p.key, apperr.ErrCorrupt, err)
	}
	for i := range notes {
		if notes[i].Tags == nil {
			notes[i].Tags = []string{}
		}
	}
	return notes, nil
}

// Save encodes the full collection and writes it under the key.
func (p *KV) Save(notes []models.Note) error {
	out := make([]models.Note, len(notes))
	for i, n := range notes {
		if n.Tags == nil {
			n.Tags = []string{}
		}
		out[i] = n
	}
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("storage: encode: %w", err)
	}
	if err := p.store.Set(p.key, string(data)); err != nil {
		return fmt.Errorf("storage: save: %w", err)
	}
	return nil
}
