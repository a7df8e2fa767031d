// Package models defines the domain types for Lumina.
package models

import "slices"

// UntitledTitle is shown in place of an empty title.
const UntitledTitle = "Untitled Note"

// Note is the only persisted entity. Field names match the stored layout.
type Note struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	UpdatedAt int64    `json:"updatedAt"` // milliseconds since epoch
	Tags      []string `json:"tags"`
}

// DisplayTitle returns the title, or UntitledTitle when it is empty.
func (n Note) DisplayTitle() string {
	if n.Title == "" {
		return UntitledTitle
	}
	return n.Title
}

// Clone returns a copy that shares no backing arrays with n.
func (n Note) Clone() Note {
	n.Tags = slices.Clone(n.Tags)
	if n.Tags == nil {
		n.Tags = []string{}
	}
	return n
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Title     *string   `json:"title,omitempty"`
	Content   *string   `json:"content,omitempty"`
	UpdatedAt *int64    `json:"updatedAt,omitempty"`
	Tags      *[]string `json:"tags,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Content == nil && p.UpdatedAt == nil && p.Tags == nil
}

// Apply merges p into n and returns the result.
func (p Patch) Apply(n Note) Note {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.UpdatedAt != nil {
		n.UpdatedAt = *p.UpdatedAt
	}
	if p.Tags != nil {
		n.Tags = slices.Clone(*p.Tags)
	}
	return n
}
