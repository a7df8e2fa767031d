package api

import "github.com/starford/lumina/internal/models"

// NoteListResponse is returned by GET /api/notes.
type NoteListResponse struct {
	Notes    []models.Note `json:"notes"`
	ActiveID string        `json:"activeId"`
}

// UpdateNoteRequest is a partial note. Absent fields are left unchanged.
// When updatedAt is absent the server stamps the current time.
type UpdateNoteRequest struct {
	Title     *string   `json:"title"`
	Content   *string   `json:"content"`
	Tags      *[]string `json:"tags"`
	UpdatedAt *int64    `json:"updatedAt"`
}

func (r UpdateNoteRequest) patch() models.Patch {
	return models.Patch{
		Title:     r.Title,
		Content:   r.Content,
		Tags:      r.Tags,
		UpdatedAt: r.UpdatedAt,
	}
}

// ActiveRequest is the body of PUT /api/active.
type ActiveRequest struct {
	ID string `json:"id"`
}

// ActiveResponse reports the active note id, empty when none.
type ActiveResponse struct {
	ID   string       `json:"id"`
	Note *models.Note `json:"note,omitempty"`
}

// TransformRequest is the body of POST /api/notes/{id}/transform.
type TransformRequest struct {
	Action string `json:"action"`
}

// TransformResponse carries the generated text. It is not applied.
type TransformResponse struct {
	NoteID string `json:"noteId"`
	Action string `json:"action"`
	Result string `json:"result"`
}

// ApplyRequest is the body of POST /api/notes/{id}/apply.
type ApplyRequest struct {
	Result string `json:"result"`
}
