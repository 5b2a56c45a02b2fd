package ports

import (
	"encoding/json"

	"github.com/taskmaster/planner/internal/domain/entities"
)

// CreateTaskRequest is the input of TaskService.CreateTask
type CreateTaskRequest struct {
	Text        string `json:"text" validate:"required,notblank,max=500"`
	Description string `json:"description" validate:"max=5000"`
	Priority    string `json:"priority" validate:"omitempty,priority"`
	Date        string `json:"date" validate:"omitempty,calendardate"`
}

// UpdateTaskRequest edits a task in place; nil fields are left untouched.
type UpdateTaskRequest struct {
	Text        *string `json:"text" validate:"omitempty,notblank,max=500"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Priority    *string `json:"priority" validate:"omitempty,priority"`
	Date        *string `json:"date" validate:"omitempty,calendardate"`
}

// TaskQuery combines the list filters of the task views. Empty fields do not
// filter; Sort falls back to due-date ordering.
type TaskQuery struct {
	Status   string `query:"status" json:"status"`
	Priority string `query:"priority" json:"priority"`
	Text     string `query:"q" json:"q"`
	Sort     string `query:"sort" json:"sort"`
}

// CreateNoteRequest is the input of NoteService.CreateNote. SpecificData is
// decoded according to Type.
type CreateNoteRequest struct {
	Type         string          `json:"type" validate:"required,oneof=standard sticky checklist idea meeting"`
	Title        string          `json:"title" validate:"max=500"`
	Content      string          `json:"content"`
	Color        string          `json:"color" validate:"omitempty,max=32"`
	SpecificData json.RawMessage `json:"specificData"`
}

// UpdateNoteRequest is the wire form of a note patch. A present SpecificData
// replaces the variant payload as a whole.
type UpdateNoteRequest struct {
	Title        *string         `json:"title" validate:"omitempty,max=500"`
	Content      *string         `json:"content"`
	Color        *string         `json:"color" validate:"omitempty,max=32"`
	SpecificData json.RawMessage `json:"specificData"`
}

// NotePatch is a decoded note update. Body, when set, replaces the variant
// payload and must match the stored note type.
type NotePatch struct {
	Title   *string
	Content *string
	Color   *string
	Body    entities.NoteBody
}

// NoteQuery combines the list filters of the note views
type NoteQuery struct {
	Type string `query:"type" json:"type"`
	Text string `query:"q" json:"q"`
	Sort string `query:"sort" json:"sort"`
}

// ChecklistItemRequest adds an item to a checklist note
type ChecklistItemRequest struct {
	Text string `json:"text" validate:"required,notblank,max=500"`
}

// TagRequest adds a tag to a standard note
type TagRequest struct {
	Tag string `json:"tag" validate:"required,notblank,max=64"`
}

// TokenRequest asks for an API token
type TokenRequest struct {
	Subject string `json:"subject" validate:"required,notblank"`
}

// TokenResponse carries an issued API token
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	ExpiresAt   string `json:"expires_at"`
}

// Claims are the validated contents of an API token
type Claims struct {
	Subject string `json:"subject"`
	Issuer  string `json:"issuer"`
}
