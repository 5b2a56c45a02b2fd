package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// noteHeader is the shared part of a persisted note record. Variant fields are
// stored flat next to it.
type noteHeader struct {
	ID           string          `json:"id"`
	Type         NoteType        `json:"type"`
	Title        string          `json:"title"`
	Content      string          `json:"content"`
	Color        string          `json:"color"`
	CreatedAt    string          `json:"createdAt"`
	UpdatedAt    string          `json:"updatedAt"`
	SpecificData json.RawMessage `json:"specificData,omitempty"`
}

// MarshalJSON writes the note as one flat object.
func (n Note) MarshalJSON() ([]byte, error) {
	head, err := json.Marshal(noteHeader{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Content:   n.Content,
		Color:     n.Color,
		CreatedAt: formatTimestamp(n.CreatedAt),
		UpdatedAt: formatTimestamp(n.UpdatedAt),
	})
	if err != nil {
		return nil, err
	}
	if n.Body == nil {
		return head, nil
	}

	body, err := json.Marshal(Normalize(n.Body))
	if err != nil {
		return nil, fmt.Errorf("marshal %s note body: %w", n.Type, err)
	}
	body = bytes.TrimSpace(body)
	if len(body) <= 2 {
		return head, nil
	}

	out := make([]byte, 0, len(head)+len(body))
	out = append(out, head[:len(head)-1]...)
	out = append(out, ',')
	out = append(out, body[1:]...)
	return out, nil
}

// UnmarshalJSON reads a flat note record. A nested specificData object, which
// older clients wrote on update, wins over the flat fields.
func (n *Note) UnmarshalJSON(data []byte) error {
	var head noteHeader
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}

	src := data
	if len(head.SpecificData) > 0 && !bytes.Equal(bytes.TrimSpace(head.SpecificData), []byte("null")) {
		src = head.SpecificData
	}

	body, err := decodeBody(head.Type, src)
	if err != nil {
		return fmt.Errorf("decode %s note %s: %w", head.Type, head.ID, err)
	}

	*n = Note{
		ID:        head.ID,
		Type:      head.Type,
		Title:     head.Title,
		Content:   head.Content,
		Color:     head.Color,
		CreatedAt: parseTimestamp(head.CreatedAt),
		UpdatedAt: parseTimestamp(head.UpdatedAt),
		Body:      body,
	}
	return nil
}

// DecodeBody decodes the specific data of a note type from a JSON object.
func DecodeBody(t NoteType, data []byte) (NoteBody, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: unknown note type %q", ErrInvalidInput, t)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return EmptyBody(t), nil
	}
	return decodeBody(t, data)
}

func decodeBody(t NoteType, data []byte) (NoteBody, error) {
	switch t {
	case NoteTypeStandard:
		var b StandardBody
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, err
		}
		return Normalize(b), nil
	case NoteTypeSticky:
		return StickyBody{}, nil
	case NoteTypeChecklist:
		var b ChecklistBody
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, err
		}
		return Normalize(b), nil
	case NoteTypeIdea:
		var b IdeaBody
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, err
		}
		return Normalize(b), nil
	case NoteTypeMeeting:
		var b MeetingBody
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, err
		}
		return Normalize(b), nil
	default:
		return nil, nil
	}
}

// UnmarshalJSON accepts ["a","b"], "a, b" or null.
func (a *Attendees) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = Attendees{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = ParseAttendees(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*a = Attendees(list)
	return nil
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t
	}
	return time.Time{}
}
