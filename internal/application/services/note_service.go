package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/taskmaster/planner/internal/application/query"
	"github.com/taskmaster/planner/internal/domain/entities"
	"github.com/taskmaster/planner/internal/infrastructure/clock"
	"github.com/taskmaster/planner/internal/infrastructure/logger"
	"github.com/taskmaster/planner/internal/ports"
)

// NoteService handles note-related operations
type NoteService struct {
	repo     ports.NoteCollection
	clock    clock.Clock
	validate *validator.Validate
	logger   *logger.Logger
}

// NewNoteService creates a new note service
func NewNoteService(repo ports.NoteCollection, clk clock.Clock, validate *validator.Validate, log *logger.Logger) *NoteService {
	return &NoteService{
		repo:     repo,
		clock:    clk,
		validate: validate,
		logger:   log.WithComponent("note_service"),
	}
}

func (s *NoteService) now() time.Time {
	return s.clock.Now().UTC()
}

// CreateNote builds the variant payload from the request's specific data and
// appends the note.
func (s *NoteService) CreateNote(ctx context.Context, req ports.CreateNoteRequest) (*entities.Note, error) {
	if err := validateRequest(s.validate, req); err != nil {
		return nil, err
	}

	noteType := entities.NoteType(req.Type)
	body, err := entities.DecodeBody(noteType, req.SpecificData)
	if err != nil {
		return nil, fmt.Errorf("%w: %s specific data: %v", entities.ErrInvalidInput, noteType, err)
	}

	title := strings.TrimSpace(req.Title)
	if title == "" && strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("%w: note needs a title or content", entities.ErrInvalidInput)
	}

	color := strings.TrimSpace(req.Color)
	if color == "" {
		color = noteType.DefaultColor()
	}

	now := s.now()
	note := entities.Note{
		ID:        uuid.NewString(),
		Type:      noteType,
		Title:     title,
		Content:   req.Content,
		Color:     color,
		CreatedAt: now,
		UpdatedAt: now,
		Body:      body,
	}

	err = s.repo.UpdateNotes(ctx, func(notes []entities.Note) ([]entities.Note, bool, error) {
		return append(notes, note), true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	s.logger.LogMutation("notes", "create", note.ID, map[string]interface{}{"type": note.Type})
	return &note, nil
}

// UpdateNote merges title, content and color, replaces the body when the
// patch carries one and refreshes updatedAt.
func (s *NoteService) UpdateNote(ctx context.Context, id string, patch ports.NotePatch) (*entities.Note, error) {
	note, _, err := s.mutate(ctx, id, func(n *entities.Note) (bool, error) {
		if patch.Body != nil && patch.Body.Type() != n.Type {
			return false, fmt.Errorf("%w: %s note cannot take %s data", entities.ErrNoteTypeMismatch, n.Type, patch.Body.Type())
		}
		if patch.Title != nil {
			n.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Content != nil {
			n.Content = *patch.Content
		}
		if patch.Color != nil {
			n.Color = strings.TrimSpace(*patch.Color)
			if n.Color == "" {
				n.Color = n.Type.DefaultColor()
			}
		}
		if patch.Body != nil {
			n.Body = entities.Normalize(patch.Body)
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.LogMutation("notes", "update", id, nil)
	return note, nil
}

// ApplyUpdateRequest decodes a wire patch against the stored note type and
// applies it with UpdateNote.
func (s *NoteService) ApplyUpdateRequest(ctx context.Context, id string, req ports.UpdateNoteRequest) (*entities.Note, error) {
	if err := validateRequest(s.validate, req); err != nil {
		return nil, err
	}

	patch := ports.NotePatch{Title: req.Title, Content: req.Content, Color: req.Color}

	raw := bytes.TrimSpace(req.SpecificData)
	if len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		existing, err := s.GetNoteByID(ctx, id)
		if err != nil {
			return nil, err
		}
		body, err := entities.DecodeBody(existing.Type, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s specific data: %v", entities.ErrInvalidInput, existing.Type, err)
		}
		patch.Body = body
	}

	return s.UpdateNote(ctx, id, patch)
}

// DeleteNote removes a note. Deleting an unknown id is a silent no-op.
func (s *NoteService) DeleteNote(ctx context.Context, id string) error {
	removed := false
	err := s.repo.UpdateNotes(ctx, func(notes []entities.Note) ([]entities.Note, bool, error) {
		i := indexOfNote(notes, id)
		if i < 0 {
			return notes, false, nil
		}
		removed = true
		return append(notes[:i], notes[i+1:]...), true, nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	if removed {
		s.logger.LogMutation("notes", "delete", id, nil)
	}
	return nil
}

// ClearNotes removes every note
func (s *NoteService) ClearNotes(ctx context.Context) error {
	if err := s.repo.SaveNotes(ctx, []entities.Note{}); err != nil {
		return fmt.Errorf("failed to clear notes: %w", err)
	}
	s.logger.LogMutation("notes", "clear", "", nil)
	return nil
}

// GetNoteByID retrieves a note by ID
func (s *NoteService) GetNoteByID(ctx context.Context, id string) (*entities.Note, error) {
	notes, err := s.repo.LoadNotes(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOfNote(notes, id)
	if i < 0 {
		return nil, entities.ErrNoteNotFound
	}
	return &notes[i], nil
}

// GetAllNotes returns the collection in stored order
func (s *NoteService) GetAllNotes(ctx context.Context) ([]entities.Note, error) {
	return s.repo.LoadNotes(ctx)
}

// GetNotesByType returns notes of one variant
func (s *NoteService) GetNotesByType(ctx context.Context, t entities.NoteType) ([]entities.Note, error) {
	notes, err := s.repo.LoadNotes(ctx)
	if err != nil {
		return nil, err
	}
	return query.FilterNotes(notes, query.NoteType(string(t))), nil
}

// SearchNotes matches title, content or standard-note tags, ignoring case. A
// blank query returns every note in stored order.
func (s *NoteService) SearchNotes(ctx context.Context, q string) ([]entities.Note, error) {
	notes, err := s.repo.LoadNotes(ctx)
	if err != nil {
		return nil, err
	}
	return query.FilterNotes(notes, query.NoteText(q)), nil
}

// QueryNotes filters by type and text and sorts by q.Sort. Unknown sort keys
// keep stored order.
func (s *NoteService) QueryNotes(ctx context.Context, q ports.NoteQuery) ([]entities.Note, error) {
	notes, err := s.repo.LoadNotes(ctx)
	if err != nil {
		return nil, err
	}
	filtered := query.FilterNotes(notes, query.NoteType(q.Type), query.NoteText(q.Text))
	return query.SortNotes(filtered, q.Sort), nil
}

// ToggleChecklistItem flips one item. An out-of-range index returns the note
// unchanged.
func (s *NoteService) ToggleChecklistItem(ctx context.Context, id string, index int) (*entities.Note, error) {
	return s.editChecklist(ctx, id, "toggle_item", func(b *entities.ChecklistBody) bool {
		if index < 0 || index >= len(b.Items) {
			return false
		}
		b.Items[index].Checked = !b.Items[index].Checked
		return true
	})
}

// AddChecklistItem appends an unchecked item
func (s *NoteService) AddChecklistItem(ctx context.Context, id, text string) (*entities.Note, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: checklist item text is empty", entities.ErrInvalidInput)
	}
	return s.editChecklist(ctx, id, "add_item", func(b *entities.ChecklistBody) bool {
		b.Items = append(b.Items, entities.ChecklistItem{Text: text})
		return true
	})
}

// RemoveChecklistItem drops one item. An out-of-range index returns the note
// unchanged.
func (s *NoteService) RemoveChecklistItem(ctx context.Context, id string, index int) (*entities.Note, error) {
	return s.editChecklist(ctx, id, "remove_item", func(b *entities.ChecklistBody) bool {
		if index < 0 || index >= len(b.Items) {
			return false
		}
		b.Items = slices.Delete(b.Items, index, index+1)
		return true
	})
}

// GetChecklistProgress summarizes a checklist note
func (s *NoteService) GetChecklistProgress(ctx context.Context, id string) (entities.ChecklistProgress, error) {
	note, err := s.GetNoteByID(ctx, id)
	if err != nil {
		return entities.ChecklistProgress{}, err
	}
	body, ok := note.Body.(entities.ChecklistBody)
	if !ok {
		return entities.ChecklistProgress{}, entities.ErrNotChecklist
	}
	return body.Progress(), nil
}

// AddTagToNote adds a tag to a standard note. Adding a present tag is a no-op.
func (s *NoteService) AddTagToNote(ctx context.Context, id, tag string) (*entities.Note, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, fmt.Errorf("%w: tag is empty", entities.ErrInvalidInput)
	}
	return s.editTags(ctx, id, "add_tag", func(b *entities.StandardBody) bool {
		if slices.Contains(b.Tags, tag) {
			return false
		}
		b.Tags = append(b.Tags, tag)
		return true
	})
}

// RemoveTagFromNote removes a tag from a standard note. Removing an absent tag
// is a no-op.
func (s *NoteService) RemoveTagFromNote(ctx context.Context, id, tag string) (*entities.Note, error) {
	tag = strings.TrimSpace(tag)
	return s.editTags(ctx, id, "remove_tag", func(b *entities.StandardBody) bool {
		i := slices.Index(b.Tags, tag)
		if i < 0 {
			return false
		}
		b.Tags = slices.Delete(b.Tags, i, i+1)
		return true
	})
}

// ContentSize classifies a note for card layout
func (s *NoteService) ContentSize(note *entities.Note) entities.ContentSize {
	return note.ContentSize()
}

// ExportNotes returns the collection as indented JSON
func (s *NoteService) ExportNotes(ctx context.Context) ([]byte, error) {
	notes, err := s.repo.LoadNotes(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(notes, "", "  ")
}

// ImportNotes replaces the collection with a JSON array of notes. Records of
// unknown type are rejected.
func (s *NoteService) ImportNotes(ctx context.Context, data []byte) (int, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		return 0, fmt.Errorf("%w: expected a JSON array of notes", entities.ErrInvalidInput)
	}

	var notes []entities.Note
	if err := json.Unmarshal(data, &notes); err != nil {
		return 0, fmt.Errorf("%w: %v", entities.ErrInvalidInput, err)
	}

	now := s.now()
	for i := range notes {
		n := &notes[i]
		if !n.Type.Valid() {
			return 0, fmt.Errorf("%w: note %d has unknown type %q", entities.ErrInvalidInput, i, n.Type)
		}
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		if n.Color == "" {
			n.Color = n.Type.DefaultColor()
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = now
		}
		if n.UpdatedAt.IsZero() {
			n.UpdatedAt = n.CreatedAt
		}
	}

	if err := s.repo.SaveNotes(ctx, notes); err != nil {
		return 0, fmt.Errorf("failed to import notes: %w", err)
	}

	s.logger.LogMutation("notes", "import", "", map[string]interface{}{"count": len(notes)})
	return len(notes), nil
}

// mutate applies fn to the stored note under the collection lock. When fn
// reports a change the note's updatedAt is refreshed and the collection is
// written; otherwise nothing is written and the stored note is returned.
func (s *NoteService) mutate(ctx context.Context, id string, fn func(*entities.Note) (bool, error)) (*entities.Note, bool, error) {
	var (
		result  entities.Note
		changed bool
	)
	now := s.now()

	err := s.repo.UpdateNotes(ctx, func(notes []entities.Note) ([]entities.Note, bool, error) {
		i := indexOfNote(notes, id)
		if i < 0 {
			return nil, false, entities.ErrNoteNotFound
		}

		n := notes[i].Clone()
		ok, err := fn(&n)
		if err != nil {
			return nil, false, err
		}
		if ok {
			n.UpdatedAt = now
			notes[i] = n
			changed = true
		}
		result = notes[i]
		return notes, ok, nil
	})
	if err != nil {
		return nil, false, err
	}
	return &result, changed, nil
}

func (s *NoteService) editChecklist(ctx context.Context, id, action string, fn func(*entities.ChecklistBody) bool) (*entities.Note, error) {
	note, changed, err := s.mutate(ctx, id, func(n *entities.Note) (bool, error) {
		body, ok := n.Body.(entities.ChecklistBody)
		if !ok {
			return false, entities.ErrNotChecklist
		}
		if !fn(&body) {
			return false, nil
		}
		n.Body = body
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.logger.LogMutation("notes", action, id, nil)
	}
	return note, nil
}

func (s *NoteService) editTags(ctx context.Context, id, action string, fn func(*entities.StandardBody) bool) (*entities.Note, error) {
	note, changed, err := s.mutate(ctx, id, func(n *entities.Note) (bool, error) {
		body, ok := n.Body.(entities.StandardBody)
		if !ok {
			return false, fmt.Errorf("%w: tags belong to standard notes, not %s", entities.ErrNoteTypeMismatch, n.Type)
		}
		if !fn(&body) {
			return false, nil
		}
		n.Body = body
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.logger.LogMutation("notes", action, id, nil)
	}
	return note, nil
}

func indexOfNote(notes []entities.Note, id string) int {
	for i := range notes {
		if notes[i].ID == id {
			return i
		}
	}
	return -1
}
