package services

import (
	"context"
	"strings"

	"github.com/taskmaster/planner/internal/application/presentation"
)

// SearchResults is the global search over both collections
type SearchResults struct {
	Query string                   `json:"query"`
	Tasks []presentation.SearchHit `json:"tasks"`
	Notes []presentation.SearchHit `json:"notes"`
}

// SearchService runs one query against tasks and notes
type SearchService struct {
	tasks *TaskService
	notes *NoteService
}

// NewSearchService creates a new search service
func NewSearchService(tasks *TaskService, notes *NoteService) *SearchService {
	return &SearchService{tasks: tasks, notes: notes}
}

// Search matches q against both collections in stored order. A blank query
// returns everything.
func (s *SearchService) Search(ctx context.Context, q string) (*SearchResults, error) {
	q = strings.TrimSpace(q)

	tasks, err := s.tasks.SearchTasks(ctx, q)
	if err != nil {
		return nil, err
	}
	notes, err := s.notes.SearchNotes(ctx, q)
	if err != nil {
		return nil, err
	}

	return &SearchResults{
		Query: q,
		Tasks: presentation.TaskHits(tasks, q),
		Notes: presentation.NoteHits(notes, q),
	}, nil
}
