package presentation

import (
	"github.com/taskmaster/planner/internal/domain/entities"
)

// Search hit kinds
const (
	KindTask = "task"
	KindNote = "note"
)

// SearchHit is one row of the global search result list. The HTML fields are
// escaped with matches wrapped in <mark>.
type SearchHit struct {
	Kind       string `json:"kind"`
	ID         string `json:"id"`
	Title      string `json:"title"`
	TitleHTML  string `json:"titleHtml"`
	DetailHTML string `json:"detailHtml,omitempty"`
}

// TaskHits renders matched tasks; the detail line is the description.
func TaskHits(tasks []entities.Task, q string) []SearchHit {
	hits := make([]SearchHit, len(tasks))
	for i, t := range tasks {
		hits[i] = SearchHit{
			Kind:      KindTask,
			ID:        t.ID,
			Title:     t.Text,
			TitleHTML: Highlight(t.Text, q),
		}
		if t.Description != "" {
			hits[i].DetailHTML = Highlight(t.Description, q)
		}
	}
	return hits
}

// NoteHits renders matched notes; the detail line is the content.
func NoteHits(notes []entities.Note, q string) []SearchHit {
	hits := make([]SearchHit, len(notes))
	for i, n := range notes {
		hits[i] = SearchHit{
			Kind:      KindNote,
			ID:        n.ID,
			Title:     n.Title,
			TitleHTML: Highlight(n.Title, q),
		}
		if n.Content != "" {
			hits[i].DetailHTML = Highlight(n.Content, q)
		}
	}
	return hits
}
