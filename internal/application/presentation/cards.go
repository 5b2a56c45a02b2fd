package presentation

import (
	"html"
	"regexp"
	"strings"

	"github.com/taskmaster/planner/internal/application/query"
	"github.com/taskmaster/planner/internal/domain/entities"
)

// NoteCard is a note prepared for a card grid.
type NoteCard struct {
	Note     entities.Note               `json:"note"`
	Size     entities.ContentSize        `json:"size"`
	Progress *entities.ChecklistProgress `json:"progress,omitempty"`
}

// TaskCard is a task prepared for a list row.
type TaskCard struct {
	Task    entities.Task `json:"task"`
	Overdue bool          `json:"overdue"`
	Color   string        `json:"color"`
}

// NewNoteCard sizes a note and attaches checklist progress where it applies.
func NewNoteCard(n entities.Note) NoteCard {
	card := NoteCard{Note: n, Size: n.ContentSize()}
	if b, ok := n.Body.(entities.ChecklistBody); ok {
		p := b.Progress()
		card.Progress = &p
	}
	return card
}

// NoteCards maps NewNoteCard over notes.
func NoteCards(notes []entities.Note) []NoteCard {
	cards := make([]NoteCard, len(notes))
	for i, n := range notes {
		cards[i] = NewNoteCard(n)
	}
	return cards
}

// NewTaskCard flags overdue tasks.
func NewTaskCard(t entities.Task, today entities.Date) TaskCard {
	return TaskCard{
		Task:    t,
		Overdue: t.IsOverdue(today),
		Color:   PriorityColor(t.Priority, t.Completed),
	}
}

// TaskCards maps NewTaskCard over tasks.
func TaskCards(tasks []entities.Task, today entities.Date) []TaskCard {
	cards := make([]TaskCard, len(tasks))
	for i, t := range tasks {
		cards[i] = NewTaskCard(t, today)
	}
	return cards
}

// Highlight HTML-escapes text and wraps every case-insensitive occurrence of q
// in <mark>. A blank query only escapes.
func Highlight(text, q string) string {
	q = strings.TrimSpace(q)
	if query.NormalizeQuery(q) == "" {
		return html.EscapeString(text)
	}

	re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(q))
	matches := re.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return html.EscapeString(text)
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(html.EscapeString(text[last:m[0]]))
		b.WriteString("<mark>")
		b.WriteString(html.EscapeString(text[m[0]:m[1]]))
		b.WriteString("</mark>")
		last = m[1]
	}
	b.WriteString(html.EscapeString(text[last:]))
	return b.String()
}
