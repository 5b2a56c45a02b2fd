// Package query holds the pure filtering, searching and ordering rules shared
// by the services and the presentation layer. Nothing here mutates its input.
package query

import (
	"strings"

	"github.com/taskmaster/planner/internal/domain/entities"
)

// NormalizeQuery trims the query and folds it to lower case. An empty result
// means "match everything".
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// ContainsFold reports whether needle occurs in haystack, ignoring case.
// An empty needle matches.
func ContainsFold(haystack, needle string) bool {
	needle = NormalizeQuery(needle)
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(haystack), needle)
}

type (
	TaskPredicate func(*entities.Task) bool
	NotePredicate func(*entities.Note) bool
)

// AllTasks combines predicates with logical AND. No predicates match everything.
func AllTasks(preds ...TaskPredicate) TaskPredicate {
	return func(t *entities.Task) bool {
		for _, p := range preds {
			if p != nil && !p(t) {
				return false
			}
		}
		return true
	}
}

// AllNotes combines predicates with logical AND.
func AllNotes(preds ...NotePredicate) NotePredicate {
	return func(n *entities.Note) bool {
		for _, p := range preds {
			if p != nil && !p(n) {
				return false
			}
		}
		return true
	}
}

// TaskStatus filters on completion. StatusAll matches every task.
func TaskStatus(status entities.TaskStatusFilter) TaskPredicate {
	switch status {
	case entities.StatusActive:
		return func(t *entities.Task) bool { return !t.Completed }
	case entities.StatusCompleted:
		return func(t *entities.Task) bool { return t.Completed }
	default:
		return nil
	}
}

// TaskPriority filters on an exact priority. "" and "all" match every task.
func TaskPriority(priority string) TaskPredicate {
	p := strings.ToLower(strings.TrimSpace(priority))
	if p == "" || p == "all" {
		return nil
	}
	return func(t *entities.Task) bool { return string(t.Priority) == p }
}

// TaskText matches the query against text or description.
func TaskText(q string) TaskPredicate {
	q = NormalizeQuery(q)
	if q == "" {
		return nil
	}
	return func(t *entities.Task) bool {
		return ContainsFold(t.Text, q) || ContainsFold(t.Description, q)
	}
}

// TaskDueOn matches tasks due on the given day.
func TaskDueOn(d entities.Date) TaskPredicate {
	return func(t *entities.Task) bool { return t.HasDueDate() && t.Date.Day() == d.Day() }
}

// TaskOverdue matches open tasks whose due date is before today.
func TaskOverdue(today entities.Date) TaskPredicate {
	return func(t *entities.Task) bool { return t.IsOverdue(today) }
}

// NoteType filters on the variant tag. "" and "all" match every note.
func NoteType(t string) NotePredicate {
	nt := strings.ToLower(strings.TrimSpace(t))
	if nt == "" || nt == "all" {
		return nil
	}
	return func(n *entities.Note) bool { return string(n.Type) == nt }
}

// NoteText matches the query against title, content or any tag of a standard
// note.
func NoteText(q string) NotePredicate {
	q = NormalizeQuery(q)
	if q == "" {
		return nil
	}
	return func(n *entities.Note) bool {
		if ContainsFold(n.Title, q) || ContainsFold(n.Content, q) {
			return true
		}
		for _, tag := range n.Tags() {
			if ContainsFold(tag, q) {
				return true
			}
		}
		return false
	}
}

// FilterTasks returns the tasks matching every predicate, in input order, as a
// fresh slice.
func FilterTasks(tasks []entities.Task, preds ...TaskPredicate) []entities.Task {
	match := AllTasks(preds...)
	out := make([]entities.Task, 0, len(tasks))
	for i := range tasks {
		if match(&tasks[i]) {
			out = append(out, tasks[i])
		}
	}
	return out
}

// FilterNotes returns the notes matching every predicate, in input order.
func FilterNotes(notes []entities.Note, preds ...NotePredicate) []entities.Note {
	match := AllNotes(preds...)
	out := make([]entities.Note, 0, len(notes))
	for i := range notes {
		if match(&notes[i]) {
			out = append(out, notes[i].Clone())
		}
	}
	return out
}
