package query

import (
	"slices"
	"strings"

	"github.com/taskmaster/planner/internal/domain/entities"
)

// Task sort keys
const (
	SortByPriority  = "priority"
	SortByDate      = "date"
	SortByCreated   = "created"
	SortByCompleted = "completed"
)

// Note sort keys
const (
	SortByUpdated = "updated"
	SortByTitle   = "title"
	SortByType    = "type"
)

// OrderTasksByDueDate puts dated tasks first, ascending by date, followed by
// undated tasks in their original order. The result is a new slice.
func OrderTasksByDueDate(tasks []entities.Task) []entities.Task {
	out := slices.Clone(tasks)
	slices.SortStableFunc(out, compareDueDate)
	return out
}

func compareDueDate(a, b entities.Task) int {
	switch {
	case a.HasDueDate() && b.HasDueDate():
		return strings.Compare(string(a.Date.Day()), string(b.Date.Day()))
	case a.HasDueDate():
		return -1
	case b.HasDueDate():
		return 1
	default:
		return 0
	}
}

// SortTasks orders a copy of tasks by the given key:
//
//	priority   high, medium, low
//	date       due date ascending, undated last
//	created    newest first
//	completed  open tasks first
//
// Unknown keys keep the input order. Ties keep the input order.
func SortTasks(tasks []entities.Task, by string) []entities.Task {
	out := slices.Clone(tasks)

	var cmp func(a, b entities.Task) int
	switch strings.ToLower(by) {
	case SortByPriority:
		cmp = func(a, b entities.Task) int { return a.Priority.Rank() - b.Priority.Rank() }
	case SortByDate:
		cmp = compareDueDate
	case SortByCreated:
		cmp = func(a, b entities.Task) int {
			return strings.Compare(string(b.CreatedAt.Day()), string(a.CreatedAt.Day()))
		}
	case SortByCompleted:
		cmp = func(a, b entities.Task) int { return boolRank(a.Completed) - boolRank(b.Completed) }
	default:
		return out
	}

	slices.SortStableFunc(out, cmp)
	return out
}

// SortNotes orders a copy of notes: created and updated newest first, title
// and type ascending ignoring case. Unknown keys keep the input order.
func SortNotes(notes []entities.Note, by string) []entities.Note {
	out := make([]entities.Note, len(notes))
	for i := range notes {
		out[i] = notes[i].Clone()
	}

	var cmp func(a, b entities.Note) int
	switch strings.ToLower(by) {
	case SortByCreated:
		cmp = func(a, b entities.Note) int { return b.CreatedAt.Compare(a.CreatedAt) }
	case SortByUpdated:
		cmp = func(a, b entities.Note) int { return b.UpdatedAt.Compare(a.UpdatedAt) }
	case SortByTitle:
		cmp = func(a, b entities.Note) int {
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
	case SortByType:
		cmp = func(a, b entities.Note) int { return strings.Compare(string(a.Type), string(b.Type)) }
	default:
		return out
	}

	slices.SortStableFunc(out, cmp)
	return out
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
