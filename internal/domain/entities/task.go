package entities

// Task represents a to-do item
type Task struct {
	ID          string   `json:"id"`
	Text        string   `json:"text"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Date        Date     `json:"date"`
	CreatedAt   Date     `json:"createdAt"`
	Completed   bool     `json:"completed"`
	CompletedAt *Date    `json:"completedAt"`
}

// HasDueDate reports whether the task carries a due date.
func (t *Task) HasDueDate() bool {
	return !t.Date.IsZero()
}

// SetCompleted keeps Completed and CompletedAt in step: completing stamps
// today, reopening clears the stamp.
func (t *Task) SetCompleted(completed bool, today Date) {
	t.Completed = completed
	if completed {
		t.CompletedAt = today.Ptr()
	} else {
		t.CompletedAt = nil
	}
}

// IsOverdue reports whether an open task is past its due date.
func (t *Task) IsOverdue(today Date) bool {
	return !t.Completed && t.HasDueDate() && t.Date.Before(today)
}

// CompletionConsistent reports whether the completed flag and timestamp agree.
func (t *Task) CompletionConsistent() bool {
	return t.Completed == (t.CompletedAt != nil)
}

// TaskStats aggregates a task collection
type TaskStats struct {
	Total          int `json:"total"`
	Completed      int `json:"completed"`
	Active         int `json:"active"`
	CompletionRate int `json:"completionRate"`
}

// Percent returns round(part/total*100), or 0 for an empty total.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	// integer half-up rounding of part*100/total
	return (part*200 + total) / (2 * total)
}
