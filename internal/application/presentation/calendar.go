// Package presentation turns tasks and notes into display-ready values:
// calendar events, chart series, heatmap cells and cards. It renders nothing
// and holds no state between calls.
package presentation

import (
	"unicode/utf8"

	"github.com/taskmaster/planner/internal/domain/entities"
)

// Event colors
const (
	ColorCompleted = "#10b981"
	ColorHigh      = "#ef4444"
	ColorMedium    = "#f59e0b"
	ColorLow       = "#3b82f6"
	ColorEventText = "#ffffff"
)

// DefaultTitleLimit is the rune budget of a calendar event title.
const DefaultTitleLimit = 20

// CalendarEvent is one dated task placed on a calendar.
type CalendarEvent struct {
	ID              string              `json:"id"`
	Title           string              `json:"title"`
	Start           entities.Date       `json:"start"`
	BackgroundColor string              `json:"backgroundColor"`
	BorderColor     string              `json:"borderColor"`
	TextColor       string              `json:"textColor"`
	ExtendedProps   CalendarEventDetail `json:"extendedProps"`
}

// CalendarEventDetail carries what the truncated title leaves out.
type CalendarEventDetail struct {
	Description string            `json:"description"`
	Priority    entities.Priority `json:"priority"`
	Completed   bool              `json:"completed"`
	FullTitle   string            `json:"fullTitle"`
}

// PriorityColor picks the event color. Completion wins over priority and an
// unknown priority falls back to the medium color.
func PriorityColor(priority entities.Priority, completed bool) string {
	if completed {
		return ColorCompleted
	}
	switch priority {
	case entities.PriorityHigh:
		return ColorHigh
	case entities.PriorityLow:
		return ColorLow
	default:
		return ColorMedium
	}
}

// TruncateTitle cuts s to limit runes and appends "..." when it was longer.
func TruncateTitle(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + "..."
}

// CalendarEvents returns one event per task with a due date, in input order.
// A non-positive titleLimit uses DefaultTitleLimit.
func CalendarEvents(tasks []entities.Task, titleLimit int) []CalendarEvent {
	if titleLimit <= 0 {
		titleLimit = DefaultTitleLimit
	}

	events := make([]CalendarEvent, 0, len(tasks))
	for _, t := range tasks {
		if !t.HasDueDate() {
			continue
		}
		color := PriorityColor(t.Priority, t.Completed)
		events = append(events, CalendarEvent{
			ID:              t.ID,
			Title:           TruncateTitle(t.Text, titleLimit),
			Start:           t.Date.Day(),
			BackgroundColor: color,
			BorderColor:     color,
			TextColor:       ColorEventText,
			ExtendedProps: CalendarEventDetail{
				Description: t.Description,
				Priority:    t.Priority,
				Completed:   t.Completed,
				FullTitle:   t.Text,
			},
		})
	}
	return events
}
