package presentation

import (
	"strings"
	"time"

	"github.com/taskmaster/planner/internal/domain/entities"
)

const icsStamp = "20060102T150405Z"

var icsEscaper = strings.NewReplacer(
	`\`, `\\`,
	";", `\;`,
	",", `\,`,
	"\r\n", `\n`,
	"\n", `\n`,
)

// TaskCalendarICS renders the dated tasks as an iCalendar (RFC 5545) feed of
// all-day events. now stamps DTSTAMP.
func TaskCalendarICS(tasks []entities.Task, name string, now time.Time) string {
	var b strings.Builder
	line := func(s string) {
		b.WriteString(s)
		b.WriteString("\r\n")
	}

	stamp := now.UTC().Format(icsStamp)

	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line("PRODID:-//TaskMaster//Planner//EN")
	line("CALSCALE:GREGORIAN")
	if name != "" {
		line("X-WR-CALNAME:" + icsEscaper.Replace(name))
	}

	for _, t := range tasks {
		if !t.HasDueDate() {
			continue
		}
		start, err := t.Date.Time()
		if err != nil {
			continue
		}

		line("BEGIN:VEVENT")
		line("UID:" + t.ID + "@taskmaster")
		line("DTSTAMP:" + stamp)
		line("DTSTART;VALUE=DATE:" + start.Format("20060102"))
		line("DTEND;VALUE=DATE:" + start.AddDate(0, 0, 1).Format("20060102"))
		line("SUMMARY:" + icsEscaper.Replace(t.Text))
		if t.Description != "" {
			line("DESCRIPTION:" + icsEscaper.Replace(t.Description))
		}
		line("PRIORITY:" + icsPriority(t.Priority))
		line("CATEGORIES:" + strings.ToUpper(string(t.Priority)))
		line("COLOR:" + icsColorName(t.Priority, t.Completed))
		if t.Completed {
			line("X-TASKMASTER-COMPLETED:TRUE")
		}
		line("END:VEVENT")
	}

	line("END:VCALENDAR")
	return b.String()
}

func icsPriority(p entities.Priority) string {
	switch p {
	case entities.PriorityHigh:
		return "1"
	case entities.PriorityLow:
		return "9"
	default:
		return "5"
	}
}

// icsColorName maps the event color to a CSS3 name, as RFC 7986 requires.
func icsColorName(p entities.Priority, completed bool) string {
	switch PriorityColor(p, completed) {
	case ColorCompleted:
		return "mediumseagreen"
	case ColorHigh:
		return "tomato"
	case ColorLow:
		return "royalblue"
	default:
		return "orange"
	}
}
