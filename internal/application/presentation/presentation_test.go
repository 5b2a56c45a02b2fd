package presentation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/planner/internal/domain/entities"
)

func completedOn(d entities.Date) *entities.Date { return &d }

func TestPriorityColor(t *testing.T) {
	assert.Equal(t, ColorCompleted, PriorityColor(entities.PriorityHigh, true))
	assert.Equal(t, ColorHigh, PriorityColor(entities.PriorityHigh, false))
	assert.Equal(t, ColorMedium, PriorityColor(entities.PriorityMedium, false))
	assert.Equal(t, ColorLow, PriorityColor(entities.PriorityLow, false))
	assert.Equal(t, ColorMedium, PriorityColor("urgent", false))
}

func TestTruncateTitle(t *testing.T) {
	assert.Equal(t, "short", TruncateTitle("short", 20))
	assert.Equal(t, "exactly twenty chars", TruncateTitle("exactly twenty chars", 20))
	assert.Equal(t, "exactly twenty chars...", TruncateTitle("exactly twenty chars!", 20))
	assert.Equal(t, "ñandú...", TruncateTitle("ñandú salvaje", 5))
}

func TestCalendarEvents(t *testing.T) {
	tasks := []entities.Task{
		{ID: "1", Text: "No date"},
		{ID: "2", Text: "Quarterly report for the board", Description: "Q3", Priority: entities.PriorityHigh, Date: "2025-06-10"},
		{ID: "3", Text: "Done", Priority: entities.PriorityLow, Date: "2025-06-11", Completed: true, CompletedAt: completedOn("2025-06-11")},
	}

	events := CalendarEvents(tasks, 0)
	require.Len(t, events, 2)

	assert.Equal(t, "2", events[0].ID)
	assert.Equal(t, "Quarterly report for...", events[0].Title)
	assert.Equal(t, entities.Date("2025-06-10"), events[0].Start)
	assert.Equal(t, ColorHigh, events[0].BackgroundColor)
	assert.Equal(t, ColorHigh, events[0].BorderColor)
	assert.Equal(t, "Quarterly report for the board", events[0].ExtendedProps.FullTitle)
	assert.Equal(t, "Q3", events[0].ExtendedProps.Description)

	assert.Equal(t, ColorCompleted, events[1].BackgroundColor)
	assert.True(t, events[1].ExtendedProps.Completed)
}

func TestTaskCalendarICS(t *testing.T) {
	tasks := []entities.Task{
		{ID: "a", Text: "Pay rent, on time; really", Description: "line1\nline2", Priority: entities.PriorityHigh, Date: "2025-06-30"},
		{ID: "b", Text: "Undated"},
	}
	now := time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC)

	out := TaskCalendarICS(tasks, "My tasks", now)

	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR\r\n"))
	assert.True(t, strings.HasSuffix(out, "END:VCALENDAR\r\n"))
	assert.Equal(t, 1, strings.Count(out, "BEGIN:VEVENT"))
	assert.Contains(t, out, "UID:a@taskmaster\r\n")
	assert.Contains(t, out, "DTSTAMP:20250601T083000Z\r\n")
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20250630\r\n")
	assert.Contains(t, out, "DTEND;VALUE=DATE:20250701\r\n")
	assert.Contains(t, out, `SUMMARY:Pay rent\, on time\; really`)
	assert.Contains(t, out, `DESCRIPTION:line1\nline2`)
	assert.Contains(t, out, "PRIORITY:1\r\n")
	assert.Contains(t, out, "X-WR-CALNAME:My tasks\r\n")
	assert.NotContains(t, out, "Undated")
}

func TestActivitySeries_Buckets(t *testing.T) {
	today := entities.Date("2025-06-07")
	tasks := []entities.Task{
		{CreatedAt: "2025-06-07"},
		{CreatedAt: "2025-06-03", Completed: true, CompletedAt: completedOn("2025-06-05")},
		{CreatedAt: "2025-06-01"},
		// completedAt without the flag is not a completion
		{CreatedAt: "2025-06-02", CompletedAt: completedOn("2025-06-04")},
	}

	series := ActivitySeries(tasks, today, 7)
	require.Len(t, series, 7)

	assert.Equal(t, entities.Date("2025-06-01"), series[0].Date)
	assert.Equal(t, entities.Date("2025-06-07"), series[6].Date)
	assert.Equal(t, "Jun 1", series[0].Label)

	created := make([]int, 7)
	completed := make([]int, 7)
	for i, p := range series {
		created[i] = p.Created
		completed[i] = p.Completed
	}
	assert.Equal(t, []int{1, 1, 1, 0, 0, 0, 1}, created)
	assert.Equal(t, []int{0, 0, 0, 0, 1, 0, 0}, completed)
}

func TestActivitySeries_ClampsOutOfWindow(t *testing.T) {
	today := entities.Date("2025-06-07")
	tasks := []entities.Task{
		{CreatedAt: "2024-01-01", Completed: true, CompletedAt: completedOn("2025-05-01")},
		{CreatedAt: "2025-07-01", Completed: true, CompletedAt: completedOn("2025-12-31")},
		{CreatedAt: ""},
	}

	series := ActivitySeries(tasks, today, 7)

	assert.Equal(t, 1, series[0].Created)
	assert.Equal(t, 1, series[0].Completed)
	assert.Equal(t, 2, series[6].Created, "future and missing createdAt land on the last day")
	assert.Equal(t, 1, series[6].Completed)

	total := 0
	for _, p := range series {
		total += p.Created
	}
	assert.Equal(t, len(tasks), total, "every task is counted exactly once")
}

func TestDistributions(t *testing.T) {
	tasks := []entities.Task{
		{Priority: entities.PriorityHigh},
		{Priority: entities.PriorityHigh, Completed: true},
		{Priority: ""},
		{Priority: entities.PriorityLow},
		{Priority: "weird"},
	}

	prio := PriorityDistribution(tasks)
	require.Len(t, prio, 3)
	assert.Equal(t, 2, prio[0].Value)
	assert.Equal(t, 1, prio[1].Value)
	assert.Equal(t, 1, prio[2].Value)
	assert.Equal(t, ColorHigh, prio[0].Color)

	status := StatusDistribution(tasks)
	assert.Equal(t, 1, status[0].Value)
	assert.Equal(t, 4, status[1].Value)
}

func TestIntensity(t *testing.T) {
	cases := map[int]int{0: 0, 1: 1, 2: 1, 3: 2, 4: 2, 5: 3, 6: 3, 7: 4, 30: 4}
	for count, want := range cases {
		assert.Equal(t, want, Intensity(count), "count %d", count)
	}
}

func TestActivityHeatmap(t *testing.T) {
	today := entities.Date("2025-06-30")
	var tasks []entities.Task
	for i := 0; i < 3; i++ {
		tasks = append(tasks, entities.Task{Completed: true, CompletedAt: completedOn("2025-06-30")})
	}
	tasks = append(tasks,
		entities.Task{Completed: true, CompletedAt: completedOn("2025-04-07")}, // first day of the window
		entities.Task{Completed: true, CompletedAt: completedOn("2025-04-06")}, // outside, dropped
		entities.Task{Completed: false},
	)

	hm := ActivityHeatmap(tasks, today, 0)

	assert.Equal(t, entities.Date("2025-04-07"), hm.Start)
	assert.Equal(t, today, hm.End)
	assert.Equal(t, 4, hm.Total)
	require.Len(t, hm.Weeks, 13)
	assert.Len(t, hm.Weeks[12], 1)

	first := hm.Weeks[0][0]
	assert.Equal(t, 1, first.Count)
	assert.Equal(t, 1, first.Intensity)
	assert.Equal(t, "Mon", first.Weekday)

	last := hm.Weeks[12][0]
	assert.Equal(t, today, last.Date)
	assert.Equal(t, 3, last.Count)
	assert.Equal(t, 2, last.Intensity)
}

func TestNoteCards(t *testing.T) {
	notes := []entities.Note{
		{ID: "c", Type: entities.NoteTypeChecklist, Body: entities.ChecklistBody{Items: []entities.ChecklistItem{{Checked: true}, {}, {}}}},
		{ID: "s", Type: entities.NoteTypeSticky, Content: "hi", Body: entities.StickyBody{}},
	}

	cards := NoteCards(notes)
	require.Len(t, cards, 2)
	require.NotNil(t, cards[0].Progress)
	assert.Equal(t, entities.ChecklistProgress{Completed: 1, Total: 3, Percentage: 33}, *cards[0].Progress)
	assert.Equal(t, entities.SizeMedium, cards[0].Size)
	assert.Nil(t, cards[1].Progress)
	assert.Equal(t, entities.SizeSmall, cards[1].Size)
}

func TestTaskCards(t *testing.T) {
	cards := TaskCards([]entities.Task{
		{ID: "late", Date: "2025-06-01"},
		{ID: "done", Date: "2025-06-01", Completed: true, CompletedAt: completedOn("2025-06-02")},
	}, "2025-06-05")

	assert.True(t, cards[0].Overdue)
	assert.False(t, cards[1].Overdue)
	assert.Equal(t, ColorCompleted, cards[1].Color)
}

func TestHighlight(t *testing.T) {
	assert.Equal(t, "Buy <mark>Milk</mark> &amp; <mark>milk</mark>", Highlight("Buy Milk & milk", "MILK"))
	assert.Equal(t, "&lt;b&gt;x&lt;/b&gt;", Highlight("<b>x</b>", ""))
	assert.Equal(t, "axb <mark>a.b</mark>", Highlight("axb a.b", "a.b"))
	assert.Equal(t, "no match", Highlight("no match", "zzz"))
}
